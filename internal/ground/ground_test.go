package ground

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/types"
)

func intT() types.Type { return &types.TPrim{Name: types.Int} }
func boolT() types.Type { return &types.TPrim{Name: types.Bool} }

func nd(t types.Type) core.Node { return core.Node{Pos: ast.Pos{File: "t", Line: 1, Column: 1}, Typ: t} }

func varRef(name string, ordinal int, t types.Type) *core.Var {
	return &core.Var{Node: nd(t), Name: name, Ordinal: ordinal}
}

func litInt(v int) *core.Lit { return &core.Lit{Node: nd(intT()), Value: v} }

func elemCond(x *core.Var, coll core.Expr) core.Expr {
	fn := &core.Var{Node: nd(boolT()), Name: "elem", Ordinal: 0}
	partial := &core.App{Node: nd(boolT()), Fun: fn, Arg: x}
	return &core.App{Node: nd(boolT()), Fun: partial, Arg: coll}
}

func binCond(op string, a, b core.Expr) core.Expr {
	fn := &core.Var{Node: nd(boolT()), Name: op, Ordinal: 0}
	partial := &core.App{Node: nd(boolT()), Fun: fn, Arg: a}
	return &core.App{Node: nd(boolT()), Fun: partial, Arg: b}
}

func andAlso(l, r core.Expr) core.Expr {
	return &core.Case{
		Node:      nd(boolT()),
		Scrutinee: l,
		Arms: []core.MatchArm{
			{Pattern: &core.LitPattern{Value: true}, Body: r},
			{Pattern: &core.LitPattern{Value: false}, Body: &core.Lit{Node: nd(boolT()), Value: false}},
		},
	}
}

func TestGroundElemGeneratorBindsScan(t *testing.T) {
	xIdent := &core.IdentPattern{Name: "x", Ordinal: 0, Typ: intT()}
	xVar := varRef("x", 0, intT())
	coll := varRef("friends", 0, &types.TList{Elem: intT()})

	from := &core.From{
		Node: nd(&types.TList{Elem: intT()}),
		Steps: []core.FromStep{
			&core.ScanStep{Pattern: xIdent, Collection: nil},
			&core.WhereStep{Cond: elemCond(xVar, coll)},
			&core.YieldStep{Result: xVar},
		},
	}

	grounded, err := Ground(from)
	require.NoError(t, err)
	scan := grounded.Steps[0].(*core.ScanStep)
	require.NotNil(t, scan.Collection)
	assert.Same(t, coll, scan.Collection)
}

func TestGroundLiteralEqualityGeneratesSingleton(t *testing.T) {
	xIdent := &core.IdentPattern{Name: "x", Ordinal: 0, Typ: intT()}
	xVar := varRef("x", 0, intT())

	from := &core.From{
		Node: nd(&types.TList{Elem: intT()}),
		Steps: []core.FromStep{
			&core.ScanStep{Pattern: xIdent, Collection: nil},
			&core.WhereStep{Cond: binCond("=", xVar, litInt(5))},
			&core.YieldStep{Result: xVar},
		},
	}

	grounded, err := Ground(from)
	require.NoError(t, err)
	scan := grounded.Steps[0].(*core.ScanStep)
	require.NotNil(t, scan.Collection)
	app, ok := scan.Collection.(*core.App)
	require.True(t, ok)
	assert.Equal(t, &types.TList{Elem: intT()}, app.Type())
}

func TestGroundIntervalGeneratesRangeCall(t *testing.T) {
	xIdent := &core.IdentPattern{Name: "x", Ordinal: 0, Typ: intT()}
	xVar := varRef("x", 0, intT())

	from := &core.From{
		Node: nd(&types.TList{Elem: intT()}),
		Steps: []core.FromStep{
			&core.ScanStep{Pattern: xIdent, Collection: nil},
			&core.WhereStep{Cond: binCond("<", xVar, litInt(10))},
			&core.YieldStep{Result: xVar},
		},
	}

	grounded, err := Ground(from)
	require.NoError(t, err)
	scan := grounded.Steps[0].(*core.ScanStep)
	app, ok := scan.Collection.(*core.App)
	require.True(t, ok)
	fn, ok := app.Fun.(*core.Var)
	require.True(t, ok)
	assert.Equal(t, "__range_lt", fn.Name)
}

func TestGroundFlipsIntervalWhenLiteralIsOnLeft(t *testing.T) {
	xIdent := &core.IdentPattern{Name: "x", Ordinal: 0, Typ: intT()}
	xVar := varRef("x", 0, intT())

	// 10 > x  ==  x < 10
	from := &core.From{
		Node: nd(&types.TList{Elem: intT()}),
		Steps: []core.FromStep{
			&core.ScanStep{Pattern: xIdent, Collection: nil},
			&core.WhereStep{Cond: binCond(">", litInt(10), xVar)},
			&core.YieldStep{Result: xVar},
		},
	}

	grounded, err := Ground(from)
	require.NoError(t, err)
	scan := grounded.Steps[0].(*core.ScanStep)
	app := scan.Collection.(*core.App)
	fn := app.Fun.(*core.Var)
	assert.Equal(t, "__range_lt", fn.Name)
}

func TestGroundConjunctionPicksBestGenerator(t *testing.T) {
	xIdent := &core.IdentPattern{Name: "x", Ordinal: 0, Typ: intT()}
	xVar := varRef("x", 0, intT())
	coll := varRef("friends", 0, &types.TList{Elem: intT()})

	cond := andAlso(elemCond(xVar, coll), binCond("<", xVar, litInt(100)))
	from := &core.From{
		Node: nd(&types.TList{Elem: intT()}),
		Steps: []core.FromStep{
			&core.ScanStep{Pattern: xIdent, Collection: nil},
			&core.WhereStep{Cond: cond},
			&core.YieldStep{Result: xVar},
		},
	}

	grounded, err := Ground(from)
	require.NoError(t, err)
	scan := grounded.Steps[0].(*core.ScanStep)
	// elem generator (FINITE, and cheaper in practice) should win over
	// the interval generator when both are candidates; mergeBest keeps
	// whichever has the lower cardinality, and both are cardFinite here,
	// so the first one installed (elem, since it's the first conjunct)
	// survives.
	assert.Same(t, coll, scan.Collection)
}

func TestGroundFailsWithNoGenerator(t *testing.T) {
	xIdent := &core.IdentPattern{Name: "x", Ordinal: 0, Typ: intT()}
	xVar := varRef("x", 0, intT())

	from := &core.From{
		Node: nd(&types.TList{Elem: intT()}),
		Steps: []core.FromStep{
			&core.ScanStep{Pattern: xIdent, Collection: nil},
			&core.YieldStep{Result: xVar},
		},
	}

	_, err := Ground(from)
	require.Error(t, err)
}

func TestGroundAlreadyBoundFromPassesThrough(t *testing.T) {
	xIdent := &core.IdentPattern{Name: "x", Ordinal: 0, Typ: intT()}
	coll := varRef("xs", 0, &types.TList{Elem: intT()})
	from := &core.From{
		Node: nd(&types.TList{Elem: intT()}),
		Steps: []core.FromStep{
			&core.ScanStep{Pattern: xIdent, Collection: coll},
		},
	}
	grounded, err := Ground(from)
	require.NoError(t, err)
	assert.Same(t, from, grounded)
}
