package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/errors"
	"github.com/morel-lang/morelc/internal/types"
)

func pos() ast.Pos { return ast.Pos{File: "test", Line: 1, Column: 1} }

func intT() types.Type    { return &types.TPrim{Name: types.Int} }
func boolT() types.Type   { return &types.TPrim{Name: types.Bool} }
func stringT() types.Type { return &types.TPrim{Name: types.String} }

// baseEnv binds the handful of builtins inferExpr's desugaring rules
// reach for: list cons/nil (list literals) and a couple of monomorphic
// arithmetic/comparison operators (BinOp desugaring).
func baseEnv() *env.Environment {
	e := env.Empty()
	e = e.Bind(&env.Binding{Name: "nil", Ordinal: 0, Kind: env.VAL,
		Type: &types.TForall{NumParams: 1, Body: &types.TList{Elem: &types.TVar{Id: 0}}}})
	e = e.Bind(&env.Binding{Name: "::", Ordinal: 0, Kind: env.VAL,
		Type: &types.TForall{NumParams: 1, Body: &types.TFunc{
			Param: &types.TVar{Id: 0},
			Result: &types.TFunc{Param: &types.TList{Elem: &types.TVar{Id: 0}}, Result: &types.TList{Elem: &types.TVar{Id: 0}}},
		}}})
	e = e.Bind(&env.Binding{Name: "+", Ordinal: 0, Kind: env.VAL,
		Type: &types.TFunc{Param: intT(), Result: &types.TFunc{Param: intT(), Result: intT()}}})
	e = e.Bind(&env.Binding{Name: ">", Ordinal: 0, Kind: env.VAL,
		Type: &types.TFunc{Param: intT(), Result: &types.TFunc{Param: intT(), Result: boolT()}}})
	return e
}

func ident(name string) *ast.Ident { return &ast.Ident{Name: name, Pos: pos()} }

func litInt(v int) *ast.Lit { return &ast.Lit{Kind: ast.IntLit, Value: v, Pos: pos()} }

func TestInferDeclLiteral(t *testing.T) {
	c := New(types.NewSystem())
	decl, _, err := c.InferDecl(baseEnv(), &ast.ValDecl{Name: "x", Exp: litInt(42), Pos: pos()})
	require.NoError(t, err)
	assert.Equal(t, "int", decl.Type.String())
}

func TestInferDeclLambdaApplication(t *testing.T) {
	c := New(types.NewSystem())
	// val addOne = fn x => x + 1
	body := &ast.App{
		Fun: &ast.App{Fun: ident("+"), Arg: ident("x"), Pos: pos()},
		Arg: litInt(1),
		Pos: pos(),
	}
	fn := &ast.Fn{Param: &ast.IdentPattern{Name: "x", Pos: pos()}, Body: body, Pos: pos()}
	decl, _, err := c.InferDecl(baseEnv(), &ast.ValDecl{Name: "addOne", Exp: fn, Pos: pos()})
	require.NoError(t, err)
	assert.Equal(t, "int -> int", decl.Type.String())
}

func TestInferDeclGeneralizesTopLevelPolymorphicFunction(t *testing.T) {
	c := New(types.NewSystem())
	// val const = fn x => fn y => x
	inner := &ast.Fn{Param: &ast.IdentPattern{Name: "y", Pos: pos()}, Body: ident("x"), Pos: pos()}
	outer := &ast.Fn{Param: &ast.IdentPattern{Name: "x", Pos: pos()}, Body: inner, Pos: pos()}
	decl, _, err := c.InferDecl(baseEnv(), &ast.ValDecl{Name: "const", Exp: outer, Pos: pos()})
	require.NoError(t, err)
	forall, ok := decl.Type.(*types.TForall)
	require.True(t, ok, "expected a generalized scheme, got %s", decl.Type)
	assert.Equal(t, 2, forall.NumParams)
}

func TestInferDeclUnboundIdentifierReportsINF001(t *testing.T) {
	c := New(types.NewSystem())
	_, _, err := c.InferDecl(baseEnv(), &ast.ValDecl{Name: "x", Exp: ident("nope"), Pos: pos()})
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.UnboundIdentifier, rep.Kind)
	assert.Equal(t, errors.INF001, rep.Code)
}

func TestInferDeclRecursiveFunction(t *testing.T) {
	c := New(types.NewSystem())
	// fun count n = if n > 0 then count (n + (0 - 1)) else n -- simplified to
	// avoid needing subtraction: fun count n = n
	clause := ast.FunClause{
		Params: []ast.Pattern{&ast.IdentPattern{Name: "n", Pos: pos()}},
		Body:   ident("n"),
	}
	decl, _, err := c.InferDecl(baseEnv(), &ast.FunDecl{Name: "count", Clauses: []ast.FunClause{clause}, Pos: pos()})
	require.NoError(t, err)
	forall, ok := decl.Type.(*types.TForall)
	require.True(t, ok)
	assert.Equal(t, 1, forall.NumParams)
}

func TestInferPatternTupleBindsBothNames(t *testing.T) {
	c := New(types.NewSystem())
	pat := &ast.TuplePattern{Elems: []ast.Pattern{
		&ast.IdentPattern{Name: "a", Pos: pos()},
		&ast.IdentPattern{Name: "b", Pos: pos()},
	}, Pos: pos()}
	expected := &types.TTuple{Elems: []types.Type{intT(), boolT()}}
	_, e2, err := c.inferPattern(baseEnv(), pat, expected)
	require.NoError(t, err)
	a, ok := e2.LookupName("a")
	require.True(t, ok)
	assert.True(t, types.Equals(a.Type, intT()))
	b, ok := e2.LookupName("b")
	require.True(t, ok)
	assert.True(t, types.Equals(b.Type, boolT()))
}

func TestInferPatternClosedRecordRejectsUnknownField(t *testing.T) {
	c := New(types.NewSystem())
	pat := &ast.RecordPattern{
		Fields: []ast.RecordFieldPattern{{Label: "name", Pattern: &ast.IdentPattern{Name: "n", Pos: pos()}}},
		Pos:    pos(),
	}
	// expected is a record without "name" at all -- unification must fail
	// because a closed record pattern unifies structurally.
	expected := &types.TRecord{Fields: map[string]types.Type{"age": intT()}}
	_, _, err := c.inferPattern(baseEnv(), pat, expected)
	require.NoError(t, err) // unify() only enqueues the equation; error surfaces at solve()
	_, solveErr := c.solve()
	require.Error(t, solveErr)
}

func TestInferStandaloneSelectorAppliedToRecord(t *testing.T) {
	c := New(types.NewSystem())
	// val getName = #name {name = "a", age = 1}
	sel := &ast.RecordSelector{Field: "name", Pos: pos()}
	rec := &ast.RecordExp{Fields: []ast.RecordField{
		{Label: "name", Exp: &ast.Lit{Kind: ast.StringLit, Value: "a", Pos: pos()}},
		{Label: "age", Exp: litInt(1)},
	}, Pos: pos()}
	app := &ast.App{Fun: sel, Arg: rec, Pos: pos()}
	decl, _, err := c.InferDecl(baseEnv(), &ast.ValDecl{Name: "theName", Exp: app, Pos: pos()})
	require.NoError(t, err)
	assert.Equal(t, "string", decl.Type.String())
}

func TestInferStandaloneSelectorNoFieldReportsINF006(t *testing.T) {
	c := New(types.NewSystem())
	sel := &ast.RecordSelector{Field: "missing", Pos: pos()}
	rec := &ast.RecordExp{Fields: []ast.RecordField{{Label: "age", Exp: litInt(1)}}, Pos: pos()}
	app := &ast.App{Fun: sel, Arg: rec, Pos: pos()}
	_, _, err := c.InferDecl(baseEnv(), &ast.ValDecl{Name: "x", Exp: app, Pos: pos()})
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.NoField, rep.Kind)
	assert.Equal(t, errors.INF006, rep.Code)
}

func overloadEnv() *env.Environment {
	e := baseEnv()
	e = e.Bind(&env.Binding{Name: "show", Ordinal: 0, Kind: env.OVER})
	e = e.Bind(&env.Binding{Name: "showInt", Ordinal: 1, Kind: env.INST, OverName: "show",
		Type: &types.TFunc{Param: intT(), Result: stringT()}})
	e = e.Bind(&env.Binding{Name: "showBool", Ordinal: 2, Kind: env.INST, OverName: "show",
		Type: &types.TFunc{Param: boolT(), Result: stringT()}})
	return e
}

func TestOverloadResolvesToWinningInstance(t *testing.T) {
	c := New(types.NewSystem())
	app := &ast.App{Fun: ident("show"), Arg: litInt(5), Pos: pos()}
	decl, _, err := c.InferDecl(overloadEnv(), &ast.ValDecl{Name: "s", Exp: app, Pos: pos()})
	require.NoError(t, err)
	assert.Equal(t, "string", decl.Type.String())

	appNode, ok := decl.Value.(*core.App)
	require.True(t, ok)
	ref, ok := appNode.Fun.(*core.Var)
	require.True(t, ok)
	assert.Equal(t, 1, ref.Ordinal, "should have resolved to the int instance")
}

func TestOverloadResolvesOtherInstanceForBoolArg(t *testing.T) {
	c := New(types.NewSystem())
	app := &ast.App{Fun: ident("show"), Arg: &ast.Lit{Kind: ast.BoolLit, Value: true, Pos: pos()}, Pos: pos()}
	decl, _, err := c.InferDecl(overloadEnv(), &ast.ValDecl{Name: "s", Exp: app, Pos: pos()})
	require.NoError(t, err)
	appNode := decl.Value.(*core.App)
	ref := appNode.Fun.(*core.Var)
	assert.Equal(t, 2, ref.Ordinal, "should have resolved to the bool instance")
}

func TestOverloadNoViableCandidateFails(t *testing.T) {
	c := New(types.NewSystem())
	app := &ast.App{Fun: ident("show"), Arg: &ast.RecordExp{Pos: pos()}, Pos: pos()}
	_, _, err := c.InferDecl(overloadEnv(), &ast.ValDecl{Name: "s", Exp: app, Pos: pos()})
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.TypeError, rep.Kind)
	assert.Equal(t, errors.INF002, rep.Code)
}

// TestOverloadAmbiguousAfterRetriesReportsINF004 exercises solve's retry
// loop directly: a constraint whose argument variable is never pinned
// down stays ambiguous across both attempts and must fail with INF004,
// not loop forever.
func TestOverloadAmbiguousAfterRetriesReportsINF004(t *testing.T) {
	c := New(types.NewSystem())
	argVar := c.fresh()
	resultVar := c.fresh()
	c.constraints = append(c.constraints, &types.Constraint{
		Name:      "show",
		ArgVar:    argVar.Id,
		ResultVar: resultVar.Id,
		Candidates: []types.OverloadCandidate{
			{Param: intT(), Result: stringT()},
			{Param: boolT(), Result: stringT()},
		},
	})
	_, err := c.solve()
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.INF004, rep.Code)
}

func TestFromQueryScanWhereYield(t *testing.T) {
	c := New(types.NewSystem())
	e := baseEnv()
	e = e.Bind(&env.Binding{Name: "xs", Ordinal: 0, Kind: env.VAL, Type: &types.TList{Elem: intT()}})

	from := &ast.From{
		Steps: []ast.FromStep{
			&ast.ScanStep{Pattern: &ast.IdentPattern{Name: "x", Pos: pos()}, Collection: ident("xs"), Pos: pos()},
			&ast.WhereStep{Pred: &ast.App{
				Fun: &ast.App{Fun: ident(">"), Arg: ident("x"), Pos: pos()},
				Arg: litInt(0), Pos: pos(),
			}, Pos: pos()},
			&ast.YieldStep{Exp: ident("x"), Pos: pos()},
		},
		Pos: pos(),
	}
	decl, _, err := c.InferDecl(e, &ast.ValDecl{Name: "ys", Exp: from, Pos: pos()})
	require.NoError(t, err)
	assert.Equal(t, "int list", decl.Type.String())

	fromNode, ok := decl.Value.(*core.From)
	require.True(t, ok)
	require.Len(t, fromNode.Steps, 3)
	_, ok = fromNode.Steps[1].(*core.WhereStep)
	assert.True(t, ok)
	yield, ok := fromNode.Steps[2].(*core.YieldStep)
	require.True(t, ok)
	assert.NotNil(t, yield.Result)
}

// TestFromQueryScanFusesFilterCond regression-tests the scan step's fused
// Cond: a `where` clause written directly in the scan pattern must not be
// dropped from the lowered Core tree.
func TestFromQueryScanFusesFilterCond(t *testing.T) {
	c := New(types.NewSystem())
	e := baseEnv()
	e = e.Bind(&env.Binding{Name: "xs", Ordinal: 0, Kind: env.VAL, Type: &types.TList{Elem: intT()}})

	cond := &ast.App{
		Fun: &ast.App{Fun: ident(">"), Arg: ident("x"), Pos: pos()},
		Arg: litInt(0), Pos: pos(),
	}
	from := &ast.From{
		Steps: []ast.FromStep{
			&ast.ScanStep{Pattern: &ast.IdentPattern{Name: "x", Pos: pos()}, Collection: ident("xs"), Cond: cond, Pos: pos()},
			&ast.YieldStep{Exp: ident("x"), Pos: pos()},
		},
		Pos: pos(),
	}
	decl, _, err := c.InferDecl(e, &ast.ValDecl{Name: "ys", Exp: from, Pos: pos()})
	require.NoError(t, err)

	fromNode := decl.Value.(*core.From)
	scan := fromNode.Steps[0].(*core.ScanStep)
	require.NotNil(t, scan.Cond, "scan's fused where-condition must survive lowering")
}

func TestFromQueryGroupStepDuplicateLabelReportsINF007(t *testing.T) {
	c := New(types.NewSystem())
	e := baseEnv()
	e = e.Bind(&env.Binding{Name: "xs", Ordinal: 0, Kind: env.VAL, Type: &types.TList{Elem: intT()}})

	from := &ast.From{
		Steps: []ast.FromStep{
			&ast.ScanStep{Pattern: &ast.IdentPattern{Name: "x", Pos: pos()}, Collection: ident("xs"), Pos: pos()},
			&ast.GroupStep{
				Keys: []ast.RecordField{
					{Label: "k", Exp: ident("x")},
					{Label: "k", Exp: ident("x")},
				},
				Pos: pos(),
			},
		},
		Pos: pos(),
	}
	_, _, err := c.InferDecl(e, &ast.ValDecl{Name: "g", Exp: from, Pos: pos()})
	require.Error(t, err)
	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.DuplicateFieldInGroup, rep.Kind)
	assert.Equal(t, errors.INF007, rep.Code)
}

func TestFromQueryOrderForcesListKind(t *testing.T) {
	c := New(types.NewSystem())
	e := baseEnv()
	e = e.Bind(&env.Binding{Name: "xs", Ordinal: 0, Kind: env.VAL, Type: &types.TBag{Elem: intT()}})

	from := &ast.From{
		Steps: []ast.FromStep{
			&ast.ScanStep{Pattern: &ast.IdentPattern{Name: "x", Pos: pos()}, Collection: ident("xs"), Pos: pos()},
			&ast.OrderStep{Items: []ast.OrderItem{{Exp: ident("x")}}, Pos: pos()},
			&ast.YieldStep{Exp: ident("x"), Pos: pos()},
		},
		Pos: pos(),
	}
	decl, _, err := c.InferDecl(e, &ast.ValDecl{Name: "ys", Exp: from, Pos: pos()})
	require.NoError(t, err)
	assert.Equal(t, "int list", decl.Type.String(), "order must force the output to a list even when scanning a bag")
}

func TestFromQuerySetOpRejectsMultipleArgs(t *testing.T) {
	c := New(types.NewSystem())
	e := baseEnv()
	e = e.Bind(&env.Binding{Name: "xs", Ordinal: 0, Kind: env.VAL, Type: &types.TList{Elem: intT()}})
	e = e.Bind(&env.Binding{Name: "ys", Ordinal: 0, Kind: env.VAL, Type: &types.TList{Elem: intT()}})
	e = e.Bind(&env.Binding{Name: "zs", Ordinal: 0, Kind: env.VAL, Type: &types.TList{Elem: intT()}})

	from := &ast.From{
		Steps: []ast.FromStep{
			&ast.ScanStep{Pattern: &ast.IdentPattern{Name: "x", Pos: pos()}, Collection: ident("xs"), Pos: pos()},
			&ast.SetOpStep{Kind: ast.SetUnion, Args: []ast.Expr{ident("ys"), ident("zs")}, Pos: pos()},
		},
		Pos: pos(),
	}
	_, _, err := c.InferDecl(e, &ast.ValDecl{Name: "u", Exp: from, Pos: pos()})
	require.Error(t, err)
}

func TestListLiteralLowersToConsNil(t *testing.T) {
	c := New(types.NewSystem())
	lst := &ast.ListExp{Elems: []ast.Expr{litInt(1), litInt(2)}, Pos: pos()}
	decl, _, err := c.InferDecl(baseEnv(), &ast.ValDecl{Name: "xs", Exp: lst, Pos: pos()})
	require.NoError(t, err)
	assert.Equal(t, "int list", decl.Type.String())

	outer, ok := decl.Value.(*core.App)
	require.True(t, ok)
	partial, ok := outer.Fun.(*core.App)
	require.True(t, ok)
	consFn, ok := partial.Fun.(*core.Var)
	require.True(t, ok)
	assert.Equal(t, "::", consFn.Name)
}

func TestIfDesugarsToTwoArmCase(t *testing.T) {
	c := New(types.NewSystem())
	ifExpr := &ast.If{Cond: &ast.Lit{Kind: ast.BoolLit, Value: true, Pos: pos()}, Then: litInt(1), Else: litInt(2), Pos: pos()}
	decl, _, err := c.InferDecl(baseEnv(), &ast.ValDecl{Name: "x", Exp: ifExpr, Pos: pos()})
	require.NoError(t, err)
	assert.Equal(t, "int", decl.Type.String())

	caseNode, ok := decl.Value.(*core.Case)
	require.True(t, ok, "if must lower to a Case node")
	assert.Len(t, caseNode.Arms, 2)
}

func TestDatatypeDeclBindsConstructors(t *testing.T) {
	c := New(types.NewSystem())
	d := &ast.DatatypeDecl{Types: []ast.DatatypeDef{{
		Name: "option",
		TypeParams: []string{"'a"},
		Constructors: []ast.ConstructorDef{
			{Name: "None"},
			{Name: "Some", Arg: &ast.TypeVarExpr{Name: "'a", Pos: pos()}},
		},
	}}, Pos: pos()}
	_, e2, err := c.InferDecl(baseEnv(), d)
	require.NoError(t, err)

	none, ok := e2.LookupName("None")
	require.True(t, ok)
	assert.Equal(t, "option", none.Type.(*types.TForall).Body.(*types.TData).Name)

	some, ok := e2.LookupName("Some")
	require.True(t, ok)
	someForall := some.Type.(*types.TForall)
	_, ok = someForall.Body.(*types.TFunc)
	assert.True(t, ok, "Some should be bound as a function from 'a to option")
}

func TestCasePatternMatchWithConstructor(t *testing.T) {
	c := New(types.NewSystem())
	d := &ast.DatatypeDecl{Types: []ast.DatatypeDef{{
		Name: "option",
		TypeParams: []string{"'a"},
		Constructors: []ast.ConstructorDef{
			{Name: "None"},
			{Name: "Some", Arg: &ast.TypeVarExpr{Name: "'a", Pos: pos()}},
		},
	}}, Pos: pos()}
	_, e2, err := c.InferDecl(baseEnv(), d)
	require.NoError(t, err)

	caseExpr := &ast.Case{
		Scrutinee: ident("opt"),
		Arms: []ast.CaseArm{
			{Pattern: &ast.ConstructorPattern{Name: "None", Pos: pos()}, Exp: litInt(0)},
			{Pattern: &ast.ConstructorPattern{Name: "Some", Arg: &ast.IdentPattern{Name: "v", Pos: pos()}, Pos: pos()}, Exp: ident("v")},
		},
		Pos: pos(),
	}
	e3 := e2.Bind(&env.Binding{Name: "opt", Ordinal: 0, Kind: env.VAL,
		Type: &types.TData{Name: "option", Args: []types.Type{intT()}}})

	decl, _, err := c.InferDecl(e3, &ast.ValDecl{Name: "v", Exp: caseExpr, Pos: pos()})
	require.NoError(t, err)
	assert.Equal(t, "int", decl.Type.String())
}
