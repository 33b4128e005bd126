package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/types"
)

func TestProgramInlinesClosedTopLevelFunction(t *testing.T) {
	// val inc = fn x => x + 1
	// val result = inc 5
	funT := &types.TFunc{Param: intT(), Result: intT()}
	x0 := ident("x", 0, intT())
	xv := v("x", 0, intT())
	inc := &core.Lambda{Node: nd(funT), Param: x0, Body: binOp("+", xv, lit(1, intT()), intT())}

	incRef := v("inc", 0, funT)
	call := &core.App{Node: nd(intT()), Fun: incRef, Arg: lit(5, intT())}

	prog := &core.Program{Decls: []core.Decl{
		{Name: "inc", Ordinal: 0, Rec: false, Value: inc, Type: funT},
		{Name: "result", Ordinal: 0, Rec: false, Value: call, Type: intT()},
	}}

	out := Program(prog, DefaultMaxPasses)
	require.Len(t, out.Decls, 2)
	result := out.Decls[1].Value
	lit6, ok := result.(*core.Lit)
	require.True(t, ok)
	assert.Equal(t, 6, lit6.Value)
}

func TestProgramDoesNotInlineRecursiveTopLevelFunction(t *testing.T) {
	funT := &types.TFunc{Param: intT(), Result: intT()}
	x0 := ident("x", 0, intT())
	selfRef := v("loop", 0, funT)
	xv := v("x", 0, intT())
	body := &core.App{Node: nd(intT()), Fun: selfRef, Arg: xv}
	loop := &core.Lambda{Node: nd(funT), Param: x0, Body: body}

	loopRef := v("loop", 0, funT)
	call := &core.App{Node: nd(intT()), Fun: loopRef, Arg: lit(0, intT())}

	prog := &core.Program{Decls: []core.Decl{
		{Name: "loop", Ordinal: 0, Rec: true, Value: loop, Type: funT},
		{Name: "result", Ordinal: 0, Rec: false, Value: call, Type: intT()},
	}}

	out := Program(prog, DefaultMaxPasses)
	result := out.Decls[1].Value
	app, ok := result.(*core.App)
	require.True(t, ok)
	fn, ok := app.Fun.(*core.Var)
	require.True(t, ok)
	assert.Equal(t, "loop", fn.Name)
}

func TestExprStopsAtFixedPointWithinMaxPasses(t *testing.T) {
	e := lit(1, intT())
	got := Expr(e, nil, 1)
	out, ok := got.(*core.Lit)
	require.True(t, ok)
	assert.Equal(t, 1, out.Value)
}
