package plan

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morel-lang/morelc/internal/core"
)

func TestCompileLitProducesConstAction(t *testing.T) {
	a := Decl(core.Decl{Name: "x", Value: lit(int64(7), intT())}).Body
	c, ok := a.(*ConstAction)
	require.True(t, ok, "expected *ConstAction, got %T", a)
	assert.Equal(t, int64(7), c.Value)
}

func TestCompileVarProducesLookupAction(t *testing.T) {
	a := Decl(core.Decl{Name: "y", Value: v("x", 2, intT())}).Body
	l, ok := a.(*LookupAction)
	require.True(t, ok, "expected *LookupAction, got %T", a)
	assert.Equal(t, "x", l.Name)
	assert.Equal(t, 2, l.Ordinal)
}

// A fully-saturated call to a known 2-ary built-in fuses to Apply2Action
// rather than a curried Apply1Action chain.
func TestCompileAppFusesKnownBinaryBuiltin(t *testing.T) {
	expr := binOp("+", v("a", 0, intT()), v("b", 0, intT()), intT())
	a := Decl(core.Decl{Name: "sum", Value: expr}).Body
	app2, ok := a.(*Apply2Action)
	require.True(t, ok, "expected *Apply2Action, got %T", a)
	assert.Equal(t, "(lookup a/0)", Dump(app2.Arg1))
	assert.Equal(t, "(lookup b/0)", Dump(app2.Arg2))
}

// An application whose head is not a known built-in, or whose arity
// doesn't match the fused table, compiles through the generic Apply1
// path instead.
func TestCompileAppFallsBackToApply1ForUnknownHead(t *testing.T) {
	expr := &core.App{Node: nd(intT()), Fun: v("f", 0, intT()), Arg: v("a", 0, intT())}
	a := Decl(core.Decl{Name: "r", Value: expr}).Body
	_, ok := a.(*Apply1Action)
	require.True(t, ok, "expected *Apply1Action, got %T", a)
}

// A non-recursive let compiles to a plain LetAction with no link.
func TestCompileNonRecLet(t *testing.T) {
	let := letExpr(ident("x", 0, intT()), false, lit(int64(1), intT()), v("x", 0, intT()), intT())
	a := Decl(core.Decl{Name: "d", Value: let}).Body
	la, ok := a.(*LetAction)
	require.True(t, ok, "expected *LetAction, got %T", a)
	_, isLink := la.Value.(*LinkAction)
	assert.False(t, isLink, "non-recursive let should not compile its value through a link")
}

// A recursive let's self-references resolve through the same LinkAction
// whose Target is set once the right-hand side finishes compiling
//, and Validate finds nothing unresolved.
func TestCompileRecLetLinksSelfReference(t *testing.T) {
	// let rec f = fn n => f n in f
	body := &core.App{Node: nd(intT()), Fun: v("f", 0, intT()), Arg: v("n", 0, intT())}
	lambda := &core.Lambda{Node: nd(intT()), Param: ident("n", 0, intT()), Body: body}
	let := letExpr(ident("f", 0, intT()), true, lambda, v("f", 0, intT()), intT())

	plan := Decl(core.Decl{Name: "d", Value: let})
	la, ok := plan.Body.(*LetAction)
	require.True(t, ok)
	link, ok := la.Value.(*LinkAction)
	require.True(t, ok, "recursive let's value should be a *LinkAction")
	require.NotNil(t, link.Target, "link target must be resolved before Decl returns")

	errs := Validate(plan.Body)
	assert.Empty(t, errs, "a fully-compiled recursive binding should have no unresolved links")
}

// Program compiles every declaration independently and in order; later
// declarations referring to earlier ones by name still compile to a
// plain runtime LookupAction, since cross-declaration wiring happens at
// evaluation time through the environment, not at compile time.
func TestProgramCompilesEachDeclIndependently(t *testing.T) {
	prog := &core.Program{Decls: []core.Decl{
		{Name: "x", Value: lit(int64(1), intT())},
		{Name: "y", Value: v("x", 0, intT())},
	}}
	out := Program(prog)
	require.Len(t, out, 2)
	assert.Equal(t, "x", out[0].Name)
	assert.Equal(t, "y", out[1].Name)
	_, ok := out[1].Body.(*LookupAction)
	assert.True(t, ok)
}

// Dumping a slightly larger compiled declaration against a checked-in
// snapshot catches any unintended change to the compiled action shape
// for a representative case: a recursive function applying a fused
// binary built-in inside a match.
func TestCompileRecFunctionSnapshot(t *testing.T) {
	// let rec len = fn xs => case xs of [] => 0 | _ :: t => 1 + len t in len
	scrut := v("xs", 0, intT())
	body := &core.Case{
		Node:      nd(intT()),
		Scrutinee: scrut,
		Arms: []core.MatchArm{
			{Pattern: &core.ListPattern{Elems: nil}, Body: lit(int64(0), intT())},
			{
				Pattern: &core.ConsPattern{Head: ident("_", 0, intT()), Tail: ident("t", 0, intT())},
				Body:    binOp("+", lit(int64(1), intT()), v("len", 0, intT()), intT()),
			},
		},
	}
	lambda := &core.Lambda{Node: nd(intT()), Param: ident("xs", 0, intT()), Body: body}
	let := letExpr(ident("len", 0, intT()), true, lambda, v("len", 0, intT()), intT())

	plan := Decl(core.Decl{Name: "len", Value: let})
	snaps.MatchSnapshot(t, Dump(plan.Body))
}
