package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morel-lang/morelc/internal/ast"
)

func pos() ast.Pos { return ast.Pos{File: "test", Line: 1, Column: 1} }

func litInt(v int) *ast.Lit { return &ast.Lit{Kind: ast.IntLit, Value: v, Pos: pos()} }

func ident(name string) *ast.Ident { return &ast.Ident{Name: name, Pos: pos()} }

// A statement prepared against the prelude evaluates to the value its type
// predicts, and Eval reports exactly the one binding it produced.
func TestPrepareStatementEvaluatesSimpleArithmetic(t *testing.T) {
	s := New(DefaultConfig())
	typeEnv, runtimeEnv := s.Prelude()

	f := &ast.File{Decls: []ast.Decl{
		&ast.ValDecl{Name: "x", Pos: pos(), Exp: &ast.App{
			Fun: &ast.App{Fun: ident("+"), Arg: litInt(2), Pos: pos()},
			Arg: litInt(3),
			Pos: pos(),
		}},
	}}

	cs, _, warnings, err := s.PrepareStatement(typeEnv, f, DefaultEvaluator)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "int", cs.Type().String())

	var lines []string
	var bindings []Binding
	err = cs.Eval(runtimeEnv, func(l string) { lines = append(lines, l) }, func(b Binding) { bindings = append(bindings, b) })
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, "x", bindings[0].Name)
	assert.Equal(t, int64(5), bindings[0].Value)
	require.Len(t, lines, 1)
}

// A later declaration in the same file sees an earlier one's binding, both
// at type-check time and at evaluation time.
func TestPrepareStatementThreadsBindingsAcrossDecls(t *testing.T) {
	s := New(DefaultConfig())
	typeEnv, runtimeEnv := s.Prelude()

	f := &ast.File{Decls: []ast.Decl{
		&ast.ValDecl{Name: "x", Exp: litInt(10), Pos: pos()},
		&ast.ValDecl{Name: "y", Pos: pos(), Exp: &ast.App{
			Fun: &ast.App{Fun: ident("+"), Arg: ident("x"), Pos: pos()},
			Arg: litInt(1),
			Pos: pos(),
		}},
	}}

	cs, _, _, err := s.PrepareStatement(typeEnv, f, DefaultEvaluator)
	require.NoError(t, err)

	var bindings []Binding
	err = cs.Eval(runtimeEnv, func(string) {}, func(b Binding) { bindings = append(bindings, b) })
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, int64(11), bindings[1].Value)
}

// Bindings reports the shape a statement would produce without evaluating
// anything; calling it must not require a runtime environment at all.
func TestCompiledStatementBindingsWithoutEval(t *testing.T) {
	s := New(DefaultConfig())
	typeEnv, _ := s.Prelude()

	f := &ast.File{Decls: []ast.Decl{
		&ast.ValDecl{Name: "x", Exp: litInt(1), Pos: pos()},
	}}

	cs, _, _, err := s.PrepareStatement(typeEnv, f, DefaultEvaluator)
	require.NoError(t, err)

	var seen []Binding
	cs.Bindings(func(b Binding) { seen = append(seen, b) })
	require.Len(t, seen, 1)
	assert.Equal(t, "x", seen[0].Name)
	assert.Nil(t, seen[0].Value)
}

// Requesting the relational backend is a configuration error, not a
// silently-ignored hint.
func TestPrepareStatementRejectsUnsupportedBackend(t *testing.T) {
	s := New(DefaultConfig())
	typeEnv, _ := s.Prelude()
	f := &ast.File{Decls: []ast.Decl{&ast.ValDecl{Name: "x", Exp: litInt(1), Pos: pos()}}}

	_, _, _, err := s.PrepareStatement(typeEnv, f, CalciteBackend)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

// ValidateExpression type-checks without ever producing a plan, for a
// test-only "does this type-check" entry point.
func TestValidateExpressionResolvesType(t *testing.T) {
	s := New(DefaultConfig())
	typeEnv, _ := s.Prelude()

	d := &ast.ValDecl{Name: "x", Exp: litInt(1), Pos: pos()}
	resolved, err := s.ValidateExpression(typeEnv, d)
	require.NoError(t, err)
	assert.Equal(t, "int", resolved.Type.String())
}

// An unbound identifier is a hard error regardless of coverage mode.
func TestPrepareStatementPropagatesUnboundIdentifier(t *testing.T) {
	s := New(DefaultConfig())
	typeEnv, _ := s.Prelude()

	f := &ast.File{Decls: []ast.Decl{
		&ast.ValDecl{Name: "bad", Exp: ident("nonexistent"), Pos: pos()},
	}}

	_, _, _, err := s.PrepareStatement(typeEnv, f, DefaultEvaluator)
	require.Error(t, err)
}
