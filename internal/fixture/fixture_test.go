package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morel-lang/morelc/internal/ast"
)

func TestFileDecodesValDeclWithArithmetic(t *testing.T) {
	src := []byte(`
decls:
  - kind: val
    name: x
    exp:
      kind: app
      head: {kind: ident, name: "+"}
      args:
        - {kind: lit, type: int, value: 2}
        - {kind: lit, type: int, value: 3}
`)
	f, err := File(src)
	require.NoError(t, err)
	require.Len(t, f.Decls, 1)

	vd, ok := f.Decls[0].(*ast.ValDecl)
	require.True(t, ok)
	assert.Equal(t, "x", vd.Name)

	app, ok := vd.Exp.(*ast.App)
	require.True(t, ok)
	inner, ok := app.Fun.(*ast.App)
	require.True(t, ok)
	ident, ok := inner.Fun.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "+", ident.Name)
}

func TestFileDecodesFunDeclAndCase(t *testing.T) {
	src := []byte(`
decls:
  - kind: fun
    name: describe
    clauses:
      - params:
          - {kind: ident, name: n}
        body:
          kind: case
          scrutinee: {kind: ident, name: n}
          arms:
            - pattern: {kind: lit, type: int, value: 0}
              exp: {kind: lit, type: string, value: "zero"}
            - pattern: {kind: wildcard}
              exp: {kind: lit, type: string, value: "other"}
`)
	f, err := File(src)
	require.NoError(t, err)
	require.Len(t, f.Decls, 1)

	fd, ok := f.Decls[0].(*ast.FunDecl)
	require.True(t, ok)
	require.Len(t, fd.Clauses, 1)

	c, ok := fd.Clauses[0].Body.(*ast.Case)
	require.True(t, ok)
	require.Len(t, c.Arms, 2)
	_, ok = c.Arms[1].Pattern.(*ast.WildcardPattern)
	assert.True(t, ok)
}

func TestFileDecodesFromQuery(t *testing.T) {
	src := []byte(`
decls:
  - kind: val
    name: evens
    exp:
      kind: from
      steps:
        - kind: scan
          pattern: {kind: ident, name: n}
          collection: {kind: ident, name: nums}
        - kind: where
          pred:
            kind: binop
            op: "="
            left:
              kind: app
              head: {kind: ident, name: mod}
              args:
                - {kind: ident, name: n}
                - {kind: lit, type: int, value: 2}
            right: {kind: lit, type: int, value: 0}
        - kind: yield
          exp: {kind: ident, name: n}
`)
	f, err := File(src)
	require.NoError(t, err)
	require.Len(t, f.Decls, 1)

	vd := f.Decls[0].(*ast.ValDecl)
	from, ok := vd.Exp.(*ast.From)
	require.True(t, ok)
	require.Len(t, from.Steps, 3)
	_, ok = from.Steps[0].(*ast.ScanStep)
	assert.True(t, ok)
	_, ok = from.Steps[1].(*ast.WhereStep)
	assert.True(t, ok)
	_, ok = from.Steps[2].(*ast.YieldStep)
	assert.True(t, ok)
}

func TestFileRejectsUnknownExprKind(t *testing.T) {
	src := []byte(`
decls:
  - kind: val
    name: x
    exp: {kind: bogus}
`)
	_, err := File(src)
	require.Error(t, err)
}
