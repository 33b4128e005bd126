package plan

import (
	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/types"
)

func intT() types.Type { return &types.TPrim{Name: types.Int} }
func boolT() types.Type { return &types.TPrim{Name: types.Bool} }

func nd(t types.Type) core.Node { return core.Node{Pos: ast.Pos{File: "t", Line: 1, Column: 1}, Typ: t} }

func ident(name string, ordinal int, t types.Type) *core.IdentPattern {
	return &core.IdentPattern{Name: name, Ordinal: ordinal, Typ: t}
}

func v(name string, ordinal int, t types.Type) *core.Var {
	return &core.Var{Node: nd(t), Name: name, Ordinal: ordinal}
}

func lit(val interface{}, t types.Type) *core.Lit {
	return &core.Lit{Node: nd(t), Value: val}
}

func binOp(op string, a, b core.Expr, t types.Type) core.Expr {
	fn := &core.Var{Node: nd(t), Name: op, Ordinal: 0}
	partial := &core.App{Node: nd(t), Fun: fn, Arg: a}
	return &core.App{Node: nd(t), Fun: partial, Arg: b}
}

func letExpr(pat core.Pattern, rec bool, value, body core.Expr, t types.Type) *core.Let {
	return &core.Let{Node: nd(t), Pattern: pat, Rec: rec, Value: value, Body: body}
}
