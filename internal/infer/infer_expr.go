package infer

import (
	"fmt"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/errors"
	"github.com/morel-lang/morelc/internal/types"
)

func litType(k ast.LitKind) types.Type {
	switch k {
	case ast.BoolLit:
		return &types.TPrim{Name: types.Bool}
	case ast.CharLit:
		return &types.TPrim{Name: types.Char}
	case ast.IntLit:
		return &types.TPrim{Name: types.Int}
	case ast.RealLit:
		return &types.TPrim{Name: types.Real}
	case ast.StringLit:
		return &types.TPrim{Name: types.String}
	default:
		return &types.TPrim{Name: types.Unit}
	}
}

// inferExpr walks one surface expression bottom-up, returning its
// lowered Core form and its (possibly still-unresolved) type.
func (c *Context) inferExpr(e *env.Environment, expr ast.Expr) (core.Expr, types.Type, error) {
	switch ex := expr.(type) {
	case *ast.Lit:
		t := litType(ex.Kind)
		n := &core.Lit{Node: c.node(ex.Pos, t), Value: ex.Value}
		return c.remember(n).(*core.Lit), t, nil

	case *ast.Ident:
		return c.inferIdent(e, ex)

	case *ast.RecordSelector:
		return c.inferStandaloneSelector(e, ex)

	case *ast.Fn:
		return c.inferFn(e, ex)

	case *ast.App:
		return c.inferApp(e, ex)

	case *ast.If:
		return c.inferExpr(e, desugarIf(ex))

	case *ast.Let:
		return c.inferLet(e, ex)

	case *ast.Tuple:
		elems := make([]core.Expr, len(ex.Elems))
		elemTypes := make([]types.Type, len(ex.Elems))
		for i, x := range ex.Elems {
			ce, t, err := c.inferExpr(e, x)
			if err != nil {
				return nil, nil, err
			}
			elems[i], elemTypes[i] = ce, t
		}
		t := &types.TTuple{Elems: elemTypes}
		n := &core.Tuple{Node: c.node(ex.Pos, t), Elems: elems}
		return c.remember(n), t, nil

	case *ast.RecordExp:
		fields := make(map[string]core.Expr, len(ex.Fields))
		fieldTypes := make(map[string]types.Type, len(ex.Fields))
		for _, f := range ex.Fields {
			ce, t, err := c.inferExpr(e, f.Exp)
			if err != nil {
				return nil, nil, err
			}
			fields[f.Label] = ce
			fieldTypes[f.Label] = t
		}
		t := &types.TRecord{Fields: fieldTypes}
		n := &core.RecordLit{Node: c.node(ex.Pos, t), Fields: fields}
		return c.remember(n), t, nil

	case *ast.ListExp:
		elemVar := c.fresh()
		elems := make([]core.Expr, len(ex.Elems))
		for i, x := range ex.Elems {
			ce, t, err := c.inferExpr(e, x)
			if err != nil {
				return nil, nil, err
			}
			c.unify(elemVar, t)
			elems[i] = ce
		}
		listT := &types.TList{Elem: elemVar}
		// Lower to nested cons/nil application via the builtin `::`/`nil`
		// overloads, keeping a single Core representation for list
		// literals (no dedicated Core node for them).
		return lowerListLiteral(c, ex.Pos, elems, listT), listT, nil

	case *ast.AndAlso:
		return c.inferExpr(e, &ast.If{Cond: ex.Left, Then: ex.Right, Else: &ast.Lit{Kind: ast.BoolLit, Value: false, Pos: ex.Pos}, Pos: ex.Pos})

	case *ast.OrElse:
		return c.inferExpr(e, &ast.If{Cond: ex.Left, Then: &ast.Lit{Kind: ast.BoolLit, Value: true, Pos: ex.Pos}, Else: ex.Right, Pos: ex.Pos})

	case *ast.BinOp:
		return c.inferExpr(e, &ast.App{
			Fun: &ast.App{Fun: &ast.Ident{Name: ex.Op, Pos: ex.Pos}, Arg: ex.Left, Pos: ex.Pos},
			Arg: ex.Right,
			Pos: ex.Pos,
		})

	case *ast.Case:
		return c.inferCase(e, ex)

	case *ast.From:
		return c.inferFrom(e, ex)
	}
	return nil, nil, fmt.Errorf("infer: unsupported expression %T", expr)
}

func desugarIf(ex *ast.If) ast.Expr {
	return &ast.Case{
		Scrutinee: ex.Cond,
		Arms: []ast.CaseArm{
			{Pattern: &ast.LitPattern{Kind: ast.BoolLit, Value: true, Pos: ex.Pos}, Exp: ex.Then},
			{Pattern: &ast.LitPattern{Kind: ast.BoolLit, Value: false, Pos: ex.Pos}, Exp: ex.Else},
		},
		Pos: ex.Pos,
	}
}

// lowerListLiteral builds `e1 :: e2 :: ... :: nil` via plain Core
// applications of the builtin cons/nil identifiers, so list literals
// need no dedicated Core node.
func lowerListLiteral(c *Context, pos ast.Pos, elems []core.Expr, listT types.Type) core.Expr {
	nilNode := &core.Var{Node: c.node(pos, listT), Name: "nil", Ordinal: 0}
	tail := core.Expr(c.remember(nilNode))
	for i := len(elems) - 1; i >= 0; i-- {
		consFn := c.remember(&core.Var{Node: c.node(pos, listT), Name: "::", Ordinal: 0})
		partial := c.remember(&core.App{Node: c.node(pos, listT), Fun: consFn, Arg: elems[i]})
		tail = c.remember(&core.App{Node: c.node(pos, listT), Fun: partial, Arg: tail})
	}
	return tail
}

func (c *Context) inferIdent(e *env.Environment, ex *ast.Ident) (core.Expr, types.Type, error) {
	b, ok := e.LookupName(ex.Name)
	if !ok {
		return nil, nil, errors.New("infer", errors.UnboundIdentifier, errors.INF001, ex.Pos,
			fmt.Sprintf("unbound identifier %q", ex.Name), nil)
	}
	t := types.Instantiate(b.Type, c.sys.FreshVarId)
	n := &core.Var{Node: c.node(ex.Pos, t), Name: ex.Name, Ordinal: b.Ordinal}
	return c.remember(n), t, nil
}

// inferApp handles both plain application and the overloaded case
// where Fun is an identifier with more than one visible instance.
func (c *Context) inferApp(e *env.Environment, ex *ast.App) (core.Expr, types.Type, error) {
	if fid, ok := ex.Fun.(*ast.Ident); ok {
		if insts := e.CollectOverloads(fid.Name); len(insts) > 1 {
			return c.inferOverloadedApp(e, fid, insts, ex)
		}
	}
	fn, fnType, err := c.inferExpr(e, ex.Fun)
	if err != nil {
		return nil, nil, err
	}
	arg, argType, err := c.inferExpr(e, ex.Arg)
	if err != nil {
		return nil, nil, err
	}
	resultT := c.fresh()
	c.unify(fnType, &types.TFunc{Param: argType, Result: resultT})
	n := &core.App{Node: c.node(ex.Pos, resultT), Fun: fn, Arg: arg}
	return c.remember(n), resultT, nil
}

func (c *Context) inferOverloadedApp(e *env.Environment, fid *ast.Ident, insts []*env.Binding, ex *ast.App) (core.Expr, types.Type, error) {
	argVar := c.fresh()
	resultVar := c.fresh()

	candidates := make([]types.OverloadCandidate, len(insts))
	ordinals := make([]int, len(insts))
	for i, inst := range insts {
		instT := types.Instantiate(inst.Type, c.sys.FreshVarId)
		fn, ok := instT.(*types.TFunc)
		if !ok {
			return nil, nil, fmt.Errorf("infer: instance %q of %q is not a function type", inst.Name, fid.Name)
		}
		candidates[i] = types.OverloadCandidate{Param: fn.Param, Result: fn.Result}
		ordinals[i] = inst.Ordinal
	}
	constraint := &types.Constraint{Name: fid.Name, ArgVar: argVar.Id, ResultVar: resultVar.Id, Candidates: candidates}
	c.constraints = append(c.constraints, constraint)

	arg, argType, err := c.inferExpr(e, ex.Arg)
	if err != nil {
		return nil, nil, err
	}
	c.unify(argVar, argType)

	ref := &core.Var{Node: c.node(fid.Pos, argVar), Name: fid.Name, Ordinal: -1}
	c.remember(ref)
	c.sites = append(c.sites, &overloadSite{ref: ref, constraint: constraint, ordinals: ordinals})

	n := &core.App{Node: c.node(ex.Pos, resultVar), Fun: ref, Arg: arg}
	return c.remember(n), resultVar, nil
}

func (c *Context) inferFn(e *env.Environment, ex *ast.Fn) (core.Expr, types.Type, error) {
	paramVar := c.fresh()
	pat, bodyEnv, err := c.inferPattern(e, ex.Param, paramVar)
	if err != nil {
		return nil, nil, err
	}
	body, bodyT, err := c.inferExpr(bodyEnv, ex.Body)
	if err != nil {
		return nil, nil, err
	}
	fnT := &types.TFunc{Param: paramVar, Result: bodyT}
	n := &core.Lambda{Node: c.node(ex.Pos, fnT), Param: pat, Body: body}
	return c.remember(n), fnT, nil
}

// inferStandaloneSelector handles `#f` used as a value in its own
// right (not immediately applied): it synthesizes `fn $r => $r.f` with
// a flex action on the parameter's variable.
func (c *Context) inferStandaloneSelector(e *env.Environment, ex *ast.RecordSelector) (core.Expr, types.Type, error) {
	paramVar := c.fresh()
	resultVar := c.fresh()
	c.installFlexAction(paramVar.Id, ex.Field, resultVar.Id, ex.Pos)

	pat := &core.IdentPattern{Name: "$r", Ordinal: c.ordinal("$r"), Typ: paramVar}
	ref := &core.Var{Node: c.node(ex.Pos, paramVar), Name: "$r", Ordinal: pat.Ordinal}
	c.remember(ref)
	body := &core.FieldAccess{Node: c.node(ex.Pos, resultVar), Record: ref, Field: ex.Field}
	c.remember(body)

	fnT := &types.TFunc{Param: paramVar, Result: resultVar}
	n := &core.Lambda{Node: c.node(ex.Pos, fnT), Param: pat, Body: body}
	return c.remember(n), fnT, nil
}

// installFlexAction registers the action for flex record
// selectors: once argVar resolves to a concrete record or tuple type,
// look up field in its label list and tie resultVar to that slot.
func (c *Context) installFlexAction(argVar int, field string, resultVar int, pos ast.Pos) {
	c.actions = append(c.actions, &types.Action{
		Var: argVar,
		Run: func(sub types.Substitution, bound types.Type) ([]types.Equation, error) {
			bound = types.Resolve(bound)
			var fieldT types.Type
			switch b := bound.(type) {
			case *types.TRecord:
				ft, ok := b.Fields[field]
				if !ok {
					return nil, errors.New("infer", errors.NoField, errors.INF006, pos,
						fmt.Sprintf("record %s has no field %q", b, field), nil)
				}
				fieldT = ft
			case *types.TTuple:
				rec := types.TupleAsRecord(b)
				ft, ok := rec.Fields[field]
				if !ok {
					return nil, errors.New("infer", errors.NoField, errors.INF006, pos,
						fmt.Sprintf("tuple %s has no field %q", b, field), nil)
				}
				fieldT = ft
			default:
				return nil, errors.New("infer", errors.FlexRecord, errors.INF005, pos,
					fmt.Sprintf("selector #%s applied to non-record type %s", field, bound), nil)
			}
			return []types.Equation{{A: &types.TVar{Id: resultVar}, B: fieldT}}, nil
		},
	})
}

func (c *Context) inferLet(e *env.Environment, ex *ast.Let) (core.Expr, types.Type, error) {
	ordinal := c.ordinal(ex.Name)
	bodyEnv := e
	var selfVar *types.TVar
	if ex.Rec {
		selfVar = c.fresh()
		bodyEnv = e.Bind(&env.Binding{Name: ex.Name, Ordinal: ordinal, Type: selfVar, Kind: env.VAL})
	}
	value, valueT, err := c.inferExpr(bodyEnv, ex.Val)
	if err != nil {
		return nil, nil, err
	}
	if ex.Rec {
		c.unify(selfVar, valueT)
	}
	// A nested let binds its name monomorphically within its body: eqs
	// accumulate across the whole declaration and aren't solved until
	// inferBindingDecl calls solve(), so valueT is not yet a concrete type
	// here and generalizing over it now could quantify a variable later
	// forced concrete elsewhere, which would be unsound. Only top-level
	// declarations (inferBindingDecl) generalize, after solve() runs.
	scheme := valueT
	pat := &core.IdentPattern{Name: ex.Name, Ordinal: ordinal, Typ: scheme}
	innerEnv := e.Bind(&env.Binding{Name: ex.Name, Ordinal: ordinal, Type: scheme, Kind: env.VAL})
	body, bodyT, err := c.inferExpr(innerEnv, ex.Body)
	if err != nil {
		return nil, nil, err
	}
	n := &core.Let{Node: c.node(ex.Pos, bodyT), Pattern: pat, Rec: ex.Rec, Value: value, Body: body}
	return c.remember(n), bodyT, nil
}

func (c *Context) inferCase(e *env.Environment, ex *ast.Case) (core.Expr, types.Type, error) {
	scrut, scrutT, err := c.inferExpr(e, ex.Scrutinee)
	if err != nil {
		return nil, nil, err
	}
	resultT := c.fresh()
	arms := make([]core.MatchArm, len(ex.Arms))
	for i, a := range ex.Arms {
		pat, armEnv, err := c.inferPattern(e, a.Pattern, scrutT)
		if err != nil {
			return nil, nil, err
		}
		body, bodyT, err := c.inferExpr(armEnv, a.Exp)
		if err != nil {
			return nil, nil, err
		}
		c.unify(resultT, bodyT)
		arms[i] = core.MatchArm{Pattern: pat, Body: body}
	}
	n := &core.Case{Node: c.node(ex.Pos, resultT), Scrutinee: scrut, Arms: arms}
	return c.remember(n), resultT, nil
}
