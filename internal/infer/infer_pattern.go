package infer

import (
	"fmt"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/errors"
	"github.com/morel-lang/morelc/internal/types"
)

// inferPattern checks pat against expected, returning its Core form and
// the environment extended with every identifier it binds.
func (c *Context) inferPattern(e *env.Environment, pat ast.Pattern, expected types.Type) (core.Pattern, *env.Environment, error) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return &core.Wildcard{}, e, nil

	case *ast.IdentPattern:
		ordinal := c.ordinal(p.Name)
		cp := &core.IdentPattern{Name: p.Name, Ordinal: ordinal, Typ: expected}
		return cp, e.Bind(&env.Binding{Name: p.Name, Ordinal: ordinal, Type: expected, Kind: env.VAL}), nil

	case *ast.TuplePattern:
		elemVars := make([]types.Type, len(p.Elems))
		for i := range p.Elems {
			elemVars[i] = c.fresh()
		}
		c.unify(expected, &types.TTuple{Elems: elemVars})
		elems := make([]core.Pattern, len(p.Elems))
		env2 := e
		for i, ep := range p.Elems {
			cp, newEnv, err := c.inferPattern(env2, ep, elemVars[i])
			if err != nil {
				return nil, nil, err
			}
			elems[i] = cp
			env2 = newEnv
		}
		return &core.TuplePattern{Elems: elems}, env2, nil

	case *ast.RecordPattern:
		fieldVars := make(map[string]types.Type, len(p.Fields))
		for _, f := range p.Fields {
			fieldVars[f.Label] = c.fresh()
		}
		if !p.Open {
			c.unify(expected, &types.TRecord{Fields: fieldVars})
		} else {
			argVar := c.mustTVar(expected)
			for label, v := range fieldVars {
				c.installFlexAction(argVar, label, c.mustTVar(v), p.Pos)
			}
		}
		fields := make([]core.RecordFieldPattern, len(p.Fields))
		env2 := e
		for i, f := range p.Fields {
			cp, newEnv, err := c.inferPattern(env2, f.Pattern, fieldVars[f.Label])
			if err != nil {
				return nil, nil, err
			}
			fields[i] = core.RecordFieldPattern{Label: f.Label, Pattern: cp}
			env2 = newEnv
		}
		return &core.RecordPattern{Fields: fields, Open: p.Open}, env2, nil

	case *ast.LitPattern:
		c.unify(expected, litType(p.Kind))
		return &core.LitPattern{Value: p.Value}, e, nil

	case *ast.ConstructorPattern:
		return c.inferCtorPattern(e, p, expected)

	case *ast.ConsPattern:
		elemVar := c.fresh()
		c.unify(expected, &types.TList{Elem: elemVar})
		head, env2, err := c.inferPattern(e, p.Head, elemVar)
		if err != nil {
			return nil, nil, err
		}
		tail, env3, err := c.inferPattern(env2, p.Tail, expected)
		if err != nil {
			return nil, nil, err
		}
		return &core.ConsPattern{Head: head, Tail: tail}, env3, nil

	case *ast.ListPattern:
		elemVar := c.fresh()
		c.unify(expected, &types.TList{Elem: elemVar})
		elems := make([]core.Pattern, len(p.Elems))
		env2 := e
		for i, ep := range p.Elems {
			cp, newEnv, err := c.inferPattern(env2, ep, elemVar)
			if err != nil {
				return nil, nil, err
			}
			elems[i] = cp
			env2 = newEnv
		}
		return &core.ListPattern{Elems: elems}, env2, nil

	case *ast.AsPattern:
		inner, env2, err := c.inferPattern(e, p.Inner, expected)
		if err != nil {
			return nil, nil, err
		}
		ordinal := c.ordinal(p.Name)
		cp := &core.AsPattern{Name: p.Name, Ordinal: ordinal, Typ: expected, Inner: inner}
		return cp, env2.Bind(&env.Binding{Name: p.Name, Ordinal: ordinal, Type: expected, Kind: env.VAL}), nil
	}
	return nil, nil, fmt.Errorf("infer: unsupported pattern %T", pat)
}

func (c *Context) inferCtorPattern(e *env.Environment, p *ast.ConstructorPattern, expected types.Type) (core.Pattern, *env.Environment, error) {
	b, ok := e.LookupName(p.Name)
	if !ok {
		return nil, nil, errors.New("infer", errors.UnboundIdentifier, errors.INF001, p.Pos,
			fmt.Sprintf("unbound constructor %q", p.Name), nil)
	}
	ctorT := types.Instantiate(b.Type, c.sys.FreshVarId)
	if p.Arg == nil {
		c.unify(expected, ctorT)
		return &core.NullaryCtorPattern{Name: p.Name}, e, nil
	}
	fn, ok := ctorT.(*types.TFunc)
	if !ok {
		return nil, nil, errors.New("infer", errors.TypeError, errors.INF002, p.Pos,
			fmt.Sprintf("constructor %q is nullary but applied to an argument pattern", p.Name), nil)
	}
	c.unify(expected, fn.Result)
	arg, env2, err := c.inferPattern(e, p.Arg, fn.Param)
	if err != nil {
		return nil, nil, err
	}
	return &core.CtorPattern{Name: p.Name, Arg: arg}, env2, nil
}

// mustTVar extracts a type variable's ordinal, allocating a fresh
// indirection equation if t is not already bare. Used only for open
// record patterns, whose flex action must key off a single variable.
func (c *Context) mustTVar(t types.Type) int {
	if v, ok := t.(*types.TVar); ok {
		return v.Id
	}
	v := c.fresh()
	c.unify(v, t)
	return v.Id
}
