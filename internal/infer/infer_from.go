package infer

import (
	"fmt"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/errors"
	"github.com/morel-lang/morelc/internal/types"
)

// collKind distinguishes list-ness from bag-ness while a From is being
// checked. Policy: scan/join over a bag produces a bag, lists
// stay lists, mixed inputs degrade to bag; yield/group/compute preserve
// ordering; order forces list; union/except/intersect produce a list
// iff every argument is a list.
//
// A From's steps are checked in a single fixed left-to-right pass (no
// step ever depends on a later one), so this context computes collKind
// directly as it walks the pipeline; it emits no unifier constraints
// for the list/bag choice.
type collKind int

const (
	collList collKind = iota
	collBag
)

func wrapColl(k collKind, elem types.Type) types.Type {
	if k == collList {
		return &types.TList{Elem: elem}
	}
	return &types.TBag{Elem: elem}
}

func collKindOf(t types.Type) (collKind, types.Type, bool) {
	switch t := types.Resolve(t).(type) {
	case *types.TList:
		return collList, t.Elem, true
	case *types.TBag:
		return collBag, t.Elem, true
	}
	return collList, nil, false
}

func (c *Context) inferFrom(e *env.Environment, ex *ast.From) (core.Expr, types.Type, error) {
	if len(ex.Steps) == 0 {
		return nil, nil, fmt.Errorf("infer: empty from-query")
	}
	curEnv := e
	var elemT types.Type
	kind := collList
	haveKind := false

	steps := make([]core.FromStep, 0, len(ex.Steps))
	for _, s := range ex.Steps {
		step, newEnv, newElemT, newKind, kindKnown, err := c.inferFromStep(curEnv, s, elemT, kind, haveKind)
		if err != nil {
			return nil, nil, err
		}
		steps = append(steps, step)
		curEnv, elemT, kind, haveKind = newEnv, newElemT, newKind, kindKnown
	}

	resultT := wrapColl(kind, elemT)
	n := &core.From{Node: c.node(ex.Pos, resultT), Steps: steps}
	return c.remember(n), resultT, nil
}

func (c *Context) inferFromStep(e *env.Environment, s ast.FromStep, elemT types.Type, kind collKind, haveKind bool) (core.FromStep, *env.Environment, types.Type, collKind, bool, error) {
	switch st := s.(type) {
	case *ast.ScanStep:
		collVar := c.fresh()
		newElemVar := c.fresh()
		scanKind := collList
		if st.Collection != nil {
			ce, ct, err := c.inferExpr(e, st.Collection)
			if err != nil {
				return nil, nil, nil, 0, false, err
			}
			c.unify(ct, collVar)
			if k, el, ok := collKindOf(ct); ok {
				scanKind = k
				c.unify(el, newElemVar)
			} else {
				c.unify(collVar, wrapColl(collBag, newElemVar))
			}
			pat, patEnv, err := c.inferPattern(e, st.Pattern, newElemVar)
			if err != nil {
				return nil, nil, nil, 0, false, err
			}
			var cond core.Expr
			if st.Cond != nil {
				cc, ct2, err := c.inferExpr(patEnv, st.Cond)
				if err != nil {
					return nil, nil, nil, 0, false, err
				}
				c.unify(ct2, &types.TPrim{Name: types.Bool})
				cond = cc
			}
			effectiveKind := scanKind
			if haveKind && kind == collBag {
				effectiveKind = collBag
			}
			bindings := core.Vars(pat)
			scan := &core.ScanStep{Pattern: pat, Collection: ce, Cond: cond, Bindings: bindings}
			return scan, patEnv, newElemVar, effectiveKind, true, nil
		}
		// Collection is nil: extent not yet known. internal/ground resolves
		// this before internal/plan ever sees the step; leave the
		// element type as a fresh variable for grounding to refine.
		pat, patEnv, err := c.inferPattern(e, st.Pattern, newElemVar)
		if err != nil {
			return nil, nil, nil, 0, false, err
		}
		bindings := core.Vars(pat)
		scan := &core.ScanStep{Pattern: pat, Collection: nil, Bindings: bindings}
		return scan, patEnv, newElemVar, collBag, true, nil

	case *ast.WhereStep:
		ce, ct, err := c.inferExpr(e, st.Pred)
		if err != nil {
			return nil, nil, nil, 0, false, err
		}
		c.unify(ct, &types.TPrim{Name: types.Bool})
		return &core.WhereStep{Cond: ce}, e, elemT, kind, haveKind, nil

	case *ast.SkipStep:
		ce, ct, err := c.inferExpr(e, st.N)
		if err != nil {
			return nil, nil, nil, 0, false, err
		}
		c.unify(ct, &types.TPrim{Name: types.Int})
		return &core.SkipStep{Count: ce}, e, elemT, kind, haveKind, nil

	case *ast.TakeStep:
		ce, ct, err := c.inferExpr(e, st.N)
		if err != nil {
			return nil, nil, nil, 0, false, err
		}
		c.unify(ct, &types.TPrim{Name: types.Int})
		return &core.TakeStep{Count: ce}, e, elemT, kind, haveKind, nil

	case *ast.DistinctStep:
		return &core.DistinctStep{}, e, elemT, kind, haveKind, nil

	case *ast.YieldStep:
		ce, ct, err := c.inferExpr(e, st.Exp)
		if err != nil {
			return nil, nil, nil, 0, false, err
		}
		// yield preserves ordering.
		return &core.YieldStep{Result: ce}, e, ct, kind, haveKind, nil

	case *ast.OrderStep:
		items := make([]core.OrderItem, len(st.Items))
		for i, it := range st.Items {
			ce, _, err := c.inferExpr(e, it.Exp)
			if err != nil {
				return nil, nil, nil, 0, false, err
			}
			items[i] = core.OrderItem{Key: ce, Desc: it.Desc}
		}
		// order forces list.
		return &core.OrderStep{Keys: items}, e, elemT, collList, true, nil

	case *ast.GroupStep:
		return c.inferGroupStep(e, st, elemT, kind, haveKind)

	case *ast.ComputeStep:
		// A bare compute with no grouping key reduces the whole input to
		// one row; model it as a GroupStep with zero keys so plan/eval
		// share one lowering path.
		return c.inferGroupStep(e, &ast.GroupStep{Keys: nil, Aggs: st.Aggs, Pos: st.Pos}, elemT, kind, haveKind)

	case *ast.SetOpStep:
		return c.inferSetOpStep(e, st, elemT, kind, haveKind)
	}
	return nil, nil, nil, 0, false, fmt.Errorf("infer: unsupported from-step %T", s)
}

func aggregateResultType(fn string, argT types.Type) types.Type {
	switch fn {
	case "count":
		return &types.TPrim{Name: types.Int}
	case "sum", "avg", "min", "max":
		if argT != nil {
			return argT
		}
		return &types.TPrim{Name: types.Int}
	}
	return &types.TPrim{Name: types.Int}
}

func (c *Context) inferGroupStep(e *env.Environment, st *ast.GroupStep, elemT types.Type, kind collKind, haveKind bool) (core.FromStep, *env.Environment, types.Type, collKind, bool, error) {
	seen := map[string]bool{}
	keyExprs := make([]core.Expr, len(st.Keys))
	keyBindings := make([]core.Binding, len(st.Keys))
	fieldTypes := map[string]types.Type{}
	for i, k := range st.Keys {
		if seen[k.Label] {
			return nil, nil, nil, 0, false, errors.New("infer", errors.DuplicateFieldInGroup, errors.INF007, st.Pos,
				fmt.Sprintf("label %q used more than once in group", k.Label), nil)
		}
		seen[k.Label] = true
		ce, ct, err := c.inferExpr(e, k.Exp)
		if err != nil {
			return nil, nil, nil, 0, false, err
		}
		ordinal := c.ordinal(k.Label)
		keyExprs[i] = ce
		keyBindings[i] = core.Binding{Name: k.Label, Ordinal: ordinal, Type: ct}
		fieldTypes[k.Label] = ct
	}
	aggs := make([]core.Aggregate, len(st.Aggs))
	for i, a := range st.Aggs {
		if seen[a.Label] {
			return nil, nil, nil, 0, false, errors.New("infer", errors.DuplicateFieldInGroup, errors.INF007, st.Pos,
				fmt.Sprintf("label %q collides with a group key or earlier aggregate", a.Label), nil)
		}
		seen[a.Label] = true
		var over core.Expr
		var argT types.Type
		if a.Exp != nil {
			ce, ct, err := c.inferExpr(e, a.Exp)
			if err != nil {
				return nil, nil, nil, 0, false, err
			}
			over, argT = ce, ct
		}
		ordinal := c.ordinal(a.Label)
		resT := aggregateResultType(a.Func, argT)
		aggs[i] = core.Aggregate{Name: a.Label, Ordinal: ordinal, Func: a.Func, Over: over}
		fieldTypes[a.Label] = resT
	}
	outEnv := e
	bindings := append([]core.Binding{}, keyBindings...)
	for i, a := range st.Aggs {
		bindings = append(bindings, core.Binding{Name: a.Label, Ordinal: aggs[i].Ordinal, Type: fieldTypes[a.Label]})
	}
	for _, b := range bindings {
		outEnv = outEnv.Bind(&env.Binding{Name: b.Name, Ordinal: b.Ordinal, Type: b.Type, Kind: env.VAL})
	}
	rowT := &types.TRecord{Fields: fieldTypes}
	step := &core.GroupStep{Keys: keyBindings, KeyExprs: keyExprs, Aggregates: aggs, Bindings: bindings}
	// group / compute preserves whatever ordering was already in effect
	//; a from-query with no preceding step defaults to list.
	outKind := collList
	if haveKind {
		outKind = kind
	}
	return step, outEnv, rowT, outKind, true, nil
}

// inferSetOpStep handles a single-argument union/except/intersect step.
// A surface `union a, b, c` with several arguments is expected to have
// already been desugared by the parser into chained SetOpSteps, each
// with exactly one argument — the representation this function (and
// core.SetOpStep) expects.
func (c *Context) inferSetOpStep(e *env.Environment, st *ast.SetOpStep, elemT types.Type, kind collKind, haveKind bool) (core.FromStep, *env.Environment, types.Type, collKind, bool, error) {
	if len(st.Args) != 1 {
		return nil, nil, nil, 0, false, fmt.Errorf("infer: set operation expects exactly one argument per step, got %d", len(st.Args))
	}
	ce, ct, err := c.inferExpr(e, st.Args[0])
	if err != nil {
		return nil, nil, nil, 0, false, err
	}
	if _, el, ok := collKindOf(ct); ok {
		c.unify(el, elemT)
	} else {
		c.unify(ct, wrapColl(kind, elemT))
	}

	resultKind := kind
	if k, _, ok := collKindOf(ct); ok && k == collBag {
		resultKind = collBag
	}
	var coreKind core.SetOpKind
	switch st.Kind {
	case ast.SetUnion:
		coreKind = core.Union
	case ast.SetExcept:
		coreKind = core.Except
	case ast.SetIntersect:
		coreKind = core.Intersect
	}
	return &core.SetOpStep{Kind: coreKind, Other: ce}, e, elemT, resultKind, true, nil
}
