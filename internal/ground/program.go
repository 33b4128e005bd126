package ground

import "github.com/morel-lang/morelc/internal/core"

// Program walks every declaration of prog, grounding every `from`
// expression found at any nesting depth (not just top-level `from`
// declarations) via Ground, and returns the rewritten program. The walk
// shape mirrors internal/coverage's Annotate/annotateExpr — the two
// packages visit the same Core shapes for the same reason: both need to
// reach every From, wherever it's nested, exactly once.
func Program(prog *core.Program) (*core.Program, error) {
	decls := make([]core.Decl, len(prog.Decls))
	for i, d := range prog.Decls {
		v, err := groundExpr(d.Value)
		if err != nil {
			return nil, err
		}
		decls[i] = core.Decl{Name: d.Name, Ordinal: d.Ordinal, Rec: d.Rec, Value: v, Type: d.Type}
	}
	return &core.Program{Decls: decls}, nil
}

func groundExpr(e core.Expr) (core.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch e := e.(type) {
	case *core.Lit, *core.Var:
		return e, nil

	case *core.Lambda:
		body, err := groundExpr(e.Body)
		if err != nil {
			return nil, err
		}
		return &core.Lambda{Node: e.Node, Param: e.Param, Body: body}, nil

	case *core.App:
		fn, err := groundExpr(e.Fun)
		if err != nil {
			return nil, err
		}
		arg, err := groundExpr(e.Arg)
		if err != nil {
			return nil, err
		}
		return &core.App{Node: e.Node, Fun: fn, Arg: arg}, nil

	case *core.Let:
		val, err := groundExpr(e.Value)
		if err != nil {
			return nil, err
		}
		body, err := groundExpr(e.Body)
		if err != nil {
			return nil, err
		}
		return &core.Let{Node: e.Node, Pattern: e.Pattern, Rec: e.Rec, Value: val, Body: body}, nil

	case *core.Tuple:
		elems := make([]core.Expr, len(e.Elems))
		for i, x := range e.Elems {
			g, err := groundExpr(x)
			if err != nil {
				return nil, err
			}
			elems[i] = g
		}
		return &core.Tuple{Node: e.Node, Elems: elems}, nil

	case *core.RecordLit:
		fields := make(map[string]core.Expr, len(e.Fields))
		for label, x := range e.Fields {
			g, err := groundExpr(x)
			if err != nil {
				return nil, err
			}
			fields[label] = g
		}
		return &core.RecordLit{Node: e.Node, Fields: fields}, nil

	case *core.FieldAccess:
		rec, err := groundExpr(e.Record)
		if err != nil {
			return nil, err
		}
		return &core.FieldAccess{Node: e.Node, Record: rec, Field: e.Field}, nil

	case *core.Case:
		scrut, err := groundExpr(e.Scrutinee)
		if err != nil {
			return nil, err
		}
		arms := make([]core.MatchArm, len(e.Arms))
		for i, a := range e.Arms {
			guard, err := groundExpr(a.Guard)
			if err != nil {
				return nil, err
			}
			body, err := groundExpr(a.Body)
			if err != nil {
				return nil, err
			}
			arms[i] = core.MatchArm{Pattern: a.Pattern, Guard: guard, Body: body}
		}
		return &core.Case{Node: e.Node, Scrutinee: scrut, Arms: arms, Exhaustive: e.Exhaustive}, nil

	case *core.From:
		steps := make([]core.FromStep, len(e.Steps))
		for i, s := range e.Steps {
			g, err := groundFromStep(s)
			if err != nil {
				return nil, err
			}
			steps[i] = g
		}
		return Ground(&core.From{Node: e.Node, Steps: steps})
	}
	return e, nil
}

func groundFromStep(s core.FromStep) (core.FromStep, error) {
	switch s := s.(type) {
	case *core.ScanStep:
		coll, err := groundExpr(s.Collection)
		if err != nil {
			return nil, err
		}
		cond, err := groundExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		return &core.ScanStep{Pattern: s.Pattern, Collection: coll, Cond: cond, Bindings: s.Bindings}, nil
	case *core.WhereStep:
		cond, err := groundExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		return &core.WhereStep{Cond: cond, Bindings: s.Bindings}, nil
	case *core.SkipStep:
		count, err := groundExpr(s.Count)
		if err != nil {
			return nil, err
		}
		return &core.SkipStep{Count: count, Bindings: s.Bindings}, nil
	case *core.TakeStep:
		count, err := groundExpr(s.Count)
		if err != nil {
			return nil, err
		}
		return &core.TakeStep{Count: count, Bindings: s.Bindings}, nil
	case *core.DistinctStep:
		return s, nil
	case *core.YieldStep:
		res, err := groundExpr(s.Result)
		if err != nil {
			return nil, err
		}
		return &core.YieldStep{Result: res, Bindings: s.Bindings}, nil
	case *core.OrderStep:
		keys := make([]core.OrderItem, len(s.Keys))
		for i, k := range s.Keys {
			g, err := groundExpr(k.Key)
			if err != nil {
				return nil, err
			}
			keys[i] = core.OrderItem{Key: g, Desc: k.Desc}
		}
		return &core.OrderStep{Keys: keys, Bindings: s.Bindings}, nil
	case *core.GroupStep:
		keyExprs := make([]core.Expr, len(s.KeyExprs))
		for i, ke := range s.KeyExprs {
			g, err := groundExpr(ke)
			if err != nil {
				return nil, err
			}
			keyExprs[i] = g
		}
		aggs := make([]core.Aggregate, len(s.Aggregates))
		for i, a := range s.Aggregates {
			over, err := groundExpr(a.Over)
			if err != nil {
				return nil, err
			}
			aggs[i] = core.Aggregate{Name: a.Name, Ordinal: a.Ordinal, Func: a.Func, Over: over}
		}
		return &core.GroupStep{Keys: s.Keys, KeyExprs: keyExprs, Aggregates: aggs, Bindings: s.Bindings}, nil
	case *core.ComputeStep:
		v, err := groundExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &core.ComputeStep{Name: s.Name, Ordinal: s.Ordinal, Value: v, Bindings: s.Bindings}, nil
	case *core.SetOpStep:
		other, err := groundExpr(s.Other)
		if err != nil {
			return nil, err
		}
		return &core.SetOpStep{Kind: s.Kind, Other: other, Bindings: s.Bindings}, nil
	}
	return s, nil
}
