package simplify

import "github.com/morel-lang/morelc/internal/core"

// boundBy reports whether pattern binds key, so substitute can stop
// descending into a scope that rebinds the same (name, ordinal) —
// ordinals are assigned uniquely per binding site by elaboration, so in
// practice this never triggers, but it costs nothing to guard against.
func boundBy(p core.Pattern, key varKey) bool {
	for _, b := range core.Vars(p) {
		if keyOf(b.Name, b.Ordinal) == key {
			return true
		}
	}
	return false
}

// substitute returns a copy of e with every free reference to key
// replaced by repl.
func substitute(e core.Expr, key varKey, repl core.Expr) core.Expr {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *core.Lit:
		return e
	case *core.Var:
		if keyOf(e.Name, e.Ordinal) == key {
			return repl
		}
		return e
	case *core.Lambda:
		if boundBy(e.Param, key) {
			return e
		}
		return &core.Lambda{Node: e.Node, Param: e.Param, Body: substitute(e.Body, key, repl)}
	case *core.App:
		return &core.App{Node: e.Node, Fun: substitute(e.Fun, key, repl), Arg: substitute(e.Arg, key, repl)}
	case *core.Let:
		newVal := substitute(e.Value, key, repl)
		if boundBy(e.Pattern, key) {
			return &core.Let{Node: e.Node, Pattern: e.Pattern, Rec: e.Rec, Value: newVal, Body: e.Body}
		}
		return &core.Let{Node: e.Node, Pattern: e.Pattern, Rec: e.Rec, Value: newVal, Body: substitute(e.Body, key, repl)}
	case *core.Tuple:
		elems := make([]core.Expr, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = substitute(el, key, repl)
		}
		return &core.Tuple{Node: e.Node, Elems: elems}
	case *core.RecordLit:
		fields := make(map[string]core.Expr, len(e.Fields))
		for label, val := range e.Fields {
			fields[label] = substitute(val, key, repl)
		}
		return &core.RecordLit{Node: e.Node, Fields: fields}
	case *core.FieldAccess:
		return &core.FieldAccess{Node: e.Node, Record: substitute(e.Record, key, repl), Field: e.Field}
	case *core.Case:
		arms := make([]core.MatchArm, len(e.Arms))
		for i, a := range e.Arms {
			if boundBy(a.Pattern, key) {
				arms[i] = a
				continue
			}
			guard := a.Guard
			if guard != nil {
				guard = substitute(guard, key, repl)
			}
			arms[i] = core.MatchArm{Pattern: a.Pattern, Guard: guard, Body: substitute(a.Body, key, repl)}
		}
		return &core.Case{Node: e.Node, Scrutinee: substitute(e.Scrutinee, key, repl), Arms: arms, Exhaustive: e.Exhaustive}
	case *core.From:
		steps := make([]core.FromStep, len(e.Steps))
		for i, s := range e.Steps {
			steps[i] = substituteStep(s, key, repl)
		}
		return &core.From{Node: e.Node, Steps: steps}
	}
	return e
}

func substituteStep(s core.FromStep, key varKey, repl core.Expr) core.FromStep {
	switch s := s.(type) {
	case *core.ScanStep:
		if boundBy(s.Pattern, key) {
			return &core.ScanStep{Pattern: s.Pattern, Collection: substitute(s.Collection, key, repl), Cond: s.Cond, Bindings: s.Bindings}
		}
		return &core.ScanStep{Pattern: s.Pattern, Collection: substitute(s.Collection, key, repl), Cond: substitute(s.Cond, key, repl), Bindings: s.Bindings}
	case *core.WhereStep:
		return &core.WhereStep{Cond: substitute(s.Cond, key, repl), Bindings: s.Bindings}
	case *core.SkipStep:
		return &core.SkipStep{Count: substitute(s.Count, key, repl), Bindings: s.Bindings}
	case *core.TakeStep:
		return &core.TakeStep{Count: substitute(s.Count, key, repl), Bindings: s.Bindings}
	case *core.DistinctStep:
		return s
	case *core.YieldStep:
		return &core.YieldStep{Result: substitute(s.Result, key, repl), Bindings: s.Bindings}
	case *core.OrderStep:
		keys := make([]core.OrderItem, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = core.OrderItem{Key: substitute(k.Key, key, repl), Desc: k.Desc}
		}
		return &core.OrderStep{Keys: keys, Bindings: s.Bindings}
	case *core.GroupStep:
		keyExprs := make([]core.Expr, len(s.KeyExprs))
		for i, k := range s.KeyExprs {
			keyExprs[i] = substitute(k, key, repl)
		}
		aggs := make([]core.Aggregate, len(s.Aggregates))
		for i, a := range s.Aggregates {
			aggs[i] = core.Aggregate{Name: a.Name, Ordinal: a.Ordinal, Func: a.Func, Over: substitute(a.Over, key, repl)}
		}
		return &core.GroupStep{Keys: s.Keys, KeyExprs: keyExprs, Aggregates: aggs, Bindings: s.Bindings}
	case *core.ComputeStep:
		return &core.ComputeStep{Name: s.Name, Ordinal: s.Ordinal, Value: substitute(s.Value, key, repl), Bindings: s.Bindings}
	case *core.SetOpStep:
		return &core.SetOpStep{Kind: s.Kind, Other: substitute(s.Other, key, repl), Bindings: s.Bindings}
	}
	return s
}

// freeVars returns every (name, ordinal) referenced by e that isn't
// bound somewhere inside e itself — used to decide whether a top-level
// function is closed enough to inline at its call sites.
func freeVars(e core.Expr) map[varKey]bool {
	out := map[varKey]bool{}
	collectFree(e, map[varKey]bool{}, out)
	return out
}

func collectFree(e core.Expr, bound map[varKey]bool, out map[varKey]bool) {
	if e == nil {
		return
	}
	switch e := e.(type) {
	case *core.Lit:
	case *core.Var:
		k := keyOf(e.Name, e.Ordinal)
		if !bound[k] {
			out[k] = true
		}
	case *core.Lambda:
		collectFree(e.Body, withBound(bound, e.Param), out)
	case *core.App:
		collectFree(e.Fun, bound, out)
		collectFree(e.Arg, bound, out)
	case *core.Let:
		collectFree(e.Value, bound, out)
		collectFree(e.Body, withBound(bound, e.Pattern), out)
	case *core.Tuple:
		for _, el := range e.Elems {
			collectFree(el, bound, out)
		}
	case *core.RecordLit:
		for _, v := range e.Fields {
			collectFree(v, bound, out)
		}
	case *core.FieldAccess:
		collectFree(e.Record, bound, out)
	case *core.Case:
		collectFree(e.Scrutinee, bound, out)
		for _, a := range e.Arms {
			b2 := withBound(bound, a.Pattern)
			if a.Guard != nil {
				collectFree(a.Guard, b2, out)
			}
			collectFree(a.Body, b2, out)
		}
	case *core.From:
		cur := bound
		for _, s := range e.Steps {
			cur = collectFreeStep(s, cur, out)
		}
	}
}

func withBound(bound map[varKey]bool, p core.Pattern) map[varKey]bool {
	out := make(map[varKey]bool, len(bound)+1)
	for k := range bound {
		out[k] = true
	}
	for _, b := range core.Vars(p) {
		out[keyOf(b.Name, b.Ordinal)] = true
	}
	return out
}

func collectFreeStep(s core.FromStep, bound map[varKey]bool, out map[varKey]bool) map[varKey]bool {
	switch s := s.(type) {
	case *core.ScanStep:
		collectFree(s.Collection, bound, out)
		next := withBound(bound, s.Pattern)
		collectFree(s.Cond, next, out)
		return next
	case *core.WhereStep:
		collectFree(s.Cond, bound, out)
	case *core.SkipStep:
		collectFree(s.Count, bound, out)
	case *core.TakeStep:
		collectFree(s.Count, bound, out)
	case *core.DistinctStep:
	case *core.YieldStep:
		collectFree(s.Result, bound, out)
	case *core.OrderStep:
		for _, k := range s.Keys {
			collectFree(k.Key, bound, out)
		}
	case *core.GroupStep:
		for _, k := range s.KeyExprs {
			collectFree(k, bound, out)
		}
		for _, a := range s.Aggregates {
			collectFree(a.Over, bound, out)
		}
	case *core.ComputeStep:
		collectFree(s.Value, bound, out)
	case *core.SetOpStep:
		collectFree(s.Other, bound, out)
	}
	next := make(map[varKey]bool, len(bound))
	for k := range bound {
		next[k] = true
	}
	for _, b := range s.Output() {
		next[keyOf(b.Name, b.Ordinal)] = true
	}
	return next
}
