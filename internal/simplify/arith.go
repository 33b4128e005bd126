package simplify

import "github.com/morel-lang/morelc/internal/core"

// asBinOp recovers the curried-application shape internal/infer lowers
// a BinOp into (App(App(Var(op), a), b)) — the same structural match
// internal/ground uses to recognize where-clause operators.
func asBinOp(e core.Expr) (op string, a, b core.Expr, ok bool) {
	outer, isApp := e.(*core.App)
	if !isApp {
		return "", nil, nil, false
	}
	inner, isApp2 := outer.Fun.(*core.App)
	if !isApp2 {
		return "", nil, nil, false
	}
	fn, isVar := inner.Fun.(*core.Var)
	if !isVar {
		return "", nil, nil, false
	}
	return fn.Name, inner.Arg, outer.Arg, true
}

func mkBinOp(node core.Node, op string, a, b core.Expr) core.Expr {
	fn := &core.Var{Node: core.Node{Typ: node.Typ}, Name: op}
	partial := &core.App{Node: core.Node{Typ: node.Typ}, Fun: fn, Arg: a}
	return &core.App{Node: node, Fun: partial, Arg: b}
}

func intLit(e core.Expr) (int, bool) {
	lit, ok := e.(*core.Lit)
	if !ok {
		return 0, false
	}
	v, ok := lit.Value.(int)
	return v, ok
}

func mkIntLit(node core.Node, v int) core.Expr {
	return &core.Lit{Node: node, Value: v}
}

// sameVar reports whether a and b are references to the same bound
// identifier. The arithmetic identities below only recognize equal
// operands when both sides are plain variables (or, for constants,
// equal integer literals) — the common case these rewrites target;
// recognizing arbitrary structurally-equal compound expressions as
// "the same x" is not attempted.
func sameVar(a, b core.Expr) bool {
	av, aok := a.(*core.Var)
	bv, bok := b.(*core.Var)
	return aok && bok && av.Name == bv.Name && av.Ordinal == bv.Ordinal
}

// simplifyArith applies one pass of the algebraic identities to e,
// assuming its immediate sub-expressions are already simplified.
func simplifyArith(e core.Expr) core.Expr {
	op, a, b, ok := asBinOp(e)
	if !ok {
		return e
	}

	if op == "+" || op == "-" {
		if av, aok := intLit(a); aok {
			if bv, bok := intLit(b); bok {
				if op == "+" {
					return mkIntLit(e.(*core.App).Node, av+bv)
				}
				return mkIntLit(e.(*core.App).Node, av-bv)
			}
		}
	}

	if op == "-" {
		// (x + y) - x => y ; (y + x) - x => y
		if lop, la, lb, lok := asBinOp(a); lok && lop == "+" {
			if sameVar(la, b) {
				return lb
			}
			if sameVar(lb, b) {
				return la
			}
			// (x + y) - (x + z) and its three label-symmetric variants => y - z
			if rop, ra, rb, rok := asBinOp(b); rok && rop == "+" {
				switch {
				case sameVar(la, ra):
					return simplifyArith(mkBinOp(e.(*core.App).Node, "-", lb, rb))
				case sameVar(la, rb):
					return simplifyArith(mkBinOp(e.(*core.App).Node, "-", lb, ra))
				case sameVar(lb, ra):
					return simplifyArith(mkBinOp(e.(*core.App).Node, "-", la, rb))
				case sameVar(lb, rb):
					return simplifyArith(mkBinOp(e.(*core.App).Node, "-", la, ra))
				}
			}
			// (x + c1) - c2 => x + (c1 - c2)
			if c1, c1ok := intLit(lb); c1ok {
				if c2, c2ok := intLit(b); c2ok {
					node := e.(*core.App).Node
					return mkBinOp(node, "+", la, mkIntLit(node, c1-c2))
				}
			}
		}
	}

	if op == "+" {
		// (x + c1) + c2 => x + (c1 + c2)
		if lop, la, lb, lok := asBinOp(a); lok && lop == "+" {
			if c1, c1ok := intLit(lb); c1ok {
				if c2, c2ok := intLit(b); c2ok {
					node := e.(*core.App).Node
					return mkBinOp(node, "+", la, mkIntLit(node, c1+c2))
				}
			}
		}
	}

	return e
}

// walkArith applies simplifyArith bottom-up across the whole of e.
func walkArith(e core.Expr) core.Expr {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *core.Lit, *core.Var:
		return e
	case *core.Lambda:
		return &core.Lambda{Node: e.Node, Param: e.Param, Body: walkArith(e.Body)}
	case *core.App:
		fn := walkArith(e.Fun)
		arg := walkArith(e.Arg)
		return simplifyArith(&core.App{Node: e.Node, Fun: fn, Arg: arg})
	case *core.Let:
		return &core.Let{Node: e.Node, Pattern: e.Pattern, Rec: e.Rec, Value: walkArith(e.Value), Body: walkArith(e.Body)}
	case *core.Tuple:
		elems := make([]core.Expr, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = walkArith(el)
		}
		return &core.Tuple{Node: e.Node, Elems: elems}
	case *core.RecordLit:
		fields := make(map[string]core.Expr, len(e.Fields))
		for l, v := range e.Fields {
			fields[l] = walkArith(v)
		}
		return &core.RecordLit{Node: e.Node, Fields: fields}
	case *core.FieldAccess:
		return &core.FieldAccess{Node: e.Node, Record: walkArith(e.Record), Field: e.Field}
	case *core.Case:
		arms := make([]core.MatchArm, len(e.Arms))
		for i, a := range e.Arms {
			guard := a.Guard
			if guard != nil {
				guard = walkArith(guard)
			}
			arms[i] = core.MatchArm{Pattern: a.Pattern, Guard: guard, Body: walkArith(a.Body)}
		}
		return &core.Case{Node: e.Node, Scrutinee: walkArith(e.Scrutinee), Arms: arms, Exhaustive: e.Exhaustive}
	case *core.From:
		steps := make([]core.FromStep, len(e.Steps))
		for i, s := range e.Steps {
			steps[i] = walkArithStep(s)
		}
		return &core.From{Node: e.Node, Steps: steps}
	}
	return e
}

func walkArithStep(s core.FromStep) core.FromStep {
	switch s := s.(type) {
	case *core.ScanStep:
		return &core.ScanStep{Pattern: s.Pattern, Collection: walkArith(s.Collection), Cond: walkArith(s.Cond), Bindings: s.Bindings}
	case *core.WhereStep:
		return &core.WhereStep{Cond: walkArith(s.Cond), Bindings: s.Bindings}
	case *core.SkipStep:
		return &core.SkipStep{Count: walkArith(s.Count), Bindings: s.Bindings}
	case *core.TakeStep:
		return &core.TakeStep{Count: walkArith(s.Count), Bindings: s.Bindings}
	case *core.DistinctStep:
		return s
	case *core.YieldStep:
		return &core.YieldStep{Result: walkArith(s.Result), Bindings: s.Bindings}
	case *core.OrderStep:
		keys := make([]core.OrderItem, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = core.OrderItem{Key: walkArith(k.Key), Desc: k.Desc}
		}
		return &core.OrderStep{Keys: keys, Bindings: s.Bindings}
	case *core.GroupStep:
		keyExprs := make([]core.Expr, len(s.KeyExprs))
		for i, k := range s.KeyExprs {
			keyExprs[i] = walkArith(k)
		}
		aggs := make([]core.Aggregate, len(s.Aggregates))
		for i, a := range s.Aggregates {
			aggs[i] = core.Aggregate{Name: a.Name, Ordinal: a.Ordinal, Func: a.Func, Over: walkArith(a.Over)}
		}
		return &core.GroupStep{Keys: s.Keys, KeyExprs: keyExprs, Aggregates: aggs, Bindings: s.Bindings}
	case *core.ComputeStep:
		return &core.ComputeStep{Name: s.Name, Ordinal: s.Ordinal, Value: walkArith(s.Value), Bindings: s.Bindings}
	case *core.SetOpStep:
		return &core.SetOpStep{Kind: s.Kind, Other: walkArith(s.Other), Bindings: s.Bindings}
	}
	return s
}
