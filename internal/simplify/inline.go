package simplify

import "github.com/morel-lang/morelc/internal/core"

// topLevel records one previously-compiled top-level binding available
// for cross-declaration inlining: its name/ordinal, whether it may be
// inlined at a call site, and the expression to splice in when it is.
type topLevel struct {
	key     varKey
	value   core.Expr
	inlineOK bool
}

// closedFunction reports whether a Lambda has no free variables beyond its own
// parameter — the condition under which a non-recursive top-level
// function may be inlined at its call sites.
func closedFunction(l *core.Lambda) bool {
	free := freeVars(l.Body)
	for _, b := range core.Vars(l.Param) {
		delete(free, keyOf(b.Name, b.Ordinal))
	}
	return len(free) == 0
}

// inlineExpr rewrites e to fixed point applying one pass of every
// inliner rule in : dead-binding removal, atomic/once-safe
// substitution, beta reduction, record-field folding, literal-scrutinee
// case folding, and singleton-match substitution. env supplies
// already-compiled top-level bindings eligible for cross-declaration
// inlining.
func inlineExpr(e core.Expr, env []topLevel) core.Expr {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *core.Lit:
		return e

	case *core.Var:
		for _, tl := range env {
			if tl.inlineOK && keyOf(e.Name, e.Ordinal) == tl.key {
				return tl.value
			}
		}
		return e

	case *core.Lambda:
		return &core.Lambda{Node: e.Node, Param: e.Param, Body: inlineExpr(e.Body, env)}

	case *core.App:
		fn := inlineExpr(e.Fun, env)
		arg := inlineExpr(e.Arg, env)
		if lam, ok := fn.(*core.Lambda); ok {
			// (fn x => body) a  =>  let x = a in body
			return inlineExpr(&core.Let{Node: e.Node, Pattern: lam.Param, Rec: false, Value: arg, Body: lam.Body}, env)
		}
		return &core.App{Node: e.Node, Fun: fn, Arg: arg}

	case *core.Let:
		return inlineLet(e, env)

	case *core.Tuple:
		elems := make([]core.Expr, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = inlineExpr(el, env)
		}
		return &core.Tuple{Node: e.Node, Elems: elems}

	case *core.RecordLit:
		fields := make(map[string]core.Expr, len(e.Fields))
		for label, val := range e.Fields {
			fields[label] = inlineExpr(val, env)
		}
		return &core.RecordLit{Node: e.Node, Fields: fields}

	case *core.FieldAccess:
		rec := inlineExpr(e.Record, env)
		if lit, ok := rec.(*core.RecordLit); ok {
			if val, ok := lit.Fields[e.Field]; ok {
				return val
			}
		}
		return &core.FieldAccess{Node: e.Node, Record: rec, Field: e.Field}

	case *core.Case:
		return inlineCase(e, env)

	case *core.From:
		steps := make([]core.FromStep, len(e.Steps))
		for i, s := range e.Steps {
			steps[i] = inlineStep(s, env)
		}
		return &core.From{Node: e.Node, Steps: steps}
	}
	return e
}

func inlineStep(s core.FromStep, env []topLevel) core.FromStep {
	switch s := s.(type) {
	case *core.ScanStep:
		return &core.ScanStep{Pattern: s.Pattern, Collection: inlineExpr(s.Collection, env), Cond: inlineExpr(s.Cond, env), Bindings: s.Bindings}
	case *core.WhereStep:
		return &core.WhereStep{Cond: inlineExpr(s.Cond, env), Bindings: s.Bindings}
	case *core.SkipStep:
		return &core.SkipStep{Count: inlineExpr(s.Count, env), Bindings: s.Bindings}
	case *core.TakeStep:
		return &core.TakeStep{Count: inlineExpr(s.Count, env), Bindings: s.Bindings}
	case *core.DistinctStep:
		return s
	case *core.YieldStep:
		return &core.YieldStep{Result: inlineExpr(s.Result, env), Bindings: s.Bindings}
	case *core.OrderStep:
		keys := make([]core.OrderItem, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = core.OrderItem{Key: inlineExpr(k.Key, env), Desc: k.Desc}
		}
		return &core.OrderStep{Keys: keys, Bindings: s.Bindings}
	case *core.GroupStep:
		keyExprs := make([]core.Expr, len(s.KeyExprs))
		for i, k := range s.KeyExprs {
			keyExprs[i] = inlineExpr(k, env)
		}
		aggs := make([]core.Aggregate, len(s.Aggregates))
		for i, a := range s.Aggregates {
			aggs[i] = core.Aggregate{Name: a.Name, Ordinal: a.Ordinal, Func: a.Func, Over: inlineExpr(a.Over, env)}
		}
		return &core.GroupStep{Keys: s.Keys, KeyExprs: keyExprs, Aggregates: aggs, Bindings: s.Bindings}
	case *core.ComputeStep:
		return &core.ComputeStep{Name: s.Name, Ordinal: s.Ordinal, Value: inlineExpr(s.Value, env), Bindings: s.Bindings}
	case *core.SetOpStep:
		return &core.SetOpStep{Kind: s.Kind, Other: inlineExpr(s.Other, env), Bindings: s.Bindings}
	}
	return s
}

// inlineLet applies the dead/atomic/once-safe substitution rules to a
// single non-recursive identifier-pattern let. Any other pattern shape
// (tuple/record/constructor destructuring, or a recursive binding) is
// left as a Let — the usage classification and substitution rules this
// package implements only cover the single-identifier case 
// describes ("a reference to a ... binding").
func inlineLet(e *core.Let, env []topLevel) core.Expr {
	value := inlineExpr(e.Value, env)
	ip, ok := e.Pattern.(*core.IdentPattern)
	if !ok || e.Rec {
		return &core.Let{Node: e.Node, Pattern: e.Pattern, Rec: e.Rec, Value: value, Body: inlineExpr(e.Body, env)}
	}

	key := keyOf(ip.Name, ip.Ordinal)
	usage := classify(e.Body, ip.Name, ip.Ordinal)
	if usage != Dead && isAtomic(value) {
		usage = Atomic
	}
	switch usage {
	case Dead:
		return inlineExpr(e.Body, env)
	case Atomic, OnceSafe:
		return inlineExpr(substitute(e.Body, key, value), env)
	default:
		return &core.Let{Node: e.Node, Pattern: e.Pattern, Rec: false, Value: value, Body: inlineExpr(e.Body, env)}
	}
}

// inlineCase folds a case over a known scrutinee (literal folding,
// tagged-constructor folding, singleton-arm substitution) .
func inlineCase(e *core.Case, env []topLevel) core.Expr {
	scrut := inlineExpr(e.Scrutinee, env)
	arms := make([]core.MatchArm, len(e.Arms))
	for i, a := range e.Arms {
		guard := a.Guard
		if guard != nil {
			guard = inlineExpr(guard, env)
		}
		arms[i] = core.MatchArm{Pattern: a.Pattern, Guard: guard, Body: inlineExpr(a.Body, env)}
	}

	if len(arms) == 1 && arms[0].Guard == nil {
		if bound, ok := bindSingleton(arms[0].Pattern, scrut); ok {
			return inlineExpr(wrapBindings(e.Node, bound, arms[0].Body), env)
		}
	}

	if lit, ok := scrut.(*core.Lit); ok {
		for _, a := range arms {
			if a.Guard != nil {
				continue
			}
			if lp, ok := a.Pattern.(*core.LitPattern); ok && lp.Value == lit.Value {
				return a.Body
			}
		}
	}
	if name, arg, ok := knownCtorApp(scrut); ok {
		for _, a := range arms {
			if a.Guard != nil {
				continue
			}
			if pat, isCtor := a.Pattern.(*core.CtorPattern); isCtor && pat.Name == name {
				if bound, ok := bindSingleton(pat.Arg, arg); ok {
					return inlineExpr(wrapBindings(e.Node, bound, a.Body), env)
				}
			}
		}
	}

	return &core.Case{Node: e.Node, Scrutinee: scrut, Arms: arms, Exhaustive: e.Exhaustive}
}

// knownCtorApp recognizes a one-argument constructor application
// (App{Fun: Var(ctorName), Arg: ...}) so inlineCase can fold a case over
// it against a matching CtorPattern without needing a runtime value. A
// bare Var scrutinee is deliberately NOT treated as a known nullary
// constructor here: nothing at the Core level distinguishes "a
// reference to constructor C" from "an ordinary bound variable that
// happens to be named C", so folding on that shape alone could silently
// pick the wrong arm. Nullary-constructor folding is left to the literal
// scrutinee case instead (a NullaryCtorPattern matching a genuinely
// constant-folded Lit).
func knownCtorApp(e core.Expr) (name string, arg core.Expr, ok bool) {
	app, isApp := e.(*core.App)
	if !isApp {
		return "", nil, false
	}
	fn, isVar := app.Fun.(*core.Var)
	if !isVar {
		return "", nil, false
	}
	return fn.Name, app.Arg, true
}

type bindingPair struct {
	pattern core.Pattern
	value   core.Expr
}

// bindSingleton matches the "singleton-match case ... inlines as a
// substitution" rule: an identifier pattern always matches, and a tuple
// of identifiers matches a tuple-of-atomic-arguments scrutinee
// component-wise.
func bindSingleton(pat core.Pattern, scrut core.Expr) ([]bindingPair, bool) {
	switch pat := pat.(type) {
	case *core.IdentPattern:
		return []bindingPair{{pattern: pat, value: scrut}}, true
	case *core.Wildcard:
		return nil, true
	case *core.TuplePattern:
		tup, ok := scrut.(*core.Tuple)
		if !ok || len(tup.Elems) != len(pat.Elems) {
			return nil, false
		}
		var out []bindingPair
		for i, ep := range pat.Elems {
			if !isAtomic(tup.Elems[i]) {
				return nil, false
			}
			sub, ok := bindSingleton(ep, tup.Elems[i])
			if !ok {
				return nil, false
			}
			out = append(out, sub...)
		}
		return out, true
	}
	return nil, false
}

// wrapBindings nests a Let per binding pair around body, reusing node
// for each synthesized Let's bookkeeping.
func wrapBindings(node core.Node, bindings []bindingPair, body core.Expr) core.Expr {
	for i := len(bindings) - 1; i >= 0; i-- {
		b := bindings[i]
		body = &core.Let{Node: node, Pattern: b.pattern, Rec: false, Value: b.value, Body: body}
	}
	return body
}
