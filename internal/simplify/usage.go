// Package simplify implements the usage analysis, inliner and
// algebraic simplifier: a fixed-point rewrite pass over Core run after
// grounding and before plan building.
package simplify

import "github.com/morel-lang/morelc/internal/core"

// Usage classifies how a single let-bound identifier is referenced
// within the expression its binding scopes over.
type Usage int

const (
	// Dead: never referenced. The binding can be dropped.
	Dead Usage = iota
	// Atomic: the bound expression is itself a literal or identifier, so
	// duplicating it at every reference site is free regardless of how
	// many times (or where) it is referenced.
	Atomic
	// OnceSafe: referenced exactly once, and not from a position that
	// could evaluate more than once (a lambda body, or a from-step,
	// both of which may run their contained expressions many times).
	OnceSafe
	// MultiUnsafe: anything else — referenced more than once, or the
	// single reference is under a repeatable binder.
	MultiUnsafe
)

type varKey struct {
	name    string
	ordinal int
}

func keyOf(name string, ordinal int) varKey { return varKey{name: name, ordinal: ordinal} }

func isAtomic(e core.Expr) bool {
	switch e.(type) {
	case *core.Lit, *core.Var:
		return true
	}
	return false
}

// classify reports how (name, ordinal) is used within scope.
func classify(scope core.Expr, name string, ordinal int) Usage {
	count, underRepeat := countRefs(scope, keyOf(name, ordinal), false)
	if count == 0 {
		return Dead
	}
	if count == 1 && !underRepeat {
		return OnceSafe
	}
	return MultiUnsafe
}

// countRefs walks scope counting references to key, and reports whether
// any reference occurs under a repeatable binder (a lambda body, or any
// sub-expression of a from-step — both may execute their body more than
// once per evaluation of the enclosing declaration).
func countRefs(e core.Expr, key varKey, underRepeat bool) (count int, anyUnderRepeat bool) {
	if e == nil {
		return 0, false
	}
	switch e := e.(type) {
	case *core.Lit:
		return 0, false
	case *core.Var:
		if keyOf(e.Name, e.Ordinal) == key {
			return 1, underRepeat
		}
		return 0, false
	case *core.Lambda:
		return countRefs(e.Body, key, true)
	case *core.App:
		c1, u1 := countRefs(e.Fun, key, underRepeat)
		c2, u2 := countRefs(e.Arg, key, underRepeat)
		return c1 + c2, u1 || u2
	case *core.Let:
		c1, u1 := countRefs(e.Value, key, underRepeat || e.Rec)
		c2, u2 := countRefs(e.Body, key, underRepeat)
		return c1 + c2, u1 || u2
	case *core.Tuple:
		total := 0
		any := false
		for _, el := range e.Elems {
			c, u := countRefs(el, key, underRepeat)
			total += c
			any = any || u
		}
		return total, any
	case *core.RecordLit:
		total := 0
		any := false
		for _, v := range e.Fields {
			c, u := countRefs(v, key, underRepeat)
			total += c
			any = any || u
		}
		return total, any
	case *core.FieldAccess:
		return countRefs(e.Record, key, underRepeat)
	case *core.Case:
		total, any := countRefs(e.Scrutinee, key, underRepeat)
		for _, arm := range e.Arms {
			if arm.Guard != nil {
				c, u := countRefs(arm.Guard, key, underRepeat)
				total += c
				any = any || u
			}
			c, u := countRefs(arm.Body, key, underRepeat)
			total += c
			any = any || u
		}
		return total, any
	case *core.From:
		total := 0
		any := false
		for _, s := range e.Steps {
			c, u := countRefsStep(s, key)
			total += c
			any = any || u
		}
		return total, any
	}
	return 0, false
}

// countRefsStep counts references inside one from-step. Every
// sub-expression of a from-step runs once per row produced upstream of
// it, so all references found here count as under a repeatable binder.
func countRefsStep(s core.FromStep, key varKey) (count int, anyUnderRepeat bool) {
	switch s := s.(type) {
	case *core.ScanStep:
		c1, _ := countRefs(s.Collection, key, true)
		c2, _ := countRefs(s.Cond, key, true)
		total := c1 + c2
		return total, total > 0
	case *core.WhereStep:
		c, _ := countRefs(s.Cond, key, true)
		return c, c > 0
	case *core.SkipStep:
		c, _ := countRefs(s.Count, key, true)
		return c, c > 0
	case *core.TakeStep:
		c, _ := countRefs(s.Count, key, true)
		return c, c > 0
	case *core.DistinctStep:
		return 0, false
	case *core.YieldStep:
		c, _ := countRefs(s.Result, key, true)
		return c, c > 0
	case *core.OrderStep:
		total := 0
		for _, k := range s.Keys {
			c, _ := countRefs(k.Key, key, true)
			total += c
		}
		return total, total > 0
	case *core.GroupStep:
		total := 0
		for _, k := range s.KeyExprs {
			c, _ := countRefs(k, key, true)
			total += c
		}
		for _, a := range s.Aggregates {
			c, _ := countRefs(a.Over, key, true)
			total += c
		}
		return total, total > 0
	case *core.ComputeStep:
		c, _ := countRefs(s.Value, key, true)
		return c, c > 0
	case *core.SetOpStep:
		c, _ := countRefs(s.Other, key, true)
		return c, c > 0
	}
	return 0, false
}
