// Package ground implements the query grounding engine: it takes a
// Core `from` whose scan list may include a variable with no explicit
// generator (an "extent" scan — bound implicitly by the where-clauses
// that constrain it) and rewrites it into an equivalent `from` where
// every variable is bound by a scan of a concrete, finite collection.
package ground

import (
	"fmt"

	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/errors"
	"github.com/morel-lang/morelc/internal/types"
)

// cardinality is the order SINGLETON < FINITE < INFINITE used to pick
// the best of several candidate generators for the same variable. There
// is no EMPTY level.
type cardinality int

const (
	cardSingleton cardinality = iota
	cardFinite
	cardInfinite
)

type genKind int

const (
	genElem genKind = iota
	genLiteral
	genInterval
	genUnion
)

// generator is one candidate source for a pattern's extent: a Core
// expression of collection type, plus whether scanning it might produce
// duplicates (a union of overlapping sources) and how cheap it is
// relative to other candidates.
type generator struct {
	kind       genKind
	source     core.Expr
	card       cardinality
	mayDupe    bool
}

// varKey identifies a pattern variable by its Core (name, ordinal) pair,
// unique within the declaration a From belongs to.
type varKey struct {
	name    string
	ordinal int
}

func keyOf(v *core.Var) varKey { return varKey{name: v.Name, ordinal: v.Ordinal} }

// Ground runs the three-pass algorithm over a single Core `from`
// expression and returns an equivalent `from` with every scan's
// Collection set. It fails with an UngroundedPattern (GRD001) error if
// some extent-scanned variable has no discoverable finite generator,
// whether or not any later step uses that variable.
func Ground(ex *core.From) (*core.From, error) {
	unresolved := map[varKey]*core.ScanStep{}
	unresolvedIdx := map[varKey]int{}
	for i, s := range ex.Steps {
		ss, ok := s.(*core.ScanStep)
		if !ok || ss.Collection != nil {
			continue
		}
		ip, ok := ss.Pattern.(*core.IdentPattern)
		if !ok {
			// Only the single-identifier extent-scan shape is supported;
			// anything else (e.g. a tuple pattern fed directly by a join
			// generator) is left ungrounded here — see the package's
			// DESIGN.md entry on join promotion.
			continue
		}
		k := varKey{name: ip.Name, ordinal: ip.Ordinal}
		unresolved[k] = ss
		unresolvedIdx[k] = i
	}
	if len(unresolved) == 0 {
		return ex, nil
	}

	gens := map[varKey]*generator{}
	for _, s := range ex.Steps {
		ws, ok := s.(*core.WhereStep)
		if !ok {
			continue
		}
		for _, conj := range conjuncts(ws.Cond) {
			for k, g := range deriveCandidates(conj) {
				mergeBest(gens, k, g)
			}
		}
	}

	newSteps := append([]core.FromStep{}, ex.Steps...)
	dupeAfter := map[int]*core.DistinctStep{}
	for k, ss := range unresolved {
		g, ok := gens[k]
		if !ok {
			return nil, errors.New("ground", errors.UngroundedPattern, errors.GRD001, ex.Position(),
				fmt.Sprintf("variable %q has no finite generator in this query's where-clauses", k.name), nil)
		}
		i := unresolvedIdx[k]
		grounded := &core.ScanStep{Pattern: ss.Pattern, Collection: g.source, Cond: ss.Cond, Bindings: ss.Bindings}
		newSteps[i] = grounded
		if g.mayDupe {
			dupeAfter[i] = &core.DistinctStep{Bindings: ss.Bindings}
		}
	}
	// Insert from the back so no insertion shifts an index still in use.
	for i := len(ex.Steps) - 1; i >= 0; i-- {
		if d, ok := dupeAfter[i]; ok {
			newSteps = insertAfter(newSteps, i, d)
		}
	}

	return &core.From{Node: ex.Node, Steps: newSteps}, nil
}

func insertAfter(steps []core.FromStep, i int, s core.FromStep) []core.FromStep {
	out := make([]core.FromStep, 0, len(steps)+1)
	out = append(out, steps[:i+1]...)
	out = append(out, s)
	out = append(out, steps[i+1:]...)
	return out
}

// mergeBest keeps the lower-cardinality generator for k, per the
// "cache stores ... the best (lowest cardinality) generator found".
func mergeBest(gens map[varKey]*generator, k varKey, g *generator) {
	if g == nil {
		return
	}
	cur, ok := gens[k]
	if !ok || g.card < cur.card {
		gens[k] = g
	}
}

// conjuncts flattens the Case shape internal/infer desugars `andalso`
// into — Case{Scrutinee: L, Arms: [true => R, false => Lit{false}]} —
// back into its operand list. A non-conjunction expression is returned
// as its own single-element list.
func conjuncts(e core.Expr) []core.Expr {
	if l, r, ok := asAndAlso(e); ok {
		return append(conjuncts(l), conjuncts(r)...)
	}
	return []core.Expr{e}
}

func asAndAlso(e core.Expr) (l, r core.Expr, ok bool) {
	c, isCase := e.(*core.Case)
	if !isCase || len(c.Arms) != 2 {
		return nil, nil, false
	}
	a0, a1 := c.Arms[0], c.Arms[1]
	if !isLitPatternBool(a0.Pattern, true) || !isLitPatternBool(a1.Pattern, false) {
		return nil, nil, false
	}
	if !isLitBool(a1.Body, false) {
		return nil, nil, false
	}
	return c.Scrutinee, a0.Body, true
}

func asOrElse(e core.Expr) (l, r core.Expr, ok bool) {
	c, isCase := e.(*core.Case)
	if !isCase || len(c.Arms) != 2 {
		return nil, nil, false
	}
	a0, a1 := c.Arms[0], c.Arms[1]
	if !isLitPatternBool(a0.Pattern, true) || !isLitPatternBool(a1.Pattern, false) {
		return nil, nil, false
	}
	if !isLitBool(a0.Body, true) {
		return nil, nil, false
	}
	return c.Scrutinee, a1.Body, true
}

func isLitPatternBool(p core.Pattern, want bool) bool {
	lp, ok := p.(*core.LitPattern)
	if !ok {
		return false
	}
	b, ok := lp.Value.(bool)
	return ok && b == want
}

func isLitBool(e core.Expr, want bool) bool {
	lit, ok := e.(*core.Lit)
	if !ok {
		return false
	}
	b, ok := lit.Value.(bool)
	return ok && b == want
}

// asBinOp recovers the curried-application shape internal/infer lowers
// a BinOp into: App(App(Var(op), a), b).
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

func asVar(e core.Expr) (*core.Var, bool) {
	v, ok := e.(*core.Var)
	return v, ok
}

func flip(op string) string {
	switch op {
	case "<":
		return ">"
	case "<=":
		return ">="
	case ">":
		return "<"
	case ">=":
		return "<="
	}
	return op
}

// deriveCandidates inspects one where-clause conjunct and returns the
// generator(s) it directly implies, per the generator-discovery
// rules.
func deriveCandidates(e core.Expr) map[varKey]*generator {
	if l, r, ok := asOrElse(e); ok {
		return unionCandidates(deriveCandidates(l), deriveCandidates(r))
	}
	op, a, b, ok := asBinOp(e)
	if !ok {
		return nil
	}
	switch op {
	case "elem":
		if v, ok := asVar(a); ok {
			return map[varKey]*generator{keyOf(v): {kind: genElem, source: b, card: cardFinite}}
		}
		// A tuple generator `(x, y) elem edges` needs join promotion
		//, not yet implemented —
		// see this package's DESIGN.md entry.
		return nil
	case "=":
		if v, ok := asVar(a); ok {
			if _, isLit := b.(*core.Lit); isLit {
				return map[varKey]*generator{keyOf(v): {kind: genLiteral, source: singletonList(v.Type(), b), card: cardSingleton}}
			}
		}
		if v, ok := asVar(b); ok {
			if _, isLit := a.(*core.Lit); isLit {
				return map[varKey]*generator{keyOf(v): {kind: genLiteral, source: singletonList(v.Type(), a), card: cardSingleton}}
			}
		}
		return nil
	case "<", "<=", ">", ">=", "<>":
		if v, ok := asVar(a); ok {
			if _, isLit := b.(*core.Lit); isLit {
				return map[varKey]*generator{keyOf(v): {kind: genInterval, source: intervalExpr(op, v.Type(), b), card: cardFinite}}
			}
		}
		if v, ok := asVar(b); ok {
			if _, isLit := a.(*core.Lit); isLit {
				return map[varKey]*generator{keyOf(v): {kind: genInterval, source: intervalExpr(flip(op), v.Type(), a), card: cardFinite}}
			}
		}
		return nil
	}
	return nil
}

// unionCandidates combines two orelse branches' candidate maps: a
// variable generator survives only if both branches constrain it (an
// alternative that leaves a variable unconstrained doesn't actually
// bound it), wrapped in a generator over the union of the two sources.
func unionCandidates(l, r map[varKey]*generator) map[varKey]*generator {
	out := map[varKey]*generator{}
	for k, lg := range l {
		rg, ok := r[k]
		if !ok {
			continue
		}
		card := lg.card
		if rg.card > card {
			card = rg.card
		}
		out[k] = &generator{kind: genUnion, source: unionExpr(lg.source, rg.source), card: card, mayDupe: true}
	}
	return out
}

var builtinRangeOp = map[string]string{
	"<":  "__range_lt",
	"<=": "__range_le",
	">":  "__range_gt",
	">=": "__range_ge",
	"<>": "__range_ne",
}

// intervalExpr builds a call to the builtin range function matching op,
// applied to the literal bound. internal/builtins supplies these names;
// each enumerates the finite slice of elemT's ordering that satisfies
// `_ op bound`.
func intervalExpr(op string, elemT types.Type, bound core.Expr) core.Expr {
	fnName := builtinRangeOp[op]
	listT := &types.TList{Elem: elemT}
	fn := &core.Var{Node: core.Node{Typ: listT}, Name: fnName, Ordinal: 0}
	return &core.App{Node: core.Node{Typ: listT}, Fun: fn, Arg: bound}
}

// singletonList builds the one-element list `[lit]` via the same
// cons/nil application chain internal/infer uses for list literals.
func singletonList(elemT types.Type, lit core.Expr) core.Expr {
	listT := &types.TList{Elem: elemT}
	nilNode := &core.Var{Node: core.Node{Typ: listT}, Name: "nil", Ordinal: 0}
	consFn := &core.Var{Node: core.Node{Typ: listT}, Name: "::", Ordinal: 0}
	partial := &core.App{Node: core.Node{Typ: listT}, Fun: consFn, Arg: lit}
	return &core.App{Node: core.Node{Typ: listT}, Fun: partial, Arg: nilNode}
}

// unionExpr builds a call to the builtin set-union helper combining two
// collection-typed expressions of the same element type.
func unionExpr(a, b core.Expr) core.Expr {
	fn := &core.Var{Node: core.Node{Typ: a.Type()}, Name: "__range_union", Ordinal: 0}
	partial := &core.App{Node: core.Node{Typ: a.Type()}, Fun: fn, Arg: a}
	return &core.App{Node: core.Node{Typ: a.Type()}, Fun: partial, Arg: b}
}
