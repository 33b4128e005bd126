// Package coverage implements the pattern coverage and exhaustiveness
// checker: each pattern in a match arm list is compiled to a propositional
// formula over a per-path slot allocation, and internal/sat decides
// whether a later arm (or an implicit wildcard, for exhaustiveness) adds
// any behavior the earlier arms don't already cover.
package coverage

import (
	"fmt"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/errors"
	"github.com/morel-lang/morelc/internal/sat"
	"github.com/morel-lang/morelc/internal/types"
)

// path addresses one slot inside the value being matched: the root, or a
// tuple component / record field / constructor argument reached by a
// chain of steps from it. Two patterns that address the same path get
// the same cache key, so their tag/literal variables are shared.
type path string

const rootPath path = "$"

func (p path) child(step string) path { return p + "." + path(step) }

// checker compiles a sequence of patterns against a known scrutinee type
// into one shared CNF formula, allocating variables lazily per path.
type checker struct {
	sys      *types.System
	f        *sat.Formula
	tagVars  map[path]map[string]sat.Var // path -> (tag name -> var), for datatypes/bool
	litVars  map[path]map[string]sat.Var // path -> (literal repr -> var)
	numVars  int
	universe map[path]bool // paths for which an ExactlyOne/literal constraint has been added
}

func newChecker(sys *types.System) *checker {
	return &checker{
		sys:      sys,
		f:        sat.New(0),
		tagVars:  map[path]map[string]sat.Var{},
		litVars:  map[path]map[string]sat.Var{},
		universe: map[path]bool{},
	}
}

func (c *checker) freshVar() sat.Var {
	v := sat.Var(c.numVars)
	c.numVars++
	return v
}

// tagVar returns the boolean variable standing for "the value at p has
// tag/arm name". Constructing it the first time for a given path
// allocates a fresh slot; later calls for the same (path, name) reuse it.
func (c *checker) tagVar(p path, name string) sat.Var {
	m := c.tagVars[p]
	if m == nil {
		m = map[string]sat.Var{}
		c.tagVars[p] = m
	}
	if v, ok := m[name]; ok {
		return v
	}
	v := c.freshVar()
	m[name] = v
	return v
}

func (c *checker) litVar(p path, repr string) sat.Var {
	m := c.litVars[p]
	if m == nil {
		m = map[string]sat.Var{}
		c.litVars[p] = m
	}
	if v, ok := m[repr]; ok {
		return v
	}
	v := c.freshVar()
	m[repr] = v
	return v
}

// declareExclusive installs the mutual-exclusion constraint over the tag
// variables at p once per path (repeat calls are no-ops), :
// "exactly one tag per instance".
func (c *checker) declareExclusive(p path, vs ...sat.Var) {
	if c.universe[p] {
		return
	}
	c.universe[p] = true
	c.f.ExactlyOne(vs...)
}

// boolTags are the two constant tags a boolean scrutinee's slot can take.
var boolTags = []string{"true", "false"}

// listTags are the two constant tags a list scrutinee's slot can take:
// CONS (with head/tail sub-slots) or NIL.
var listTags = []string{"cons", "nil"}

// formula returns the conjunction of literals that encodes "the value
// matches pat", given pat addresses scrutT at path p.
func (c *checker) formula(p path, pat core.Pattern, scrutT types.Type) sat.Clause {
	switch pat := pat.(type) {
	case *core.Wildcard, *core.IdentPattern, *core.AsPattern:
		// Wildcard and IdentPattern match unconditionally; no constraint
		// to add. An AsPattern constrains exactly what its inner pattern
		// does, so it recurses into Inner.
		if ap, ok := pat.(*core.AsPattern); ok {
			return c.formula(p, ap.Inner, scrutT)
		}
		return nil

	case *core.LitPattern:
		return c.litFormula(p, pat.Value, scrutT)

	case *core.TuplePattern:
		tt, ok := types.Resolve(scrutT).(*types.TTuple)
		if !ok {
			return nil
		}
		var out sat.Clause
		for i, ep := range pat.Elems {
			childT := types.Type(nil)
			if i < len(tt.Elems) {
				childT = tt.Elems[i]
			}
			out = append(out, c.formula(p.child(fmt.Sprintf("%d", i)), ep, childT)...)
		}
		return out

	case *core.RecordPattern:
		rt, ok := types.Resolve(scrutT).(*types.TRecord)
		var out sat.Clause
		for _, fp := range pat.Fields {
			var childT types.Type
			if ok {
				childT = rt.Fields[fp.Label]
			}
			out = append(out, c.formula(p.child(fp.Label), fp.Pattern, childT)...)
		}
		return out

	case *core.NullaryCtorPattern:
		return c.ctorFormula(p, pat.Name, nil, scrutT)

	case *core.CtorPattern:
		return c.ctorFormula(p, pat.Name, pat.Arg, scrutT)

	case *core.ConsPattern:
		elemT := listElem(scrutT)
		vs := c.declareListTags(p)
		out := sat.Clause{sat.Pos(vs[0])}
		out = append(out, c.formula(p.child("head"), pat.Head, elemT)...)
		out = append(out, c.formula(p.child("tail"), pat.Tail, scrutT)...)
		return out

	case *core.ListPattern:
		elemT := listElem(scrutT)
		cur := p
		var out sat.Clause
		for _, ep := range pat.Elems {
			vs := c.declareListTags(cur)
			out = append(out, sat.Pos(vs[0]))
			out = append(out, c.formula(cur.child("head"), ep, elemT)...)
			cur = cur.child("tail")
		}
		vs := c.declareListTags(cur)
		out = append(out, sat.Pos(vs[1]))
		return out
	}
	return nil
}

func listElem(t types.Type) types.Type {
	switch t := types.Resolve(t).(type) {
	case *types.TList:
		return t.Elem
	case *types.TBag:
		return t.Elem
	}
	return nil
}

func (c *checker) declareListTags(p path) []sat.Var {
	vs := make([]sat.Var, len(listTags))
	for i, tag := range listTags {
		vs[i] = c.tagVar(p, tag)
	}
	c.declareExclusive(p, vs...)
	return vs
}

func (c *checker) ctorFormula(p path, name string, arg core.Pattern, scrutT types.Type) sat.Clause {
	data, ok := types.Resolve(scrutT).(*types.TData)
	var argT types.Type
	names := []string{name}
	if ok {
		names = names[:0]
		for _, ct := range data.Ctors {
			names = append(names, ct.Name)
			if ct.Name == name {
				argT = ct.Arg
			}
		}
	}
	vs := make([]sat.Var, len(names))
	var selfVar sat.Var
	for i, n := range names {
		vs[i] = c.tagVar(p, n)
		if n == name {
			selfVar = vs[i]
		}
	}
	c.declareExclusive(p, vs...)
	out := sat.Clause{sat.Pos(selfVar)}
	if arg != nil {
		out = append(out, c.formula(p.child("$arg"), arg, argT)...)
	}
	return out
}

func (c *checker) litFormula(p path, value interface{}, scrutT types.Type) sat.Clause {
	if b, ok := value.(bool); ok {
		vs := make([]sat.Var, len(boolTags))
		for i, tag := range boolTags {
			vs[i] = c.tagVar(p, tag)
		}
		c.declareExclusive(p, vs...)
		want := "false"
		if b {
			want = "true"
		}
		return sat.Clause{sat.Pos(c.tagVar(p, want))}
	}
	repr := fmt.Sprintf("%v", value)
	return sat.Clause{sat.Pos(c.litVar(p, repr))}
}

// negate returns a formula (as extra clauses appended to dst) asserting
// the logical negation of the conjunction lits, i.e. at least one literal
// in lits is false. CNF negation of a conjunction of unit facts is the
// single clause of their negations; the arm formulas built by formula
// are a conjunction (returned as a Clause purely for convenience, not
// because the literals are disjunctive), so negating them for the
// running "not yet covered" accumulator means a single clause of
// negated literals.
func negate(lits sat.Clause) sat.Clause {
	out := make(sat.Clause, len(lits))
	for i, l := range lits {
		out[i] = sat.Literal{V: l.V, Neg: !l.Neg}
	}
	return out
}

// Check runs the coverage/exhaustiveness procedure over arms
// (already-lowered Core patterns) matching a value of type scrutT.
// It reports the index of the first redundant arm (an arm whose formula
// is unsatisfiable once conjoined with the negation of every earlier
// arm) and whether the whole arm list is exhaustive.
func Check(sys *types.System, arms []core.Pattern, scrutT types.Type) (firstRedundant int, exhaustive bool) {
	c := newChecker(sys)
	var negPrior []sat.Clause // one clause per prior arm's negation
	firstRedundant = -1

	addClauses := func(extra ...sat.Clause) *sat.Formula {
		f := sat.New(c.numVars)
		f.Clauses = append(f.Clauses, c.f.Clauses...)
		f.Clauses = append(f.Clauses, extra...)
		return f
	}

	for i, pat := range arms {
		armLits := c.formula(rootPath, pat, scrutT)
		extra := append([]sat.Clause{}, negPrior...)
		// armLits is a conjunction; reaching this arm at all (p ∧
		// ¬f0 ∧ … ∧ ¬f(i-1)) requires each of its literals individually
		// true, so add each as its own unit clause.
		for _, l := range armLits {
			extra = append(extra, sat.Clause{l})
		}
		f := addClauses(extra...)
		reachable, _ := sat.Solve(f)
		if !reachable && firstRedundant == -1 {
			firstRedundant = i
		}
		negPrior = append(negPrior, negate(armLits))
	}

	// Exhaustiveness: is a wildcard (no constraints) covered by the
	// arms so far, i.e. is ¬f0 ∧ … ∧ ¬fN unsatisfiable?
	f := addClauses(negPrior...)
	wildcardSat, _ := sat.Solve(f)
	exhaustive = !wildcardSat
	return firstRedundant, exhaustive
}

// CheckCase validates a surface case expression's arm patterns and
// returns a coverage error (COV001/COV002) if it is non-exhaustive or
// contains a redundant arm, nil otherwise.
func CheckCase(sys *types.System, arms []core.Pattern, scrutT types.Type, pos ast.Pos) error {
	redundant, exhaustive := Check(sys, arms, scrutT)
	return errorFor(redundant, exhaustive, pos)
}

// errorFor turns a Check result into the COV001/COV002 error it implies,
// or nil if the arm list is clean.
func errorFor(redundant int, exhaustive bool, pos ast.Pos) error {
	if redundant != -1 {
		return errors.New("coverage", errors.RedundantMatch, errors.COV002, pos,
			fmt.Sprintf("match arm %d is unreachable: every value it matches is already matched by an earlier arm", redundant+1), nil)
	}
	if !exhaustive {
		return errors.New("coverage", errors.NonExhaustiveMatch, errors.COV001, pos,
			"match is not exhaustive: some values of the scrutinee's type are not matched by any arm", nil)
	}
	return nil
}
