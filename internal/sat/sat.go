// Package sat implements a small DPLL propositional satisfiability
// solver. internal/coverage compiles pattern-coverage questions down to
// CNF formulas over this package's Var/Literal vocabulary and asks
// whether they are satisfiable.
package sat

// Var identifies one propositional variable. Variables are allocated
// densely starting at 0 by whatever builds the formula (internal/coverage
// allocates one per path/tag/literal slot).
type Var int

// Literal is a variable or its negation.
type Literal struct {
	V   Var
	Neg bool
}

// Pos returns the positive literal for v.
func Pos(v Var) Literal { return Literal{V: v} }

// NegLit returns the negative literal for v.
func NegLit(v Var) Literal { return Literal{V: v, Neg: true} }

// Clause is a disjunction of literals.
type Clause []Literal

// Formula is a conjunction of clauses (CNF).
type Formula struct {
	Clauses []Clause
	NumVars int
}

// New creates an empty formula over numVars variables (0..numVars-1).
func New(numVars int) *Formula {
	return &Formula{NumVars: numVars}
}

// AddClause appends a clause to the formula.
func (f *Formula) AddClause(lits ...Literal) {
	f.Clauses = append(f.Clauses, Clause(lits))
}

// AtMostOne adds the pairwise "not both" clauses that make vs mutually
// exclusive: for every pair i<j, ¬vi ∨ ¬vj.
func (f *Formula) AtMostOne(vs ...Var) {
	for i := 0; i < len(vs); i++ {
		for j := i + 1; j < len(vs); j++ {
			f.AddClause(NegLit(vs[i]), NegLit(vs[j]))
		}
	}
}

// ExactlyOne adds an at-least-one clause plus AtMostOne's pairwise
// exclusions, encoding that exactly one of vs holds — the encoding 
// uses for a datatype's mutually exclusive tag variables.
func (f *Formula) ExactlyOne(vs ...Var) {
	lits := make(Clause, len(vs))
	for i, v := range vs {
		lits[i] = Pos(v)
	}
	f.AddClause(lits...)
	f.AtMostOne(vs...)
}

// assignment tracks each variable's current value during search:
// 0 = unassigned, 1 = true, -1 = false.
type assignment []int8

func (a assignment) value(l Literal) int8 {
	v := a[l.V]
	if v == 0 {
		return 0
	}
	if l.Neg {
		return -v
	}
	return v
}

// Solve runs DPLL with unit propagation (no pure-literal elimination)
// and reports whether f is satisfiable. When satisfiable, the returned
// map gives a value for every variable the search assigned; a variable
// it left unassigned (one absent from every clause, or one whose
// clauses were already satisfied by other literals) is omitted, and any
// value for it keeps the assignment satisfying.
func Solve(f *Formula) (bool, map[Var]bool) {
	a := make(assignment, f.NumVars)
	ok := dpll(f.Clauses, a)
	if !ok {
		return false, nil
	}
	out := make(map[Var]bool, f.NumVars)
	for v := 0; v < f.NumVars; v++ {
		if a[v] != 0 {
			out[Var(v)] = a[v] == 1
		}
	}
	return true, out
}

// dpll searches for a satisfying assignment of clauses given the partial
// assignment a, mutating a in place along whichever branch succeeds.
func dpll(clauses []Clause, a assignment) bool {
	for {
		changed, conflict := unitPropagate(clauses, a)
		if conflict {
			return false
		}
		if !changed {
			break
		}
	}

	status, unassigned := evalClauses(clauses, a)
	switch status {
	case satStatusSAT:
		return true
	case satStatusConflict:
		return false
	}

	v := unassigned
	saved := append(assignment(nil), a...)
	a[v] = 1
	if dpll(clauses, a) {
		return true
	}
	copy(a, saved)
	a[v] = -1
	if dpll(clauses, a) {
		return true
	}
	copy(a, saved)
	a[v] = 0
	return false
}

type satStatus int

const (
	satStatusUnknown satStatus = iota
	satStatusSAT
	satStatusConflict
)

// evalClauses checks every clause against the current assignment. It
// returns satStatusSAT if every clause is already satisfied,
// satStatusConflict if some clause is already falsified, or
// satStatusUnknown with the first unassigned variable found otherwise.
func evalClauses(clauses []Clause, a assignment) (satStatus, Var) {
	allSat := true
	firstUnassigned := Var(-1)
	for _, c := range clauses {
		satisfied := false
		hasUnassigned := false
		for _, l := range c {
			switch a.value(l) {
			case 1:
				satisfied = true
			case 0:
				hasUnassigned = true
				if firstUnassigned == -1 {
					firstUnassigned = l.V
				}
			}
		}
		if satisfied {
			continue
		}
		if !hasUnassigned {
			return satStatusConflict, -1
		}
		allSat = false
	}
	if allSat {
		return satStatusSAT, -1
	}
	return satStatusUnknown, firstUnassigned
}

// unitPropagate repeatedly finds a clause with exactly one unassigned
// literal and all others false, and forces that literal true, until no
// more unit clauses remain. Returns conflict=true if propagation forces
// a variable both ways.
func unitPropagate(clauses []Clause, a assignment) (changed bool, conflict bool) {
	for _, c := range clauses {
		var unit Literal
		unitCount := 0
		satisfied := false
		for _, l := range c {
			switch a.value(l) {
			case 1:
				satisfied = true
			case 0:
				unit = l
				unitCount++
			}
		}
		if satisfied || unitCount != 1 {
			continue
		}
		want := int8(1)
		if unit.Neg {
			want = -1
		}
		if a[unit.V] != 0 && a[unit.V] != want {
			return changed, true
		}
		if a[unit.V] == 0 {
			a[unit.V] = want
			changed = true
		}
	}
	return changed, false
}
