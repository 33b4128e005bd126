package types

import "fmt"

// Equation is a single term-pair the unifier must make equal.
type Equation struct{ A, B Type }

// Action is a callback registered against a unifier variable; it fires
// the first time that variable is bound to a concrete type, and may
// extend the equation queue.
type Action struct {
	Var int
	Run func(sub Substitution, bound Type) ([]Equation, error)
}

// OverloadCandidate is one disjunct of a Constraint: a candidate
// (paramType, resultType) pair for an overloaded application.
type OverloadCandidate struct {
	Param, Result Type
}

// Constraint is a disjunctive restriction on (ArgVar, ResultVar), used to
// encode overload resolution at an application site.
type Constraint struct {
	Name       string
	ArgVar     int
	ResultVar  int
	Candidates []OverloadCandidate
}

func (c *Constraint) mentions(id int) bool { return c.ArgVar == id || c.ResultVar == id }

// OutcomeKind is the three-way result of a unification attempt.
type OutcomeKind int

const (
	Success OutcomeKind = iota
	Retry
	Failure
)

// Outcome reports how a Unify call concluded.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// Tracer receives diagnostic messages as the unifier runs; NoopTracer
// discards them.
type Tracer interface {
	Trace(format string, args ...interface{})
}

// NoopTracer implements Tracer by discarding every message.
type NoopTracer struct{}

func (NoopTracer) Trace(string, ...interface{}) {}

// Unifier performs first-order unification with occurs check, actions,
// and disjunctive constraints.
type Unifier struct {
	sub         Substitution
	actions     map[int][]*Action
	constraints []*Constraint
	queue       []Equation
	tracer      Tracer
}

// NewUnifier creates a unifier with an empty substitution.
func NewUnifier() *Unifier {
	return &Unifier{sub: make(Substitution)}
}

// Unify runs Martelli-Montanari unification over eqs, honoring actions
// and constraints, and reports a Success/Retry/Failure outcome. On
// Success the returned Substitution is idempotent.
func (u *Unifier) Unify(eqs []Equation, actions []*Action, constraints []*Constraint, tracer Tracer) (Substitution, Outcome) {
	if tracer == nil {
		tracer = NoopTracer{}
	}
	u.tracer = tracer
	u.actions = make(map[int][]*Action)
	for _, a := range actions {
		u.actions[a.Var] = append(u.actions[a.Var], a)
	}
	u.constraints = append([]*Constraint(nil), constraints...)
	u.queue = append([]Equation(nil), eqs...)

	if err := u.drain(); err != nil {
		return nil, Outcome{Kind: Failure, Reason: err.Error()}
	}

	// Resolve constraints against the now-stable substitution.
	var stillAmbiguous []*Constraint
	for _, c := range u.constraints {
		viable, err := u.viableCandidates(c)
		if err != nil {
			return nil, Outcome{Kind: Failure, Reason: err.Error()}
		}
		switch len(viable) {
		case 0:
			return nil, Outcome{Kind: Failure, Reason: fmt.Sprintf("no instance of %q matches the argument type", c.Name)}
		case 1:
			u.queue = append(u.queue,
				Equation{A: &TVar{Id: c.ArgVar}, B: viable[0].Param},
				Equation{A: &TVar{Id: c.ResultVar}, B: viable[0].Result},
			)
		default:
			stillAmbiguous = append(stillAmbiguous, c)
		}
	}
	u.constraints = stillAmbiguous

	if len(u.queue) > 0 {
		if err := u.drain(); err != nil {
			return nil, Outcome{Kind: Failure, Reason: err.Error()}
		}
	}

	if len(u.constraints) > 0 {
		return u.sub, Outcome{Kind: Retry, Reason: fmt.Sprintf("%d overload constraint(s) still ambiguous", len(u.constraints))}
	}
	return u.sub, Outcome{Kind: Success}
}

// drain processes the equation queue to a fixed point, applying
// decomposition, occurs check, and variable binding (with action firing).
func (u *Unifier) drain() error {
	for len(u.queue) > 0 {
		eq := u.queue[0]
		u.queue = u.queue[1:]

		t1 := Apply(u.sub, eq.A)
		t2 := Apply(u.sub, eq.B)
		if Equals(t1, t2) {
			continue
		}
		u.tracer.Trace("unify %s ~ %s", t1, t2)

		if err := u.unifyPair(t1, t2); err != nil {
			return err
		}
	}
	return nil
}

func (u *Unifier) unifyPair(t1, t2 Type) error {
	if v, ok := t1.(*TVar); ok {
		return u.bind(v.Id, t2)
	}
	if v, ok := t2.(*TVar); ok {
		return u.bind(v.Id, t1)
	}
	t1, t2 = Resolve(t1), Resolve(t2)

	switch a := t1.(type) {
	case *TPrim:
		b, ok := t2.(*TPrim)
		if !ok || a.Name != b.Name {
			return fmt.Errorf("cannot unify %s with %s", t1, t2)
		}
		return nil
	case *TFunc:
		b, ok := t2.(*TFunc)
		if !ok {
			return fmt.Errorf("cannot unify function type %s with %s", t1, t2)
		}
		u.queue = append(u.queue, Equation{A: a.Param, B: b.Param}, Equation{A: a.Result, B: b.Result})
		return nil
	case *TTuple:
		b, ok := t2.(*TTuple)
		if !ok || len(a.Elems) != len(b.Elems) {
			return fmt.Errorf("cannot unify %s with %s", t1, t2)
		}
		for i := range a.Elems {
			u.queue = append(u.queue, Equation{A: a.Elems[i], B: b.Elems[i]})
		}
		return nil
	case *TRecord:
		b, ok := t2.(*TRecord)
		if !ok || len(a.Fields) != len(b.Fields) {
			return fmt.Errorf("cannot unify %s with %s", t1, t2)
		}
		for _, l := range a.SortedLabels() {
			bt, ok := b.Fields[l]
			if !ok {
				return fmt.Errorf("record %s is missing field %q present in %s", t2, l, t1)
			}
			u.queue = append(u.queue, Equation{A: a.Fields[l], B: bt})
		}
		return nil
	case *TList:
		b, ok := t2.(*TList)
		if !ok {
			return fmt.Errorf("cannot unify list type %s with %s", t1, t2)
		}
		u.queue = append(u.queue, Equation{A: a.Elem, B: b.Elem})
		return nil
	case *TBag:
		b, ok := t2.(*TBag)
		if !ok {
			return fmt.Errorf("cannot unify bag type %s with %s", t1, t2)
		}
		u.queue = append(u.queue, Equation{A: a.Elem, B: b.Elem})
		return nil
	case *TData:
		b, ok := t2.(*TData)
		if !ok || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return fmt.Errorf("cannot unify %s with %s", t1, t2)
		}
		for i := range a.Args {
			u.queue = append(u.queue, Equation{A: a.Args[i], B: b.Args[i]})
		}
		return nil
	}
	return fmt.Errorf("cannot unify %s with %s", t1, t2)
}

// bind binds variable id to t and performs the occurs check. When t is
// concrete it fires every registered action for id; when t is another
// variable, id's actions move to that variable and fire once it is
// bound to a concrete type. Constraints are not rechecked here: Unify
// checks them once the equation queue has drained.
func (u *Unifier) bind(id int, t Type) error {
	if v, ok := t.(*TVar); ok && v.Id == id {
		return nil
	}
	if occurs(id, t) {
		return fmt.Errorf("occurs check failed: 't%d occurs in %s", id, t)
	}
	// Keep substitutions idempotent: fully resolve t through the current
	// substitution before recording it, and rewrite earlier entries that
	// mention id.
	t = Apply(u.sub, t)
	u.sub[id] = t
	single := Substitution{id: t}
	for k, v := range u.sub {
		u.sub[k] = Apply(single, v)
	}
	if tv, ok := t.(*TVar); ok {
		u.actions[tv.Id] = append(u.actions[tv.Id], u.actions[id]...)
		delete(u.actions, id)
		return nil
	}

	for _, a := range u.actions[id] {
		newEqs, err := a.Run(u.sub, t)
		if err != nil {
			return err
		}
		u.queue = append(u.queue, newEqs...)
	}
	delete(u.actions, id)
	return nil
}

func occurs(id int, t Type) bool {
	switch t := t.(type) {
	case *TVar:
		return t.Id == id
	case *TFunc:
		return occurs(id, t.Param) || occurs(id, t.Result)
	case *TTuple:
		for _, e := range t.Elems {
			if occurs(id, e) {
				return true
			}
		}
	case *TRecord:
		for _, f := range t.Fields {
			if occurs(id, f) {
				return true
			}
		}
	case *TList:
		return occurs(id, t.Elem)
	case *TBag:
		return occurs(id, t.Elem)
	case *TData:
		for _, a := range t.Args {
			if occurs(id, a) {
				return true
			}
		}
	case *TAlias:
		return occurs(id, t.Underlying)
	}
	return false
}

// viableCandidates returns the candidates of c that do not immediately
// contradict the current substitution, without committing to any of
// them.
func (u *Unifier) viableCandidates(c *Constraint) ([]OverloadCandidate, error) {
	argT := Apply(u.sub, &TVar{Id: c.ArgVar})
	resT := Apply(u.sub, &TVar{Id: c.ResultVar})

	var viable []OverloadCandidate
	for _, cand := range c.Candidates {
		probe := NewUnifier()
		probe.sub = cloneSub(u.sub)
		_, outcome := probe.Unify(
			[]Equation{{A: argT, B: cand.Param}, {A: resT, B: cand.Result}},
			nil, nil, NoopTracer{})
		if outcome.Kind == Failure {
			continue
		}
		viable = append(viable, cand)
	}
	return viable, nil
}

// PendingConstraints returns the constraints left ambiguous by the most
// recent Unify call (only meaningful after an Outcome of Retry). A
// caller resubmits them via another Unify call, reusing this same
// Unifier so its substitution persists across the retry. Actions do
// not: Unify replaces the registered actions with the ones passed to
// it.
func (u *Unifier) PendingConstraints() []*Constraint {
	return u.constraints
}

func cloneSub(s Substitution) Substitution {
	out := make(Substitution, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
