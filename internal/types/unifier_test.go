package types

import (
	"fmt"
	"testing"
)

func TestUnifySimpleSuccess(t *testing.T) {
	u := NewUnifier()
	sub, outcome := u.Unify([]Equation{
		{A: &TVar{Id: 0}, B: &TPrim{Name: Int}},
		{A: &TFunc{Param: &TVar{Id: 0}, Result: &TVar{Id: 1}}, B: &TFunc{Param: &TPrim{Name: Int}, Result: &TPrim{Name: Bool}}},
	}, nil, nil, nil)

	if outcome.Kind != Success {
		t.Fatalf("expected Success, got %v (%s)", outcome.Kind, outcome.Reason)
	}
	if !Equals(Apply(sub, &TVar{Id: 1}), &TPrim{Name: Bool}) {
		t.Errorf("t1 = %s, want bool", Apply(sub, &TVar{Id: 1}))
	}
}

func TestUnifyOccursCheckFails(t *testing.T) {
	u := NewUnifier()
	_, outcome := u.Unify([]Equation{
		{A: &TVar{Id: 0}, B: &TList{Elem: &TVar{Id: 0}}},
	}, nil, nil, nil)
	if outcome.Kind != Failure {
		t.Fatalf("expected Failure from occurs check, got %v", outcome.Kind)
	}
}

func TestUnifyArityMismatchFails(t *testing.T) {
	u := NewUnifier()
	_, outcome := u.Unify([]Equation{
		{A: &TTuple{Elems: []Type{&TPrim{Name: Int}, &TPrim{Name: Int}}}, B: &TTuple{Elems: []Type{&TPrim{Name: Int}}}},
	}, nil, nil, nil)
	if outcome.Kind != Failure {
		t.Fatalf("expected Failure from arity mismatch, got %v", outcome.Kind)
	}
}

func TestUnifyIdempotentSubstitution(t *testing.T) {
	u := NewUnifier()
	sub, outcome := u.Unify([]Equation{
		{A: &TVar{Id: 0}, B: &TVar{Id: 1}},
		{A: &TVar{Id: 1}, B: &TPrim{Name: Int}},
	}, nil, nil, nil)
	if outcome.Kind != Success {
		t.Fatalf("unify failed: %s", outcome.Reason)
	}
	once := Apply(sub, &TVar{Id: 0})
	twice := Apply(sub, once)
	if !Equals(once, twice) {
		t.Errorf("substitution is not idempotent: once=%s twice=%s", once, twice)
	}
}

// Overload resolution: plus(1,2) : int, plus(1.0,2.0) : real.
func TestConstraintCommitsToSingleSurvivor(t *testing.T) {
	candidates := []OverloadCandidate{
		{Param: &TTuple{Elems: []Type{&TPrim{Name: Int}, &TPrim{Name: Int}}}, Result: &TPrim{Name: Int}},
		{Param: &TTuple{Elems: []Type{&TPrim{Name: Real}, &TPrim{Name: Real}}}, Result: &TPrim{Name: Real}},
	}
	u := NewUnifier()
	sub, outcome := u.Unify(
		[]Equation{{A: &TVar{Id: 0}, B: &TTuple{Elems: []Type{&TPrim{Name: Int}, &TPrim{Name: Int}}}}},
		nil,
		[]*Constraint{{Name: "plus", ArgVar: 0, ResultVar: 1, Candidates: candidates}},
		nil,
	)
	if outcome.Kind != Success {
		t.Fatalf("expected Success, got %v (%s)", outcome.Kind, outcome.Reason)
	}
	if !Equals(Apply(sub, &TVar{Id: 1}), &TPrim{Name: Int}) {
		t.Errorf("resolved result = %s, want int", Apply(sub, &TVar{Id: 1}))
	}
}

func TestConstraintAmbiguousWithoutArgInfoRetries(t *testing.T) {
	candidates := []OverloadCandidate{
		{Param: &TPrim{Name: Int}, Result: &TPrim{Name: Int}},
		{Param: &TPrim{Name: Real}, Result: &TPrim{Name: Real}},
	}
	u := NewUnifier()
	_, outcome := u.Unify(nil, nil,
		[]*Constraint{{Name: "plus", ArgVar: 0, ResultVar: 1, Candidates: candidates}}, nil)
	if outcome.Kind != Retry {
		t.Fatalf("expected Retry while ambiguous, got %v", outcome.Kind)
	}
}

func TestActionFiresOnceVariableBound(t *testing.T) {
	fired := false
	u := NewUnifier()
	_, outcome := u.Unify(
		[]Equation{{A: &TVar{Id: 0}, B: &TPrim{Name: Int}}},
		[]*Action{{Var: 0, Run: func(sub Substitution, bound Type) ([]Equation, error) {
			fired = true
			if !Equals(bound, &TPrim{Name: Int}) {
				t.Errorf("action saw bound=%s, want int", bound)
			}
			return nil, nil
		}}},
		nil, nil,
	)
	if outcome.Kind != Success {
		t.Fatalf("unify failed: %s", outcome.Reason)
	}
	if !fired {
		t.Errorf("action never fired")
	}
}

func TestActionErrorSurfacesAsFailure(t *testing.T) {
	u := NewUnifier()
	_, outcome := u.Unify(
		[]Equation{{A: &TVar{Id: 0}, B: &TPrim{Name: Int}}},
		[]*Action{{Var: 0, Run: func(sub Substitution, bound Type) ([]Equation, error) {
			return nil, fmt.Errorf("no field %q in resolved record", "name")
		}}},
		nil, nil,
	)
	if outcome.Kind != Failure {
		t.Fatalf("expected Failure, got %v", outcome.Kind)
	}
}
