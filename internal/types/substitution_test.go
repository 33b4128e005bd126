package types

import "testing"

func TestGeneralizeQuantifiesOnlyFreshVars(t *testing.T) {
	// len : 'a list -> int, where 'a is t5 and nothing in the environment
	// mentions t5.
	t5 := &TVar{Id: 5}
	fnType := &TFunc{Param: &TList{Elem: t5}, Result: &TPrim{Name: Int}}

	generalized := Generalize(fnType, map[int]bool{})
	forall, ok := generalized.(*TForall)
	if !ok {
		t.Fatalf("Generalize did not produce a TForall: %T", generalized)
	}
	if forall.NumParams != 1 {
		t.Fatalf("expected 1 quantified var, got %d", forall.NumParams)
	}
	if got := forall.String(); got != "forall 't0. 't0 list -> int" {
		t.Errorf("moniker = %q", got)
	}
}

func TestGeneralizeLeavesEnvFreeVarsOpen(t *testing.T) {
	t3 := &TVar{Id: 3}
	fnType := &TFunc{Param: t3, Result: t3}
	generalized := Generalize(fnType, map[int]bool{3: true})
	if _, ok := generalized.(*TForall); ok {
		t.Errorf("variable bound in the environment should not be generalized")
	}
}

func TestInstantiateProducesFreshVars(t *testing.T) {
	forall := &TForall{NumParams: 1, Body: &TFunc{Param: &TVar{Id: 0}, Result: &TVar{Id: 0}}}
	next := 100
	alloc := func() int { id := next; next++; return id }

	inst1 := Instantiate(forall, alloc)
	inst2 := Instantiate(forall, alloc)
	if Equals(inst1, inst2) {
		t.Errorf("two instantiations should allocate distinct variables: %s vs %s", inst1, inst2)
	}
	fn := inst1.(*TFunc)
	if !Equals(fn.Param, fn.Result) {
		t.Errorf("both occurrences of the bound variable should instantiate to the same fresh variable")
	}
}

func TestComposeAppliesFirstThenSecond(t *testing.T) {
	s1 := Substitution{0: &TVar{Id: 1}}
	s2 := Substitution{1: &TPrim{Name: Int}}
	composed := Compose(s1, s2)
	if !Equals(Apply(composed, &TVar{Id: 0}), &TPrim{Name: Int}) {
		t.Errorf("composed substitution did not chain: %s", Apply(composed, &TVar{Id: 0}))
	}
}
