package types

import "testing"

func TestMonikers(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"prim", &TPrim{Name: Int}, "int"},
		{"var", &TVar{Id: 3}, "'t3"},
		{"func", &TFunc{Param: &TPrim{Name: Int}, Result: &TPrim{Name: Bool}}, "int -> bool"},
		{"list", &TList{Elem: &TPrim{Name: Int}}, "int list"},
		{"bag", &TBag{Elem: &TPrim{Name: Int}}, "int bag"},
		{
			"record sorted",
			&TRecord{Fields: map[string]Type{"y": &TPrim{Name: Int}, "x": &TPrim{Name: Bool}}},
			"{x: bool, y: int}",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.typ.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTupleAsRecordUsesOrdinalLabels(t *testing.T) {
	tup := &TTuple{Elems: []Type{&TPrim{Name: Int}, &TPrim{Name: String}}}
	rec := TupleAsRecord(tup)
	if len(rec.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(rec.Fields))
	}
	if !Equals(rec.Fields["1"], &TPrim{Name: Int}) || !Equals(rec.Fields["2"], &TPrim{Name: String}) {
		t.Errorf("unexpected tuple-as-record fields: %v", rec.Fields)
	}
}

func TestEqualsIgnoresRecordConstructionOrder(t *testing.T) {
	a := &TRecord{Fields: map[string]Type{"a": &TPrim{Name: Int}, "b": &TPrim{Name: Bool}}}
	b := &TRecord{Fields: map[string]Type{"b": &TPrim{Name: Bool}, "a": &TPrim{Name: Int}}}
	if !Equals(a, b) {
		t.Errorf("records with same fields in different construction order should be equal")
	}
}

func TestEqualsResolvesAliases(t *testing.T) {
	alias := &TAlias{Name: "UserId", Underlying: &TPrim{Name: Int}}
	if !Equals(alias, &TPrim{Name: Int}) {
		t.Errorf("alias should be structurally equal to its underlying type")
	}
}

func TestFreeVarsThroughForall(t *testing.T) {
	// forall 0. 0 -> 1   (1 is free, 0 is bound)
	body := &TFunc{Param: &TVar{Id: 0}, Result: &TVar{Id: 1}}
	forall := &TForall{NumParams: 1, Body: body}
	free := FreeVars(forall)
	if _, ok := free[0]; ok {
		t.Errorf("bound variable 0 leaked into free set: %v", free)
	}
	if _, ok := free[1]; !ok {
		t.Errorf("expected free variable 1 in %v", free)
	}
}

func TestRecursiveDatatypeSelfReference(t *testing.T) {
	// datatype 'a list = Nil | Cons of 'a * 'a list
	listTy := &TData{Name: "list", Args: []Type{&TVar{Id: 0}}}
	listTy.Ctors = []CtorSig{
		{Name: "Nil"},
		{Name: "Cons", Arg: &TTuple{Elems: []Type{&TVar{Id: 0}, listTy}}},
	}
	cons, ok := listTy.CtorByName("Cons")
	if !ok {
		t.Fatal("Cons constructor not found")
	}
	tup := cons.Arg.(*TTuple)
	if tup.Elems[1] != Type(listTy) {
		t.Errorf("Cons argument should reference the enclosing datatype recursively")
	}
}
