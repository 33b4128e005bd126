package core

import (
	"testing"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/types"
	"github.com/morel-lang/morelc/testutil"
)

func intLit(v int, id uint64) *Lit {
	return &Lit{Node: Node{NodeID: id, Typ: &types.TPrim{Name: types.Int}}, Value: v}
}

func TestLambdaStringShowsSingleParam(t *testing.T) {
	param := &IdentPattern{Name: "x", Ordinal: 0, Typ: &types.TPrim{Name: types.Int}}
	lam := &Lambda{
		Node:  Node{NodeID: 1, Typ: &types.TFunc{Param: &types.TPrim{Name: types.Int}, Result: &types.TPrim{Name: types.Int}}},
		Param: param,
		Body:  &Var{Node: Node{NodeID: 2}, Name: "x", Ordinal: 0},
	}
	if got, want := lam.String(), "fn x => x"; got != want {
		t.Errorf("Lambda.String() = %q, want %q", got, want)
	}
}

func TestLetRecKeyword(t *testing.T) {
	pat := &IdentPattern{Name: "f", Ordinal: 0}
	let := &Let{
		Pattern: pat,
		Rec:     true,
		Value:   intLit(1, 1),
		Body:    intLit(2, 2),
	}
	if got := let.String(); got != "let rec f = 1 in 2" {
		t.Errorf("Let.String() = %q", got)
	}
}

func TestLetNonRecKeyword(t *testing.T) {
	let := &Let{
		Pattern: &IdentPattern{Name: "x", Ordinal: 0},
		Rec:     false,
		Value:   intLit(1, 1),
		Body:    intLit(2, 2),
	}
	if got := let.String(); got != "let x = 1 in 2" {
		t.Errorf("Let.String() = %q", got)
	}
}

func TestFieldAccessString(t *testing.T) {
	rec := &Var{Node: Node{NodeID: 1}, Name: "r", Ordinal: 0}
	fa := &FieldAccess{Record: rec, Field: "name"}
	if got := fa.String(); got != "r.name" {
		t.Errorf("FieldAccess.String() = %q", got)
	}
}

func TestVarsCollectsTuplePatternIdentifiers(t *testing.T) {
	pat := &TuplePattern{Elems: []Pattern{
		&IdentPattern{Name: "a", Ordinal: 0, Typ: &types.TPrim{Name: types.Int}},
		&Wildcard{},
		&IdentPattern{Name: "b", Ordinal: 1, Typ: &types.TPrim{Name: types.Bool}},
	}}
	vars := Vars(pat)
	if len(vars) != 2 {
		t.Fatalf("expected 2 bindings, got %d: %v", len(vars), vars)
	}
	if vars[0].Name != "a" || vars[1].Name != "b" {
		t.Errorf("Vars order/content wrong: %v", vars)
	}
}

func TestVarsCollectsAsPatternBothNames(t *testing.T) {
	pat := &AsPattern{
		Name:    "whole",
		Ordinal: 0,
		Inner:   &IdentPattern{Name: "x", Ordinal: 1},
	}
	vars := Vars(pat)
	if len(vars) != 2 {
		t.Fatalf("expected 2 bindings (as-name + inner), got %d", len(vars))
	}
	names := map[string]bool{vars[0].Name: true, vars[1].Name: true}
	if !names["whole"] || !names["x"] {
		t.Errorf("Vars missing expected names: %v", vars)
	}
}

func TestFromStepOutputThreadsBindings(t *testing.T) {
	scan := &ScanStep{
		Pattern:    &IdentPattern{Name: "x", Ordinal: 0, Typ: &types.TPrim{Name: types.Int}},
		Collection: &Var{Node: Node{NodeID: 1}, Name: "xs", Ordinal: 0},
		Bindings:   []Binding{{Name: "x", Ordinal: 0, Type: &types.TPrim{Name: types.Int}}},
	}
	if len(scan.Output()) != 1 || scan.Output()[0].Name != "x" {
		t.Errorf("ScanStep.Output() = %v", scan.Output())
	}
	if got := scan.String(); got != "x in xs" {
		t.Errorf("ScanStep.String() = %q", got)
	}
}

func TestFromStringJoinsSteps(t *testing.T) {
	f := &From{
		Steps: []FromStep{
			&ScanStep{Pattern: &IdentPattern{Name: "x", Ordinal: 0}, Collection: &Var{Node: Node{NodeID: 1}, Name: "xs"}},
			&WhereStep{Cond: &Var{Node: Node{NodeID: 2}, Name: "cond"}},
			&YieldStep{Result: &Var{Node: Node{NodeID: 3}, Name: "x", Ordinal: 0}},
		},
	}
	got := f.String()
	want := "from x in xs where cond yield x"
	if got != want {
		t.Errorf("From.String() = %q, want %q", got, want)
	}
}

// A larger From mixing a scan, a where filter over a field access, and
// an order-by is checked against a golden fixture rather than an
// inline literal, so a future step-rendering change shows up as a
// readable diff instead of a wall of escaped string edits.
func TestFromStringGoldenScanWhereOrderYield(t *testing.T) {
	field := func(recv string, field string) *FieldAccess {
		return &FieldAccess{Record: &Var{Node: Node{NodeID: 1}, Name: recv}, Field: field}
	}
	gt := &App{
		Node: Node{NodeID: 2},
		Fun:  &App{Node: Node{NodeID: 3}, Fun: &Var{Node: Node{NodeID: 4}, Name: ">"}, Arg: field("o", "total")},
		Arg:  intLit(100, 5),
	}
	f := &From{
		Steps: []FromStep{
			&ScanStep{Pattern: &IdentPattern{Name: "o", Ordinal: 0}, Collection: &Var{Node: Node{NodeID: 6}, Name: "orders"}},
			&WhereStep{Cond: gt},
			&OrderStep{Keys: []OrderItem{{Key: field("o", "total"), Desc: true}}},
			&YieldStep{Result: field("o", "total")},
		},
	}
	testutil.AssertGolden(t, "from", "scan-where-order-yield", f.String())
}

func TestSetOpKindString(t *testing.T) {
	cases := []struct {
		k    SetOpKind
		want string
	}{{Union, "union"}, {Except, "except"}, {Intersect, "intersect"}}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("SetOpKind(%d).String() = %q, want %q", c.k, got, c.want)
		}
	}
}

func TestCaseStringListsArms(t *testing.T) {
	c := &Case{
		Scrutinee: &Var{Node: Node{NodeID: 1}, Name: "x"},
		Arms: []MatchArm{
			{Pattern: &LitPattern{Value: 0}, Body: intLit(1, 2)},
			{Pattern: &Wildcard{}, Body: intLit(2, 3)},
		},
	}
	got := c.String()
	want := "case x of 0 => 1 | _ => 2"
	if got != want {
		t.Errorf("Case.String() = %q, want %q", got, want)
	}
}

func TestNodeAccessors(t *testing.T) {
	pos := ast.Pos{Line: 3, Column: 4}
	n := Node{NodeID: 7, Pos: pos, Typ: &types.TPrim{Name: types.Bool}}
	if n.ID() != 7 {
		t.Errorf("ID() = %d", n.ID())
	}
	if n.Position() != pos {
		t.Errorf("Position() = %v", n.Position())
	}
	if !types.Equals(n.Type(), &types.TPrim{Name: types.Bool}) {
		t.Errorf("Type() = %v", n.Type())
	}
}
