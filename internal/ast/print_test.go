package ast

import (
	"strings"
	"testing"
)

func TestPrintValDecl(t *testing.T) {
	decl := &ValDecl{
		Name: "x",
		Exp:  &Lit{Kind: IntLit, Value: 7, Pos: Pos{Line: 1, Column: 9}},
		Pos:  Pos{Line: 1, Column: 1},
	}
	out := Print(decl)
	for _, want := range []string{"ValDecl", `"name": "x"`, `"value": 7`} {
		if !strings.Contains(out, want) {
			t.Errorf("Print(decl) missing %q in:\n%s", want, out)
		}
	}
}

func TestPrintFromQuery(t *testing.T) {
	from := &From{
		Steps: []FromStep{
			&ScanStep{Pattern: &IdentPattern{Name: "x"}, Collection: &ListExp{}},
			&WhereStep{Pred: &BinOp{Op: "<", Left: &Ident{Name: "x"}, Right: &Lit{Kind: IntLit, Value: 3}}},
			&YieldStep{Exp: &Ident{Name: "x"}},
		},
	}
	out := Print(from)
	for _, want := range []string{"From", "ScanStep", "WhereStep", "YieldStep"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print(from) missing %q in:\n%s", want, out)
		}
	}
}

func TestPrintNilIsNull(t *testing.T) {
	if got := Print(nil); got != "null" {
		t.Errorf("Print(nil) = %q, want %q", got, "null")
	}
}

func TestVarsCollectsAllBoundNames(t *testing.T) {
	pat := &TuplePattern{Elems: []Pattern{
		&IdentPattern{Name: "a"},
		&AsPattern{Name: "b", Inner: &WildcardPattern{}},
		&ConsPattern{Head: &IdentPattern{Name: "c"}, Tail: &IdentPattern{Name: "d"}},
	}}
	got := Vars(pat)
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("Vars = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Vars[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
