package env

import (
	"testing"

	"github.com/morel-lang/morelc/internal/types"
)

func TestLookupNameFindsInnermost(t *testing.T) {
	e := Empty().
		Bind(&Binding{Name: "x", Ordinal: 0, Type: &types.TPrim{Name: types.Int}, Kind: VAL}).
		Bind(&Binding{Name: "x", Ordinal: 1, Type: &types.TPrim{Name: types.Bool}, Kind: VAL})

	b, ok := e.LookupName("x")
	if !ok {
		t.Fatal("expected to find x")
	}
	if b.Ordinal != 1 {
		t.Errorf("LookupName should return the innermost binding; got ordinal %d", b.Ordinal)
	}
}

func TestLookupPatternDisambiguatesByOrdinal(t *testing.T) {
	e := Empty().
		Bind(&Binding{Name: "x", Ordinal: 0, Kind: VAL}).
		Bind(&Binding{Name: "x", Ordinal: 1, Kind: VAL})

	b, ok := e.LookupPattern("x", 0)
	if !ok || b.Ordinal != 0 {
		t.Errorf("LookupPattern(x,0) = %v, %v", b, ok)
	}
}

func TestShadowingKeepsChainShort(t *testing.T) {
	e := Empty().Bind(&Binding{Name: "x", Ordinal: 0, Kind: VAL})
	before := e.Depth()
	e2 := e.Bind(&Binding{Name: "x", Ordinal: 0, Kind: VAL})
	if e2.Depth() != before {
		t.Errorf("shadowing same (name,ordinal) should not grow the chain: before=%d after=%d", before, e2.Depth())
	}
}

func TestCollectOverloadsStopsAtOwnOverHeader(t *testing.T) {
	// Two nested `over plus` scopes; collecting from the inner scope must
	// not see the outer scope's instances.
	e := Empty().
		Bind(&Binding{Name: "plus", Kind: OVER}).
		Bind(&Binding{Name: "plusIntImpl", OverName: "plus", Kind: INST}).
		Bind(&Binding{Name: "plus", Kind: OVER}). // shadowing OVER redeclaration
		Bind(&Binding{Name: "plusRealImpl", OverName: "plus", Kind: INST})

	insts := e.CollectOverloads("plus")
	if len(insts) != 1 || insts[0].Name != "plusRealImpl" {
		t.Errorf("CollectOverloads should stop at the nearest OVER header, got %v", namesOf(insts))
	}
}

func namesOf(bs []*Binding) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Name
	}
	return out
}
