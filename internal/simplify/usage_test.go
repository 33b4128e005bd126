package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/types"
)

func TestClassifyDeadBinding(t *testing.T) {
	body := lit(1, intT())
	got := classify(body, "x", 0)
	assert.Equal(t, Dead, got)
}

func TestClassifyAtomicBindingIgnoresReferenceCount(t *testing.T) {
	// body references x twice, but whether a binding is Atomic depends
	// on the bound value (checked by the caller, not countRefs), so
	// classify here only reports the reference-count-derived class;
	// MultiUnsafe is expected since two references is more than one.
	x := v("x", 0, intT())
	body := binOp("+", x, x, intT())
	got := classify(body, "x", 0)
	assert.Equal(t, MultiUnsafe, got)
}

func TestClassifyOnceSafeNotUnderLambda(t *testing.T) {
	x := v("x", 0, intT())
	body := binOp("+", x, lit(1, intT()), intT())
	got := classify(body, "x", 0)
	assert.Equal(t, OnceSafe, got)
}

func TestClassifyMultiUnsafeUnderLambda(t *testing.T) {
	// referenced once, but from inside a lambda body that might run more
	// than once per evaluation of the enclosing let.
	x := v("x", 0, intT())
	body := &core.Lambda{
		Node:  nd(&types.TFunc{Param: boolT(), Result: intT()}),
		Param: &core.Wildcard{},
		Body:  x,
	}
	got := classify(body, "x", 0)
	assert.Equal(t, MultiUnsafe, got)
}

func TestClassifyOnceSafeInsideFromIsStillMultiUnsafe(t *testing.T) {
	// A from-step's sub-expressions run once per row, classified the
	// same as a lambda body for this purpose.
	x := v("x", 0, intT())
	from := &core.From{
		Node: nd(&types.TList{Elem: intT()}),
		Steps: []core.FromStep{
			&core.YieldStep{Result: x},
		},
	}
	got := classify(from, "x", 0)
	assert.Equal(t, MultiUnsafe, got)
}
