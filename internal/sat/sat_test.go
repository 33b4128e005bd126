package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveTrivialSatisfiable(t *testing.T) {
	f := New(1)
	f.AddClause(Pos(0))
	ok, assign := Solve(f)
	require.True(t, ok)
	assert.True(t, assign[0])
}

func TestSolveTrivialUnsatisfiable(t *testing.T) {
	f := New(1)
	f.AddClause(Pos(0))
	f.AddClause(NegLit(0))
	ok, _ := Solve(f)
	assert.False(t, ok)
}

func TestSolveUnitPropagationChain(t *testing.T) {
	// x0 ; ¬x0 ∨ x1 ; ¬x1 ∨ x2 — forces x0=x1=x2=true by unit propagation alone.
	f := New(3)
	f.AddClause(Pos(0))
	f.AddClause(NegLit(0), Pos(1))
	f.AddClause(NegLit(1), Pos(2))
	ok, assign := Solve(f)
	require.True(t, ok)
	assert.True(t, assign[0])
	assert.True(t, assign[1])
	assert.True(t, assign[2])
}

func TestExactlyOneAllowsOnlyOneTrue(t *testing.T) {
	f := New(3)
	f.ExactlyOne(0, 1, 2)
	ok, assign := Solve(f)
	require.True(t, ok)
	count := 0
	for _, v := range assign {
		if v {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExactlyOneContradictsTwoForcedTrue(t *testing.T) {
	f := New(2)
	f.ExactlyOne(0, 1)
	f.AddClause(Pos(0))
	f.AddClause(Pos(1))
	ok, _ := Solve(f)
	assert.False(t, ok)
}

// A ∧ B where both need branching (no unit clauses at all): exercises
// the decision (non-propagation) path of dpll.
func TestSolveRequiresBranching(t *testing.T) {
	f := New(2)
	f.AddClause(Pos(0), Pos(1))
	f.AddClause(NegLit(0), NegLit(1))
	ok, assign := Solve(f)
	require.True(t, ok)
	assert.NotEqual(t, assign[0], assign[1])
}

func TestSolveEmptyFormulaIsSatisfiable(t *testing.T) {
	f := New(0)
	ok, _ := Solve(f)
	assert.True(t, ok)
}
