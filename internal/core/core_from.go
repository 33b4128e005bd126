package core

import (
	"fmt"
	"strings"
)

// FromStep is one step of a Core From pipeline. Every step records the
// output environment it produces so later phases —
// grounding, simplification, plan building — never need to recompute
// scope from scratch.
type FromStep interface {
	String() string
	Output() []Binding
	fromStepNode()
}

// ScanStep introduces a fresh pattern-bound variable ranging over
// Collection. Before internal/ground runs, Collection may be nil for a
// variable whose extent is not yet known; grounding rewrites
// every ScanStep to carry a concrete Collection.
type ScanStep struct {
	Pattern    Pattern
	Collection Expr
	Cond       Expr // optional filter fused into the scan; nil if none
	Bindings   []Binding
}

func (s *ScanStep) fromStepNode() {}
func (s *ScanStep) Output() []Binding { return s.Bindings }
func (s *ScanStep) String() string {
	coll := "?"
	if s.Collection != nil {
		coll = s.Collection.String()
	}
	if s.Cond != nil {
		return fmt.Sprintf("%s in %s where %s", s.Pattern, coll, s.Cond)
	}
	return fmt.Sprintf("%s in %s", s.Pattern, coll)
}

// WhereStep filters rows by Cond, a boolean expression over the
// incoming scope.
type WhereStep struct {
	Cond     Expr
	Bindings []Binding
}

func (s *WhereStep) fromStepNode()     {}
func (s *WhereStep) Output() []Binding { return s.Bindings }
func (s *WhereStep) String() string    { return fmt.Sprintf("where %s", s.Cond) }

// SkipStep drops the first Count rows.
type SkipStep struct {
	Count    Expr
	Bindings []Binding
}

func (s *SkipStep) fromStepNode()     {}
func (s *SkipStep) Output() []Binding { return s.Bindings }
func (s *SkipStep) String() string    { return fmt.Sprintf("skip %s", s.Count) }

// TakeStep keeps at most Count rows.
type TakeStep struct {
	Count    Expr
	Bindings []Binding
}

func (s *TakeStep) fromStepNode()     {}
func (s *TakeStep) Output() []Binding { return s.Bindings }
func (s *TakeStep) String() string    { return fmt.Sprintf("take %s", s.Count) }

// DistinctStep removes duplicate rows (by structural equality of the
// whole in-scope tuple).
type DistinctStep struct {
	Bindings []Binding
}

func (s *DistinctStep) fromStepNode()     {}
func (s *DistinctStep) Output() []Binding { return s.Bindings }
func (s *DistinctStep) String() string    { return "distinct" }

// YieldStep replaces the row scope with the value of Result — it is
// always the terminal step of a From.
type YieldStep struct {
	Result   Expr
	Bindings []Binding
}

func (s *YieldStep) fromStepNode()     {}
func (s *YieldStep) Output() []Binding { return s.Bindings }
func (s *YieldStep) String() string    { return fmt.Sprintf("yield %s", s.Result) }

// OrderItem is one `key [desc]` sort key.
type OrderItem struct {
	Key  Expr
	Desc bool
}

// OrderStep sorts rows by one or more keys.
type OrderStep struct {
	Keys     []OrderItem
	Bindings []Binding
}

func (s *OrderStep) fromStepNode()     {}
func (s *OrderStep) Output() []Binding { return s.Bindings }
func (s *OrderStep) String() string {
	parts := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		if k.Desc {
			parts[i] = k.Key.String() + " desc"
		} else {
			parts[i] = k.Key.String()
		}
	}
	return "order " + strings.Join(parts, ", ")
}

// Aggregate is one `name = agg of expr` clause of a GroupStep.
type Aggregate struct {
	Name    string
	Ordinal int
	Func    string // e.g. "sum", "count", "min", "max"
	Over    Expr
}

// GroupStep partitions rows by Keys and computes Aggregates per group.
type GroupStep struct {
	Keys       []Binding
	KeyExprs   []Expr
	Aggregates []Aggregate
	Bindings   []Binding
}

func (s *GroupStep) fromStepNode()     {}
func (s *GroupStep) Output() []Binding { return s.Bindings }
func (s *GroupStep) String() string {
	parts := make([]string, len(s.Aggregates))
	for i, a := range s.Aggregates {
		parts[i] = fmt.Sprintf("%s = %s of %s", a.Name, a.Func, a.Over)
	}
	return "group by ... compute " + strings.Join(parts, ", ")
}

// ComputeStep extends the scope with one or more derived bindings
// without changing the row count (the non-grouping sibling of group-by
// compute clauses).
type ComputeStep struct {
	Name     string
	Ordinal  int
	Value    Expr
	Bindings []Binding
}

func (s *ComputeStep) fromStepNode()     {}
func (s *ComputeStep) Output() []Binding { return s.Bindings }
func (s *ComputeStep) String() string    { return fmt.Sprintf("compute %s = %s", s.Name, s.Value) }

// SetOpKind distinguishes the three set operations a From may end with.
type SetOpKind int

const (
	Union SetOpKind = iota
	Except
	Intersect
)

func (k SetOpKind) String() string {
	switch k {
	case Union:
		return "union"
	case Except:
		return "except"
	case Intersect:
		return "intersect"
	}
	return "?"
}

// SetOpStep combines the current row stream with Other by Kind.
type SetOpStep struct {
	Kind     SetOpKind
	Other    Expr
	Bindings []Binding
}

func (s *SetOpStep) fromStepNode()     {}
func (s *SetOpStep) Output() []Binding { return s.Bindings }
func (s *SetOpStep) String() string    { return fmt.Sprintf("%s %s", s.Kind, s.Other) }
