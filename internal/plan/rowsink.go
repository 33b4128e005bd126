package plan

import "github.com/morel-lang/morelc/internal/core"

// RowSink is one stage of a compiled query pipeline. A From
// compiles to a chain of these, right-folded so each stage's Next is
// already built before the stage in front of it: Scan is always
// innermost relative to compilation order but outermost in execution
// order — it runs first and feeds every later stage.
type RowSink interface {
	rowSinkNode()
}

// ScanSink binds Pattern to each element of Collection in turn, filters
// by the fused Cond (nil if the scan carries none), and feeds Next once
// per surviving row.
type ScanSink struct {
	Pattern    core.Pattern
	Collection Action
	Cond       Action // nil if none
	Next       RowSink
}

func (*ScanSink) rowSinkNode() {}

// WhereSink drops rows for which Cond evaluates false.
type WhereSink struct {
	Cond Action
	Next RowSink
}

func (*WhereSink) rowSinkNode() {}

// SkipSink drops the first Count rows it sees.
type SkipSink struct {
	Count Action
	Next  RowSink
}

func (*SkipSink) rowSinkNode() {}

// TakeSink passes through the first Count rows it is given and drops
// the rest; it does not stop the upstream scan early.
type TakeSink struct {
	Count Action
	Next  RowSink
}

func (*TakeSink) rowSinkNode() {}

// DistinctSink suppresses rows structurally equal to one already seen.
type DistinctSink struct {
	Next RowSink
}

func (*DistinctSink) rowSinkNode() {}

// OrderKey is one sort key of an OrderSink.
type OrderKey struct {
	Key  Action
	Desc bool
}

// OrderSink buffers every row, sorts by Keys with a type-directed
// comparator (internal/eval's responsibility — the plan only records
// which keys and which direction), and replays the sorted rows to Next.
type OrderSink struct {
	Keys []OrderKey
	Next RowSink
}

func (*OrderSink) rowSinkNode() {}

// AggregateAction is one `name = func of expr` clause of a GroupSink,
// compiled from a core.Aggregate.
type AggregateAction struct {
	Name    string
	Ordinal int
	Func    string
	Over    Action
}

// GroupSink partitions every row by the tuple of its KeyExprs values,
// keeping groups in first-seen order, computes Aggregates per group,
// and feeds Next once per group. KeyNames/KeyOrdinals record the identifier each key
// expression's value is bound back to for Next (mirroring Aggregates'
// own Name/Ordinal pair), carried over from the source core.GroupStep's
// Keys list.
type GroupSink struct {
	KeyExprs    []Action
	KeyNames    []string
	KeyOrdinals []int
	Aggregates  []AggregateAction
	Next        RowSink
}

func (*GroupSink) rowSinkNode() {}

// SetOpSink combines the row stream so far with Other (itself a
// collection-valued Action, not a nested RowSink — the right-hand side
// of a union/except/intersect is a complete expression, not another
// pipeline stage) by Kind, deduplicating .
type SetOpSink struct {
	Kind  core.SetOpKind
	Other Action
	Next  RowSink
}

func (*SetOpSink) rowSinkNode() {}

// CollectSink is the terminal stage: it evaluates Result once per row in
// the incoming scope and appends it to the result collection being
// built. Every compiled From ends in exactly one of these, compiled
// from the query's YieldStep.
type CollectSink struct {
	Result Action
}

func (*CollectSink) rowSinkNode() {}

// RowSinkAction wraps a compiled row-sink chain so it can appear as an
// ordinary Action wherever a From expression occurred (as a Let's
// value, a tuple element, an application argument, and so on).
type RowSinkAction struct {
	Sink RowSink
}

func (*RowSinkAction) actionNode() {}

// compileFrom lowers e's steps to a right-folded RowSink chain: the
// terminal step (always a YieldStep) compiles first, and each earlier
// step wraps it as Next.
func (c *compiler) compileFrom(e *core.From) Action {
	var next RowSink
	for i := len(e.Steps) - 1; i >= 0; i-- {
		next = c.compileStep(e.Steps[i], next)
	}
	return &RowSinkAction{Sink: next}
}

func (c *compiler) compileStep(s core.FromStep, next RowSink) RowSink {
	switch s := s.(type) {
	case *core.ScanStep:
		var cond Action
		if s.Cond != nil {
			cond = c.compileExpr(s.Cond)
		}
		return &ScanSink{Pattern: s.Pattern, Collection: c.compileExpr(s.Collection), Cond: cond, Next: next}
	case *core.WhereStep:
		return &WhereSink{Cond: c.compileExpr(s.Cond), Next: next}
	case *core.SkipStep:
		return &SkipSink{Count: c.compileExpr(s.Count), Next: next}
	case *core.TakeStep:
		return &TakeSink{Count: c.compileExpr(s.Count), Next: next}
	case *core.DistinctStep:
		return &DistinctSink{Next: next}
	case *core.YieldStep:
		return &CollectSink{Result: c.compileExpr(s.Result)}
	case *core.OrderStep:
		keys := make([]OrderKey, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = OrderKey{Key: c.compileExpr(k.Key), Desc: k.Desc}
		}
		return &OrderSink{Keys: keys, Next: next}
	case *core.GroupStep:
		keyExprs := make([]Action, len(s.KeyExprs))
		for i, k := range s.KeyExprs {
			keyExprs[i] = c.compileExpr(k)
		}
		keyNames := make([]string, len(s.Keys))
		keyOrdinals := make([]int, len(s.Keys))
		for i, b := range s.Keys {
			keyNames[i] = b.Name
			keyOrdinals[i] = b.Ordinal
		}
		aggs := make([]AggregateAction, len(s.Aggregates))
		for i, a := range s.Aggregates {
			aggs[i] = AggregateAction{Name: a.Name, Ordinal: a.Ordinal, Func: a.Func, Over: c.compileExpr(a.Over)}
		}
		return &GroupSink{KeyExprs: keyExprs, KeyNames: keyNames, KeyOrdinals: keyOrdinals, Aggregates: aggs, Next: next}
	case *core.ComputeStep:
		// A non-grouping derived binding is just a row-preserving
		// projection: evaluate Value and add it to scope on the way
		// through, which GroupSink's single-key-group special case
		// would otherwise have to duplicate. internal/eval implements
		// it identically to a one-aggregate-free GroupSink whose group
		// key is the whole incoming row, but compiling it as its own
		// sink keeps that distinction visible in the plan.
		return &ComputeSink{Name: s.Name, Ordinal: s.Ordinal, Value: c.compileExpr(s.Value), Next: next}
	case *core.SetOpStep:
		return &SetOpSink{Kind: s.Kind, Other: c.compileExpr(s.Other), Next: next}
	}
	return next
}

// ComputeSink extends the row scope with one derived binding without
// changing the row count — the compiled form of a ComputeStep.
type ComputeSink struct {
	Name    string
	Ordinal int
	Value   Action
	Next    RowSink
}

func (*ComputeSink) rowSinkNode() {}
