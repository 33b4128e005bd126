package eval

import (
	"fmt"

	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/plan"
)

// asRows extracts the element sequence a ScanSink iterates from a
// collection-valued Action's result. Grounding (internal/ground) only
// ever hands the plan builder finite List/Bag-typed extents to scan
//, so these are the only two shapes that reach here.
func asRows(v Value) ([]Value, error) {
	switch v := v.(type) {
	case List:
		return []Value(v), nil
	case Bag:
		return []Value(v), nil
	}
	return nil, fmt.Errorf("eval: scan over non-collection value %v", v)
}

// runGroup partitions in by each row's evaluated KeyExprs tuple,
// preserving first-seen group order, and produces
// one new environment per group binding every key under its surface
// name/ordinal plus every aggregate under its own.
func runGroup(s *plan.GroupSink, in []*env.Environment) ([]*env.Environment, error) {
	type group struct {
		keys []Value
		rows []*env.Environment
	}
	var groups []*group
	for _, e := range in {
		keys := make([]Value, len(s.KeyExprs))
		for i, k := range s.KeyExprs {
			v, err := Eval(k, e)
			if err != nil {
				return nil, err
			}
			keys[i] = v
		}
		var g *group
		for _, cand := range groups {
			if sameKeys(cand.keys, keys) {
				g = cand
				break
			}
		}
		if g == nil {
			g = &group{keys: keys}
			groups = append(groups, g)
		}
		g.rows = append(g.rows, e)
	}

	out := make([]*env.Environment, len(groups))
	for gi, g := range groups {
		base := aggregateBase(in, g.rows)
		ge := base
		for i := range s.KeyExprs {
			if i < len(s.KeyNames) {
				ge = ge.Bind(&env.Binding{Name: s.KeyNames[i], Ordinal: s.KeyOrdinals[i], Value: g.keys[i], Kind: env.VAL})
			}
		}
		for _, agg := range s.Aggregates {
			v, err := runAggregate(agg, g.rows)
			if err != nil {
				return nil, err
			}
			ge = ge.Bind(&env.Binding{Name: agg.Name, Ordinal: agg.Ordinal, Value: v, Kind: env.VAL})
		}
		out[gi] = ge
	}
	return out, nil
}

// aggregateBase picks the environment a group's bindings extend: any
// row of the group itself, since every row of one group shares the same
// outer (pre-From) scope and only differs in the per-row bindings the
// group and its aggregates replace. Falls back to the first input row,
// or the package-level empty environment if the group produced no rows
// at all (possible for a source-less `group` over an empty extent).
func aggregateBase(all []*env.Environment, rows []*env.Environment) *env.Environment {
	if len(rows) > 0 {
		return rows[0]
	}
	if len(all) > 0 {
		return all[0]
	}
	return env.Empty()
}

func sameKeys(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// runAggregate computes one group's Over values reduced by Func. The
// function names mirror the builtin aggregate set:
// count ignores Over's value entirely (it only needs the row count).
func runAggregate(agg plan.AggregateAction, rows []*env.Environment) (Value, error) {
	if agg.Func == "count" {
		return int64(len(rows)), nil
	}
	vals := make([]Value, len(rows))
	for i, e := range rows {
		v, err := Eval(agg.Over, e)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	switch agg.Func {
	case "sum":
		return sumValues(vals)
	case "min":
		return extreme(vals, false)
	case "max":
		return extreme(vals, true)
	case "avg":
		return average(vals)
	}
	return nil, fmt.Errorf("eval: unknown aggregate function %q", agg.Func)
}

func sumValues(vals []Value) (Value, error) {
	if len(vals) == 0 {
		return int64(0), nil
	}
	if _, ok := vals[0].(float64); ok {
		var total float64
		for _, v := range vals {
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("eval: sum over mixed numeric types")
			}
			total += f
		}
		return total, nil
	}
	var total int64
	for _, v := range vals {
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("eval: sum over non-numeric value %v", v)
		}
		total += n
	}
	return total, nil
}

func average(vals []Value) (Value, error) {
	sum, err := sumValues(vals)
	if err != nil {
		return nil, err
	}
	switch s := sum.(type) {
	case float64:
		return s / float64(len(vals)), nil
	case int64:
		return float64(s) / float64(len(vals)), nil
	}
	return nil, fmt.Errorf("eval: avg over non-numeric values")
}

func extreme(vals []Value, max bool) (Value, error) {
	if len(vals) == 0 {
		return nil, fmt.Errorf("eval: min/max over empty group")
	}
	best := vals[0]
	for _, v := range vals[1:] {
		if max && Less(best, v) {
			best = v
		}
		if !max && Less(v, best) {
			best = v
		}
	}
	return best, nil
}

// runSetOp combines in with s.Other (evaluated once against ctx, since
// it never depends on a row binding) by set kind, comparing each row's
// bound value via Equal.
func runSetOp(s *plan.SetOpSink, ctx *env.Environment, in []*env.Environment) ([]*env.Environment, error) {
	otherV, err := Eval(s.Other, ctx)
	if err != nil {
		return nil, err
	}
	other, err := asRows(otherV)
	if err != nil {
		return nil, err
	}

	inOther := func(v Value) bool {
		for _, o := range other {
			if Equal(v, o) {
				return true
			}
		}
		return false
	}

	var out []*env.Environment
	switch s.Kind {
	case core.Union:
		out = append(out, in...)
		for _, o := range other {
			out = append(out, ctx.Bind(&env.Binding{Name: "_", Ordinal: 0, Value: o, Kind: env.VAL}))
		}
	case core.Except:
		for _, e := range in {
			if !inOther(rowValue(e)) {
				out = append(out, e)
			}
		}
	case core.Intersect:
		for _, e := range in {
			if inOther(rowValue(e)) {
				out = append(out, e)
			}
		}
	default:
		return nil, fmt.Errorf("eval: unknown set-op kind %v", s.Kind)
	}
	return out, nil
}
