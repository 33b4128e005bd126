package eval

import (
	"fmt"
	"sort"

	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/plan"
)

// runSink drives one compiled row-sink chain to completion, calling emit
// once per row the terminal CollectSink produces, in the deterministic
// order the pipeline requires. ctx is the environment active before the From
// began — used to evaluate sub-expressions (Skip/Take counts, a
// set-operation's other-side collection) that never depend on a
// row's own bindings. Each stage is evaluated over the *whole* list of
// rows reaching it rather than one at a time: the streaming stages
// (scan/where/compute) could run row-by-row, but skip/take/distinct/
// order/group/set-ops are inherently whole-stream operations, so every stage is expressed uniformly as a []*env.Environment
// -> []*env.Environment transform and only the terminal CollectSink
// calls emit.
func runSink(s plan.RowSink, ctx *env.Environment, emit func(Value) error) error {
	rows, err := run(s, ctx, []*env.Environment{ctx})
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := emit(r.result); err != nil {
			return err
		}
	}
	return nil
}

// producedRow pairs the environment a row reached the terminal
// CollectSink in with the value it yielded there.
type producedRow struct {
	env    *env.Environment
	result Value
}

func run(s plan.RowSink, ctx *env.Environment, in []*env.Environment) ([]producedRow, error) {
	switch s := s.(type) {
	case nil:
		return nil, fmt.Errorf("eval: row-sink chain has no terminal CollectSink")

	case *plan.ScanSink:
		var out []*env.Environment
		for _, e := range in {
			cv, err := Eval(s.Collection, e)
			if err != nil {
				return nil, err
			}
			rows, err := asRows(cv)
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				e2, ok := Match(s.Pattern, row, e)
				if !ok {
					continue
				}
				if s.Cond != nil {
					cond, err := Eval(s.Cond, e2)
					if err != nil {
						return nil, err
					}
					if b, ok := cond.(bool); !ok || !b {
						continue
					}
				}
				out = append(out, e2)
			}
		}
		return run(s.Next, ctx, out)

	case *plan.WhereSink:
		var out []*env.Environment
		for _, e := range in {
			cond, err := Eval(s.Cond, e)
			if err != nil {
				return nil, err
			}
			if b, ok := cond.(bool); ok && b {
				out = append(out, e)
			}
		}
		return run(s.Next, ctx, out)

	case *plan.ComputeSink:
		out := make([]*env.Environment, len(in))
		for i, e := range in {
			v, err := Eval(s.Value, e)
			if err != nil {
				return nil, err
			}
			out[i] = e.Bind(&env.Binding{Name: s.Name, Ordinal: s.Ordinal, Value: v, Kind: env.VAL})
		}
		return run(s.Next, ctx, out)

	case *plan.SkipSink:
		n, err := evalInt(s.Count, ctx)
		if err != nil {
			return nil, err
		}
		out := sliceFrom(in, n)
		return run(s.Next, ctx, out)

	case *plan.TakeSink:
		n, err := evalInt(s.Count, ctx)
		if err != nil {
			return nil, err
		}
		out := sliceTo(in, n)
		return run(s.Next, ctx, out)

	case *plan.DistinctSink:
		seen := make([]Value, 0, len(in))
		var out []*env.Environment
		for _, e := range in {
			rv := rowSnapshot(e)
			dup := false
			for _, s := range seen {
				if Equal(s, rv) {
					dup = true
					break
				}
			}
			if !dup {
				seen = append(seen, rv)
				out = append(out, e)
			}
		}
		return run(s.Next, ctx, out)

	case *plan.OrderSink:
		type keyed struct {
			e    *env.Environment
			keys []Value
		}
		ks := make([]keyed, len(in))
		for i, e := range in {
			vals := make([]Value, len(s.Keys))
			for j, k := range s.Keys {
				v, err := Eval(k.Key, e)
				if err != nil {
					return nil, err
				}
				vals[j] = v
			}
			ks[i] = keyed{e, vals}
		}
		sort.SliceStable(ks, func(i, j int) bool {
			for k := range s.Keys {
				a, b := ks[i].keys[k], ks[j].keys[k]
				if Equal(a, b) {
					continue
				}
				if s.Keys[k].Desc {
					return Less(b, a)
				}
				return Less(a, b)
			}
			return false
		})
		out := make([]*env.Environment, len(ks))
		for i, k := range ks {
			out[i] = k.e
		}
		return run(s.Next, ctx, out)

	case *plan.GroupSink:
		out, err := runGroup(s, in)
		if err != nil {
			return nil, err
		}
		return run(s.Next, ctx, out)

	case *plan.SetOpSink:
		out, err := runSetOp(s, ctx, in)
		if err != nil {
			return nil, err
		}
		return run(s.Next, ctx, out)

	case *plan.CollectSink:
		out := make([]producedRow, len(in))
		for i, e := range in {
			v, err := Eval(s.Result, e)
			if err != nil {
				return nil, err
			}
			out[i] = producedRow{env: e, result: v}
		}
		return out, nil
	}
	return nil, fmt.Errorf("eval: unhandled row sink %T", s)
}

func sliceFrom(in []*env.Environment, n int) []*env.Environment {
	if n < 0 {
		n = 0
	}
	if n > len(in) {
		n = len(in)
	}
	return in[n:]
}

func sliceTo(in []*env.Environment, n int) []*env.Environment {
	if n < 0 {
		n = 0
	}
	if n > len(in) {
		n = len(in)
	}
	return in[:n]
}

func evalInt(a plan.Action, e *env.Environment) (int, error) {
	v, err := Eval(a, e)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("eval: expected int, got %T", v)
	}
	return int(n), nil
}

// rowSnapshot captures every binding visible from e into a Record,
// canonicalizing by name the way record equality already does. Used by DistinctSink to compare "the whole in-scope
// tuple" structurally. Bindings from outside the enclosing From
// are included too, but since they are identical across every row of
// one From's execution they never affect which rows compare distinct.
func rowSnapshot(e *env.Environment) Record {
	r := Record{}
	e.EachBinding(func(b *env.Binding) {
		if _, seen := r[b.Name]; !seen {
			r[b.Name] = b.Value
		}
	})
	return r
}

// rowValue reports the most recently bound value reachable from e — the
// natural "current row" value for a From whose last scan bound exactly
// one pattern variable, which is the shape internal/ground's own
// generator rewriting always produces. Used by SetOpSink, whose
// operands are compared as plain values rather than whole-scope
// records.
func rowValue(e *env.Environment) Value {
	var v Value
	done := false
	e.EachBinding(func(b *env.Binding) {
		if !done {
			v = b.Value
			done = true
		}
	})
	return v
}
