// Package eval executes the plan internal/plan compiles. It walks an
// Action tree, threading a single evaluation environment argument
// rather than any process-global state. Row sinks run stage by stage,
// each stage over the whole list of rows reaching it, keeping row order
// (see rowsink.go).
package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/plan"
)

// Value is any runtime value morelc programs compute over. Primitives
// use Go's own bool/rune/int64/float64/string; unit is represented by
// the Unit sentinel; the composite forms below cover everything else a
// Core expression can construct.
type Value interface{}

// Unit is the single value of the unit type.
type Unit struct{}

func (Unit) String() string { return "()" }

// Tuple is an ordered finite sequence of component values.
type Tuple []Value

// Record is a label -> value mapping. Equality and ordering operations
// over records canonicalize by sorted label.
type Record map[string]Value

// List is the ordered sequence representation (morel `list`).
type List []Value

// Bag is the unordered multiset representation (morel `bag`). Bags are
// stored the same way as List — as a Go slice — since nothing in this
// evaluator needs a hash-multiset; only order is treated as
// insignificant when bags are produced.
type Bag []Value

// Ctor is a constructed value of a datatype: Name identifies the
// constructor, Arg is nil for a nullary constructor.
type Ctor struct {
	Name string
	Arg  Value
}

// Closure is a function value: Env is the environment captured at
// closure-construction time, Param and Body describe how to extend it
// and what to evaluate when the closure is applied to one argument.
type Closure struct {
	Param core.Pattern
	Body  plan.Action
	Env   *env.Environment
}

// Builtin is a foreign (host-provided) function value of fixed arity,
// registered by internal/builtins. Applying it with fewer than Arity
// arguments yields a PartialBuiltin closing over the arguments seen so
// far; applying with the last argument invokes Fn.
type Builtin struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

// PartialBuiltin is a Builtin mid-currying.
type PartialBuiltin struct {
	B    *Builtin
	Args []Value
}

// Show renders v as a morel literal, unbounded. internal/prettyprint
// wraps this with the width/depth/length limits.
func Show(v Value) string {
	switch v := v.(type) {
	case nil:
		return "()"
	case Unit:
		return "()"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case rune:
		return fmt.Sprintf("#%q", string(v))
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case string:
		return fmt.Sprintf("%q", v)
	case Tuple:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = Show(x)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Record:
		labels := make([]string, 0, len(v))
		for l := range v {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		parts := make([]string, len(labels))
		for i, l := range labels {
			parts[i] = fmt.Sprintf("%s = %s", l, Show(v[l]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case List:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = Show(x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Bag:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = Show(x)
		}
		return "bag [" + strings.Join(parts, ", ") + "]"
	case *Ctor:
		if v.Arg == nil {
			return v.Name
		}
		return v.Name + " " + Show(v.Arg)
	case *Closure, *Builtin, *PartialBuiltin:
		return "<fn>"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Equal reports structural equality of two runtime values, canonicalizing
// record field order via Go map comparison (matching types.Equals' stance
// that record equality ignores construction order).
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Tuple:
		b, ok := b.(Tuple)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case Record:
		b, ok := b.(Record)
		if !ok || len(a) != len(b) {
			return false
		}
		for k, v := range a {
			bv, ok := b[k]
			if !ok || !Equal(v, bv) {
				return false
			}
		}
		return true
	case List:
		b, ok := b.(List)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case Bag:
		b, ok := b.(Bag)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case *Ctor:
		b, ok := b.(*Ctor)
		return ok && a.Name == b.Name && Equal(a.Arg, b.Arg)
	default:
		return a == b
	}
}

// Less provides the type-directed ordering OrderSink's comparator and
// interval generators over primitive extents both need. Only primitive and tuple
// (lexicographic) values are ordered; ordering any other shape is a
// compiler bug, since the `order` typing rule only ever admits
// orderable element types through to a plan built this way.
func Less(a, b Value) bool {
	switch a := a.(type) {
	case bool:
		return !a && b.(bool)
	case rune:
		return a < b.(rune)
	case int64:
		return a < b.(int64)
	case float64:
		return a < b.(float64)
	case string:
		return a < b.(string)
	case Tuple:
		bt := b.(Tuple)
		for i := range a {
			if Equal(a[i], bt[i]) {
				continue
			}
			return Less(a[i], bt[i])
		}
		return false
	}
	panic(fmt.Sprintf("eval: Less: unorderable value %v", a))
}
