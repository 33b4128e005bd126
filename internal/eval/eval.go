package eval

import (
	"fmt"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/errors"
	"github.com/morel-lang/morelc/internal/plan"
)

// zeroPos stands in for the source position of a runtime bind failure:
// by the time a plan is running, the Core node that produced it no
// longer carries a position through to the Action tree. A RuntimeBindFailure is always
// a compile-time coverage-checker miss, never something a user needs a
// precise source span for.
var zeroPos = ast.Pos{}

// Eval executes one compiled Action in e, returning the value it
// computes. Every Action form here corresponds 1:1 to the forms
// internal/plan's compiler emits; nothing here decides *how* to
// compile an expression, only how to run an already-compiled one.
func Eval(a plan.Action, e *env.Environment) (Value, error) {
	switch a := a.(type) {
	case *plan.ConstAction:
		return a.Value, nil

	case *plan.LookupAction:
		b, ok := e.LookupPattern(a.Name, a.Ordinal)
		if !ok {
			return nil, fmt.Errorf("eval: unbound %s/%d", a.Name, a.Ordinal)
		}
		if link, ok := b.Value.(*plan.LinkAction); ok {
			return Eval(link.Target, e)
		}
		return b.Value, nil

	case *plan.TupleAction:
		out := make(Tuple, len(a.Elems))
		for i, el := range a.Elems {
			v, err := Eval(el, e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case *plan.RecordAction:
		out := make(Record, len(a.Fields))
		for label, el := range a.Fields {
			v, err := Eval(el, e)
			if err != nil {
				return nil, err
			}
			out[label] = v
		}
		return out, nil

	case *plan.FieldAction:
		rv, err := Eval(a.Record, e)
		if err != nil {
			return nil, err
		}
		r, ok := rv.(Record)
		if !ok {
			return nil, fmt.Errorf("eval: field access on non-record")
		}
		return r[a.Field], nil

	case *plan.ClosureAction:
		return &Closure{Param: a.Param, Body: a.Body, Env: e}, nil

	case *plan.Apply1Action:
		fn, err := Eval(a.Fn, e)
		if err != nil {
			return nil, err
		}
		arg, err := Eval(a.Arg, e)
		if err != nil {
			return nil, err
		}
		return Apply(fn, arg)

	case *plan.Apply2Action:
		fn, err := Eval(a.Fn, e)
		if err != nil {
			return nil, err
		}
		arg1, err := Eval(a.Arg1, e)
		if err != nil {
			return nil, err
		}
		arg2, err := Eval(a.Arg2, e)
		if err != nil {
			return nil, err
		}
		if b, ok := fn.(*Builtin); ok && b.Arity == 2 {
			return b.Fn([]Value{arg1, arg2})
		}
		v, err := Apply(fn, arg1)
		if err != nil {
			return nil, err
		}
		return Apply(v, arg2)

	case *plan.Apply3Action:
		fn, err := Eval(a.Fn, e)
		if err != nil {
			return nil, err
		}
		arg1, err := Eval(a.Arg1, e)
		if err != nil {
			return nil, err
		}
		arg2, err := Eval(a.Arg2, e)
		if err != nil {
			return nil, err
		}
		arg3, err := Eval(a.Arg3, e)
		if err != nil {
			return nil, err
		}
		if b, ok := fn.(*Builtin); ok && b.Arity == 3 {
			return b.Fn([]Value{arg1, arg2, arg3})
		}
		v, err := Apply(fn, arg1)
		if err != nil {
			return nil, err
		}
		v, err = Apply(v, arg2)
		if err != nil {
			return nil, err
		}
		return Apply(v, arg3)

	case *plan.LetAction:
		v, err := Eval(a.Value, e)
		if err != nil {
			return nil, err
		}
		e2, ok := Match(a.Pattern, v, e)
		if !ok {
			return nil, errors.New("eval", errors.RuntimeBindFailure, errors.EVL001, zeroPos, "pattern did not match at evaluation", nil)
		}
		return Eval(a.Body, e2)

	case *plan.MatchAction:
		sv, err := Eval(a.Scrutinee, e)
		if err != nil {
			return nil, err
		}
		for _, c := range a.Cases {
			e2, ok := Match(c.Pattern, sv, e)
			if !ok {
				continue
			}
			if c.Guard != nil {
				gv, err := Eval(c.Guard, e2)
				if err != nil {
					return nil, err
				}
				if b, ok := gv.(bool); !ok || !b {
					continue
				}
			}
			return Eval(c.Body, e2)
		}
		return nil, errors.New("eval", errors.RuntimeBindFailure, errors.EVL001, zeroPos, "no match arm applied", nil)

	case *plan.LinkAction:
		if a.Target == nil {
			return nil, fmt.Errorf("eval: unresolved link (compiler bug)")
		}
		return Eval(a.Target, e)

	case *plan.RowSinkAction:
		var out []Value
		if err := runSink(a.Sink, e, func(v Value) error {
			out = append(out, v)
			return nil
		}); err != nil {
			return nil, err
		}
		return collectionFromRows(a.Sink, out), nil
	}
	return nil, fmt.Errorf("eval: unhandled action %T", a)
}

// Apply applies fn to one argument, currying Builtins as needed.
func Apply(fn Value, arg Value) (Value, error) {
	switch fn := fn.(type) {
	case *Closure:
		e2, ok := Match(fn.Param, arg, fn.Env)
		if !ok {
			return nil, errors.New("eval", errors.RuntimeBindFailure, errors.EVL001, zeroPos, "closure parameter did not match argument", nil)
		}
		return Eval(fn.Body, e2)
	case *Builtin:
		if fn.Arity == 1 {
			return fn.Fn([]Value{arg})
		}
		return &PartialBuiltin{B: fn, Args: []Value{arg}}, nil
	case *PartialBuiltin:
		args := append(append([]Value{}, fn.Args...), arg)
		if len(args) == fn.B.Arity {
			return fn.B.Fn(args)
		}
		return &PartialBuiltin{B: fn.B, Args: args}, nil
	}
	return nil, fmt.Errorf("eval: apply of non-function value %v", fn)
}

// collectionFromRows wraps the rows a RowSink chain produced back into
// a collection. It always returns a List: plan compilation doesn't
// record bag-vs-list on RowSinkAction (that is a typed-AST-level fact,
// the `from` typing policy), and no caller re-wraps the result, so a
// query whose static type is a bag evaluates to a List value.
func collectionFromRows(_ interface{}, rows []Value) Value {
	return List(rows)
}
