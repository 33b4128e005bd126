package plan

import "fmt"

// LinkAction is a placeholder emitted for a recursive binding before its
// right-hand side is compiled. Every reference to the bound name
// inside that right-hand side, and in the let's body, compiles to this
// same LinkAction rather than a LookupAction — once the right-hand side
// finishes compiling, compileLet sets Target to the result. A LinkAction
// reachable with a nil Target at evaluation time is a compiler bug, not
// a program error; Validate catches it statically instead of leaving
// internal/eval to discover it by crashing on a live nil pointer.
type LinkAction struct {
	Target Action
}

func (*LinkAction) actionNode() {}

// LinkError reports a LinkAction whose Target was never resolved.
type LinkError struct {
	Path string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("plan: unresolved link at %s", e.Path)
}

// Validate walks a, reporting every unresolved LinkAction it finds. It
// is meant to run once per compiled declaration right after compilation,
// as a self-check on the compiler rather than a pass a caller must run
// for correctness.
func Validate(a Action) []error {
	var errs []error
	walkValidate(a, "decl", &errs)
	return errs
}

func walkValidate(a Action, path string, errs *[]error) {
	if a == nil {
		return
	}
	switch a := a.(type) {
	case *ConstAction, *LookupAction:
	case *TupleAction:
		for i, e := range a.Elems {
			walkValidate(e, fmt.Sprintf("%s.elem[%d]", path, i), errs)
		}
	case *RecordAction:
		for label, e := range a.Fields {
			walkValidate(e, fmt.Sprintf("%s.field[%s]", path, label), errs)
		}
	case *FieldAction:
		walkValidate(a.Record, path+".record", errs)
	case *ClosureAction:
		walkValidate(a.Body, path+".body", errs)
	case *Apply1Action:
		walkValidate(a.Fn, path+".fn", errs)
		walkValidate(a.Arg, path+".arg", errs)
	case *Apply2Action:
		walkValidate(a.Fn, path+".fn", errs)
		walkValidate(a.Arg1, path+".arg1", errs)
		walkValidate(a.Arg2, path+".arg2", errs)
	case *Apply3Action:
		walkValidate(a.Fn, path+".fn", errs)
		walkValidate(a.Arg1, path+".arg1", errs)
		walkValidate(a.Arg2, path+".arg2", errs)
		walkValidate(a.Arg3, path+".arg3", errs)
	case *MatchAction:
		walkValidate(a.Scrutinee, path+".scrutinee", errs)
		for i, c := range a.Cases {
			if c.Guard != nil {
				walkValidate(c.Guard, fmt.Sprintf("%s.case[%d].guard", path, i), errs)
			}
			walkValidate(c.Body, fmt.Sprintf("%s.case[%d].body", path, i), errs)
		}
	case *LetAction:
		walkValidate(a.Value, path+".value", errs)
		walkValidate(a.Body, path+".body", errs)
	case *LinkAction:
		if a.Target == nil {
			*errs = append(*errs, &LinkError{Path: path})
			return
		}
		walkValidate(a.Target, path+".link", errs)
	case *RowSinkAction:
		walkValidateSink(a.Sink, path+".sink", errs)
	}
}

func walkValidateSink(s RowSink, path string, errs *[]error) {
	if s == nil {
		return
	}
	switch s := s.(type) {
	case *ScanSink:
		walkValidate(s.Collection, path+".collection", errs)
		if s.Cond != nil {
			walkValidate(s.Cond, path+".cond", errs)
		}
		walkValidateSink(s.Next, path+".next", errs)
	case *WhereSink:
		walkValidate(s.Cond, path+".cond", errs)
		walkValidateSink(s.Next, path+".next", errs)
	case *SkipSink:
		walkValidate(s.Count, path+".count", errs)
		walkValidateSink(s.Next, path+".next", errs)
	case *TakeSink:
		walkValidate(s.Count, path+".count", errs)
		walkValidateSink(s.Next, path+".next", errs)
	case *DistinctSink:
		walkValidateSink(s.Next, path+".next", errs)
	case *OrderSink:
		for i, k := range s.Keys {
			walkValidate(k.Key, fmt.Sprintf("%s.key[%d]", path, i), errs)
		}
		walkValidateSink(s.Next, path+".next", errs)
	case *GroupSink:
		for i, k := range s.KeyExprs {
			walkValidate(k, fmt.Sprintf("%s.keyExpr[%d]", path, i), errs)
		}
		for i, a := range s.Aggregates {
			walkValidate(a.Over, fmt.Sprintf("%s.agg[%d]", path, i), errs)
		}
		walkValidateSink(s.Next, path+".next", errs)
	case *ComputeSink:
		walkValidate(s.Value, path+".value", errs)
		walkValidateSink(s.Next, path+".next", errs)
	case *SetOpSink:
		walkValidate(s.Other, path+".other", errs)
		walkValidateSink(s.Next, path+".next", errs)
	case *CollectSink:
		walkValidate(s.Result, path+".result", errs)
	}
}
