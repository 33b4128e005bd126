package coverage

import (
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/types"
)

// Annotate walks every declaration in prog, running CheckCase against
// each Case node it finds (at any nesting depth) and recording the
// result on Case.Exhaustive. It stops at the first coverage error and
// returns it, matching how internal/infer's solve() surfaces only its
// first failure; Case nodes the walk has not reached by then are left
// unannotated.
func Annotate(sys *types.System, prog *core.Program) error {
	for _, d := range prog.Decls {
		if err := annotateExpr(sys, d.Value); err != nil {
			return err
		}
	}
	return nil
}

func annotateExpr(sys *types.System, e core.Expr) error {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *core.Lit, *core.Var:
		return nil

	case *core.Lambda:
		return annotateExpr(sys, e.Body)

	case *core.App:
		if err := annotateExpr(sys, e.Fun); err != nil {
			return err
		}
		return annotateExpr(sys, e.Arg)

	case *core.Let:
		if err := annotateExpr(sys, e.Value); err != nil {
			return err
		}
		return annotateExpr(sys, e.Body)

	case *core.Tuple:
		for _, x := range e.Elems {
			if err := annotateExpr(sys, x); err != nil {
				return err
			}
		}
		return nil

	case *core.RecordLit:
		for _, x := range e.Fields {
			if err := annotateExpr(sys, x); err != nil {
				return err
			}
		}
		return nil

	case *core.FieldAccess:
		return annotateExpr(sys, e.Record)

	case *core.Case:
		arms := make([]core.Pattern, len(e.Arms))
		for i, a := range e.Arms {
			arms[i] = a.Pattern
		}
		redundant, exhaustive := Check(sys, arms, e.Scrutinee.Type())
		e.Exhaustive = exhaustive
		if err := errorFor(redundant, exhaustive, e.Position()); err != nil {
			return err
		}
		if err := annotateExpr(sys, e.Scrutinee); err != nil {
			return err
		}
		for _, a := range e.Arms {
			if err := annotateExpr(sys, a.Guard); err != nil {
				return err
			}
			if err := annotateExpr(sys, a.Body); err != nil {
				return err
			}
		}
		return nil

	case *core.From:
		for _, s := range e.Steps {
			if err := annotateFromStep(sys, s); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func annotateFromStep(sys *types.System, s core.FromStep) error {
	switch s := s.(type) {
	case *core.ScanStep:
		if err := annotateExpr(sys, s.Collection); err != nil {
			return err
		}
		return annotateExpr(sys, s.Cond)
	case *core.WhereStep:
		return annotateExpr(sys, s.Cond)
	case *core.SkipStep:
		return annotateExpr(sys, s.Count)
	case *core.TakeStep:
		return annotateExpr(sys, s.Count)
	case *core.DistinctStep:
		return nil
	case *core.YieldStep:
		return annotateExpr(sys, s.Result)
	case *core.OrderStep:
		for _, it := range s.Keys {
			if err := annotateExpr(sys, it.Key); err != nil {
				return err
			}
		}
		return nil
	case *core.GroupStep:
		for _, ke := range s.KeyExprs {
			if err := annotateExpr(sys, ke); err != nil {
				return err
			}
		}
		for _, a := range s.Aggregates {
			if err := annotateExpr(sys, a.Over); err != nil {
				return err
			}
		}
		return nil
	case *core.ComputeStep:
		return annotateExpr(sys, s.Value)
	case *core.SetOpStep:
		return annotateExpr(sys, s.Other)
	}
	return nil
}
