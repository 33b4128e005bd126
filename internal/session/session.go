// Package session implements the external interface: the compiler's
// two entry points (validateExpression, prepareStatement) and the
// CompiledStatement contract they hand back. It is the one package
// that drives every other phase in pipeline order — elaborate, ground,
// coverage, simplify, plan — and owns the config a whole compilation
// reads, tying together what are otherwise independently testable
// phases.
package session

import (
	"fmt"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/builtins"
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/coverage"
	"github.com/morel-lang/morelc/internal/elaborate"
	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/errors"
	"github.com/morel-lang/morelc/internal/eval"
	"github.com/morel-lang/morelc/internal/ground"
	"github.com/morel-lang/morelc/internal/plan"
	"github.com/morel-lang/morelc/internal/prettyprint"
	"github.com/morel-lang/morelc/internal/simplify"
	"github.com/morel-lang/morelc/internal/types"
)

// CoverageMode selects how a NonExhaustiveMatch/RedundantMatch finding
// from internal/coverage is surfaced.
type CoverageMode int

const (
	CoverageError CoverageMode = iota
	CoverageWarn
)

// Config is the ambient, session-scoped configuration every compiled
// statement reads.
type Config struct {
	Coverage          CoverageMode
	MaxSimplifyPasses int
	PrettyPrint       prettyprint.Config
}

// DefaultConfig holds the REPL's own defaults: pattern coverage
// failures are hard errors, the simplifier runs to its normal
// fixed-point bound, and values print at prettyprint's default width.
func DefaultConfig() Config {
	return Config{Coverage: CoverageError, MaxSimplifyPasses: simplify.DefaultMaxPasses, PrettyPrint: prettyprint.Default()}
}

// Backend selects the evaluator a prepared statement will run on.
type Backend int

const (
	// DefaultEvaluator lowers to internal/plan + internal/eval, the only
	// evaluator this module implements.
	DefaultEvaluator Backend = iota
	// CalciteBackend names the alternate relational backend, treated as
	// an external collaborator; requesting it here is a configuration
	// error, not a silently-ignored hint.
	CalciteBackend
)

// ErrUnsupportedBackend is returned by PrepareStatement when asked for a
// backend this module doesn't implement.
var ErrUnsupportedBackend = fmt.Errorf("session: backend not implemented by this core")

// Session drives one compilation's worth of state across possibly many
// statements (a file's declarations, or a REPL's lines): one shared
// types.System so later statements see earlier ones' type variables and
// datatype registrations, plus the config every statement compiles
// under.
type Session struct {
	el  *elaborate.Elaborator
	cfg Config
}

// New creates a Session with a fresh type system.
func New(cfg Config) *Session {
	return &Session{el: elaborate.New(), cfg: cfg}
}

// System returns the shared type system, for callers that need to
// register additional datatypes between statements.
func (s *Session) System() *types.System { return s.el.System() }

// Prelude returns the initial compile-time and runtime environments
// seeded by internal/builtins' foreign-value registry, ready to pass
// as PrepareStatement's env argument and as the runtime env
// CompiledStatement.Eval threads forward.
func (s *Session) Prelude() (typeEnv, runtimeEnv *env.Environment) {
	return builtins.Specs(s.el.System())
}

// Resolved is validateExpression's result: the typed Core this
// declaration lowers to, its resulting compile-time environment, and
// its top-level type — everything a test needs to assert against
// without ever reaching code emission.
type Resolved struct {
	Decl *core.Decl
	Env  *env.Environment
	Type types.Type
}

// ValidateExpression type-checks one declaration against typeEnv (built
// from foreignValues, e.g. via Prelude or a test's own hand-rolled
// environment) and returns its resolved type without lowering past Core
// or emitting a plan.
func (s *Session) ValidateExpression(typeEnv *env.Environment, d ast.Decl) (*Resolved, error) {
	decl, newEnv, err := s.el.ElaborateDecl(typeEnv, d)
	if err != nil {
		return nil, err
	}
	var t types.Type = &types.TPrim{Name: types.Unit}
	if decl != nil {
		t = decl.Type
	}
	return &Resolved{Decl: decl, Env: newEnv, Type: t}, nil
}

// Binding is one new binding a CompiledStatement's evaluation produces,
// handed to eval's outBindings callback in source order.
type Binding struct {
	Name    string
	Ordinal int
	Type    types.Type
	Value   eval.Value
}

// CompiledStatement holds everything a compiled statement must: the
// declared top-level type, the action list (here, one plan.DeclPlan
// per top-level declaration — each produces zero or more output lines
// and emits new bindings), and the config captured at prepare time.
type CompiledStatement struct {
	decls []plan.DeclPlan
	types []types.Type
	cfg   Config
}

// Type returns the statement's declared top-level type: the type of its
// last declaration, matching a REPL's "value of this input" convention
// when several declarations are submitted together.
func (cs *CompiledStatement) Type() types.Type {
	if len(cs.types) == 0 {
		return &types.TPrim{Name: types.Unit}
	}
	return cs.types[len(cs.types)-1]
}

// Bindings reports the bindings this statement would produce, without
// evaluating anything.
func (cs *CompiledStatement) Bindings(outSink func(Binding)) {
	for i, d := range cs.decls {
		outSink(Binding{Name: d.Name, Ordinal: d.Ordinal, Type: cs.types[i]})
	}
}

// Eval executes every action in source order, threading runtimeEnv
// forward so later declarations see earlier ones' values, calling
// outLines once per printed value line and outBindings once per new
// binding, both synchronously. A runtime fault is formatted and
// appended to outLines rather than silently dropped, and Eval returns
// after the first one: nothing downstream of a failed binding is in a
// well-defined state to keep running.
func (cs *CompiledStatement) Eval(runtimeEnv *env.Environment, outLines func(string), outBindings func(Binding)) error {
	e := runtimeEnv
	for i, d := range cs.decls {
		v, err := eval.Eval(d.Body, e)
		if err != nil {
			outLines(fmt.Sprintf("! %s", err))
			return err
		}
		t := cs.types[i]
		b := &env.Binding{Name: d.Name, Ordinal: d.Ordinal, Value: v, Type: t, Kind: env.VAL}
		e = e.Bind(b)
		outLines(fmt.Sprintf("val %s = %s : %s", d.Name, prettyprint.Format(v, cs.cfg.PrettyPrint), t))
		outBindings(Binding{Name: d.Name, Ordinal: d.Ordinal, Type: t, Value: v})
	}
	return nil
}

// isWarningOnly reports whether err is a coverage finding this Session's
// config downgrades to a warning rather than a hard failure.
func (s *Session) isWarningOnly(err error) (string, bool) {
	if s.cfg.Coverage != CoverageWarn {
		return "", false
	}
	rep, ok := errors.AsReport(err)
	if !ok {
		return "", false
	}
	if rep.Kind == errors.NonExhaustiveMatch || rep.Kind == errors.RedundantMatch {
		return rep.Message, true
	}
	return "", false
}

// PrepareStatement runs the full pipeline over f against typeEnv:
// type inference + lowering (internal/elaborate), query
// grounding (internal/ground), pattern coverage (internal/coverage),
// inlining/simplification (internal/simplify), and plan building
// (internal/plan). It returns the compiled statement plus the
// compile-time environment the next statement should continue from,
// exactly like ElaborateDecl/Elaborate already do — PrepareStatement is
// additive over that contract, not a replacement for it.
func (s *Session) PrepareStatement(typeEnv *env.Environment, f *ast.File, backend Backend) (*CompiledStatement, *env.Environment, []string, error) {
	if backend != DefaultEvaluator {
		return nil, typeEnv, nil, fmt.Errorf("%w: %v", ErrUnsupportedBackend, backend)
	}

	prog, newTypeEnv, err := s.el.Elaborate(f, typeEnv)
	if err != nil {
		return nil, typeEnv, nil, err
	}

	grounded, err := ground.Program(prog)
	if err != nil {
		return nil, typeEnv, nil, err
	}

	var warnings []string
	if err := coverage.Annotate(s.el.System(), grounded); err != nil {
		if msg, ok := s.isWarningOnly(err); ok {
			warnings = append(warnings, msg)
		} else {
			return nil, typeEnv, nil, err
		}
	}

	simplified := simplify.Program(grounded, s.cfg.MaxSimplifyPasses)

	decls := plan.Program(simplified)
	for _, d := range decls {
		if errs := plan.Validate(d.Body); len(errs) > 0 {
			return nil, typeEnv, nil, errs[0]
		}
	}

	declTypes := make([]types.Type, len(simplified.Decls))
	for i, d := range simplified.Decls {
		declTypes[i] = d.Type
	}

	return &CompiledStatement{decls: decls, types: declTypes, cfg: s.cfg}, newTypeEnv, warnings, nil
}
