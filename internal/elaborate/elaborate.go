// Package elaborate drives internal/infer across a whole compilation unit:
// it threads one environment through every top-level declaration in order,
// producing a lowered Core program. The per-declaration walk (term
// generation, unification, finalization) lives in internal/infer; this
// package only owns the sequencing and the prelude the program starts from.
package elaborate

import (
	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/infer"
	"github.com/morel-lang/morelc/internal/types"
)

// Elaborator elaborates a sequence of top-level declarations against a
// single shared types.System, so every declaration's fresh type variables
// and datatype registrations are visible to the ones after it.
type Elaborator struct {
	sys    *types.System
	tracer types.Tracer
}

// New creates an Elaborator with a fresh type system.
func New() *Elaborator {
	return &Elaborator{sys: types.NewSystem(), tracer: types.NoopTracer{}}
}

// SetTracer installs a diagnostic tracer forwarded to every declaration's
// inference context.
func (el *Elaborator) SetTracer(t types.Tracer) { el.tracer = t }

// System returns the shared type system, for callers (e.g. a REPL session)
// that need to keep allocating fresh variables or registering datatypes
// between calls to Elaborate.
func (el *Elaborator) System() *types.System { return el.sys }

// Elaborate lowers every declaration in f in order, starting from prelude,
// and returns the resulting Core program together with the environment the
// next compilation unit (or REPL line) should continue from. OverDecl and
// DatatypeDecl contribute only to the returned environment; they produce no
// Core declaration.
func (el *Elaborator) Elaborate(f *ast.File, prelude *env.Environment) (*core.Program, *env.Environment, error) {
	e := prelude
	var decls []core.Decl
	for _, d := range f.Decls {
		decl, newEnv, err := el.ElaborateDecl(e, d)
		if err != nil {
			return nil, e, err
		}
		e = newEnv
		if decl != nil {
			decls = append(decls, *decl)
		}
	}
	return &core.Program{Decls: decls}, e, nil
}

// ElaborateDecl lowers a single declaration against e, for callers (e.g. a
// REPL) that process one statement at a time rather than a whole file.
func (el *Elaborator) ElaborateDecl(e *env.Environment, d ast.Decl) (*core.Decl, *env.Environment, error) {
	ctx := infer.New(el.sys)
	ctx.SetTracer(el.tracer)
	return ctx.InferDecl(e, d)
}
