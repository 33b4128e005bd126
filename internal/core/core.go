// Package core implements the Core IR: the typed, de-sugared
// intermediate representation produced by internal/elaborate, rewritten
// by internal/ground and internal/simplify, and consumed by
// internal/plan. Core nodes are shared via structural sharing, and a
// rewriting phase builds new nodes rather than editing old ones. Two
// phases do write into nodes in place: internal/infer's finalization
// fills in resolved types and overload ordinals on the nodes it built,
// and internal/coverage records its result in Case.Exhaustive.
package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/types"
)

// Node carries the bookkeeping every Core node needs: a stable id
// assigned by the elaborator, the node's resolved type, and the surface
// position it was lowered from (for diagnostics that survive lowering).
type Node struct {
	NodeID uint64
	Pos    ast.Pos
	Typ    types.Type
}

func (n Node) ID() uint64       { return n.NodeID }
func (n Node) Position() ast.Pos { return n.Pos }
func (n Node) Type() types.Type  { return n.Typ }

// Expr is any Core expression.
type Expr interface {
	ID() uint64
	Position() ast.Pos
	Type() types.Type
	String() string
	exprNode()
}

// Lit is a literal value: a primitive or an embedded runtime value
// (e.g. a foreign value constant folded in by the simplifier).
type Lit struct {
	Node
	Value interface{}
}

func (e *Lit) exprNode()      {}
func (e *Lit) String() string { return fmt.Sprintf("%v", e.Value) }

// Var is a reference to a bound identifier, by name and binding ordinal
// within one scope.
type Var struct {
	Node
	Name    string
	Ordinal int
}

func (e *Var) exprNode()      {}
func (e *Var) String() string { return e.Name }

// Lambda is a function abstraction with a single pattern-binding
// parameter. Curried surface functions lower to nested Lambdas.
type Lambda struct {
	Node
	Param Pattern
	Body  Expr
}

func (e *Lambda) exprNode()      {}
func (e *Lambda) String() string { return fmt.Sprintf("fn %s => %s", e.Param, e.Body) }

// App is function application.
type App struct {
	Node
	Fun, Arg Expr
}

func (e *App) exprNode()      {}
func (e *App) String() string { return fmt.Sprintf("(%s %s)", e.Fun, e.Arg) }

// Let is a (possibly recursive) binding. Rec bindings require Pattern to
// be a *IdentPattern — recursion on a destructured pattern is not
// permitted.
type Let struct {
	Node
	Pattern Pattern
	Rec     bool
	Value   Expr
	Body    Expr
}

func (e *Let) exprNode() {}
func (e *Let) String() string {
	kw := "let"
	if e.Rec {
		kw = "let rec"
	}
	return fmt.Sprintf("%s %s = %s in %s", kw, e.Pattern, e.Value, e.Body)
}

// Tuple constructs an ordered finite sequence of values.
type Tuple struct {
	Node
	Elems []Expr
}

func (e *Tuple) exprNode() {}
func (e *Tuple) String() string {
	parts := make([]string, len(e.Elems))
	for i, x := range e.Elems {
		parts[i] = x.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// RecordLit constructs a record value.
type RecordLit struct {
	Node
	Fields map[string]Expr
}

func (e *RecordLit) exprNode() {}
func (e *RecordLit) String() string {
	labels := make([]string, 0, len(e.Fields))
	for l := range e.Fields {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s = %s", l, e.Fields[l])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FieldAccess is the resolved form of a surface `#field` selector: direct
// projection of one field out of Record.
type FieldAccess struct {
	Node
	Record Expr
	Field  string
}

func (e *FieldAccess) exprNode()      {}
func (e *FieldAccess) String() string { return fmt.Sprintf("%s.%s", e.Record, e.Field) }

// MatchArm is one `pattern [when guard] => body` arm of a Case.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // optional
	Body    Expr
}

// Case is pattern-match dispatch.
type Case struct {
	Node
	Scrutinee  Expr
	Arms       []MatchArm
	Exhaustive bool // set by internal/coverage
}

func (e *Case) exprNode() {}
func (e *Case) String() string {
	parts := make([]string, len(e.Arms))
	for i, a := range e.Arms {
		parts[i] = fmt.Sprintf("%s => %s", a.Pattern, a.Body)
	}
	return fmt.Sprintf("case %s of %s", e.Scrutinee, strings.Join(parts, " | "))
}

// From is a query built from an ordered list of steps. By the
// time internal/ground has run, every ScanStep's Collection is non-nil —
// Expr.Type() reflects the grounded element/collection kind.
type From struct {
	Node
	Steps []FromStep
}

func (e *From) exprNode() {}
func (e *From) String() string {
	parts := make([]string, len(e.Steps))
	for i, s := range e.Steps {
		parts[i] = s.String()
	}
	return "from " + strings.Join(parts, " ")
}

// Binding describes one identifier a from-step brings into scope, used
// to record each step's output environment.
type Binding struct {
	Name    string
	Ordinal int
	Type    types.Type
}

// Decl is one top-level binding of a compiled Program.
type Decl struct {
	Name    string
	Ordinal int
	Rec     bool
	Value   Expr
	Type    types.Type
}

// Program is a lowered compilation unit: an ordered list of top-level
// bindings.
type Program struct {
	Decls []Decl
}
