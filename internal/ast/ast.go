// Package ast defines the surface abstract syntax tree that morelc consumes.
//
// The lexer and parser that produce this tree are out of scope for morelc
// this package only defines the contract they hand off.
// Every node is immutable once constructed — downstream phases attach
// information (types, core forms) in side tables keyed by node identity,
// never by mutating a node in place.
package ast

import (
	"fmt"
	"strings"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	String() string
	Position() Pos
}

// Pos is a position in the original source text.
type Pos struct {
	Line   int
	Column int
	File   string
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// File is a parsed compilation unit: a sequence of top-level declarations.
type File struct {
	Decls []Decl
	Pos   Pos
}

func (f *File) Position() Pos { return f.Pos }
func (f *File) String() string {
	parts := make([]string, len(f.Decls))
	for i, d := range f.Decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// ValDecl declares a single value binding: `val name = exp`.
type ValDecl struct {
	Name string
	Exp  Expr
	Rec  bool // true for `val rec` (self-recursive bindings)
	Pos  Pos
}

func (d *ValDecl) declNode()      {}
func (d *ValDecl) Position() Pos  { return d.Pos }
func (d *ValDecl) String() string {
	if d.Rec {
		return fmt.Sprintf("val rec %s = %s", d.Name, d.Exp)
	}
	return fmt.Sprintf("val %s = %s", d.Name, d.Exp)
}

// FunDecl declares a (possibly multi-clause) function: `fun f p1 = e1 | f p2 = e2 | ...`.
type FunDecl struct {
	Name    string
	Clauses []FunClause
	Pos     Pos
}

// FunClause is one clause of a multi-clause function declaration.
type FunClause struct {
	Params []Pattern
	Body   Expr
}

func (d *FunDecl) declNode()     {}
func (d *FunDecl) Position() Pos { return d.Pos }
func (d *FunDecl) String() string {
	parts := make([]string, len(d.Clauses))
	for i, c := range d.Clauses {
		ps := make([]string, len(c.Params))
		for j, p := range c.Params {
			ps[j] = p.String()
		}
		parts[i] = fmt.Sprintf("%s %s = %s", d.Name, strings.Join(ps, " "), c.Body)
	}
	return "fun " + strings.Join(parts, " | ")
}

// OverDecl introduces an overloaded name. It carries no
// implementation of its own; InstDecl supplies candidates.
type OverDecl struct {
	Name string
	Pos  Pos
}

func (d *OverDecl) declNode()      {}
func (d *OverDecl) Position() Pos  { return d.Pos }
func (d *OverDecl) String() string { return fmt.Sprintf("over %s", d.Name) }

// InstDecl supplies one instance of a previously-declared OVER name.
type InstDecl struct {
	Name string
	Exp  Expr
	Pos  Pos
}

func (d *InstDecl) declNode()      {}
func (d *InstDecl) Position() Pos  { return d.Pos }
func (d *InstDecl) String() string { return fmt.Sprintf("val inst %s = %s", d.Name, d.Exp) }

// DatatypeDecl declares one or more mutually-recursive datatypes.
type DatatypeDecl struct {
	Types []DatatypeDef
	Pos   Pos
}

// DatatypeDef is one `name tyvars = Ctor1 [of ty] | Ctor2 [of ty] | ...`.
type DatatypeDef struct {
	Name         string
	TypeParams   []string
	Constructors []ConstructorDef
}

// ConstructorDef names a constructor and its optional argument type.
type ConstructorDef struct {
	Name string
	Arg  TypeExpr // nil for a nullary constructor
}

func (d *DatatypeDecl) declNode()     {}
func (d *DatatypeDecl) Position() Pos { return d.Pos }
func (d *DatatypeDecl) String() string {
	parts := make([]string, len(d.Types))
	for i, t := range d.Types {
		ctors := make([]string, len(t.Constructors))
		for j, c := range t.Constructors {
			if c.Arg != nil {
				ctors[j] = fmt.Sprintf("%s of %s", c.Name, c.Arg)
			} else {
				ctors[j] = c.Name
			}
		}
		parts[i] = fmt.Sprintf("%s = %s", t.Name, strings.Join(ctors, " | "))
	}
	return "datatype " + strings.Join(parts, " and ")
}

// ExpDecl wraps a bare top-level expression (REPL-style statement).
type ExpDecl struct {
	Exp Expr
	Pos Pos
}

func (d *ExpDecl) declNode()      {}
func (d *ExpDecl) Position() Pos  { return d.Pos }
func (d *ExpDecl) String() string { return d.Exp.String() }

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Lit is a literal of a primitive type.
type Lit struct {
	Kind  LitKind
	Value interface{}
	Pos   Pos
}

// LitKind distinguishes the primitive literal forms.
type LitKind int

const (
	BoolLit LitKind = iota
	CharLit
	IntLit
	RealLit
	StringLit
	UnitLit
)

func (e *Lit) exprNode()      {}
func (e *Lit) Position() Pos  { return e.Pos }
func (e *Lit) String() string { return fmt.Sprintf("%v", e.Value) }

// Ident references a bound name.
type Ident struct {
	Name string
	Pos  Pos
}

func (e *Ident) exprNode()      {}
func (e *Ident) Position() Pos  { return e.Pos }
func (e *Ident) String() string { return e.Name }

// RecordSelector is `#field`, a function from a flex record to a field's value.
type RecordSelector struct {
	Field string
	Pos   Pos
}

func (e *RecordSelector) exprNode()      {}
func (e *RecordSelector) Position() Pos  { return e.Pos }
func (e *RecordSelector) String() string { return "#" + e.Field }

// Fn is a single-clause function abstraction: `fn pat => body`.
type Fn struct {
	Param Pattern
	Body  Expr
	Pos   Pos
}

func (e *Fn) exprNode()      {}
func (e *Fn) Position() Pos  { return e.Pos }
func (e *Fn) String() string { return fmt.Sprintf("fn %s => %s", e.Param, e.Body) }

// App is function application.
type App struct {
	Fun Expr
	Arg Expr
	Pos Pos
}

func (e *App) exprNode()      {}
func (e *App) Position() Pos  { return e.Pos }
func (e *App) String() string { return fmt.Sprintf("(%s %s)", e.Fun, e.Arg) }

// If is a conditional expression.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
	Pos  Pos
}

func (e *If) exprNode()      {}
func (e *If) Position() Pos  { return e.Pos }
func (e *If) String() string { return fmt.Sprintf("if %s then %s else %s", e.Cond, e.Then, e.Else) }

// Let is a (possibly recursive) local binding.
type Let struct {
	Name string
	Rec  bool
	Val  Expr
	Body Expr
	Pos  Pos
}

func (e *Let) exprNode()     {}
func (e *Let) Position() Pos { return e.Pos }
func (e *Let) String() string {
	kw := "let val"
	if e.Rec {
		kw = "let val rec"
	}
	return fmt.Sprintf("%s %s = %s in %s end", kw, e.Name, e.Val, e.Body)
}

// Tuple is an ordered finite sequence of component expressions.
type Tuple struct {
	Elems []Expr
	Pos   Pos
}

func (e *Tuple) exprNode()     {}
func (e *Tuple) Position() Pos { return e.Pos }
func (e *Tuple) String() string {
	parts := make([]string, len(e.Elems))
	for i, x := range e.Elems {
		parts[i] = x.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// RecordExp constructs a record value; field order is not significant.
type RecordExp struct {
	Fields []RecordField
	Pos    Pos
}

// RecordField is one `label = exp` entry of a record expression.
type RecordField struct {
	Label string
	Exp   Expr
}

func (e *RecordExp) exprNode()     {}
func (e *RecordExp) Position() Pos { return e.Pos }
func (e *RecordExp) String() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s = %s", f.Label, f.Exp)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ListExp constructs a list literal `[e1, e2, ...]`.
type ListExp struct {
	Elems []Expr
	Pos   Pos
}

func (e *ListExp) exprNode()     {}
func (e *ListExp) Position() Pos { return e.Pos }
func (e *ListExp) String() string {
	parts := make([]string, len(e.Elems))
	for i, x := range e.Elems {
		parts[i] = x.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// AndAlso / OrElse are short-circuiting boolean connectives, kept distinct
// from BinOp. internal/infer lowers them to a two-arm Core Case, and that
// Case shape is what the query grounder pattern-matches on.
type AndAlso struct {
	Left, Right Expr
	Pos         Pos
}

func (e *AndAlso) exprNode()      {}
func (e *AndAlso) Position() Pos  { return e.Pos }
func (e *AndAlso) String() string { return fmt.Sprintf("(%s andalso %s)", e.Left, e.Right) }

type OrElse struct {
	Left, Right Expr
	Pos         Pos
}

func (e *OrElse) exprNode()      {}
func (e *OrElse) Position() Pos  { return e.Pos }
func (e *OrElse) String() string { return fmt.Sprintf("(%s orelse %s)", e.Left, e.Right) }

// BinOp is a binary operator application (`+`, `-`, `=`, `<`, `elem`, ...).
type BinOp struct {
	Op          string
	Left, Right Expr
	Pos         Pos
}

func (e *BinOp) exprNode()      {}
func (e *BinOp) Position() Pos  { return e.Pos }
func (e *BinOp) String() string { return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right) }

// Case is pattern-match dispatch.
type Case struct {
	Scrutinee Expr
	Arms      []CaseArm
	Pos       Pos
}

// CaseArm is one `pat => exp` arm of a case expression.
type CaseArm struct {
	Pattern Pattern
	Exp     Expr
}

func (e *Case) exprNode()     {}
func (e *Case) Position() Pos { return e.Pos }
func (e *Case) String() string {
	parts := make([]string, len(e.Arms))
	for i, a := range e.Arms {
		parts[i] = fmt.Sprintf("%s => %s", a.Pattern, a.Exp)
	}
	return fmt.Sprintf("case %s of %s", e.Scrutinee, strings.Join(parts, " | "))
}

// From is a query comprehension: an ordered sequence of from-steps.
type From struct {
	Steps []FromStep
	Pos   Pos
}

func (e *From) exprNode()     {}
func (e *From) Position() Pos { return e.Pos }
func (e *From) String() string {
	parts := make([]string, len(e.Steps))
	for i, s := range e.Steps {
		parts[i] = s.String()
	}
	return "from " + strings.Join(parts, " ")
}

// FromStep is one stage of a query pipeline.
type FromStep interface {
	Node
	fromStepNode()
}

// ScanStep iterates a collection (or, before grounding, an implicit
// infinite extent when Collection is nil), binding Pattern and filtering
// by the optional Cond.
type ScanStep struct {
	Pattern    Pattern
	Collection Expr // nil means "scan the type's extent" (pre-grounding)
	Cond       Expr // optional filter fused into the scan
	Pos        Pos
}

func (s *ScanStep) fromStepNode()  {}
func (s *ScanStep) Position() Pos  { return s.Pos }
func (s *ScanStep) String() string {
	if s.Collection == nil {
		return fmt.Sprintf("%s in <extent>", s.Pattern)
	}
	return fmt.Sprintf("%s in %s", s.Pattern, s.Collection)
}

// WhereStep filters rows by a predicate.
type WhereStep struct {
	Pred Expr
	Pos  Pos
}

func (s *WhereStep) fromStepNode()  {}
func (s *WhereStep) Position() Pos  { return s.Pos }
func (s *WhereStep) String() string { return fmt.Sprintf("where %s", s.Pred) }

// SkipStep drops the first N rows.
type SkipStep struct {
	N   Expr
	Pos Pos
}

func (s *SkipStep) fromStepNode()  {}
func (s *SkipStep) Position() Pos  { return s.Pos }
func (s *SkipStep) String() string { return fmt.Sprintf("skip %s", s.N) }

// TakeStep keeps only the first N rows.
type TakeStep struct {
	N   Expr
	Pos Pos
}

func (s *TakeStep) fromStepNode()  {}
func (s *TakeStep) Position() Pos  { return s.Pos }
func (s *TakeStep) String() string { return fmt.Sprintf("take %s", s.N) }

// DistinctStep removes duplicate rows.
type DistinctStep struct {
	Pos Pos
}

func (s *DistinctStep) fromStepNode()  {}
func (s *DistinctStep) Position() Pos  { return s.Pos }
func (s *DistinctStep) String() string { return "distinct" }

// YieldStep projects the current row into a new shape.
type YieldStep struct {
	Exp Expr
	Pos Pos
}

func (s *YieldStep) fromStepNode()  {}
func (s *YieldStep) Position() Pos  { return s.Pos }
func (s *YieldStep) String() string { return fmt.Sprintf("yield %s", s.Exp) }

// OrderItem is one `exp [desc]` entry of an order step.
type OrderItem struct {
	Exp  Expr
	Desc bool
}

// OrderStep sorts rows; forces the output collection to be a list.
type OrderStep struct {
	Items []OrderItem
	Pos   Pos
}

func (s *OrderStep) fromStepNode() {}
func (s *OrderStep) Position() Pos { return s.Pos }
func (s *OrderStep) String() string {
	parts := make([]string, len(s.Items))
	for i, it := range s.Items {
		if it.Desc {
			parts[i] = it.Exp.String() + " desc"
		} else {
			parts[i] = it.Exp.String()
		}
	}
	return "order " + strings.Join(parts, ", ")
}

// Aggregate is one `label = agg(exp)` entry of a group/compute step.
type Aggregate struct {
	Label string
	Func  string // "sum", "count", "max", "min", "avg", ...
	Exp   Expr   // nil for zero-argument aggregates such as `count`
}

// GroupStep partitions rows by Keys and reduces each partition with Aggs.
type GroupStep struct {
	Keys []RecordField
	Aggs []Aggregate
	Pos  Pos
}

func (s *GroupStep) fromStepNode() {}
func (s *GroupStep) Position() Pos { return s.Pos }
func (s *GroupStep) String() string {
	keys := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		keys[i] = fmt.Sprintf("%s = %s", k.Label, k.Exp)
	}
	return fmt.Sprintf("group %s compute %d aggs", strings.Join(keys, ", "), len(s.Aggs))
}

// ComputeStep reduces the whole input to a single row of aggregates,
// with no grouping keys.
type ComputeStep struct {
	Aggs []Aggregate
	Pos  Pos
}

func (s *ComputeStep) fromStepNode()  {}
func (s *ComputeStep) Position() Pos  { return s.Pos }
func (s *ComputeStep) String() string { return fmt.Sprintf("compute %d aggs", len(s.Aggs)) }

// SetOpKind distinguishes the three set-combining from-steps.
type SetOpKind int

const (
	SetUnion SetOpKind = iota
	SetIntersect
	SetExcept
)

func (k SetOpKind) String() string {
	switch k {
	case SetUnion:
		return "union"
	case SetIntersect:
		return "intersect"
	case SetExcept:
		return "except"
	}
	return "?setop"
}

// SetOpStep combines the current pipeline with one or more argument
// collections via union/intersect/except.
type SetOpStep struct {
	Kind     SetOpKind
	Args     []Expr
	Distinct bool
	Pos      Pos
}

func (s *SetOpStep) fromStepNode()  {}
func (s *SetOpStep) Position() Pos  { return s.Pos }
func (s *SetOpStep) String() string { return fmt.Sprintf("%s %d args", s.Kind, len(s.Args)) }

// TypeExpr is surface type syntax, as written in `datatype`/annotation
// positions. It is distinct from internal/types.Type, which is the
// inferencer's internal representation.
type TypeExpr interface {
	Node
	typeExprNode()
}

// TypeName is a named type possibly applied to type arguments, e.g. `int`
// or `'a list` or `(int, string) map`.
type TypeName struct {
	Name string
	Args []TypeExpr
	Pos  Pos
}

func (t *TypeName) typeExprNode()  {}
func (t *TypeName) Position() Pos  { return t.Pos }
func (t *TypeName) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s) %s", strings.Join(parts, ", "), t.Name)
}

// TypeVarExpr is a surface type variable, e.g. `'a`.
type TypeVarExpr struct {
	Name string
	Pos  Pos
}

func (t *TypeVarExpr) typeExprNode()  {}
func (t *TypeVarExpr) Position() Pos  { return t.Pos }
func (t *TypeVarExpr) String() string { return t.Name }

// FuncTypeExpr is a surface function type `t1 -> t2`.
type FuncTypeExpr struct {
	Param, Result TypeExpr
	Pos           Pos
}

func (t *FuncTypeExpr) typeExprNode()  {}
func (t *FuncTypeExpr) Position() Pos  { return t.Pos }
func (t *FuncTypeExpr) String() string { return fmt.Sprintf("%s -> %s", t.Param, t.Result) }
