// Package plan implements the plan builder: it lowers a simplified
// Core declaration into an *action list*, a tree of Action values that
// internal/eval walks to produce, print and bind one value per
// declaration. Nothing here evaluates anything — compilation only
// decides which action shape each Core node becomes.
package plan

import "github.com/morel-lang/morelc/internal/core"

// Action is one node of a compiled plan. Every Core expression compiles
// to exactly one Action; the action tree mirrors the expression tree
// but with lookups, applications and matches resolved to the concrete
// runtime operation internal/eval must perform.
type Action interface {
	actionNode()
}

// ConstAction evaluates to a fixed value (the case of a Core Lit).
type ConstAction struct {
	Value interface{}
}

func (*ConstAction) actionNode() {}

// LookupAction fetches a binding from the evaluation environment by
// (name, ordinal) — the compilation target for every Core Var except a
// reference to a recursively bound name from inside that binding's
// right-hand side or let body, which compiles to the binding's
// LinkAction itself (see link.go). A looked-up binding whose value is a
// LinkAction is followed through to the link's target by internal/eval.
type LookupAction struct {
	Name    string
	Ordinal int
}

func (*LookupAction) actionNode() {}

// TupleAction aggregates its element actions' results into a tuple
// value.
type TupleAction struct {
	Elems []Action
}

func (*TupleAction) actionNode() {}

// RecordAction aggregates its field actions' results into a record
// value.
type RecordAction struct {
	Fields map[string]Action
}

func (*RecordAction) actionNode() {}

// FieldAction projects one field out of a record value.
type FieldAction struct {
	Record Action
	Field  string
}

func (*FieldAction) actionNode() {}

// ClosureAction builds a closure capturing the current environment; Param
// and Body describe how to extend that environment and what to
// evaluate once it is applied to one argument.
type ClosureAction struct {
	Param core.Pattern
	Body  Action
}

func (*ClosureAction) actionNode() {}

// Apply1Action applies Fn to one argument. It is the general case of
// application — every surface application compiles to a (possibly
// nested, for curried calls) chain of these unless it matches a known
// built-in's arity, in which case it fuses into an ApplyNAction instead
// of constructing N-1 intermediate partial applications.
type Apply1Action struct {
	Fn, Arg Action
}

func (*Apply1Action) actionNode() {}

// Apply2Action applies a known 2-ary built-in directly to two argument
// actions, skipping the intermediate single-argument closure a curried
// Apply1Action chain would otherwise build.
type Apply2Action struct {
	Fn, Arg1, Arg2 Action
}

func (*Apply2Action) actionNode() {}

// Apply3Action is Apply2Action's 3-ary counterpart.
type Apply3Action struct {
	Fn, Arg1, Arg2, Arg3 Action
}

func (*Apply3Action) actionNode() {}

// MatchCase is one `pattern [when guard] => body` clause of a
// MatchAction's match list.
type MatchCase struct {
	Pattern core.Pattern
	Guard   Action // nil if unguarded
	Body    Action
}

// MatchAction tries Cases against Scrutinee's value in order; the first
// case whose pattern matches and whose guard (if any) evaluates true
// supplies the result. Exhaustiveness was already established by
// internal/coverage, so a well-formed plan only fails to match here if
// that earlier pass was itself wrong — internal/eval is free to panic
// on fallthrough rather than define new behavior for it.
type MatchAction struct {
	Scrutinee Action
	Cases     []MatchCase
}

func (*MatchAction) actionNode() {}

// LetAction sequences Value's evaluation, extends the environment per
// Pattern, and then evaluates Body in the extended environment — the
// "sequenced match code" form for Core Let. For a recursive
// binding Value is always a *LinkAction whose Target has already been
// set to the compiled right-hand side (see link.go).
type LetAction struct {
	Pattern core.Pattern
	Value   Action
	Body    Action
}

func (*LetAction) actionNode() {}
