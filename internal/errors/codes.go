// Package errors defines the error kinds and codes surfaced by every
// compiler phase, plus the structured report type they are carried
// in. Every reported error names a phase, a stable code, and the source
// position of the offending node.
package errors

// Kind is one of the error kinds catalogued in .
type Kind string

const (
	// SyntaxError originates outside this module, in the external parser;
	// it is only ever re-wrapped here, never produced.
	SyntaxError Kind = "SyntaxError"
	// UnboundIdentifier: a name referenced has no visible binding.
	UnboundIdentifier Kind = "UnboundIdentifier"
	// TypeError: unification found the program inconsistently typed.
	TypeError Kind = "TypeError"
	// FlexRecord: a record selector's argument type could not be
	// determined before finalization.
	FlexRecord Kind = "FlexRecord"
	// NoField: a selector names a field absent from its resolved
	// argument type.
	NoField Kind = "NoField"
	// NonExhaustiveMatch: a pattern match does not cover every value of
	// its scrutinee's type.
	NonExhaustiveMatch Kind = "NonExhaustiveMatch"
	// RedundantMatch: an arm is unreachable because an earlier arm
	// already covers every value it would match.
	RedundantMatch Kind = "RedundantMatch"
	// UngroundedPattern: a query variable has no finite, statically
	// discoverable extent.
	UngroundedPattern Kind = "UngroundedPattern"
	// DuplicateFieldInGroup: a group step's key and aggregate labels
	// collide.
	DuplicateFieldInGroup Kind = "DuplicateFieldInGroup"
	// RuntimeBindFailure: a pattern failed to match a value at
	// evaluation time.
	RuntimeBindFailure Kind = "RuntimeBindFailure"
)

// Error codes, grouped by the phase that raises them, mirroring the
// kinds above one-for-one plus finer-grained sub-codes where a phase
// distinguishes more than one cause under the same Kind.
const (
	// Inference phase (INF###)
	INF001 = "INF001" // UnboundIdentifier
	INF002 = "INF002" // TypeError: unification failure
	INF003 = "INF003" // TypeError: occurs check
	INF004 = "INF004" // TypeError: ambiguous overload
	INF005 = "INF005" // FlexRecord
	INF006 = "INF006" // NoField
	INF007 = "INF007" // DuplicateFieldInGroup

	// Coverage / exhaustiveness phase (COV###)
	COV001 = "COV001" // NonExhaustiveMatch
	COV002 = "COV002" // RedundantMatch

	// Grounding phase (GRD###)
	GRD001 = "GRD001" // UngroundedPattern

	// Evaluation phase (EVL###)
	EVL001 = "EVL001" // RuntimeBindFailure
	EVL002 = "EVL002" // generic runtime fault (division by zero, etc.)
)
