package core

import (
	"fmt"
	"strings"

	"github.com/morel-lang/morelc/internal/types"
)

// Pattern is a Core-level pattern: every identifier it binds already
// carries a resolved type and an ordinal.
type Pattern interface {
	String() string
	patternNode()
}

// Vars returns every (name, ordinal) pair a pattern binds, in the order
// they appear, for building a from-step's or a let's output bindings.
func Vars(p Pattern) []Binding {
	var out []Binding
	switch p := p.(type) {
	case *Wildcard:
	case *IdentPattern:
		out = append(out, Binding{Name: p.Name, Ordinal: p.Ordinal, Type: p.Typ})
	case *TuplePattern:
		for _, e := range p.Elems {
			out = append(out, Vars(e)...)
		}
	case *RecordPattern:
		for _, f := range p.Fields {
			out = append(out, Vars(f.Pattern)...)
		}
	case *LitPattern:
	case *NullaryCtorPattern:
	case *CtorPattern:
		out = append(out, Vars(p.Arg)...)
	case *ConsPattern:
		out = append(out, Vars(p.Head)...)
		out = append(out, Vars(p.Tail)...)
	case *ListPattern:
		for _, e := range p.Elems {
			out = append(out, Vars(e)...)
		}
	case *AsPattern:
		out = append(out, Binding{Name: p.Name, Ordinal: p.Ordinal, Type: p.Typ})
		out = append(out, Vars(p.Inner)...)
	}
	return out
}

// Wildcard matches anything and binds nothing.
type Wildcard struct{}

func (*Wildcard) patternNode()  {}
func (*Wildcard) String() string { return "_" }

// IdentPattern binds the matched value to Name.
type IdentPattern struct {
	Name    string
	Ordinal int
	Typ     types.Type
}

func (*IdentPattern) patternNode()    {}
func (p *IdentPattern) String() string { return p.Name }

// TuplePattern destructures a tuple.
type TuplePattern struct {
	Elems []Pattern
}

func (*TuplePattern) patternNode() {}
func (p *TuplePattern) String() string {
	parts := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// RecordFieldPattern is one `label = pattern` entry of a RecordPattern.
type RecordFieldPattern struct {
	Label   string
	Pattern Pattern
}

// RecordPattern destructures a record. Open reports whether the surface
// pattern ended in `, ...` (only the listed fields are checked).
type RecordPattern struct {
	Fields []RecordFieldPattern
	Open   bool
}

func (*RecordPattern) patternNode() {}
func (p *RecordPattern) String() string {
	parts := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		parts[i] = fmt.Sprintf("%s = %s", f.Label, f.Pattern)
	}
	if p.Open {
		parts = append(parts, "...")
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// LitPattern matches a literal exactly.
type LitPattern struct {
	Value interface{}
}

func (*LitPattern) patternNode()  {}
func (p *LitPattern) String() string { return fmt.Sprintf("%v", p.Value) }

// NullaryCtorPattern matches a constant (argument-less) constructor.
type NullaryCtorPattern struct {
	Name string
}

func (*NullaryCtorPattern) patternNode()  {}
func (p *NullaryCtorPattern) String() string { return p.Name }

// CtorPattern matches a constructor applied to one argument pattern.
type CtorPattern struct {
	Name string
	Arg  Pattern
}

func (*CtorPattern) patternNode()  {}
func (p *CtorPattern) String() string { return fmt.Sprintf("%s %s", p.Name, p.Arg) }

// ConsPattern matches `head :: tail`.
type ConsPattern struct {
	Head, Tail Pattern
}

func (*ConsPattern) patternNode()  {}
func (p *ConsPattern) String() string { return fmt.Sprintf("%s :: %s", p.Head, p.Tail) }

// ListPattern matches a finite list literal pattern.
type ListPattern struct {
	Elems []Pattern
}

func (*ListPattern) patternNode() {}
func (p *ListPattern) String() string {
	parts := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// AsPattern binds Name to the whole matched value in addition to
// matching Inner against it.
type AsPattern struct {
	Name    string
	Ordinal int
	Typ     types.Type
	Inner   Pattern
}

func (*AsPattern) patternNode()  {}
func (p *AsPattern) String() string { return fmt.Sprintf("%s as %s", p.Inner, p.Name) }
