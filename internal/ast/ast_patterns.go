package ast

import (
	"fmt"
	"strings"
)

// Pattern is any surface pattern.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything and binds nothing: `_`.
type WildcardPattern struct {
	Pos Pos
}

func (p *WildcardPattern) patternNode()   {}
func (p *WildcardPattern) Position() Pos  { return p.Pos }
func (p *WildcardPattern) String() string { return "_" }

// IdentPattern binds a name.
type IdentPattern struct {
	Name string
	Pos  Pos
}

func (p *IdentPattern) patternNode()   {}
func (p *IdentPattern) Position() Pos  { return p.Pos }
func (p *IdentPattern) String() string { return p.Name }

// TuplePattern destructures a tuple.
type TuplePattern struct {
	Elems []Pattern
	Pos   Pos
}

func (p *TuplePattern) patternNode()  {}
func (p *TuplePattern) Position() Pos { return p.Pos }
func (p *TuplePattern) String() string {
	parts := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// RecordFieldPattern is one `label = pat` entry of a record pattern.
type RecordFieldPattern struct {
	Label   string
	Pattern Pattern
}

// RecordPattern destructures a record; Open indicates a trailing `...`
// (the pattern doesn't name every field).
type RecordPattern struct {
	Fields []RecordFieldPattern
	Open   bool
	Pos    Pos
}

func (p *RecordPattern) patternNode()  {}
func (p *RecordPattern) Position() Pos { return p.Pos }
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

// LitPattern matches a literal value exactly.
type LitPattern struct {
	Kind  LitKind
	Value interface{}
	Pos   Pos
}

func (p *LitPattern) patternNode()   {}
func (p *LitPattern) Position() Pos  { return p.Pos }
func (p *LitPattern) String() string { return fmt.Sprintf("%v", p.Value) }

// ConstructorPattern matches a datatype constructor, applied to Arg when
// the constructor is not nullary (Arg is nil for nullary constructors).
type ConstructorPattern struct {
	Name string
	Arg  Pattern // nil for a nullary constructor
	Pos  Pos
}

func (p *ConstructorPattern) patternNode()  {}
func (p *ConstructorPattern) Position() Pos { return p.Pos }
func (p *ConstructorPattern) String() string {
	if p.Arg == nil {
		return p.Name
	}
	return fmt.Sprintf("%s %s", p.Name, p.Arg)
}

// ConsPattern matches a nonempty list: `head :: tail`.
type ConsPattern struct {
	Head, Tail Pattern
	Pos        Pos
}

func (p *ConsPattern) patternNode()   {}
func (p *ConsPattern) Position() Pos  { return p.Pos }
func (p *ConsPattern) String() string { return fmt.Sprintf("%s :: %s", p.Head, p.Tail) }

// ListPattern matches a list of exactly the given length, element by element.
type ListPattern struct {
	Elems []Pattern
	Pos   Pos
}

func (p *ListPattern) patternNode()  {}
func (p *ListPattern) Position() Pos { return p.Pos }
func (p *ListPattern) String() string {
	parts := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// AsPattern binds Name to the whole matched value in addition to matching
// Inner against it.
type AsPattern struct {
	Name  string
	Inner Pattern
	Pos   Pos
}

func (p *AsPattern) patternNode()   {}
func (p *AsPattern) Position() Pos  { return p.Pos }
func (p *AsPattern) String() string { return fmt.Sprintf("%s as %s", p.Name, p.Inner) }

// Vars returns every name bound by p, in left-to-right order, including
// duplicates if the pattern (illegally) repeats a name.
func Vars(p Pattern) []string {
	switch p := p.(type) {
	case *WildcardPattern, *LitPattern:
		return nil
	case *IdentPattern:
		return []string{p.Name}
	case *TuplePattern:
		var out []string
		for _, e := range p.Elems {
			out = append(out, Vars(e)...)
		}
		return out
	case *RecordPattern:
		var out []string
		for _, f := range p.Fields {
			out = append(out, Vars(f.Pattern)...)
		}
		return out
	case *ConstructorPattern:
		if p.Arg == nil {
			return nil
		}
		return Vars(p.Arg)
	case *ConsPattern:
		return append(Vars(p.Head), Vars(p.Tail)...)
	case *ListPattern:
		var out []string
		for _, e := range p.Elems {
			out = append(out, Vars(e)...)
		}
		return out
	case *AsPattern:
		return append([]string{p.Name}, Vars(p.Inner)...)
	}
	return nil
}
