// Package types implements the representation of morel types, the
// unifier's term vocabulary, and the first-order unifier with the
// disjunctive constraints used for overload resolution. The Hindley-Milner walk itself lives in
// internal/infer; this package only owns the data and the first-order
// unification algorithm over it.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is any morel type. String returns the canonical display moniker.
type Type interface {
	String() string
	isType()
}

// Prim enumerates the primitive types.
type Prim string

const (
	Bool   Prim = "bool"
	Char   Prim = "char"
	Int    Prim = "int"
	Real   Prim = "real"
	String Prim = "string"
	Unit   Prim = "unit"
)

// TPrim is a primitive type.
type TPrim struct{ Name Prim }

func (t *TPrim) isType()        {}
func (t *TPrim) String() string { return string(t.Name) }

// TVar is a type variable identified by a nonnegative ordinal, .
type TVar struct{ Id int }

func (t *TVar) isType()        {}
func (t *TVar) String() string { return fmt.Sprintf("'t%d", t.Id) }

// TFunc is a function type.
type TFunc struct{ Param, Result Type }

func (t *TFunc) isType() {}
func (t *TFunc) String() string {
	param := t.Param.String()
	if _, ok := t.Param.(*TFunc); ok {
		param = "(" + param + ")"
	}
	return fmt.Sprintf("%s -> %s", param, t.Result.String())
}

// TTuple is an ordered finite sequence of component types.
type TTuple struct{ Elems []Type }

func (t *TTuple) isType() {}
func (t *TTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " * ") + ")"
}

// TRecord is a record type. Labels are unique; SortedLabels canonicalizes
// the display and equality order.
type TRecord struct{ Fields map[string]Type }

func (t *TRecord) isType() {}

// SortedLabels returns the field labels of t in canonical (lexicographic)
// order.
func (t *TRecord) SortedLabels() []string {
	labels := make([]string, 0, len(t.Fields))
	for l := range t.Fields {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func (t *TRecord) String() string {
	labels := t.SortedLabels()
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s: %s", l, t.Fields[l].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// TupleAsRecord views an arity-n tuple type as the equivalent record with
// labels "1".."n".
func TupleAsRecord(t *TTuple) *TRecord {
	fields := make(map[string]Type, len(t.Elems))
	for i, e := range t.Elems {
		fields[fmt.Sprintf("%d", i+1)] = e
	}
	return &TRecord{Fields: fields}
}

// TList is an ordered sequence type.
type TList struct{ Elem Type }

func (t *TList) isType()        {}
func (t *TList) String() string { return fmt.Sprintf("%s list", t.Elem.String()) }

// TBag is an unordered multiset type.
type TBag struct{ Elem Type }

func (t *TBag) isType()        {}
func (t *TBag) String() string { return fmt.Sprintf("%s bag", t.Elem.String()) }

// CtorSig is one constructor of a datatype: a name and an optional
// argument type (nil for nullary constructors).
type CtorSig struct {
	Name string
	Arg  Type
}

// TData is a named datatype applied to type arguments, with an ordered
// list of constructors. Constructor argument types may reference the
// enclosing datatype — recursive types are allowed.
type TData struct {
	Name  string
	Args  []Type
	Ctors []CtorSig
}

func (t *TData) isType() {}
func (t *TData) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s) %s", strings.Join(parts, ", "), t.Name)
}

// CtorByName finds a constructor by name, or returns ok=false.
func (t *TData) CtorByName(name string) (CtorSig, bool) {
	for _, c := range t.Ctors {
		if c.Name == name {
			return c, true
		}
	}
	return CtorSig{}, false
}

// TAlias is an alias for another type; it displays as the alias name but
// unifies transparently with Underlying.
type TAlias struct {
	Name       string
	Underlying Type
}

func (t *TAlias) isType()        {}
func (t *TAlias) String() string { return t.Name }

// Resolve follows alias chains down to a non-alias type.
func Resolve(t Type) Type {
	for {
		a, ok := t.(*TAlias)
		if !ok {
			return t
		}
		t = a.Underlying
	}
}

// TForall is a universally quantified type. Body is in closed form: it may
// reference type variables 0..NumParams-1 as its bound parameters, plus any variables free in an enclosing scope.
type TForall struct {
	NumParams int
	Body      Type
}

func (t *TForall) isType() {}
func (t *TForall) String() string {
	vars := make([]string, t.NumParams)
	for i := range vars {
		vars[i] = (&TVar{Id: i}).String()
	}
	if len(vars) == 0 {
		return t.Body.String()
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(vars, " "), t.Body.String())
}

// TMulti is an overload bundle: a nonempty finite set of candidate
// function types for one overloaded name.
type TMulti struct{ Candidates []*TFunc }

func (t *TMulti) isType() {}
func (t *TMulti) String() string {
	parts := make([]string, len(t.Candidates))
	for i, c := range t.Candidates {
		parts[i] = c.String()
	}
	return "{" + strings.Join(parts, " | ") + "}"
}

// Equals reports structural equality of two types, resolving aliases and
// canonicalizing record label order first.
func Equals(a, b Type) bool {
	a, b = Resolve(a), Resolve(b)
	switch a := a.(type) {
	case *TPrim:
		b, ok := b.(*TPrim)
		return ok && a.Name == b.Name
	case *TVar:
		b, ok := b.(*TVar)
		return ok && a.Id == b.Id
	case *TFunc:
		b, ok := b.(*TFunc)
		return ok && Equals(a.Param, b.Param) && Equals(a.Result, b.Result)
	case *TTuple:
		b, ok := b.(*TTuple)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equals(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case *TRecord:
		b, ok := b.(*TRecord)
		if !ok || len(a.Fields) != len(b.Fields) {
			return false
		}
		for _, l := range a.SortedLabels() {
			bt, ok := b.Fields[l]
			if !ok || !Equals(a.Fields[l], bt) {
				return false
			}
		}
		return true
	case *TList:
		b, ok := b.(*TList)
		return ok && Equals(a.Elem, b.Elem)
	case *TBag:
		b, ok := b.(*TBag)
		return ok && Equals(a.Elem, b.Elem)
	case *TData:
		b, ok := b.(*TData)
		if !ok || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equals(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *TForall:
		b, ok := b.(*TForall)
		return ok && a.NumParams == b.NumParams && Equals(a.Body, b.Body)
	case *TMulti:
		b, ok := b.(*TMulti)
		if !ok || len(a.Candidates) != len(b.Candidates) {
			return false
		}
		for i := range a.Candidates {
			if !Equals(a.Candidates[i], b.Candidates[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// FreeVars collects the set of TVar ordinals free in t (not bound by an
// enclosing TForall).
func FreeVars(t Type) map[int]bool {
	out := make(map[int]bool)
	freeVars(t, out)
	return out
}

func freeVars(t Type, out map[int]bool) {
	switch t := t.(type) {
	case *TVar:
		out[t.Id] = true
	case *TFunc:
		freeVars(t.Param, out)
		freeVars(t.Result, out)
	case *TTuple:
		for _, e := range t.Elems {
			freeVars(e, out)
		}
	case *TRecord:
		for _, f := range t.Fields {
			freeVars(f, out)
		}
	case *TList:
		freeVars(t.Elem, out)
	case *TBag:
		freeVars(t.Elem, out)
	case *TData:
		for _, a := range t.Args {
			freeVars(a, out)
		}
	case *TAlias:
		freeVars(t.Underlying, out)
	case *TForall:
		sub := make(map[int]bool)
		freeVars(t.Body, sub)
		for id := range sub {
			if id >= t.NumParams {
				out[id] = true
			}
		}
	case *TMulti:
		for _, c := range t.Candidates {
			freeVars(c, out)
		}
	}
}
