package types

import "strings"

// Term is the unifier's working vocabulary: a variable, a nullary
// atom, or an application of a named operator to an ordered list of
// subterms. Types embed into terms structurally via ToTerm; neither the
// unifier nor its tracer uses the embedding, and no test calls it. The
// unifier (unifier.go) operates directly on Type, which is term-isomorphic after
// embedding — TVar is a variable, TPrim is an atom, every other
// constructor is an application — so no separate solve-then-reify step is
// needed.
type Term interface {
	String() string
	isTerm()
}

// VarTerm is a unifier variable, identified by opaque ordinal.
type VarTerm struct{ Id int }

func (t *VarTerm) isTerm()        {}
func (t *VarTerm) String() string { return (&TVar{Id: t.Id}).String() }

// AtomTerm is a nullary term identified by name.
type AtomTerm struct{ Name string }

func (t *AtomTerm) isTerm()        {}
func (t *AtomTerm) String() string { return t.Name }

// AppTerm applies a named operator to an ordered list of subterms.
type AppTerm struct {
	Op   string
	Args []Term
}

func (t *AppTerm) isTerm() {}
func (t *AppTerm) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Op + "(" + strings.Join(parts, ", ") + ")"
}

// ToTerm embeds a monotype into the unifier's term vocabulary. t must not
// contain a TForall or TMulti — the inferencer instantiates foralls and
// splits multis into constraints before unification ever sees them.
func ToTerm(t Type) Term {
	switch t := t.(type) {
	case *TPrim:
		return &AtomTerm{Name: string(t.Name)}
	case *TVar:
		return &VarTerm{Id: t.Id}
	case *TFunc:
		return &AppTerm{Op: "->", Args: []Term{ToTerm(t.Param), ToTerm(t.Result)}}
	case *TTuple:
		args := make([]Term, len(t.Elems))
		for i, e := range t.Elems {
			args[i] = ToTerm(e)
		}
		return &AppTerm{Op: "tuple", Args: args}
	case *TRecord:
		labels := t.SortedLabels()
		args := make([]Term, len(labels))
		for i, l := range labels {
			args[i] = ToTerm(t.Fields[l])
		}
		return &AppTerm{Op: "record:" + strings.Join(labels, ","), Args: args}
	case *TList:
		return &AppTerm{Op: "list", Args: []Term{ToTerm(t.Elem)}}
	case *TBag:
		return &AppTerm{Op: "bag", Args: []Term{ToTerm(t.Elem)}}
	case *TData:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = ToTerm(a)
		}
		return &AppTerm{Op: "data:" + t.Name, Args: args}
	case *TAlias:
		return ToTerm(t.Underlying)
	default:
		return &AtomTerm{Name: "?" + t.String()}
	}
}
