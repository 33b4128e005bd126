package types

// Substitution maps type-variable ordinals to types; it is the result of
// successful unification (GLOSSARY). Substitutions built by the unifier
// are idempotent — applying one twice yields the same result as applying
// it once.
type Substitution map[int]Type

// Apply substitutes every free type variable in t according to sub.
func Apply(sub Substitution, t Type) Type {
	if len(sub) == 0 {
		return t
	}
	switch t := t.(type) {
	case *TVar:
		if rep, ok := sub[t.Id]; ok {
			// Substitutions are idempotent: rep must already be fully
			// substituted by construction (see Unifier.bind), so no
			// recursive re-application is needed here.
			return rep
		}
		return t
	case *TFunc:
		return &TFunc{Param: Apply(sub, t.Param), Result: Apply(sub, t.Result)}
	case *TTuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = Apply(sub, e)
		}
		return &TTuple{Elems: elems}
	case *TRecord:
		fields := make(map[string]Type, len(t.Fields))
		for l, f := range t.Fields {
			fields[l] = Apply(sub, f)
		}
		return &TRecord{Fields: fields}
	case *TList:
		return &TList{Elem: Apply(sub, t.Elem)}
	case *TBag:
		return &TBag{Elem: Apply(sub, t.Elem)}
	case *TData:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = Apply(sub, a)
		}
		return &TData{Name: t.Name, Args: args, Ctors: t.Ctors}
	case *TAlias:
		return &TAlias{Name: t.Name, Underlying: Apply(sub, t.Underlying)}
	case *TForall:
		// Bound parameters (0..NumParams-1) are never keys of sub (the
		// inferencer only ever substitutes free variables allocated
		// outside the forall), so applying through the body is safe.
		return &TForall{NumParams: t.NumParams, Body: Apply(sub, t.Body)}
	case *TMulti:
		cands := make([]*TFunc, len(t.Candidates))
		for i, c := range t.Candidates {
			cands[i] = Apply(sub, c).(*TFunc)
		}
		return &TMulti{Candidates: cands}
	default:
		return t
	}
}

// Compose returns the substitution equivalent to applying s1 then s2.
func Compose(s1, s2 Substitution) Substitution {
	out := make(Substitution, len(s1)+len(s2))
	for id, t := range s1 {
		out[id] = Apply(s2, t)
	}
	for id, t := range s2 {
		if _, ok := out[id]; !ok {
			out[id] = t
		}
	}
	return out
}

// Instantiate replaces a TForall's bound parameters with fresh variables
// allocated from alloc, returning the instantiated body. Non-forall types
// are returned unchanged.
func Instantiate(t Type, alloc func() int) Type {
	f, ok := t.(*TForall)
	if !ok {
		return t
	}
	sub := make(Substitution, f.NumParams)
	for i := 0; i < f.NumParams; i++ {
		sub[i] = &TVar{Id: alloc()}
	}
	return Apply(sub, f.Body)
}

// Generalize closes over every free variable of t not already bound in
// the enclosing scope (env's free variables), producing a TForall whose
// body uses ordinals 0..n-1 for the newly quantified variables.
func Generalize(t Type, envFree map[int]bool) Type {
	free := FreeVars(t)
	var toQuantify []int
	for id := range free {
		if !envFree[id] {
			toQuantify = append(toQuantify, id)
		}
	}
	if len(toQuantify) == 0 {
		return t
	}
	sortInts(toQuantify)
	rename := make(Substitution, len(toQuantify))
	for i, id := range toQuantify {
		rename[id] = &TVar{Id: i}
	}
	return &TForall{NumParams: len(toQuantify), Body: Apply(rename, t)}
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
