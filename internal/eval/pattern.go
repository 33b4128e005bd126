package eval

import (
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/env"
)

// Match attempts to destructure v against p, extending e with one VAL
// binding per identifier p introduces. It reports false without mutating
// anything the caller can observe if p does not match v — the caller
// always still holds its original e in that case, since env.Bind never
// mutates in place.
func Match(p core.Pattern, v Value, e *env.Environment) (*env.Environment, bool) {
	switch p := p.(type) {
	case *core.Wildcard:
		return e, true
	case *core.IdentPattern:
		return e.Bind(&env.Binding{Name: p.Name, Ordinal: p.Ordinal, Type: p.Typ, Value: v, Kind: env.VAL}), true
	case *core.AsPattern:
		e2, ok := Match(p.Inner, v, e)
		if !ok {
			return e, false
		}
		return e2.Bind(&env.Binding{Name: p.Name, Ordinal: p.Ordinal, Type: p.Typ, Value: v, Kind: env.VAL}), true
	case *core.TuplePattern:
		t, ok := v.(Tuple)
		if !ok || len(t) != len(p.Elems) {
			return e, false
		}
		out := e
		for i, sub := range p.Elems {
			out, ok = Match(sub, t[i], out)
			if !ok {
				return e, false
			}
		}
		return out, true
	case *core.RecordPattern:
		r, ok := v.(Record)
		if !ok {
			return e, false
		}
		out := e
		for _, f := range p.Fields {
			fv, ok := r[f.Label]
			if !ok {
				return e, false
			}
			out, ok = Match(f.Pattern, fv, out)
			if !ok {
				return e, false
			}
		}
		return out, true
	case *core.LitPattern:
		if Equal(v, p.Value) {
			return e, true
		}
		return e, false
	case *core.NullaryCtorPattern:
		c, ok := v.(*Ctor)
		return e, ok && c.Name == p.Name && c.Arg == nil
	case *core.CtorPattern:
		c, ok := v.(*Ctor)
		if !ok || c.Name != p.Name {
			return e, false
		}
		return Match(p.Arg, c.Arg, e)
	case *core.ConsPattern:
		l, ok := v.(List)
		if !ok || len(l) == 0 {
			return e, false
		}
		out, ok := Match(p.Head, l[0], e)
		if !ok {
			return e, false
		}
		return Match(p.Tail, l[1:], out)
	case *core.ListPattern:
		l, ok := v.(List)
		if !ok || len(l) != len(p.Elems) {
			return e, false
		}
		out := e
		for i, sub := range p.Elems {
			out, ok = Match(sub, l[i], out)
			if !ok {
				return e, false
			}
		}
		return out, true
	}
	return e, false
}
