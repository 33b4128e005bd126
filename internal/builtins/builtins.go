// Package builtins registers the foreign values that seed every
// compilation's initial environment: the
// arithmetic, comparison, and list operators the surface grammar
// desugars identifiers and operators into (internal/infer's BinOp and
// list-literal lowering, internal/ground's `__range_*` generators), plus
// the handful of list primitives a query-heavy prelude needs.
//
// Each foreign value contributes to two parallel environment chains
// that must agree on (Name, Ordinal) for every entry: the compile-time
// chain internal/elaborate threads through inference (Type, Kind,
// OverName only — Value is left nil) and the runtime chain
// internal/session seeds internal/eval with (Value is the live
// eval.Value; Type is irrelevant at this point). A foreign value is
// injected as an INST binding when its name is overloaded, else a VAL
// binding, exactly mirroring how internal/infer's own
// OverDecl/InstDecl handling assigns ordinals: the first registration of
// a name consumes ordinal 0, and each subsequent registration of the
// same name (its INST instances) gets the next ordinal in sequence.
package builtins

import (
	"fmt"

	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/eval"
	"github.com/morel-lang/morelc/internal/types"
)

func tprim(p types.Prim) types.Type { return &types.TPrim{Name: p} }

var (
	tBool = tprim(types.Bool)
	tInt  = tprim(types.Int)
	tReal = tprim(types.Real)
)

func fn2(a, b, r types.Type) types.Type { return &types.TFunc{Param: a, Result: &types.TFunc{Param: b, Result: r}} }
func fn1(a, r types.Type) types.Type    { return &types.TFunc{Param: a, Result: r} }

// forall1 wraps body (written in terms of TVar{Id: 0}) in a one-parameter
// TForall, for the handful of prelude names that are genuinely
// polymorphic rather than OVER/INST overloaded.
func forall1(body func(a types.Type) types.Type) types.Type {
	return &types.TForall{NumParams: 1, Body: body(&types.TVar{Id: 0})}
}

// registrar accumulates the parallel compile-time and runtime
// environment chains as Foreign values are added, keeping per-name
// ordinal counters exactly the way internal/infer.Context.ordinal does.
type registrar struct {
	ordinals map[string]int
	typeEnv  *env.Environment
	runEnv   *env.Environment
}

func newRegistrar() *registrar {
	return &registrar{ordinals: map[string]int{}}
}

func (r *registrar) nextOrdinal(name string) int {
	o := r.ordinals[name]
	r.ordinals[name]++
	return o
}

// val registers a plain (non-overloaded) foreign value.
func (r *registrar) val(name string, t types.Type, v eval.Value) {
	ord := r.nextOrdinal(name)
	r.typeEnv = r.typeEnv.Bind(&env.Binding{Name: name, Ordinal: ord, Type: t, Kind: env.VAL})
	r.runEnv = r.runEnv.Bind(&env.Binding{Name: name, Ordinal: ord, Value: v, Kind: env.VAL})
}

// instance is one OVER name's (type, value) pair, in registration order.
type instance struct {
	Type  types.Type
	Value eval.Value
}

// over registers an overloaded name: one OVER header binding (no type,
// no value) followed by one INST binding per instance, in order, each
// sharing OverName with the header.
func (r *registrar) over(name string, insts ...instance) {
	headOrd := r.nextOrdinal(name)
	r.typeEnv = r.typeEnv.Bind(&env.Binding{Name: name, Ordinal: headOrd, Kind: env.OVER})
	r.runEnv = r.runEnv.Bind(&env.Binding{Name: name, Ordinal: headOrd, Kind: env.OVER})
	for _, inst := range insts {
		ord := r.nextOrdinal(name)
		r.typeEnv = r.typeEnv.Bind(&env.Binding{Name: name, Ordinal: ord, Type: inst.Type, Kind: env.INST, OverName: name})
		r.runEnv = r.runEnv.Bind(&env.Binding{Name: name, Ordinal: ord, Value: inst.Value, Kind: env.INST, OverName: name})
	}
}

func builtin1(name string, fn func(a eval.Value) (eval.Value, error)) *eval.Builtin {
	return &eval.Builtin{Name: name, Arity: 1, Fn: func(args []eval.Value) (eval.Value, error) { return fn(args[0]) }}
}

func builtin2(name string, fn func(a, b eval.Value) (eval.Value, error)) *eval.Builtin {
	return &eval.Builtin{Name: name, Arity: 2, Fn: func(args []eval.Value) (eval.Value, error) { return fn(args[0], args[1]) }}
}

func wantInt(v eval.Value, who string) (int64, error) {
	i, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("builtins: %s: expected int, got %T", who, v)
	}
	return i, nil
}

func wantReal(v eval.Value, who string) (float64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("builtins: %s: expected real, got %T", who, v)
	}
	return f, nil
}

func wantList(v eval.Value, who string) (eval.List, error) {
	l, ok := v.(eval.List)
	if !ok {
		return nil, fmt.Errorf("builtins: %s: expected list, got %T", who, v)
	}
	return l, nil
}

// rangeWindow bounds the interval generators internal/ground's
// `__range_*` candidates expand into. the interval generator is only
// ever used to ground a variable already constrained to a primitive
// ordered type by a one-sided comparison; since this module has no
// notion of a type's full representable domain at the Core level, the
// window approximates "the finite slice of int's ordering satisfying
// the comparison" with a fixed, generous bound rather than the
// mathematically unbounded int range.
const rangeWindow = 1 << 16

func rangeSlice(keep func(i int64) bool) eval.List {
	out := make(eval.List, 0, 64)
	for i := int64(-rangeWindow); i <= rangeWindow; i++ {
		if keep(i) {
			out = append(out, i)
		}
	}
	return out
}

// Specs returns every foreign value morelc's prelude registers, split
// into the compile-time type environment internal/elaborate starts
// from and the runtime value environment internal/session seeds
// internal/eval with. sys is threaded through so future prelude entries
// needing a fresh type variable (none currently do) have it available.
func Specs(sys *types.System) (typeEnv, runtimeEnv *env.Environment) {
	r := newRegistrar()

	r.over("+",
		instance{fn2(tInt, tInt, tInt), builtin2("+", func(a, b eval.Value) (eval.Value, error) {
			x, err := wantInt(a, "+")
			if err != nil {
				return nil, err
			}
			y, err := wantInt(b, "+")
			if err != nil {
				return nil, err
			}
			return x + y, nil
		})},
		instance{fn2(tReal, tReal, tReal), builtin2("+", func(a, b eval.Value) (eval.Value, error) {
			x, err := wantReal(a, "+")
			if err != nil {
				return nil, err
			}
			y, err := wantReal(b, "+")
			if err != nil {
				return nil, err
			}
			return x + y, nil
		})},
	)

	r.over("-",
		instance{fn2(tInt, tInt, tInt), builtin2("-", func(a, b eval.Value) (eval.Value, error) {
			x, err := wantInt(a, "-")
			if err != nil {
				return nil, err
			}
			y, err := wantInt(b, "-")
			if err != nil {
				return nil, err
			}
			return x - y, nil
		})},
		instance{fn2(tReal, tReal, tReal), builtin2("-", func(a, b eval.Value) (eval.Value, error) {
			x, err := wantReal(a, "-")
			if err != nil {
				return nil, err
			}
			y, err := wantReal(b, "-")
			if err != nil {
				return nil, err
			}
			return x - y, nil
		})},
	)

	r.over("*",
		instance{fn2(tInt, tInt, tInt), builtin2("*", func(a, b eval.Value) (eval.Value, error) {
			x, err := wantInt(a, "*")
			if err != nil {
				return nil, err
			}
			y, err := wantInt(b, "*")
			if err != nil {
				return nil, err
			}
			return x * y, nil
		})},
		instance{fn2(tReal, tReal, tReal), builtin2("*", func(a, b eval.Value) (eval.Value, error) {
			x, err := wantReal(a, "*")
			if err != nil {
				return nil, err
			}
			y, err := wantReal(b, "*")
			if err != nil {
				return nil, err
			}
			return x * y, nil
		})},
	)

	r.over("~",
		instance{fn1(tInt, tInt), builtin1("~", func(a eval.Value) (eval.Value, error) {
			x, err := wantInt(a, "~")
			if err != nil {
				return nil, err
			}
			return -x, nil
		})},
		instance{fn1(tReal, tReal), builtin1("~", func(a eval.Value) (eval.Value, error) {
			x, err := wantReal(a, "~")
			if err != nil {
				return nil, err
			}
			return -x, nil
		})},
	)

	r.val("/", fn2(tReal, tReal, tReal), builtin2("/", func(a, b eval.Value) (eval.Value, error) {
		x, err := wantReal(a, "/")
		if err != nil {
			return nil, err
		}
		y, err := wantReal(b, "/")
		if err != nil {
			return nil, err
		}
		if y == 0 {
			return nil, fmt.Errorf("builtins: / by zero")
		}
		return x / y, nil
	}))

	r.val("div", fn2(tInt, tInt, tInt), builtin2("div", func(a, b eval.Value) (eval.Value, error) {
		x, err := wantInt(a, "div")
		if err != nil {
			return nil, err
		}
		y, err := wantInt(b, "div")
		if err != nil {
			return nil, err
		}
		if y == 0 {
			return nil, fmt.Errorf("builtins: div by zero")
		}
		return x / y, nil
	}))

	r.val("mod", fn2(tInt, tInt, tInt), builtin2("mod", func(a, b eval.Value) (eval.Value, error) {
		x, err := wantInt(a, "mod")
		if err != nil {
			return nil, err
		}
		y, err := wantInt(b, "mod")
		if err != nil {
			return nil, err
		}
		if y == 0 {
			return nil, fmt.Errorf("builtins: mod by zero")
		}
		return x % y, nil
	}))

	// Equality and ordering are generically polymorphic (forall 'a) here
	// rather than a proper equality-type-class constraint — a
	// deliberate simplification over the type system, recorded in
	// DESIGN.md.
	r.val("=", forall1(func(a types.Type) types.Type { return fn2(a, a, tBool) }),
		builtin2("=", func(a, b eval.Value) (eval.Value, error) { return eval.Equal(a, b), nil }))
	r.val("<>", forall1(func(a types.Type) types.Type { return fn2(a, a, tBool) }),
		builtin2("<>", func(a, b eval.Value) (eval.Value, error) { return !eval.Equal(a, b), nil }))
	r.val("<", forall1(func(a types.Type) types.Type { return fn2(a, a, tBool) }),
		builtin2("<", func(a, b eval.Value) (eval.Value, error) { return eval.Less(a, b), nil }))
	r.val("<=", forall1(func(a types.Type) types.Type { return fn2(a, a, tBool) }),
		builtin2("<=", func(a, b eval.Value) (eval.Value, error) { return eval.Less(a, b) || eval.Equal(a, b), nil }))
	r.val(">", forall1(func(a types.Type) types.Type { return fn2(a, a, tBool) }),
		builtin2(">", func(a, b eval.Value) (eval.Value, error) { return eval.Less(b, a), nil }))
	r.val(">=", forall1(func(a types.Type) types.Type { return fn2(a, a, tBool) }),
		builtin2(">=", func(a, b eval.Value) (eval.Value, error) { return eval.Less(b, a) || eval.Equal(a, b), nil }))

	r.val("not", fn1(tBool, tBool), builtin1("not", func(a eval.Value) (eval.Value, error) {
		b, ok := a.(bool)
		if !ok {
			return nil, fmt.Errorf("builtins: not: expected bool, got %T", a)
		}
		return !b, nil
	}))

	r.val("nil", forall1(func(a types.Type) types.Type { return &types.TList{Elem: a} }), eval.List(nil))
	r.val("::", forall1(func(a types.Type) types.Type {
		return fn2(a, &types.TList{Elem: a}, &types.TList{Elem: a})
	}), builtin2("::", func(a, b eval.Value) (eval.Value, error) {
		tail, err := wantList(b, "::")
		if err != nil {
			return nil, err
		}
		return append(eval.List{a}, tail...), nil
	}))
	r.val("@", forall1(func(a types.Type) types.Type {
		lt := &types.TList{Elem: a}
		return fn2(lt, lt, lt)
	}), builtin2("@", func(a, b eval.Value) (eval.Value, error) {
		al, err := wantList(a, "@")
		if err != nil {
			return nil, err
		}
		bl, err := wantList(b, "@")
		if err != nil {
			return nil, err
		}
		out := make(eval.List, 0, len(al)+len(bl))
		out = append(out, al...)
		out = append(out, bl...)
		return out, nil
	}))
	r.val("elem", forall1(func(a types.Type) types.Type { return fn2(a, &types.TList{Elem: a}, tBool) }),
		builtin2("elem", func(a, b eval.Value) (eval.Value, error) {
			l, err := wantList(b, "elem")
			if err != nil {
				return nil, err
			}
			for _, x := range l {
				if eval.Equal(a, x) {
					return true, nil
				}
			}
			return false, nil
		}))

	r.val("hd", forall1(func(a types.Type) types.Type { return fn1(&types.TList{Elem: a}, a) }),
		builtin1("hd", func(a eval.Value) (eval.Value, error) {
			l, err := wantList(a, "hd")
			if err != nil {
				return nil, err
			}
			if len(l) == 0 {
				return nil, fmt.Errorf("builtins: hd of empty list")
			}
			return l[0], nil
		}))
	r.val("tl", forall1(func(a types.Type) types.Type {
		lt := &types.TList{Elem: a}
		return fn1(lt, lt)
	}), builtin1("tl", func(a eval.Value) (eval.Value, error) {
		l, err := wantList(a, "tl")
		if err != nil {
			return nil, err
		}
		if len(l) == 0 {
			return nil, fmt.Errorf("builtins: tl of empty list")
		}
		return append(eval.List{}, l[1:]...), nil
	}))
	r.val("null", forall1(func(a types.Type) types.Type { return fn1(&types.TList{Elem: a}, tBool) }),
		builtin1("null", func(a eval.Value) (eval.Value, error) {
			l, err := wantList(a, "null")
			if err != nil {
				return nil, err
			}
			return len(l) == 0, nil
		}))
	r.val("length", forall1(func(a types.Type) types.Type { return fn1(&types.TList{Elem: a}, tInt) }),
		builtin1("length", func(a eval.Value) (eval.Value, error) {
			l, err := wantList(a, "length")
			if err != nil {
				return nil, err
			}
			return int64(len(l)), nil
		}))
	r.val("rev", forall1(func(a types.Type) types.Type {
		lt := &types.TList{Elem: a}
		return fn1(lt, lt)
	}), builtin1("rev", func(a eval.Value) (eval.Value, error) {
		l, err := wantList(a, "rev")
		if err != nil {
			return nil, err
		}
		out := make(eval.List, len(l))
		for i, x := range l {
			out[len(l)-1-i] = x
		}
		return out, nil
	}))

	intListT := &types.TList{Elem: tInt}
	rangeFn := func(name string, keep func(bound, i int64) bool) {
		r.val(name, fn1(tInt, intListT), builtin1(name, func(bound eval.Value) (eval.Value, error) {
			b, err := wantInt(bound, name)
			if err != nil {
				return nil, err
			}
			return rangeSlice(func(i int64) bool { return keep(b, i) }), nil
		}))
	}
	rangeFn("__range_lt", func(bound, i int64) bool { return i < bound })
	rangeFn("__range_le", func(bound, i int64) bool { return i <= bound })
	rangeFn("__range_gt", func(bound, i int64) bool { return i > bound })
	rangeFn("__range_ge", func(bound, i int64) bool { return i >= bound })
	rangeFn("__range_ne", func(bound, i int64) bool { return i != bound })
	r.val("__range_union", forall1(func(a types.Type) types.Type {
		lt := &types.TList{Elem: a}
		return fn2(lt, lt, lt)
	}), builtin2("__range_union", func(a, b eval.Value) (eval.Value, error) {
		al, err := wantList(a, "__range_union")
		if err != nil {
			return nil, err
		}
		bl, err := wantList(b, "__range_union")
		if err != nil {
			return nil, err
		}
		out := make(eval.List, 0, len(al)+len(bl))
		out = append(out, al...)
		out = append(out, bl...)
		return out, nil
	}))

	return r.typeEnv, r.runEnv
}
