package plan

import "github.com/morel-lang/morelc/internal/core"

type varKey struct {
	name    string
	ordinal int
}

func keyOf(name string, ordinal int) varKey { return varKey{name: name, ordinal: ordinal} }

// compiler holds the compile-time state threaded through one
// declaration's compilation: the only thing that needs to be tracked
// across calls is which names currently resolve to an in-progress
// recursive link rather than a plain runtime lookup.
type compiler struct {
	links map[varKey]*LinkAction
}

func newCompiler() *compiler {
	return &compiler{links: map[varKey]*LinkAction{}}
}

// DeclPlan is one compiled top-level binding.
type DeclPlan struct {
	Name    string
	Ordinal int
	Rec     bool
	Body    Action
}

// Program compiles every declaration of prog, in order. Earlier
// declarations are visible to later ones purely through runtime
// environment lookups by name — compilation of one Decl never needs
// another Decl's compiled Action.
func Program(prog *core.Program) []DeclPlan {
	out := make([]DeclPlan, len(prog.Decls))
	for i, d := range prog.Decls {
		out[i] = Decl(d)
	}
	return out
}

// Decl compiles a single top-level binding, including the recursive
// link dance for Rec declarations.
func Decl(d core.Decl) DeclPlan {
	c := newCompiler()
	var body Action
	if d.Rec {
		link := &LinkAction{}
		c.links[keyOf(d.Name, d.Ordinal)] = link
		link.Target = c.compileExpr(d.Value)
		body = link
	} else {
		body = c.compileExpr(d.Value)
	}
	return DeclPlan{Name: d.Name, Ordinal: d.Ordinal, Rec: d.Rec, Body: body}
}

// compileExpr lowers one Core expression to an Action .
func (c *compiler) compileExpr(e core.Expr) Action {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *core.Lit:
		return &ConstAction{Value: e.Value}

	case *core.Var:
		if link, ok := c.links[keyOf(e.Name, e.Ordinal)]; ok {
			return link
		}
		return &LookupAction{Name: e.Name, Ordinal: e.Ordinal}

	case *core.Lambda:
		return &ClosureAction{Param: e.Param, Body: c.compileExpr(e.Body)}

	case *core.App:
		return c.compileApp(e)

	case *core.Let:
		return c.compileLet(e)

	case *core.Tuple:
		elems := make([]Action, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = c.compileExpr(el)
		}
		return &TupleAction{Elems: elems}

	case *core.RecordLit:
		fields := make(map[string]Action, len(e.Fields))
		for label, val := range e.Fields {
			fields[label] = c.compileExpr(val)
		}
		return &RecordAction{Fields: fields}

	case *core.FieldAccess:
		return &FieldAction{Record: c.compileExpr(e.Record), Field: e.Field}

	case *core.Case:
		return c.compileCase(e)

	case *core.From:
		return c.compileFrom(e)
	}
	return nil
}

// compileLet compiles a (possibly recursive) Let into a LetAction,
// handling the recursive link dance when Rec is set: a placeholder
// LinkAction is registered for the bound name before Value is compiled,
// so self-references inside Value resolve to it, and its Target is set
// once Value finishes compiling. The link stays registered while Body
// compiles too, so later references to the same binding within Body
// also go through the (now-resolved) link rather than a fresh runtime
// lookup — purely an addressing choice, not a behavior difference,
// since the link's Target is fixed by the time Body ever evaluates.
func (c *compiler) compileLet(e *core.Let) Action {
	if !e.Rec {
		value := c.compileExpr(e.Value)
		body := c.compileExpr(e.Body)
		return &LetAction{Pattern: e.Pattern, Value: value, Body: body}
	}

	ip, ok := e.Pattern.(*core.IdentPattern)
	if !ok {
		// Core's elaborator only ever produces a Rec Let over a single
		// identifier pattern (see core.Let's doc comment) — fall back
		// to the non-recursive path for any other shape rather than
		// compiling something unsound.
		value := c.compileExpr(e.Value)
		body := c.compileExpr(e.Body)
		return &LetAction{Pattern: e.Pattern, Value: value, Body: body}
	}

	key := keyOf(ip.Name, ip.Ordinal)
	link := &LinkAction{}
	prev, hadPrev := c.links[key]
	c.links[key] = link
	link.Target = c.compileExpr(e.Value)
	body := c.compileExpr(e.Body)
	if hadPrev {
		c.links[key] = prev
	} else {
		delete(c.links, key)
	}
	return &LetAction{Pattern: e.Pattern, Value: link, Body: body}
}

// compileCase builds a MatchAction: one MatchCase per Core MatchArm, in
// the same order, so internal/eval's first-match-wins search reproduces
// Core's match semantics exactly.
func (c *compiler) compileCase(e *core.Case) Action {
	cases := make([]MatchCase, len(e.Arms))
	for i, a := range e.Arms {
		var guard Action
		if a.Guard != nil {
			guard = c.compileExpr(a.Guard)
		}
		cases[i] = MatchCase{Pattern: a.Pattern, Guard: guard, Body: c.compileExpr(a.Body)}
	}
	return &MatchAction{Scrutinee: c.compileExpr(e.Scrutinee), Cases: cases}
}

// uncurryApp flattens a left-nested chain of Apps (the Core shape of a
// curried surface application f a b c) into its head expression and the
// list of argument expressions, outermost call last.
func uncurryApp(e *core.App) (head core.Expr, args []core.Expr) {
	args = []core.Expr{e.Arg}
	cur := e.Fun
	for {
		app, ok := cur.(*core.App)
		if !ok {
			break
		}
		args = append([]core.Expr{app.Arg}, args...)
		cur = app.Fun
	}
	return cur, args
}

// compileApp compiles an application, fusing a fully-saturated call to
// a known built-in into Apply2Action/Apply3Action when its arity
// matches exactly, and otherwise falling back to a single Apply1Action
// over the compiled function and argument.
func (c *compiler) compileApp(e *core.App) Action {
	head, args := uncurryApp(e)
	if v, ok := head.(*core.Var); ok {
		if arity, ok := arityOf(v.Name); ok && arity == len(args) && arity >= 2 && arity <= 3 {
			fn := c.compileExpr(head)
			compiled := make([]Action, len(args))
			for i, a := range args {
				compiled[i] = c.compileExpr(a)
			}
			switch arity {
			case 2:
				return &Apply2Action{Fn: fn, Arg1: compiled[0], Arg2: compiled[1]}
			case 3:
				return &Apply3Action{Fn: fn, Arg1: compiled[0], Arg2: compiled[1], Arg3: compiled[2]}
			}
		}
	}
	return &Apply1Action{Fn: c.compileExpr(e.Fun), Arg: c.compileExpr(e.Arg)}
}
