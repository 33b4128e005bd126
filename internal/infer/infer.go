// Package infer implements the Hindley-Milner type inferencer :
// term generation over the surface AST, Martelli-Montanran unification
// via internal/types, a retry loop bounded by a small attempt counter,
// and finalization (substitution application plus let-generalization).
package infer

import (
	"fmt"

	"github.com/morel-lang/morelc/internal/ast"
	"github.com/morel-lang/morelc/internal/core"
	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/errors"
	"github.com/morel-lang/morelc/internal/types"
)

// maxAttempts bounds the retry loop: "the loop terminates because each
// retry either strictly refines a variable to a non-variable term or is
// bounded by a small attempt counter".
const maxAttempts = 2

// overloadSite remembers where a Constraint's winning candidate must be
// written back into the produced Core tree once the substitution is
// final.
type overloadSite struct {
	ref        *core.Var
	constraint *types.Constraint
	ordinals   []int // parallel to constraint.Candidates
}

// Context drives one compilation's worth of inference. It owns the
// equation/action/constraint queues accumulated while walking a
// declaration and the System that allocates fresh variables.
type Context struct {
	sys      *types.System
	tracer   types.Tracer
	ordinals map[string]int
	nextID   uint64

	eqs         []types.Equation
	actions     []*types.Action
	constraints []*types.Constraint
	sites       []*overloadSite

	produced []core.Expr // every node built this declaration, for finalization
}

// New creates an inference context sharing sys with the rest of the
// compilation (elaborate calls New once per declaration group).
func New(sys *types.System) *Context {
	return &Context{sys: sys, tracer: types.NoopTracer{}, ordinals: map[string]int{}}
}

// SetTracer installs a diagnostic tracer forwarded to the unifier.
func (c *Context) SetTracer(t types.Tracer) { c.tracer = t }

func (c *Context) fresh() *types.TVar { return c.sys.FreshVar() }

func (c *Context) ordinal(name string) int {
	o := c.ordinals[name]
	c.ordinals[name]++
	return o
}

func (c *Context) unify(a, b types.Type) {
	c.eqs = append(c.eqs, types.Equation{A: a, B: b})
}

func (c *Context) node(pos ast.Pos, t types.Type) core.Node {
	c.nextID++
	return core.Node{NodeID: c.nextID, Pos: pos, Typ: t}
}

func (c *Context) remember(e core.Expr) core.Expr {
	c.produced = append(c.produced, e)
	return e
}

// InferDecl infers one top-level declaration against e, returning its
// Core form (nil for OverDecl/DatatypeDecl, which only extend the
// environment) and the environment extended with whatever the
// declaration binds.
func (c *Context) InferDecl(e *env.Environment, decl ast.Decl) (*core.Decl, *env.Environment, error) {
	switch d := decl.(type) {
	case *ast.ValDecl:
		return c.inferBindingDecl(e, d.Name, d.Rec, d.Exp, env.VAL, "", d.Pos)
	case *ast.FunDecl:
		fn, pos := desugarFunClauses(d)
		return c.inferBindingDecl(e, d.Name, true, fn, env.VAL, "", pos)
	case *ast.OverDecl:
		ord := c.ordinal(d.Name)
		b := &env.Binding{Name: d.Name, Ordinal: ord, Kind: env.OVER}
		return nil, e.Bind(b), nil
	case *ast.InstDecl:
		return c.inferBindingDecl(e, d.Name, false, d.Exp, env.INST, d.Name, d.Pos)
	case *ast.DatatypeDecl:
		return nil, c.inferDatatypeDecl(e, d), nil
	case *ast.ExpDecl:
		return c.inferBindingDecl(e, "it", false, d.Exp, env.VAL, "", d.Pos)
	}
	return nil, e, fmt.Errorf("infer: unsupported declaration %T", decl)
}

// desugarFunClauses rewrites a multi-clause function declaration into a
// single `fn` expression whose body is a Case over a synthetic tuple of
// parameters — clauses become case arms, tried in order.
func desugarFunClauses(d *ast.FunDecl) (ast.Expr, ast.Pos) {
	arity := len(d.Clauses[0].Params)
	params := make([]ast.Pattern, arity)
	scrutParts := make([]ast.Expr, arity)
	for i := 0; i < arity; i++ {
		name := fmt.Sprintf("$arg%d", i)
		params[i] = &ast.IdentPattern{Name: name, Pos: d.Pos}
		scrutParts[i] = &ast.Ident{Name: name, Pos: d.Pos}
	}
	arms := make([]ast.CaseArm, len(d.Clauses))
	for i, clause := range d.Clauses {
		var pat ast.Pattern
		if arity == 1 {
			pat = clause.Params[0]
		} else {
			pat = &ast.TuplePattern{Elems: clause.Params, Pos: d.Pos}
		}
		arms[i] = ast.CaseArm{Pattern: pat, Exp: clause.Body}
	}
	var scrutinee ast.Expr
	if arity == 1 {
		scrutinee = scrutParts[0]
	} else {
		scrutinee = &ast.Tuple{Elems: scrutParts, Pos: d.Pos}
	}
	body := ast.Expr(&ast.Case{Scrutinee: scrutinee, Arms: arms, Pos: d.Pos})
	// Curry: build nested `fn $argN => ... => body`.
	for i := arity - 1; i >= 0; i-- {
		body = &ast.Fn{Param: params[i], Body: body, Pos: d.Pos}
	}
	return body, d.Pos
}

func (c *Context) inferBindingDecl(e *env.Environment, name string, rec bool, rhs ast.Expr, kind env.Kind, overName string, pos ast.Pos) (*core.Decl, *env.Environment, error) {
	ordinal := c.ordinal(name)

	bodyEnv := e
	var selfVar *types.TVar
	if rec {
		selfVar = c.fresh()
		bodyEnv = e.Bind(&env.Binding{Name: name, Ordinal: ordinal, Type: selfVar, Kind: VALorINST(kind), OverName: overName})
	}

	valueExpr, valueType, err := c.inferExpr(bodyEnv, rhs)
	if err != nil {
		return nil, e, err
	}
	if rec {
		c.unify(selfVar, valueType)
	}

	sub, err := c.solve()
	if err != nil {
		return nil, e, err
	}
	c.finalize(sub)

	resolvedType := types.Apply(sub, valueType)
	envFree := freeVarsOf(e)
	scheme := types.Generalize(resolvedType, envFree)

	decl := &core.Decl{Name: name, Ordinal: ordinal, Rec: rec, Value: valueExpr, Type: scheme}
	newEnv := e.Bind(&env.Binding{Name: name, Ordinal: ordinal, Type: scheme, Value: valueExpr, Kind: kind, OverName: overName})
	return decl, newEnv, nil
}

// VALorINST picks the binding kind a recursive self-reference should
// have while its own body is being inferred: an INST decl's self-name
// still behaves like a plain value from inside its own body.
func VALorINST(k env.Kind) env.Kind {
	if k == env.INST {
		return env.VAL
	}
	return k
}

func freeVarsOf(e *env.Environment) map[int]bool {
	out := map[int]bool{}
	e.EachBinding(func(b *env.Binding) {
		if b.Type == nil {
			return
		}
		for id := range types.FreeVars(b.Type) {
			out[id] = true
		}
	})
	return out
}

func (c *Context) inferDatatypeDecl(e *env.Environment, d *ast.DatatypeDecl) *env.Environment {
	for _, def := range d.Types {
		params := make([]types.Type, len(def.TypeParams))
		tvIndex := map[string]int{}
		for i, p := range def.TypeParams {
			params[i] = &types.TVar{Id: i}
			tvIndex[p] = i
		}
		data := &types.TData{Name: def.Name, Args: params}
		ctors := make([]types.CtorSig, len(def.Constructors))
		for i, cd := range def.Constructors {
			var arg types.Type
			if cd.Arg != nil {
				arg = typeExprToType(cd.Arg, tvIndex)
			}
			ctors[i] = types.CtorSig{Name: cd.Name, Arg: arg}
		}
		data.Ctors = ctors
		_ = c.sys.DefineDatatype(data)

		for _, cd := range def.Constructors {
			ordinal := c.ordinal(cd.Name)
			var scheme types.Type
			if cd.Arg == nil {
				scheme = data
			} else {
				scheme = &types.TFunc{Param: typeExprToType(cd.Arg, tvIndex), Result: data}
			}
			if len(params) > 0 {
				scheme = &types.TForall{NumParams: len(params), Body: scheme}
			}
			e = e.Bind(&env.Binding{Name: cd.Name, Ordinal: ordinal, Type: scheme, Kind: env.VAL})
		}
	}
	return e
}

func typeExprToType(te ast.TypeExpr, tvIndex map[string]int) types.Type {
	switch t := te.(type) {
	case *ast.TypeName:
		switch t.Name {
		case "bool":
			return &types.TPrim{Name: types.Bool}
		case "char":
			return &types.TPrim{Name: types.Char}
		case "int":
			return &types.TPrim{Name: types.Int}
		case "real":
			return &types.TPrim{Name: types.Real}
		case "string":
			return &types.TPrim{Name: types.String}
		case "unit":
			return &types.TPrim{Name: types.Unit}
		case "list":
			if len(t.Args) == 1 {
				return &types.TList{Elem: typeExprToType(t.Args[0], tvIndex)}
			}
		case "bag":
			if len(t.Args) == 1 {
				return &types.TBag{Elem: typeExprToType(t.Args[0], tvIndex)}
			}
		}
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = typeExprToType(a, tvIndex)
		}
		return &types.TData{Name: t.Name, Args: args}
	case *ast.TypeVarExpr:
		if id, ok := tvIndex[t.Name]; ok {
			return &types.TVar{Id: id}
		}
		return &types.TVar{Id: -1}
	case *ast.FuncTypeExpr:
		return &types.TFunc{Param: typeExprToType(t.Param, tvIndex), Result: typeExprToType(t.Result, tvIndex)}
	}
	return &types.TPrim{Name: types.Unit}
}

// solve runs the unifier to a fixed point, bounded by maxAttempts
// retries.
func (c *Context) solve() (types.Substitution, error) {
	u := types.NewUnifier()
	eqs, actions, constraints := c.eqs, c.actions, c.constraints

	var sub types.Substitution
	var outcome types.Outcome
	for attempt := 0; attempt < maxAttempts; attempt++ {
		sub, outcome = u.Unify(eqs, actions, constraints, c.tracer)
		if outcome.Kind == types.Failure {
			return nil, errors.New("infer", errors.TypeError, errors.INF002, ast.Pos{}, outcome.Reason, nil)
		}
		if outcome.Kind == types.Success {
			return sub, nil
		}
		// Retry: resubmit the constraints still pending; the unifier
		// instance keeps its substitution and action state.
		eqs, actions, constraints = nil, nil, u.PendingConstraints()
	}
	return nil, errors.New("infer", errors.TypeError, errors.INF004, ast.Pos{},
		fmt.Sprintf("overload resolution did not converge after %d attempts", maxAttempts), nil)
}

// finalize applies sub to every Core node built during this
// declaration's inference and writes back each overload site's chosen
// instance ordinal.
func (c *Context) finalize(sub types.Substitution) {
	for _, e := range c.produced {
		applySubstToExpr(sub, e)
	}
	for _, site := range c.sites {
		argT := types.Apply(sub, &types.TVar{Id: site.constraint.ArgVar})
		for i, cand := range site.constraint.Candidates {
			if types.Equals(types.Apply(sub, cand.Param), argT) {
				site.ref.Ordinal = site.ordinals[i]
				break
			}
		}
	}
}

func applySubstToExpr(sub types.Substitution, e core.Expr) {
	switch n := e.(type) {
	case *core.Lit:
		n.Typ = types.Apply(sub, n.Typ)
	case *core.Var:
		n.Typ = types.Apply(sub, n.Typ)
	case *core.Lambda:
		n.Typ = types.Apply(sub, n.Typ)
		applySubstToPattern(sub, n.Param)
	case *core.App:
		n.Typ = types.Apply(sub, n.Typ)
	case *core.Let:
		n.Typ = types.Apply(sub, n.Typ)
		applySubstToPattern(sub, n.Pattern)
	case *core.Tuple:
		n.Typ = types.Apply(sub, n.Typ)
	case *core.RecordLit:
		n.Typ = types.Apply(sub, n.Typ)
	case *core.FieldAccess:
		n.Typ = types.Apply(sub, n.Typ)
	case *core.Case:
		n.Typ = types.Apply(sub, n.Typ)
		for _, arm := range n.Arms {
			applySubstToPattern(sub, arm.Pattern)
		}
	case *core.From:
		n.Typ = types.Apply(sub, n.Typ)
		for _, s := range n.Steps {
			applySubstToFromStep(sub, s)
		}
	}
}

func applySubstToFromStep(sub types.Substitution, s core.FromStep) {
	for i, b := range s.Output() {
		b.Type = types.Apply(sub, b.Type)
		s.Output()[i] = b
	}
	switch st := s.(type) {
	case *core.ScanStep:
		applySubstToPattern(sub, st.Pattern)
	}
}

func applySubstToPattern(sub types.Substitution, p core.Pattern) {
	switch p := p.(type) {
	case *core.IdentPattern:
		p.Typ = types.Apply(sub, p.Typ)
	case *core.TuplePattern:
		for _, e := range p.Elems {
			applySubstToPattern(sub, e)
		}
	case *core.RecordPattern:
		for _, f := range p.Fields {
			applySubstToPattern(sub, f.Pattern)
		}
	case *core.CtorPattern:
		applySubstToPattern(sub, p.Arg)
	case *core.ConsPattern:
		applySubstToPattern(sub, p.Head)
		applySubstToPattern(sub, p.Tail)
	case *core.ListPattern:
		for _, e := range p.Elems {
			applySubstToPattern(sub, e)
		}
	case *core.AsPattern:
		p.Typ = types.Apply(sub, p.Typ)
		applySubstToPattern(sub, p.Inner)
	}
}
