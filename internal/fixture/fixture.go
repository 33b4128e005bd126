// Package fixture decodes a YAML surface-syntax document into an
// ast.File, standing in for an external lexer/parser this module
// treats as a separate collaborator. Its consumers are cmd/morelc's
// `check`/`run`/`repl` subcommands, which need some way to hand a
// program to internal/session without writing a lexer; it decodes
// YAML via gopkg.in/yaml.v3.
//
// The format is a small tagged union keyed by a `kind` field at every
// expression, pattern, and from-step node, decoded through yaml.Node so
// each kind can pull out only the fields it needs. It covers the
// common surface forms; datatype declarations and the group/compute/
// set-operation from-steps are intentionally out of scope for this
// decoder (see DESIGN.md) — the pipeline components that consume them
// are still fully implemented and reachable by constructing ast nodes
// directly, as internal/ground and internal/coverage's own tests do.
package fixture

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/morel-lang/morelc/internal/ast"
)

func pos() ast.Pos { return ast.Pos{File: "<fixture>"} }

// File parses a YAML document of the form `decls: [...]` into an
// ast.File.
func File(data []byte) (*ast.File, error) {
	var doc struct {
		Decls []yaml.Node `yaml:"decls"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	decls := make([]ast.Decl, len(doc.Decls))
	for i := range doc.Decls {
		d, err := decodeDecl(&doc.Decls[i])
		if err != nil {
			return nil, fmt.Errorf("fixture: decl[%d]: %w", i, err)
		}
		decls[i] = d
	}
	return &ast.File{Decls: decls, Pos: pos()}, nil
}

type rawDecl struct {
	Kind    string      `yaml:"kind"`
	Name    string      `yaml:"name"`
	Exp     *yaml.Node  `yaml:"exp"`
	Rec     bool        `yaml:"rec"`
	Clauses []rawClause `yaml:"clauses"`
}

type rawClause struct {
	Params []yaml.Node `yaml:"params"`
	Body   yaml.Node   `yaml:"body"`
}

func decodeDecl(n *yaml.Node) (ast.Decl, error) {
	var raw rawDecl
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "val":
		e, err := decodeExpr(raw.Exp)
		if err != nil {
			return nil, err
		}
		return &ast.ValDecl{Name: raw.Name, Exp: e, Rec: raw.Rec, Pos: pos()}, nil

	case "fun":
		clauses := make([]ast.FunClause, len(raw.Clauses))
		for i, c := range raw.Clauses {
			params := make([]ast.Pattern, len(c.Params))
			for j := range c.Params {
				p, err := decodePattern(&c.Params[j])
				if err != nil {
					return nil, err
				}
				params[j] = p
			}
			body, err := decodeExpr(&c.Body)
			if err != nil {
				return nil, err
			}
			clauses[i] = ast.FunClause{Params: params, Body: body}
		}
		return &ast.FunDecl{Name: raw.Name, Clauses: clauses, Pos: pos()}, nil

	case "over":
		return &ast.OverDecl{Name: raw.Name, Pos: pos()}, nil

	case "inst":
		e, err := decodeExpr(raw.Exp)
		if err != nil {
			return nil, err
		}
		return &ast.InstDecl{Name: raw.Name, Exp: e, Pos: pos()}, nil

	case "exp":
		e, err := decodeExpr(raw.Exp)
		if err != nil {
			return nil, err
		}
		return &ast.ExpDecl{Exp: e, Pos: pos()}, nil
	}
	return nil, fmt.Errorf("unknown decl kind %q", raw.Kind)
}

type rawField struct {
	Label string    `yaml:"label"`
	Exp   yaml.Node `yaml:"exp"`
}

type rawArm struct {
	Pattern yaml.Node `yaml:"pattern"`
	Exp     yaml.Node `yaml:"exp"`
}

type rawOrderItem struct {
	Exp  yaml.Node `yaml:"exp"`
	Desc bool      `yaml:"desc"`
}

type rawExpr struct {
	Kind string `yaml:"kind"`

	// lit
	Type  string      `yaml:"type"`
	Value interface{} `yaml:"value"`

	// ident / record selector
	Name  string `yaml:"name"`
	Field string `yaml:"field"`

	// fn / let
	Param *yaml.Node `yaml:"param"`
	Body  *yaml.Node `yaml:"body"`
	Rec   bool       `yaml:"rec"`
	Val   *yaml.Node `yaml:"val"`

	// app: either fun/arg, or head+args sugar for a curried chain
	Fun  *yaml.Node  `yaml:"fun"`
	Arg  *yaml.Node  `yaml:"arg"`
	Head *yaml.Node  `yaml:"head"`
	Args []yaml.Node `yaml:"args"`

	// if / andalso / orelse / binop
	Cond  *yaml.Node `yaml:"cond"`
	Then  *yaml.Node `yaml:"then"`
	Else  *yaml.Node `yaml:"else"`
	Left  *yaml.Node `yaml:"left"`
	Right *yaml.Node `yaml:"right"`
	Op    string     `yaml:"op"`

	// tuple / list
	Elems []yaml.Node `yaml:"elems"`

	// record
	Fields []rawField `yaml:"fields"`

	// case
	Scrutinee *yaml.Node `yaml:"scrutinee"`
	Arms      []rawArm   `yaml:"arms"`

	// from
	Steps []yaml.Node `yaml:"steps"`
}

func decodeExpr(n *yaml.Node) (ast.Expr, error) {
	if n == nil {
		return nil, fmt.Errorf("missing expression")
	}
	var raw rawExpr
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "lit":
		k, v, err := decodeLit(raw.Type, raw.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Lit{Kind: k, Value: v, Pos: pos()}, nil

	case "ident":
		return &ast.Ident{Name: raw.Name, Pos: pos()}, nil

	case "selector":
		return &ast.RecordSelector{Field: raw.Field, Pos: pos()}, nil

	case "fn":
		p, err := decodePattern(raw.Param)
		if err != nil {
			return nil, err
		}
		b, err := decodeExpr(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Fn{Param: p, Body: b, Pos: pos()}, nil

	case "app":
		if raw.Head != nil {
			head, err := decodeExpr(raw.Head)
			if err != nil {
				return nil, err
			}
			cur := head
			for i := range raw.Args {
				a, err := decodeExpr(&raw.Args[i])
				if err != nil {
					return nil, err
				}
				cur = &ast.App{Fun: cur, Arg: a, Pos: pos()}
			}
			return cur, nil
		}
		fn, err := decodeExpr(raw.Fun)
		if err != nil {
			return nil, err
		}
		arg, err := decodeExpr(raw.Arg)
		if err != nil {
			return nil, err
		}
		return &ast.App{Fun: fn, Arg: arg, Pos: pos()}, nil

	case "if":
		c, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		th, err := decodeExpr(raw.Then)
		if err != nil {
			return nil, err
		}
		el, err := decodeExpr(raw.Else)
		if err != nil {
			return nil, err
		}
		return &ast.If{Cond: c, Then: th, Else: el, Pos: pos()}, nil

	case "let":
		v, err := decodeExpr(raw.Val)
		if err != nil {
			return nil, err
		}
		b, err := decodeExpr(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Let{Name: raw.Name, Rec: raw.Rec, Val: v, Body: b, Pos: pos()}, nil

	case "tuple":
		elems, err := decodeExprSlice(raw.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.Tuple{Elems: elems, Pos: pos()}, nil

	case "record":
		fields := make([]ast.RecordField, len(raw.Fields))
		for i, f := range raw.Fields {
			e, err := decodeExpr(&f.Exp)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.RecordField{Label: f.Label, Exp: e}
		}
		return &ast.RecordExp{Fields: fields, Pos: pos()}, nil

	case "list":
		elems, err := decodeExprSlice(raw.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.ListExp{Elems: elems, Pos: pos()}, nil

	case "andalso":
		l, r, err := decodeLeftRight(raw.Left, raw.Right)
		if err != nil {
			return nil, err
		}
		return &ast.AndAlso{Left: l, Right: r, Pos: pos()}, nil

	case "orelse":
		l, r, err := decodeLeftRight(raw.Left, raw.Right)
		if err != nil {
			return nil, err
		}
		return &ast.OrElse{Left: l, Right: r, Pos: pos()}, nil

	case "binop":
		l, r, err := decodeLeftRight(raw.Left, raw.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Op: raw.Op, Left: l, Right: r, Pos: pos()}, nil

	case "case":
		s, err := decodeExpr(raw.Scrutinee)
		if err != nil {
			return nil, err
		}
		arms := make([]ast.CaseArm, len(raw.Arms))
		for i, a := range raw.Arms {
			p, err := decodePattern(&a.Pattern)
			if err != nil {
				return nil, err
			}
			e, err := decodeExpr(&a.Exp)
			if err != nil {
				return nil, err
			}
			arms[i] = ast.CaseArm{Pattern: p, Exp: e}
		}
		return &ast.Case{Scrutinee: s, Arms: arms, Pos: pos()}, nil

	case "from":
		steps := make([]ast.FromStep, len(raw.Steps))
		for i := range raw.Steps {
			s, err := decodeFromStep(&raw.Steps[i])
			if err != nil {
				return nil, err
			}
			steps[i] = s
		}
		return &ast.From{Steps: steps, Pos: pos()}, nil
	}
	return nil, fmt.Errorf("unknown expr kind %q", raw.Kind)
}

func decodeExprSlice(nodes []yaml.Node) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(nodes))
	for i := range nodes {
		e, err := decodeExpr(&nodes[i])
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeLeftRight(left, right *yaml.Node) (ast.Expr, ast.Expr, error) {
	l, err := decodeExpr(left)
	if err != nil {
		return nil, nil, err
	}
	r, err := decodeExpr(right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func decodeLit(typ string, v interface{}) (ast.LitKind, interface{}, error) {
	switch typ {
	case "bool":
		b, _ := v.(bool)
		return ast.BoolLit, b, nil
	case "char":
		s, _ := v.(string)
		if len(s) == 0 {
			return 0, nil, fmt.Errorf("empty char literal")
		}
		return ast.CharLit, rune(s[0]), nil
	case "int":
		switch n := v.(type) {
		case int:
			return ast.IntLit, int64(n), nil
		case int64:
			return ast.IntLit, n, nil
		}
		return 0, nil, fmt.Errorf("int literal: unexpected value %v (%T)", v, v)
	case "real":
		switch n := v.(type) {
		case float64:
			return ast.RealLit, n, nil
		case int:
			return ast.RealLit, float64(n), nil
		}
		return 0, nil, fmt.Errorf("real literal: unexpected value %v (%T)", v, v)
	case "string":
		s, _ := v.(string)
		return ast.StringLit, s, nil
	case "unit":
		return ast.UnitLit, nil, nil
	}
	return 0, nil, fmt.Errorf("unknown literal type %q", typ)
}

type rawPattern struct {
	Kind  string      `yaml:"kind"`
	Name  string      `yaml:"name"`
	Elems []yaml.Node `yaml:"elems"`

	Type  string      `yaml:"type"`
	Value interface{} `yaml:"value"`

	Arg *yaml.Node `yaml:"arg"`

	Head *yaml.Node `yaml:"head"`
	Tail *yaml.Node `yaml:"tail"`

	Fields []rawFieldPattern `yaml:"fields"`
	Open   bool              `yaml:"open"`

	Inner *yaml.Node `yaml:"inner"`
}

type rawFieldPattern struct {
	Label   string    `yaml:"label"`
	Pattern yaml.Node `yaml:"pattern"`
}

func decodePattern(n *yaml.Node) (ast.Pattern, error) {
	if n == nil {
		return nil, fmt.Errorf("missing pattern")
	}
	var raw rawPattern
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "wildcard":
		return &ast.WildcardPattern{Pos: pos()}, nil

	case "ident":
		return &ast.IdentPattern{Name: raw.Name, Pos: pos()}, nil

	case "tuple":
		elems, err := decodePatternSlice(raw.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.TuplePattern{Elems: elems, Pos: pos()}, nil

	case "record":
		fields := make([]ast.RecordFieldPattern, len(raw.Fields))
		for i, f := range raw.Fields {
			p, err := decodePattern(&f.Pattern)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.RecordFieldPattern{Label: f.Label, Pattern: p}
		}
		return &ast.RecordPattern{Fields: fields, Open: raw.Open, Pos: pos()}, nil

	case "lit":
		k, v, err := decodeLit(raw.Type, raw.Value)
		if err != nil {
			return nil, err
		}
		return &ast.LitPattern{Kind: k, Value: v, Pos: pos()}, nil

	case "ctor":
		var arg ast.Pattern
		if raw.Arg != nil {
			a, err := decodePattern(raw.Arg)
			if err != nil {
				return nil, err
			}
			arg = a
		}
		return &ast.ConstructorPattern{Name: raw.Name, Arg: arg, Pos: pos()}, nil

	case "cons":
		h, err := decodePattern(raw.Head)
		if err != nil {
			return nil, err
		}
		t, err := decodePattern(raw.Tail)
		if err != nil {
			return nil, err
		}
		return &ast.ConsPattern{Head: h, Tail: t, Pos: pos()}, nil

	case "list":
		elems, err := decodePatternSlice(raw.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.ListPattern{Elems: elems, Pos: pos()}, nil

	case "as":
		in, err := decodePattern(raw.Inner)
		if err != nil {
			return nil, err
		}
		return &ast.AsPattern{Name: raw.Name, Inner: in, Pos: pos()}, nil
	}
	return nil, fmt.Errorf("unknown pattern kind %q", raw.Kind)
}

func decodePatternSlice(nodes []yaml.Node) ([]ast.Pattern, error) {
	out := make([]ast.Pattern, len(nodes))
	for i := range nodes {
		p, err := decodePattern(&nodes[i])
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

type rawFromStep struct {
	Kind string `yaml:"kind"`

	Pattern    *yaml.Node  `yaml:"pattern"`
	Collection *yaml.Node  `yaml:"collection"`
	Cond       *yaml.Node  `yaml:"cond"`
	Pred       *yaml.Node  `yaml:"pred"`
	N          *yaml.Node  `yaml:"n"`
	Exp        *yaml.Node  `yaml:"exp"`
	Items      []rawOrderItem `yaml:"items"`
}

// decodeFromStep covers the from-step forms exercised by every grounding
// and coverage scenario this decoder's callers need: scan, where, skip,
// take, distinct, yield, order. Group, compute, and the set-operation
// steps are not representable in this format yet (see package doc).
func decodeFromStep(n *yaml.Node) (ast.FromStep, error) {
	var raw rawFromStep
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "scan":
		p, err := decodePattern(raw.Pattern)
		if err != nil {
			return nil, err
		}
		var coll, cond ast.Expr
		if raw.Collection != nil {
			coll, err = decodeExpr(raw.Collection)
			if err != nil {
				return nil, err
			}
		}
		if raw.Cond != nil {
			cond, err = decodeExpr(raw.Cond)
			if err != nil {
				return nil, err
			}
		}
		return &ast.ScanStep{Pattern: p, Collection: coll, Cond: cond, Pos: pos()}, nil

	case "where":
		p, err := decodeExpr(raw.Pred)
		if err != nil {
			return nil, err
		}
		return &ast.WhereStep{Pred: p, Pos: pos()}, nil

	case "skip":
		e, err := decodeExpr(raw.N)
		if err != nil {
			return nil, err
		}
		return &ast.SkipStep{N: e, Pos: pos()}, nil

	case "take":
		e, err := decodeExpr(raw.N)
		if err != nil {
			return nil, err
		}
		return &ast.TakeStep{N: e, Pos: pos()}, nil

	case "distinct":
		return &ast.DistinctStep{Pos: pos()}, nil

	case "yield":
		e, err := decodeExpr(raw.Exp)
		if err != nil {
			return nil, err
		}
		return &ast.YieldStep{Exp: e, Pos: pos()}, nil

	case "order":
		items := make([]ast.OrderItem, len(raw.Items))
		for i, it := range raw.Items {
			e, err := decodeExpr(&it.Exp)
			if err != nil {
				return nil, err
			}
			items[i] = ast.OrderItem{Exp: e, Desc: it.Desc}
		}
		return &ast.OrderStep{Items: items, Pos: pos()}, nil
	}
	return nil, fmt.Errorf("unknown from-step kind %q", raw.Kind)
}
