package ast

import (
	"encoding/json"
	"fmt"
)

// Print produces a deterministic JSON representation of an AST node, used
// by this package's own tests (see print_test.go). Positions are
// omitted so the output is stable across reformatting of the fixture
// source.
func Print(node Node) string {
	if node == nil {
		return "null"
	}
	data, err := json.MarshalIndent(simplify(node), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func simplifyExpr(e Expr) interface{} { return simplify(e) }

func simplifyPattern(p Pattern) interface{} { return simplify(p) }

// simplify converts an AST node into a plain map/slice tree that
// encoding/json can render deterministically (map keys sort on marshal).
func simplify(node interface{}) interface{} {
	switch n := node.(type) {
	case nil:
		return nil
	case *File:
		decls := make([]interface{}, len(n.Decls))
		for i, d := range n.Decls {
			decls[i] = simplify(d)
		}
		return map[string]interface{}{"type": "File", "decls": decls}
	case *ValDecl:
		return map[string]interface{}{"type": "ValDecl", "name": n.Name, "rec": n.Rec, "exp": simplify(n.Exp)}
	case *FunDecl:
		clauses := make([]interface{}, len(n.Clauses))
		for i, c := range n.Clauses {
			params := make([]interface{}, len(c.Params))
			for j, p := range c.Params {
				params[j] = simplify(p)
			}
			clauses[i] = map[string]interface{}{"params": params, "body": simplify(c.Body)}
		}
		return map[string]interface{}{"type": "FunDecl", "name": n.Name, "clauses": clauses}
	case *OverDecl:
		return map[string]interface{}{"type": "OverDecl", "name": n.Name}
	case *InstDecl:
		return map[string]interface{}{"type": "InstDecl", "name": n.Name, "exp": simplify(n.Exp)}
	case *DatatypeDecl:
		types := make([]interface{}, len(n.Types))
		for i, t := range n.Types {
			ctors := make([]interface{}, len(t.Constructors))
			for j, c := range t.Constructors {
				ctors[j] = map[string]interface{}{"name": c.Name, "arg": simplify(c.Arg)}
			}
			types[i] = map[string]interface{}{"name": t.Name, "params": t.TypeParams, "ctors": ctors}
		}
		return map[string]interface{}{"type": "DatatypeDecl", "types": types}
	case *ExpDecl:
		return map[string]interface{}{"type": "ExpDecl", "exp": simplify(n.Exp)}
	case *Lit:
		return map[string]interface{}{"type": "Lit", "value": n.Value}
	case *Ident:
		return map[string]interface{}{"type": "Ident", "name": n.Name}
	case *RecordSelector:
		return map[string]interface{}{"type": "RecordSelector", "field": n.Field}
	case *Fn:
		return map[string]interface{}{"type": "Fn", "param": simplify(n.Param), "body": simplify(n.Body)}
	case *App:
		return map[string]interface{}{"type": "App", "fun": simplify(n.Fun), "arg": simplify(n.Arg)}
	case *If:
		return map[string]interface{}{"type": "If", "cond": simplify(n.Cond), "then": simplify(n.Then), "else": simplify(n.Else)}
	case *Let:
		return map[string]interface{}{"type": "Let", "name": n.Name, "rec": n.Rec, "val": simplify(n.Val), "body": simplify(n.Body)}
	case *Tuple:
		elems := make([]interface{}, len(n.Elems))
		for i, x := range n.Elems {
			elems[i] = simplify(x)
		}
		return map[string]interface{}{"type": "Tuple", "elems": elems}
	case *RecordExp:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{"label": f.Label, "exp": simplify(f.Exp)}
		}
		return map[string]interface{}{"type": "RecordExp", "fields": fields}
	case *ListExp:
		elems := make([]interface{}, len(n.Elems))
		for i, x := range n.Elems {
			elems[i] = simplify(x)
		}
		return map[string]interface{}{"type": "ListExp", "elems": elems}
	case *AndAlso:
		return map[string]interface{}{"type": "AndAlso", "left": simplify(n.Left), "right": simplify(n.Right)}
	case *OrElse:
		return map[string]interface{}{"type": "OrElse", "left": simplify(n.Left), "right": simplify(n.Right)}
	case *BinOp:
		return map[string]interface{}{"type": "BinOp", "op": n.Op, "left": simplify(n.Left), "right": simplify(n.Right)}
	case *Case:
		arms := make([]interface{}, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = map[string]interface{}{"pattern": simplify(a.Pattern), "exp": simplify(a.Exp)}
		}
		return map[string]interface{}{"type": "Case", "scrutinee": simplify(n.Scrutinee), "arms": arms}
	case *From:
		steps := make([]interface{}, len(n.Steps))
		for i, s := range n.Steps {
			steps[i] = simplify(s)
		}
		return map[string]interface{}{"type": "From", "steps": steps}
	case *ScanStep:
		return map[string]interface{}{"type": "ScanStep", "pattern": simplify(n.Pattern), "collection": simplify(n.Collection), "cond": simplify(n.Cond)}
	case *WhereStep:
		return map[string]interface{}{"type": "WhereStep", "pred": simplify(n.Pred)}
	case *SkipStep:
		return map[string]interface{}{"type": "SkipStep", "n": simplify(n.N)}
	case *TakeStep:
		return map[string]interface{}{"type": "TakeStep", "n": simplify(n.N)}
	case *DistinctStep:
		return map[string]interface{}{"type": "DistinctStep"}
	case *YieldStep:
		return map[string]interface{}{"type": "YieldStep", "exp": simplify(n.Exp)}
	case *OrderStep:
		items := make([]interface{}, len(n.Items))
		for i, it := range n.Items {
			items[i] = map[string]interface{}{"exp": simplify(it.Exp), "desc": it.Desc}
		}
		return map[string]interface{}{"type": "OrderStep", "items": items}
	case *GroupStep:
		return map[string]interface{}{"type": "GroupStep", "numKeys": len(n.Keys), "numAggs": len(n.Aggs)}
	case *ComputeStep:
		return map[string]interface{}{"type": "ComputeStep", "numAggs": len(n.Aggs)}
	case *SetOpStep:
		return map[string]interface{}{"type": "SetOpStep", "kind": n.Kind.String(), "distinct": n.Distinct}
	case *WildcardPattern:
		return map[string]interface{}{"type": "WildcardPattern"}
	case *IdentPattern:
		return map[string]interface{}{"type": "IdentPattern", "name": n.Name}
	case *TuplePattern:
		elems := make([]interface{}, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = simplify(e)
		}
		return map[string]interface{}{"type": "TuplePattern", "elems": elems}
	case *RecordPattern:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{"label": f.Label, "pattern": simplify(f.Pattern)}
		}
		return map[string]interface{}{"type": "RecordPattern", "fields": fields, "open": n.Open}
	case *LitPattern:
		return map[string]interface{}{"type": "LitPattern", "value": n.Value}
	case *ConstructorPattern:
		return map[string]interface{}{"type": "ConstructorPattern", "name": n.Name, "arg": simplify(n.Arg)}
	case *ConsPattern:
		return map[string]interface{}{"type": "ConsPattern", "head": simplify(n.Head), "tail": simplify(n.Tail)}
	case *ListPattern:
		elems := make([]interface{}, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = simplify(e)
		}
		return map[string]interface{}{"type": "ListPattern", "elems": elems}
	case *AsPattern:
		return map[string]interface{}{"type": "AsPattern", "name": n.Name, "inner": simplify(n.Inner)}
	case *TypeName:
		args := make([]interface{}, len(n.Args))
		for i, a := range n.Args {
			args[i] = simplify(a)
		}
		return map[string]interface{}{"type": "TypeName", "name": n.Name, "args": args}
	case *TypeVarExpr:
		return map[string]interface{}{"type": "TypeVarExpr", "name": n.Name}
	case *FuncTypeExpr:
		return map[string]interface{}{"type": "FuncTypeExpr", "param": simplify(n.Param), "result": simplify(n.Result)}
	default:
		return fmt.Sprintf("<unprintable %T>", n)
	}
}
