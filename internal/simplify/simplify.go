package simplify

import "github.com/morel-lang/morelc/internal/core"

// Expr runs the inliner and algebraic simplifier over e to a fixed
// point, bounded by maxPasses. env supplies top-level bindings already compiled earlier in
// the program, eligible for cross-declaration inlining; pass nil when
// simplifying a standalone expression.
func Expr(e core.Expr, env []topLevel, maxPasses int) core.Expr {
	cur := e
	prev := ""
	for i := 0; i < maxPasses; i++ {
		cur = inlineExpr(cur, env)
		cur = walkArith(cur)
		next := cur.String()
		if next == prev {
			break
		}
		prev = next
	}
	return cur
}

// DefaultMaxPasses bounds the fixed-point loop when the caller has no
// specific budget in mind.
const DefaultMaxPasses = 16

// Program runs Expr over every declaration of prog in order, threading
// each non-recursive, sufficiently-atomic-or-closed binding forward as
// a candidate for inlining at later declarations' call sites.
func Program(prog *core.Program, maxPasses int) *core.Program {
	var env []topLevel
	decls := make([]core.Decl, len(prog.Decls))
	for i, d := range prog.Decls {
		simplified := Expr(d.Value, env, maxPasses)
		decls[i] = core.Decl{Name: d.Name, Ordinal: d.Ordinal, Rec: d.Rec, Value: simplified, Type: d.Type}

		inlineOK := false
		if !d.Rec {
			if isAtomic(simplified) {
				inlineOK = true
			} else if lam, ok := simplified.(*core.Lambda); ok && closedFunction(lam) {
				inlineOK = true
			}
		}
		env = append(env, topLevel{key: keyOf(d.Name, d.Ordinal), value: simplified, inlineOK: inlineOK})
	}
	return &core.Program{Decls: decls}
}
