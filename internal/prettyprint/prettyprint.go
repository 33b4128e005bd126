// Package prettyprint implements the pretty printer: the external
// collaborator that turns a typed runtime value into a human-readable
// string bounded by a configured width, string length, list length, and
// nesting depth. It is not part of the algorithmic core — only
// internal/session's CompiledStatement.Eval calls it, to render the
// value each action prints.
//
// Depth/length elision follows internal/eval.Show's own per-shape
// rendering (same literal syntax, same sorted-label record order) so a
// truncated value still reads as a value of the same shape, just
// smaller; only the final line-width bound needs to reason about
// *display* columns rather than byte or rune count, since a handful of
// wide runes (CJK, fullwidth punctuation) can make a short string
// render wider than its rune count suggests — golang.org/x/text/width
// classifies each rune for that.
package prettyprint

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/width"

	"github.com/morel-lang/morelc/internal/eval"
)

// Config bounds one render.
type Config struct {
	Width      int // max display columns per line before truncating with an ellipsis
	Depth      int // max nesting depth before eliding a composite as "#"
	ListLength int // max tuple/list/bag/record elements shown before "..."
	StrLength  int // max string literal length shown before eliding the tail
}

// Default is a conservative set of REPL defaults: wide enough for a
// terminal, deep enough for ordinary nested records, with elision only
// kicking in on pathological input.
func Default() Config {
	return Config{Width: 78, Depth: 5, ListLength: 20, StrLength: 200}
}

// Format renders v under cfg, matching eval.Show's literal syntax at
// every shape but eliding according to cfg's bounds.
func Format(v eval.Value, cfg Config) string {
	return truncateWidth(render(v, cfg, 0), cfg.Width)
}

func render(v eval.Value, cfg Config, depth int) string {
	if depth > cfg.Depth {
		return "#"
	}
	switch v := v.(type) {
	case nil, eval.Unit:
		return "()"
	case bool, int64, float64, rune:
		return eval.Show(v)
	case string:
		if len(v) > cfg.StrLength {
			return fmt.Sprintf("%q", v[:cfg.StrLength]+"...")
		}
		return eval.Show(v)
	case eval.Tuple:
		return renderSeq("(", ")", len(v), cfg, func(i int) string { return render(v[i], cfg, depth+1) })
	case eval.List:
		return renderSeq("[", "]", len(v), cfg, func(i int) string { return render(v[i], cfg, depth+1) })
	case eval.Bag:
		return "bag " + renderSeq("[", "]", len(v), cfg, func(i int) string { return render(v[i], cfg, depth+1) })
	case eval.Record:
		labels := make([]string, 0, len(v))
		for l := range v {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		return renderSeq("{", "}", len(labels), cfg, func(i int) string {
			return fmt.Sprintf("%s = %s", labels[i], render(v[labels[i]], cfg, depth+1))
		})
	case *eval.Ctor:
		if v.Arg == nil {
			return v.Name
		}
		return v.Name + " " + render(v.Arg, cfg, depth+1)
	case *eval.Closure, *eval.Builtin, *eval.PartialBuiltin:
		return "<fn>"
	default:
		return eval.Show(v)
	}
}

// renderSeq renders a bracketed, comma-joined sequence of n elements,
// eliding past cfg.ListLength with a trailing "...".
func renderSeq(open, close string, n int, cfg Config, elem func(i int) string) string {
	shown := n
	elided := false
	if shown > cfg.ListLength {
		shown = cfg.ListLength
		elided = true
	}
	parts := make([]string, 0, shown+1)
	for i := 0; i < shown; i++ {
		parts = append(parts, elem(i))
	}
	if elided {
		parts = append(parts, "...")
	}
	return open + strings.Join(parts, ", ") + close
}

// columns reports r's contribution to display width: east-asian wide
// and fullwidth runes count as two columns, everything else as one.
func columns(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// truncateWidth cuts s to at most max display columns, appending an
// ellipsis when it had to.
func truncateWidth(s string, max int) string {
	if max <= 0 {
		return s
	}
	col := 0
	for i, r := range s {
		w := columns(r)
		if col+w > max {
			return s[:i] + "..."
		}
		col += w
	}
	return s
}
