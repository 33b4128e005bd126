package plan

import (
	"fmt"
	"sort"
	"strings"
)

// Dump renders a compiled Action tree as a deterministic, address-free
// s-expression, for golden/snapshot comparisons that must not vary
// between runs (pointer identity would otherwise leak into %#v output).
// A cyclic LinkAction (a Rec binding referencing itself) is rendered as
// "<link>" the second time it is visited rather than recursing forever.
func Dump(a Action) string {
	return dump(a, map[Action]bool{})
}

func dump(a Action, seen map[Action]bool) string {
	if a == nil {
		return "<nil>"
	}
	switch a := a.(type) {
	case *ConstAction:
		return fmt.Sprintf("(const %v)", a.Value)

	case *LookupAction:
		return fmt.Sprintf("(lookup %s/%d)", a.Name, a.Ordinal)

	case *LinkAction:
		if seen[a] {
			return "<link>"
		}
		seen[a] = true
		return fmt.Sprintf("(link %s)", dump(a.Target, seen))

	case *TupleAction:
		parts := make([]string, len(a.Elems))
		for i, e := range a.Elems {
			parts[i] = dump(e, seen)
		}
		return fmt.Sprintf("(tuple %s)", strings.Join(parts, " "))

	case *RecordAction:
		labels := make([]string, 0, len(a.Fields))
		for l := range a.Fields {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		parts := make([]string, len(labels))
		for i, l := range labels {
			parts[i] = fmt.Sprintf("%s=%s", l, dump(a.Fields[l], seen))
		}
		return fmt.Sprintf("(record %s)", strings.Join(parts, " "))

	case *FieldAction:
		return fmt.Sprintf("(field %s %s)", a.Field, dump(a.Record, seen))

	case *ClosureAction:
		return fmt.Sprintf("(closure %s %s)", a.Param, dump(a.Body, seen))

	case *Apply1Action:
		return fmt.Sprintf("(apply1 %s %s)", dump(a.Fn, seen), dump(a.Arg, seen))

	case *Apply2Action:
		return fmt.Sprintf("(apply2 %s %s %s)", dump(a.Fn, seen), dump(a.Arg1, seen), dump(a.Arg2, seen))

	case *Apply3Action:
		return fmt.Sprintf("(apply3 %s %s %s %s)", dump(a.Fn, seen), dump(a.Arg1, seen), dump(a.Arg2, seen), dump(a.Arg3, seen))

	case *MatchAction:
		parts := make([]string, len(a.Cases))
		for i, c := range a.Cases {
			guard := ""
			if c.Guard != nil {
				guard = fmt.Sprintf(" when %s", dump(c.Guard, seen))
			}
			parts[i] = fmt.Sprintf("(%s%s => %s)", c.Pattern, guard, dump(c.Body, seen))
		}
		return fmt.Sprintf("(match %s %s)", dump(a.Scrutinee, seen), strings.Join(parts, " "))

	case *LetAction:
		return fmt.Sprintf("(let %s = %s in %s)", a.Pattern, dump(a.Value, seen), dump(a.Body, seen))

	default:
		return fmt.Sprintf("<%T>", a)
	}
}
