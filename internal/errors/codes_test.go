package errors

import (
	"testing"

	"github.com/morel-lang/morelc/internal/ast"
)

func TestNewWrapsReportRetrievableByAsReport(t *testing.T) {
	err := New("infer", UnboundIdentifier, INF001, ast.Pos{Line: 4, Column: 2, File: "a.mo"}, "unbound name foo", nil)

	rep, ok := AsReport(err)
	if !ok {
		t.Fatal("AsReport did not find a Report in the error chain")
	}
	if rep.Code != INF001 || rep.Kind != UnboundIdentifier {
		t.Errorf("Report = %+v", rep)
	}
	if got, want := err.Error(), "a.mo:4:2: INF001: unbound name foo"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestToJSONRoundTripsCode(t *testing.T) {
	err := New("infer", TypeError, INF002, ast.Pos{}, "mismatch", map[string]any{"expected": "int"})
	rep, _ := AsReport(err)
	js, jsonErr := rep.ToJSON(false)
	if jsonErr != nil {
		t.Fatalf("ToJSON error: %v", jsonErr)
	}
	if !containsAll(js, `"code":"INF002"`, `"kind":"TypeError"`) {
		t.Errorf("ToJSON output missing fields: %s", js)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
