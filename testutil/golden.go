// Package testutil provides golden-file and structural-diff helpers
// shared across this module's package test suites.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateGoldens controls whether AssertGolden overwrites its fixture
// file instead of comparing against it. Set via
// UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenPath returns the checked-in fixture path for a golden
// comparison under the calling package's testdata directory.
func GoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden")
}

// AssertGolden compares actual (typically a pretty-printed structural
// dump — a compiled Action tree, a type moniker, a CNF formula) against
// the checked-in fixture at testdata/<feature>/<name>.golden. With
// UpdateGoldens set, it writes actual as the new fixture instead of
// comparing.
func AssertGolden(t *testing.T, feature, name, actual string) {
	t.Helper()

	path := GoldenPath(feature, name)
	actual = strings.TrimRight(actual, "\n") + "\n"

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			t.Fatalf("writing golden file: %v", err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file %s does not exist; run with UPDATE_GOLDENS=true to create it", path)
		}
		t.Fatalf("reading golden file: %v", err)
	}

	if diff := cmp.Diff(string(want), actual); diff != "" {
		t.Errorf("golden mismatch for %s/%s (-want +got):\n%s", feature, name, diff)
	}
}

// DiffValues renders a structural diff between two arbitrary Go values
// (e.g. two types.Type trees, two core.Program trees) via go-cmp,
// exported for tests that want a readable mismatch message without
// reaching for reflect.DeepEqual's opaque bool.
func DiffValues(want, got interface{}, opts ...cmp.Option) string {
	return cmp.Diff(want, got, opts...)
}
