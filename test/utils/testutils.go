package testutils

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/assert"
)

// === assertion helper functions
func AssertEqualStringSlices(t *testing.T, expected, actual []string) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Errorf("Mismatch in slice length. Expected: %v, Actual: %v", expected, actual)
	}

	expected = append([]string(nil), expected...)
	actual = append([]string(nil), actual...)
	sort.Strings(expected)
	sort.Strings(actual)
	assert.DeepEqual(t, expected, actual)
}

// AssertEqualRows compares table rows cell by cell and reports a diff.
func AssertEqualRows(t *testing.T, expected, actual [][]any) {
	t.Helper()
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("rows mismatch (-expected +actual):\n%s", diff)
	}
}

// CreateTempFile writes content to name inside a fresh temp dir and returns its path.
func CreateTempFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0644)
	assert.NilError(t, err)
	return path
}
