package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

// AssertItemCount verifies the expected number of items.
func AssertItemCount(t *testing.T, items []tree.FlatItem, expected int) {
	t.Helper()
	if len(items) != expected {
		t.Errorf("expected %d items, got %d", expected, len(items))
	}
}

// AssertNoDuplicateIDs verifies all item IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, items []tree.FlatItem) {
	t.Helper()
	seen := make(map[string]bool)
	for _, item := range items {
		if seen[item.ID] {
			t.Errorf("duplicate item ID: %s", item.ID)
		}
		seen[item.ID] = true
	}
}

// AssertValidForest verifies items build into a forest containing all of them.
func AssertValidForest(t *testing.T, items []tree.FlatItem) {
	t.Helper()
	report := tree.Validate(items)
	for _, problem := range report.Problems() {
		t.Errorf("invalid forest: %s", problem)
	}
}

// AssertRowIDs verifies the IDs of rendered rows, in order.
func AssertRowIDs(t *testing.T, rows []tree.Row, expected ...string) {
	t.Helper()
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Node.ID
	}
	if !slices.Equal(got, expected) {
		t.Errorf("rows mismatch:\nexpected: %v\nactual:   %v", expected, got)
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		// Find first difference for helpful error message
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")

		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s\n\nFull diff (expected vs actual):\n%s\nvs\n%s",
					i+1, expLine, actLine, string(expected), actual)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}

// TempDir helpers

// WriteItemsFile writes items as JSONL to name inside dir and returns the path.
func WriteItemsFile(t *testing.T, dir, name string, items []tree.FlatItem) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(ToJSONL(items)), 0644); err != nil {
		t.Fatalf("failed to write items file: %v", err)
	}
	return path
}

// GetIDs returns the IDs of items, in order.
func GetIDs(items []tree.FlatItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
