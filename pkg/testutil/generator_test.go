package testutil

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

func TestChain(t *testing.T) {
	gen := NewDefault()

	tests := []struct {
		name      string
		size      int
		wantDepth int
	}{
		{"chain_1", 1, 0},
		{"chain_2", 2, 1},
		{"chain_5", 5, 4},
		{"chain_10", 10, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := gen.Chain(tt.size)
			AssertItemCount(t, items, tt.size)
			AssertValidForest(t, items)

			forest := tree.BuildTree(items)
			if len(forest) != 1 {
				t.Fatalf("Chain(%d) roots = %d, want 1", tt.size, len(forest))
			}
			maxDepth := 0
			tree.Walk(forest, func(_ *tree.Node, depth int) bool {
				maxDepth = max(maxDepth, depth)
				return true
			})
			if maxDepth != tt.wantDepth {
				t.Errorf("Chain(%d) depth = %d, want %d", tt.size, maxDepth, tt.wantDepth)
			}
		})
	}
}

func TestStar(t *testing.T) {
	items := NewDefault().Star(4)
	AssertItemCount(t, items, 5)
	AssertValidForest(t, items)

	forest := tree.BuildTree(items)
	if len(forest) != 1 || len(forest[0].Children) != 4 {
		t.Fatalf("Star(4) should have one root with 4 children")
	}
	for _, child := range forest[0].Children {
		if child.HasChildren() {
			t.Errorf("spoke %s should be a leaf", child.ID)
		}
	}
}

func TestTreeAndForest(t *testing.T) {
	tests := []struct {
		name                  string
		roots, depth, breadth int
		want                  int
	}{
		{"single_root", 1, 0, 3, 1},
		{"binary_depth_2", 1, 2, 2, 7},
		{"ternary_depth_2", 1, 2, 3, 13},
		{"two_roots", 2, 1, 2, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := NewDefault().Forest(tt.roots, tt.depth, tt.breadth)
			AssertItemCount(t, items, tt.want)
			AssertNoDuplicateIDs(t, items)
			AssertValidForest(t, items)

			forest := tree.BuildTree(items)
			if len(forest) != tt.roots {
				t.Errorf("roots = %d, want %d", len(forest), tt.roots)
			}
			if got := tree.CountNodes(forest); got != tt.want {
				t.Errorf("CountNodes = %d, want %d", got, tt.want)
			}
		})
	}

	if got := len(QuickTree(2, 2)); got != 7 {
		t.Errorf("QuickTree(2, 2) = %d items, want 7", got)
	}
}

func TestRandomIsValidAndDeterministic(t *testing.T) {
	a := New(GeneratorConfig{Seed: 7}).Random(200, 0.1)
	b := New(GeneratorConfig{Seed: 7}).Random(200, 0.1)

	AssertValidForest(t, a)
	AssertJSONEqual(t, a, b)

	if got := tree.CountNodes(tree.BuildTree(a)); got != 200 {
		t.Errorf("CountNodes = %d, want 200", got)
	}
}

func TestShuffleKeepsForest(t *testing.T) {
	gen := NewDefault()
	items := gen.Tree(3, 2)
	shuffled := gen.Shuffle(items)

	AssertItemCount(t, shuffled, len(items))
	if got := tree.CountNodes(tree.BuildTree(shuffled)); got != len(items) {
		t.Errorf("shuffled forest has %d nodes, want %d", got, len(items))
	}
}

func TestWithOrphans(t *testing.T) {
	gen := NewDefault()
	items := gen.WithOrphans(gen.Chain(3), 2)
	AssertItemCount(t, items, 5)

	report := tree.Validate(items)
	if len(report.Orphans) != 2 {
		t.Errorf("Orphans = %v, want 2 entries", report.Orphans)
	}
	if got := tree.CountNodes(tree.BuildTree(items)); got != 3 {
		t.Errorf("orphans should be dropped, got %d nodes", got)
	}
}

func TestCycle(t *testing.T) {
	items := NewDefault().Cycle(3)

	report := tree.Validate(items)
	if len(report.Cycles) != 1 || len(report.Cycles[0]) != 3 {
		t.Errorf("Cycles = %v, want one cycle of 3", report.Cycles)
	}
	if forest := tree.BuildTree(items); len(forest) != 0 {
		t.Errorf("cycle has no root, got %d roots", len(forest))
	}
}

func TestWithFields(t *testing.T) {
	items := New(GeneratorConfig{WithFields: true}).Chain(2)
	for _, item := range items {
		if _, ok := item.Field("index"); !ok {
			t.Errorf("item %s missing index field", item.ID)
		}
	}
}

func TestToJSONL(t *testing.T) {
	items := QuickChain(3)
	out := ToJSONL(items)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 not valid JSON: %v", err)
	}
	if _, ok := first["parentId"]; ok {
		t.Error("root should not carry parentId")
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 1 not valid JSON: %v", err)
	}
	if second["parentId"] != "n0" {
		t.Errorf("parentId = %v, want n0", second["parentId"])
	}
}

func TestWriteItemsFile(t *testing.T) {
	dir := t.TempDir()
	path := WriteItemsFile(t, dir, "nested/items.jsonl", QuickChain(2))
	if !strings.HasSuffix(path, "items.jsonl") {
		t.Errorf("unexpected path %s", path)
	}
}

func TestAssertRowIDs(t *testing.T) {
	forest := tree.BuildTree(QuickChain(3))
	rows := tree.Render(forest, func(string) bool { return true })
	AssertRowIDs(t, rows, "n0", "n1", "n2")

	if ids := GetIDs(QuickChain(2)); len(ids) != 2 || ids[1] != "n1" {
		t.Errorf("GetIDs = %v", ids)
	}
}

func TestGoldenFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GENERATE_GOLDEN", "1")
	NewGoldenFile(t, dir, "out.golden").Assert("hello\n")

	t.Setenv("GENERATE_GOLDEN", "")
	NewGoldenFile(t, dir, "out.golden").Assert("hello\n")
}
