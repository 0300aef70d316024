// Package testutil provides test fixture generators for forest shapes.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

// GeneratorConfig controls item generation.
type GeneratorConfig struct {
	Seed     int64  // Random seed for determinism (0 = 42)
	IDPrefix string // Prefix for item IDs (default: "n")
	// WithFields adds a few caller-defined fields to every item.
	WithFields bool
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42,
		IDPrefix: "n",
	}
}

// Generator creates flat item fixtures with various shapes.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "n"
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ID returns the ID of the i-th generated item.
func (g *Generator) ID(i int) string {
	return fmt.Sprintf("%s%d", g.cfg.IDPrefix, i)
}

func (g *Generator) item(i int, parent int) tree.FlatItem {
	item := tree.FlatItem{
		ID:    g.ID(i),
		Label: fmt.Sprintf("Item %d", i),
	}
	if parent >= 0 {
		item.ParentID = g.ID(parent)
	}
	if g.cfg.WithFields {
		item.Fields = map[string]any{
			"index":  i,
			"weight": g.rng.Intn(100),
		}
	}
	return item
}

// ============================================================================
// Shape Generators
// ============================================================================

// Chain creates a single path: n0 is the root, n{i} is the child of n{i-1}.
func (g *Generator) Chain(size int) []tree.FlatItem {
	items := make([]tree.FlatItem, size)
	for i := range items {
		items[i] = g.item(i, i-1)
	}
	return items
}

// Star creates one root with the given number of leaf children.
func (g *Generator) Star(spokes int) []tree.FlatItem {
	items := make([]tree.FlatItem, 0, spokes+1)
	items = append(items, g.item(0, -1))
	for i := 1; i <= spokes; i++ {
		items = append(items, g.item(i, 0))
	}
	return items
}

// Tree creates a complete tree: every node above the given depth has breadth
// children. Items are listed breadth-first.
func (g *Generator) Tree(depth, breadth int) []tree.FlatItem {
	return g.Forest(1, depth, breadth)
}

// Forest creates several complete trees side by side.
func (g *Generator) Forest(roots, depth, breadth int) []tree.FlatItem {
	if roots < 1 {
		roots = 1
	}
	if breadth < 1 {
		breadth = 1
	}

	var items []tree.FlatItem
	next := 0
	var level []int
	for r := 0; r < roots; r++ {
		items = append(items, g.item(next, -1))
		level = append(level, next)
		next++
	}
	for d := 0; d < depth; d++ {
		var nextLevel []int
		for _, parent := range level {
			for b := 0; b < breadth; b++ {
				items = append(items, g.item(next, parent))
				nextLevel = append(nextLevel, next)
				next++
			}
		}
		level = nextLevel
	}
	return items
}

// Random creates size items where each item is a root with probability
// rootRatio and otherwise hangs below a random earlier item. The result is
// always a valid forest.
func (g *Generator) Random(size int, rootRatio float64) []tree.FlatItem {
	items := make([]tree.FlatItem, size)
	for i := range items {
		parent := -1
		if i > 0 && g.rng.Float64() >= rootRatio {
			parent = g.rng.Intn(i)
		}
		items[i] = g.item(i, parent)
	}
	return items
}

// Shuffle returns items in a random order. BuildTree output must not depend
// on whether parents precede their children.
func (g *Generator) Shuffle(items []tree.FlatItem) []tree.FlatItem {
	out := make([]tree.FlatItem, len(items))
	copy(out, items)
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// WithOrphans appends count items whose parents do not exist.
func (g *Generator) WithOrphans(items []tree.FlatItem, count int) []tree.FlatItem {
	out := append([]tree.FlatItem(nil), items...)
	for i := 0; i < count; i++ {
		out = append(out, tree.FlatItem{
			ID:       fmt.Sprintf("orphan%d", i),
			Label:    fmt.Sprintf("Orphan %d", i),
			ParentID: fmt.Sprintf("missing%d", i),
		})
	}
	return out
}

// Cycle creates size items whose parents form a ring. None of them is a root.
func (g *Generator) Cycle(size int) []tree.FlatItem {
	items := make([]tree.FlatItem, size)
	for i := range items {
		items[i] = g.item(i, (i+size-1)%size)
	}
	return items
}

// ToJSONL renders items as JSON Lines with parentId set for non-roots.
func ToJSONL(items []tree.FlatItem) string {
	var sb strings.Builder
	for _, item := range items {
		record := map[string]any{"id": item.ID, "label": item.Label}
		if item.ParentID != "" {
			record["parentId"] = item.ParentID
		}
		for k, v := range item.Fields {
			record[k] = v
		}
		data, err := json.Marshal(record)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ============================================================================
// Quick helpers
// ============================================================================

// QuickChain returns a default-generated chain.
func QuickChain(size int) []tree.FlatItem {
	return NewDefault().Chain(size)
}

// QuickTree returns a default-generated complete tree.
func QuickTree(depth, breadth int) []tree.FlatItem {
	return NewDefault().Tree(depth, breadth)
}

// QuickRandom returns a default-generated random forest.
func QuickRandom(size int) []tree.FlatItem {
	return NewDefault().Random(size, 0.1)
}
