// tree_bench_test.go - Performance benchmarks for the tree view
package ui

import (
	"testing"

	"github.com/vanderheijden86/arbor/pkg/testutil"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

var benchShapes = []struct {
	name                  string
	roots, depth, breadth int
}{
	{"small_3x3", 3, 2, 3},    // 39 nodes
	{"medium_10x4", 10, 3, 4}, // 850 nodes
	{"wide_5x10", 5, 2, 10},   // 555 nodes
	{"deep_2x2", 2, 9, 2},     // 2046 nodes
}

func BenchmarkTreeBuild(b *testing.B) {
	for _, bm := range benchShapes {
		items := testutil.NewDefault().Forest(bm.roots, bm.depth, bm.breadth)
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = tree.BuildTree(items)
			}
		})
	}
}

func BenchmarkTreeView(b *testing.B) {
	for _, bm := range benchShapes {
		forest := tree.BuildTree(testutil.NewDefault().Forest(bm.roots, bm.depth, bm.breadth))
		b.Run(bm.name, func(b *testing.B) {
			m := NewTreeModel(TestTheme(), forest)
			m.SetSize(100, 40)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = m.View()
			}
		})
	}
}

func BenchmarkToggleRoot(b *testing.B) {
	forest := tree.BuildTree(testutil.QuickTree(6, 4))
	m := NewTreeModel(TestTheme(), forest)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Toggle("n0")
	}
}

func BenchmarkSearch(b *testing.B) {
	forest := tree.BuildTree(testutil.QuickRandom(2000))
	m := NewTreeModel(TestTheme(), forest, WithInitialExpansion(tree.ExpandNone()))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Search("item 19")
	}
}
