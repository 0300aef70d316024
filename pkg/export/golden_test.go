package export

import (
	"bytes"
	"testing"

	"github.com/vanderheijden86/arbor/pkg/testutil"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

func TestTextGolden(t *testing.T) {
	forest := tree.BuildTree(testutil.QuickTree(2, 2))

	var buf bytes.Buffer
	if err := Text(&buf, forest, Options{IsExpanded: expandAll, ShowGuides: true}); err != nil {
		t.Fatalf("Text: %v", err)
	}
	testutil.NewGoldenFile(t, "testdata", "text_tree.golden").Assert(buf.String())
}

func TestMarkdownGolden(t *testing.T) {
	forest := tree.BuildTree(testutil.QuickTree(2, 2))

	var buf bytes.Buffer
	opts := Options{
		IsExpanded: func(id string) bool { return id != "n2" },
		Title:      "Generated",
	}
	if err := Markdown(&buf, forest, opts); err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	testutil.NewGoldenFile(t, "testdata", "markdown_tree.golden").Assert(buf.String())
}
