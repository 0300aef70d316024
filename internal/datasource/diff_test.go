package datasource

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

func TestDiffItems(t *testing.T) {
	before := []tree.FlatItem{
		{ID: "a", Label: "A"},
		{ID: "b", Label: "B", ParentID: "a"},
		{ID: "c", Label: "C", ParentID: "a"},
	}
	after := []tree.FlatItem{
		{ID: "a", Label: "A"},
		{ID: "b", Label: "Bee", ParentID: "a"},
		{ID: "c", Label: "C", ParentID: "b"},
		{ID: "d", Label: "D"},
	}

	diff := DiffItems(before, after)
	want := ItemDiff{
		Added:     []string{"d"},
		Moved:     []string{"c"},
		Relabeled: []string{"b"},
	}
	if !reflect.DeepEqual(diff, want) {
		t.Errorf("diff = %+v, want %+v", diff, want)
	}
	if got := diff.Summary(); got != "1 added, 1 moved, 1 relabeled" {
		t.Errorf("Summary() = %q", got)
	}

	removed := DiffItems(after, before[:1])
	if !reflect.DeepEqual(removed.Removed, []string{"b", "c", "d"}) {
		t.Errorf("Removed = %v", removed.Removed)
	}
}

func TestDiffItemsEmpty(t *testing.T) {
	items := []tree.FlatItem{{ID: "a", Label: "A"}}
	diff := DiffItems(items, items)
	if !diff.Empty() || diff.Summary() != "no changes" {
		t.Errorf("expected no changes, got %+v", diff)
	}
}
