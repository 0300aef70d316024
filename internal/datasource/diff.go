package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

// ItemDiff describes how a reloaded item list differs from the previous one.
type ItemDiff struct {
	// Added contains IDs present only in the new list
	Added []string
	// Removed contains IDs present only in the old list
	Removed []string
	// Moved contains IDs whose parent changed
	Moved []string
	// Relabeled contains IDs whose label changed
	Relabeled []string
}

// Empty reports whether the lists hold the same items under the same parents
// and labels.
func (d ItemDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Moved) == 0 && len(d.Relabeled) == 0
}

// Summary returns a one-line description such as "2 added, 1 moved".
func (d ItemDiff) Summary() string {
	if d.Empty() {
		return "no changes"
	}
	var parts []string
	add := func(n int, what string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, what))
		}
	}
	add(len(d.Added), "added")
	add(len(d.Removed), "removed")
	add(len(d.Moved), "moved")
	add(len(d.Relabeled), "relabeled")
	return strings.Join(parts, ", ")
}

// DiffItems compares two item lists by ID. When an ID repeats, its first
// occurrence counts. All result lists are sorted.
func DiffItems(before, after []tree.FlatItem) ItemDiff {
	oldByID := indexItems(before)
	newByID := indexItems(after)

	var diff ItemDiff
	for id, old := range oldByID {
		cur, ok := newByID[id]
		if !ok {
			diff.Removed = append(diff.Removed, id)
			continue
		}
		if old.ParentID != cur.ParentID {
			diff.Moved = append(diff.Moved, id)
		}
		if old.Label != cur.Label {
			diff.Relabeled = append(diff.Relabeled, id)
		}
	}
	for id := range newByID {
		if _, ok := oldByID[id]; !ok {
			diff.Added = append(diff.Added, id)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Moved)
	sort.Strings(diff.Relabeled)
	return diff
}

func indexItems(items []tree.FlatItem) map[string]tree.FlatItem {
	m := make(map[string]tree.FlatItem, len(items))
	for _, item := range items {
		if _, dup := m[item.ID]; !dup {
			m[item.ID] = item
		}
	}
	return m
}
