package tree

import (
	"reflect"
	"sort"
	"testing"
)

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func TestOwnedExpansionDefaultsToAll(t *testing.T) {
	forest := BuildTree(animals())
	e := NewOwnedExpansion(ExpansionPolicy{}, forest, nil)

	if e.Mode() != Owned {
		t.Errorf("mode = %v, want owned", e.Mode())
	}
	if !reflect.DeepEqual(e.IDs(), CollectAllIDs(forest)) {
		t.Errorf("initial set = %v, want every id", e.IDs())
	}
}

// TestOwnedToggleAppliesAndNotifies verifies an owned toggle updates the set and
// reports the same set to the callback
func TestOwnedToggleAppliesAndNotifies(t *testing.T) {
	var notified [][]string
	e := NewOwnedExpansion(ExpandIDs("x"), nil, func(next []string) {
		notified = append(notified, next)
	})

	got := e.Toggle("y")
	if !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("toggle y = %v, want [x y]", got)
	}
	if !reflect.DeepEqual(e.IDs(), []string{"x", "y"}) {
		t.Errorf("state = %v, want [x y]", e.IDs())
	}

	got = e.Toggle("x")
	if !reflect.DeepEqual(got, []string{"y"}) {
		t.Errorf("toggle x = %v, want [y]", got)
	}

	if len(notified) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notified))
	}
	if !reflect.DeepEqual(notified[1], []string{"y"}) {
		t.Errorf("second notification = %v, want [y]", notified[1])
	}
}

// TestToggleNeverMutatesPrevious verifies each toggle builds a fresh slice
func TestToggleNeverMutatesPrevious(t *testing.T) {
	e := NewOwnedExpansion(ExpandIDs("a", "b", "c"), nil, nil)
	before := e.IDs()
	snapshot := append([]string(nil), before...)

	e.Toggle("b")
	e.Toggle("d")

	if !reflect.DeepEqual(before, snapshot) {
		t.Errorf("previous set was mutated: %v, want %v", before, snapshot)
	}
}

// TestExternalToggleOnlyProposes verifies a controlled toggle leaves state alone
func TestExternalToggleOnlyProposes(t *testing.T) {
	var proposed []string
	calls := 0
	e := NewExternalExpansion([]string{}, func(next []string) {
		proposed = next
		calls++
	})

	if e.Mode() != External {
		t.Errorf("mode = %v, want external", e.Mode())
	}

	e.Toggle("x")
	if calls != 1 || !reflect.DeepEqual(proposed, []string{"x"}) {
		t.Errorf("proposal = %v after %d calls, want [x] after 1", proposed, calls)
	}
	if e.IsExpanded("x") {
		t.Error("external controller must not apply its own proposal")
	}

	// Host ignores the proposal; toggling again proposes the same thing.
	e.Toggle("x")
	if !reflect.DeepEqual(proposed, []string{"x"}) {
		t.Errorf("second proposal = %v, want [x]", proposed)
	}

	e.Sync(proposed)
	if !e.IsExpanded("x") {
		t.Error("expected x expanded after Sync")
	}
	e.Toggle("x")
	if len(proposed) != 0 {
		t.Errorf("proposal after sync = %v, want empty", proposed)
	}
}

func TestNewExternalExpansionNil(t *testing.T) {
	e := NewExternalExpansion(nil, nil)
	if e.IDs() == nil || e.Len() != 0 {
		t.Errorf("expected empty non-nil set, got %#v", e.IDs())
	}
	// Nil callback is allowed.
	e.Toggle("a")
}

// TestToggleUnknownID verifies unknown IDs become inert entries
func TestToggleUnknownID(t *testing.T) {
	forest := BuildTree(animals())
	e := NewOwnedExpansion(ExpandNone(), forest, nil)

	e.Toggle("does-not-exist")
	if !e.IsExpanded("does-not-exist") {
		t.Error("expected unknown id to be recorded")
	}
	rows := Render(forest, e.IsExpanded)
	if len(rows) != 2 {
		t.Errorf("unknown id should not change the view, got %d rows", len(rows))
	}
}

// TestToggleKeepsSiblingsOpen verifies opening one branch leaves others open
func TestToggleKeepsSiblingsOpen(t *testing.T) {
	e := NewOwnedExpansion(ExpandIDs("2"), nil, nil)
	e.Toggle("5")
	if !e.IsExpanded("2") || !e.IsExpanded("5") {
		t.Errorf("expected both branches open, got %v", e.IDs())
	}
}

func TestExpandAndCollapse(t *testing.T) {
	calls := 0
	e := NewOwnedExpansion(ExpandIDs("a"), nil, func([]string) { calls++ })

	got := e.Expand("a", "b", "b", "c")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Expand = %v, want [a b c]", got)
	}
	if calls != 1 {
		t.Errorf("expected 1 notification, got %d", calls)
	}

	e.Expand("a", "c")
	if calls != 1 {
		t.Errorf("no-op Expand should not notify, got %d calls", calls)
	}

	got = e.Collapse("a", "zzz")
	if !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Collapse = %v, want [b c]", got)
	}
	e.Collapse("zzz")
	if calls != 2 {
		t.Errorf("no-op Collapse should not notify, got %d calls", calls)
	}
}

func TestReplaceDedupes(t *testing.T) {
	var proposed []string
	e := NewExternalExpansion([]string{"a"}, func(next []string) { proposed = next })
	e.Replace([]string{"b", "c", "b"})
	if !reflect.DeepEqual(sorted(proposed), []string{"b", "c"}) {
		t.Errorf("Replace proposed %v, want [b c]", proposed)
	}
	if !reflect.DeepEqual(e.IDs(), []string{"a"}) {
		t.Errorf("external Replace must not apply, got %v", e.IDs())
	}
}

func TestModeString(t *testing.T) {
	if Owned.String() != "owned" || External.String() != "external" {
		t.Errorf("unexpected mode strings %q %q", Owned, External)
	}
}
