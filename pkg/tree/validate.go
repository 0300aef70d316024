package tree

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Report lists the structural problems of a flat item collection. BuildTree
// tolerates all of them silently; Report makes them visible.
type Report struct {
	Items int
	Roots int
	// EmptyIDs counts items without an ID.
	EmptyIDs int
	// Duplicates lists IDs used by more than one item. Duplicates can make
	// BuildTree recurse without end.
	Duplicates []string
	// Orphans lists items whose ParentID matches no item; BuildTree drops them.
	Orphans []string
	// Cycles lists parent chains that loop back on themselves. Their members
	// never reach a root, so BuildTree drops them too.
	Cycles [][]string
	// Unreachable lists every item missing from the built forest, orphans and
	// cycle members included.
	Unreachable []string
}

// OK reports whether the collection builds into a forest containing every item.
func (r Report) OK() bool {
	return r.EmptyIDs == 0 && len(r.Duplicates) == 0 && len(r.Unreachable) == 0
}

// Problems returns one human readable line per problem.
func (r Report) Problems() []string {
	var out []string
	if r.EmptyIDs > 0 {
		out = append(out, fmt.Sprintf("%d item(s) without an id", r.EmptyIDs))
	}
	for _, id := range r.Duplicates {
		out = append(out, fmt.Sprintf("duplicate id %q", id))
	}
	for _, id := range r.Orphans {
		out = append(out, fmt.Sprintf("item %q references a missing parent", id))
	}
	for _, cycle := range r.Cycles {
		out = append(out, fmt.Sprintf("parent cycle: %s -> %s", strings.Join(cycle, " -> "), cycle[0]))
	}
	if n := len(r.Unreachable) - len(r.Orphans) - cycleMembers(r.Cycles); n > 0 {
		out = append(out, fmt.Sprintf("%d item(s) hang below an orphan or a cycle", n))
	}
	return out
}

// Validate checks items for the problems BuildTree ignores.
func Validate(items []FlatItem) Report {
	report := Report{Items: len(items)}

	index := make(map[string]int64, len(items))
	counts := make(map[string]int, len(items))
	for i, item := range items {
		if item.ID == "" {
			report.EmptyIDs++
			continue
		}
		counts[item.ID]++
		if _, ok := index[item.ID]; !ok {
			index[item.ID] = int64(i)
		}
	}
	for id, n := range counts {
		if n > 1 {
			report.Duplicates = append(report.Duplicates, id)
		}
	}
	sort.Strings(report.Duplicates)

	g := simple.NewDirectedGraph()
	for _, i := range index {
		g.AddNode(simple.Node(i))
	}

	children := make(map[string][]string, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if item.IsRoot() {
			report.Roots++
			continue
		}
		parent, ok := index[item.ParentID]
		if !ok {
			report.Orphans = append(report.Orphans, item.ID)
			continue
		}
		children[item.ParentID] = append(children[item.ParentID], item.ID)
		if item.ParentID == item.ID {
			report.Cycles = append(report.Cycles, []string{item.ID})
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(parent), g.Node(index[item.ID])))
	}

	for _, cycle := range topo.DirectedCyclesIn(g) {
		ids := make([]string, 0, len(cycle))
		for _, n := range cycle {
			ids = append(ids, items[n.ID()].ID)
		}
		if len(ids) > 1 && ids[0] == ids[len(ids)-1] {
			ids = ids[:len(ids)-1]
		}
		report.Cycles = append(report.Cycles, rotateToMin(ids))
	}
	sort.Slice(report.Cycles, func(i, j int) bool {
		return report.Cycles[i][0] < report.Cycles[j][0]
	})

	reached := make(map[string]bool, len(index))
	var reach func(id string)
	reach = func(id string) {
		if reached[id] {
			return
		}
		reached[id] = true
		for _, child := range children[id] {
			reach(child)
		}
	}
	for _, item := range items {
		if item.ID != "" && item.IsRoot() {
			reach(item.ID)
		}
	}
	for _, item := range items {
		if item.ID != "" && !reached[item.ID] {
			report.Unreachable = append(report.Unreachable, item.ID)
			reached[item.ID] = true
		}
	}

	return report
}

func rotateToMin(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	start := 0
	for i, id := range ids {
		if id < ids[start] {
			start = i
		}
	}
	return append(append([]string(nil), ids[start:]...), ids[:start]...)
}

func cycleMembers(cycles [][]string) int {
	n := 0
	for _, c := range cycles {
		n += len(c)
	}
	return n
}
