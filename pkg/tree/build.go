package tree

// BuildTree converts flat parent-referencing items into a forest.
//
// Items with ParentID RootParent become the returned roots; the rest are
// grouped by ParentID, keeping their relative input order. Roots are kept
// apart from the child groups, so an item whose ID is "" is an ordinary node
// and never adopts the roots. Every node carries the item it was built from in
// Data and a non-nil Children slice (empty for leaves).
//
// Items whose ParentID never matches an ID are left out, and so are parent
// cycles, which no root can reach. There is no duplicate detection: an ID
// that appears both inside a subtree and among its ancestors recurses
// forever, which callers must rule out (see Validate).
func BuildTree(items []FlatItem) []*Node {
	var roots []FlatItem
	children := make(map[string][]FlatItem, len(items))
	for _, item := range items {
		if item.IsRoot() {
			roots = append(roots, item)
			continue
		}
		children[item.ParentID] = append(children[item.ParentID], item)
	}

	var build func(group []FlatItem) []*Node
	build = func(group []FlatItem) []*Node {
		nodes := make([]*Node, 0, len(group))
		for _, item := range group {
			nodes = append(nodes, &Node{
				ID:       item.ID,
				Label:    item.Label,
				Data:     item,
				Children: build(children[item.ID]),
			})
		}
		return nodes
	}

	return build(roots)
}

// CollectAllIDs returns the ID of every node in the forest in depth-first
// pre-order.
func CollectAllIDs(forest []*Node) []string {
	ids := make([]string, 0, len(forest))
	Walk(forest, func(n *Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// CountNodes returns the number of nodes in the forest.
func CountNodes(forest []*Node) int {
	count := 0
	for _, n := range forest {
		if n == nil {
			continue
		}
		count += 1 + CountNodes(n.Children)
	}
	return count
}

// Walk visits every node depth-first in pre-order. Returning false from fn
// skips the node's descendants.
func Walk(forest []*Node, fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(forest, 0)
}

// Find returns the first node with the given ID in pre-order, or nil.
func Find(forest []*Node, id string) *Node {
	var found *Node
	Walk(forest, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// PathTo returns the IDs of the ancestors of the node with the given ID, root
// first, excluding the node itself. ok is false when no such node exists.
func PathTo(forest []*Node, id string) (path []string, ok bool) {
	var stack []string
	var search func(nodes []*Node) bool
	search = func(nodes []*Node) bool {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if n.ID == id {
				return true
			}
			stack = append(stack, n.ID)
			if search(n.Children) {
				return true
			}
			stack = stack[:len(stack)-1]
		}
		return false
	}
	if !search(forest) {
		return nil, false
	}
	return append([]string(nil), stack...), true
}

// Flatten converts a forest back into flat items in pre-order, with ParentID
// set from the actual nesting. Fields are taken from the FlatItem in Data
// when present.
func Flatten(forest []*Node) []FlatItem {
	var items []FlatItem
	var flatten func(nodes []*Node, parentID string)
	flatten = func(nodes []*Node, parentID string) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			item := FlatItem{ID: n.ID, Label: n.Label, ParentID: parentID}
			if src, ok := n.Item(); ok {
				item.Fields = src.Fields
			}
			items = append(items, item)
			flatten(n.Children, n.ID)
		}
	}
	flatten(forest, RootParent)
	return items
}
