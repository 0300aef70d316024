// Package tree holds the hierarchical node model behind arbor: the flat-to-tree
// builder, forest traversal helpers, the expansion state controller and the
// depth-first row renderer that the terminal views draw from.
//
// The package never returns errors. Malformed input degrades silently:
// orphaned items are dropped by BuildTree, toggling an unknown ID records an
// inert entry, and duplicate IDs are a caller contract violation. Use Validate
// to report those problems up front.
package tree

// RootParent is the ParentID value that marks a FlatItem as a root.
const RootParent = ""

// Node is one entry in a forest.
//
// IDs must be unique across the whole forest, not just among siblings: the
// expansion set and every lookup key on ID.
type Node struct {
	ID       string
	Label    string
	Children []*Node
	// Data is caller-owned and carried through untouched. Nodes produced by
	// BuildTree carry the originating FlatItem here.
	Data any
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return !n.HasChildren()
}

// Item returns the FlatItem the node was built from, if any.
func (n *Node) Item() (FlatItem, bool) {
	if n == nil {
		return FlatItem{}, false
	}
	item, ok := n.Data.(FlatItem)
	return item, ok
}

// FlatItem is a parent-referencing record used as BuildTree input.
type FlatItem struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	// ParentID is RootParent for roots.
	ParentID string `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	// Fields holds every caller-defined attribute besides id, label and parent.
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// IsRoot reports whether the item sits at the top level.
func (f FlatItem) IsRoot() bool {
	return f.ParentID == RootParent
}

// Field returns a caller-defined attribute.
func (f FlatItem) Field(name string) (any, bool) {
	if f.Fields == nil {
		return nil, false
	}
	v, ok := f.Fields[name]
	return v, ok
}
