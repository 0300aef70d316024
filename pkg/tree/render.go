package tree

import "strings"

// Row is one rendered line of a forest: a node plus the positional facts the
// views need to draw it.
type Row struct {
	Node         *Node
	Depth        int
	Index        int // position among siblings
	SiblingCount int
	IsLast       bool
	HasChildren  bool
	Expanded     bool
	// Trail has one entry per ancestor level, root level first, telling
	// whether that ancestor was the last of its siblings.
	Trail []bool
}

// Affordance markers drawn before the label of a node with children.
const (
	ExpandedMarker  = "▾"
	CollapsedMarker = "▸"
)

// Marker returns the expand affordance for the row: ExpandedMarker or
// CollapsedMarker for nodes with children, "" for leaves.
func (r Row) Marker() string {
	if !r.HasChildren {
		return ""
	}
	if r.Expanded {
		return ExpandedMarker
	}
	return CollapsedMarker
}

// Guide is a single connector cell drawn left of a node.
type Guide int

const (
	GuideBlank  Guide = iota // ancestor was last: nothing below it
	GuideLine                // ancestor has siblings below: vertical line
	GuideTee                 // this node has siblings below it
	GuideCorner              // this node is the last sibling
)

// GuideGlyphs maps guide cells to text. All glyphs should share one width.
type GuideGlyphs struct {
	Blank  string
	Line   string
	Tee    string
	Corner string
}

// BoxGlyphs draws guides with box-drawing characters.
var BoxGlyphs = GuideGlyphs{
	Blank:  "    ",
	Line:   "│   ",
	Tee:    "├── ",
	Corner: "└── ",
}

// ASCIIGlyphs draws guides with plain ASCII.
var ASCIIGlyphs = GuideGlyphs{
	Blank:  "    ",
	Line:   "|   ",
	Tee:    "|-- ",
	Corner: "`-- ",
}

func (g GuideGlyphs) glyph(guide Guide) string {
	switch guide {
	case GuideLine:
		return g.Line
	case GuideTee:
		return g.Tee
	case GuideCorner:
		return g.Corner
	default:
		return g.Blank
	}
}

// Guides returns the connector cells for the row: one per trail entry plus a
// tee or corner for the node itself. Roots have no guides.
func (r Row) Guides() []Guide {
	if r.Depth == 0 {
		return nil
	}
	guides := make([]Guide, 0, len(r.Trail)+1)
	for _, wasLast := range r.Trail {
		if wasLast {
			guides = append(guides, GuideBlank)
		} else {
			guides = append(guides, GuideLine)
		}
	}
	if r.IsLast {
		guides = append(guides, GuideCorner)
	} else {
		guides = append(guides, GuideTee)
	}
	return guides
}

// GuidePrefix renders Guides with the given glyph set.
func (r Row) GuidePrefix(g GuideGlyphs) string {
	guides := r.Guides()
	if len(guides) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, guide := range guides {
		sb.WriteString(g.glyph(guide))
	}
	return sb.String()
}

// Render walks the forest depth-first and returns one Row per visible node.
// A node's children are visited only when it has children and isExpanded
// reports it open; collapsed subtrees are never touched.
func Render(forest []*Node, isExpanded func(id string) bool) []Row {
	var rows []Row
	RenderFunc(forest, isExpanded, func(r Row) {
		rows = append(rows, r)
	})
	return rows
}

// RenderFunc is Render without collecting: emit is called once per visible
// node, in display order.
func RenderFunc(forest []*Node, isExpanded func(id string) bool, emit func(Row)) {
	if isExpanded == nil {
		isExpanded = func(string) bool { return false }
	}

	var renderNode func(n *Node, depth, index, siblingCount int, trail []bool)
	renderNode = func(n *Node, depth, index, siblingCount int, trail []bool) {
		hasChildren := n.HasChildren()
		isLast := index == siblingCount-1
		expanded := hasChildren && isExpanded(n.ID)

		emit(Row{
			Node:         n,
			Depth:        depth,
			Index:        index,
			SiblingCount: siblingCount,
			IsLast:       isLast,
			HasChildren:  hasChildren,
			Expanded:     expanded,
			Trail:        trail,
		})

		if !expanded {
			return
		}
		childTrail := make([]bool, len(trail)+1)
		copy(childTrail, trail)
		childTrail[len(trail)] = isLast
		siblings := nonNil(n.Children)
		for i, child := range siblings {
			renderNode(child, depth+1, i, len(siblings), childTrail)
		}
	}

	roots := nonNil(forest)
	for i, root := range roots {
		renderNode(root, 0, i, len(roots), nil)
	}
}

// nonNil drops nil entries so sibling positions count only real nodes. The
// input is returned as is when it holds none.
func nonNil(nodes []*Node) []*Node {
	for i, n := range nodes {
		if n != nil {
			continue
		}
		kept := make([]*Node, i, len(nodes)-1)
		copy(kept, nodes[:i])
		for _, m := range nodes[i+1:] {
			if m != nil {
				kept = append(kept, m)
			}
		}
		return kept
	}
	return nodes
}
