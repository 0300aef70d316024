package ui

import (
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// chevronWidth is the number of cells a chevron occupies, trailing space
// included. Leaves get the same width of blanks so labels line up.
const chevronWidth = 2

// Chevron returns the expand affordance for a node with children: pointing
// down when expanded, right when collapsed.
func Chevron(expanded bool) string {
	if expanded {
		return tree.ExpandedMarker
	}
	return tree.CollapsedMarker
}

// renderChevron draws the chevron cell for a row, styled with the theme.
func (t *TreeModel) renderChevron(r tree.Row) string {
	if !r.HasChildren {
		return "  "
	}
	return t.theme.ChevronText.Render(Chevron(r.Expanded)) + " "
}
