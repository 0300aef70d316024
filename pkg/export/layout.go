package export

import (
	"image/color"
	"sort"
	"unicode/utf8"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Geometry shared by the SVG and PNG exporters, in pixels.
const (
	layoutPad     = 16
	layoutRowH    = 22
	layoutCell    = 24 // width of one guide cell
	layoutCharW   = 8
	layoutMarkerW = 16
	layoutTitleH  = 36
)

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorGuide    = color.RGBA{0xb0, 0xb7, 0xc3, 0xff}
	colorMarker   = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

type segment struct {
	X1, Y1, X2, Y2 int
}

// layoutRow places one rendered row.
type layoutRow struct {
	Row tree.Row
	// X is where the marker cell starts; the label follows it.
	X int
	// Top and Mid are the row's top edge and vertical center.
	Top, Mid int
}

type layout struct {
	Rows     []layoutRow
	Segments []segment
	Width    int
	Height   int
	Title    string
	Empty    string // set when the forest has no roots
}

// buildLayout positions the visible rows. With guides on, a row's content
// starts after one cell per guide; without, after one cell per depth level.
func buildLayout(forest []*tree.Node, opts Options) layout {
	l := layout{Title: opts.Title}
	top := layoutPad
	if l.Title != "" {
		top += layoutTitleH
	}

	if len(forest) == 0 {
		l.Empty = opts.emptyMessage()
		l.Width = 2*layoutPad + textWidth(l.Empty)
		l.Height = top + layoutRowH + layoutPad
		l.widenForTitle()
		return l
	}

	maxRight := 0
	tree.RenderFunc(forest, opts.IsExpanded, func(r tree.Row) {
		rowTop := top + len(l.Rows)*layoutRowH
		mid := rowTop + layoutRowH/2

		cells := r.Depth
		if opts.ShowGuides {
			guides := r.Guides()
			cells = len(guides)
			for i, g := range guides {
				l.Segments = append(l.Segments, guideSegments(g, layoutPad+i*layoutCell, rowTop)...)
			}
		}

		x := layoutPad + cells*layoutCell
		l.Rows = append(l.Rows, layoutRow{Row: r, X: x, Top: rowTop, Mid: mid})
		if right := x + layoutMarkerW + textWidth(r.Node.Label); right > maxRight {
			maxRight = right
		}
	})

	l.Width = maxRight + layoutPad
	l.Height = top + len(l.Rows)*layoutRowH + layoutPad
	l.widenForTitle()
	return l
}

func (l *layout) widenForTitle() {
	if w := 2*layoutPad + textWidth(l.Title); w > l.Width {
		l.Width = w
	}
}

// guideSegments draws one guide cell whose left edge is x in the row starting
// at top.
func guideSegments(g tree.Guide, x, top int) []segment {
	cx := x + layoutCell/2
	mid := top + layoutRowH/2
	bottom := top + layoutRowH
	switch g {
	case tree.GuideLine:
		return []segment{{cx, top, cx, bottom}}
	case tree.GuideTee:
		return []segment{{cx, top, cx, bottom}, {cx, mid, x + layoutCell, mid}}
	case tree.GuideCorner:
		return []segment{{cx, top, cx, mid}, {cx, mid, x + layoutCell, mid}}
	default:
		return nil
	}
}

// markerTriangle returns the three points of the expand marker drawn in the
// cell starting at x: pointing down when expanded, right when collapsed.
func markerTriangle(x, mid int, expanded bool) (xs, ys []int) {
	if expanded {
		return []int{x + 2, x + 12, x + 7}, []int{mid - 3, mid - 3, mid + 4}
	}
	return []int{x + 4, x + 11, x + 4}, []int{mid - 5, mid, mid + 5}
}

func textWidth(s string) int {
	return utf8.RuneCountInString(s) * layoutCharW
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
