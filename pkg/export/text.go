package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Text writes one line per visible row: guides, the expand marker for nodes
// with children, then the label. Leaves are padded so labels line up.
func Text(w io.Writer, forest []*tree.Node, opts Options) error {
	bw := bufio.NewWriter(w)
	if len(forest) == 0 {
		bw.WriteString(opts.emptyMessage())
		bw.WriteByte('\n')
		return bw.Flush()
	}

	glyphs := opts.glyphs()
	tree.RenderFunc(forest, opts.IsExpanded, func(r tree.Row) {
		bw.WriteString(TextLine(r, opts.ShowGuides, glyphs))
		bw.WriteByte('\n')
	})
	return bw.Flush()
}

// TextLine renders a single row the way Text does, without the newline.
func TextLine(r tree.Row, showGuides bool, glyphs tree.GuideGlyphs) string {
	var sb strings.Builder
	if showGuides {
		sb.WriteString(r.GuidePrefix(glyphs))
	} else {
		sb.WriteString(strings.Repeat("  ", r.Depth))
	}
	if marker := r.Marker(); marker != "" {
		sb.WriteString(marker)
		sb.WriteByte(' ')
	} else {
		sb.WriteString("  ")
	}
	sb.WriteString(r.Node.Label)
	return sb.String()
}
