package export

import (
	"fmt"
	"image/color"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

// SVG draws the visible rows as monospace text with guide lines and marker
// triangles.
func SVG(w io.Writer, forest []*tree.Node, opts Options) error {
	return renderSVG(w, buildLayout(forest, opts))
}

func renderSVG(w io.Writer, l layout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	if l.Title != "" {
		canvas.Text(layoutPad, layoutPad+18, l.Title,
			fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	}

	if l.Empty != "" {
		top := layoutPad
		if l.Title != "" {
			top += layoutTitleH
		}
		canvas.Text(layoutPad, top+layoutRowH/2+4, l.Empty,
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-style:italic", css(colorSubtle)))
		canvas.End()
		return nil
	}

	canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:1", css(colorGuide)))
	for _, s := range l.Segments {
		canvas.Line(s.X1, s.Y1, s.X2, s.Y2)
	}
	canvas.Gend()

	for _, r := range l.Rows {
		if r.Row.HasChildren {
			xs, ys := markerTriangle(r.X, r.Mid, r.Row.Expanded)
			canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s", css(colorMarker)))
		}
		canvas.Text(r.X+layoutMarkerW, r.Mid+4, r.Row.Node.Label,
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorText)))
	}

	canvas.End()
	return nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
