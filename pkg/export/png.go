package export

import (
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

// PNG draws the same picture as SVG into a PNG image.
func PNG(w io.Writer, forest []*tree.Node, opts Options) error {
	dc := drawPNG(buildLayout(forest, opts))
	return dc.EncodePNG(w)
}

func drawPNG(l layout) *gg.Context {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if l.Title != "" {
		dc.SetColor(colorText)
		dc.DrawStringAnchored(l.Title, layoutPad, layoutPad+12, 0, 0.5)
	}

	if l.Empty != "" {
		top := layoutPad
		if l.Title != "" {
			top += layoutTitleH
		}
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(l.Empty, layoutPad, float64(top+layoutRowH/2), 0, 0.5)
		return dc
	}

	dc.SetColor(colorGuide)
	dc.SetLineWidth(1)
	for _, s := range l.Segments {
		dc.DrawLine(float64(s.X1)+0.5, float64(s.Y1), float64(s.X2)+0.5, float64(s.Y2))
		dc.Stroke()
	}

	for _, r := range l.Rows {
		if r.Row.HasChildren {
			xs, ys := markerTriangle(r.X, r.Mid, r.Row.Expanded)
			dc.SetColor(colorMarker)
			dc.NewSubPath()
			dc.MoveTo(float64(xs[0]), float64(ys[0]))
			dc.LineTo(float64(xs[1]), float64(ys[1]))
			dc.LineTo(float64(xs[2]), float64(ys[2]))
			dc.ClosePath()
			dc.Fill()
		}
		dc.SetColor(colorText)
		dc.DrawStringAnchored(r.Row.Node.Label, float64(r.X+layoutMarkerW), float64(r.Mid), 0, 0.5)
	}
	return dc
}
