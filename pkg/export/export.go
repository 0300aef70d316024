// Package export renders the visible rows of a forest for non-interactive
// use: plain text, Markdown, SVG and PNG.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Format names an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
)

// DefaultEmptyMessage is written for an empty forest when Options leaves it
// blank.
const DefaultEmptyMessage = "No items"

// Options controls what every exporter draws.
type Options struct {
	// IsExpanded decides which nodes show their children. Nil means all
	// collapsed.
	IsExpanded func(id string) bool
	// ShowGuides draws connector lines.
	ShowGuides bool
	// Glyphs is used by the text exporter. Zero value means tree.BoxGlyphs.
	Glyphs tree.GuideGlyphs
	// EmptyMessage replaces the output for an empty forest.
	EmptyMessage string
	// Title is rendered as a heading by the Markdown, SVG and PNG exporters.
	Title string
}

func (o Options) emptyMessage() string {
	if o.EmptyMessage == "" {
		return DefaultEmptyMessage
	}
	return o.EmptyMessage
}

func (o Options) glyphs() tree.GuideGlyphs {
	if o.Glyphs == (tree.GuideGlyphs{}) {
		return tree.BoxGlyphs
	}
	return o.Glyphs
}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported format %q (want text, markdown, svg or png)", s)
}

// FormatForPath infers a format from an output path, defaulting to text.
func FormatForPath(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return FormatText
	}
	return f
}

// Write renders forest to w in the given format.
func Write(w io.Writer, format Format, forest []*tree.Node, opts Options) error {
	defer metrics.Timer(metrics.Export)()
	switch format {
	case FormatText:
		return Text(w, forest, opts)
	case FormatMarkdown:
		return Markdown(w, forest, opts)
	case FormatSVG:
		return SVG(w, forest, opts)
	case FormatPNG:
		return PNG(w, forest, opts)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// SaveFile renders forest into path, creating parent directories.
func SaveFile(path string, format Format, forest []*tree.Node, opts Options) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, format, forest, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
