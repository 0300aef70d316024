package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
	">", "&gt;",
)

// Markdown writes the visible rows as a nested bullet list. Collapsed nodes
// note how many descendants they hide.
func Markdown(w io.Writer, forest []*tree.Node, opts Options) error {
	bw := bufio.NewWriter(w)
	if opts.Title != "" {
		fmt.Fprintf(bw, "# %s\n\n", markdownEscaper.Replace(opts.Title))
	}
	if len(forest) == 0 {
		fmt.Fprintf(bw, "_%s_\n", markdownEscaper.Replace(opts.emptyMessage()))
		return bw.Flush()
	}

	tree.RenderFunc(forest, opts.IsExpanded, func(r tree.Row) {
		bw.WriteString(strings.Repeat("  ", r.Depth))
		bw.WriteString("- ")
		bw.WriteString(markdownEscaper.Replace(r.Node.Label))
		if r.HasChildren && !r.Expanded {
			fmt.Fprintf(bw, " _(%d hidden)_", tree.CountNodes(r.Node.Children))
		}
		bw.WriteByte('\n')
	})
	return bw.Flush()
}

// MarkdownDetails renders a single node as a Markdown document: heading, ID,
// parent, child count and caller-defined fields. The viewer's details pane
// shows it.
func MarkdownDetails(n *tree.Node, path []string) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", markdownEscaper.Replace(n.Label))
	fmt.Fprintf(&sb, "- **ID:** `%s`\n", strings.ReplaceAll(n.ID, "`", "'"))
	if len(path) > 0 {
		crumbs := make([]string, len(path))
		for i, id := range path {
			crumbs[i] = markdownEscaper.Replace(id)
		}
		fmt.Fprintf(&sb, "- **Path:** %s\n", strings.Join(crumbs, " / "))
	}
	if n.HasChildren() {
		fmt.Fprintf(&sb, "- **Children:** %d (%d descendants)\n", len(n.Children), tree.CountNodes(n.Children))
	}

	item, ok := n.Item()
	if !ok || len(item.Fields) == 0 {
		return sb.String()
	}
	sb.WriteString("\n## Fields\n\n| Field | Value |\n|---|---|\n")
	for _, key := range sortedKeys(item.Fields) {
		value := fmt.Sprintf("%v", item.Fields[key])
		value = strings.ReplaceAll(value, "|", `\|`)
		value = strings.ReplaceAll(value, "\n", " ")
		fmt.Fprintf(&sb, "| %s | %s |\n", markdownEscaper.Replace(key), value)
	}
	return sb.String()
}
