// tree.go - Hierarchical tree view over a tree.Node forest
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/arbor/pkg/export"
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// gutterWidth is the cursor column drawn left of every row.
const gutterWidth = 2

// ExpansionChangedMsg is emitted for every expansion change the tree makes or
// proposes. In controlled mode nothing changes until the host answers with
// SetExpanded.
type ExpansionChangedMsg struct {
	IDs        []string
	Controlled bool
}

// LabelRenderer draws a node's label in place of the raw Label.
type LabelRenderer func(n *tree.Node, depth int) string

// ActionRenderer draws trailing content for a row, e.g. counts or badges.
type ActionRenderer func(n *tree.Node, depth int) string

// TreeOption configures a TreeModel.
type TreeOption func(*TreeModel)

// WithGuides turns connector lines on or off. They are on by default.
func WithGuides(show bool) TreeOption {
	return func(t *TreeModel) { t.showGuides = show }
}

// WithASCII draws guides with plain ASCII instead of box-drawing characters.
func WithASCII(ascii bool) TreeOption {
	return func(t *TreeModel) {
		if ascii {
			t.glyphs = tree.ASCIIGlyphs
		} else {
			t.glyphs = tree.BoxGlyphs
		}
	}
}

// WithEmptyMessage sets what the view shows for an empty forest. An empty
// msg is kept and renders a blank view; omit the option for "No items".
func WithEmptyMessage(msg string) TreeOption {
	return func(t *TreeModel) { t.emptyMessage = msg }
}

// WithInitialExpansion seeds an uncontrolled tree. It is consulted once, when
// the model is created.
func WithInitialExpansion(p tree.ExpansionPolicy) TreeOption {
	return func(t *TreeModel) { t.policy = p }
}

// WithControlledExpansion hands ownership of the expansion set to the host.
// ids is the host's current set; onChange, if non-nil, hears every proposal.
func WithControlledExpansion(ids []string, onChange func(next []string)) TreeOption {
	return func(t *TreeModel) {
		t.controlled = true
		t.controlledIDs = ids
		if onChange != nil {
			t.onChange = onChange
		}
	}
}

// WithExpansionChange registers a callback for every expansion change.
func WithExpansionChange(onChange func(next []string)) TreeOption {
	return func(t *TreeModel) { t.onChange = onChange }
}

// WithLabelRenderer customizes label drawing.
func WithLabelRenderer(fn LabelRenderer) TreeOption {
	return func(t *TreeModel) { t.labelRenderer = fn }
}

// WithActionRenderer adds trailing per-row content.
func WithActionRenderer(fn ActionRenderer) TreeOption {
	return func(t *TreeModel) { t.actionRenderer = fn }
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(keys TreeKeyMap) TreeOption {
	return func(t *TreeModel) { t.keys = keys }
}

// TreeModel renders a forest as a navigable, collapsible tree.
type TreeModel struct {
	forest         []*tree.Node
	parents        map[string]string // child ID -> parent ID
	rows           []tree.Row        // visible rows, display order
	cursor         int               // index into rows
	viewportOffset int               // index of the first rendered row
	width          int
	height         int
	originX        int // screen position of the view, for mouse hits
	originY        int
	theme          Theme
	keys           TreeKeyMap

	showGuides   bool
	glyphs       tree.GuideGlyphs
	emptyMessage string

	policy        tree.ExpansionPolicy
	controlled    bool
	controlledIDs []string
	onChange      func(next []string)
	expansion     *tree.Expansion
	pendingSelect string // node to select once the host applies a reveal

	labelRenderer  LabelRenderer
	actionRenderer ActionRenderer

	// Search state
	searchInput      textinput.Model
	searchMode       bool
	searchMatches    []string
	searchMatchIDs   map[string]bool
	searchMatchIndex int
}

// NewTreeModel creates a tree view over forest.
func NewTreeModel(theme Theme, forest []*tree.Node, opts ...TreeOption) TreeModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "label or id"
	ti.CharLimit = 120
	ti.Width = 30

	t := TreeModel{
		theme:        theme,
		keys:         DefaultTreeKeyMap(),
		showGuides:   true,
		glyphs:       tree.BoxGlyphs,
		emptyMessage: export.DefaultEmptyMessage,
		policy:       tree.ExpandAll(),
		searchInput:  ti,
	}
	for _, opt := range opts {
		opt(&t)
	}

	t.forest = forest
	t.parents = parentIndex(forest)
	if t.controlled {
		t.expansion = tree.NewExternalExpansion(t.controlledIDs, t.onChange)
	} else {
		t.expansion = tree.NewOwnedExpansion(t.policy, forest, t.onChange)
	}
	t.refresh()
	return t
}

func parentIndex(forest []*tree.Node) map[string]string {
	parents := make(map[string]string)
	var index func(nodes []*tree.Node, parent string)
	index = func(nodes []*tree.Node, parent string) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if parent != "" {
				parents[n.ID] = parent
			}
			index(n.Children, n.ID)
		}
	}
	index(forest, "")
	return parents
}

// SetForest swaps in a new forest, e.g. after a reload. The expansion set and
// the selection carry over by ID; the initial policy is not re-applied.
func (t *TreeModel) SetForest(forest []*tree.Node) {
	t.forest = forest
	t.parents = parentIndex(forest)
	t.refresh()
	if query := t.searchInput.Value(); query != "" {
		t.setMatches(t.findMatches(query))
	}
}

// SetSize sets the view dimensions in cells.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// SetOrigin tells the tree where its top-left cell sits on screen so mouse
// clicks can be mapped to rows.
func (t *TreeModel) SetOrigin(x, y int) {
	t.originX = x
	t.originY = y
}

// SetExpanded installs the host's expansion set. Controlled hosts call it in
// response to ExpansionChangedMsg; for uncontrolled trees it is a silent reset.
func (t *TreeModel) SetExpanded(ids []string) {
	t.expansion.Sync(ids)
	t.refresh()
	if t.pendingSelect != "" {
		if i := t.rowIndex(t.pendingSelect); i >= 0 {
			t.cursor = i
			t.pendingSelect = ""
			t.ensureCursorVisible()
		}
	}
}

// refresh re-renders the visible rows, keeping the selected node or its
// nearest visible ancestor under the cursor.
func (t *TreeModel) refresh() {
	defer metrics.Timer(metrics.TreeRender)()
	selected := t.SelectedID()
	t.rows = tree.Render(t.forest, t.expansion.IsExpanded)
	if selected == "" || !t.selectVisible(selected) {
		t.cursor = clamp(t.cursor, 0, max(len(t.rows)-1, 0))
	}
	t.ensureCursorVisible()
}

// selectVisible moves the cursor to id, or to its closest visible ancestor.
func (t *TreeModel) selectVisible(id string) bool {
	for id != "" {
		if i := t.rowIndex(id); i >= 0 {
			t.cursor = i
			return true
		}
		id = t.parents[id]
	}
	return false
}

func (t *TreeModel) rowIndex(id string) int {
	for i, r := range t.rows {
		if r.Node.ID == id {
			return i
		}
	}
	return -1
}

// ── Expansion ──

// changed reports an expansion change. Uncontrolled trees have already applied
// it and only need to re-render.
func (t *TreeModel) changed(next []string) tea.Cmd {
	if !t.controlled {
		t.refresh()
	}
	msg := ExpansionChangedMsg{IDs: next, Controlled: t.controlled}
	return func() tea.Msg { return msg }
}

// Toggle flips the expansion of id. Unknown IDs are recorded like any other.
func (t *TreeModel) Toggle(id string) tea.Cmd {
	return t.changed(t.expansion.Toggle(id))
}

// ToggleSelected flips the selected node if it has children.
func (t *TreeModel) ToggleSelected() tea.Cmd {
	r, ok := t.SelectedRow()
	if !ok || !r.HasChildren {
		return nil
	}
	return t.Toggle(r.Node.ID)
}

// ExpandAll expands every node in the forest.
func (t *TreeModel) ExpandAll() tea.Cmd {
	return t.changed(t.expansion.Replace(tree.CollectAllIDs(t.forest)))
}

// CollapseAll collapses everything.
func (t *TreeModel) CollapseAll() tea.Cmd {
	if t.expansion.Len() == 0 {
		return nil
	}
	return t.changed(t.expansion.Replace(nil))
}

// ExpandOrMoveToChild expands a collapsed parent, or steps into the first
// child of an expanded one. Leaves do nothing.
func (t *TreeModel) ExpandOrMoveToChild() tea.Cmd {
	r, ok := t.SelectedRow()
	if !ok || !r.HasChildren {
		return nil
	}
	if !r.Expanded {
		return t.changed(t.expansion.Expand(r.Node.ID))
	}
	t.MoveDown()
	return nil
}

// CollapseOrJumpToParent collapses an expanded parent, otherwise selects the
// parent row.
func (t *TreeModel) CollapseOrJumpToParent() tea.Cmd {
	r, ok := t.SelectedRow()
	if !ok {
		return nil
	}
	if r.HasChildren && r.Expanded {
		return t.changed(t.expansion.Collapse(r.Node.ID))
	}
	t.JumpToParent()
	return nil
}

// Reveal expands every ancestor of id and selects it. In controlled mode the
// selection follows once the host applies the change.
func (t *TreeModel) Reveal(id string) tea.Cmd {
	path, ok := tree.PathTo(t.forest, id)
	if !ok {
		return nil
	}
	hidden := false
	for _, ancestor := range path {
		if !t.expansion.IsExpanded(ancestor) {
			hidden = true
			break
		}
	}
	if !hidden {
		t.SelectByID(id)
		return nil
	}

	next := t.expansion.Expand(path...)
	if t.controlled {
		t.pendingSelect = id
		return t.changed(next)
	}
	cmd := t.changed(next)
	t.SelectByID(id)
	return cmd
}

// ── Navigation ──

// MoveDown moves the cursor down one row.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// MoveUp moves the cursor up one row.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

// JumpToTop selects the first row.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom selects the last row.
func (t *TreeModel) JumpToBottom() {
	if len(t.rows) > 0 {
		t.cursor = len(t.rows) - 1
	}
	t.ensureCursorVisible()
}

// JumpToParent selects the parent of the selected node.
func (t *TreeModel) JumpToParent() {
	id := t.SelectedID()
	if parent, ok := t.parents[id]; ok {
		t.selectVisible(parent)
		t.ensureCursorVisible()
	}
}

// PageDown moves cursor down by half a viewport.
func (t *TreeModel) PageDown() {
	t.cursor = clamp(t.cursor+t.halfPage(), 0, max(len(t.rows)-1, 0))
	t.ensureCursorVisible()
}

// PageUp moves cursor up by half a viewport.
func (t *TreeModel) PageUp() {
	t.cursor = clamp(t.cursor-t.halfPage(), 0, max(len(t.rows)-1, 0))
	t.ensureCursorVisible()
}

func (t *TreeModel) halfPage() int {
	if n := t.effectiveVisibleCount() / 2; n > 0 {
		return n
	}
	return 1
}

// SelectByID moves the cursor to a visible node. Returns false if the node
// is not currently visible.
func (t *TreeModel) SelectByID(id string) bool {
	if i := t.rowIndex(id); i >= 0 {
		t.cursor = i
		t.ensureCursorVisible()
		return true
	}
	return false
}

// ── Accessors ──

// SelectedRow returns the row under the cursor.
func (t *TreeModel) SelectedRow() (tree.Row, bool) {
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return tree.Row{}, false
	}
	return t.rows[t.cursor], true
}

// SelectedNode returns the node under the cursor, or nil.
func (t *TreeModel) SelectedNode() *tree.Node {
	if r, ok := t.SelectedRow(); ok {
		return r.Node
	}
	return nil
}

// SelectedID returns the ID of the node under the cursor, or "".
func (t *TreeModel) SelectedID() string {
	if n := t.SelectedNode(); n != nil {
		return n.ID
	}
	return ""
}

// Rows returns the visible rows.
func (t *TreeModel) Rows() []tree.Row { return t.rows }

// Forest returns the forest being displayed.
func (t *TreeModel) Forest() []*tree.Node { return t.forest }

// ExpandedIDs returns the current expansion set.
func (t *TreeModel) ExpandedIDs() []string { return t.expansion.IDs() }

// IsExpanded reports whether id is expanded.
func (t *TreeModel) IsExpanded(id string) bool { return t.expansion.IsExpanded(id) }

// Controlled reports whether the host owns the expansion set.
func (t *TreeModel) Controlled() bool { return t.controlled }

// Cursor returns the index of the selected row.
func (t *TreeModel) Cursor() int { return t.cursor }

// NodeCount returns the number of nodes in the forest.
func (t *TreeModel) NodeCount() int { return tree.CountNodes(t.forest) }

// IsEmpty reports whether the forest has no nodes.
func (t *TreeModel) IsEmpty() bool { return len(t.rows) == 0 }

// GetViewportOffset returns the index of the first rendered row.
func (t *TreeModel) GetViewportOffset() int { return t.viewportOffset }

// KeyMap returns the active bindings.
func (t *TreeModel) KeyMap() TreeKeyMap { return t.keys }

// ── Update ──

// Update handles keys and mouse events. The returned command carries any
// ExpansionChangedMsg the event produced.
func (t *TreeModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if t.searchMode {
			return t.updateSearch(msg)
		}
		return t.handleKey(msg)
	case tea.MouseMsg:
		return t.HandleMouse(msg)
	}
	return nil
}

func (t *TreeModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, t.keys.Down):
		t.MoveDown()
	case key.Matches(msg, t.keys.Up):
		t.MoveUp()
	case key.Matches(msg, t.keys.Top):
		t.JumpToTop()
	case key.Matches(msg, t.keys.Bottom):
		t.JumpToBottom()
	case key.Matches(msg, t.keys.HalfDown):
		t.PageDown()
	case key.Matches(msg, t.keys.HalfUp):
		t.PageUp()
	case key.Matches(msg, t.keys.Left):
		return t.CollapseOrJumpToParent()
	case key.Matches(msg, t.keys.Right):
		return t.ExpandOrMoveToChild()
	case key.Matches(msg, t.keys.Toggle):
		return t.ToggleSelected()
	case key.Matches(msg, t.keys.ExpandAll):
		return t.ExpandAll()
	case key.Matches(msg, t.keys.CollapseAll):
		return t.CollapseAll()
	case key.Matches(msg, t.keys.Search):
		return t.EnterSearchMode()
	case key.Matches(msg, t.keys.NextMatch):
		return t.NextSearchMatch()
	case key.Matches(msg, t.keys.PrevMatch):
		return t.PrevSearchMatch()
	case key.Matches(msg, t.keys.ClearSearch):
		t.ClearSearch()
	}
	return nil
}

// HandleMouse selects the clicked row and toggles it when the click lands on
// its chevron. The wheel moves the cursor.
func (t *TreeModel) HandleMouse(msg tea.MouseMsg) tea.Cmd {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		t.MoveUp()
	case msg.Button == tea.MouseButtonWheelDown:
		t.MoveDown()
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		i, ok := t.rowAt(msg.Y - t.originY)
		if !ok {
			return nil
		}
		t.cursor = i
		r := t.rows[i]
		x := msg.X - t.originX
		start := gutterWidth + t.prefixWidth(r)
		if r.HasChildren && x >= start && x < start+chevronWidth {
			return t.Toggle(r.Node.ID)
		}
	}
	return nil
}

// rowAt maps a line of the view to a row index.
func (t *TreeModel) rowAt(line int) (int, bool) {
	start, end := t.visibleRange()
	i := start + line
	if line < 0 || i >= end {
		return 0, false
	}
	return i, true
}

// ── Search ──

// EnterSearchMode focuses the search input.
func (t *TreeModel) EnterSearchMode() tea.Cmd {
	t.searchMode = true
	t.searchInput.SetValue("")
	t.setMatches(nil)
	return t.searchInput.Focus()
}

// ExitSearchMode blurs the input but keeps matches highlighted.
func (t *TreeModel) ExitSearchMode() {
	t.searchMode = false
	t.searchInput.Blur()
}

// ClearSearch leaves search mode and drops all match state.
func (t *TreeModel) ClearSearch() {
	t.ExitSearchMode()
	t.searchInput.SetValue("")
	t.setMatches(nil)
}

// IsSearchMode returns whether the search input is active.
func (t *TreeModel) IsSearchMode() bool { return t.searchMode }

// SearchQuery returns the current query.
func (t *TreeModel) SearchQuery() string { return t.searchInput.Value() }

// SearchMatchCount returns the number of nodes matching the query.
func (t *TreeModel) SearchMatchCount() int { return len(t.searchMatches) }

// SearchMatchIndex returns the 0-based index of the focused match.
func (t *TreeModel) SearchMatchIndex() int { return t.searchMatchIndex }

// Search runs query as if typed and reveals the first match.
func (t *TreeModel) Search(query string) tea.Cmd {
	t.searchInput.SetValue(query)
	return t.executeSearch()
}

func (t *TreeModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		t.ClearSearch()
		return nil
	case "enter":
		t.ExitSearchMode()
		return nil
	}
	before := t.searchInput.Value()
	var cmd tea.Cmd
	t.searchInput, cmd = t.searchInput.Update(msg)
	if t.searchInput.Value() != before {
		return tea.Batch(cmd, t.executeSearch())
	}
	return cmd
}

// executeSearch matches against every node, collapsed ones included, and
// reveals the first match.
func (t *TreeModel) executeSearch() tea.Cmd {
	t.setMatches(t.findMatches(t.searchInput.Value()))
	if len(t.searchMatches) == 0 {
		return nil
	}
	return t.Reveal(t.searchMatches[0])
}

func (t *TreeModel) findMatches(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	defer metrics.Timer(metrics.Search)()
	var matches []string
	tree.Walk(t.forest, func(n *tree.Node, _ int) bool {
		if strings.Contains(strings.ToLower(n.Label), query) ||
			strings.Contains(strings.ToLower(n.ID), query) {
			matches = append(matches, n.ID)
		}
		return true
	})
	return matches
}

func (t *TreeModel) setMatches(ids []string) {
	t.searchMatches = ids
	t.searchMatchIndex = 0
	t.searchMatchIDs = make(map[string]bool, len(ids))
	for _, id := range ids {
		t.searchMatchIDs[id] = true
	}
}

// NextSearchMatch reveals the next match (n key).
func (t *TreeModel) NextSearchMatch() tea.Cmd {
	if len(t.searchMatches) == 0 {
		return nil
	}
	t.searchMatchIndex = (t.searchMatchIndex + 1) % len(t.searchMatches)
	return t.Reveal(t.searchMatches[t.searchMatchIndex])
}

// PrevSearchMatch reveals the previous match (N key).
func (t *TreeModel) PrevSearchMatch() tea.Cmd {
	if len(t.searchMatches) == 0 {
		return nil
	}
	t.searchMatchIndex--
	if t.searchMatchIndex < 0 {
		t.searchMatchIndex = len(t.searchMatches) - 1
	}
	return t.Reveal(t.searchMatches[t.searchMatchIndex])
}

// ── View ──

// View renders the visible window of rows. An empty forest renders as the
// empty message and nothing else.
func (t *TreeModel) View() string {
	if len(t.rows) == 0 {
		return t.emptyMessage
	}

	start, end := t.visibleRange()
	lines := make([]string, 0, end-start+2)
	for i := start; i < end; i++ {
		lines = append(lines, t.renderRow(t.rows[i], i == t.cursor))
	}

	if len(t.rows) > t.effectiveVisibleCount() && t.height > 0 {
		lines = append(lines, t.renderPositionIndicator(start, end))
	}
	if t.showSearchBar() {
		lines = append(lines, t.renderSearchBar())
	}
	return strings.Join(lines, "\n")
}

// RowText renders a row without styling, as the view lays it out.
func (t *TreeModel) RowText(r tree.Row) string {
	return export.TextLine(r, t.showGuides, t.glyphs)
}

func (t *TreeModel) prefixWidth(r tree.Row) int {
	if t.showGuides {
		return runewidth.StringWidth(r.GuidePrefix(t.glyphs))
	}
	return 2 * r.Depth
}

// renderRow lays out one row: cursor gutter, guides, chevron, label and the
// optional action content.
func (t *TreeModel) renderRow(r tree.Row, selected bool) string {
	var sb strings.Builder

	if selected {
		sb.WriteString(t.theme.Cursor.Render("▌"))
		sb.WriteByte(' ')
	} else {
		sb.WriteString("  ")
	}

	if t.showGuides {
		if prefix := r.GuidePrefix(t.glyphs); prefix != "" {
			sb.WriteString(t.theme.GuideText.Render(prefix))
		}
	} else {
		sb.WriteString(strings.Repeat("  ", r.Depth))
	}

	sb.WriteString(t.renderChevron(r))

	action := ""
	if t.actionRenderer != nil {
		if a := t.actionRenderer(r.Node, r.Depth); a != "" {
			action = " " + a
		}
	}

	var label string
	if t.labelRenderer != nil {
		label = t.labelRenderer(r.Node, r.Depth)
	} else {
		label = r.Node.Label
		if t.width > 0 {
			avail := t.width - gutterWidth - t.prefixWidth(r) - chevronWidth - runewidth.StringWidth(action) - 1
			label = truncate(label, max(avail, 1))
		}
		switch {
		case selected:
			label = t.theme.Selected.Render(label)
		case t.searchMatchIDs[r.Node.ID]:
			label = t.theme.MatchText.Render(label)
		}
	}
	sb.WriteString(label)
	sb.WriteString(action)
	return sb.String()
}

func (t *TreeModel) showSearchBar() bool {
	return t.searchMode || t.searchInput.Value() != ""
}

// renderSearchBar renders the search input shown under the tree.
func (t *TreeModel) renderSearchBar() string {
	matchInfo := ""
	if len(t.searchMatches) > 0 {
		matchInfo = fmt.Sprintf(" [%d/%d]", t.searchMatchIndex+1, len(t.searchMatches))
	} else if t.searchInput.Value() != "" {
		matchInfo = " [no matches]"
	}
	if t.searchMode {
		return t.searchInput.View() + t.theme.MutedText.Render(matchInfo)
	}
	return t.theme.MutedText.Render("/" + t.searchInput.Value() + matchInfo)
}

// renderPositionIndicator shows "Page X/Y (start-end of total)", 1-indexed.
func (t *TreeModel) renderPositionIndicator(start, end int) string {
	currentPage, totalPages := t.pageInfo(t.effectiveVisibleCount())
	indicator := fmt.Sprintf(" Page %d/%d (%d-%d of %d)", currentPage, totalPages, start+1, end, len(t.rows))
	return t.theme.MutedText.Render(indicator)
}

// pageInfo returns the current page number and total pages based on visible count.
func (t *TreeModel) pageInfo(pageSize int) (currentPage, totalPages int) {
	total := len(t.rows)
	if pageSize <= 0 {
		pageSize = 1
	}
	totalPages = (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	currentPage = (t.viewportOffset / pageSize) + 1
	if currentPage > totalPages {
		currentPage = totalPages
	}
	return currentPage, totalPages
}

// visibleRange returns the [start, end) window of rows to render.
func (t *TreeModel) visibleRange() (start, end int) {
	if len(t.rows) == 0 {
		return 0, 0
	}
	visibleCount := t.effectiveVisibleCount()

	start = max(t.viewportOffset, 0)
	end = start + visibleCount
	if end > len(t.rows) {
		end = len(t.rows)
		start = max(end-visibleCount, 0)
	}
	return start, end
}

// effectiveVisibleCount is the number of row lines that fit, after the search
// bar and the position indicator take theirs.
func (t *TreeModel) effectiveVisibleCount() int {
	visibleCount := t.height
	if visibleCount <= 0 {
		visibleCount = 20
	}
	if t.showSearchBar() {
		visibleCount--
	}
	if len(t.rows) > visibleCount {
		visibleCount--
	}
	return max(visibleCount, 1)
}

// ensureCursorVisible scrolls just enough to keep the cursor in the window.
func (t *TreeModel) ensureCursorVisible() {
	if len(t.rows) == 0 {
		t.viewportOffset = 0
		return
	}
	visibleCount := t.effectiveVisibleCount()

	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+visibleCount {
		t.viewportOffset = t.cursor - visibleCount + 1
	}
	t.viewportOffset = clamp(t.viewportOffset, 0, max(len(t.rows)-visibleCount, 0))
}
