package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/arbor/internal/datasource"
	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/export"
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/tree"
	"github.com/vanderheijden86/arbor/pkg/watcher"
)

// View width thresholds for adaptive layout
const (
	SplitViewThreshold = 100
	MinDetailPaneWidth = 30
	DefaultSplitRatio  = 0.5
)

// FileChangedMsg is sent when a watched source changes on disk.
type FileChangedMsg struct {
	Paths []string
}

// reloadedMsg carries the result of a background reload.
type reloadedMsg struct {
	items    []tree.FlatItem
	err      error
	duration time.Duration
}

// WatchFileCmd waits for the next change batch from w.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		paths, ok := <-w.Changed()
		if !ok {
			return nil
		}
		return FileChangedMsg{Paths: paths}
	}
}

// LoadFunc reloads the items behind the view.
type LoadFunc func(ctx context.Context) ([]tree.FlatItem, error)

// ModelOptions configures the application shell.
type ModelOptions struct {
	Title string
	// Sources are the paths the items came from. They key persisted state.
	Sources []string
	// Load re-reads the sources on change or on demand. Nil disables reload.
	Load LoadFunc
	// Watcher, if set, triggers reloads. The shell stops it on quit.
	Watcher *watcher.Watcher

	Policy       tree.ExpansionPolicy
	ShowGuides   bool
	ASCII        bool
	// EmptyMessage replaces "No items" when non-empty.
	EmptyMessage string
	ShowDetails  bool
	SplitRatio   float64

	// StateDir enables expansion persistence when non-empty.
	StateDir string
}

// Model is the full-screen viewer: the tree on the left, details of the
// selected node on the right, and a status line. It owns the expansion set
// and drives the tree in controlled mode, persisting every change.
type Model struct {
	title   string
	sources []string
	load    LoadFunc
	watcher *watcher.Watcher

	items []tree.FlatItem
	tree  TreeModel
	theme Theme

	details     viewport.Model
	mdRenderer  *glamour.TermRenderer
	mdWidth     int
	showDetails bool
	detailsFor  string // node the details pane currently shows
	splitRatio  float64

	expanded []string
	stateDir string
	stateKey string

	width  int
	height int

	statusMsg     string
	statusIsError bool
}

func buildForest(items []tree.FlatItem) []*tree.Node {
	defer metrics.Timer(metrics.TreeBuild)()
	return tree.BuildTree(items)
}

// NewModel builds the shell around items.
func NewModel(items []tree.FlatItem, opts ModelOptions) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	forest := buildForest(items)

	m := Model{
		title:       opts.Title,
		sources:     opts.Sources,
		load:        opts.Load,
		watcher:     opts.Watcher,
		items:       items,
		theme:       theme,
		showDetails: opts.ShowDetails,
		splitRatio:  opts.SplitRatio,
		stateDir:    opts.StateDir,
		width:       80,
		height:      24,
	}
	if m.splitRatio <= 0 || m.splitRatio >= 1 {
		m.splitRatio = DefaultSplitRatio
	}

	selected := ""
	m.expanded = opts.Policy.Resolve(forest)
	if m.stateDir != "" && len(m.sources) > 0 {
		m.stateKey = StateKey(m.sources)
		if state, ok := LoadTreeState(m.stateDir, m.stateKey); ok {
			m.expanded = state.Expanded
			selected = state.Selected
		}
	}

	treeOpts := []TreeOption{
		WithGuides(opts.ShowGuides),
		WithASCII(opts.ASCII),
		WithControlledExpansion(m.expanded, nil),
	}
	if opts.EmptyMessage != "" {
		treeOpts = append(treeOpts, WithEmptyMessage(opts.EmptyMessage))
	}
	m.tree = NewTreeModel(theme, forest, treeOpts...)
	if selected != "" {
		m.tree.SelectByID(selected)
	}
	m.layout()
	return m
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case ExpansionChangedMsg:
		m.expanded = msg.IDs
		m.tree.SetExpanded(msg.IDs)
		m.saveState()

	case FileChangedMsg:
		debug.Log("ui: change detected in %v", msg.Paths)
		cmds = append(cmds, m.reloadCmd())
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}

	case reloadedMsg:
		m.applyReload(msg)

	case tea.KeyMsg:
		m.statusMsg = ""
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
		cmds = append(cmds, m.tree.Update(msg))

	case tea.MouseMsg:
		if m.showDetails && m.isSplitView() && msg.X >= m.treeWidth() {
			var cmd tea.Cmd
			m.details, cmd = m.details.Update(msg)
			cmds = append(cmds, cmd)
			break
		}
		cmds = append(cmds, m.tree.Update(msg))
	}

	m.syncDetails()
	return m, tea.Batch(cmds...)
}

// handleKey processes shell-level keys. Search input gets every key except
// ctrl+c.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m.quit(), true
	}
	if m.tree.IsSearchMode() {
		return nil, false
	}

	switch msg.String() {
	case "q":
		return m.quit(), true
	case "tab":
		m.showDetails = !m.showDetails
		m.layout()
		return nil, true
	case "y":
		m.copySelectedID()
		return nil, true
	case "r":
		if m.load == nil {
			m.setStatus("Reload unavailable", true)
			return nil, true
		}
		m.setStatus("Reloading…", false)
		return m.reloadCmd(), true
	case "J", "pgdown":
		if m.showDetails {
			m.details.HalfPageDown()
			return nil, true
		}
	case "K", "pgup":
		if m.showDetails {
			m.details.HalfPageUp()
			return nil, true
		}
	}
	return nil, false
}

func (m *Model) quit() tea.Cmd {
	m.saveState()
	if m.watcher != nil {
		m.watcher.Stop()
	}
	return tea.Quit
}

func (m *Model) copySelectedID() {
	id := m.tree.SelectedID()
	if id == "" {
		return
	}
	if err := clipboard.WriteAll(id); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s to clipboard", id), false)
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

// ── Reload ──

func (m Model) reloadCmd() tea.Cmd {
	load := m.load
	if load == nil {
		return nil
	}
	return func() tea.Msg {
		start := time.Now()
		items, err := load(context.Background())
		return reloadedMsg{items: items, err: err, duration: time.Since(start)}
	}
}

func (m *Model) applyReload(msg reloadedMsg) {
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Reload error: %v", msg.err), true)
		return
	}
	if report := tree.Validate(msg.items); len(report.Duplicates) > 0 {
		m.setStatus(fmt.Sprintf("Reload skipped: duplicate id %q", report.Duplicates[0]), true)
		return
	}

	diff := datasource.DiffItems(m.items, msg.items)
	m.items = msg.items
	m.tree.SetForest(buildForest(msg.items))
	debug.LogTiming("ui.reload", msg.duration)

	m.detailsFor = ""
	m.setStatus(fmt.Sprintf("Reloaded %d items: %s", len(msg.items), diff.Summary()), false)
}

// ── Persistence ──

func (m *Model) saveState() {
	if m.stateDir == "" || m.stateKey == "" {
		return
	}
	state := TreeState{
		Source:   strings.ReplaceAll(m.stateKey, "\x00", ", "),
		Expanded: m.expanded,
		Selected: m.tree.SelectedID(),
	}
	if err := SaveTreeState(m.stateDir, m.stateKey, state); err != nil {
		debug.Log("ui: %v", err)
		m.setStatus(fmt.Sprintf("Could not save view state: %v", err), true)
	}
}

// ── Layout ──

func (m Model) isSplitView() bool {
	return m.width >= SplitViewThreshold
}

func (m Model) bodyHeight() int {
	return max(m.height-2, 1) // header + footer
}

func (m Model) treeWidth() int {
	if !m.showDetails {
		return m.width
	}
	if !m.isSplitView() {
		return m.width
	}
	w := int(float64(m.width) * m.splitRatio)
	if m.width-w < MinDetailPaneWidth {
		w = m.width - MinDetailPaneWidth
	}
	return max(w, 1)
}

// layout sizes the tree and the details pane for the current window.
func (m *Model) layout() {
	body := m.bodyHeight()
	treeW := m.treeWidth()
	treeH := body
	if m.showDetails && !m.isSplitView() {
		// Stacked: tree on top, details below.
		treeH = max(body/2, 1)
	}
	m.tree.SetSize(treeW, treeH)
	m.tree.SetOrigin(0, 1)

	detailW, detailH := m.width-treeW-2, body-2
	if !m.isSplitView() {
		detailW, detailH = m.width-2, body-treeH-2
	}
	m.details = viewport.New(max(detailW, 1), max(detailH, 1))
	m.detailsFor = ""
	m.syncDetails()
}

// syncDetails re-renders the details pane when the selection moved.
func (m *Model) syncDetails() {
	if !m.showDetails {
		return
	}
	id := m.tree.SelectedID()
	if id == m.detailsFor && id != "" {
		return
	}
	m.detailsFor = id
	m.details.SetContent(m.renderDetails(m.tree.SelectedNode()))
	m.details.GotoTop()
}

func (m *Model) renderDetails(n *tree.Node) string {
	if n == nil {
		return m.theme.MutedText.Render("Nothing selected")
	}
	path, _ := tree.PathTo(m.tree.Forest(), n.ID)
	md := export.MarkdownDetails(n, path)

	width := max(m.details.Width-2, 20)
	if m.mdRenderer == nil || m.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			debug.Log("ui: markdown renderer: %v", err)
			return md
		}
		m.mdRenderer, m.mdWidth = r, width
	}
	out, err := m.mdRenderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// ── View ──

func (m Model) View() string {
	header := m.renderHeader()

	treeView := lipgloss.NewStyle().
		Width(m.treeWidth()).
		Height(m.tree.height).
		MaxHeight(m.tree.height).
		Render(m.tree.View())

	var body string
	switch {
	case !m.showDetails:
		body = treeView
	case m.isSplitView():
		body = lipgloss.JoinHorizontal(lipgloss.Top, treeView, PanelStyle.Render(m.details.View()))
	default:
		body = lipgloss.JoinVertical(lipgloss.Left, treeView, PanelStyle.Render(m.details.View()))
	}
	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter())
}

func (m Model) renderHeader() string {
	title := m.title
	if title == "" {
		title = "arbor"
	}
	count := fmt.Sprintf("%d nodes, %d expanded", m.tree.NodeCount(), len(m.expanded))
	if m.watcher != nil {
		if m.watcher.IsPolling() {
			count += " · polling"
		} else {
			count += " · live"
		}
	}
	left := m.theme.Header.Render(title)
	right := m.theme.MutedText.Render(count)
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		style := m.theme.InfoText
		if m.statusIsError {
			style = m.theme.ErrorText
		}
		return style.Render(truncate(m.statusMsg, max(m.width, 1)))
	}

	var parts []string
	for _, b := range m.tree.KeyMap().ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	parts = append(parts, "tab details", "y copy id", "q quit")
	help := padRight(truncate(strings.Join(parts, " · "), max(m.width, 1)), m.width)
	return m.theme.Footer.Render(m.theme.MutedText.Render(help))
}

// Tree returns the tree component.
func (m *Model) Tree() *TreeModel { return &m.tree }

// Expanded returns the expansion set the shell owns.
func (m Model) Expanded() []string { return m.expanded }

// Status returns the current status line text.
func (m Model) Status() string { return m.statusMsg }
