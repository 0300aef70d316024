package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

// wizardAnswers mirrors the form fields; huh binds to plain values, not to
// the pointer-typed config fields.
type wizardAnswers struct {
	ShowGuides   bool
	ASCII        bool
	EmptyMessage string
	Expansion    string // "all", "none" or a comma separated id list
	ShowDetails  bool
	Mouse        bool
	Persist      bool
	Watch        bool
	Table        string
}

func answersFrom(cfg Config) wizardAnswers {
	return wizardAnswers{
		ShowGuides:   cfg.GuidesEnabled(),
		ASCII:        cfg.Tree.ASCII,
		EmptyMessage: cfg.Tree.EmptyMessage,
		Expansion:    cfg.Tree.InitialExpansion.String(),
		ShowDetails:  cfg.DetailsEnabled(),
		Mouse:        cfg.MouseEnabled(),
		Persist:      cfg.PersistEnabled(),
		Watch:        cfg.Watch,
		Table:        cfg.Source.Table,
	}
}

func (a wizardAnswers) apply(cfg Config) (Config, error) {
	policy, err := tree.ParsePolicy(a.Expansion)
	if err != nil {
		return cfg, err
	}
	cfg.Tree.ShowGuides = &a.ShowGuides
	cfg.Tree.ASCII = a.ASCII
	cfg.Tree.EmptyMessage = strings.TrimSpace(a.EmptyMessage)
	if cfg.Tree.EmptyMessage == "" {
		cfg.Tree.EmptyMessage = DefaultEmptyMessage
	}
	cfg.Tree.InitialExpansion = policy
	cfg.UI.ShowDetails = &a.ShowDetails
	cfg.UI.Mouse = &a.Mouse
	cfg.State.Persist = &a.Persist
	cfg.Watch = a.Watch
	cfg.Source.Table = strings.TrimSpace(a.Table)
	if cfg.Source.Table == "" {
		cfg.Source.Table = DefaultTable
	}
	return cfg, nil
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func validateExpansion(s string) error {
	_, err := tree.ParsePolicy(s)
	return err
}

func (a *wizardAnswers) form() *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Draw guide lines?").
				Description("Connect nodes to their parents with tree lines").
				Value(&a.ShowGuides),
			huh.NewConfirm().
				Title("Use ASCII guides?").
				Description("Pick this when the terminal font lacks box drawing characters").
				Value(&a.ASCII),
			huh.NewInput().
				Title("Empty message").
				Description("Shown when a source has no items").
				Value(&a.EmptyMessage),
			huh.NewInput().
				Title("Initial expansion").
				Description("all, none, or a comma separated list of ids").
				Validate(validateExpansion).
				Value(&a.Expansion),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Show the details pane?").
				Value(&a.ShowDetails),
			huh.NewConfirm().
				Title("Enable mouse?").
				Description("Click a chevron to expand or collapse").
				Value(&a.Mouse),
			huh.NewConfirm().
				Title("Remember expanded nodes between runs?").
				Value(&a.Persist),
			huh.NewConfirm().
				Title("Reload when the source file changes?").
				Value(&a.Watch),
			huh.NewInput().
				Title("SQLite table").
				Description("Table read from .db sources").
				Value(&a.Table),
		),
	)
}

// RunWizard asks for every setting interactively, starting from cfg, and
// returns the updated config. It does not save.
func RunWizard(cfg Config) (Config, error) {
	answers := answersFrom(cfg)
	if err := answers.form().Run(); err != nil {
		return cfg, fmt.Errorf("running config wizard: %w", err)
	}
	return answers.apply(cfg)
}
