// Package config handles loading and saving arbor configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/arbor/config.yaml
//   - State:   ~/.local/state/arbor/ (per-source expansion state)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/arbor/pkg/tree"
)

// AppName names the XDG subdirectories.
const AppName = "arbor"

// DefaultEmptyMessage is shown when a forest has no roots.
const DefaultEmptyMessage = "No items"

// DefaultTable is the SQLite table read when none is configured.
const DefaultTable = "items"

// Source is a named data source, so `arbor @name` can stand in for a path.
type Source struct {
	Name  string `yaml:"name"`
	Path  string `yaml:"path"`
	Table string `yaml:"table,omitempty"` // SQLite table override
}

// TreeConfig controls how the tree is drawn and first expanded.
type TreeConfig struct {
	ShowGuides       *bool                `yaml:"show_guides,omitempty"`
	ASCII            bool                 `yaml:"ascii,omitempty"` // ASCII guides instead of box drawing
	EmptyMessage     string               `yaml:"empty_message,omitempty"`
	InitialExpansion tree.ExpansionPolicy `yaml:"initial_expansion,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	ShowDetails *bool   `yaml:"show_details,omitempty"`
	Mouse       *bool   `yaml:"mouse,omitempty"`
	SplitRatio  float64 `yaml:"split_ratio,omitempty"` // Tree pane share of the width (0.2-0.8)
}

// StateConfig controls expansion persistence between runs.
type StateConfig struct {
	Persist *bool  `yaml:"persist,omitempty"`
	Dir     string `yaml:"dir,omitempty"` // Overrides StateDir()
}

// SourceConfig holds defaults for reading sources.
type SourceConfig struct {
	Table string `yaml:"table,omitempty"`
}

// Config is the top-level configuration for arbor.
type Config struct {
	Sources []Source     `yaml:"sources,omitempty"`
	Tree    TreeConfig   `yaml:"tree,omitempty"`
	UI      UIConfig     `yaml:"ui,omitempty"`
	State   StateConfig  `yaml:"state,omitempty"`
	Source  SourceConfig `yaml:"source,omitempty"`
	Watch   bool         `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Tree: TreeConfig{
			EmptyMessage: DefaultEmptyMessage,
		},
		UI: UIConfig{
			SplitRatio: 0.5,
		},
		Source: SourceConfig{
			Table: DefaultTable,
		},
	}
}

// ConfigDir returns the XDG config directory for arbor.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// StateDir returns the XDG state directory for arbor.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", AppName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Tree.EmptyMessage == "" {
		cfg.Tree.EmptyMessage = DefaultEmptyMessage
	}
	if cfg.Source.Table == "" {
		cfg.Source.Table = DefaultTable
	}
	if cfg.UI.SplitRatio < 0.2 || cfg.UI.SplitRatio > 0.8 {
		cfg.UI.SplitRatio = 0.5
	}

	// Expand ~ in paths
	for i := range cfg.Sources {
		cfg.Sources[i].Path = expandHome(cfg.Sources[i].Path)
	}
	cfg.State.Dir = expandHome(cfg.State.Dir)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindSource returns the source with the given name, or nil.
func (c Config) FindSource(name string) *Source {
	for i := range c.Sources {
		if strings.EqualFold(c.Sources[i].Name, name) {
			return &c.Sources[i]
		}
	}
	return nil
}

// ResolveArg maps a command-line source argument to a path and table. "@name"
// refers to a configured source; anything else is a path read with the
// default table.
func (c Config) ResolveArg(arg string) (path, table string, err error) {
	name, ok := strings.CutPrefix(arg, "@")
	if !ok {
		return expandHome(arg), c.Source.Table, nil
	}
	src := c.FindSource(name)
	if src == nil {
		return "", "", fmt.Errorf("unknown source %q", name)
	}
	table = src.Table
	if table == "" {
		table = c.Source.Table
	}
	return src.ResolvedPath(), table, nil
}

// ResolvedPath returns the source path with ~ expanded.
func (s Source) ResolvedPath() string {
	return expandHome(s.Path)
}

// GuidesEnabled reports whether guide lines are drawn. Defaults to true.
func (c Config) GuidesEnabled() bool {
	return boolOr(c.Tree.ShowGuides, true)
}

// DetailsEnabled reports whether the details pane is shown. Defaults to true.
func (c Config) DetailsEnabled() bool {
	return boolOr(c.UI.ShowDetails, true)
}

// MouseEnabled reports whether mouse input is captured. Defaults to true.
func (c Config) MouseEnabled() bool {
	return boolOr(c.UI.Mouse, true)
}

// PersistEnabled reports whether expansion state is saved. Defaults to true.
func (c Config) PersistEnabled() bool {
	return boolOr(c.State.Persist, true)
}

// StatePath returns the directory expansion state files live in.
func (c Config) StatePath() string {
	if c.State.Dir != "" {
		return c.State.Dir
	}
	return StateDir()
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
