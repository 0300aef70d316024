package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/arbor/internal/datasource"
	"github.com/vanderheijden86/arbor/pkg/config"
	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/export"
	"github.com/vanderheijden86/arbor/pkg/loader"
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/tree"
	"github.com/vanderheijden86/arbor/pkg/ui"
	"github.com/vanderheijden86/arbor/pkg/version"
	"github.com/vanderheijden86/arbor/pkg/watcher"
)

//go:embed demo.yaml
var demoYAML []byte

// demoSource names the embedded sample in titles and state keys.
const demoSource = "demo"

type options struct {
	help       bool
	version    bool
	configPath string
	init       bool
	expand     string
	noGuides   bool
	ascii      bool
	emptyMsg   string
	print      bool
	format     string
	out        string
	check      bool
	table      string
	watch      bool
	noState    bool
	demo       bool
	stats      bool
	sources    []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("arbor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.StringVar(&o.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/arbor/config.yaml)")
	fs.BoolVar(&o.init, "init", false, "Create or edit the config file interactively")
	fs.StringVar(&o.expand, "expand", "", "Initial expansion: all, none or a comma separated list of IDs")
	fs.BoolVar(&o.noGuides, "no-guides", false, "Hide connector lines")
	fs.BoolVar(&o.ascii, "ascii", false, "Draw connector lines with ASCII characters")
	fs.StringVar(&o.emptyMsg, "empty-message", "", "Message shown when there are no items")
	fs.BoolVar(&o.print, "print", false, "Print the tree instead of starting the viewer")
	fs.StringVar(&o.format, "format", "", "Print format: text, markdown, svg or png")
	fs.StringVar(&o.out, "out", "", "Write the printed tree to a file (format from extension)")
	fs.BoolVar(&o.check, "check", false, "Validate sources and report problems")
	fs.StringVar(&o.table, "table", "", "SQLite table to read")
	fs.BoolVar(&o.watch, "watch", false, "Reload when a source changes")
	fs.BoolVar(&o.noState, "no-state", false, "Do not restore or save expansion state")
	fs.BoolVar(&o.demo, "demo", false, "Show a built-in sample forest")
	fs.BoolVar(&o.stats, "stats", false, "Print timing metrics to stderr on exit")
	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintln(w, "Usage: arbor [options] SOURCE...")
		fmt.Fprintln(w, "\nBrowse flat parent/child records as a collapsible tree.")
		fmt.Fprintln(w, "Sources: .jsonl .json .yaml .toml files, SQLite databases, or @name from the config.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, fs, err
	}
	o.sources = fs.Args()
	return o, fs, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.help {
		fs.SetOutput(stdout)
		fs.Usage()
		return 0
	}
	if opts.version {
		fmt.Fprintf(stdout, "arbor %s\n", version.Version)
		return 0
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(stderr, "Warning: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if opts.init {
		return runInit(cfg, opts.configPath, stdout, stderr)
	}
	if opts.stats {
		defer metrics.WriteStats(stderr)
	}

	if !opts.demo && len(opts.sources) == 0 {
		fs.Usage()
		return 2
	}

	policy := cfg.Tree.InitialExpansion
	if opts.expand != "" {
		policy, err = tree.ParsePolicy(opts.expand)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}

	warn := func(msg string) { fmt.Fprintf(stderr, "Warning: %s\n", msg) }
	load, paths, err := resolveLoader(cfg, opts, warn)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	start := time.Now()
	items, err := load(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "Error loading sources: %v\n", err)
		return 1
	}
	debug.LogTiming("initial load", time.Since(start))

	stopValidation := metrics.Timer(metrics.Validation)
	report := tree.Validate(items)
	stopValidation()
	if opts.check {
		return printCheck(stdout, report)
	}
	if len(report.Duplicates) > 0 {
		fmt.Fprintf(stderr, "Error: duplicate ids %s; run with --check for details\n", strings.Join(report.Duplicates, ", "))
		return 1
	}
	for _, problem := range report.Problems() {
		warn(problem)
	}

	emptyMsg := cfg.Tree.EmptyMessage
	if opts.emptyMsg != "" {
		emptyMsg = opts.emptyMsg
	}
	showGuides := cfg.GuidesEnabled() && !opts.noGuides
	ascii := cfg.Tree.ASCII || opts.ascii
	title := strings.Join(paths, ", ")

	if opts.print || opts.out != "" || !isTerminal(stdout) {
		format, err := resolveFormat(opts)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		forest := tree.BuildTree(items)
		expanded := make(map[string]bool)
		for _, id := range policy.Resolve(forest) {
			expanded[id] = true
		}
		exportOpts := export.Options{
			IsExpanded:   func(id string) bool { return expanded[id] },
			ShowGuides:   showGuides,
			EmptyMessage: emptyMsg,
		}
		if ascii {
			exportOpts.Glyphs = tree.ASCIIGlyphs
		}
		if format != export.FormatText {
			exportOpts.Title = title
		}
		if opts.out != "" {
			if err := export.SaveFile(opts.out, format, forest, exportOpts); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
			fmt.Fprintf(stderr, "Wrote %s\n", opts.out)
			return 0
		}
		if err := export.Write(stdout, format, forest, exportOpts); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	modelOpts := ui.ModelOptions{
		Title:        "arbor " + title,
		Sources:      paths,
		Load:         load,
		Policy:       policy,
		ShowGuides:   showGuides,
		ASCII:        ascii,
		EmptyMessage: emptyMsg,
		ShowDetails:  cfg.DetailsEnabled(),
		SplitRatio:   cfg.UI.SplitRatio,
	}
	if cfg.PersistEnabled() && !opts.noState {
		modelOpts.StateDir = cfg.StatePath()
	}
	if (opts.watch || cfg.Watch) && !opts.demo {
		w, err := watcher.NewWatcher(paths, watcher.WithOnError(func(err error) {
			debug.Log("watcher: %v", err)
		}))
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			warn(fmt.Sprintf("live reload disabled: %v", err))
		} else {
			modelOpts.Watcher = w
			defer w.Stop()
		}
	}

	if err := runTUIProgram(ui.NewModel(items, modelOpts), cfg.MouseEnabled()); err != nil {
		fmt.Fprintf(stderr, "Error running arbor: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func runInit(cfg config.Config, path string, stdout, stderr io.Writer) int {
	updated, err := config.RunWizard(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if path == "" {
		path = config.ConfigPath()
	}
	if err := config.SaveTo(updated, path); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Saved %s\n", path)
	return 0
}

// resolveLoader returns a function that (re)loads every source plus the
// resolved paths, which key persisted state and the watcher.
func resolveLoader(cfg config.Config, opts options, warn func(string)) (ui.LoadFunc, []string, error) {
	if opts.demo {
		load := func(context.Context) ([]tree.FlatItem, error) {
			return loader.Parse(bytes.NewReader(demoYAML), loader.FormatYAML, loader.ParseOptions{WarningHandler: warn})
		}
		return load, []string{demoSource}, nil
	}

	paths := make([]string, 0, len(opts.sources))
	tables := make([]string, 0, len(opts.sources))
	for _, arg := range opts.sources {
		path, table, err := cfg.ResolveArg(arg)
		if err != nil {
			return nil, nil, err
		}
		if opts.table != "" {
			table = opts.table
		}
		paths = append(paths, path)
		tables = append(tables, table)
	}

	load := func(ctx context.Context) ([]tree.FlatItem, error) {
		sources := make([]datasource.DataSource, 0, len(paths))
		for i, p := range paths {
			s, err := datasource.Detect(p)
			if err != nil {
				return nil, err
			}
			s.Table = tables[i]
			sources = append(sources, s)
		}
		return datasource.Load(ctx, sources, datasource.LoadOptions{
			Table:          cfg.Source.Table,
			WarningHandler: warn,
		})
	}
	return load, paths, nil
}

func resolveFormat(opts options) (export.Format, error) {
	if opts.format != "" {
		return export.ParseFormat(opts.format)
	}
	if opts.out != "" {
		return export.FormatForPath(opts.out), nil
	}
	return export.FormatText, nil
}

func printCheck(w io.Writer, report tree.Report) int {
	problems := report.Problems()
	if len(problems) == 0 {
		fmt.Fprintf(w, "OK: %d items, %d roots\n", report.Items, report.Roots)
		return 0
	}
	fmt.Fprintf(w, "%d problem(s) in %d items:\n", len(problems), report.Items)
	for _, p := range problems {
		fmt.Fprintf(w, "  - %s\n", p)
	}
	return 1
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runTUIProgram(m ui.Model, mouse bool) error {
	programOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	}
	if mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, programOpts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set ARBOR_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("ARBOR_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
