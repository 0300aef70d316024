package datasource

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/loader"
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// LoadOptions configures Load.
type LoadOptions struct {
	// Table is the SQLite table for sources that do not name one.
	Table string
	// WarningHandler receives non-fatal problems. If nil, warnings are printed
	// to os.Stderr.
	WarningHandler func(string)
	// Concurrency caps parallel reads. 0 means one goroutine per source.
	Concurrency int
}

// Load reads every source concurrently and concatenates the items in argument
// order. The first failing source cancels the rest.
func Load(ctx context.Context, sources []DataSource, opts LoadOptions) ([]tree.FlatItem, error) {
	defer debug.LogEnterExit(fmt.Sprintf("datasource.Load(%d sources)", len(sources)))()
	defer metrics.Timer(metrics.SourceLoad)()

	results := make([][]tree.FlatItem, len(sources))
	warn := serializedWarnings(opts.WarningHandler)

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, source := range sources {
		if source.Table == "" {
			source.Table = opts.Table
		}
		g.Go(func() error {
			items, err := LoadFromSource(gctx, source, warn)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	items := make([]tree.FlatItem, 0, total)
	for _, r := range results {
		items = append(items, r...)
	}
	return items, nil
}

// LoadPaths detects each path and loads them all with Load.
func LoadPaths(ctx context.Context, paths []string, opts LoadOptions) ([]tree.FlatItem, []DataSource, error) {
	sources := make([]DataSource, 0, len(paths))
	for _, p := range paths {
		s, err := Detect(p)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, s)
	}
	items, err := Load(ctx, sources, opts)
	if err != nil {
		return nil, nil, err
	}
	return items, sources, nil
}

// LoadFromSource loads items from a single source, dispatching on its format.
func LoadFromSource(ctx context.Context, source DataSource, warn func(string)) ([]tree.FlatItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { debug.LogTiming("load "+source.Path, time.Since(start)) }()

	switch source.Format {
	case loader.FormatSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		items, err := reader.LoadItems(ctx, warn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source.Path, err)
		}
		return items, nil

	case loader.FormatJSONL, loader.FormatJSON, loader.FormatYAML, loader.FormatTOML:
		return loader.LoadFile(source.Path, loader.ParseOptions{WarningHandler: warn})

	default:
		return nil, fmt.Errorf("%w: %s (%q)", ErrUnsupportedSource, source.Path, source.Format)
	}
}

// serializedWarnings makes a warning handler safe to share between the load
// goroutines.
func serializedWarnings(handler func(string)) func(string) {
	if handler == nil {
		handler = func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}
	var mu sync.Mutex
	return func(msg string) {
		mu.Lock()
		defer mu.Unlock()
		handler(msg)
	}
}
