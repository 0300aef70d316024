// Package watcher reports changes to a set of source files so the viewer can
// reload them. It uses fsnotify where it can and falls back to polling on
// remote filesystems or when asked to.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/arbor/pkg/debug"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// Environment variables that force polling mode.
const (
	EnvForcePolling = "ARBOR_FORCE_POLLING"
	EnvForcePoll    = "ARBOR_FORCE_POLL"
)

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrNoPaths        = errors.New("no paths to watch")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithOnChange sets the callback invoked with the changed paths once a burst
// of changes settles.
func WithOnChange(fn func(paths []string)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

type fileState struct {
	mtime time.Time
	size  int64
}

// Watcher monitors files for changes using fsnotify with polling fallback.
type Watcher struct {
	paths            []string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func([]string)
	onError          func(error)
	forcePoll        bool
	forcePollEnv     bool
	fsType           FilesystemType

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	last        map[string]fileState
	pending     []string

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan []string
}

// NewWatcher creates a watcher for the given files. Duplicate paths are
// watched once.
func NewWatcher(paths []string, opts ...WatcherOption) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(abs, a) {
			abs = append(abs, a)
		}
	}

	w := &Watcher{
		paths:            abs,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func([]string) {},
		onError:          func(error) {},
		last:             make(map[string]fileState, len(abs)),
		changeCh:         make(chan []string, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching the files for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())

	// Reset per-start state.
	w.useFallback = false
	w.forcePollEnv = envBool(EnvForcePolling) || envBool(EnvForcePoll)
	w.fsType = FSTypeUnknown
	w.pending = nil

	for _, p := range w.paths {
		fsType := detectFilesystemTypeFunc(p)
		if w.fsType == FSTypeUnknown || isRemoteFilesystem(fsType) {
			w.fsType = fsType
		}
		if isRemoteFilesystem(fsType) {
			w.useFallback = true
		}
	}

	forcePoll := w.forcePoll || w.forcePollEnv
	if forcePoll {
		w.useFallback = true
	}

	// Get initial file state
	for _, p := range w.paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsPermission(err) {
				w.cancel()
				return ErrPermission
			}
			// File might not exist yet, that's okay
			w.last[p] = fileState{}
			continue
		}
		w.last[p] = fileState{mtime: info.ModTime(), size: info.Size()}
	}

	if !w.useFallback {
		if fsw, err := w.newFsnotify(); err == nil {
			w.fsWatcher = fsw
			go w.watchFsnotify()
		} else {
			debug.Log("watcher: fsnotify unavailable, polling: %v", err)
			w.useFallback = true
		}
	}

	if w.useFallback {
		go w.watchPolling()
	}

	w.started = true
	return nil
}

// newFsnotify watches every directory holding a watched file, which also
// catches atomic replace-by-rename writes.
func (w *Watcher) newFsnotify() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, p := range w.paths {
		dir := filepath.Dir(p)
		if slices.Contains(dirs, dir) {
			continue
		}
		dirs = append(dirs, dir)
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return fsw, nil
}

// Stop stops watching.
// Note: The changeCh channel is intentionally NOT closed here. Closing it would
// race with notifyChange() and make WatchCmd receive immediately in a loop.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	if w.cancel != nil {
		w.cancel()
	}

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns a channel that receives the changed paths after each
// settled burst. It is an alternative to the OnChange callback.
func (w *Watcher) Changed() <-chan []string {
	return w.changeCh
}

// Paths returns the watched absolute paths.
func (w *Watcher) Paths() []string {
	return slices.Clone(w.paths)
}

// FilesystemType returns the best-effort filesystem classification of the
// watched paths; a remote type wins over a local one.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func (w *Watcher) watched(path string) bool {
	return slices.Contains(w.paths, filepath.Clean(path))
}

// watchFsnotify monitors using fsnotify events.
func (w *Watcher) watchFsnotify() {
	// Capture channel references to avoid race with Stop() setting fsWatcher to nil
	w.mu.RLock()
	if w.fsWatcher == nil {
		w.mu.RUnlock()
		return
	}
	events := w.fsWatcher.Events
	errs := w.fsWatcher.Errors
	ctx := w.ctx
	w.mu.RUnlock()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if !w.watched(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)

			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.markChanged(filepath.Clean(event.Name))
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// watchPolling monitors using periodic stat checks.
func (w *Watcher) watchPolling() {
	w.mu.RLock()
	ctx := w.ctx
	w.mu.RUnlock()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			for _, p := range w.paths {
				w.pollOnce(p)
			}
		}
	}
}

func (w *Watcher) pollOnce(path string) {
	info, err := os.Stat(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			// Only report if the file existed before
			w.mu.Lock()
			hadFile := !w.last[path].mtime.IsZero()
			w.last[path] = fileState{}
			w.mu.Unlock()
			if hadFile {
				w.onError(ErrFileRemoved)
			}
		case os.IsPermission(err):
			w.onError(ErrPermission)
		default:
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	prev := w.last[path]
	changed := info.ModTime().After(prev.mtime) || info.Size() != prev.size
	if changed {
		w.last[path] = fileState{mtime: info.ModTime(), size: info.Size()}
	}
	w.mu.Unlock()

	if changed {
		w.markChanged(path)
	}
}

// markChanged records path and (re)arms the debouncer.
func (w *Watcher) markChanged(path string) {
	w.mu.Lock()
	if !slices.Contains(w.pending, path) {
		w.pending = append(w.pending, path)
	}
	w.mu.Unlock()
	w.debouncer.Trigger(w.notifyChange)
}

// notifyChange invokes the onChange callback and signals the change channel.
func (w *Watcher) notifyChange() {
	w.mu.Lock()
	started := w.started
	paths := w.pending
	w.pending = nil
	w.mu.Unlock()

	// Don't notify after Stop(). Best-effort; the window is small and a
	// spurious reload is harmless.
	if !started || len(paths) == 0 {
		return
	}

	debug.Log("watcher: changed %v", paths)
	w.onChange(paths)

	// Non-blocking send; a pending notification already triggers a reload
	select {
	case w.changeCh <- paths:
	default:
	}
}
