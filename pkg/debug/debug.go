// Package debug provides conditional debug logging for arbor.
//
// Debug logging is enabled by setting the ARBOR_DEBUG environment variable:
//
//	ARBOR_DEBUG=1 arbor items.jsonl
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions return immediately.
//
// Usage:
//
//	import "github.com/vanderheijden86/arbor/pkg/debug"
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    debug.Log("loaded %d items", count)
//	}
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// EnvVar is the environment variable that switches debug logging on.
const EnvVar = "ARBOR_DEBUG"

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv(EnvVar) != "" {
		SetEnabled(true)
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           log.DebugLevel,
		Prefix:          "arbor",
	})
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects debug output, mostly for tests. It does not enable
// logging by itself.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

func active() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return nil
	}
	return logger
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if l := active(); l != nil {
		l.Debug(fmt.Sprintf(format, args...))
	}
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if l := active(); l != nil {
		l.Debug(name, "took", d)
	}
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	}
func LogEnterExit(name string) func() {
	l := active()
	if l == nil {
		return func() {}
	}
	l.Debug("-> " + name)
	start := time.Now()
	return func() {
		l.Debug("<- "+name, "took", time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if l := active(); l != nil {
		l.Debug(name, "type", fmt.Sprintf("%T", v), "value", fmt.Sprintf("%+v", v))
	}
}
