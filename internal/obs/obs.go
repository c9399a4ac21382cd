// Package obs is the engine-wide structured logger built on
// charmbracelet/log. Scheduler lifecycle events, sandbox disposal
// failures, and DB pool teardown errors all flow through here instead of
// being silently dropped.
package obs

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	logger  = newLogger(os.Stderr, false)
)

func newLogger(w io.Writer, debug bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// Configure sets the process-wide verbosity. Called once from the CLI
// after flags are parsed. noColor is honored by setting NO_COLOR, which
// lipgloss/termenv (and this logger, through it) already respect.
func Configure(verbose bool, noColor bool) {
	if noColor {
		os.Setenv("NO_COLOR", "1")
	}
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(os.Stderr, verbose)
}

// SetOutput redirects the logger, primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

func current() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func Debug(msg string, kv ...interface{}) { current().Debug(msg, kv...) }
func Info(msg string, kv ...interface{})  { current().Info(msg, kv...) }
func Warn(msg string, kv ...interface{})  { current().Warn(msg, kv...) }
func Error(msg string, kv ...interface{}) { current().Error(msg, kv...) }

// With returns a sub-logger carrying the given key/value pairs on every
// subsequent call, e.g. obs.With("file", path).Info("running").
func With(kv ...interface{}) *log.Logger {
	return current().With(kv...)
}
