// Package logging holds the process-wide logger. The level is global state:
// tests change it only through Save or Isolate.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// slogFatal sits above slog.LevelError so that `quiet` never hides it.
const slogFatal = slog.LevelError + 4

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return fmt.Sprintf("level(%d)", int8(l))
}

// Slog maps l onto the slog scale.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	}
	return slogFatal
}

// ParseLevel accepts debug|info|warn|error|fatal and `quiet` as an alias
// for error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "quiet":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("invalid log level: %q (expected: debug|info|warn|error|fatal|quiet)", s)
}

var (
	mu      sync.Mutex
	level   slog.LevelVar
	current atomic.Pointer[slog.Handler]
	output  io.Writer = os.Stderr
	format          = "text"
	root            = slog.New(swapHandler{})
)

func init() {
	level.Set(slog.LevelInfo)
	rebuild()
}

// rebuild swaps in a handler for the current output and format. Callers
// hold mu (or run from init).
func rebuild() {
	opts := &slog.HandlerOptions{
		Level: &level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && a.Value.Any() == slogFatal {
				a.Value = slog.StringValue("FATAL")
			}
			return a
		},
	}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = slog.NewTextHandler(output, opts)
	}
	current.Store(&h)
}

// swapHandler forwards to the current handler so loggers obtained before
// SetOutput follow the change.
type swapHandler struct {
	wrap func(slog.Handler) slog.Handler
}

func (h swapHandler) handler() slog.Handler {
	base := *current.Load()
	if h.wrap != nil {
		return h.wrap(base)
	}
	return base
}

func (h swapHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= level.Level()
}

func (h swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler().Handle(ctx, r)
}

func (h swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prev := h.wrap
	return swapHandler{wrap: func(b slog.Handler) slog.Handler {
		if prev != nil {
			b = prev(b)
		}
		return b.WithAttrs(attrs)
	}}
}

func (h swapHandler) WithGroup(name string) slog.Handler {
	prev := h.wrap
	return swapHandler{wrap: func(b slog.Handler) slog.Handler {
		if prev != nil {
			b = prev(b)
		}
		return b.WithGroup(name)
	}}
}

func SetLevel(l Level) { level.Set(l.Slog()) }

func CurrentLevel() Level {
	switch l := level.Level(); {
	case l <= slog.LevelDebug:
		return LevelDebug
	case l <= slog.LevelInfo:
		return LevelInfo
	case l <= slog.LevelWarn:
		return LevelWarn
	case l <= slog.LevelError:
		return LevelError
	}
	return LevelFatal
}

// Enabled reports whether messages at l are emitted.
func Enabled(l Level) bool { return l.Slog() >= level.Level() }

func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// SetFormat selects "text" or "json" records.
func SetFormat(f string) error {
	if f != "text" && f != "json" {
		return fmt.Errorf("invalid log format: %q (expected: text|json)", f)
	}
	mu.Lock()
	defer mu.Unlock()
	format = f
	rebuild()
	return nil
}

func Logger() *slog.Logger { return root }

func ForComponent(component string) *slog.Logger {
	return root.With("component", component)
}

func Debug(msg string, args ...any) { root.Debug(msg, args...) }
func Info(msg string, args ...any)  { root.Info(msg, args...) }
func Warn(msg string, args ...any)  { root.Warn(msg, args...) }
func Error(msg string, args ...any) { root.Error(msg, args...) }

// Fatal logs above error level. It does not exit.
func Fatal(msg string, args ...any) {
	root.Log(context.Background(), slogFatal, msg, args...)
}

// Save captures level, output and format; the returned func restores them.
func Save() (restore func()) {
	mu.Lock()
	savedOut, savedFormat := output, format
	mu.Unlock()
	savedLevel := level.Level()
	return func() {
		level.Set(savedLevel)
		mu.Lock()
		defer mu.Unlock()
		output, format = savedOut, savedFormat
		rebuild()
	}
}

// Cleaner is the part of testing.TB that Isolate needs.
type Cleaner interface {
	Cleanup(func())
}

// Isolate saves the logger state and restores it when the test ends.
func Isolate(t Cleaner) {
	t.Cleanup(Save())
}
