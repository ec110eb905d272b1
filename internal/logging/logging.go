// Package logging builds the slog logger used across heart.
//
// The TUI owns the terminal, so it logs to a file without colour. The
// headless commands log to stderr with colour when stderr is a terminal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options configures New.
type Options struct {
	Writer io.Writer
	Level  slog.Leveler
	Color  bool
}

// New returns a tint-backed logger.
func New(opts Options) *slog.Logger {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(opts.Writer, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.DateTime,
		NoColor:    !opts.Color,
	}))
}

// ParseLevel maps a config value to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// OpenFile opens path for appending, creating parent directories.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Stderr returns a logger writing to stderr, coloured when it is a terminal.
func Stderr(level slog.Leveler) *slog.Logger {
	return New(Options{
		Writer: os.Stderr,
		Level:  level,
		Color:  isatty.IsTerminal(os.Stderr.Fd()),
	})
}
