package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/amishk599/jobhunter/internal/config"
)

// New builds the process logger from cfg. debug forces the debug level.
// The returned close func releases the log file, if one was opened.
func New(cfg config.LogConfig, debug bool) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }

	var writer io.Writer = os.Stdout
	closeFn := noop
	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, noop, err
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, noop, err
		}
		closeFn = f.Close
		writer = f
		if strings.ToLower(cfg.Output) == "both" {
			writer = io.MultiWriter(os.Stdout, f)
		}
	}

	return NewWithWriter(writer, cfg.Format, levelFor(cfg.Level, debug)), closeFn, nil
}

// NewWithWriter returns a text or JSON logger writing to w.
func NewWithWriter(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything. The TUI uses it so log
// output does not corrupt the alt screen.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func levelFor(level string, debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
