package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/instrument-sim/internal/infrastructure/config"
)

// Logger is the simulator's structured logger, a thin wrapper over
// slog carrying the service name and version on every entry.
//
// Component loggers hang off it via With:
//
//	bridgeLog := log.With("component", "bridge")
type Logger struct {
	*slog.Logger
}

// New builds a Logger from the logging section of config.yaml. Format
// selects the slog handler (json or text), output selects stdout or
// stderr, and level filters entries below it.
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "instrsim"),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// parseLevel maps a config level string to slog.Level, defaulting to
// info for anything unrecognised.
func parseLevel(level string) slog.Level {
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

// With returns a child Logger carrying the given attributes on every
// entry, the mechanism behind per-component loggers.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default is the early-startup logger, used for failures before the
// config file has been read. JSON to stdout at info.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
