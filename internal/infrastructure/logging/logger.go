package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/padworks/padlink/internal/infrastructure/config"
)

// Logger wraps slog.Logger with padlink defaults.
//
// Every record carries the service name and build version so log
// aggregation can distinguish instances. All methods are safe for
// concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from the logging section of the configuration.
// Format selects JSON (default) or text handlers; output selects stdout
// (default) or stderr.
func New(cfg config.LoggingConfig, version string) *Logger {
	out := io.Writer(os.Stdout)
	if strings.ToLower(cfg.Output) == "stderr" {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "padlink"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// parseLevel maps a configured level name onto slog.Level. Unrecognised
// values fall back to info.
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

// With returns a new Logger carrying additional default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a child logger tagged with a component attribute.
//
// Subsystems receive their logger through this helper so records can be
// filtered per component:
//
//	bridgeLog := logger.Component("bridge")
//	bridgeLog.Info("port opened") // includes component=bridge
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default is the logger for early startup, before the configuration is
// loaded. JSON to stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
