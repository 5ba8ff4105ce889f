package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Subsystem names a component that gets its own logger and level override.
type Subsystem string

const (
	SubsystemBot      Subsystem = "BOT"
	SubsystemAPI      Subsystem = "API"
	SubsystemGateway  Subsystem = "GATEWAY"
	SubsystemTelegram Subsystem = "TELEGRAM"
	SubsystemEvents   Subsystem = "EVENTS"
)

// Config holds log levels for the process and per-subsystem overrides.
type Config struct {
	DefaultLevel    slog.Level
	SubsystemLevels map[Subsystem]slog.Level
	Output          io.Writer
}

// NewConfig reads LOG_LEVEL and LOG_LEVEL_<SUBSYSTEM> from the environment.
// Unparseable values fall back to info.
func NewConfig() Config {
	cfg := Config{
		DefaultLevel:    slog.LevelInfo,
		SubsystemLevels: make(map[Subsystem]slog.Level),
		Output:          os.Stdout,
	}

	if level, err := ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		cfg.DefaultLevel = level
	}

	for _, subsystem := range []Subsystem{SubsystemBot, SubsystemAPI, SubsystemGateway, SubsystemTelegram, SubsystemEvents} {
		value := os.Getenv("LOG_LEVEL_" + string(subsystem))
		if value == "" {
			continue
		}
		if level, err := ParseLevel(value); err == nil {
			cfg.SubsystemLevels[subsystem] = level
		}
	}

	return cfg
}

// LevelFor returns the effective level for a subsystem.
func (c Config) LevelFor(subsystem Subsystem) slog.Level {
	if level, ok := c.SubsystemLevels[subsystem]; ok {
		return level
	}
	return c.DefaultLevel
}

// ParseLevel maps a textual level to slog.Level. Empty means info.
func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
}

// NewSubsystemLogger creates a JSON logger for the subsystem. When otelHandler
// is non-nil, records are also forwarded to it so they reach the collector
// with trace correlation.
func NewSubsystemLogger(subsystem Subsystem, cfg Config, otelHandler slog.Handler) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	level := cfg.LevelFor(subsystem)
	var handler slog.Handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	if otelHandler != nil {
		handler = &fanoutHandler{
			level:    level,
			handlers: []slog.Handler{handler, otelHandler},
		}
	}

	return slog.New(handler).With("subsystem", string(subsystem))
}

type contextKey struct{}

// AddToContext stores a logger in the context.
func AddToContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return slog.Default()
}

// fanoutHandler forwards each record to every wrapped handler.
type fanoutHandler struct {
	level    slog.Leveler
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &fanoutHandler{level: h.level, handlers: next}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &fanoutHandler{level: h.level, handlers: next}
}
