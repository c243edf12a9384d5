// Package logger builds the process-wide slog.Logger: a tint console handler
// (or JSON), optionally fanned out to Fluent Bit.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"
)

type Options struct {
	Writer    io.Writer
	Level     string
	Format    string // "text" or "json"
	AddSource bool

	// Fluent is optional. When set, records at or above FluentLevel are
	// also posted to Fluent Bit.
	Fluent      *fluent.Fluent
	FluentTag   string
	FluentLevel string
}

// New builds a logger from opts. It does not install it as the default.
func New(opts Options) *slog.Logger {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	level := ParseLevel(opts.Level)

	var console slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		console = slog.NewJSONHandler(opts.Writer, &slog.HandlerOptions{
			Level:     level,
			AddSource: opts.AddSource,
		})
	} else {
		console = tint.NewHandler(opts.Writer, &tint.Options{
			Level:      level,
			AddSource:  opts.AddSource,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}

	if opts.Fluent == nil {
		return slog.New(console)
	}

	fh := NewFluentHandler(opts.Fluent, opts.FluentTag, ParseLevel(opts.FluentLevel))
	return slog.New(&multiHandler{handlers: []slog.Handler{console, fh}})
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// NewFluentClient connects to Fluent Bit. fluent.New does not dial eagerly,
// so errors usually surface on first Post.
func NewFluentClient(host string, port int, tagPrefix string) (*fluent.Fluent, error) {
	if host == "" {
		return nil, errors.New("fluent host is required")
	}
	return fluent.New(fluent.Config{
		FluentHost: host,
		FluentPort: port,
		TagPrefix:  tagPrefix,
	})
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}
