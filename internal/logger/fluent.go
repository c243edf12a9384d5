package logger

import (
	"context"
	"log/slog"
	"time"
)

// poster is the part of *fluent.Fluent the handler needs.
type poster interface {
	Post(tag string, message interface{}) error
}

// FluentHandler is a slog.Handler that posts each record as a flat map to
// Fluent Bit, tagged by level.
type FluentHandler struct {
	client poster
	tag    string
	level  slog.Leveler
	attrs  []slog.Attr
	group  string
}

func NewFluentHandler(client poster, tag string, level slog.Leveler) *FluentHandler {
	return &FluentHandler{client: client, tag: tag, level: level}
}

func (h *FluentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *FluentHandler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]interface{}, len(h.attrs)+r.NumAttrs()+3)
	for _, a := range h.attrs {
		data[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		data[key] = a.Value.Resolve().Any()
		return true
	})
	data["level"] = r.Level.String()
	data["message"] = r.Message
	data["timestamp"] = r.Time.UTC().Format(time.RFC3339Nano)

	tag := r.Level.String()
	if h.tag != "" {
		tag = h.tag + "." + tag
	}
	return h.client.Post(tag, data)
}

func (h *FluentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *FluentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return &next
}
