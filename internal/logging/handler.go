package logging

import (
	"context"
	"log/slog"
	"slices"
)

// Handler is a slog.Handler that writes records to a Channel.
//
// Records without attributes are sent as their message string. Records
// with attributes are sent as an object holding "message" and the
// attributes, with groups nested.
type Handler struct {
	ch     *Channel
	logger string
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*Handler)(nil)

// HandlerOptions configures NewHandler.
type HandlerOptions struct {
	// Logger is the logger name on every message. Defaults to "app".
	Logger string

	// Level is the minimum level forwarded. Defaults to slog.LevelInfo.
	Level slog.Leveler
}

// NewHandler returns a handler writing to ch.
func NewHandler(ch *Channel, opts *HandlerOptions) *Handler {
	h := &Handler{ch: ch, logger: LoggerApp, level: slog.LevelInfo}

	if opts != nil {
		if opts.Logger != "" {
			h.logger = opts.Logger
		}

		if opts.Level != nil {
			h.level = opts.Level
		}
	}

	return h
}

// Enabled reports whether level is at or above the configured minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle sends r to the channel. It never blocks and never fails.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	attrs := slices.Clone(h.attrs)

	var recordAttrs []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		recordAttrs = append(recordAttrs, a)

		return true
	})

	// Record attributes belong to the innermost open group.
	if len(recordAttrs) > 0 {
		attrs = append(attrs, nest(h.groups, recordAttrs)...)
	}

	var data any = r.Message

	if len(attrs) > 0 {
		obj := map[string]any{"message": r.Message}
		for _, a := range attrs {
			addAttr(obj, a)
		}

		data = obj
	}

	h.ch.Send(Params(FromSlog(r.Level), h.logger, data))

	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	cp := *h
	cp.attrs = append(slices.Clone(h.attrs), nest(h.groups, attrs)...)

	return &cp
}

// WithGroup returns a handler that nests later attributes under name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	cp := *h
	cp.groups = append(slices.Clone(h.groups), name)

	return &cp
}

func nest(groups []string, attrs []slog.Attr) []slog.Attr {
	if len(groups) == 0 {
		return attrs
	}

	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}

	out := slog.Group(groups[len(groups)-1], args...)

	for i := len(groups) - 2; i >= 0; i-- {
		out = slog.Group(groups[i], out)
	}

	return []slog.Attr{out}
}

func addAttr(obj map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if v.Kind() != slog.KindGroup {
		if err, ok := v.Any().(error); ok {
			obj[a.Key] = err.Error()
		} else {
			obj[a.Key] = v.Any()
		}

		return
	}

	group := v.Group()
	if len(group) == 0 {
		return
	}

	// Inline groups with an empty key.
	target := obj

	if a.Key != "" {
		sub, ok := obj[a.Key].(map[string]any)
		if !ok {
			sub = make(map[string]any, len(group))
			obj[a.Key] = sub
		}

		target = sub
	}

	for _, ga := range group {
		addAttr(target, ga)
	}
}
