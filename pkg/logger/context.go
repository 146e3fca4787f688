package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one request-scoped attribute, such as the editor
// request id, out of ctx. It reports false when ctx carries nothing.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextHandler stamps every record with the attributes its extractors find
// in the record's context. Derived handlers share the same extractors.
type ContextHandler struct {
	inner      slog.Handler
	extractors []ContextExtractor
}

// NewContextHandler wraps inner. Nil extractors are skipped. When none
// remain, inner is returned unchanged.
func NewContextHandler(inner slog.Handler, extractors ...ContextExtractor) slog.Handler {
	var active []ContextExtractor
	for _, ex := range extractors {
		if ex != nil {
			active = append(active, ex)
		}
	}
	if len(active) == 0 {
		return inner
	}
	return &ContextHandler{inner: inner, extractors: active}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle appends the extracted attributes. Empty attributes are dropped.
func (h *ContextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if ctx != nil {
		for _, ex := range h.extractors {
			if attr, ok := ex(ctx); ok && !attr.Equal(slog.Attr{}) {
				rec.AddAttrs(attr)
			}
		}
	}
	return h.inner.Handle(ctx, rec)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), extractors: h.extractors}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name), extractors: h.extractors}
}
