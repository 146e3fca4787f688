package requestid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// New returns a fresh request id.
func New() string {
	return uuid.NewString()
}

// WithContext stores id in ctx.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the id stored in ctx, or an empty string.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Ensure returns ctx unchanged when it already carries an id and a derived
// context with a new one otherwise.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithContext(ctx, id), id
}
