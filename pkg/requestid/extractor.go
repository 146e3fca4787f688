package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/ueditor/pkg/logger"
)

// LoggerExtractor adds request_id to every record logged with a context
// that carries one.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}
