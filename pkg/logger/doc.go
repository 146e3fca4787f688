// Package logger builds log/slog loggers for the editor backend.
//
// New returns a *slog.Logger configured with functional options: output
// format and level, static attributes, per-environment defaults and
// ContextExtractor callbacks that add request-scoped values (such as a
// request id) to every record logged with a context.
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "ueditor"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "stored upload", logger.Kind(policy.Image), logger.Key(key))
//
// The attribute helpers in attr.go keep field names consistent across
// packages. Components accept a logger through an option and default to
// Discard.
package logger
