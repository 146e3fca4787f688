// Package requestid correlates the log records of one editor action.
//
// The request layer may store its own id with WithContext; otherwise the
// editor service assigns one with Ensure. Register LoggerExtractor with the
// logger to emit it:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
package requestid
