// Package logger provides structured logging on top of log/slog.
//
//   - logger.go: handler construction, dynamic level, package defaults
//   - context.go: logger and operation ID propagation through contexts
//   - redact.go: scrubbing of document text and credentials
//
// Document content must never reach a log line. Attributes whose key
// names document text (content, text, body) are replaced by a length
// summary before the handler sees them.
package logger
