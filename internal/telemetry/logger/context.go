package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	loggerKey      contextKey = "scratchkeep.logger"
	operationIDKey contextKey = "scratchkeep.operation_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context, falling back to Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithOperationID tags the context with the ID of a save or restore.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey, id)
}

// OperationIDFromContext returns the operation ID, or "".
func OperationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(operationIDKey).(string); ok {
		return id
	}
	return ""
}

// L returns the context's logger, tagged with its operation ID if any.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := OperationIDFromContext(ctx); id != "" {
		l = l.With("op_id", id)
	}
	return l
}

// Tag returns l with the context's operation ID attached, or l itself when
// ctx carries none.
func Tag(ctx context.Context, l *slog.Logger) *slog.Logger {
	if id := OperationIDFromContext(ctx); id != "" {
		return l.With("op_id", id)
	}
	return l
}
