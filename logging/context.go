package logging

import (
	"context"

	"go.uber.org/zap"
)

// Context keys for request information.
type ctxKey string

const (
	// RequestIDKey is the context key for request ID.
	RequestIDKey ctxKey = "request_id"
)

// WithContext creates a child logger with the request id of ctx, if any.
func WithContext(logger Logger, ctx context.Context) Logger {
	if ctx == nil {
		return logger
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		return logger.With(zap.String("request_id", requestID))
	}
	return logger
}

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(RequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetRequestID adds request ID to context.
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// loggerKey is the context key for storing a logger in context.
type loggerKey struct{}

// FromContext returns the Logger stored in the context, or fallback if none.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if ctx == nil {
		return fallback
	}
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return fallback
}

// ToContext stores the Logger in the context.
func ToContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
