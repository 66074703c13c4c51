package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyScanID    contextKey = "scan_id"
	ContextKeyUserID    contextKey = "user_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithScanID adds a scan ID to the context
func WithScanID(ctx context.Context, scanID string) context.Context {
	return context.WithValue(ctx, ContextKeyScanID, scanID)
}

// ScanIDFromContext extracts the scan ID from context
func ScanIDFromContext(ctx context.Context) string {
	if scanID, ok := ctx.Value(ContextKeyScanID).(string); ok {
		return scanID
	}
	return ""
}

// WithTimeout creates a context with the specified timeout
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
