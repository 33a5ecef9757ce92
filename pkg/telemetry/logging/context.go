package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// CorrelationIDKey is the context key for envelope correlation ids.
	CorrelationIDKey contextKey = "correlation_id"

	// APIKey is the context key for the client family of the current call.
	APIKey contextKey = "api"
)

// WithCorrelationID adds a correlation id to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// GetCorrelationID retrieves the correlation id from the context.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithAPI adds the client family name to the context.
func WithAPI(ctx context.Context, api string) context.Context {
	return context.WithValue(ctx, APIKey, api)
}

// GetAPI retrieves the client family name from the context.
func GetAPI(ctx context.Context) string {
	if api, ok := ctx.Value(APIKey).(string); ok {
		return api
	}
	return ""
}

// extractContextFields returns key, value pairs for the fields set on ctx.
func extractContextFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	var fields []any
	if api := GetAPI(ctx); api != "" {
		fields = append(fields, "api", api)
	}
	if id := GetCorrelationID(ctx); id != "" {
		fields = append(fields, "correlation_id", id)
	}
	return fields
}
