package core

import "context"

// Context keys for comparison options
type contextKey string

const quietKey contextKey = "quiet"

// WithQuiet marks a context whose run must not print progress, e.g. MCP
// sessions where stdout carries protocol frames.
func WithQuiet(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey, true)
}

// ShouldBeQuiet returns whether progress output is suppressed from context
func ShouldBeQuiet(ctx context.Context) bool {
	val := ctx.Value(quietKey)
	if val == nil {
		return false // default: show progress
	}
	quiet, ok := val.(bool)
	return ok && quiet
}
