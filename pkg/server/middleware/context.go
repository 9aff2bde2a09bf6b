// Package middleware provides HTTP middleware shared by every route:
// request IDs, panic recovery, access logging, and CORS.
package middleware

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// Context keys for storing values in request context.
const (
	// RequestIDKey stores the unique request ID.
	RequestIDKey contextKey = "request_id"
)
