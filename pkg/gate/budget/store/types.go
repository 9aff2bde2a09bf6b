package store

import (
	"context"
	"time"
)

// UsageRecord is one successful external model call, as recorded by the
// budget tracker. Records are immutable once appended.
type UsageRecord struct {
	// RequestID correlates the record with logs and the client response.
	RequestID string `json:"request_id"`

	// CallerKey is the "tenantId:callerId" identity pair.
	CallerKey string `json:"caller_key"`

	// Category is the request category the spend belongs to.
	Category string `json:"category"`

	// Tokens is the actual token count reported by the provider.
	Tokens int `json:"tokens"`

	// Cost is the derived cost in USD.
	Cost float64 `json:"cost"`

	// Timestamp is when the usage was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// Backend is the persistence interface for usage records.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Append persists one usage record.
	Append(ctx context.Context, record *UsageRecord) error

	// ListByCaller returns the most recent records for a caller key,
	// newest first, up to limit (non-positive = backend default cap).
	ListByCaller(ctx context.Context, callerKey string, limit int) ([]*UsageRecord, error)

	// Cleanup removes records older than the given time and returns how
	// many were deleted.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases backend resources. The backend must not be used
	// after Close.
	Close() error
}
