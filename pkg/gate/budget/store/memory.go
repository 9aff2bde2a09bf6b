package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// defaultListLimit caps ListByCaller results when no limit is given.
const defaultListLimit = 100

// MemoryBackend implements Backend with an in-memory slice per caller.
// All data is lost when the process exits.
type MemoryBackend struct {
	// records maps caller key to that caller's records, oldest first.
	records map[string][]*UsageRecord

	// maxPerCaller bounds memory; the oldest records roll off.
	maxPerCaller int

	mu sync.RWMutex
}

// NewMemoryBackend creates an in-memory backend keeping at most
// maxPerCaller records per caller (0 = 1000).
func NewMemoryBackend(maxPerCaller int) *MemoryBackend {
	if maxPerCaller <= 0 {
		maxPerCaller = 1000
	}
	return &MemoryBackend{
		records:      make(map[string][]*UsageRecord),
		maxPerCaller: maxPerCaller,
	}
}

// Append persists one usage record.
func (m *MemoryBackend) Append(ctx context.Context, record *UsageRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.CallerKey == "" {
		return fmt.Errorf("caller key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	recs := append(m.records[record.CallerKey], &copied)
	if len(recs) > m.maxPerCaller {
		recs = recs[len(recs)-m.maxPerCaller:]
	}
	m.records[record.CallerKey] = recs
	return nil
}

// ListByCaller returns the caller's most recent records, newest first.
func (m *MemoryBackend) ListByCaller(ctx context.Context, callerKey string, limit int) ([]*UsageRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.records[callerKey]
	n := len(recs)
	if limit < n {
		n = limit
	}

	out := make([]*UsageRecord, 0, n)
	for i := len(recs) - 1; i >= 0 && len(out) < n; i-- {
		copied := *recs[i]
		out = append(out, &copied)
	}
	return out, nil
}

// Cleanup removes records older than the given time.
func (m *MemoryBackend) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for key, recs := range m.records {
		kept := recs[:0]
		for _, r := range recs {
			if r.Timestamp.Before(olderThan) {
				deleted++
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			delete(m.records, key)
			continue
		}
		m.records[key] = kept
	}
	return deleted, nil
}

// Close is a no-op for the memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}
