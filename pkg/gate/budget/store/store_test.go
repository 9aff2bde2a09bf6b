package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

// backendFactory builds a fresh backend for the shared contract tests.
type backendFactory func(t *testing.T) Backend

func memoryFactory(t *testing.T) Backend {
	return NewMemoryBackend(0)
}

func sqliteFactory(t *testing.T) Backend {
	dbPath := filepath.Join(t.TempDir(), "usage.db")
	backend, err := NewSQLiteBackend(dbPath)
	if err != nil {
		t.Fatalf("Failed to create sqlite backend: %v", err)
	}
	t.Cleanup(func() { backend.Close() })
	return backend
}

func record(callerKey string, tokens int, ts time.Time) *UsageRecord {
	return &UsageRecord{
		RequestID: fmt.Sprintf("req-%d", ts.UnixNano()),
		CallerKey: callerKey,
		Category:  "recipe",
		Tokens:    tokens,
		Cost:      float64(tokens) / 1000.0 * 0.002,
		Timestamp: ts,
	}
}

// ============================================================================
// Shared Backend Contract Tests
// ============================================================================

func TestBackends_AppendAndList(t *testing.T) {
	factories := map[string]backendFactory{
		"memory": memoryFactory,
		"sqlite": sqliteFactory,
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			backend := factory(t)
			ctx := context.Background()
			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

			for i := 0; i < 5; i++ {
				rec := record("fam1:u1", 100*(i+1), base.Add(time.Duration(i)*time.Second))
				if err := backend.Append(ctx, rec); err != nil {
					t.Fatalf("Append failed: %v", err)
				}
			}
			// A different caller's record must not leak into the listing.
			if err := backend.Append(ctx, record("fam1:u2", 999, base)); err != nil {
				t.Fatalf("Append failed: %v", err)
			}

			records, err := backend.ListByCaller(ctx, "fam1:u1", 0)
			if err != nil {
				t.Fatalf("ListByCaller failed: %v", err)
			}
			if len(records) != 5 {
				t.Fatalf("Expected 5 records, got %d", len(records))
			}
			// Newest first.
			if records[0].Tokens != 500 {
				t.Errorf("Expected newest record first (500 tokens), got %d", records[0].Tokens)
			}
			if records[4].Tokens != 100 {
				t.Errorf("Expected oldest record last (100 tokens), got %d", records[4].Tokens)
			}

			limited, err := backend.ListByCaller(ctx, "fam1:u1", 2)
			if err != nil {
				t.Fatalf("ListByCaller with limit failed: %v", err)
			}
			if len(limited) != 2 {
				t.Errorf("Expected limit to cap results at 2, got %d", len(limited))
			}
		})
	}
}

func TestBackends_Cleanup(t *testing.T) {
	factories := map[string]backendFactory{
		"memory": memoryFactory,
		"sqlite": sqliteFactory,
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			backend := factory(t)
			ctx := context.Background()
			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

			backend.Append(ctx, record("fam1:u1", 100, base))
			backend.Append(ctx, record("fam1:u1", 200, base.Add(time.Hour)))

			deleted, err := backend.Cleanup(ctx, base.Add(30*time.Minute))
			if err != nil {
				t.Fatalf("Cleanup failed: %v", err)
			}
			if deleted != 1 {
				t.Errorf("Expected 1 record deleted, got %d", deleted)
			}

			records, _ := backend.ListByCaller(ctx, "fam1:u1", 0)
			if len(records) != 1 {
				t.Fatalf("Expected 1 surviving record, got %d", len(records))
			}
			if records[0].Tokens != 200 {
				t.Errorf("Wrong record survived cleanup: %d tokens", records[0].Tokens)
			}
		})
	}
}

func TestBackends_AppendValidation(t *testing.T) {
	factories := map[string]backendFactory{
		"memory": memoryFactory,
		"sqlite": sqliteFactory,
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			backend := factory(t)
			ctx := context.Background()

			if err := backend.Append(ctx, nil); err == nil {
				t.Error("Appending nil record should fail")
			}
			if err := backend.Append(ctx, &UsageRecord{}); err == nil {
				t.Error("Appending record without caller key should fail")
			}
		})
	}
}

// ============================================================================
// Memory Backend Specifics
// ============================================================================

func TestMemoryBackend_BoundsPerCaller(t *testing.T) {
	backend := NewMemoryBackend(3)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		backend.Append(ctx, record("fam1:u1", 100*(i+1), base.Add(time.Duration(i)*time.Second)))
	}

	records, _ := backend.ListByCaller(ctx, "fam1:u1", 0)
	if len(records) != 3 {
		t.Fatalf("Expected cap of 3 records, got %d", len(records))
	}
	// The oldest two must have rolled off.
	if records[len(records)-1].Tokens != 300 {
		t.Errorf("Expected oldest surviving record to be 300 tokens, got %d", records[len(records)-1].Tokens)
	}
}

// ============================================================================
// SQLite Backend Specifics
// ============================================================================

func TestSQLiteBackend_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "usage.db")
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	backend, err := NewSQLiteBackend(dbPath)
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}
	backend.Append(ctx, record("fam1:u1", 100, base))
	backend.Close()

	reopened, err := NewSQLiteBackend(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen backend: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.ListByCaller(ctx, "fam1:u1", 0)
	if err != nil {
		t.Fatalf("ListByCaller failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected persisted record after reopen, got %d", len(records))
	}
	if !records[0].Timestamp.Equal(base) {
		t.Errorf("Timestamp should round-trip, got %v", records[0].Timestamp)
	}
}

func TestSQLiteBackend_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteBackend(""); err == nil {
		t.Error("Empty db path should fail")
	}
}
