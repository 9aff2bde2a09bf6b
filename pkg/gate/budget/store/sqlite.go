package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteBackend implements Backend on a SQLite database. It provides a
// durable append-only usage log suitable for single-instance deployments.
//
// The database is opened in WAL mode with a busy timeout; connections are
// capped at one because SQLite supports a single writer.
type SQLiteBackend struct {
	db *sql.DB

	appendStmt *sql.Stmt
	listStmt   *sql.Stmt
}

// NewSQLiteBackend opens (or creates) the usage database at dbPath.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{db: db}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := backend.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return backend, nil
}

func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_records (
		request_id TEXT NOT NULL,
		caller_key TEXT NOT NULL,
		category   TEXT NOT NULL,
		tokens     INTEGER NOT NULL,
		cost       REAL NOT NULL,
		timestamp  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_caller ON usage_records(caller_key, timestamp);
	CREATE INDEX IF NOT EXISTS idx_usage_timestamp ON usage_records(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.appendStmt, err = s.db.Prepare(`
		INSERT INTO usage_records (request_id, caller_key, category, tokens, cost, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT request_id, caller_key, category, tokens, cost, timestamp
		FROM usage_records
		WHERE caller_key = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("prepare list: %w", err)
	}

	return nil
}

// Append persists one usage record.
func (s *SQLiteBackend) Append(ctx context.Context, record *UsageRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.CallerKey == "" {
		return fmt.Errorf("caller key cannot be empty")
	}

	_, err := s.appendStmt.ExecContext(ctx,
		record.RequestID,
		record.CallerKey,
		record.Category,
		record.Tokens,
		record.Cost,
		record.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to append usage record: %w", err)
	}
	return nil
}

// ListByCaller returns the caller's most recent records, newest first.
func (s *SQLiteBackend) ListByCaller(ctx context.Context, callerKey string, limit int) ([]*UsageRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.listStmt.QueryContext(ctx, callerKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	defer rows.Close()

	var records []*UsageRecord
	for rows.Next() {
		var rec UsageRecord
		var ts int64
		if err := rows.Scan(&rec.RequestID, &rec.CallerKey, &rec.Category, &rec.Tokens, &rec.Cost, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Cleanup removes records older than the given time.
func (s *SQLiteBackend) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM usage_records WHERE timestamp < ?`, olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup usage records: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Close closes the prepared statements and the database.
func (s *SQLiteBackend) Close() error {
	if s.appendStmt != nil {
		s.appendStmt.Close()
	}
	if s.listStmt != nil {
		s.listStmt.Close()
	}
	return s.db.Close()
}
