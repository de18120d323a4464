// Package store persists finished reports, their research records and
// reasoning engine traces in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"ideaforge/internal/logging"
)

// ErrNotFound is returned for an unknown report ID.
var ErrNotFound = errors.New("report not found")

// SQLiteStore is the report store.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// Open initializes the SQLite database at path. ":memory:" gives a
// throwaway store.
func Open(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("report store opened at %s", path)
	return s, nil
}

// initialize creates the required tables and applies column migrations.
func (s *SQLiteStore) initialize() error {
	reportsTable := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		idea TEXT NOT NULL,
		research_json TEXT NOT NULL,
		report_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
	`

	tracesTable := `
	CREATE TABLE IF NOT EXISTS llm_traces (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL DEFAULT '',
		op TEXT NOT NULL,
		system_prompt TEXT,
		user_prompt TEXT,
		response TEXT,
		tool_calls INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL,
		success INTEGER NOT NULL,
		error_message TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_traces_label ON llm_traces(label);
	CREATE INDEX IF NOT EXISTS idx_traces_created ON llm_traces(created_at);
	`

	for _, table := range []string{reportsTable, tracesTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return RunMigrations(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Stats returns row counts per table.
func (s *SQLiteStore) Stats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64)
	for _, table := range []string{"reports", "llm_traces"} {
		var n int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		stats[table] = n
	}
	return stats, nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
