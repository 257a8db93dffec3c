// Package sqlite persists projection runs and demand records in a SQLite
// database with WAL mode enabled.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	scenarios TEXT NOT NULL,
	interval TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS demand_records (
	run_id TEXT NOT NULL REFERENCES runs(id),
	scenario TEXT NOT NULL,
	place TEXT NOT NULL,
	birth_date TEXT NOT NULL,
	risk_level TEXT NOT NULL,
	delay INTEGER NOT NULL,
	threshold_age INTEGER NOT NULL,
	date TEXT NOT NULL,
	dosage_amount TEXT NOT NULL,
	dosage_unit TEXT NOT NULL,
	n_doses INTEGER NOT NULL,
	size TEXT NOT NULL,
	doses TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_demand_records_run ON demand_records(run_id);
CREATE INDEX IF NOT EXISTS idx_demand_records_scenario ON demand_records(run_id, scenario);
`

// Store wraps a sql.DB opened on a SQLite projection database
type Store struct {
	*sql.DB
	path string
}

// Open creates a store on the given database file, enabling WAL mode and
// creating the schema if needed
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_txlock=immediate", path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	store := &Store{DB: sqlDB, path: path}
	if err := store.initPragmas(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initializing pragmas: %w", err)
	}
	if err := store.initSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

// OpenInMemory creates an in-memory store for testing. It creates the schema
// but skips WAL mode, which does not apply to in-memory databases.
func OpenInMemory() (*Store, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	store := &Store{DB: sqlDB, path: ":memory:"}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := store.initSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

// initPragmas sets the SQLite pragmas for durable single-writer operation
func (s *Store) initPragmas() error {
	pragmas := []struct {
		name   string
		pragma string
	}{
		// WAL mode for power-loss resilience
		{"journal_mode", "PRAGMA journal_mode=WAL"},
		// Synchronous NORMAL balances safety and performance
		{"synchronous", "PRAGMA synchronous=NORMAL"},
		// 5 second busy timeout for concurrent access
		{"busy_timeout", "PRAGMA busy_timeout=5000"},
		// Enable foreign key constraints
		{"foreign_keys", "PRAGMA foreign_keys=ON"},
	}

	for _, p := range pragmas {
		if _, err := s.Exec(p.pragma); err != nil {
			return fmt.Errorf("setting %s: %w", p.name, err)
		}
	}

	return nil
}

// initSchema creates the runs and demand_records tables if they do not exist
func (s *Store) initSchema() error {
	if _, err := s.Exec(schema); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// WithTransaction executes a function within a transaction. The transaction
// is committed if the function returns nil, otherwise rolled back.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back after error %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close checkpoints the WAL and closes the database
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		slog.Warn("final checkpoint failed", "error", err)
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
