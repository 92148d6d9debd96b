// Package sqlite stores run history in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/thumbcrawl"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	first_page INTEGER NOT NULL,
	last_page INTEGER NOT NULL,
	dir TEXT NOT NULL,
	total INTEGER NOT NULL DEFAULT 0,
	succeeded INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL,
	ended_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	url TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	page INTEGER NOT NULL DEFAULT 0,
	done INTEGER NOT NULL,
	path TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	bytes INTEGER NOT NULL DEFAULT 0,
	checksum TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_items_url ON items(url);
`

// DB is the run history database.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a DB for the file at path, or MemoryPath.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open connects to the database, creating the file, its directory and the
// schema as needed.
func (db *DB) Open() error {
	if db.path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(db.path), 0755); err != nil {
			return thumbcrawl.Wrapf(err, thumbcrawl.EIO, "create database directory for %s", db.path)
		}
	}

	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; the crawl writes a single report per run.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	// WAL is not available for in-memory databases.
	if db.path != MemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	db.db = conn
	if err := db.migrate(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// migrate creates the schema and records its version.
// A database written by a newer version is rejected.
func (db *DB) migrate() error {
	var version int
	if err := db.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version > schemaVersion {
		return thumbcrawl.Errorf(thumbcrawl.EINVALID, "database schema version %d is newer than %d", version, schemaVersion)
	}
	if version == schemaVersion {
		return nil
	}
	if _, err := db.db.Exec(schema); err != nil {
		return err
	}
	_, err := db.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}
