package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fwojciec/thumbcrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ thumbcrawl.ReportWriter = (*RunStore)(nil)
	_ thumbcrawl.RunHistory   = (*RunStore)(nil)
)

// RunStore records finished runs and their items.
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// WriteReport stores the run and one row per entry in a single transaction.
func (s *RunStore) WriteReport(ctx context.Context, result *thumbcrawl.RunResult) error {
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, query, first_page, last_page, dir, total, succeeded, skipped, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, result.Query, result.Pages.First, result.Pages.Last, result.Dir,
		result.Total(), result.Succeeded(), result.Skipped,
		formatTime(result.StartedAt), formatTime(result.EndedAt)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (run_id, position, url, title, page, done, path, reason, bytes, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range result.Entries() {
		if _, err := stmt.ExecContext(ctx, id, i, e.URL, e.Title, e.Page, e.Outcome.Done,
			e.Outcome.Path, e.Outcome.Reason, e.Outcome.Bytes, e.Outcome.Checksum); err != nil {
			return fmt.Errorf("insert item %s: %w", e.URL, err)
		}
	}

	return tx.Commit()
}

// FindRuns returns the most recent runs first. A limit of zero returns all runs.
func (s *RunStore) FindRuns(ctx context.Context, limit int) ([]*thumbcrawl.RunSummary, error) {
	var query strings.Builder
	query.WriteString(`
		SELECT id, query, first_page, last_page, dir, total, succeeded, skipped, started_at, ended_at
		FROM runs
		ORDER BY started_at DESC, rowid DESC`)
	var args []any
	appendLimit(&query, &args, limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*thumbcrawl.RunSummary, 0)
	for rows.Next() {
		var run thumbcrawl.RunSummary
		var startedAt, endedAt string
		if err := rows.Scan(&run.ID, &run.Query, &run.FirstPage, &run.LastPage, &run.Dir,
			&run.Total, &run.Succeeded, &run.Skipped, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		if run.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if run.EndedAt, err = parseTime(endedAt, "ended_at"); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// FindRunEntries returns the items of a run in discovery order.
// Returns ENOTFOUND if the run does not exist.
func (s *RunStore) FindRunEntries(ctx context.Context, runID string) ([]thumbcrawl.ResultEntry, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, thumbcrawl.Errorf(thumbcrawl.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, page, done, path, reason, bytes, checksum
		FROM items
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []thumbcrawl.ResultEntry
	for rows.Next() {
		var e thumbcrawl.ResultEntry
		if err := rows.Scan(&e.URL, &e.Title, &e.Page, &e.Outcome.Done, &e.Outcome.Path,
			&e.Outcome.Reason, &e.Outcome.Bytes, &e.Outcome.Checksum); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
