/*
Package sqlite provides the SQLite-backed implementation of table.Store.

PURPOSE:
  Persists named sheets locally so the pipeline's collaborators (report
  uploaders, the calc consumers) and the pipeline itself share one backing
  store. Each sheet is stored as ordered rows of JSON-encoded cells; row 0 is
  the header.

OVERWRITE SEMANTICS:
  WriteTable deletes and rewrites a sheet inside a single SQL transaction.
  A failed write leaves the previous contents untouched; consumers never see
  a half-written calc table.

RETRY POLICY:
  Transient failures (SQLITE_BUSY / SQLITE_LOCKED from a concurrent reader)
  are retried a fixed number of times with a fixed delay, then surfaced.
  Everything else fails immediately.

WAL MODE:
  The database is opened with WAL so readers don't block the single writer.

USAGE:
  st, err := sqlite.New("./data/metas.db", sqlite.Options{})
  if err != nil { ... }
  defer st.Close()

SEE ALSO:
  - table/table.go: Store contract
  - table/store/memory.go: in-memory twin for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/metas/incentive-engine/table"
)

// Options tunes the transient-failure retry policy.
type Options struct {
	RetryAttempts int           // total attempts per operation (default 3)
	RetryDelay    time.Duration // fixed delay between attempts (default 2s)
}

// Store implements table.Store on SQLite.
type Store struct {
	db   *sql.DB
	opts Options
}

var _ table.Store = (*Store)(nil)

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string, opts Options) (*Store, error) {
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=1000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, opts: opts}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sheet_rows (
		sheet   TEXT    NOT NULL,
		row_num INTEGER NOT NULL,
		cells   TEXT    NOT NULL, -- JSON array of strings
		PRIMARY KEY (sheet, row_num)
	);`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// ReadTable loads the named sheet. An absent sheet yields an empty table.
func (s *Store) ReadTable(ctx context.Context, name string) (table.Table, error) {
	var t table.Table
	err := s.withRetry(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT cells FROM sheet_rows WHERE sheet = ? ORDER BY row_num`, name)
		if err != nil {
			return err
		}
		defer rows.Close()

		var raw [][]string
		for rows.Next() {
			var blob string
			if err := rows.Scan(&blob); err != nil {
				return err
			}
			var cells []string
			if err := json.Unmarshal([]byte(blob), &cells); err != nil {
				return fmt.Errorf("corrupt row in sheet %q: %w", name, err)
			}
			raw = append(raw, cells)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		t = table.FromRows(raw)
		return nil
	})
	if err != nil {
		return table.Table{}, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return t, nil
}

// WriteTable replaces the named sheet atomically: delete, then insert header
// and rows, in one transaction.
func (s *Store) WriteTable(ctx context.Context, name string, t table.Table) error {
	err := s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM sheet_rows WHERE sheet = ?`, name); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO sheet_rows (sheet, row_num, cells) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		insert := func(rowNum int, cells []string) error {
			blob, err := json.Marshal(cells)
			if err != nil {
				return err
			}
			_, err = stmt.ExecContext(ctx, name, rowNum, string(blob))
			return err
		}

		if err := insert(0, t.Columns); err != nil {
			return err
		}
		for i, row := range t.Rows {
			if err := insert(i+1, row); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("write sheet %q: %w", name, err)
	}
	return nil
}

// =============================================================================
// RETRY
// =============================================================================

// withRetry runs op, retrying transient failures with a fixed delay.
// Non-transient failures are returned immediately.
func (s *Store) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= s.opts.RetryAttempts; attempt++ {
		err = op()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt < s.opts.RetryAttempts {
			select {
			case <-time.After(s.opts.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", s.opts.RetryAttempts, err)
}

// isTransient reports whether err is a contention error worth retrying.
func isTransient(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}
