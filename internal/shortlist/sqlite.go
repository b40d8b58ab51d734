package shortlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/spigell/recruit-matcher/internal/recruit"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS shortlist (
	job_id       TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	decided_at   TEXT NOT NULL,
	PRIMARY KEY (job_id, candidate_id)
)`

// SQLiteStore keeps the shortlist in a single sqlite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("shortlist: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("shortlist: open sqlite: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", sqliteSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("shortlist: init schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sqliteError("begin shortlist batch", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO shortlist (job_id, candidate_id, decided_at)
		VALUES (?, ?, ?)
		ON CONFLICT (job_id, candidate_id) DO UPDATE SET decided_at = excluded.decided_at`)
	if err != nil {
		return sqliteError("prepare shortlist insert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.JobID, e.CandidateID, e.DecidedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return sqliteError(fmt.Sprintf("insert shortlist entry %s/%s", e.JobID, e.CandidateID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return sqliteError("commit shortlist batch", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, jobID, candidateID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM shortlist WHERE job_id = ? AND candidate_id = ?`, jobID, candidateID); err != nil {
		return sqliteError("delete shortlist entry", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, jobID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT candidate_id, decided_at FROM shortlist WHERE job_id = ? ORDER BY candidate_id`, jobID)
	if err != nil {
		return nil, sqliteError("list shortlist", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			candidateID string
			decidedAt   string
		)
		if err := rows.Scan(&candidateID, &decidedAt); err != nil {
			return nil, fmt.Errorf("list shortlist scan: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, decidedAt)
		if err != nil {
			return nil, fmt.Errorf("list shortlist: decided_at %q: %w", decidedAt, err)
		}
		entries = append(entries, Entry{JobID: jobID, CandidateID: candidateID, DecidedAt: ts})
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteError("list shortlist", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sqliteError maps busy and locked databases to recruit.ErrStoreConflict.
func sqliteError(op string, err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%s: %w: %v", op, recruit.ErrStoreConflict, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
