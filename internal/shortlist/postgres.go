package shortlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spigell/recruit-matcher/internal/recruit"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS shortlist_entries (
	job_id       TEXT        NOT NULL,
	candidate_id TEXT        NOT NULL,
	decided_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (job_id, candidate_id)
)`

// PostgresStore writes each batch in one serializable transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates and verifies a pgxpool connection pool and the table.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("shortlist: init schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Put(ctx context.Context, entries []Entry) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return postgresError("begin shortlist batch", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`INSERT INTO shortlist_entries (job_id, candidate_id, decided_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (job_id, candidate_id) DO UPDATE SET decided_at = EXCLUDED.decided_at`,
			e.JobID, e.CandidateID, e.DecidedAt.UTC())
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return postgresError("insert shortlist batch", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return postgresError("commit shortlist batch", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, jobID, candidateID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM shortlist_entries WHERE job_id = $1 AND candidate_id = $2`, jobID, candidateID); err != nil {
		return postgresError("delete shortlist entry", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, jobID string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id, decided_at FROM shortlist_entries
		 WHERE job_id = $1 ORDER BY candidate_id COLLATE "C"`, jobID)
	if err != nil {
		return nil, postgresError("list shortlist", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e := Entry{JobID: jobID}
		if err := rows.Scan(&e.CandidateID, &e.DecidedAt); err != nil {
			return nil, fmt.Errorf("list shortlist scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, postgresError("list shortlist", err)
	}
	return entries, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Serialization failures and deadlocks leave nothing written and may be retried.
var conflictCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

func postgresError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && conflictCodes[pgErr.Code] {
		return fmt.Errorf("%s: %w: %v", op, recruit.ErrStoreConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
