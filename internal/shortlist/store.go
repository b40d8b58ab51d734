// Package shortlist persists confirmed (job, candidate) decisions.
package shortlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Entry is a confirmed decision. There is at most one entry per pair;
// confirming again moves DecidedAt forward.
type Entry struct {
	JobID       string    `json:"job_id"`
	CandidateID string    `json:"candidate_id"`
	DecidedAt   time.Time `json:"decided_at"`
}

// Store is the durable backend. Put writes the whole batch or nothing.
// Delete of a missing pair is not an error. List orders by candidate id.
type Store interface {
	Put(ctx context.Context, entries []Entry) error
	Delete(ctx context.Context, jobID, candidateID string) error
	List(ctx context.Context, jobID string) ([]Entry, error)
	Close() error
}

type Config struct {
	// Backend is one of memory, sqlite or postgres.
	Backend string `mapstructure:"backend"`
	// Path of the sqlite database file.
	Path string `mapstructure:"path"`
	// DSN of the postgres database.
	DSN string `mapstructure:"dsn"`
}

// Open builds the store described by cfg. An empty backend keeps entries in memory.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	logger.Debug("opening shortlist store", zap.String("backend", backend))

	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "postgresql":
		s, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown shortlist backend %q", cfg.Backend)
	}
}
