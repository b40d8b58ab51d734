package shortlist

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"modernc.org/sqlite"

	"github.com/spigell/recruit-matcher/internal/recruit"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "shortlist.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestSQLite(t)
	ctx := context.Background()
	first := time.Date(2024, 5, 1, 9, 0, 0, 123, time.UTC)

	err := store.Put(ctx, []Entry{
		{JobID: "j1", CandidateID: "c2", DecidedAt: first},
		{JobID: "j1", CandidateID: "c1", DecidedAt: first},
		{JobID: "j2", CandidateID: "c1", DecidedAt: first},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	later := first.Add(time.Minute)
	if err := store.Put(ctx, []Entry{{JobID: "j1", CandidateID: "c2", DecidedAt: later}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entries, err := store.List(ctx, "j1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	if entries[0].CandidateID != "c1" || !entries[0].DecidedAt.Equal(first) {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].CandidateID != "c2" || !entries[1].DecidedAt.Equal(later) {
		t.Fatalf("expected upserted decided_at, got %+v", entries[1])
	}

	if err := store.Delete(ctx, "j1", "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "j1", "c1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	entries, err = store.List(ctx, "j1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].CandidateID != "c2" {
		t.Fatalf("unexpected entries after delete: %+v", entries)
	}

	other, err := store.List(ctx, "j2")
	if err != nil || len(other) != 1 {
		t.Fatalf("expected job j2 untouched, got %+v (%v)", other, err)
	}
}

func TestSQLiteStoreCancelledBatchWritesNothing(t *testing.T) {
	t.Parallel()

	store := openTestSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Put(ctx, []Entry{{JobID: "j1", CandidateID: "c1", DecidedAt: time.Now()}})
	if err == nil {
		t.Fatalf("expected error for cancelled context")
	}

	entries, err := store.List(context.Background(), "j1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected nothing written, got %+v", entries)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shortlist.db")
	store, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Put(context.Background(), []Entry{{JobID: "j1", CandidateID: "c1", DecidedAt: time.Now()}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.List(context.Background(), "j1")
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected persisted entry, got %+v (%v)", entries, err)
	}
}

func TestSQLiteErrorClassification(t *testing.T) {
	t.Parallel()

	plain := sqliteError("op", errors.New("disk I/O error"))
	if errors.Is(plain, recruit.ErrStoreConflict) {
		t.Fatalf("plain errors must not be conflicts: %v", plain)
	}

	wrapped := sqliteError("op", fmt.Errorf("exec: %w", &sqlite.Error{}))
	if errors.Is(wrapped, recruit.ErrStoreConflict) {
		t.Fatalf("generic sqlite errors must not be conflicts: %v", wrapped)
	}
}
