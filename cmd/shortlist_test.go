package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/spigell/recruit-matcher/internal/shortlist"
)

func TestShortlistCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shortlist.db")

	store, err := shortlist.OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	decidedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	err = store.Put(context.Background(), []shortlist.Entry{
		{JobID: "1", CandidateID: "2", DecidedAt: decidedAt},
		{JobID: "1", CandidateID: "4", DecidedAt: decidedAt},
	})
	if err != nil {
		t.Fatalf("seed shortlist: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close sqlite: %v", err)
	}

	viper.Set("store.backend", "sqlite")
	viper.Set("store.path", path)
	viper.Set("notify.backend", "none")
	t.Cleanup(func() {
		viper.Set("store.backend", "sqlite")
		viper.Set("store.path", "data/shortlist.db")
		viper.Set("notify.backend", "log")
	})

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	run("shortlist", "remove", "--job", "1", "--candidate", "2")

	var export shortlistExport
	if err := json.Unmarshal([]byte(run("shortlist", "list", "--job", "1", "--format", "json")), &export); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if export.JobID != "1" || len(export.Entries) != 1 {
		t.Fatalf("unexpected export: %+v", export)
	}
	if got := export.Entries[0]; got.CandidateID != "4" || !got.DecidedAt.Equal(decidedAt) {
		t.Fatalf("unexpected entry: %+v", got)
	}

	// removing again is not an error
	run("shortlist", "remove", "--job", "1", "--candidate", "2")

	if out := run("shortlist", "list", "--job", "9", "--format", "table"); out != "shortlist of job 9 is empty\n" {
		t.Fatalf("unexpected table output: %q", out)
	}
}

func TestPrintShortlistRejectsUnknownFormat(t *testing.T) {
	d := &deps{shortlist: shortlist.NewService(shortlist.NewMemoryStore(), nil, nil)}

	var out bytes.Buffer
	if err := printShortlist(context.Background(), &out, d, "1", "xml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
