package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/spigell/recruit-matcher/internal/filtering"
	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
	"github.com/spigell/recruit-matcher/internal/session"
)

func TestSelectItemsFollowFlagFilters(t *testing.T) {
	engine, err := scoring.New(scoring.DefaultConfig())
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}

	job := recruit.Job{ID: "j1", Title: "Go Developer", RequiredSkills: []string{"Go"}}
	pool := []recruit.Candidate{
		{ID: "1", Name: "Ann", Role: "Engineer", Skills: []string{"Go"}},
		{ID: "2", Name: "Ben", Role: "Designer"},
		{ID: "3", Name: "Cid", Role: "Engineer"},
	}

	sess, err := session.Start(context.Background(), engine, job, pool, session.Options{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := sess.Select("1"); err != nil {
		t.Fatalf("select: %v", err)
	}

	pipeline := filtering.New([]filtering.Filter{
		filtering.NewQuery("engineer"),
		filtering.NewMinScore(0),
		filtering.NewSkills([]string{"go"}),
	}, nil)
	results, _, err := pipeline.RunFilters(context.Background(), sess.Results())
	if err != nil {
		t.Fatalf("run filters: %v", err)
	}

	items := selectItems(sess, results)
	if len(items) != 2 {
		t.Fatalf("expected the filtered candidate and back, got %q", items)
	}
	if !strings.HasPrefix(items[0], "[x] 1 Ann") {
		t.Fatalf("unexpected first item: %q", items[0])
	}
	if items[1] != PromptBack {
		t.Fatalf("expected %q last, got %q", PromptBack, items[1])
	}
}
