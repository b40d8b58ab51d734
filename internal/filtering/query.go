package filtering

import (
	"context"
	"strings"

	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
)

// Query returns the results whose candidate name, role or any skill contains
// text, ignoring case. An empty query keeps everything. The input is not modified.
func Query(in []scoring.Ranked, text string) []scoring.Ranked {
	out, _ := keep(in, func(r scoring.Ranked) bool {
		return Matches(&r.Candidate, text)
	})
	return out
}

// Matches reports whether the candidate's name, role or a skill tag contains text.
func Matches(c *recruit.Candidate, text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return true
	}

	if strings.Contains(strings.ToLower(c.Name), needle) || strings.Contains(strings.ToLower(c.Role), needle) {
		return true
	}

	for _, skill := range c.Skills {
		if strings.Contains(strings.ToLower(skill), needle) {
			return true
		}
	}

	return false
}

type queryFilter struct {
	enabled bool
	reason  string
	text    string
}

// NewQuery creates a filter that keeps candidates matching a free-text query.
func NewQuery(text string) Filter {
	return &queryFilter{enabled: true, text: strings.TrimSpace(text)}
}

func (f *queryFilter) Name() string { return "query" }

func (f *queryFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *queryFilter) IsEnabled() bool { return f.enabled }

func (f *queryFilter) Validate() error { return nil }

func (f *queryFilter) Apply(_ context.Context, in []scoring.Ranked) ([]scoring.Ranked, Step, error) {
	out, step := keep(in, func(r scoring.Ranked) bool {
		return Matches(&r.Candidate, f.text)
	})
	return out, step, nil
}

func (f *queryFilter) Status() Status {
	details := map[string]string{}
	if f.text != "" {
		details["query"] = f.text
	}
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason, Details: details}
}
