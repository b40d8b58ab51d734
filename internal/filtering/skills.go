package filtering

import (
	"context"
	"strings"

	"github.com/spigell/recruit-matcher/internal/scoring"
)

type skillsFilter struct {
	enabled bool
	reason  string
	skills  []string
}

// NewSkills creates a filter that keeps candidates having every listed skill.
func NewSkills(skills []string) Filter {
	normalized := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			normalized = append(normalized, s)
		}
	}
	return &skillsFilter{enabled: true, skills: normalized}
}

func (f *skillsFilter) Name() string { return "skills" }

func (f *skillsFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *skillsFilter) IsEnabled() bool { return f.enabled }

func (f *skillsFilter) Validate() error { return nil }

func (f *skillsFilter) Apply(_ context.Context, in []scoring.Ranked) ([]scoring.Ranked, Step, error) {
	if len(f.skills) == 0 {
		return in, Step{Initial: len(in), Left: len(in)}, nil
	}

	out, step := keep(in, func(r scoring.Ranked) bool {
		owned := make(map[string]bool, len(r.Candidate.Skills))
		for _, s := range r.Candidate.Skills {
			owned[strings.ToLower(strings.TrimSpace(s))] = true
		}
		for _, want := range f.skills {
			if !owned[want] {
				return false
			}
		}
		return true
	})
	return out, step, nil
}

func (f *skillsFilter) Status() Status {
	details := map[string]string{}
	if len(f.skills) > 0 {
		details["skills"] = strings.Join(f.skills, ",")
	}
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason, Details: details}
}
