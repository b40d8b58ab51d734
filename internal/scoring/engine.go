package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/recruit-matcher/internal/recruit"
)

// Engine scores candidates against jobs. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	cfg Config
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Score computes the fit of candidate for job. The result depends only on the
// two inputs and the engine config.
func (e *Engine) Score(candidate recruit.Candidate, job recruit.Job) (MatchResult, error) {
	if err := job.Validate(); err != nil {
		return MatchResult{}, fmt.Errorf("job %q: %w", job.ID, err)
	}
	if err := candidate.Validate(); err != nil {
		return MatchResult{}, fmt.Errorf("candidate %q: %w", candidate.ID, err)
	}

	skills, matched, missing := skillsScore(candidate.Skills, job.RequiredSkills)
	experience := experienceScore(candidate.Experience, job.MinExperience)
	education := educationScore(candidate.EducationLevel(), job.EducationLevel(), e.cfg.EducationPenalty)

	w := e.cfg.Weights
	total := math.Round(w.Skills*skills + w.Experience*experience + w.Education*education)

	return MatchResult{
		CandidateID:   candidate.ID,
		JobID:         job.ID,
		Score:         int(clamp(total)),
		Skills:        skills,
		Experience:    experience,
		Education:     education,
		MatchedSkills: matched,
		MissingSkills: missing,
	}, nil
}

// skillsScore is the share of distinct required skills the candidate has.
// Tags compare case-insensitively. No requirements is a vacuous full match.
func skillsScore(have, required []string) (float64, []string, []string) {
	owned := make(map[string]bool, len(have))
	for _, s := range have {
		owned[normalizeTag(s)] = true
	}

	matched := make([]string, 0, len(required))
	missing := make([]string, 0)
	seen := make(map[string]bool, len(required))
	for _, s := range required {
		key := normalizeTag(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if owned[key] {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}

	if len(seen) == 0 {
		return 100, matched, missing
	}

	return clamp(100 * float64(len(matched)) / float64(len(seen))), matched, missing
}

func experienceScore(years, minYears float64) float64 {
	if minYears <= 0 {
		return 100
	}
	return clamp(100 * years / minYears)
}

func educationScore(have, want recruit.EducationLevel, penalty float64) float64 {
	if have >= want {
		return 100
	}
	return clamp(100 - penalty*float64(want-have))
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
