// Package ai describes optional model-backed annotations of match results.
// Explanations never feed back into scores or ranking.
package ai

import (
	"context"

	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
)

type Explanation struct {
	Summary   string
	KeyPoints []string
	Raw       string
}

type Explainer interface {
	Explain(ctx context.Context, candidate recruit.Candidate, job recruit.Job, result scoring.MatchResult) (*Explanation, error)
}
