package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/recruit-matcher/internal/ai"
	"github.com/spigell/recruit-matcher/internal/logger"
)

// Explain annotates the top results with key points from explainer. Failures
// are recorded on the result and never change scores or ranking. Only a done
// ctx stops the loop.
func (s *Session) Explain(ctx context.Context, explainer ai.Explainer, top int, log *zap.Logger) (int, error) {
	if explainer == nil {
		return 0, nil
	}
	log = logger.WithFields(log, logger.SessionFields(s.id, s.job.ID)...)

	if top <= 0 || top > len(s.ranked) {
		top = len(s.ranked)
	}

	explained := 0
	for i := 0; i < top; i++ {
		if err := ctx.Err(); err != nil {
			return explained, fmt.Errorf("explain results: %w", err)
		}

		r := &s.ranked[i]
		explanation, err := explainer.Explain(ctx, r.Candidate, s.job, r.MatchResult)
		if err != nil {
			r.ExplainError = err.Error()
			r.KeyPoints = nil
			log.Warn("explain failed", zap.String(logger.FieldCandidate, r.CandidateID), zap.Error(err))
			continue
		}

		r.ExplainError = ""
		r.KeyPoints = explanation.KeyPoints
		explained++
	}

	return explained, nil
}
