package shortlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/recruit-matcher/internal/logger"
	"github.com/spigell/recruit-matcher/internal/notify"
	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/session"
)

// Service validates confirmations against a session and writes them to the store.
// It is transport agnostic and safe for concurrent use.
type Service struct {
	store     Store
	publisher notify.Publisher
	logger    *zap.Logger
	locks     *jobLocks
	now       func() time.Time
}

func NewService(store Store, publisher notify.Publisher, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger.WithFields(log),
		locks:     newJobLocks(),
		now:       time.Now,
	}
}

// Confirm writes every id of candidateIDs to the shortlist of the session's job.
// All ids must be ranked and selected in sess; otherwise nothing is written and
// the returned error joins one cause per offending id.
func (s *Service) Confirm(ctx context.Context, sess *session.Session, candidateIDs []string) ([]Entry, error) {
	if sess == nil {
		return nil, recruit.Invalid("session", "is required")
	}
	if len(candidateIDs) == 0 {
		return nil, recruit.Invalid("candidate ids", "at least one candidate must be confirmed")
	}

	ids := make([]string, 0, len(candidateIDs))
	seen := make(map[string]bool, len(candidateIDs))
	var problems []error
	for _, id := range candidateIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		switch _, ok := sess.Lookup(id); {
		case !ok:
			problems = append(problems, fmt.Errorf("confirm %q: %w", id, recruit.ErrUnknownCandidate))
		case !sess.IsSelected(id):
			problems = append(problems, fmt.Errorf("confirm %q: %w", id, recruit.ErrNotSelected))
		default:
			ids = append(ids, id)
		}
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	jobID := sess.JobID()
	decidedAt := s.now().UTC()
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, Entry{JobID: jobID, CandidateID: id, DecidedAt: decidedAt})
	}

	unlock := s.locks.lock(jobID)
	err := s.store.Put(ctx, entries)
	unlock()
	if err != nil {
		return nil, fmt.Errorf("confirm shortlist for job %q: %w", jobID, err)
	}

	sess.MarkConfirmed()

	log := s.logger.With(logger.SessionFields(sess.ID(), jobID)...)
	log.Info("shortlist confirmed", zap.Strings("candidates", ids))

	for _, e := range entries {
		event := notify.Event{
			Type:        notify.EventCandidateShortlisted,
			JobID:       e.JobID,
			CandidateID: e.CandidateID,
			DecidedAt:   e.DecidedAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Warn("publish shortlist event failed", zap.String(logger.FieldCandidate, e.CandidateID), zap.Error(err))
		}
	}

	return entries, nil
}

// Remove deletes one entry. Removing a missing entry succeeds.
func (s *Service) Remove(ctx context.Context, jobID, candidateID string) error {
	if strings.TrimSpace(jobID) == "" {
		return recruit.Invalid("job id", "is required")
	}
	if strings.TrimSpace(candidateID) == "" {
		return recruit.Invalid("candidate id", "is required")
	}

	unlock := s.locks.lock(jobID)
	defer unlock()

	if err := s.store.Delete(ctx, jobID, candidateID); err != nil {
		return fmt.Errorf("remove %q from shortlist of job %q: %w", candidateID, jobID, err)
	}

	s.logger.Info("shortlist entry removed", logger.MatchFields(jobID, candidateID)...)
	return nil
}

// List returns the shortlist of a job ordered by candidate id.
func (s *Service) List(ctx context.Context, jobID string) ([]Entry, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, recruit.Invalid("job id", "is required")
	}

	entries, err := s.store.List(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list shortlist of job %q: %w", jobID, err)
	}
	return entries, nil
}
