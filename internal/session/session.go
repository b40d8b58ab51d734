// Package session runs the scoring engine over a candidate pool for one job
// and keeps the ranked result set together with the caller's selection.
//
// A Session belongs to a single caller interaction and is not safe for
// concurrent use. Use Registry when sessions are shared by request handlers.
package session

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/recruit-matcher/internal/filtering"
	"github.com/spigell/recruit-matcher/internal/logger"
	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
)

// State of a session. Selection toggles keep a session in Scored; Confirmed is
// reached after the first successful confirmation and stays mutable.
type State int

const (
	StateEmpty State = iota
	StateScored
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateScored:
		return "scored"
	case StateConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Options tune a single session run.
type Options struct {
	// Workers bounds parallel scoring. Defaults to GOMAXPROCS.
	Workers int
	// AutoSelectAbove pre-selects every result scoring at or above the value.
	// Zero disables auto selection.
	AutoSelectAbove int
	Logger          *zap.Logger
}

// Skipped is a pool entry that could not be scored.
type Skipped struct {
	CandidateID string `json:"candidate_id"`
	Reason      string `json:"reason"`
	Err         error  `json:"-"`
}

type Session struct {
	id        string
	job       recruit.Job
	createdAt time.Time
	state     State

	ranked   []scoring.Ranked
	index    map[string]int
	selected map[string]struct{}
	skipped  []Skipped
}

// Start scores every candidate of pool against job and returns the ranked session.
// Malformed or duplicated candidates are skipped and reported by Skipped; an
// invalid job fails the whole call. Cancelling ctx discards the computation.
func Start(ctx context.Context, engine *scoring.Engine, job recruit.Job, pool []recruit.Candidate, opts Options) (*Session, error) {
	log := logger.WithFields(opts.Logger)

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	s := &Session{
		id:        uuid.NewString(),
		job:       job,
		createdAt: time.Now(),
		state:     StateEmpty,
		index:     make(map[string]int, len(pool)),
		selected:  make(map[string]struct{}),
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*scoring.Ranked, len(pool))
	errs := make([]error, len(pool))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range pool {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := engine.Score(pool[i], job)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = &scoring.Ranked{Candidate: pool[i], MatchResult: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	// The first well-formed occurrence of an id is ranked; a malformed one
	// never shadows a later valid record.
	s.ranked = make([]scoring.Ranked, 0, len(pool))
	for i := range pool {
		switch {
		case errs[i] != nil:
			s.skipped = append(s.skipped, Skipped{CandidateID: pool[i].ID, Reason: errs[i].Error(), Err: errs[i]})
		case s.has(pool[i].ID):
			s.skipped = append(s.skipped, Skipped{
				CandidateID: pool[i].ID,
				Reason:      "duplicate candidate id",
				Err:         recruit.Invalid("candidate id", "%q appears more than once in the pool", pool[i].ID),
			})
		default:
			s.index[pool[i].ID] = len(s.ranked)
			s.ranked = append(s.ranked, *results[i])
		}
	}

	sort.SliceStable(s.ranked, func(a, b int) bool {
		if s.ranked[a].Score != s.ranked[b].Score {
			return s.ranked[a].Score > s.ranked[b].Score
		}
		return s.ranked[a].CandidateID < s.ranked[b].CandidateID
	})

	for i := range s.ranked {
		s.ranked[i].Rank = i + 1
		s.index[s.ranked[i].CandidateID] = i
	}

	s.state = StateScored

	for _, skipped := range s.skipped {
		log.Warn("candidate skipped", append(logger.MatchFields(job.ID, skipped.CandidateID),
			zap.String("reason", skipped.Reason),
		)...)
	}

	if opts.AutoSelectAbove > 0 {
		for _, r := range s.ranked {
			if r.Score >= opts.AutoSelectAbove {
				s.selected[r.CandidateID] = struct{}{}
			}
		}
	}

	log.Info("session scored", append(logger.SessionFields(s.id, job.ID),
		zap.Int("pool", len(pool)),
		zap.Int("ranked", len(s.ranked)),
		zap.Int("skipped", len(s.skipped)),
		zap.Int("auto_selected", len(s.selected)),
	)...)

	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) has(candidateID string) bool {
	_, ok := s.index[candidateID]
	return ok
}

func (s *Session) JobID() string { return s.job.ID }

func (s *Session) Job() recruit.Job { return s.job }

func (s *Session) State() State { return s.state }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) Len() int { return len(s.ranked) }

// Results returns a copy of the ranked result set.
func (s *Session) Results() []scoring.Ranked {
	out := make([]scoring.Ranked, len(s.ranked))
	copy(out, s.ranked)
	return out
}

func (s *Session) Skipped() []Skipped {
	out := make([]Skipped, len(s.skipped))
	copy(out, s.skipped)
	return out
}

// Lookup returns the ranked entry of a candidate.
func (s *Session) Lookup(candidateID string) (scoring.Ranked, bool) {
	idx, ok := s.index[candidateID]
	if !ok {
		return scoring.Ranked{}, false
	}
	return s.ranked[idx], true
}

// Select adds a candidate to the selection. Selecting twice is a no-op.
func (s *Session) Select(candidateID string) error {
	if _, ok := s.index[candidateID]; !ok {
		return fmt.Errorf("select %q: %w", candidateID, recruit.ErrUnknownCandidate)
	}
	s.selected[candidateID] = struct{}{}
	return nil
}

// Deselect removes a candidate from the selection. Deselecting an unselected
// candidate is a no-op.
func (s *Session) Deselect(candidateID string) error {
	if _, ok := s.index[candidateID]; !ok {
		return fmt.Errorf("deselect %q: %w", candidateID, recruit.ErrUnknownCandidate)
	}
	delete(s.selected, candidateID)
	return nil
}

// Toggle flips the selection of a candidate and reports the new membership.
func (s *Session) Toggle(candidateID string) (bool, error) {
	if s.IsSelected(candidateID) {
		return false, s.Deselect(candidateID)
	}
	return true, s.Select(candidateID)
}

func (s *Session) IsSelected(candidateID string) bool {
	_, ok := s.selected[candidateID]
	return ok
}

// Selected returns the selected candidate ids in rank order.
func (s *Session) Selected() []string {
	ids := make([]string, 0, len(s.selected))
	for _, r := range s.ranked {
		if _, ok := s.selected[r.CandidateID]; ok {
			ids = append(ids, r.CandidateID)
		}
	}
	return ids
}

// Filter returns the results matching a free-text query in rank order. The
// session is left untouched.
func (s *Session) Filter(query string) []scoring.Ranked {
	return filtering.Query(s.ranked, query)
}

// MarkConfirmed records a successful shortlist confirmation.
func (s *Session) MarkConfirmed() {
	if s.state == StateScored {
		s.state = StateConfirmed
	}
}
