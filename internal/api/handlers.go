package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/recruit-matcher/internal/filtering"
	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
	"github.com/spigell/recruit-matcher/internal/session"
	"github.com/spigell/recruit-matcher/internal/shortlist"
)

type startRequest struct {
	JobID string `json:"job_id"`
	// CandidateIDs restricts the pool. Empty scores the whole dataset.
	CandidateIDs    []string `json:"candidate_ids,omitempty"`
	AutoSelectAbove *int     `json:"auto_select_above,omitempty"`
	Explain         bool     `json:"explain,omitempty"`
}

type candidateRequest struct {
	CandidateID string `json:"candidate_id"`
}

type confirmRequest struct {
	CandidateIDs []string `json:"candidate_ids"`
}

type resultView struct {
	scoring.Ranked
	Stars    float64 `json:"stars"`
	Selected bool    `json:"selected"`
}

type sessionView struct {
	ID        string            `json:"id"`
	JobID     string            `json:"job_id"`
	Job       recruit.Job       `json:"job"`
	State     string            `json:"state"`
	CreatedAt time.Time         `json:"created_at"`
	Total     int               `json:"total"`
	Results   []resultView      `json:"results"`
	Selected  []string          `json:"selected"`
	Skipped   []session.Skipped `json:"skipped,omitempty"`
	Steps     []filtering.Step  `json:"steps,omitempty"`
}

type shortlistView struct {
	JobID   string            `json:"job_id"`
	Entries []shortlist.Entry `json:"entries"`
}

func viewOf(sess *session.Session, results []scoring.Ranked, steps []filtering.Step) sessionView {
	view := sessionView{
		ID:        sess.ID(),
		JobID:     sess.JobID(),
		Job:       sess.Job(),
		State:     sess.State().String(),
		CreatedAt: sess.CreatedAt(),
		Total:     sess.Len(),
		Results:   make([]resultView, 0, len(results)),
		Selected:  sess.Selected(),
		Skipped:   sess.Skipped(),
		Steps:     steps,
	}
	for _, r := range results {
		view.Results = append(view.Results, resultView{Ranked: r, Stars: r.Stars(), Selected: sess.IsSelected(r.CandidateID)})
	}
	return view
}

func (s *Server) listJobs(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, http.StatusOK, map[string]any{"jobs": s.deps.Dataset.Jobs.Items})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		s.jsonError(w, r, err)
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		s.jsonError(w, r, recruit.Invalid("job_id", "is required"))
		return
	}

	job, err := s.deps.Dataset.Jobs.Get(req.JobID)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}

	pool, err := s.deps.Dataset.Candidates.Pool(req.CandidateIDs...)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}

	opts := s.deps.SessionOptions
	if req.AutoSelectAbove != nil {
		if *req.AutoSelectAbove < 0 || *req.AutoSelectAbove > 100 {
			s.jsonError(w, r, recruit.Invalid("auto_select_above", "must be within [0,100], got %d", *req.AutoSelectAbove))
			return
		}
		opts.AutoSelectAbove = *req.AutoSelectAbove
	}

	sess, err := session.Start(r.Context(), s.deps.Engine, *job, pool, opts)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}

	if req.Explain && s.deps.Explainer != nil {
		if _, err := sess.Explain(r.Context(), s.deps.Explainer, s.deps.ExplainTop, s.logger); err != nil {
			s.jsonError(w, r, err)
			return
		}
	}

	s.deps.Sessions.Add(sess)
	jsonOK(w, http.StatusCreated, viewOf(sess, sess.Results(), nil))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	minScore := 0
	if raw := strings.TrimSpace(q.Get("min_score")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.jsonError(w, r, recruit.Invalid("min_score", "must be an integer, got %q", raw))
			return
		}
		minScore = v
	}

	var skills []string
	if raw := strings.TrimSpace(q.Get("skills")); raw != "" {
		skills = strings.Split(raw, ",")
	}

	pipeline := filtering.New([]filtering.Filter{
		filtering.NewQuery(q.Get("q")),
		filtering.NewMinScore(minScore),
		filtering.NewSkills(skills),
	}, s.logger)

	err := s.deps.Sessions.With(r.PathValue("id"), func(sess *session.Session) error {
		results, steps, err := pipeline.RunFilters(r.Context(), sess.Results())
		if err != nil {
			return err
		}
		jsonOK(w, http.StatusOK, viewOf(sess, results, steps))
		return nil
	})
	if err != nil {
		s.jsonError(w, r, err)
	}
}

func (s *Server) discardSession(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Sessions.Discard(r.PathValue("id")) {
		s.jsonError(w, r, session.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selectCandidate(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, (*session.Session).Select)
}

func (s *Server) deselectCandidate(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, (*session.Session).Deselect)
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request, apply func(*session.Session, string) error) {
	var req candidateRequest
	if err := decodeBody(r, &req); err != nil {
		s.jsonError(w, r, err)
		return
	}

	err := s.deps.Sessions.With(r.PathValue("id"), func(sess *session.Session) error {
		if err := apply(sess, req.CandidateID); err != nil {
			return err
		}
		jsonOK(w, http.StatusOK, map[string]any{"selected": sess.Selected()})
		return nil
	})
	if err != nil {
		s.jsonError(w, r, err)
	}
}

func (s *Server) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeBody(r, &req); err != nil {
		s.jsonError(w, r, err)
		return
	}

	err := s.deps.Sessions.With(r.PathValue("id"), func(sess *session.Session) error {
		entries, err := s.deps.Shortlist.Confirm(r.Context(), sess, req.CandidateIDs)
		if err != nil {
			return err
		}
		jsonOK(w, http.StatusOK, map[string]any{"state": sess.State().String(), "entries": entries})
		return nil
	})
	if err != nil {
		s.jsonError(w, r, err)
	}
}

func (s *Server) listShortlist(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	entries, err := s.deps.Shortlist.List(r.Context(), jobID)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, shortlistView{JobID: jobID, Entries: entries})
}

func (s *Server) removeShortlisted(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Shortlist.Remove(r.Context(), r.PathValue("jobId"), r.PathValue("candidateId")); err != nil {
		s.jsonError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
