// Package api exposes the matching core over JSON/HTTP.
//
// Routes:
//
//	GET    /health
//	GET    /jobs                                  → jobs of the dataset
//	POST   /sessions                              → score a pool against a job
//	GET    /sessions/{id}?q=&min_score=&skills=   → ranked results, filtered
//	DELETE /sessions/{id}                         → discard a session
//	POST   /sessions/{id}/select                  → add a candidate to the selection
//	POST   /sessions/{id}/deselect                → remove a candidate from the selection
//	POST   /sessions/{id}/confirm                 → write selected candidates to the shortlist
//	GET    /shortlists/{jobId}                    → shortlist of a job
//	DELETE /shortlists/{jobId}/{candidateId}      → remove a shortlist entry
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/recruit-matcher/internal/ai"
	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
	"github.com/spigell/recruit-matcher/internal/session"
	"github.com/spigell/recruit-matcher/internal/shortlist"
)

const shutdownTimeout = 10 * time.Second

// Deps are the components served by the API. Explainer is optional.
type Deps struct {
	Dataset   *recruit.Dataset
	Engine    *scoring.Engine
	Sessions  *session.Registry
	Shortlist *shortlist.Service
	Explainer ai.Explainer
	// Session defaults applied when a request leaves them unset.
	SessionOptions session.Options
	ExplainTop     int
	Logger         *zap.Logger
}

type Server struct {
	deps   Deps
	logger *zap.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.SessionOptions.Logger == nil {
		deps.SessionOptions.Logger = logger
	}
	return &Server{deps: deps, logger: logger}
}

// Routes mounts every route on a new mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		jsonOK(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /jobs", s.listJobs)

	mux.HandleFunc("POST /sessions", s.startSession)
	mux.HandleFunc("GET /sessions/{id}", s.getSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.discardSession)
	mux.HandleFunc("POST /sessions/{id}/select", s.selectCandidate)
	mux.HandleFunc("POST /sessions/{id}/deselect", s.deselectCandidate)
	mux.HandleFunc("POST /sessions/{id}/confirm", s.confirm)

	mux.HandleFunc("GET /shortlists/{jobId}", s.listShortlist)
	mux.HandleFunc("DELETE /shortlists/{jobId}/{candidateId}", s.removeShortlisted)

	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
