package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/session"
)

type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// statusFor maps error kinds to HTTP status codes. Invalid input wins over
// lookup failures when a joined error carries several kinds.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, recruit.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "unknown_session"
	case errors.Is(err, recruit.ErrUnknownJob):
		return http.StatusNotFound, "unknown_job"
	case errors.Is(err, recruit.ErrUnknownCandidate):
		return http.StatusNotFound, "unknown_candidate"
	case errors.Is(err, recruit.ErrNotSelected):
		return http.StatusConflict, "not_selected"
	case errors.Is(err, recruit.ErrStoreConflict):
		return http.StatusConflict, "store_conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func jsonOK(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) jsonError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}

	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}

	jsonOK(w, code, errorBody{Error: msg, Kind: kind, Retryable: recruit.Retryable(err)})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return recruit.Invalid("request body", "%v", err)
	}
	return nil
}
