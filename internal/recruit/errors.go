package recruit

import (
	"errors"
	"fmt"
)

// Error kinds shared by every matching component. Callers match them with errors.Is.
var (
	// ErrInvalidInput marks malformed candidate, job or request data. Not retryable.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownCandidate is returned when a candidate id is not part of the result set.
	ErrUnknownCandidate = errors.New("unknown candidate")
	// ErrUnknownJob is returned when a job id cannot be resolved.
	ErrUnknownJob = errors.New("unknown job")
	// ErrNotSelected is returned when confirming a candidate that was never selected.
	ErrNotSelected = errors.New("candidate is not selected")
	// ErrStoreConflict is returned when a concurrent write raced on the same job's shortlist.
	// The caller may retry after re-reading.
	ErrStoreConflict = errors.New("shortlist store conflict")
)

// ValidationError describes a single malformed field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Retryable reports whether the operation that produced err may be retried as is.
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreConflict)
}
