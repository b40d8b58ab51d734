package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
)

type minScoreFilter struct {
	enabled bool
	reason  string
	min     int
}

// NewMinScore creates a filter that drops results scoring below the matching threshold.
// A non-positive threshold disables the step.
func NewMinScore(minScore int) Filter {
	f := &minScoreFilter{enabled: true, min: minScore}
	if minScore <= 0 {
		f.Disable("no matching threshold configured")
	}
	return f
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *minScoreFilter) IsEnabled() bool { return f.enabled }

func (f *minScoreFilter) Validate() error {
	if f.min > 100 {
		return fmt.Errorf("%w: threshold %d is above 100", recruit.ErrInvalidInput, f.min)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, in []scoring.Ranked) ([]scoring.Ranked, Step, error) {
	out, step := keep(in, func(r scoring.Ranked) bool {
		return r.Score >= f.min
	})
	return out, step, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.enabled,
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.Itoa(f.min)},
	}
}
