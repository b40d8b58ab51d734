package scoring

import (
	"math"

	"github.com/spigell/recruit-matcher/internal/recruit"
)

const weightTolerance = 1e-9

// Weights split the overall score between the three sub-scores. They must sum to 1.
type Weights struct {
	Skills     float64 `mapstructure:"skills" json:"skills"`
	Experience float64 `mapstructure:"experience" json:"experience"`
	Education  float64 `mapstructure:"education" json:"education"`
}

// Config is the tunable part of the engine. It is passed in at session start
// and never read from global state.
type Config struct {
	Weights Weights `mapstructure:"weights" json:"weights"`
	// EducationPenalty is deducted from the education sub-score for every level
	// the candidate is below the job's implied level.
	EducationPenalty float64 `mapstructure:"education-penalty" json:"education_penalty"`
}

// DefaultConfig returns skills 0.5, experience 0.3, education 0.2 with a
// 20 point deduction per missing education level.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Skills:     0.5,
			Experience: 0.3,
			Education:  0.2,
		},
		EducationPenalty: 20,
	}
}

func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{"skills": w.Skills, "experience": w.Experience, "education": w.Education} {
		if math.IsNaN(v) || v < 0 {
			return recruit.Invalid("scoring weight "+name, "must be a non-negative number, got %v", v)
		}
	}

	if sum := w.Skills + w.Experience + w.Education; math.Abs(sum-1) > weightTolerance {
		return recruit.Invalid("scoring weights", "must sum to 1, got %.4f", sum)
	}

	if math.IsNaN(c.EducationPenalty) || c.EducationPenalty < 0 || c.EducationPenalty > 100 {
		return recruit.Invalid("scoring education-penalty", "must be within [0,100], got %v", c.EducationPenalty)
	}

	return nil
}
