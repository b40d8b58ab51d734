package recruit

import (
	"math"
	"strings"
)

// Candidate is an ingested applicant profile. The matching core never mutates it.
type Candidate struct {
	ID         string   `json:"id" mapstructure:"id"`
	Name       string   `json:"name" mapstructure:"name"`
	Email      string   `json:"email,omitempty" mapstructure:"email"`
	Role       string   `json:"role" mapstructure:"role"`
	Skills     []string `json:"skills" mapstructure:"skills"`
	Experience float64  `json:"experience" mapstructure:"experience"`
	Education  string   `json:"education" mapstructure:"education"`
	Location   string   `json:"location" mapstructure:"location"`
}

// Validate checks the fields read by the scoring engine.
func (c *Candidate) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return Invalid("candidate id", "is required")
	}
	if math.IsNaN(c.Experience) || math.IsInf(c.Experience, 0) {
		return Invalid("candidate experience", "must be a finite number, got %v", c.Experience)
	}
	if c.Experience < 0 {
		return Invalid("candidate experience", "must not be negative, got %v", c.Experience)
	}
	return nil
}

// EducationLevel returns the ranked education of the candidate.
func (c *Candidate) EducationLevel() EducationLevel {
	return ParseEducation(c.Education)
}

type Candidates struct {
	Items []*Candidate
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) FindByID(id string) *Candidate {
	for _, candidate := range c.Items {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}

func (c *Candidates) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, candidate := range c.Items {
		ids = append(ids, candidate.ID)
	}
	return ids
}

// Pool returns value copies of the candidates, the form the matching session consumes.
// When ids is non-empty only those candidates are returned; unknown ids fail with ErrUnknownCandidate.
func (c *Candidates) Pool(ids ...string) ([]Candidate, error) {
	if len(ids) == 0 {
		pool := make([]Candidate, 0, len(c.Items))
		for _, candidate := range c.Items {
			pool = append(pool, *candidate)
		}
		return pool, nil
	}

	pool := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		candidate := c.FindByID(id)
		if candidate == nil {
			return nil, &lookupError{kind: ErrUnknownCandidate, id: id}
		}
		pool = append(pool, *candidate)
	}
	return pool, nil
}
