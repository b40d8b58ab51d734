package recruit

import (
	"fmt"
	"math"
	"strings"
)

// Job is an open position candidates are matched against.
type Job struct {
	ID             string   `json:"id" mapstructure:"id"`
	Title          string   `json:"title" mapstructure:"title"`
	Company        string   `json:"company" mapstructure:"company"`
	Location       string   `json:"location" mapstructure:"location"`
	RequiredSkills []string `json:"required_skills" mapstructure:"required_skills"`
	MinExperience  float64  `json:"min_experience" mapstructure:"min_experience"`
	// MinEducation is the implied degree for the role. Empty means no requirement.
	MinEducation string `json:"min_education,omitempty" mapstructure:"min_education"`
}

// Validate checks the fields read by the scoring engine.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.ID) == "" {
		return Invalid("job id", "is required")
	}
	if math.IsNaN(j.MinExperience) || math.IsInf(j.MinExperience, 0) {
		return Invalid("job min_experience", "must be a finite number, got %v", j.MinExperience)
	}
	if j.MinExperience < 0 {
		return Invalid("job min_experience", "must not be negative, got %v", j.MinExperience)
	}
	return nil
}

func (j *Job) EducationLevel() EducationLevel {
	return ParseEducation(j.MinEducation)
}

type Jobs struct {
	Items []*Job
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

// Get returns the job with the given id or ErrUnknownJob.
func (j *Jobs) Get(id string) (*Job, error) {
	for _, job := range j.Items {
		if job.ID == id {
			return job, nil
		}
	}
	return nil, &lookupError{kind: ErrUnknownJob, id: id}
}

func (j *Jobs) Titles() []string {
	titles := make([]string, 0, len(j.Items))
	for _, job := range j.Items {
		titles = append(titles, job.Title)
	}
	return titles
}

type lookupError struct {
	kind error
	id   string
}

func (e *lookupError) Error() string { return fmt.Sprintf("%s %q", e.kind, e.id) }

func (e *lookupError) Unwrap() error { return e.kind }
