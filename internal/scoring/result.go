package scoring

import "github.com/spigell/recruit-matcher/internal/recruit"

// MatchResult is the derived fit of one candidate for one job. It is
// recomputed on demand and never persisted.
type MatchResult struct {
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	Score       int    `json:"score"`
	// Sub-scores, each within [0,100].
	Skills     float64 `json:"skills_score"`
	Experience float64 `json:"experience_score"`
	Education  float64 `json:"education_score"`
	// Rank is the 1-based position inside a session; zero outside of one.
	Rank int `json:"rank"`

	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`

	// Annotations from an AI explainer. They never influence Score.
	KeyPoints    []string `json:"key_points,omitempty"`
	ExplainError string   `json:"explain_error,omitempty"`
}

// Stars converts the score into the dashboard's five star rating, in half steps.
func (r MatchResult) Stars() float64 {
	switch {
	case r.Score >= 90:
		return 5
	case r.Score >= 80:
		return 4.5
	case r.Score >= 70:
		return 4
	case r.Score >= 60:
		return 3.5
	default:
		return 3
	}
}

// Ranked pairs a result with the candidate it was computed for.
type Ranked struct {
	Candidate recruit.Candidate `json:"candidate"`
	MatchResult
}
