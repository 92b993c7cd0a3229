package models

import "time"

// User-provided ground truth for a test statement.
const (
	GroundTruthAcceptable   = "acceptable"
	GroundTruthUnacceptable = "unacceptable"
	GroundTruthUngraded     = "ungraded"
)

// AI assessment of a statement or perturbation.
const (
	AssessmentPass    = "pass"
	AssessmentFail    = "fail"
	AssessmentGrading = "grading"
	AssessmentUnknown = "unknown"
)

// Statement is a single test statement owned by a user+topic scope.
type Statement struct {
	ID           string     `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"-"`
	Topic        string     `db:"topic" json:"topic"`
	Text         string     `db:"text" json:"statement"`
	GroundTruth  string     `db:"ground_truth" json:"ground_truth"`
	AIAssessment string     `db:"ai_assessment" json:"ai_assessment"`
	Agreement    *bool      `db:"agreement" json:"agreement,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
}

// ValidGroundTruth reports whether v is one of the accepted ground truth values.
func ValidGroundTruth(v string) bool {
	switch v {
	case GroundTruthAcceptable, GroundTruthUnacceptable, GroundTruthUngraded:
		return true
	}
	return false
}
