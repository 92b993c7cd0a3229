package models

import "time"

// Validity of a perturbation: whether the AI assessment of the perturbed text
// matched the expected (possibly flipped) ground truth. Ungraded is only the
// seed state of rows that have never been compared.
const (
	ValidityApproved = "approved"
	ValidityDenied   = "denied"
	ValidityUngraded = "ungraded"
)

// Perturbation is the result of applying a criterion to a statement, plus the
// AI assessment of the perturbed text. Its ID is a deterministic function of
// (OriginalID, Criterion) so regeneration overwrites instead of duplicating.
type Perturbation struct {
	ID           string    `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"-"`
	OriginalID   string    `db:"original_id" json:"original_id"`
	Text         string    `db:"text" json:"title"`
	AIAssessment string    `db:"ai_assessment" json:"label"`
	Criterion    string    `db:"criterion" json:"type"`
	Topic        string    `db:"topic" json:"topic"`
	GroundTruth  string    `db:"ground_truth" json:"ground_truth"`
	Validity     string    `db:"validity" json:"validity"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ValidValidation reports whether v is a value callers may set on a perturbation.
func ValidValidation(v string) bool {
	return v == ValidityApproved || v == ValidityDenied
}
