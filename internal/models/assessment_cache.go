package models

import "time"

// CachedAssessment stores the last grading decision for a statement under a
// specific model, keyed uniquely by (UserID, Topic, ModelID, StatementID).
type CachedAssessment struct {
	UserID       int64     `db:"user_id" json:"user_id"`
	Topic        string    `db:"topic" json:"topic"`
	ModelID      string    `db:"model_id" json:"model_id"`
	StatementID  string    `db:"statement_id" json:"statement_id"`
	Statement    string    `db:"statement" json:"statement"`
	AIAssessment string    `db:"ai_assessment" json:"ai_assessment"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
