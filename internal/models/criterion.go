package models

import "time"

// Criterion is a named text-transformation rule. FlipLabel marks rules whose
// application inverts the expected acceptability of the statement.
type Criterion struct {
	Name      string    `db:"name" json:"name"`
	Prompt    string    `db:"prompt" json:"prompt"`
	FlipLabel bool      `db:"flip_label" json:"flip_label"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
}
