package models

import "time"

// Topic groups test statements under a shared grading prompt.
type Topic struct {
	Name      string    `db:"name" json:"name"`
	UserID    int64     `db:"user_id" json:"-"`
	Prompt    string    `db:"prompt" json:"prompt"`
	Default   bool      `db:"is_default" json:"default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
