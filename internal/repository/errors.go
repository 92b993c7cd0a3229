package repository

import "errors"

// ErrNotFound is returned by all repositories when the requested row does not
// exist. Postgres implementations wrap sql.ErrNoRows into it so callers can
// use errors.Is without importing database/sql.
var ErrNotFound = errors.New("not found")
