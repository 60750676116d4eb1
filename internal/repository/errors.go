package repository

import "errors"

// ErrNotFound is returned when a single-entity query (a stored session or a
// history entry) finds nothing. Callers translate it into app_errors.ErrNotFound
// so the service layer never sees driver errors such as sql.ErrNoRows or redis.Nil.
var ErrNotFound = errors.New("repository: not found")
