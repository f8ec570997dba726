package repository

import "errors"

// ErrNotFound is returned when no identity record matches a lookup. Mongo
// driver errors are mapped to it at the repository boundary so callers never
// depend on driver sentinels.
var ErrNotFound = errors.New("identity record not found")
