package repository

import "errors"

// ErrNotFound is the repository-level sentinel returned when a session id
// does not exist for the requesting user. The service layer translates it
// into the domain-level not-found error, so callers can tell "removed" and
// "was never there" apart without knowing the storage backend.
var ErrNotFound = errors.New("repository: not found")
