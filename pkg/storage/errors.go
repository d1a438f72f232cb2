package storage

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a referenced user or message does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a username is already taken.
	ErrConflict = errors.New("already exists")
)
