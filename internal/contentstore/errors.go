package contentstore

import "errors"

var (
	// ErrInvalidKey is returned when a course or usage key does not parse.
	ErrInvalidKey = errors.New("invalid key")
	// ErrNotFound is returned when the store has no block for a key.
	ErrNotFound = errors.New("block not found")
)
