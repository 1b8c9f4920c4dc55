package database

import "errors"

// Operation-level failures are ordinary return values, never panics:
// an absent key and a rejected duplicate are expected outcomes of normal
// use. Structural invariant violations are not represented here; those
// are programming errors and panic.
var (
	// ErrKeyNotFound is returned by Find and the boundary lookups when no
	// entry with the given key exists.
	ErrKeyNotFound = errors.New("key not found")

	// ErrDuplicateKey is returned by Insert when an entry with the given
	// key already exists. Inserts are rejected, never silently overwritten.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrEmptyIndex is returned by FirstKey/LastKey and cursor
	// construction when the index holds no entries.
	ErrEmptyIndex = errors.New("index is empty")
)
