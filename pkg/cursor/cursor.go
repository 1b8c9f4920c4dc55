package cursor

import (
	"relidx/pkg/entry"
)

// Cursor provides an interface for iterating over the entries of an index
// one at a time, in whatever order the index stores them.
type Cursor[K any, V any] interface {
	// Next moves the cursor ahead by one entry. Returns true if the end of
	// the index was reached.
	Next() (atEnd bool)

	// GetEntry returns the entry the cursor currently points at.
	GetEntry() (entry.Entry[K, V], error)

	// Close releases the cursor once it is no longer being used.
	Close()
}
