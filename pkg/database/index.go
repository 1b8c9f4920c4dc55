// Package database defines the contract the table layer programs against.
// Both index implementations (hash and btree) satisfy Index; the btree
// additionally satisfies OrderedIndex. A table's index can be swapped
// between the two without touching the collaborator.
package database

import (
	"io"

	"relidx/pkg/cursor"
	"relidx/pkg/entry"
	"relidx/pkg/monitor"
)

// IndexType represents either a B+Tree or a Hash Table.
type IndexType string

const (
	BTreeIndexType IndexType = "btree"
	HashIndexType  IndexType = "hash"
)

// Ordered constrains key types to those carrying a total order.
type Ordered[K any] interface {
	// Compare returns a negative number, zero, or a positive number when
	// the receiver is less than, equal to, or greater than other.
	Compare(other K) int
}

// Keyed constrains key types usable by the hash index: ordered keys with
// a stable byte encoding consistent with equality.
type Keyed[K any] interface {
	Ordered[K]
	Bytes() []byte
}

// Index is the capability set every index exposes to the table layer.
type Index[K any, V any] interface {
	GetName() string
	Find(K) (entry.Entry[K, V], error)
	Insert(K, V) error
	Select() ([]entry.Entry[K, V], error)
	Size() int
	Stats() monitor.Snapshot
	Print(io.Writer)
	CursorAtStart() (cursor.Cursor[K, V], error)
}

// OrderedIndex extends Index with the sorted-map operations only the
// btree supports.
type OrderedIndex[K any, V any] interface {
	Index[K, V]
	FirstKey() (K, error)
	LastKey() (K, error)
	SelectRange(start K, end K) ([]entry.Entry[K, V], error)
	CursorAt(K) (cursor.Cursor[K, V], error)
}
