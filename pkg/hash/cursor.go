package hash

import (
	"errors"

	"relidx/pkg/cursor"
	"relidx/pkg/database"
	"relidx/pkg/entry"
)

// HashCursor points to a spot in the hash table: a slot within a bucket
// somewhere in the directory, overflow chains included.
type HashCursor[K database.Keyed[K], V any] struct {
	table     *Table[K, V]
	bucketIdx int // position in the bucket directory
	curBucket *bucket[K, V]
	cellnum   int // position within curBucket's slots
}

// CursorAtStart returns a cursor to the first entry in the hash index, or
// ErrEmptyIndex if there are none. Positioning happens under the read
// lock; the returned cursor then holds no lock, so do not mutate the
// index while iterating.
func (index *Index[K, V]) CursorAtStart() (cursor.Cursor[K, V], error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	c := &HashCursor[K, V]{table: index.table, curBucket: index.table.buckets[0]}
	// If bucket 0 is empty, move to the first non-empty bucket.
	if c.curBucket.numKeys() == 0 {
		if c.Next() {
			return nil, database.ErrEmptyIndex
		}
	}
	return c, nil
}

// Next moves the cursor ahead by one entry.
// Returns true if we reach the end of the index.
func (cursor *HashCursor[K, V]) Next() bool {
	// Move within the current bucket if we can.
	if cursor.cellnum+1 < cursor.curBucket.numKeys() {
		cursor.cellnum++
		return false
	}
	// Otherwise advance along the overflow chain, then down the directory,
	// until a non-empty bucket turns up.
	b := cursor.curBucket.overflow
	for {
		if b == nil {
			cursor.bucketIdx++
			if cursor.bucketIdx >= len(cursor.table.buckets) {
				return true
			}
			b = cursor.table.buckets[cursor.bucketIdx]
		}
		if b.numKeys() > 0 {
			cursor.curBucket = b
			cursor.cellnum = 0
			return false
		}
		b = b.overflow
	}
}

// GetEntry returns the entry currently pointed to by the cursor.
func (cursor *HashCursor[K, V]) GetEntry() (entry.Entry[K, V], error) {
	if cursor.curBucket.numKeys() == 0 {
		return entry.Entry[K, V]{}, errors.New("getEntry: cursor is in an empty bucket")
	}
	if cursor.cellnum >= cursor.curBucket.numKeys() {
		return entry.Entry[K, V]{}, errors.New("getEntry: cursor is not pointing at a valid entry")
	}
	return cursor.curBucket.slots[cursor.cellnum], nil
}

// Close is called when we no longer need the cursor. The hash cursor
// holds no resources, so there is nothing to release.
func (cursor *HashCursor[K, V]) Close() {}
