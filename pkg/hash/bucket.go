package hash

import (
	"fmt"
	"io"

	"relidx/pkg/database"
	"relidx/pkg/entry"
)

// bucket is a fixed-capacity array of key-value slots plus an overflow
// link. Slots are unordered; lookups scan them linearly. The overflow
// link forms a singly linked chain owned by the home bucket.
type bucket[K database.Keyed[K], V any] struct {
	slots    []entry.Entry[K, V] // len(slots) never exceeds cap(slots)
	overflow *bucket[K, V]
}

// newBucket constructs an empty bucket holding up to capacity entries.
func newBucket[K database.Keyed[K], V any](capacity int) *bucket[K, V] {
	return &bucket[K, V]{slots: make([]entry.Entry[K, V], 0, capacity)}
}

// numKeys returns the number of entries in this bucket's primary slots.
func (bucket *bucket[K, V]) numKeys() int {
	return len(bucket.slots)
}

// isFull returns whether every primary slot is occupied.
func (bucket *bucket[K, V]) isFull() bool {
	return len(bucket.slots) == cap(bucket.slots)
}

// find scans this bucket's primary slots for an entry with the given key.
func (bucket *bucket[K, V]) find(key K) (entry.Entry[K, V], bool) {
	for _, e := range bucket.slots {
		if e.Key.Compare(key) == 0 {
			return e, true
		}
	}
	return entry.Entry[K, V]{}, false
}

// put places an entry into the first free primary slot. The caller must
// have checked isFull.
func (bucket *bucket[K, V]) put(e entry.Entry[K, V]) {
	bucket.slots = append(bucket.slots, e)
}

// Print writes a string representation of this bucket's primary slots to
// the specified writer.
func (bucket *bucket[K, V]) Print(w io.Writer) {
	for i := 0; i < cap(bucket.slots); i++ {
		if i < len(bucket.slots) {
			fmt.Fprintf(w, "[ %v ] ", bucket.slots[i].Key)
		} else {
			io.WriteString(w, "[ nil ] ")
		}
	}
}
