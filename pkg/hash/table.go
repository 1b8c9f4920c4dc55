package hash

import (
	"fmt"
	"io"
	"log/slog"

	"relidx/pkg/database"
	"relidx/pkg/entry"
	"relidx/pkg/monitor"
)

// A Table is the bare Linear Hashing structure: a bucket directory that
// grows one bucket at a time instead of doubling all at once. The Index
// wrapper adds locking and the collaborator-facing surface.
//
// Growth state: mod1 is the stable bucket count of the current phase,
// mod2 = 2*mod1 the target, and split the cursor of the next bucket to
// rehash. The directory always holds exactly mod1 + split buckets.
type Table[K database.Keyed[K], V any] struct {
	slotCap int             // capacity of each bucket
	mod1    int             // modulus for low resolution hashing
	mod2    int             // modulus for high resolution hashing
	split   int             // index of the next bucket to split
	buckets []*bucket[K, V] // the bucket directory; only ever appended to
	hasher  Hasher
	stats   *monitor.IndexStats
	logger  *slog.Logger
}

// newTable constructs a Table with initialBuckets home buckets. The
// caller validates the geometry.
func newTable[K database.Keyed[K], V any](slotCap, initialBuckets int, hasher Hasher, stats *monitor.IndexStats, logger *slog.Logger) *Table[K, V] {
	buckets := make([]*bucket[K, V], initialBuckets)
	for i := range buckets {
		buckets[i] = newBucket[K, V](slotCap)
	}
	return &Table[K, V]{
		slotCap: slotCap,
		mod1:    initialBuckets,
		mod2:    2 * initialBuckets,
		buckets: buckets,
		hasher:  hasher,
		stats:   stats,
		logger:  logger,
	}
}

// Mod1 returns the low resolution modulus.
func (table *Table[K, V]) Mod1() int {
	return table.mod1
}

// Mod2 returns the high resolution modulus.
func (table *Table[K, V]) Mod2() int {
	return table.mod2
}

// SplitPointer returns the index of the next bucket scheduled to split.
func (table *Table[K, V]) SplitPointer() int {
	return table.split
}

// NumBuckets returns the current length of the bucket directory.
func (table *Table[K, V]) NumBuckets() int {
	return len(table.buckets)
}

// BucketSlots returns the slot capacity of each bucket.
func (table *Table[K, V]) BucketSlots() int {
	return table.slotCap
}

// hashLow reduces the key's hash with the low resolution modulus.
func (table *Table[K, V]) hashLow(key K) int {
	return int(table.hasher(key.Bytes()) % uint64(table.mod1))
}

// hashHigh reduces the key's hash with the high resolution modulus.
func (table *Table[K, V]) hashHigh(key K) int {
	return int(table.hasher(key.Bytes()) % uint64(table.mod2))
}

// address returns the directory index the key currently lives at. Buckets
// below the split cursor have already been rehashed this phase, so their
// entries answer to the high resolution address instead.
func (table *Table[K, V]) address(key K) int {
	i := table.hashLow(key)
	if i < table.split {
		i = table.hashHigh(key)
	}
	return i
}

// Find returns the entry with the given key, scanning the target bucket
// and its overflow chain linearly.
func (table *Table[K, V]) Find(key K) (entry.Entry[K, V], error) {
	for b := table.buckets[table.address(key)]; b != nil; b = b.overflow {
		table.stats.RecordRead()
		if e, found := b.find(key); found {
			return e, nil
		}
	}
	return entry.Entry[K, V]{}, database.ErrKeyNotFound
}

// Insert places a key-value pair into the table. Inserting a key that is
// already present is rejected with ErrDuplicateKey.
//
// If the target bucket's chain has a free slot the pair goes there and no
// structural change happens. If the whole chain is full, the pair goes
// into a freshly chained overflow bucket and the bucket at the split
// cursor (not necessarily the one that overflowed) is split.
func (table *Table[K, V]) Insert(key K, value V) error {
	home := table.buckets[table.address(key)]
	var free, last *bucket[K, V]
	for b := home; b != nil; b = b.overflow {
		table.stats.RecordRead()
		if _, found := b.find(key); found {
			table.stats.RecordDuplicate()
			table.logger.Debug("insert rejected: duplicate key", "key", key)
			return fmt.Errorf("insert %v: %w", key, database.ErrDuplicateKey)
		}
		if free == nil && !b.isFull() {
			free = b
		}
		last = b
	}
	if free != nil {
		free.put(entry.New(key, value))
		table.stats.RecordWrite()
		return nil
	}
	// The chain is full: extend it, then grow the directory by one bucket.
	overflow := newBucket[K, V](table.slotCap)
	overflow.put(entry.New(key, value))
	last.overflow = overflow
	table.stats.RecordWrite()
	table.splitNext()
	return nil
}

// splitNext rehashes the bucket at the split cursor. Entries whose low
// and high resolution addresses disagree move to a new bucket appended to
// the directory; the rest are re-packed primary-first, dropping overflow
// buckets that end up empty. Advances the cursor and rolls the growth
// phase over when it reaches mod1.
func (table *Table[K, V]) splitNext() {
	var kept, moved []entry.Entry[K, V]
	for b := table.buckets[table.split]; b != nil; b = b.overflow {
		table.stats.RecordRead()
		for _, e := range b.slots {
			if table.hashLow(e.Key) != table.hashHigh(e.Key) {
				moved = append(moved, e)
			} else {
				kept = append(kept, e)
			}
		}
	}
	table.buckets[table.split] = table.packChain(kept)
	table.buckets = append(table.buckets, table.packChain(moved))
	table.stats.RecordSplit()
	table.logger.Debug("bucket split",
		"bucket", table.split, "kept", len(kept), "moved", len(moved))
	table.split++
	if table.split == table.mod1 {
		table.split = 0
		table.mod1 = table.mod2
		table.mod2 = 2 * table.mod1
		table.logger.Debug("growth phase rollover", "mod1", table.mod1, "mod2", table.mod2)
	}
}

// packChain fills a fresh bucket chain with the given entries, primary
// slots first, chaining overflow buckets only as needed.
func (table *Table[K, V]) packChain(entries []entry.Entry[K, V]) *bucket[K, V] {
	head := newBucket[K, V](table.slotCap)
	cur := head
	for _, e := range entries {
		if cur.isFull() {
			cur.overflow = newBucket[K, V](table.slotCap)
			cur = cur.overflow
		}
		cur.put(e)
	}
	return head
}

// Select returns all entries in the table, visiting buckets in directory
// order and each overflow chain in turn. Order is unspecified.
func (table *Table[K, V]) Select() []entry.Entry[K, V] {
	entries := make([]entry.Entry[K, V], 0, table.Count())
	for _, home := range table.buckets {
		for b := home; b != nil; b = b.overflow {
			table.stats.RecordRead()
			entries = append(entries, b.slots...)
		}
	}
	return entries
}

// Size returns the capacity-derived size estimate: slots * (mod1 + split).
// It is not a live entry count; use Count for that.
func (table *Table[K, V]) Size() int {
	return table.slotCap * (table.mod1 + table.split)
}

// Count returns the exact number of stored entries by walking every
// bucket chain.
func (table *Table[K, V]) Count() int {
	total := 0
	for _, home := range table.buckets {
		for b := home; b != nil; b = b.overflow {
			total += b.numKeys()
		}
	}
	return total
}

// Print writes a string representation of the whole table to the
// specified writer.
func (table *Table[K, V]) Print(w io.Writer) {
	io.WriteString(w, "====\n")
	fmt.Fprintf(w, "mod1: %d mod2: %d split: %d\n", table.mod1, table.mod2, table.split)
	for i, home := range table.buckets {
		fmt.Fprintf(w, "%d: \t", i)
		home.Print(w)
		for b := home.overflow; b != nil; b = b.overflow {
			io.WriteString(w, "--> ")
			b.Print(w)
		}
		io.WriteString(w, "\n")
	}
	io.WriteString(w, "====\n")
}
