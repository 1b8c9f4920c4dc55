package hash

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"relidx/pkg/database"
	"relidx/pkg/entry"
	"relidx/pkg/monitor"
)

// Index is an unordered key-value index that uses a Linear Hashing Table
// as its underlying data structure. It adds the locking and the
// collaborator-facing surface the table layer consumes.
//
// The index assumes a single writer: Insert takes the write lock, every
// query takes the read lock. There is no finer-grained locking.
type Index[K database.Keyed[K], V any] struct {
	name   string
	table  *Table[K, V]
	rwlock sync.RWMutex
	stats  *monitor.IndexStats
}

// An Option configures an Index at construction time.
type Option func(*options)

type options struct {
	name           string
	slots          int
	initialBuckets int
	hasher         Hasher
	logger         *slog.Logger
}

// WithName sets the index name reported by GetName.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithSlots sets the per-bucket slot capacity.
func WithSlots(slots int) Option {
	return func(o *options) { o.slots = slots }
}

// WithInitialBuckets sets the number of home buckets before the first
// growth phase. Must be a power of two.
func WithInitialBuckets(n int) Option {
	return func(o *options) { o.initialBuckets = n }
}

// WithHasher sets the hash function applied to key encodings.
func WithHasher(hasher Hasher) Option {
	return func(o *options) { o.hasher = hasher }
}

// WithLogger sets the logger split events and rejected inserts are
// reported to. The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New constructs an empty hash index.
func New[K database.Keyed[K], V any](opts ...Option) (*Index[K, V], error) {
	o := options{
		name:           string(database.HashIndexType),
		slots:          DefaultBucketSlots,
		initialBuckets: DefaultInitialBuckets,
		hasher:         XxHasher,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.slots < 1 {
		return nil, fmt.Errorf("hash: bucket slot capacity must be positive, got %d", o.slots)
	}
	if o.initialBuckets < 1 || o.initialBuckets&(o.initialBuckets-1) != 0 {
		return nil, fmt.Errorf("hash: initial bucket count must be a power of two, got %d", o.initialBuckets)
	}
	if o.logger == nil {
		o.logger = discardLogger()
	}
	stats := monitor.NewIndexStats()
	logger := o.logger.With("index", o.name, "id", stats.ID())
	return &Index[K, V]{
		name:  o.name,
		table: newTable[K, V](o.slots, o.initialBuckets, o.hasher, stats, logger),
		stats: stats,
	}, nil
}

// discardLogger returns a logger that drops every record.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// GetName returns the name of this index.
func (index *Index[K, V]) GetName() string {
	return index.name
}

// GetTable returns the underlying hash table.
func (index *Index[K, V]) GetTable() *Table[K, V] {
	return index.table
}

// Stats returns a snapshot of this index's access counters.
func (index *Index[K, V]) Stats() monitor.Snapshot {
	return index.stats.Snapshot()
}

// Find returns the entry with the given key, or ErrKeyNotFound.
func (index *Index[K, V]) Find(key K) (entry.Entry[K, V], error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	return index.table.Find(key)
}

// Insert places a key-value pair into the index, growing the table by at
// most one bucket. Duplicate keys are rejected with ErrDuplicateKey.
func (index *Index[K, V]) Insert(key K, value V) error {
	index.rwlock.Lock()
	defer index.rwlock.Unlock()
	return index.table.Insert(key, value)
}

// Select returns a point-in-time snapshot of all entries in the index.
// Order is unspecified.
func (index *Index[K, V]) Select() ([]entry.Entry[K, V], error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	return index.table.Select(), nil
}

// Size returns the capacity-derived size estimate of the table.
func (index *Index[K, V]) Size() int {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	return index.table.Size()
}

// Count returns the exact number of stored entries.
func (index *Index[K, V]) Count() int {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	return index.table.Count()
}

// Print writes a string representation of the index to the specified
// writer.
func (index *Index[K, V]) Print(w io.Writer) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	index.table.Print(w)
}
