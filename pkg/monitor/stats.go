// Package monitor tracks per-index access counters for performance
// diagnostics. Each index owns one IndexStats identified by an instance
// id; counters replace the hidden process-wide access counts a naive
// implementation would keep.
package monitor

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// IndexStats accumulates access counters for a single index instance.
// Counters are atomic so read-locked queries can record concurrently.
type IndexStats struct {
	id         uuid.UUID
	reads      uint64 // buckets or nodes visited by lookups and scans
	writes     uint64 // entries inserted
	splits     uint64 // bucket or node splits triggered
	duplicates uint64 // inserts rejected for duplicate keys
}

// NewIndexStats returns a zeroed IndexStats with a fresh instance id.
func NewIndexStats() *IndexStats {
	return &IndexStats{id: uuid.New()}
}

// ID returns the instance id the counters are tagged with.
func (stats *IndexStats) ID() uuid.UUID {
	return stats.id
}

// RecordRead counts one bucket or node access.
func (stats *IndexStats) RecordRead() {
	atomic.AddUint64(&stats.reads, 1)
}

// RecordReads counts n bucket or node accesses at once.
func (stats *IndexStats) RecordReads(n uint64) {
	atomic.AddUint64(&stats.reads, n)
}

// RecordWrite counts one inserted entry.
func (stats *IndexStats) RecordWrite() {
	atomic.AddUint64(&stats.writes, 1)
}

// RecordSplit counts one structural split.
func (stats *IndexStats) RecordSplit() {
	atomic.AddUint64(&stats.splits, 1)
}

// RecordDuplicate counts one rejected duplicate insert.
func (stats *IndexStats) RecordDuplicate() {
	atomic.AddUint64(&stats.duplicates, 1)
}

// Snapshot is a point-in-time copy of an index's counters.
type Snapshot struct {
	ID         uuid.UUID
	Reads      uint64
	Writes     uint64
	Splits     uint64
	Duplicates uint64
}

// Snapshot returns a consistent-enough copy of the current counters.
func (stats *IndexStats) Snapshot() Snapshot {
	return Snapshot{
		ID:         stats.id,
		Reads:      atomic.LoadUint64(&stats.reads),
		Writes:     atomic.LoadUint64(&stats.writes),
		Splits:     atomic.LoadUint64(&stats.splits),
		Duplicates: atomic.LoadUint64(&stats.duplicates),
	}
}

// AverageReadsPerWrite reports how many bucket/node accesses each
// insertion has cost so far, for workload tuning.
func (stats *IndexStats) AverageReadsPerWrite() float64 {
	writes := atomic.LoadUint64(&stats.writes)
	if writes == 0 {
		return 0
	}
	return float64(atomic.LoadUint64(&stats.reads)) / float64(writes)
}
