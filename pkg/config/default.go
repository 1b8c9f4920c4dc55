// Global index geometry defaults.
package config

// DefaultBucketSlots is the number of key-value slots per hash bucket.
const DefaultBucketSlots = 4

// DefaultInitialBuckets is the number of home buckets a hash index starts
// with before any growth phase. Must be a power of two.
const DefaultInitialBuckets = 2

// DefaultOrder is the maximum fanout of a B+Tree node. A leaf holds up to
// DefaultOrder-1 entries; an internal node up to DefaultOrder children.
const DefaultOrder = 5
