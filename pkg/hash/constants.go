package hash

import "relidx/pkg/config"

// DefaultBucketSlots is the number of key-value slots per bucket.
// Buckets are intentionally small: lookups scan them linearly.
const DefaultBucketSlots = config.DefaultBucketSlots

// DefaultInitialBuckets is the number of home buckets before the first
// growth phase. Must be a power of two.
const DefaultInitialBuckets = config.DefaultInitialBuckets
