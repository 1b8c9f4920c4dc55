package hash

import (
	"github.com/cespare/xxhash"
	"github.com/spaolacci/murmur3"
)

// A Hasher maps a key's byte encoding to a 64-bit hash value. The table
// reduces the hash with its two moduli; the hasher itself is modulus-free.
type Hasher func(data []byte) uint64

// XxHasher hashes with xxHash. This is the default table hasher.
var XxHasher Hasher = xxhash.Sum64

// MurmurHasher hashes with MurmurHash3.
var MurmurHasher Hasher = murmur3.Sum64
