package key

import (
	"encoding/binary"
	"strconv"
)

// Int64 is a scalar key for rowid-style indices that don't need a full
// composite key.
type Int64 int64

// Compare orders two Int64 keys numerically.
func (k Int64) Compare(other Int64) int {
	switch {
	case k < other:
		return -1
	case k > other:
		return 1
	default:
		return 0
	}
}

// Bytes returns the varint encoding of the key.
func (k Int64) Bytes() []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutVarint(buf, int64(k))
	return buf[:n]
}

func (k Int64) String() string {
	return strconv.FormatInt(int64(k), 10)
}
