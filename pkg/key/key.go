// Package key provides the key types stored in the hash and btree indices.
//
// A Composite wraps the attribute values a table selects as its search key
// into a single immutable value with a total order and a stable byte
// encoding. Two keys compare equal exactly when their encodings are equal,
// so hashing the encoding is always consistent with equality.
package key

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Attribute tags used by the stable encoding. The tag keeps encodings of
// different attribute types from colliding.
const (
	intTag byte = iota + 1
	floatTag
	stringTag
	boolTag
)

// Composite is an ordered sequence of attribute values treated as one key.
// Attributes are normalized to int64, float64, string or bool on
// construction and never mutated afterwards.
type Composite struct {
	attrs []any
}

// New constructs a Composite from the given attribute values.
// Supported attribute types are int/int32/int64 (normalized to int64),
// float32/float64 (normalized to float64), string and bool. Any other
// type is a programming error and panics, as is an empty attribute list.
func New(attrs ...any) Composite {
	if len(attrs) == 0 {
		panic("key: a composite key needs at least one attribute")
	}
	normalized := make([]any, len(attrs))
	for i, attr := range attrs {
		switch v := attr.(type) {
		case int:
			normalized[i] = int64(v)
		case int32:
			normalized[i] = int64(v)
		case int64:
			normalized[i] = v
		case float32:
			normalized[i] = float64(v)
		case float64:
			normalized[i] = v
		case string:
			normalized[i] = v
		case bool:
			normalized[i] = v
		default:
			panic(fmt.Sprintf("key: unsupported attribute type %T", attr))
		}
	}
	return Composite{attrs: normalized}
}

// Arity returns the number of attributes in the key.
func (k Composite) Arity() int {
	return len(k.attrs)
}

// Attr returns the normalized attribute value at position i.
func (k Composite) Attr(i int) any {
	return k.attrs[i]
}

// Compare orders two composite keys lexicographically, position by
// position. If one key is a strict prefix of the other, the shorter key
// sorts first. Comparing attributes of different types at the same
// position is a programming error and panics.
func (k Composite) Compare(other Composite) int {
	n := len(k.attrs)
	if len(other.attrs) < n {
		n = len(other.attrs)
	}
	for i := 0; i < n; i++ {
		if c := compareAttr(k.attrs[i], other.attrs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(k.attrs) < len(other.attrs):
		return -1
	case len(k.attrs) > len(other.attrs):
		return 1
	default:
		return 0
	}
}

// compareAttr compares two normalized attribute values of the same type.
func compareAttr(a, b any) int {
	switch av := a.(type) {
	case int64:
		bv, ok := b.(int64)
		if !ok {
			break
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case float64:
		bv, ok := b.(float64)
		if !ok {
			break
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		bv, ok := b.(string)
		if !ok {
			break
		}
		return strings.Compare(av, bv)
	case bool:
		bv, ok := b.(bool)
		if !ok {
			break
		}
		// false < true
		switch {
		case !av && bv:
			return -1
		case av && !bv:
			return 1
		default:
			return 0
		}
	}
	panic(fmt.Sprintf("key: cannot compare attributes of type %T and %T", a, b))
}

// Bytes returns the stable encoding of the key. Equal keys always encode
// to equal byte slices, so the encoding is safe to hash.
func (k Composite) Bytes() []byte {
	data := make([]byte, 0, 16*len(k.attrs))
	var scratch [8]byte
	for _, attr := range k.attrs {
		switch v := attr.(type) {
		case int64:
			data = append(data, intTag)
			binary.BigEndian.PutUint64(scratch[:], uint64(v))
			data = append(data, scratch[:]...)
		case float64:
			data = append(data, floatTag)
			binary.BigEndian.PutUint64(scratch[:], math.Float64bits(v))
			data = append(data, scratch[:]...)
		case string:
			data = append(data, stringTag)
			data = binary.AppendUvarint(data, uint64(len(v)))
			data = append(data, v...)
		case bool:
			data = append(data, boolTag)
			if v {
				data = append(data, 1)
			} else {
				data = append(data, 0)
			}
		}
	}
	return data
}

// String renders the key as a parenthesized attribute list.
func (k Composite) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, attr := range k.attrs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v", attr)
	}
	sb.WriteByte(')')
	return sb.String()
}
