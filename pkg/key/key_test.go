package key_test

import (
	"bytes"
	"sort"
	"testing"

	"relidx/pkg/key"
)

// =====================================================================
// HELPERS
// =====================================================================

// checkPanics runs fn and errors the test if it completes without
// panicking.
func checkPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s should have panicked", name)
		}
	}()
	fn()
}

// =====================================================================
// TESTS
// =====================================================================

func TestCompositeCompare(t *testing.T) {
	t.Run("Ordering", testCompareOrdering)
	t.Run("PrefixSortsFirst", testComparePrefix)
	t.Run("Normalization", testCompareNormalization)
	t.Run("MismatchedTypes", testCompareMismatch)
}

func testCompareOrdering(t *testing.T) {
	t.Parallel()
	// Already in ascending order.
	keys := []key.Composite{
		key.New("alice", int64(1)),
		key.New("alice", int64(2)),
		key.New("bob", int64(0)),
		key.New("bob", int64(0), false),
		key.New("bob", int64(0), true),
		key.New("carol", 1.5),
		key.New("carol", 2.5),
	}
	for i := range keys {
		for j := range keys {
			got := keys[i].Compare(keys[j])
			switch {
			case i < j && got >= 0:
				t.Errorf("Compare(%v, %v) = %d, want negative", keys[i], keys[j], got)
			case i == j && got != 0:
				t.Errorf("Compare(%v, %v) = %d, want 0", keys[i], keys[j], got)
			case i > j && got <= 0:
				t.Errorf("Compare(%v, %v) = %d, want positive", keys[i], keys[j], got)
			}
		}
	}
}

func testComparePrefix(t *testing.T) {
	t.Parallel()
	short := key.New("alice")
	long := key.New("alice", int64(7))
	if short.Compare(long) >= 0 {
		t.Errorf("expected the shorter prefix %v to sort before %v", short, long)
	}
	if long.Compare(short) <= 0 {
		t.Errorf("expected %v to sort after its prefix %v", long, short)
	}
}

// New normalizes the narrower numeric types, so keys built from int and
// int64 attributes must compare equal and hash alike.
func testCompareNormalization(t *testing.T) {
	t.Parallel()
	a := key.New(3, "x", float32(1.5))
	b := key.New(int64(3), "x", 1.5)
	if a.Compare(b) != 0 {
		t.Errorf("expected %v and %v to compare equal", a, b)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("expected %v and %v to encode identically", a, b)
	}
}

func testCompareMismatch(t *testing.T) {
	t.Parallel()
	a := key.New(int64(1), "x")
	b := key.New(int64(1), int64(2))
	checkPanics(t, "comparing attributes of different types", func() {
		a.Compare(b)
	})
}

func TestCompositeNew(t *testing.T) {
	t.Parallel()
	checkPanics(t, "New with no attributes", func() {
		key.New()
	})
	checkPanics(t, "New with an unsupported attribute type", func() {
		key.New([]byte("nope"))
	})
}

// The hash index relies on the byte encoding agreeing with Compare:
// equal keys encode identically, distinct keys encode distinctly.
// Compare is only defined for keys whose attribute types line up, so the
// keys are grouped by shape: Compare cross-checks stay within a group,
// while keys from different groups may only be checked for distinct
// encodings.
func TestCompositeBytes(t *testing.T) {
	t.Parallel()
	groups := [][]key.Composite{
		{key.New("a"), key.New("ab")},
		{key.New("a", int64(0)), key.New("ab", int64(7))},
		{key.New(int64(-1)), key.New(int64(0)), key.New(int64(1))},
		{key.New(1.25), key.New(-1.25)},
		{key.New(true), key.New(false)},
		{key.New("a", "b"), key.New("ab", ""), key.New("a", "b")},
	}
	for _, group := range groups {
		for i := range group {
			for j := range group {
				sameKey := group[i].Compare(group[j]) == 0
				sameBytes := bytes.Equal(group[i].Bytes(), group[j].Bytes())
				if sameKey != sameBytes {
					t.Errorf("keys %v and %v: equal=%v but identical encodings=%v",
						group[i], group[j], sameKey, sameBytes)
				}
			}
		}
	}
	// Keys of different shapes are never equal, so their encodings must
	// differ even when the underlying payloads look alike.
	for gi, a := range groups {
		for gj, b := range groups {
			if gi == gj {
				continue
			}
			if bytes.Equal(a[0].Bytes(), b[0].Bytes()) {
				t.Errorf("keys %v and %v have different shapes but identical encodings", a[0], b[0])
			}
		}
	}
}

func TestCompositeAccessors(t *testing.T) {
	t.Parallel()
	k := key.New("alice", int64(42))
	if k.Arity() != 2 {
		t.Errorf("Arity() = %d, want 2", k.Arity())
	}
	if k.Attr(0) != "alice" {
		t.Errorf("Attr(0) = %v, want alice", k.Attr(0))
	}
	if k.Attr(1) != int64(42) {
		t.Errorf("Attr(1) = %v, want 42", k.Attr(1))
	}
}

func TestInt64(t *testing.T) {
	t.Parallel()
	vals := []key.Int64{-100, -1, 0, 1, 7, 100}
	if !sort.SliceIsSorted(vals, func(i, j int) bool {
		return vals[i].Compare(vals[j]) < 0
	}) {
		t.Error("Int64.Compare does not order values numerically")
	}
	for _, v := range vals {
		if v.Compare(v) != 0 {
			t.Errorf("Int64(%d) does not compare equal to itself", v)
		}
	}
	if bytes.Equal(key.Int64(1).Bytes(), key.Int64(2).Bytes()) {
		t.Error("distinct Int64 keys produced identical encodings")
	}
}
