package hash_test

import (
	"errors"
	"math/rand"
	"testing"

	"golang.org/x/sync/errgroup"

	"relidx/pkg/database"
	"relidx/pkg/hash"
	"relidx/pkg/key"
)

// The hash index satisfies the unordered index contract.
var _ database.Index[key.Int64, int64] = (*hash.Index[key.Int64, int64])(nil)

// =====================================================================
// HELPERS
// =====================================================================

// Mod vals by this value to prevent hardcoding tests
var hashSalt int64 = rand.Int63n(1000) + 1

// Given a key, deterministically generates a "random" value based on a salt.
func generateValue(k int64) int64 {
	return (k*7 + hashSalt) % 10000
}

// setupHash creates an empty hash index with the given options.
func setupHash(t *testing.T, opts ...hash.Option) *hash.Index[key.Int64, int64] {
	t.Parallel()
	index, err := hash.New[key.Int64, int64](opts...)
	if err != nil {
		t.Fatal("Failed to create hash index:", err)
	}
	return index
}

// insertEntry tries to insert (key, val) into the index, erroring the
// test if the operation fails.
func insertEntry(t *testing.T, index *hash.Index[key.Int64, int64], k, val int64) {
	t.Helper()
	if err := index.Insert(key.Int64(k), val); err != nil {
		t.Errorf("Failed to insert (%d, %d) into the index: %s", k, val, err)
	}
}

// checkFindEntry verifies that entry (key, expectedVal) is present in the
// index, erroring the test otherwise.
func checkFindEntry(t *testing.T, index *hash.Index[key.Int64, int64], k, expectedVal int64) {
	t.Helper()
	e, err := index.Find(key.Int64(k))
	if err != nil {
		t.Errorf("Failed to find inserted entry (%d, %d): %s", k, expectedVal, err)
		return
	}
	if int64(e.Key) != k {
		t.Errorf("Expected entry to have key %d, but instead found key %d", k, int64(e.Key))
		return
	}
	if e.Value != expectedVal {
		t.Errorf("Expected entry with key %d to have value %d, but instead found value %d", k, expectedVal, e.Value)
	}
}

// checkVerify errors the test if the index's structural invariants are
// violated.
func checkVerify(t *testing.T, index *hash.Index[key.Int64, int64]) {
	t.Helper()
	if err := index.Verify(); err != nil {
		t.Fatal("Index invariants violated:", err)
	}
}

// standardHashSetup creates a hash index and inserts entries with keys
// 0 to numInserts-1 and values determined by generateValue.
func standardHashSetup(t *testing.T, numInserts int64, opts ...hash.Option) *hash.Index[key.Int64, int64] {
	index := setupHash(t, opts...)
	for i := int64(0); i < numInserts; i++ {
		insertEntry(t, index, i, generateValue(i))
	}
	if t.Failed() {
		t.FailNow()
	}
	return index
}

// =====================================================================
// TESTS
// =====================================================================

func TestHashInsert(t *testing.T) {
	t.Run("Splitting", testHashSplitting)
	t.Run("Rollover", testHashRollover)
	t.Run("Ascending", testInsertAscending)
	t.Run("Random", testInsertRandom)
	t.Run("Duplicates", testInsertDuplicateKeys)
}

// Inserts keys 1 through 19 into a small table and checks that the
// directory grows by splitting while every inserted entry stays findable
// and key 0 stays absent.
func testHashSplitting(t *testing.T) {
	index := setupHash(t)

	for i := int64(1); i < 20; i++ {
		insertEntry(t, index, i, i+1)
		checkVerify(t, index)
	}

	table := index.GetTable()
	if table.NumBuckets() <= hash.DefaultInitialBuckets {
		t.Errorf("Expected the directory to grow past %d buckets, found %d",
			hash.DefaultInitialBuckets, table.NumBuckets())
	}
	if table.NumBuckets() != table.Mod1()+table.SplitPointer() {
		t.Errorf("Directory size %d does not match mod1 %d + split pointer %d",
			table.NumBuckets(), table.Mod1(), table.SplitPointer())
	}

	for i := int64(1); i < 20; i++ {
		checkFindEntry(t, index, i, i+1)
	}
	if _, err := index.Find(key.Int64(0)); !errors.Is(err, database.ErrKeyNotFound) {
		t.Errorf("Find(0) = %v, want ErrKeyNotFound", err)
	}
}

// Inserts enough entries to carry the table through at least one full
// splitting round, checking that the moduli double and no entry is lost.
func testHashRollover(t *testing.T) {
	index := setupHash(t)
	table := index.GetTable()
	startMod1 := table.Mod1()

	numInserts := int64(500)
	for i := int64(0); i < numInserts; i++ {
		insertEntry(t, index, i, generateValue(i))
	}
	checkVerify(t, index)

	if table.Mod1() < 2*startMod1 {
		t.Errorf("Expected mod1 to at least double from %d after %d inserts, found %d",
			startMod1, numInserts, table.Mod1())
	}
	if table.Mod2() != 2*table.Mod1() {
		t.Errorf("Expected mod2 to be twice mod1, found mod1=%d mod2=%d",
			table.Mod1(), table.Mod2())
	}
	if got := index.Count(); got != int(numInserts) {
		t.Errorf("Expected %d entries after splitting, found %d", numInserts, got)
	}
	for i := int64(0); i < numInserts; i++ {
		checkFindEntry(t, index, i, generateValue(i))
	}
}

func testInsertAscending(t *testing.T) {
	numInserts := int64(1000)
	index := standardHashSetup(t, numInserts)
	checkVerify(t, index)
	for i := int64(0); i < numInserts; i++ {
		checkFindEntry(t, index, i, generateValue(i))
	}
}

func testInsertRandom(t *testing.T) {
	index := setupHash(t)
	entries := make(map[int64]int64)
	for len(entries) < 1000 {
		k := rand.Int63()
		if _, ok := entries[k]; ok {
			continue
		}
		entries[k] = generateValue(k)
		insertEntry(t, index, k, entries[k])
	}
	if t.Failed() {
		t.FailNow()
	}
	checkVerify(t, index)
	for k, v := range entries {
		checkFindEntry(t, index, k, v)
	}
}

func testInsertDuplicateKeys(t *testing.T) {
	index := setupHash(t)
	insertEntry(t, index, 42, 1)
	err := index.Insert(key.Int64(42), 2)
	if !errors.Is(err, database.ErrDuplicateKey) {
		t.Errorf("Inserting a duplicate key returned %v, want ErrDuplicateKey", err)
	}
	// The original entry survives the rejected insert.
	checkFindEntry(t, index, 42, 1)
	if got := index.Count(); got != 1 {
		t.Errorf("Expected 1 entry after a rejected duplicate, found %d", got)
	}
	if got := index.Stats().Duplicates; got != 1 {
		t.Errorf("Expected 1 recorded duplicate, found %d", got)
	}
}

// The murmur hasher distributes keys just as well as the default; the
// table's behavior must not depend on which hasher is plugged in.
func TestHashMurmurHasher(t *testing.T) {
	numInserts := int64(500)
	index := standardHashSetup(t, numInserts, hash.WithHasher(hash.MurmurHasher))
	checkVerify(t, index)
	for i := int64(0); i < numInserts; i++ {
		checkFindEntry(t, index, i, generateValue(i))
	}
}

func TestHashOptions(t *testing.T) {
	t.Parallel()
	if _, err := hash.New[key.Int64, int64](hash.WithSlots(0)); err == nil {
		t.Error("Expected an error constructing an index with zero bucket slots")
	}
	if _, err := hash.New[key.Int64, int64](hash.WithInitialBuckets(3)); err == nil {
		t.Error("Expected an error constructing an index with a non-power-of-two bucket count")
	}
	index, err := hash.New[key.Int64, int64](hash.WithName("orders"), hash.WithSlots(8), hash.WithInitialBuckets(4))
	if err != nil {
		t.Fatal("Failed to create hash index:", err)
	}
	if index.GetName() != "orders" {
		t.Errorf("GetName() = %q, want orders", index.GetName())
	}
	if got := index.GetTable().BucketSlots(); got != 8 {
		t.Errorf("BucketSlots() = %d, want 8", got)
	}
}

// Size reports the geometric capacity estimate, Count the exact number
// of stored entries. The estimate never undercounts an overflow-free
// table by more than a full round of splits.
func TestHashSizeAndCount(t *testing.T) {
	numInserts := int64(300)
	index := standardHashSetup(t, numInserts)
	table := index.GetTable()

	if got := index.Count(); got != int(numInserts) {
		t.Errorf("Count() = %d, want %d", got, numInserts)
	}
	want := table.BucketSlots() * table.NumBuckets()
	if got := index.Size(); got != want {
		t.Errorf("Size() = %d, want slots*buckets = %d", got, want)
	}
}

func TestHashSelect(t *testing.T) {
	numInserts := int64(200)
	index := standardHashSetup(t, numInserts)
	entries, err := index.Select()
	if err != nil {
		t.Fatal("Select failed:", err)
	}
	if len(entries) != int(numInserts) {
		t.Fatalf("Select returned %d entries, want %d", len(entries), numInserts)
	}
	seen := make(map[int64]bool)
	for _, e := range entries {
		if seen[int64(e.Key)] {
			t.Errorf("Select returned key %d twice", int64(e.Key))
		}
		seen[int64(e.Key)] = true
		if e.Value != generateValue(int64(e.Key)) {
			t.Errorf("Select returned (%d, %d), want value %d", int64(e.Key), e.Value, generateValue(int64(e.Key)))
		}
	}
}

func TestHashCursor(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		index := setupHash(t)
		if _, err := index.CursorAtStart(); !errors.Is(err, database.ErrEmptyIndex) {
			t.Errorf("CursorAtStart on an empty index returned %v, want ErrEmptyIndex", err)
		}
	})

	t.Run("FullScan", func(t *testing.T) {
		numInserts := int64(250)
		index := standardHashSetup(t, numInserts)
		cur, err := index.CursorAtStart()
		if err != nil {
			t.Fatal("CursorAtStart failed:", err)
		}
		defer cur.Close()
		seen := 0
		for {
			if _, err := cur.GetEntry(); err != nil {
				t.Fatal("GetEntry failed mid-scan:", err)
			}
			seen++
			if cur.Next() {
				break
			}
		}
		if seen != int(numInserts) {
			t.Errorf("Cursor visited %d entries, want %d", seen, numInserts)
		}
	})
}

// Opening a cursor takes the read lock for the positioning step, so
// cursor creation is safe against a concurrent writer. Each cursor is
// positioned and closed immediately; iteration under mutation stays
// out of contract.
func TestHashCursorAtStartDuringWrites(t *testing.T) {
	index := standardHashSetup(t, 10)

	var g errgroup.Group
	g.Go(func() error {
		for i := int64(10); i < 500; i++ {
			if err := index.Insert(key.Int64(i), generateValue(i)); err != nil {
				return err
			}
		}
		return nil
	})
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				cur, err := index.CursorAtStart()
				if err != nil {
					return err
				}
				cur.Close()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Error("Cursor creation raced with the writer:", err)
	}
}

// Many goroutines reading a populated index concurrently must all see
// every entry.
func TestHashConcurrentReads(t *testing.T) {
	numInserts := int64(400)
	index := standardHashSetup(t, numInserts)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for i := int64(0); i < numInserts; i++ {
				e, err := index.Find(key.Int64(i))
				if err != nil {
					return err
				}
				if e.Value != generateValue(i) {
					return errors.New("read a stale or corrupted value")
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Error("Concurrent readers failed:", err)
	}
}
