package hash

import "fmt"

// Verify checks the structural invariants of the hash index:
// the directory length always equals mod1 + split, the split cursor stays
// inside [0, mod1), no bucket holds more entries than its slot capacity,
// and every stored entry answers to the bucket it lives in under the
// dual-modulus addressing rule. A violation is a programming error in the
// index itself, so callers should treat a non-nil result as fatal.
func (index *Index[K, V]) Verify() error {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	return index.table.verify()
}

func (table *Table[K, V]) verify() error {
	if table.mod2 != 2*table.mod1 {
		return fmt.Errorf("hash: mod2 %d is not double mod1 %d", table.mod2, table.mod1)
	}
	if table.split < 0 || table.split >= table.mod1 {
		return fmt.Errorf("hash: split cursor %d outside [0, %d)", table.split, table.mod1)
	}
	if got, want := len(table.buckets), table.mod1+table.split; got != want {
		return fmt.Errorf("hash: directory length %d, want mod1+split = %d", got, want)
	}
	for i, home := range table.buckets {
		depth := 0
		for b := home; b != nil; b = b.overflow {
			if b.numKeys() > table.slotCap {
				return fmt.Errorf("hash: bucket %d chain depth %d holds %d entries, capacity %d",
					i, depth, b.numKeys(), table.slotCap)
			}
			for _, e := range b.slots {
				if addr := table.address(e.Key); addr != i {
					return fmt.Errorf("hash: entry %v stored in bucket %d but addresses to %d",
						e.Key, i, addr)
				}
			}
			depth++
		}
	}
	return nil
}
