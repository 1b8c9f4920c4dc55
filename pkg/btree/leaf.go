package btree

import (
	"fmt"
	"sort"

	"relidx/pkg/database"
	"relidx/pkg/entry"
)

// searchLeaf returns the first slot in the leaf whose key >= the given
// key. If no key satisfies this condition, returns numKeys.
func (index *Index[K, V]) searchLeaf(n *node[K, V], key K) int {
	return sort.Search(n.numKeys, func(i int) bool {
		return n.keys[i].Compare(key) >= 0
	})
}

// insertLeaf wedges a new key-value pair into the appropriate slot of the
// leaf, keeping its entries sorted. An entry with the same key already
// present rejects the insert. Returns split data to be used by the caller
// if the insertion pushed the leaf over capacity.
func (index *Index[K, V]) insertLeaf(id nodeID, key K, value V) (split[K], error) {
	n := index.getNode(id)
	pos := index.searchLeaf(n, key)
	if pos < n.numKeys && n.keys[pos].Compare(key) == 0 {
		index.stats.RecordDuplicate()
		index.logger.Debug("insert rejected: duplicate key", "key", key)
		return split[K]{}, fmt.Errorf("insert %v: %w", key, database.ErrDuplicateKey)
	}
	// Shift entries to the right if needed.
	for i := n.numKeys - 1; i >= pos; i-- {
		n.keys[i+1] = n.keys[i]
		n.values[i+1] = n.values[i]
	}
	n.keys[pos] = key
	n.values[pos] = value
	n.numKeys++
	index.stats.RecordWrite()
	if n.numKeys >= index.order {
		return index.splitLeaf(id), nil
	}
	return split[K]{}, nil
}

// splitLeaf partitions an over-full leaf at the midpoint. The right half
// moves to a new sibling leaf spliced into the leaf chain immediately
// after this one, and the sibling's first key is pushed up as the
// separator.
func (index *Index[K, V]) splitLeaf(id nodeID) split[K] {
	rightID := index.alloc(leafNode)
	n := index.getNode(id)
	right := index.getNode(rightID)
	mid := n.numKeys / 2
	for i := mid; i < n.numKeys; i++ {
		right.keys[right.numKeys] = n.keys[i]
		right.values[right.numKeys] = n.values[i]
		right.numKeys++
	}
	n.numKeys = mid
	// Splice the sibling into the leaf chain.
	right.next = n.next
	n.next = rightID
	right.parent = n.parent
	index.stats.RecordSplit()
	index.logger.Debug("leaf split", "left", int(id), "right", int(rightID))
	return split[K]{isSplit: true, key: right.keys[0], leftID: id, rightID: rightID}
}

// getEntry returns the entry stored at the given slot of a leaf.
func (n *node[K, V]) getEntry(i int) entry.Entry[K, V] {
	return entry.New(n.keys[i], n.values[i])
}
