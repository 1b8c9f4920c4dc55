package btree

import "sort"

// searchInternal returns the index of the child to descend into: the
// first separator strictly greater than the given key. Keys equal to a
// separator live in the child to the separator's right.
func (index *Index[K, V]) searchInternal(n *node[K, V], key K) int {
	return sort.Search(n.numKeys, func(i int) bool {
		return n.keys[i].Compare(key) > 0
	})
}

// insertInternal routes the key-value pair to the appropriate child and
// absorbs any split the child propagates back up.
func (index *Index[K, V]) insertInternal(id nodeID, key K, value V) (split[K], error) {
	n := index.getNode(id)
	childID := n.children[index.searchInternal(n, key)]
	index.getNode(childID).parent = id
	result, err := index.insertNode(childID, key, value)
	if err != nil || !result.isSplit {
		return split[K]{}, err
	}
	return index.insertSplit(id, result), nil
}

// insertSplit wedges a child split's separator key and new right node
// into this node, keeping separators sorted and the new child in the
// position consistent with its key range. If this node goes over
// capacity in turn, the split cascades upwards.
func (index *Index[K, V]) insertSplit(id nodeID, s split[K]) split[K] {
	n := index.getNode(id)
	pos := index.searchInternal(n, s.key)
	// Shift separators to the right.
	for i := n.numKeys - 1; i >= pos; i-- {
		n.keys[i+1] = n.keys[i]
	}
	// Shift children to the right.
	for i := n.numKeys; i > pos; i-- {
		n.children[i+1] = n.children[i]
	}
	n.keys[pos] = s.key
	n.children[pos+1] = s.rightID
	index.getNode(s.rightID).parent = id
	n.numKeys++
	if n.numKeys >= index.order {
		return index.splitInternal(id)
	}
	return split[K]{}
}

// splitInternal splits an over-full internal node at the midpoint. The
// midpoint separator moves up and is kept in neither half; the children
// to its right move to the new sibling along with their separators.
func (index *Index[K, V]) splitInternal(id nodeID) split[K] {
	rightID := index.alloc(internalNode)
	n := index.getNode(id)
	right := index.getNode(rightID)
	mid := (n.numKeys - 1) / 2
	promoted := n.keys[mid]
	for i := mid + 1; i < n.numKeys; i++ {
		right.keys[right.numKeys] = n.keys[i]
		right.children[right.numKeys] = n.children[i]
		right.numKeys++
	}
	right.children[right.numKeys] = n.children[n.numKeys]
	n.numKeys = mid
	right.parent = n.parent
	// The moved children now answer to the new sibling.
	for i := 0; i <= right.numKeys; i++ {
		index.getNode(right.children[i]).parent = rightID
	}
	index.stats.RecordSplit()
	index.logger.Debug("internal split", "left", int(id), "right", int(rightID))
	return split[K]{isSplit: true, key: promoted, leftID: id, rightID: rightID}
}
