package btree

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Verify checks the structural invariants of the tree and returns an
// error describing the first violation it finds. It is meant for tests
// and debugging; it visits every node.
//
// Checked invariants:
//   - every node's keys are strictly ascending and inside the bounds set
//     by its ancestors' separators (equal keys live in the right subtree,
//     so lower bounds are inclusive and upper bounds exclusive);
//   - an internal node with n keys has exactly n+1 children, and every
//     child's parent link points back at it;
//   - no node holds order or more keys, and no non-root node is empty;
//   - all leaves sit at the same depth;
//   - the leaf chain is acyclic, visits exactly the leaves reachable from
//     the root, and yields all keys in ascending order.
func (index *Index[K, V]) Verify() error {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	leaves := bitset.New(uint(len(index.nodes)))
	leafDepth := -1
	if err := index.verifyNode(rootID, nilNode, 0, nil, nil, &leafDepth, leaves); err != nil {
		return err
	}
	return index.verifyLeafChain(leaves)
}

func (index *Index[K, V]) verifyNode(id nodeID, parent nodeID, depth int, lower *K, upper *K, leafDepth *int, leaves *bitset.BitSet) error {
	n := index.getNode(id)
	if n.parent != parent {
		return fmt.Errorf("node %d: parent link is %d, want %d", id, n.parent, parent)
	}
	if n.numKeys >= index.order {
		return fmt.Errorf("node %d: holds %d keys, order is %d", id, n.numKeys, index.order)
	}
	if n.numKeys < 1 && !isRoot(id) {
		return fmt.Errorf("node %d: non-root node is empty", id)
	}
	for i := 0; i < n.numKeys; i++ {
		if i > 0 && n.keys[i-1].Compare(n.keys[i]) >= 0 {
			return fmt.Errorf("node %d: keys %v and %v out of order", id, n.keys[i-1], n.keys[i])
		}
		if lower != nil && n.keys[i].Compare(*lower) < 0 {
			return fmt.Errorf("node %d: key %v below lower bound %v", id, n.keys[i], *lower)
		}
		if upper != nil && n.keys[i].Compare(*upper) >= 0 {
			return fmt.Errorf("node %d: key %v at or above upper bound %v", id, n.keys[i], *upper)
		}
	}
	if n.kind == leafNode {
		if *leafDepth == -1 {
			*leafDepth = depth
		} else if *leafDepth != depth {
			return fmt.Errorf("leaf %d: at depth %d, other leaves at depth %d", id, depth, *leafDepth)
		}
		leaves.Set(uint(id))
		return nil
	}
	if isRoot(id) && n.numKeys < 1 {
		return fmt.Errorf("node %d: internal root is empty", id)
	}
	for i := 0; i <= n.numKeys; i++ {
		childLower, childUpper := lower, upper
		if i > 0 {
			childLower = &n.keys[i-1]
		}
		if i < n.numKeys {
			childUpper = &n.keys[i]
		}
		if err := index.verifyNode(n.children[i], id, depth+1, childLower, childUpper, leafDepth, leaves); err != nil {
			return err
		}
	}
	return nil
}

// verifyLeafChain walks the sibling links from the first leaf and checks
// that the chain covers exactly the tree-reachable leaves, contains no
// cycle, and yields every key in ascending order.
func (index *Index[K, V]) verifyLeafChain(leaves *bitset.BitSet) error {
	visited := bitset.New(uint(len(index.nodes)))
	var prev *K
	for id := index.firstLeafID(); id != nilNode; id = index.getNode(id).next {
		if visited.Test(uint(id)) {
			return fmt.Errorf("leaf chain: cycle through leaf %d", id)
		}
		visited.Set(uint(id))
		if !leaves.Test(uint(id)) {
			return fmt.Errorf("leaf chain: leaf %d is not reachable from the root", id)
		}
		n := index.getNode(id)
		for i := 0; i < n.numKeys; i++ {
			if prev != nil && (*prev).Compare(n.keys[i]) >= 0 {
				return fmt.Errorf("leaf chain: keys %v and %v out of order", *prev, n.keys[i])
			}
			prev = &n.keys[i]
		}
	}
	if !visited.Equal(leaves) {
		return fmt.Errorf("leaf chain: covers %d leaves, tree has %d", visited.Count(), leaves.Count())
	}
	return nil
}
