package btree

import (
	"errors"

	"relidx/pkg/cursor"
	"relidx/pkg/database"
	"relidx/pkg/entry"
)

// BTreeCursor is a cursor that walks the leaf chain of a btree index in
// ascending key order. It holds no lock; do not mutate the index while a
// cursor is live.
type BTreeCursor[K database.Ordered[K], V any] struct {
	index    *Index[K, V]
	curNode  nodeID // the id of the leaf currently being iterated over
	curIndex int    // the entry within the leaf currently being pointed at
}

// CursorAtStart returns a cursor pointing to the first entry of the
// index, or ErrEmptyIndex if the index has no entries.
func (index *Index[K, V]) CursorAtStart() (cursor.Cursor[K, V], error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	return index.cursorAtStart()
}

func (index *Index[K, V]) cursorAtStart() (*BTreeCursor[K, V], error) {
	first := index.firstLeafID()
	if index.getNode(first).numKeys == 0 {
		return nil, database.ErrEmptyIndex
	}
	return &BTreeCursor[K, V]{index: index, curNode: first}, nil
}

// CursorAt returns a cursor pointing to the entry whose key is the
// smallest key greater than or equal to the given key. If every key in
// the index is smaller, the cursor is positioned past the end and
// GetEntry fails.
func (index *Index[K, V]) CursorAt(key K) (cursor.Cursor[K, V], error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	return index.cursorAt(key), nil
}

func (index *Index[K, V]) cursorAt(key K) *BTreeCursor[K, V] {
	id := rootID
	for n := index.getNode(id); n.kind == internalNode; n = index.getNode(id) {
		id = n.children[index.searchInternal(n, key)]
	}
	c := &BTreeCursor[K, V]{
		index:    index,
		curNode:  id,
		curIndex: index.searchLeaf(index.getNode(id), key),
	}
	// Keys equal to a separator live in the right subtree, so the descent
	// can land on the leaf just left of the target. Step once to fix up.
	if c.curIndex >= index.getNode(id).numKeys {
		c.Next()
	}
	return c
}

// Next steps the cursor to the next entry, crossing to the right sibling
// leaf when the current one runs out. It returns true when it moves past
// the last entry of the index.
func (c *BTreeCursor[K, V]) Next() bool {
	n := c.index.getNode(c.curNode)
	if c.curIndex+1 >= n.numKeys {
		if n.next == nilNode {
			c.curIndex = n.numKeys
			return true
		}
		c.curNode = n.next
		c.curIndex = 0
		return false
	}
	c.curIndex++
	return false
}

// GetEntry returns the entry currently pointed at by the cursor.
func (c *BTreeCursor[K, V]) GetEntry() (entry.Entry[K, V], error) {
	n := c.index.getNode(c.curNode)
	if c.curIndex >= n.numKeys {
		return entry.Entry[K, V]{}, errors.New("getEntry: cursor is not pointing at a valid entry")
	}
	return n.getEntry(c.curIndex), nil
}

// Close frees resources held by the cursor; btree cursors hold none.
func (c *BTreeCursor[K, V]) Close() {}
