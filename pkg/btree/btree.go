package btree

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"relidx/pkg/database"
	"relidx/pkg/entry"
	"relidx/pkg/monitor"
)

// Index is an ordered key-value index that uses a B+Tree as its
// underlying data structure. Nodes live in an id-addressed arena owned by
// the index; internal nodes route lookups, leaves hold the entries and
// are linked into a chain in ascending key order.
//
// Ordering is the key type's natural order (its Compare method); no
// separate comparator is injected.
//
// The index assumes a single writer: Insert takes the write lock, every
// query takes the read lock. Cursors hold no lock; do not mutate the
// index while iterating.
type Index[K database.Ordered[K], V any] struct {
	name   string
	order  int // maximum fanout of a node
	nodes  []*node[K, V]
	rwlock sync.RWMutex
	stats  *monitor.IndexStats
	logger *slog.Logger
}

// An Option configures an Index at construction time.
type Option func(*options)

type options struct {
	name   string
	order  int
	logger *slog.Logger
}

// WithName sets the index name reported by GetName.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithOrder sets the maximum fanout of a node.
func WithOrder(order int) Option {
	return func(o *options) { o.order = order }
}

// WithLogger sets the logger split events and rejected inserts are
// reported to. The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New constructs an empty btree index whose root starts out as an empty
// leaf in arena slot 0.
func New[K database.Ordered[K], V any](opts ...Option) (*Index[K, V], error) {
	o := options{
		name:  string(database.BTreeIndexType),
		order: DefaultOrder,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.order < MinOrder {
		return nil, fmt.Errorf("btree: order must be at least %d, got %d", MinOrder, o.order)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	stats := monitor.NewIndexStats()
	index := &Index[K, V]{
		name:   o.name,
		order:  o.order,
		stats:  stats,
		logger: o.logger.With("index", o.name, "id", stats.ID()),
	}
	index.alloc(leafNode)
	return index, nil
}

// GetName returns the name of this index.
func (index *Index[K, V]) GetName() string {
	return index.name
}

// Order returns the maximum fanout of this index's nodes.
func (index *Index[K, V]) Order() int {
	return index.order
}

// Stats returns a snapshot of this index's access counters.
func (index *Index[K, V]) Stats() monitor.Snapshot {
	return index.stats.Snapshot()
}

// Comparator returns the ordering the index sorts by: the key type's
// natural Compare. Collaborators that sort externally materialized
// entries can reuse it without knowing the key type's methods.
func (index *Index[K, V]) Comparator() func(a, b K) int {
	return func(a, b K) int {
		return a.Compare(b)
	}
}

// Find returns the entry associated with the given key, or
// ErrKeyNotFound if no entry with that key exists. The lookup walks one
// root-to-leaf path, so it costs one comparison per level plus a binary
// search in the leaf.
func (index *Index[K, V]) Find(key K) (entry.Entry[K, V], error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	n := index.getNode(rootID)
	index.stats.RecordRead()
	for n.kind == internalNode {
		n = index.getNode(n.children[index.searchInternal(n, key)])
		index.stats.RecordRead()
	}
	pos := index.searchLeaf(n, key)
	if pos < n.numKeys && n.keys[pos].Compare(key) == 0 {
		return n.getEntry(pos), nil
	}
	return entry.Entry[K, V]{}, fmt.Errorf("find %v: %w", key, database.ErrKeyNotFound)
}

// insertNode inserts the pair into the subtree rooted at id, dispatching
// on the node's kind.
func (index *Index[K, V]) insertNode(id nodeID, key K, value V) (split[K], error) {
	if index.getNode(id).kind == leafNode {
		return index.insertLeaf(id, key, value)
	}
	return index.insertInternal(id, key, value)
}

// Insert inserts a key-value entry into the B+Tree, splitting nodes on
// the way up as needed. Duplicate keys are rejected with ErrDuplicateKey.
func (index *Index[K, V]) Insert(key K, value V) error {
	index.rwlock.Lock()
	defer index.rwlock.Unlock()
	result, err := index.insertNode(rootID, key, value)
	if err != nil || !result.isSplit {
		return err
	}
	// The root itself split. Preserve the invariant that the root occupies
	// arena slot 0: move the old root's contents to a fresh node, then
	// rebuild slot 0 as a new internal root with exactly two children.
	// This is the only operation that increases the tree's height.
	if result.leftID != rootID {
		return errors.New("btree: splitting was corrupted")
	}
	oldRoot := index.getNode(rootID)
	leftID := index.alloc(oldRoot.kind)
	left := index.getNode(leftID)
	left.numKeys = oldRoot.numKeys
	copy(left.keys, oldRoot.keys)
	if oldRoot.kind == leafNode {
		copy(left.values, oldRoot.values)
		left.next = oldRoot.next
	} else {
		copy(left.children, oldRoot.children)
		for i := 0; i <= left.numKeys; i++ {
			index.getNode(left.children[i]).parent = leftID
		}
	}
	left.parent = rootID
	index.getNode(result.rightID).parent = rootID
	newRoot := index.newNode(internalNode)
	newRoot.keys[0] = result.key
	newRoot.children[0] = leftID
	newRoot.children[1] = result.rightID
	newRoot.numKeys = 1
	index.nodes[rootID] = newRoot
	index.logger.Debug("root split", "left", int(leftID), "right", int(result.rightID))
	return nil
}

// firstLeafID descends leftmost child pointers to the first leaf.
func (index *Index[K, V]) firstLeafID() nodeID {
	id := rootID
	for index.getNode(id).kind == internalNode {
		id = index.getNode(id).children[0]
	}
	return id
}

// lastLeafID descends rightmost child pointers to the last leaf.
func (index *Index[K, V]) lastLeafID() nodeID {
	id := rootID
	for n := index.getNode(id); n.kind == internalNode; n = index.getNode(id) {
		id = n.children[n.numKeys]
	}
	return id
}

// FirstKey returns the smallest key in the index, or ErrEmptyIndex.
func (index *Index[K, V]) FirstKey() (K, error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	first := index.getNode(index.firstLeafID())
	if first.numKeys == 0 {
		var zero K
		return zero, database.ErrEmptyIndex
	}
	return first.keys[0], nil
}

// LastKey returns the largest key in the index, or ErrEmptyIndex.
func (index *Index[K, V]) LastKey() (K, error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	last := index.getNode(index.lastLeafID())
	if last.numKeys == 0 {
		var zero K
		return zero, database.ErrEmptyIndex
	}
	return last.keys[last.numKeys-1], nil
}

// Size returns the number of entries stored in the index, obtained by
// walking the leaf chain. This is not a constant-time operation.
func (index *Index[K, V]) Size() int {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	total := 0
	for id := index.firstLeafID(); id != nilNode; id = index.getNode(id).next {
		total += index.getNode(id).numKeys
		index.stats.RecordRead()
	}
	return total
}

// Select returns a slice of all the entries in the B+Tree ordered by
// their keys, walking the leaf chain from the first leaf to the last.
func (index *Index[K, V]) Select() ([]entry.Entry[K, V], error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	entries := make([]entry.Entry[K, V], 0)
	cursor, err := index.cursorAtStart()
	if err != nil {
		if errors.Is(err, database.ErrEmptyIndex) {
			return entries, nil
		}
		return nil, err
	}
	defer cursor.Close()
	for {
		e, err := cursor.GetEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		if cursor.Next() {
			break
		}
	}
	return entries, nil
}

// SelectRange returns a slice of entries with keys between start and end.
// start is inclusive, end is exclusive: [start, end). Returns an error if
// start >= end.
func (index *Index[K, V]) SelectRange(start K, end K) ([]entry.Entry[K, V], error) {
	if start.Compare(end) >= 0 {
		return nil, errors.New("btree: start key is not smaller than end key")
	}
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	entries := make([]entry.Entry[K, V], 0)
	cursor := index.cursorAt(start)
	defer cursor.Close()
	for {
		e, err := cursor.GetEntry()
		if err != nil {
			// The start key lies beyond the last entry.
			return entries, nil
		}
		if end.Compare(e.Key) <= 0 {
			return entries, nil
		}
		entries = append(entries, e)
		if cursor.Next() {
			return entries, nil
		}
	}
}

// HeadMap returns a new index of the same order holding every entry with
// key < end.
func (index *Index[K, V]) HeadMap(end K) (*Index[K, V], error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	out, err := New[K, V](WithOrder(index.order), WithName(index.name+"/head"))
	if err != nil {
		return nil, err
	}
	cursor, err := index.cursorAtStart()
	if err != nil {
		if errors.Is(err, database.ErrEmptyIndex) {
			return out, nil
		}
		return nil, err
	}
	defer cursor.Close()
	for {
		e, err := cursor.GetEntry()
		if err != nil {
			return nil, err
		}
		if end.Compare(e.Key) <= 0 {
			return out, nil
		}
		if err := out.Insert(e.Key, e.Value); err != nil {
			return nil, err
		}
		if cursor.Next() {
			return out, nil
		}
	}
}

// TailMap returns a new index of the same order holding every entry with
// key >= start.
func (index *Index[K, V]) TailMap(start K) (*Index[K, V], error) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	out, err := New[K, V](WithOrder(index.order), WithName(index.name+"/tail"))
	if err != nil {
		return nil, err
	}
	cursor := index.cursorAt(start)
	defer cursor.Close()
	for {
		e, err := cursor.GetEntry()
		if err != nil {
			// The start key lies beyond the last entry.
			return out, nil
		}
		if err := out.Insert(e.Key, e.Value); err != nil {
			return nil, err
		}
		if cursor.Next() {
			return out, nil
		}
	}
}

// SubMap returns a new index of the same order holding every entry with
// start <= key < end. Returns an error if start >= end.
func (index *Index[K, V]) SubMap(start K, end K) (*Index[K, V], error) {
	if start.Compare(end) >= 0 {
		return nil, errors.New("btree: start key is not smaller than end key")
	}
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	out, err := New[K, V](WithOrder(index.order), WithName(index.name+"/sub"))
	if err != nil {
		return nil, err
	}
	cursor := index.cursorAt(start)
	defer cursor.Close()
	for {
		e, err := cursor.GetEntry()
		if err != nil {
			return out, nil
		}
		if end.Compare(e.Key) <= 0 {
			return out, nil
		}
		if err := out.Insert(e.Key, e.Value); err != nil {
			return nil, err
		}
		if cursor.Next() {
			return out, nil
		}
	}
}

// Print will pretty-print all nodes in the B+Tree.
func (index *Index[K, V]) Print(w io.Writer) {
	index.rwlock.RLock()
	defer index.rwlock.RUnlock()
	index.printNode(w, rootID, "", "")
}

// printNode pretty-prints the subtree rooted at the given node.
func (index *Index[K, V]) printNode(w io.Writer, id nodeID, firstPrefix string, prefix string) {
	n := index.getNode(id)
	var kind string
	if n.kind == leafNode {
		kind = "Leaf"
	} else {
		kind = "Internal"
	}
	var root string
	if isRoot(id) {
		root = " (root)"
	}
	fmt.Fprintf(w, "%v[%v] %v%v size: %v\n", firstPrefix, id, kind, root, n.numKeys)
	if n.kind == leafNode {
		for i := 0; i < n.numKeys; i++ {
			fmt.Fprintf(w, "%v |--> (%v, %v)\n", prefix, n.keys[i], n.values[i])
		}
		if n.next != nilNode {
			fmt.Fprintf(w, "%v |--+\n", prefix)
			fmt.Fprintf(w, "%v    | right sibling @ [%v]\n", prefix, n.next)
			fmt.Fprintf(w, "%v    v\n", prefix)
		}
		return
	}
	nextFirstPrefix := prefix + " |--> "
	nextPrefix := prefix + " |    "
	for i := 0; i <= n.numKeys; i++ {
		fmt.Fprintf(w, "%v\n", nextPrefix)
		index.printNode(w, n.children[i], nextFirstPrefix, nextPrefix)
		if i != n.numKeys {
			fmt.Fprintf(w, "\n%v[KEY] %v\n", nextPrefix, n.keys[i])
		}
	}
}
