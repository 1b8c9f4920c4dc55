package btree

/////////////////////////////////////////////////////////////////////////////
///////////////////////// Structs and helpers ///////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// nodeID addresses a node in the index's arena. Parent and sibling links
// are stored as ids, never as owning references: ownership flows strictly
// from the root down through child ids.
type nodeID int32

// nilNode marks the absence of a node (no parent, no right sibling).
const nilNode nodeID = -1

// nodeKind identifies if a node is a leaf node or an internal node.
type nodeKind bool

const (
	internalNode nodeKind = false
	leafNode     nodeKind = true
)

// split is a supporting data structure to propagate information needed to
// implement splits up the tree after inserts.
type split[K any] struct {
	isSplit bool   // set to true if a split occurred
	key     K      // the key being pushed up
	leftID  nodeID // the id of the left node
	rightID nodeID // the id of the right node
}

// node is one arena slot: either a leaf holding entries and a right
// sibling link, or an internal node holding separator keys and child ids.
// keys/values/children are fixed-length with numKeys as the fill counter,
// sized one past the steady-state maximum so a node can briefly go
// over-full between an insert and the split it triggers.
type node[K any, V any] struct {
	kind     nodeKind
	parent   nodeID
	numKeys  int
	keys     []K
	values   []V      // leaf nodes only
	children []nodeID // internal nodes only
	next     nodeID   // leaf nodes only: right sibling in the leaf chain
}

// newNode builds a fresh node of the given kind without placing it in
// the arena.
func (index *Index[K, V]) newNode(kind nodeKind) *node[K, V] {
	n := &node[K, V]{
		kind:   kind,
		parent: nilNode,
		keys:   make([]K, index.order),
		next:   nilNode,
	}
	if kind == leafNode {
		n.values = make([]V, index.order)
	} else {
		n.children = make([]nodeID, index.order+1)
		for i := range n.children {
			n.children[i] = nilNode
		}
	}
	return n
}

// alloc appends a fresh node of the given kind to the arena and returns
// its id.
func (index *Index[K, V]) alloc(kind nodeKind) nodeID {
	index.nodes = append(index.nodes, index.newNode(kind))
	return nodeID(len(index.nodes) - 1)
}

// getNode returns the node stored at the given id.
func (index *Index[K, V]) getNode(id nodeID) *node[K, V] {
	return index.nodes[id]
}

// isRoot returns true if the given id is the root slot.
func isRoot(id nodeID) bool {
	return id == rootID
}
