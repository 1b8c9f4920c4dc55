package btree

import "relidx/pkg/config"

// DefaultOrder is the maximum fanout of a node. A leaf holds up to
// DefaultOrder-1 entries, an internal node up to DefaultOrder-1 separator
// keys and DefaultOrder children.
const DefaultOrder = config.DefaultOrder

// MinOrder is the smallest fanout that still allows a midpoint split.
const MinOrder = 3

// We always maintain the invariant that the root lives at slot 0 of the
// node arena. This saves us the effort of chasing a moving root: when the
// root splits, its contents move to a fresh node and slot 0 is rebuilt as
// the new root.
const rootID nodeID = 0
