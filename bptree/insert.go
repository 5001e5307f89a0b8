package bptree

import "github.com/lukehassel/btree/bptreeerr"

// Insert adds key/value to the tree. It fails with a DuplicateKey
// error if key is already present — in which case value is not taken,
// the caller retains ownership — and with an InvalidArg error if key
// or value is nil. On success, ownership of value transfers to the
// tree.
//
// Insert performs a single write-locked descent that aborts before
// mutating on a duplicate hit, rather than a separate read-only
// lookup followed by a second mutating descent. Both shapes satisfy
// the DuplicateKey contract; this one avoids paying for two descents
// on the common, non-duplicate path.
func (t *Tree[K, V]) Insert(key K, value V) error {
	if isNilValue(key) || isNilValue(value) {
		return bptreeerr.New(bptreeerr.InvalidArg, "key and value must not be nil")
	}

	leaf, ancestors := t.locateForMutation(key, t.safeForInsert)
	idx, found := t.searchLeaf(leaf, key)
	if found {
		leaf.Unlock()
		t.unlockAncestors(ancestors)
		return bptreeerr.New(bptreeerr.DuplicateKey, "key already present")
	}

	leaf.keys = insertAt(leaf.keys, idx, key)
	leaf.records = insertAt(leaf.records, idx, &record[V]{value: value})

	if len(leaf.keys) <= t.order-1 {
		leaf.Unlock()
		t.unlockAncestors(ancestors)
		return nil
	}

	t.splitLeaf(leaf, ancestors)
	return nil
}

// searchLeaf binary-searches leaf's ascending keys for key, returning
// the index at which key either was found (found=true) or should be
// inserted (found=false).
func (t *Tree[K, V]) searchLeaf(leaf *leafNode[K, V], key K) (idx int, found bool) {
	lo, hi := 0, len(leaf.keys)
	for lo < hi {
		mid := (lo + hi) / 2
		c := t.compare(key, leaf.keys[mid])
		switch {
		case c == 0:
			return mid, true
		case c < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return lo, false
}

// splitLeaf is called with leaf already over capacity (order keys,
// one more than it can hold) and write-locked by the caller. ancestors
// is the chain locateForMutation kept locked on the way down — by
// construction its last entry, if any, is leaf's parent, already
// write-locked, so no further acquisition is needed to install the
// new separator. splitLeaf splits leaf in two, threads the new leaf
// into the leaf chain, and promotes the new leaf's first key into the
// parent.
func (t *Tree[K, V]) splitLeaf(leaf *leafNode[K, V], ancestors []bnode) {
	splitPoint := ceilDiv(t.order, 2)

	newLeaf := newLeaf[K, V]()
	newLeaf.Lock()

	newLeaf.keys = append([]K(nil), leaf.keys[splitPoint:]...)
	newLeaf.records = append([]*record[V](nil), leaf.records[splitPoint:]...)
	leaf.keys = leaf.keys[:splitPoint]
	leaf.records = leaf.records[:splitPoint]

	newLeaf.next = leaf.next
	leaf.next = newLeaf
	newLeaf.parent = leaf.parent

	// insertIntoParent takes ownership of unlocking both leaf and
	// newLeaf, however deep the resulting internal-node cascade goes.
	t.insertIntoParent(leaf, newLeaf.keys[0], newLeaf, ancestors)
}

// insertIntoParent installs (sepKey, right) as a new separator/child
// pair in left's parent, splitting the parent (and recursing upward)
// if it has no room, or installing a brand-new root if left has no
// parent yet. left and right must already be write-locked by the
// caller; insertIntoParent always unlocks both before returning,
// regardless of which path it takes.
//
// left's parent, when it exists, is never locked here: the safe-node
// descent in locateForMutation already proved it might need
// modification and kept it locked, as the last entry of ancestors.
// Re-acquiring it with a fresh Lock call is exactly the bottom-up
// pattern that deadlocks against a concurrent top-down descent taking
// the same pair of nodes in the opposite order, so insertIntoParent
// only ever unlocks ancestors it has finished with, never locks one.
func (t *Tree[K, V]) insertIntoParent(left bnode, sepKey K, right bnode, ancestors []bnode) {
	parent := parentOf[K, V](left)

	if parent == nil {
		newRoot := newInternal[K, V]()
		newRoot.keys = []K{sepKey}
		newRoot.children = []bnode{left, right}
		setParentOf[K, V](left, newRoot)
		setParentOf[K, V](right, newRoot)
		t.setRoot(newRoot)
		t.unlockNode(left, modeWrite)
		t.unlockNode(right, modeWrite)
		return
	}

	remaining := ancestors[:len(ancestors)-1]

	idx := indexOfChild(parent, left)
	parent.keys = insertAt(parent.keys, idx, sepKey)
	parent.children = insertAt(parent.children, idx+1, right)
	setParentOf[K, V](right, parent)

	t.unlockNode(left, modeWrite)
	t.unlockNode(right, modeWrite)

	if len(parent.keys) <= t.order-1 {
		parent.Unlock()
		t.unlockAncestors(remaining)
		return
	}

	t.splitInternal(parent, remaining)
}

// splitInternal splits an over-full internal node (order keys,
// order+1 children), promoting the middle key to the grandparent.
// parent must already be write-locked by the caller; like
// insertIntoParent, it always unlocks parent before returning.
// ancestors is the chain still retained above parent.
func (t *Tree[K, V]) splitInternal(parent *internalNode[K, V], ancestors []bnode) {
	mid := t.order / 2
	promote := parent.keys[mid]

	newRight := newInternal[K, V]()
	newRight.Lock()
	newRight.keys = append([]K(nil), parent.keys[mid+1:]...)
	newRight.children = append([]bnode(nil), parent.children[mid+1:]...)

	parent.keys = parent.keys[:mid]
	parent.children = parent.children[:mid+1]

	for _, child := range newRight.children {
		t.lockNode(child, modeWrite)
		setParentOf[K, V](child, newRight)
		t.unlockNode(child, modeWrite)
	}

	t.insertIntoParent(parent, promote, newRight, ancestors)
}
