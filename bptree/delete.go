package bptree

import "github.com/lukehassel/btree/bptreeerr"

// Delete removes key from the tree, failing with a NotFound error if
// key is absent, or InvalidArg if key is nil. On success the
// configured destroyer (if any) is applied exactly once to the
// removed value before Delete returns; rebalancing that cascades
// upward afterward never touches the removed value again.
func (t *Tree[K, V]) Delete(key K) error {
	if isNilValue(key) {
		return bptreeerr.New(bptreeerr.InvalidArg, "key must not be nil")
	}

	leaf, ancestors := t.locateForMutation(key, t.safeForDelete)
	idx, found := t.searchLeaf(leaf, key)
	if !found {
		leaf.Unlock()
		t.unlockAncestors(ancestors)
		return bptreeerr.New(bptreeerr.NotFound, "key not present")
	}

	removed := leaf.records[idx].value
	leaf.keys = removeAt(leaf.keys, idx)
	leaf.records = removeAt(leaf.records, idx)

	if t.destroy != nil {
		t.destroy(removed)
	}

	if leaf.parent == nil || len(leaf.keys) >= t.minLeaf {
		leaf.Unlock()
		t.unlockAncestors(ancestors)
		return nil
	}

	t.fixUnderflowLeaf(leaf, ancestors)
	return nil
}

// fixUnderflowLeaf handles a leaf that has fallen below minLeaf after
// a removal. leaf arrives write-locked and not the root; this
// function always unlocks leaf (and any sibling it locks) before
// returning, and either unlocks parent directly or delegates that to
// fixParentAfterMerge. parent is leaf's last retained ancestor — the
// safe-node descent in locateForMutation already kept it locked
// because leaf was found unsafe, so it is never locked again here;
// doing so would be exactly the bottom-up re-acquisition that can
// deadlock against a concurrent top-down descent. It prefers
// redistributing a key from the left sibling, then the right sibling,
// and falls back to merging with whichever sibling exists, preferring
// the left one, exactly as spec.md §4.4 orders the attempts.
func (t *Tree[K, V]) fixUnderflowLeaf(leaf *leafNode[K, V], ancestors []bnode) {
	parent := leaf.parent
	remaining := ancestors[:len(ancestors)-1]
	idx := indexOfChild(parent, leaf)

	var left, right *leafNode[K, V]
	if idx > 0 {
		left, _ = parent.children[idx-1].(*leafNode[K, V])
		left.Lock()
	}
	if idx < len(parent.children)-1 {
		right, _ = parent.children[idx+1].(*leafNode[K, V])
		right.Lock()
	}

	switch {
	case left != nil && len(left.keys) > t.minLeaf:
		last := len(left.keys) - 1
		k, r := left.keys[last], left.records[last]
		left.keys = left.keys[:last]
		left.records = left.records[:last]
		leaf.keys = insertAt(leaf.keys, 0, k)
		leaf.records = insertAt(leaf.records, 0, r)
		parent.keys[idx-1] = leaf.keys[0]

		if right != nil {
			right.Unlock()
		}
		left.Unlock()
		leaf.Unlock()
		parent.Unlock()
		t.unlockAncestors(remaining)

	case right != nil && len(right.keys) > t.minLeaf:
		k, r := right.keys[0], right.records[0]
		right.keys = right.keys[1:]
		right.records = right.records[1:]
		leaf.keys = append(leaf.keys, k)
		leaf.records = append(leaf.records, r)
		parent.keys[idx] = right.keys[0]

		if left != nil {
			left.Unlock()
		}
		right.Unlock()
		leaf.Unlock()
		parent.Unlock()
		t.unlockAncestors(remaining)

	case left != nil:
		left.keys = append(left.keys, leaf.keys...)
		left.records = append(left.records, leaf.records...)
		left.next = leaf.next

		if right != nil {
			right.Unlock()
		}
		leaf.Unlock()

		parent.keys = removeAt(parent.keys, idx-1)
		parent.children = removeAt(parent.children, idx)
		left.Unlock()

		t.fixParentAfterMerge(parent, remaining)

	case right != nil:
		leaf.keys = append(leaf.keys, right.keys...)
		leaf.records = append(leaf.records, right.records...)
		leaf.next = right.next
		right.Unlock()

		parent.keys = removeAt(parent.keys, idx)
		parent.children = removeAt(parent.children, idx+1)
		leaf.Unlock()

		t.fixParentAfterMerge(parent, remaining)

	default:
		// No sibling: parent has a single child, which should not
		// happen for a non-root internal node under the minimum
		// occupancy invariant. Unlock defensively rather than corrupt
		// state further.
		leaf.Unlock()
		parent.Unlock()
		t.unlockAncestors(remaining)
	}
}

// fixParentAfterMerge is called after a child merge removed one key
// from parent. parent arrives write-locked; this function always
// unlocks it (directly, or by delegating to fixUnderflowInternal)
// before returning, and releases whatever ancestors remain retained
// above it. If parent is the root and now holds zero keys, its one
// remaining child is promoted to be the new root.
func (t *Tree[K, V]) fixParentAfterMerge(parent *internalNode[K, V], ancestors []bnode) {
	grandparent := parent.parent

	if grandparent == nil {
		if len(parent.keys) == 0 {
			onlyChild := parent.children[0]
			t.lockNode(onlyChild, modeWrite)
			setParentOf[K, V](onlyChild, nil)
			t.unlockNode(onlyChild, modeWrite)
			t.setRoot(onlyChild)
		}
		parent.Unlock()
		t.unlockAncestors(ancestors)
		return
	}

	if len(parent.keys) >= t.minInternal {
		parent.Unlock()
		t.unlockAncestors(ancestors)
		return
	}

	t.fixUnderflowInternal(parent, ancestors)
}

// fixUnderflowInternal is the internal-node counterpart of
// fixUnderflowLeaf: node arrives write-locked and not the root; this
// function always unlocks it (and any sibling it locks) before
// returning, and either unlocks parent directly or delegates that to
// fixParentAfterMerge. parent, like in fixUnderflowLeaf, is always
// node's last retained ancestor and is never locked afresh here.
func (t *Tree[K, V]) fixUnderflowInternal(node *internalNode[K, V], ancestors []bnode) {
	parent := node.parent
	remaining := ancestors[:len(ancestors)-1]
	idx := indexOfChild(parent, node)

	var left, right *internalNode[K, V]
	if idx > 0 {
		left, _ = parent.children[idx-1].(*internalNode[K, V])
		left.Lock()
	}
	if idx < len(parent.children)-1 {
		right, _ = parent.children[idx+1].(*internalNode[K, V])
		right.Lock()
	}

	switch {
	case left != nil && len(left.keys) > t.minInternal:
		lastKey := len(left.keys) - 1
		movedChild := left.children[len(left.children)-1]
		movedKey := left.keys[lastKey]
		left.keys = left.keys[:lastKey]
		left.children = left.children[:len(left.children)-1]

		node.keys = insertAt(node.keys, 0, parent.keys[idx-1])
		node.children = insertAt(node.children, 0, movedChild)
		t.lockNode(movedChild, modeWrite)
		setParentOf[K, V](movedChild, node)
		t.unlockNode(movedChild, modeWrite)
		parent.keys[idx-1] = movedKey

		if right != nil {
			right.Unlock()
		}
		left.Unlock()
		node.Unlock()
		parent.Unlock()
		t.unlockAncestors(remaining)

	case right != nil && len(right.keys) > t.minInternal:
		movedChild := right.children[0]
		movedKey := right.keys[0]
		right.keys = right.keys[1:]
		right.children = right.children[1:]

		node.keys = append(node.keys, parent.keys[idx])
		node.children = append(node.children, movedChild)
		t.lockNode(movedChild, modeWrite)
		setParentOf[K, V](movedChild, node)
		t.unlockNode(movedChild, modeWrite)
		parent.keys[idx] = movedKey

		if left != nil {
			left.Unlock()
		}
		right.Unlock()
		node.Unlock()
		parent.Unlock()
		t.unlockAncestors(remaining)

	case left != nil:
		sep := parent.keys[idx-1]
		left.keys = append(left.keys, sep)
		left.keys = append(left.keys, node.keys...)
		left.children = append(left.children, node.children...)
		for _, c := range node.children {
			t.lockNode(c, modeWrite)
			setParentOf[K, V](c, left)
			t.unlockNode(c, modeWrite)
		}

		if right != nil {
			right.Unlock()
		}
		node.Unlock()

		parent.keys = removeAt(parent.keys, idx-1)
		parent.children = removeAt(parent.children, idx)
		left.Unlock()

		t.fixParentAfterMerge(parent, remaining)

	case right != nil:
		sep := parent.keys[idx]
		node.keys = append(node.keys, sep)
		node.keys = append(node.keys, right.keys...)
		node.children = append(node.children, right.children...)
		for _, c := range right.children {
			t.lockNode(c, modeWrite)
			setParentOf[K, V](c, node)
			t.unlockNode(c, modeWrite)
		}
		right.Unlock()

		parent.keys = removeAt(parent.keys, idx)
		parent.children = removeAt(parent.children, idx+1)
		node.Unlock()

		t.fixParentAfterMerge(parent, remaining)

	default:
		node.Unlock()
		parent.Unlock()
		t.unlockAncestors(remaining)
	}
}
