package bptree

import "testing"

// intCompare is the comparator used throughout the test suite.
func intCompare(a, b int) int { return a - b }

func noopDestroy[V any](V) {}

// checkInvariants walks the whole tree directly (white-box, since this
// file lives in package bptree) and asserts invariants 1-4 from
// spec.md §8: strictly ascending keys, correct children/keys counts,
// minimum occupancy for non-root nodes, and a consistent leaf chain.
func checkInvariants[K any, V any](t *testing.T, tr *Tree[K, V]) {
	t.Helper()
	checkNode(t, tr, tr.root, nil)
	checkLeafChain(t, tr)
}

func checkNode[K any, V any](t *testing.T, tr *Tree[K, V], n bnode, parent bnode) {
	t.Helper()

	if leaf, ok := n.(*leafNode[K, V]); ok {
		for i := 1; i < len(leaf.keys); i++ {
			if tr.compare(leaf.keys[i-1], leaf.keys[i]) >= 0 {
				t.Fatalf("leaf keys not strictly ascending at %d", i)
			}
		}
		if len(leaf.records) != len(leaf.keys) {
			t.Fatalf("leaf keys/records length mismatch: %d keys, %d records", len(leaf.keys), len(leaf.records))
		}
		if parent != nil && len(leaf.keys) < tr.minLeaf {
			t.Fatalf("leaf underflow: %d keys, minimum %d", len(leaf.keys), tr.minLeaf)
		}
		return
	}

	internal, ok := n.(*internalNode[K, V])
	if !ok {
		t.Fatalf("node is neither leaf nor internal")
	}
	if len(internal.children) != len(internal.keys)+1 {
		t.Fatalf("internal node has %d keys but %d children", len(internal.keys), len(internal.children))
	}
	for i := 1; i < len(internal.keys); i++ {
		if tr.compare(internal.keys[i-1], internal.keys[i]) >= 0 {
			t.Fatalf("internal keys not strictly ascending at %d", i)
		}
	}
	if parent != nil && len(internal.keys) < tr.minInternal {
		t.Fatalf("internal underflow: %d keys, minimum %d", len(internal.keys), tr.minInternal)
	}
	for _, c := range internal.children {
		checkNode(t, tr, c, n)
	}
}

func leftmostLeaf[K any, V any](tr *Tree[K, V]) *leafNode[K, V] {
	n := tr.root
	for {
		if internal, ok := n.(*internalNode[K, V]); ok {
			n = internal.children[0]
			continue
		}
		leaf, _ := n.(*leafNode[K, V])
		return leaf
	}
}

func checkLeafChain[K any, V any](t *testing.T, tr *Tree[K, V]) {
	t.Helper()
	leaf := leftmostLeaf(tr)
	var prev *K
	for leaf != nil {
		for i := range leaf.keys {
			if prev != nil && tr.compare(*prev, leaf.keys[i]) >= 0 {
				t.Fatalf("leaf chain not strictly ascending across leaves")
			}
			k := leaf.keys[i]
			prev = &k
		}
		leaf = leaf.next
	}
}

func allKeys[K any, V any](tr *Tree[K, V]) []K {
	var out []K
	leaf := leftmostLeaf(tr)
	for leaf != nil {
		out = append(out, leaf.keys...)
		leaf = leaf.next
	}
	return out
}
