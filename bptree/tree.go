// Package bptree implements an in-memory, thread-safe, ordered index
// backed by a B+ tree keyed by opaque, user-ordered keys mapping to
// opaque value handles. Concurrent access is safe under mixed
// read/write workloads: every node carries its own read-write lock,
// and traversal uses lock coupling (hand-over-hand locking) rather
// than a single tree-wide mutex.
//
// The tree supports point lookup, single-key insertion (no
// duplicates), single-key deletion, and inclusive-bounded ordered
// range scans. It does not provide persistence, multi-version
// concurrency, snapshot isolation, duplicate keys, secondary
// indexing, multi-operation transactions, or lock-free progress
// guarantees.
package bptree

import (
	"sync"

	"github.com/lukehassel/btree/bptreeerr"
)

// Comparator defines a total order over K. It must be deterministic,
// side-effect-free, and consistent across the lifetime of any key
// stored in the tree. It returns a negative number if a < b, zero if
// a == b, and a positive number if a > b.
type Comparator[K any] func(a, b K) int

// Destroyer is applied exactly once to a value when the tree drops
// ownership of it (on Delete or Close). It must not call back into
// the tree.
type Destroyer[V any] func(value V)

// Tree owns the root node exclusively, plus the configuration fixed
// at creation time.
type Tree[K any, V any] struct {
	// rootMu protects the root pointer itself across split-at-root and
	// merge-to-single-child replacement; it is not held during
	// ordinary descent past the root, only around the read/swap of the
	// pointer.
	rootMu sync.RWMutex
	root   bnode

	order   int
	compare Comparator[K]
	destroy Destroyer[V]

	minLeaf     int
	minInternal int
}

// New creates an empty tree with the given branching factor. order
// must be at least 3 and compare must not be nil; destroy may be nil
// if the tree does not own its values' lifecycle.
func New[K any, V any](order int, compare Comparator[K], destroy Destroyer[V]) (*Tree[K, V], error) {
	if order < 3 {
		return nil, bptreeerr.New(bptreeerr.InvalidConfig, "order must be >= 3")
	}
	if compare == nil {
		return nil, bptreeerr.New(bptreeerr.InvalidConfig, "comparator must not be nil")
	}

	t := &Tree[K, V]{
		order:   order,
		compare: compare,
		destroy: destroy,
	}
	t.minLeaf = ceilDiv(order-1, 2)
	t.minInternal = ceilDiv(order, 2) - 1
	t.root = newLeaf[K, V]()
	return t, nil
}

// ceilDiv computes ceil(a/b) for non-negative a and positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// getRoot reads the root pointer under rootMu, so a descent that
// races a split-at-root or merge-to-single-child re-reads the current
// root rather than a stale one.
func (t *Tree[K, V]) getRoot() bnode {
	t.rootMu.RLock()
	defer t.rootMu.RUnlock()
	return t.root
}

// setRoot installs a new root pointer under rootMu.
func (t *Tree[K, V]) setRoot(n bnode) {
	t.rootMu.Lock()
	t.root = n
	t.rootMu.Unlock()
}

// Close tears down every node and applies the destroyer (if
// configured) to every stored value exactly once. Close must not be
// called concurrently with any other operation on the tree; the tree
// must not be used afterward.
func (t *Tree[K, V]) Close() {
	root := t.getRoot()
	t.destroyNode(root)
	t.root = nil
}

func (t *Tree[K, V]) destroyNode(n bnode) {
	if n == nil {
		return
	}
	if leaf, ok := asLeaf[K, V](n); ok {
		if t.destroy != nil {
			for _, rec := range leaf.records {
				t.destroy(rec.value)
			}
		}
		leaf.records = nil
		leaf.keys = nil
		return
	}
	internal, _ := asInternal[K, V](n)
	for _, child := range internal.children {
		t.destroyNode(child)
	}
	internal.children = nil
	internal.keys = nil
}
