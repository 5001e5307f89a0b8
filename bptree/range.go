package bptree

// Range writes, in ascending key order, the values of every stored
// key k with lo <= k <= hi into out, stopping after len(out) values
// (truncation is silent) or once the window is exhausted, and returns
// the number of values written. If compare(lo, hi) > 0 it returns 0
// without touching out.
//
// Range is ordered but not a point-in-time snapshot: a concurrent
// insert or delete racing the scan may or may not be observed, but
// the values observed are always in strictly ascending key order. At
// most two leaves are read-locked at once — the scan acquires the
// next leaf's read lock before releasing the current one, so a
// writer can never see a "gap" where neither sibling is protected by
// a scan in progress, and a reader never blocks another reader.
func (t *Tree[K, V]) Range(lo, hi K, out []V) int {
	if t.compare(lo, hi) > 0 {
		return 0
	}

	leaf := t.locateLeaf(lo, modeRead)
	idx, _ := t.searchLeaf(leaf, lo)

	count := 0
	current := leaf
	i := idx

	for {
		for ; i < len(current.keys); i++ {
			if t.compare(current.keys[i], hi) > 0 {
				current.RUnlock()
				return count
			}
			if count >= len(out) {
				current.RUnlock()
				return count
			}
			out[count] = current.records[i].value
			count++
		}

		next := current.next
		if next == nil {
			current.RUnlock()
			return count
		}
		next.RLock()
		current.RUnlock()
		current = next
		i = 0
	}
}
