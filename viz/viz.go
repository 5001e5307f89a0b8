// Package viz renders a bptree.Tree's structure as Graphviz DOT, the
// way the original implementation's bplus_tree_write_dot wrote one
// record-shaped node per tree node plus dashed red edges along the
// leaf chain — reimplemented here with fmt.Fprintf against an
// io.Writer instead of a raw FILE*, since there is no bundled
// Graphviz binding in the retrieved stack to render the PNG itself.
package viz

import (
	"fmt"
	"io"
	"strings"

	"github.com/lukehassel/btree/bptree"
)

// KeyFormatter renders a single key as the text shown inside its
// node's record label.
type KeyFormatter[K any] func(key K) string

// WriteDOT writes a complete "digraph BPlusTree { ... }" description
// of tr to w. Each node becomes a record-shaped box listing its keys;
// internal nodes get solid blue edges to their children, and leaves
// get a dashed red edge to the next leaf in the chain.
func WriteDOT[K any, V any](w io.Writer, tr *bptree.Tree[K, V], formatKey KeyFormatter[K]) error {
	fmt.Fprintln(w, "digraph BPlusTree {")
	fmt.Fprintln(w, "  rankdir=TB;")
	fmt.Fprintln(w, "  node [shape=record, style=filled, fillcolor=lightblue];")
	fmt.Fprintln(w, "  edge [color=blue];")
	fmt.Fprintln(w)

	var writeErr error
	tr.Walk(func(info bptree.NodeInfo[K]) {
		if writeErr != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "  node_%d [label=\"%s\"];\n", info.ID, recordLabel(info.Keys, formatKey)); err != nil {
			writeErr = err
			return
		}
		if info.IsLeaf {
			if info.NextLeafID != 0 {
				if _, err := fmt.Fprintf(w, "  node_%d -> node_%d [style=dashed, color=red];\n", info.ID, info.NextLeafID); err != nil {
					writeErr = err
				}
			}
			return
		}
		for _, childID := range info.ChildIDs {
			if _, err := fmt.Fprintf(w, "  node_%d -> node_%d;\n", info.ID, childID); err != nil {
				writeErr = err
				return
			}
		}
	})
	if writeErr != nil {
		return writeErr
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

func recordLabel[K any](keys []K, formatKey KeyFormatter[K]) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = formatKey(k)
	}
	return "{" + strings.Join(parts, "|") + "}"
}
