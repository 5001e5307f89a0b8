// Command bptreectl is a line-oriented demo shell over a bptree.Tree,
// in the spirit of the teacher's flag-driven single-binary main:
// parse flags up front, then drive the index from stdin until EOF.
//
// Supported commands, one per line:
//
//	insert <key> <value...>
//	find <key>
//	delete <key>
//	range <lo> <hi>
//	dot <path>
//	save <path>
//	load <path>
//
// With -value-format=bson, <value...> is parsed as "field=value"
// pairs and stored as a BSON document instead of a plain string.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/lukehassel/btree/bptree"
	"github.com/lukehassel/btree/bsonvalue"
	"github.com/lukehassel/btree/list"
	"github.com/lukehassel/btree/serialize"
	"github.com/lukehassel/btree/viz"
)

var (
	order       = flag.Int("order", 32, "B+ tree order")
	valueFormat = flag.String("value-format", "string", "value encoding: string or bson")
)

func intCompare(a, b int) int { return a - b }

func main() {
	flag.Parse()

	switch *valueFormat {
	case "string":
		runStringShell(*order)
	case "bson":
		runBSONShell(*order)
	default:
		log.Fatalf("unknown -value-format %q (want string or bson)", *valueFormat)
	}
}

func encodeIntKey(k int) ([]byte, error) { return []byte(strconv.Itoa(k)), nil }
func decodeIntKey(b []byte) (int, error) { return strconv.Atoi(string(b)) }

func encodeStringValue(v string) ([]byte, error) { return []byte(v), nil }
func decodeStringValue(b []byte) (string, error) { return string(b), nil }

func runStringShell(order int) {
	tr, err := bptree.New[int, string](order, intCompare, nil)
	if err != nil {
		log.Fatal(err)
	}

	// Buffers range-scan output before printing, giving the
	// singly-linked list collaborator a real consumer of Tree.Range.
	buf := list.New[string](nil)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := dispatchString(tr, buf, fields); err != nil {
			fmt.Fprintf(os.Stdout, "error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
}

func dispatchString(tr *bptree.Tree[int, string], buf *list.List[string], fields []string) error {
	switch fields[0] {
	case "insert":
		if len(fields) < 3 {
			return fmt.Errorf("usage: insert <key> <value>")
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		if err := tr.Insert(k, strings.Join(fields[2:], " ")); err != nil {
			return err
		}
		fmt.Println("ok")

	case "find":
		if len(fields) < 2 {
			return fmt.Errorf("usage: find <key>")
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		v, ok := tr.Find(k)
		if !ok {
			fmt.Println("not found")
			return nil
		}
		fmt.Println(v)

	case "delete":
		if len(fields) < 2 {
			return fmt.Errorf("usage: delete <key>")
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		if err := tr.Delete(k); err != nil {
			return err
		}
		fmt.Println("ok")

	case "range":
		if len(fields) < 3 {
			return fmt.Errorf("usage: range <lo> <hi>")
		}
		lo, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		hi, err := strconv.Atoi(fields[2])
		if err != nil {
			return err
		}
		out := make([]string, 4096)
		n := tr.Range(lo, hi, out)
		buf.Destroy()
		for i := 0; i < n; i++ {
			buf.PushBack(out[i])
		}
		buf.Each(func(v string) { fmt.Println(v) })

	case "dot":
		if len(fields) < 2 {
			return fmt.Errorf("usage: dot <path>")
		}
		f, err := os.Create(fields[1])
		if err != nil {
			return err
		}
		defer f.Close()
		return viz.WriteDOT(f, tr, strconv.Itoa)

	case "save":
		if len(fields) < 2 {
			return fmt.Errorf("usage: save <path>")
		}
		f, err := os.Create(fields[1])
		if err != nil {
			return err
		}
		defer f.Close()
		return serialize.WriteSnapshot(f, tr, encodeIntKey, encodeStringValue)

	case "load":
		if len(fields) < 2 {
			return fmt.Errorf("usage: load <path>")
		}
		f, err := os.Open(fields[1])
		if err != nil {
			return err
		}
		defer f.Close()
		nodes, err := serialize.ReadSnapshot[int, string](f, decodeIntKey, decodeStringValue)
		if err != nil {
			return err
		}
		fmt.Printf("loaded %d nodes (inspection only, not merged into the live tree)\n", len(nodes))

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}

func runBSONShell(order int) {
	tr, err := bptree.New[int, bsonvalue.Document](order, intCompare, nil)
	if err != nil {
		log.Fatal(err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := dispatchBSON(tr, fields); err != nil {
			fmt.Fprintf(os.Stdout, "error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
}

func dispatchBSON(tr *bptree.Tree[int, bsonvalue.Document], fields []string) error {
	switch fields[0] {
	case "insert":
		if len(fields) < 3 {
			return fmt.Errorf("usage: insert <key> field=value [field=value...]")
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		doc := bsonvalue.Document{}
		for _, pair := range fields[2:] {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				return fmt.Errorf("bad field pair %q, want field=value", pair)
			}
			doc[kv[0]] = kv[1]
		}
		if err := tr.Insert(k, doc); err != nil {
			return err
		}
		fmt.Println("ok")

	case "find":
		if len(fields) < 2 {
			return fmt.Errorf("usage: find <key>")
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		v, ok := tr.Find(k)
		if !ok {
			fmt.Println("not found")
			return nil
		}
		fmt.Println(v)

	case "delete":
		if len(fields) < 2 {
			return fmt.Errorf("usage: delete <key>")
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		if err := tr.Delete(k); err != nil {
			return err
		}
		fmt.Println("ok")

	case "range":
		if len(fields) < 3 {
			return fmt.Errorf("usage: range <lo> <hi>")
		}
		lo, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		hi, err := strconv.Atoi(fields[2])
		if err != nil {
			return err
		}
		out := make([]bsonvalue.Document, 4096)
		n := tr.Range(lo, hi, out)
		for i := 0; i < n; i++ {
			fmt.Println(out[i])
		}

	default:
		return fmt.Errorf("unknown command %q (dot/save/load are string-mode only)", fields[0])
	}
	return nil
}
