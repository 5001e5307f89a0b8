// Package serialize writes and reads a structural snapshot of a
// bptree.Tree — every node's keys, child links, and leaf chain
// pointers — to a gzip-compressed, checksummed binary stream. It is a
// debug/export facility, grounded on the length-prefixed record
// framing and protobuf payload encoding the teacher's wal package and
// store/serialize_pb.go use, not a WAL or replication log of its own.
//
// A snapshot captures structure only: keys and values are opaque
// byte-encoded payloads (via the KeyEncoder/ValueEncoder and
// KeyDecoder/ValueDecoder callbacks supplied by the caller), and reading a snapshot back produces a flat list of
// decoded nodes rather than a live *bptree.Tree, since a Tree also
// needs a comparator function that has no serializable form.
package serialize

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	magic         uint32 = 0x42504c31 // "BPL1"
	formatVersion uint32 = 1
)

// header is the fixed-size prefix written before the compressed
// payload: magic, format version, node count, and a CRC-32 checksum
// of the uncompressed payload bytes.
type header struct {
	Magic    uint32
	Version  uint32
	NodeCt   uint32
	Checksum uint32
}

func writeHeader(w io.Writer, h header) error {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.NodeCt)
	binary.LittleEndian.PutUint32(buf[12:16], h.Checksum)
	_, err := w.Write(buf[:])
	return err
}

func readHeader(r io.Reader) (header, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return header{}, err
	}
	h := header{
		Magic:    binary.LittleEndian.Uint32(buf[0:4]),
		Version:  binary.LittleEndian.Uint32(buf[4:8]),
		NodeCt:   binary.LittleEndian.Uint32(buf[8:12]),
		Checksum: binary.LittleEndian.Uint32(buf[12:16]),
	}
	if h.Magic != magic {
		return header{}, fmt.Errorf("serialize: bad magic %#x", h.Magic)
	}
	if h.Version != formatVersion {
		return header{}, fmt.Errorf("serialize: unsupported version %d", h.Version)
	}
	return h, nil
}

func checksum(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}
