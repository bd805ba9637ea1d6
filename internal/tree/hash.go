package tree

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a 64-bit xxhash of the node's structure. Trees that
// are Equal have the same fingerprint.
func (n *Node) Fingerprint() uint64 {
	d := xxhash.New()
	n.writeHash(d)
	return d.Sum64()
}

func (n *Node) writeHash(d *xxhash.Digest) {
	var b [8]byte
	if n == nil {
		_, _ = d.Write([]byte{byte(NullKind)})
		return
	}
	_, _ = d.Write([]byte{byte(n.Kind)})

	switch n.Kind {
	case BoolKind:
		if n.Bool {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{0})
		}
	case NumberKind:
		// numerically equal literals hash alike
		if f, ok := n.Float64(); ok {
			if f == 0 {
				f = 0
			}
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
			_, _ = d.Write(b[:])
		} else {
			_, _ = d.WriteString(n.Number)
		}
	case StringKind:
		writeLen(d, len(n.String))
		_, _ = d.WriteString(n.String)
	case ArrayKind:
		writeLen(d, len(n.Values))
		for _, v := range n.Values {
			v.writeHash(d)
		}
	case ObjectKind:
		writeLen(d, len(n.Fields))
		for _, f := range n.Fields {
			writeLen(d, len(f.Key))
			_, _ = d.WriteString(f.Key)
			f.Value.writeHash(d)
		}
	}
}

func writeLen(d *xxhash.Digest, l int) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(l))
	_, _ = d.Write(b[:])
}
