package tables

import "encoding/binary"

// Puts is the payload of the puts table (§3, §4.8): a nomap slab holding
// a tx's vector of output-fks (one per output, §3.1 invariant
// puts.out_fks.size() == tx.outs_count).
type Puts struct {
	OutFks []uint32
}

func (p Puts) Size() int { return len(p.OutFks) * 4 }

func (p Puts) Encode(dst []byte) {
	for i, fk := range p.OutFks {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], fk)
	}
}

func DecodePuts(src []byte) Puts {
	n := len(src) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint32(src[i*4 : i*4+4])
	}
	return Puts{OutFks: out}
}
