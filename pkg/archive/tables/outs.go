package tables

import "encoding/binary"

// Outs is the payload of the outs table (§3, §4.8): a nomap slab holding
// a vector of output-fks pointing into the output table. Distinct table
// from puts despite the identical shape: outs is the one addressed
// per-tx via tx.outs_fk, as query.SetBlock writes it and the query
// engine reads it.
type Outs struct {
	OutFks []uint32
}

func (o Outs) Size() int { return len(o.OutFks) * 4 }

func (o Outs) Encode(dst []byte) {
	for i, fk := range o.OutFks {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], fk)
	}
}

func DecodeOuts(src []byte) Outs {
	n := len(src) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint32(src[i*4 : i*4+4])
	}
	return Outs{OutFks: out}
}
