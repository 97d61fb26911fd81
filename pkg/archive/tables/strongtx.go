package tables

import "encoding/binary"

// StrongTx is the payload of the strong_tx table (§3, §4.8): keyed by
// tx-fk (hashmap), one record per (tx, header) strength association.
// §3.1 invariant: a tx is strong for header H iff the highest-block
// instance of its strong_tx chain for that header has positive=true.
//
// Wire layout: header_fk(4, high bit = positive flag).
type StrongTx struct {
	HeaderFk uint32
	Positive bool
}

const StrongTxSize = 4

func (s StrongTx) Encode(dst []byte) {
	_ = dst[:StrongTxSize]
	v := s.HeaderFk
	if s.Positive {
		v |= flagBit32
	}
	binary.LittleEndian.PutUint32(dst[0:4], v)
}

func DecodeStrongTx(src []byte) StrongTx {
	_ = src[:StrongTxSize]
	v := binary.LittleEndian.Uint32(src[0:4])
	return StrongTx{HeaderFk: v &^ flagBit32, Positive: v&flagBit32 != 0}
}
