package tables

import "encoding/binary"

// Spend is the payload of the spend table (§3, §4.8): keyed by
// (stub ⨁ output-index) (hashmap), holding enough to identify the
// spending transaction and the exact prevout it spends.
//
// Wire layout: parent_tx_fk(4) point_fk(4) point_index(4) sequence(4).
type Spend struct {
	ParentTxFk uint32
	PointFk    uint32
	PointIndex uint32
	Sequence   uint32
}

const SpendSize = 4 + 4 + 4 + 4

func (s Spend) Encode(dst []byte) {
	_ = dst[:SpendSize]
	binary.LittleEndian.PutUint32(dst[0:4], s.ParentTxFk)
	binary.LittleEndian.PutUint32(dst[4:8], s.PointFk)
	binary.LittleEndian.PutUint32(dst[8:12], s.PointIndex)
	binary.LittleEndian.PutUint32(dst[12:16], s.Sequence)
}

func DecodeSpend(src []byte) Spend {
	_ = src[:SpendSize]
	var s Spend
	s.ParentTxFk = binary.LittleEndian.Uint32(src[0:4])
	s.PointFk = binary.LittleEndian.Uint32(src[4:8])
	s.PointIndex = binary.LittleEndian.Uint32(src[8:12])
	s.Sequence = binary.LittleEndian.Uint32(src[12:16])
	return s
}
