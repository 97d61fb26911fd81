package tables

import "encoding/binary"

// Ins is the payload of the ins table (§3, §4.8): a nomap, one fixed
// record per input slot, contiguous per tx starting at tx.point_fk for
// tx.ins_count records (§3.1 invariant).
//
// Wire layout: input_fk(4) sequence(4).
type Ins struct {
	InputFk  uint32
	Sequence uint32
}

const InsSize = 4 + 4

func (i Ins) Encode(dst []byte) {
	_ = dst[:InsSize]
	binary.LittleEndian.PutUint32(dst[0:4], i.InputFk)
	binary.LittleEndian.PutUint32(dst[4:8], i.Sequence)
}

func DecodeIns(src []byte) Ins {
	_ = src[:InsSize]
	var i Ins
	i.InputFk = binary.LittleEndian.Uint32(src[0:4])
	i.Sequence = binary.LittleEndian.Uint32(src[4:8])
	return i
}
