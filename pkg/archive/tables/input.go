package tables

import "encoding/binary"

// Input is the payload of the input table (§3, §4.8): a nomap slab
// holding one serialized input's unlocking script and witness stack.
//
// Wire layout: script_length(4) script(...) witness_count(4)
// [item_length(4) item(...)] * witness_count.
type Input struct {
	Script  []byte
	Witness [][]byte
}

func (in Input) Size() int {
	n := 4 + len(in.Script) + 4
	for _, item := range in.Witness {
		n += 4 + len(item)
	}
	return n
}

func (in Input) Encode(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(len(in.Script)))
	off := 4
	copy(dst[off:], in.Script)
	off += len(in.Script)

	binary.LittleEndian.PutUint32(dst[off:off+4], uint32(len(in.Witness)))
	off += 4
	for _, item := range in.Witness {
		binary.LittleEndian.PutUint32(dst[off:off+4], uint32(len(item)))
		off += 4
		copy(dst[off:], item)
		off += len(item)
	}
}

func DecodeInput(src []byte) Input {
	var in Input
	scriptLen := int(binary.LittleEndian.Uint32(src[0:4]))
	off := 4
	in.Script = append([]byte(nil), src[off:off+scriptLen]...)
	off += scriptLen

	witnessCount := int(binary.LittleEndian.Uint32(src[off : off+4]))
	off += 4
	in.Witness = make([][]byte, witnessCount)
	for i := 0; i < witnessCount; i++ {
		itemLen := int(binary.LittleEndian.Uint32(src[off : off+4]))
		off += 4
		in.Witness[i] = append([]byte(nil), src[off:off+itemLen]...)
		off += itemLen
	}
	return in
}
