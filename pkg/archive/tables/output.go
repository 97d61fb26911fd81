package tables

import "encoding/binary"

// Output is the payload of the output table (§3, §4.8): a nomap slab
// holding one serialized transaction output (value + script).
//
// Wire layout: value(8) script_length(4) script(script_length).
type Output struct {
	Value  uint64
	Script []byte
}

func (o Output) Size() int { return 8 + 4 + len(o.Script) }

func (o Output) Encode(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:8], o.Value)
	binary.LittleEndian.PutUint32(dst[8:12], uint32(len(o.Script)))
	copy(dst[12:], o.Script)
}

func DecodeOutput(src []byte) Output {
	var o Output
	o.Value = binary.LittleEndian.Uint64(src[0:8])
	n := binary.LittleEndian.Uint32(src[8:12])
	o.Script = append([]byte(nil), src[12:12+int(n)]...)
	return o
}
