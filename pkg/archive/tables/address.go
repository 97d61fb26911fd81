package tables

import "encoding/binary"

// Address is the payload of the optional address table (§3, §4.8):
// keyed by 20-byte short hash (hashmap), one record per output paying to
// that hash. Multiple outputs sharing an address chain via the
// hashmap's collision list, newest first (§4.5 ordering).
//
// Wire layout: output_fk(4).
type Address struct {
	OutputFk uint32
}

const AddressSize = 4

func (a Address) Encode(dst []byte) {
	_ = dst[:AddressSize]
	binary.LittleEndian.PutUint32(dst[0:4], a.OutputFk)
}

func DecodeAddress(src []byte) Address {
	_ = src[:AddressSize]
	return Address{OutputFk: binary.LittleEndian.Uint32(src[0:4])}
}
