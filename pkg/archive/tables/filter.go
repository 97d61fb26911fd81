package tables

import "encoding/binary"

// putVariableSize writes n as a Bitcoin CompactSize varint (the
// original's write_variable/variable_size: 1 byte below 0xfd, else a
// 0xfd/0xfe/0xff prefix followed by a 2/4/8-byte little-endian value)
// and returns how many bytes it wrote.
func putVariableSize(dst []byte, n uint64) int {
	switch {
	case n < 0xfd:
		dst[0] = byte(n)
		return 1
	case n <= 0xffff:
		dst[0] = 0xfd
		binary.LittleEndian.PutUint16(dst[1:3], uint16(n))
		return 3
	case n <= 0xffffffff:
		dst[0] = 0xfe
		binary.LittleEndian.PutUint32(dst[1:5], uint32(n))
		return 5
	default:
		dst[0] = 0xff
		binary.LittleEndian.PutUint64(dst[1:9], n)
		return 9
	}
}

// variableSizeLen reports how many bytes putVariableSize(n) would write,
// for sizing a destination buffer ahead of Encode.
func variableSizeLen(n uint64) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// getVariableSize reads a CompactSize varint (the original's read_size)
// and returns the value plus how many bytes it consumed.
func getVariableSize(src []byte) (uint64, int) {
	switch src[0] {
	case 0xfd:
		return uint64(binary.LittleEndian.Uint16(src[1:3])), 3
	case 0xfe:
		return uint64(binary.LittleEndian.Uint32(src[1:5])), 5
	case 0xff:
		return binary.LittleEndian.Uint64(src[1:9]), 9
	default:
		return uint64(src[0]), 1
	}
}

// FilterBk is the payload of the filter_bk table (§3, §4.8): keyed by
// header-fk (arraymap), the optional compact-filter index's per-block
// filter header and filter bytes. Generating the filter itself is out of
// scope (§1 Non-goals); this table only stores whatever the caller
// supplies.
//
// Wire layout: filter_header(32) filter_length(varint) filter(...),
// matching the original's filter_bk::slab (write_variable/read_size),
// not a fixed-width length prefix.
type FilterBk struct {
	FilterHeader [32]byte
	Filter       []byte
}

func (f FilterBk) Size() int { return 32 + variableSizeLen(uint64(len(f.Filter))) + len(f.Filter) }

func (f FilterBk) Encode(dst []byte) {
	copy(dst[0:32], f.FilterHeader[:])
	n := putVariableSize(dst[32:], uint64(len(f.Filter)))
	copy(dst[32+n:], f.Filter)
}

func DecodeFilterBk(src []byte) FilterBk {
	var f FilterBk
	copy(f.FilterHeader[:], src[0:32])
	length, n := getVariableSize(src[32:])
	off := 32 + n
	f.Filter = append([]byte(nil), src[off:off+int(length)]...)
	return f
}

// FilterTx is the payload of the filter_tx table (§3, §4.8): keyed by
// tx-fk (arraymap), a variable-length filter for a single transaction.
//
// Wire layout: filter_length(varint) filter(...), matching the
// original's filter_tx::slab.
type FilterTx struct {
	Filter []byte
}

func (f FilterTx) Size() int { return variableSizeLen(uint64(len(f.Filter))) + len(f.Filter) }

func (f FilterTx) Encode(dst []byte) {
	n := putVariableSize(dst, uint64(len(f.Filter)))
	copy(dst[n:], f.Filter)
}

func DecodeFilterTx(src []byte) FilterTx {
	length, n := getVariableSize(src)
	return FilterTx{Filter: append([]byte(nil), src[n:n+int(length)]...)}
}
