// Package tables implements the bit-exact byte layout codecs for every
// persistent table of §3/§4.8. Each codec is a pure value <-> []byte
// mapping; table shape (hashmap/arraymap/nomap) and storage wiring live
// in package archive, which calls into these codecs to decode the
// payload region of whatever record it reads.
package tables

import "encoding/binary"

// linkWidth is the table-wide link field width used across every codec
// in this package: 4 bytes (31 usable payload bits once a table reserves
// its high bit for a packed flag), large enough for archives far beyond
// any practical single-process deployment while keeping every record a
// round number of bytes.
const linkWidth = 4

func putLink4(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }
func getLink4(src []byte) uint32    { return binary.LittleEndian.Uint32(src) }

func putUint24(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
}

func getUint24(src []byte) uint32 {
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16
}

// flagBit24 is the high bit of a 3-byte (24-bit) packed field.
const flagBit24 = uint32(1) << 23

// flagBit32 is the high bit of a 4-byte (32-bit) packed field.
const flagBit32 = uint32(1) << 31

// Header is the payload of the header table (§3, §4.8): keyed by block
// hash (hashmap), holding the block's context, its parent link with an
// embedded milestone flag, and the six header fields.
//
// Wire layout (after the shared next-link + 32-byte key prefix a hashmap
// element carries):
//
//	flags(1) height(3) mtp(4) merged_parent(4) version(4) timestamp(4) bits(4) nonce(4) merkle_root(32)
type Header struct {
	Flags       uint8
	Height      uint32 // 24 bits on disk
	MedianTime  uint32
	ParentFk    uint32 // 31 bits on disk; query.SetBlock stores 0 for genesis
	Milestone   bool
	Version     uint32
	Timestamp   uint32
	Bits        uint32
	Nonce       uint32
	MerkleRoot  [32]byte
}

// HeaderSize is the encoded payload length in bytes.
const HeaderSize = 1 + 3 + 4 + 4 + 4 + 4 + 4 + 4 + 32

func (h Header) Encode(dst []byte) {
	_ = dst[:HeaderSize]
	dst[0] = h.Flags
	putUint24(dst[1:4], h.Height)
	binary.LittleEndian.PutUint32(dst[4:8], h.MedianTime)

	merged := h.ParentFk
	if h.Milestone {
		merged |= flagBit32
	}
	binary.LittleEndian.PutUint32(dst[8:12], merged)

	binary.LittleEndian.PutUint32(dst[12:16], h.Version)
	binary.LittleEndian.PutUint32(dst[16:20], h.Timestamp)
	binary.LittleEndian.PutUint32(dst[20:24], h.Bits)
	binary.LittleEndian.PutUint32(dst[24:28], h.Nonce)
	copy(dst[28:60], h.MerkleRoot[:])
}

func DecodeHeader(src []byte) Header {
	_ = src[:HeaderSize]
	merged := binary.LittleEndian.Uint32(src[8:12])

	var h Header
	h.Flags = src[0]
	h.Height = getUint24(src[1:4])
	h.MedianTime = binary.LittleEndian.Uint32(src[4:8])
	h.Milestone = merged&flagBit32 != 0
	h.ParentFk = merged &^ flagBit32
	h.Version = binary.LittleEndian.Uint32(src[12:16])
	h.Timestamp = binary.LittleEndian.Uint32(src[16:20])
	h.Bits = binary.LittleEndian.Uint32(src[20:24])
	h.Nonce = binary.LittleEndian.Uint32(src[24:28])
	copy(h.MerkleRoot[:], src[28:60])
	return h
}
