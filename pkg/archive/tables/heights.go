package tables

import "encoding/binary"

// Candidate and Confirmed (§3, §4.8) are both arraymaps keyed by height,
// holding nothing but a header-fk: the identically shaped "which header
// occupies this height in this chain view" record. Kept as two named
// types rather than one shared type so table wiring in package archive
// stays self-documenting about which chain view a value belongs to.

type Candidate struct {
	HeaderFk uint32
}

type Confirmed struct {
	HeaderFk uint32
}

const HeightEntrySize = 4

func (c Candidate) Encode(dst []byte) {
	_ = dst[:HeightEntrySize]
	binary.LittleEndian.PutUint32(dst[0:4], c.HeaderFk)
}

func DecodeCandidate(src []byte) Candidate {
	_ = src[:HeightEntrySize]
	return Candidate{HeaderFk: binary.LittleEndian.Uint32(src[0:4])}
}

func (c Confirmed) Encode(dst []byte) {
	_ = dst[:HeightEntrySize]
	binary.LittleEndian.PutUint32(dst[0:4], c.HeaderFk)
}

func DecodeConfirmed(src []byte) Confirmed {
	_ = src[:HeightEntrySize]
	return Confirmed{HeaderFk: binary.LittleEndian.Uint32(src[0:4])}
}
