package archive

import "encoding/binary"

// Link is a typed index into a manager: an element ordinal for a record
// manager, a byte offset for a slab manager. The zero value is a valid
// link (position zero); Terminal marks "not found" / end-of-chain and is
// always the all-ones value of the link's declared byte width.
type Link uint64

// TerminalLink is the terminal sentinel shared by every table in this
// store: every head (hashmap or arraymap) is wired with a 4-byte link
// width (see store.go's openHashTable/openArrayTable/openVariableArrayTable
// call sites), so the all-ones 32-bit value is the one terminal value a
// caller outside package archive ever needs to compare against.
const TerminalLink Link = 0xFFFFFFFF

// terminalFor returns the all-ones sentinel for a link field stored in
// width bytes (1..8), per §3: "a sentinel value (all-ones of the payload
// bits)".
func terminalFor(width int) Link {
	if width >= 8 {
		return Link(^uint64(0))
	}
	return Link((uint64(1) << uint(8*width)) - 1)
}

// isTerminal reports whether link is the terminal sentinel for width.
func isTerminal(link Link, width int) bool {
	return link == terminalFor(width)
}

// putLink writes link into dst using width little-endian bytes. dst must
// be at least width bytes.
func putLink(dst []byte, link Link, width int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(link))
	copy(dst[:width], buf[:width])
}

// getLink reads a width-byte little-endian link from src.
func getLink(src []byte, width int) Link {
	var buf [8]byte
	copy(buf[:width], src[:width])
	return Link(binary.LittleEndian.Uint64(buf[:]))
}

// mergeFlag packs a single boolean flag into the high bit of a value that
// otherwise occupies width*8-1 bits, per §9 "Bit-packed flags in link
// fields" (e.g. milestone-bit ⨁ parent_fk, interval-present ⨁ light size).
// payload must fit in width*8-1 bits; panics otherwise, mirroring the
// source's assertion against payload overflow.
func mergeFlag(flag bool, payload uint64, width int) uint64 {
	bit := uint64(1) << uint(8*width-1)
	if payload&bit != 0 {
		panic("archive: flagged payload overflows reserved bit")
	}
	if flag {
		return payload | bit
	}
	return payload
}

// splitFlag unpacks a mergeFlag-encoded value back into its flag and
// payload parts.
func splitFlag(merged uint64, width int) (flag bool, payload uint64) {
	bit := uint64(1) << uint(8*width-1)
	return merged&bit != 0, merged &^ bit
}
