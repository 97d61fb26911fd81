package tables

import "encoding/binary"

// Prevout is the payload of the prevout table (§3, §4.8): keyed by
// header-fk (arraymap), a cached vector of (coinbase-flag ⨁
// prevout-tx-fk) entries, one per non-coinbase spend in the block, used
// by the prevouts-enabled mode of block_confirmable (§4.10 step 4) to
// avoid re-resolving each prevout's tx-fk via the point/tx tables.
// Each entry keeps 31 bits of TxFk beside the coinbase flag, so the
// all-ones terminal link does not survive a round trip (it decodes as
// 0x7fffffff with Coinbase set).
type Prevout struct {
	Entries []PrevoutEntry
}

type PrevoutEntry struct {
	TxFk     uint32
	Coinbase bool
}

const prevoutEntrySize = 4

func (p Prevout) Size() int { return len(p.Entries) * prevoutEntrySize }

func (p Prevout) Encode(dst []byte) {
	for i, e := range p.Entries {
		v := e.TxFk
		if e.Coinbase {
			v |= flagBit32
		}
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], v)
	}
}

func DecodePrevout(src []byte) Prevout {
	n := len(src) / prevoutEntrySize
	entries := make([]PrevoutEntry, n)
	for i := 0; i < n; i++ {
		v := binary.LittleEndian.Uint32(src[i*4 : i*4+4])
		entries[i] = PrevoutEntry{TxFk: v &^ flagBit32, Coinbase: v&flagBit32 != 0}
	}
	return Prevout{Entries: entries}
}
