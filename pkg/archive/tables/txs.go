package tables

import "encoding/binary"

// Txs is the payload of the txs table (§3, §4.8): keyed by header-fk
// (arraymap), holding the block's light/heavy serialized sizes, its
// transaction-fk vector, and the two optional trailing fields §4.8
// describes: a cached 32-byte merkle interval root (present iff the
// high bit of light is set) and a 1-byte genesis depth (present iff the
// block's first tx-fk is 0, i.e. this is the genesis block).
//
// Wire layout:
//
//	light(3, high bit = interval present) heavy(3) tx_count(3)
//	tx_fk(4) * tx_count
//	interval_root(32)?   -- iff interval present
//	genesis_depth(1)?    -- iff tx_fks[0] == 0
type Txs struct {
	LightSize      uint32 // 23 bits
	HeavySize      uint32 // 24 bits
	TxFks          []uint32
	IntervalRoot   [32]byte
	HasInterval    bool
	GenesisDepth   uint8
	HasGenesisDepth bool
}

func (t Txs) Size() int {
	n := 3 + 3 + 3 + len(t.TxFks)*4
	if t.HasInterval {
		n += 32
	}
	if t.HasGenesisDepth {
		n++
	}
	return n
}

func (t Txs) Encode(dst []byte) {
	light := t.LightSize
	if t.HasInterval {
		light |= flagBit24
	}
	putUint24(dst[0:3], light)
	putUint24(dst[3:6], t.HeavySize)
	putUint24(dst[6:9], uint32(len(t.TxFks)))

	off := 9
	for _, fk := range t.TxFks {
		binary.LittleEndian.PutUint32(dst[off:off+4], fk)
		off += 4
	}
	if t.HasInterval {
		copy(dst[off:off+32], t.IntervalRoot[:])
		off += 32
	}
	if t.HasGenesisDepth {
		dst[off] = t.GenesisDepth
	}
}

func DecodeTxs(src []byte) Txs {
	lightField := getUint24(src[0:3])
	var t Txs
	t.HasInterval = lightField&flagBit24 != 0
	t.LightSize = lightField &^ flagBit24
	t.HeavySize = getUint24(src[3:6])
	count := int(getUint24(src[6:9]))

	off := 9
	t.TxFks = make([]uint32, count)
	for i := 0; i < count; i++ {
		t.TxFks[i] = binary.LittleEndian.Uint32(src[off : off+4])
		off += 4
	}
	if t.HasInterval {
		copy(t.IntervalRoot[:], src[off:off+32])
		off += 32
	}
	if count > 0 && t.TxFks[0] == 0 {
		t.HasGenesisDepth = true
		t.GenesisDepth = src[off]
	}
	return t
}
