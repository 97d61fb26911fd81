package tables

import "encoding/binary"

// Tx is the payload of the tx table (§3, §4.8): keyed by tx hash
// (hashmap). coinbase is its own leading byte, matching spec.md's field
// list ("coinbase-flag, light/heavy sizes, ...") and the original
// table::transaction::record layout, not a bit packed into outs_count.
//
// Wire layout:
//
//	coinbase(1) light(3) heavy(3) locktime(4) version(4) ins_count(3) outs_count(3) point_fk(4) outs_fk(4)
type Tx struct {
	Coinbase  bool
	LightSize uint32 // 24 bits
	HeavySize uint32 // 24 bits
	Locktime  uint32
	Version   uint32
	InsCount  uint32 // 24 bits
	OutsCount uint32 // 24 bits
	PointFk   uint32 // first input
	OutsFk    uint32
}

const TxSize = 1 + 3 + 3 + 4 + 4 + 3 + 3 + 4 + 4

func (t Tx) Encode(dst []byte) {
	_ = dst[:TxSize]
	if t.Coinbase {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	putUint24(dst[1:4], t.LightSize)
	putUint24(dst[4:7], t.HeavySize)
	binary.LittleEndian.PutUint32(dst[7:11], t.Locktime)
	binary.LittleEndian.PutUint32(dst[11:15], t.Version)
	putUint24(dst[15:18], t.InsCount)
	putUint24(dst[18:21], t.OutsCount)
	binary.LittleEndian.PutUint32(dst[21:25], t.PointFk)
	binary.LittleEndian.PutUint32(dst[25:29], t.OutsFk)
}

func DecodeTx(src []byte) Tx {
	_ = src[:TxSize]
	var t Tx
	t.Coinbase = src[0] != 0
	t.LightSize = getUint24(src[1:4])
	t.HeavySize = getUint24(src[4:7])
	t.Locktime = binary.LittleEndian.Uint32(src[7:11])
	t.Version = binary.LittleEndian.Uint32(src[11:15])
	t.InsCount = getUint24(src[15:18])
	t.OutsCount = getUint24(src[18:21])
	t.PointFk = binary.LittleEndian.Uint32(src[21:25])
	t.OutsFk = binary.LittleEndian.Uint32(src[25:29])
	return t
}
