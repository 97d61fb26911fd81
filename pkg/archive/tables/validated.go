package tables

import "encoding/binary"

// ValidatedBk is the payload of the validated_bk table (§3, §4.8): keyed
// by header-fk (arraymap), the block's validation code and, when the
// block is fully connected, its aggregate fee. code is a plain 8-bit
// value with no bits reserved (the store's validated_bk codes, e.g.
// 0xab, are not guaranteed to leave any bit free) — fees-presence is
// instead carried by the record's own length, via VariableArrayMap's
// length-prefixed slab element: a 1-byte body means no fees, a 9-byte
// body means fees follow.
//
// Wire layout: code(1) fees(8)?.
type ValidatedBk struct {
	Code    uint8
	Fees    uint64
	HasFees bool
}

func (v ValidatedBk) Size() int {
	if v.HasFees {
		return 1 + 8
	}
	return 1
}

func (v ValidatedBk) Encode(dst []byte) {
	dst[0] = v.Code
	if v.HasFees {
		binary.LittleEndian.PutUint64(dst[1:9], v.Fees)
	}
}

func DecodeValidatedBk(src []byte) ValidatedBk {
	var v ValidatedBk
	v.Code = src[0]
	if len(src) >= 9 {
		v.HasFees = true
		v.Fees = binary.LittleEndian.Uint64(src[1:9])
	}
	return v
}

// ValidatedTx is the payload of the validated_tx table (§3, §4.8): keyed
// by tx-fk (hashmap), the tx's validation context, code, fee and sigop
// count as of its most recent validation.
//
// Wire layout: context(4) code(1) fee(8) sigops(4).
type ValidatedTx struct {
	Context uint32
	Code    uint8
	Fee     uint64
	Sigops  uint32
}

const ValidatedTxSize = 4 + 1 + 8 + 4

func (v ValidatedTx) Encode(dst []byte) {
	_ = dst[:ValidatedTxSize]
	binary.LittleEndian.PutUint32(dst[0:4], v.Context)
	dst[4] = v.Code
	binary.LittleEndian.PutUint64(dst[5:13], v.Fee)
	binary.LittleEndian.PutUint32(dst[13:17], v.Sigops)
}

func DecodeValidatedTx(src []byte) ValidatedTx {
	_ = src[:ValidatedTxSize]
	var v ValidatedTx
	v.Context = binary.LittleEndian.Uint32(src[0:4])
	v.Code = src[4]
	v.Fee = binary.LittleEndian.Uint64(src[5:13])
	v.Sigops = binary.LittleEndian.Uint32(src[13:17])
	return v
}
