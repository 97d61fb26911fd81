package tables

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Flags:      0x12,
		Height:     0x341201,
		MedianTime: 0x56341203,
		ParentFk:   0x01020304,
		Milestone:  true,
		Version:    0x56341204,
		Timestamp:  0x11223344,
		Bits:       0x22334455,
		Nonce:      0x33445566,
	}
	for i := range h.MerkleRoot {
		h.MerkleRoot[i] = byte(i)
	}

	buf := make([]byte, HeaderSize)
	h.Encode(buf)
	got := DecodeHeader(buf)
	require.Equal(t, h, got)
}

func TestHeaderMilestoneBitIsolatedFromParentFk(t *testing.T) {
	h := Header{ParentFk: 0x7fffffff, Milestone: false}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)
	got := DecodeHeader(buf)
	require.Equal(t, uint32(0x7fffffff), got.ParentFk)
	require.False(t, got.Milestone)
}

func TestTxRoundTrip(t *testing.T) {
	tx := Tx{
		LightSize: 0x341201,
		HeavySize: 0x341202,
		Locktime:  0x56341203,
		Version:   0x56341204,
		InsCount:  0x341205,
		OutsCount: 0x341206,
		Coinbase:  true,
		PointFk:   0x56341207,
		OutsFk:    0x56341208,
	}
	buf := make([]byte, TxSize)
	tx.Encode(buf)
	got := DecodeTx(buf)
	require.Equal(t, tx, got)
}

func TestPointRoundTrip(t *testing.T) {
	var p Point
	for i := range p.Hash {
		p.Hash[i] = byte(i + 1)
	}
	buf := make([]byte, PointSize)
	p.Encode(buf)
	require.Equal(t, p, DecodePoint(buf))
}

func TestSpendRoundTrip(t *testing.T) {
	s := Spend{ParentTxFk: 1, PointFk: 2, PointIndex: 3, Sequence: 0xffffffff}
	buf := make([]byte, SpendSize)
	s.Encode(buf)
	require.Equal(t, s, DecodeSpend(buf))
}

func TestPutsRoundTrip(t *testing.T) {
	p := Puts{OutFks: []uint32{1, 2, 3}}
	buf := make([]byte, p.Size())
	p.Encode(buf)
	require.Equal(t, p, DecodePuts(buf))
}

func TestOutsRoundTrip(t *testing.T) {
	o := Outs{OutFks: []uint32{9, 8, 7}}
	buf := make([]byte, o.Size())
	o.Encode(buf)
	require.Equal(t, o, DecodeOuts(buf))
}

func TestOutputRoundTrip(t *testing.T) {
	o := Output{Value: 5000000000, Script: []byte{0x76, 0xa9, 0x14}}
	buf := make([]byte, o.Size())
	o.Encode(buf)
	require.Equal(t, o, DecodeOutput(buf))
}

func TestInputRoundTrip(t *testing.T) {
	in := Input{Script: []byte{0x01, 0x02}, Witness: [][]byte{{0xaa}, {0xbb, 0xcc}}}
	buf := make([]byte, in.Size())
	in.Encode(buf)
	require.Equal(t, in, DecodeInput(buf))
}

func TestInputRoundTripEmptyWitness(t *testing.T) {
	in := Input{Script: []byte{0x01}, Witness: nil}
	buf := make([]byte, in.Size())
	in.Encode(buf)
	got := DecodeInput(buf)
	require.Equal(t, in.Script, got.Script)
	require.Empty(t, got.Witness)
}

func TestInsRoundTrip(t *testing.T) {
	i := Ins{InputFk: 42, Sequence: 0xfffffffe}
	buf := make([]byte, InsSize)
	i.Encode(buf)
	require.Equal(t, i, DecodeIns(buf))
}

func TestTxsRoundTripWithIntervalAndGenesis(t *testing.T) {
	txs := Txs{
		LightSize:       123,
		HeavySize:       456,
		TxFks:           []uint32{0, 1, 2},
		HasInterval:     true,
		HasGenesisDepth: true,
		GenesisDepth:    7,
	}
	for i := range txs.IntervalRoot {
		txs.IntervalRoot[i] = byte(i)
	}
	buf := make([]byte, txs.Size())
	txs.Encode(buf)
	require.Equal(t, txs, DecodeTxs(buf))
}

func TestTxsRoundTripPlain(t *testing.T) {
	txs := Txs{LightSize: 10, HeavySize: 20, TxFks: []uint32{5, 6, 7}}
	buf := make([]byte, txs.Size())
	txs.Encode(buf)
	require.Equal(t, txs, DecodeTxs(buf))
}

func TestStrongTxRoundTrip(t *testing.T) {
	s := StrongTx{HeaderFk: 0x7fffffff, Positive: true}
	buf := make([]byte, StrongTxSize)
	s.Encode(buf)
	require.Equal(t, s, DecodeStrongTx(buf))
}

func TestDuplicateRoundTrip(t *testing.T) {
	require.Equal(t, Duplicate{}, DecodeDuplicate(nil))
}

func TestPrevoutRoundTrip(t *testing.T) {
	p := Prevout{Entries: []PrevoutEntry{{TxFk: 1, Coinbase: true}, {TxFk: 2}}}
	buf := make([]byte, p.Size())
	p.Encode(buf)
	require.Equal(t, p, DecodePrevout(buf))
}

func TestValidatedBkRoundTripWithFees(t *testing.T) {
	v := ValidatedBk{Code: 0x42, HasFees: true, Fees: 12345}
	buf := make([]byte, v.Size())
	v.Encode(buf)
	require.Equal(t, v, DecodeValidatedBk(buf))
}

func TestValidatedBkRoundTripNoFees(t *testing.T) {
	v := ValidatedBk{Code: 0xab}
	buf := make([]byte, v.Size())
	v.Encode(buf)
	require.Equal(t, v, DecodeValidatedBk(buf))
}

func TestValidatedTxRoundTrip(t *testing.T) {
	v := ValidatedTx{Context: 1, Code: 2, Fee: 3, Sigops: 4}
	buf := make([]byte, ValidatedTxSize)
	v.Encode(buf)
	require.Equal(t, v, DecodeValidatedTx(buf))
}

func TestFilterBkRoundTrip(t *testing.T) {
	var f FilterBk
	f.Filter = []byte{1, 2, 3, 4}
	buf := make([]byte, f.Size())
	f.Encode(buf)
	require.Equal(t, f, DecodeFilterBk(buf))
}

func TestFilterTxRoundTrip(t *testing.T) {
	f := FilterTx{Filter: []byte{9, 9, 9}}
	buf := make([]byte, f.Size())
	f.Encode(buf)
	require.Equal(t, f, DecodeFilterTx(buf))
}

func TestAddressRoundTrip(t *testing.T) {
	a := Address{OutputFk: 99}
	buf := make([]byte, AddressSize)
	a.Encode(buf)
	require.Equal(t, a, DecodeAddress(buf))
}

func TestCandidateConfirmedRoundTrip(t *testing.T) {
	c := Candidate{HeaderFk: 7}
	buf := make([]byte, HeightEntrySize)
	c.Encode(buf)
	require.Equal(t, c, DecodeCandidate(buf))

	cf := Confirmed{HeaderFk: 8}
	buf2 := make([]byte, HeightEntrySize)
	cf.Encode(buf2)
	require.Equal(t, cf, DecodeConfirmed(buf2))
}
