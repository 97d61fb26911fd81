package query

import (
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blkarchive/archive/pkg/archive"
	"github.com/blkarchive/archive/pkg/archive/tables"
)

func TestVirtualSize(t *testing.T) {
	require.Equal(t, uint32(0), virtualSize(0, 0))
	// four light bytes, no heavy bytes: weight 16, vsize 4.
	require.Equal(t, uint32(4), virtualSize(4, 0))
	// all-heavy: weight equals the byte count itself (rounded up by 3/4).
	require.Equal(t, uint32(1), virtualSize(0, 1))
}

// feeFixture builds one confirmed block containing a coinbase paying 5000
// and a spending tx that consumes it and pays out 4900, leaving a 100 fee.
func feeFixture(t *testing.T) (s *archive.Store, spendingTx archive.Link, header archive.Link) {
	t.Helper()
	s, err := archive.Create(filepath.Join(t.TempDir(), "store"), archive.DefaultSettings())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var hashC0, hashS1, hashHeader0 [32]byte
	hashC0[0], hashS1[0], hashHeader0[0] = 0xE0, 0x61, 0xF0

	outC0, err := s.PutOutput(tables.Output{Value: 5000})
	require.NoError(t, err)
	outsC0, err := s.PutOuts(tables.Outs{OutFks: []uint32{uint32(outC0)}})
	require.NoError(t, err)
	txC0, err := s.PutTx(hashC0, tables.Tx{Coinbase: true, OutsCount: 1, OutsFk: uint32(outsC0)})
	require.NoError(t, err)

	header, err = s.PutHeader(hashHeader0, tables.Header{Height: 0})
	require.NoError(t, err)
	_, err = s.PutStrongTx(txC0, tables.StrongTx{HeaderFk: uint32(header), Positive: true})
	require.NoError(t, err)

	pointC0, err := s.PutPoint(hashC0)
	require.NoError(t, err)
	stub := archive.StubOf(pointC0)
	spendS1, err := s.PutSpend(stub, 0, tables.Spend{PointFk: uint32(pointC0), PointIndex: 0, Sequence: 0xffffffff})
	require.NoError(t, err)
	insS1, err := s.PutIns(tables.Ins{InputFk: uint32(spendS1), Sequence: 0xffffffff})
	require.NoError(t, err)

	outS1, err := s.PutOutput(tables.Output{Value: 4900})
	require.NoError(t, err)
	outsS1, err := s.PutOuts(tables.Outs{OutFks: []uint32{uint32(outS1)}})
	require.NoError(t, err)
	txS1, err := s.PutTx(hashS1, tables.Tx{
		Version:   2,
		LightSize: 200,
		InsCount:  1,
		PointFk:   uint32(insS1),
		OutsCount: 1,
		OutsFk:    uint32(outsS1),
	})
	require.NoError(t, err)

	_, err = s.PutTxs(uint64(header), tables.Txs{TxFks: []uint32{uint32(txC0), uint32(txS1)}})
	require.NoError(t, err)
	_, err = s.SetConfirmed(0, header)
	require.NoError(t, err)

	return s, txS1, header
}

func TestGetTxFees(t *testing.T) {
	s, txS1, _ := feeFixture(t)

	fee, err := GetTxFees(s, txS1)
	require.NoError(t, err)
	require.Equal(t, int64(100), fee.Fee)
	require.Equal(t, virtualSize(200, 0), fee.Bytes)
}

func TestGetTxFeesRejectsCoinbase(t *testing.T) {
	s, err := archive.Create(filepath.Join(t.TempDir(), "store"), archive.DefaultSettings())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	outC, err := s.PutOutput(tables.Output{Value: 50})
	require.NoError(t, err)
	outsC, err := s.PutOuts(tables.Outs{OutFks: []uint32{uint32(outC)}})
	require.NoError(t, err)
	txC, err := s.PutTx([32]byte{0x01}, tables.Tx{Coinbase: true, OutsCount: 1, OutsFk: uint32(outsC)})
	require.NoError(t, err)

	_, err = GetTxFees(s, txC)
	require.Error(t, err)
}

func TestGetBlockFees(t *testing.T) {
	s, txS1, header := feeFixture(t)

	fees, err := GetBlockFees(s, header)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	require.Equal(t, txS1, fees[0].TxFk)
	require.Equal(t, int64(100), fees[0].Fee)
}

func TestGetBranchFees(t *testing.T) {
	s, _, _ := feeFixture(t)

	fees, err := GetBranchFees(s, nil, 0, 1)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	require.Len(t, fees[0], 1)
	require.Equal(t, int64(100), fees[0][0].Fee)
}

func TestGetBranchFeesCancelled(t *testing.T) {
	s, _, _ := feeFixture(t)

	var cancel atomic.Bool
	cancel.Store(true)

	fees, err := GetBranchFees(s, &cancel, 0, 1)
	require.Error(t, err)
	require.Nil(t, fees)
}
