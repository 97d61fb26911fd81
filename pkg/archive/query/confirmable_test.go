package query

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blkarchive/archive/pkg/archive"
	"github.com/blkarchive/archive/pkg/archive/tables"
)

// fixture wires a two-block chain: block0's coinbase C0 pays one output,
// block1 spends it with tx S1 alongside block1's own coinbase C1. It
// returns the store and both header links.
func fixture(t *testing.T) (s *archive.Store, header0, header1 archive.Link) {
	t.Helper()
	s, err := archive.Create(filepath.Join(t.TempDir(), "store"), archive.DefaultSettings())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var hashC0, hashC1, hashS1, hashHeader0, hashHeader1 [32]byte
	hashC0[0], hashC1[0], hashS1[0] = 0xC0, 0xC1, 0x51
	hashHeader0[0], hashHeader1[0] = 0xA0, 0xA1

	// block0: coinbase only.
	outC0, err := s.PutOutput(tables.Output{Value: 5000})
	require.NoError(t, err)
	outsC0, err := s.PutOuts(tables.Outs{OutFks: []uint32{uint32(outC0)}})
	require.NoError(t, err)
	txC0, err := s.PutTx(hashC0, tables.Tx{Coinbase: true, OutsCount: 1, OutsFk: uint32(outsC0)})
	require.NoError(t, err)

	header0, err = s.PutHeader(hashHeader0, tables.Header{Height: 0, MedianTime: 0})
	require.NoError(t, err)
	_, err = s.PutTxs(uint64(header0), tables.Txs{TxFks: []uint32{uint32(txC0)}})
	require.NoError(t, err)
	_, err = s.PutStrongTx(txC0, tables.StrongTx{HeaderFk: uint32(header0), Positive: true})
	require.NoError(t, err)

	// block1: a fresh coinbase C1 plus S1 spending C0's only output.
	outC1, err := s.PutOutput(tables.Output{Value: 5000})
	require.NoError(t, err)
	outsC1, err := s.PutOuts(tables.Outs{OutFks: []uint32{uint32(outC1)}})
	require.NoError(t, err)
	txC1, err := s.PutTx(hashC1, tables.Tx{Coinbase: true, OutsCount: 1, OutsFk: uint32(outsC1)})
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
		Version:  2,
		InsCount: 1,
		PointFk:  uint32(insS1),
		OutsCount: 1,
		OutsFk:    uint32(outsS1),
	})
	require.NoError(t, err)

	header1, err = s.PutHeader(hashHeader1, tables.Header{Height: 1, MedianTime: 1, ParentFk: uint32(header0)})
	require.NoError(t, err)
	_, err = s.PutTxs(uint64(header1), tables.Txs{TxFks: []uint32{uint32(txC1), uint32(txS1)}})
	require.NoError(t, err)

	return s, header0, header1
}

func TestBlockConfirmableHappyPath(t *testing.T) {
	s, _, header1 := fixture(t)

	settings := archive.DefaultSettings()
	settings.EnablePrevoutCache = false
	settings.CoinbaseMaturity = 0

	code, err := BlockConfirmable(s, settings, header1)
	require.NoError(t, err)
	require.Equal(t, archive.CodeSuccess, code)
}

func TestBlockConfirmableUnconfirmedSpend(t *testing.T) {
	s, err := archive.Create(t.TempDir()+"/store2", archive.DefaultSettings())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_ = s

	// Re-use the full fixture but never mark C0 strong, so S1's prevout
	// resolves to no confirming block.
	s2, _, _ := fixture(t)
	settings := archive.DefaultSettings()
	settings.EnablePrevoutCache = false
	settings.CoinbaseMaturity = 0

	// Build a second chain identical to fixture's block1, except block0's
	// coinbase was never marked strong (simulate by constructing directly).
	var hashC0, hashS1, hashHeader0, hashHeader1 [32]byte
	hashC0[0], hashS1[0] = 0xD0, 0x52
	hashHeader0[0], hashHeader1[0] = 0xB0, 0xB1

	outC0, err := s2.PutOutput(tables.Output{Value: 1000})
	require.NoError(t, err)
	outsC0, err := s2.PutOuts(tables.Outs{OutFks: []uint32{uint32(outC0)}})
	require.NoError(t, err)
	txC0, err := s2.PutTx(hashC0, tables.Tx{Coinbase: true, OutsCount: 1, OutsFk: uint32(outsC0)})
	require.NoError(t, err)
	_ = txC0

	header0, err := s2.PutHeader(hashHeader0, tables.Header{Height: 0})
	require.NoError(t, err)
	// Note: no PutStrongTx call for txC0 here — it never becomes strong.

	pointC0, err := s2.PutPoint(hashC0)
	require.NoError(t, err)
	stub := archive.StubOf(pointC0)
	spendS1, err := s2.PutSpend(stub, 0, tables.Spend{PointFk: uint32(pointC0), PointIndex: 0, Sequence: 0xffffffff})
	require.NoError(t, err)
	insS1, err := s2.PutIns(tables.Ins{InputFk: uint32(spendS1), Sequence: 0xffffffff})
	require.NoError(t, err)
	outS1, err := s2.PutOutput(tables.Output{Value: 900})
	require.NoError(t, err)
	outsS1, err := s2.PutOuts(tables.Outs{OutFks: []uint32{uint32(outS1)}})
	require.NoError(t, err)
	txS1, err := s2.PutTx(hashS1, tables.Tx{Version: 2, InsCount: 1, PointFk: uint32(insS1), OutsCount: 1, OutsFk: uint32(outsS1)})
	require.NoError(t, err)

	outC1, err := s2.PutOutput(tables.Output{Value: 1000})
	require.NoError(t, err)
	outsC1, err := s2.PutOuts(tables.Outs{OutFks: []uint32{uint32(outC1)}})
	require.NoError(t, err)
	txC1, err := s2.PutTx([32]byte{0xD1}, tables.Tx{Coinbase: true, OutsCount: 1, OutsFk: uint32(outsC1)})
	require.NoError(t, err)

	header1, err := s2.PutHeader(hashHeader1, tables.Header{Height: 1, ParentFk: uint32(header0)})
	require.NoError(t, err)
	_, err = s2.PutTxs(uint64(header1), tables.Txs{TxFks: []uint32{uint32(txC1), uint32(txS1)}})
	require.NoError(t, err)

	code, err := BlockConfirmable(s2, settings, header1)
	require.NoError(t, err)
	require.Equal(t, archive.CodeUnconfirmedSpend, code)
}
