package query

import (
	"github.com/blkarchive/archive/pkg/archive"
	"github.com/blkarchive/archive/pkg/archive/tables"
	"github.com/blkarchive/archive/pkg/chain"
)

// SetBlock implements §4.9's set(block, ctx): the ingestion path that
// writes one block's header and every one of its transactions (points,
// spends, ins, outs, outputs) into their tables and links the header's
// txs record to the result. ctx supplies the height and median-time-past
// the engine has no way to derive from a chain.Header alone (§8: "For a
// block set with set(block, ctx): get_context(header_link) == ctx").
// parentLink is the already-ingested parent header's link, or 0 for the
// genesis block (§4.8: header.parent_fk's high bit is reserved for the
// milestone flag, so the all-ones TerminalLink sentinel cannot double as
// "no parent" here the way it does in link-typed tables elsewhere).
func SetBlock(s *archive.Store, ctx Context, header chain.Header, parentLink archive.Link, txs []chain.Transaction) (archive.Link, error) {
	txFks := make([]uint32, len(txs))
	for i, tx := range txs {
		txFk, err := putTransaction(s, tx)
		if err != nil {
			return 0, err
		}
		txFks[i] = uint32(txFk)
	}

	headerLink, err := s.PutHeader(header.Hash(), tables.Header{
		Height:     ctx.Height,
		MedianTime: ctx.MedianTime,
		ParentFk:   uint32(parentLink),
		Version:    header.Version(),
		Timestamp:  header.Timestamp(),
		Bits:       header.Bits(),
		Nonce:      header.Nonce(),
		MerkleRoot: [32]byte(header.MerkleRoot()),
	})
	if err != nil {
		return 0, err
	}

	if _, err := s.PutTxs(uint64(headerLink), tables.Txs{TxFks: txFks}); err != nil {
		return 0, err
	}
	return headerLink, nil
}

// putTransaction writes one transaction's outputs and — for a
// non-coinbase transaction — its point/spend/ins chain, then the tx
// record itself. It predicts the tx's own about-to-be-allocated link via
// Tx.BodyCount() before writing any of that, since each input's spend
// claim needs the owning tx's link as its parent_tx_fk, and the tx
// record itself needs the already-written ins range's starting link as
// its point_fk: a three-way dependency this store's append-only tables
// (no in-place patch path) cannot satisfy by writing in any single
// linear order otherwise. §4.9 licenses the prediction explicitly —
// "single-writer invariant on allocation" — valid as long as nothing
// else allocates a Tx record between the prediction and the matching
// PutTx call below, true for any one sequential SetBlock call.
func putTransaction(s *archive.Store, tx chain.Transaction) (archive.Link, error) {
	predictedFk, err := s.Tx.BodyCount()
	if err != nil {
		return 0, err
	}

	var (
		pointFk  uint32
		insCount uint32
	)
	if !tx.IsCoinbase() {
		insCount = uint32(len(tx.Inputs()))
		for i, in := range tx.Inputs() {
			prevout := in.PreviousOutput()
			pt, err := s.PutPoint(prevout.Hash)
			if err != nil {
				return 0, err
			}
			spendFk, err := s.PutSpend(archive.StubOf(pt), prevout.Index, tables.Spend{
				ParentTxFk: uint32(predictedFk),
				PointFk:    uint32(pt),
				PointIndex: prevout.Index,
				Sequence:   in.Sequence(),
			})
			if err != nil {
				return 0, err
			}
			insFk, err := s.PutIns(tables.Ins{InputFk: uint32(spendFk), Sequence: in.Sequence()})
			if err != nil {
				return 0, err
			}
			if i == 0 {
				pointFk = uint32(insFk)
			}
		}
	}

	outFks := make([]uint32, len(tx.Outputs()))
	for i, out := range tx.Outputs() {
		link, err := s.PutOutput(tables.Output{Value: out.Value(), Script: out.Script()})
		if err != nil {
			return 0, err
		}
		outFks[i] = uint32(link)
	}
	outsFk, err := s.PutOuts(tables.Outs{OutFks: outFks})
	if err != nil {
		return 0, err
	}

	actualFk, err := s.PutTx(tx.Hash(), tables.Tx{
		LightSize: tx.LightSize(),
		HeavySize: tx.HeavySize(),
		Locktime:  tx.Locktime(),
		Version:   tx.Version(),
		InsCount:  insCount,
		OutsCount: uint32(len(outFks)),
		Coinbase:  tx.IsCoinbase(),
		PointFk:   pointFk,
		OutsFk:    uint32(outsFk),
	})
	if err != nil {
		return 0, err
	}
	if actualFk != predictedFk {
		return 0, archive.NewResultError(archive.CodeIntegrity8, archive.ErrCorrupt)
	}
	return actualFk, nil
}

// SetStrong marks txFk as currently strong (reorg-visible) for the block
// at headerLink (§3.1's strong_tx chain: the highest-block instance with
// positive=true wins).
func SetStrong(s *archive.Store, txFk, headerLink archive.Link) error {
	_, err := s.PutStrongTx(txFk, tables.StrongTx{HeaderFk: uint32(headerLink), Positive: true})
	return err
}

// SetUnstrong supersedes txFk's strong claim on headerLink with a
// negative instance, as a reorg pop does.
func SetUnstrong(s *archive.Store, txFk, headerLink archive.Link) error {
	_, err := s.PutStrongTx(txFk, tables.StrongTx{HeaderFk: uint32(headerLink), Positive: false})
	return err
}
