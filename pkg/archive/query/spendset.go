package query

import (
	"github.com/blkarchive/archive/pkg/archive"
)

// SpendEntry is one input's claim within a SpendSet: the sequence number
// it was submitted with and the prevout it spends, identified both by
// its point-table link (point_fk) and the stub that link truncates to
// (§4.10 step 3).
type SpendEntry struct {
	SpendLink  archive.Link // this input's own spend-table record
	Sequence   uint32
	PointFk    archive.Link
	PointIndex uint32
	PointStub  archive.Stub
}

// SpendSet is one transaction's per-input spend claims, built the way
// §4.10 step 3 and §4.11's get_spend_set describe: read the tx record,
// then its contiguous ins slots, then each slot's spend payload.
//
// This store's ins table carries, per input slot, the fk of that input's
// own spend-table record (not a script blob — see DESIGN.md for why the
// "input_fk" field is read this way) alongside its sequence number; the
// tx's own outputs (referenced by other transactions' spend_fks as their
// prevout) live in the outs table at tx.OutsFk.
type SpendSet struct {
	TxFk    archive.Link
	Version uint32
	Inputs  []SpendEntry
}

// GetSpendSet builds the spend set for the transaction at txLink. Fails
// if any underlying read fails (§4.11).
func GetSpendSet(s *archive.Store, txLink archive.Link) (SpendSet, error) {
	tx, err := s.GetTx(txLink)
	if err != nil {
		return SpendSet{}, err
	}

	inputs := make([]SpendEntry, 0, tx.InsCount)
	for i := uint32(0); i < tx.InsCount; i++ {
		insLink := archive.Link(tx.PointFk) + archive.Link(i)
		ins, err := s.GetIns(insLink)
		if err != nil {
			return SpendSet{}, err
		}
		spendLink := archive.Link(ins.InputFk)
		sp, err := s.GetSpend(spendLink)
		if err != nil {
			return SpendSet{}, err
		}
		inputs = append(inputs, SpendEntry{
			SpendLink:  spendLink,
			Sequence:   sp.Sequence,
			PointFk:    archive.Link(sp.PointFk),
			PointIndex: sp.PointIndex,
			PointStub:  archive.StubOf(archive.Link(sp.PointFk)),
		})
	}

	return SpendSet{TxFk: txLink, Version: tx.Version, Inputs: inputs}, nil
}

// txOutputValue resolves the value of output index of the transaction at
// txFk, via its outs vector and the output table.
func txOutputValue(s *archive.Store, txFk archive.Link, index uint32) (uint64, error) {
	tx, err := s.GetTx(txFk)
	if err != nil {
		return 0, err
	}
	outs, err := s.GetOuts(archive.Link(tx.OutsFk))
	if err != nil {
		return 0, err
	}
	if int(index) >= len(outs.OutFks) {
		return 0, archive.NewResultError(archive.CodeIntegrity1, archive.ErrCorrupt)
	}
	out, err := s.GetOutput(archive.Link(outs.OutFks[index]))
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}

// txOutputSum resolves the aggregate value of every output of the
// transaction at txFk.
func txOutputSum(s *archive.Store, txFk archive.Link) (uint64, error) {
	tx, err := s.GetTx(txFk)
	if err != nil {
		return 0, err
	}
	outs, err := s.GetOuts(archive.Link(tx.OutsFk))
	if err != nil {
		return 0, err
	}
	var sum uint64
	for _, fk := range outs.OutFks {
		out, err := s.GetOutput(archive.Link(fk))
		if err != nil {
			return 0, err
		}
		sum += out.Value
	}
	return sum, nil
}

// toTx resolves the prevout transaction referenced by a point-table link:
// read the point record's hash, then look it up in the tx hashmap.
func toTx(s *archive.Store, pointFk archive.Link) (txFk archive.Link, tx pointTx, err error) {
	pt, err := s.GetPoint(pointFk)
	if err != nil {
		return 0, pointTx{}, err
	}
	t, link, ok, err := s.GetTxByHash(pt.Hash)
	if err != nil {
		return 0, pointTx{}, err
	}
	if !ok {
		return 0, pointTx{}, archive.NewResultError(archive.CodeIntegrity2, archive.ErrNotFound)
	}
	return link, pointTx{Coinbase: t.Coinbase}, nil
}

// pointTx is the subset of a resolved prevout transaction's tx record
// spent-prevout checks need.
type pointTx struct {
	Coinbase bool
}
