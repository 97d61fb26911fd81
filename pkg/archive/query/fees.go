package query

import (
	"sync/atomic"

	"github.com/blkarchive/archive/pkg/archive"
)

// virtualSize implements §4.11's virtual_size(light, heavy): light bytes
// count quadruple, heavy (witness) bytes count once, rounded up to the
// next whole weight unit.
func virtualSize(light, heavy uint32) uint32 {
	return (4*light + heavy + 3) / 4
}

// TxFee is one transaction's byte size and absolute fee, as reported by
// GetTxFees/GetBlockFees/GetBranchFees.
type TxFee struct {
	TxFk  archive.Link
	Bytes uint32
	Fee   int64
}

// GetTxFees implements §4.11's get_tx_fees: bytes is virtual_size(light,
// heavy); fee is the sum of resolved prevout values minus the sum of this
// transaction's own output values (the domain-correct direction — see
// DESIGN.md for the typo this corrects against the literal spec prose).
// Requires a non-coinbase transaction.
func GetTxFees(s *archive.Store, txLink archive.Link) (TxFee, error) {
	tx, err := s.GetTx(txLink)
	if err != nil {
		return TxFee{}, err
	}
	if tx.Coinbase {
		return TxFee{}, archive.NewResultError(archive.CodeInvalidArgument, archive.ErrInvalidArgument)
	}

	bytes := virtualSize(tx.LightSize, tx.HeavySize)

	spendSet, err := GetSpendSet(s, txLink)
	if err != nil {
		return TxFee{}, err
	}

	var prevoutSum uint64
	for _, in := range spendSet.Inputs {
		prevoutTxFk, _, err := toTx(s, in.PointFk)
		if err != nil {
			return TxFee{}, err
		}
		value, err := txOutputValue(s, prevoutTxFk, in.PointIndex)
		if err != nil {
			return TxFee{}, err
		}
		prevoutSum += value
	}

	outputSum, err := txOutputSum(s, txLink)
	if err != nil {
		return TxFee{}, err
	}

	return TxFee{TxFk: txLink, Bytes: bytes, Fee: int64(prevoutSum) - int64(outputSum)}, nil
}

// GetBlockFees implements §4.11's get_block_fees: every spending tx of
// the block (the coinbase is skipped), fee-computed in parallel.
func GetBlockFees(s *archive.Store, headerLink archive.Link) ([]TxFee, error) {
	txsRec, ok, err := s.GetTxs(uint64(headerLink))
	if err != nil {
		return nil, err
	}
	if !ok || len(txsRec.TxFks) == 0 {
		return nil, archive.NewResultError(archive.CodeIntegrity7, archive.ErrNotFound)
	}
	spending := txsRec.TxFks[1:]

	fees := make([]TxFee, len(spending))
	err = parallelEach(len(spending), func(i int) error {
		f, err := GetTxFees(s, archive.Link(spending[i]))
		if err != nil {
			return err
		}
		fees[i] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fees, nil
}

// GetBranchFees implements §4.11's get_branch_fees: per-height block fees
// over [start, start+count), in parallel, checking cancel both before
// starting each unit and (via the caller observing it between calls) is
// approximated here by checking once per unit since units are themselves
// whole blocks, the finest grain this operation partitions by. On
// cancellation or any subfailure, returns a nil slice rather than a
// partial result (§5's "never partial results").
func GetBranchFees(s *archive.Store, cancel *atomic.Bool, start, count uint64) ([][]TxFee, error) {
	out := make([][]TxFee, count)
	err := parallelEach(int(count), func(i int) error {
		if cancel != nil && cancel.Load() {
			return archive.NewResultError(archive.CodeInvalidArgument, nil)
		}
		height := start + uint64(i)
		headerLink, ok, err := s.GetConfirmed(height)
		if err != nil {
			return err
		}
		if !ok {
			return archive.NewResultError(archive.CodeNotFound, archive.ErrNotFound)
		}
		fees, err := GetBlockFees(s, headerLink)
		if err != nil {
			return err
		}
		out[i] = fees
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
