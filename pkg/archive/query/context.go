// Package query implements the archive's read-side algorithms over a
// *archive.Store: block confirmability (§4.10), spend sets, fees and
// virtual size (§4.11), and merkle subroots/proofs (§4.12). Every
// function here only reads tables package-public Store accessors build
// on; none of it mutates the store.
package query

import (
	"github.com/blkarchive/archive/pkg/archive"
	"github.com/blkarchive/archive/pkg/archive/tables"
)

// Context is the per-header validation context of §3/§4.8: the height
// and median-time-past a header's consensus checks (BIP68, coinbase
// maturity) are evaluated against.
type Context struct {
	Height     uint32
	MedianTime uint32
}

// ContextOf loads the validation context of the header at headerLink.
func ContextOf(s *archive.Store, headerLink archive.Link) (Context, error) {
	h, err := s.GetHeader(headerLink)
	if err != nil {
		return Context{}, err
	}
	return Context{Height: h.Height, MedianTime: h.MedianTime}, nil
}

// ToBlock resolves the header currently claiming txFk as strong — the
// highest-block strong_tx instance for that tx-fk (§3.1 invariant: "the
// highest-block instance ... has positive=true"; a reorg that supersedes
// an older claim adds a positive=false record rather than removing it, and
// chain iteration visits the newest-inserted record first, per §5's
// ordering guarantee, so only the newest record for txFk decides).
// Returns archive.TerminalLink if txFk is not currently strong anywhere.
func ToBlock(s *archive.Store, txFk archive.Link) (archive.Link, error) {
	block := archive.TerminalLink
	err := s.WalkStrongTx(txFk, func(_ archive.Link, st tables.StrongTx) (bool, error) {
		if st.Positive {
			block = archive.Link(st.HeaderFk)
		}
		return false, nil
	})
	return block, err
}

// IsStrongTx reports whether txFk is currently strong in any header.
func IsStrongTx(s *archive.Store, txFk archive.Link) (bool, error) {
	block, err := ToBlock(s, txFk)
	if err != nil {
		return false, err
	}
	return block != archive.TerminalLink, nil
}

// GetStrongTxs resolves, for every tx-fk sharing txHash, the header it is
// currently strong for (archive.TerminalLink if none). Each inner
// strong_tx walk (via ToBlock) fully drains and returns before the outer
// tx-hash walk advances — the non-interleaving discipline spec.md's
// nested-iterator deadlock note (§9) calls for, recorded as a decision
// in DESIGN.md rather than left ambiguous.
func GetStrongTxs(s *archive.Store, txHash [32]byte) ([]archive.Link, error) {
	var blocks []archive.Link
	err := s.WalkTxByHash(txHash, func(txFk archive.Link) (bool, error) {
		block, err := ToBlock(s, txFk)
		if err != nil {
			return false, err
		}
		blocks = append(blocks, block)
		return true, nil
	})
	return blocks, err
}
