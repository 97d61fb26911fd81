package archive

import (
	"encoding/binary"

	"github.com/blkarchive/archive/pkg/archive/tables"
)

// This file wires the raw HashMap/ArrayMap/NoMap accessors of Store to
// the typed codecs in pkg/archive/tables, so the query engine works with
// domain values rather than []byte throughout (§4.8, §4.9).

func linkKey(link Link) FixedKey {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(link))
	return NewFixedKey(buf[:])
}

// PutHeader inserts a new header keyed by blockHash and returns its link.
func (s *Store) PutHeader(blockHash [32]byte, h tables.Header) (Link, error) {
	payload := make([]byte, tables.HeaderSize)
	h.Encode(payload)
	return s.Header.Commit(NewFixedKey(blockHash[:]), payload)
}

// GetHeaderByHash looks up a header by block hash.
func (s *Store) GetHeaderByHash(blockHash [32]byte) (tables.Header, Link, bool, error) {
	link, ok, err := s.Header.Get(NewFixedKey(blockHash[:]))
	if err != nil || !ok {
		return tables.Header{}, 0, ok, err
	}
	raw, err := s.Header.At(link)
	if err != nil {
		return tables.Header{}, 0, false, err
	}
	return tables.DecodeHeader(raw[s.Header.PayloadOffset():]), link, true, nil
}

// GetHeader resolves a header directly by its link.
func (s *Store) GetHeader(link Link) (tables.Header, error) {
	raw, err := s.Header.At(link)
	if err != nil {
		return tables.Header{}, err
	}
	return tables.DecodeHeader(raw[s.Header.PayloadOffset():]), nil
}

// GetHeaderHash resolves the block hash a header is stored under: headers
// are content-addressed, so the hash lives in the hashmap key rather than
// the payload (§4.8), recovered here via HashMap.GetKey.
func (s *Store) GetHeaderHash(link Link) ([32]byte, error) {
	raw, err := s.Header.GetKey(link)
	if err != nil {
		return [32]byte{}, err
	}
	var hash [32]byte
	copy(hash[:], raw)
	return hash, nil
}

// PutTx inserts a new tx keyed by txHash and returns its link.
func (s *Store) PutTx(txHash [32]byte, t tables.Tx) (Link, error) {
	payload := make([]byte, tables.TxSize)
	t.Encode(payload)
	return s.Tx.Commit(NewFixedKey(txHash[:]), payload)
}

// GetTxByHash looks up a tx by its hash.
func (s *Store) GetTxByHash(txHash [32]byte) (tables.Tx, Link, bool, error) {
	link, ok, err := s.Tx.Get(NewFixedKey(txHash[:]))
	if err != nil || !ok {
		return tables.Tx{}, 0, ok, err
	}
	t, err := s.GetTx(link)
	return t, link, err == nil, err
}

// GetTx resolves a tx directly by its link.
func (s *Store) GetTx(link Link) (tables.Tx, error) {
	raw, err := s.Tx.At(link)
	if err != nil {
		return tables.Tx{}, err
	}
	return tables.DecodeTx(raw[s.Tx.PayloadOffset():]), nil
}

// GetTxHash resolves the hash a tx is keyed under: like headers, tx
// records are content-addressed, so the hash lives in the hashmap key
// rather than the payload, recovered here via HashMap.GetKey.
func (s *Store) GetTxHash(link Link) ([32]byte, error) {
	raw, err := s.Tx.GetKey(link)
	if err != nil {
		return [32]byte{}, err
	}
	var hash [32]byte
	copy(hash[:], raw)
	return hash, nil
}

// PutPoint appends a new point record (the spending/owning tx hash) and
// returns its link, whose truncation is the stub spend-table lookups use.
func (s *Store) PutPoint(txHash [32]byte) (Link, error) {
	payload := make([]byte, tables.PointSize)
	tables.Point{Hash: txHash}.Encode(payload)
	return s.Point.Put(payload)
}

// GetPoint resolves a point record by link.
func (s *Store) GetPoint(link Link) (tables.Point, error) {
	raw, err := s.Point.At(link)
	if err != nil {
		return tables.Point{}, err
	}
	return tables.DecodePoint(raw), nil
}

// PutPuts stores a tx's output-fk vector.
func (s *Store) PutPuts(p tables.Puts) (Link, error) {
	payload := make([]byte, p.Size())
	p.Encode(payload)
	return s.Puts.Put(payload)
}

// GetPuts resolves a puts vector by link.
func (s *Store) GetPuts(link Link) (tables.Puts, error) {
	raw, err := s.Puts.At(link)
	if err != nil {
		return tables.Puts{}, err
	}
	return tables.DecodePuts(raw), nil
}

// PutOuts stores an output-fk vector.
func (s *Store) PutOuts(o tables.Outs) (Link, error) {
	payload := make([]byte, o.Size())
	o.Encode(payload)
	return s.Outs.Put(payload)
}

// GetOuts resolves an outs vector by link.
func (s *Store) GetOuts(link Link) (tables.Outs, error) {
	raw, err := s.Outs.At(link)
	if err != nil {
		return tables.Outs{}, err
	}
	return tables.DecodeOuts(raw), nil
}

// PutOutput stores a serialized output.
func (s *Store) PutOutput(o tables.Output) (Link, error) {
	payload := make([]byte, o.Size())
	o.Encode(payload)
	return s.Output.Put(payload)
}

// GetOutput resolves a serialized output by link.
func (s *Store) GetOutput(link Link) (tables.Output, error) {
	raw, err := s.Output.At(link)
	if err != nil {
		return tables.Output{}, err
	}
	return tables.DecodeOutput(raw), nil
}

// PutInput stores a serialized input.
func (s *Store) PutInput(in tables.Input) (Link, error) {
	payload := make([]byte, in.Size())
	in.Encode(payload)
	return s.Input.Put(payload)
}

// GetInput resolves a serialized input by link.
func (s *Store) GetInput(link Link) (tables.Input, error) {
	raw, err := s.Input.At(link)
	if err != nil {
		return tables.Input{}, err
	}
	return tables.DecodeInput(raw), nil
}

// PutIns appends one input-slot record and returns its link. Callers are
// responsible for the §3.1 contiguity invariant (a tx's ins occupy
// ins_count consecutive links starting at tx.PointFk).
func (s *Store) PutIns(i tables.Ins) (Link, error) {
	payload := make([]byte, tables.InsSize)
	i.Encode(payload)
	return s.Ins.Put(payload)
}

// GetIns resolves one input-slot record by link.
func (s *Store) GetIns(link Link) (tables.Ins, error) {
	raw, err := s.Ins.At(link)
	if err != nil {
		return tables.Ins{}, err
	}
	return tables.DecodeIns(raw), nil
}

// PutSpend inserts a spend record keyed by (stub, index).
func (s *Store) PutSpend(stub Stub, index uint32, sp tables.Spend) (Link, error) {
	payload := make([]byte, tables.SpendSize)
	sp.Encode(payload)
	return s.Spend.Commit(SpendKey{Stub: stub, Index: index}, payload)
}

// FirstSpend begins a chain walk over every spend record sharing
// (stub,index)'s bucket, used to enumerate all spenders of a stub (§4.10
// step 6's "iterate spend table for (stub,index)").
func (s *Store) FirstSpend(stub Stub, index uint32) (*Iterator, error) {
	key := SpendKey{Stub: stub, Index: index}
	return s.Spend.First(s.Spend.head.Bucket(key))
}

// GetSpend resolves a spend record by link.
func (s *Store) GetSpend(link Link) (tables.Spend, error) {
	raw, err := s.Spend.At(link)
	if err != nil {
		return tables.Spend{}, err
	}
	return tables.DecodeSpend(raw[s.Spend.PayloadOffset():]), nil
}

// PutTxs inserts the txs record for header at height index.
func (s *Store) PutTxs(index uint64, t tables.Txs) (Link, error) {
	payload := make([]byte, t.Size())
	t.Encode(payload)
	return s.Txs.Put(index, payload)
}

// GetTxs resolves the txs record for header at height index.
func (s *Store) GetTxs(index uint64) (tables.Txs, bool, error) {
	raw, ok, err := s.Txs.Get(index)
	if err != nil || !ok {
		return tables.Txs{}, ok, err
	}
	return tables.DecodeTxs(raw), true, nil
}

// SetCandidate publishes headerLink as the candidate chain's header at
// height.
func (s *Store) SetCandidate(height uint64, headerLink Link) (Link, error) {
	payload := make([]byte, tables.HeightEntrySize)
	tables.Candidate{HeaderFk: uint32(headerLink)}.Encode(payload)
	return s.Candidate.Put(height, payload)
}

// GetCandidate resolves the candidate chain's header link at height.
func (s *Store) GetCandidate(height uint64) (Link, bool, error) {
	raw, ok, err := s.Candidate.Get(height)
	if err != nil || !ok {
		return 0, ok, err
	}
	return Link(tables.DecodeCandidate(raw).HeaderFk), true, nil
}

// SetConfirmed publishes headerLink as the confirmed chain's header at
// height.
func (s *Store) SetConfirmed(height uint64, headerLink Link) (Link, error) {
	payload := make([]byte, tables.HeightEntrySize)
	tables.Confirmed{HeaderFk: uint32(headerLink)}.Encode(payload)
	return s.Confirmed.Put(height, payload)
}

// GetConfirmed resolves the confirmed chain's header link at height.
func (s *Store) GetConfirmed(height uint64) (Link, bool, error) {
	raw, ok, err := s.Confirmed.Get(height)
	if err != nil || !ok {
		return 0, ok, err
	}
	return Link(tables.DecodeConfirmed(raw).HeaderFk), true, nil
}

// PutStrongTx records a (tx-fk, header-fk, positive) association.
func (s *Store) PutStrongTx(txFk Link, st tables.StrongTx) (Link, error) {
	payload := make([]byte, tables.StrongTxSize)
	st.Encode(payload)
	return s.StrongTx.Commit(linkKey(txFk), payload)
}

// FirstStrongTx begins a chain walk over every strong_tx record in
// txFk's bucket, newest first (§4.5). Records of other tx-fks sharing
// the bucket are not filtered out; WalkStrongTx does that.
func (s *Store) FirstStrongTx(txFk Link) (*Iterator, error) {
	key := linkKey(txFk)
	return s.StrongTx.First(s.StrongTx.head.Bucket(key))
}

// GetStrongTx resolves a strong_tx record by link.
func (s *Store) GetStrongTx(link Link) (tables.StrongTx, error) {
	raw, err := s.StrongTx.At(link)
	if err != nil {
		return tables.StrongTx{}, err
	}
	return tables.DecodeStrongTx(raw[s.StrongTx.PayloadOffset():]), nil
}

// PutDuplicate records a BIP30 coinbase-hash collision marker.
func (s *Store) PutDuplicate(txHash [32]byte) (Link, error) {
	return s.Duplicate.Commit(NewFixedKey(txHash[:]), nil)
}

// IsDuplicate reports whether txHash has ever been recorded as a
// duplicate coinbase hash.
func (s *Store) IsDuplicate(txHash [32]byte) (bool, error) {
	_, ok, err := s.Duplicate.Get(NewFixedKey(txHash[:]))
	return ok, err
}

// PutPrevout caches the prevout vector for header at height index.
func (s *Store) PutPrevout(index uint64, p tables.Prevout) (Link, error) {
	payload := make([]byte, p.Size())
	p.Encode(payload)
	return s.Prevout.Put(index, payload)
}

// GetPrevout resolves the cached prevout vector for header at height
// index.
func (s *Store) GetPrevout(index uint64) (tables.Prevout, bool, error) {
	raw, ok, err := s.Prevout.Get(index)
	if err != nil || !ok {
		return tables.Prevout{}, ok, err
	}
	return tables.DecodePrevout(raw), true, nil
}

// PutValidatedBk records a block's validation outcome.
func (s *Store) PutValidatedBk(index uint64, v tables.ValidatedBk) (Link, error) {
	payload := make([]byte, v.Size())
	v.Encode(payload)
	return s.ValidatedBk.Put(index, payload)
}

// GetValidatedBk resolves a block's validation outcome by height index.
func (s *Store) GetValidatedBk(index uint64) (tables.ValidatedBk, bool, error) {
	raw, ok, err := s.ValidatedBk.Get(index)
	if err != nil || !ok {
		return tables.ValidatedBk{}, ok, err
	}
	return tables.DecodeValidatedBk(raw), true, nil
}

// PutValidatedTx records a tx's validation outcome.
func (s *Store) PutValidatedTx(txFk Link, v tables.ValidatedTx) (Link, error) {
	payload := make([]byte, tables.ValidatedTxSize)
	v.Encode(payload)
	return s.ValidatedTx.Commit(linkKey(txFk), payload)
}

// GetValidatedTx looks up a tx's most recent validation outcome.
func (s *Store) GetValidatedTx(txFk Link) (tables.ValidatedTx, bool, error) {
	link, ok, err := s.ValidatedTx.Get(linkKey(txFk))
	if err != nil || !ok {
		return tables.ValidatedTx{}, ok, err
	}
	raw, err := s.ValidatedTx.At(link)
	if err != nil {
		return tables.ValidatedTx{}, false, err
	}
	return tables.DecodeValidatedTx(raw[s.ValidatedTx.PayloadOffset():]), true, nil
}

// PutAddress records an output paying to a 20-byte address hash. Only
// meaningful when Settings.EnableAddressIndex is set.
func (s *Store) PutAddress(addressHash [20]byte, outputFk Link) (Link, error) {
	payload := make([]byte, tables.AddressSize)
	tables.Address{OutputFk: uint32(outputFk)}.Encode(payload)
	return s.Address.Commit(NewFixedKey(addressHash[:]), payload)
}

// FirstAddress begins a chain walk over every address record in
// addressHash's bucket, newest first (§4.5). Records of other address
// hashes sharing the bucket are not filtered out.
func (s *Store) FirstAddress(addressHash [20]byte) (*Iterator, error) {
	key := NewFixedKey(addressHash[:])
	return s.Address.First(s.Address.head.Bucket(key))
}

// PutFilterBk stores the optional compact-filter index entry for header
// at height index.
func (s *Store) PutFilterBk(index uint64, f tables.FilterBk) (Link, error) {
	payload := make([]byte, f.Size())
	f.Encode(payload)
	return s.FilterBk.Put(index, payload)
}

// GetFilterBk resolves the compact-filter index entry for header at
// height index.
func (s *Store) GetFilterBk(index uint64) (tables.FilterBk, bool, error) {
	raw, ok, err := s.FilterBk.Get(index)
	if err != nil || !ok {
		return tables.FilterBk{}, ok, err
	}
	return tables.DecodeFilterBk(raw), true, nil
}

// PutFilterTx stores the optional per-tx filter entry for tx-fk index.
func (s *Store) PutFilterTx(index uint64, f tables.FilterTx) (Link, error) {
	payload := make([]byte, f.Size())
	f.Encode(payload)
	return s.FilterTx.Put(index, payload)
}

// GetFilterTx resolves the per-tx filter entry for tx-fk index.
func (s *Store) GetFilterTx(index uint64) (tables.FilterTx, bool, error) {
	raw, ok, err := s.FilterTx.Get(index)
	if err != nil || !ok {
		return tables.FilterTx{}, ok, err
	}
	return tables.DecodeFilterTx(raw), true, nil
}

// WalkTxByHash invokes fn, newest-inserted first (§4.5), for every tx
// record whose stored key equals txHash — ordinarily one record, except
// during a BIP30 duplicate-coinbase-hash collision where several tx-fks
// share the same hash. Walking stops early if fn returns cont=false or a
// non-nil error.
func (s *Store) WalkTxByHash(txHash [32]byte, fn func(link Link) (cont bool, err error)) error {
	key := NewFixedKey(txHash[:])
	it, err := s.Tx.First(s.Tx.head.Bucket(key))
	if err != nil {
		return err
	}
	for !it.Done() {
		match, err := it.MatchKey(key)
		if err != nil {
			return err
		}
		if match {
			cont, err := fn(it.Link())
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		if err := it.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// WalkStrongTx invokes fn, newest-inserted first, for every strong_tx
// record keyed by txFk (the reorg history of that tx's strength across
// every header that has ever claimed it). Walking stops early if fn
// returns cont=false or a non-nil error.
func (s *Store) WalkStrongTx(txFk Link, fn func(link Link, st tables.StrongTx) (cont bool, err error)) error {
	key := linkKey(txFk)
	it, err := s.StrongTx.First(s.StrongTx.head.Bucket(key))
	if err != nil {
		return err
	}
	for !it.Done() {
		match, err := it.MatchKey(key)
		if err != nil {
			return err
		}
		if match {
			raw, err := it.Get()
			if err != nil {
				return err
			}
			st := tables.DecodeStrongTx(raw[s.StrongTx.PayloadOffset():])
			cont, err := fn(it.Link(), st)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		if err := it.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// WalkSpend invokes fn, newest-inserted first, for every spend record
// keyed by (stub, index) — every claim, current or superseded by reorg,
// to spend that output (§4.10 step 6's double-spend scan). Walking stops
// early if fn returns cont=false or a non-nil error.
func (s *Store) WalkSpend(stub Stub, index uint32, fn func(link Link, sp tables.Spend) (cont bool, err error)) error {
	key := SpendKey{Stub: stub, Index: index}
	it, err := s.Spend.First(s.Spend.head.Bucket(key))
	if err != nil {
		return err
	}
	for !it.Done() {
		match, err := it.MatchKey(key)
		if err != nil {
			return err
		}
		if match {
			raw, err := it.Get()
			if err != nil {
				return err
			}
			sp := tables.DecodeSpend(raw[s.Spend.PayloadOffset():])
			cont, err := fn(it.Link(), sp)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		if err := it.Advance(); err != nil {
			return err
		}
	}
	return nil
}
