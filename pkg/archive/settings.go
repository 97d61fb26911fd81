package archive

// Settings configures a Store at Create/Open time (SPEC_FULL.md §4.13,
// grounded on libbitcoin-database's settings.hpp). Bucket counts are
// fixed at create time for hashmap tables (hashhead has no resize path);
// arraymap and nomap tables grow unbounded regardless of these values.
type Settings struct {
	HeaderBuckets    uint64
	TxBuckets        uint64
	SpendBuckets     uint64
	StrongTxBuckets  uint64
	DuplicateBuckets uint64
	AddressBuckets   uint64

	// MinimumBodyBytes is the initial mapped capacity reserved for every
	// body file before its first grow; 0 defers everything to the first
	// Allocate/Resize call.
	MinimumBodyBytes int64

	// EnableAddressIndex and EnableFilterIndex gate whole-table creation
	// for the two optional indexes: when false, the corresponding table
	// files are never created and the Store's Address, FilterBk and
	// FilterTx fields stay nil; the accessors over those tables do not
	// check the flag.
	EnableAddressIndex bool
	EnableFilterIndex  bool

	// EnablePrevoutCache toggles the §4.10 step 4 prevout-resolution mode:
	// when true, block_confirmable reads the cached prevout vector;
	// when false, it re-resolves each prevout via point/tx lookups.
	EnablePrevoutCache bool

	Bip30Enabled bool
	Bip68Enabled bool

	// StrictBip30SpentCheck gates the real is_spent_coinbase semantics of
	// SPEC_FULL.md §4.14; false reproduces the historical unconditional
	// true (see DESIGN.md Open Question resolution).
	StrictBip30SpentCheck bool

	RelativeLocktimeMinVersion uint32
	CoinbaseMaturity           uint32

	// IntervalDepth configures merkle subroot caching (§4.12); 0 disables
	// caching (every block is its own interval), a very large value
	// disables it entirely in the other direction (no interval ever
	// completes).
	IntervalDepth uint32

	SieveSelectorBits int
	SieveDataBits     int
}

// DefaultSettings returns settings matching the worked examples in
// spec.md §8: a 4/28-bit sieve (the 32 bits a 4-byte link leaves free
// in a 64-bit bucket slot), BIP30 and BIP68 both enabled, and modest
// bucket counts suitable for tests.
func DefaultSettings() Settings {
	return Settings{
		HeaderBuckets:              1021,
		TxBuckets:                  1021,
		SpendBuckets:               1021,
		StrongTxBuckets:            1021,
		DuplicateBuckets:           1021,
		AddressBuckets:             1021,
		EnablePrevoutCache:         true,
		Bip30Enabled:               true,
		Bip68Enabled:               true,
		RelativeLocktimeMinVersion: 2,
		CoinbaseMaturity:           100,
		IntervalDepth:              0,
		SieveSelectorBits:          4,
		SieveDataBits:              28,
	}
}

func (s Settings) sieve() Sieve {
	return Sieve{SelectorBits: s.SieveSelectorBits, DataBits: s.SieveDataBits}
}
