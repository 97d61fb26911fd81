package archive

// Sieve is a fixed-width Bloom-like screen stored inside a single head
// bucket slot, used to short-circuit negative hashmap lookups (§4.6).
//
// The field packs a saturating selector (how many admission "rounds" have
// run) in its high SelectorBits bits and a data bitmap in its low
// DataBits bits. Each round after the first activates one additional
// FNV-1a-derived bit function over the thumb; admission (screened) is an
// OR across every function activated so far. Because the set of active
// functions only grows and the data bitmap is only ever OR'd into, a key
// admitted during an earlier round remains admitted at any later round —
// satisfying the "never un-saturates, no false negatives" contract — while
// growing the function count as occupancy rises keeps the false-positive
// rate roughly bounded, which is what lets a small fixed field serve an
// arbitrarily long bucket chain. See §9 "Sieve lookup-table": this is the
// same triangular growth the source's compile-time table encodes, derived
// here at call time instead of from a precomputed matrix.
type Sieve struct {
	SelectorBits int
	DataBits     int
}

// DefaultSieve matches the spec's worked example (§4.6): 4 selector bits
// (16 rounds) and 29 data bits, a 33-bit field that fits in a 64-bit
// bucket slot beside a link of at most 3 bytes. The store's 4-byte-link
// tables use DefaultSettings' 4/28 split instead.
var DefaultSieve = Sieve{SelectorBits: 4, DataBits: 29}

func (s Sieve) maxSelector() uint64 {
	if s.SelectorBits <= 0 {
		return 0
	}
	return (uint64(1) << uint(s.SelectorBits)) - 1
}

func (s Sieve) dataMask() uint64 {
	if s.DataBits <= 0 {
		return 0
	}
	return (uint64(1) << uint(s.DataBits)) - 1
}

// split decomposes a packed field into (selector, data).
func (s Sieve) split(field uint64) (selector, data uint64) {
	data = field & s.dataMask()
	selector = (field >> uint(s.DataBits)) & s.maxSelector()
	return
}

// pack recomposes a packed field from (selector, data).
func (s Sieve) pack(selector, data uint64) uint64 {
	return (selector&s.maxSelector())<<uint(s.DataBits) | (data & s.dataMask())
}

// bitFor returns the data-bitmap position activated by round j (1-indexed)
// for the given thumb.
func (s Sieve) bitFor(thumb uint64, round uint64) uint64 {
	if s.DataBits <= 0 {
		return 0
	}
	pos := fnv1aCombine(thumb, round) % uint64(s.DataBits)
	return uint64(1) << pos
}

// Screen folds thumb into field for a new insertion. It returns the
// updated field and true, or the field unchanged and false if the sieve
// is already saturated (selector at its maximum — further insertions
// still occur in the bucket chain, they just stop being screened).
func (s Sieve) Screen(field uint64, thumb uint64) (uint64, bool) {
	selector, data := s.split(field)
	max := s.maxSelector()
	if selector >= max {
		return field, false
	}
	newSelector := selector + 1
	data |= s.bitFor(thumb, newSelector)
	return s.pack(newSelector, data), true
}

// Screened reports whether thumb may be present, per field's current
// state. False means definitely absent; true may be a false positive, or
// may simply mean the sieve is saturated and admitting everything.
func (s Sieve) Screened(field uint64, thumb uint64) bool {
	selector, data := s.split(field)
	max := s.maxSelector()
	if selector >= max {
		return true
	}
	if selector == 0 {
		return false
	}
	for round := uint64(1); round <= selector; round++ {
		if data&s.bitFor(thumb, round) != 0 {
			return true
		}
	}
	return false
}

// Width returns the number of bits the packed field occupies.
func (s Sieve) Width() int { return s.SelectorBits + s.DataBits }
