package archive

import "encoding/binary"

// Key is the capability set every key variant satisfies: serialized size,
// on-disk write, byte-exact compare against a stored record, and the two
// hash-derived quantities a hashmap bucket head needs (§4.7, §9 "Dispatch
// by key shape" — a tagged variant rather than compile-time templates).
type Key interface {
	// Size is the number of bytes Write emits.
	Size() int
	// Write serializes the key to dst, which must be at least Size() bytes.
	Write(dst []byte)
	// Equal reports whether the stored bytes at raw (Size() bytes) denote
	// the same key.
	Equal(raw []byte) bool
	// Bucket maps the key to a bucket index in [0, n).
	Bucket(n uint64) uint64
	// Thumb returns the 64-bit screen value used by the sieve (§4.6).
	Thumb() uint64
}

// FixedKey is a fixed-width byte-array key (block/tx hash, 20-byte short
// hash, ...). The zero value is invalid; use NewFixedKey.
type FixedKey struct {
	b []byte
}

// NewFixedKey copies b into a FixedKey of len(b) bytes.
func NewFixedKey(b []byte) FixedKey {
	cp := make([]byte, len(b))
	copy(cp, b)
	return FixedKey{b: cp}
}

func (k FixedKey) Size() int { return len(k.b) }

func (k FixedKey) Write(dst []byte) { copy(dst, k.b) }

func (k FixedKey) Equal(raw []byte) bool {
	if len(raw) < len(k.b) {
		return false
	}
	for i, c := range k.b {
		if raw[i] != c {
			return false
		}
	}
	return true
}

func (k FixedKey) Bucket(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return fnv1a64(k.b) % n
}

// Thumb reads 64 bits from the byte offset immediately past where a
// 32-byte hash would end, per §4.7: "fixed: 64 bits read from byte offset
// past the hash bytes". For keys shorter than 40 bytes this folds in the
// whole key via FNV-1a instead, since there is no such tail to read.
func (k FixedKey) Thumb() uint64 {
	const hashLen = 32
	if len(k.b) >= hashLen+8 {
		return binary.LittleEndian.Uint64(k.b[hashLen : hashLen+8])
	}
	return fnv1a64(k.b)
}

// NullIndex is the sentinel 4-byte input index denoting "no previous
// output" (coinbase input), per §4.7 / §9: bucket 0 is reserved
// exclusively for this key.
const NullIndex uint32 = 0xFFFFFFFF

// Point is a 36-byte outpoint key: a 32-byte previous-transaction hash and
// a 4-byte output index, truncated on disk to 3 bytes (§3, §4.7). The
// truncation is safe because no real index uses its top byte; the one
// exception, the null-outpoint sentinel, is routed to bucket 0 exclusively
// so it never collides with a truncated real index there.
type Point struct {
	Hash  [32]byte
	Index uint32
}

// Size is 35 bytes on disk: 32-byte hash + 3-byte truncated index (§4.7).
func (p Point) Size() int { return 35 }

func (p Point) Write(dst []byte) {
	copy(dst[:32], p.Hash[:])
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], p.Index)
	copy(dst[32:35], idx[:3])
}

func (p Point) Equal(raw []byte) bool {
	for i := 0; i < 32; i++ {
		if raw[i] != p.Hash[i] {
			return false
		}
	}
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], p.Index)
	return raw[32] == idx[0] && raw[33] == idx[1] && raw[34] == idx[2]
}

// Bucket implements §4.7: "outpoint: if index == null_index return bucket
// 0; else (fnv1a_combine(hash(key.hash), key.index) mod N); if that yields
// 0, return 1." Bucket 0 is thereby reserved for the null outpoint alone.
func (p Point) Bucket(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	if p.Index == NullIndex {
		return 0
	}
	b := fnv1aCombine(fnv1a64(p.Hash[:]), uint64(p.Index)) % n
	if b == 0 {
		return 1
	}
	return b
}

// Thumb implements §4.7: "outpoint: fnv1a_combine(thumb(key.hash),
// key.index)".
func (p Point) Thumb() uint64 {
	hashThumb := binary.LittleEndian.Uint64(p.Hash[:8])
	return fnv1aCombine(hashThumb, uint64(p.Index))
}

// Stub is the 3-byte truncation-aware bucketing key used by the spend
// table (§3 Glossary): the low 3 bytes of a point record's link (see
// StubOf), disambiguated on bucket collision by reading back point.hash
// at point_fk.
type Stub [3]byte

// StubOf derives the stub of a point link the way spend-table lookups do:
// the low 3 bytes of the point link's position, used only to seed the
// (stub, index) hashmap key — the full hash comparison happens via
// point_fk, not via the stub.
func StubOf(pointLink Link) Stub {
	var s Stub
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(pointLink))
	copy(s[:], buf[:3])
	return s
}

// SpendKey is the spend table's key: a stub combined with the spent
// output's index (§3: "(stub ⨁ output-index)").
type SpendKey struct {
	Stub  Stub
	Index uint32
}

func (k SpendKey) Size() int { return 7 }

func (k SpendKey) Write(dst []byte) {
	copy(dst[:3], k.Stub[:])
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], k.Index)
	copy(dst[3:7], idx[:])
}

func (k SpendKey) Equal(raw []byte) bool {
	if raw[0] != k.Stub[0] || raw[1] != k.Stub[1] || raw[2] != k.Stub[2] {
		return false
	}
	return binary.LittleEndian.Uint32(raw[3:7]) == k.Index
}

func (k SpendKey) Bucket(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	var buf [7]byte
	k.Write(buf[:])
	return fnv1a64(buf[:]) % n
}

func (k SpendKey) Thumb() uint64 {
	var buf [7]byte
	k.Write(buf[:])
	return fnv1a64(buf[:])
}

// fnv1aOffset and fnv1aPrime are the 64-bit FNV-1a constants used both for
// plain byte hashing and for the combine operator of §4.7.
const (
	fnv1aOffset = uint64(0xcbf29ce484222325)
	fnv1aPrime  = uint64(0x100000001b3)
)

// fnv1a64 hashes b with the standard FNV-1a byte-at-a-time algorithm.
func fnv1a64(b []byte) uint64 {
	h := fnv1aOffset
	for _, c := range b {
		h ^= uint64(c)
		h *= fnv1aPrime
	}
	return h
}

// fnv1aCombine implements §4.7's two-value combine: "h = offset; h ^= l; h
// *= prime; h ^= r; h *= prime".
func fnv1aCombine(l, r uint64) uint64 {
	h := fnv1aOffset
	h ^= l
	h *= fnv1aPrime
	h ^= r
	h *= fnv1aPrime
	return h
}

// HeightKey is the natural-index key used by arraymap tables (candidate,
// confirmed, txs, prevout, validated_bk, filter_bk): the bucket index
// equals the key itself, per §4.2's arrayhead.
type HeightKey uint32

func (k HeightKey) Index() uint64 { return uint64(k) }
