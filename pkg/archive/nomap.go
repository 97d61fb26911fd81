package archive

// NoMap is the table shape of §4.4 with no head file at all: elements are
// addressed purely by the link their allocator handed back (point, ins —
// fixed-size records reached only by following another table's stored
// link, never by key lookup; the variable-size puts, outs, output and
// input tables use PrefixedSlabNoMap instead).
type NoMap struct {
	records *RecordManager
}

// NewNoMap wraps a record manager with no head indirection.
func NewNoMap(records *RecordManager) *NoMap {
	return &NoMap{records: records}
}

// Put allocates a new element holding payload and returns its link.
func (m *NoMap) Put(payload []byte) (Link, error) {
	link, err := m.records.Allocate(1)
	if err != nil {
		return 0, err
	}
	raw, err := m.records.Get(link)
	if err != nil {
		return 0, err
	}
	copy(raw, payload)
	return link, nil
}

// At returns the raw element bytes at link.
func (m *NoMap) At(link Link) ([]byte, error) {
	return m.records.Get(link)
}

// Count returns the current element count.
func (m *NoMap) Count() Link { return m.records.Count() }

// SlabNoMap is the variable-size analog of NoMap, for slab-managed tables
// (strings/tx bodies addressed by byte offset rather than element index).
type SlabNoMap struct {
	slabs *SlabManager
}

// NewSlabNoMap wraps a slab manager with no head indirection.
func NewSlabNoMap(slabs *SlabManager) *SlabNoMap {
	return &SlabNoMap{slabs: slabs}
}

// Put allocates len(payload) bytes and writes payload into them, returning
// the slab offset.
func (m *SlabNoMap) Put(payload []byte) (Link, error) {
	link, err := m.slabs.Allocate(int64(len(payload)))
	if err != nil {
		return 0, err
	}
	raw, err := m.slabs.Get(link, int64(len(payload)))
	if err != nil {
		return 0, err
	}
	copy(raw, payload)
	return link, nil
}

// At returns length bytes starting at link.
func (m *SlabNoMap) At(link Link, length int64) ([]byte, error) {
	return m.slabs.Get(link, length)
}

// PrefixedSlabNoMap is SlabNoMap's self-describing analog: each element
// carries a 4-byte little-endian length prefix ahead of its payload, so
// At can recover the payload's extent from the link alone (puts, outs,
// output, input — none of whose codecs carry a length usable without
// first knowing where the element ends, unlike e.g. txs's internal
// tx-count prefix).
type PrefixedSlabNoMap struct {
	slabs *SlabManager
}

// NewPrefixedSlabNoMap wraps a slab manager with length-prefixed framing.
func NewPrefixedSlabNoMap(slabs *SlabManager) *PrefixedSlabNoMap {
	return &PrefixedSlabNoMap{slabs: slabs}
}

// Put allocates len(payload)+4 bytes, writes a length prefix followed by
// payload, and returns the slab offset.
func (m *PrefixedSlabNoMap) Put(payload []byte) (Link, error) {
	link, err := m.slabs.Allocate(int64(len(payload)) + variableArrayLengthPrefix)
	if err != nil {
		return 0, err
	}
	header, err := m.slabs.Get(link, variableArrayLengthPrefix)
	if err != nil {
		return 0, err
	}
	n := uint32(len(payload))
	header[0], header[1], header[2], header[3] = byte(n), byte(n>>8), byte(n>>16), byte(n>>24)

	body, err := m.slabs.Get(link+variableArrayLengthPrefix, int64(len(payload)))
	if err != nil {
		return 0, err
	}
	copy(body, payload)
	return link, nil
}

// At returns the payload bytes stored at link.
func (m *PrefixedSlabNoMap) At(link Link) ([]byte, error) {
	header, err := m.slabs.Get(link, variableArrayLengthPrefix)
	if err != nil {
		return nil, err
	}
	length := int64(header[0]) | int64(header[1])<<8 | int64(header[2])<<16 | int64(header[3])<<24
	return m.slabs.Get(link+variableArrayLengthPrefix, length)
}
