package archive

// ArrayMap composes an ArrayHead and a RecordManager into the arraymap
// table shape of §4.4: lookup by natural key (block height, header link)
// rather than by hash, one slot per natural index rather than a
// collision chain. Tables keyed this way (candidate, confirmed, txs,
// prevout, validated_bk, filter_bk) overwrite their slot on re-Put rather
// than chaining, since a natural key has at most one current value.
type ArrayMap struct {
	head    *ArrayHead
	records *RecordManager
}

// NewArrayMap wires an array head to the record manager holding its
// elements. Elements carry no next-link prefix: there is no chain to
// walk, so the full element width is payload.
func NewArrayMap(head *ArrayHead, records *RecordManager) *ArrayMap {
	return &ArrayMap{head: head, records: records}
}

// Get returns the element stored at natural index, or ok=false if index
// has never been Put.
func (m *ArrayMap) Get(index uint64) ([]byte, bool, error) {
	link, err := m.head.Top(index)
	if err != nil {
		return nil, false, err
	}
	if m.head.IsTerminal(link) {
		return nil, false, nil
	}
	raw, err := m.records.Get(link)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// At returns the raw element at an already-resolved link.
func (m *ArrayMap) At(link Link) ([]byte, error) {
	return m.records.Get(link)
}

// Put allocates a new element holding payload and publishes it as natural
// index's current value.
func (m *ArrayMap) Put(index uint64, payload []byte) (Link, error) {
	link, err := m.records.Allocate(1)
	if err != nil {
		return 0, err
	}
	raw, err := m.records.Get(link)
	if err != nil {
		return 0, err
	}
	copy(raw, payload)
	if err := m.head.Push(index, link); err != nil {
		return 0, err
	}
	return link, nil
}

// Buckets reports the number of natural-key slots currently addressable.
func (m *ArrayMap) Buckets() uint64 { return m.head.Buckets() }

const variableArrayLengthPrefix = 4

// VariableArrayMap is ArrayMap's analog for tables whose payload has no
// fixed width (txs, prevout, validated_bk, filter_bk, filter_tx): the
// body is slab-managed rather than record-managed, and each element
// carries a 4-byte little-endian length prefix ahead of its payload so
// Get can recover how much to read from the link alone.
type VariableArrayMap struct {
	head  *ArrayHead
	slabs *SlabManager
}

// NewVariableArrayMap wires an array head to the slab manager holding
// its variable-width elements.
func NewVariableArrayMap(head *ArrayHead, slabs *SlabManager) *VariableArrayMap {
	return &VariableArrayMap{head: head, slabs: slabs}
}

// Get returns the element stored at natural index, or ok=false if index
// has never been Put.
func (m *VariableArrayMap) Get(index uint64) ([]byte, bool, error) {
	link, err := m.head.Top(index)
	if err != nil {
		return nil, false, err
	}
	if m.head.IsTerminal(link) {
		return nil, false, nil
	}
	return m.at(link)
}

// At returns the raw payload bytes at an already-resolved link.
func (m *VariableArrayMap) At(link Link) ([]byte, error) {
	raw, err := m.at(link)
	return raw, err
}

func (m *VariableArrayMap) at(link Link) ([]byte, error) {
	header, err := m.slabs.Get(link, variableArrayLengthPrefix)
	if err != nil {
		return nil, err
	}
	length := int64(header[0]) | int64(header[1])<<8 | int64(header[2])<<16 | int64(header[3])<<24
	return m.slabs.Get(link+variableArrayLengthPrefix, length)
}

// Put allocates len(payload)+4 bytes, writes a length prefix followed by
// payload, and publishes it as natural index's current value.
func (m *VariableArrayMap) Put(index uint64, payload []byte) (Link, error) {
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

	if err := m.head.Push(index, link); err != nil {
		return 0, err
	}
	return link, nil
}

// Buckets reports the number of natural-key slots currently addressable.
func (m *VariableArrayMap) Buckets() uint64 { return m.head.Buckets() }
