package archive

// HashMap composes a HashHead, a RecordManager, and the Iterator chain
// walk into the hashmap table shape of §4.4: natural-key lookup by hash,
// insert via lock-free CAS push, duplicates permitted (chained, not
// rejected — duplicate detection is a caller concern, see duplicate
// table).
//
// Every element managed by a HashMap is laid out as:
//
//	[next-link: linkWidth bytes][key: key.Size() bytes][payload...]
type HashMap struct {
	head      *HashHead
	records   *RecordManager
	linkWidth int
	keyOffset int
	keySize   int
}

// NewHashMap wires a hash head to the record manager holding its chained
// elements. keySize is the fixed key width stored at byte offset
// linkWidth in every element.
func NewHashMap(head *HashHead, records *RecordManager, linkWidth, keySize int) *HashMap {
	return &HashMap{head: head, records: records, linkWidth: linkWidth, keyOffset: linkWidth, keySize: keySize}
}

// Get locates key's element and returns its link. The bool result is
// false both when the sieve screens key out and when the chain walk
// finds no match; callers cannot distinguish the two, which is the point
// of the sieve (§4.6).
func (m *HashMap) Get(key Key) (Link, bool, error) {
	head, admitted, err := m.head.Top(key)
	if err != nil {
		return 0, false, err
	}
	if !admitted {
		return 0, false, nil
	}
	it := NewIterator(m.records, head, m.linkWidth, m.keyOffset)
	found, err := it.Find(key)
	if err != nil || !found {
		return 0, found, err
	}
	return it.Link(), true, nil
}

// First begins a full-chain walk over one bucket, independent of any
// particular key (used by duplicate-detection and table scans that must
// visit every element sharing a bucket).
func (m *HashMap) First(bucket uint64) (*Iterator, error) {
	head, err := m.head.TopAt(bucket)
	if err != nil {
		return nil, err
	}
	return NewIterator(m.records, head, m.linkWidth, m.keyOffset), nil
}

// At returns the raw element bytes at link.
func (m *HashMap) At(link Link) ([]byte, error) {
	return m.records.Get(link)
}

// PayloadOffset returns the byte offset within an element at which its
// payload begins, past the next-link and key prefix.
func (m *HashMap) PayloadOffset() int { return m.keyOffset + m.keySize }

// GetKey returns the stored key bytes for the element at link.
func (m *HashMap) GetKey(link Link) ([]byte, error) {
	raw, err := m.records.Get(link)
	if err != nil {
		return nil, err
	}
	return raw[m.keyOffset : m.keyOffset+m.keySize], nil
}

// Commit allocates a new element for key/payload and publishes it as the
// new head of key's bucket chain via compare-and-swap (§4.4, §4.3). No
// lock is taken here or by the Store's Put* accessors; the retry loop
// below handles a lost compare-and-swap by allocating a fresh element,
// and never reclaims the losing allocation because managers only grow.
// On success the head's body-count prefix is set to the record count.
func (m *HashMap) Commit(key Key, payload []byte) (Link, error) {
	bucket := m.head.Bucket(key)
	for {
		oldHead, err := m.head.TopAt(bucket)
		if err != nil {
			return 0, err
		}

		link, err := m.records.Allocate(1)
		if err != nil {
			return 0, err
		}
		raw, err := m.records.Get(link)
		if err != nil {
			return 0, err
		}
		putLink(raw[:m.linkWidth], oldHead, m.linkWidth)
		key.Write(raw[m.keyOffset : m.keyOffset+m.keySize])
		copy(raw[m.keyOffset+m.keySize:], payload)

		ok, err := m.head.Push(key, link, oldHead)
		if err != nil {
			return 0, err
		}
		if ok {
			if err := m.head.SetBodyCount(m.records.Count()); err != nil {
				return 0, err
			}
			return link, nil
		}
	}
}

// BodyCount returns the hashmap's body-element count as tracked in the
// head file's prefix (updated by Commit after each successful insert, so
// it equals the link the next Commit allocates).
func (m *HashMap) BodyCount() (Link, error) { return m.head.GetBodyCount() }

// SetBodyCount updates the head file's tracked body-element count.
func (m *HashMap) SetBodyCount(count Link) error { return m.head.SetBodyCount(count) }
