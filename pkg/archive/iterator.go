package archive

// Iterator walks a hashmap's collision chain for a single bucket, from the
// head link returned by HashHead.Top down to the terminal sentinel (§4.4).
// Key comparison is available through MatchKey and Find; callers that
// walk the raw chain read Get() and call Advance to continue.
type Iterator struct {
	records    *RecordManager
	linkWidth  int
	keyOffset  int
	cur        Link
	terminal   Link
}

// NewIterator begins a chain walk at head, the bucket's current top link.
// keyOffset is the byte offset of the record's key field within its
// element (past the next-link prefix); linkWidth is the width of that
// next-link field.
func NewIterator(records *RecordManager, head Link, linkWidth int, keyOffset int) *Iterator {
	return &Iterator{
		records:   records,
		linkWidth: linkWidth,
		keyOffset: keyOffset,
		cur:       head,
		terminal:  terminalFor(linkWidth),
	}
}

// Done reports whether the walk has reached the terminal sentinel.
func (it *Iterator) Done() bool { return it.cur == it.terminal }

// Link returns the element link the iterator currently points at.
func (it *Iterator) Link() Link { return it.cur }

// Get returns the raw record bytes at the iterator's current link.
func (it *Iterator) Get() ([]byte, error) {
	return it.records.Get(it.cur)
}

// MatchKey reports whether the record currently pointed at stores a key
// equal to key, reading the key bytes back from the record itself.
func (it *Iterator) MatchKey(key Key) (bool, error) {
	raw, err := it.Get()
	if err != nil {
		return false, err
	}
	return key.Equal(raw[it.keyOffset : it.keyOffset+key.Size()]), nil
}

// Advance follows the current element's next-link field to move to the
// next entry in the chain.
func (it *Iterator) Advance() error {
	raw, err := it.Get()
	if err != nil {
		return err
	}
	it.cur = getLink(raw[:it.linkWidth], it.linkWidth)
	return nil
}

// Find walks the chain starting at the iterator's current position until
// it locates an element whose stored key equals key, or exhausts the
// chain. On success the iterator is left pointing at the match; on
// failure it is left at terminal.
func (it *Iterator) Find(key Key) (bool, error) {
	for !it.Done() {
		match, err := it.MatchKey(key)
		if err != nil {
			return false, err
		}
		if match {
			return true, nil
		}
		if err := it.Advance(); err != nil {
			return false, err
		}
	}
	return false, nil
}
