package archive

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/blkarchive/archive/internal/mmapio"
)

// bucketSlotBytes is the on-disk width of every bucket slot, link table or
// array table alike. Slots are always stored as a full little-endian
// uint64 so that a lock-free compare-and-swap insert (§4.3, §4.5) can use
// a single native atomic word regardless of a given table's declared link
// width; the low linkWidth*8 bits hold the link; any remaining high bits
// hold the optional sieve field (§4.6).
const bucketSlotBytes = 8

// bodyCountBytes is the width of the head file's body-count prefix word.
const bodyCountBytes = 8

// HashHead is the hashhead flavor of §4.3: a fixed array of N bucket
// slots, each the head of a singly-linked collision chain. Bucket index
// is hash(key) mod N.
type HashHead struct {
	file        *mmapio.File
	buckets     uint64
	linkWidth   int
	sieve       Sieve // zero value (Width()==0) disables the sieve
}

// NewHashHead wraps file as a hashhead with the given fixed bucket count,
// link width (bytes), and optional sieve (pass Sieve{} to disable).
func NewHashHead(file *mmapio.File, buckets uint64, linkWidth int, sieve Sieve) *HashHead {
	return &HashHead{file: file, buckets: buckets, linkWidth: linkWidth, sieve: sieve}
}

// Create initializes an empty head file: a zero body-count word followed
// by N terminal bucket slots.
func (h *HashHead) Create() error {
	if 8*h.linkWidth+h.sieve.Width() > 64 {
		panic("archive: link width and sieve width overflow a 64-bit bucket slot")
	}
	size := bodyCountBytes + int64(h.buckets)*bucketSlotBytes
	if err := h.file.Resize(size); err != nil {
		return err
	}
	term := terminalFor(h.linkWidth)
	for i := uint64(0); i < h.buckets; i++ {
		if err := h.writeBucket(i, uint64(term), 0); err != nil {
			return err
		}
	}
	return h.SetBodyCount(0)
}

// Verify checks the file length matches the configured bucket count.
func (h *HashHead) Verify() bool {
	want := bodyCountBytes + int64(h.buckets)*bucketSlotBytes
	return h.file.Size() == want
}

// GetBodyCount reads the body-count prefix.
func (h *HashHead) GetBodyCount() (Link, error) {
	b, err := h.file.Get(0, bodyCountBytes)
	if err != nil {
		return 0, err
	}
	return getLink(b, bodyCountBytes), nil
}

// SetBodyCount writes the body-count prefix.
func (h *HashHead) SetBodyCount(count Link) error {
	b, err := h.file.Get(0, bodyCountBytes)
	if err != nil {
		return err
	}
	putLink(b, count, bodyCountBytes)
	return nil
}

func (h *HashHead) slotOffset(bucket uint64) int64 {
	return bodyCountBytes + int64(bucket)*bucketSlotBytes
}

func (h *HashHead) readBucket(bucket uint64) (link Link, sieveField uint64, err error) {
	b, err := h.file.Get(h.slotOffset(bucket), bucketSlotBytes)
	if err != nil {
		return 0, 0, err
	}
	word := atomic.LoadUint64((*uint64)(unsafe.Pointer(&b[0])))
	return h.unpack(word)
}

func (h *HashHead) writeBucket(bucket uint64, linkWord uint64, sieveField uint64) error {
	b, err := h.file.Get(h.slotOffset(bucket), bucketSlotBytes)
	if err != nil {
		return err
	}
	atomic.StoreUint64((*uint64)(unsafe.Pointer(&b[0])), h.pack(Link(linkWord), sieveField))
	return nil
}

func (h *HashHead) pack(link Link, sieveField uint64) uint64 {
	return uint64(link) | sieveField<<uint(8*h.linkWidth)
}

func (h *HashHead) unpack(word uint64) (Link, uint64, error) {
	mask := uint64(1)<<uint(8*h.linkWidth) - 1
	if h.linkWidth >= 8 {
		mask = ^uint64(0)
	}
	link := Link(word & mask)
	sieveField := word >> uint(8*h.linkWidth)
	return link, sieveField, nil
}

// Bucket maps a key to its bucket index.
func (h *HashHead) Bucket(key Key) uint64 {
	return key.Bucket(h.buckets)
}

// Top returns the head link of the bucket key maps to, and reports
// whether the sieve (if enabled) admits key's thumb. A false admit means
// the caller may skip the chain walk entirely (§4.6).
func (h *HashHead) Top(key Key) (link Link, admitted bool, err error) {
	bucket := h.Bucket(key)
	link, sieveField, err := h.readBucket(bucket)
	if err != nil {
		return 0, false, err
	}
	if h.sieve.Width() == 0 {
		return link, true, nil
	}
	return link, h.sieve.Screened(sieveField, key.Thumb()), nil
}

// TopAt returns the head link stored at an explicit bucket index,
// bypassing key-based bucketing (used by iteration/diagnostics).
func (h *HashHead) TopAt(bucket uint64) (Link, error) {
	link, _, err := h.readBucket(bucket)
	return link, err
}

// Push performs the compare-and-swap insert of §4.3: the caller has
// already written newLink's element with next == oldHead; Push publishes
// newLink as the new bucket head iff the bucket still holds oldHead,
// folding key's thumb into the bucket's sieve on success.
func (h *HashHead) Push(key Key, newLink Link, oldHead Link) (bool, error) {
	bucket := h.Bucket(key)
	offset := h.slotOffset(bucket)
	b, err := h.file.Get(offset, bucketSlotBytes)
	if err != nil {
		return false, err
	}
	ptr := (*uint64)(unsafe.Pointer(&b[0]))

	for {
		old := atomic.LoadUint64(ptr)
		oldLink, sieveField, _ := h.unpack(old)
		if oldLink != oldHead {
			return false, nil
		}
		newSieveField := sieveField
		if h.sieve.Width() != 0 {
			newSieveField, _ = h.sieve.Screen(sieveField, key.Thumb())
		}
		newWord := h.pack(newLink, newSieveField)
		if atomic.CompareAndSwapUint64(ptr, old, newWord) {
			return true, nil
		}
	}
}

// Flush requests durability of the head file.
func (h *HashHead) Flush() error { return h.file.Flush() }

// ArrayHead is the arrayhead flavor of §4.3: a dynamically growing array
// where slot i holds the top link for natural key i (height, header-fk).
type ArrayHead struct {
	file      *mmapio.File
	linkWidth int
}

// NewArrayHead wraps file as an arrayhead with the given link width.
func NewArrayHead(file *mmapio.File, linkWidth int) *ArrayHead {
	return &ArrayHead{file: file, linkWidth: linkWidth}
}

// Create initializes an empty arrayhead: just the zero body-count word:
// arrayheads start with zero buckets and grow via Push.
func (h *ArrayHead) Create() error {
	if err := h.file.Resize(bodyCountBytes); err != nil {
		return err
	}
	return h.SetBodyCount(0)
}

// Verify checks the file is at least large enough to hold its prefix.
func (h *ArrayHead) Verify() bool {
	return h.file.Size() >= bodyCountBytes
}

// Buckets returns the number of natural-key slots currently addressable.
func (h *ArrayHead) Buckets() uint64 {
	return uint64((h.file.Size() - bodyCountBytes) / bucketSlotBytes)
}

func (h *ArrayHead) GetBodyCount() (Link, error) {
	b, err := h.file.Get(0, bodyCountBytes)
	if err != nil {
		return 0, err
	}
	return getLink(b, bodyCountBytes), nil
}

func (h *ArrayHead) SetBodyCount(count Link) error {
	b, err := h.file.Get(0, bodyCountBytes)
	if err != nil {
		return err
	}
	putLink(b, count, bodyCountBytes)
	return nil
}

func (h *ArrayHead) slotOffset(index uint64) int64 {
	return bodyCountBytes + int64(index)*bucketSlotBytes
}

// Top returns the link stored at natural index, or terminal if index has
// never been pushed.
func (h *ArrayHead) Top(index uint64) (Link, error) {
	if index >= h.Buckets() {
		return terminalFor(h.linkWidth), nil
	}
	b, err := h.file.Get(h.slotOffset(index), bucketSlotBytes)
	if err != nil {
		return 0, err
	}
	word := atomic.LoadUint64((*uint64)(unsafe.Pointer(&b[0])))
	return Link(word), nil
}

// Push grows the file (via Reserve) so slot index is addressable, then
// writes link into it (§4.3: arrayhead variant of push).
func (h *ArrayHead) Push(index uint64, link Link) error {
	needed := bodyCountBytes + int64(index+1)*bucketSlotBytes
	if needed > h.file.Size() {
		prevSize := h.file.Size()
		term := terminalFor(h.linkWidth)
		if err := h.file.Resize(needed); err != nil {
			return err
		}
		// Resize zero-fills new bytes, which is link value 0, not the
		// all-ones terminal sentinel; every newly exposed slot except the
		// one about to be written below must be stamped terminal, since
		// link 0 is itself a valid, frequently used link (the first
		// allocated element) and so cannot double as "never pushed".
		for off := prevSize; off < needed-bucketSlotBytes; off += bucketSlotBytes {
			b, err := h.file.Get(off, bucketSlotBytes)
			if err != nil {
				return err
			}
			atomic.StoreUint64((*uint64)(unsafe.Pointer(&b[0])), uint64(term))
		}
	}

	b, err := h.file.Get(h.slotOffset(index), bucketSlotBytes)
	if err != nil {
		return err
	}
	atomic.StoreUint64((*uint64)(unsafe.Pointer(&b[0])), uint64(link))
	return nil
}

// IsTerminal reports whether link is the "never pushed" sentinel for this
// head's configured link width.
func (h *ArrayHead) IsTerminal(link Link) bool { return isTerminal(link, h.linkWidth) }

// Flush requests durability of the head file.
func (h *ArrayHead) Flush() error { return h.file.Flush() }

// errInvalidBucketCount is returned when a head is configured with zero
// buckets but a hashmap operation requires bucketing.
var errInvalidBucketCount = fmt.Errorf("archive: head has zero buckets")
