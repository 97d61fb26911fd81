package archive

import (
	"sync"

	"github.com/blkarchive/archive/internal/mmapio"
)

// RecordManager is a fixed-element-size allocator over one body file
// (§4.2). Its link is an element index; allocate/truncate operate in
// whole elements, and link↔position translation is a simple multiply.
type RecordManager struct {
	mu          sync.Mutex
	file        *mmapio.File
	elementSize int64
}

// NewRecordManager wraps file as a record manager with the given
// per-element size (next-link + key + payload, as laid out by the table
// that owns this manager).
func NewRecordManager(file *mmapio.File, elementSize int64) *RecordManager {
	return &RecordManager{file: file, elementSize: elementSize}
}

// Count returns the current element count.
func (m *RecordManager) Count() Link {
	return Link(m.file.Size() / m.elementSize)
}

// LinkToPosition translates an element link to a byte offset.
func (m *RecordManager) LinkToPosition(link Link) int64 {
	return int64(link) * m.elementSize
}

// Allocate reserves n contiguous elements and returns the first one's
// link.
func (m *RecordManager) Allocate(n int64) (Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	first := m.file.Size() / m.elementSize
	if err := m.file.Resize((first + n) * m.elementSize); err != nil {
		return 0, err
	}
	return Link(first), nil
}

// Truncate lowers the element count; it never raises it.
func (m *RecordManager) Truncate(count Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if count >= m.Count() {
		return nil
	}
	return m.file.Resize(int64(count) * m.elementSize)
}

// Get returns the raw bytes of the element at link.
func (m *RecordManager) Get(link Link) ([]byte, error) {
	return m.file.Get(m.LinkToPosition(link), m.elementSize)
}

// ElementSize returns the fixed per-element size.
func (m *RecordManager) ElementSize() int64 { return m.elementSize }

// SlabManager is a variable-element-size allocator over one body file
// (§4.2). Its link is a byte offset; allocate/truncate operate in bytes.
type SlabManager struct {
	mu   sync.Mutex
	file *mmapio.File
}

// NewSlabManager wraps file as a slab manager.
func NewSlabManager(file *mmapio.File) *SlabManager {
	return &SlabManager{file: file}
}

// Count returns the next-free byte offset.
func (m *SlabManager) Count() Link {
	return Link(m.file.Size())
}

// Allocate reserves the next n bytes and returns the offset they start
// at.
func (m *SlabManager) Allocate(n int64) (Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	first := m.file.Size()
	if err := m.file.Resize(first + n); err != nil {
		return 0, err
	}
	return Link(first), nil
}

// Truncate lowers the byte count; it never raises it.
func (m *SlabManager) Truncate(count Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if int64(count) >= m.file.Size() {
		return nil
	}
	return m.file.Resize(int64(count))
}

// Get returns the raw bytes of the slab of length bytes starting at
// link.
func (m *SlabManager) Get(link Link, length int64) ([]byte, error) {
	return m.file.Get(int64(link), length)
}
