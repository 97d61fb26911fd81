package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blkarchive/archive/internal/mmapio"
)

func newTestFile(t *testing.T, minimumBytes int64) *mmapio.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.dat")
	f, err := mmapio.Create(path, minimumBytes)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestRecordManagerAllocateAndGet(t *testing.T) {
	f := newTestFile(t, 0)
	m := NewRecordManager(f, 16)

	require.Equal(t, Link(0), m.Count())

	l0, err := m.Allocate(1)
	require.NoError(t, err)
	require.Equal(t, Link(0), l0)

	l1, err := m.Allocate(1)
	require.NoError(t, err)
	require.Equal(t, Link(1), l1)

	require.Equal(t, Link(2), m.Count())
	require.Equal(t, int64(16), m.LinkToPosition(1))

	raw, err := m.Get(l1)
	require.NoError(t, err)
	require.Len(t, raw, 16)
	raw[0] = 0xAB

	raw2, err := m.Get(l1)
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), raw2[0])
}

func TestRecordManagerTruncate(t *testing.T) {
	f := newTestFile(t, 0)
	m := NewRecordManager(f, 8)
	_, err := m.Allocate(5)
	require.NoError(t, err)
	require.Equal(t, Link(5), m.Count())

	require.NoError(t, m.Truncate(Link(2)))
	require.Equal(t, Link(2), m.Count())

	// Truncate never raises the count.
	require.NoError(t, m.Truncate(Link(10)))
	require.Equal(t, Link(2), m.Count())
}

func TestSlabManagerAllocateAndGet(t *testing.T) {
	f := newTestFile(t, 0)
	m := NewSlabManager(f)

	l0, err := m.Allocate(5)
	require.NoError(t, err)
	require.Equal(t, Link(0), l0)

	l1, err := m.Allocate(3)
	require.NoError(t, err)
	require.Equal(t, Link(5), l1)

	raw, err := m.Get(l1, 3)
	require.NoError(t, err)
	require.Len(t, raw, 3)
}
