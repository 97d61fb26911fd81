package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blkarchive/archive/internal/mmapio"
)

func newArrayMap(t *testing.T, linkWidth int, elementSize int64) *ArrayMap {
	t.Helper()
	dir := t.TempDir()

	headFile, err := mmapio.Create(filepath.Join(dir, "t.idx"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = headFile.Close() })

	bodyFile, err := mmapio.Create(filepath.Join(dir, "t.dat"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bodyFile.Close() })

	head := NewArrayHead(headFile, linkWidth)
	require.NoError(t, head.Create())

	records := NewRecordManager(bodyFile, elementSize)
	return NewArrayMap(head, records)
}

func TestArrayMapPutAndGet(t *testing.T) {
	m := newArrayMap(t, 4, 4)

	_, err := m.Put(10, []byte{1, 2, 3, 4})
	require.NoError(t, err)

	raw, ok, err := m.Get(10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, raw)
}

func TestArrayMapGetUnsetIndexNotFound(t *testing.T) {
	m := newArrayMap(t, 4, 4)
	_, ok, err := m.Get(3)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArrayMapOverwriteReplacesValue(t *testing.T) {
	m := newArrayMap(t, 4, 4)
	_, err := m.Put(0, []byte{1, 1, 1, 1})
	require.NoError(t, err)
	_, err = m.Put(0, []byte{2, 2, 2, 2})
	require.NoError(t, err)

	raw, ok, err := m.Get(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{2, 2, 2, 2}, raw)
}
