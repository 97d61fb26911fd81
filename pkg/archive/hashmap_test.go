package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blkarchive/archive/internal/mmapio"
)

func newHashMap(t *testing.T, buckets uint64, linkWidth, keySize int, sieve Sieve) *HashMap {
	t.Helper()
	dir := t.TempDir()

	headFile, err := mmapio.Create(filepath.Join(dir, "t.idx"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = headFile.Close() })

	bodyFile, err := mmapio.Create(filepath.Join(dir, "t.dat"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bodyFile.Close() })

	head := NewHashHead(headFile, buckets, linkWidth, sieve)
	require.NoError(t, head.Create())

	elementSize := int64(linkWidth + keySize + 4) // + 4-byte payload for tests
	records := NewRecordManager(bodyFile, elementSize)

	return NewHashMap(head, records, linkWidth, keySize)
}

func TestHashMapCommitAndGetRoundTrip(t *testing.T) {
	m := newHashMap(t, 8, 4, 4, Sieve{})

	key := NewFixedKey([]byte{1, 2, 3, 4})
	link, err := m.Commit(key, []byte{0xAA, 0xBB, 0xCC, 0xDD})
	require.NoError(t, err)

	got, found, err := m.Get(key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, link, got)

	storedKey, err := m.GetKey(link)
	require.NoError(t, err)
	require.True(t, key.Equal(storedKey))
}

func TestHashMapLookupMissingKeyNotFound(t *testing.T) {
	m := newHashMap(t, 8, 4, 4, Sieve{})
	key := NewFixedKey([]byte{9, 9, 9, 9})
	_, found, err := m.Get(key)
	require.NoError(t, err)
	require.False(t, found)
}

func TestHashMapChainOrderingNewestFirst(t *testing.T) {
	// Force both keys into the same bucket with a single-bucket head.
	m := newHashMap(t, 1, 4, 4, Sieve{})

	k1 := NewFixedKey([]byte{1, 0, 0, 0})
	k2 := NewFixedKey([]byte{2, 0, 0, 0})

	l1, err := m.Commit(k1, []byte{1, 1, 1, 1})
	require.NoError(t, err)
	l2, err := m.Commit(k2, []byte{2, 2, 2, 2})
	require.NoError(t, err)

	it, err := m.First(0)
	require.NoError(t, err)
	require.False(t, it.Done())
	require.Equal(t, l2, it.Link()) // newest (k2) visited first

	require.NoError(t, it.Advance())
	require.Equal(t, l1, it.Link())

	require.NoError(t, it.Advance())
	require.True(t, it.Done())
}

func TestHashMapDuplicateKeysAllChained(t *testing.T) {
	m := newHashMap(t, 4, 4, 4, Sieve{})
	key := NewFixedKey([]byte{5, 5, 5, 5})

	first, err := m.Commit(key, []byte{1, 0, 0, 0})
	require.NoError(t, err)
	second, err := m.Commit(key, []byte{2, 0, 0, 0})
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Get resolves to the newest match.
	link, found, err := m.Get(key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, second, link)
}
