package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blkarchive/archive/internal/mmapio"
)

func newHeadFile(t *testing.T) *mmapio.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "head.idx")
	f, err := mmapio.Create(path, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestHashHeadCreateVerify(t *testing.T) {
	f := newHeadFile(t)
	h := NewHashHead(f, 16, 4, Sieve{})
	require.NoError(t, h.Create())
	require.True(t, h.Verify())

	count, err := h.GetBodyCount()
	require.NoError(t, err)
	require.Equal(t, Link(0), count)
}

func TestHashHeadTopInitiallyTerminal(t *testing.T) {
	f := newHeadFile(t)
	h := NewHashHead(f, 8, 4, Sieve{})
	require.NoError(t, h.Create())

	key := NewFixedKey([]byte{1, 2, 3, 4})
	link, admitted, err := h.Top(key)
	require.NoError(t, err)
	require.True(t, admitted) // no sieve configured: always admits
	require.Equal(t, terminalFor(4), link)
}

func TestHashHeadPushCAS(t *testing.T) {
	f := newHeadFile(t)
	h := NewHashHead(f, 4, 4, Sieve{})
	require.NoError(t, h.Create())

	key := NewFixedKey([]byte{9, 9, 9, 9})
	oldHead, _, err := h.Top(key)
	require.NoError(t, err)

	ok, err := h.Push(key, Link(5), oldHead)
	require.NoError(t, err)
	require.True(t, ok)

	link, _, err := h.Top(key)
	require.NoError(t, err)
	require.Equal(t, Link(5), link)

	// Pushing against a stale oldHead fails.
	ok, err = h.Push(key, Link(6), oldHead)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashHeadWithSieveAdmitsInsertedKeys(t *testing.T) {
	f := newHeadFile(t)
	// DefaultSieve occupies 33 bits; a 3-byte (24-bit) link leaves ample
	// room in the 64-bit bucket slot (compare the spec's own 31-bit link
	// + 33-bit sieve example).
	h := NewHashHead(f, 1, 3, DefaultSieve)
	require.NoError(t, h.Create())

	key := NewFixedKey([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	oldHead, admitted, err := h.Top(key)
	require.NoError(t, err)
	require.False(t, admitted) // nothing inserted yet

	ok, err := h.Push(key, Link(1), oldHead)
	require.NoError(t, err)
	require.True(t, ok)

	_, admitted, err = h.Top(key)
	require.NoError(t, err)
	require.True(t, admitted)
}

func TestArrayHeadGrowsAndDefaultsToTerminal(t *testing.T) {
	f := newHeadFile(t)
	h := NewArrayHead(f, 4)
	require.NoError(t, h.Create())

	require.NoError(t, h.Push(5, Link(42)))

	link, err := h.Top(5)
	require.NoError(t, err)
	require.Equal(t, Link(42), link)

	// Slots skipped over during growth default to terminal, not link 0.
	for i := uint64(0); i < 5; i++ {
		link, err := h.Top(i)
		require.NoError(t, err)
		require.True(t, h.IsTerminal(link), "slot %d should be terminal", i)
	}
}

func TestArrayHeadOverwrite(t *testing.T) {
	f := newHeadFile(t)
	h := NewArrayHead(f, 4)
	require.NoError(t, h.Create())

	require.NoError(t, h.Push(0, Link(1)))
	require.NoError(t, h.Push(0, Link(2)))

	link, err := h.Top(0)
	require.NoError(t, err)
	require.Equal(t, Link(2), link)
}
