package archive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedKeyRoundTrip(t *testing.T) {
	k := NewFixedKey([]byte{1, 2, 3, 4, 5})
	buf := make([]byte, k.Size())
	k.Write(buf)
	require.True(t, k.Equal(buf))
	require.Less(t, k.Bucket(16), uint64(16))
}

func TestPointBucketZeroReservedForNullOutpoint(t *testing.T) {
	null := Point{Hash: [32]byte{1, 2, 3}, Index: NullIndex}
	require.Equal(t, uint64(0), null.Bucket(997))

	for i := uint32(0); i < 200; i++ {
		p := Point{Hash: [32]byte{byte(i), byte(i + 1)}, Index: i}
		require.NotEqual(t, uint64(0), p.Bucket(997), "real outpoint must never land in bucket 0")
	}
}

func TestPointRoundTrip(t *testing.T) {
	p := Point{Hash: [32]byte{9, 9, 9}, Index: 0x00112233}
	buf := make([]byte, p.Size())
	p.Write(buf)
	require.True(t, p.Equal(buf))

	other := Point{Hash: p.Hash, Index: 0x00112299}
	require.False(t, other.Equal(buf))
}

func TestSpendKeyRoundTrip(t *testing.T) {
	k := SpendKey{Stub: Stub{1, 2, 3}, Index: 42}
	buf := make([]byte, k.Size())
	k.Write(buf)
	require.True(t, k.Equal(buf))
}

func TestFnv1aCombineDeterministic(t *testing.T) {
	a := fnv1aCombine(1, 2)
	b := fnv1aCombine(1, 2)
	c := fnv1aCombine(2, 1)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestStubOfTruncatesLink(t *testing.T) {
	s := StubOf(Link(0x00AABBCC))
	require.Equal(t, Stub{0xCC, 0xBB, 0xAA}, s)
}
