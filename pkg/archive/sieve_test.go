package archive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSieveScreenThenScreenedStaysTrue(t *testing.T) {
	s := DefaultSieve
	var field uint64

	field, ok := s.Screen(field, 0xdeadbeef)
	require.True(t, ok)
	require.True(t, s.Screened(field, 0xdeadbeef))

	// Further unrelated insertions never unscreen a previously admitted thumb.
	for i := uint64(0); i < 10; i++ {
		field, _ = s.Screen(field, i*7919)
	}
	require.True(t, s.Screened(field, 0xdeadbeef))
}

func TestSieveSaturatedAdmitsAll(t *testing.T) {
	s := Sieve{SelectorBits: 2, DataBits: 4} // max selector = 3
	var field uint64
	for i := 0; i < 3; i++ {
		var ok bool
		field, ok = s.Screen(field, uint64(i))
		require.True(t, ok)
	}

	// One more screen call saturates: selector is already at max.
	_, ok := s.Screen(field, 999)
	require.False(t, ok)

	require.True(t, s.Screened(field, 123456789))
}

func TestSieveEmptyFieldScreensNothing(t *testing.T) {
	s := DefaultSieve
	require.False(t, s.Screened(0, 42))
}

func TestSieveNeverFalseNegative(t *testing.T) {
	s := Sieve{SelectorBits: 4, DataBits: 12}
	var field uint64
	thumbs := []uint64{1, 2, 3, 100, 99999, 0xabc}
	for _, th := range thumbs {
		field, _ = s.Screen(field, th)
	}
	for _, th := range thumbs {
		require.True(t, s.Screened(field, th))
	}
}
