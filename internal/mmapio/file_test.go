package mmapio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateOpenResizeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	f, err := Create(path, 0)
	require.NoError(t, err)
	require.Equal(t, int64(0), f.Size())

	require.NoError(t, f.Resize(64))
	require.Equal(t, int64(64), f.Size())

	b, err := f.Get(0, 64)
	require.NoError(t, err)
	b[0] = 0x42

	require.NoError(t, f.Flush())
	require.NoError(t, f.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, int64(64), reopened.Size())
	b2, err := reopened.Get(0, 1)
	require.NoError(t, err)
	require.Equal(t, byte(0x42), b2[0])
}

func TestGetOutOfRangeErrors(t *testing.T) {
	f, err := Create(filepath.Join(t.TempDir(), "data.bin"), 0)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Resize(8))
	_, err = f.Get(0, 16)
	require.Error(t, err)
}

func TestUnloadMakesGetFail(t *testing.T) {
	f, err := Create(filepath.Join(t.TempDir(), "data.bin"), 0)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Resize(8))
	require.NoError(t, f.Unload())

	_, err = f.Get(0, 1)
	require.ErrorIs(t, err, ErrUnloaded)

	require.NoError(t, f.Load())
	_, err = f.Get(0, 1)
	require.NoError(t, err)
}

func TestReserveGrowsCapacityWithoutChangingSize(t *testing.T) {
	f, err := Create(filepath.Join(t.TempDir(), "data.bin"), 0)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Reserve(1024))
	require.Equal(t, int64(0), f.Size())

	require.NoError(t, f.Resize(100))
	require.Equal(t, int64(100), f.Size())
}
