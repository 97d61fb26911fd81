package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blkarchive/archive/pkg/archive"
)

func TestGetSpendSet(t *testing.T) {
	s, txS1, _ := feeFixture(t)

	set, err := GetSpendSet(s, txS1)
	require.NoError(t, err)
	require.Equal(t, txS1, set.TxFk)
	require.Equal(t, uint32(2), set.Version)
	require.Len(t, set.Inputs, 1)

	in := set.Inputs[0]
	require.Equal(t, uint32(0), in.PointIndex)
	require.Equal(t, archive.StubOf(in.PointFk), in.PointStub)
}
