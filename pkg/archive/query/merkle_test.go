package query

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/blkarchive/archive/pkg/archive"
	"github.com/blkarchive/archive/pkg/archive/tables"
)

func TestMerkleRootSingleLeaf(t *testing.T) {
	leaf := sha256d([]byte("leaf"))
	require.Equal(t, leaf, merkleRoot([][32]byte{leaf}))
}

func TestMerkleRootPairDuplicatesOddTail(t *testing.T) {
	a := sha256d([]byte("a"))
	b := sha256d([]byte("b"))
	c := sha256d([]byte("c"))

	want := concatHash(concatHash(a, b), concatHash(c, c))
	require.Equal(t, want, merkleRoot([][32]byte{a, b, c}))
}

func TestPartialSubrootElevatesToSpan(t *testing.T) {
	a := sha256d([]byte("a"))
	root := partialSubroot([][32]byte{a}, 4)
	want := concatHash(concatHash(a, a), concatHash(a, a))
	require.Equal(t, want, root)
}

// buildConfirmedChain creates a store with n trivially-linked confirmed
// headers at heights 0..n-1 and returns their links, for merkle tests
// that only need header hashes and the confirmed-height index.
func buildConfirmedChain(t *testing.T, n int) (*archive.Store, []archive.Link) {
	t.Helper()
	settings := archive.DefaultSettings()
	s, err := archive.Create(filepath.Join(t.TempDir(), "store"), settings)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	links := make([]archive.Link, n)
	var parent uint32
	for height := 0; height < n; height++ {
		var hash [32]byte
		hash[0] = byte(height + 1)
		link, err := s.PutHeader(hash, tables.Header{
			Height:     uint32(height),
			MedianTime: uint32(height),
			ParentFk:   parent,
		})
		require.NoError(t, err)
		_, err = s.SetConfirmed(uint64(height), link)
		require.NoError(t, err)
		links[height] = link
		parent = uint32(link)
	}
	return s, links
}

// TestMerkleRootAndProofIndependentOfIntervalDepth reproduces spec.md's
// electrumx worked example (blocks 0..8, target=5, waypoint=8): the
// result must be identical across every interval_depth.
func TestMerkleRootAndProofIndependentOfIntervalDepth(t *testing.T) {
	s, _ := buildConfirmedChain(t, 9)

	depths := []uint32{0, 1, 2, 3, 4, 11}
	var wantRoot [32]byte
	var wantProof [][32]byte

	for i, depth := range depths {
		settings := archive.DefaultSettings()
		settings.IntervalDepth = depth

		root, proof, err := GetMerkleRootAndProof(s, settings, 5, 8, 8)
		require.NoError(t, err)

		if i == 0 {
			wantRoot = root
			wantProof = proof
			continue
		}
		require.Equalf(t, wantRoot, root, "depth %d root mismatch", depth)
		if diff := cmp.Diff(wantProof, proof); diff != "" {
			t.Fatalf("depth %d proof mismatch (-want +got):\n%s", depth, diff)
		}
	}

	require.Len(t, wantProof, 4)

	block4Hash, err := s.GetHeaderHash(archive.Link(4))
	require.NoError(t, err)
	require.Equal(t, block4Hash, wantProof[0])
}

func TestGetMerkleRootAndProofRejectsOutOfRangeWaypoint(t *testing.T) {
	s, _ := buildConfirmedChain(t, 3)
	settings := archive.DefaultSettings()

	_, _, err := GetMerkleRootAndProof(s, settings, 1, 5, 2)
	require.Error(t, err)
}
