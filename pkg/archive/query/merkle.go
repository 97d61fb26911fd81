package query

import (
	"crypto/sha256"

	"github.com/blkarchive/archive/pkg/archive"
)

// sha256d is Bitcoin's double-SHA256, the only hash primitive the merkle
// subsystem needs — crypto/sha256 covers it directly, so there is no
// ecosystem dependency to reach for here (see DESIGN.md).
func sha256d(parts ...[]byte) [32]byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	first := h.Sum(nil)
	second := sha256.Sum256(first)
	return second
}

func concatHash(a, b [32]byte) [32]byte {
	return sha256d(a[:], b[:])
}

// merkleRoot computes the standard Bitcoin merkle root over leaves,
// duplicating the last node of an odd-sized level (the electrumx/Bitcoin
// convention the worked example in spec.md depends on).
func merkleRoot(leaves [][32]byte) [32]byte {
	if len(leaves) == 0 {
		return [32]byte{}
	}
	level := make([][32]byte, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, concatHash(level[i], level[i+1]))
			} else {
				next = append(next, concatHash(level[i], level[i]))
			}
		}
		level = next
	}
	return level[0]
}

// ceilLog2 returns the smallest k such that 2^k >= n (n >= 1).
func ceilLog2(n uint32) int {
	k := 0
	for (uint32(1) << uint(k)) < n {
		k++
	}
	return k
}

// partialSubroot implements §4.12's partial_subroot: merkle_root over
// hashes (duplicating an odd tail the same way merkleRoot does), then
// elevated by repeated sha256d self-pairing until its tree depth matches
// a full span-sized segment, so partial and complete subroots can be
// combined as equals one level up.
func partialSubroot(hashes [][32]byte, span uint32) [32]byte {
	root := merkleRoot(hashes)
	used := ceilLog2(uint32(len(hashes)))
	target := ceilLog2(span)
	for i := used; i < target; i++ {
		root = concatHash(root, root)
	}
	return root
}

// getConfirmedHashes resolves the block hashes of the confirmed chain for
// heights [first, first+count).
func getConfirmedHashes(s *archive.Store, first, count uint32) ([][32]byte, error) {
	hashes := make([][32]byte, count)
	for i := uint32(0); i < count; i++ {
		link, ok, err := s.GetConfirmed(uint64(first + i))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, archive.NewResultError(archive.CodeIntegrity8, archive.ErrNotFound)
		}
		hash, err := s.GetHeaderHash(link)
		if err != nil {
			return nil, err
		}
		hashes[i] = hash
	}
	return hashes, nil
}

// CreateInterval implements §4.12's create_interval: called as the block
// at headerLink/height is set, it returns the interval's merkle root once
// every interval_span-th block completes a segment, by walking back
// interval_span-1 parents and hashing their collected block hashes.
func CreateInterval(s *archive.Store, settings archive.Settings, headerLink archive.Link, height uint32) (*[32]byte, bool, error) {
	span := uint32(1) << settings.IntervalDepth
	if (height+1)%span != 0 {
		return nil, false, nil
	}

	hashes := make([][32]byte, span)
	link := headerLink
	for i := int(span) - 1; i >= 0; i-- {
		hash, err := s.GetHeaderHash(link)
		if err != nil {
			return nil, false, err
		}
		hashes[i] = hash
		if i == 0 {
			break
		}
		h, err := s.GetHeader(link)
		if err != nil {
			return nil, false, err
		}
		link = archive.Link(h.ParentFk)
	}

	root := merkleRoot(hashes)
	return &root, true, nil
}

// GetConfirmedInterval implements §4.12's get_confirmed_interval: the
// cached interval root for height, present only if height terminates a
// completed interval segment and that height is confirmed.
func GetConfirmedInterval(s *archive.Store, settings archive.Settings, height uint32) (*[32]byte, error) {
	span := uint32(1) << settings.IntervalDepth
	if (height+1)%span != 0 {
		return nil, nil
	}
	headerLink, ok, err := s.GetConfirmed(uint64(height))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	txsRec, ok, err := s.GetTxs(uint64(headerLink))
	if err != nil {
		return nil, err
	}
	if !ok || !txsRec.HasInterval {
		return nil, nil
	}
	root := txsRec.IntervalRoot
	return &root, nil
}

// GetMerkleSubroots implements §4.12's get_merkle_subroots: one subroot
// per span-aligned segment covering [0, waypoint], preferring the cached
// interval root where a segment is complete and falling back to a direct
// or partial computation otherwise.
func GetMerkleSubroots(s *archive.Store, settings archive.Settings, waypoint uint32) ([][32]byte, error) {
	leafCount := waypoint + 1
	span := uint32(1) << settings.IntervalDepth

	if leafCount <= span {
		hashes, err := getConfirmedHashes(s, 0, leafCount)
		if err != nil {
			return nil, err
		}
		return [][32]byte{merkleRoot(hashes)}, nil
	}

	var roots [][32]byte
	for start := uint32(0); start <= waypoint; start += span {
		segEnd := start + span - 1
		if segEnd <= waypoint {
			if cached, err := GetConfirmedInterval(s, settings, segEnd); err != nil {
				return nil, err
			} else if cached != nil {
				roots = append(roots, *cached)
				continue
			}
			hashes, err := getConfirmedHashes(s, start, span)
			if err != nil {
				return nil, err
			}
			roots = append(roots, merkleRoot(hashes))
			continue
		}
		count := waypoint - start + 1
		hashes, err := getConfirmedHashes(s, start, count)
		if err != nil {
			return nil, err
		}
		roots = append(roots, partialSubroot(hashes, span))
	}
	return roots, nil
}

// merkleProofWithin builds the sibling-hash branch for leaf index target
// within leaves, following the same duplicate-last convention as
// merkleRoot.
func merkleProofWithin(leaves [][32]byte, target uint32) [][32]byte {
	var proof [][32]byte
	level := make([][32]byte, len(leaves))
	copy(level, leaves)
	idx := target
	for len(level) > 1 {
		var sibling [32]byte
		if idx%2 == 0 {
			if int(idx)+1 < len(level) {
				sibling = level[idx+1]
			} else {
				sibling = level[idx]
			}
		} else {
			sibling = level[idx-1]
		}
		proof = append(proof, sibling)

		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, concatHash(level[i], level[i+1]))
			} else {
				next = append(next, concatHash(level[i], level[i]))
			}
		}
		level = next
		idx /= 2
	}
	return proof
}

// GetMerkleProof implements §4.12's get_merkle_proof: the sibling path
// within target's own interval segment, followed by the sibling path
// across the subroots array up to the root.
func GetMerkleProof(s *archive.Store, settings archive.Settings, roots [][32]byte, target, waypoint uint32) ([][32]byte, error) {
	span := uint32(1) << settings.IntervalDepth
	leafCount := waypoint + 1

	var segStart, segCount uint32
	var segIndex uint32
	if leafCount <= span {
		segStart, segCount, segIndex = 0, leafCount, 0
	} else {
		segIndex = target / span
		segStart = segIndex * span
		segEnd := segStart + span - 1
		if segEnd > waypoint {
			segCount = waypoint - segStart + 1
		} else {
			segCount = span
		}
	}

	hashes, err := getConfirmedHashes(s, segStart, segCount)
	if err != nil {
		return nil, err
	}
	proof := merkleProofWithin(hashes, target-segStart)
	proof = append(proof, mergeMerkle(roots, segIndex)...)
	return proof, nil
}

// mergeMerkle implements §4.12's merge_merkle: the sibling-subroot branch
// from segIndex's position in roots up to the combined root, consuming
// groups of decreasing width exactly as merkleProofWithin does but over
// already-computed subroots rather than leaf hashes.
func mergeMerkle(roots [][32]byte, segIndex uint32) [][32]byte {
	return merkleProofWithin(roots, segIndex)
}

// GetMerkleRootAndProof implements §4.12's get_merkle_root_and_proof:
// validates target <= waypoint <= topConfirmed, then builds the subroots
// and proof and folds the subroots into the final root.
func GetMerkleRootAndProof(s *archive.Store, settings archive.Settings, target, waypoint, topConfirmed uint32) (root [32]byte, proof [][32]byte, err error) {
	if target > waypoint || waypoint > topConfirmed {
		return [32]byte{}, nil, archive.NewResultError(archive.CodeMerkleInterval, archive.ErrInvalidArgument)
	}

	roots, err := GetMerkleSubroots(s, settings, waypoint)
	if err != nil {
		return [32]byte{}, nil, err
	}
	proof, err = GetMerkleProof(s, settings, roots, target, waypoint)
	if err != nil {
		return [32]byte{}, nil, err
	}
	root = merkleRoot(roots)
	return root, proof, nil
}
