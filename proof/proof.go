// Package proof contains Merkle proofs of inclusion and exclusion produced by the accumulator,
// their verification against a root digest and their binary encoding.
// Verification needs only the root and the hash function, it never needs the tree
package proof

import (
	"fmt"

	"github.com/iotaledger/accumulator.go/common"
)

// MaxPathLength is the maximum number of steps in the valid proof path.
// Longer proofs are rejected by the verifier and by the decoder
const MaxPathLength = 64

// Step is one level of the proof path: both children of the node on the path to the root.
// IsLeft tells on which side the hash being proven sits
type Step struct {
	Left   common.Digest
	Right  common.Digest
	IsLeft bool
}

// Mine is the hash on the side of the path
func (s *Step) Mine() common.Digest {
	if s.IsLeft {
		return s.Left
	}
	return s.Right
}

// Sibling is the hash on the opposite side
func (s *Step) Sibling() common.Digest {
	if s.IsLeft {
		return s.Right
	}
	return s.Left
}

func (s *Step) String() string {
	if s.IsLeft {
		return fmt.Sprintf("[%s] %s", s.Left.Short(), s.Right.Short())
	}
	return fmt.Sprintf("%s [%s]", s.Left.Short(), s.Right.Short())
}

// InclusionProof is the path of steps from the leaf to the root, leaf level first.
// Empty proof is the proof of the single-leaf tree, where the leaf is the root
type InclusionProof []Step

// Leaf returns the leaf hash the proof claims membership for. False if proof is empty
func (p InclusionProof) Leaf() (common.Digest, bool) {
	if len(p) == 0 {
		return common.Digest{}, false
	}
	return p[0].Mine(), true
}

// LeafIndex is the position of the leaf among the sorted leaves, as encoded by the orientation
// of the steps. All leaves are at the same depth, so bit k is set when the path enters
// level k+1 from the right
func (p InclusionProof) LeafIndex() uint64 {
	common.Assert(len(p) <= MaxPathLength, "LeafIndex: path too long")
	var ret uint64
	for k := range p {
		if !p[k].IsLeft {
			ret |= 1 << uint(k)
		}
	}
	return ret
}

// ExclusionProof proves absence of the target by proving inclusion of the two adjacent leaves
// which bracket it: predecessor < target < successor
type ExclusionProof struct {
	Predecessor InclusionProof
	Successor   InclusionProof
}

// Bracket returns the hashes of the predecessor and successor leaves the proof claims
func (p *ExclusionProof) Bracket() (pred, succ common.Digest, ok bool) {
	var okPred, okSucc bool
	pred, okPred = p.Predecessor.Leaf()
	succ, okSucc = p.Successor.Leaf()
	return pred, succ, okPred && okSucc
}
