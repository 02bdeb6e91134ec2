package proof

import (
	"fmt"
	"math/bits"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/hashing"
	"golang.org/x/xerrors"
)

var (
	ErrInvalidProof = xerrors.New("invalid proof")
	ErrRootMismatch = xerrors.New("proof does not lead to the root")
	ErrNotBracketed = xerrors.New("target is not strictly between predecessor and successor")
)

// ValidateInclusion checks the proof of inclusion of the leaf against the root.
// Returns nil if the proof is valid, otherwise the reason why it is not
func ValidateInclusion(h hashing.Hasher, leaf, root common.Digest, p InclusionProof) error {
	if len(p) == 0 {
		if leaf != root {
			return fmt.Errorf("%w: empty proof, leaf %s is not the root %s", ErrRootMismatch, leaf.Short(), root.Short())
		}
		return nil
	}
	if len(p) > MaxPathLength {
		return fmt.Errorf("%w: path length %d exceeds maximum %d", ErrInvalidProof, len(p), MaxPathLength)
	}
	current := leaf
	for i := range p {
		step := &p[i]
		if step.Mine() != current {
			return fmt.Errorf("%w: step %d does not carry the hash being proven", ErrInvalidProof, i)
		}
		current = hashing.Combine(h, step.Left, step.Right)
	}
	if current != root {
		return fmt.Errorf("%w: computed %s, expected %s", ErrRootMismatch, current.Short(), root.Short())
	}
	return nil
}

// VerifyInclusion is ValidateInclusion returning bool
func VerifyInclusion(h hashing.Hasher, leaf, root common.Digest, p InclusionProof) bool {
	return ValidateInclusion(h, leaf, root, p) == nil
}

// ValidateExclusion checks the proof that target is not among the leaves committed to the root.
// Both bracketing leaves must be proven and must be neighbours in the leaf order
func ValidateExclusion(h hashing.Hasher, target, root common.Digest, p *ExclusionProof) error {
	if p == nil {
		return fmt.Errorf("%w: nil exclusion proof", ErrInvalidProof)
	}
	pred, succ, ok := p.Bracket()
	if !ok {
		return fmt.Errorf("%w: exclusion proof requires both predecessor and successor paths", ErrInvalidProof)
	}
	if err := ValidateInclusion(h, pred, root, p.Predecessor); err != nil {
		return fmt.Errorf("predecessor: %w", err)
	}
	if err := ValidateInclusion(h, succ, root, p.Successor); err != nil {
		return fmt.Errorf("successor: %w", err)
	}
	if len(p.Predecessor) != len(p.Successor) {
		return fmt.Errorf("%w: predecessor and successor paths differ in length", ErrInvalidProof)
	}
	if p.Successor.LeafIndex() != p.Predecessor.LeafIndex()+1 {
		return fmt.Errorf("%w: predecessor #%d and successor #%d are not adjacent",
			ErrInvalidProof, p.Predecessor.LeafIndex(), p.Successor.LeafIndex())
	}
	if !pred.Less(target) || !target.Less(succ) {
		return fmt.Errorf("%w: %s < %s < %s does not hold", ErrNotBracketed, pred.Short(), target.Short(), succ.Short())
	}
	return nil
}

// VerifyExclusion is ValidateExclusion returning bool
func VerifyExclusion(h hashing.Hasher, target, root common.Digest, p *ExclusionProof) bool {
	return ValidateExclusion(h, target, root, p) == nil
}

// PathLength is the length of every path from a leaf to the root of the tree with leafCount leaves
func PathLength(leafCount int) int {
	if leafCount <= 1 {
		return 0
	}
	return bits.Len(uint(leafCount - 1))
}

func checkDepth(p InclusionProof, leafCount int) error {
	if leafCount < 1 {
		return fmt.Errorf("%w: leaf count %d", ErrInvalidProof, leafCount)
	}
	if len(p) != PathLength(leafCount) {
		return fmt.Errorf("%w: path length %d, expected %d for %d leaves", ErrInvalidProof, len(p), PathLength(leafCount), leafCount)
	}
	if idx := p.LeafIndex(); idx >= uint64(leafCount) {
		return fmt.Errorf("%w: leaf #%d is out of %d leaves", ErrInvalidProof, idx, leafCount)
	}
	return nil
}

// ValidateInclusionInTree is ValidateInclusion against the root of the tree with the known number of leaves.
// The path must end at the leaf level and at one of the leaves.
// The root alone does not fix the depth of the leaves: a shortened path proves an internal node
// as if it was a leaf. Callers holding only the root get the weaker guarantee of ValidateInclusion
func ValidateInclusionInTree(h hashing.Hasher, leaf, root common.Digest, leafCount int, p InclusionProof) error {
	if err := checkDepth(p, leafCount); err != nil {
		return err
	}
	return ValidateInclusion(h, leaf, root, p)
}

func VerifyInclusionInTree(h hashing.Hasher, leaf, root common.Digest, leafCount int, p InclusionProof) bool {
	return ValidateInclusionInTree(h, leaf, root, leafCount, p) == nil
}

// ValidateExclusionInTree is ValidateExclusion against the root of the tree with the known number of leaves.
// Both bracketing paths must end at the leaf level, so the bracket can't be made of internal nodes
func ValidateExclusionInTree(h hashing.Hasher, target, root common.Digest, leafCount int, p *ExclusionProof) error {
	if p == nil {
		return fmt.Errorf("%w: nil exclusion proof", ErrInvalidProof)
	}
	if err := checkDepth(p.Predecessor, leafCount); err != nil {
		return fmt.Errorf("predecessor: %w", err)
	}
	if err := checkDepth(p.Successor, leafCount); err != nil {
		return fmt.Errorf("successor: %w", err)
	}
	return ValidateExclusion(h, target, root, p)
}

func VerifyExclusionInTree(h hashing.Hasher, target, root common.Digest, leafCount int, p *ExclusionProof) bool {
	return ValidateExclusionInTree(h, target, root, leafCount, p) == nil
}
