package accumulator

import (
	"fmt"
	"sort"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/proof"
)

// pathTo collects both children of every ancestor of the node, from the node up to the root
func (t *Tree) pathTo(idx int32) proof.InclusionProof {
	ret := make(proof.InclusionProof, 0, t.height)
	for cur := idx; t.nodes[cur].parent != none; cur = t.nodes[cur].parent {
		parent := &t.nodes[t.nodes[cur].parent]
		ret = append(ret, proof.Step{
			Left:   t.nodes[parent.left].hash,
			Right:  t.nodes[parent.right].hash,
			IsLeft: parent.left == cur,
		})
	}
	return ret
}

// InclusionProof returns the path from the leaf to the root.
// For the single-leaf tree the proof is empty
func (t *Tree) InclusionProof(leaf common.Digest) (proof.InclusionProof, error) {
	kind := proof.KindInclusion.String()
	if t.numLeaves == 0 {
		t.metrics.ProofFailed(kind, "empty")
		return nil, ErrEmptyTree
	}
	idx, found := t.LeafIndex(leaf)
	if !found {
		t.metrics.ProofFailed(kind, "not_found")
		t.log.Debug("no inclusion proof", "leaf", leaf.String())
		return nil, fmt.Errorf("%w: %s", ErrNotFound, leaf)
	}
	t.metrics.ProofProduced(kind)
	return t.pathTo(int32(idx)), nil
}

// LocateBracket finds positions of the greatest leaf <= target and the smallest leaf > target.
// -1 means there is no such leaf
func (t *Tree) LocateBracket(target common.Digest) (pred, succ int) {
	pos := sort.Search(t.numLeaves, func(i int) bool {
		return target.Less(t.nodes[i].hash)
	})
	pred, succ = pos-1, pos
	if succ == t.numLeaves {
		succ = -1
	}
	return pred, succ
}

// ExclusionProof proves that target is not among the leaves with inclusion proofs of the
// two adjacent leaves bracketing it. Targets below the smallest or above the greatest
// leaf can't be proven absent
func (t *Tree) ExclusionProof(target common.Digest) (*proof.ExclusionProof, error) {
	kind := proof.KindExclusion.String()
	if t.numLeaves == 0 {
		t.metrics.ProofFailed(kind, "empty")
		return nil, ErrEmptyTree
	}
	pred, succ := t.LocateBracket(target)
	if pred < 0 || succ < 0 {
		t.metrics.ProofFailed(kind, "outside")
		t.log.Debug("no exclusion proof: target outside of leaf range", "target", target.String())
		return nil, fmt.Errorf("%w: %s is outside of the leaf range", ErrUnprovable, target)
	}
	if !t.nodes[pred].hash.Less(target) || !target.Less(t.nodes[succ].hash) {
		t.metrics.ProofFailed(kind, "present")
		t.log.Debug("no exclusion proof: target is a leaf", "target", target.String(), "index", pred)
		return nil, fmt.Errorf("%w: %s is a leaf", ErrUnprovable, target)
	}
	t.metrics.ProofProduced(kind)
	return &proof.ExclusionProof{
		Predecessor: t.pathTo(int32(pred)),
		Successor:   t.pathTo(int32(succ)),
	}, nil
}

// Prove returns proof of inclusion if target is a leaf, otherwise proof of exclusion
func (t *Tree) Prove(target common.Digest) (*proof.Envelope, error) {
	if t.numLeaves == 0 {
		return nil, ErrEmptyTree
	}
	if _, found := t.LeafIndex(target); found {
		p, err := t.InclusionProof(target)
		if err != nil {
			return nil, err
		}
		return proof.NewInclusionEnvelope(t.hasher, target, p), nil
	}
	p, err := t.ExclusionProof(target)
	if err != nil {
		return nil, err
	}
	return proof.NewExclusionEnvelope(t.hasher, target, p), nil
}

// ProveRecord is Prove for the hash of the record
func (t *Tree) ProveRecord(record []byte) (*proof.Envelope, error) {
	return t.Prove(t.hasher.Sum(record))
}
