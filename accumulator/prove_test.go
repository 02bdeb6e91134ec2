package accumulator

import (
	"errors"
	"sync"
	"testing"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/iotaledger/accumulator.go/metrics"
	"github.com/iotaledger/accumulator.go/proof"
	"github.com/neilotoole/slogt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var sizes = []int{1, 2, 3, 4, 5, 7, 8, 9, 16, 17, 31, 100}

func TestInclusionFourLeaves(t *testing.T) {
	h := hashing.Default
	tr := Build([][]byte{[]byte("1"), []byte("2"), []byte("3"), []byte("4")})
	h1, h2, h3, h4 := tr.Leaf(0), tr.Leaf(1), tr.Leaf(2), tr.Leaf(3)
	pA := hashing.Combine(h, h1, h2)
	pB := hashing.Combine(h, h3, h4)
	root := tr.MustRoot()

	p, err := tr.InclusionProof(h3)
	require.NoError(t, err)
	require.Equal(t, proof.InclusionProof{
		{Left: h3, Right: h4, IsLeft: true},
		{Left: pA, Right: pB, IsLeft: false},
	}, p)
	require.True(t, proof.VerifyInclusion(h, h3, root, p))
	require.EqualValues(t, 2, p.LeafIndex())

	d := nextDigest(h2)
	require.True(t, d.Less(h3))
	ex, err := tr.ExclusionProof(d)
	require.NoError(t, err)
	p2, err := tr.InclusionProof(h2)
	require.NoError(t, err)
	require.Equal(t, p2, ex.Predecessor)
	require.Equal(t, p, ex.Successor)
	require.True(t, proof.VerifyExclusion(h, d, root, ex))
}

func TestInclusionRoundTrip(t *testing.T) {
	runTest := func(h hashing.Hasher, n int) {
		tr := Build(genRecords(n), WithHasher(h))
		root := tr.MustRoot()
		for i, leaf := range tr.Leaves() {
			p, err := tr.InclusionProof(leaf)
			require.NoError(t, err)
			require.Len(t, p, tr.Height())
			require.EqualValues(t, i, p.LeafIndex())
			require.NoError(t, proof.ValidateInclusion(h, leaf, root, p))
			require.NoError(t, proof.ValidateInclusionInTree(h, leaf, root, n, p))
			require.Equal(t, proof.PathLength(n), tr.Height())
		}
	}
	for _, h := range hashing.All() {
		for _, n := range sizes {
			runTest(h, n)
		}
	}
}

func TestInclusionSingleLeaf(t *testing.T) {
	tr := Build([][]byte{[]byte("only")})
	leaf := tr.Leaf(0)
	p, err := tr.InclusionProof(leaf)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Empty(t, p)
	require.True(t, proof.VerifyInclusion(hashing.Default, leaf, tr.MustRoot(), p))

	_, err = tr.InclusionProof(nextDigest(leaf))
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestInclusionNegative(t *testing.T) {
	tr := Build(genRecords(10), WithLogger(slogt.New(t)))
	absent := hashing.Default.Sum([]byte("not there"))
	_, err := tr.InclusionProof(absent)
	require.True(t, errors.Is(err, ErrNotFound))

	_, err = Build(nil).InclusionProof(absent)
	require.True(t, errors.Is(err, ErrEmptyTree))

	// proof of a leaf does not prove anything else
	root := tr.MustRoot()
	p, err := tr.InclusionProof(tr.Leaf(3))
	require.NoError(t, err)
	require.False(t, proof.VerifyInclusion(hashing.Default, absent, root, p))
	require.False(t, proof.VerifyInclusion(hashing.Default, tr.Leaf(4), root, p))
	require.False(t, proof.VerifyInclusion(hashing.SHA256{}, tr.Leaf(3), root, p))
}

func TestInclusionTamper(t *testing.T) {
	h := hashing.Default
	tr := Build(genRecords(13))
	root := tr.MustRoot()
	for _, i := range []int{0, 5, 12} {
		leaf := tr.Leaf(i)
		p, err := tr.InclusionProof(leaf)
		require.NoError(t, err)
		for s := range p {
			for side := 0; side < 2; side++ {
				for bit := 0; bit < common.DigestSize*8; bit++ {
					tampered := make(proof.InclusionProof, len(p))
					copy(tampered, p)
					d := &tampered[s].Left
					if side == 1 {
						d = &tampered[s].Right
					}
					d[bit/8] ^= 1 << (bit % 8)
					require.False(t, proof.VerifyInclusion(h, leaf, root, tampered), "leaf %d step %d side %d bit %d", i, s, side, bit)
				}
			}
		}
		// tampered root
		for bit := 0; bit < common.DigestSize*8; bit++ {
			r := root
			r[bit/8] ^= 1 << (bit % 8)
			require.False(t, proof.VerifyInclusion(h, leaf, r, p))
		}
	}
}

func TestLocateBracket(t *testing.T) {
	tr := Build(genRecords(6))
	for i := 0; i < tr.Len(); i++ {
		pred, succ := tr.LocateBracket(tr.Leaf(i))
		require.EqualValues(t, i, pred)
		if i == tr.Len()-1 {
			require.EqualValues(t, -1, succ)
		} else {
			require.EqualValues(t, i+1, succ)
		}
		pred, succ = tr.LocateBracket(nextDigest(tr.Leaf(i)))
		require.EqualValues(t, i, pred)
		if i < tr.Len()-1 {
			require.EqualValues(t, i+1, succ)
		}
	}
	pred, succ := tr.LocateBracket(common.Digest{})
	require.EqualValues(t, -1, pred)
	require.EqualValues(t, 0, succ)

	pred, succ = tr.LocateBracket(maxDigest())
	require.EqualValues(t, tr.Len()-1, pred)
	require.EqualValues(t, -1, succ)

	pred, succ = Build(nil).LocateBracket(common.Digest{})
	require.EqualValues(t, -1, pred)
	require.EqualValues(t, -1, succ)
}

func TestExclusion(t *testing.T) {
	runTest := func(h hashing.Hasher, n int) {
		tr := Build(genRecords(n), WithHasher(h))
		root := tr.MustRoot()
		for i := 0; i < n-1; i++ {
			target := nextDigest(tr.Leaf(i))
			require.True(t, target.Less(tr.Leaf(i+1)))

			p, err := tr.ExclusionProof(target)
			require.NoError(t, err)
			require.EqualValues(t, i, p.Predecessor.LeafIndex())
			require.EqualValues(t, i+1, p.Successor.LeafIndex())
			require.NoError(t, proof.ValidateExclusion(h, target, root, p))
			require.NoError(t, proof.ValidateExclusionInTree(h, target, root, n, p))

			// a leaf is not excluded by the proof of its neighbourhood
			require.False(t, proof.VerifyExclusion(h, tr.Leaf(i), root, p))
			require.False(t, proof.VerifyExclusion(h, tr.Leaf(i+1), root, p))
		}
	}
	for _, h := range hashing.All() {
		for _, n := range sizes[1:] {
			runTest(h, n)
		}
	}
}

func TestExclusionUnprovable(t *testing.T) {
	tr := Build(genRecords(9), WithLogger(slogt.New(t)))
	for i := 0; i < tr.Len(); i++ {
		_, err := tr.ExclusionProof(tr.Leaf(i))
		require.True(t, errors.Is(err, ErrUnprovable))
	}
	_, err := tr.ExclusionProof(common.Digest{})
	require.True(t, errors.Is(err, ErrUnprovable))
	_, err = tr.ExclusionProof(maxDigest())
	require.True(t, errors.Is(err, ErrUnprovable))

	single := Build([][]byte{[]byte("one")})
	_, err = single.ExclusionProof(common.Digest{})
	require.True(t, errors.Is(err, ErrUnprovable))
	_, err = single.ExclusionProof(maxDigest())
	require.True(t, errors.Is(err, ErrUnprovable))

	_, err = Build(nil).ExclusionProof(common.Digest{})
	require.True(t, errors.Is(err, ErrEmptyTree))
}

// proofs of two valid leaves which are not neighbours must not exclude a leaf between them
func TestExclusionSkippedLeaf(t *testing.T) {
	h := hashing.Default
	tr := Build(genRecords(8))
	root := tr.MustRoot()
	forged := &proof.ExclusionProof{
		Predecessor: tr.pathTo(2),
		Successor:   tr.pathTo(4),
	}
	require.NoError(t, proof.ValidateInclusion(h, tr.Leaf(2), root, forged.Predecessor))
	require.NoError(t, proof.ValidateInclusion(h, tr.Leaf(4), root, forged.Successor))
	err := proof.ValidateExclusion(h, tr.Leaf(3), root, forged)
	require.True(t, errors.Is(err, proof.ErrInvalidProof))

	// swapped order
	forged = &proof.ExclusionProof{
		Predecessor: tr.pathTo(4),
		Successor:   tr.pathTo(3),
	}
	require.False(t, proof.VerifyExclusion(h, nextDigest(tr.Leaf(3)), root, forged))
}

// the clone of the last leaf sits next to it but carries the same hash
func TestExclusionCloneNeighbour(t *testing.T) {
	h := hashing.Default
	tr := Build(genRecords(5))
	root := tr.MustRoot()
	last := tr.Leaf(4)
	lastPath := tr.pathTo(4)
	clonePath := make(proof.InclusionProof, len(lastPath))
	copy(clonePath, lastPath)
	clonePath[0].IsLeft = false
	require.NoError(t, proof.ValidateInclusion(h, last, root, clonePath))
	require.EqualValues(t, 5, clonePath.LeafIndex())

	forged := &proof.ExclusionProof{Predecessor: lastPath, Successor: clonePath}
	err := proof.ValidateExclusion(h, nextDigest(last), root, forged)
	require.True(t, errors.Is(err, proof.ErrNotBracketed))

	// clone is not one of the 5 leaves
	err = proof.ValidateInclusionInTree(h, last, root, 5, clonePath)
	require.True(t, errors.Is(err, proof.ErrInvalidProof))
	err = proof.ValidateExclusionInTree(h, nextDigest(last), root, 5, forged)
	require.True(t, errors.Is(err, proof.ErrInvalidProof))
}

// Paths with the leaf level cut off prove two adjacent internal nodes as if they were leaves.
// Knowing only the root, such a bracket can exclude a committed leaf. Knowing the number of
// leaves, the depth of the paths is fixed and the bracket is rejected
func TestExclusionShortenedPaths(t *testing.T) {
	h := hashing.Default
	found := 0
	for seed := int64(0); seed < 300; seed++ {
		tr := Build(common.RandomRecords(seed, 8, 32))
		root := tr.MustRoot()
		forged := &proof.ExclusionProof{
			Predecessor: tr.pathTo(0)[1:],
			Successor:   tr.pathTo(2)[1:],
		}
		pred, succ, ok := forged.Bracket()
		require.True(t, ok)
		require.Equal(t, hashing.Combine(h, tr.Leaf(0), tr.Leaf(1)), pred)
		require.Equal(t, hashing.Combine(h, tr.Leaf(2), tr.Leaf(3)), succ)
		require.EqualValues(t, 0, forged.Predecessor.LeafIndex())
		require.EqualValues(t, 1, forged.Successor.LeafIndex())

		for i, leaf := range tr.Leaves() {
			if !pred.Less(leaf) || !leaf.Less(succ) {
				continue
			}
			found++
			require.NoError(t, proof.ValidateInclusionInTree(h, leaf, root, 8, tr.pathTo(int32(i))))
			require.NoError(t, proof.ValidateExclusion(h, leaf, root, forged))

			err := proof.ValidateExclusionInTree(h, leaf, root, 8, forged)
			require.True(t, errors.Is(err, proof.ErrInvalidProof))
			err = proof.ValidateInclusionInTree(h, pred, root, 8, forged.Predecessor)
			require.True(t, errors.Is(err, proof.ErrInvalidProof))

			env := proof.NewExclusionEnvelope(h, leaf, forged)
			require.True(t, env.Verify(root))
			require.False(t, env.VerifyInTree(root, 8))
		}
	}
	require.Positive(t, found)
}

func TestProve(t *testing.T) {
	recs := genRecords(20)
	tr := Build(recs)
	root := tr.MustRoot()

	env, err := tr.ProveRecord(recs[7])
	require.NoError(t, err)
	require.Equal(t, proof.KindInclusion, env.Kind)
	require.Equal(t, hashing.Default.Name(), env.Hash)
	require.Nil(t, env.Exclusion)
	require.NoError(t, env.Validate(root))

	target := nextDigest(tr.Leaf(10))
	env, err = tr.Prove(target)
	require.NoError(t, err)
	require.Equal(t, proof.KindExclusion, env.Kind)
	require.NotNil(t, env.Exclusion)
	require.True(t, env.Verify(root))

	_, err = tr.Prove(common.Digest{})
	require.True(t, errors.Is(err, ErrUnprovable))
	_, err = Build(nil).ProveRecord([]byte("x"))
	require.True(t, errors.Is(err, ErrEmptyTree))
}

func TestConcurrentProving(t *testing.T) {
	tr := Build(genRecords(257))
	root := tr.MustRoot()
	h := tr.Hasher()

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for g := range errs {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := g; i < tr.Len()-1; i += len(errs) {
				p, err := tr.InclusionProof(tr.Leaf(i))
				if err != nil {
					errs[g] = err
					return
				}
				if err = proof.ValidateInclusion(h, tr.Leaf(i), root, p); err != nil {
					errs[g] = err
					return
				}
				target := nextDigest(tr.Leaf(i))
				ex, err := tr.ExclusionProof(target)
				if err != nil {
					errs[g] = err
					return
				}
				if err = proof.ValidateExclusion(h, target, root, ex); err != nil {
					errs[g] = err
					return
				}
			}
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestProofMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	tr := Build(genRecords(10), WithMetrics(m))
	require.EqualValues(t, 10, testutil.ToFloat64(m.Leaves))

	_, err := tr.InclusionProof(tr.Leaf(0))
	require.NoError(t, err)
	_, err = tr.InclusionProof(common.Digest{})
	require.Error(t, err)
	_, err = tr.ExclusionProof(nextDigest(tr.Leaf(0)))
	require.NoError(t, err)
	_, err = tr.ExclusionProof(tr.Leaf(1))
	require.Error(t, err)
	_, err = tr.ExclusionProof(maxDigest())
	require.Error(t, err)

	require.EqualValues(t, 1, testutil.ToFloat64(m.Proofs.WithLabelValues("inclusion")))
	require.EqualValues(t, 1, testutil.ToFloat64(m.Proofs.WithLabelValues("exclusion")))
	require.EqualValues(t, 1, testutil.ToFloat64(m.ProofFailures.WithLabelValues("inclusion", "not_found")))
	require.EqualValues(t, 1, testutil.ToFloat64(m.ProofFailures.WithLabelValues("exclusion", "present")))
	require.EqualValues(t, 1, testutil.ToFloat64(m.ProofFailures.WithLabelValues("exclusion", "outside")))
}
