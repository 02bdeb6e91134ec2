// Package accumulator commits a batch of records to a single root digest by building a binary
// Merkle tree over the sorted record hashes. The tree proves membership of a hash with the
// path to the root, and proves absence with the paths of the two neighbouring leaves
package accumulator

import (
	"log/slog"
	"math"
	"math/bits"
	"slices"
	"time"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/iotaledger/accumulator.go/metrics"
)

const none = int32(-1)

// MaxLeaves is the maximum number of leaves in the tree
const MaxLeaves = math.MaxInt32 / 2

// node of the tree. Links are positions in the arena, -1 means no link
type node struct {
	hash   common.Digest
	parent int32
	left   int32
	right  int32
}

// Tree is immutable after it is built, so it is safe for concurrent use
type Tree struct {
	hasher    hashing.Hasher
	log       *slog.Logger
	metrics   *metrics.Metrics
	// leaves occupy positions [0, numLeaves) in ascending order.
	// Internal nodes and clones of odd nodes follow
	nodes     []node
	numLeaves int
	root      int32
	height    int
}

// Build hashes the records and builds the tree over their sorted hashes.
// Empty list of records produces tree without root
func Build(records [][]byte, opts ...Option) *Tree {
	o := makeOptions(opts)
	start := time.Now()
	ret := newTree(makeLeaves(o.hasher, records, o.concurrency), o)
	ret.buildDone(start)
	return ret
}

// BuildFromDigests builds the tree over already hashed leaves. The slice is not modified
func BuildFromDigests(leaves []common.Digest, opts ...Option) *Tree {
	o := makeOptions(opts)
	start := time.Now()
	sorted := slices.Clone(leaves)
	slices.SortStableFunc(sorted, common.CompareDigests)
	ret := newTree(sorted, o)
	ret.buildDone(start)
	return ret
}

func newTree(leaves []common.Digest, o *options) *Tree {
	ret := &Tree{
		hasher:    o.hasher,
		log:       o.log,
		metrics:   o.metrics,
		numLeaves: len(leaves),
		root:      none,
	}
	if len(leaves) == 0 {
		return ret
	}
	common.Assert(len(leaves) <= MaxLeaves, "too many leaves: %d", len(leaves))

	ret.nodes = make([]node, 0, 2*len(leaves)+bits.Len(uint(len(leaves))))
	level := make([]int32, len(leaves))
	for i, d := range leaves {
		level[i] = ret.appendNode(d, none, none)
	}
	for len(level) > 1 {
		if len(level)%2 == 1 {
			last := level[len(level)-1]
			level = append(level, ret.appendNode(ret.nodes[last].hash, none, none))
		}
		next := make([]int32, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			l, r := level[i], level[i+1]
			p := ret.appendNode(hashing.Combine(ret.hasher, ret.nodes[l].hash, ret.nodes[r].hash), l, r)
			ret.nodes[l].parent = p
			ret.nodes[r].parent = p
			next = append(next, p)
		}
		level = next
		ret.height++
	}
	ret.root = level[0]
	return ret
}

func (t *Tree) appendNode(h common.Digest, left, right int32) int32 {
	t.nodes = append(t.nodes, node{
		hash:   h,
		parent: none,
		left:   left,
		right:  right,
	})
	return int32(len(t.nodes) - 1)
}

func (t *Tree) buildDone(start time.Time) {
	t.metrics.ObserveBuild(t.numLeaves, time.Since(start))
	if t.numLeaves == 0 {
		t.log.Debug("built empty tree", "hash", t.hasher.Name())
		return
	}
	t.log.Debug("built tree",
		"hash", t.hasher.Name(),
		"leaves", t.numLeaves,
		"height", t.height,
		"nodes", len(t.nodes),
		"root", t.nodes[t.root].hash.String(),
		"elapsed", time.Since(start),
	)
}

// Root returns root digest. False if tree is empty
func (t *Tree) Root() (common.Digest, bool) {
	if t.root == none {
		return common.Digest{}, false
	}
	return t.nodes[t.root].hash, true
}

// MustRoot panics on empty tree
func (t *Tree) MustRoot() common.Digest {
	ret, ok := t.Root()
	common.Assert(ok, "MustRoot: %v", ErrEmptyTree)
	return ret
}

func (t *Tree) Len() int {
	return t.numLeaves
}

// Leaf returns i-th smallest leaf
func (t *Tree) Leaf(i int) common.Digest {
	common.Assert(i >= 0 && i < t.numLeaves, "Leaf: index %d out of range [0, %d)", i, t.numLeaves)
	return t.nodes[i].hash
}

// Leaves returns copy of all leaves in ascending order
func (t *Tree) Leaves() []common.Digest {
	ret := make([]common.Digest, t.numLeaves)
	for i := range ret {
		ret[i] = t.nodes[i].hash
	}
	return ret
}

// Height is number of levels above the leaves, ceil(log2(Len()))
func (t *Tree) Height() int {
	return t.height
}

// NumNodes is number of nodes in the arena including clones
func (t *Tree) NumNodes() int {
	return len(t.nodes)
}

func (t *Tree) Hasher() hashing.Hasher {
	return t.hasher
}

// LeafIndex finds position of the leaf with binary search
func (t *Tree) LeafIndex(leaf common.Digest) (int, bool) {
	i, found := slices.BinarySearchFunc(t.nodes[:t.numLeaves], leaf, func(n node, d common.Digest) int {
		return n.hash.Compare(d)
	})
	return i, found
}
