package accumulator

import (
	"runtime"
	"slices"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/hashing"
)

// MakeLeaves hashes every record and returns the digests in ascending order.
// Equal digests are kept
func MakeLeaves(h hashing.Hasher, records [][]byte) []common.Digest {
	return makeLeaves(h, records, runtime.GOMAXPROCS(0))
}

func makeLeaves(h hashing.Hasher, records [][]byte, workers int) []common.Digest {
	ret := hashing.SumAll(h, records, workers)
	slices.SortStableFunc(ret, common.CompareDigests)
	return ret
}
