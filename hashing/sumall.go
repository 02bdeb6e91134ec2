package hashing

import (
	"github.com/iotaledger/accumulator.go/common"
	"golang.org/x/sync/errgroup"
)

// below this number of records hashing is done in the calling goroutine
const minRecordsToParallelize = 1024

// SumAll hashes every record. With workers > 1 records are hashed in chunks by a bounded
// number of goroutines. Result does not depend on the number of workers
func SumAll(h Hasher, records [][]byte, workers int) []common.Digest {
	ret := make([]common.Digest, len(records))
	if workers <= 1 || len(records) < minRecordsToParallelize {
		for i, rec := range records {
			ret[i] = h.Sum(rec)
		}
		return ret
	}
	var g errgroup.Group
	g.SetLimit(workers)
	chunk := (len(records) + workers - 1) / workers
	for start := 0; start < len(records); start += chunk {
		start := start
		end := min(start+chunk, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				ret[i] = h.Sum(records[i])
			}
			return nil
		})
	}
	// workers never fail
	common.AssertNoError(g.Wait())
	return ret
}
