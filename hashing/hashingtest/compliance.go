// Package hashingtest contains a compliance suite for hashing.Hasher implementations
package hashingtest

import (
	"sync"
	"testing"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/iotaledger/accumulator.go/hashing"
	"github.com/stretchr/testify/require"
)

// TestHasherCompliance runs the checks every hasher the accumulator is built upon must pass
func TestHasherCompliance(t *testing.T, h hashing.Hasher) {
	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		data := []byte("the quick brown fox")
		require.Equal(t, h.Sum(data), h.Sum(data))
		require.Equal(t, h.Sum(nil), h.Sum([]byte{}))
	})

	t.Run("distinct inputs", func(t *testing.T) {
		t.Parallel()

		seen := make(map[common.Digest]int)
		for i, rec := range common.RandomRecords(1, 200, 8) {
			d := h.Sum(rec)
			prev, dup := seen[d]
			require.False(t, dup, "records %d and %d collide", prev, i)
			seen[d] = i
		}
	})

	t.Run("combine is ordered", func(t *testing.T) {
		t.Parallel()

		a := h.Sum([]byte("a"))
		b := h.Sum([]byte("b"))
		require.NotEqual(t, hashing.Combine(h, a, b), hashing.Combine(h, b, a))
		require.Equal(t, hashing.Combine(h, a, b), h.Sum(common.Concat(a, b)))
	})

	t.Run("registry", func(t *testing.T) {
		t.Parallel()

		h1, err := hashing.ByName(h.Name())
		require.NoError(t, err)
		require.Equal(t, h.Name(), h1.Name())

		h2, err := hashing.ByMultihashCode(h.MultihashCode())
		require.NoError(t, err)
		require.Equal(t, h.Name(), h2.Name())
	})

	t.Run("multihash", func(t *testing.T) {
		t.Parallel()

		d := h.Sum([]byte("multihash"))
		mh, err := hashing.EncodeMultihash(h, d)
		require.NoError(t, err)
		h1, d1, err := hashing.DecodeMultihash(mh)
		require.NoError(t, err)
		require.Equal(t, h.Name(), h1.Name())
		require.Equal(t, d, d1)

		h2, d2, err := hashing.ParseMultihashString(hashing.MultihashString(h, d))
		require.NoError(t, err)
		require.Equal(t, h.Name(), h2.Name())
		require.Equal(t, d, d2)
	})

	t.Run("concurrent use", func(t *testing.T) {
		t.Parallel()

		records := common.RandomRecords(2, 64, 32)
		expected := make([]common.Digest, len(records))
		for i, rec := range records {
			expected[i] = h.Sum(rec)
		}
		var wg sync.WaitGroup
		got := make([][]common.Digest, 8)
		for g := range got {
			g := g
			wg.Add(1)
			go func() {
				defer wg.Done()
				got[g] = make([]common.Digest, len(records))
				for i, rec := range records {
					got[g][i] = h.Sum(rec)
				}
			}()
		}
		wg.Wait()
		for g := range got {
			require.Equal(t, expected, got[g])
		}
	})
}
