package id

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonotonicNonZeroID(t *testing.T) {
	gen := MonotonicNonZeroID()
	prev := uint64(0)
	for i := 0; i < 1000; i++ {
		n := gen.Number()
		require.Greater(t, n, prev)
		prev = n
	}
	require.Equal(t, "1001", gen.Str())
}

func TestMonotonicNonZeroIDOverflow(t *testing.T) {
	gen := MonotonicNonZeroIDFrom(math.MaxUint64 - 1)
	require.Equal(t, uint64(math.MaxUint64), gen.Number())
	require.Equal(t, uint64(1), gen.Number())
}

func TestMonotonicNonZeroIDConcurrent(t *testing.T) {
	gen := MonotonicNonZeroID()
	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		seen = make(map[uint64]struct{}, 8*500)
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint64, 0, 500)
			for i := 0; i < 500; i++ {
				local = append(local, gen.Number())
			}
			lock.Lock()
			defer lock.Unlock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, 8*500)
}
