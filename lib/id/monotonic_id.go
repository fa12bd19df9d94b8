package id

import (
	"strconv"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

// monotonicNonZeroID only increases, and if it overflows it restarts from 1.
// The counter occupies its own cache line to avoid false sharing between
// goroutines labelling entries concurrently.
type monotonicNonZeroID struct {
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
	val uint64
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
}

func (id *monotonicNonZeroID) next() uint64 {
	var v uint64
	if v = atomic.AddUint64(&id.val, 1); v == 0 {
		v = atomic.AddUint64(&id.val, 1)
	}
	return v
}

// MonotonicNonZeroID returns a generator starting at 1.
func MonotonicNonZeroID() Generator {
	return MonotonicNonZeroIDFrom(0)
}

// MonotonicNonZeroIDFrom returns a generator whose first id is offset+1.
func MonotonicNonZeroIDFrom(offset uint64) Generator {
	src := &monotonicNonZeroID{val: offset}
	return &idDelegator{
		number: src.next,
		str: func() string {
			return strconv.FormatUint(src.next(), 10)
		},
	}
}
