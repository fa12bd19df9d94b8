package interval

import (
	"cmp"
	"errors"
	"fmt"
	"math"

	"github.com/benz9527/xindex/lib/infra"
)

const (
	// NegInf and PosInf are unbounded query ends.
	NegInf int64 = math.MinInt64
	PosInf int64 = math.MaxInt64
)

var (
	ErrInvalidInterval = errors.New("[xinterval] interval stop is before start-1")
)

// Interval is a closed coordinate range [Start, Stop]. Stop == Start-1
// denotes an empty interval positioned at Start.
type Interval interface {
	Start() int64
	Stop() int64
}

var _ Interval = Range{}

type Range struct {
	start int64
	stop  int64
}

func NewRange(start, stop int64) Range {
	return Range{start: start, stop: stop}
}

func (r Range) Start() int64 { return r.start }
func (r Range) Stop() int64  { return r.stop }

// End is the exclusive end, Stop+1. It saturates at PosInf.
func (r Range) End() int64 {
	if r.stop == PosInf {
		return PosInf
	}
	return r.stop + 1
}

// Len is the number of positions covered. It saturates at PosInf.
func (r Range) Len() int64 {
	if r.stop < r.start {
		return 0
	}
	if n := uint64(r.stop) - uint64(r.start); n < uint64(PosInf) {
		return int64(n) + 1
	}
	return PosInf
}

func (r Range) Contains(pos int64) bool {
	return r.start <= pos && pos <= r.stop
}

func (r Range) Overlaps(other Interval) bool {
	return overlaps(r, other.Start(), other.Stop())
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.start, r.stop)
}

func overlaps(iv Interval, qs, qe int64) bool {
	return iv.Start() <= qe && iv.Stop() >= qs
}

func validate(iv Interval) error {
	if start, stop := iv.Start(), iv.Stop(); stop < start && stop+1 != start {
		return fmt.Errorf("%w: [%d,%d]", ErrInvalidInterval, start, stop)
	}
	return nil
}

// Entry is an interval with its payload.
type Entry[I Interval, V any] struct {
	Interval I
	Value    V
}

// MaxStop augments every node with the largest stop below it.
func MaxStop[I Interval](key I, left, right *int64) int64 {
	res := key.Stop()
	if left != nil && *left > res {
		res = *left
	}
	if right != nil && *right > res {
		res = *right
	}
	return res
}

// comparator orders by start, then stop, then tie.
func comparator[I Interval](tie infra.KeyComparator[I]) infra.KeyComparator[I] {
	return func(i, j I) int64 {
		if res := cmp.Compare(i.Start(), j.Start()); res != 0 {
			return int64(res)
		}
		if res := cmp.Compare(i.Stop(), j.Stop()); res != 0 {
			return int64(res)
		}
		if tie != nil {
			return tie(i, j)
		}
		return 0
	}
}
