package interval

import (
	"cmp"
	"iter"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/benz9527/xindex/lib/tree"
)

// NormalizeRegion drops inverted parts, sorts the rest by start and merges
// the ones that overlap or touch.
func NormalizeRegion(parts []Range) []Range {
	res := lo.Filter(parts, func(r Range, _ int) bool {
		return r.start <= r.stop
	})
	slices.SortFunc(res, func(a, b Range) int {
		return cmp.Compare(a.start, b.start)
	})
	merged := make([]Range, 0, len(res))
	for _, r := range res {
		if last := len(merged) - 1; last >= 0 && (merged[last].stop == PosInf || r.start <= merged[last].stop+1) {
			merged[last].stop = max(merged[last].stop, r.stop)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// RegionSeq walks the parts of a region one after another. Every part only
// accepts intervals starting after the previous part's stop, so an
// interval overlapping several parts is emitted once, by the first of
// them.
type RegionSeq[I Interval, V any] struct {
	parts  []*tree.Seq[I, V, int64]
	idx    int
	origin int
}

func (t *Tree[I, V]) RestrictedToRegionSeq(parts []Range) *RegionSeq[I, V] {
	region := NormalizeRegion(parts)
	if len(region) != len(parts) {
		t.logger.Debug("[xinterval] region normalized",
			zap.Int("parts", len(parts)),
			zap.Int("normalized", len(region)),
		)
	}
	rs := &RegionSeq[I, V]{
		parts: make([]*tree.Seq[I, V, int64], 0, len(region)),
	}
	lc := NegInf
	for _, r := range region {
		rs.parts = append(rs.parts, t.scan(overlapPrune[I, V](r.start, r.stop, lc)))
		lc = r.stop
	}
	return rs
}

func (t *Tree[I, V]) RestrictedToRegion(parts []Range) []Entry[I, V] {
	rs := t.RestrictedToRegionSeq(parts)
	res := make([]Entry[I, V], 0, 8)
	for n, ok := rs.Next(); ok; n, ok = rs.Next() {
		res = append(res, entryOf(n))
	}
	t.stats.RecordQuery(QueryRegion, len(res))
	return res
}

func (rs *RegionSeq[I, V]) Next() (tree.RBNode[I, V, int64], bool) {
	for ; rs.idx < len(rs.parts); rs.idx++ {
		if n, ok := rs.parts[rs.idx].Next(); ok {
			return n, true
		}
	}
	return nil, false
}

// Reset rewinds to construction, or to right after the last TrySplit.
func (rs *RegionSeq[I, V]) Reset() {
	rs.idx = rs.origin
	for _, p := range rs.parts[rs.origin:] {
		p.Reset()
	}
}

// TrySplit detaches the later part of the remaining walk. Whole parts are
// handed over first, a single remaining part is split itself.
func (rs *RegionSeq[I, V]) TrySplit() *RegionSeq[I, V] {
	remaining := len(rs.parts) - rs.idx
	switch {
	case remaining <= 0:
		return nil
	case remaining == 1:
		detached := rs.parts[rs.idx].TrySplit()
		if detached == nil {
			return nil
		}
		rs.origin = rs.idx
		return &RegionSeq[I, V]{parts: []*tree.Seq[I, V, int64]{detached}}
	default:
	}
	cut := len(rs.parts) - remaining/2
	detached := &RegionSeq[I, V]{parts: slices.Clone(rs.parts[cut:])}
	clear(rs.parts[cut:])
	rs.parts = rs.parts[:cut]
	rs.parts[rs.idx].Checkpoint()
	rs.origin = rs.idx
	return detached
}

func (rs *RegionSeq[I, V]) Entries() iter.Seq2[I, V] {
	return func(yield func(I, V) bool) {
		for n, ok := rs.Next(); ok; n, ok = rs.Next() {
			if !yield(n.Key(), n.Val()) {
				return
			}
		}
	}
}
