package interval

import (
	"iter"
)

// joins reports whether an interval starting at start belongs to a group
// whose stops reach up to maxStop.
func joins(start, maxStop, tolerance int64) bool {
	if start <= maxStop {
		return true
	}
	return uint64(start)-uint64(maxStop) <= uint64(tolerance)
}

// GroupSeq lazily yields maximal runs of connected intervals in start
// order. An interval joins the running group when its start minus the
// largest stop seen in the group is at most tolerance, so 0 joins only
// overlapping intervals. A negative tolerance is treated as 0.
func (t *Tree[I, V]) GroupSeq(tolerance int64) iter.Seq[[]Entry[I, V]] {
	if tolerance < 0 {
		tolerance = 0
	}
	return func(yield func([]Entry[I, V]) bool) {
		var (
			group   []Entry[I, V]
			maxStop int64
		)
		s := t.rb.Ascend()
		for n, ok := s.Next(); ok; n, ok = s.Next() {
			iv := n.Key()
			if len(group) > 0 && !joins(iv.Start(), maxStop, tolerance) {
				if !yield(group) {
					return
				}
				group = nil
			}
			if len(group) == 0 || iv.Stop() > maxStop {
				maxStop = iv.Stop()
			}
			group = append(group, entryOf(n))
		}
		if len(group) > 0 {
			yield(group)
		}
	}
}

func (t *Tree[I, V]) GroupByOverlap(tolerance int64) [][]Entry[I, V] {
	groups := make([][]Entry[I, V], 0, 8)
	for group := range t.GroupSeq(tolerance) {
		groups = append(groups, group)
	}
	return groups
}
