package interval

import (
	"github.com/benz9527/xindex/lib/tree"
)

const (
	QueryStabbing    = "stabbing"
	QueryOverlapping = "overlapping"
	QueryContainedBy = "contained_by"
	QuerySpanning    = "spanning"
	QueryLeft        = "left_neighbors"
	QueryRight       = "right_neighbors"
	QueryNearest     = "nearest"
	QueryRegion      = "region"
)


func (t *Tree[I, V]) scan(prune tree.PruneFunc[I, V, int64]) *tree.Seq[I, V, int64] {
	return t.rb.Scan(prune)
}

func (t *Tree[I, V]) empty() *tree.Seq[I, V, int64] {
	return tree.NewSeq[I, V, int64](nil, nil, false)
}

// overlapPrune keeps the subtrees that may hold an interval overlapping
// [qs, qe] whose start is after lc. lc == NegInf disables the constraint.
func overlapPrune[I Interval, V any](qs, qe, lc int64) tree.PruneFunc[I, V, int64] {
	return func(n tree.RBNode[I, V, int64]) tree.Decision {
		if n.Aug() < qs {
			return 0
		}
		var d tree.Decision
		start := n.Key().Start()
		if lc == NegInf || start > lc {
			d |= tree.VisitLeft
		}
		if start <= qe {
			d |= tree.VisitRight
			if (lc == NegInf || start > lc) && n.Key().Stop() >= qs {
				d |= tree.Emit
			}
		}
		return d
	}
}

// OverlappingSeq lazily yields the intervals with start <= qe and
// stop >= qs in start order.
func (t *Tree[I, V]) OverlappingSeq(qs, qe int64) *tree.Seq[I, V, int64] {
	if qs > qe {
		return t.empty()
	}
	return t.scan(overlapPrune[I, V](qs, qe, NegInf))
}

func (t *Tree[I, V]) Overlapping(qs, qe int64) []Entry[I, V] {
	return t.collect(QueryOverlapping, t.OverlappingSeq(qs, qe))
}

// StabbingSeq lazily yields the intervals containing pos.
func (t *Tree[I, V]) StabbingSeq(pos int64) *tree.Seq[I, V, int64] {
	return t.OverlappingSeq(pos, pos)
}

func (t *Tree[I, V]) Stabbing(pos int64) []Entry[I, V] {
	return t.collect(QueryStabbing, t.StabbingSeq(pos))
}

// CountOverlapping counts without materializing the matches.
func (t *Tree[I, V]) CountOverlapping(qs, qe int64) int64 {
	s := t.OverlappingSeq(qs, qe)
	n := int64(0)
	for _, ok := s.Next(); ok; _, ok = s.Next() {
		n++
	}
	t.stats.RecordQuery(QueryOverlapping, -1)
	return n
}

// ContainedBySeq lazily yields the intervals with qs <= start and
// stop <= qe.
func (t *Tree[I, V]) ContainedBySeq(qs, qe int64) *tree.Seq[I, V, int64] {
	if qs > qe {
		return t.empty()
	}
	return t.scan(func(n tree.RBNode[I, V, int64]) tree.Decision {
		// start >= qs implies stop >= qs-1.
		if qs != NegInf && n.Aug() < qs-1 {
			return 0
		}
		var d tree.Decision
		start, stop := n.Key().Start(), n.Key().Stop()
		if start >= qs {
			d |= tree.VisitLeft
		}
		// stop <= qe implies start <= qe+1, the empty interval at qe+1.
		if start <= qe || (qe != PosInf && start == qe+1) {
			d |= tree.VisitRight
		}
		if start >= qs && stop <= qe {
			d |= tree.Emit
		}
		return d
	})
}

func (t *Tree[I, V]) ContainedBy(qs, qe int64) []Entry[I, V] {
	return t.collect(QueryContainedBy, t.ContainedBySeq(qs, qe))
}

// SpanningSeq lazily yields the intervals with start <= qs and stop >= qe.
func (t *Tree[I, V]) SpanningSeq(qs, qe int64) *tree.Seq[I, V, int64] {
	if qs > qe {
		return t.empty()
	}
	return t.scan(func(n tree.RBNode[I, V, int64]) tree.Decision {
		if n.Aug() < qe {
			return 0
		}
		d := tree.VisitLeft
		if start := n.Key().Start(); start <= qs {
			d |= tree.VisitRight
			if n.Key().Stop() >= qe {
				d |= tree.Emit
			}
		}
		return d
	})
}

func (t *Tree[I, V]) Spanning(qs, qe int64) []Entry[I, V] {
	return t.collect(QuerySpanning, t.SpanningSeq(qs, qe))
}

// leftBest is the largest stop below qs. The walk runs by descending start
// so the first candidates are close to qs and every subtree whose max stop
// cannot beat the best so far is skipped. examined counts the subtrees the
// walk had to look at.
func (t *Tree[I, V]) leftBest(qs int64) (best int64, found bool, examined int) {
	if qs == NegInf {
		return 0, false, 0
	}
	s := t.rb.Scan(func(n tree.RBNode[I, V, int64]) tree.Decision {
		examined++
		if found && n.Aug() <= best {
			return 0
		}
		d := tree.VisitLeft
		// start > qs implies stop >= qs.
		if n.Key().Start() <= qs {
			d |= tree.Emit | tree.VisitRight
		}
		return d
	}, true)
	for n, ok := s.Next(); ok; n, ok = s.Next() {
		if stop := n.Key().Stop(); stop < qs && (!found || stop > best) {
			best, found = stop, true
		}
	}
	return best, found, examined
}

// LeftNeighborsSeq lazily yields every interval whose stop is the largest
// stop strictly before qs. qe is accepted for symmetry and not used.
func (t *Tree[I, V]) LeftNeighborsSeq(qs, qe int64) *tree.Seq[I, V, int64] {
	best, ok, _ := t.leftBest(qs)
	if !ok {
		return t.empty()
	}
	return t.scan(func(n tree.RBNode[I, V, int64]) tree.Decision {
		if n.Aug() < best {
			return 0
		}
		d := tree.VisitLeft
		// stop == best implies start <= best+1.
		if n.Key().Start() <= best+1 {
			d |= tree.VisitRight
			if n.Key().Stop() == best {
				d |= tree.Emit
			}
		}
		return d
	})
}

func (t *Tree[I, V]) LeftNeighbors(qs, qe int64) []Entry[I, V] {
	return t.collect(QueryLeft, t.LeftNeighborsSeq(qs, qe))
}

// RightNeighborsSeq lazily yields every interval whose start is the
// smallest start strictly after qe. qs is accepted for symmetry and not
// used.
func (t *Tree[I, V]) RightNeighborsSeq(qs, qe int64) *tree.Seq[I, V, int64] {
	if qe == PosInf {
		return t.empty()
	}
	first, ok := t.rb.SearchFirst(func(iv I) bool {
		return iv.Start() > qe
	})
	if !ok {
		return t.empty()
	}
	best := first.Key().Start()
	return t.scan(func(n tree.RBNode[I, V, int64]) tree.Decision {
		var d tree.Decision
		start := n.Key().Start()
		if start >= best {
			d |= tree.VisitLeft
		}
		if start <= best {
			d |= tree.VisitRight
		}
		if start == best {
			d |= tree.Emit
		}
		return d
	})
}

func (t *Tree[I, V]) RightNeighbors(qs, qe int64) []Entry[I, V] {
	return t.collect(QueryRight, t.RightNeighborsSeq(qs, qe))
}

// Nearest returns the intervals overlapping [qs, qe] or, when there are
// none, the left neighbors followed by the right neighbors. An empty result
// is valid.
func (t *Tree[I, V]) Nearest(qs, qe int64) []Entry[I, V] {
	if qs > qe {
		return t.collect(QueryNearest, t.empty())
	}
	res := make([]Entry[I, V], 0, 8)
	appendAll := func(s *tree.Seq[I, V, int64]) {
		for n, ok := s.Next(); ok; n, ok = s.Next() {
			res = append(res, entryOf(n))
		}
	}
	appendAll(t.OverlappingSeq(qs, qe))
	if len(res) == 0 {
		appendAll(t.LeftNeighborsSeq(qs, qe))
		appendAll(t.RightNeighborsSeq(qs, qe))
	}
	t.stats.RecordQuery(QueryNearest, len(res))
	return res
}
