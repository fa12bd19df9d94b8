package interval

import (
	"iter"

	"github.com/samber/lo"
)

// Set is a Tree without payloads.
type Set[I Interval] struct {
	t *Tree[I, struct{}]
}

func NewSet[I Interval](opts ...TreeOpt[I]) *Set[I] {
	return &Set[I]{t: New[I, struct{}](opts...)}
}

func intervals[I Interval](entries []Entry[I, struct{}]) []I {
	return lo.Map(entries, func(e Entry[I, struct{}], _ int) I {
		return e.Interval
	})
}

// Add inserts iv and reports whether the set grew.
func (s *Set[I]) Add(iv I) (bool, error) {
	_, replaced, err := s.t.Insert(iv, struct{}{})
	if err != nil {
		return false, err
	}
	return !replaced, nil
}

func (s *Set[I]) Remove(iv I) error {
	_, err := s.t.Remove(iv)
	return err
}

func (s *Set[I]) Contains(iv I) bool     { return s.t.Contains(iv) }
func (s *Set[I]) Len() int64             { return s.t.Len() }
func (s *Set[I]) IsEmpty() bool          { return s.t.IsEmpty() }
func (s *Set[I]) Clear()                 { s.t.Clear() }
func (s *Set[I]) Validate() error        { return s.t.Validate() }
func (s *Set[I]) MaxStop() (int64, bool) { return s.t.MaxStop() }
func (s *Set[I]) Span() (Range, bool)    { return s.t.Span() }

func (s *Set[I]) Clone() *Set[I] {
	return &Set[I]{t: s.t.Clone()}
}

// Tree exposes the lazy query forms.
func (s *Set[I]) Tree() *Tree[I, struct{}] {
	return s.t
}

func (s *Set[I]) All() iter.Seq[I] {
	return func(yield func(I) bool) {
		for iv := range s.t.All() {
			if !yield(iv) {
				return
			}
		}
	}
}

func (s *Set[I]) Stabbing(pos int64) []I {
	return intervals(s.t.Stabbing(pos))
}

func (s *Set[I]) Overlapping(qs, qe int64) []I {
	return intervals(s.t.Overlapping(qs, qe))
}

func (s *Set[I]) ContainedBy(qs, qe int64) []I {
	return intervals(s.t.ContainedBy(qs, qe))
}

func (s *Set[I]) Spanning(qs, qe int64) []I {
	return intervals(s.t.Spanning(qs, qe))
}

func (s *Set[I]) LeftNeighbors(qs, qe int64) []I {
	return intervals(s.t.LeftNeighbors(qs, qe))
}

func (s *Set[I]) RightNeighbors(qs, qe int64) []I {
	return intervals(s.t.RightNeighbors(qs, qe))
}

func (s *Set[I]) Nearest(qs, qe int64) []I {
	return intervals(s.t.Nearest(qs, qe))
}

func (s *Set[I]) CountOverlapping(qs, qe int64) int64 {
	return s.t.CountOverlapping(qs, qe)
}

func (s *Set[I]) RestrictedToRegion(parts []Range) []I {
	return intervals(s.t.RestrictedToRegion(parts))
}

func (s *Set[I]) GroupByOverlap(tolerance int64) [][]I {
	return lo.Map(s.t.GroupByOverlap(tolerance), func(group []Entry[I, struct{}], _ int) []I {
		return intervals(group)
	})
}
