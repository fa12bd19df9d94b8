package interval

import (
	"iter"

	"github.com/benz9527/xindex/lib/tree"
	"github.com/benz9527/xindex/observability"
	"github.com/benz9527/xindex/xlog"
)

// Tree maps intervals to values and answers overlap style queries. It is
// not safe for concurrent mutation.
type Tree[I Interval, V any] struct {
	rb     tree.RBTree[I, V, int64]
	logger xlog.XLogger
	stats  *observability.IndexStats
}

func New[I Interval, V any](opts ...TreeOpt[I]) *Tree[I, V] {
	cfg := &treeCfg[I]{
		logger: xlog.NewNopXLogger(),
	}
	for _, o := range opts {
		o(cfg)
	}
	rbOpts := []tree.RBTreeOpt[I, V, int64]{
		tree.WithLogger[I, V, int64](cfg.logger),
	}
	if cfg.multiset {
		rbOpts = append(rbOpts, tree.WithMultiset[I, V, int64]())
	}
	rb, err := tree.NewRBTree[I, V, int64](comparator(cfg.tie), MaxStop[I], rbOpts...)
	if err != nil {
		// Unreachable, the comparator and combiner are never nil.
		panic(err)
	}
	return &Tree[I, V]{
		rb:     rb,
		logger: cfg.logger,
		stats:  cfg.stats(),
	}
}

func (t *Tree[I, V]) Len() int64 {
	return t.rb.Len()
}

func (t *Tree[I, V]) IsEmpty() bool {
	return t.rb.IsEmpty()
}

func (t *Tree[I, V]) IsMultiset() bool {
	return t.rb.IsMultiset()
}

// Insert adds iv. In map mode an existing equal interval gets its value
// replaced and the previous one is returned.
func (t *Tree[I, V]) Insert(iv I, val V) (prev V, replaced bool, err error) {
	if err = validate(iv); err != nil {
		return prev, false, err
	}
	prev, replaced = t.rb.Insert(iv, val)
	t.stats.RecordInsert(replaced)
	return prev, replaced, nil
}

func (t *Tree[I, V]) Get(iv I) (V, bool) {
	return t.rb.Get(iv)
}

func (t *Tree[I, V]) Contains(iv I) bool {
	return t.rb.Contains(iv)
}

// Remove deletes the first entry equal to iv.
func (t *Tree[I, V]) Remove(iv I) (V, error) {
	n, err := t.rb.Remove(iv)
	if err != nil {
		var zero V
		return zero, err
	}
	t.stats.RecordRemove()
	return n.Val(), nil
}

// RemoveIf deletes the first entry equal to iv that matcher accepts.
func (t *Tree[I, V]) RemoveIf(iv I, matcher func(iv I, val V) bool) (V, error) {
	n, err := t.rb.RemoveIf(iv, matcher)
	if err != nil {
		var zero V
		return zero, err
	}
	t.stats.RecordRemove()
	return n.Val(), nil
}

func (t *Tree[I, V]) Clear() {
	released := t.rb.Len()
	t.rb.Clear()
	t.stats.RecordClear(released)
}

// Clone deep copies the tree. The clone records no stats.
func (t *Tree[I, V]) Clone() *Tree[I, V] {
	return &Tree[I, V]{
		rb:     t.rb.Clone(),
		logger: t.logger,
	}
}

func (t *Tree[I, V]) Validate() error {
	err := t.rb.Validate()
	if err != nil {
		t.stats.RecordViolation()
	}
	return err
}

// MaxStop is the largest stop in the tree.
func (t *Tree[I, V]) MaxStop() (int64, bool) {
	return t.rb.RootAug()
}

// Span is the smallest range covering every interval.
func (t *Tree[I, V]) Span() (Range, bool) {
	first, err := t.rb.First()
	if err != nil {
		return Range{}, false
	}
	stop, _ := t.rb.RootAug()
	return NewRange(first.Key().Start(), stop), true
}

func (t *Tree[I, V]) First() (Entry[I, V], error) {
	n, err := t.rb.First()
	if err != nil {
		return Entry[I, V]{}, err
	}
	return entryOf(n), nil
}

func (t *Tree[I, V]) Last() (Entry[I, V], error) {
	n, err := t.rb.Last()
	if err != nil {
		return Entry[I, V]{}, err
	}
	return entryOf(n), nil
}

// All yields every entry ordered by start, then stop.
func (t *Tree[I, V]) All() iter.Seq2[I, V] {
	return t.rb.All()
}

// Index exposes the underlying augmented tree for read only use.
func (t *Tree[I, V]) Index() tree.RBTree[I, V, int64] {
	return t.rb
}

func entryOf[I Interval, V any](n tree.RBNode[I, V, int64]) Entry[I, V] {
	return Entry[I, V]{Interval: n.Key(), Value: n.Val()}
}

// collect drains seq and records the query.
func (t *Tree[I, V]) collect(kind string, seq *tree.Seq[I, V, int64]) []Entry[I, V] {
	res := make([]Entry[I, V], 0, 8)
	for n, ok := seq.Next(); ok; n, ok = seq.Next() {
		res = append(res, entryOf(n))
	}
	t.stats.RecordQuery(kind, len(res))
	return res
}
