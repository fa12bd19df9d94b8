package orderstat

import (
	"fmt"
	"iter"
	"math"

	"github.com/benz9527/xindex/lib/infra"
	"github.com/benz9527/xindex/lib/tree"
	"github.com/benz9527/xindex/xlog"
)

var (
	ErrRankOutOfRange     = fmt.Errorf("%w: rank out of range", tree.ErrElementNotFound)
	ErrQuantileOutOfRange = fmt.Errorf("%w: quantile out of [0,1]", tree.ErrElementNotFound)
)

// SubtreeSize augments every node with the number of nodes below it,
// itself included.
func SubtreeSize[K any](_ K, left, right *int64) int64 {
	size := int64(1)
	if left != nil {
		size += *left
	}
	if right != nil {
		size += *right
	}
	return size
}

type treeCfg struct {
	multiset bool
	logger   xlog.XLogger
}

type TreeOpt func(cfg *treeCfg)

func WithMultiset() TreeOpt {
	return func(cfg *treeCfg) {
		cfg.multiset = true
	}
}

func WithLogger(logger xlog.XLogger) TreeOpt {
	return func(cfg *treeCfg) {
		cfg.logger = logger
	}
}

// Tree answers rank and select queries in O(log n).
type Tree[K, V any] struct {
	rb tree.RBTree[K, V, int64]
}

func New[K, V any](cmp infra.KeyComparator[K], opts ...TreeOpt) (*Tree[K, V], error) {
	cfg := &treeCfg{}
	for _, o := range opts {
		o(cfg)
	}
	rbOpts := []tree.RBTreeOpt[K, V, int64]{
		tree.WithLogger[K, V, int64](cfg.logger),
	}
	if cfg.multiset {
		rbOpts = append(rbOpts, tree.WithMultiset[K, V, int64]())
	}
	rb, err := tree.NewRBTree[K, V, int64](cmp, SubtreeSize[K], rbOpts...)
	if err != nil {
		return nil, err
	}
	return &Tree[K, V]{rb: rb}, nil
}

func NewOrdered[K infra.OrderedKey, V any](opts ...TreeOpt) *Tree[K, V] {
	t, err := New[K, V](infra.NaturalOrder[K](), opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func size[K, V any](n tree.RBNode[K, V, int64]) int64 {
	if n == nil {
		return 0
	}
	return n.Aug()
}

func (t *Tree[K, V]) Len() int64 {
	return t.rb.Len()
}

func (t *Tree[K, V]) IsEmpty() bool {
	return t.rb.IsEmpty()
}

func (t *Tree[K, V]) Insert(key K, val V) (prev V, replaced bool) {
	return t.rb.Insert(key, val)
}

// Remove deletes the first entry equal to key.
func (t *Tree[K, V]) Remove(key K) (V, error) {
	n, err := t.rb.Remove(key)
	if err != nil {
		var zero V
		return zero, err
	}
	return n.Val(), nil
}

func (t *Tree[K, V]) Contains(key K) bool {
	return t.rb.Contains(key)
}

func (t *Tree[K, V]) Clear() {
	t.rb.Clear()
}

func (t *Tree[K, V]) Clone() *Tree[K, V] {
	return &Tree[K, V]{rb: t.rb.Clone()}
}

func (t *Tree[K, V]) Validate() error {
	return t.rb.Validate()
}

// Foreach visits the entries in order with their 1-indexed rank.
func (t *Tree[K, V]) Foreach(action func(rank int64, key K, val V) bool) {
	t.rb.Foreach(func(idx int64, _ tree.RBColor, key K, val V) bool {
		return action(idx+1, key, val)
	})
}

func (t *Tree[K, V]) All() iter.Seq2[K, V] {
	return t.rb.All()
}

// Select returns the entry of the given 1-indexed rank.
func (t *Tree[K, V]) Select(rank int64) (K, V, error) {
	var (
		zeroK K
		zeroV V
	)
	if rank < 1 || rank > t.rb.Len() {
		return zeroK, zeroV, fmt.Errorf("%w: %d of %d", ErrRankOutOfRange, rank, t.rb.Len())
	}
	for n := t.rb.Root(); n != nil; {
		l := size(n.Left())
		switch {
		case rank <= l:
			n = n.Left()
		case rank == l+1:
			return n.Key(), n.Val(), nil
		default:
			rank -= l + 1
			n = n.Right()
		}
	}
	// Unreachable while the sizes are consistent.
	panic("[xorderstat] subtree sizes are inconsistent")
}

// countBelow counts the keys k with cmp(k, key) < 0, or <= 0 when
// inclusive is set.
func (t *Tree[K, V]) countBelow(key K, inclusive bool) int64 {
	cmp := t.rb.Comparator()
	cnt := int64(0)
	for n := t.rb.Root(); n != nil; {
		if res := cmp(n.Key(), key); res < 0 || (inclusive && res == 0) {
			cnt += size(n.Left()) + 1
			n = n.Right()
		} else {
			n = n.Left()
		}
	}
	return cnt
}

func (t *Tree[K, V]) CountLess(key K) int64 {
	return t.countBelow(key, false)
}

func (t *Tree[K, V]) CountLessOrEqual(key K) int64 {
	return t.countBelow(key, true)
}

// CountRange counts the keys within the bounds.
func (t *Tree[K, V]) CountRange(from, to tree.Bound[K]) int64 {
	hi := t.rb.Len()
	if !to.IsUnbounded() {
		hi = t.countBelow(to.Key(), to.IsInclusive())
	}
	lo := int64(0)
	if !from.IsUnbounded() {
		lo = t.countBelow(from.Key(), !from.IsInclusive())
	}
	return max(hi-lo, 0)
}

// Rank is the 1-indexed rank of the first entry equal to key.
func (t *Tree[K, V]) Rank(key K) (int64, error) {
	return t.MinRank(key)
}

func (t *Tree[K, V]) MinRank(key K) (int64, error) {
	if !t.rb.Contains(key) {
		return 0, tree.ErrElementNotFound
	}
	return t.CountLess(key) + 1, nil
}

// MaxRank is the rank of the last entry equal to key.
func (t *Tree[K, V]) MaxRank(key K) (int64, error) {
	if !t.rb.Contains(key) {
		return 0, tree.ErrElementNotFound
	}
	return t.CountLessOrEqual(key), nil
}

// MeanRank is the average of MinRank and MaxRank.
func (t *Tree[K, V]) MeanRank(key K) (float64, error) {
	if !t.rb.Contains(key) {
		return 0, tree.ErrElementNotFound
	}
	lo, hi := t.CountLess(key)+1, t.CountLessOrEqual(key)
	return float64(lo+hi) / 2, nil
}

// Quantile returns the nearest-rank q-quantile, the entry of rank
// ceil(q*n), at least 1.
func (t *Tree[K, V]) Quantile(q float64) (K, V, error) {
	var (
		zeroK K
		zeroV V
	)
	if math.IsNaN(q) || q < 0 || q > 1 {
		return zeroK, zeroV, ErrQuantileOutOfRange
	}
	n := t.rb.Len()
	if n == 0 {
		return zeroK, zeroV, tree.ErrEmptyTree
	}
	rank := max(int64(math.Ceil(q*float64(n))), 1)
	return t.Select(rank)
}

func (t *Tree[K, V]) Median() (K, V, error) {
	return t.Quantile(0.5)
}
