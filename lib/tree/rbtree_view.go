package tree

import (
	"iter"
)

// Bound is one end of a key range.
type Bound[K any] struct {
	key       K
	inclusive bool
	unbounded bool
}

func Inclusive[K any](key K) Bound[K] {
	return Bound[K]{key: key, inclusive: true}
}

func Exclusive[K any](key K) Bound[K] {
	return Bound[K]{key: key}
}

func Unbounded[K any]() Bound[K] {
	return Bound[K]{unbounded: true}
}

func (b Bound[K]) Key() K {
	return b.key
}

func (b Bound[K]) IsInclusive() bool {
	return b.inclusive
}

func (b Bound[K]) IsUnbounded() bool {
	return b.unbounded
}

var _ View[int, int, struct{}] = (*rbView[int, int, struct{}])(nil)

// rbView always stores its bounds in ascending key order, lo <= hi.
type rbView[K, V, A any] struct {
	tree *rbTree[K, V, A]
	lo   Bound[K]
	hi   Bound[K]
	desc bool
}

func (tree *rbTree[K, V, A]) SubRange(from, to Bound[K]) View[K, V, A] {
	return &rbView[K, V, A]{tree: tree, lo: from, hi: to}
}

func (tree *rbTree[K, V, A]) HeadRange(to Bound[K]) View[K, V, A] {
	return tree.SubRange(Unbounded[K](), to)
}

func (tree *rbTree[K, V, A]) TailRange(from Bound[K]) View[K, V, A] {
	return tree.SubRange(from, Unbounded[K]())
}

func (v *rbView[K, V, A]) tooLow(key K) bool {
	if v.lo.unbounded {
		return false
	}
	res := v.tree.cmp(key, v.lo.key)
	return res < 0 || (res == 0 && !v.lo.inclusive)
}

func (v *rbView[K, V, A]) tooHigh(key K) bool {
	if v.hi.unbounded {
		return false
	}
	res := v.tree.cmp(key, v.hi.key)
	return res > 0 || (res == 0 && !v.hi.inclusive)
}

func (v *rbView[K, V, A]) inRange(key K) bool {
	return !v.tooLow(key) && !v.tooHigh(key)
}

func (v *rbView[K, V, A]) prune(node RBNode[K, V, A]) Decision {
	key := node.Key()
	if v.tooLow(key) {
		return VisitRight
	}
	if v.tooHigh(key) {
		return VisitLeft
	}
	return VisitAll
}

// lowest is the smallest key in range in ascending order.
func (v *rbView[K, V, A]) lowest() *rbNode[K, V, A] {
	var node *rbNode[K, V, A]
	if v.lo.unbounded {
		node = v.tree.root.minimum()
	} else {
		node = v.tree.ceiling(v.lo.key, !v.lo.inclusive)
	}
	if node == nil || v.tooHigh(node.key) {
		return nil
	}
	return node
}

func (v *rbView[K, V, A]) highest() *rbNode[K, V, A] {
	var node *rbNode[K, V, A]
	if v.hi.unbounded {
		node = v.tree.root.maximum()
	} else {
		node = v.tree.floor(v.hi.key, !v.hi.inclusive)
	}
	if node == nil || v.tooLow(node.key) {
		return nil
	}
	return node
}

// floor and ceiling below are in ascending key order.
func (v *rbView[K, V, A]) floor(key K) *rbNode[K, V, A] {
	node := v.tree.floor(key, false)
	if node != nil && v.tooHigh(node.key) {
		node = v.highest()
	}
	if node == nil || v.tooLow(node.key) {
		return nil
	}
	return node
}

func (v *rbView[K, V, A]) ceiling(key K) *rbNode[K, V, A] {
	node := v.tree.ceiling(key, false)
	if node != nil && v.tooLow(node.key) {
		node = v.lowest()
	}
	if node == nil || v.tooHigh(node.key) {
		return nil
	}
	return node
}

func (v *rbView[K, V, A]) Len() int64 {
	n := int64(0)
	seq := v.Seq()
	for _, ok := seq.Next(); ok; _, ok = seq.Next() {
		n++
	}
	return n
}

func (v *rbView[K, V, A]) IsEmpty() bool {
	return v.lowest() == nil
}

func (v *rbView[K, V, A]) IsDescending() bool {
	return v.desc
}

// First is the first entry in the view's own direction.
func (v *rbView[K, V, A]) First() (RBNode[K, V, A], error) {
	node := v.lowest()
	if v.desc {
		node = v.highest()
	}
	if node == nil {
		return nil, ErrEmptyTree
	}
	return node, nil
}

func (v *rbView[K, V, A]) Last() (RBNode[K, V, A], error) {
	node := v.highest()
	if v.desc {
		node = v.lowest()
	}
	if node == nil {
		return nil, ErrEmptyTree
	}
	return node, nil
}

// Floor is the closest entry at or before key in the view's direction.
func (v *rbView[K, V, A]) Floor(key K) (RBNode[K, V, A], bool) {
	if v.desc {
		return wrapNode(v.ceiling(key))
	}
	return wrapNode(v.floor(key))
}

// Ceiling is the closest entry at or after key in the view's direction.
func (v *rbView[K, V, A]) Ceiling(key K) (RBNode[K, V, A], bool) {
	if v.desc {
		return wrapNode(v.floor(key))
	}
	return wrapNode(v.ceiling(key))
}

func (v *rbView[K, V, A]) Contains(key K) bool {
	return v.inRange(key) && v.tree.lowerBound(key) != nil
}

func (v *rbView[K, V, A]) Seq() *Seq[K, V, A] {
	return NewSeq[K, V, A](v.tree.Root(), v.prune, v.desc)
}

func (v *rbView[K, V, A]) Foreach(action func(idx int64, key K, val V) bool) {
	seq := v.Seq()
	idx := int64(0)
	for node, ok := seq.Next(); ok; node, ok = seq.Next() {
		if !action(idx, node.Key(), node.Val()) {
			return
		}
		idx++
	}
}

func (v *rbView[K, V, A]) All() iter.Seq2[K, V] {
	return v.Seq().Entries()
}

func (v *rbView[K, V, A]) Descending() View[K, V, A] {
	return &rbView[K, V, A]{tree: v.tree, lo: v.lo, hi: v.hi, desc: !v.desc}
}

// SubRange narrows the view. In a descending view from is the higher end.
func (v *rbView[K, V, A]) SubRange(from, to Bound[K]) View[K, V, A] {
	lo, hi := from, to
	if v.desc {
		lo, hi = to, from
	}
	return &rbView[K, V, A]{
		tree: v.tree,
		lo:   v.tighter(v.lo, lo, true),
		hi:   v.tighter(v.hi, hi, false),
		desc: v.desc,
	}
}

// tighter picks the narrower of two bounds at the same end of the range.
func (v *rbView[K, V, A]) tighter(a, b Bound[K], lowEnd bool) Bound[K] {
	if a.unbounded {
		return b
	}
	if b.unbounded {
		return a
	}
	res := v.tree.cmp(a.key, b.key)
	switch {
	case res == 0 && !a.inclusive:
		return a
	case res == 0:
		return b
	case (res > 0) == lowEnd:
		return a
	default:
	}
	return b
}
