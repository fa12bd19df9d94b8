package tree

import (
	"iter"
	"slices"
)

type seqFrame[K, V, A any] struct {
	node     RBNode[K, V, A]
	expanded bool
}

// Seq is a lazy in-order walk over a (sub)tree that skips every subtree its
// PruneFunc rejects. The walk state is an explicit stack of frames, the top
// frame is the next one to be handled:
//
//	unexpanded frame: the subtree still has to be asked for a Decision
//	expanded frame:   the node itself is the next to emit
//
// A Seq is not safe for concurrent use, but the halves produced by
// TrySplit are independent and may be drained on different goroutines as
// long as the tree is not mutated meanwhile.
type Seq[K, V, A any] struct {
	prune  PruneFunc[K, V, A]
	origin []seqFrame[K, V, A]
	stack  []seqFrame[K, V, A]
	desc   bool
}

// NewSeq starts a walk at root. A nil prune visits everything.
func NewSeq[K, V, A any](root RBNode[K, V, A], prune PruneFunc[K, V, A], desc bool) *Seq[K, V, A] {
	if prune == nil {
		prune = visitAll[K, V, A]
	}
	seq := &Seq[K, V, A]{
		prune: prune,
		desc:  desc,
	}
	if root != nil {
		seq.origin = []seqFrame[K, V, A]{{node: root}}
	}
	seq.Reset()
	return seq
}

// Reset rewinds the walk to its construction, or to right after the last
// TrySplit for split sequences.
func (seq *Seq[K, V, A]) Reset() {
	seq.stack = append(seq.stack[:0], seq.origin...)
}

// Checkpoint makes the current position the one Reset rewinds to.
func (seq *Seq[K, V, A]) Checkpoint() {
	seq.origin = slices.Clone(seq.stack)
}

func (seq *Seq[K, V, A]) IsDescending() bool {
	return seq.desc
}

// Unexplored is the number of frames left on the stack.
func (seq *Seq[K, V, A]) Unexplored() int {
	return len(seq.stack)
}

func (seq *Seq[K, V, A]) push(node RBNode[K, V, A], expanded bool) {
	seq.stack = append(seq.stack, seqFrame[K, V, A]{node: node, expanded: expanded})
}

// expand replaces a subtree frame by the frames of its children and itself,
// pushed in reverse visiting order.
func (seq *Seq[K, V, A]) expand(node RBNode[K, V, A]) {
	d := seq.prune(node)
	if d == 0 {
		return
	}
	first, second := node.Left(), node.Right()
	firstBit, secondBit := VisitLeft, VisitRight
	if seq.desc {
		first, second = second, first
		firstBit, secondBit = secondBit, firstBit
	}
	if d&secondBit != 0 && second != nil {
		seq.push(second, false)
	}
	if d&Emit != 0 {
		seq.push(node, true)
	}
	if d&firstBit != 0 && first != nil {
		seq.push(first, false)
	}
}

// Next returns the next accepted node, or false once the walk is over.
func (seq *Seq[K, V, A]) Next() (RBNode[K, V, A], bool) {
	for size := len(seq.stack); size > 0; size = len(seq.stack) {
		top := seq.stack[size-1]
		seq.stack[size-1] = seqFrame[K, V, A]{}
		seq.stack = seq.stack[:size-1]
		if top.expanded {
			return top.node, true
		}
		seq.expand(top.node)
	}
	return nil, false
}

// TrySplit detaches the later half of the remaining walk into a new Seq.
// Draining seq and then the returned Seq yields exactly what draining seq
// alone would have yielded, in the same order.
// A lone unexpanded frame is expanded first. It returns nil if there are
// fewer than two frames left to share.
func (seq *Seq[K, V, A]) TrySplit() *Seq[K, V, A] {
	for len(seq.stack) == 1 && !seq.stack[0].expanded {
		top := seq.stack[0]
		seq.stack = seq.stack[:0]
		seq.expand(top.node)
	}
	size := len(seq.stack)
	if size < 2 {
		return nil
	}

	// The bottom of the stack is visited last.
	half := size / 2
	detached := slices.Clone(seq.stack[:half])
	copy(seq.stack, seq.stack[half:])
	clear(seq.stack[size-half:])
	seq.stack = seq.stack[:size-half]
	seq.Checkpoint()

	return &Seq[K, V, A]{
		prune:  seq.prune,
		origin: slices.Clone(detached),
		stack:  detached,
		desc:   seq.desc,
	}
}

// Collect drains the remaining walk.
func (seq *Seq[K, V, A]) Collect() []RBNode[K, V, A] {
	res := make([]RBNode[K, V, A], 0, 16)
	for node, ok := seq.Next(); ok; node, ok = seq.Next() {
		res = append(res, node)
	}
	return res
}

func (seq *Seq[K, V, A]) Nodes() iter.Seq[RBNode[K, V, A]] {
	return func(yield func(RBNode[K, V, A]) bool) {
		for node, ok := seq.Next(); ok; node, ok = seq.Next() {
			if !yield(node) {
				return
			}
		}
	}
}

func (seq *Seq[K, V, A]) Entries() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for node, ok := seq.Next(); ok; node, ok = seq.Next() {
			if !yield(node.Key(), node.Val()) {
				return
			}
		}
	}
}
