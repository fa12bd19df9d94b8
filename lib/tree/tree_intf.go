package tree

import (
	"iter"

	"github.com/benz9527/xindex/lib/infra"
	"github.com/benz9527/xindex/xlog"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "Unknown"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Unknown"
}

// Combiner computes the augmented value of a node from its own key and the
// augmented values of its children. A nil child pointer means the child is
// absent. The result must only depend on the key and the child values.
type Combiner[K, A any] func(key K, left, right *A) A

type RBNode[K, V, A any] interface {
	Key() K
	Val() V
	Aug() A
	Color() RBColor
	Left() RBNode[K, V, A]
	Right() RBNode[K, V, A]
	Parent() RBNode[K, V, A]
}

// Decision tells a pruned traversal what to do with a node.
// Zero skips the node and its whole subtree.
type Decision uint8

const (
	VisitLeft Decision = 1 << iota
	Emit
	VisitRight
	VisitAll = VisitLeft | Emit | VisitRight
)

type PruneFunc[K, V, A any] func(node RBNode[K, V, A]) Decision

type RBTree[K, V, A any] interface {
	Len() int64
	IsEmpty() bool
	IsMultiset() bool
	Root() RBNode[K, V, A]
	RootAug() (A, bool)
	Comparator() infra.KeyComparator[K]

	Insert(key K, val V) (prev V, replaced bool)
	// InsertIfAbsent returns ErrReplaceDisabled when an equal key is
	// present, in map and multiset mode alike.
	InsertIfAbsent(key K, val V) error
	Remove(key K) (RBNode[K, V, A], error)
	RemoveIf(key K, matcher func(key K, val V) bool) (RBNode[K, V, A], error)
	RemoveMin() (RBNode[K, V, A], error)
	RemoveMax() (RBNode[K, V, A], error)
	Clear()

	Get(key K) (V, bool)
	Contains(key K) bool
	Count(key K) int64
	First() (RBNode[K, V, A], error)
	Last() (RBNode[K, V, A], error)
	Floor(key K) (RBNode[K, V, A], bool)
	Ceiling(key K) (RBNode[K, V, A], bool)
	Lower(key K) (RBNode[K, V, A], bool)
	Higher(key K) (RBNode[K, V, A], bool)
	SearchFirst(pred func(key K) bool) (RBNode[K, V, A], bool)

	SubRange(from, to Bound[K]) View[K, V, A]
	HeadRange(to Bound[K]) View[K, V, A]
	TailRange(from Bound[K]) View[K, V, A]

	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	All() iter.Seq2[K, V]
	Ascend() *Seq[K, V, A]
	Descend() *Seq[K, V, A]
	Scan(prune PruneFunc[K, V, A], desc ...bool) *Seq[K, V, A]

	Clone() RBTree[K, V, A]
	Validate() error
	ValidateAll() error
	Logger() xlog.XLogger
}

// View is a window over a key range of a tree. It shares the nodes of the
// tree, so it reflects later mutations and must not be walked while the
// tree is being mutated.
type View[K, V, A any] interface {
	Len() int64
	IsEmpty() bool
	IsDescending() bool
	First() (RBNode[K, V, A], error)
	Last() (RBNode[K, V, A], error)
	Floor(key K) (RBNode[K, V, A], bool)
	Ceiling(key K) (RBNode[K, V, A], bool)
	Contains(key K) bool
	Foreach(action func(idx int64, key K, val V) bool)
	Seq() *Seq[K, V, A]
	All() iter.Seq2[K, V]
	Descending() View[K, V, A]
	SubRange(from, to Bound[K]) View[K, V, A]
}
