package tree

import (
	"go.uber.org/zap"

	"github.com/benz9527/xindex/lib/infra"
	"github.com/benz9527/xindex/xlog"
)

var _ RBTree[int, int, struct{}] = (*rbTree[int, int, struct{}])(nil)

type rbTree[K, V, A any] struct {
	root           *rbNode[K, V, A]
	cmp            infra.KeyComparator[K]
	combine        Combiner[K, A]
	augEqual       func(a, b A) bool
	logger         xlog.XLogger
	count          int64
	isMultiset     bool
	isRmBorrowSucc bool
}

func (tree *rbTree[K, V, A]) Len() int64 {
	return tree.count
}

func (tree *rbTree[K, V, A]) IsEmpty() bool {
	return tree.count == 0
}

func (tree *rbTree[K, V, A]) IsMultiset() bool {
	return tree.isMultiset
}

func (tree *rbTree[K, V, A]) Root() RBNode[K, V, A] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// RootAug returns the augmented value summarizing the whole tree.
func (tree *rbTree[K, V, A]) RootAug() (A, bool) {
	if tree.root == nil {
		var zero A
		return zero, false
	}
	return tree.root.aug, true
}

func (tree *rbTree[K, V, A]) Comparator() infra.KeyComparator[K] {
	return tree.cmp
}

func (tree *rbTree[K, V, A]) Logger() xlog.XLogger {
	return tree.logger
}

func (tree *rbTree[K, V, A]) newNode(key K, val V, parent *rbNode[K, V, A], color RBColor) *rbNode[K, V, A] {
	return &rbNode[K, V, A]{
		parent: parent,
		key:    key,
		val:    val,
		aug:    tree.combine(key, nil, nil),
		color:  color,
	}
}

func (tree *rbTree[K, V, A]) recombine(node *rbNode[K, V, A]) {
	var l, r *A
	if node.left != nil {
		l = &node.left.aug
	}
	if node.right != nil {
		r = &node.right.aug
	}
	node.aug = tree.combine(node.key, l, r)
}

// recombineUpward refreshes the augmented values from node to the root.
func (tree *rbTree[K, V, A]) recombineUpward(node *rbNode[K, V, A]) {
	for aux := node; aux != nil; aux = aux.parent {
		tree.recombine(aux)
	}
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree_augmented.h
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// p6. Every node's aug equals combine(key, left.aug, right.aug). (aug-violation)
// If a node X has exactly one child, it must be a red child.
// The longest path is at most twice the shortest one.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc

X is recombined first as it is S's child after the rotation. S and every
ancestor above it are recombined next: the key set of the rotated subtree is
unchanged, but a shape dependent combiner (a height, say) still changes at S.
*/
func (tree *rbTree[K, V, A]) leftRotate(x *rbNode[K, V, A]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[xrbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xrbtree] unknown node direction to left-rotate")
	}
	y.parent = p

	tree.recombine(x)
	tree.recombineUpward(y)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K, V, A]) rightRotate(x *rbNode[K, V, A]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[xrbtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xrbtree] unknown node direction to right-rotate")
	}
	y.parent = p

	tree.recombine(x)
	tree.recombineUpward(y)
}

// Insert puts the key into the tree.
// In map mode an equal key has its value replaced in place and the previous
// value is returned. The augmented values never depend on the value, so
// nothing is recombined.
// In multiset mode equal keys are inserted to the right of the existing
// ones, so they are iterated in insertion order.
//
// i1: Empty rbtree, insert directly, but root node is painted to black.
func (tree *rbTree[K, V, A]) Insert(key K, val V) (prev V, replaced bool) {
	if /* i1 */ tree.root == nil {
		tree.root = tree.newNode(key, val, nil, Black)
		tree.count++
		return prev, false
	}

	var (
		x, y = tree.root, (*rbNode[K, V, A])(nil)
		res  int64
	)
	for x != nil {
		y = x
		res = tree.cmp(key, x.key)
		if /* equal */ res == 0 && !tree.isMultiset {
			prev, x.val = x.val, val
			return prev, true
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater or equal in multiset */ {
			x = x.right
		}
	}

	z := tree.newNode(key, val, y, Red)
	if res < 0 {
		y.left = z
	} else {
		y.right = z
	}
	tree.count++
	tree.recombineUpward(y)
	tree.insertRebalance(z)
	return prev, false
}

// InsertIfAbsent inserts only when no equal key is present and returns
// ErrReplaceDisabled otherwise. A multiset refuses the duplicate as well,
// use Insert to append another equal entry.
func (tree *rbTree[K, V, A]) InsertIfAbsent(key K, val V) error {
	if tree.lowerBound(key) != nil {
		return ErrReplaceDisabled
	}
	tree.Insert(key, val)
	return nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

im1: X's parent P is black, nothing to fix.

im2: X is the root, repaint it into black.

im3: Both the parent P and the uncle U are red, grandpa G is black.
Repaint and continue to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black, X is the opposite
direction to P. Rotate P to line X up with P, then enter im5.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: X is the same direction as its parent. Rotate G and repaint.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K, V, A]) insertRebalance(x *rbNode[K, V, A]) {
	for !x.isRoot() && /* im1 */ x.parent.isRed() {
		p, g := x.parent, x.grandpa()
		if g == nil {
			// impossible run to here, a red parent is never the root.
			panic( /* debug assertion */ "[xrbtree] red root, insert violate (im1)")
		}

		if /* im3 */ u := x.uncle(); u.isRed() {
			p.color, u.color, g.color = Black, Black, Red
			x = g
			continue
		}

		if /* im4 */ dir := x.Direction(); dir != p.Direction() {
			switch dir {
			case Left:
				tree.rightRotate(p)
			case Right:
				tree.leftRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[xrbtree] insert violate (im4)")
			}
			x, p = p, x // enter im5 to fix
		}

		switch /* im5 */ p.Direction() {
		case Left:
			tree.rightRotate(g)
		case Right:
			tree.leftRotate(g)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[xrbtree] insert violate (im5)")
		}
		p.color, g.color = Black, Red
		break
	}
	/* im2 */ tree.root.color = Black
}

/*
r1: Only a root node, remove directly.

r2: Current node Z has left and right node.
Find node Z's pred (or succ) Y, copy its key and value into Z, then remove
Y instead. Y has at most one child. Z is an ancestor of Y, so refreshing
the augmented values from Y's parent upward also covers Z.

r3: (1) Y is a red leaf node, remove directly.

r3: (2) Y is a black leaf node. Rebalance with Y as the double black node
while it is still linked, then unlink it. (black-violation)

r4: Y has a single child, which must be red. Replace Y by the child and
paint the child black.
*/
func (tree *rbTree[K, V, A]) removeNode(z *rbNode[K, V, A]) *rbNode[K, V, A] {
	res := z.detach()

	y := z
	if /* r2 */ z.left != nil && z.right != nil {
		if tree.isRmBorrowSucc {
			y = z.right.minimum()
		} else {
			y = z.left.maximum()
		}
		// Swap key & value.
		z.key, z.val = y.key, y.val
	}

	var child *rbNode[K, V, A]
	if y.left != nil {
		child = y.left
	} else {
		child = y.right
	}

	switch {
	case /* r4 */ child != nil:
		if y.isRed() || child.isBlack() {
			// impossible run to here
			panic( /* debug assertion */ "[xrbtree] remove a node with a black only child, violate (r4)")
		}
		p := y.parent
		switch y.Direction() {
		case Root:
			tree.root = child
		case Left:
			p.left = child
		case Right:
			p.right = child
		default:
		}
		child.parent = p
		child.color = Black
		tree.recombineUpward(p)
	case /* r1 */ y.isRoot():
		tree.root = nil
	default /* r3 */ :
		if /* r3 (2) */ y.isBlack() {
			tree.removeRebalance(y)
		}
		p := y.parent
		if y == p.left {
			p.left = nil
		} else {
			p.right = nil
		}
		tree.recombineUpward(p)
	}

	// Unlink node
	y.parent, y.left, y.right = nil, nil, nil
	tree.count--
	return res
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the same direction to X and it X's sibling's child node.
Sd is the opposite direction to X and it X's sibling's child node.

rm1: X's sibling S is red, so the parent P and both nephews are black.
Rotate P towards X, swap the colors of P and S, then X has a black
sibling and one of rm2-rm5 applies.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [D]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: P is red, S and both nephews are black.
Repaint S into red and P into black, done.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: P, S and both nephews are all black.
Paint S into red to balance locally, then continue to fix P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: S is black, Sc is red and Sd is black.
Rotate S away from X, repaint S into red and Sc into black, enter rm5.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm5: S is black and Sd is red.
Rotate P towards X, S takes P's color, P and Sd are painted black.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[K, V, A]) removeRebalance(x *rbNode[K, V, A]) {
	for !x.isRoot() && x.isBlack() {
		dir := x.Direction()
		sibling := x.sibling()
		if /* rm1 */ sibling.isRed() {
			switch dir {
			case Left:
				tree.leftRotate(x.parent)
			case Right:
				tree.rightRotate(x.parent)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[xrbtree] remove violate (rm1)")
			}
			sibling.color = Black
			x.parent.color = Red // ready to enter rm2
			sibling = x.sibling()
		}
		if sibling == nil {
			// impossible run to here
			panic( /* debug assertion */ "[xrbtree] double black node without sibling")
		}

		var sc, sd *rbNode[K, V, A]
		switch dir {
		case Left:
			sc, sd = sibling.left, sibling.right
		case Right:
			sc, sd = sibling.right, sibling.left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[xrbtree] remove violate (rm2)")
		}

		if sc.isBlack() && sd.isBlack() {
			sibling.color = Red
			if /* rm2 */ x.parent.isRed() {
				x.parent.color = Black
				return
			}
			/* rm3 */ x = x.parent
			continue
		}

		if /* rm4 */ sd.isBlack() {
			switch dir {
			case Left:
				tree.rightRotate(sibling)
			case Right:
				tree.leftRotate(sibling)
			default:
			}
			sc.color = Black
			sibling.color = Red
			sibling = x.sibling()
			if dir == Left {
				sd = sibling.right
			} else {
				sd = sibling.left
			}
		}

		/* rm5 */
		p := x.parent
		switch dir {
		case Left:
			tree.leftRotate(p)
		case Right:
			tree.rightRotate(p)
		default:
		}
		sibling.color = p.color
		p.color = Black
		sd.color = Black
		return
	}
	x.color = Black
}

// lowerBound returns the leftmost node whose key equals key.
func (tree *rbTree[K, V, A]) lowerBound(key K) *rbNode[K, V, A] {
	var found *rbNode[K, V, A]
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux.key)
		if res == 0 {
			found = aux
			if !tree.isMultiset {
				break
			}
			aux = aux.left
		} else if res < 0 {
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return found
}

// Remove deletes the leftmost entry equal to key.
func (tree *rbTree[K, V, A]) Remove(key K) (RBNode[K, V, A], error) {
	if tree.count <= 0 {
		return nil, ErrElementNotFound
	}
	z := tree.lowerBound(key)
	if z == nil {
		return nil, ErrElementNotFound
	}
	return tree.removeNode(z), nil
}

// RemoveIf deletes the leftmost entry equal to key that the matcher accepts.
func (tree *rbTree[K, V, A]) RemoveIf(key K, matcher func(key K, val V) bool) (RBNode[K, V, A], error) {
	if matcher == nil {
		return tree.Remove(key)
	}
	for z := tree.lowerBound(key); z != nil && tree.cmp(key, z.key) == 0; z = z.succ() {
		if matcher(z.key, z.val) {
			return tree.removeNode(z), nil
		}
	}
	return nil, ErrElementNotFound
}

func (tree *rbTree[K, V, A]) RemoveMin() (RBNode[K, V, A], error) {
	if tree.root == nil {
		return nil, ErrEmptyTree
	}
	return tree.removeNode(tree.root.minimum()), nil
}

func (tree *rbTree[K, V, A]) RemoveMax() (RBNode[K, V, A], error) {
	if tree.root == nil {
		return nil, ErrEmptyTree
	}
	return tree.removeNode(tree.root.maximum()), nil
}

// Clear unlinks every node, so nodes retained by a caller do not keep
// the rest of the tree alive.
func (tree *rbTree[K, V, A]) Clear() {
	aux := tree.root
	released := tree.count
	tree.root = nil
	tree.count = 0
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K, V, A], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)
	for len(stack) > 0 {
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.parent, aux.left, aux.right = nil, nil, nil
	}
	tree.logger.Debug("[xrbtree] cleared", zap.Int64("released", released))
}

// Clone deep copies the tree structure. Colors and augmented values are
// copied as they are, nothing is recomputed.
func (tree *rbTree[K, V, A]) Clone() RBTree[K, V, A] {
	dup := &rbTree[K, V, A]{
		cmp:            tree.cmp,
		combine:        tree.combine,
		augEqual:       tree.augEqual,
		logger:         tree.logger,
		count:          tree.count,
		isMultiset:     tree.isMultiset,
		isRmBorrowSucc: tree.isRmBorrowSucc,
	}
	if tree.root == nil {
		return dup
	}

	type pair struct {
		src, dst *rbNode[K, V, A]
	}
	copyNode := func(src, parent *rbNode[K, V, A]) *rbNode[K, V, A] {
		return &rbNode[K, V, A]{
			parent: parent,
			key:    src.key,
			val:    src.val,
			aug:    src.aug,
			color:  src.color,
		}
	}
	dup.root = copyNode(tree.root, nil)
	stack := []pair{{tree.root, dup.root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.src.left != nil {
			top.dst.left = copyNode(top.src.left, top.dst)
			stack = append(stack, pair{top.src.left, top.dst.left})
		}
		if top.src.right != nil {
			top.dst.right = copyNode(top.src.right, top.dst)
			stack = append(stack, pair{top.src.right, top.dst.right})
		}
	}
	tree.logger.Debug("[xrbtree] cloned", zap.Int64("size", tree.count))
	return dup
}

type RBTreeOpt[K, V, A any] func(*rbTree[K, V, A])

// WithMultiset keeps every inserted entry, equal keys included.
func WithMultiset[K, V, A any]() RBTreeOpt[K, V, A] {
	return func(tree *rbTree[K, V, A]) {
		tree.isMultiset = true
	}
}

// WithRemoveBorrowSucc makes the removal of a node with two children
// borrow its successor instead of its predecessor.
func WithRemoveBorrowSucc[K, V, A any]() RBTreeOpt[K, V, A] {
	return func(tree *rbTree[K, V, A]) {
		tree.isRmBorrowSucc = true
	}
}

// WithAugEqual sets how Validate compares augmented values.
// reflect.DeepEqual is used by default.
func WithAugEqual[K, V, A any](equal func(a, b A) bool) RBTreeOpt[K, V, A] {
	return func(tree *rbTree[K, V, A]) {
		if equal != nil {
			tree.augEqual = equal
		}
	}
}

func WithLogger[K, V, A any](logger xlog.XLogger) RBTreeOpt[K, V, A] {
	return func(tree *rbTree[K, V, A]) {
		if logger != nil {
			tree.logger = logger
		}
	}
}

// NewRBTree builds an empty augmented red-black tree ordered by cmp.
func NewRBTree[K, V, A any](
	cmp infra.KeyComparator[K],
	combine Combiner[K, A],
	opts ...RBTreeOpt[K, V, A],
) (RBTree[K, V, A], error) {
	if cmp == nil || combine == nil {
		return nil, ErrConstruction
	}
	tree := &rbTree[K, V, A]{
		cmp:      cmp,
		combine:  combine,
		augEqual: deepEqual[A],
		logger:   xlog.NewNopXLogger(),
	}
	for _, o := range opts {
		o(tree)
	}
	return tree, nil
}

// NoAug is the combiner of trees that need no augmentation.
func NoAug[K any](K, *struct{}, *struct{}) struct{} {
	return struct{}{}
}

// NewOrderedRBTree builds a plain ordered map over a naturally ordered key.
func NewOrderedRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V, struct{}]) RBTree[K, V, struct{}] {
	tree, _ := NewRBTree[K, V, struct{}](infra.NaturalOrder[K](), NoAug[K], opts...)
	return tree
}
