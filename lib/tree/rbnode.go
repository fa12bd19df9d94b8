package tree

var _ RBNode[int, int, struct{}] = (*rbNode[int, int, struct{}])(nil)

type rbNode[K, V, A any] struct {
	parent *rbNode[K, V, A]
	left   *rbNode[K, V, A]
	right  *rbNode[K, V, A]
	key    K
	val    V
	aug    A
	color  RBColor
}

func (node *rbNode[K, V, A]) Key() K {
	return node.key
}

func (node *rbNode[K, V, A]) Val() V {
	return node.val
}

func (node *rbNode[K, V, A]) Aug() A {
	return node.aug
}

func (node *rbNode[K, V, A]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V, A]) Left() RBNode[K, V, A] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V, A]) Right() RBNode[K, V, A] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[K, V, A]) Parent() RBNode[K, V, A] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

// A nil node is a NIL leaf and counts as black.
func (node *rbNode[K, V, A]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V, A]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V, A]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K, V, A]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[xrbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K, V, A]) sibling() *rbNode[K, V, A] {
	switch node.Direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *rbNode[K, V, A]) uncle() *rbNode[K, V, A] {
	return node.parent.sibling()
}

func (node *rbNode[K, V, A]) grandpa() *rbNode[K, V, A] {
	return node.parent.parent
}

func (node *rbNode[K, V, A]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[K, V, A]) minimum() *rbNode[K, V, A] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K, V, A]) maximum() *rbNode[K, V, A] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
func (node *rbNode[K, V, A]) pred() *rbNode[K, V, A] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *rbNode[K, V, A]) succ() *rbNode[K, V, A] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

// detach copies the entry of a node that is about to leave the tree.
func (node *rbNode[K, V, A]) detach() *rbNode[K, V, A] {
	return &rbNode[K, V, A]{
		key:   node.key,
		val:   node.val,
		aug:   node.aug,
		color: node.color,
	}
}
