package tree

import (
	"iter"
)

func (tree *rbTree[K, V, A]) Get(key K) (V, bool) {
	if node := tree.lowerBound(key); node != nil {
		return node.val, true
	}
	var zero V
	return zero, false
}

func (tree *rbTree[K, V, A]) Contains(key K) bool {
	return tree.lowerBound(key) != nil
}

// Count returns how many entries are equal to key.
// It is at most 1 in map mode.
func (tree *rbTree[K, V, A]) Count(key K) int64 {
	n := int64(0)
	for aux := tree.lowerBound(key); aux != nil && tree.cmp(key, aux.key) == 0; aux = aux.succ() {
		n++
	}
	return n
}

func (tree *rbTree[K, V, A]) First() (RBNode[K, V, A], error) {
	if tree.root == nil {
		return nil, ErrEmptyTree
	}
	return tree.root.minimum(), nil
}

func (tree *rbTree[K, V, A]) Last() (RBNode[K, V, A], error) {
	if tree.root == nil {
		return nil, ErrEmptyTree
	}
	return tree.root.maximum(), nil
}

func wrapNode[K, V, A any](node *rbNode[K, V, A]) (RBNode[K, V, A], bool) {
	if node == nil {
		return nil, false
	}
	return node, true
}

// floor is the rightmost node whose key is not greater than key.
// With strict set, it is the rightmost node whose key is less than key.
func (tree *rbTree[K, V, A]) floor(key K, strict bool) *rbNode[K, V, A] {
	var found *rbNode[K, V, A]
	for aux := tree.root; aux != nil; {
		res := tree.cmp(aux.key, key)
		if res < 0 || (res == 0 && !strict) {
			found = aux
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return found
}

// ceiling is the leftmost node whose key is not less than key.
// With strict set, it is the leftmost node whose key is greater than key.
func (tree *rbTree[K, V, A]) ceiling(key K, strict bool) *rbNode[K, V, A] {
	var found *rbNode[K, V, A]
	for aux := tree.root; aux != nil; {
		res := tree.cmp(aux.key, key)
		if res > 0 || (res == 0 && !strict) {
			found = aux
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return found
}

func (tree *rbTree[K, V, A]) Floor(key K) (RBNode[K, V, A], bool) {
	return wrapNode(tree.floor(key, false))
}

func (tree *rbTree[K, V, A]) Ceiling(key K) (RBNode[K, V, A], bool) {
	return wrapNode(tree.ceiling(key, false))
}

func (tree *rbTree[K, V, A]) Lower(key K) (RBNode[K, V, A], bool) {
	return wrapNode(tree.floor(key, true))
}

func (tree *rbTree[K, V, A]) Higher(key K) (RBNode[K, V, A], bool) {
	return wrapNode(tree.ceiling(key, true))
}

// SearchFirst returns the leftmost node whose key satisfies pred.
// The predicate must be monotone in key order: false for a prefix of the
// keys and true for the rest.
func (tree *rbTree[K, V, A]) SearchFirst(pred func(key K) bool) (RBNode[K, V, A], bool) {
	var found *rbNode[K, V, A]
	for aux := tree.root; aux != nil; {
		if pred(aux.key) {
			found = aux
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return wrapNode(found)
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K, V, A]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	aux := tree.root
	if tree.count <= 0 || aux == nil {
		return
	}

	stack := make([]*rbNode[K, V, A], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (tree *rbTree[K, V, A]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		tree.Foreach(func(_ int64, _ RBColor, key K, val V) bool {
			return yield(key, val)
		})
	}
}

func visitAll[K, V, A any](RBNode[K, V, A]) Decision {
	return VisitAll
}

func (tree *rbTree[K, V, A]) Ascend() *Seq[K, V, A] {
	return NewSeq[K, V, A](tree.Root(), visitAll[K, V, A], false)
}

func (tree *rbTree[K, V, A]) Descend() *Seq[K, V, A] {
	return NewSeq[K, V, A](tree.Root(), visitAll[K, V, A], true)
}

// Scan starts a lazy pruned walk over the tree, descending when desc is set.
func (tree *rbTree[K, V, A]) Scan(prune PruneFunc[K, V, A], desc ...bool) *Seq[K, V, A] {
	return NewSeq[K, V, A](tree.Root(), prune, len(desc) > 0 && desc[0])
}
