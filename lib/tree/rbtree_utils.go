package tree

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xindex/lib/infra"
)

func deepEqual[A any](a, b A) bool {
	return reflect.DeepEqual(a, b)
}

func isBlack[K, V, A any](node RBNode[K, V, A]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K, V, A any](node RBNode[K, V, A]) bool {
	return node != nil && node.Color() == Red
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// RedViolationValidate checks that the root is black and that no red node
// has a red child. Inorder traversal.
func RedViolationValidate[K, V, A any](tree RBTree[K, V, A]) error {
	aux := tree.Root()
	if aux == nil {
		return nil
	}
	if isRed(aux) {
		return fmt.Errorf("%w: red root", ErrRedViolation)
	}

	stack := make([]RBNode[K, V, A], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; isRed(aux) {
			if isRed(aux.Left()) || isRed(aux.Right()) {
				return fmt.Errorf("%w: red node %v has a red child", ErrRedViolation, aux.Key())
			}
		}

		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

Each NIL leaf to root black depth are equal.
*/
func BlackViolationValidate[K, V, A any](tree RBTree[K, V, A]) error {
	if _, err := blackHeight(tree.Root()); err != nil {
		return err
	}
	return nil
}

// blackHeight checks every subtree bottom-up with an explicit stack and
// returns the black height of root.
func blackHeight[K, V, A any](root RBNode[K, V, A]) (int, error) {
	if root == nil {
		return 1, nil
	}
	type frame struct {
		node     RBNode[K, V, A]
		expanded bool
	}
	heights := make(map[RBNode[K, V, A]]int, 64)
	height := func(node RBNode[K, V, A]) int {
		if node == nil {
			return 1
		}
		return heights[node]
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !top.expanded {
			stack = append(stack, frame{node: top.node, expanded: true})
			if r := top.node.Right(); r != nil {
				stack = append(stack, frame{node: r})
			}
			if l := top.node.Left(); l != nil {
				stack = append(stack, frame{node: l})
			}
			continue
		}
		l, r := height(top.node.Left()), height(top.node.Right())
		if l != r {
			return 0, fmt.Errorf("%w: node %v has left %d and right %d", ErrBlackViolation, top.node.Key(), l, r)
		}
		if isBlack(top.node) {
			l++
		}
		heights[top.node] = l
	}
	return heights[root], nil
}

// AugViolationValidate checks that every node holds the combination of its
// own key with the augmented values of its children.
func AugViolationValidate[K, V, A any](tree RBTree[K, V, A], combine Combiner[K, A], equal func(a, b A) bool) error {
	if combine == nil {
		return ErrConstruction
	}
	if equal == nil {
		equal = deepEqual[A]
	}
	var err error
	walkPreorder(tree.Root(), func(node RBNode[K, V, A]) bool {
		var l, r *A
		if left := node.Left(); left != nil {
			la := left.Aug()
			l = &la
		}
		if right := node.Right(); right != nil {
			ra := right.Aug()
			r = &ra
		}
		if expected := combine(node.Key(), l, r); !equal(expected, node.Aug()) {
			err = fmt.Errorf("%w: node %v holds %v, expected %v", ErrAugViolation, node.Key(), node.Aug(), expected)
			return false
		}
		return true
	})
	return err
}

// OrderViolationValidate checks the in-order key sequence. Equal
// neighbours are only legal in a multiset.
func OrderViolationValidate[K, V, A any](tree RBTree[K, V, A]) error {
	var (
		prev    K
		hasPrev bool
		err     error
		cmp     = tree.Comparator()
	)
	tree.Foreach(func(idx int64, color RBColor, key K, val V) bool {
		if hasPrev {
			res := cmp(prev, key)
			if res > 0 || (res == 0 && !tree.IsMultiset()) {
				err = fmt.Errorf("%w: %v before %v at %d", ErrOrderViolation, prev, key, idx)
				return false
			}
		}
		prev, hasPrev = key, true
		return true
	})
	return err
}

// LinkViolationValidate checks parent links and the element count.
func LinkViolationValidate[K, V, A any](tree RBTree[K, V, A]) error {
	root := tree.Root()
	if root != nil && root.Parent() != nil {
		return fmt.Errorf("%w: root has a parent", ErrLinkViolation)
	}
	var (
		n   int64
		err error
	)
	walkPreorder(root, func(node RBNode[K, V, A]) bool {
		n++
		if l := node.Left(); l != nil && l.Parent() != node {
			err = fmt.Errorf("%w: left child of %v", ErrLinkViolation, node.Key())
			return false
		}
		if r := node.Right(); r != nil && r.Parent() != node {
			err = fmt.Errorf("%w: right child of %v", ErrLinkViolation, node.Key())
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if n != tree.Len() {
		return fmt.Errorf("%w: counted %d, recorded %d", ErrCountViolation, n, tree.Len())
	}
	return nil
}

func walkPreorder[K, V, A any](root RBNode[K, V, A], visit func(RBNode[K, V, A]) bool) {
	if root == nil {
		return
	}
	stack := []RBNode[K, V, A]{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(node) {
			return
		}
		if r := node.Right(); r != nil {
			stack = append(stack, r)
		}
		if l := node.Left(); l != nil {
			stack = append(stack, l)
		}
	}
}

func (tree *rbTree[K, V, A]) validators() []func() error {
	return []func() error{
		func() error { return LinkViolationValidate[K, V, A](tree) },
		func() error { return OrderViolationValidate[K, V, A](tree) },
		func() error { return RedViolationValidate[K, V, A](tree) },
		func() error { return BlackViolationValidate[K, V, A](tree) },
		func() error { return AugViolationValidate[K, V, A](tree, tree.combine, tree.augEqual) },
	}
}

// Validate returns the first broken invariant.
func (tree *rbTree[K, V, A]) Validate() error {
	for _, validate := range tree.validators() {
		if err := validate(); err != nil {
			err = infra.WrapErrorStack(err)
			tree.logger.ErrorStack(err, "[xrbtree] invariant violation")
			return err
		}
	}
	return nil
}

// ValidateAll returns every broken invariant merged into one error.
func (tree *rbTree[K, V, A]) ValidateAll() error {
	var merr error
	for _, validate := range tree.validators() {
		merr = multierr.Append(merr, validate())
	}
	if merr != nil {
		tree.logger.Error(merr, "[xrbtree] invariant violations",
			zap.Int("violations", len(multierr.Errors(merr))),
		)
	}
	return merr
}
