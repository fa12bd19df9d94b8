package tree

import (
	"math/bits"
	randv2 "math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xindex/lib/infra"
)

// subtreeHeight depends on the shape, not only on the keys below a node, so
// it changes at the top of a rotated subtree.
func subtreeHeight(_ int, left, right *int) int {
	h := 0
	if left != nil {
		h = *left
	}
	if right != nil {
		h = max(h, *right)
	}
	return h + 1
}

func newHeightTree(t *testing.T, opts ...RBTreeOpt[int, int, int]) *rbTree[int, int, int] {
	t.Helper()
	tree, err := NewRBTree[int, int, int](infra.NaturalOrder[int](), subtreeHeight, opts...)
	require.NoError(t, err)
	return tree.(*rbTree[int, int, int])
}

func walkHeight(node *rbNode[int, int, int]) int {
	if node == nil {
		return 0
	}
	return 1 + max(walkHeight(node.left), walkHeight(node.right))
}

func requireHeight(t *testing.T, tree *rbTree[int, int, int]) {
	t.Helper()
	require.NoError(t, tree.Validate())
	aug, ok := tree.RootAug()
	if tree.IsEmpty() {
		require.False(t, ok)
		return
	}
	require.True(t, ok)
	require.Equal(t, walkHeight(tree.root), aug)
	require.LessOrEqual(t, aug, 2*bits.Len64(uint64(tree.Len()+1)))
}

func TestRbtreeShapeAug_Sequential(t *testing.T) {
	type testcase struct {
		name  string
		total int
		opts  []RBTreeOpt[int, int, int]
		desc  bool
	}
	testcases := []testcase{
		{name: "ascending", total: 64},
		{name: "descending", total: 64, desc: true},
		{name: "ascending borrow succ", total: 257, opts: []RBTreeOpt[int, int, int]{WithRemoveBorrowSucc[int, int, int]()}},
		{name: "multiset", total: 128, opts: []RBTreeOpt[int, int, int]{WithMultiset[int, int, int]()}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := newHeightTree(tt, tc.opts...)
			for i := 0; i < tc.total; i++ {
				key := i
				if tc.desc {
					key = tc.total - i
				}
				tree.Insert(key%50, i)
				requireHeight(tt, tree)
			}
			for !tree.IsEmpty() {
				root := tree.Root().Key()
				_, err := tree.Remove(root)
				require.NoError(tt, err)
				requireHeight(tt, tree)
				if tree.IsEmpty() {
					break
				}
				_, err = tree.RemoveMin()
				require.NoError(tt, err)
				requireHeight(tt, tree)
			}
		})
	}
}

func TestRbtreeShapeAug_RandomChurn(t *testing.T) {
	type testcase struct {
		name string
		opts []RBTreeOpt[int, int, int]
	}
	testcases := []testcase{
		{name: "map"},
		{name: "map borrow succ", opts: []RBTreeOpt[int, int, int]{WithRemoveBorrowSucc[int, int, int]()}},
		{name: "multiset", opts: []RBTreeOpt[int, int, int]{WithMultiset[int, int, int]()}},
		{name: "multiset borrow succ", opts: []RBTreeOpt[int, int, int]{
			WithMultiset[int, int, int](),
			WithRemoveBorrowSucc[int, int, int](),
		}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := newHeightTree(tt, tc.opts...)
			shadow := make([]int, 0, 512)
			for op := 0; op < 1500; op++ {
				if len(shadow) == 0 || randv2.IntN(10) < 6 {
					key := randv2.IntN(300)
					if _, replaced := tree.Insert(key, op); !replaced {
						shadow = append(shadow, key)
					}
				} else {
					i := randv2.IntN(len(shadow))
					_, err := tree.Remove(shadow[i])
					require.NoError(tt, err)
					shadow = slices.Delete(shadow, i, i+1)
				}
				require.Equal(tt, int64(len(shadow)), tree.Len())
				requireHeight(tt, tree)
			}
			_, err := tree.Remove(-1)
			require.ErrorIs(tt, err, ErrElementNotFound)
			requireHeight(tt, tree)
		})
	}
}

func TestRbtreeShapeAug_Validate(t *testing.T) {
	tree := newHeightTree(t)
	for i := 0; i < 100; i++ {
		tree.Insert(i, i)
	}
	requireHeight(t, tree)
	require.NoError(t, AugViolationValidate[int, int, int](tree, subtreeHeight, nil))
	require.ErrorIs(t, AugViolationValidate[int, int, int](tree, nil, nil), ErrConstruction)

	// A wrong combiner is caught even though the tree itself is sound.
	sizeOf := func(_ int, l, r *int) int {
		n := 1
		if l != nil {
			n += *l
		}
		if r != nil {
			n += *r
		}
		return n
	}
	require.ErrorIs(t, AugViolationValidate[int, int, int](tree, sizeOf, nil), ErrAugViolation)

	leaf := tree.root.minimum()
	leaf.aug += 5
	err := tree.Validate()
	require.ErrorIs(t, err, ErrAugViolation)
	require.ErrorIs(t, err, ErrInvariantViolation)
	require.ErrorIs(t, tree.ValidateAll(), ErrAugViolation)
	require.ErrorIs(t, AugViolationValidate[int, int, int](tree, subtreeHeight, nil), ErrAugViolation)

	// The root holds the height of the whole tree.
	leaf.aug -= 5
	require.NoError(t, tree.Validate())
	tree.root.aug++
	require.ErrorIs(t, tree.Validate(), ErrAugViolation)

	// The configured equality decides what counts as a violation.
	lenient := newHeightTree(t, WithAugEqual[int, int, int](func(a, b int) bool { return true }))
	for i := 0; i < 100; i++ {
		lenient.Insert(i, i)
	}
	lenient.root.minimum().aug += 5
	require.NoError(t, lenient.Validate())
	require.ErrorIs(t, AugViolationValidate[int, int, int](lenient, subtreeHeight, nil), ErrAugViolation)

	clone := tree.Clone()
	require.ErrorIs(t, clone.Validate(), ErrAugViolation)
	tree.Clear()
	requireHeight(t, tree)
}
