package tree

import (
	randv2 "math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xindex/lib/id"
	"github.com/benz9527/xindex/lib/infra"
)

// subtreeSum augments every node with the sum of the keys below it.
func subtreeSum(key uint64, left, right *uint64) uint64 {
	sum := key
	if left != nil {
		sum += *left
	}
	if right != nil {
		sum += *right
	}
	return sum
}

func newSumTree(t testing.TB, opts ...RBTreeOpt[uint64, uint64, uint64]) *rbTree[uint64, uint64, uint64] {
	tree, err := NewRBTree[uint64, uint64, uint64](infra.NaturalOrder[uint64](), subtreeSum, opts...)
	require.NoError(t, err)
	return tree.(*rbTree[uint64, uint64, uint64])
}

type checkData struct {
	color RBColor
	key   uint64
}

func requireShape(t *testing.T, tree *rbTree[uint64, uint64, uint64], expected []checkData) {
	t.Helper()
	require.Equal(t, int64(len(expected)), tree.Len())
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, expected[idx].color, color)
		require.Equal(t, expected[idx].key, key)
		return true
	})
	require.NoError(t, RedViolationValidate[uint64, uint64, uint64](tree))
	require.NoError(t, BlackViolationValidate[uint64, uint64, uint64](tree))
	require.NoError(t, tree.Validate())
	sum := uint64(0)
	for _, c := range expected {
		sum += c.key
	}
	if aug, ok := tree.RootAug(); ok {
		require.Equal(t, sum, aug)
	}
}

func TestNilNode(t *testing.T) {
	var nilNode RBNode[uint64, uint64, uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *rbNode[uint64, uint64, uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode)
	require.Nil(t, nilNode2.Left())
	require.True(t, nilNode2.isBlack())
}

func TestNewRBTree_Construction(t *testing.T) {
	_, err := NewRBTree[int, int, int](nil, func(int, *int, *int) int { return 0 })
	require.ErrorIs(t, err, ErrConstruction)
	_, err = NewRBTree[int, int, int](infra.NaturalOrder[int](), nil)
	require.ErrorIs(t, err, ErrConstruction)

	tree := NewOrderedRBTree[string, int]()
	require.True(t, tree.IsEmpty())
	require.False(t, tree.IsMultiset())
	_, ok := tree.RootAug()
	require.False(t, ok)
	require.Equal(t, "Black", Black.String())
	require.Equal(t, "Red", Red.String())
	require.Equal(t, "Left", Left.String())
	require.Equal(t, "Root", Root.String())
	require.Equal(t, "Right", Right.String())
}

func TestRbtreeLeftAndRightRotate_Pred(t *testing.T) {
	tree := newSumTree(t)

	tree.Insert(52, 1)
	requireShape(t, tree, []checkData{{Black, 52}})

	tree.Insert(47, 1)
	requireShape(t, tree, []checkData{{Red, 47}, {Black, 52}})

	tree.Insert(3, 1)
	requireShape(t, tree, []checkData{{Red, 3}, {Black, 47}, {Red, 52}})

	tree.Insert(35, 1)
	requireShape(t, tree, []checkData{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}})

	tree.Insert(24, 1)
	requireShape(t, tree, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

	// remove

	x, err := tree.Remove(24)
	require.NoError(t, err)
	require.Equal(t, uint64(24), x.Key())
	requireShape(t, tree, []checkData{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}})

	x, err = tree.Remove(47)
	require.NoError(t, err)
	require.Equal(t, uint64(47), x.Key())
	requireShape(t, tree, []checkData{{Black, 3}, {Black, 35}, {Black, 52}})

	x, err = tree.Remove(52)
	require.NoError(t, err)
	require.Equal(t, uint64(52), x.Key())
	requireShape(t, tree, []checkData{{Red, 3}, {Black, 35}})

	x, err = tree.Remove(3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), x.Key())
	requireShape(t, tree, []checkData{{Black, 35}})

	x, err = tree.Remove(35)
	require.NoError(t, err)
	require.Equal(t, uint64(35), x.Key())
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())

	_, err = tree.Remove(35)
	require.ErrorIs(t, err, ErrElementNotFound)
}

func TestRbtree_RemoveMin(t *testing.T) {
	tree := newSumTree(t)

	for _, key := range []uint64{52, 47, 3, 35, 24} {
		tree.Insert(key, 1)
	}
	requireShape(t, tree, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

	// remove min

	x, err := tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(3), x.Key())
	requireShape(t, tree, []checkData{{Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

	x, err = tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(24), x.Key())
	requireShape(t, tree, []checkData{{Black, 35}, {Black, 47}, {Black, 52}})

	x, err = tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(35), x.Key())
	requireShape(t, tree, []checkData{{Black, 47}, {Red, 52}})

	x, err = tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(47), x.Key())
	requireShape(t, tree, []checkData{{Black, 52}})

	x, err = tree.RemoveMax()
	require.NoError(t, err)
	require.Equal(t, uint64(52), x.Key())
	require.Equal(t, int64(0), tree.Len())

	_, err = tree.RemoveMin()
	require.ErrorIs(t, err, ErrEmptyTree)
	_, err = tree.RemoveMax()
	require.ErrorIs(t, err, ErrEmptyTree)
}

func TestRbtree_MapModeReplace(t *testing.T) {
	tree := newSumTree(t)
	prev, replaced := tree.Insert(7, 70)
	require.False(t, replaced)
	require.Equal(t, uint64(0), prev)

	prev, replaced = tree.Insert(7, 71)
	require.True(t, replaced)
	require.Equal(t, uint64(70), prev)
	require.Equal(t, int64(1), tree.Len())

	val, ok := tree.Get(7)
	require.True(t, ok)
	require.Equal(t, uint64(71), val)

	require.ErrorIs(t, tree.InsertIfAbsent(7, 72), ErrReplaceDisabled)
	require.NoError(t, tree.InsertIfAbsent(8, 80))
	val, _ = tree.Get(7)
	require.Equal(t, uint64(71), val)
	require.Equal(t, int64(1), tree.Count(7))
	require.NoError(t, tree.Validate())
}

func TestRbtree_Multiset(t *testing.T) {
	tree := newSumTree(t, WithMultiset[uint64, uint64, uint64]())
	require.True(t, tree.IsMultiset())
	for i := uint64(0); i < 50; i++ {
		tree.Insert(i%5, i)
		require.NoError(t, tree.Validate())
	}
	require.Equal(t, int64(50), tree.Len())
	require.Equal(t, int64(10), tree.Count(3))

	// Equal keys keep insertion order.
	vals := make([]uint64, 0, 10)
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		if key == 2 {
			vals = append(vals, val)
		}
		return true
	})
	require.Equal(t, []uint64{2, 7, 12, 17, 22, 27, 32, 37, 42, 47}, vals)

	// Remove takes the first inserted of the equal keys.
	x, err := tree.Remove(2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), x.Val())
	x, err = tree.RemoveIf(2, func(key uint64, val uint64) bool {
		return val == 32
	})
	require.NoError(t, err)
	require.Equal(t, uint64(32), x.Val())
	_, err = tree.RemoveIf(2, func(key uint64, val uint64) bool {
		return val == 32
	})
	require.ErrorIs(t, err, ErrElementNotFound)
	require.Equal(t, int64(8), tree.Count(2))
	val, ok := tree.Get(2)
	require.True(t, ok)
	require.Equal(t, uint64(7), val)
	require.NoError(t, tree.Validate())

	// InsertIfAbsent refuses a duplicate even in a multiset.
	require.ErrorIs(t, tree.InsertIfAbsent(2, 99), ErrReplaceDisabled)
	require.Equal(t, int64(8), tree.Count(2))
	require.NoError(t, tree.InsertIfAbsent(5, 55))
	require.Equal(t, int64(1), tree.Count(5))
	_, err = tree.Remove(5)
	require.NoError(t, err)

	aug, ok := tree.RootAug()
	require.True(t, ok)
	require.Equal(t, uint64(10*(0+1+2+3+4)-2*2), aug)
}

func rbtreeRandomInsertAndRemoveSequentialNumberRunCore(t *testing.T, rbRmBySucc bool) {
	total := uint64(1000)
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	var opts []RBTreeOpt[uint64, uint64, uint64]
	if rbRmBySucc {
		opts = append(opts, WithRemoveBorrowSucc[uint64, uint64, uint64]())
	}
	tree := newSumTree(t, opts...)

	for i := uint64(0); i < insertTotal+removeTotal; i++ {
		tree.Insert(i, 1)
		require.NoError(t, tree.Validate())
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		x, err := tree.Remove(i)
		require.NoError(t, err)
		require.Equal(t, i, x.Key())
		require.NoError(t, tree.Validate())
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
	aug, _ := tree.RootAug()
	require.Equal(t, insertTotal*(insertTotal-1)/2, aug)
}

func TestRbtreeRandomInsertAndRemove_SequentialNumber(t *testing.T) {
	type testcase struct {
		name       string
		rbRmBySucc bool
	}
	testcases := []testcase{
		{
			name: "rm by pred",
		},
		{
			name:       "rm by succ",
			rbRmBySucc: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveSequentialNumberRunCore(tt, tc.rbRmBySucc)
		})
	}
}

func TestRBTreeRandomInsertAndRemove_SequentialNumber_Clear(t *testing.T) {
	insertTotal := uint64(100_000)
	tree := newSumTree(t)

	rand := uint64(randv2.Uint32() % 1_000)
	for i := uint64(0); i < insertTotal; i++ {
		tree.Insert(i, 1)
		if i%1000 == rand {
			require.NoError(t, RedViolationValidate[uint64, uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64, uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
	root := tree.root
	tree.Clear()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.Nil(t, root.left)
	require.Nil(t, root.right)

	// Clear then rebuild gives the same observable tree.
	for i := uint64(0); i < 1000; i++ {
		tree.Insert(i, 1)
	}
	require.NoError(t, tree.Validate())
	require.Equal(t, int64(1000), tree.Len())
}

func TestRbtreeRandomInsertAndRemove_ReverseOrder(t *testing.T) {
	total := int64(10000)
	insertTotal := int64(float64(total) * 0.8)
	removeTotal := int64(float64(total) * 0.2)

	tree, err := NewRBTree[int64, uint64, struct{}](infra.ReverseOrder[int64](), NoAug[int64])
	require.NoError(t, err)

	rand := int64(randv2.Uint32() % 1_000)
	for i := insertTotal - 1; i >= 0; i-- {
		tree.Insert(i, 1)
		if i%1000 == rand {
			require.NoError(t, tree.Validate())
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, insertTotal-1-idx, key)
		return true
	})

	for i := removeTotal + insertTotal - 1; i >= insertTotal; i-- {
		tree.Insert(i, 1)
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, removeTotal+insertTotal-1-idx, key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		if i == insertTotal+92 {
			x, ok := tree.Floor(i)
			require.True(t, ok)
			require.Equal(t, insertTotal+92, x.Key())
		}
		x, err := tree.Remove(i)
		require.NoError(t, err)
		require.Equal(t, i, x.Key())
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, insertTotal-1-idx, key)
		return true
	})
	require.NoError(t, tree.Validate())
}

func rbtreeRandomInsertAndRemove_RandomMonoNumberRunCore(t *testing.T, total uint64, rbRmBySucc bool, violationCheck bool) {
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	idGen := id.MonotonicNonZeroID()
	insertElements := make([]uint64, 0, insertTotal)
	removeElements := make([]uint64, 0, removeTotal)

	ignore := uint32(0)

	for {
		num := idGen.Number()
		if ignore > 0 {
			ignore--
			continue
		}
		ignore = randv2.Uint32() % 100
		if ignore&0x1 == 0 && uint64(len(insertElements)) < insertTotal {
			insertElements = append(insertElements, num)
		} else if ignore&0x1 == 1 && uint64(len(removeElements)) < removeTotal {
			removeElements = append(removeElements, num)
		}
		if uint64(len(insertElements)) == insertTotal && uint64(len(removeElements)) == removeTotal {
			break
		}
	}

	randv2.Shuffle(len(insertElements), func(i, j int) {
		insertElements[i], insertElements[j] = insertElements[j], insertElements[i]
	})
	randv2.Shuffle(len(removeElements), func(i, j int) {
		removeElements[i], removeElements[j] = removeElements[j], removeElements[i]
	})

	var opts []RBTreeOpt[uint64, uint64, uint64]
	if rbRmBySucc {
		opts = append(opts, WithRemoveBorrowSucc[uint64, uint64, uint64]())
	}
	tree := newSumTree(t, opts...)

	for i := uint64(0); i < insertTotal; i++ {
		tree.Insert(insertElements[i], i)
		if violationCheck {
			require.NoError(t, tree.Validate())
		}
	}
	slices.Sort(insertElements)
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, insertElements[idx], key)
		return true
	})

	for i := uint64(0); i < removeTotal; i++ {
		tree.Insert(removeElements[i], 1)
		if violationCheck {
			require.NoError(t, tree.Validate())
		}
	}
	require.NoError(t, tree.Validate())

	for i := uint64(0); i < removeTotal; i++ {
		x, err := tree.Remove(removeElements[i])
		require.NoError(t, err)
		require.Equalf(t, removeElements[i], x.Key(), "value exp: %d, real: %d\n", removeElements[i], x.Key())
		if violationCheck {
			require.NoError(t, tree.Validate())
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, insertElements[idx], key)
		return true
	})
	require.NoError(t, tree.ValidateAll())
}

func TestRbtreeRandomInsertAndRemove_RandomMonotonicNumber(t *testing.T) {
	type testcase struct {
		name           string
		rbRmBySucc     bool
		total          uint64
		violationCheck bool
	}
	testcases := []testcase{
		{
			name:  "rm by pred 100000",
			total: 100000,
		},
		{
			name:       "rm by succ 100000",
			rbRmBySucc: true,
			total:      100000,
		},
		{
			name:           "violation check rm by pred 2000",
			total:          2000,
			violationCheck: true,
		},
		{
			name:           "violation check rm by succ 2000",
			rbRmBySucc:     true,
			total:          2000,
			violationCheck: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemove_RandomMonoNumberRunCore(tt, tc.total, tc.rbRmBySucc, tc.violationCheck)
		})
	}
}

func TestRbtree_RandomMultisetChurn(t *testing.T) {
	tree := newSumTree(t, WithMultiset[uint64, uint64, uint64]())
	shadow := make([]uint64, 0, 2048)
	for round := 0; round < 4000; round++ {
		key := randv2.Uint64N(64)
		if randv2.IntN(3) == 0 && len(shadow) > 0 {
			_, err := tree.Remove(key)
			if idx := slices.Index(shadow, key); idx >= 0 {
				require.NoError(t, err)
				shadow = slices.Delete(shadow, idx, idx+1)
			} else {
				require.ErrorIs(t, err, ErrElementNotFound)
			}
		} else {
			tree.Insert(key, uint64(round))
			shadow = append(shadow, key)
		}
		if round%100 == 0 {
			require.NoError(t, tree.Validate())
		}
	}
	require.NoError(t, tree.ValidateAll())
	slices.Sort(shadow)
	keys := make([]uint64, 0, len(shadow))
	for key := range tree.All() {
		keys = append(keys, key)
	}
	require.Equal(t, shadow, keys)
}

func TestRbtree_Clone(t *testing.T) {
	tree := newSumTree(t)
	for i := uint64(0); i < 200; i++ {
		tree.Insert(i*3, i)
	}
	dup := tree.Clone()
	require.NoError(t, dup.Validate())
	require.Equal(t, tree.Len(), dup.Len())

	_, err := tree.Remove(3)
	require.NoError(t, err)
	require.True(t, dup.Contains(3))
	require.False(t, tree.Contains(3))

	a1, _ := tree.RootAug()
	a2, _ := dup.RootAug()
	require.Equal(t, a1+3, a2)

	empty := newSumTree(t).Clone()
	require.True(t, empty.IsEmpty())
}

func TestRbtree_ValidateDetectsCorruption(t *testing.T) {
	tree := newSumTree(t)
	for i := uint64(1); i <= 31; i++ {
		tree.Insert(i, i)
	}
	require.NoError(t, tree.Validate())

	tree.root.aug++
	err := tree.Validate()
	require.ErrorIs(t, err, ErrAugViolation)
	require.ErrorIs(t, err, ErrInvariantViolation)
	tree.root.aug--

	tree.root.color = Red
	require.ErrorIs(t, tree.Validate(), ErrRedViolation)
	tree.root.color = Black

	tree.count++
	require.ErrorIs(t, tree.Validate(), ErrCountViolation)

	tree.root.left.aug = 0
	err = tree.ValidateAll()
	require.ErrorIs(t, err, ErrCountViolation)
	require.ErrorIs(t, err, ErrAugViolation)
}

func BenchmarkRBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := newSumTree(b)

	rngArr := make([]uint64, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Uint64())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rngArr[i], rngArr[i])
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	b.StopTimer()
	tree := newSumTree(b)

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(uint64(i), uint64(i))
	}
}
