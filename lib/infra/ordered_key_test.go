package infra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNaturalOrder(t *testing.T) {
	intCmp := NaturalOrder[int]()
	require.Less(t, intCmp(1, 2), int64(0))
	require.Greater(t, intCmp(3, 2), int64(0))
	require.Equal(t, int64(0), intCmp(7, 7))

	floatCmp := NaturalOrder[float64]()
	require.Less(t, floatCmp(math.NaN(), -math.MaxFloat64), int64(0))
	require.Equal(t, int64(0), floatCmp(math.NaN(), math.NaN()))

	strCmp := NaturalOrder[string]()
	require.Less(t, strCmp("abc", "abd"), int64(0))
}

func TestReverseOrder(t *testing.T) {
	rev := ReverseOrder[int64]()
	require.Greater(t, rev(1, 2), int64(0))
	require.Less(t, rev(2, 1), int64(0))
	require.Equal(t, int64(0), rev(3, 3))

	flipped := Reversed(NaturalOrder[int64]())
	require.Greater(t, flipped(1, 2), int64(0))
	require.Nil(t, Reversed[int64](nil))
}

func TestThenBy(t *testing.T) {
	type pair struct {
		a, b int
	}
	byA := func(i, j pair) int64 { return int64(i.a - j.a) }
	byB := func(i, j pair) int64 { return int64(i.b - j.b) }
	c := ThenBy[pair](byA, byB)

	testcases := []struct {
		name     string
		i, j     pair
		expected int
	}{
		{"first decides", pair{1, 9}, pair{2, 0}, -1},
		{"tie falls through", pair{1, 3}, pair{1, 2}, 1},
		{"full tie", pair{4, 4}, pair{4, 4}, 0},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			res := c(tc.i, tc.j)
			switch {
			case tc.expected < 0:
				require.Less(tt, res, int64(0))
			case tc.expected > 0:
				require.Greater(tt, res, int64(0))
			default:
				require.Equal(tt, int64(0), res)
			}
		})
	}
}
