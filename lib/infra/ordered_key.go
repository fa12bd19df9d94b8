package infra

import "cmp"

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// KeyComparator is a three-way comparator over arbitrary keys.
// Assume i is the new key.
//  1. i == j, return 0
//  2. i > j, return a positive number, turn to right part.
//  3. i < j, return a negative number, turn to left part.
type KeyComparator[K any] func(i, j K) int64

// OrderedKeyComparator is the KeyComparator restricted to ordered keys.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

// NaturalOrder returns the ascending comparator of an ordered key.
// NaN sorts before every other float, the same as cmp.Compare.
func NaturalOrder[K OrderedKey]() KeyComparator[K] {
	return func(i, j K) int64 {
		return int64(cmp.Compare(i, j))
	}
}

// ReverseOrder returns the descending comparator of an ordered key.
func ReverseOrder[K OrderedKey]() KeyComparator[K] {
	return func(i, j K) int64 {
		return int64(cmp.Compare(j, i))
	}
}

// Reversed flips an existing comparator.
func Reversed[K any](c KeyComparator[K]) KeyComparator[K] {
	if c == nil {
		return nil
	}
	return func(i, j K) int64 {
		return c(j, i)
	}
}

// ThenBy chains comparators, consulting the next one only on ties.
func ThenBy[K any](first KeyComparator[K], rest ...KeyComparator[K]) KeyComparator[K] {
	return func(i, j K) int64 {
		if res := first(i, j); res != 0 {
			return res
		}
		for _, c := range rest {
			if res := c(i, j); res != 0 {
				return res
			}
		}
		return 0
	}
}
