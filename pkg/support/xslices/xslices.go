// Package xslices provides small generic slice helpers, adapted from
// gomlx's pkg/support/xslices for the handful of operations this module
// needs.
package xslices

import "golang.org/x/exp/constraints"

// Max returns the larger of a and b.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Map executes fn for every element of in, returning a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) []Out {
	out := make([]Out, len(in))
	for i, e := range in {
		out[i] = fn(e)
	}
	return out
}
