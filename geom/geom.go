// Package geom provides the value types shared by the compositor
// core: generic rectangles and points, edge sets, damage regions,
// output transforms and colors.
package geom

import "golang.org/x/exp/constraints"

// Scalar is a constraint for the types that geom types and functions
// can handle.
type Scalar interface {
	constraints.Integer | constraints.Float
}

func clamp[T Scalar](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp returns v limited to the range [lo, hi].
func Clamp[T Scalar](v, lo, hi T) T {
	return clamp(v, lo, hi)
}
