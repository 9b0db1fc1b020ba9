package geom

import (
	"image"
	"math"
)

// A Rect contains the points with Min.X <= X < Max.X, Min.Y <= Y <
// Max.Y. It is well-formed if Min.X <= Max.X and likewise for Y.
//
// Arrangement code builds rectangles from a position and a size with
// XYWH, which does not canonicalize, so a negative size survives until
// it is checked.
type Rect[T Scalar] struct {
	Min, Max Point[T]
}

// Rt is shorthand for Rect{Pt(x0, y0), Pt(x1, y1)}. The returned
// rectangle has minimum and maximum coordinates swapped if necessary
// so that it is well-formed.
func Rt[T Scalar](x0, y0, x1, y1 T) Rect[T] {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Rect[T]{Point[T]{x0, y0}, Point[T]{x1, y1}}
}

// XYWH returns the rectangle at (x, y) with the given width and
// height. Unlike Rt, negative dimensions are kept.
func XYWH[T Scalar](x, y, w, h T) Rect[T] {
	return Rect[T]{Point[T]{x, y}, Point[T]{x + w, y + h}}
}

func FromImageRect(r image.Rectangle) Rect[int] {
	return Rect[int]{
		Min: FromImagePoint(r.Min),
		Max: FromImagePoint(r.Max),
	}
}

// RConv converts a Rect[In] to a Rect[Out] with possible loss of precision.
func RConv[Out Scalar, In Scalar](r Rect[In]) Rect[Out] {
	return Rect[Out]{
		Min: PConv[Out](r.Min),
		Max: PConv[Out](r.Max),
	}
}

func (r Rect[T]) Dx() T {
	return r.Max.X - r.Min.X
}

func (r Rect[T]) Dy() T {
	return r.Max.Y - r.Min.Y
}

func (r Rect[T]) Size() Point[T] {
	return Point[T]{
		r.Max.X - r.Min.X,
		r.Max.Y - r.Min.Y,
	}
}

func (r Rect[T]) Add(p Point[T]) Rect[T] {
	return Rect[T]{r.Min.Add(p), r.Max.Add(p)}
}

func (r Rect[T]) Sub(p Point[T]) Rect[T] {
	return Rect[T]{r.Min.Sub(p), r.Max.Sub(p)}
}

// Inset shrinks r by n on every side. A negative n grows it.
func (r Rect[T]) Inset(n T) Rect[T] {
	if r.Dx() < 2*n {
		r.Min.X = (r.Min.X + r.Max.X) / 2
		r.Max.X = r.Min.X
	} else {
		r.Min.X += n
		r.Max.X -= n
	}
	if r.Dy() < 2*n {
		r.Min.Y = (r.Min.Y + r.Max.Y) / 2
		r.Max.Y = r.Min.Y
	} else {
		r.Min.Y += n
		r.Max.Y -= n
	}
	return r
}

func (r Rect[T]) Intersect(s Rect[T]) Rect[T] {
	r.Min.X = max(r.Min.X, s.Min.X)
	r.Min.Y = max(r.Min.Y, s.Min.Y)
	r.Max.X = min(r.Max.X, s.Max.X)
	r.Max.Y = min(r.Max.Y, s.Max.Y)
	if r.Empty() {
		return Rect[T]{}
	}
	return r
}

func (r Rect[T]) Union(s Rect[T]) Rect[T] {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	r.Min.X = min(r.Min.X, s.Min.X)
	r.Min.Y = min(r.Min.Y, s.Min.Y)
	r.Max.X = max(r.Max.X, s.Max.X)
	r.Max.Y = max(r.Max.Y, s.Max.Y)
	return r
}

func (r Rect[T]) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

func (r Rect[T]) Eq(s Rect[T]) bool {
	return r == s || r.Empty() && s.Empty()
}

func (r Rect[T]) Overlaps(s Rect[T]) bool {
	return !r.Empty() && !s.Empty() &&
		r.Min.X < s.Max.X && s.Min.X < r.Max.X &&
		r.Min.Y < s.Max.Y && s.Min.Y < r.Max.Y
}

// In reports whether every point in r is also in s.
func (r Rect[T]) In(s Rect[T]) bool {
	if r.Empty() {
		return true
	}
	return s.Min.X <= r.Min.X && r.Max.X <= s.Max.X &&
		s.Min.Y <= r.Min.Y && r.Max.Y <= s.Max.Y
}

func (r Rect[T]) Canon() Rect[T] {
	if r.Max.X < r.Min.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Max.Y < r.Min.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Center returns the point at the middle of r.
func (r Rect[T]) Center() Point[T] {
	return r.Min.Add(r.Max).Div(2)
}

// CenterAt returns a new rectangle with the same dimensions as r but
// with a center point at p.
func (r Rect[T]) CenterAt(p Point[T]) Rect[T] {
	hs := r.Size().Div(2)
	return Rect[T]{Min: p.Sub(hs), Max: p.Sub(hs).Add(r.Size())}
}

func (r Rect[T]) Resize(size Point[T]) Rect[T] {
	return Rect[T]{Min: r.Min, Max: r.Min.Add(size)}
}

func (r Rect[T]) IsZero() bool {
	return r.Min.IsZero() && r.Max.IsZero()
}

func (r Rect[T]) ImageRect() image.Rectangle {
	return image.Rectangle{
		Min: r.Min.ImagePoint(),
		Max: r.Max.ImagePoint(),
	}
}

// ScaleOut multiplies r by scale, rounding outwards so that the result
// always covers every pixel the exact scaled rectangle touches.
func ScaleOut(r Rect[int], scale float64) Rect[int] {
	if scale == 1 {
		return r
	}
	return Rect[int]{
		Min: Pt(
			int(math.Floor(float64(r.Min.X)*scale)),
			int(math.Floor(float64(r.Min.Y)*scale)),
		),
		Max: Pt(
			int(math.Ceil(float64(r.Max.X)*scale)),
			int(math.Ceil(float64(r.Max.Y)*scale)),
		),
	}
}

// Round converts a floating point rectangle to the nearest integer
// rectangle.
func Round(r Rect[float64]) Rect[int] {
	return Rect[int]{
		Min: Pt(int(math.Round(r.Min.X)), int(math.Round(r.Min.Y))),
		Max: Pt(int(math.Round(r.Max.X)), int(math.Round(r.Max.Y))),
	}
}
