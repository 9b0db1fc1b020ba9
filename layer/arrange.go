package layer

import (
	"errors"

	"deedles.dev/phoc/geom"
)

// Item is a surface as seen by Arrange. Box and Err are outputs.
type Item struct {
	State State

	// Box is the output-local geometry computed for the surface.
	Box geom.Rect[int]

	// Err is set if the surface could not be placed. Its Box is then
	// left unchanged.
	Err error
}

// Place computes the box of a surface with state st inside of bounds.
// A box that would end up with a negative size is a protocol error.
func Place(bounds geom.Rect[int], st State) (geom.Rect[int], error) {
	x, w, err := placeAxis(
		bounds.Min.X, bounds.Max.X,
		st.Width,
		st.Anchor.Has(geom.EdgeLeft), st.Anchor.Has(geom.EdgeRight),
		st.Margin.Left, st.Margin.Right,
		zoneFill(st, geom.EdgeLeft, geom.EdgeRight),
	)
	if err != nil {
		return geom.Rect[int]{}, Errorf(ErrInvalidSize, "width: %v", err)
	}

	y, h, err := placeAxis(
		bounds.Min.Y, bounds.Max.Y,
		st.Height,
		st.Anchor.Has(geom.EdgeTop), st.Anchor.Has(geom.EdgeBottom),
		st.Margin.Top, st.Margin.Bottom,
		zoneFill(st, geom.EdgeTop, geom.EdgeBottom),
	)
	if err != nil {
		return geom.Rect[int]{}, Errorf(ErrInvalidSize, "height: %v", err)
	}

	if (w < 0) || (h < 0) {
		return geom.Rect[int]{}, Errorf(ErrInvalidSize, "arranged box is %vx%v", w, h)
	}
	return geom.XYWH(x, y, w, h), nil
}

// zoneFill returns the depth of the exclusive zone along an axis,
// negative if it is reserved at the low end of the axis, positive at
// the high end and zero if the surface reserves nothing along it.
func zoneFill(st State, low, high geom.Edges) int {
	if st.ExclusiveZone <= 0 {
		return 0
	}
	switch ExclusiveEdge(st.Anchor) {
	case low:
		return -st.ExclusiveZone
	case high:
		return st.ExclusiveZone
	default:
		return 0
	}
}

var errNoFill = errors.New("size 0 without opposing anchors or an exclusive zone")

// placeAxis places a surface along one axis running from lo to hi. A
// zero size fills the axis when both ends are anchored, or fills the
// surface's exclusive zone when zone is non-zero. Margins apply only to
// anchored ends. They shrink the surface when it fills, and narrow the
// span a fixed size surface anchored at both ends is centered in. It
// returns the surface's position and length.
func placeAxis(lo, hi, size int, anchorLo, anchorHi bool, marginLo, marginHi int, zone int) (pos, length int, err error) {
	span := hi - lo
	switch {
	case (size == 0) && anchorLo && anchorHi:
		return lo + marginLo, span - (marginLo + marginHi), nil

	case (size == 0) && (zone < 0):
		return lo + marginLo, -zone - marginLo, nil

	case (size == 0) && (zone > 0):
		return hi - zone, zone - marginHi, nil

	case size == 0:
		return 0, 0, errNoFill

	case anchorLo && anchorHi:
		inner := span - (marginLo + marginHi)
		return lo + marginLo + inner/2 - size/2, size, nil

	case anchorLo:
		return lo + marginLo, size, nil

	case anchorHi:
		return hi - size - marginHi, size, nil

	default:
		return lo + span/2 - size/2, size, nil
	}
}

// Reserve returns usable with the exclusive zone of a surface with
// state st taken out of it.
func Reserve(usable geom.Rect[int], st State) geom.Rect[int] {
	if !st.Exclusive() {
		return usable
	}

	m, zone := st.Margin, st.ExclusiveZone
	switch ExclusiveEdge(st.Anchor) {
	case geom.EdgeTop:
		usable.Min.Y = min(usable.Min.Y+zone+m.Top, usable.Max.Y)
	case geom.EdgeBottom:
		usable.Max.Y = max(usable.Max.Y-zone-m.Bottom, usable.Min.Y)
	case geom.EdgeLeft:
		usable.Min.X = min(usable.Min.X+zone+m.Left, usable.Max.X)
	case geom.EdgeRight:
		usable.Max.X = max(usable.Max.X-zone-m.Right, usable.Min.X)
	default:
		panic("If you see this, there's a bug.")
	}
	return usable
}

// Arrange places every item of every layer inside of full, which is
// the output's whole area, and returns the area left usable for views.
// layers holds each layer's items in attach order.
//
// Surfaces with an exclusive zone are placed first, overlay to
// background, each shrinking the usable area for the ones that follow.
// The rest are then placed in the area that is left, again overlay to
// background. Surfaces asking for an exclusive zone of -1 are placed
// relative to full instead.
func Arrange(full geom.Rect[int], layers *[Count][]*Item) (usable geom.Rect[int]) {
	usable = full
	for _, exclusive := range []bool{true, false} {
		for l := Overlay; l >= Background; l-- {
			for _, item := range layers[l] {
				if item.State.Exclusive() != exclusive {
					continue
				}

				bounds := usable
				if item.State.ExclusiveZone == -1 {
					bounds = full
				}

				box, err := Place(bounds, item.State)
				item.Err = err
				if err != nil {
					continue
				}
				item.Box = box

				if exclusive {
					usable = Reserve(usable, item.State)
				}
			}
		}
	}
	return usable
}
