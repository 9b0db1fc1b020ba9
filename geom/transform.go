package geom

import "fmt"

// Transform is an output or buffer transform. The values match
// wl_output.transform.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// Rotated reports whether t swaps width and height.
func (t Transform) Rotated() bool {
	return t&1 != 0
}

// Invert returns the transform that undoes t.
func (t Transform) Invert() Transform {
	switch t {
	case Transform90:
		return Transform270
	case Transform270:
		return Transform90
	default:
		return t
	}
}

// Compose returns the transform that applies t and then u.
func (t Transform) Compose(u Transform) Transform {
	flipped := (t ^ u) & TransformFlipped
	var rotated Transform
	if u&TransformFlipped != 0 {
		// A rotation followed by a flip is a flip followed by the
		// opposite rotation.
		rotated = (u - t) & 3
	} else {
		rotated = (t + u) & 3
	}
	return flipped | rotated
}

// Size returns the size of a w by h rectangle after transformation.
func (t Transform) Size(w, h int) (int, int) {
	if t.Rotated() {
		return h, w
	}
	return w, h
}

// Rect transforms r, which lies inside of a w by h container, into the
// coordinate space of the transformed container.
func (t Transform) Rect(r Rect[int], w, h int) Rect[int] {
	r = r.Canon()
	x, y, bw, bh := r.Min.X, r.Min.Y, r.Dx(), r.Dy()

	var dx, dy int
	switch t {
	case TransformNormal:
		dx, dy = x, y
	case Transform90:
		dx, dy = h-y-bh, x
	case Transform180:
		dx, dy = w-x-bw, h-y-bh
	case Transform270:
		dx, dy = y, w-x-bw
	case TransformFlipped:
		dx, dy = w-x-bw, y
	case TransformFlipped90:
		dx, dy = y, x
	case TransformFlipped180:
		dx, dy = x, h-y-bh
	case TransformFlipped270:
		dx, dy = h-y-bh, w-x-bw
	default:
		panic(fmt.Errorf("invalid transform: %d", t))
	}

	if t.Rotated() {
		bw, bh = bh, bw
	}
	return XYWH(dx, dy, bw, bh)
}

func (t Transform) String() string {
	switch t {
	case TransformNormal:
		return "normal"
	case Transform90:
		return "90"
	case Transform180:
		return "180"
	case Transform270:
		return "270"
	case TransformFlipped:
		return "flipped"
	case TransformFlipped90:
		return "flipped-90"
	case TransformFlipped180:
		return "flipped-180"
	case TransformFlipped270:
		return "flipped-270"
	default:
		return fmt.Sprintf("Transform(%d)", int(t))
	}
}
