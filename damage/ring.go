// Package damage tracks which parts of an output have changed since
// each of its buffers was last presented.
package damage

import "deedles.dev/phoc/geom"

// DefaultHistory is the number of previous frames a Ring remembers
// when created with NewRing(0).
const DefaultHistory = 4

// maxRects is the number of rectangles after which the current damage
// collapses into its bounding box. Past that point, tracking individual
// rectangles costs more than repainting the area between them.
const maxRects = 16

// Ring accumulates damage for the frame being built and remembers the
// damage of previous frames so that a buffer of any age up to the
// ring's history can be brought up to date.
type Ring struct {
	bounds   geom.Rect[int]
	current  geom.Region
	previous []geom.Region
}

// NewRing returns a ring that remembers history previous frames.
func NewRing(history int) *Ring {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Ring{previous: make([]geom.Region, history)}
}

// SetBounds sets the buffer size of the output. A change of size
// damages everything.
func (r *Ring) SetBounds(w, h int) {
	b := geom.Rt(0, 0, w, h)
	if b == r.bounds {
		return
	}
	r.bounds = b
	r.AddWhole()
}

func (r *Ring) Bounds() geom.Rect[int] {
	return r.bounds
}

// Add adds reg, clipped to the ring's bounds, to the current damage.
// It reports whether anything new was damaged.
func (r *Ring) Add(reg geom.Region) bool {
	changed := r.current.Add(reg.Intersect(r.bounds))
	r.collapse()
	return changed
}

// AddBox is like Add for a single rectangle.
func (r *Ring) AddBox(box geom.Rect[int]) bool {
	changed := r.current.AddRect(box.Intersect(r.bounds))
	r.collapse()
	return changed
}

// AddWhole damages the entire output.
func (r *Ring) AddWhole() {
	r.current = geom.RegionOf(r.bounds)
}

func (r *Ring) collapse() {
	if len(r.current.Rects()) > maxRects {
		r.current = geom.RegionOf(r.current.Bounds())
	}
}

// Current returns the damage accumulated since the last Rotate.
func (r *Ring) Current() geom.Region {
	return r.current
}

// Rotate pushes the current damage into the history and starts a new
// empty frame. It is called once a frame has been submitted.
func (r *Ring) Rotate() {
	copy(r.previous[1:], r.previous)
	r.previous[0] = r.current
	r.current = geom.Region{}
}

// ForAge returns the region that must be repainted in a buffer that
// was last presented age frames ago. An age of zero, meaning unknown
// contents, or an age older than the ring remembers yields the whole
// output.
func (r *Ring) ForAge(age int) geom.Region {
	if (age <= 0) || (age > len(r.previous)+1) {
		return geom.RegionOf(r.bounds)
	}

	reg := r.current.Clone()
	for _, prev := range r.previous[:age-1] {
		reg.Add(prev)
	}
	return reg
}
