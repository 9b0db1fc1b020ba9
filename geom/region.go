package geom

// Region is a set of pixels described by non-overlapping rectangles.
// The zero Region is empty and ready to use.
type Region struct {
	rects []Rect[int]
}

// RegionOf returns a region covering every rectangle in rects.
func RegionOf(rects ...Rect[int]) Region {
	var reg Region
	for _, r := range rects {
		reg.AddRect(r)
	}
	return reg
}

// Rects returns the rectangles that make up the region. The returned
// slice must not be modified.
func (reg Region) Rects() []Rect[int] {
	return reg.rects
}

func (reg Region) Empty() bool {
	return len(reg.rects) == 0
}

// Bounds returns the smallest rectangle containing the whole region.
func (reg Region) Bounds() (b Rect[int]) {
	for _, r := range reg.rects {
		b = b.Union(r)
	}
	return b
}

// Clone returns a copy of reg that shares no memory with it.
func (reg Region) Clone() Region {
	if reg.rects == nil {
		return Region{}
	}
	return Region{rects: append([]Rect[int](nil), reg.rects...)}
}

func (reg *Region) Clear() {
	reg.rects = nil
}

// AddRect adds r to the region. It reports whether the region
// changed.
func (reg *Region) AddRect(r Rect[int]) bool {
	r = r.Canon()
	if r.Empty() {
		return false
	}

	pieces := []Rect[int]{r}
	for _, e := range reg.rects {
		var next []Rect[int]
		for _, p := range pieces {
			next = append(next, subtract(p, e)...)
		}
		pieces = next
		if len(pieces) == 0 {
			return false
		}
	}
	reg.rects = append(reg.rects, pieces...)
	return true
}

// Add adds every rectangle of other to the region. It reports whether
// the region changed.
func (reg *Region) Add(other Region) (changed bool) {
	for _, r := range other.rects {
		if reg.AddRect(r) {
			changed = true
		}
	}
	return changed
}

// Contains reports whether p is inside of the region.
func (reg Region) Contains(p Point[int]) bool {
	for _, r := range reg.rects {
		if p.In(r) {
			return true
		}
	}
	return false
}

// Intersect returns the part of the region inside of r.
func (reg Region) Intersect(r Rect[int]) Region {
	var out Region
	for _, e := range reg.rects {
		i := e.Intersect(r)
		if !i.Empty() {
			out.rects = append(out.rects, i)
		}
	}
	return out
}

// Translate returns the region moved by p.
func (reg Region) Translate(p Point[int]) Region {
	out := Region{rects: make([]Rect[int], 0, len(reg.rects))}
	for _, r := range reg.rects {
		out.rects = append(out.rects, r.Add(p))
	}
	return out
}

// Scale returns the region multiplied by scale, rounding every
// rectangle outwards.
func (reg Region) Scale(scale float64) Region {
	if scale == 1 {
		return reg.Clone()
	}

	var out Region
	for _, r := range reg.rects {
		out.AddRect(ScaleOut(r, scale))
	}
	return out
}

// Expand returns the region with every rectangle grown by n pixels on
// each side.
func (reg Region) Expand(n int) Region {
	var out Region
	for _, r := range reg.rects {
		out.AddRect(r.Inset(-n))
	}
	return out
}

// Transform returns the region transformed by t inside of a container
// of size w by h.
func (reg Region) Transform(t Transform, w, h int) Region {
	if t == TransformNormal {
		return reg.Clone()
	}

	out := Region{rects: make([]Rect[int], 0, len(reg.rects))}
	for _, r := range reg.rects {
		out.rects = append(out.rects, t.Rect(r, w, h))
	}
	return out
}

// subtract returns the parts of r that are not in s.
func subtract(r, s Rect[int]) []Rect[int] {
	if !r.Overlaps(s) {
		return []Rect[int]{r}
	}

	var out []Rect[int]
	if r.Min.Y < s.Min.Y {
		out = append(out, Rect[int]{r.Min, Pt(r.Max.X, s.Min.Y)})
		r.Min.Y = s.Min.Y
	}
	if r.Max.Y > s.Max.Y {
		out = append(out, Rect[int]{Pt(r.Min.X, s.Max.Y), r.Max})
		r.Max.Y = s.Max.Y
	}
	if r.Min.X < s.Min.X {
		out = append(out, Rect[int]{r.Min, Pt(s.Min.X, r.Max.Y)})
	}
	if r.Max.X > s.Max.X {
		out = append(out, Rect[int]{Pt(s.Max.X, r.Min.Y), r.Max})
	}
	return out
}
