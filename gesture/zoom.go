package gesture

// Zoom recognizes two contacts moving towards or away from each other,
// or a two finger touchpad pinch.
type Zoom struct {
	Base

	// OnScaleChanged is called with the ratio of the current distance
	// between the points to the distance when the gesture began.
	OnScaleChanged func(scale float64)

	Touchpad bool

	initial float64
}

func NewZoom() *Zoom {
	var z Zoom
	z.init(2, &z)
	return &z
}

func (z *Zoom) filter(ev Event) bool {
	return filterSingle(ev, z.Touchpad, true, z.lastFingers, z.nPoints)
}

func (z *Zoom) check() bool {
	return true
}

func (z *Zoom) distance() float64 {
	if p := z.point(TouchpadSequence); p != nil {
		return p.scale
	}
	if len(z.points) < 2 {
		return 0
	}
	return z.points[0].pos.Dist(z.points[1].pos)
}

// ScaleDelta returns the current scale relative to the start of the
// gesture. It reports false if the gesture is not recognized or began
// with both points at the same spot.
func (z *Zoom) ScaleDelta() (float64, bool) {
	if !z.recognized || (z.initial == 0) {
		return 0, false
	}
	return z.distance() / z.initial, true
}

func (z *Zoom) begin(seq Sequence) {
	z.initial = z.distance()
}

func (z *Zoom) update(seq Sequence) {
	scale, ok := z.ScaleDelta()
	if !ok {
		return
	}
	if z.OnScaleChanged != nil {
		z.OnScaleChanged(scale)
	}
}

func (z *Zoom) end(seq Sequence) {}

func (z *Zoom) cancel(seq Sequence) {}
