package gesture

import "deedles.dev/phoc/geom"

// Drag recognizes a contact, or a group of contacts, moving across the
// screen. It is recognized as soon as the required number of points is
// down.
type Drag struct {
	Base

	OnDragBegin  func(x, y float64)
	OnDragUpdate func(offX, offY float64)
	OnDragEnd    func(offX, offY float64)

	// Touchpad selects touchpad swipes instead of touch and pointer
	// events.
	Touchpad bool

	start geom.Point[float64]
	off   geom.Point[float64]
}

// NewDrag returns a drag recognizer requiring n points.
func NewDrag(n int) *Drag {
	var d Drag
	d.init(max(n, 1), &d)
	return &d
}

// Offset returns the current offset from the drag's start point.
func (d *Drag) Offset() (offX, offY float64) {
	return d.off.X, d.off.Y
}

// Start returns the layout coordinates at which the drag started.
func (d *Drag) Start() (x, y float64) {
	return d.start.X, d.start.Y
}

func (d *Drag) filter(ev Event) bool {
	return filterSingle(ev, d.Touchpad, false, d.lastFingers, d.nPoints)
}

func (d *Drag) check() bool {
	return true
}

func (d *Drag) begin(seq Sequence) {
	d.start = d.startCentroid()
	d.off = geom.Point[float64]{}
	if d.OnDragBegin != nil {
		d.OnDragBegin(d.start.X, d.start.Y)
	}
}

func (d *Drag) update(seq Sequence) {
	d.off = d.centroid().Sub(d.start)
	if d.OnDragUpdate != nil {
		d.OnDragUpdate(d.off.X, d.off.Y)
	}
}

func (d *Drag) end(seq Sequence) {
	if d.OnDragEnd != nil {
		d.OnDragEnd(d.off.X, d.off.Y)
	}
}

func (d *Drag) cancel(seq Sequence) {}

// filterSingle implements the event filtering shared by the
// recognizers. Touch and pointer recognizers ignore touchpad events.
// Touchpad recognizers ignore everything but the touchpad gesture they
// follow with exactly n fingers.
func filterSingle(ev Event, touchpad, pinch bool, fingers, n int) bool {
	if !touchpad {
		return ev.Type.touchpad()
	}
	if !ev.Type.touchpad() || (ev.Type.pinch() != pinch) {
		return true
	}
	return fingers != n
}
