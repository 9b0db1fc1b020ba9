package phoc

import (
	"errors"
	"fmt"
	"math"
	"time"

	"deedles.dev/phoc/anim"
	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/layer"
)

var ErrInvalidDragMode = errors.New("invalid drag mode")

// DragMode selects where a draggable surface can be grabbed.
type DragMode int

const (
	// DragModeFull allows grabbing the surface anywhere.
	DragModeFull DragMode = iota

	// DragModeHandle allows grabbing only the strip of the surface
	// along its free edge that is as deep as the drag handle.
	DragModeHandle

	DragModeNone
)

func (m DragMode) String() string {
	switch m {
	case DragModeFull:
		return "full"
	case DragModeHandle:
		return "handle"
	case DragModeNone:
		return "none"
	default:
		return fmt.Sprintf("DragMode(%d)", int(m))
	}
}

type DragState int

const (
	DragStateNone DragState = iota
	DragStatePending
	DragStateDragging
	DragStateAnimating
	DragStateRejected
)

func (s DragState) String() string {
	switch s {
	case DragStateNone:
		return "none"
	case DragStatePending:
		return "pending"
	case DragStateDragging:
		return "dragging"
	case DragStateAnimating:
		return "animating"
	case DragStateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("DragState(%d)", int(s))
	}
}

// FoldState is where a draggable surface rests.
type FoldState int

const (
	Folded FoldState = iota
	Unfolded
)

func (s FoldState) String() string {
	if s == Unfolded {
		return "unfolded"
	}
	return "folded"
}

type draggableParams struct {
	marginsSet bool
	folded     int
	unfolded   int
	exclusive  int
	threshold  float64
	mode       DragMode
	handle     int
}

type slide struct {
	from, to int
	target   FoldState
	timed    anim.Timed
}

// DraggableLayerSurface lets a layer surface anchored to three edges
// be dragged along its free axis between a folded and an unfolded
// margin.
type DraggableLayerSurface struct {
	// OnDragged is called whenever the margin changes.
	OnDragged func(margin int)

	// OnDragEnd is called when the surface comes to rest.
	OnDragEnd func(state FoldState)

	ls      *LayerSurface
	pending draggableParams
	current draggableParams
	edge    geom.Edges

	state       DragState
	fold        FoldState
	margin      int
	startMargin int
	slide       slide
}

// GetDraggable returns the drag state of ls, creating it if needed.
func (server *Server) GetDraggable(ls *LayerSurface) *DraggableLayerSurface {
	if d, ok := server.draggables[ls.ID]; ok {
		return d
	}

	d := DraggableLayerSurface{
		ls:      ls,
		pending: draggableParams{threshold: 1},
	}
	d.current = d.pending
	server.draggables[ls.ID] = &d
	return &d
}

// SetMargins sets the pending folded and unfolded margins.
func (d *DraggableLayerSurface) SetMargins(folded, unfolded int) error {
	if unfolded <= folded {
		return layer.Errorf(
			layer.ErrInvalidMargins,
			"unfolded margin %v must be greater than folded margin %v",
			unfolded, folded,
		)
	}

	d.pending.marginsSet = true
	d.pending.folded = folded
	d.pending.unfolded = unfolded
	return nil
}

// SetExclusive sets the depth that stays reserved along the anchored
// edge wherever the surface is dragged to.
func (d *DraggableLayerSurface) SetExclusive(exclusive int) {
	d.pending.exclusive = max(exclusive, 0)
}

// SetThreshold sets the fraction of the distance between the margins
// that a drag must cover to change the fold state.
func (d *DraggableLayerSurface) SetThreshold(threshold float64) error {
	if math.IsNaN(threshold) {
		return layer.Errorf(layer.ErrInvalidThreshold, "threshold is NaN")
	}
	d.pending.threshold = geom.Clamp(threshold, 0, 1)
	return nil
}

func (d *DraggableLayerSurface) SetDragMode(mode DragMode) error {
	if (mode < DragModeFull) || (mode > DragModeNone) {
		return layer.Errorf(ErrInvalidDragMode, "%v", mode)
	}
	d.pending.mode = mode
	return nil
}

// SetDragHandle sets the depth of the handle used by DragModeHandle.
func (d *DraggableLayerSurface) SetDragHandle(handle int) {
	d.pending.handle = max(handle, 0)
}

// SetState slides the surface to the given fold state.
func (d *DraggableLayerSurface) SetState(state FoldState) {
	if !d.current.marginsSet {
		d.ls.log().Warnln("Fold state set before margins")
		return
	}
	d.slideTo(state)
}

func (d *DraggableLayerSurface) State() DragState {
	return d.state
}

// Fold returns the state the surface last came to rest in.
func (d *DraggableLayerSurface) Fold() FoldState {
	return d.fold
}

// Margin returns the current margin along the anchored edge.
func (d *DraggableLayerSurface) Margin() int {
	return d.margin
}

func isDragAnchor(anchor geom.Edges) bool {
	switch anchor {
	case geom.EdgeTop | geom.EdgeLeft | geom.EdgeRight,
		geom.EdgeBottom | geom.EdgeLeft | geom.EdgeRight,
		geom.EdgeLeft | geom.EdgeTop | geom.EdgeBottom,
		geom.EdgeRight | geom.EdgeTop | geom.EdgeBottom:
		return true
	default:
		return false
	}
}

func (d *DraggableLayerSurface) commit(st *layer.State) error {
	p := d.pending
	if !p.marginsSet {
		d.current = p
		return nil
	}
	if !isDragAnchor(st.Anchor) {
		return layer.Errorf(
			layer.ErrInvalidAnchor,
			"draggable surface must be anchored to exactly three edges, not %v",
			st.Anchor,
		)
	}

	changed := p != d.current
	d.current = p
	d.edge = layer.ExclusiveEdge(st.Anchor)
	if changed && (d.state == DragStateNone) {
		d.margin = d.marginFor(d.fold)
	}
	d.margin = geom.Clamp(d.margin, p.folded, p.unfolded)
	d.apply(st)
	return nil
}

// apply writes the current margin and exclusive zone into st.
func (d *DraggableLayerSurface) apply(st *layer.State) {
	switch d.edge {
	case geom.EdgeTop:
		st.Margin.Top = d.margin
	case geom.EdgeBottom:
		st.Margin.Bottom = d.margin
	case geom.EdgeLeft:
		st.Margin.Left = d.margin
	case geom.EdgeRight:
		st.Margin.Right = d.margin
	default:
		panic("If you see this, there's a bug.")
	}

	if d.current.exclusive > 0 {
		st.ExclusiveZone = max(d.current.exclusive-d.margin, 0)
	}
}

func (d *DraggableLayerSurface) marginFor(state FoldState) int {
	if state == Unfolded {
		return d.current.unfolded
	}
	return d.current.folded
}

func (d *DraggableLayerSurface) setState(state DragState) {
	if state == d.state {
		return
	}
	d.ls.log().WithField("from", d.state).WithField("to", state).Debugln("Drag state changed")
	d.state = state
}

// setMargin moves the surface to margin right away.
func (d *DraggableLayerSurface) setMargin(margin int) {
	if margin == d.margin {
		return
	}

	st := &d.ls.item.State
	wasExclusive := st.Exclusive()
	d.margin = margin
	d.apply(st)

	if out := d.ls.output; out != nil {
		if st.Exclusive() != wasExclusive {
			out.InvalidateLayerOrder(d.ls.layer)
		}
		out.ArrangeLayers()
	}
	if d.OnDragged != nil {
		d.OnDragged(margin)
	}
}

// project splits an offset into its components along and across the
// drag axis. Positive values along the axis unfold the surface.
func (d *DraggableLayerSurface) project(dx, dy float64) (along, cross float64) {
	switch d.edge {
	case geom.EdgeTop:
		return dy, dx
	case geom.EdgeBottom:
		return -dy, dx
	case geom.EdgeLeft:
		return dx, dy
	case geom.EdgeRight:
		return -dx, dy
	default:
		panic("If you see this, there's a bug.")
	}
}

// inHandle reports whether the layout coordinates are within the drag
// handle.
func (d *DraggableLayerSurface) inHandle(lx, ly float64) bool {
	box := geom.RConv[float64](d.ls.LayoutBox())
	if !geom.Pt(lx, ly).In(box) {
		return false
	}

	h := float64(d.current.handle)
	switch d.edge {
	case geom.EdgeTop:
		return ly >= box.Max.Y-h
	case geom.EdgeBottom:
		return ly < box.Min.Y+h
	case geom.EdgeLeft:
		return lx >= box.Max.X-h
	case geom.EdgeRight:
		return lx < box.Min.X+h
	default:
		panic("If you see this, there's a bug.")
	}
}

func (d *DraggableLayerSurface) grabbable(lx, ly float64) bool {
	switch d.current.mode {
	case DragModeNone:
		return false
	case DragModeHandle:
		return d.inHandle(lx, ly)
	default:
		return true
	}
}

// DragStart starts a drag at the layout coordinates. It reports whether
// the surface accepted the drag. A drag that starts while the surface
// is sliding catches it where it is.
func (d *DraggableLayerSurface) DragStart(lx, ly float64) bool {
	if !d.current.marginsSet || !d.grabbable(lx, ly) {
		return false
	}

	switch d.state {
	case DragStateAnimating:
		d.stopSlide()
		d.startMargin = d.margin
		d.setState(DragStateDragging)
		return true

	case DragStateNone:
		d.startMargin = d.margin
		d.setState(DragStatePending)
		return true

	default:
		d.ls.log().WithField("state", d.state).Warnln("Drag started during another drag")
		return false
	}
}

// DragUpdate moves the surface by the total offset of the drag. Until
// the drag is accepted it only decides whether to accept or reject it.
func (d *DraggableLayerSurface) DragUpdate(offX, offY float64) DragState {
	cfg := d.ls.server.Config.Drag
	along, cross := d.project(offX, offY)

	switch d.state {
	case DragStatePending:
		if math.Abs(cross) > float64(cfg.RejectDistance) {
			d.setState(DragStateRejected)
			return d.state
		}
		if math.Abs(along) <= float64(cfg.AcceptDistance) {
			return d.state
		}
		d.setState(DragStateDragging)

	case DragStateDragging:

	default:
		return d.state
	}

	margin := d.startMargin + int(math.Round(along))
	d.setMargin(geom.Clamp(margin, d.current.folded, d.current.unfolded))
	return d.state
}

// DragEnd ends the drag and slides the surface to whichever fold state
// the drag covered enough distance for.
func (d *DraggableLayerSurface) DragEnd(offX, offY float64) DragState {
	switch d.state {
	case DragStatePending, DragStateRejected:
		d.setState(DragStateNone)
		return d.state
	case DragStateDragging:
	default:
		return d.state
	}

	d.DragUpdate(offX, offY)

	threshold := d.current.threshold * float64(d.current.unfolded-d.current.folded)
	target := d.fold
	switch d.fold {
	case Folded:
		if float64(d.margin-d.current.folded) > threshold {
			target = Unfolded
		}
	case Unfolded:
		if float64(d.current.unfolded-d.margin) > threshold {
			target = Folded
		}
	}

	d.slideTo(target)
	return d.state
}

// Fling slides the surface in the direction of a swipe that ended with
// the velocity (vx, vy), in pixels per second, and started at the
// layout coordinates. It reports whether the fling was accepted.
func (d *DraggableLayerSurface) Fling(lx, ly, vx, vy float64) bool {
	if !d.current.marginsSet || !d.grabbable(lx, ly) {
		return false
	}

	along, _ := d.project(vx, vy)
	if math.Abs(along) < d.ls.server.Config.Drag.MinFlingVelocity {
		return false
	}

	target := Folded
	if along > 0 {
		target = Unfolded
	}
	if (d.state != DragStateAnimating) && (d.margin == d.marginFor(target)) {
		d.ls.log().WithField("target", target).Debugln("Ignoring fling towards current position")
		return false
	}

	d.slideTo(target)
	return true
}

// slideTo animates the margin towards target. The duration is the
// base duration scaled by the cube root of the fraction of the range
// that is left to cover.
func (d *DraggableLayerSurface) slideTo(target FoldState) {
	d.stopSlide()

	to := d.marginFor(target)
	frac := math.Abs(float64(to-d.margin)) / float64(d.current.unfolded-d.current.folded)
	base := d.ls.server.Config.Drag.AnimationDuration()

	d.slide = slide{
		from:   d.margin,
		to:     to,
		target: target,
		timed: anim.Timed{
			Duration: time.Duration(float64(base) * math.Cbrt(frac)),
			Easing:   anim.EaseOutCubic,
		},
	}
	d.slide.timed.Start()
	d.setState(DragStateAnimating)

	out := d.ls.output
	if (out == nil) || (d.slide.timed.Duration <= 0) {
		d.finishSlide()
		return
	}
	out.AddFrameCallback(d, d.tick)
}

func (d *DraggableLayerSurface) tick(out *Output, dt time.Duration) bool {
	p, done := d.slide.timed.Tick(dt)
	if done {
		d.finishSlide()
		return false
	}

	d.setMargin(int(math.Round(anim.Lerp(float64(d.slide.from), float64(d.slide.to), p))))
	return true
}

func (d *DraggableLayerSurface) finishSlide() {
	d.setMargin(d.slide.to)
	d.fold = d.slide.target
	d.setState(DragStateNone)
	if d.OnDragEnd != nil {
		d.OnDragEnd(d.fold)
	}
}

func (d *DraggableLayerSurface) stopSlide() {
	for _, out := range d.ls.server.outputs {
		out.RemoveFrameCallbacks(d)
	}
}

func (d *DraggableLayerSurface) destroy() {
	d.stopSlide()
	delete(d.ls.server.draggables, d.ls.ID)
}
