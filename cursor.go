package phoc

import (
	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/gesture"
	"deedles.dev/phoc/layer"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

const (
	// Distances from an output edge within which a press reveals the
	// shell.
	shellRevealPointerThreshold = 2
	shellRevealTouchThreshold   = 5
)

type touchPoint struct {
	pos     geom.Point[float64]
	surface ClientSurface
	origin  geom.Point[float64]
	claimed bool
}

// Cursor routes the pointer and touch input of a seat.
type Cursor struct {
	server *Server
	seat   Seat
	log    *logrus.Entry

	pos      geom.Point[float64]
	lastTime uint32
	mode     inputMode
	buttons  []uint32

	touches  map[int32]*touchPoint
	gestures gesture.Set

	drag         *gesture.Drag
	swipe        *gesture.Swipe
	dragTarget   *DraggableLayerSurface
	dragClaimed  bool
	focusedLayer *LayerSurface

	pointerFocus ClientSurface
	focusOrigin  geom.Point[float64]
	constraint   *PointerConstraint
}

// NewCursor creates the cursor of seat. It starts out in passthrough
// mode at the layout origin.
func (server *Server) NewCursor(seat Seat) *Cursor {
	c := Cursor{
		server:  server,
		seat:    seat,
		log:     server.log.WithField("seat", seat.Name()),
		touches: make(map[int32]*touchPoint),
	}

	c.drag = gesture.NewDrag(1)
	c.drag.OnDragBegin = c.onDragBegin
	c.drag.OnDragUpdate = c.onDragUpdate
	c.drag.OnDragEnd = c.onDragEnd
	c.drag.OnCancel = c.onDragCancel
	c.swipe = gesture.NewSwipe(1)
	c.swipe.OnSwipe = c.onSwipe
	c.swipe.Group(c.drag)
	c.gestures.Add(c.drag)
	c.gestures.Add(c.swipe)

	c.startPassthrough()
	server.cursors = append(server.cursors, &c)
	return &c
}

// Destroy removes the cursor from the server.
func (c *Cursor) Destroy() {
	c.mode.leave(c)
	c.gestures.Reset()
	c.server.removeCursor(c)
	c.server.UpdateOSK()
}

// Position returns the cursor's position in layout coordinates.
func (c *Cursor) Position() geom.Point[float64] {
	return c.pos
}

// Mode returns the cursor's current interaction mode.
func (c *Cursor) Mode() CursorMode {
	return c.mode.kind()
}

// FocusedLayer returns the layer surface that has the keyboard focus
// of the seat, if any.
func (c *Cursor) FocusedLayer() *LayerSurface {
	return c.focusedLayer
}

// FocusLayer gives the seat's keyboard focus to ls. A nil ls drops it.
func (c *Cursor) FocusLayer(ls *LayerSurface) {
	if ls == c.focusedLayer {
		return
	}
	c.focusedLayer = ls
	c.server.UpdateOSK()
}

// AddGesture adds g to the gestures that compete for the cursor's
// input.
func (c *Cursor) AddGesture(g gesture.Gesture) {
	c.gestures.Add(g)
}

func (c *Cursor) RemoveGesture(g gesture.Gesture) {
	if (g == c.drag) || (g == c.swipe) {
		return
	}
	c.gestures.Remove(g)
}

func (c *Cursor) setCursorImage(name string) {
	if name == "" {
		return
	}
	c.seat.SetCursorImage(name)
}

func (c *Cursor) event(t gesture.EventType, time uint32) gesture.Event {
	return gesture.Event{
		Type:   t,
		Time:   time,
		Device: c.seat.Name(),
	}
}

// Motion moves the cursor by a relative amount, as reported by a
// mouse.
func (c *Cursor) Motion(t uint32, dx, dy float64) {
	c.lastTime = t
	c.moveTo(c.constrain(c.pos.Add(geom.Pt(dx, dy))))
}

// MotionAbsolute moves the cursor to the layout coordinates, as
// reported by a tablet or a nested backend.
func (c *Cursor) MotionAbsolute(t uint32, lx, ly float64) {
	c.lastTime = t
	c.moveTo(c.constrain(geom.Pt(lx, ly)))
}

func (c *Cursor) moveTo(p geom.Point[float64]) {
	if c.server.OutputAt(p.X, p.Y) == nil {
		if out := c.server.OutputAt(c.pos.X, c.pos.Y); out != nil {
			box := geom.RConv[float64](out.Box())
			p.X = geom.Clamp(p.X, box.Min.X, box.Max.X-1)
			p.Y = geom.Clamp(p.Y, box.Min.Y, box.Max.Y-1)
		}
	}

	if p != c.pos {
		c.pos = p
		c.seat.WarpCursor(p.X, p.Y)
	}

	c.gestures.HandleEvent(c.event(gesture.EventMotion, c.lastTime), c.pos.X, c.pos.Y)
	c.arbitrate(gesture.PointerSequence)
	if c.dragClaimed {
		return
	}
	c.mode.CursorMoved(c, c.lastTime)
}

// Button handles a press or release of a pointer button.
func (c *Cursor) Button(t uint32, button uint32, pressed bool) {
	c.lastTime = t

	if pressed {
		if slices.Contains(c.buttons, button) {
			c.log.WithField("button", button).Warnln("Button pressed twice")
			return
		}
		c.buttons = append(c.buttons, button)
		c.checkShellReveal(c.pos.X, c.pos.Y, shellRevealPointerThreshold)
	} else {
		i := slices.Index(c.buttons, button)
		if i < 0 {
			c.log.WithField("button", button).Warnln("Release of button that is not pressed")
			return
		}
		c.buttons = slices.Delete(c.buttons, i, i+1)
	}

	// Only the first press and the last release begin and end the
	// pointer sequence.
	switch {
	case pressed && (len(c.buttons) == 1):
		ev := c.event(gesture.EventButtonPress, t)
		ev.Button = button
		c.gestures.HandleEvent(ev, c.pos.X, c.pos.Y)
	case !pressed && (len(c.buttons) == 0):
		ev := c.event(gesture.EventButtonRelease, t)
		ev.Button = button
		c.gestures.HandleEvent(ev, c.pos.X, c.pos.Y)
	}
	claimed := c.dragClaimed
	c.arbitrate(gesture.PointerSequence)
	if !pressed && (len(c.buttons) == 0) {
		c.endSequence()
	}
	if claimed {
		return
	}

	if pressed {
		c.mode.CursorButtonPressed(c, button, t)
		return
	}
	c.mode.CursorButtonReleased(c, button, t)
}

// Axis forwards a scroll event to the surface under the cursor.
func (c *Cursor) Axis(t uint32, vertical bool, delta float64, discrete int32) {
	c.lastTime = t
	if c.pointerFocus == nil {
		return
	}
	c.seat.PointerAxis(t, vertical, delta, discrete)
}

// Frame ends a group of pointer events.
func (c *Cursor) Frame() {
	c.seat.PointerFrame()
}

// TouchDown starts tracking touch point id at the layout coordinates.
func (c *Cursor) TouchDown(t uint32, id int32, lx, ly float64) {
	if _, ok := c.touches[id]; ok {
		c.log.WithField("touch", id).Warnln("Touch point added twice")
		return
	}

	tp := touchPoint{pos: geom.Pt(lx, ly)}
	c.touches[id] = &tp
	c.checkShellReveal(lx, ly, shellRevealTouchThreshold)

	ev := c.event(gesture.EventTouchDown, t)
	ev.Touch = id
	c.gestures.HandleEvent(ev, lx, ly)
	c.arbitrate(gesture.Sequence(id))
	if tp.claimed {
		return
	}

	target, ok := c.server.inputTargetAt(lx, ly)
	if !ok {
		return
	}
	tp.surface = target.surface
	tp.origin = geom.Pt(lx-target.sx, ly-target.sy)
	c.focusTarget(target)
	c.seat.TouchDown(t, id, target.surface, target.sx, target.sy)
}

func (c *Cursor) TouchMotion(t uint32, id int32, lx, ly float64) {
	tp, ok := c.touches[id]
	if !ok {
		c.log.WithField("touch", id).Warnln("Motion of unknown touch point")
		return
	}
	tp.pos = geom.Pt(lx, ly)

	ev := c.event(gesture.EventTouchMotion, t)
	ev.Touch = id
	c.gestures.HandleEvent(ev, lx, ly)
	c.arbitrate(gesture.Sequence(id))
	if tp.claimed || (tp.surface == nil) {
		return
	}
	c.seat.TouchMotion(t, id, lx-tp.origin.X, ly-tp.origin.Y)
}

func (c *Cursor) TouchUp(t uint32, id int32) {
	tp, ok := c.touches[id]
	if !ok {
		c.log.WithField("touch", id).Warnln("Removal of unknown touch point")
		return
	}
	delete(c.touches, id)

	ev := c.event(gesture.EventTouchUp, t)
	ev.Touch = id
	c.gestures.HandleEvent(ev, tp.pos.X, tp.pos.Y)
	c.arbitrate(gesture.Sequence(id))
	c.endSequence()
	if tp.claimed || (tp.surface == nil) {
		return
	}
	c.seat.TouchUp(t, id)
}

// TouchCancel drops touch point id without completing it.
func (c *Cursor) TouchCancel(t uint32, id int32) {
	tp, ok := c.touches[id]
	if !ok {
		c.log.WithField("touch", id).Warnln("Cancel of unknown touch point")
		return
	}
	delete(c.touches, id)

	ev := c.event(gesture.EventTouchCancel, t)
	ev.Touch = id
	c.gestures.HandleEvent(ev, tp.pos.X, tp.pos.Y)
	c.endSequence()
	if !tp.claimed && (tp.surface != nil) {
		c.seat.TouchCancel(id)
	}
}

// TouchPoints returns the number of touch points being tracked.
func (c *Cursor) TouchPoints() int {
	return len(c.touches)
}

func (c *Cursor) touchpad(ev gesture.Event) {
	c.lastTime = ev.Time
	c.gestures.HandleEvent(ev, c.pos.X, c.pos.Y)
}

func (c *Cursor) SwipeBegin(t uint32, fingers int) {
	ev := c.event(gesture.EventSwipeBegin, t)
	ev.Fingers = fingers
	c.touchpad(ev)
}

func (c *Cursor) SwipeUpdate(t uint32, fingers int, dx, dy float64) {
	ev := c.event(gesture.EventSwipeUpdate, t)
	ev.Fingers = fingers
	ev.DX, ev.DY = dx, dy
	c.touchpad(ev)
}

func (c *Cursor) SwipeEnd(t uint32, cancelled bool) {
	ev := c.event(gesture.EventSwipeEnd, t)
	ev.Cancelled = cancelled
	c.touchpad(ev)
}

func (c *Cursor) PinchBegin(t uint32, fingers int) {
	ev := c.event(gesture.EventPinchBegin, t)
	ev.Fingers = fingers
	ev.Scale = 1
	c.touchpad(ev)
}

func (c *Cursor) PinchUpdate(t uint32, fingers int, dx, dy, scale float64) {
	ev := c.event(gesture.EventPinchUpdate, t)
	ev.Fingers = fingers
	ev.DX, ev.DY = dx, dy
	ev.Scale = scale
	c.touchpad(ev)
}

func (c *Cursor) PinchEnd(t uint32, cancelled bool) {
	ev := c.event(gesture.EventPinchEnd, t)
	ev.Cancelled = cancelled
	c.touchpad(ev)
}

// onDragBegin looks for a draggable layer surface under the start of
// a drag.
func (c *Cursor) onDragBegin(x, y float64) {
	c.dragTarget = nil
	c.dragClaimed = false

	out := c.server.OutputAt(x, y)
	if out == nil {
		return
	}
	for l := layer.Overlay; l >= layer.Background; l-- {
		ls, _, _, _, ok := out.layerSurfaceAt(l, x, y)
		if !ok {
			continue
		}
		d, ok := c.server.draggables[ls.ID]
		if ok && d.DragStart(x, y) {
			c.dragTarget = d
		}
		return
	}
}

func (c *Cursor) onDragUpdate(offX, offY float64) {
	if c.dragTarget != nil {
		c.dragTarget.DragUpdate(offX, offY)
	}
}

func (c *Cursor) onDragEnd(offX, offY float64) {
	if c.dragTarget != nil {
		c.dragTarget.DragEnd(offX, offY)
	}
}

func (c *Cursor) onDragCancel(seq gesture.Sequence) {
	if c.dragTarget == nil {
		return
	}
	offX, offY := c.drag.Offset()
	c.dragTarget.DragEnd(offX, offY)
	c.dragTarget = nil
}

func (c *Cursor) onSwipe(vx, vy float64) {
	if c.dragTarget == nil {
		return
	}
	x, y := c.drag.Start()
	c.dragTarget.Fling(x, y, vx, vy)
}

// arbitrate claims seq for the built-in drag once a draggable surface
// accepts it, and denies it if there is nothing to drag or the surface
// rejected the drag.
func (c *Cursor) arbitrate(seq gesture.Sequence) {
	if !c.drag.IsRecognized() || (c.drag.SequenceState(seq) != gesture.SequenceNone) {
		return
	}

	d := c.dragTarget
	if d == nil {
		c.drag.SetSequenceState(seq, gesture.SequenceDenied)
		return
	}

	switch d.State() {
	case DragStateRejected:
		c.drag.SetSequenceState(seq, gesture.SequenceDenied)
	case DragStateDragging:
		c.drag.SetSequenceState(seq, gesture.SequenceClaimed)
		c.claim(seq)
	}
}

// claim takes seq away from the client that had it.
func (c *Cursor) claim(seq gesture.Sequence) {
	c.log.WithField("sequence", seq).Debugln("Drag claimed sequence")
	if seq == gesture.PointerSequence {
		c.dragClaimed = true
		c.clearPointerFocus()
		return
	}

	tp, ok := c.touches[int32(seq)]
	if !ok {
		return
	}
	tp.claimed = true
	if tp.surface != nil {
		c.seat.TouchCancel(int32(seq))
	}
}

// endSequence forgets the drag target once nothing is left pressed.
func (c *Cursor) endSequence() {
	if (len(c.buttons) != 0) || (len(c.touches) != 0) {
		return
	}
	c.dragTarget = nil
	if c.dragClaimed {
		c.dragClaimed = false
		c.refocus()
	}
}

// inputTarget is what input at some point of the layout goes to.
type inputTarget struct {
	layer   *LayerSurface
	view    *View
	surface ClientSurface
	sx, sy  float64
}

// inputTargetAt finds the surface that receives input at the layout
// coordinates. The overlay layer comes first. A fullscreen view hides
// everything else on its output except the top layer while the shell is
// revealed. Otherwise the top layer, the views, and the bottom and
// background layers follow.
func (server *Server) inputTargetAt(lx, ly float64) (inputTarget, bool) {
	out := server.OutputAt(lx, ly)
	if out == nil {
		return inputTarget{}, false
	}

	fromLayer := func(l layer.Layer) (inputTarget, bool) {
		ls, s, sx, sy, ok := out.layerSurfaceAt(l, lx, ly)
		return inputTarget{layer: ls, surface: s, sx: sx, sy: sy}, ok
	}

	if t, ok := fromLayer(layer.Overlay); ok {
		return t, true
	}

	if view := out.fullscreen; view != nil {
		if out.shellReveal {
			if t, ok := fromLayer(layer.Top); ok {
				return t, true
			}
		}
		if s, sx, sy, ok := surfaceAt(view.Surface, view.box.Min, lx, ly); ok {
			return inputTarget{view: view, surface: s, sx: sx, sy: sy}, true
		}
		return inputTarget{}, false
	}

	if t, ok := fromLayer(layer.Top); ok {
		return t, true
	}
	if view, s, sx, sy := server.ViewAt(lx, ly); view != nil {
		return inputTarget{view: view, surface: s, sx: sx, sy: sy}, true
	}
	if t, ok := fromLayer(layer.Bottom); ok {
		return t, true
	}
	return fromLayer(layer.Background)
}

// bypassGrab reports whether input for target should skip the seat's
// grab. Layer surfaces stay interactive during drag and drop.
func (c *Cursor) bypassGrab(target inputTarget) bool {
	return (target.layer != nil) && c.seat.HasGrab()
}

// focusTarget moves the keyboard focus for a press on target.
func (c *Cursor) focusTarget(target inputTarget) {
	switch {
	case target.layer != nil:
		if target.layer.item.State.KeyboardInteractive {
			c.FocusLayer(target.layer)
		}
	case target.view != nil:
		c.FocusLayer(nil)
		if out := target.view.fullscreen; out != nil {
			out.SetShellRevealed(false)
			return
		}
		c.server.RaiseView(target.view)
	}
}

// pointerTo sends pointer focus and motion to target.
func (c *Cursor) pointerTo(target inputTarget, t uint32) {
	bypass := c.bypassGrab(target)
	if target.surface != c.pointerFocus {
		c.pointerFocus = target.surface
		c.focusOrigin = c.pos.Sub(geom.Pt(target.sx, target.sy))
		if bypass {
			c.seat.SendPointerEnter(target.surface, target.sx, target.sy)
		} else {
			c.seat.PointerEnter(target.surface, target.sx, target.sy)
		}
		c.updateConstraint()
		return
	}

	if bypass {
		c.seat.SendPointerMotion(t, target.sx, target.sy)
		return
	}
	c.seat.PointerMotion(t, target.sx, target.sy)
}

func (c *Cursor) clearPointerFocus() {
	if c.pointerFocus == nil {
		return
	}
	c.pointerFocus = nil
	c.seat.PointerClearFocus()
	c.updateConstraint()
}

// refocus re-resolves what is under the cursor without moving it.
func (c *Cursor) refocus() {
	if c.dragClaimed {
		return
	}
	if _, ok := c.mode.(*inputModePassthrough); ok {
		c.mode.CursorMoved(c, c.lastTime)
	}
}

func (c *Cursor) viewRemoved(view *View) {
	if c.mode.view() == view {
		c.startPassthrough()
	}
}

func (c *Cursor) layerSurfaceRemoved(ls *LayerSurface) {
	if c.focusedLayer == ls {
		c.focusedLayer = nil
	}
	if (c.dragTarget != nil) && (c.dragTarget.ls == ls) {
		c.dragTarget = nil
	}
	if c.pointerFocus == ls.Surface {
		c.clearPointerFocus()
	}
	for _, tp := range c.touches {
		if tp.surface == ls.Surface {
			tp.surface = nil
		}
	}
}

// checkShellReveal reveals the shell above a fullscreen view if the
// layout coordinates are within threshold of an output edge that is
// configured for it and reserved by a top layer surface.
func (c *Cursor) checkShellReveal(lx, ly float64, threshold float64) bool {
	out := c.server.OutputAt(lx, ly)
	if (out == nil) || (out.fullscreen == nil) || out.shellReveal {
		return false
	}

	box := geom.RConv[float64](out.Box())
	var near geom.Edges
	if ly-box.Min.Y < threshold {
		near |= geom.EdgeTop
	}
	if box.Max.Y-ly <= threshold {
		near |= geom.EdgeBottom
	}
	if lx-box.Min.X < threshold {
		near |= geom.EdgeLeft
	}
	if box.Max.X-lx <= threshold {
		near |= geom.EdgeRight
	}
	near &= c.server.shellReveal
	if near == geom.EdgeNone {
		return false
	}

	for _, ls := range out.layers[layer.Top] {
		st := ls.item.State
		if !ls.mapped || !st.Exclusive() {
			continue
		}
		if near.Has(layer.ExclusiveEdge(st.Anchor)) {
			out.SetShellRevealed(true)
			return true
		}
	}
	return false
}
