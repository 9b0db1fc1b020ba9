package wlrplat

import (
	"time"

	"deedles.dev/phoc"
	"deedles.dev/phoc/geom"
	"deedles.dev/wlr"
)

// cursorSize is the size of the xcursor theme at scale 1.
const cursorSize = 24

type seat struct {
	p         *Platform
	name      string
	seat      wlr.Seat
	cursor    wlr.Cursor
	cursorMgr wlr.XCursorManager

	// The orientation and source of the axis event being delivered.
	axisOrient wlr.AxisOrientation
	axisSource wlr.AxisSource

	listeners []wlr.Listener
	pointers  []wlr.Pointer
}

func (p *Platform) newSeat(name string) *seat {
	s := seat{
		p:    p,
		name: name,
	}

	s.cursor = wlr.CreateCursor()
	s.cursor.AttachOutputLayout(p.layout)
	s.cursorMgr = wlr.CreateXCursorManager("", cursorSize)
	s.cursorMgr.Load(1)

	s.seat = wlr.CreateSeat(p.display, name)
	s.seat.OnRequestSetCursor(s.onRequestCursor)

	s.listeners = append(s.listeners,
		s.cursor.OnMotion(s.onCursorMotion),
		s.cursor.OnMotionAbsolute(s.onCursorMotionAbsolute),
		s.cursor.OnButton(s.onCursorButton),
		s.cursor.OnAxis(s.onCursorAxis),
		s.cursor.OnFrame(s.onCursorFrame),
	)

	return &s
}

func (s *seat) destroy() {
	for _, l := range s.listeners {
		l.Destroy()
	}
	s.cursorMgr.Destroy()
	s.cursor.Destroy()
}

func (s *seat) addPointer(dev wlr.Pointer) {
	s.cursor.AttachInputDevice(dev.Base())
	s.seat.SetCapabilities(s.seat.Capabilities() | wlr.SeatCapabilityPointer)
	s.SetCursorImage("left_ptr")

	s.pointers = append(s.pointers, dev)
}

func stamp(t time.Time) uint32 {
	return uint32(t.UnixMilli())
}

func unstamp(t uint32) time.Time {
	return time.UnixMilli(int64(t))
}

func (s *seat) onCursorMotion(dev wlr.Pointer, t time.Time, dx, dy float64) {
	s.p.cursor.Motion(stamp(t), dx, dy)
}

func (s *seat) onCursorMotionAbsolute(dev wlr.Pointer, t time.Time, x, y float64) {
	s.cursor.WarpAbsolute(dev.Base(), x, y)
	s.p.cursor.MotionAbsolute(stamp(t), s.cursor.X(), s.cursor.Y())
}

func (s *seat) onCursorButton(dev wlr.Pointer, t time.Time, b wlr.CursorButton, state wlr.ButtonState) {
	pressed := state == wlr.ButtonPressed
	s.p.cursor.Button(stamp(t), uint32(b), pressed)
	if !pressed {
		return
	}

	view, _, _, _ := s.p.server.ViewAt(s.cursor.X(), s.cursor.Y())
	if view == nil {
		return
	}
	if xv, ok := s.p.xdgView(view); ok {
		s.focus(xv)
	}
}

func (s *seat) onCursorAxis(dev wlr.Pointer, t time.Time, source wlr.AxisSource, orient wlr.AxisOrientation, delta float64, discrete int32) {
	s.axisOrient = orient
	s.axisSource = source
	s.p.cursor.Axis(stamp(t), orient == wlr.AxisOrientationVertical, delta, discrete)
}

func (s *seat) onCursorFrame() {
	s.p.cursor.Frame()
}

func (s *seat) onRequestCursor(client wlr.SeatClient, surface wlr.Surface, serial uint32, hotspotX, hotspotY int32) {
	if s.p.cursor.Mode() != phoc.CursorPassthrough {
		return
	}

	focused := s.seat.PointerState().FocusedClient()
	if focused == client {
		s.cursor.SetSurface(surface, hotspotX, hotspotY)
	}
}

// focus gives the keyboard to the view and activates it.
func (s *seat) focus(view *xdgView) {
	surface := view.xdg.Surface()
	prev := s.seat.KeyboardState().FocusedSurface()
	if prev == surface {
		return
	}
	if prev.Valid() {
		if xdg := prev.XDGSurface(); xdg.Valid() && (xdg.Role() == wlr.XDGSurfaceRoleToplevel) {
			xdg.Toplevel().SetActivated(false)
		}
	}

	keyboard := s.seat.GetKeyboard()
	view.xdg.Toplevel().SetActivated(true)
	s.seat.KeyboardNotifyEnter(surface, keyboard.Keycodes(), keyboard.Modifiers())
}

func (s *seat) wlrSurface(cs phoc.ClientSurface) (wlr.Surface, bool) {
	ws, ok := cs.(*surface)
	if !ok {
		var zero wlr.Surface
		return zero, false
	}
	return ws.s, true
}

func (s *seat) Name() string {
	return s.name
}

func (s *seat) HasGrab() bool {
	return false
}

func (s *seat) PointerEnter(cs phoc.ClientSurface, sx, sy float64) {
	if surface, ok := s.wlrSurface(cs); ok {
		s.seat.PointerNotifyEnter(surface, sx, sy)
	}
}

func (s *seat) PointerMotion(t uint32, sx, sy float64) {
	s.seat.PointerNotifyMotion(unstamp(t), sx, sy)
}

func (s *seat) PointerButton(t uint32, button uint32, pressed bool) {
	state := wlr.ButtonReleased
	if pressed {
		state = wlr.ButtonPressed
	}
	s.seat.PointerNotifyButton(unstamp(t), wlr.CursorButton(button), state)
}

func (s *seat) PointerAxis(t uint32, vertical bool, delta float64, discrete int32) {
	s.seat.PointerNotifyAxis(unstamp(t), s.axisOrient, delta, discrete, s.axisSource)
}

func (s *seat) PointerFrame() {
	s.seat.PointerNotifyFrame()
}

func (s *seat) PointerClearFocus() {
	s.seat.PointerNotifyClearFocus()
}

func (s *seat) SendPointerEnter(cs phoc.ClientSurface, sx, sy float64) {
	s.PointerEnter(cs, sx, sy)
}

func (s *seat) SendPointerMotion(t uint32, sx, sy float64) {
	s.PointerMotion(t, sx, sy)
}

func (s *seat) SendPointerButton(t uint32, button uint32, pressed bool) {
	s.PointerButton(t, button, pressed)
}

// Touch input devices are not attached to the seat.

func (s *seat) TouchDown(t uint32, id int32, cs phoc.ClientSurface, sx, sy float64) {
	s.p.log.WithField("id", id).Debugln("Touch down without touch support")
}

func (s *seat) TouchMotion(t uint32, id int32, sx, sy float64) {}

func (s *seat) TouchUp(t uint32, id int32) {}

func (s *seat) TouchCancel(id int32) {}

func (s *seat) InputMethodActive(client int) bool {
	return false
}

func (s *seat) SetCursorImage(name string) {
	if name == "" {
		return
	}
	s.cursor.SetXCursor(s.cursorMgr, name)
}

// WarpCursor warps in coordinates normalized to the bounds of the
// whole layout, which is what an absolute warp without a device uses.
func (s *seat) WarpCursor(lx, ly float64) {
	boxes := make([]geom.Rect[int], 0, len(s.p.server.Outputs()))
	for _, out := range s.p.server.Outputs() {
		boxes = append(boxes, out.Box())
	}

	nx, ny, ok := normalize(boxes, lx, ly)
	if !ok {
		return
	}

	var dev wlr.InputDevice
	s.cursor.WarpAbsolute(dev, nx, ny)
}

// normalize maps layout coordinates into [0, 1] relative to the union
// of boxes. It fails if the union is empty.
func normalize(boxes []geom.Rect[int], lx, ly float64) (nx, ny float64, ok bool) {
	var bounds geom.Rect[int]
	for _, box := range boxes {
		bounds = bounds.Union(box)
	}
	if bounds.Empty() {
		return 0, 0, false
	}

	b := geom.RConv[float64](bounds)
	return (lx - b.Min.X) / b.Dx(), (ly - b.Min.Y) / b.Dy(), true
}
