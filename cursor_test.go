package phoc

import (
	"strings"
	"testing"

	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/layer"
)

const btnLeft = 0x110

func TestCursorPassthrough(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)
	a, as := addView(server, "a", geom.XYWH(0, 0, 100, 100))
	b, bs := addView(server, "b", geom.XYWH(50, 50, 100, 100))

	seat := newSeat()
	c := server.NewCursor(seat)
	if c.Mode() != CursorPassthrough {
		t.Fatalf("unexpected mode: %v", c.Mode())
	}

	c.MotionAbsolute(1, 20, 30)
	if seat.focus != as {
		t.Fatalf("expected focus on a, got %v", seat.focus)
	}
	c.Motion(2, 5, 5)
	if last := seat.last(); last != "motion 25,35" {
		t.Fatalf("unexpected call: %q", last)
	}

	c.MotionAbsolute(3, 75, 75)
	if seat.focus != bs {
		t.Fatalf("expected focus on b, got %v", seat.focus)
	}
	if seat.cursorImage != "left_ptr" {
		t.Fatalf("unexpected cursor image: %q", seat.cursorImage)
	}

	c.MotionAbsolute(4, 20, 30)
	c.Button(5, btnLeft, true)
	if last := seat.last(); last != "button 272 true" {
		t.Fatalf("unexpected call: %q", last)
	}
	if views := server.Views(); views[len(views)-1] != a {
		t.Fatal("pressed view was not raised")
	}
	c.Button(6, btnLeft, false)
	if last := seat.last(); last != "button 272 false" {
		t.Fatalf("unexpected call: %q", last)
	}

	c.Axis(7, true, 1, 0)
	if last := seat.last(); last != "axis 1" {
		t.Fatalf("unexpected call: %q", last)
	}

	server.RemoveView(a)
	server.RemoveView(b)
	if seat.focus != nil {
		t.Fatalf("focus kept after views were removed: %v", seat.focus)
	}
}

func TestCursorButtonBookkeeping(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)
	addView(server, "a", geom.XYWH(0, 0, 100, 100))

	seat := newSeat()
	c := server.NewCursor(seat)
	c.MotionAbsolute(1, 10, 10)

	count := func() (n int) {
		for _, call := range seat.calls {
			if (len(call) > 7) && (call[:7] == "button ") {
				n++
			}
		}
		return n
	}

	c.Button(2, btnLeft, true)
	c.Button(3, btnLeft, true)
	if n := count(); n != 1 {
		t.Fatalf("expected one press, got %v", n)
	}
	c.Button(4, btnLeft+1, false)
	if n := count(); n != 1 {
		t.Fatalf("release of an unpressed button was sent")
	}
	c.Button(5, btnLeft, false)
	if n := count(); n != 2 {
		t.Fatalf("expected a press and a release, got %v", n)
	}
}

func TestCursorClampedToOutput(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)

	seat := newSeat()
	c := server.NewCursor(seat)
	c.MotionAbsolute(1, 100, 100)
	c.Motion(2, 1000, -1000)

	if p := c.Position(); p != geom.Pt(399.0, 0) {
		t.Fatalf("unexpected position: %v", p)
	}
	if seat.warp != c.Position() {
		t.Fatalf("platform cursor not warped: %v", seat.warp)
	}
}

func TestCursorGrabBypass(t *testing.T) {
	server := newTestServer(t, nil)
	out, _ := addTestOutput(t, server, "test", 400, 800)
	bar := newSurface("bar", 400, 20)
	addLayerSurface(t, server, out, bar, "bar", panelState(layer.Top, geom.EdgeTop, 20))

	seat := newSeat()
	seat.grab = true
	c := server.NewCursor(seat)

	if first := seat.calls[0]; first != "send-enter bar 0,0" {
		t.Fatalf("unexpected call: %q", first)
	}
	c.MotionAbsolute(1, 200, 10)
	if last := seat.last(); last != "send-motion 200,10" {
		t.Fatalf("unexpected call: %q", last)
	}
	c.Button(2, btnLeft, true)
	if last := seat.last(); last != "send-button 272 true" {
		t.Fatalf("unexpected call: %q", last)
	}
}

func TestCursorResize(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)
	view, _ := addView(server, "v", geom.XYWH(100, 100, 100, 100))

	seat := newSeat()
	c := server.NewCursor(seat)
	c.MotionAbsolute(1, 200, 200)
	c.Button(2, btnLeft, true)

	c.StartResize(view, geom.EdgeRight|geom.EdgeBottom)
	if c.Mode() != CursorResize {
		t.Fatalf("unexpected mode: %v", c.Mode())
	}
	if seat.cursorImage != "bottom_right_corner" {
		t.Fatalf("unexpected cursor image: %q", seat.cursorImage)
	}

	c.MotionAbsolute(3, 250, 230)
	if box := view.Box(); box != geom.XYWH(100, 100, 150, 130) {
		t.Fatalf("unexpected box: %v", box)
	}

	c.MotionAbsolute(4, 0, 0)
	if box := view.Box(); box != geom.XYWH(100, 100, 1, 1) {
		t.Fatalf("expected minimal box, got %v", box)
	}

	c.Button(5, btnLeft, false)
	if c.Mode() != CursorPassthrough {
		t.Fatalf("unexpected mode: %v", c.Mode())
	}
}

func TestCursorResizeTopLeft(t *testing.T) {
	m := inputModeResize{
		edges: geom.EdgeTop | geom.EdgeLeft,
		start: geom.XYWH(100, 100, 100, 100),
	}

	if r := m.resized(geom.Pt(-10.0, -20)); r != geom.Rt(90, 80, 200, 200) {
		t.Fatalf("unexpected box: %v", r)
	}
	if r := m.resized(geom.Pt(500.0, 500)); r != geom.Rt(199, 199, 200, 200) {
		t.Fatalf("unexpected box: %v", r)
	}
}

func TestCursorMoveSuggestion(t *testing.T) {
	server := newTestServer(t, nil)
	out, _ := addTestOutput(t, server, "test", 400, 800)
	view, _ := addView(server, "v", geom.XYWH(100, 100, 100, 100))

	seat := newSeat()
	c := server.NewCursor(seat)
	c.MotionAbsolute(1, 150, 150)
	c.Button(2, btnLeft, true)
	c.StartMove(view)
	if c.Mode() != CursorMove {
		t.Fatalf("unexpected mode: %v", c.Mode())
	}

	c.MotionAbsolute(3, 200, 300)
	if box := view.Box(); box != geom.XYWH(150, 250, 100, 100) {
		t.Fatalf("unexpected box: %v", box)
	}

	c.MotionAbsolute(4, 200, 5)
	if len(view.Blings()) != 1 {
		t.Fatalf("expected a suggestion, got %v blings", len(view.Blings()))
	}
	if box := view.Box(); box != geom.XYWH(150, 250, 100, 100) {
		t.Fatalf("view moved while snapping: %v", box)
	}
	settle(t, out)
	if box := view.Blings()[0].Box(); box != out.Usable() {
		t.Fatalf("suggestion did not reach the usable area: %v", box)
	}

	c.Button(5, btnLeft, false)
	if !view.Maximized() {
		t.Fatal("view was not maximized")
	}
	if len(view.Blings()) != 0 {
		t.Fatal("suggestion was not removed")
	}
	if c.Mode() != CursorPassthrough {
		t.Fatalf("unexpected mode: %v", c.Mode())
	}
}

func TestCursorMoveTile(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)
	view, _ := addView(server, "v", geom.XYWH(100, 100, 100, 100))

	seat := newSeat()
	c := server.NewCursor(seat)
	c.MotionAbsolute(1, 150, 150)
	c.Button(2, btnLeft, true)
	c.StartMove(view)

	c.MotionAbsolute(3, 395, 300)
	c.Button(4, btnLeft, false)
	if view.Tiled() != geom.EdgeRight {
		t.Fatalf("expected tiled right, got %v", view.Tiled())
	}
	if box := view.Box(); box != geom.Rt(200, 0, 400, 800) {
		t.Fatalf("unexpected box: %v", box)
	}

	// Moving a tiled view restores its size.
	c.MotionAbsolute(5, 300, 400)
	c.Button(6, btnLeft, true)
	c.StartMove(view)
	c.MotionAbsolute(7, 250, 400)
	if view.Tiled() != geom.EdgeNone {
		t.Fatal("view is still tiled")
	}
	if size := view.Box().Size(); size != geom.Pt(100, 100) {
		t.Fatalf("size was not restored: %v", size)
	}
}

func TestCursorTouch(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)
	addView(server, "v", geom.XYWH(0, 0, 100, 100))

	seat := newSeat()
	c := server.NewCursor(seat)

	c.TouchDown(1, 0, 50, 50)
	if last := seat.last(); last != "touch-down 0 v 50,50" {
		t.Fatalf("unexpected call: %q", last)
	}
	c.TouchDown(2, 0, 60, 60)
	if c.TouchPoints() != 1 {
		t.Fatalf("duplicate touch point added: %v", c.TouchPoints())
	}
	if last := seat.last(); last != "touch-down 0 v 50,50" {
		t.Fatalf("duplicate touch point sent: %q", last)
	}

	n := len(seat.calls)
	c.TouchMotion(3, 5, 10, 10)
	c.TouchUp(3, 5)
	c.TouchCancel(3, 5)
	if len(seat.calls) != n {
		t.Fatalf("events for an unknown touch point were sent: %v", seat.calls[n:])
	}

	c.TouchMotion(4, 0, 60, 70)
	if last := seat.last(); last != "touch-motion 0 60,70" {
		t.Fatalf("unexpected call: %q", last)
	}
	c.TouchUp(5, 0)
	if last := seat.last(); last != "touch-up 0" {
		t.Fatalf("unexpected call: %q", last)
	}
	if c.TouchPoints() != 0 {
		t.Fatalf("touch point was not removed: %v", c.TouchPoints())
	}
}

func TestCursorTouchDragClaim(t *testing.T) {
	server, out, _, d := newDraggable(t, geom.EdgeTop, 0, 300)

	seat := newSeat()
	c := server.NewCursor(seat)

	c.TouchDown(1, 0, 200, 50)
	if d.State() != DragStatePending {
		t.Fatalf("expected pending, got %v", d.State())
	}
	if last := seat.last(); last != "touch-down 0 panel 200,50" {
		t.Fatalf("unexpected call: %q", last)
	}

	c.TouchMotion(2, 0, 200, 150)
	if d.State() != DragStateDragging {
		t.Fatalf("expected dragging, got %v", d.State())
	}
	if d.Margin() != 100 {
		t.Fatalf("expected margin 100, got %v", d.Margin())
	}
	if last := seat.last(); last != "touch-cancel 0" {
		t.Fatalf("claimed touch was not cancelled: %q", last)
	}

	n := len(seat.calls)
	c.TouchMotion(3, 0, 200, 160)
	c.TouchUp(400, 0)
	for _, call := range seat.calls[n:] {
		if strings.HasPrefix(call, "touch") {
			t.Fatalf("claimed touch reached the client: %q", call)
		}
	}
	if d.State() != DragStateAnimating {
		t.Fatalf("expected animating, got %v", d.State())
	}

	settle(t, out)
	if d.Fold() != Folded {
		t.Fatalf("expected folded, got %v", d.Fold())
	}
}

func TestCursorTouchDragDenied(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)
	addView(server, "v", geom.XYWH(0, 0, 400, 800))

	seat := newSeat()
	c := server.NewCursor(seat)

	c.TouchDown(1, 0, 100, 100)
	c.TouchMotion(2, 0, 100, 300)
	if last := seat.last(); last != "touch-motion 0 100,300" {
		t.Fatalf("unexpected call: %q", last)
	}
	c.TouchUp(3, 0)
	if last := seat.last(); last != "touch-up 0" {
		t.Fatalf("unexpected call: %q", last)
	}
}

func TestPointerLock(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)
	_, s := addView(server, "v", geom.XYWH(100, 100, 100, 100))

	seat := newSeat()
	c := server.NewCursor(seat)
	c.MotionAbsolute(1, 150, 150)

	pc := PointerConstraint{
		Type:    ConstraintLock,
		Surface: s,
		Hint:    geom.Pt(10.0, 20),
		HasHint: true,
	}
	c.SetConstraint(&pc)
	if !pc.Active() {
		t.Fatal("constraint is not active")
	}

	c.Motion(2, 30, 30)
	if p := c.Position(); p != geom.Pt(150.0, 150) {
		t.Fatalf("locked cursor moved to %v", p)
	}

	c.ClearConstraint()
	if pc.Active() {
		t.Fatal("constraint is still active")
	}
	if p := c.Position(); p != geom.Pt(110.0, 120) {
		t.Fatalf("cursor not moved to the hint: %v", p)
	}
	if seat.warp != geom.Pt(110.0, 120) {
		t.Fatalf("platform cursor not warped: %v", seat.warp)
	}

	c.Motion(3, 30, 30)
	if p := c.Position(); p != geom.Pt(140.0, 150) {
		t.Fatalf("unexpected position: %v", p)
	}
}

func TestPointerConfine(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)
	_, s := addView(server, "v", geom.XYWH(100, 100, 100, 100))

	seat := newSeat()
	c := server.NewCursor(seat)
	c.MotionAbsolute(1, 150, 150)

	c.SetConstraint(&PointerConstraint{
		Type:    ConstraintConfine,
		Surface: s,
		Region:  geom.RegionOf(geom.XYWH(0, 0, 60, 60)),
	})

	c.Motion(2, 5, 5)
	if p := c.Position(); p != geom.Pt(155.0, 155) {
		t.Fatalf("unexpected position: %v", p)
	}
	c.Motion(3, 20, 2)
	if p := c.Position(); p != geom.Pt(155.0, 157) {
		t.Fatalf("cursor did not slide along the region: %v", p)
	}
	c.Motion(4, 20, 20)
	if p := c.Position(); p != geom.Pt(155.0, 157) {
		t.Fatalf("cursor left the region: %v", p)
	}
}

func TestPointerConstraintInactive(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)
	_, s := addView(server, "v", geom.XYWH(100, 100, 100, 100))

	seat := newSeat()
	c := server.NewCursor(seat)
	c.MotionAbsolute(1, 10, 10)

	pc := PointerConstraint{Type: ConstraintLock, Surface: s}
	c.SetConstraint(&pc)
	if pc.Active() {
		t.Fatal("constraint active without focus")
	}
	c.MotionAbsolute(2, 150, 150)
	if !pc.Active() {
		t.Fatal("constraint not activated by focus")
	}
	c.MotionAbsolute(3, 10, 10)
	if p := c.Position(); p != geom.Pt(150.0, 150) {
		t.Fatalf("locked cursor moved to %v", p)
	}
}

func TestShellReveal(t *testing.T) {
	server := newTestServer(t, nil)
	out, _ := addTestOutput(t, server, "test", 400, 800)
	addLayerSurface(t, server, out, newSurface("bar", 400, 20), "bar", panelState(layer.Top, geom.EdgeTop, 20))
	view, _ := addView(server, "v", geom.XYWH(0, 0, 100, 100))
	server.SetFullscreen(view, out)

	seat := newSeat()
	c := server.NewCursor(seat)

	c.MotionAbsolute(1, 200, 3)
	c.Button(2, btnLeft, true)
	c.Button(3, btnLeft, false)
	if out.ShellRevealed() {
		t.Fatal("press outside of the threshold revealed the shell")
	}

	c.MotionAbsolute(4, 200, 1)
	c.Button(5, btnLeft, true)
	c.Button(6, btnLeft, false)
	if !out.ShellRevealed() {
		t.Fatal("shell was not revealed")
	}

	c.MotionAbsolute(7, 200, 400)
	c.Button(8, btnLeft, true)
	c.Button(9, btnLeft, false)
	if out.ShellRevealed() {
		t.Fatal("press on the fullscreen view did not hide the shell")
	}

	c.TouchDown(10, 0, 200, 4)
	c.TouchUp(11, 0)
	if !out.ShellRevealed() {
		t.Fatal("touch did not reveal the shell")
	}
}

func TestShellRevealNeedsPanel(t *testing.T) {
	server := newTestServer(t, nil)
	out, _ := addTestOutput(t, server, "test", 400, 800)
	addLayerSurface(t, server, out, newSurface("dock", 400, 20), "dock", panelState(layer.Top, geom.EdgeBottom, 20))
	view, _ := addView(server, "v", geom.XYWH(0, 0, 100, 100))
	server.SetFullscreen(view, out)

	seat := newSeat()
	c := server.NewCursor(seat)
	c.TouchDown(1, 0, 200, 798)
	c.TouchUp(2, 0)
	c.TouchDown(3, 0, 200, 1)
	c.TouchUp(4, 0)
	if out.ShellRevealed() {
		t.Fatal("shell revealed without a panel on a configured edge")
	}
}

func TestCursorDestroy(t *testing.T) {
	server := newTestServer(t, nil)
	c := server.NewCursor(newSeat())
	if len(server.Cursors()) != 1 {
		t.Fatal("cursor was not added")
	}
	c.Destroy()
	if len(server.Cursors()) != 0 {
		t.Fatal("cursor was not removed")
	}
}
