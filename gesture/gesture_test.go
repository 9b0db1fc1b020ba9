package gesture

import (
	"math"
	"testing"
)

func touch(typ EventType, id int32, t uint32) Event {
	return Event{Type: typ, Touch: id, Time: t, Device: "touchscreen"}
}

func TestDragSingleTouch(t *testing.T) {
	d := NewDrag(1)

	var began, ended bool
	var offX, offY float64
	d.OnDragBegin = func(x, y float64) {
		began = true
		if (x != 10) || (y != 20) {
			t.Fatalf("expected drag to begin at (10, 20), got (%v, %v)", x, y)
		}
	}
	d.OnDragUpdate = func(x, y float64) { offX, offY = x, y }
	d.OnDragEnd = func(x, y float64) { ended = true }

	if !d.HandleEvent(touch(EventTouchDown, 0, 0), 10, 20) {
		t.Fatal("expected touch down to be handled")
	}
	if !began || !d.IsRecognized() {
		t.Fatal("expected drag to be recognized on touch down")
	}

	d.HandleEvent(touch(EventTouchMotion, 0, 10), 15, 60)
	if (offX != 5) || (offY != 40) {
		t.Fatalf("expected offset (5, 40), got (%v, %v)", offX, offY)
	}

	d.HandleEvent(touch(EventTouchUp, 0, 20), 15, 60)
	if !ended || d.IsRecognized() || d.IsActive() {
		t.Fatal("expected drag to end and release its point")
	}
}

func TestExceededPointsDenySequence(t *testing.T) {
	d := NewDrag(1)

	var cancelled int
	d.OnCancel = func(Sequence) { cancelled++ }

	d.HandleEvent(touch(EventTouchDown, 0, 0), 0, 0)
	if d.HandleEvent(touch(EventTouchDown, 1, 0), 5, 5) {
		t.Fatal("expected the extra touch to be refused")
	}
	if s := d.SequenceState(1); s != SequenceDenied {
		t.Fatalf("expected extra sequence to be denied, got %v", s)
	}
	if d.IsRecognized() || (cancelled != 1) {
		t.Fatal("expected exceeding the point count to cancel the drag")
	}

	d.HandleEvent(touch(EventTouchUp, 1, 5), 5, 5)
	d.HandleEvent(touch(EventTouchMotion, 0, 5), 3, 3)
	if d.IsRecognized() {
		t.Fatal("expected a gesture that once exceeded its points to stay unrecognized")
	}

	d.HandleEvent(touch(EventTouchUp, 0, 10), 3, 3)
	d.HandleEvent(touch(EventTouchDown, 2, 20), 0, 0)
	if !d.IsRecognized() {
		t.Fatal("expected a fresh sequence to be recognized again")
	}
}

func TestSequenceStateMonotonic(t *testing.T) {
	d := NewDrag(1)
	d.HandleEvent(touch(EventTouchDown, 0, 0), 0, 0)

	if d.SetSequenceState(0, SequenceNone) {
		t.Fatal("none to none must be refused")
	}
	if !d.SetSequenceState(0, SequenceClaimed) {
		t.Fatal("none to claimed must succeed")
	}
	if d.SetSequenceState(0, SequenceNone) {
		t.Fatal("claimed to none must be refused")
	}
	if !d.SetSequenceState(0, SequenceDenied) {
		t.Fatal("claimed to denied must succeed")
	}
	if d.SetSequenceState(0, SequenceClaimed) || d.SetSequenceState(0, SequenceNone) {
		t.Fatal("denied must be final")
	}
	if s := d.SequenceState(0); s != SequenceDenied {
		t.Fatalf("expected denied, got %v", s)
	}
	if d.IsActive() {
		t.Fatal("expected denial to release the point")
	}
}

func TestGroupPropagatesClaim(t *testing.T) {
	drag := NewDrag(1)
	swipe := NewSwipe(1)
	other := NewDrag(1)
	swipe.Group(drag)

	var set Set
	set.Add(drag)
	set.Add(swipe)
	set.Add(other)

	if !set.HandleEvent(touch(EventTouchDown, 3, 0), 0, 0) {
		t.Fatal("expected touch down to be handled")
	}

	var otherCancelled bool
	other.OnCancel = func(Sequence) { otherCancelled = true }

	drag.SetSequenceState(3, SequenceClaimed)
	if s := swipe.SequenceState(3); s != SequenceClaimed {
		t.Fatalf("expected group member to see claimed, got %v", s)
	}
	if s := other.SequenceState(3); s != SequenceDenied {
		t.Fatalf("expected competitor to be denied, got %v", s)
	}
	if !otherCancelled || other.IsRecognized() {
		t.Fatal("expected denied competitor to be cancelled")
	}

	swipe.Ungroup()
	if swipe.IsGroupedWith(drag) {
		t.Fatal("expected ungroup to split the group")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	d := NewDrag(1)
	var cancelled int
	d.OnCancel = func(Sequence) { cancelled++ }

	d.HandleEvent(touch(EventTouchDown, 0, 0), 0, 0)
	d.HandleEvent(touch(EventTouchCancel, 0, 5), 0, 0)
	d.HandleEvent(touch(EventTouchCancel, 0, 5), 0, 0)
	if cancelled != 1 {
		t.Fatalf("expected one cancel, got %v", cancelled)
	}
	if d.IsActive() {
		t.Fatal("expected cancel to release the point")
	}
}

func TestEventWithoutDeviceIgnored(t *testing.T) {
	d := NewDrag(1)
	if d.HandleEvent(Event{Type: EventTouchDown}, 0, 0) {
		t.Fatal("expected event without device to be ignored")
	}
}

func TestSwipeVelocityResamplingInvariance(t *testing.T) {
	run := func(steps int) (vx, vy float64) {
		s := NewSwipe(1)
		s.OnSwipe = func(x, y float64) { vx, vy = x, y }

		s.HandleEvent(touch(EventTouchDown, 0, 1000), 0, 0)
		for i := 1; i <= steps; i++ {
			f := float64(i) / float64(steps)
			s.HandleEvent(touch(EventTouchMotion, 0, 1000+uint32(100*i/steps)), 300*f, -50*f)
		}
		s.HandleEvent(touch(EventTouchUp, 0, 1100), 300, -50)
		return vx, vy
	}

	for _, steps := range []int{1, 4, 25} {
		vx, vy := run(steps)
		if (math.Abs(vx-3000) > 1e-9) || (math.Abs(vy+500) > 1e-9) {
			t.Fatalf("%v steps: expected (3000, -500), got (%v, %v)", steps, vx, vy)
		}
	}
}

func TestSwipeWindowPrunesOldSamples(t *testing.T) {
	s := NewSwipe(1)
	s.HandleEvent(touch(EventTouchDown, 0, 0), 0, 0)
	s.HandleEvent(touch(EventTouchMotion, 0, 1000), 0, 0)
	s.HandleEvent(touch(EventTouchMotion, 0, 1100), 100, 0)

	vx, _ := s.Velocity()
	if vx != 1000 {
		t.Fatalf("expected 1000 px/s from the last 150 ms only, got %v", vx)
	}
}

func TestSwipeZeroTime(t *testing.T) {
	s := NewSwipe(1)
	s.HandleEvent(touch(EventTouchDown, 0, 50), 0, 0)
	s.HandleEvent(touch(EventTouchMotion, 0, 50), 100, 0)
	if vx, vy := s.Velocity(); (vx != 0) || (vy != 0) {
		t.Fatalf("expected zero velocity, got (%v, %v)", vx, vy)
	}
}

func TestZoomScaleDelta(t *testing.T) {
	z := NewZoom()
	var scale float64
	z.OnScaleChanged = func(s float64) { scale = s }

	z.HandleEvent(touch(EventTouchDown, 0, 0), 0, 0)
	if z.IsRecognized() {
		t.Fatal("expected zoom to need two points")
	}
	z.HandleEvent(touch(EventTouchDown, 1, 0), 100, 0)
	if !z.IsRecognized() {
		t.Fatal("expected zoom to be recognized with two points")
	}

	z.HandleEvent(touch(EventTouchMotion, 1, 10), 150, 0)
	if scale != 1.5 {
		t.Fatalf("expected scale 1.5, got %v", scale)
	}
}

func TestZoomZeroInitialDistance(t *testing.T) {
	z := NewZoom()
	var called bool
	z.OnScaleChanged = func(float64) { called = true }

	z.HandleEvent(touch(EventTouchDown, 0, 0), 10, 10)
	z.HandleEvent(touch(EventTouchDown, 1, 0), 10, 10)
	z.HandleEvent(touch(EventTouchMotion, 1, 10), 50, 10)
	if called {
		t.Fatal("expected no scale signal when the initial distance is zero")
	}
	if _, ok := z.ScaleDelta(); ok {
		t.Fatal("expected ScaleDelta to report failure")
	}
}

func TestTouchpadPinch(t *testing.T) {
	z := NewZoom()
	z.Touchpad = true
	var scale float64
	z.OnScaleChanged = func(s float64) { scale = s }

	ev := Event{Type: EventPinchBegin, Fingers: 2, Scale: 1, Device: "touchpad"}
	z.HandleEvent(ev, 0, 0)

	ev.Type, ev.Scale = EventPinchUpdate, 2
	z.HandleEvent(ev, 0, 0)
	if scale != 2 {
		t.Fatalf("expected scale 2, got %v", scale)
	}

	if z.HandleEvent(Event{Type: EventPinchBegin, Fingers: 3, Device: "touchpad"}, 0, 0) {
		t.Fatal("expected three finger pinch to be filtered")
	}
}

func TestTouchpadSwipeFingerCountCached(t *testing.T) {
	d := NewDrag(3)
	d.Touchpad = true
	var ended bool
	var offX float64
	d.OnDragEnd = func(x, y float64) { ended, offX = true, x }

	d.HandleEvent(Event{Type: EventSwipeBegin, Fingers: 3, Device: "touchpad"}, 0, 0)
	d.HandleEvent(Event{Type: EventSwipeUpdate, Fingers: 3, DX: 30, Device: "touchpad"}, 0, 0)
	if !d.HandleEvent(Event{Type: EventSwipeEnd, Device: "touchpad"}, 0, 0) {
		t.Fatal("expected end without finger count to be handled")
	}
	if !ended || (offX != 30) {
		t.Fatalf("expected drag end with offset 30, got %v (ended %v)", offX, ended)
	}

	if d.HandleEvent(touch(EventTouchDown, 0, 0), 0, 0) {
		t.Fatal("expected touchpad drag to ignore touch events")
	}
}
