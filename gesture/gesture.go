package gesture

import (
	"deedles.dev/phoc/geom"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

var log = logrus.WithField("component", "gesture")

// Gesture is a recognizer. Drag, Swipe and Zoom implement it by
// embedding Base.
type Gesture interface {
	// HandleEvent feeds ev, which happened at the layout coordinates
	// (lx, ly), to the recognizer. It reports whether the event was
	// consumed.
	HandleEvent(ev Event, lx, ly float64) bool

	// Reset drops every point, cancelling the gesture if it was
	// recognized.
	Reset()

	IsRecognized() bool
	IsActive() bool
	SequenceState(seq Sequence) SequenceState
	SetSequenceState(seq Sequence, state SequenceState) bool

	base() *Base
}

// recognizer is implemented by the concrete gestures.
type recognizer interface {
	filter(ev Event) bool
	check() bool
	begin(seq Sequence)
	update(seq Sequence)
	end(seq Sequence)
	cancel(seq Sequence)
}

type point struct {
	seq   Sequence
	event Event
	start geom.Point[float64]
	pos   geom.Point[float64]
	scale float64
	state SequenceState
}

// Base holds the state shared by all recognizers. It is not useful on
// its own.
type Base struct {
	// OnBegin, OnEnd and OnCancel are called when the gesture starts
	// being recognized, stops being recognized, or is cancelled.
	OnBegin  func(seq Sequence)
	OnEnd    func(seq Sequence)
	OnCancel func(seq Sequence)

	// OnSequenceStateChanged is called whenever a sequence changes
	// state, including changes propagated from group members.
	OnSequenceStateChanged func(seq Sequence, state SequenceState)

	nPoints     int
	impl        recognizer
	points      []*point
	denied      map[Sequence]struct{}
	recognized  bool
	exceeded    bool
	lastFingers int
	lastEvent   Event

	group *group
	set   *Set
}

func (g *Base) init(n int, impl recognizer) {
	g.nPoints = n
	g.impl = impl
	g.denied = make(map[Sequence]struct{})
}

func (g *Base) base() *Base {
	return g
}

// NPoints returns the exact number of points the gesture requires.
func (g *Base) NPoints() int {
	return g.nPoints
}

func (g *Base) IsRecognized() bool {
	return g.recognized
}

// IsActive reports whether the gesture is tracking any points.
func (g *Base) IsActive() bool {
	return len(g.points) != 0
}

// LastEvent returns the most recent event the gesture consumed.
func (g *Base) LastEvent() Event {
	return g.lastEvent
}

func (g *Base) point(seq Sequence) *point {
	i := slices.IndexFunc(g.points, func(p *point) bool { return p.seq == seq })
	if i < 0 {
		return nil
	}
	return g.points[i]
}

// Point returns the last known layout coordinates of seq.
func (g *Base) Point(seq Sequence) (geom.Point[float64], bool) {
	p := g.point(seq)
	if p == nil {
		return geom.Point[float64]{}, false
	}
	return p.pos, true
}

// StartPoint returns the layout coordinates at which seq began.
func (g *Base) StartPoint(seq Sequence) (geom.Point[float64], bool) {
	p := g.point(seq)
	if p == nil {
		return geom.Point[float64]{}, false
	}
	return p.start, true
}

// Sequences returns the sequences the gesture is tracking.
func (g *Base) Sequences() []Sequence {
	seqs := make([]Sequence, 0, len(g.points))
	for _, p := range g.points {
		seqs = append(seqs, p.seq)
	}
	return seqs
}

// centroid returns the average position of the tracked points.
func (g *Base) centroid() (c geom.Point[float64]) {
	if len(g.points) == 0 {
		return c
	}
	for _, p := range g.points {
		c = c.Add(p.pos)
	}
	return c.Div(float64(len(g.points)))
}

func (g *Base) startCentroid() (c geom.Point[float64]) {
	if len(g.points) == 0 {
		return c
	}
	for _, p := range g.points {
		c = c.Add(p.start)
	}
	return c.Div(float64(len(g.points)))
}

func (g *Base) activePoints() (n int) {
	for _, p := range g.points {
		if p.state == SequenceDenied {
			continue
		}
		if p.seq == TouchpadSequence {
			n += g.lastFingers
			continue
		}
		n++
	}
	return n
}

func (g *Base) hasMatchingPoints() bool {
	return !g.exceeded && (g.activePoints() == g.nPoints)
}

func (g *Base) checkRecognized(seq Sequence) {
	recognized := g.hasMatchingPoints() && g.impl.check()
	if recognized == g.recognized {
		return
	}

	g.recognized = recognized
	if recognized {
		g.impl.begin(seq)
		if g.OnBegin != nil {
			g.OnBegin(seq)
		}
		return
	}

	g.impl.end(seq)
	if g.OnEnd != nil {
		g.OnEnd(seq)
	}
}

func (g *Base) HandleEvent(ev Event, lx, ly float64) bool {
	if ev.Device == "" {
		log.WithField("event", ev.Type).Warnln("Gesture event without a backing device")
		return false
	}

	if ev.Type.touchpad() && !ev.Type.ends() {
		if ev.Type.begins() || g.point(TouchpadSequence) != nil {
			g.lastFingers = ev.Fingers
		}
	}
	if g.impl.filter(ev) {
		return false
	}

	seq := ev.Sequence()
	if _, ok := g.denied[seq]; ok {
		if ev.Type.ends() {
			delete(g.denied, seq)
			g.checkEmpty()
		}
		return false
	}

	g.lastEvent = ev
	switch {
	case ev.Type.begins():
		return g.beginPoint(seq, ev, lx, ly)

	case ev.cancels():
		if g.point(seq) == nil {
			return false
		}
		g.cancelSequence(seq)
		return true

	case ev.Type.ends():
		p := g.point(seq)
		if p == nil {
			return false
		}
		g.updatePoint(p, ev, lx, ly)
		if g.recognized {
			g.impl.update(seq)
		}
		g.removePoint(seq)
		g.checkRecognized(seq)
		g.checkEmpty()
		return true

	default:
		p := g.point(seq)
		if p == nil {
			return false
		}
		g.updatePoint(p, ev, lx, ly)
		if g.recognized {
			g.impl.update(seq)
			return true
		}
		g.checkRecognized(seq)
		return true
	}
}

func (g *Base) beginPoint(seq Sequence, ev Event, lx, ly float64) bool {
	if p := g.point(seq); p != nil {
		log.WithField("sequence", seq).Warnln("Gesture sequence began twice")
		g.updatePoint(p, ev, lx, ly)
		return true
	}

	count := 1
	if seq == TouchpadSequence {
		count = ev.Fingers
	}
	if g.activePoints()+count > g.nPoints {
		g.exceeded = true
		g.denied[seq] = struct{}{}
		if g.recognized {
			g.recognized = false
			g.impl.cancel(seq)
			if g.OnCancel != nil {
				g.OnCancel(seq)
			}
		}
		return false
	}

	pos := geom.Pt(lx, ly)
	g.points = append(g.points, &point{
		seq:   seq,
		event: ev,
		start: pos,
		pos:   pos,
		scale: 1,
	})
	g.checkRecognized(seq)
	return true
}

func (g *Base) updatePoint(p *point, ev Event, lx, ly float64) {
	p.event = ev
	if p.seq != TouchpadSequence {
		p.pos = geom.Pt(lx, ly)
		return
	}

	p.pos = p.pos.Add(geom.Pt(ev.DX, ev.DY))
	if ev.Type.pinch() && !ev.Type.ends() {
		p.scale = ev.Scale
	}
}

func (g *Base) removePoint(seq Sequence) {
	g.points = slices.DeleteFunc(g.points, func(p *point) bool { return p.seq == seq })
}

func (g *Base) checkEmpty() {
	if (len(g.points) == 0) && (len(g.denied) == 0) {
		g.exceeded = false
	}
}

// cancelSequence drops seq. If the gesture was recognized it is
// cancelled. Cancelling an unknown sequence does nothing.
func (g *Base) cancelSequence(seq Sequence) {
	if g.point(seq) == nil {
		return
	}

	g.removePoint(seq)
	if g.recognized {
		g.recognized = false
		g.impl.cancel(seq)
		if g.OnCancel != nil {
			g.OnCancel(seq)
		}
	}
	g.checkEmpty()
}

func (g *Base) Reset() {
	if g.recognized {
		g.recognized = false
		var seq Sequence
		if len(g.points) != 0 {
			seq = g.points[0].seq
		}
		g.impl.cancel(seq)
		if g.OnCancel != nil {
			g.OnCancel(seq)
		}
	}
	g.points = nil
	clear(g.denied)
	g.exceeded = false
}

// SequenceState returns the state of seq. Sequences that were denied
// report SequenceDenied until they end.
func (g *Base) SequenceState(seq Sequence) SequenceState {
	if _, ok := g.denied[seq]; ok {
		return SequenceDenied
	}
	if p := g.point(seq); p != nil {
		return p.state
	}
	return SequenceNone
}

// SetSequenceState moves seq into state, propagating the change to the
// gesture's group. It reports whether the state changed. Transitions
// that would move a sequence backwards are refused.
func (g *Base) SetSequenceState(seq Sequence, state SequenceState) bool {
	if !g.setState(seq, state) {
		return false
	}

	if g.group != nil {
		for _, m := range g.group.members {
			if m != g {
				m.setState(seq, state)
			}
		}
	}
	if (state == SequenceClaimed) && (g.set != nil) {
		g.set.claimed(g, seq)
	}
	return true
}

func (g *Base) setState(seq Sequence, state SequenceState) bool {
	if _, ok := g.denied[seq]; ok {
		return false
	}
	p := g.point(seq)
	if p == nil || !p.state.canBecome(state) {
		return false
	}

	p.state = state
	if g.OnSequenceStateChanged != nil {
		g.OnSequenceStateChanged(seq, state)
	}
	if state == SequenceDenied {
		g.denied[seq] = struct{}{}
		g.cancelSequence(seq)
	}
	return true
}
