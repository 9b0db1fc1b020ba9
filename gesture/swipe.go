package gesture

import (
	"deedles.dev/phoc/geom"
	"golang.org/x/exp/slices"
)

// SwipeWindow is how far back, in milliseconds, a swipe looks when
// computing its velocity.
const SwipeWindow = 150

type sample struct {
	time uint32
	pos  geom.Point[float64]
}

// Swipe recognizes a drag and reports the velocity with which it
// ended.
type Swipe struct {
	Base

	// OnSwipe is called when the swipe ends with the velocity in
	// pixels per second.
	OnSwipe func(vx, vy float64)

	Touchpad bool

	samples []sample
}

// NewSwipe returns a swipe recognizer requiring n points.
func NewSwipe(n int) *Swipe {
	var s Swipe
	s.init(max(n, 1), &s)
	return &s
}

func (s *Swipe) filter(ev Event) bool {
	return filterSingle(ev, s.Touchpad, false, s.lastFingers, s.nPoints)
}

func (s *Swipe) check() bool {
	return true
}

func (s *Swipe) begin(seq Sequence) {
	s.samples = s.samples[:0]
	s.addSample(s.lastEvent.Time, s.centroid())
}

func (s *Swipe) update(seq Sequence) {
	s.addSample(s.lastEvent.Time, s.centroid())
}

func (s *Swipe) end(seq Sequence) {
	vx, vy := s.Velocity()
	if s.OnSwipe != nil {
		s.OnSwipe(vx, vy)
	}
}

func (s *Swipe) cancel(seq Sequence) {
	s.samples = s.samples[:0]
}

func (s *Swipe) addSample(t uint32, pos geom.Point[float64]) {
	s.samples = append(s.samples, sample{time: t, pos: pos})
	s.prune(t)
}

func (s *Swipe) prune(now uint32) {
	i := slices.IndexFunc(s.samples, func(smp sample) bool {
		return now-smp.time <= SwipeWindow
	})
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

// Velocity returns the velocity, in pixels per second, between the
// oldest and newest samples inside the swipe window. It is zero when
// fewer than two samples are available or no time passed between them.
func (s *Swipe) Velocity() (vx, vy float64) {
	if len(s.samples) < 2 {
		return 0, 0
	}

	first, last := s.samples[0], s.samples[len(s.samples)-1]
	dt := float64(last.time - first.time)
	if dt <= 0 {
		return 0, 0
	}

	d := last.pos.Sub(first.pos)
	return d.X / dt * 1000, d.Y / dt * 1000
}
