package phoc

import (
	"time"

	"deedles.dev/phoc/anim"
	"golang.org/x/exp/slices"
)

// FrameFunc is called before every frame of an output with the time
// since its previous frame. Returning false removes it.
type FrameFunc func(out *Output, dt time.Duration) bool

type frameCallback struct {
	id    uint
	owner any
	fn    FrameFunc
}

// AddFrameCallback registers fn to run before every frame until it
// returns false or is removed. owner identifies the animation that fn
// belongs to and must be comparable.
func (out *Output) AddFrameCallback(owner any, fn FrameFunc) uint {
	if len(out.callbacks) == 0 {
		// The output may have been idle. Start the clock over.
		out.lastFrame = time.Time{}
	}

	out.nextCallback++
	out.callbacks = append(out.callbacks, &frameCallback{
		id:    out.nextCallback,
		owner: owner,
		fn:    fn,
	})
	out.backend.ScheduleFrame()
	return out.nextCallback
}

// RemoveFrameCallback removes the callback with the given id. Unknown
// ids are ignored.
func (out *Output) RemoveFrameCallback(id uint) {
	out.callbacks = slices.DeleteFunc(out.callbacks, func(cb *frameCallback) bool {
		return cb.id == id
	})
}

// RemoveFrameCallbacks removes every callback registered by owner.
func (out *Output) RemoveFrameCallbacks(owner any) {
	out.callbacks = slices.DeleteFunc(out.callbacks, func(cb *frameCallback) bool {
		return cb.owner == owner
	})
}

// HasFrameCallbacks reports whether owner has a callback registered.
// A nil owner matches any callback.
func (out *Output) HasFrameCallbacks(owner any) bool {
	return slices.ContainsFunc(out.callbacks, func(cb *frameCallback) bool {
		return (owner == nil) || (cb.owner == owner)
	})
}

func (out *Output) runFrameCallbacks(now time.Time) {
	var dt time.Duration
	if !out.lastFrame.IsZero() {
		dt = now.Sub(out.lastFrame)
	}
	out.lastFrame = now

	// Callbacks may add and remove callbacks.
	for _, cb := range slices.Clone(out.callbacks) {
		if !slices.Contains(out.callbacks, cb) {
			continue
		}
		if !cb.fn(out, dt) {
			out.RemoveFrameCallback(cb.id)
		}
	}

	if len(out.callbacks) != 0 {
		out.backend.ScheduleFrame()
	}
}

// shield covers an output with an opaque rectangle which fades out
// after it is lowered.
type shield struct {
	raised bool
	alpha  float64
	fade   anim.Timed
}

func (s *shield) visible() bool {
	return s.raised && (s.alpha > 0)
}

// ShieldUp covers the whole output, including the overlay layer, until
// ShieldDown is called.
func (out *Output) ShieldUp() {
	out.RemoveFrameCallbacks(&out.shield)
	out.shield = shield{raised: true, alpha: 1}
	out.DamageWhole()
}

// ShieldDown fades the shield out.
func (out *Output) ShieldDown() {
	if !out.shield.raised || out.HasFrameCallbacks(&out.shield) {
		return
	}

	out.shield.fade = anim.Timed{
		Duration: ShieldFadeDuration,
		Easing:   anim.EaseOutCubic,
	}
	out.shield.fade.Start()
	out.AddFrameCallback(&out.shield, func(out *Output, dt time.Duration) bool {
		p, done := out.shield.fade.Tick(dt)
		out.shield.alpha = 1 - p
		out.DamageWhole()
		if done {
			out.shield.raised = false
			return false
		}
		return true
	})
}

// Shielded reports whether the shield is currently drawn.
func (out *Output) Shielded() bool {
	return out.shield.visible()
}
