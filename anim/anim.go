// Package anim provides easing curves and frame driven animations.
package anim

import (
	"math"
	"time"
)

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float64) float64

func Linear(t float64) float64 {
	return t
}

func EaseOutCubic(t float64) float64 {
	p := t - 1
	return p*p*p + 1
}

func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	p := 2*t - 2
	return 0.5*p*p*p + 1
}

func EaseOutQuad(t float64) float64 {
	return -t * (t - 2)
}

// Ease applies e to t after clamping t to [0, 1]. A nil Easing is
// linear.
func (e Easing) Ease(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	if e == nil {
		return t
	}
	return e(t)
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Timed is an animation of fixed duration that advances when it is
// ticked by an output's frame clock.
type Timed struct {
	Duration time.Duration
	Easing   Easing

	elapsed time.Duration
	running bool
}

// Start restarts the animation from the beginning.
func (a *Timed) Start() {
	a.elapsed = 0
	a.running = true
}

// Stop stops the animation where it is.
func (a *Timed) Stop() {
	a.running = false
}

func (a *Timed) Running() bool {
	return a.running
}

// Tick advances the animation by dt and returns the eased progress.
// done is true once the animation has reached its end, after which it
// stops running.
func (a *Timed) Tick(dt time.Duration) (progress float64, done bool) {
	if !a.running {
		return a.Progress(), true
	}

	a.elapsed += dt
	if (a.Duration <= 0) || (a.elapsed >= a.Duration) {
		a.elapsed = a.Duration
		a.running = false
		return 1, true
	}
	return a.Progress(), false
}

// Progress returns the current eased progress.
func (a *Timed) Progress() float64 {
	if a.Duration <= 0 {
		return 1
	}
	return a.Easing.Ease(float64(a.elapsed) / float64(a.Duration))
}

// Property is a single value animated by a PropertyEaser.
type Property struct {
	Name     string
	From, To float64
}

// PropertyEaser moves a set of properties from their start to their
// end values together. Set is called with every property's current
// value whenever the progress changes.
type PropertyEaser struct {
	Easing     Easing
	Properties []Property
	Set        func(name string, value float64)

	progress float64
}

// SetProgress moves every property to the eased position p.
func (pe *PropertyEaser) SetProgress(p float64) {
	pe.progress = math.Max(0, math.Min(1, p))
	if pe.Set == nil {
		return
	}

	t := pe.Easing.Ease(pe.progress)
	for _, prop := range pe.Properties {
		pe.Set(prop.Name, Lerp(prop.From, prop.To, t))
	}
}

func (pe *PropertyEaser) Progress() float64 {
	return pe.progress
}

// Value returns the current value of the named property.
func (pe *PropertyEaser) Value(name string) (float64, bool) {
	t := pe.Easing.Ease(pe.progress)
	for _, prop := range pe.Properties {
		if prop.Name == name {
			return Lerp(prop.From, prop.To, t), true
		}
	}
	return 0, false
}
