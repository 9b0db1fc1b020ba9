package phoc

import (
	"time"

	"deedles.dev/phoc/geom"
)

var (
	ColorBackground = geom.RGB(0.2, 0.2, 0.2)
	ColorShield     = geom.RGB(0, 0, 0)
	ColorSuggestion = geom.Color{R: 0.3, G: 0.5, B: 0.8, A: 0.5}
	ColorBorder     = geom.RGB(0.31, 0.63, 0.68)
)

const (
	// WindowBorder is the width of server side view borders.
	WindowBorder = 5

	// SuggestionDuration is how long the view-state suggestion overlay
	// takes to grow to its target.
	SuggestionDuration = 250 * time.Millisecond

	// ShieldFadeDuration is how long an output shield takes to fade
	// out after being lowered.
	ShieldFadeDuration = 250 * time.Millisecond
)
