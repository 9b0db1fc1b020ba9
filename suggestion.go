package phoc

import (
	"time"

	"deedles.dev/phoc/anim"
	"deedles.dev/phoc/geom"
)

// viewSuggestion previews the geometry a view would get if it was
// dropped at an output edge. The preview is a colored rectangle that
// slides from where it is to the suggested box.
type viewSuggestion struct {
	server *Server
	view   *View
	out    *Output
	edge   geom.Edges
	rect   *ColorRect

	box   geom.Rect[float64]
	easer anim.PropertyEaser
	timed anim.Timed
}

func (server *Server) newViewSuggestion(view *View, out *Output) *viewSuggestion {
	s := viewSuggestion{
		server: server,
		view:   view,
		out:    out,
		rect:   server.NewColorRect(view.box, ColorSuggestion),
	}
	s.easer.Easing = anim.EaseOutCubic
	s.easer.Set = s.set
	view.AddBling(s.rect)
	return &s
}

// suggest slides the preview towards target, which is what the view
// would become if it was dropped at edge.
func (s *viewSuggestion) suggest(edge geom.Edges, target geom.Rect[int]) {
	if edge == s.edge {
		return
	}
	s.edge = edge

	from := geom.RConv[float64](s.rect.Box())
	to := geom.RConv[float64](target)
	s.easer.Properties = []anim.Property{
		{Name: "x", From: from.Min.X, To: to.Min.X},
		{Name: "y", From: from.Min.Y, To: to.Min.Y},
		{Name: "width", From: from.Dx(), To: to.Dx()},
		{Name: "height", From: from.Dy(), To: to.Dy()},
	}
	s.easer.SetProgress(0)

	s.timed = anim.Timed{Duration: SuggestionDuration, Easing: anim.Linear}
	s.timed.Start()
	s.out.RemoveFrameCallbacks(s)
	s.out.AddFrameCallback(s, s.tick)
}

func (s *viewSuggestion) set(name string, v float64) {
	switch name {
	case "x":
		s.box = s.box.Add(geom.Pt(v-s.box.Min.X, 0))
	case "y":
		s.box = s.box.Add(geom.Pt(0, v-s.box.Min.Y))
	case "width":
		s.box.Max.X = s.box.Min.X + v
	case "height":
		s.box.Max.Y = s.box.Min.Y + v
	}
}

func (s *viewSuggestion) tick(out *Output, dt time.Duration) bool {
	p, done := s.timed.Tick(dt)
	s.easer.SetProgress(p)
	s.rect.SetBox(geom.Round(s.box))
	return !done
}

func (s *viewSuggestion) remove() {
	s.out.RemoveFrameCallbacks(s)
	s.view.RemoveBling(s.rect)
}
