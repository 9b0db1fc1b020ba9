package phoc

import (
	"testing"

	"deedles.dev/phoc/config"
	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/layer"
	"golang.org/x/exp/slices"
)

// newChildView maps a view with a parent.
func newChildView(server *Server, name string, parent *View, box geom.Rect[int]) *View {
	view := server.NewView(newSurface(name, box.Dx(), box.Dy()), parent)
	server.MapView(view, box)
	return view
}

func TestViewVisibility(t *testing.T) {
	cfg := config.Default()
	cfg.AutoMaximize = true
	server := newTestServer(t, cfg)
	addTestOutput(t, server, "test", 400, 800)

	c, _ := addView(server, "c", geom.XYWH(0, 0, 100, 100))
	b, _ := addView(server, "b", geom.XYWH(0, 0, 100, 100))
	a := newChildView(server, "a", c, geom.XYWH(0, 0, 50, 50))

	if !b.Maximized() || !c.Maximized() {
		t.Fatal("views without parents were not maximized")
	}
	if a.Maximized() {
		t.Fatal("child view was maximized")
	}

	tests := []struct {
		view    *View
		visible bool
	}{
		{a, true},
		{b, false},
		{c, true},
	}
	for _, test := range tests {
		if v := server.IsViewVisible(test.view); v != test.visible {
			t.Errorf("view %v: expected visible %v, got %v", test.view.ID, test.visible, v)
		}
	}

	// With more than one output everything mapped is visible.
	addTestOutput(t, server, "second", 400, 800)
	if !server.IsViewVisible(b) {
		t.Fatal("view hidden with two outputs")
	}
}

func TestViewVisibilityUnmapped(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)

	view, _ := addView(server, "v", geom.XYWH(0, 0, 100, 100))
	server.UnmapView(view)
	if server.IsViewVisible(view) {
		t.Fatal("unmapped view is visible")
	}
}

func TestMaximizeAndTile(t *testing.T) {
	server := newTestServer(t, nil)
	out, _ := addTestOutput(t, server, "test", 400, 800)
	addLayerSurface(t, server, out, newSurface("bar", 400, 20), "bar", panelState(layer.Top, geom.EdgeTop, 40))
	if usable := out.Usable(); usable != geom.Rt(0, 40, 400, 800) {
		t.Fatalf("unexpected usable area: %v", usable)
	}

	start := geom.XYWH(10, 60, 100, 100)
	view, s := addView(server, "v", start)

	server.Maximize(view, true)
	if view.Box() != out.Usable() {
		t.Fatalf("expected maximized box %v, got %v", out.Usable(), view.Box())
	}
	if s.Size() != geom.Pt(400, 760) {
		t.Fatalf("client was not configured: %v", s.Size())
	}

	server.Tile(view, geom.EdgeRight)
	if view.Maximized() || (view.Tiled() != geom.EdgeRight) {
		t.Fatal("view not tiled")
	}
	if box := view.Box(); box != geom.Rt(200, 40, 400, 800) {
		t.Fatalf("unexpected tiled box: %v", box)
	}

	server.Tile(view, geom.EdgeNone)
	if view.Box() != start {
		t.Fatalf("expected restored box %v, got %v", start, view.Box())
	}
}

func TestRefitOnUsableChange(t *testing.T) {
	server := newTestServer(t, nil)
	out, _ := addTestOutput(t, server, "test", 400, 800)

	view, _ := addView(server, "v", geom.XYWH(10, 10, 100, 100))
	server.Maximize(view, true)
	if view.Box() != geom.Rt(0, 0, 400, 800) {
		t.Fatalf("unexpected box: %v", view.Box())
	}

	addLayerSurface(t, server, out, newSurface("dock", 400, 20), "dock", panelState(layer.Top, geom.EdgeBottom, 100))
	if view.Box() != geom.Rt(0, 0, 400, 700) {
		t.Fatalf("view was not refit: %v", view.Box())
	}
}

func TestFullscreen(t *testing.T) {
	server := newTestServer(t, nil)
	out, _ := addTestOutput(t, server, "test", 400, 800)

	start := geom.XYWH(10, 10, 100, 100)
	view, _ := addView(server, "v", start)
	other, _ := addView(server, "other", start)

	server.SetFullscreen(view, out)
	if !view.IsFullscreen() || (out.Fullscreen() != view) {
		t.Fatal("view is not fullscreen")
	}
	if view.Box() != out.Box() {
		t.Fatalf("unexpected fullscreen box: %v", view.Box())
	}

	server.SetFullscreen(other, out)
	if view.IsFullscreen() || (out.Fullscreen() != other) {
		t.Fatal("fullscreen view was not replaced")
	}
	if view.Box() != start {
		t.Fatalf("replaced view was not restored: %v", view.Box())
	}

	server.RemoveView(other)
	if out.Fullscreen() != nil {
		t.Fatal("removed view is still fullscreen")
	}
}

func TestRaiseView(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)

	a, _ := addView(server, "a", geom.XYWH(0, 0, 100, 100))
	b, _ := addView(server, "b", geom.XYWH(50, 50, 100, 100))
	if v, _, _, _ := server.ViewAt(75, 75); v != b {
		t.Fatal("expected b on top")
	}

	server.RaiseView(a)
	if !slices.Equal(server.Views(), []*View{b, a}) {
		t.Fatal("view was not raised")
	}
	if v, _, _, _ := server.ViewAt(75, 75); v != a {
		t.Fatal("expected a on top")
	}
}

func TestViewAtSubsurfaces(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)

	view, s := addView(server, "v", geom.XYWH(100, 100, 50, 50))
	above := newSurface("above", 20, 20)
	below := newSurface("below", 100, 100)
	s.subs = []Subsurface{
		{Surface: below, Pos: geom.Pt(-25, -25), Below: true},
		{Surface: above, Pos: geom.Pt(40, 40)},
	}

	tests := []struct {
		x, y   float64
		hit    ClientSurface
		sx, sy float64
	}{
		{145, 145, above, 5, 5},
		{110, 110, s, 10, 10},
		{80, 80, below, 5, 5},
		{155, 155, above, 15, 15},
	}
	for _, test := range tests {
		v, hit, sx, sy := server.ViewAt(test.x, test.y)
		if (v != view) || (hit != test.hit) || (sx != test.sx) || (sy != test.sy) {
			t.Errorf("(%v, %v): got %v at %v,%v", test.x, test.y, hit, sx, sy)
		}
	}

	if v, _, _, _ := server.ViewAt(300, 300); v != nil {
		t.Fatal("found a view where there is none")
	}
}

func TestBlings(t *testing.T) {
	server := newTestServer(t, nil)
	addTestOutput(t, server, "test", 400, 800)

	view, _ := addView(server, "v", geom.XYWH(10, 10, 100, 100))
	border := NewBorder(view, WindowBorder, ColorBorder)
	view.AddBling(border)
	if !border.IsMapped() {
		t.Fatal("bling added to a mapped view was not mapped")
	}
	if box := border.Box(); box != geom.XYWH(5, 5, 110, 110) {
		t.Fatalf("unexpected border box: %v", box)
	}

	server.UnmapView(view)
	if border.IsMapped() {
		t.Fatal("bling stayed mapped")
	}
	view.RemoveBling(border)
	if len(view.Blings()) != 0 {
		t.Fatal("bling was not removed")
	}
}

func TestBorderMapUnmappedView(t *testing.T) {
	server := newTestServer(t, nil)
	out, _ := addTestOutput(t, server, "test", 400, 800)

	view := server.NewView(newSurface("v", 100, 100), nil)
	out.damage.Rotate()

	border := NewBorder(view, WindowBorder, ColorBorder)
	border.Map()
	if !border.IsMapped() {
		t.Fatal("border was not marked mapped")
	}
	if reg := out.damage.Current(); !reg.Empty() {
		t.Fatalf("border of an unmapped view damaged %v", reg.Rects())
	}

	server.MapView(view, geom.XYWH(10, 10, 100, 100))
	out.damage.Rotate()
	border.Map()
	if reg := out.damage.Current(); !reg.Contains(border.Box().Min) {
		t.Fatalf("border of a mapped view did not damage its box: %v", reg.Rects())
	}
}
