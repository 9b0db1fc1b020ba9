package phoc

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"deedles.dev/phoc/config"
	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/layer"
	"github.com/sirupsen/logrus"
)

type fakeTexture struct {
	size geom.Point[int]
}

func (t *fakeTexture) Size() geom.Point[int] {
	return t.size
}

type fakeSurface struct {
	name      string
	client    int
	size      geom.Point[int]
	tex       Texture
	scale     int
	transform geom.Transform
	damage    geom.Region
	subs      []Subsurface
	frameDone int
}

func newSurface(name string, w, h int) *fakeSurface {
	return &fakeSurface{
		name:  name,
		size:  geom.Pt(w, h),
		tex:   &fakeTexture{size: geom.Pt(w, h)},
		scale: 1,
	}
}

func (s *fakeSurface) String() string                  { return s.name }
func (s *fakeSurface) Client() int                     { return s.client }
func (s *fakeSurface) Texture() Texture                { return s.tex }
func (s *fakeSurface) Size() geom.Point[int]           { return s.size }
func (s *fakeSurface) BufferScale() int                { return s.scale }
func (s *fakeSurface) BufferTransform() geom.Transform { return s.transform }
func (s *fakeSurface) Damage() geom.Region             { return s.damage }
func (s *fakeSurface) Subsurfaces() []Subsurface       { return s.subs }
func (s *fakeSurface) SendFrameDone(t time.Time)       { s.frameDone++ }

type drawCall struct {
	rect  bool
	box   geom.Rect[int]
	color geom.Color
	tex   Texture
	opts  TextureOptions
}

type fakePass struct {
	calls []drawCall
}

func (p *fakePass) DrawRect(box geom.Rect[int], c geom.Color, clip geom.Region) {
	p.calls = append(p.calls, drawCall{rect: true, box: box, color: c})
}

func (p *fakePass) DrawTexture(t Texture, opts TextureOptions) {
	p.calls = append(p.calls, drawCall{box: opts.Dst, tex: t, opts: opts})
}

// textures returns the textures drawn by the pass in order.
func (p *fakePass) textures() []Texture {
	var texs []Texture
	for _, c := range p.calls {
		if !c.rect {
			texs = append(texs, c.tex)
		}
	}
	return texs
}

type fakeBackend struct {
	age       int
	beginErr  error
	scanOut   bool
	scheduled int
	submitted int
	pass      *fakePass
	scanned   []ClientSurface
}

func (b *fakeBackend) BeginFrame() (RenderPass, int, error) {
	if b.beginErr != nil {
		return nil, 0, b.beginErr
	}
	b.pass = &fakePass{}
	return b.pass, b.age, nil
}

func (b *fakeBackend) Submit(pass RenderPass) error {
	b.submitted++
	return nil
}

func (b *fakeBackend) ScanOut(s ClientSurface) error {
	if !b.scanOut {
		return errors.New("scan-out disabled")
	}
	b.scanned = append(b.scanned, s)
	return nil
}

func (b *fakeBackend) ScheduleFrame() {
	b.scheduled++
}

type fakeSeat struct {
	grab        bool
	imClients   map[int]bool
	calls       []string
	focus       ClientSurface
	cursorImage string
	warp        geom.Point[float64]
}

func newSeat() *fakeSeat {
	return &fakeSeat{imClients: make(map[int]bool)}
}

func (s *fakeSeat) record(format string, args ...any) {
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

func (s *fakeSeat) Name() string  { return "seat0" }
func (s *fakeSeat) HasGrab() bool { return s.grab }

func (s *fakeSeat) PointerEnter(surface ClientSurface, sx, sy float64) {
	s.focus = surface
	s.record("enter %v %v,%v", surface, sx, sy)
}

func (s *fakeSeat) PointerMotion(t uint32, sx, sy float64) {
	s.record("motion %v,%v", sx, sy)
}

func (s *fakeSeat) PointerButton(t uint32, button uint32, pressed bool) {
	s.record("button %v %v", button, pressed)
}

func (s *fakeSeat) PointerAxis(t uint32, vertical bool, delta float64, discrete int32) {
	s.record("axis %v", delta)
}

func (s *fakeSeat) PointerFrame() {}

func (s *fakeSeat) PointerClearFocus() {
	s.focus = nil
	s.record("clear")
}

func (s *fakeSeat) SendPointerEnter(surface ClientSurface, sx, sy float64) {
	s.focus = surface
	s.record("send-enter %v %v,%v", surface, sx, sy)
}

func (s *fakeSeat) SendPointerMotion(t uint32, sx, sy float64) {
	s.record("send-motion %v,%v", sx, sy)
}

func (s *fakeSeat) SendPointerButton(t uint32, button uint32, pressed bool) {
	s.record("send-button %v %v", button, pressed)
}

func (s *fakeSeat) TouchDown(t uint32, id int32, surface ClientSurface, sx, sy float64) {
	s.record("touch-down %v %v %v,%v", id, surface, sx, sy)
}

func (s *fakeSeat) TouchMotion(t uint32, id int32, sx, sy float64) {
	s.record("touch-motion %v %v,%v", id, sx, sy)
}

func (s *fakeSeat) TouchUp(t uint32, id int32) {
	s.record("touch-up %v", id)
}

func (s *fakeSeat) TouchCancel(id int32) {
	s.record("touch-cancel %v", id)
}

func (s *fakeSeat) InputMethodActive(client int) bool {
	return s.imClients[client]
}

func (s *fakeSeat) SetCursorImage(name string) {
	s.cursorImage = name
}

func (s *fakeSeat) WarpCursor(lx, ly float64) {
	s.warp = geom.Pt(lx, ly)
}

func (s *fakeSeat) last() string {
	if len(s.calls) == 0 {
		return ""
	}
	return s.calls[len(s.calls)-1]
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.DebugLevel)

	server, err := NewServer(cfg, logrus.NewEntry(log))
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	return server
}

func addTestOutput(t *testing.T, server *Server, name string, w, h int) (*Output, *fakeBackend) {
	t.Helper()

	var b fakeBackend
	out, err := server.AddOutput(name, &b, []geom.Point[int]{geom.Pt(w, h)})
	if err != nil {
		t.Fatalf("add output: %v", err)
	}
	return out, &b
}

// addLayerSurface creates a layer surface and commits st for it.
func addLayerSurface(t *testing.T, server *Server, out *Output, s *fakeSurface, namespace string, st layer.State) *LayerSurface {
	t.Helper()

	ls, err := server.NewLayerSurface(out, s, namespace, st.Layer)
	if err != nil {
		t.Fatalf("new layer surface: %v", err)
	}
	if err := server.CommitLayerSurface(ls, st); err != nil {
		t.Fatalf("commit layer surface: %v", err)
	}
	return ls
}

// addView creates a view and maps it at box.
func addView(server *Server, name string, box geom.Rect[int]) (*View, *fakeSurface) {
	s := newSurface(name, box.Dx(), box.Dy())
	view := server.NewView(s, nil)
	view.Configure = func(w, h int) {
		s.size = geom.Pt(w, h)
		s.tex = &fakeTexture{size: s.size}
		server.CommitView(view)
	}
	server.MapView(view, box)
	return view, s
}
