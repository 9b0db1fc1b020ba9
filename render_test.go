package phoc

import (
	"errors"
	"testing"
	"time"

	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/layer"
	"golang.org/x/exp/slices"
)

func TestRenderOrder(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)

	surfaces := make(map[layer.Layer]*fakeSurface)
	for _, l := range []layer.Layer{layer.Overlay, layer.Top, layer.Bottom, layer.Background} {
		s := newSurface(l.String(), 400, 20)
		addLayerSurface(t, server, out, s, l.String(), panelState(l, geom.EdgeTop, 0))
		surfaces[l] = s
	}
	_, vs := addView(server, "v", geom.XYWH(0, 100, 100, 100))

	out.Frame(time.Unix(0, 0))
	if b.pass == nil {
		t.Fatal("frame was not rendered")
	}
	if first := b.pass.calls[0]; !first.rect || (first.color != ColorBackground) {
		t.Fatalf("background was not drawn first: %+v", first)
	}

	expected := []Texture{
		surfaces[layer.Background].tex,
		surfaces[layer.Bottom].tex,
		vs.tex,
		surfaces[layer.Top].tex,
		surfaces[layer.Overlay].tex,
	}
	if texs := b.pass.textures(); !slices.Equal(texs, expected) {
		t.Fatalf("unexpected order: %v", texs)
	}
	if b.submitted != 1 {
		t.Fatalf("expected one submit, got %v", b.submitted)
	}
	for l, s := range surfaces {
		if s.frameDone != 1 {
			t.Errorf("%v: expected one frame done, got %v", l, s.frameDone)
		}
	}
}

func TestRenderFullscreen(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)
	bar := newSurface("bar", 400, 20)
	addLayerSurface(t, server, out, bar, "bar", panelState(layer.Top, geom.EdgeTop, 20))
	osd := newSurface("osd", 100, 100)
	addLayerSurface(t, server, out, osd, "osd", layer.State{Layer: layer.Overlay, Width: 100, Height: 100})
	view, vs := addView(server, "v", geom.XYWH(0, 100, 100, 100))
	server.SetFullscreen(view, out)

	now := time.Unix(0, 0)
	out.Frame(now)
	expected := []Texture{vs.Texture(), osd.tex}
	if texs := b.pass.textures(); !slices.Equal(texs, expected) {
		t.Fatalf("unexpected textures: %v", texs)
	}
	if bar.frameDone != 0 {
		t.Fatal("hidden surface got a frame done")
	}

	out.SetShellRevealed(true)
	out.Frame(now.Add(time.Second))
	expected = []Texture{vs.Texture(), bar.tex, osd.tex}
	if texs := b.pass.textures(); !slices.Equal(texs, expected) {
		t.Fatalf("unexpected textures: %v", texs)
	}
	if len(b.scanned) != 0 {
		t.Fatal("scanned out with a mapped overlay surface")
	}
}

func TestRenderScanOut(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)
	b.scanOut = true
	view, vs := addView(server, "v", geom.XYWH(0, 0, 100, 100))
	server.SetFullscreen(view, out)

	now := time.Unix(0, 0)
	out.Frame(now)
	if !slices.Equal(b.scanned, []ClientSurface{vs}) {
		t.Fatalf("surface was not scanned out: %v", b.scanned)
	}
	if b.pass != nil {
		t.Fatal("frame was composited")
	}
	if vs.frameDone != 1 {
		t.Fatalf("expected one frame done, got %v", vs.frameDone)
	}

	view.SetAlpha(0.5)
	out.Frame(now.Add(time.Second))
	if len(b.scanned) != 1 {
		t.Fatal("translucent view was scanned out")
	}
	if b.pass == nil {
		t.Fatal("frame was not composited")
	}
	calls := b.pass.calls
	if last := calls[len(calls)-1]; (last.tex != vs.Texture()) || (last.opts.Alpha != 0.5) {
		t.Fatalf("unexpected draw: %+v", last)
	}
}

func TestRenderScanOutRejected(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)
	view, vs := addView(server, "v", geom.XYWH(0, 0, 100, 100))
	server.SetFullscreen(view, out)

	out.Frame(time.Unix(0, 0))
	if b.pass == nil {
		t.Fatal("rejected scan-out did not fall back to composition")
	}
	if texs := b.pass.textures(); !slices.Equal(texs, []Texture{vs.Texture()}) {
		t.Fatalf("unexpected textures: %v", texs)
	}
}

func TestRenderNoDamage(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)
	_, vs := addView(server, "v", geom.XYWH(0, 0, 100, 100))

	now := time.Unix(0, 0)
	out.Frame(now)
	pass := b.pass

	out.Frame(now.Add(time.Second))
	if b.pass != pass {
		t.Fatal("undamaged frame was rendered")
	}
	if b.submitted != 1 {
		t.Fatalf("expected one submit, got %v", b.submitted)
	}
	if vs.frameDone != 2 {
		t.Fatalf("expected two frame dones, got %v", vs.frameDone)
	}
}

func TestRenderPartialDamage(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)
	addLayerSurface(t, server, out, newSurface("bar", 400, 20), "bar", panelState(layer.Top, geom.EdgeTop, 0))
	view, vs := addView(server, "v", geom.XYWH(100, 100, 100, 100))

	now := time.Unix(0, 0)
	out.Frame(now)

	b.age = 1
	vs.damage = geom.RegionOf(geom.XYWH(0, 0, 10, 10))
	server.CommitView(view)
	out.Frame(now.Add(time.Second))

	if texs := b.pass.textures(); !slices.Equal(texs, []Texture{vs.tex}) {
		t.Fatalf("unexpected textures: %v", texs)
	}
	calls := b.pass.calls
	clip := calls[len(calls)-1].opts.Clip.Rects()
	if !slices.Equal(clip, []geom.Rect[int]{geom.XYWH(100, 100, 10, 10)}) {
		t.Fatalf("unexpected clip: %v", clip)
	}
}

func TestRenderBeginFrameError(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)
	_, vs := addView(server, "v", geom.XYWH(0, 0, 100, 100))

	b.beginErr = errors.New("no buffer")
	out.Frame(time.Unix(0, 0))
	if (b.submitted != 0) || (vs.frameDone != 0) {
		t.Fatal("failed frame was completed")
	}

	b.beginErr = nil
	out.Frame(time.Unix(1, 0))
	if b.submitted != 1 {
		t.Fatal("damage was lost after a failed frame")
	}
}

func TestRenderSubsurfaces(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)
	_, vs := addView(server, "v", geom.XYWH(100, 100, 50, 50))
	above := newSurface("above", 20, 20)
	below := newSurface("below", 100, 100)
	vs.subs = []Subsurface{
		{Surface: above, Pos: geom.Pt(40, 40)},
		{Surface: below, Pos: geom.Pt(-25, -25), Below: true},
	}

	out.Frame(time.Unix(0, 0))
	expected := []Texture{below.tex, vs.tex, above.tex}
	if texs := b.pass.textures(); !slices.Equal(texs, expected) {
		t.Fatalf("unexpected order: %v", texs)
	}
	if (above.frameDone != 1) || (below.frameDone != 1) {
		t.Fatal("subsurfaces did not get frame done")
	}
}

func TestRenderScale(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)
	out.SetScale(2)
	if size := out.Size(); size != geom.Pt(200, 400) {
		t.Fatalf("unexpected logical size: %v", size)
	}

	_, vs := addView(server, "v", geom.XYWH(10, 10, 100, 50))
	out.Frame(time.Unix(0, 0))

	calls := b.pass.calls
	last := calls[len(calls)-1]
	if last.tex != vs.tex {
		t.Fatalf("unexpected draw: %+v", last)
	}
	if last.box != geom.Rt(20, 20, 220, 120) {
		t.Fatalf("unexpected destination: %v", last.box)
	}
}

func TestRenderTransform(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)
	out.SetTransform(geom.Transform90)
	if size := out.Size(); size != geom.Pt(800, 400) {
		t.Fatalf("unexpected logical size: %v", size)
	}

	_, vs := addView(server, "v", geom.XYWH(0, 0, 100, 50))
	out.Frame(time.Unix(0, 0))

	calls := b.pass.calls
	if bg := calls[0]; bg.box != geom.Rt(0, 0, 400, 800) {
		t.Fatalf("background does not cover the buffer: %v", bg.box)
	}
	last := calls[len(calls)-1]
	if last.tex != vs.tex {
		t.Fatalf("unexpected draw: %+v", last)
	}
	if last.box != geom.XYWH(0, 700, 50, 100) {
		t.Fatalf("unexpected destination: %v", last.box)
	}
	if last.opts.Transform != geom.Transform90 {
		t.Fatalf("unexpected transform: %v", last.opts.Transform)
	}
}

func TestShield(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)
	addLayerSurface(t, server, out, newSurface("osd", 100, 100), "osd", layer.State{Layer: layer.Overlay, Width: 100, Height: 100})

	out.ShieldUp()
	if !out.Shielded() {
		t.Fatal("output is not shielded")
	}
	out.Frame(time.Unix(0, 0))
	calls := b.pass.calls
	if last := calls[len(calls)-1]; !last.rect || (last.color != ColorShield.WithAlpha(1)) {
		t.Fatalf("shield was not drawn last: %+v", last)
	}

	out.ShieldDown()
	if !out.Shielded() {
		t.Fatal("shield dropped before fading")
	}
	settle(t, out)
	if out.Shielded() {
		t.Fatal("shield did not fade out")
	}
}

func TestSetModeShields(t *testing.T) {
	server := newTestServer(t, nil)
	out, err := server.AddOutput("test", &fakeBackend{}, []geom.Point[int]{geom.Pt(400, 800), geom.Pt(600, 1000)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Mode() != geom.Pt(400, 800) {
		t.Fatalf("preferred mode not used: %v", out.Mode())
	}

	if err := out.SetMode(geom.Pt(1, 1)); err == nil {
		t.Fatal("unsupported mode was accepted")
	}
	if err := out.SetMode(geom.Pt(600, 1000)); err != nil {
		t.Fatal(err)
	}
	if !out.Shielded() || !out.HasFrameCallbacks(nil) {
		t.Fatal("mode switch was not shielded")
	}
	settle(t, out)
	if out.Shielded() {
		t.Fatal("shield did not fade out")
	}
}

func TestFrameCallbacks(t *testing.T) {
	server := newTestServer(t, nil)
	out, b := addTestOutput(t, server, "test", 400, 800)

	var dts []time.Duration
	owner := new(int)
	out.AddFrameCallback(owner, func(out *Output, dt time.Duration) bool {
		dts = append(dts, dt)
		return len(dts) < 3
	})
	if !out.HasFrameCallbacks(owner) {
		t.Fatal("callback was not added")
	}
	if b.scheduled == 0 {
		t.Fatal("no frame was scheduled")
	}

	now := time.Unix(0, 0)
	out.Frame(now)
	out.Frame(now.Add(16 * time.Millisecond))
	out.Frame(now.Add(48 * time.Millisecond))

	expected := []time.Duration{0, 16 * time.Millisecond, 32 * time.Millisecond}
	if !slices.Equal(dts, expected) {
		t.Fatalf("unexpected deltas: %v", dts)
	}
	if out.HasFrameCallbacks(owner) {
		t.Fatal("callback was not removed")
	}

	id := out.AddFrameCallback(owner, func(*Output, time.Duration) bool { return true })
	other := out.AddFrameCallback(nil, func(*Output, time.Duration) bool { return true })
	out.RemoveFrameCallback(id)
	if out.HasFrameCallbacks(owner) {
		t.Fatal("callback was not removed by id")
	}
	out.RemoveFrameCallback(other)
	if out.HasFrameCallbacks(nil) {
		t.Fatal("callbacks left over")
	}
}
