package wlrplat

import (
	"errors"
	"image"
	"time"

	"deedles.dev/phoc"
	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/internal/drm"
	"deedles.dev/phoc/render"
	"deedles.dev/wlr"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

var (
	errNoScanOut  = errors.New("direct scan-out is not supported")
	errPassActive = errors.New("a render pass is already in progress")
	errWrongPass  = errors.New("pass does not belong to this output")
)

type output struct {
	p    *Platform
	wout wlr.Output
	out  *phoc.Output
	log  *logrus.Entry

	frame    wlr.Listener
	pass     *pass
	uploaded map[*render.Image]wlr.Texture
}

func outputModes(wout wlr.Output) (modes []geom.Point[int]) {
	if mode := wout.PreferredMode(); mode.Valid() {
		modes = append(modes, geom.Pt(int(mode.Width()), int(mode.Height())))
	}
	for mode := range wout.Modes() {
		size := geom.Pt(int(mode.Width()), int(mode.Height()))
		if !slices.Contains(modes, size) {
			modes = append(modes, size)
		}
	}
	if len(modes) == 0 {
		modes = append(modes, geom.Pt(int(wout.Width()), int(wout.Height())))
	}
	return modes
}

func (p *Platform) onNewOutput(wout wlr.Output) {
	wout.InitRender(p.allocator, p.renderer)

	o := output{
		p:        p,
		wout:     wout,
		log:      p.log.WithField("output", wout.Name()),
		uploaded: make(map[*render.Image]wlr.Texture),
	}

	out, err := p.server.AddOutput(wout.Name(), &o, outputModes(wout))
	if err != nil {
		o.log.WithError(err).Errorln("Failed to add output")
		return
	}
	o.out = out

	if out.Scale() != 1 {
		o.log.WithField("scale", out.Scale()).Warnln("Output scaling is not supported, using 1")
		out.SetScale(1)
	}
	if out.Transform() != geom.TransformNormal {
		o.log.WithField("transform", out.Transform()).Warnln("Output transforms are not supported")
		out.SetTransform(geom.TransformNormal)
	}

	o.setMode(out.Mode())
	box := out.Box()
	p.layout.Add(wout, box.Min.X, box.Min.Y)

	o.frame = wout.OnFrame(func(wout wlr.Output) {
		o.onFrame()
	})
	p.outputs = append(p.outputs, &o)

	wout.Commit()
	wout.CreateGlobal()
}

func (o *output) setMode(size geom.Point[int]) {
	for mode := range o.wout.Modes() {
		if (mode.Width() == int32(size.X)) && (mode.Height() == int32(size.Y)) {
			o.wout.SetMode(mode)
			return
		}
	}

	mode := o.wout.PreferredMode()
	if mode.Valid() {
		o.wout.SetMode(mode)
	}
}

func (o *output) onFrame() {
	for _, view := range o.p.views {
		if view.view.Mapped() {
			o.p.server.CommitView(view.view)
		}
	}

	o.out.DamageWhole()
	o.out.Frame(time.Now())
}

func (o *output) BeginFrame() (phoc.RenderPass, int, error) {
	if o.pass != nil {
		return nil, 0, errPassActive
	}

	_, err := o.wout.AttachRender()
	if err != nil {
		return nil, 0, err
	}

	o.p.renderer.Begin(o.wout, o.wout.Width(), o.wout.Height())
	o.pass = &pass{o: o}
	return o.pass, 0, nil
}

func (o *output) Submit(rp phoc.RenderPass) error {
	if (o.pass == nil) || (rp != phoc.RenderPass(o.pass)) {
		return errWrongPass
	}
	o.pass.done = true
	o.pass = nil

	o.wout.RenderSoftwareCursors(image.ZR)
	o.p.renderer.End()
	o.wout.Commit()
	return nil
}

func (o *output) ScanOut(s phoc.ClientSurface) error {
	return errNoScanOut
}

// ScheduleFrame does nothing. wlroots signals a frame for every
// refresh and every frame is drawn.
func (o *output) ScheduleFrame() {}

func (o *output) texture(t phoc.Texture) (wlr.Texture, bool) {
	switch t := t.(type) {
	case texture:
		return t.Texture, true

	case *render.Image:
		if tex, ok := o.uploaded[t]; ok {
			return tex, true
		}
		o.log.WithFields(logrus.Fields{
			"size":   t.Size(),
			"format": drm.Name(t.Format()),
		}).Debugln("Uploading texture")
		tex := wlr.TextureFromPixels(
			o.p.renderer,
			t.Format(),
			uint32(t.Stride),
			uint32(t.Rect.Dx()),
			uint32(t.Rect.Dy()),
			t.Pix,
		)
		o.uploaded[t] = tex
		return tex, true

	default:
		var tex wlr.Texture
		return tex, false
	}
}

// pass draws with the wlroots renderer. Clipping is only applied to
// rectangles, and textures are drawn whole and opaque.
type pass struct {
	o    *output
	done bool
}

func (p *pass) DrawRect(box geom.Rect[int], c geom.Color, clip geom.Region) {
	if p.done {
		p.o.log.Warnln("Draw into finished pass")
		return
	}

	m := p.o.wout.TransformMatrix()
	for _, r := range clip.Intersect(box).Rects() {
		p.o.p.renderer.RenderRect(r.ImageRect(), c, m)
	}
}

func (p *pass) DrawTexture(t phoc.Texture, opts phoc.TextureOptions) {
	if p.done {
		p.o.log.Warnln("Draw into finished pass")
		return
	}
	if opts.Dst.Empty() || opts.Clip.Intersect(opts.Dst).Empty() {
		return
	}

	tex, ok := p.o.texture(t)
	if !ok {
		p.o.log.WithField("texture", t).Warnln("Unsupported texture")
		return
	}

	m := wlr.ProjectBoxMatrix(
		opts.Dst.ImageRect(),
		wlr.OutputTransformNormal,
		0,
		p.o.wout.TransformMatrix(),
	)
	p.o.p.renderer.RenderTextureWithMatrix(tex, m, 1)
}
