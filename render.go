package phoc

import (
	"time"

	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/layer"
)

// RenderContext is passed to everything drawn during a frame of an
// output. Coordinates given to it are in layout space.
type RenderContext struct {
	Output *Output

	// pass is nil while the frame is only walked to find the surfaces
	// that were shown.
	pass RenderPass

	// damage is the area of the buffer that is repainted.
	damage geom.Region

	surfaces []ClientSurface
}

// DrawRect fills box with c.
func (ctx *RenderContext) DrawRect(box geom.Rect[int], c geom.Color) {
	if ctx.pass == nil {
		return
	}

	dst := ctx.Output.toBuffer(box)
	clip := ctx.damage.Intersect(dst)
	if clip.Empty() {
		return
	}
	ctx.pass.DrawRect(dst, c, clip)
}

// DrawSurface draws the surface tree rooted at s, which sits at pos,
// with the given opacity.
func (ctx *RenderContext) DrawSurface(s ClientSurface, pos geom.Point[int], alpha float64) {
	subs := s.Subsurfaces()
	for _, sub := range subs {
		if sub.Below {
			ctx.DrawSurface(sub.Surface, pos.Add(sub.Pos), alpha)
		}
	}

	ctx.drawSurface(s, pos, alpha)

	for _, sub := range subs {
		if !sub.Below {
			ctx.DrawSurface(sub.Surface, pos.Add(sub.Pos), alpha)
		}
	}
}

func (ctx *RenderContext) drawSurface(s ClientSurface, pos geom.Point[int], alpha float64) {
	out := ctx.Output
	box := geom.Rect[int]{Max: s.Size()}.Add(pos)
	if !box.Overlaps(out.Box()) {
		return
	}
	ctx.surfaces = append(ctx.surfaces, s)

	tex := s.Texture()
	if (ctx.pass == nil) || (tex == nil) || (alpha <= 0) {
		return
	}

	dst := out.toBuffer(box)
	clip := ctx.damage.Intersect(dst)
	if clip.Empty() {
		return
	}

	ctx.pass.DrawTexture(tex, TextureOptions{
		Src:       geom.Rect[int]{Max: tex.Size()},
		Dst:       dst,
		Transform: s.BufferTransform().Invert().Compose(out.transform),
		Alpha:     alpha,
		Clip:      clip,
	})
}

// Frame draws the next frame of the output. It is called whenever the
// platform signals that the output is ready for one.
func (out *Output) Frame(now time.Time) {
	out.runFrameCallbacks(now)

	if out.scanOut(now) {
		return
	}

	ctx := RenderContext{Output: out}
	if out.damage.Current().Empty() {
		out.render(&ctx)
		ctx.sendFrameDone(now)
		return
	}

	pass, age, err := out.backend.BeginFrame()
	if err != nil {
		out.log.WithError(err).Errorln("Failed to begin frame")
		return
	}
	ctx.pass = pass
	ctx.damage = out.damage.ForAge(age)

	out.render(&ctx)

	if err := out.backend.Submit(pass); err != nil {
		out.log.WithError(err).Errorln("Failed to submit frame")
		return
	}
	out.damage.Rotate()
	ctx.sendFrameDone(now)
}

func (ctx *RenderContext) sendFrameDone(now time.Time) {
	for _, s := range ctx.surfaces {
		s.SendFrameDone(now)
	}
}

func (out *Output) render(ctx *RenderContext) {
	ctx.DrawRect(out.Box(), ColorBackground)

	if view := out.fullscreen; (view != nil) && view.mapped {
		out.renderView(ctx, view)
		if out.shellReveal {
			out.renderLayer(ctx, layer.Top)
		}
	} else {
		out.renderLayer(ctx, layer.Background)
		out.renderLayer(ctx, layer.Bottom)
		out.renderViews(ctx)
		out.renderLayer(ctx, layer.Top)
	}

	out.renderDragIcons(ctx)
	out.renderLayer(ctx, layer.Overlay)

	if out.shield.visible() {
		ctx.DrawRect(out.Box(), ColorShield.WithAlpha(out.shield.alpha))
	}
}

func (out *Output) renderLayer(ctx *RenderContext, l layer.Layer) {
	for _, ls := range out.LayerOrder(l) {
		if !ls.mapped {
			continue
		}
		ctx.DrawSurface(ls.Surface, ls.LayoutBox().Min, ls.alpha)
	}
}

func (out *Output) renderViews(ctx *RenderContext) {
	for _, view := range out.server.views {
		if !out.server.IsViewVisible(view) {
			continue
		}
		out.renderView(ctx, view)
	}
}

func (out *Output) renderView(ctx *RenderContext, view *View) {
	for _, b := range view.blings {
		if b.IsMapped() {
			b.Render(ctx)
		}
	}
	ctx.DrawSurface(view.Surface, view.box.Min, view.alpha)
}

func (out *Output) renderDragIcons(ctx *RenderContext) {
	for _, icon := range out.server.dragIcons {
		if icon.mapped {
			ctx.DrawSurface(icon.Surface, icon.pos, 1)
		}
	}
}

// scanOutSurface returns the surface that could be presented directly
// instead of compositing the frame, or nil if there is none. That is
// only the case when a fullscreen view's single surface is all there
// is to see and its buffer matches the output exactly.
func (out *Output) scanOutSurface() ClientSurface {
	view := out.fullscreen
	if (view == nil) || !view.mapped || out.shellReveal || out.shield.visible() {
		return nil
	}
	if view.alpha != 1 {
		return nil
	}
	for _, b := range view.blings {
		if b.IsMapped() {
			return nil
		}
	}
	for _, icon := range out.server.dragIcons {
		if icon.mapped {
			return nil
		}
	}
	for _, ls := range out.layers[layer.Overlay] {
		if ls.mapped {
			return nil
		}
	}

	s := view.Surface
	if (s.Texture() == nil) || (len(s.Subsurfaces()) != 0) {
		return nil
	}
	if view.box != out.Box() {
		return nil
	}
	if (float64(s.BufferScale()) != out.scale) || (s.BufferTransform() != out.transform) {
		return nil
	}
	return s
}

func (out *Output) scanOut(now time.Time) bool {
	s := out.scanOutSurface()
	if s == nil {
		return false
	}

	if err := out.backend.ScanOut(s); err != nil {
		out.log.WithError(err).Debugln("Scan-out rejected")
		return false
	}

	// The swap chain's buffers no longer match what is on screen.
	out.damage.AddWhole()
	s.SendFrameDone(now)
	return true
}
