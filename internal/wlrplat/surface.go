package wlrplat

import (
	"time"

	"deedles.dev/phoc"
	"deedles.dev/phoc/geom"
	"deedles.dev/wlr"
)

type texture struct {
	wlr.Texture
}

func (t texture) Size() geom.Point[int] {
	return geom.Pt(int(t.Width()), int(t.Height()))
}

// surface adapts a wlr.Surface. The root surface of an xdg toplevel
// also reports the rest of the toplevel's tree as its subsurfaces.
type surface struct {
	p      *Platform
	s      wlr.Surface
	client int
	xdg    wlr.XDGSurface
	root   bool
}

func (p *Platform) surfaceFor(s wlr.Surface, client int) *surface {
	if cached, ok := p.surfaces[s]; ok {
		return cached
	}

	ws := surface{p: p, s: s, client: client}
	p.surfaces[s] = &ws
	return &ws
}

func (s *surface) Client() int {
	return s.client
}

func (s *surface) Texture() phoc.Texture {
	tex := s.s.GetTexture()
	if !tex.Valid() {
		return nil
	}
	return texture{tex}
}

func (s *surface) Size() geom.Point[int] {
	current := s.s.Current()
	return geom.Pt(int(current.Width()), int(current.Height()))
}

func (s *surface) BufferScale() int {
	return 1
}

func (s *surface) BufferTransform() geom.Transform {
	return geom.Transform(s.s.Current().Transform())
}

// Damage reports the whole buffer. Outputs are redrawn in full every
// frame anyway.
func (s *surface) Damage() geom.Region {
	tex := s.Texture()
	if tex == nil {
		return geom.Region{}
	}
	size := tex.Size()
	return geom.RegionOf(geom.Rt(0, 0, size.X, size.Y))
}

func (s *surface) Subsurfaces() (subs []phoc.Subsurface) {
	if !s.root {
		return nil
	}

	s.xdg.ForEachSurface(func(child wlr.Surface, x, y int) {
		if child == s.s {
			return
		}
		subs = append(subs, phoc.Subsurface{
			Surface: s.p.surfaceFor(child, s.client),
			Pos:     geom.Pt(x, y),
		})
	})
	return subs
}

func (s *surface) SendFrameDone(t time.Time) {
	s.s.SendFrameDone(t)
}
