package render

import (
	"image"
	"image/color"

	"deedles.dev/phoc"
	"deedles.dev/phoc/geom"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

var log = logrus.WithField("component", "render")

// Pass draws into a single buffer.
type Pass struct {
	dst  *Image
	done bool

	// Counts of the draws that touched the buffer.
	Rects, Textures int
}

func (p *Pass) DrawRect(box geom.Rect[int], c geom.Color, clip geom.Region) {
	if p.done {
		log.Warnln("Draw into finished pass")
		return
	}

	src := image.NewUniform(c)
	for _, r := range clip.Intersect(box).Rects() {
		draw.Draw(p.dst, r.ImageRect(), src, image.Point{}, draw.Over)
	}
	p.Rects++
}

func (p *Pass) DrawTexture(t phoc.Texture, opts phoc.TextureOptions) {
	if p.done {
		log.Warnln("Draw into finished pass")
		return
	}

	src, ok := t.(image.Image)
	if !ok {
		log.WithField("texture", t).Warnln("Texture is not backed by memory")
		return
	}
	if opts.Dst.Empty() || opts.Src.Empty() {
		return
	}

	var dopts draw.Options
	if opts.Alpha < 1 {
		dopts.SrcMask = image.NewUniform(color.Alpha16{A: uint16(geom.Clamp(opts.Alpha, 0, 1) * 0xFFFF)})
	}

	s2d := srcToDst(opts.Src, opts.Dst, opts.Transform)
	for _, r := range opts.Clip.Intersect(opts.Dst).Rects() {
		dst := p.dst.SubImage(r.ImageRect()).(draw.Image)
		draw.ApproxBiLinear.Transform(dst, s2d, src, opts.Src.ImageRect(), draw.Over, &dopts)
	}
	p.Textures++
}

// srcToDst returns the matrix that maps the src part of a texture,
// transformed by t, onto dst.
func srcToDst(src, dst geom.Rect[int], t geom.Transform) f64.Aff3 {
	w, h := float64(src.Dx()), float64(src.Dy())
	tw, th := t.Size(src.Dx(), src.Dy())

	// Move the source to the origin and apply the transform.
	m := mul(transformMatrix(t, w, h), translate(-float64(src.Min.X), -float64(src.Min.Y)))

	// Stretch it over dst.
	m = mul(scale(float64(dst.Dx())/float64(tw), float64(dst.Dy())/float64(th)), m)
	return mul(translate(float64(dst.Min.X), float64(dst.Min.Y)), m)
}

// transformMatrix maps points of a w by h container to the container
// transformed by t.
func transformMatrix(t geom.Transform, w, h float64) f64.Aff3 {
	switch t {
	case geom.TransformNormal:
		return f64.Aff3{1, 0, 0, 0, 1, 0}
	case geom.Transform90:
		return f64.Aff3{0, -1, h, 1, 0, 0}
	case geom.Transform180:
		return f64.Aff3{-1, 0, w, 0, -1, h}
	case geom.Transform270:
		return f64.Aff3{0, 1, 0, -1, 0, w}
	case geom.TransformFlipped:
		return f64.Aff3{-1, 0, w, 0, 1, 0}
	case geom.TransformFlipped90:
		return f64.Aff3{0, 1, 0, 1, 0, 0}
	case geom.TransformFlipped180:
		return f64.Aff3{1, 0, 0, 0, -1, h}
	case geom.TransformFlipped270:
		return f64.Aff3{0, -1, h, -1, 0, w}
	default:
		panic("If you see this, there's a bug.")
	}
}

func translate(x, y float64) f64.Aff3 {
	return f64.Aff3{1, 0, x, 0, 1, y}
}

func scale(x, y float64) f64.Aff3 {
	return f64.Aff3{x, 0, 0, 0, y, 0}
}

// mul returns the matrix that applies b and then a.
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}
