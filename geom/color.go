package geom

import "image/color"

// Color is a straight, non-premultiplied RGBA color with channels in
// [0, 1]. It implements color.Color, premultiplying as it does so.
type Color struct {
	R, G, B, A float64
}

// RGB returns an opaque color.
func RGB(r, g, b float64) Color {
	return Color{r, g, b, 1}
}

// FromColor converts any color.Color into a Color.
func FromColor(c color.Color) Color {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return Color{
		R: float64(n.R) / 0xFFFF,
		G: float64(n.G) / 0xFFFF,
		B: float64(n.B) / 0xFFFF,
		A: float64(n.A) / 0xFFFF,
	}
}

// WithAlpha returns c with its alpha replaced by a.
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp(a, 0, 1)
	return c
}

// Premultiplied returns the channels of c multiplied by its alpha.
func (c Color) Premultiplied() (r, g, b, a float64) {
	a = clamp(c.A, 0, 1)
	return clamp(c.R, 0, 1) * a, clamp(c.G, 0, 1) * a, clamp(c.B, 0, 1) * a, a
}

func (c Color) RGBA() (r, g, b, a uint32) {
	pr, pg, pb, pa := c.Premultiplied()
	return uint32(pr * 0xFFFF), uint32(pg * 0xFFFF), uint32(pb * 0xFFFF), uint32(pa * 0xFFFF)
}
