// Package fimg provides image types in the pixel formats used for
// buffers and textures.
package fimg

import (
	"image"
	"image/color"
)

// NABGR is an image of non-premultiplied pixels stored as alpha, blue,
// green and red bytes.
type NABGR struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

func NewNABGR(r image.Rectangle) *NABGR {
	return &NABGR{
		Pix:    make([]byte, 4*r.Dx()*r.Dy()),
		Stride: 4 * r.Dx(),
		Rect:   r,
	}
}

func (p *NABGR) PixOffset(x, y int) int {
	return ((y - p.Rect.Min.Y) * p.Stride) + (x-p.Rect.Min.X)*4
}

func (p *NABGR) Bounds() image.Rectangle {
	return p.Rect
}

func (p *NABGR) ColorModel() color.Model {
	return color.NRGBAModel
}

func (p *NABGR) At(x, y int) color.Color {
	return p.NRGBAAt(x, y)
}

func (p *NABGR) NRGBAAt(x, y int) color.NRGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.NRGBA{}
	}
	i := p.PixOffset(x, y)
	return color.NRGBA{p.Pix[i+3], p.Pix[i+2], p.Pix[i+1], p.Pix[i]}
}

func (p *NABGR) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}

	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	i := p.PixOffset(x, y)
	p.Pix[i] = n.A
	p.Pix[i+1] = n.B
	p.Pix[i+2] = n.G
	p.Pix[i+3] = n.R
}

// SubImage returns the part of p visible through r. The returned image
// shares pixels with p.
func (p *NABGR) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return &NABGR{}
	}
	i := p.PixOffset(r.Min.X, r.Min.Y)
	return &NABGR{
		Pix:    p.Pix[i:],
		Stride: p.Stride,
		Rect:   r,
	}
}
