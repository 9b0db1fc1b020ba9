// Package render is a software implementation of the platform side of
// an output. It composites into in-memory buffers with
// golang.org/x/image/draw and keeps track of buffer ages the way a
// real swap chain does, which makes it useful both for running the
// compositor headless and for testing.
package render

import (
	"image"

	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/internal/drm"
	"deedles.dev/phoc/internal/fimg"
	"golang.org/x/image/draw"
)

// Image is a texture backed by memory.
type Image struct {
	*fimg.NABGR
}

// NewImage returns a transparent w by h image.
func NewImage(w, h int) *Image {
	return &Image{NABGR: fimg.NewNABGR(image.Rect(0, 0, w, h))}
}

// ImageFrom copies img into a new Image.
func ImageFrom(img image.Image) *Image {
	b := img.Bounds()
	dst := NewImage(b.Dx(), b.Dy())
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst
}

// Fill returns a w by h image filled with c.
func Fill(w, h int, c geom.Color) *Image {
	dst := NewImage(w, h)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return dst
}

func (img *Image) Size() geom.Point[int] {
	return geom.Pt(img.Rect.Dx(), img.Rect.Dy())
}

// Format returns the DRM format code of the image's pixels.
func (img *Image) Format() uint32 {
	return drm.FormatABGR8888
}
