package render

import (
	"image"
	"image/color"
	"testing"

	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/internal/drm"
)

func TestImageFrom(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 5, 5))
	src.SetNRGBA(2, 3, color.NRGBA{R: 0xFF, A: 0xFF})

	img := ImageFrom(src)
	if size := img.Size(); size != geom.Pt(3, 2) {
		t.Fatalf("unexpected size: %v", size)
	}
	if img.Format() != drm.FormatABGR8888 {
		t.Fatalf("unexpected format: %#x", img.Format())
	}
	if c := nrgba(img.At(0, 0)); c != (color.NRGBA{R: 0xFF, A: 0xFF}) {
		t.Fatalf("unexpected pixel: %v", c)
	}
	if c := nrgba(img.At(1, 1)); c.A != 0 {
		t.Fatalf("expected transparent pixel, got %v", c)
	}
}
