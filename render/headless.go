package render

import (
	"errors"
	"image"

	"deedles.dev/phoc"
)

var (
	ErrPassActive   = errors.New("a render pass is already in progress")
	ErrUnknownPass  = errors.New("pass does not belong to this backend")
	ErrNoScanOut    = errors.New("direct scan-out disabled")
	ErrScanOutShape = errors.New("buffer does not match the output")
)

type buffer struct {
	img *Image

	// presented is the frame number the buffer was last presented at,
	// or zero if it never was.
	presented uint64
}

// Headless is an output backend that renders into a swap chain of
// in-memory buffers.
type Headless struct {
	// AllowScanOut enables direct presentation of client buffers.
	AllowScanOut bool

	width, height int
	buffers       []*buffer
	next          int
	frames        uint64
	pass          *Pass

	front     image.Image
	scheduled bool
}

// NewHeadless returns a backend with n w by h buffers.
func NewHeadless(w, h, n int) *Headless {
	b := Headless{
		width:   w,
		height:  h,
		buffers: make([]*buffer, max(n, 1)),
	}
	for i := range b.buffers {
		b.buffers[i] = &buffer{img: NewImage(w, h)}
	}
	return &b
}

// Resize replaces the swap chain with buffers of a new size.
func (b *Headless) Resize(w, h int) {
	if (w == b.width) && (h == b.height) {
		return
	}
	allow := b.AllowScanOut
	*b = *NewHeadless(w, h, len(b.buffers))
	b.AllowScanOut = allow
	b.scheduled = true
}

func (b *Headless) BeginFrame() (phoc.RenderPass, int, error) {
	if b.pass != nil {
		return nil, 0, ErrPassActive
	}

	buf := b.buffers[b.next]
	var age int
	if buf.presented != 0 {
		age = int(b.frames-buf.presented) + 1
	}

	b.pass = &Pass{dst: buf.img}
	return b.pass, age, nil
}

func (b *Headless) Submit(pass phoc.RenderPass) error {
	if (b.pass == nil) || (pass != phoc.RenderPass(b.pass)) {
		return ErrUnknownPass
	}
	b.pass.done = true
	b.pass = nil

	buf := b.buffers[b.next]
	b.next = (b.next + 1) % len(b.buffers)
	b.present(buf.img)
	buf.presented = b.frames
	return nil
}

func (b *Headless) ScanOut(s phoc.ClientSurface) error {
	if !b.AllowScanOut {
		return ErrNoScanOut
	}

	img, ok := s.Texture().(*Image)
	if !ok || (img.Rect.Dx() != b.width) || (img.Rect.Dy() != b.height) {
		return ErrScanOutShape
	}
	b.present(img)
	return nil
}

func (b *Headless) present(img image.Image) {
	b.frames++
	b.front = img
}

func (b *Headless) ScheduleFrame() {
	b.scheduled = true
}

// NeedsFrame reports whether a frame was asked for since the last
// call.
func (b *Headless) NeedsFrame() bool {
	s := b.scheduled
	b.scheduled = false
	return s
}

// Front returns the image that was presented last, or nil if nothing
// has been presented yet.
func (b *Headless) Front() image.Image {
	return b.front
}

// Frames returns the number of frames presented so far.
func (b *Headless) Frames() uint64 {
	return b.frames
}
