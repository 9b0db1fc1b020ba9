package phoc

import (
	"time"

	"deedles.dev/phoc/geom"
)

// Texture is an image that a RenderPass can draw.
type Texture interface {
	Size() geom.Point[int]
}

// TextureOptions describes a single textured draw.
type TextureOptions struct {
	// Src is the part of the texture to sample, in texture pixels.
	Src geom.Rect[int]

	// Dst is where to draw in buffer-local coordinates.
	Dst geom.Rect[int]

	// Transform is applied to the texture before it is drawn into Dst.
	Transform geom.Transform

	Alpha float64

	// Clip limits the pixels touched by the draw.
	Clip geom.Region
}

// RenderPass draws into one buffer of an output. All coordinates are
// buffer-local.
type RenderPass interface {
	DrawRect(box geom.Rect[int], c geom.Color, clip geom.Region)
	DrawTexture(t Texture, opts TextureOptions)
}

// Backend is the platform side of an output: its swap chain and its
// ability to present a client buffer directly.
type Backend interface {
	// BeginFrame acquires a buffer and starts a render pass in it. age
	// is the number of frames since the buffer was last presented, or
	// zero if its contents are unknown.
	BeginFrame() (pass RenderPass, age int, err error)

	// Submit ends the pass and presents its buffer.
	Submit(pass RenderPass) error

	// ScanOut tries to present the buffer of s directly without
	// composition.
	ScanOut(s ClientSurface) error

	// ScheduleFrame asks for a frame signal even if nothing is damaged.
	ScheduleFrame()
}

// ClientSurface is a client's surface with its committed state.
type ClientSurface interface {
	// Client identifies the client connection owning the surface.
	Client() int

	// Texture returns the committed buffer, or nil if there is none.
	Texture() Texture

	// Size returns the surface-local size.
	Size() geom.Point[int]

	BufferScale() int
	BufferTransform() geom.Transform

	// Damage returns the damage of the last commit in buffer pixels,
	// oriented like the surface.
	Damage() geom.Region

	// Subsurfaces returns the surface's children from back to front.
	Subsurfaces() []Subsurface

	SendFrameDone(t time.Time)
}

// Subsurface is a child surface positioned relative to its parent.
type Subsurface struct {
	Surface ClientSurface
	Pos     geom.Point[int]

	// Below is true for children stacked under their parent.
	Below bool
}

// Seat delivers input to clients.
type Seat interface {
	Name() string

	// HasGrab reports whether a client holds a pointer grab, such as
	// during drag and drop.
	HasGrab() bool

	// The Pointer methods go through the seat's grab. The Send
	// methods bypass it.
	PointerEnter(s ClientSurface, sx, sy float64)
	PointerMotion(t uint32, sx, sy float64)
	PointerButton(t uint32, button uint32, pressed bool)
	PointerAxis(t uint32, vertical bool, delta float64, discrete int32)
	PointerFrame()
	PointerClearFocus()
	SendPointerEnter(s ClientSurface, sx, sy float64)
	SendPointerMotion(t uint32, sx, sy float64)
	SendPointerButton(t uint32, button uint32, pressed bool)

	TouchDown(t uint32, id int32, s ClientSurface, sx, sy float64)
	TouchMotion(t uint32, id int32, sx, sy float64)
	TouchUp(t uint32, id int32)
	TouchCancel(id int32)

	// InputMethodActive reports whether the seat's input method relay
	// is active for the given client.
	InputMethodActive(client int) bool

	// SetCursorImage sets the cursor image by XCursor name.
	SetCursorImage(name string)

	// WarpCursor moves the platform cursor to the layout coordinates.
	WarpCursor(lx, ly float64)
}
