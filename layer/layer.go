// Package layer places layer-shell surfaces on an output and orders
// them within their layer.
//
// The functions here are pure. They know nothing about outputs,
// clients or rendering, which the compositor handles on top of them.
package layer

import (
	"errors"
	"fmt"
	"strings"

	"deedles.dev/phoc/geom"
)

// Layer is one of the four layer-shell bands, from bottom to top.
type Layer int

const (
	Background Layer = iota
	Bottom
	Top
	Overlay
)

// Count is the number of layers.
const Count = 4

func (l Layer) Valid() bool {
	return (l >= Background) && (l <= Overlay)
}

func (l Layer) String() string {
	switch l {
	case Background:
		return "background"
	case Bottom:
		return "bottom"
	case Top:
		return "top"
	case Overlay:
		return "overlay"
	default:
		return fmt.Sprintf("Layer(%d)", int(l))
	}
}

// ParseLayer returns the layer named by s.
func ParseLayer(s string) (Layer, error) {
	for l := Background; l <= Overlay; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown layer %q", s)
}

var (
	ErrInvalidLayer       = errors.New("invalid layer")
	ErrInvalidAnchor      = errors.New("invalid anchor")
	ErrInvalidSize        = errors.New("invalid size")
	ErrInvalidMargins     = errors.New("invalid margins")
	ErrInvalidStackTarget = errors.New("invalid stack target")
	ErrInvalidThreshold   = errors.New("invalid threshold")
)

// ProtocolError is a client mistake that is fatal to the client's
// connection. Err is one of the package's sentinel errors.
type ProtocolError struct {
	Err error
	Msg string
}

// Errorf returns a ProtocolError wrapping err.
func Errorf(err error, format string, args ...any) *ProtocolError {
	return &ProtocolError{Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (err *ProtocolError) Error() string {
	return fmt.Sprintf("%v: %v", err.Err, err.Msg)
}

func (err *ProtocolError) Unwrap() error {
	return err.Err
}

// Margin is the distance kept between a surface and the edges it is
// anchored to.
type Margin struct {
	Top, Right, Bottom, Left int
}

// State is the committed state of a layer surface.
type State struct {
	Namespace string
	Layer     Layer
	Anchor    geom.Edges

	// Width and Height are the size the client asked for. Zero means
	// that the surface fills the available space along that axis.
	Width, Height int

	Margin Margin

	// ExclusiveZone is the depth, in addition to the margin, that the
	// surface reserves along the edge it is anchored to. -1 asks to be
	// placed over the whole output, ignoring other reservations.
	ExclusiveZone int

	KeyboardInteractive bool
}

// Exclusive reports whether the surface reserves space.
func (s State) Exclusive() bool {
	return (s.ExclusiveZone > 0) && (ExclusiveEdge(s.Anchor) != geom.EdgeNone)
}

// ExclusiveEdge returns the edge along which a surface anchored to
// anchor reserves its exclusive zone: the single anchored edge, or the
// edge that is anchored together with both of its neighbors. Any other
// combination reserves nothing.
func ExclusiveEdge(anchor geom.Edges) geom.Edges {
	switch anchor {
	case geom.EdgeTop, geom.EdgeTop | geom.EdgeLeft | geom.EdgeRight:
		return geom.EdgeTop
	case geom.EdgeBottom, geom.EdgeBottom | geom.EdgeLeft | geom.EdgeRight:
		return geom.EdgeBottom
	case geom.EdgeLeft, geom.EdgeLeft | geom.EdgeTop | geom.EdgeBottom:
		return geom.EdgeLeft
	case geom.EdgeRight, geom.EdgeRight | geom.EdgeTop | geom.EdgeBottom:
		return geom.EdgeRight
	default:
		return geom.EdgeNone
	}
}

// Validate checks s for mistakes that don't depend on the output the
// surface is on.
func (s State) Validate() error {
	if !s.Layer.Valid() {
		return Errorf(ErrInvalidLayer, "layer %v", int(s.Layer))
	}
	if s.Anchor&^geom.EdgesAll != 0 {
		return Errorf(ErrInvalidAnchor, "anchor %#x", uint32(s.Anchor))
	}
	if (s.Width < 0) || (s.Height < 0) {
		return Errorf(ErrInvalidSize, "negative size %vx%v", s.Width, s.Height)
	}

	edge := ExclusiveEdge(s.Anchor)
	if (s.Width == 0) && !s.Anchor.Has(geom.EdgeLeft|geom.EdgeRight) && !s.fillsZone(edge.Horizontal()) {
		return Errorf(ErrInvalidSize, "width 0 requires anchoring to left and right")
	}
	if (s.Height == 0) && !s.Anchor.Has(geom.EdgeTop|geom.EdgeBottom) && !s.fillsZone(edge.Vertical()) {
		return Errorf(ErrInvalidSize, "height 0 requires anchoring to top and bottom")
	}
	return nil
}

// fillsZone reports whether a zero dimension along the axis of edge
// is satisfied by filling the exclusive zone.
func (s State) fillsZone(edge geom.Edges) bool {
	return (edge != geom.EdgeNone) && (s.ExclusiveZone > 0)
}
