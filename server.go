// Package phoc is the scene, output and input core of a Wayland
// compositor. It tracks views, layer-shell surfaces and outputs, routes
// pointer and touch input to them, and drives damage-tracked rendering
// through the platform interfaces declared in platform.go.
//
// Everything in the package runs on a single goroutine. Platform
// callbacks call into the Server and return once the resulting state
// changes are complete.
package phoc

import (
	"errors"
	"fmt"

	"deedles.dev/phoc/config"
	"deedles.dev/phoc/geom"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// SurfaceID identifies a view or layer surface for the lifetime of the
// server. IDs are never reused.
type SurfaceID uint64

var ErrNoOutput = errors.New("no output")

type Server struct {
	Config *config.Config

	log *logrus.Entry

	outputs   []*Output
	views     []*View
	dragIcons []*DragIcon
	cursors   []*Cursor

	shellReveal geom.Edges

	nextID        SurfaceID
	layerSurfaces map[SurfaceID]*LayerSurface
	draggables    map[SurfaceID]*DraggableLayerSurface
	alphas        map[SurfaceID]*AlphaLayerSurface
	stacks        map[SurfaceID]*StackedLayerSurface
}

// NewServer returns a server using cfg. If cfg is nil, the defaults
// are used. If log is nil, the standard logger is used.
func NewServer(cfg *config.Config, log *logrus.Entry) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	reveal, err := cfg.ShellRevealEdges()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Server{
		Config:        cfg,
		log:           log,
		shellReveal:   reveal,
		layerSurfaces: make(map[SurfaceID]*LayerSurface),
		draggables:    make(map[SurfaceID]*DraggableLayerSurface),
		alphas:        make(map[SurfaceID]*AlphaLayerSurface),
		stacks:        make(map[SurfaceID]*StackedLayerSurface),
	}, nil
}

func (server *Server) newID() SurfaceID {
	server.nextID++
	return server.nextID
}

// Outputs returns the server's outputs in the order they were added.
func (server *Server) Outputs() []*Output {
	return server.outputs
}

// Views returns every view from back to front.
func (server *Server) Views() []*View {
	return server.views
}

// Cursors returns a cursor per seat.
func (server *Server) Cursors() []*Cursor {
	return server.cursors
}

// LayerSurface returns the layer surface with the given ID.
func (server *Server) LayerSurface(id SurfaceID) (*LayerSurface, bool) {
	ls, ok := server.layerSurfaces[id]
	return ls, ok
}

// damageBox damages box, in layout coordinates, on every output it
// touches.
func (server *Server) damageBox(box geom.Rect[int]) {
	for _, out := range server.outputs {
		out.DamageBox(box)
	}
}

// damageSurface damages a surface tree at pos on every output.
func (server *Server) damageSurface(s ClientSurface, pos geom.Point[int], whole bool) {
	for _, out := range server.outputs {
		out.DamageSurface(s, pos, whole)
	}
}

// updateCursorFocus re-resolves the pointer focus of every cursor
// without moving it, so that clients get motion for content that moved
// underneath a stationary cursor.
func (server *Server) updateCursorFocus() {
	for _, c := range server.cursors {
		c.refocus()
	}
}

// outputFor returns the output containing the center of box, falling
// back to the first output.
func (server *Server) outputFor(box geom.Rect[int]) *Output {
	c := geom.PConv[float64](box.Center())
	if out := server.OutputAt(c.X, c.Y); out != nil {
		return out
	}
	if len(server.outputs) == 0 {
		return nil
	}
	return server.outputs[0]
}

func (server *Server) removeCursor(c *Cursor) {
	i := slices.Index(server.cursors, c)
	if i < 0 {
		return
	}
	server.cursors = slices.Delete(server.cursors, i, i+1)
}
