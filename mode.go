package phoc

import (
	"fmt"
	"math"

	"deedles.dev/phoc/geom"
)

// CursorMode is the interaction a cursor is in.
type CursorMode int

const (
	// CursorPassthrough sends input to whatever is under the cursor.
	CursorPassthrough CursorMode = iota

	// CursorMove moves a view with the cursor.
	CursorMove

	// CursorResize resizes a view by the edges that were grabbed.
	CursorResize
)

func (m CursorMode) String() string {
	switch m {
	case CursorPassthrough:
		return "passthrough"
	case CursorMove:
		return "move"
	case CursorResize:
		return "resize"
	default:
		return fmt.Sprintf("CursorMode(%d)", int(m))
	}
}

type inputMode interface {
	kind() CursorMode

	// view returns the view the mode operates on, if any.
	view() *View

	// leave is called when the cursor switches to another mode.
	leave(*Cursor)

	CursorMoved(c *Cursor, t uint32)
	CursorButtonPressed(c *Cursor, b uint32, t uint32)
	CursorButtonReleased(c *Cursor, b uint32, t uint32)
}

func (c *Cursor) setMode(m inputMode) {
	if c.mode != nil {
		c.mode.leave(c)
	}
	c.mode = m
	c.log.WithField("mode", m.kind()).Debugln("Cursor mode changed")
}

type inputModePassthrough struct{}

func (c *Cursor) startPassthrough() {
	c.setMode(&inputModePassthrough{})
	c.refocus()
}

func (m *inputModePassthrough) kind() CursorMode {
	return CursorPassthrough
}

func (m *inputModePassthrough) view() *View {
	return nil
}

func (m *inputModePassthrough) leave(c *Cursor) {}

func (m *inputModePassthrough) CursorMoved(c *Cursor, t uint32) {
	target, ok := c.server.inputTargetAt(c.pos.X, c.pos.Y)
	if !ok {
		c.setCursorImage("left_ptr")
		c.clearPointerFocus()
		return
	}
	if target.surface != c.pointerFocus {
		c.setCursorImage("left_ptr")
	}
	c.pointerTo(target, t)
}

func (m *inputModePassthrough) CursorButtonPressed(c *Cursor, b uint32, t uint32) {
	target, ok := c.server.inputTargetAt(c.pos.X, c.pos.Y)
	if !ok {
		return
	}

	c.focusTarget(target)
	if c.bypassGrab(target) {
		c.seat.SendPointerButton(t, b, true)
		return
	}
	c.seat.PointerButton(t, b, true)
}

func (m *inputModePassthrough) CursorButtonReleased(c *Cursor, b uint32, t uint32) {
	target, ok := c.server.inputTargetAt(c.pos.X, c.pos.Y)
	if ok && c.bypassGrab(target) {
		c.seat.SendPointerButton(t, b, false)
		return
	}
	c.seat.PointerButton(t, b, false)
}

type inputModeMove struct {
	v *View

	// off is the cursor's position relative to the view's origin when
	// the move started.
	off geom.Point[float64]

	suggestion *viewSuggestion
}

// StartMove moves view with the cursor until all buttons are released.
func (c *Cursor) StartMove(view *View) {
	if !view.mapped || view.IsFullscreen() {
		return
	}

	c.clearPointerFocus()
	c.setCursorImage("grabbing")
	c.setMode(&inputModeMove{
		v:   view,
		off: c.pos.Sub(geom.PConv[float64](view.box.Min)),
	})
}

func (m *inputModeMove) kind() CursorMode {
	return CursorMove
}

func (m *inputModeMove) view() *View {
	return m.v
}

func (m *inputModeMove) leave(c *Cursor) {
	if m.suggestion != nil {
		m.suggestion.remove()
		m.suggestion = nil
	}
}

// snapEdge returns the edge of out that p is close enough to for the
// moved view to be maximized or tiled against it.
func snapEdge(out *Output, p geom.Point[float64], threshold float64) geom.Edges {
	box := geom.RConv[float64](out.Box())
	switch {
	case p.Y-box.Min.Y < threshold:
		return geom.EdgeTop
	case p.X-box.Min.X < threshold:
		return geom.EdgeLeft
	case box.Max.X-p.X <= threshold:
		return geom.EdgeRight
	default:
		return geom.EdgeNone
	}
}

func (m *inputModeMove) CursorMoved(c *Cursor, t uint32) {
	server := c.server

	out := server.OutputAt(c.pos.X, c.pos.Y)
	if out != nil {
		edge := snapEdge(out, c.pos, float64(server.Config.EdgeSnapThreshold))
		if edge != geom.EdgeNone {
			target := out.Usable()
			if edge != geom.EdgeTop {
				target = geom.Half(target, edge)
			}
			if (m.suggestion != nil) && (m.suggestion.out != out) {
				m.suggestion.remove()
				m.suggestion = nil
			}
			if m.suggestion == nil {
				m.suggestion = server.newViewSuggestion(m.v, out)
			}
			m.suggestion.suggest(edge, target)
			return
		}
	}
	if m.suggestion != nil {
		m.suggestion.remove()
		m.suggestion = nil
	}

	switch {
	case m.v.maximized:
		server.Maximize(m.v, false)
		m.recenter(c)
	case m.v.tiled != geom.EdgeNone:
		server.Tile(m.v, geom.EdgeNone)
		m.recenter(c)
	}

	p := c.pos.Sub(m.off)
	server.MoveView(m.v, int(math.Round(p.X)), int(math.Round(p.Y)))
}

// recenter keeps the cursor over the same relative spot of a view that
// just got its old size back.
func (m *inputModeMove) recenter(c *Cursor) {
	size := geom.PConv[float64](m.v.saved.Size())
	m.off.X = geom.Clamp(m.off.X, 0, size.X)
	m.off.Y = geom.Clamp(m.off.Y, 0, size.Y)
}

func (m *inputModeMove) CursorButtonPressed(c *Cursor, b uint32, t uint32) {}

func (m *inputModeMove) CursorButtonReleased(c *Cursor, b uint32, t uint32) {
	if len(c.buttons) != 0 {
		return
	}

	if s := m.suggestion; s != nil {
		edge := s.edge
		m.suggestion = nil
		s.remove()

		switch edge {
		case geom.EdgeTop:
			c.server.Maximize(m.v, true)
		default:
			c.server.Tile(m.v, edge)
		}
	}
	c.startPassthrough()
}

type inputModeResize struct {
	v     *View
	edges geom.Edges
	start geom.Rect[int]
	grab  geom.Point[float64]
}

// StartResize resizes view by the given edges with the cursor until all
// buttons are released.
func (c *Cursor) StartResize(view *View, edges geom.Edges) {
	if !view.mapped || view.IsFullscreen() || (edges == geom.EdgeNone) {
		return
	}

	if view.maximized {
		c.server.Maximize(view, false)
	}
	if view.tiled != geom.EdgeNone {
		c.server.Tile(view, geom.EdgeNone)
	}

	c.clearPointerFocus()
	c.setCursorImage(resizeCursor(edges))
	c.setMode(&inputModeResize{
		v:     view,
		edges: edges,
		start: view.box,
		grab:  c.pos,
	})
}

// resizeCursor returns the XCursor name for resizing by edges.
func resizeCursor(edges geom.Edges) string {
	switch edges {
	case geom.EdgeTop:
		return "top_side"
	case geom.EdgeBottom:
		return "bottom_side"
	case geom.EdgeLeft:
		return "left_side"
	case geom.EdgeRight:
		return "right_side"
	case geom.EdgeTop | geom.EdgeLeft:
		return "top_left_corner"
	case geom.EdgeTop | geom.EdgeRight:
		return "top_right_corner"
	case geom.EdgeBottom | geom.EdgeLeft:
		return "bottom_left_corner"
	case geom.EdgeBottom | geom.EdgeRight:
		return "bottom_right_corner"
	default:
		return "left_ptr"
	}
}

func (m *inputModeResize) kind() CursorMode {
	return CursorResize
}

func (m *inputModeResize) view() *View {
	return m.v
}

func (m *inputModeResize) leave(c *Cursor) {}

// resized returns the box that the view should have after the cursor
// moved by d. Grabbed edges move with the cursor, but never past the
// opposite edge, which stays where it is.
func (m *inputModeResize) resized(d geom.Point[float64]) geom.Rect[int] {
	dx, dy := int(math.Round(d.X)), int(math.Round(d.Y))

	r := m.start
	if m.edges&geom.EdgeTop != 0 {
		r.Min.Y = min(m.start.Min.Y+dy, r.Max.Y-1)
	}
	if m.edges&geom.EdgeBottom != 0 {
		r.Max.Y = max(m.start.Max.Y+dy, r.Min.Y+1)
	}
	if m.edges&geom.EdgeLeft != 0 {
		r.Min.X = min(m.start.Min.X+dx, r.Max.X-1)
	}
	if m.edges&geom.EdgeRight != 0 {
		r.Max.X = max(m.start.Max.X+dx, r.Min.X+1)
	}
	return r
}

func (m *inputModeResize) CursorMoved(c *Cursor, t uint32) {
	r := m.resized(c.pos.Sub(m.grab))
	if r == m.v.box {
		return
	}
	c.server.resizeView(m.v, r)
}

func (m *inputModeResize) CursorButtonPressed(c *Cursor, b uint32, t uint32) {}

func (m *inputModeResize) CursorButtonReleased(c *Cursor, b uint32, t uint32) {
	if len(c.buttons) != 0 {
		return
	}
	c.startPassthrough()
}
