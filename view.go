package phoc

import (
	"math"

	"deedles.dev/phoc/geom"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// View is a toplevel window.
type View struct {
	ID      SurfaceID
	Surface ClientSurface

	// Parent is the view that this one is a dialog or child of.
	Parent *View

	// Configure asks the client to take the given size.
	Configure func(w, h int)

	server     *Server
	box        geom.Rect[int]
	saved      geom.Rect[int]
	mapped     bool
	maximized  bool
	tiled      geom.Edges
	fullscreen *Output
	alpha      float64
	blings     []Bling
}

// NewView adds an unmapped view on top of the others.
func (server *Server) NewView(s ClientSurface, parent *View) *View {
	view := View{
		ID:      server.newID(),
		Surface: s,
		Parent:  parent,
		server:  server,
		alpha:   1,
	}
	server.views = append(server.views, &view)
	return &view
}

func (view *View) log() *logrus.Entry {
	return view.server.log.WithField("view", view.ID)
}

// Box returns the view's geometry in layout coordinates.
func (view *View) Box() geom.Rect[int] {
	return view.box
}

func (view *View) Mapped() bool {
	return view.mapped
}

func (view *View) Maximized() bool {
	return view.maximized
}

// Tiled returns the edge the view is tiled against, if any.
func (view *View) Tiled() geom.Edges {
	return view.tiled
}

func (view *View) Alpha() float64 {
	return view.alpha
}

// IsFullscreen reports whether the view is fullscreen on some output.
func (view *View) IsFullscreen() bool {
	return view.fullscreen != nil
}

// SetAlpha sets the opacity the view is drawn with.
func (view *View) SetAlpha(alpha float64) {
	alpha = geom.Clamp(alpha, 0, 1)
	if alpha == view.alpha {
		return
	}
	view.alpha = alpha
	view.damage(true)
}

func (view *View) damage(whole bool) {
	if !view.mapped {
		return
	}
	view.server.damageSurface(view.Surface, view.box.Min, whole)
	if whole {
		view.server.damageBox(view.box)
	}
	for _, b := range view.blings {
		if b.IsMapped() {
			view.server.damageBox(b.Box())
		}
	}
}

// MapView shows view at box. A view mapped with auto-maximize enabled
// is maximized right away.
func (server *Server) MapView(view *View, box geom.Rect[int]) {
	if view.mapped {
		return
	}
	view.mapped = true
	view.box = box
	for _, b := range view.blings {
		b.Map()
	}

	if server.Config.AutoMaximize && (view.Parent == nil) {
		server.Maximize(view, true)
	}

	view.damage(true)
	server.updateCursorFocus()
	view.log().WithField("box", view.box).Debugln("View mapped")
}

func (server *Server) UnmapView(view *View) {
	if !view.mapped {
		return
	}
	view.damage(true)
	for _, b := range view.blings {
		b.Unmap()
	}
	view.mapped = false
	server.updateCursorFocus()
}

// RemoveView destroys view along with its blings.
func (server *Server) RemoveView(view *View) {
	server.UnmapView(view)
	if view.fullscreen != nil {
		view.fullscreen.fullscreen = nil
		view.fullscreen = nil
	}
	for _, c := range server.cursors {
		c.viewRemoved(view)
	}
	for _, v := range server.views {
		if v.Parent == view {
			v.Parent = nil
		}
	}

	view.blings = nil
	i := slices.Index(server.views, view)
	if i >= 0 {
		server.views = slices.Delete(server.views, i, i+1)
	}
}

// CommitView accounts for a commit of the view's surface.
func (server *Server) CommitView(view *View) {
	if !view.mapped {
		return
	}

	size := view.Surface.Size()
	if size != view.box.Size() {
		view.damage(true)
		view.box = view.box.Resize(size)
		view.damage(true)
		return
	}
	view.damage(false)
}

// RaiseView moves view to the top of the stack.
func (server *Server) RaiseView(view *View) {
	i := slices.Index(server.views, view)
	if (i < 0) || (i == len(server.views)-1) {
		return
	}
	server.views = slices.Delete(server.views, i, i+1)
	server.views = append(server.views, view)
	view.damage(true)
}

// MoveView moves view to the layout coordinates.
func (server *Server) MoveView(view *View, x, y int) {
	p := geom.Pt(x, y)
	if p == view.box.Min {
		return
	}
	view.damage(true)
	view.box = view.box.Sub(view.box.Min).Add(p)
	view.damage(true)
}

// resizeView asks the client to take on box. The position changes
// right away. The size is applied when the client commits.
func (server *Server) resizeView(view *View, box geom.Rect[int]) {
	server.MoveView(view, box.Min.X, box.Min.Y)
	if view.Configure != nil {
		view.Configure(box.Dx(), box.Dy())
	}
}

// Maximize maximizes view into the usable area of its output, or
// restores its previous geometry.
func (server *Server) Maximize(view *View, maximize bool) {
	if maximize == view.maximized {
		return
	}
	if !maximize {
		view.maximized = false
		server.resizeView(view, view.saved)
		return
	}

	out := server.outputFor(view.box)
	if out == nil {
		return
	}
	if view.tiled == geom.EdgeNone {
		view.saved = view.box
	}
	view.maximized = true
	view.tiled = geom.EdgeNone
	server.resizeView(view, out.Usable())
}

// Tile places view in the half of its output's usable area along edge.
// EdgeNone restores the view's previous geometry.
func (server *Server) Tile(view *View, edge geom.Edges) {
	if edge == view.tiled {
		return
	}
	if edge == geom.EdgeNone {
		view.tiled = geom.EdgeNone
		server.resizeView(view, view.saved)
		return
	}

	out := server.outputFor(view.box)
	if out == nil {
		return
	}
	if !view.maximized && (view.tiled == geom.EdgeNone) {
		view.saved = view.box
	}
	view.maximized = false
	view.tiled = edge
	server.resizeView(view, geom.Half(out.Usable(), edge))
}

// refitViews resizes the maximized and tiled views on out after its
// usable area changed.
func (server *Server) refitViews(out *Output) {
	for _, view := range server.views {
		if (view.fullscreen != nil) || (server.outputFor(view.box) != out) {
			continue
		}
		switch {
		case view.maximized:
			if view.box != out.Usable() {
				server.resizeView(view, out.Usable())
			}
		case view.tiled != geom.EdgeNone:
			if box := geom.Half(out.Usable(), view.tiled); view.box != box {
				server.resizeView(view, box)
			}
		}
	}
}

// SetFullscreen makes view fullscreen on out. A nil out leaves
// fullscreen.
func (server *Server) SetFullscreen(view *View, out *Output) {
	if out == view.fullscreen {
		return
	}

	if prev := view.fullscreen; prev != nil {
		prev.fullscreen = nil
		prev.DamageWhole()
		view.fullscreen = nil
		if out == nil {
			server.resizeView(view, view.saved)
			return
		}
	} else {
		view.saved = view.box
	}

	if other := out.fullscreen; other != nil {
		server.SetFullscreen(other, nil)
	}
	view.fullscreen = out
	out.fullscreen = view
	server.resizeView(view, out.Box())
	out.DamageWhole()
	server.updateCursorFocus()
}

// IsViewVisible reports whether view should be drawn. With a single
// output and auto-maximize enabled, only the topmost view and the
// ancestors reached from it before a maximized view are visible.
func (server *Server) IsViewVisible(view *View) bool {
	if !view.mapped {
		return false
	}
	if (len(server.outputs) > 1) || !server.Config.AutoMaximize {
		return true
	}

	for v := server.topmostView(); v != nil; v = v.Parent {
		if v == view {
			return true
		}
		if v.maximized {
			return false
		}
	}
	return false
}

func (server *Server) topmostView() *View {
	for i := len(server.views) - 1; i >= 0; i-- {
		if server.views[i].mapped {
			return server.views[i]
		}
	}
	return nil
}

// ViewAt returns the topmost visible view with a surface at the layout
// coordinates, along with that surface and the surface-local
// coordinates.
func (server *Server) ViewAt(lx, ly float64) (view *View, s ClientSurface, sx, sy float64) {
	for i := len(server.views) - 1; i >= 0; i-- {
		view := server.views[i]
		if !server.IsViewVisible(view) {
			continue
		}
		s, sx, sy, ok := surfaceAt(view.Surface, view.box.Min, lx, ly)
		if ok {
			return view, s, sx, sy
		}
	}
	return nil, nil, 0, 0
}

// surfaceAt finds the surface of the tree rooted at s, which sits at
// pos, that is under the layout coordinates.
func surfaceAt(s ClientSurface, pos geom.Point[int], lx, ly float64) (ClientSurface, float64, float64, bool) {
	subs := s.Subsurfaces()
	for i := len(subs) - 1; i >= 0; i-- {
		if subs[i].Below {
			continue
		}
		if hit, sx, sy, ok := surfaceAt(subs[i].Surface, pos.Add(subs[i].Pos), lx, ly); ok {
			return hit, sx, sy, true
		}
	}

	sx, sy := lx-float64(pos.X), ly-float64(pos.Y)
	size := s.Size()
	if (sx >= 0) && (sy >= 0) && (sx < float64(size.X)) && (sy < float64(size.Y)) {
		return s, sx, sy, true
	}

	for i := len(subs) - 1; i >= 0; i-- {
		if !subs[i].Below {
			continue
		}
		if hit, sx, sy, ok := surfaceAt(subs[i].Surface, pos.Add(subs[i].Pos), lx, ly); ok {
			return hit, sx, sy, true
		}
	}
	return nil, 0, 0, false
}

// AddBling attaches b to view. It is drawn before the view's surfaces,
// in the order blings were added.
func (view *View) AddBling(b Bling) {
	view.blings = append(view.blings, b)
	if view.mapped {
		b.Map()
	}
}

// RemoveBling detaches b from view.
func (view *View) RemoveBling(b Bling) {
	i := slices.Index(view.blings, b)
	if i < 0 {
		return
	}
	b.Unmap()
	view.blings = slices.Delete(view.blings, i, i+1)
}

// Blings returns the blings attached to view.
func (view *View) Blings() []Bling {
	return view.blings
}

// Bling is a decoration drawn along with a view.
type Bling interface {
	// Box returns the area the bling covers in layout coordinates.
	Box() geom.Rect[int]
	Render(ctx *RenderContext)
	Map()
	Unmap()
	IsMapped() bool
}

// ColorRect is a bling that fills a rectangle with a color.
type ColorRect struct {
	server *Server
	box    geom.Rect[int]
	color  geom.Color
	mapped bool
}

func (server *Server) NewColorRect(box geom.Rect[int], c geom.Color) *ColorRect {
	return &ColorRect{server: server, box: box, color: c}
}

func (r *ColorRect) Box() geom.Rect[int] {
	return r.box
}

func (r *ColorRect) Color() geom.Color {
	return r.color
}

func (r *ColorRect) SetBox(box geom.Rect[int]) {
	if box == r.box {
		return
	}
	r.damage()
	r.box = box
	r.damage()
}

func (r *ColorRect) SetColor(c geom.Color) {
	if c == r.color {
		return
	}
	r.color = c
	r.damage()
}

func (r *ColorRect) damage() {
	if r.mapped {
		r.server.damageBox(r.box)
	}
}

func (r *ColorRect) Render(ctx *RenderContext) {
	ctx.DrawRect(r.box, r.color)
}

func (r *ColorRect) Map() {
	r.mapped = true
	r.damage()
}

func (r *ColorRect) Unmap() {
	r.damage()
	r.mapped = false
}

func (r *ColorRect) IsMapped() bool {
	return r.mapped
}

// Border is a bling that draws a frame around a view.
type Border struct {
	view   *View
	Width  int
	Color  geom.Color
	mapped bool
}

func NewBorder(view *View, width int, c geom.Color) *Border {
	return &Border{view: view, Width: width, Color: c}
}

func (b *Border) Box() geom.Rect[int] {
	return b.view.box.Inset(-b.Width)
}

func (b *Border) Render(ctx *RenderContext) {
	r := b.Box()
	w := b.Width
	ctx.DrawRect(geom.XYWH(r.Min.X, r.Min.Y, r.Dx(), w), b.Color)
	ctx.DrawRect(geom.XYWH(r.Min.X, r.Max.Y-w, r.Dx(), w), b.Color)
	ctx.DrawRect(geom.XYWH(r.Min.X, r.Min.Y+w, w, r.Dy()-2*w), b.Color)
	ctx.DrawRect(geom.XYWH(r.Max.X-w, r.Min.Y+w, w, r.Dy()-2*w), b.Color)
}

func (b *Border) Map() {
	b.mapped = true
	if !b.view.Mapped() {
		return
	}
	b.view.server.damageBox(b.Box())
}

func (b *Border) Unmap() {
	b.view.server.damageBox(b.Box())
	b.mapped = false
}

func (b *Border) IsMapped() bool {
	return b.mapped
}

// DragIcon is the surface shown under the cursor during drag and drop.
type DragIcon struct {
	Surface ClientSurface

	server *Server
	pos    geom.Point[int]
	mapped bool
}

// AddDragIcon adds an unmapped drag icon.
func (server *Server) AddDragIcon(s ClientSurface) *DragIcon {
	icon := DragIcon{Surface: s, server: server}
	server.dragIcons = append(server.dragIcons, &icon)
	return &icon
}

func (server *Server) RemoveDragIcon(icon *DragIcon) {
	icon.Unmap()
	i := slices.Index(server.dragIcons, icon)
	if i >= 0 {
		server.dragIcons = slices.Delete(server.dragIcons, i, i+1)
	}
}

func (icon *DragIcon) Mapped() bool {
	return icon.mapped
}

func (icon *DragIcon) Map() {
	if icon.mapped {
		return
	}
	icon.mapped = true
	icon.server.damageSurface(icon.Surface, icon.pos, true)
}

func (icon *DragIcon) Unmap() {
	if !icon.mapped {
		return
	}
	icon.server.damageSurface(icon.Surface, icon.pos, true)
	icon.mapped = false
}

// Move places the icon with its origin at the layout coordinates.
func (icon *DragIcon) Move(lx, ly float64) {
	p := geom.Pt(int(math.Round(lx)), int(math.Round(ly)))
	if p == icon.pos {
		return
	}
	if icon.mapped {
		icon.server.damageSurface(icon.Surface, icon.pos, true)
	}
	icon.pos = p
	if icon.mapped {
		icon.server.damageSurface(icon.Surface, icon.pos, true)
	}
}

// Commit accounts for a commit of the icon's surface.
func (icon *DragIcon) Commit() {
	if icon.mapped {
		icon.server.damageSurface(icon.Surface, icon.pos, false)
	}
}
