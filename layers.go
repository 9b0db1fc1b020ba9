package phoc

import (
	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/layer"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// LayerSurface is a layer-shell surface attached to an output.
type LayerSurface struct {
	ID        SurfaceID
	Namespace string
	Surface   ClientSurface

	// OnConfigure is called with the size the client should give the
	// surface.
	OnConfigure func(w, h int)

	// OnClosed is called when the surface's output goes away.
	OnClosed func()

	server     *Server
	output     *Output
	item       layer.Item
	layer      layer.Layer
	alpha      float64
	configured bool
	mapped     bool
}

// NewLayerSurface attaches a new layer surface to out. If out is nil,
// the output under the first cursor or else the first output is used.
func (server *Server) NewLayerSurface(out *Output, s ClientSurface, namespace string, l layer.Layer) (*LayerSurface, error) {
	if !l.Valid() {
		return nil, layer.Errorf(layer.ErrInvalidLayer, "layer %v", int(l))
	}
	if out == nil {
		out = server.defaultOutput()
		if out == nil {
			return nil, ErrNoOutput
		}
	}

	ls := LayerSurface{
		ID:        server.newID(),
		Namespace: namespace,
		Surface:   s,
		server:    server,
		output:    out,
		layer:     l,
		alpha:     1,
	}
	ls.item.State = layer.State{Namespace: namespace, Layer: l}

	server.layerSurfaces[ls.ID] = &ls
	out.layers[l] = append(out.layers[l], &ls)
	out.InvalidateLayerOrder(l)

	ls.log().Debugln("Layer surface created")
	return &ls, nil
}

func (server *Server) defaultOutput() *Output {
	if len(server.cursors) != 0 {
		p := server.cursors[0].Position()
		if out := server.OutputAt(p.X, p.Y); out != nil {
			return out
		}
	}
	if len(server.outputs) != 0 {
		return server.outputs[0]
	}
	return nil
}

func (ls *LayerSurface) log() *logrus.Entry {
	return ls.server.log.WithFields(logrus.Fields{
		"layer_surface": ls.ID,
		"namespace":     ls.Namespace,
	})
}

// Output returns the output the surface is on, or nil if it has lost
// it.
func (ls *LayerSurface) Output() *Output {
	return ls.output
}

// State returns the surface's committed state.
func (ls *LayerSurface) State() layer.State {
	return ls.item.State
}

// Box returns the surface's geometry in output-local coordinates.
func (ls *LayerSurface) Box() geom.Rect[int] {
	return ls.item.Box
}

// LayoutBox returns the surface's geometry in layout coordinates.
func (ls *LayerSurface) LayoutBox() geom.Rect[int] {
	if ls.output == nil {
		return ls.item.Box
	}
	return ls.item.Box.Add(ls.output.pos)
}

// Layer returns the layer the surface is drawn in. It differs from
// the layer the client asked for while the surface is promoted.
func (ls *LayerSurface) Layer() layer.Layer {
	return ls.layer
}

func (ls *LayerSurface) Alpha() float64 {
	return ls.alpha
}

func (ls *LayerSurface) Mapped() bool {
	return ls.mapped
}

// Configured reports whether the surface has been committed.
func (ls *LayerSurface) Configured() bool {
	return ls.configured
}

// CommitLayerSurface applies a commit of a layer surface with the
// state st along with the pending state of the surface's effects. A
// returned error is a protocol error for the surface's client.
func (server *Server) CommitLayerSurface(ls *LayerSurface, st layer.State) error {
	if err := st.Validate(); err != nil {
		return err
	}

	out := ls.output
	if out == nil {
		ls.log().Warnln("Commit of layer surface without output")
		return nil
	}

	st.Namespace = ls.Namespace
	old := ls.item.State
	if d, ok := server.draggables[ls.ID]; ok {
		if err := d.commit(&st); err != nil {
			return err
		}
	}
	ls.item.State = st
	ls.configured = true

	if target := server.effectiveLayer(ls); target != ls.layer {
		out.moveLayerSurface(ls, target)
	} else if (old.ExclusiveZone != st.ExclusiveZone) || (old.Exclusive() != st.Exclusive()) || (old.Anchor != st.Anchor) {
		out.InvalidateLayerOrder(ls.layer)
	}

	if s, ok := server.stacks[ls.ID]; ok {
		if err := s.commit(); err != nil {
			return err
		}
	}
	if a, ok := server.alphas[ls.ID]; ok {
		a.commit()
	}

	mapping := !ls.mapped && (ls.Surface.Texture() != nil)
	ls.mapped = ls.Surface.Texture() != nil

	out.ArrangeLayers()
	if err := ls.item.Err; err != nil {
		return err
	}

	switch {
	case mapping:
		out.DamageBox(ls.LayoutBox())
		server.updateCursorFocus()
	case ls.mapped:
		out.DamageSurface(ls.Surface, ls.LayoutBox().Min, false)
	}

	if old.KeyboardInteractive != st.KeyboardInteractive {
		server.UpdateOSK()
	}
	return nil
}

// DestroyLayerSurface removes ls from its output along with its
// effects.
func (server *Server) DestroyLayerSurface(ls *LayerSurface) {
	if d, ok := server.draggables[ls.ID]; ok {
		d.destroy()
	}
	delete(server.alphas, ls.ID)
	delete(server.stacks, ls.ID)
	server.dropStackBindings(ls)

	for _, c := range server.cursors {
		c.layerSurfaceRemoved(ls)
	}
	delete(server.layerSurfaces, ls.ID)

	out := ls.output
	if out == nil {
		out = server.outputOf(ls)
	}
	if out != nil {
		if ls.mapped {
			out.DamageBox(ls.item.Box.Add(out.pos))
		}
		i := slices.Index(out.layers[ls.layer], ls)
		if i >= 0 {
			out.layers[ls.layer] = slices.Delete(out.layers[ls.layer], i, i+1)
		}
		out.InvalidateLayerOrder(ls.layer)
		if ls.output != nil {
			out.ArrangeLayers()
		}
	}

	ls.mapped = false
	ls.output = nil
	server.UpdateOSK()
	ls.log().Debugln("Layer surface destroyed")
}

// outputOf finds the output whose layers hold ls.
func (server *Server) outputOf(ls *LayerSurface) *Output {
	for _, out := range server.outputs {
		if slices.Contains(out.layers[ls.layer], ls) {
			return out
		}
	}
	return nil
}

// moveLayerSurface moves ls to the end of layer l.
func (out *Output) moveLayerSurface(ls *LayerSurface, l layer.Layer) {
	i := slices.Index(out.layers[ls.layer], ls)
	if i < 0 {
		panic("If you see this, there's a bug.")
	}

	out.server.dropStackBindings(ls)
	out.layers[ls.layer] = slices.Delete(out.layers[ls.layer], i, i+1)
	out.InvalidateLayerOrder(ls.layer)

	ls.log().WithFields(logrus.Fields{
		"from": ls.layer,
		"to":   l,
	}).Debugln("Layer surface changed layer")

	ls.layer = l
	out.layers[l] = append(out.layers[l], ls)
	out.InvalidateLayerOrder(l)

	if ls.mapped {
		out.DamageBox(ls.LayoutBox())
	}
}

// LayerSurfaces returns the surfaces attached to layer l in attach
// order.
func (out *Output) LayerSurfaces(l layer.Layer) []*LayerSurface {
	return out.layers[l]
}

// ArrangeLayers places every layer surface of the output and updates
// its usable area. Surfaces whose box moved are damaged. Surfaces
// whose size changed are asked to configure.
func (out *Output) ArrangeLayers() {
	var items [layer.Count][]*layer.Item
	type change struct {
		ls  *LayerSurface
		old geom.Rect[int]
	}
	var all []change
	for l := range out.layers {
		for _, ls := range out.layers[l] {
			if !ls.configured {
				continue
			}
			items[l] = append(items[l], &ls.item)
			all = append(all, change{ls: ls, old: ls.item.Box})
		}
	}

	usable := layer.Arrange(geom.Rect[int]{Max: out.Size()}, &items)

	var moved bool
	for _, c := range all {
		ls, box := c.ls, c.ls.item.Box
		if err := ls.item.Err; err != nil {
			ls.log().WithError(err).Warnln("Failed to arrange layer surface")
			continue
		}
		if box == c.old {
			continue
		}

		if ls.mapped {
			out.DamageBox(c.old.Add(out.pos))
			out.DamageBox(box.Add(out.pos))
		}
		if box.Size() != c.old.Size() {
			if ls.OnConfigure != nil {
				ls.OnConfigure(box.Dx(), box.Dy())
			}
			continue
		}
		moved = true
	}

	if usable != out.usable {
		out.usable = usable
		out.log.WithField("usable", usable).Debugln("Usable area changed")
		out.server.refitViews(out)
	}
	if moved {
		out.server.updateCursorFocus()
	}
}

// LayerOrder returns the surfaces of layer l from back to front. The
// order is cached until it is invalidated.
func (out *Output) LayerOrder(l layer.Layer) []*LayerSurface {
	if out.orderValid[l] {
		return out.order[l]
	}

	out.order[l] = layer.Order(
		out.layers[l],
		func(ls *LayerSurface) bool { return ls.item.State.Exclusive() },
		out.server.stackBindings(out, l),
	)
	out.orderValid[l] = true
	return out.order[l]
}

// InvalidateLayerOrder drops the cached order of layer l.
func (out *Output) InvalidateLayerOrder(l layer.Layer) {
	out.orderValid[l] = false
	out.order[l] = nil
}

// layerSurfaceAt returns the topmost mapped surface of layer l with a
// surface under the layout coordinates.
func (out *Output) layerSurfaceAt(l layer.Layer, lx, ly float64) (*LayerSurface, ClientSurface, float64, float64, bool) {
	order := out.LayerOrder(l)
	for i := len(order) - 1; i >= 0; i-- {
		ls := order[i]
		if !ls.mapped {
			continue
		}
		if s, sx, sy, ok := surfaceAt(ls.Surface, ls.LayoutBox().Min, lx, ly); ok {
			return ls, s, sx, sy, true
		}
	}
	return nil, nil, 0, 0, false
}

// effectiveLayer returns the layer ls should be drawn in. The
// on-screen keyboard is promoted to the overlay layer while a seat
// with an active input method has a layer surface at or above the
// keyboard's own layer focused.
func (server *Server) effectiveLayer(ls *LayerSurface) layer.Layer {
	native := ls.item.State.Layer
	if ls.Namespace != server.Config.OSKNamespace {
		return native
	}

	for _, c := range server.cursors {
		focus := c.focusedLayer
		if (focus == nil) || (focus == ls) || (focus.layer < native) {
			continue
		}
		if c.seat.InputMethodActive(focus.Surface.Client()) {
			return layer.Overlay
		}
	}
	return native
}

// UpdateOSK moves on-screen keyboards between their own layer and the
// overlay layer.
func (server *Server) UpdateOSK() {
	type move struct {
		ls     *LayerSurface
		target layer.Layer
	}

	var moves []move
	for _, out := range server.outputs {
		for _, surfaces := range out.layers {
			for _, ls := range surfaces {
				if (ls.Namespace != server.Config.OSKNamespace) || !ls.configured {
					continue
				}
				if target := server.effectiveLayer(ls); target != ls.layer {
					moves = append(moves, move{ls: ls, target: target})
				}
			}
		}
	}

	for _, m := range moves {
		m.ls.log().WithField("layer", m.target).Debugln("Moving on-screen keyboard")
		m.ls.output.moveLayerSurface(m.ls, m.target)
		m.ls.output.ArrangeLayers()
	}
}
