package phoc

import (
	"deedles.dev/phoc/layer"
	"golang.org/x/exp/slices"
)

type stackBinding struct {
	target   *LayerSurface
	position layer.Position
}

// StackedLayerSurface lets a client stack a layer surface directly
// above or below another surface of the same layer.
type StackedLayerSurface struct {
	ls      *LayerSurface
	pending stackBinding
	current stackBinding
}

// GetStacked returns the stacking state of ls, creating it if needed.
func (server *Server) GetStacked(ls *LayerSurface) *StackedLayerSurface {
	if s, ok := server.stacks[ls.ID]; ok {
		return s
	}

	s := StackedLayerSurface{ls: ls}
	server.stacks[ls.ID] = &s
	return &s
}

// StackAbove asks for the surface to be placed directly above target
// on the next commit.
func (s *StackedLayerSurface) StackAbove(target *LayerSurface) error {
	return s.stack(target, layer.Above)
}

// StackBelow asks for the surface to be placed directly below target
// on the next commit.
func (s *StackedLayerSurface) StackBelow(target *LayerSurface) error {
	return s.stack(target, layer.Below)
}

func (s *StackedLayerSurface) stack(target *LayerSurface, pos layer.Position) error {
	if (target == nil) || !target.configured {
		return layer.Errorf(layer.ErrInvalidStackTarget, "target has not been committed")
	}
	if target == s.ls {
		return layer.Errorf(layer.ErrInvalidStackTarget, "surface cannot be stacked relative to itself")
	}

	s.pending = stackBinding{target: target, position: pos}
	return nil
}

// Target returns the surface that s is currently stacked against.
func (s *StackedLayerSurface) Target() (*LayerSurface, layer.Position, bool) {
	return s.current.target, s.current.position, s.current.target != nil
}

func (s *StackedLayerSurface) commit() error {
	if s.pending == s.current {
		return nil
	}

	if t := s.pending.target; t != nil {
		if (t.output != s.ls.output) || (t.layer != s.ls.layer) {
			s.pending = s.current
			return layer.Errorf(
				layer.ErrInvalidStackTarget,
				"target is on %v, surface is on %v",
				t.layer, s.ls.layer,
			)
		}
	}

	s.current = s.pending
	if out := s.ls.output; out != nil {
		out.InvalidateLayerOrder(s.ls.layer)
		if s.ls.mapped {
			out.DamageBox(s.ls.LayoutBox())
		}
	}
	s.ls.log().WithField("position", s.current.position).Debugln("Layer surface restacked")
	return nil
}

// dropStackBindings forgets every binding that involves ls, either as
// the stacked surface or as the target. A request made by ls itself
// that is still pending survives and is checked on its next commit.
func (server *Server) dropStackBindings(ls *LayerSurface) {
	for _, s := range server.stacks {
		if s.pending.target == ls {
			s.pending = stackBinding{}
		}
		if (s.ls != ls) && (s.current.target != ls) {
			continue
		}
		if (s.current.target != nil) && (s.ls.output != nil) {
			s.ls.output.InvalidateLayerOrder(s.ls.layer)
		}
		s.current = stackBinding{}
	}
}

// stackBindings returns the bindings of layer l on out ordered by the
// creation of the stacked surfaces.
func (server *Server) stackBindings(out *Output, l layer.Layer) []layer.Binding[*LayerSurface] {
	var bindings []layer.Binding[*LayerSurface]
	for _, s := range server.stacks {
		t := s.current.target
		if (t == nil) || (s.ls.output != out) || (s.ls.layer != l) || (t.output != out) || (t.layer != l) {
			continue
		}
		bindings = append(bindings, layer.Binding[*LayerSurface]{
			Surface:  s.ls,
			Target:   t,
			Position: s.current.position,
		})
	}

	slices.SortFunc(bindings, func(a, b layer.Binding[*LayerSurface]) int {
		switch {
		case a.Surface.ID < b.Surface.ID:
			return -1
		case a.Surface.ID > b.Surface.ID:
			return 1
		default:
			return 0
		}
	})
	return bindings
}
