package phoc

import "deedles.dev/phoc/geom"

// AlphaLayerSurface lets a client set the opacity of a layer surface.
type AlphaLayerSurface struct {
	ls      *LayerSurface
	pending float64
	current float64
}

// GetAlpha returns the alpha state of ls, creating it if needed.
func (server *Server) GetAlpha(ls *LayerSurface) *AlphaLayerSurface {
	if a, ok := server.alphas[ls.ID]; ok {
		return a
	}

	a := AlphaLayerSurface{ls: ls, pending: 1, current: 1}
	server.alphas[ls.ID] = &a
	return &a
}

// SetAlpha sets the pending alpha, clamped to [0, 1].
func (a *AlphaLayerSurface) SetAlpha(alpha float64) {
	a.pending = geom.Clamp(alpha, 0, 1)
}

// SetAlphaFixed sets the pending alpha from a wl_fixed value.
func (a *AlphaLayerSurface) SetAlphaFixed(v int32) {
	a.SetAlpha(float64(v) / 256)
}

func (a *AlphaLayerSurface) Alpha() float64 {
	return a.current
}

func (a *AlphaLayerSurface) commit() {
	if a.pending == a.current {
		return
	}

	a.current = a.pending
	a.ls.alpha = a.current
	if a.ls.mapped && (a.ls.output != nil) {
		a.ls.output.DamageBox(a.ls.LayoutBox())
	}
}
