package wlrplat

import (
	"deedles.dev/phoc"
	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/internal/util"
	"deedles.dev/wlr"
	xgeom "deedles.dev/ximage/geom"
)

// xdgView ties an xdg toplevel to its view.
type xdgView struct {
	xdg  wlr.XDGSurface
	root *surface
	view *phoc.View

	onMap     wlr.Listener
	onDestroy wlr.Listener
}

func (p *Platform) xdgView(view *phoc.View) (*xdgView, bool) {
	return util.FindFunc(p.views, func(xv *xdgView) bool {
		return xv.view == view
	})
}

func (p *Platform) onNewXDGSurface(xdg wlr.XDGSurface) {
	if xdg.Role() != wlr.XDGSurfaceRoleToplevel {
		return
	}

	pid, _, _ := xdg.Resource().GetClient().GetCredentials()
	root := p.surfaceFor(xdg.Surface(), int(pid))
	root.xdg = xdg
	root.root = true

	xv := xdgView{
		xdg:  xdg,
		root: root,
		view: p.server.NewView(root, nil),
	}
	xv.view.Configure = func(w, h int) {
		xdg.Toplevel().SetSize(int32(w), int32(h))
	}
	xv.onMap = xdg.Surface().OnMap(func(wlr.Surface) {
		p.mapView(&xv)
	})
	xv.onDestroy = xdg.OnDestroy(func(wlr.XDGSurface) {
		p.destroyView(&xv)
	})

	p.views = append(p.views, &xv)
}

// mapView centers the view on the output under the cursor.
func (p *Platform) mapView(xv *xdgView) {
	out := p.server.OutputAt(p.seat.cursor.X(), p.seat.cursor.Y())
	if out == nil {
		outputs := p.server.Outputs()
		if len(outputs) == 0 {
			p.log.Warnln("Mapping view without any outputs")
			p.server.MapView(xv.view, geom.Rect[int]{})
			return
		}
		out = outputs[0]
	}

	size := xv.root.Size()
	center := xgeom.RConv[float64](xgeom.FromImageRect(out.Usable().ImageRect())).Center()
	r := xgeom.Rt(0, 0, float64(size.X), float64(size.Y)).CenterAt(center)

	p.server.MapView(xv.view, geom.FromImageRect(r.ImageRect()))
	p.seat.focus(xv)
}

func (p *Platform) destroyView(xv *xdgView) {
	p.server.RemoveView(xv.view)

	xv.xdg.ForEachSurface(func(s wlr.Surface, x, y int) {
		delete(p.surfaces, s)
	})
	delete(p.surfaces, xv.root.s)

	p.views = util.Remove(p.views, xv)
}
