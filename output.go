package phoc

import (
	"errors"
	"math"
	"time"

	"deedles.dev/phoc/config"
	"deedles.dev/phoc/damage"
	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/layer"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Output is a display. Its layout box is its position in the global
// layout with its logical size, which is its mode rotated by its
// transform and divided by its scale.
type Output struct {
	server  *Server
	log     *logrus.Entry
	name    string
	backend Backend

	modes     []geom.Point[int]
	mode      geom.Point[int]
	pos       geom.Point[int]
	scale     float64
	transform geom.Transform

	damage *damage.Ring

	layers     [layer.Count][]*LayerSurface
	order      [layer.Count][]*LayerSurface
	orderValid [layer.Count]bool
	usable     geom.Rect[int]

	fullscreen  *View
	shellReveal bool
	shield      shield

	callbacks    []*frameCallback
	nextCallback uint
	lastFrame    time.Time
}

// AddOutput adds an output driven by backend. modes lists the sizes
// the output supports with the preferred one first. The output's
// configuration is looked up by name.
func (server *Server) AddOutput(name string, backend Backend, modes []geom.Point[int]) (*Output, error) {
	if len(modes) == 0 {
		return nil, errors.New("output has no modes")
	}

	out := Output{
		server:  server,
		log:     server.log.WithField("output", name),
		name:    name,
		backend: backend,
		modes:   modes,
		scale:   1,
		damage:  damage.NewRing(damage.DefaultHistory),
	}

	if config, ok := server.Config.Output(name); ok {
		server.configureOutput(&out, &config)
	} else {
		server.setOutputMode(&out, nil)
		server.layoutOutput(&out, nil)
	}
	server.outputs = append(server.outputs, &out)

	out.reconfigure()
	out.log.WithFields(logrus.Fields{
		"mode":      out.mode,
		"box":       out.Box(),
		"scale":     out.scale,
		"transform": out.transform,
	}).Infoln("Output added")
	return &out, nil
}

func (server *Server) configureOutput(out *Output, config *config.OutputConfig) {
	server.setOutputMode(out, config)
	server.layoutOutput(out, config)

	if config.Scale > 0 {
		out.scale = config.Scale
	}

	tr, err := config.ParseTransform()
	if err != nil {
		out.log.WithError(err).Warnln("Ignoring output transform")
		return
	}
	out.transform = tr
}

func (server *Server) layoutOutput(out *Output, config *config.OutputConfig) {
	if (config == nil) || (config.X == -1) && (config.Y == -1) {
		var x int
		for _, other := range server.outputs {
			x = max(x, other.Box().Max.X)
		}
		out.pos = geom.Pt(x, 0)
		return
	}

	out.pos = geom.Pt(config.X, config.Y)
}

func (server *Server) setOutputMode(out *Output, config *config.OutputConfig) {
	var set bool
	defer func() {
		if !set {
			out.mode = out.modes[0]
		}
	}()

	if (config == nil) || (config.Width == 0) || (config.Height == 0) {
		return
	}

	for _, mode := range out.modes {
		if (mode.X == config.Width) && (mode.Y == config.Height) {
			out.mode = mode
			set = true
			return
		}
	}
	out.log.WithFields(logrus.Fields{
		"width":  config.Width,
		"height": config.Height,
	}).Warnln("Configured mode not available")
}

// RemoveOutput removes out. Layer surfaces on it lose their output and
// are destroyed. Its frame callbacks are dropped.
func (server *Server) RemoveOutput(out *Output) {
	i := slices.Index(server.outputs, out)
	if i < 0 {
		out.log.Warnln("Removing unknown output")
		return
	}

	for l := range out.layers {
		for _, ls := range slices.Clone(out.layers[l]) {
			ls.output = nil
			server.DestroyLayerSurface(ls)
			if ls.OnClosed != nil {
				ls.OnClosed()
			}
		}
	}

	out.callbacks = nil
	out.shield = shield{}
	if view := out.fullscreen; view != nil {
		server.SetFullscreen(view, nil)
	}

	server.outputs = slices.Delete(server.outputs, i, i+1)
	server.updateCursorFocus()
	out.log.Infoln("Output removed")
}

// OutputAt returns the output at the layout coordinates, or nil.
func (server *Server) OutputAt(lx, ly float64) *Output {
	p := geom.Pt(int(math.Floor(lx)), int(math.Floor(ly)))
	for _, out := range server.outputs {
		if p.In(out.Box()) {
			return out
		}
	}
	return nil
}

func (out *Output) Name() string {
	return out.name
}

// Mode returns the size of the output's buffers.
func (out *Output) Mode() geom.Point[int] {
	return out.mode
}

func (out *Output) Scale() float64 {
	return out.scale
}

func (out *Output) Transform() geom.Transform {
	return out.transform
}

// Size returns the output's logical size.
func (out *Output) Size() geom.Point[int] {
	w, h := out.transform.Size(out.mode.X, out.mode.Y)
	return geom.Pt(
		int(math.Round(float64(w)/out.scale)),
		int(math.Round(float64(h)/out.scale)),
	)
}

// Box returns the output's area in layout coordinates.
func (out *Output) Box() geom.Rect[int] {
	return geom.Rect[int]{Max: out.Size()}.Add(out.pos)
}

// Usable returns the part of the output, in layout coordinates, that
// is not reserved by exclusive layer surfaces.
func (out *Output) Usable() geom.Rect[int] {
	return out.usable.Add(out.pos)
}

// Fullscreen returns the view that is fullscreen on the output, or nil.
func (out *Output) Fullscreen() *View {
	return out.fullscreen
}

// SetMode switches the output to one of its modes. The output is
// shielded while the switch happens.
func (out *Output) SetMode(mode geom.Point[int]) error {
	if !slices.Contains(out.modes, mode) {
		return errors.New("unsupported mode")
	}
	if mode == out.mode {
		return nil
	}

	out.ShieldUp()
	out.mode = mode
	out.reconfigure()
	out.ShieldDown()
	return nil
}

func (out *Output) SetScale(scale float64) {
	if (scale <= 0) || (scale == out.scale) {
		return
	}
	out.scale = scale
	out.reconfigure()
}

func (out *Output) SetTransform(tr geom.Transform) {
	if tr == out.transform {
		return
	}
	out.transform = tr
	out.reconfigure()
}

// SetPosition moves the output in the layout.
func (out *Output) SetPosition(x, y int) {
	out.pos = geom.Pt(x, y)
	out.reconfigure()
}

// reconfigure brings everything that depends on the output's geometry
// up to date.
func (out *Output) reconfigure() {
	out.damage.SetBounds(out.mode.X, out.mode.Y)
	out.ArrangeLayers()

	if view := out.fullscreen; view != nil {
		out.server.resizeView(view, out.Box())
	}
	out.server.refitViews(out)

	out.DamageWhole()
}

// ShellRevealed reports whether the top layer is shown above the
// fullscreen view.
func (out *Output) ShellRevealed() bool {
	return out.shellReveal
}

// SetShellRevealed shows or hides the top layer above a fullscreen
// view.
func (out *Output) SetShellRevealed(reveal bool) {
	if reveal == out.shellReveal {
		return
	}
	out.shellReveal = reveal
	out.log.WithField("reveal", reveal).Debugln("Shell reveal changed")
	if out.fullscreen != nil {
		out.DamageWhole()
	}
}

// transformedSize returns the size of the output's buffer after its
// transform is applied.
func (out *Output) transformedSize() (int, int) {
	return out.transform.Size(out.mode.X, out.mode.Y)
}

// toBuffer converts box from layout coordinates to buffer coordinates.
func (out *Output) toBuffer(box geom.Rect[int]) geom.Rect[int] {
	local := geom.ScaleOut(box.Sub(out.pos), out.scale)
	w, h := out.transformedSize()
	return out.transform.Invert().Rect(local, w, h)
}

// regionToBuffer converts reg from output-local logical coordinates to
// buffer coordinates.
func (out *Output) regionToBuffer(reg geom.Region) geom.Region {
	w, h := out.transformedSize()
	return reg.Scale(out.scale).Transform(out.transform.Invert(), w, h)
}

// DamageWhole damages the entire output.
func (out *Output) DamageWhole() {
	out.damage.AddWhole()
	out.backend.ScheduleFrame()
}

// DamageBox damages box, which is in layout coordinates.
func (out *Output) DamageBox(box geom.Rect[int]) {
	if !box.Overlaps(out.Box()) {
		return
	}
	if out.damage.AddBox(out.toBuffer(box)) {
		out.backend.ScheduleFrame()
	}
}

// DamageSurface damages the surface tree rooted at s, which sits at pos
// in layout coordinates. If whole is true, the surfaces' full boxes are
// damaged, as is needed when they were mapped or their geometry
// changed. Otherwise only the damage that the surfaces reported for
// their last commit is used.
func (out *Output) DamageSurface(s ClientSurface, pos geom.Point[int], whole bool) {
	box := geom.Rect[int]{Max: s.Size()}.Add(pos)
	if whole {
		out.DamageBox(box)
	} else if box.Overlaps(out.Box()) {
		out.damageBufferDamage(s, pos)
	}

	for _, sub := range s.Subsurfaces() {
		out.DamageSurface(sub.Surface, pos.Add(sub.Pos), whole)
	}
}

func (out *Output) damageBufferDamage(s ClientSurface, pos geom.Point[int]) {
	dmg := s.Damage()
	if dmg.Empty() {
		return
	}

	bufScale := max(s.BufferScale(), 1)
	if bufScale != 1 {
		dmg = dmg.Scale(1 / float64(bufScale))
	}
	dmg = out.regionToBuffer(dmg.Translate(pos.Sub(out.pos)))

	// Upscaled buffers are filtered across pixel boundaries.
	if math.Ceil(out.scale) > float64(bufScale) {
		dmg = dmg.Expand(1)
	}

	if out.damage.Add(dmg) {
		out.backend.ScheduleFrame()
	}
}
