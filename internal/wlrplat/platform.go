// Package wlrplat runs a phoc.Server on top of wlroots.
//
// The adapter drives outputs, xdg-shell toplevels, pointers and
// keyboards. Outputs are presented at scale 1 with the normal
// transform, and every frame is composited in full.
package wlrplat

import (
	"fmt"
	"os"

	"deedles.dev/phoc"
	"deedles.dev/wlr"
	"github.com/sirupsen/logrus"
)

// Versions of the globals advertised to clients.
const (
	compositorVersion = 5
	xdgShellVersion   = 3
)

// Platform owns the wlroots objects of a compositor session.
type Platform struct {
	server *phoc.Server
	log    *logrus.Entry

	display    wlr.Display
	backend    wlr.Backend
	renderer   wlr.Renderer
	allocator  wlr.Allocator
	compositor wlr.Compositor
	dataDevMgr wlr.DataDeviceManager
	layout     wlr.OutputLayout
	xdgShell   wlr.XDGShell

	seat   *seat
	cursor *phoc.Cursor

	outputs   []*output
	views     []*xdgView
	surfaces  map[wlr.Surface]*surface
	keyboards []*keyboard
}

// New creates the wlroots display, backend and globals for server.
func New(server *phoc.Server, log *logrus.Entry) (*Platform, error) {
	p := Platform{
		server:   server,
		log:      log,
		surfaces: make(map[wlr.Surface]*surface),
	}

	p.display = wlr.CreateDisplay()
	p.backend = wlr.AutocreateBackend(p.display)
	p.backend.OnNewOutput(p.onNewOutput)
	p.backend.OnNewInput(p.onNewInput)

	p.renderer = wlr.AutocreateRenderer(p.backend)
	p.renderer.InitWLDisplay(p.display)
	p.allocator = wlr.AutocreateAllocator(p.backend, p.renderer)

	p.compositor = wlr.CreateCompositor(p.display, compositorVersion, p.renderer)
	p.dataDevMgr = wlr.CreateDataDeviceManager(p.display)
	p.layout = wlr.CreateOutputLayout()

	p.xdgShell = wlr.CreateXDGShell(p.display, xdgShellVersion)
	p.xdgShell.OnNewSurface(p.onNewXDGSurface)

	p.seat = p.newSeat("seat0")
	p.cursor = server.NewCursor(p.seat)

	return &p, nil
}

// Start starts the backend and opens the socket that clients connect
// to. WAYLAND_DISPLAY is set to the socket's name.
func (p *Platform) Start() (string, error) {
	if err := p.backend.Start(); err != nil {
		return "", fmt.Errorf("start backend: %w", err)
	}

	socket, err := p.display.AddSocketAuto()
	if err != nil {
		return "", fmt.Errorf("add socket: %w", err)
	}
	if err := os.Setenv("WAYLAND_DISPLAY", socket); err != nil {
		return "", fmt.Errorf("set WAYLAND_DISPLAY: %w", err)
	}

	p.log.WithField("socket", socket).Infoln("Listening")
	return socket, nil
}

// Run runs the display's event loop until it is terminated and then
// tears the session down.
func (p *Platform) Run() {
	p.display.Run()

	p.cursor.Destroy()
	p.display.Destroy()
	p.layout.Destroy()
	p.seat.destroy()
}

// LogInit forwards the verbosity of log to wlroots.
func LogInit(log *logrus.Logger) {
	level := wlr.Error
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = wlr.Debug
	}
	wlr.InitLog(level, nil)
}
