// Package config loads the compositor's configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"deedles.dev/phoc/geom"
	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
)

// File is the path of the configuration file relative to the XDG
// config directories.
const File = "phoc/config.toml"

var ErrDragDistance = errors.New("drag distances must be positive")

type Config struct {
	// AutoMaximize maximizes every view and hides the views that are
	// covered by a maximized one.
	AutoMaximize bool `toml:"auto_maximize"`

	// ShellReveal lists the output edges along which a press reveals
	// the shell above fullscreen views.
	ShellReveal []string `toml:"shell_reveal"`

	// OSKNamespace is the layer-shell namespace of the on-screen
	// keyboard.
	OSKNamespace string `toml:"osk_namespace"`

	// EdgeSnapThreshold is how close, in pixels, a moving view must be
	// dragged to an output edge to suggest maximizing or tiling it.
	EdgeSnapThreshold int `toml:"edge_snap_threshold"`

	LogLevel string `toml:"log_level"`

	Outputs []OutputConfig `toml:"output"`

	Drag DragConfig `toml:"drag"`
}

// OutputConfig configures a single output by name.
type OutputConfig struct {
	Name string `toml:"name"`

	// X and Y are the output's position in the layout. If both are -1,
	// the output is placed automatically.
	X int `toml:"x"`
	Y int `toml:"y"`

	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Scale  float64 `toml:"scale"`

	// Transform is one of normal, 90, 180, 270, flipped, flipped-90,
	// flipped-180 and flipped-270.
	Transform string `toml:"transform"`
}

// DragConfig tunes draggable layer surfaces.
type DragConfig struct {
	AcceptDistance   int     `toml:"accept_distance"`
	RejectDistance   int     `toml:"reject_distance"`
	MinFlingVelocity float64 `toml:"min_fling_velocity"`
	AnimationMS      int     `toml:"animation_ms"`
}

// AnimationDuration returns the base duration of slide animations.
func (c DragConfig) AnimationDuration() time.Duration {
	return time.Duration(c.AnimationMS) * time.Millisecond
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ShellReveal:       []string{"top"},
		OSKNamespace:      "osk",
		EdgeSnapThreshold: 16,
		LogLevel:          "info",
		Drag: DragConfig{
			AcceptDistance:   16,
			RejectDistance:   24,
			MinFlingVelocity: 1500,
			AnimationMS:      300,
		},
	}
}

// Load reads the configuration from path. If path is empty, the XDG
// config directories are searched and the defaults are returned if no
// file is found there.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := xdg.SearchConfigFile(File)
		if err != nil {
			logrus.WithField("file", File).Debugln("No config file found, using defaults")
			return Default(), nil
		}
		path = p
	}

	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config %q: %w", path, err)
		}
		return nil, fmt.Errorf("decode config %q: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logrus.WithFields(logrus.Fields{
			"file": path,
			"key":  key.String(),
		}).Warnln("Unknown config key")
	}

	return c, c.Validate()
}

// Decode reads a configuration from r on top of the defaults.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return c, c.Validate()
}

// Write encodes c as TOML to w.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes c to the user's config file, creating its directory if
// necessary, and returns the path written to.
func (c *Config) Save() (string, error) {
	path, err := xdg.ConfigFile(File)
	if err != nil {
		return "", fmt.Errorf("config path: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create config: %w", err)
	}
	defer file.Close()

	if err := c.Write(file); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, file.Close()
}

// Validate checks c for values that can't be used.
func (c *Config) Validate() error {
	if _, err := c.ShellRevealEdges(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	for _, oc := range c.Outputs {
		if _, err := oc.ParseTransform(); err != nil {
			return fmt.Errorf("output %q: %w", oc.Name, err)
		}
		if oc.Scale < 0 {
			return fmt.Errorf("output %q: negative scale %v", oc.Name, oc.Scale)
		}
	}
	if c.Drag.RejectDistance <= 0 || c.Drag.AcceptDistance <= 0 {
		return ErrDragDistance
	}
	return nil
}

// ShellRevealEdges parses ShellReveal.
func (c *Config) ShellRevealEdges() (edges geom.Edges, err error) {
	for _, name := range c.ShellReveal {
		edge, ok := geom.ParseEdge(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return 0, fmt.Errorf("shell_reveal: unknown edge %q", name)
		}
		edges |= edge
	}
	return edges, nil
}

// Output returns the configuration for the output with the given
// name.
func (c *Config) Output(name string) (OutputConfig, bool) {
	for _, oc := range c.Outputs {
		if oc.Name == name {
			return oc, true
		}
	}
	return OutputConfig{}, false
}

// ParseTransform parses the Transform field. An empty string is the
// normal transform.
func (oc OutputConfig) ParseTransform() (geom.Transform, error) {
	if oc.Transform == "" {
		return geom.TransformNormal, nil
	}
	for t := geom.TransformNormal; t <= geom.TransformFlipped270; t++ {
		if t.String() == oc.Transform {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown transform %q", oc.Transform)
}
