package main

import (
	"errors"
	"flag"
	"image/png"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deedles.dev/phoc"
	"deedles.dev/phoc/config"
	"deedles.dev/phoc/geom"
	"deedles.dev/phoc/internal/util"
	"deedles.dev/phoc/internal/wlrplat"
	"deedles.dev/phoc/render"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "configuration file (default: search the XDG config directories)")
	logLevel := flag.String("log-level", "", "log level, overriding the configuration")
	dumpConfig := flag.Bool("dump-config", false, "print the effective configuration and exit")
	saveConfig := flag.Bool("save-config", false, "write the effective configuration to the user's config file and exit")
	headless := util.SizeFlag("headless", "run without wlroots, rendering WxH outputs in memory")
	outputs := util.StringsFlag("outputs", []string{"HEADLESS-1"}, "names of the headless outputs")
	buffers := flag.Int("buffers", 2, "number of buffers per headless output")
	snapshot := flag.String("snapshot", "", "write the first headless output to this PNG file on exit")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatalln("Failed to load configuration")
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithError(err).Warnln("Invalid log level")
	}

	switch {
	case *dumpConfig:
		if err := cfg.Write(os.Stdout); err != nil {
			log.WithError(err).Fatalln("Failed to write configuration")
		}
		return
	case *saveConfig:
		path, err := cfg.Save()
		if err != nil {
			log.WithError(err).Fatalln("Failed to save configuration")
		}
		log.WithField("path", path).Infoln("Configuration saved")
		return
	}

	server, err := phoc.NewServer(cfg, logrus.NewEntry(log))
	if err != nil {
		log.WithError(err).Fatalln("Failed to create server")
	}

	if !headless.IsZero() {
		runHeadless(server, log, *outputs, *headless, *buffers, *snapshot)
		return
	}

	wlrplat.LogInit(log)
	plat, err := wlrplat.New(server, logrus.NewEntry(log))
	if err != nil {
		log.WithError(err).Fatalln("Failed to create platform")
	}
	if _, err := plat.Start(); err != nil {
		log.WithError(err).Fatalln("Failed to start")
	}
	plat.Run()
}

type headlessOutput struct {
	out     *phoc.Output
	backend *render.Headless
}

// runHeadless drives in-memory outputs at about 60 frames per second
// until interrupted.
func runHeadless(server *phoc.Server, log *logrus.Logger, names []string, size geom.Point[int], buffers int, snapshot string) {
	var outputs []headlessOutput
	for _, name := range names {
		b := render.NewHeadless(size.X, size.Y, buffers)
		out, err := server.AddOutput(name, b, []geom.Point[int]{size})
		if err != nil {
			log.WithError(err).WithField("output", name).Fatalln("Failed to add output")
		}
		outputs = append(outputs, headlessOutput{out: out, backend: b})
	}
	if len(outputs) == 0 {
		log.Fatalln("No outputs")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	log.WithField("outputs", len(outputs)).Infoln("Running headless")
	for {
		select {
		case now := <-ticker.C:
			for _, ho := range outputs {
				if ho.backend.NeedsFrame() {
					ho.out.Frame(now)
				}
			}

		case s := <-sig:
			log.WithField("signal", s).Infoln("Exiting")
			if snapshot != "" {
				if err := writeSnapshot(snapshot, outputs[0].backend); err != nil {
					log.WithError(err).Errorln("Failed to write snapshot")
				}
			}
			return
		}
	}
}

func writeSnapshot(path string, b *render.Headless) error {
	img := b.Front()
	if img == nil {
		return errors.New("nothing was presented")
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return err
	}
	return file.Close()
}
