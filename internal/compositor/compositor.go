// Package compositor wires startup: crash supervision, screen selection,
// scene realization and window placement, then hands control to the display
// backend's event loop.
package compositor

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/liever18/grefsen/internal/config"
	"github.com/liever18/grefsen/internal/display"
	"github.com/liever18/grefsen/internal/fonts"
	"github.com/liever18/grefsen/internal/launcher"
	"github.com/liever18/grefsen/internal/scene"
)

// Options mirror the command line.
type Options struct {
	Respawn   bool
	LogFile   string
	ConfigDir string
	Screens   []string
	Windowed  bool
}

// Merge fills unset options from the config file. Flags always win; the
// windowed switch is sticky either way.
func (o Options) Merge(cfg *config.Config) Options {
	if o.LogFile == "" {
		o.LogFile = cfg.LogFile
	}
	if len(o.Screens) == 0 {
		o.Screens = cfg.Screens
	}
	o.Windowed = o.Windowed || cfg.Windowed
	return o
}

// Compositor is the startup orchestrator. Crash supervision is armed by the
// caller before construction, so every step below runs covered.
type Compositor struct {
	opts    Options
	cfg     *config.Config
	backend display.Backend
	logger  *slog.Logger

	pane display.Pane
}

// New assembles the orchestrator.
func New(opts Options, cfg *config.Config, backend display.Backend, logger *slog.Logger) *Compositor {
	return &Compositor{
		opts:    opts,
		cfg:     cfg,
		backend: backend,
		logger:  logger,
	}
}

// GlassPane returns the realized input-blocking pane, once Run created it.
func (c *Compositor) GlassPane() display.Pane {
	return c.pane
}

// Run performs startup in order and blocks in the event loop until the
// backend exits. A screen selection that matches nothing is reported before
// any window exists and without entering the loop.
func (c *Compositor) Run() error {
	launcher.SeedEnvironment(c.cfg.Env)

	screens, err := c.backend.Screens()
	if err != nil {
		return fmt.Errorf("failed to enumerate screens: %w", err)
	}
	active, err := display.Filter(screens, c.opts.Screens)
	if err != nil {
		return err
	}
	display.ScreenCheck(c.logger, active)

	fonts.Register(c.opts.ConfigDir, c.logger)

	root, err := scene.Load(c.opts.ConfigDir, c.cfg.Scene)
	if err != nil {
		return err
	}

	pane, err := c.backend.CreateGlassPane(active)
	if err != nil {
		return fmt.Errorf("failed to realize glass pane: %w", err)
	}
	c.pane = pane

	var windows []display.Window
	for _, obj := range root.Windows() {
		win, err := c.backend.CreateWindow(obj.Title, obj.Width, obj.Height)
		if err != nil {
			return fmt.Errorf("failed to realize window %q: %w", obj.Name, err)
		}
		windows = append(windows, win)
	}

	for _, pl := range display.Pair(active, windows) {
		if err := pl.Window.Show(pl.Screen, !c.opts.Windowed); err != nil {
			return fmt.Errorf("failed to show window on %s: %w", pl.Screen.Name, err)
		}
		c.logger.Info("window placed",
			"window", pl.Window.Name(), "screen", pl.Screen.Name, "fullscreen", !c.opts.Windowed)
	}

	launch := launcher.New(c.cfg.ClientEnv, c.logger)
	for _, line := range c.cfg.Autostart {
		if err := launch.LaunchLine(line); err != nil {
			c.logger.Warn("autostart failed", "command", line, "error", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		c.logger.Info("shutting down", "signal", sig)
		c.backend.Quit()
	}()
	defer signal.Stop(sigCh)

	c.logger.Info("entering event loop", "screens", len(active), "windows", len(windows))
	c.backend.EventLoop()
	return nil
}
