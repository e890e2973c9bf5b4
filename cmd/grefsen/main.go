package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/liever18/grefsen/internal/compositor"
	"github.com/liever18/grefsen/internal/config"
	"github.com/liever18/grefsen/internal/display"
	"github.com/liever18/grefsen/internal/logging"
	"github.com/liever18/grefsen/internal/respawn"
	"github.com/liever18/grefsen/internal/runtimepath"
)

var version = "0.1"

func main() {
	// A crashed instance respawns by re-invoking this executable as its
	// watchdog; that hand-off runs before anything else and never
	// returns on the watchdog path.
	respawn.RunWatchdogIfRequested()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts compositor.Options
	cmd := &cobra.Command{
		Use:           "grefsen",
		Short:         "Grefsen Wayland compositor",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.Respawn, "respawn", "r", false, "respawn grefsen after a crash")
	flags.StringVarP(&opts.LogFile, "log", "l", "", "redirect all debug/warning/error output to a log file")
	flags.StringVarP(&opts.ConfigDir, "config", "c", "", "load config files from the given directory (default is ~/.config/grefsen)")
	flags.StringArrayVarP(&opts.Screens, "screen", "s", nil, "send output to the given screen (repeatable)")
	flags.BoolVarP(&opts.Windowed, "window", "w", false, "run in a window rather than fullscreen")

	return cmd
}

func run(opts compositor.Options) error {
	if opts.ConfigDir == "" {
		dir, err := config.DefaultDir()
		if err != nil {
			return err
		}
		opts.ConfigDir = dir
	}

	cfg, err := config.Load(opts.ConfigDir)
	if err != nil {
		return err
	}
	opts = opts.Merge(cfg)

	logger, closeLog, err := logging.Setup(opts.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	// The supervisor arms before the lock and the display connection, so
	// a crash anywhere past this point respawns a fresh instance.
	supervisor, err := armSupervisor(opts, logger)
	if err != nil {
		return err
	}
	defer supervisor.RecoverPanic()

	lock, err := runtimepath.AcquireLock()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	backend, err := display.NewX11Backend()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Close()

	comp := compositor.New(opts, cfg, backend, logger)
	return comp.Run()
}

// armSupervisor builds the crash supervisor and, when respawning was
// requested, installs it. Identity must be captured before the supervisor
// can arm; a crash before that has no exec path and terminates normally.
func armSupervisor(opts compositor.Options, logger *slog.Logger) (*respawn.Supervisor, error) {
	identity, err := respawn.CaptureIdentity()
	if err != nil {
		logger.Warn("failed to capture process identity, crash respawn unavailable", "error", err)
	}
	supervisor := respawn.NewSupervisor(identity, logger)
	if opts.Respawn {
		if err := supervisor.Install(); err != nil {
			return nil, fmt.Errorf("failed to install crash supervisor: %w", err)
		}
	}
	return supervisor, nil
}
