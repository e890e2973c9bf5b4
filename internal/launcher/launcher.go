// Package launcher starts client processes under the compositor with the
// configured environment seeded in.
package launcher

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Launcher starts clients detached and reaps them in the background.
type Launcher struct {
	env    map[string]string
	logger *slog.Logger
}

// New builds a launcher seeding env into every client, only for variables
// the client would not otherwise inherit.
func New(env map[string]string, logger *slog.Logger) *Launcher {
	return &Launcher{env: env, logger: logger}
}

// Environ is the environment clients start with.
func (l *Launcher) Environ() []string {
	return environWith(os.Environ(), l.env)
}

// environWith appends the defaults missing from base, leaving everything
// already present untouched.
func environWith(base []string, env map[string]string) []string {
	out := make([]string, len(base), len(base)+len(env))
	copy(out, base)
	for key, value := range env {
		if hasEnv(base, key) {
			continue
		}
		out = append(out, key+"="+value)
	}
	return out
}

func hasEnv(environ []string, key string) bool {
	for _, kv := range environ {
		if strings.HasPrefix(kv, key+"=") {
			return true
		}
	}
	return false
}

// Launch starts the command detached. Exit status is logged, not returned;
// clients live and die on their own schedule.
func (l *Launcher) Launch(command string, args ...string) error {
	cmd := exec.Command(command, args...)
	cmd.Env = l.Environ()
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", command, err)
	}
	l.logger.Info("client launched", "command", command, "pid", cmd.Process.Pid)
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Warn("client exited", "command", command, "error", err)
		}
	}()
	return nil
}

// LaunchLine splits a configured command line on whitespace and launches
// it. Empty lines are ignored.
func (l *Launcher) LaunchLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	return l.Launch(fields[0], fields[1:]...)
}

// SeedEnvironment applies env defaults to the current process, setting only
// variables that are not already present.
func SeedEnvironment(env map[string]string) {
	for key, value := range env {
		if _, ok := os.LookupEnv(key); !ok {
			os.Setenv(key, value)
		}
	}
}
