//go:build linux

package respawn

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// The watchdog is this same executable re-invoked with a request carried in
// the environment. Go cannot fork without exec, so the environment marker
// plays the role the fork return value plays in a single-image handler.
const (
	envVictimPID = "GREFSEN_WATCHDOG_PID"
	envSignal    = "GREFSEN_WATCHDOG_SIGNAL"
	envExecPath  = "GREFSEN_WATCHDOG_EXEC"
)

// Request identifies the crashed instance a watchdog has to replace.
type Request struct {
	VictimPID int
	Signal    syscall.Signal
	ExecPath  string
}

func watchdogEnv(id Identity, sig syscall.Signal) []string {
	return []string{
		fmt.Sprintf("%s=%d", envVictimPID, id.PID),
		fmt.Sprintf("%s=%d", envSignal, int(sig)),
		fmt.Sprintf("%s=%s", envExecPath, id.ExecPath),
	}
}

// requestFromEnv decodes a watchdog request, if any, from the environment.
func requestFromEnv(lookup func(string) (string, bool)) (Request, bool) {
	pidStr, ok := lookup(envVictimPID)
	if !ok {
		return Request{}, false
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return Request{}, false
	}
	sigStr, ok := lookup(envSignal)
	if !ok {
		return Request{}, false
	}
	sigNum, err := strconv.Atoi(sigStr)
	if err != nil {
		return Request{}, false
	}
	exe, ok := lookup(envExecPath)
	if !ok || exe == "" {
		return Request{}, false
	}
	return Request{VictimPID: pid, Signal: syscall.Signal(sigNum), ExecPath: exe}, true
}

// scrubEnviron drops the watchdog markers so the respawned compositor comes
// up as a normal first generation.
func scrubEnviron(environ []string) []string {
	out := make([]string, 0, len(environ))
	for _, kv := range environ {
		if strings.HasPrefix(kv, envVictimPID+"=") ||
			strings.HasPrefix(kv, envSignal+"=") ||
			strings.HasPrefix(kv, envExecPath+"=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}

func crashLine(req Request) string {
	return fmt.Sprintf("crashed (PID %d SIG %s): respawn %s",
		req.VictimPID, unix.SignalName(req.Signal), req.ExecPath)
}

// watchdog is the replacing side of the crash path, with the process
// primitives injected the same way Supervisor injects its own.
type watchdog struct {
	kill   func(pid int, sig syscall.Signal) error
	stderr io.Writer
	exec   func(argv0 string, argv []string, envv []string) error
	exit   func(int)
}

func newWatchdog() *watchdog {
	return &watchdog{
		kill:   unix.Kill,
		stderr: os.Stderr,
		exec:   unix.Exec,
		exit:   os.Exit,
	}
}

// run kills the crashed instance, reports it once on stderr, and becomes
// the replacement. Exec only returns on failure, and then both generations
// are gone, so any return from it ends in a non-zero exit.
func (w *watchdog) run(req Request, environ []string) {
	// The crashed instance may be wedged on a held display lock even
	// though it lived long enough to spawn us. SIGKILL, unconditionally.
	_ = w.kill(req.VictimPID, unix.SIGKILL)
	fmt.Fprintln(w.stderr, crashLine(req))
	if err := w.exec(req.ExecPath, []string{req.ExecPath}, scrubEnviron(environ)); err != nil {
		fmt.Fprintf(w.stderr, "respawn of %s failed: %v\n", req.ExecPath, err)
	}
	w.exit(1)
}

// RunWatchdogIfRequested hands control to the watchdog path when this
// process was spawned to replace a crashed compositor. It must run first in
// main, before any other initialization; on the watchdog path it never
// returns.
func RunWatchdogIfRequested() {
	req, ok := requestFromEnv(os.LookupEnv)
	if !ok {
		return
	}
	newWatchdog().run(req, os.Environ())
}
