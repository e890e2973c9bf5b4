//go:build linux

package respawn

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// fatalSignals is the monitored set: conditions after which the process
// cannot be trusted to keep running. SIGPIPE stays out, client connections
// depend on its default handling.
var fatalSignals = []os.Signal{
	unix.SIGILL,
	unix.SIGABRT,
	unix.SIGFPE,
	unix.SIGSEGV,
	unix.SIGBUS,
}

// Supervisor respawns the compositor after a fatal signal. The crash path
// spawns a single watchdog process which kills the crashed instance and
// execs a fresh one; the crashed instance blocks until the watchdog is gone
// and then exits non-zero. The compositor holds exclusive control of the
// display, so the old instance must be dead before the new one takes over.
type Supervisor struct {
	identity Identity
	logger   *slog.Logger

	mu        sync.Mutex
	installed bool

	notify    func(chan<- os.Signal, ...os.Signal)
	reset     func(...os.Signal)
	spawn     func(Identity, syscall.Signal) (pid int, wait func() error, err error)
	setTracer func(pid int) error
	exit      func(int)
}

// NewSupervisor builds a supervisor for the given process identity. Install
// arms it; an uninstalled supervisor leaves fatal signals on their default
// disposition, which is what interactive debugging wants.
func NewSupervisor(identity Identity, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		identity:  identity,
		logger:    logger,
		notify:    signal.Notify,
		reset:     signal.Reset,
		spawn:     spawnWatchdog,
		setTracer: grantTracerRights,
		exit:      os.Exit,
	}
}

// Install subscribes the supervisor to the fatal signal set. It must be
// called after CaptureIdentity and before the event loop starts, and at
// most once per process lifetime. Failure to arm any part of the crash path
// degrades to the default signal disposition; it is never fatal to startup.
func (s *Supervisor) Install() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installed {
		return errors.New("crash supervisor installed twice")
	}
	s.installed = true
	if s.identity.ExecPath == "" {
		// No captured path means nothing to exec; leave the signals on
		// their default disposition.
		s.logger.Warn("crash respawn unavailable: process identity not captured")
		return nil
	}
	ch := make(chan os.Signal, 1)
	s.notify(ch, fatalSignals...)
	go s.run(ch)
	s.logger.Info("crash respawn armed",
		"pid", s.identity.PID, "exec", s.identity.ExecPath)
	return nil
}

// RecoverPanic routes a panic on the calling goroutine into the crash path.
// The runtime reports synchronous fatal signals raised by program execution,
// a bad dereference or an integer divide by zero, as panics rather than as
// deliveries on the signal channel, so the startup path defers this to get
// the same watchdog respawn for them. Unarmed, the panic propagates
// unchanged. Unrecoverable runtime faults still terminate without respawn.
func (s *Supervisor) RecoverPanic() {
	v := recover()
	if v == nil {
		return
	}
	s.mu.Lock()
	armed := s.installed && s.identity.ExecPath != ""
	s.mu.Unlock()
	if !armed {
		panic(v)
	}
	s.reset(fatalSignals...)
	s.logger.Error("panic, respawning", "value", v)
	s.handle(unix.SIGABRT)
}

func (s *Supervisor) run(ch <-chan os.Signal) {
	sig := <-ch
	// Only the first delivery is handled. Drop back to the default
	// disposition before doing anything else, so a second crash inside
	// the crash path kills the process instead of looping through here.
	s.reset(fatalSignals...)
	s.handle(sig)
}

func (s *Supervisor) handle(sig os.Signal) {
	num, ok := sig.(syscall.Signal)
	if !ok {
		num = unix.SIGABRT
	}
	pid, wait, err := s.spawn(s.identity, num)
	if err != nil {
		// Out of processes, most likely. The respawn mechanism cannot
		// recover from that; keep running in whatever state remains.
		s.logger.Warn("respawn watchdog spawn failed", "signal", sig, "error", err)
		return
	}
	// Yama ptrace scoping can keep the watchdog from signalling us; grant
	// it tracer rights before blocking on it.
	if err := s.setTracer(pid); err != nil {
		s.logger.Warn("failed to grant watchdog tracer rights",
			"watchdog_pid", pid, "error", err)
	}
	// The watchdog SIGKILLs this process, so the wait normally never
	// returns. If it does, the exec failed and both generations die.
	_ = wait()
	s.exit(1)
}

func spawnWatchdog(id Identity, sig syscall.Signal) (int, func() error, error) {
	attr := &os.ProcAttr{
		Env:   append(os.Environ(), watchdogEnv(id, sig)...),
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	proc, err := os.StartProcess(id.ExecPath, []string{id.ExecPath}, attr)
	if err != nil {
		return 0, nil, err
	}
	wait := func() error {
		_, err := proc.Wait()
		return err
	}
	return proc.Pid, wait, nil
}

func grantTracerRights(pid int) error {
	return unix.Prctl(unix.PR_SET_PTRACER, uintptr(pid), 0, 0, 0)
}
