//go:build linux

package respawn

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIdentity() Identity {
	return Identity{ExecPath: "/usr/local/bin/grefsen", PID: 4242}
}

func TestCaptureIdentity(t *testing.T) {
	id, err := CaptureIdentity()
	if err != nil {
		t.Fatalf("CaptureIdentity() error: %v", err)
	}
	if id.PID != os.Getpid() {
		t.Fatalf("PID = %d, want %d", id.PID, os.Getpid())
	}
	if !filepath.IsAbs(id.ExecPath) {
		t.Fatalf("ExecPath = %q, want absolute path", id.ExecPath)
	}
}

func TestInstall_ArmsFatalSignalSet(t *testing.T) {
	s := NewSupervisor(testIdentity(), discardLogger())
	var armed []os.Signal
	s.notify = func(_ chan<- os.Signal, sigs ...os.Signal) {
		armed = append(armed, sigs...)
	}

	if err := s.Install(); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	want := []os.Signal{unix.SIGILL, unix.SIGABRT, unix.SIGFPE, unix.SIGSEGV, unix.SIGBUS}
	if len(armed) != len(want) {
		t.Fatalf("armed %d signals, want %d", len(armed), len(want))
	}
	for i, sig := range want {
		if armed[i] != sig {
			t.Fatalf("armed[%d] = %v, want %v", i, armed[i], sig)
		}
	}
}

func TestInstall_SecondCallFails(t *testing.T) {
	s := NewSupervisor(testIdentity(), discardLogger())
	s.notify = func(chan<- os.Signal, ...os.Signal) {}

	if err := s.Install(); err != nil {
		t.Fatalf("first Install() error: %v", err)
	}
	if err := s.Install(); err == nil {
		t.Fatal("second Install() succeeded, want error")
	}
}

func TestInstall_WithoutIdentityDegrades(t *testing.T) {
	s := NewSupervisor(Identity{}, discardLogger())
	notified := false
	s.notify = func(chan<- os.Signal, ...os.Signal) { notified = true }

	if err := s.Install(); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if notified {
		t.Fatal("supervisor subscribed to signals without an exec path")
	}
}

func TestHandle_SpawnsOneWatchdogThenWaitsAndExits(t *testing.T) {
	s := NewSupervisor(testIdentity(), discardLogger())

	var order []string
	spawns := 0
	s.spawn = func(id Identity, sig syscall.Signal) (int, func() error, error) {
		spawns++
		if id != testIdentity() {
			t.Errorf("spawn identity = %+v, want %+v", id, testIdentity())
		}
		if sig != unix.SIGSEGV {
			t.Errorf("spawn signal = %v, want SIGSEGV", sig)
		}
		order = append(order, "spawn")
		return 777, func() error {
			order = append(order, "wait")
			return nil
		}, nil
	}
	s.setTracer = func(pid int) error {
		if pid != 777 {
			t.Errorf("setTracer pid = %d, want 777", pid)
		}
		order = append(order, "tracer")
		return nil
	}
	exitCode := -1
	s.exit = func(code int) {
		exitCode = code
		order = append(order, "exit")
	}

	s.handle(unix.SIGSEGV)

	if spawns != 1 {
		t.Fatalf("spawned %d watchdogs, want exactly 1", spawns)
	}
	want := []string{"spawn", "tracer", "wait", "exit"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if exitCode != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode)
	}
}

func TestHandle_SpawnFailureIsANoOp(t *testing.T) {
	s := NewSupervisor(testIdentity(), discardLogger())
	s.spawn = func(Identity, syscall.Signal) (int, func() error, error) {
		return 0, nil, os.ErrPermission
	}
	s.setTracer = func(int) error {
		t.Fatal("setTracer called after spawn failure")
		return nil
	}
	s.exit = func(int) {
		t.Fatal("exit called after spawn failure")
	}

	s.handle(unix.SIGBUS)
}

func TestRecoverPanic_RoutesPanicIntoCrashPath(t *testing.T) {
	s := NewSupervisor(testIdentity(), discardLogger())
	s.notify = func(chan<- os.Signal, ...os.Signal) {}
	s.reset = func(...os.Signal) {}

	var order []string
	s.spawn = func(id Identity, sig syscall.Signal) (int, func() error, error) {
		if sig != unix.SIGABRT {
			t.Errorf("spawn signal = %v, want SIGABRT", sig)
		}
		order = append(order, "spawn")
		return 555, func() error {
			order = append(order, "wait")
			return nil
		}, nil
	}
	s.setTracer = func(int) error {
		order = append(order, "tracer")
		return nil
	}
	exitCode := -1
	s.exit = func(code int) {
		exitCode = code
		order = append(order, "exit")
	}

	if err := s.Install(); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	func() {
		defer s.RecoverPanic()
		var root *struct{ children []int }
		_ = root.children[0]
	}()

	want := []string{"spawn", "tracer", "wait", "exit"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if exitCode != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode)
	}
}

func TestRecoverPanic_UnarmedPanicPropagates(t *testing.T) {
	s := NewSupervisor(testIdentity(), discardLogger())
	s.spawn = func(Identity, syscall.Signal) (int, func() error, error) {
		t.Error("spawn ran without an armed supervisor")
		return 0, nil, os.ErrInvalid
	}

	defer func() {
		if recover() == nil {
			t.Fatal("panic did not propagate past an unarmed supervisor")
		}
	}()
	func() {
		defer s.RecoverPanic()
		panic("broken scene graph")
	}()
}

func TestRecoverPanic_NoPanicIsANoOp(t *testing.T) {
	s := NewSupervisor(testIdentity(), discardLogger())
	s.exit = func(int) { t.Fatal("exit called without a panic") }

	func() {
		defer s.RecoverPanic()
	}()
}

func TestRun_ResetsDispositionBeforeHandling(t *testing.T) {
	s := NewSupervisor(testIdentity(), discardLogger())

	var captured chan<- os.Signal
	s.notify = func(ch chan<- os.Signal, _ ...os.Signal) { captured = ch }
	var resetSigs []os.Signal
	spawned := make(chan struct{})
	s.spawn = func(Identity, syscall.Signal) (int, func() error, error) {
		if len(resetSigs) == 0 {
			t.Error("spawn ran before the disposition was reset")
		}
		close(spawned)
		return 1, func() error { return nil }, nil
	}
	s.reset = func(sigs ...os.Signal) { resetSigs = sigs }
	s.setTracer = func(int) error { return nil }
	done := make(chan int, 1)
	s.exit = func(code int) {
		done <- code
		select {} // a real exit never returns
	}

	if err := s.Install(); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	captured <- unix.SIGSEGV

	select {
	case code := <-done:
		if code != 1 {
			t.Fatalf("exit code = %d, want 1", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("crash path did not complete")
	}
	<-spawned
	if len(resetSigs) != len(fatalSignals) {
		t.Fatalf("reset %d signals, want %d", len(resetSigs), len(fatalSignals))
	}
}
