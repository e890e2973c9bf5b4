package respawn

import (
	"fmt"
	"os"
)

// Identity pins down the process image to respawn: the absolute executable
// path to exec again and the pid to kill. Both are resolved exactly once at
// startup; the crash path itself must never do path resolution.
type Identity struct {
	ExecPath string
	PID      int
}

// CaptureIdentity resolves the running executable and pid. It has to run
// before Install: a crash that lands before capture cannot be recovered
// because there is no path to exec.
func CaptureIdentity() (Identity, error) {
	exe, err := os.Executable()
	if err != nil {
		return Identity{}, fmt.Errorf("failed to resolve executable path: %w", err)
	}
	return Identity{ExecPath: exe, PID: os.Getpid()}, nil
}
