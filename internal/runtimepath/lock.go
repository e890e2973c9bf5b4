package runtimepath

import (
	"fmt"

	"github.com/gofrs/flock"
)

// AcquireLock takes the single-instance lock. The compositor owns the
// display exclusively; a second instance must fail fast instead of fighting
// the first one over outputs.
func AcquireLock() (*flock.Flock, error) {
	path, err := LockPath()
	if err != nil {
		return nil, err
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("another compositor instance holds %s", path)
	}
	return lock, nil
}
