package repo

import (
	"fmt"
	"os"
	"time"
)

const (
	lockAttempts = 50
	lockDelay    = 20 * time.Millisecond
)

// Lock acquires the repository's advisory lock file and returns a release
// function. The lock is a create-exclusive file, so it also excludes writers
// in other processes. Acquisition retries with a short delay and gives up
// with ErrLockHeld.
func (r *Repository) Lock() (func(), error) {
	path := r.lockPath()
	for attempt := 0; attempt < lockAttempts; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		time.Sleep(lockDelay)
	}
	return nil, fmt.Errorf("acquire lock %s: %w", path, ErrLockHeld)
}
