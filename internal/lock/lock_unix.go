//go:build darwin || linux

package lock

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// WithDirLock runs fn while holding an exclusive advisory lock on dir.
//
// Locking the directory rather than the output file keeps the lock valid
// across the atomic rename (flock is per-inode) and leaves no lock files
// next to the output.
func WithDirLock(dir string, fn func() error) error {
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open lock dir: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock on %s: %w", dir, err)
	}
	defer func() { _ = unix.Flock(int(f.Fd()), unix.LOCK_UN) }()

	return fn()
}
