//go:build !darwin && !linux

package lock

// WithDirLock runs fn without locking on platforms lacking flock.
func WithDirLock(_ string, fn func() error) error {
	return fn()
}
