//go:build windows

package fsio

// SyncDir is a no-op: Windows cannot fsync a directory handle.
func SyncDir(string) error {
	return nil
}
