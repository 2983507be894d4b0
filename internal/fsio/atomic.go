// Package fsio writes output documents so that readers observe either the
// previous file or the complete new one, never a partial write.
package fsio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avivsinai/thread-triage/internal/lock"
)

// WriteFile atomically replaces path with data while holding an exclusive
// lock on the parent directory, creating the directory if needed. Temp files
// of earlier interrupted writes to the same path are removed first.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return lock.WithDirLock(dir, func() error {
		_, _ = RemoveStaleTemp(path, time.Now().Add(-StaleAfter))
		_, err := WriteFileAtomic(dir, filepath.Base(path), data, perm)
		return err
	})
}

// WriteFileAtomic writes data to a temporary file in dir and renames it into place.
func WriteFileAtomic(dir, filename string, data []byte, perm os.FileMode) (string, error) {
	tmpPath := filepath.Join(dir, fmt.Sprintf("%s%d", tempPrefix(filename), time.Now().UnixNano()))
	finalPath := filepath.Join(dir, filename)

	if err := writeAndSync(tmpPath, data, perm); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", cleanupTemp(tmpPath, err)
	}
	if err := SyncDir(dir); err != nil {
		return "", err
	}
	return finalPath, nil
}

func writeAndSync(path string, data []byte, perm os.FileMode) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	if _, err = file.Write(data); err != nil {
		return err
	}
	return file.Sync()
}

func cleanupTemp(path string, primary error) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w (cleanup: %v)", primary, err)
	}
	return primary
}
