package fsio

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// StaleAfter is how old a leftover temp file must be before WriteFile
// removes it. Younger ones may belong to a concurrent writer on a
// filesystem without flock.
const StaleAfter = time.Hour

func tempPrefix(filename string) string {
	return "." + filename + ".tmp-"
}

// FindStaleTemp lists temp files left next to path by interrupted writes
// whose mtime is before cutoff.
func FindStaleTemp(path string, cutoff time.Time) ([]string, error) {
	dir := filepath.Dir(path)
	prefix := tempPrefix(filepath.Base(path))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	matches := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // vanished or unreadable
		}
		if info.ModTime().Before(cutoff) {
			matches = append(matches, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// RemoveStaleTemp deletes what FindStaleTemp reports and returns the
// removed paths.
func RemoveStaleTemp(path string, cutoff time.Time) ([]string, error) {
	candidates, err := FindStaleTemp(path, cutoff)
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0, len(candidates))
	for _, p := range candidates {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed = append(removed, p)
	}
	return removed, nil
}
