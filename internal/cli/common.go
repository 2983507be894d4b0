package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avivsinai/thread-triage/internal/format"
	"github.com/avivsinai/thread-triage/internal/fsio"
)

// readInput reads the file at path; a missing file maps to ExitNotFound.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError("input", path, err)
	}
	return data, nil
}

// writeDocument encodes v and replaces the file at path atomically.
func writeDocument(path string, v any) error {
	data, err := format.MarshalDocument(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if err := fsio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return UsageError("--%s is required", name)
	}
	return nil
}

// samePath reports whether a and b name the same file, so a run never
// overwrites its own input.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func (a *app) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(a.stdout, format, args...)
	return err
}
