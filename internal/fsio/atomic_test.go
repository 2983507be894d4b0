package fsio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "threads.json")

	if err := WriteFile(path, []byte("[]\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, []byte("[1]\n"), 0o644); err != nil {
		t.Fatalf("WriteFile overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "[1]\n" {
		t.Fatalf("unexpected content %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, got %d entries", len(entries))
	}
}

func TestWriteFileUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	// A regular file cannot act as a parent directory.
	if err := WriteFile(filepath.Join(blocker, "out.json"), []byte("[]"), 0o644); err == nil {
		t.Fatalf("expected error writing below a regular file")
	}
}

func TestWriteFileAtomicNoPartialOnFailure(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.json")
	// Renaming onto a non-empty directory fails.
	if err := os.MkdirAll(filepath.Join(final, "child"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := WriteFileAtomic(dir, "out.json", []byte("new"), 0o644); err == nil {
		t.Fatalf("expected rename failure")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}
