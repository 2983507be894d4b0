//go:build darwin || linux

package lock

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func TestWithDirLockRunsFn(t *testing.T) {
	called := false
	if err := WithDirLock(t.TempDir(), func() error {
		called = true
		return nil
	}); err != nil {
		t.Fatalf("WithDirLock: %v", err)
	}
	if !called {
		t.Fatalf("expected fn to run")
	}
}

func TestWithDirLockPropagatesError(t *testing.T) {
	want := errors.New("boom")
	if err := WithDirLock(t.TempDir(), func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected fn error, got %v", err)
	}
}

func TestWithDirLockSerializes(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	inside := 0
	maxInside := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = WithDirLock(dir, func() error {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("expected exclusive access, saw %d concurrent holders", maxInside)
	}
}

func TestWithDirLockMissingDir(t *testing.T) {
	err := WithDirLock(filepath.Join(t.TempDir(), "missing"), func() error { return nil })
	if err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
