// Package watch reports changes to a single file.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/avivsinai/thread-triage/internal/logx"
)

const (
	DefaultDebounce     = 200 * time.Millisecond
	DefaultPollInterval = 500 * time.Millisecond
)

type Options struct {
	// Poll skips fsnotify, for network filesystems.
	Poll         bool
	Debounce     time.Duration
	PollInterval time.Duration
	Logger       *zap.Logger

	ready func() // test hook, called once the watch is armed
}

var errWatcherClosed = errors.New("watcher closed")

// File calls onChange after path is written, created or renamed, until ctx
// is done. Bursts of events within the debounce window produce one call.
// When fsnotify cannot watch the parent directory, File polls the file's
// size and mtime instead. It returns ctx.Err().
func File(ctx context.Context, path string, opts Options, onChange func()) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	opts.Logger = logx.OrNop(opts.Logger)
	path = filepath.Clean(path)

	if !opts.Poll {
		err := watchFsnotify(ctx, path, opts, onChange)
		if err == nil || ctx.Err() != nil {
			return ctx.Err()
		}
		opts.Logger.Warn("fsnotify unavailable; polling instead", zap.String("path", path), zap.Error(err))
	}
	return watchPolling(ctx, path, opts, onChange)
}

func watchFsnotify(ctx context.Context, path string, opts Options, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	if opts.ready != nil {
		opts.ready()
	}

	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errWatcherClosed
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(opts.Debounce)
			} else {
				debounce.Reset(opts.Debounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return errWatcherClosed
			}
			opts.Logger.Warn("watch error", zap.String("path", path), zap.Error(err))
		}
	}
}

type fileState struct {
	exists  bool
	size    int64
	modTime time.Time
}

func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, size: info.Size(), modTime: info.ModTime()}
}

func watchPolling(ctx context.Context, path string, opts Options, onChange func()) error {
	last := statFile(path)
	if opts.ready != nil {
		opts.ready()
	}
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cur := statFile(path)
			if cur == last {
				continue
			}
			last = cur
			if cur.exists {
				onChange()
			}
		}
	}
}
