// Package watch reports changes to a single file.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the bursts of events editors produce on save.
const DefaultDebounce = 500 * time.Millisecond

// File watches one file.
type File struct {
	path     string
	debounce time.Duration
}

type Option func(*File)

func WithDebounce(d time.Duration) Option {
	return func(f *File) { f.debounce = d }
}

func NewFile(path string, opts ...Option) *File {
	f := &File{path: filepath.Clean(path), debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run calls onChange each time the file settles after being written,
// created or replaced, until ctx is done. Calls are sequential.
//
// The parent directory is watched rather than the file so that editors
// saving through a temporary file and a rename are noticed.
func (f *File) Run(ctx context.Context, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", f.path, err)
	}
	slog.Debug("Watching file", "path", f.path)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if f.relevant(event) {
				timer.Reset(f.debounce)
			}

		case <-timer.C:
			if _, err := os.Stat(f.path); err != nil {
				slog.Debug("Watched file is gone", "path", f.path, "error", err)
				continue
			}
			onChange(f.path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", "path", f.path, "error", err)
		}
	}
}

func (f *File) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == f.path {
		return true
	}
	// Atomic saves end with a create or rename onto the same base name.
	return filepath.Base(name) == filepath.Base(f.path) && event.Op&(fsnotify.Create|fsnotify.Rename) != 0
}
