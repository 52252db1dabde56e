// Package logging sets up the debug log.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	DefaultMaxSize    = 10 * 1024 * 1024
	DefaultMaxBackups = 3
)

// File is a log file that is moved aside to <path>.1, <path>.2, ... once it
// grows past a size limit.
type File struct {
	path       string
	maxSize    int64
	maxBackups int

	mu      sync.Mutex
	f       *os.File
	written int64
}

type FileOption func(*File)

func MaxSize(bytes int64) FileOption {
	return func(f *File) { f.maxSize = bytes }
}

func MaxBackups(n int) FileOption {
	return func(f *File) { f.maxBackups = n }
}

// OpenFile opens path for appending, creating its directory if needed.
func OpenFile(path string, opts ...FileOption) (*File, error) {
	f := &File{path: path, maxSize: DefaultMaxSize, maxBackups: DefaultMaxBackups}
	for _, opt := range opts {
		opt(f)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := f.reopen(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Path() string { return f.path }

func (f *File) reopen() error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return err
	}
	f.f = file
	f.written = info.Size()
	return nil
}

func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.written > 0 && f.written+int64(len(p)) > f.maxSize {
		if err := f.shift(); err != nil {
			return 0, err
		}
	}
	n, err := f.f.Write(p)
	f.written += int64(n)
	return n, err
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}

// shift closes the current file and renames it and its backups one slot up,
// dropping the oldest.
func (f *File) shift() error {
	if err := f.f.Close(); err != nil {
		return err
	}
	backup := func(i int) string { return fmt.Sprintf("%s.%d", f.path, i) }

	if f.maxBackups <= 0 {
		_ = os.Remove(f.path)
	} else {
		_ = os.Remove(backup(f.maxBackups))
		for i := f.maxBackups; i > 1; i-- {
			_ = os.Rename(backup(i-1), backup(i))
		}
		if err := os.Rename(f.path, backup(1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return f.reopen()
}
