package logging

import (
	"cmp"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/walassistant/wal/pkg/paths"
)

// DefaultPath is where the debug log goes when no path is given.
func DefaultPath() string {
	return filepath.Join(paths.GetDataDir(), "wal.debug.log")
}

// Setup installs the default slog logger. Without debug, logs are
// discarded. With debug, they go to a size-limited file at path (or
// DefaultPath) which the caller must close.
func Setup(debug bool, path string) (io.Closer, error) {
	if !debug {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nopCloser{}, nil
	}

	f, err := OpenFile(cmp.Or(strings.TrimSpace(path), DefaultPath()))
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	slog.Debug("Debug logging enabled", "path", f.Path())
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
