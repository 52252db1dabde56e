package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_DebouncedChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	w := NewFile(path, WithDebounce(200*time.Millisecond))
	go func() {
		done <- w.Run(ctx, func(string) { calls.Add(1) })
	}()

	// Let the watcher register the directory.
	time.Sleep(100 * time.Millisecond)
	for i := range 5 {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestFile_Relevant(t *testing.T) {
	w := NewFile("/themes/dark.yaml")

	assert.True(t, w.relevant(fsnotify.Event{Name: "/themes/dark.yaml", Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "/themes/./dark.yaml", Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/themes/dark.yaml", Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/themes/light.yaml", Op: fsnotify.Write}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/tmp/dark.yaml", Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "/tmp/dark.yaml", Op: fsnotify.Rename}))
}

func TestFile_MissingDirectory(t *testing.T) {
	w := NewFile(filepath.Join(t.TempDir(), "missing", "theme.yaml"))
	err := w.Run(t.Context(), func(string) {})
	require.Error(t, err)
}
