package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wal.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	f, err := OpenFile(path)
	require.NoError(t, err)
	_, err = f.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(content))
}

func TestFile_Shift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")

	f, err := OpenFile(path, MaxSize(10), MaxBackups(2))
	require.NoError(t, err)
	defer f.Close()

	for _, line := range []string{"aaaaaaaa\n", "bbbbbbbb\n", "cccccccc\n", "dddddddd\n"} {
		_, err := f.Write([]byte(line))
		require.NoError(t, err)
	}

	read := func(p string) string {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "dddddddd\n", read(path))
	assert.Equal(t, "cccccccc\n", read(path+".1"))
	assert.Equal(t, "bbbbbbbb\n", read(path+".2"))
	assert.NoFileExists(t, path+".3")
}

func TestFile_OversizedWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	f, err := OpenFile(path, MaxSize(4))
	require.NoError(t, err)
	defer f.Close()

	data := bytes.Repeat([]byte("x"), 16)
	n, err := f.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.NoFileExists(t, path+".1")
}

func TestSetup(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	path := filepath.Join(t.TempDir(), "debug.log")

	closer, err := Setup(true, path)
	require.NoError(t, err)
	slog.Debug("hello", "k", "v")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "msg=hello k=v")
}

func TestSetup_Disabled(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	t.Setenv("HOME", t.TempDir())

	closer, err := Setup(false, "")
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	assert.NoFileExists(t, DefaultPath())
}
