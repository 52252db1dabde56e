package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".config", "wal"), GetConfigDir())
	assert.Equal(t, filepath.Join(home, ".wal"), GetDataDir())
	assert.Equal(t, filepath.Join(home, ".wal", "themes"), GetThemesDir())
}
