package userconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Empty(t *testing.T) {
	t.Parallel()

	config, err := loadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Empty(t, config.GetHelper().Command)
	assert.Equal(t, DefaultProcess, config.GetTarget().Process)
	assert.Empty(t, config.GetSettings().LastTheme)
}

func TestConfig_SaveAndLoad(t *testing.T) {
	t.Parallel()

	configFile := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := &Config{}
	require.NoError(t, config.Set("helper.command", "wal-helper.exe"))
	require.NoError(t, config.Set("helper.args", "--stdio, --verbose,"))
	require.NoError(t, config.Set("target.install_dir", `C:\Feishu`))
	require.NoError(t, config.Set("settings.last_theme", "dark.yaml"))
	require.NoError(t, config.saveTo(configFile))

	loaded, err := loadFrom(configFile)
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, loaded.Version)
	assert.Equal(t, &Helper{Command: "wal-helper.exe", Args: []string{"--stdio", "--verbose"}}, loaded.GetHelper())
	assert.Equal(t, Target{Process: DefaultProcess, InstallDir: `C:\Feishu`}, loaded.GetTarget())
	assert.Equal(t, "dark.yaml", loaded.GetSettings().LastTheme)

	args, err := loaded.Get("helper.args")
	require.NoError(t, err)
	assert.Equal(t, "--stdio,--verbose", args)
}

func TestConfig_UnknownKey(t *testing.T) {
	t.Parallel()

	config := &Config{}
	err := config.Set("helper.timeout", "5s")
	require.ErrorContains(t, err, `unknown config key "helper.timeout"`)

	_, err = config.Get("nope")
	require.Error(t, err)
}

func TestConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("helper: [\n"), 0o644))

	_, err := loadFrom(configFile)
	require.ErrorContains(t, err, "failed to parse config file")
}

func TestPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".config", "wal", "config.yaml"), Path())
}
