package root

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walassistant/wal/pkg/bridge"
	"github.com/walassistant/wal/pkg/bridge/bridgetest"
	"github.com/walassistant/wal/pkg/engine"
	"github.com/walassistant/wal/pkg/paths"
	"github.com/walassistant/wal/pkg/userconfig"
)

const basePath = "/opt/feishu"

const sampleTheme = `asarPatches:
  app.asar:
    - kind: file
      path: main.js
      description: dark sidebar
      colorOverrides:
        "--bg": "#000"
  webcontent/messenger.asar:
    - kind: main-script
      subject: messenger
      styleOverridesBySelector:
        .sidebar:
          color: red
`

// setup isolates the user config in a temporary home and routes the
// helper connection to fake.
func setup(t *testing.T, fake *bridgetest.Fake) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	saved := connect
	connect = func(context.Context, helperSettings) (bridge.Bridge, error) {
		return fake, nil
	}
	t.Cleanup(func() { connect = saved })
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Execute(t.Context(), strings.NewReader(stdin), &stdout, &stderr, args...)
	return stdout.String() + stderr.String(), err
}

func TestVersion(t *testing.T) {
	setup(t, bridgetest.New(basePath))

	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wal version dev")
}

func TestUnknownCommand(t *testing.T) {
	setup(t, bridgetest.New(basePath))

	out, err := run(t, "", "nope")
	require.Error(t, err)
	assert.Contains(t, out, `unknown command "nope"`)
}

func TestConfig_SetGetShow(t *testing.T) {
	setup(t, bridgetest.New(basePath))

	_, err := run(t, "", "config", "set", "helper.command", "/usr/bin/wal-helper")
	require.NoError(t, err)
	_, err = run(t, "", "config", "set", "helper.args", "--verbose, --fast")
	require.NoError(t, err)

	out, err := run(t, "", "config", "get", "helper.args")
	require.NoError(t, err)
	assert.Equal(t, "--verbose,--fast\n", out)

	out, err = run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "command: /usr/bin/wal-helper")
	assert.Contains(t, out, "version: v1")

	out, err = run(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, userconfig.Path()+"\n", out)

	_, err = run(t, "", "config", "set", "nope", "x")
	assert.ErrorContains(t, err, "unknown config key")
}

func TestHelperFlags_Resolve(t *testing.T) {
	cfg := &userconfig.Config{
		Helper: &userconfig.Helper{Command: "from-config", Args: []string{"-a"}},
		Target: &userconfig.Target{InstallDir: "/config/dir"},
	}

	s := (&helperFlags{}).resolve(cfg)
	assert.Equal(t, helperSettings{command: "from-config", args: []string{"-a"}, process: userconfig.DefaultProcess, installDir: "/config/dir"}, s)

	s = (&helperFlags{command: "flag", args: []string{"-b"}, process: "Lark.exe"}).resolve(cfg)
	assert.Equal(t, helperSettings{command: "flag", args: []string{"-b"}, process: "Lark.exe", installDir: "/config/dir"}, s)
}

func TestApply(t *testing.T) {
	fake := bridgetest.New(basePath)
	setup(t, fake)
	path := writeFile(t, "dark.yaml", sampleTheme)

	out, err := run(t, "", "apply", path)
	require.NoError(t, err)

	assert.Contains(t, out, "found install path: "+basePath)
	assert.Contains(t, out, engine.MsgTaskFinished)
	assert.Contains(t, out, "done 2/2 archives")
	require.Len(t, fake.Committed("app.asar"), 1)
	assert.Equal(t, "main.js", fake.Committed("app.asar")[0].Target)
	require.Len(t, fake.Committed("webcontent/messenger.asar"), 1)
	assert.True(t, fake.HasBackup(bridge.JoinPath(basePath, "app.asar")))

	cfg, err := userconfig.Load()
	require.NoError(t, err)
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.GetSettings().LastTheme)
}

func TestApply_TargetRunning(t *testing.T) {
	fake := bridgetest.New(basePath)
	fake.SetRunning(true)
	setup(t, fake)
	path := writeFile(t, "dark.yaml", sampleTheme)

	out, err := run(t, "", "apply", path)
	require.ErrorIs(t, err, engine.ErrTargetRunning)

	assert.Contains(t, out, engine.MsgTargetRunning)
	assert.Empty(t, fake.Committed("app.asar"))
	assert.NotContains(t, out, "archives")
}

func TestApply_KillConfirmed(t *testing.T) {
	fake := bridgetest.New(basePath)
	fake.SetRunning(true)
	setup(t, fake)
	path := writeFile(t, "dark.yaml", sampleTheme)

	out, err := run(t, "y\n", "apply", path, "--kill", "--launch")
	require.NoError(t, err)

	assert.Contains(t, out, "Close it? (y/n): ")
	assert.Contains(t, fake.Commands(), bridge.CmdKillTarget)
	assert.Contains(t, fake.Commands(), bridge.CmdLaunchTarget)
	assert.Len(t, fake.Committed("app.asar"), 1)
}

func TestApply_KillDeclined(t *testing.T) {
	fake := bridgetest.New(basePath)
	fake.SetRunning(true)
	setup(t, fake)
	path := writeFile(t, "dark.yaml", sampleTheme)

	out, err := run(t, "n\n", "apply", path, "--kill")
	require.Error(t, err)

	assert.Contains(t, out, "still running")
	assert.NotContains(t, fake.Commands(), bridge.CmdKillTarget)
}

func TestApply_CommitFailure(t *testing.T) {
	fake := bridgetest.New(basePath)
	fake.FailCommit("app.asar", errors.New("disk full"))
	setup(t, fake)
	path := writeFile(t, "dark.yaml", sampleTheme)

	out, err := run(t, "", "apply", path)
	require.Error(t, err)

	assert.Contains(t, out, "failed app.asar")
	assert.Contains(t, out, "failed to write archive app.asar")
	assert.Len(t, fake.Committed("webcontent/messenger.asar"), 1)
}

func TestApply_InvalidTheme(t *testing.T) {
	setup(t, bridgetest.New(basePath))
	path := writeFile(t, "broken.yaml", "themes: {}\n")

	out, err := run(t, "", "apply", path)
	require.Error(t, err)
	assert.Contains(t, out, "failed to load theme")
}

func TestRestore(t *testing.T) {
	fake := bridgetest.New(basePath)
	fake.SetBackup(bridge.JoinPath(basePath, "app.asar"), true)
	setup(t, fake)
	path := writeFile(t, "dark.yaml", sampleTheme)

	out, err := run(t, "", "restore", path)
	require.NoError(t, err)

	assert.Contains(t, out, "all backups restored")
	assert.False(t, fake.HasBackup(bridge.JoinPath(basePath, "app.asar")))
}

func TestRestore_OneArchive(t *testing.T) {
	fake := bridgetest.New(basePath)
	fake.SetBackup(bridge.JoinPath(basePath, "app.asar"), true)
	setup(t, fake)
	path := writeFile(t, "dark.yaml", sampleTheme)

	out, err := run(t, "", "restore", path, "app.asar")
	require.NoError(t, err)
	assert.Contains(t, out, "restored backup: app.asar")
}

func TestRestore_NothingToRestore(t *testing.T) {
	setup(t, bridgetest.New(basePath))
	path := writeFile(t, "dark.yaml", sampleTheme)

	out, err := run(t, "", "restore", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to restore.")
}

func TestStatus_UsesLastTheme(t *testing.T) {
	fake := bridgetest.New(basePath)
	fake.SetBackup(bridge.JoinPath(basePath, "webcontent/messenger.asar"), true)
	setup(t, fake)
	path := writeFile(t, "dark.yaml", sampleTheme)

	_, err := run(t, "", "status", path)
	require.NoError(t, err)

	out, err := run(t, "", "status", "--patches")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^app\.asar\s+1\s+no$`, out)
	assert.Regexp(t, `(?m)^webcontent/messenger\.asar\s+1\s+yes$`, out)
	assert.Contains(t, out, "dark sidebar")
}

func TestStatus_NoTheme(t *testing.T) {
	setup(t, bridgetest.New(basePath))

	_, err := run(t, "", "status")
	assert.ErrorContains(t, err, "no theme given")
}

func TestTarget(t *testing.T) {
	fake := bridgetest.New(basePath)
	setup(t, fake)

	out, err := run(t, "", "target", "running")
	require.NoError(t, err)
	assert.Equal(t, "not running\n", out)

	_, err = run(t, "", "target", "launch")
	require.NoError(t, err)

	out, err = run(t, "", "target", "running")
	require.NoError(t, err)
	assert.Equal(t, "running\n", out)

	out, err = run(t, "", "target", "path", "--install-dir", "/custom")
	require.NoError(t, err)
	assert.Equal(t, "/custom\n", out)
}

func TestStatus_ThemeByName(t *testing.T) {
	setup(t, bridgetest.New(basePath))
	dir := paths.GetThemesDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dark.yaml"), []byte(sampleTheme), 0o644))
	t.Chdir(t.TempDir())

	out, err := run(t, "", "status", "dark")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^app\.asar\s+1\s+no$`, out)

	_, err = run(t, "", "status", "missing")
	assert.ErrorContains(t, err, "failed to read theme")
}
