package root

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walassistant/wal/pkg/bridge/bridgetest"
	"github.com/walassistant/wal/pkg/script"
)

func TestScript_All(t *testing.T) {
	setup(t, bridgetest.New(basePath))
	path := writeFile(t, "dark.yaml", sampleTheme)

	out, err := run(t, "", "script", path, "--check")
	require.NoError(t, err)

	assert.Contains(t, out, "// app.asar #0")
	assert.Contains(t, out, "// webcontent/messenger.asar #0")
	assert.Contains(t, out, `"--bg"`)
	assert.Contains(t, out, ".sidebar { color: red; }")
}

func TestScript_OnePatch(t *testing.T) {
	setup(t, bridgetest.New(basePath))
	path := writeFile(t, "dark.yaml", sampleTheme)

	out, err := run(t, "", "script", path, "--archive", "app.asar", "--index", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "// app.asar #0")
	assert.NotContains(t, out, "messenger")
}

func TestScript_Selection(t *testing.T) {
	setup(t, bridgetest.New(basePath))
	path := writeFile(t, "dark.yaml", sampleTheme)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--index", "0"}, "--index requires --archive"},
		{[]string{"--archive", "other.asar"}, `no archive "other.asar"`},
		{[]string{"--archive", "app.asar", "--index", "3"}, `no patch #3 in archive "app.asar"`},
	}
	for _, tt := range tests {
		out, err := run(t, "", append([]string{"script", path}, tt.args...)...)
		require.Error(t, err)
		assert.Contains(t, out, tt.want)
	}
}

func TestScript_CheckReportsSyntaxErrors(t *testing.T) {
	setup(t, bridgetest.New(basePath))
	path := writeFile(t, "broken.yaml", `asarPatches:
  app.asar:
    - kind: file
      path: main.js
      customScript: "function ("
`)

	out, err := run(t, "", "script", path, "--check")
	require.Error(t, err)
	assert.Contains(t, out, script.CustomScriptStart)
	assert.Contains(t, out, "app.asar #0:")
}

func TestCheck(t *testing.T) {
	setup(t, bridgetest.New(basePath))
	dir := t.TempDir()
	good := filepath.Join(dir, "themes", "dark.yaml")
	bad := filepath.Join(dir, "themes", "nested", "broken.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(bad), 0o755))
	require.NoError(t, os.WriteFile(good, []byte(sampleTheme), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("asarPatches:\n  app.asar:\n    - kind: file\n"), 0o644))

	out, err := run(t, "", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok    "+good)

	out, err = run(t, "", "check", filepath.Join(dir, "themes", "**", "*.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "ok    "+good)
	assert.Contains(t, out, "FAIL  "+bad)
	assert.Contains(t, out, "app.asar #0: no path")
}

func TestCheck_NoMatch(t *testing.T) {
	setup(t, bridgetest.New(basePath))

	_, err := run(t, "", "check", filepath.Join(t.TempDir(), "*.yaml"))
	assert.ErrorContains(t, err, "no file matches")
}

func TestCheck_MissingFile(t *testing.T) {
	setup(t, bridgetest.New(basePath))

	out, err := run(t, "", "check", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "failed to read theme")
}

func TestCheck_SchemaWarnings(t *testing.T) {
	setup(t, bridgetest.New(basePath))
	path := writeFile(t, "typo.yaml", `asarPatches:
  app.asar:
    - kind: file
      path: main.js
      colorOverride:
        "--bg": "#000"
`)

	out, err := run(t, "", "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok    "+path)
	assert.Contains(t, out, "warning: ")
	assert.Contains(t, out, "colorOverride")

	out, err = run(t, "", "check", "--strict", path)
	require.Error(t, err)
	assert.Contains(t, out, "FAIL  "+path)
}

func TestSchema(t *testing.T) {
	setup(t, bridgetest.New(basePath))

	out, err := run(t, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"asarPatches"`)
	assert.Contains(t, out, `"main-script"`)
}
