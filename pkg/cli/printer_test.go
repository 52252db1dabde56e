package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/walassistant/wal/pkg/engine"
	"github.com/walassistant/wal/pkg/logs"
	"github.com/walassistant/wal/pkg/theme"
)

func plain(t *testing.T) {
	t.Helper()
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
}

func TestFormatProgress(t *testing.T) {
	assert.Equal(t, formatProgress(engine.Progress{}, 4), "[....] 0/0")
	assert.Equal(t, formatProgress(engine.Progress{Current: 1, Max: 2}, 4), "[##..] 1/2")
	assert.Equal(t, formatProgress(engine.Progress{Current: 2, Max: 2}, 4), "[####] 2/2")
}

func TestFormatTable_IgnoresEscapes(t *testing.T) {
	rows := [][]string{
		{"\x1b[1mA\x1b[0m", "B"},
		{"long", "x"},
	}

	assert.Equal(t, formatTable(rows), "A     B\nlong  x\n")
}

func TestPrinter_PrintStatus(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	th := theme.New().
		WithPatchAppended("app.asar", theme.FilePatch{Path: "main.js"}).
		WithPatchAppended("webcontent/messenger.asar", theme.MainScriptPatch{Subject: "messenger"})
	snap := engine.Snapshot{PatchStates: map[string]engine.PatchState{"app.asar": {HasBackup: true}}}

	NewPrinter(&buf).PrintStatus(th, snap)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, strings.Fields(lines[0])[0], "ARCHIVE")
	assert.DeepEqual(t, strings.Fields(lines[1]), []string{"app.asar", "1", "yes"})
	assert.DeepEqual(t, strings.Fields(lines[2]), []string{"webcontent/messenger.asar", "1", "no"})
	assert.Check(t, is.Contains(buf.String(), "wal restore"))
}

func TestPrinter_PrintPatch(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	p := theme.UpdateBase(theme.FilePatch{Path: "main.js"}, func(b theme.Base) theme.Base {
		b.Description = "dark sidebar"
		b.StyleOverridesBySelector = theme.NewDict(theme.Pair[theme.Declarations]{
			Key:   ".sidebar",
			Value: theme.NewDict(theme.Pair[string]{Key: "color", Value: "#fff"}),
		})
		b.ColorOverrides = theme.NewDict(theme.Pair[string]{Key: "--bg", Value: "black"})
		return b
	})

	NewPrinter(&buf).PrintPatch("app.asar", 0, p)

	out := buf.String()
	assert.Check(t, is.Contains(out, "app.asar #0 file main.js"))
	assert.Check(t, is.Contains(out, "dark sidebar"))
	assert.Check(t, is.Contains(out, "    color: #fff\n"))
	assert.Check(t, is.Contains(out, "  --bg = black\n"))
}

func TestPrinter_PrintResult(t *testing.T) {
	plain(t)
	var buf bytes.Buffer

	NewPrinter(&buf).PrintResult(engine.Snapshot{
		State:    engine.StateDone,
		Progress: engine.Progress{Current: 2, Max: 2},
		Failed:   []string{"b.asar"},
	})

	assert.Check(t, is.Contains(buf.String(), "done 2/2 archives"))
	assert.Check(t, is.Contains(buf.String(), "failed b.asar"))
}

func TestPrinter_PrintScript(t *testing.T) {
	plain(t)
	var buf bytes.Buffer

	NewPrinter(&buf).PrintScript("app.asar #0", "(() => {})();")

	assert.Equal(t, buf.String(), "// app.asar #0 (13B)\n(() => {})();\n")
}

func TestPrinter_PrintLog(t *testing.T) {
	plain(t)
	var buf bytes.Buffer

	NewPrinter(&buf).PrintLog(logs.Entry{
		Time: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		Text: "writing archive...",
	})

	assert.Equal(t, buf.String(), "15:04:05 writing archive...\n")
}

func TestPrinter_Confirm(t *testing.T) {
	plain(t)
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"maybe\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		got := NewPrinter(&buf).Confirm(t.Context(), "Kill it?", strings.NewReader(tt.input))
		assert.Equal(t, got, tt.want, "input %q", tt.input)
		assert.Check(t, is.Contains(buf.String(), "Kill it? (y/n): "))
	}
}
