package theme_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walassistant/wal/pkg/script"
	"github.com/walassistant/wal/pkg/theme"
)

func collectExamples(t *testing.T) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(filepath.Join("..", "..", "examples"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".yaml" {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, files)

	return files
}

func TestParseExamples(t *testing.T) {
	t.Parallel()

	for _, file := range collectExamples(t) {
		t.Run(file, func(t *testing.T) {
			t.Parallel()

			th, err := theme.LoadFile(file)
			require.NoError(t, err)
			require.NotZero(t, th.PatchCount(), "No patches in %s", file)

			for id, patches := range th.All() {
				for i, p := range patches {
					require.NotEmpty(t, theme.Target(p), "%s #%d has no target in %s", id, i, file)
					require.NotEmpty(t, p.Common().Description, "%s #%d has no description in %s", id, i, file)
					require.NoError(t, script.Check(script.Generate(p)))
				}
			}
		})
	}
}

func TestJsonSchemaWorksForExamples(t *testing.T) {
	t.Parallel()

	for _, file := range collectExamples(t) {
		t.Run(file, func(t *testing.T) {
			t.Parallel()

			data, err := os.ReadFile(file)
			require.NoError(t, err)

			findings, err := theme.Lint(data)
			require.NoError(t, err)
			assert.Empty(t, findings, "Example %s does not match schema", file)
		})
	}
}
