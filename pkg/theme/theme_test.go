package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTheme_Empty(t *testing.T) {
	t.Parallel()

	th := New()

	assert.Zero(t, th.Len())
	assert.Empty(t, th.ArchiveIDs())
	assert.Zero(t, th.PendingArchives())

	var nilTheme *Theme
	assert.Zero(t, nilTheme.Len())
	assert.Empty(t, nilTheme.Patches("app.asar"))
}

func TestTheme_RemoveLastPatchRemovesArchive(t *testing.T) {
	t.Parallel()

	th := New().
		WithPatchAppended("app.asar", FilePatch{Path: "main.js"}).
		WithPatchAppended("app.asar", FilePatch{Path: "index.js"}).
		WithPatchAppended("other.asar", MainScriptPatch{Subject: "messenger"})

	th = th.WithPatchRemoved("app.asar", 0)
	require.Len(t, th.Patches("app.asar"), 1)
	assert.Equal(t, "index.js", Target(th.Patches("app.asar")[0]))

	th = th.WithPatchRemoved("app.asar", 0)
	assert.Equal(t, []string{"other.asar"}, th.ArchiveIDs())
	assert.Equal(t, 1, th.PendingArchives())
}

func TestTheme_EditsDoNotMutatePrevious(t *testing.T) {
	t.Parallel()

	before := New().WithPatchAppended("app.asar", FilePatch{Path: "main.js"})
	after := before.WithPatchUpdated("app.asar", 0, func(p Patch) Patch {
		return WithColor(p, "--bg", "#000")
	})

	require.NotSame(t, before, after)
	p, _ := before.Patch("app.asar", 0)
	assert.Zero(t, p.Common().ColorOverrides.Len())
	p, _ = after.Patch("app.asar", 0)
	v, ok := p.Common().ColorOverrides.Get("--bg")
	assert.True(t, ok)
	assert.Equal(t, "#000", v)
}

func TestTheme_NoOpEditReturnsReceiver(t *testing.T) {
	t.Parallel()

	th := New().WithPatchAppended("app.asar", FilePatch{Path: "main.js"})

	assert.Same(t, th, th.WithPatchUpdated("app.asar", 0, func(p Patch) Patch { return p }))
	assert.Same(t, th, th.WithPatchUpdated("app.asar", 0, func(p Patch) Patch { return WithPath(p, "main.js") }))
	assert.Same(t, th, th.WithPatchUpdated("app.asar", 5, func(p Patch) Patch { return WithPath(p, "x") }))
	assert.Same(t, th, th.WithPatchRemoved("missing.asar", 0))
	assert.Same(t, th, th.WithoutArchive("missing.asar"))
}

func TestTheme_ArchiveOrder(t *testing.T) {
	t.Parallel()

	th := New().
		WithPatchAppended("b.asar", FilePatch{}).
		WithPatchAppended("a.asar", FilePatch{}).
		WithPatchAppended("b.asar", FilePatch{})

	assert.Equal(t, []string{"b.asar", "a.asar"}, th.ArchiveIDs())
	assert.Equal(t, 3, th.PatchCount())
}

func TestReclassify_RoundTrip(t *testing.T) {
	t.Parallel()

	original := MainScriptPatch{Subject: "messenger"}
	original.Description = "dark"
	original.EnableDevTools = true
	original.CustomScript = "console.log(1)"
	original.ColorOverrides = NewDict(Pair[string]{"--bg", "#111"})

	asFile := Reclassify(original, KindFile)
	fp, ok := asFile.(FilePatch)
	require.True(t, ok)
	assert.Empty(t, fp.Path)
	assert.Equal(t, original.Base, fp.Base)

	back := Reclassify(asFile, KindMainScript)
	ms, ok := back.(MainScriptPatch)
	require.True(t, ok)
	assert.Empty(t, ms.Subject)
	assert.Equal(t, original.Base, ms.Base)

	assert.Equal(t, back, Reclassify(back, KindMainScript))
}

func TestPatchEdits(t *testing.T) {
	t.Parallel()

	var p Patch = FilePatch{Path: "main.js"}

	p = WithDeclaration(p, ".a", "color", "red")
	p = WithDeclaration(p, ".a", "background", "blue")
	p = WithDeclaration(p, ".a", "color", "green")
	p = WithSelector(p, ".b")

	styles := p.Common().StyleOverridesBySelector
	assert.Equal(t, []string{".a", ".b"}, styles.Keys())
	decls, _ := styles.Get(".a")
	assert.Equal(t, []string{"color", "background"}, decls.Keys())
	color, _ := decls.Get("color")
	assert.Equal(t, "green", color)

	assert.Equal(t, p, WithSelector(p, ".a"))
	assert.Equal(t, p, WithDeclaration(p, ".a", "color", "green"))
	assert.Equal(t, p, WithoutDeclaration(p, ".z", "color"))

	p = WithoutDeclaration(p, ".a", "color")
	decls, _ = p.Common().StyleOverridesBySelector.Get(".a")
	assert.Equal(t, []string{"background"}, decls.Keys())

	p = WithoutSelector(p, ".a")
	assert.Equal(t, []string{".b"}, p.Common().StyleOverridesBySelector.Keys())

	assert.Equal(t, p, WithSubject(p, "ignored"))
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := ParseKind("main-script")
	require.NoError(t, err)
	assert.Equal(t, KindMainScript, k)

	_, err = ParseKind("asar")
	require.Error(t, err)
}

func TestIsColorLike(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"#fff", "#FFFA", "#112233", "#11223344", "rgb(1,2,3)", "RGBA(0,0,0,.5)", "hsl(1, 2%, 3%)", "transparent", "DarkGrey"} {
		assert.True(t, IsColorLike(v), v)
	}
	for _, v := range []string{"", "#ff", "#12345", "12px", "var(--x)", "bold"} {
		assert.False(t, IsColorLike(v), v)
	}
}
