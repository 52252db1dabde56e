package logs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_StripsLevel(t *testing.T) {
	t.Parallel()

	s := NewStore()

	s.Add("INFO backing up app.asar")
	s.Add("WARN")
	s.Add("Info keeps mixed case")
	s.Add("A1 keeps digits")
	s.Add("plain text")
	s.Add("")

	assert.Equal(t, []string{
		"backing up app.asar",
		"",
		"Info keeps mixed case",
		"A1 keeps digits",
		"plain text",
		"",
	}, s.Texts())
}

func TestStore_Subscribe(t *testing.T) {
	t.Parallel()

	s := NewStore()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	var got []Entry
	unsubscribe := s.Subscribe(func(e Entry) { got = append(got, e) })

	s.Addf("patching %s", "app.asar")
	unsubscribe()
	s.Add("after")

	require.Len(t, got, 1)
	assert.Equal(t, Entry{Time: fixed, Text: "patching app.asar"}, got[0])
	assert.Len(t, s.Entries(), 2)
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Add("one")
	s.Clear()
	assert.Empty(t, s.Entries())
}
