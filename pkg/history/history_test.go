package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_Empty(t *testing.T) {
	t.Parallel()

	h := New[string]()

	_, ok := h.Undo("current")
	assert.False(t, ok)
	_, ok = h.Redo("current")
	assert.False(t, ok)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestHistory_UndoAll(t *testing.T) {
	t.Parallel()

	h := New[int]()

	current := 0
	for i := 1; i <= 3; i++ {
		h.Record(current)
		current = i
	}

	for range 3 {
		prev, ok := h.Undo(current)
		assert.True(t, ok)
		current = prev
	}
	assert.Equal(t, 0, current)
	assert.False(t, h.CanUndo())

	undo, redo := h.Depth()
	assert.Equal(t, 0, undo)
	assert.Equal(t, 3, redo)
}

func TestHistory_RedoAfterUndo(t *testing.T) {
	t.Parallel()

	h := New[string]()

	h.Record("a")
	current := "b"

	prev, ok := h.Undo(current)
	assert.True(t, ok)
	assert.Equal(t, "a", prev)

	next, ok := h.Redo(prev)
	assert.True(t, ok)
	assert.Equal(t, "b", next)
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestHistory_RecordClearsRedo(t *testing.T) {
	t.Parallel()

	h := New[string]()

	h.Record("a")
	prev, _ := h.Undo("b")
	assert.True(t, h.CanRedo())

	h.Record(prev)
	assert.False(t, h.CanRedo())

	_, ok := h.Redo("c")
	assert.False(t, ok)
}

func TestHistory_Reset(t *testing.T) {
	t.Parallel()

	h := New[int]()
	h.Record(1)
	h.Record(2)
	_, _ = h.Undo(3)

	h.Reset()

	undo, redo := h.Depth()
	assert.Zero(t, undo)
	assert.Zero(t, redo)
}
