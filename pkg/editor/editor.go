// Package editor implements theme authoring with undo and redo.
//
// Edits come in two flavors. Structural edits (adding or removing patches,
// selectors, declarations and colors, switching a patch kind) are recorded
// in the history. Field edits that follow typing (subject, path,
// description, custom script, a single declaration or color value) replace
// the theme without a history entry.
package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aymanbagabas/go-udiff"

	"github.com/walassistant/wal/pkg/history"
	"github.com/walassistant/wal/pkg/theme"
)

// ErrNoPatch is returned when an edit addresses a patch that does not exist.
var ErrNoPatch = errors.New("no such patch")

// Editor owns the theme being authored.
type Editor struct {
	theme   *theme.Theme
	saved   *theme.Theme
	path    string
	history *history.History[*theme.Theme]

	listeners []func(*theme.Theme)
}

// Opt configures an Editor.
type Opt func(*Editor)

// WithTheme starts the editor on t instead of an empty theme.
func WithTheme(t *theme.Theme) Opt {
	return func(e *Editor) {
		e.theme = t
		e.saved = t
	}
}

// WithPath sets the file Save writes to.
func WithPath(path string) Opt {
	return func(e *Editor) {
		e.path = path
	}
}

// OnChange registers fn to be called with every new theme value.
func OnChange(fn func(*theme.Theme)) Opt {
	return func(e *Editor) {
		e.listeners = append(e.listeners, fn)
	}
}

func New(opts ...Opt) *Editor {
	e := &Editor{
		theme:   theme.New(),
		history: history.New[*theme.Theme](),
	}
	e.saved = e.theme
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) Theme() *theme.Theme { return e.theme }
func (e *Editor) Path() string { return e.path }
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// Dirty reports whether the theme changed since it was last opened or saved.
func (e *Editor) Dirty() bool {
	return e.theme != e.saved
}

// Update replaces the theme with fn(theme). When record is set the previous
// theme is pushed to the undo stack. Nothing happens, and false is returned,
// when fn returns the theme it was given.
func (e *Editor) Update(fn func(*theme.Theme) *theme.Theme, record bool) bool {
	prev := e.theme
	next := fn(prev)
	if next == nil || next == prev {
		return false
	}
	if record {
		e.history.Record(prev)
	}
	e.set(next)
	return true
}

// Undo restores the theme before the last structural edit.
func (e *Editor) Undo() bool {
	prev, ok := e.history.Undo(e.theme)
	if !ok {
		return false
	}
	e.set(prev)
	return true
}

// Redo reapplies the last undone edit.
func (e *Editor) Redo() bool {
	next, ok := e.history.Redo(e.theme)
	if !ok {
		return false
	}
	e.set(next)
	return true
}

func (e *Editor) set(t *theme.Theme) {
	e.theme = t
	for _, fn := range e.listeners {
		fn(t)
	}
}

// Reset starts over with t and forgets the history.
func (e *Editor) Reset(t *theme.Theme, path string) {
	e.history.Reset()
	e.path = path
	e.saved = t
	e.set(t)
}

// NewTheme discards the current theme.
func (e *Editor) NewTheme() {
	e.Reset(theme.New(), "")
}

// Open loads the theme at path. The current theme is kept when loading
// fails.
func (e *Editor) Open(path string) error {
	t, err := theme.LoadFile(path)
	if err != nil {
		return err
	}
	e.Reset(t, path)
	slog.Debug("Opened theme", "path", path, "archives", t.Len())
	return nil
}

// Import replaces the theme with the document in data. The replacement can
// be undone. The theme is unchanged when data is not a valid theme.
func (e *Editor) Import(data []byte) error {
	t, err := theme.Parse(data)
	if err != nil {
		return err
	}
	e.Update(func(*theme.Theme) *theme.Theme { return t }, true)
	return nil
}

// Export encodes the current theme.
func (e *Editor) Export() ([]byte, error) {
	return theme.Marshal(e.theme)
}

// Save writes the theme to its file.
func (e *Editor) Save() error {
	if e.path == "" {
		return errors.New("no file to save to")
	}
	return e.SaveAs(e.path)
}

// SaveAs writes the theme to path and makes it the editor's file.
func (e *Editor) SaveAs(path string) error {
	if err := theme.SaveFile(path, e.theme); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	e.path = path
	e.saved = e.theme
	slog.Debug("Saved theme", "path", path)
	return nil
}

// Diff returns a unified diff between the last saved theme and the current
// one. It is empty when nothing changed.
func (e *Editor) Diff() (string, error) {
	before, err := theme.Marshal(e.saved)
	if err != nil {
		return "", err
	}
	after, err := theme.Marshal(e.theme)
	if err != nil {
		return "", err
	}
	label := e.path
	if label == "" {
		label = "theme.yaml"
	}
	return udiff.Unified(label, label+" (edited)", string(before), string(after)), nil
}
