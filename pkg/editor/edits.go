package editor

import (
	"errors"
	"fmt"

	"github.com/walassistant/wal/pkg/theme"
)

func (e *Editor) checkPatch(archive string, index int) error {
	if _, ok := e.theme.Patch(archive, index); !ok {
		return fmt.Errorf("%w: %s #%d", ErrNoPatch, archive, index)
	}
	return nil
}

// editPatch applies fn to one patch.
func (e *Editor) editPatch(archive string, index int, record bool, fn func(theme.Patch) theme.Patch) (bool, error) {
	if err := e.checkPatch(archive, index); err != nil {
		return false, err
	}
	return e.Update(func(t *theme.Theme) *theme.Theme {
		return t.WithPatchUpdated(archive, index, fn)
	}, record), nil
}

// AddPatch appends an empty patch of kind to archive.
func (e *Editor) AddPatch(archive string, kind theme.Kind) error {
	if archive == "" {
		return errors.New("archive id must not be empty")
	}
	p, err := theme.NewPatch(kind)
	if err != nil {
		return err
	}
	e.Update(func(t *theme.Theme) *theme.Theme {
		return t.WithPatchAppended(archive, p)
	}, true)
	return nil
}

// RemovePatch removes a patch, and its archive when it was the last one.
func (e *Editor) RemovePatch(archive string, index int) error {
	if err := e.checkPatch(archive, index); err != nil {
		return err
	}
	e.Update(func(t *theme.Theme) *theme.Theme {
		return t.WithPatchRemoved(archive, index)
	}, true)
	return nil
}

// RemoveArchive removes archive and all of its patches.
func (e *Editor) RemoveArchive(archive string) bool {
	return e.Update(func(t *theme.Theme) *theme.Theme {
		return t.WithoutArchive(archive)
	}, true)
}

// SetKind switches a patch to kind, clearing its subject or path.
func (e *Editor) SetKind(archive string, index int, kind theme.Kind) (bool, error) {
	return e.editPatch(archive, index, true, func(p theme.Patch) theme.Patch {
		return theme.Reclassify(p, kind)
	})
}

func (e *Editor) AddSelector(archive string, index int, selector string) (bool, error) {
	return e.editPatch(archive, index, true, func(p theme.Patch) theme.Patch {
		return theme.WithSelector(p, selector)
	})
}

func (e *Editor) RemoveSelector(archive string, index int, selector string) (bool, error) {
	return e.editPatch(archive, index, true, func(p theme.Patch) theme.Patch {
		return theme.WithoutSelector(p, selector)
	})
}

// AddDeclaration adds property to selector, creating the selector if needed.
func (e *Editor) AddDeclaration(archive string, index int, selector, property, value string) (bool, error) {
	return e.editPatch(archive, index, true, func(p theme.Patch) theme.Patch {
		return theme.WithDeclaration(p, selector, property, value)
	})
}

func (e *Editor) RemoveDeclaration(archive string, index int, selector, property string) (bool, error) {
	return e.editPatch(archive, index, true, func(p theme.Patch) theme.Patch {
		return theme.WithoutDeclaration(p, selector, property)
	})
}

func (e *Editor) AddColor(archive string, index int, key, value string) (bool, error) {
	return e.editPatch(archive, index, true, func(p theme.Patch) theme.Patch {
		return theme.WithColor(p, key, value)
	})
}

func (e *Editor) RemoveColor(archive string, index int, key string) (bool, error) {
	return e.editPatch(archive, index, true, func(p theme.Patch) theme.Patch {
		return theme.WithoutColor(p, key)
	})
}

func (e *Editor) SetDevTools(archive string, index int, enable bool) (bool, error) {
	return e.editPatch(archive, index, true, func(p theme.Patch) theme.Patch {
		return theme.WithDevTools(p, enable)
	})
}

// The setters below follow typing and are not recorded.

func (e *Editor) SetSubject(archive string, index int, subject string) (bool, error) {
	return e.editPatch(archive, index, false, func(p theme.Patch) theme.Patch {
		return theme.WithSubject(p, subject)
	})
}

func (e *Editor) SetPath(archive string, index int, path string) (bool, error) {
	return e.editPatch(archive, index, false, func(p theme.Patch) theme.Patch {
		return theme.WithPath(p, path)
	})
}

func (e *Editor) SetDescription(archive string, index int, description string) (bool, error) {
	return e.editPatch(archive, index, false, func(p theme.Patch) theme.Patch {
		return theme.WithDescription(p, description)
	})
}

func (e *Editor) SetCustomScript(archive string, index int, script string) (bool, error) {
	return e.editPatch(archive, index, false, func(p theme.Patch) theme.Patch {
		return theme.WithCustomScript(p, script)
	})
}

// SetDeclarationValue changes the value of an existing declaration.
func (e *Editor) SetDeclarationValue(archive string, index int, selector, property, value string) (bool, error) {
	return e.editPatch(archive, index, false, func(p theme.Patch) theme.Patch {
		decls, _ := p.Common().StyleOverridesBySelector.Get(selector)
		if !decls.Has(property) {
			return p
		}
		return theme.WithDeclaration(p, selector, property, value)
	})
}

// SetColorValue changes the value of an existing color override.
func (e *Editor) SetColorValue(archive string, index int, key, value string) (bool, error) {
	return e.editPatch(archive, index, false, func(p theme.Patch) theme.Patch {
		if !p.Common().ColorOverrides.Has(key) {
			return p
		}
		return theme.WithColor(p, key, value)
	})
}
