package theme

import "strings"

// The functions below are the patch-level edits used by the editor. Each
// returns p unchanged when there is nothing to do.

// WithSubject sets the subject of a main-script patch. Other kinds are
// returned unchanged.
func WithSubject(p Patch, subject string) Patch {
	ms, ok := p.(MainScriptPatch)
	if !ok || ms.Subject == subject {
		return p
	}
	ms.Subject = subject
	return ms
}

// WithPath sets the path of a file patch. Other kinds are returned unchanged.
func WithPath(p Patch, path string) Patch {
	fp, ok := p.(FilePatch)
	if !ok || fp.Path == path {
		return p
	}
	fp.Path = path
	return fp
}

func WithDescription(p Patch, description string) Patch {
	return UpdateBase(p, func(b Base) Base {
		b.Description = description
		return b
	})
}

func WithCustomScript(p Patch, script string) Patch {
	return UpdateBase(p, func(b Base) Base {
		b.CustomScript = script
		return b
	})
}

func WithDevTools(p Patch, enable bool) Patch {
	return UpdateBase(p, func(b Base) Base {
		b.EnableDevTools = enable
		return b
	})
}

// WithSelector adds an empty declaration block for selector.
func WithSelector(p Patch, selector string) Patch {
	selector = strings.TrimSpace(selector)
	if selector == "" || p.Common().StyleOverridesBySelector.Has(selector) {
		return p
	}
	return UpdateBase(p, func(b Base) Base {
		b.StyleOverridesBySelector = b.StyleOverridesBySelector.With(selector, Declarations{})
		return b
	})
}

// WithoutSelector removes selector and all of its declarations.
func WithoutSelector(p Patch, selector string) Patch {
	return UpdateBase(p, func(b Base) Base {
		b.StyleOverridesBySelector = b.StyleOverridesBySelector.Without(selector)
		return b
	})
}

// WithDeclaration sets property to value under selector, creating the
// selector when missing. An existing property keeps its position.
func WithDeclaration(p Patch, selector, property, value string) Patch {
	property = strings.TrimSpace(property)
	if property == "" {
		return p
	}
	styles := p.Common().StyleOverridesBySelector
	decls, _ := styles.Get(selector)
	if current, ok := decls.Get(property); ok && current == value {
		return p
	}
	return UpdateBase(p, func(b Base) Base {
		b.StyleOverridesBySelector = styles.With(selector, decls.With(property, value))
		return b
	})
}

// WithoutDeclaration removes property from selector.
func WithoutDeclaration(p Patch, selector, property string) Patch {
	styles := p.Common().StyleOverridesBySelector
	decls, ok := styles.Get(selector)
	if !ok || !decls.Has(property) {
		return p
	}
	return UpdateBase(p, func(b Base) Base {
		b.StyleOverridesBySelector = styles.With(selector, decls.Without(property))
		return b
	})
}

// WithColor sets the color override key to value.
func WithColor(p Patch, key, value string) Patch {
	key = strings.TrimSpace(key)
	if key == "" {
		return p
	}
	if current, ok := p.Common().ColorOverrides.Get(key); ok && current == value {
		return p
	}
	return UpdateBase(p, func(b Base) Base {
		b.ColorOverrides = b.ColorOverrides.With(key, value)
		return b
	})
}

// WithoutColor removes the color override key.
func WithoutColor(p Patch, key string) Patch {
	return UpdateBase(p, func(b Base) Base {
		b.ColorOverrides = b.ColorOverrides.Without(key)
		return b
	})
}
