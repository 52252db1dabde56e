package theme

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"
)

// DocumentKey is the top-level field of a theme document.
const DocumentKey = "asarPatches"

// ErrInvalidFormat is returned when a document is not a theme.
var ErrInvalidFormat = errors.New("invalid theme format")

const (
	fieldKind        = "kind"
	fieldSubject     = "subject"
	fieldPath        = "path"
	fieldDescription = "description"
	fieldDevTools    = "enableDevTools"
	fieldStyles      = "styleOverridesBySelector"
	fieldColors      = "colorOverrides"
	fieldScript      = "customScript"
)

// Validate reports whether doc has the shape of a theme document: a mapping
// with a DocumentKey field whose value maps archive ids to lists of patch
// objects, each carrying a kind. Nothing else is checked.
func Validate(doc any) error {
	top, ok := entries(doc)
	if !ok {
		return fmt.Errorf("%w: document is not a mapping", ErrInvalidFormat)
	}
	archives, ok := lookup(top, DocumentKey)
	if !ok {
		return fmt.Errorf("%w: missing %q", ErrInvalidFormat, DocumentKey)
	}
	items, ok := entries(archives)
	if !ok {
		return fmt.Errorf("%w: %q is not a mapping", ErrInvalidFormat, DocumentKey)
	}
	for _, item := range items {
		id := scalar(item.Key)
		list, ok := item.Value.([]any)
		if !ok {
			return fmt.Errorf("%w: patches of %q are not a list", ErrInvalidFormat, id)
		}
		for i, elem := range list {
			fields, ok := entries(elem)
			if !ok {
				return fmt.Errorf("%w: patch %d of %q is not a mapping", ErrInvalidFormat, i, id)
			}
			if _, ok := lookup(fields, fieldKind); !ok {
				return fmt.Errorf("%w: patch %d of %q has no kind", ErrInvalidFormat, i, id)
			}
		}
	}
	return nil
}

// Parse decodes a YAML (or JSON) theme document.
func Parse(data []byte) (*Theme, error) {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	top, _ := entries(doc)
	archives, _ := lookup(top, DocumentKey)
	items, _ := entries(archives)

	t := New()
	for _, item := range items {
		id := scalar(item.Key)
		for _, elem := range item.Value.([]any) {
			fields, _ := entries(elem)
			t = t.WithPatchAppended(id, decodePatch(fields))
		}
	}
	return t, nil
}

// Marshal encodes t as a YAML theme document.
func Marshal(t *Theme) ([]byte, error) {
	archives := yaml.MapSlice{}
	for id, patches := range t.All() {
		list := make([]any, 0, len(patches))
		for _, p := range patches {
			list = append(list, encodePatch(p))
		}
		archives = append(archives, yaml.MapItem{Key: id, Value: list})
	}
	data, err := yaml.Marshal(yaml.MapSlice{{Key: DocumentKey, Value: archives}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal theme: %w", err)
	}
	return data, nil
}

// LoadFile reads and parses the theme document at path.
func LoadFile(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme: %w", err)
	}
	return Parse(data)
}

// SaveFile atomically writes t to path.
func SaveFile(path string, t *Theme) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create theme directory: %w", err)
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func decodePatch(fields []yaml.MapItem) Patch {
	var base Base
	if v, ok := lookup(fields, fieldDescription); ok {
		base.Description = scalar(v)
	}
	if v, ok := lookup(fields, fieldScript); ok {
		base.CustomScript = scalar(v)
	}
	if v, ok := lookup(fields, fieldDevTools); ok {
		base.EnableDevTools, _ = v.(bool)
	}
	if v, ok := lookup(fields, fieldColors); ok {
		base.ColorOverrides = decodeStrings(v)
	}
	if v, ok := lookup(fields, fieldStyles); ok {
		selectors, _ := entries(v)
		pairs := make([]Pair[Declarations], 0, len(selectors))
		for _, sel := range selectors {
			pairs = append(pairs, Pair[Declarations]{Key: scalar(sel.Key), Value: decodeStrings(sel.Value)})
		}
		base.StyleOverridesBySelector = NewDict(pairs...)
	}

	kind, _ := lookup(fields, fieldKind)
	if Kind(scalar(kind)) == KindMainScript {
		subject, _ := lookup(fields, fieldSubject)
		return MainScriptPatch{Base: base, Subject: scalar(subject)}
	}
	path, _ := lookup(fields, fieldPath)
	return FilePatch{Base: base, Path: scalar(path)}
}

func decodeStrings(v any) Dict[string] {
	items, _ := entries(v)
	pairs := make([]Pair[string], 0, len(items))
	for _, item := range items {
		pairs = append(pairs, Pair[string]{Key: scalar(item.Key), Value: scalar(item.Value)})
	}
	return NewDict(pairs...)
}

func encodePatch(p Patch) yaml.MapSlice {
	base := p.Common()
	doc := yaml.MapSlice{{Key: fieldKind, Value: string(p.Kind())}}
	switch p := p.(type) {
	case MainScriptPatch:
		doc = append(doc, yaml.MapItem{Key: fieldSubject, Value: p.Subject})
	case FilePatch:
		doc = append(doc, yaml.MapItem{Key: fieldPath, Value: p.Path})
	}

	styles := yaml.MapSlice{}
	for sel, decls := range base.StyleOverridesBySelector.All() {
		styles = append(styles, yaml.MapItem{Key: sel, Value: encodeStrings(decls)})
	}
	return append(doc,
		yaml.MapItem{Key: fieldDescription, Value: base.Description},
		yaml.MapItem{Key: fieldDevTools, Value: base.EnableDevTools},
		yaml.MapItem{Key: fieldStyles, Value: styles},
		yaml.MapItem{Key: fieldColors, Value: encodeStrings(base.ColorOverrides)},
		yaml.MapItem{Key: fieldScript, Value: base.CustomScript},
	)
}

func encodeStrings(d Dict[string]) yaml.MapSlice {
	out := yaml.MapSlice{}
	for k, v := range d.All() {
		out = append(out, yaml.MapItem{Key: k, Value: v})
	}
	return out
}

// entries returns the key/value pairs of a decoded mapping. Plain Go maps are
// accepted too and iterated in key order.
func entries(v any) ([]yaml.MapItem, bool) {
	switch m := v.(type) {
	case yaml.MapSlice:
		return m, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		items := make([]yaml.MapItem, 0, len(m))
		for _, k := range keys {
			items = append(items, yaml.MapItem{Key: k, Value: m[k]})
		}
		return items, true
	default:
		return nil, false
	}
}

func lookup(items []yaml.MapItem, key string) (any, bool) {
	for _, item := range items {
		if scalar(item.Key) == key {
			return item.Value, true
		}
	}
	return nil, false
}

// scalar renders a decoded scalar as text. Null becomes the empty string.
func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
