package theme

import (
	"fmt"
	"strings"
)

// Kind discriminates the two patch variants.
type Kind string

const (
	// KindMainScript targets the entry script of a subject inside an archive.
	KindMainScript Kind = "main-script"
	// KindFile targets one file inside an archive by its relative path.
	KindFile Kind = "file"
)

// Kinds lists every patch kind.
var Kinds = []Kind{KindMainScript, KindFile}

// ParseKind converts a kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.TrimSpace(s)) {
	case KindMainScript:
		return KindMainScript, nil
	case KindFile:
		return KindFile, nil
	default:
		return "", fmt.Errorf("unknown patch kind %q (want %q or %q)", s, KindMainScript, KindFile)
	}
}

// Declarations maps CSS property names to values, in emission order.
type Declarations = Dict[string]

// Base holds the fields shared by every patch variant.
type Base struct {
	// StyleOverridesBySelector maps a CSS selector to its declarations.
	StyleOverridesBySelector Dict[Declarations]
	// ColorOverrides maps CSS custom property names to color values.
	ColorOverrides Dict[string]
	// EnableDevTools injects the in-page debug console.
	EnableDevTools bool
	// CustomScript is spliced verbatim at the end of the generated script.
	CustomScript string
	// Description is informational only.
	Description string
}

// Patch is one of MainScriptPatch or FilePatch. The set is closed: the
// unexported marker keeps other packages from adding variants, so a type
// switch over the two is exhaustive.
type Patch interface {
	Kind() Kind
	Common() Base
	isPatch()
}

// MainScriptPatch injects into the entry script of Subject.
type MainScriptPatch struct {
	Base
	Subject string
}

func (MainScriptPatch) Kind() Kind { return KindMainScript }
func (p MainScriptPatch) Common() Base { return p.Base }
func (MainScriptPatch) isPatch() {}

// FilePatch injects into the archive file at Path.
type FilePatch struct {
	Base
	Path string
}

func (FilePatch) Kind() Kind { return KindFile }
func (p FilePatch) Common() Base { return p.Base }
func (FilePatch) isPatch() {}

// NewPatch returns an empty patch of the given kind.
func NewPatch(kind Kind) (Patch, error) {
	switch kind {
	case KindMainScript:
		return MainScriptPatch{}, nil
	case KindFile:
		return FilePatch{}, nil
	default:
		return nil, fmt.Errorf("unknown patch kind %q", kind)
	}
}

// Target returns the variant-specific field: the subject of a main-script
// patch or the path of a file patch.
func Target(p Patch) string {
	switch p := p.(type) {
	case MainScriptPatch:
		return p.Subject
	case FilePatch:
		return p.Path
	default:
		panic(fmt.Sprintf("theme: unexpected patch type %T", p))
	}
}

// Reclassify converts p to kind. The common base is preserved and the new
// variant field starts empty. Reclassifying to the current kind returns p.
func Reclassify(p Patch, kind Kind) Patch {
	if p.Kind() == kind {
		return p
	}
	base := p.Common()
	switch kind {
	case KindMainScript:
		return MainScriptPatch{Base: base}
	case KindFile:
		return FilePatch{Base: base}
	default:
		return p
	}
}

// UpdateBase returns a copy of p whose base is replaced by fn(base). p itself
// is returned when fn leaves the base unchanged.
func UpdateBase(p Patch, fn func(Base) Base) Patch {
	base := p.Common()
	next := fn(base)
	if next == base {
		return p
	}
	switch p := p.(type) {
	case MainScriptPatch:
		p.Base = next
		return p
	case FilePatch:
		p.Base = next
		return p
	default:
		panic(fmt.Sprintf("theme: unexpected patch type %T", p))
	}
}
