// Package theme defines the declarative theme model: a mapping from archive
// identifiers to ordered lists of patches.
//
// Themes are immutable values. Every edit goes through a copy-with method
// that returns a new *Theme, so a previous value stays valid for as long as
// someone (typically the editor history) holds on to it. An edit that changes
// nothing returns the receiver itself, which lets callers detect no-op edits
// with a pointer comparison.
package theme

import (
	"iter"
	"slices"
)

// Theme maps archive identifiers to their patches.
//
// An archive key is never stored with an empty patch list: removing the last
// patch removes the key.
type Theme struct {
	archives Dict[[]Patch]
}

// New returns an empty theme.
func New() *Theme {
	return &Theme{}
}

// Len returns the number of archives carrying at least one patch.
func (t *Theme) Len() int {
	if t == nil {
		return 0
	}
	return t.archives.Len()
}

// ArchiveIDs returns the archive identifiers in document order.
func (t *Theme) ArchiveIDs() []string {
	if t == nil {
		return nil
	}
	return t.archives.Keys()
}

// Patches returns a copy of the patches of archive id.
func (t *Theme) Patches(id string) []Patch {
	if t == nil {
		return nil
	}
	patches, _ := t.archives.Get(id)
	return slices.Clone(patches)
}

// Patch returns the patch at index of archive id.
func (t *Theme) Patch(id string, index int) (Patch, bool) {
	if t == nil {
		return nil, false
	}
	patches, ok := t.archives.Get(id)
	if !ok || index < 0 || index >= len(patches) {
		return nil, false
	}
	return patches[index], true
}

// All iterates over archives and their patches in document order. The
// yielded slices must not be modified.
func (t *Theme) All() iter.Seq2[string, []Patch] {
	if t == nil {
		return func(func(string, []Patch) bool) {}
	}
	return t.archives.All()
}

// PendingArchives counts the archives that have at least one patch.
func (t *Theme) PendingArchives() int {
	n := 0
	for _, patches := range t.All() {
		if len(patches) > 0 {
			n++
		}
	}
	return n
}

// PatchCount returns the total number of patches across all archives.
func (t *Theme) PatchCount() int {
	n := 0
	for _, patches := range t.All() {
		n += len(patches)
	}
	return n
}

// WithPatchAppended returns a theme where p is appended to archive id.
func (t *Theme) WithPatchAppended(id string, p Patch) *Theme {
	if p == nil {
		return t
	}
	current := t.Patches(id)
	return t.withList(id, append(current, p))
}

// WithPatchRemoved returns a theme without the patch at index of archive id.
// Removing the last patch removes the archive.
func (t *Theme) WithPatchRemoved(id string, index int) *Theme {
	if _, ok := t.Patch(id, index); !ok {
		return t
	}
	current := t.Patches(id)
	return t.withList(id, slices.Delete(current, index, index+1))
}

// WithPatchUpdated returns a theme where the patch at index of archive id is
// replaced by fn(patch). The receiver is returned when the index does not
// exist or fn returns the patch unchanged.
func (t *Theme) WithPatchUpdated(id string, index int, fn func(Patch) Patch) *Theme {
	prev, ok := t.Patch(id, index)
	if !ok {
		return t
	}
	next := fn(prev)
	if next == nil || next == prev {
		return t
	}
	current := t.Patches(id)
	current[index] = next
	return t.withList(id, current)
}

// WithoutArchive returns a theme without archive id.
func (t *Theme) WithoutArchive(id string) *Theme {
	if t == nil || !t.archives.Has(id) {
		return t
	}
	return &Theme{archives: t.archives.Without(id)}
}

func (t *Theme) withList(id string, patches []Patch) *Theme {
	var archives Dict[[]Patch]
	if t != nil {
		archives = t.archives
	}
	if len(patches) == 0 {
		return &Theme{archives: archives.Without(id)}
	}
	return &Theme{archives: archives.With(id, patches)}
}
