// Package meta implements spec.md §3's Meta: per-subtree configuration
// (ignore globs, sync rules, legacy-vs-modern scripting, project-name
// hints), inherited down the tree and overridable per node.
package meta

import (
	"path/filepath"

	"github.com/argonsync/argon/api"
)

// Meta is the per-subtree configuration spec.md §3 describes. A Meta value
// is immutable once built; overriding a subtree produces a new Meta via
// Join, never mutates the parent's.
type Meta struct {
	IgnoreGlobs      []string
	SyncRules        []api.SyncRule
	UseLegacyScripts bool
	ProjectName      string
}

// FromProject builds the root Meta from a loaded project file
// (original_source/src/core/mod.rs calls this `Meta::from_project`).
func FromProject(p *api.Project) Meta {
	return Meta{
		IgnoreGlobs:      p.IgnoreGlobs,
		SyncRules:        p.SyncRules,
		UseLegacyScripts: p.UseLegacyScripts,
		ProjectName:      p.Name,
	}
}

// Join produces the Meta effective for a child directory, applying any
// overrides found in that directory's .argon.hcl file (see hcl.go) on top
// of the parent's inherited Meta. Overrides replace rather than merge their
// corresponding slice, matching §3's "overridable per node" (a subtree that
// wants to keep the parent's ignore globs simply omits the key).
func (m Meta) Join(override *Override) Meta {
	if override == nil {
		return m
	}
	joined := m
	if override.IgnoreGlobs != nil {
		joined.IgnoreGlobs = override.IgnoreGlobs
	}
	if override.SyncRules != nil {
		joined.SyncRules = override.SyncRules
	}
	if override.UseLegacyScripts != nil {
		joined.UseLegacyScripts = *override.UseLegacyScripts
	}
	return joined
}

// WithOverride joins parent's Meta with dir's .argon.hcl override, if any
// (see hcl.go). Called by the middleware before descending into a
// directory, per spec.md §3's "Meta is inherited down the tree and
// overridable per node."
func WithOverride(parent Meta, dir string) (Meta, error) {
	override, err := LoadOverride(filepath.Join(dir, OverrideFileName))
	if err != nil {
		return parent, err
	}
	return parent.Join(override), nil
}

// IsIgnored reports whether name (a single path segment, not a full path)
// matches any of m's ignore globs, per spec.md §4.2's edge policy "files
// excluded by the Meta ignore globs yield no snapshot and are not indexed."
func (m Meta) IsIgnored(name string) bool {
	for _, pattern := range m.IgnoreGlobs {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
