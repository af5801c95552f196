package api

// SyncRule maps a filesystem-layout pattern to an instance class, per
// spec.md §3's "sync rule" glossary entry.
type SyncRule struct {
	Pattern string `json:"pattern"`
	Class   string `json:"class"`
	// Child, when set, names the property the matched file's content is
	// assigned to on instances of Class; when empty, the content goes to
	// "Value" whatever Class is.
	Child string `json:"child,omitempty"`
}

// Project is the input project file described in spec.md §6. Loading it is
// out of core scope (an external collaborator); this struct is the shape
// internal/project.Load decodes JSON into.
type Project struct {
	Name             string     `json:"name"`
	Host             string     `json:"host,omitempty"`
	Port             uint16     `json:"port,omitempty"`
	GameID           *uint64    `json:"game_id,omitempty"`
	PlaceIDs         []uint64   `json:"place_ids,omitempty"`
	Path             string     `json:"path"`
	IgnoreGlobs      []string   `json:"ignore_globs,omitempty"`
	SyncRules        []SyncRule `json:"sync_rules,omitempty"`
	UseLegacyScripts bool       `json:"use_legacy_scripts,omitempty"`
}

// IsPlace reports whether this project describes a place (multiple service
// roots) rather than a model (single root subtree) — see GLOSSARY.
func (p *Project) IsPlace() bool {
	return p.GameID != nil || len(p.PlaceIDs) > 0
}

// Details is the response body for GET /details (spec.md §6).
type Details struct {
	Name        string   `json:"name"`
	GameID      *uint64  `json:"game_id,omitempty"`
	PlaceIDs    []uint64 `json:"place_ids,omitempty"`
	ProjectRoot string   `json:"project_root"`
}
