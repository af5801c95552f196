package api

// Snapshot is the wire (JSON) shape of a tree subtree, served by
// GET /snapshot (spec.md §6). It is distinct from diff.PendingSnapshot,
// the transient, path-associated description internal/snapshot's
// Snapshotter produces before the tree assigns referents — this type is
// post-assignment, for external consumption.
type Snapshot struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Class      string                 `json:"class"`
	Properties map[string]TaggedValue `json:"properties"`
	Children   []Snapshot             `json:"children"`
}

// SourcemapNode is the wire shape of the sourcemap export (spec.md §8 S1,
// §9 core.sourcemap). FilePaths is sorted by descending path length and
// omitted entirely when empty, matching original_source/src/core/mod.rs's
// SourcemapNode exactly (serde's skip_serializing_if on empty vectors).
type SourcemapNode struct {
	Name      string          `json:"name"`
	ClassName string          `json:"className"`
	FilePaths []string        `json:"filePaths,omitempty"`
	Children  []SourcemapNode `json:"children,omitempty"`
}
