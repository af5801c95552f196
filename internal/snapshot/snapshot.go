// Package snapshot implements spec.md §4.2: the middleware dispatcher that
// turns a filesystem path into a transient instance subtree, and the
// inverse write-back operation. It is grounded on original_source's
// middleware/data.rs and middleware/luau.rs, generalized from Argon's fixed
// two-middleware set into the dispatcher spec.md §9.196 calls for ("Enumerate
// file kinds as a tagged variant; each variant maps to a read and a write
// routine").
package snapshot

import (
	"path/filepath"
	"strings"

	"github.com/argonsync/argon/internal/diff"
	"github.com/argonsync/argon/internal/meta"
	"github.com/argonsync/argon/internal/vfs"
)

// Kind is the file-kind tag spec.md §4.2 dispatches on.
type Kind int

const (
	KindDirectory Kind = iota
	KindServerScript
	KindClientScript
	KindModuleScript
	KindData
	KindModel
	KindLocalizationTable
	KindPlainValue
	KindIgnored
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "Directory"
	case KindServerScript:
		return "ServerScript"
	case KindClientScript:
		return "ClientScript"
	case KindModuleScript:
		return "ModuleScript"
	case KindData:
		return "Data"
	case KindModel:
		return "Model"
	case KindLocalizationTable:
		return "LocalizationTable"
	case KindPlainValue:
		return "PlainValue"
	default:
		return "Ignored"
	}
}

// Classify assigns a Kind to path, consulting m for ignore globs and sync
// rules before falling back to the fixed suffix table, per spec.md §4.2 and
// §4.2.3 ("files excluded by the Meta ignore globs yield no snapshot").
func Classify(path string, isDir bool, m meta.Meta) Kind {
	name := filepath.Base(path)
	if m.IsIgnored(name) {
		return KindIgnored
	}
	if isDir {
		return KindDirectory
	}

	if _, ok := m.MatchSyncRule(name); ok {
		return KindPlainValue
	}

	switch {
	case strings.HasSuffix(name, ".server.luau"), strings.HasSuffix(name, ".server.lua"):
		return KindServerScript
	case strings.HasSuffix(name, ".client.luau"), strings.HasSuffix(name, ".client.lua"):
		return KindClientScript
	case strings.HasSuffix(name, ".luau"), strings.HasSuffix(name, ".lua"):
		return KindModuleScript
	case strings.HasSuffix(name, ".data.json"), strings.HasSuffix(name, ".meta.json"):
		return KindData
	case strings.HasSuffix(name, ".model.json"), strings.HasSuffix(name, ".rbxm"), strings.HasSuffix(name, ".rbxmx"):
		return KindModel
	case strings.HasSuffix(name, ".csv"):
		return KindLocalizationTable
	case strings.HasSuffix(name, ".toml"), strings.HasSuffix(name, ".json"):
		return KindPlainValue
	default:
		return KindIgnored
	}
}

// InstanceName derives the instance name from a path per spec.md §4.2:
// strip the recognized suffix (including a sidecar's .data.json/.meta.json),
// or, for directories and unrecognized kinds, the file name itself.
func InstanceName(path string, kind Kind) string {
	base := filepath.Base(path)
	switch kind {
	case KindServerScript:
		return strings.TrimSuffix(strings.TrimSuffix(base, ".server.luau"), ".server.lua")
	case KindClientScript:
		return strings.TrimSuffix(strings.TrimSuffix(base, ".client.luau"), ".client.lua")
	case KindModuleScript:
		return strings.TrimSuffix(strings.TrimSuffix(base, ".luau"), ".lua")
	case KindData:
		return strings.TrimSuffix(strings.TrimSuffix(base, ".data.json"), ".meta.json")
	case KindModel:
		return strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(base, ".model.json"), ".rbxm"), ".rbxmx")
	case KindLocalizationTable, KindPlainValue:
		return strings.TrimSuffix(base, filepath.Ext(base))
	default:
		return base
	}
}

// Snapshotter dispatches path -> *diff.PendingSnapshot, per spec.md §4.2.
type Snapshotter struct {
	VFS vfs.Vfs
}

// New builds a Snapshotter over the given filesystem.
func New(fs vfs.Vfs) *Snapshotter {
	return &Snapshotter{VFS: fs}
}

// Snapshot computes the subtree rooted at path, per the middleware dispatch
// table in spec.md §4.2. m is the Meta in effect for path's directory
// (already joined with any .argon.hcl override found there).
func (s *Snapshotter) Snapshot(path string, m meta.Meta) (*diff.PendingSnapshot, error) {
	isDir := s.VFS.IsDir(path)

	kind := Classify(path, isDir, m)
	switch kind {
	case KindIgnored:
		return nil, nil
	case KindDirectory:
		return s.snapshotDirectory(path, m)
	case KindServerScript:
		return s.snapshotScript(path, ScriptServer, m)
	case KindClientScript:
		return s.snapshotScript(path, ScriptClient, m)
	case KindModuleScript:
		return s.snapshotScript(path, ScriptModule, m)
	case KindData:
		return s.snapshotData(path, m)
	case KindModel:
		return s.snapshotModel(path, m)
	case KindLocalizationTable:
		return s.snapshotLocalizationTable(path, m)
	case KindPlainValue:
		return s.snapshotPlainValue(path, m)
	default:
		return nil, nil
	}
}
