package processor

import (
	"fmt"
	"strings"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/diff"
	"github.com/argonsync/argon/internal/snapshot"
	"github.com/argonsync/argon/internal/tree"
)

// HandlePatch implements spec.md §4.4's patch handling: the incoming patch
// is already a change set; the processor applies it to the tree, then
// invokes middleware write-back for every added or updated instance. Per
// spec.md §7, a partially-applicable patch applies the applicable prefix
// and reports which records were rejected; subscribers still see the
// applied prefix.
func (p *Processor) HandlePatch(patch api.Patch) api.PatchResult {
	result := api.PatchResult{}
	var applied diff.ChangeSet
	var writeBack []tree.Ref

	for i, rec := range patch.Changes {
		change, ref, err := p.applyPatchRecord(rec)
		if err != nil {
			result.Rejected = append(result.Rejected, fmt.Sprintf("record %d (%s): %v", i, rec.Kind, err))
			continue
		}
		applied = append(applied, change)
		result.Applied++
		if rec.Kind != api.Removed {
			writeBack = append(writeBack, ref)
		}
	}

	if len(applied) > 0 {
		wire := applied.ToWire(func(ref uint64) string { return p.RefToID(tree.Ref(ref)) })
		p.Queue.PushExcept(wire, patch.ClientID)
		p.notifyChanged()
	}

	for _, ref := range writeBack {
		p.writeBackInstance(ref)
	}

	return result
}

// applyPatchRecord applies a single wire ChangeRecord to the tree and
// returns the diff.Change used to render the echo sent back to other
// subscribers.
func (p *Processor) applyPatchRecord(rec api.ChangeRecord) (diff.Change, tree.Ref, error) {
	switch rec.Kind {
	case api.Added:
		parentRef, ok := p.IDToRef(rec.ParentID)
		if !ok {
			return diff.Change{}, 0, fmt.Errorf("unknown parent id %q", rec.ParentID)
		}
		if rec.Snapshot == nil {
			return diff.Change{}, 0, fmt.Errorf("added record missing snapshot")
		}
		pending := wireSnapshotToPending(rec.Snapshot)
		ref, err := p.Tree.Insert(parentRef, pending)
		if err != nil {
			return diff.Change{}, 0, err
		}
		return diff.Change{Kind: api.Added, ParentRef: uint64(parentRef), Snapshot: pending}, ref, nil

	case api.Removed:
		ref, ok := p.IDToRef(rec.ID)
		if !ok {
			return diff.Change{}, 0, fmt.Errorf("unknown id %q", rec.ID)
		}
		if err := p.Tree.Remove(ref); err != nil {
			return diff.Change{}, 0, err
		}
		return diff.Change{Kind: api.Removed, Ref: uint64(ref)}, ref, nil

	case api.Updated:
		ref, ok := p.IDToRef(rec.ID)
		if !ok {
			return diff.Change{}, 0, fmt.Errorf("unknown id %q", rec.ID)
		}
		if err := p.Tree.UpdateProperties(ref, rec.Delta); err != nil {
			return diff.Change{}, 0, err
		}
		return diff.Change{Kind: api.Updated, Ref: uint64(ref), Delta: rec.Delta}, ref, nil

	default:
		return diff.Change{}, 0, fmt.Errorf("unrecognized change kind %q", rec.Kind)
	}
}

func wireSnapshotToPending(s *api.Snapshot) *diff.PendingSnapshot {
	if s == nil {
		return nil
	}
	children := make([]*diff.PendingSnapshot, 0, len(s.Children))
	for i := range s.Children {
		children = append(children, wireSnapshotToPending(&s.Children[i]))
	}
	return &diff.PendingSnapshot{
		Name:       s.Name,
		Class:      s.Class,
		Properties: s.Properties,
		Children:   children,
	}
}

// writeBackInstance invokes middleware write-back for ref (spec.md §4.2.2,
// §4.4). Script classes write Source to their own file; every class's
// remaining (non-path-based) properties are folded into the instance's
// data sidecar, matching the schema that sidecar was read with. An
// instance with no sidecar path of record yet gets one materialized next
// to its parent's path, per snapshot.SidecarPathFor's naming convention.
// An instance whose parent itself has no path of record (e.g. it too was
// created purely in-memory by an earlier, still-unwritten patch) is left
// without a sidecar, and a script instance with no script file of record,
// or whose script write fails, is not written back at all.
func (p *Processor) writeBackInstance(ref tree.Ref) {
	inst, err := p.Tree.Get(ref)
	if err != nil {
		return
	}

	paths := p.Tree.PathsOf(ref)

	remaining := inst.Properties
	if isWritableClass(inst.Class) {
		scriptPath := primaryScriptPath(paths)
		if scriptPath == "" {
			return
		}
		r, err := p.Snapshotter.WriteBack(scriptPath, inst.Class, inst.Properties)
		if err != nil {
			return
		}
		remaining = r
	}

	if len(remaining) == 0 {
		return
	}

	sidecarPath := primarySidecarPath(paths)
	if sidecarPath == "" {
		sidecarPath = p.newSidecarPath(inst)
		if sidecarPath == "" {
			return
		}
	}

	structured := p.Snapshotter.SidecarIsStructured(sidecarPath)
	_ = p.Snapshotter.WriteBackSidecar(sidecarPath, inst.Class, remaining, structured)
}

// newSidecarPath materializes a fresh data-sidecar path for an instance
// that has no path of record yet, anchored on its parent directory's path.
func (p *Processor) newSidecarPath(inst tree.Instance) string {
	if inst.Parent == nil {
		return snapshot.SidecarPathFor(".", inst.Name)
	}
	parentPaths := p.Tree.PathsOf(*inst.Parent)
	if len(parentPaths) == 0 {
		return ""
	}
	return snapshot.SidecarPathFor(parentPaths[0], inst.Name)
}

func isWritableClass(class string) bool {
	switch class {
	case "Script", "LocalScript", "ModuleScript":
		return true
	default:
		return false
	}
}

func primaryScriptPath(paths []string) string {
	for _, p := range paths {
		if strings.HasSuffix(p, ".luau") || strings.HasSuffix(p, ".lua") {
			return p
		}
	}
	return ""
}

func primarySidecarPath(paths []string) string {
	for _, p := range paths {
		if strings.HasSuffix(p, ".data.json") || strings.HasSuffix(p, ".meta.json") {
			return p
		}
	}
	return ""
}
