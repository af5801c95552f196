// Package diff implements the structural diff primitives spec.md §3/§4.4
// describe: Added/Removed/Updated change records, and the pairing
// algorithm that produces them from two sibling lists.
package diff

import "github.com/argonsync/argon/api"

// Change is one entry of a change set, mirroring api.ChangeRecord but with
// Go-native fields (PendingSnapshot is the not-yet-inserted subtree
// description, since a Change produced by Diff has no referent yet).
type Change struct {
	Kind     api.ChangeKind
	Ref      uint64 // valid for Removed/Updated
	ParentRef uint64 // valid for Added
	Snapshot  *PendingSnapshot // valid for Added
	Delta     map[string]api.TaggedValue // valid for Updated
}

// PendingSnapshot is the transient subtree description the snapshot
// middleware produces and Diff consumes. It is defined here rather than in
// internal/snapshot, which imports this package for it, so the dependency
// stays one-directional.
type PendingSnapshot struct {
	Name       string
	Class      string
	Properties map[string]api.TaggedValue
	Children   []*PendingSnapshot
	Paths      []string
}

// ChangeSet is an ordered, atomically-applied batch of Changes
// (spec.md §3, §4.4, §4.5).
type ChangeSet []Change

// ToWire converts a ChangeSet to its JSON wire representation. refToID
// renders a referent as the opaque string IDs the HTTP API exposes.
func (cs ChangeSet) ToWire(refToID func(uint64) string) api.ChangeSet {
	wire := make(api.ChangeSet, 0, len(cs))
	for _, c := range cs {
		rec := api.ChangeRecord{Kind: c.Kind}
		switch c.Kind {
		case api.Added:
			rec.ParentID = refToID(c.ParentRef)
			rec.Snapshot = pendingToWireSnapshot(c.Snapshot, refToID)
		case api.Removed:
			rec.ID = refToID(c.Ref)
		case api.Updated:
			rec.ID = refToID(c.Ref)
			rec.Delta = c.Delta
		}
		wire = append(wire, rec)
	}
	return wire
}

func pendingToWireSnapshot(s *PendingSnapshot, refToID func(uint64) string) *api.Snapshot {
	if s == nil {
		return nil
	}
	children := make([]api.Snapshot, 0, len(s.Children))
	for _, c := range s.Children {
		if ws := pendingToWireSnapshot(c, refToID); ws != nil {
			children = append(children, *ws)
		}
	}
	return &api.Snapshot{
		Name:       s.Name,
		Class:      s.Class,
		Properties: s.Properties,
		Children:   children,
	}
}
