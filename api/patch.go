package api

// ChangeKind tags a ChangeRecord as an addition, removal, or property
// update, per spec.md §3's Change set definition.
type ChangeKind string

const (
	Added   ChangeKind = "Added"
	Removed ChangeKind = "Removed"
	Updated ChangeKind = "Updated"

	// Resync is the sentinel kind a client receives in place of backlog
	// history the queue evicted, per spec.md §4.5: the client must refetch
	// a full snapshot rather than try to apply it as a normal change.
	Resync ChangeKind = "Resync"
)

// deletedSentinel is the TaggedValue used inside a PropertyDelta to mark a
// property for removal, per spec.md §3 ("a sentinel for deletion").
const deletedSentinel = "__argon_deleted__"

// Deleted returns the property-delta sentinel value that marks a property
// for removal rather than replacement.
func Deleted() TaggedValue {
	return TaggedValue{Type: deletedSentinel}
}

// IsDeleted reports whether v is the deletion sentinel.
func IsDeleted(v TaggedValue) bool {
	return v.Type == deletedSentinel
}

// ChangeRecord is the wire shape of a single entry in a change set. Only the
// fields relevant to Kind are populated:
//   - Added:   ParentID + Snapshot
//   - Removed: ID
//   - Updated: ID + Delta
type ChangeRecord struct {
	Kind     ChangeKind             `json:"kind"`
	ID       string                 `json:"id,omitempty"`
	ParentID string                 `json:"parent_id,omitempty"`
	Snapshot *Snapshot              `json:"snapshot,omitempty"`
	Delta    map[string]TaggedValue `json:"delta,omitempty"`
}

// ChangeSet is an ordered, atomically-applied batch of ChangeRecords
// (spec.md §3, §4.4, §4.5).
type ChangeSet []ChangeRecord

// Patch is the request body for POST /write (spec.md §6): a change set
// submitted by a client to be applied to the tree.
type Patch struct {
	ClientID uint64    `json:"client_id"`
	Changes  ChangeSet `json:"patch"`
}

// PatchResult reports which records of a submitted patch were rejected, per
// spec.md §7's "partially-applicable patches apply the applicable prefix".
type PatchResult struct {
	Applied  int      `json:"applied"`
	Rejected []string `json:"rejected,omitempty"`
}
