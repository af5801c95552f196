package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/diff"
)

// Sentinel error kinds, per spec.md §7.
var (
	ErrUnknownParent   = errors.New("tree: unknown parent")
	ErrUnknownReferent = errors.New("tree: unknown referent")
)

// Tree is spec.md §4.3's in-memory instance DAG: referent -> instance, plus
// a path <-> referent-set bijective index.
type Tree struct {
	mu sync.RWMutex

	nodes     map[Ref]*Instance
	root      Ref
	placeRoot []Ref

	// Path index, mirroring internal/graph.MemoryStore's
	// fileToNodes/nodeIntID/intToNodeID pattern: path -> bitmap of internal
	// uint32 IDs, plus the Ref<->uint32 mapping that makes the bitmap
	// cheap to intersect/clear.
	pathToInt   map[string]*roaring.Bitmap
	refToInt    map[Ref]uint32
	intToRef    []Ref
	nextInt     uint32
	pathsOfRef  map[Ref]map[string]struct{}

	nextRef uint64 // atomic counter minting new referents
}

// New creates a Tree whose root instance is described by rootSnapshot (the
// first snapshot computed at the project's root path, per
// original_source/src/core/mod.rs's `Core::new`).
func New(rootSnapshot *diff.PendingSnapshot) *Tree {
	t := &Tree{
		nodes:      make(map[Ref]*Instance),
		pathToInt:  make(map[string]*roaring.Bitmap),
		refToInt:   make(map[Ref]uint32),
		pathsOfRef: make(map[Ref]map[string]struct{}),
	}

	root := t.mintRef()
	t.root = root
	t.insertSubtreeLocked(nil, root, rootSnapshot)
	return t
}

func (t *Tree) mintRef() Ref {
	return Ref(atomic.AddUint64(&t.nextRef, 1))
}

// Root returns the root referent.
func (t *Tree) Root() Ref {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// PlaceRoots returns the place-root referents (spec.md §3): services that
// form the top of the hierarchy for a place project. Empty for model
// projects.
func (t *Tree) PlaceRoots() []Ref {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Ref(nil), t.placeRoot...)
}

// MarkPlaceRoot registers ref as a place root.
func (t *Tree) MarkPlaceRoot(ref Ref) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.placeRoot = append(t.placeRoot, ref)
}

// Get returns a defensive-copy view of the instance at ref.
func (t *Tree) Get(ref Ref) (Instance, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	inst, ok := t.nodes[ref]
	if !ok {
		return Instance{}, fmt.Errorf("%w: %d", ErrUnknownReferent, ref)
	}
	return inst.clone(), nil
}

// PathsOf returns the set of paths whose last snapshot contributed to ref
// (spec.md §4.3, Testable Property 4).
func (t *Tree) PathsOf(ref Ref) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set := t.pathsOfRef[ref]
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// RefsAt returns every referent produced (in whole or in part) by path.
func (t *Tree) RefsAt(path string) []Ref {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.refsAtLocked(path)
}

func (t *Tree) refsAtLocked(path string) []Ref {
	bm, ok := t.pathToInt[path]
	if !ok {
		return nil
	}
	var out []Ref
	it := bm.Iterator()
	for it.HasNext() {
		id := it.Next()
		if int(id) < len(t.intToRef) {
			out = append(out, t.intToRef[id])
		}
	}
	return out
}

// Insert allocates referents for snapshot's whole subtree under parent and
// links them in, per spec.md §4.3's `insert(parent_ref, snapshot) -> ref`.
// It fails with ErrUnknownParent when parent is absent, per spec.md §7.
func (t *Tree) Insert(parent Ref, snap *diff.PendingSnapshot) (Ref, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.nodes[parent]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownParent, parent)
	}

	ref := t.mintRef()
	t.insertSubtreeLocked(&parent, ref, snap)

	parentInst := t.nodes[parent]
	parentInst.Children = append(parentInst.Children, ref)

	return ref, nil
}

func (t *Tree) insertSubtreeLocked(parent *Ref, ref Ref, snap *diff.PendingSnapshot) {
	inst := &Instance{
		Ref:        ref,
		Name:       snap.Name,
		Class:      snap.Class,
		Properties: cloneProps(snap.Properties),
		Parent:     parent,
	}
	t.nodes[ref] = inst

	for _, p := range snap.Paths {
		t.indexPathLocked(p, ref)
	}

	for _, childSnap := range snap.Children {
		childRef := t.mintRef()
		t.insertSubtreeLocked(&ref, childRef, childSnap)
		inst.Children = append(inst.Children, childRef)
	}
}

func (t *Tree) indexPathLocked(path string, ref Ref) {
	intID, ok := t.refToInt[ref]
	if !ok {
		intID = t.nextInt
		t.nextInt++
		t.refToInt[ref] = intID
		for uint32(len(t.intToRef)) <= intID {
			t.intToRef = append(t.intToRef, 0)
		}
		t.intToRef[intID] = ref
	}

	bm, ok := t.pathToInt[path]
	if !ok {
		bm = roaring.New()
		t.pathToInt[path] = bm
	}
	bm.Add(intID)

	if t.pathsOfRef[ref] == nil {
		t.pathsOfRef[ref] = make(map[string]struct{})
	}
	t.pathsOfRef[ref][path] = struct{}{}
}

// Remove deletes ref's entire subtree and purges path index entries owned
// exclusively by the removed referents, per spec.md §4.3's `remove(ref)`.
func (t *Tree) Remove(ref Ref) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeLocked(ref)
}

func (t *Tree) removeLocked(ref Ref) error {
	inst, ok := t.nodes[ref]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownReferent, ref)
	}

	for _, child := range inst.Children {
		_ = t.removeLocked(child)
	}

	for p := range t.pathsOfRef[ref] {
		if bm, ok := t.pathToInt[p]; ok {
			if intID, ok := t.refToInt[ref]; ok {
				bm.Remove(intID)
			}
			if bm.IsEmpty() {
				delete(t.pathToInt, p)
			}
		}
	}
	delete(t.pathsOfRef, ref)
	if intID, ok := t.refToInt[ref]; ok {
		delete(t.refToInt, ref)
		if int(intID) < len(t.intToRef) {
			t.intToRef[intID] = 0
		}
	}

	if inst.Parent != nil {
		if parent, ok := t.nodes[*inst.Parent]; ok {
			parent.Children = removeRef(parent.Children, ref)
		}
	}

	delete(t.nodes, ref)
	return nil
}

// RemoveUnderPath removes every referent whose entire set of defining paths
// falls under pathPrefix (equal to it, or nested beneath it), per spec.md
// §4.4's `Removed(path)` handling: "for every referent whose sole defining
// path was under path, emit Removed." A referent that also has a defining
// path outside pathPrefix (e.g. a script whose sidecar lives elsewhere) is
// left in place; only pathPrefix's ownership of it is dropped.
func (t *Tree) RemoveUnderPath(pathPrefix string) ([]Ref, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	affected := map[Ref]struct{}{}
	for p, bm := range t.pathToInt {
		if !underPath(p, pathPrefix) {
			continue
		}
		it := bm.Iterator()
		for it.HasNext() {
			id := it.Next()
			if int(id) < len(t.intToRef) {
				affected[t.intToRef[id]] = struct{}{}
			}
		}
	}

	var removed []Ref
	for ref := range affected {
		solelyUnder := true
		for p := range t.pathsOfRef[ref] {
			if !underPath(p, pathPrefix) {
				solelyUnder = false
				break
			}
		}
		if !solelyUnder {
			// Drop only this prefix's ownership; keep the instance.
			for p := range t.pathsOfRef[ref] {
				if underPath(p, pathPrefix) {
					if bm, ok := t.pathToInt[p]; ok {
						if intID, ok := t.refToInt[ref]; ok {
							bm.Remove(intID)
						}
						if bm.IsEmpty() {
							delete(t.pathToInt, p)
						}
					}
					delete(t.pathsOfRef[ref], p)
				}
			}
			continue
		}
		if err := t.removeLocked(ref); err != nil && !errors.Is(err, ErrUnknownReferent) {
			return removed, err
		}
		removed = append(removed, ref)
	}
	return removed, nil
}

func underPath(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// UpdateProperties applies a property delta to ref, per spec.md §4.3's
// `update_properties(ref, delta)`. Entries equal to api.Deleted() remove
// the property; all others add or replace it.
func (t *Tree) UpdateProperties(ref Ref, delta map[string]api.TaggedValue) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	inst, ok := t.nodes[ref]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownReferent, ref)
	}
	if inst.Properties == nil {
		inst.Properties = make(map[string]api.TaggedValue)
	}
	for name, val := range delta {
		if api.IsDeleted(val) {
			delete(inst.Properties, name)
		} else {
			inst.Properties[name] = val
		}
	}
	return nil
}

// RLockBackoff acquires the tree's read lock via polling-with-backoff
// (try-lock in a loop with a short sleep) rather than blocking on the
// fair RWMutex queue, so a long-lived export reader (build, sourcemap)
// cannot starve the processor's writer — spec.md §5's "polling acquisition
// with backoff", ported from original_source/src/util.rs's
// `wait_for_mutex`. The returned release func must be called exactly once.
func (t *Tree) RLockBackoff(ctx context.Context) (release func(), err error) {
	const interval = time.Millisecond
	for {
		if t.mu.TryRLock() {
			return t.mu.RUnlock, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// SnapshotView returns the current tree as diff.OldChild, suitable as Diff's
// "old" argument, rooted at ref.
func (t *Tree) SnapshotView(ref Ref) (diff.OldChild, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotViewLocked(ref)
}

func (t *Tree) snapshotViewLocked(ref Ref) (diff.OldChild, error) {
	inst, ok := t.nodes[ref]
	if !ok {
		return diff.OldChild{}, fmt.Errorf("%w: %d", ErrUnknownReferent, ref)
	}
	view := diff.OldChild{
		Ref:        uint64(ref),
		Name:       inst.Name,
		Class:      inst.Class,
		Properties: cloneProps(inst.Properties),
	}
	for _, childRef := range inst.Children {
		childView, err := t.snapshotViewLocked(childRef)
		if err != nil {
			continue
		}
		view.Children = append(view.Children, childView)
	}
	return view, nil
}

func cloneProps(props map[string]api.TaggedValue) map[string]api.TaggedValue {
	if props == nil {
		return nil
	}
	out := make(map[string]api.TaggedValue, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func removeRef(refs []Ref, target Ref) []Ref {
	out := refs[:0]
	for _, r := range refs {
		if r != target {
			out = append(out, r)
		}
	}
	return out
}
