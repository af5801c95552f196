// Package processor implements spec.md §4.4: the single-consumer event
// loop that consumes filesystem events and remote patches, recomputes
// snapshots via the middleware, diffs them against the tree, applies the
// result, and enqueues it for subscribers. Grounded on
// internal/graph/arena_writer.go's single-writer-goroutine-with-stopCh
// shape, generalized from "ingest one file into the graph" to "reconcile
// one FS event or patch into the instance tree."
package processor

import (
	"context"
	"log"
	"path"
	"strconv"
	"sync"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/diff"
	"github.com/argonsync/argon/internal/meta"
	"github.com/argonsync/argon/internal/queue"
	"github.com/argonsync/argon/internal/snapshot"
	"github.com/argonsync/argon/internal/tree"
	"github.com/argonsync/argon/internal/vfs"
)

// Processor owns the event loop described in spec.md §4.4. One logical
// tick processes one FS event or one patch end-to-end.
type Processor struct {
	Tree       *tree.Tree
	Snapshotter *snapshot.Snapshotter
	Queue      *queue.Queue
	RootMeta   meta.Meta

	// TreeChanged is signaled (non-blocking) after every applied change
	// set, per spec.md §4.4's "Emission" — a broadcast notification with
	// no payload, for waking idle consumers.
	TreeChanged chan struct{}

	idMu   sync.Mutex // guards refIDs, idRefs and nextID
	refIDs map[tree.Ref]string
	idRefs map[string]tree.Ref
	nextID uint64
}

// New builds a Processor over an already-constructed tree.
func New(t *tree.Tree, snap *snapshot.Snapshotter, q *queue.Queue, rootMeta meta.Meta) *Processor {
	return &Processor{
		Tree:        t,
		Snapshotter: snap,
		Queue:       q,
		RootMeta:    rootMeta,
		TreeChanged: make(chan struct{}, 1),
		refIDs:      make(map[tree.Ref]string),
		idRefs:      make(map[string]tree.Ref),
	}
}

// RefToID renders a referent as the opaque wire ID spec.md §6's Snapshot
// schema exposes, minting one on first use.
func (p *Processor) RefToID(ref tree.Ref) string {
	p.idMu.Lock()
	defer p.idMu.Unlock()
	if id, ok := p.refIDs[ref]; ok {
		return id
	}
	p.nextID++
	id := strconv.FormatUint(p.nextID, 36)
	p.refIDs[ref] = id
	p.idRefs[id] = ref
	return id
}

// IDToRef resolves a wire ID back to a referent.
func (p *Processor) IDToRef(id string) (tree.Ref, bool) {
	p.idMu.Lock()
	defer p.idMu.Unlock()
	ref, ok := p.idRefs[id]
	return ref, ok
}

func (p *Processor) notifyChanged() {
	select {
	case p.TreeChanged <- struct{}{}:
	default:
	}
}

// Run drains fsEvents until ctx is canceled, processing one event per tick
// (spec.md §4.4). It is meant to run on the single processor goroutine;
// callers handle patches via HandlePatch from HTTP handler goroutines,
// which is safe because Tree and Queue each hold their own lock (spec.md
// §5) and the wire-ID maps are guarded by idMu.
func (p *Processor) Run(ctx context.Context, fsEvents <-chan vfs.FsEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsEvents:
			if !ok {
				return
			}
			p.HandleFSEvent(ev)
		}
	}
}

// HandleFSEvent implements spec.md §4.4's FS event handling table.
func (p *Processor) HandleFSEvent(ev vfs.FsEvent) {
	switch ev.Kind {
	case vfs.Removed:
		p.handleRemoved(ev.Path)
	case vfs.Created, vfs.Modified:
		p.handleUpsert(ev.Path)
	}
}

// handleUpsert covers both Created and Modified: both recompute a snapshot
// at an anchor path and diff it in. They differ only in how the anchor is
// chosen (deepest already-indexed ancestor vs. smallest enclosing instance
// path) — in this implementation, both resolve to the nearest ancestor
// directory already present in the tree's path index, which is the
// smallest enclosing instance for an edited file and the deepest existing
// ancestor for a newly created one.
func (p *Processor) handleUpsert(changedPath string) {
	anchor, ref, ok := p.nearestIndexedAncestor(changedPath)
	if !ok {
		log.Printf("processor: no indexed ancestor for %s, dropping event", changedPath)
		return
	}

	inst, err := p.Tree.Get(ref)
	if err != nil {
		log.Printf("processor: %v", err)
		return
	}

	newSnap, err := p.Snapshotter.Snapshot(anchor, p.RootMeta)
	if err != nil {
		log.Printf("processor: snapshot %s: %v", anchor, err)
		return
	}
	if newSnap == nil {
		// Now ignored (e.g. a newly-added ignore glob, or a sync rule
		// change) — treat as removal of whatever was there.
		p.handleRemoved(anchor)
		return
	}

	oldView, err := p.Tree.SnapshotView(ref)
	if err != nil {
		log.Printf("processor: %v", err)
		return
	}

	var parentRef uint64
	if inst.Parent != nil {
		parentRef = uint64(*inst.Parent)
	}

	changeSet := diff.Diff(parentRef, []diff.OldChild{oldView}, []*diff.PendingSnapshot{newSnap})
	p.apply(changeSet)
}

// nearestIndexedAncestor walks changedPath's ancestor directories (using
// forward-slash path semantics, matching the VFS's path convention) until
// it finds one with a live referent in the tree's path index.
func (p *Processor) nearestIndexedAncestor(changedPath string) (string, tree.Ref, bool) {
	current := changedPath
	for {
		if refs := p.Tree.RefsAt(current); len(refs) > 0 {
			return current, refs[0], true
		}
		parent := path.Dir(current)
		if parent == current || parent == "." {
			if refs := p.Tree.RefsAt("."); len(refs) > 0 {
				return ".", refs[0], true
			}
			return "", 0, false
		}
		current = parent
	}
}

// handleRemoved implements spec.md §4.4's Removed(path) rule: every
// referent whose sole defining path was under path is removed.
func (p *Processor) handleRemoved(removedPath string) {
	removed, err := p.Tree.RemoveUnderPath(removedPath)
	if err != nil {
		log.Printf("processor: remove %s: %v", removedPath, err)
		return
	}
	if len(removed) == 0 {
		return
	}

	cs := make(diff.ChangeSet, 0, len(removed))
	for _, ref := range removed {
		cs = append(cs, diff.Change{Kind: api.Removed, Ref: uint64(ref)})
	}
	p.apply(cs)
}

// apply inserts/removes/updates the tree per cs, then enqueues the wire
// form for subscribers and signals TreeChanged, per spec.md §3 invariant 4
// ("no subscriber observes the tree mid-apply") and §4.4's emission step.
// Applying the whole set before pushing keeps the two operations within
// one logical tick so the tree-lock and queue-lock critical sections never
// interleave with a partial change set.
func (p *Processor) apply(cs diff.ChangeSet) {
	if len(cs) == 0 {
		return
	}

	for _, c := range cs {
		switch c.Kind {
		case api.Added:
			if _, err := p.Tree.Insert(tree.Ref(c.ParentRef), c.Snapshot); err != nil {
				log.Printf("processor: insert under %d: %v", c.ParentRef, err)
			}
		case api.Removed:
			if err := p.Tree.Remove(tree.Ref(c.Ref)); err != nil {
				log.Printf("processor: remove %d: %v", c.Ref, err)
			}
		case api.Updated:
			if err := p.Tree.UpdateProperties(tree.Ref(c.Ref), c.Delta); err != nil {
				log.Printf("processor: update %d: %v", c.Ref, err)
			}
		}
	}

	wire := cs.ToWire(func(ref uint64) string { return p.RefToID(tree.Ref(ref)) })
	p.Queue.Push(wire)
	p.notifyChanged()
}
