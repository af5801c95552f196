package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/diff"
	"github.com/argonsync/argon/internal/meta"
	"github.com/argonsync/argon/internal/processor"
	"github.com/argonsync/argon/internal/queue"
	"github.com/argonsync/argon/internal/reflection"
	"github.com/argonsync/argon/internal/snapshot"
	"github.com/argonsync/argon/internal/tree"
	"github.com/argonsync/argon/internal/vfs"
)

// BuildCodec encodes a subtree into a model file (binary or XML), per
// spec.md §1's explicit scoping ("specific serialization formats for the
// model file" are out of scope). Left as a function-variable seam, same
// pattern as internal/snapshot.ModelCodec.
var BuildCodec func(roots []api.Snapshot) ([]byte, error)

// Core is the single façade a CLI command or HTTP handler reaches into,
// ported from original_source/src/core/mod.rs's `Core` struct: project
// identity, the tree, the queue, and the three read-side exports
// (snapshot, build, sourcemap).
type Core struct {
	Name     string
	Host     string
	Port     uint16
	GameID   *uint64
	PlaceIDs []uint64
	IsPlace  bool

	Tree      *tree.Tree
	Queue     *queue.Queue
	Processor *processor.Processor
	VFS       vfs.Vfs

	rootMeta meta.Meta
}

// New builds a Core from a loaded project, per
// original_source/src/core/mod.rs's `Core::new`. It resolves the project
// filesystem, computes the root snapshot, and wires a Processor over a
// fresh Tree and Queue. watch controls whether the VFS starts a live
// fsnotify watcher (false for one-shot CLI commands like `build`).
func New(ctx context.Context, project *api.Project, watch bool) (*Core, error) {
	fs, err := vfs.New(project.Path, watch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	rootMeta := meta.FromProject(project)
	snapper := snapshot.New(fs)

	rootSnap, err := snapper.Snapshot(".", rootMeta)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if rootSnap == nil {
		rootSnap = &diff.PendingSnapshot{Name: rootMeta.ProjectName, Class: "DataModel", Paths: []string{"."}}
	}

	t := tree.New(rootSnap)

	if project.IsPlace() {
		markPlaceRoots(t, t.Root())
	}

	q := queue.New(0)
	proc := processor.New(t, snapper, q, rootMeta)

	c := &Core{
		Name:      project.Name,
		Host:      project.Host,
		Port:      project.Port,
		GameID:    project.GameID,
		PlaceIDs:  project.PlaceIDs,
		IsPlace:   project.IsPlace(),
		Tree:      t,
		Queue:     q,
		Processor: proc,
		VFS:       fs,
		rootMeta:  rootMeta,
	}

	if watch {
		go proc.Run(ctx, fs.Watch())
	}

	return c, nil
}

// markPlaceRoots registers every direct child of root whose class is a
// service as a place root, per spec.md §3's "for place projects, a set of
// place-root referents (the services that form the top of the hierarchy)."
func markPlaceRoots(t *tree.Tree, root tree.Ref) {
	inst, err := t.Get(root)
	if err != nil {
		return
	}
	for _, child := range inst.Children {
		childInst, err := t.Get(child)
		if err != nil {
			continue
		}
		if reflection.IsService(childInst.Class) {
			t.MarkPlaceRoot(child)
		}
	}
}

// TreeChanged exposes the processor's broadcast channel, per spec.md
// §4.4's "Emission" step.
func (c *Core) TreeChanged() <-chan struct{} {
	return c.Processor.TreeChanged
}

// Details implements the GET /details endpoint's payload (spec.md §6).
func (c *Core) Details() api.Details {
	return api.Details{
		Name:        c.Name,
		GameID:      c.GameID,
		PlaceIDs:    c.PlaceIDs,
		ProjectRoot: c.rootMeta.ProjectName,
	}
}

// Snapshot implements GET /snapshot (spec.md §6): the full tree rendered
// into the wire Snapshot schema. Uses RLockBackoff so a long export does
// not starve the processor (spec.md §5).
func (c *Core) Snapshot(ctx context.Context) (api.Snapshot, error) {
	release, err := c.Tree.RLockBackoff(ctx)
	if err != nil {
		return api.Snapshot{}, err
	}
	defer release()

	return c.renderSnapshot(c.Tree.Root())
}

func (c *Core) renderSnapshot(ref tree.Ref) (api.Snapshot, error) {
	inst, err := c.Tree.Get(ref)
	if err != nil {
		return api.Snapshot{}, fmt.Errorf("%w: %v", ErrUnknownReferent, err)
	}

	snap := api.Snapshot{
		ID:         c.Processor.RefToID(ref),
		Name:       inst.Name,
		Class:      inst.Class,
		Properties: inst.Properties,
	}
	for _, childRef := range inst.Children {
		childSnap, err := c.renderSnapshot(childRef)
		if err != nil {
			continue
		}
		snap.Children = append(snap.Children, childSnap)
	}
	return snap, nil
}

// Build implements the `build` export (spec.md §6): for place projects,
// every place-root subtree; for model projects, the single root subtree.
func (c *Core) Build(ctx context.Context) ([]byte, error) {
	release, err := c.Tree.RLockBackoff(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var roots []tree.Ref
	if c.IsPlace {
		roots = c.Tree.PlaceRoots()
	} else {
		roots = []tree.Ref{c.Tree.Root()}
	}

	snaps := make([]api.Snapshot, 0, len(roots))
	for _, ref := range roots {
		snap, err := c.renderSnapshot(ref)
		if err != nil {
			continue
		}
		snaps = append(snaps, snap)
	}

	if BuildCodec == nil {
		return nil, fmt.Errorf("%w: no build codec installed", ErrIO)
	}
	return BuildCodec(snaps)
}

// Sourcemap implements GET sourcemap export (spec.md §6): a node is
// included when it (a) has a retained descendant, (b) is a script class,
// or (c) nonScripts is set. filePaths are sorted by descending length.
func (c *Core) Sourcemap(ctx context.Context, nonScripts bool) (*api.SourcemapNode, error) {
	release, err := c.Tree.RLockBackoff(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	node, retained := c.renderSourcemap(c.Tree.Root(), nonScripts)
	if !retained {
		return nil, nil
	}
	return node, nil
}

func (c *Core) renderSourcemap(ref tree.Ref, nonScripts bool) (*api.SourcemapNode, bool) {
	inst, err := c.Tree.Get(ref)
	if err != nil {
		return nil, false
	}

	node := &api.SourcemapNode{Name: inst.Name, ClassName: inst.Class}

	hasRetainedDescendant := false
	for _, childRef := range inst.Children {
		childNode, retained := c.renderSourcemap(childRef, nonScripts)
		if !retained {
			continue
		}
		hasRetainedDescendant = true
		node.Children = append(node.Children, *childNode)
	}

	isScript := reflection.IsScript(inst.Class)
	retained := hasRetainedDescendant || isScript || nonScripts
	if !retained {
		return nil, false
	}

	paths := c.Tree.PathsOf(ref)
	sort.SliceStable(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) > len(paths[j])
		}
		return paths[i] < paths[j]
	})
	node.FilePaths = paths

	return node, true
}
