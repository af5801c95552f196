package processor

import (
	"context"
	"testing"
	"time"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/diff"
	"github.com/argonsync/argon/internal/meta"
	"github.com/argonsync/argon/internal/queue"
	"github.com/argonsync/argon/internal/snapshot"
	"github.com/argonsync/argon/internal/tree"
	"github.com/argonsync/argon/internal/vfs"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T) (*Processor, vfs.Vfs) {
	t.Helper()
	fs := memfs.New()
	v := vfs.NewFromFilesystem(fs, false)
	snap := snapshot.New(v)

	root := &diff.PendingSnapshot{Name: "game", Class: "DataModel", Paths: []string{"."}}
	tr := tree.New(root)

	q := queue.New(0)
	p := New(tr, snap, q, meta.Meta{})
	return p, v
}

// S2 from spec.md §9: given an instance Part with Transparency=0,
// POST /write [{Updated, ref, {Transparency: 0.5}}]. Expected: tree
// updated; change set broadcast to other subscribers only (not the
// author); the Part's data sidecar rewritten with the new property value.
func TestPatchUpdatePropertyBroadcastsExceptAuthor(t *testing.T) {
	p, v := newTestProcessor(t)

	root := p.Tree.Root()
	ref, err := p.Tree.Insert(root, &diff.PendingSnapshot{
		Name: "Part", Class: "Part", Paths: []string{"Part.data.json"},
		Properties: map[string]api.TaggedValue{"Transparency": {Type: api.TypeFloat32, Value: float32(0)}},
	})
	require.NoError(t, err)

	id := p.RefToID(ref)

	const author = uint64(1)
	const observer = uint64(2)
	p.Queue.Subscribe(author)
	p.Queue.Subscribe(observer)

	result := p.HandlePatch(api.Patch{
		ClientID: author,
		Changes: api.ChangeSet{
			{Kind: api.Updated, ID: id, Delta: map[string]api.TaggedValue{
				"Transparency": {Type: api.TypeFloat32, Value: float32(0.5)},
			}},
		},
	})
	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, result.Rejected)

	inst, err := p.Tree.Get(ref)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), inst.Properties["Transparency"].Value)

	authorDrain, err := p.Queue.Drain(context.Background(), author, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, authorDrain)

	observerDrain, err := p.Queue.Drain(context.Background(), observer, 20*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, observerDrain, 1)

	sidecar, err := v.ReadText("Part.data.json")
	require.NoError(t, err)
	assert.Contains(t, sidecar, `"className": "Part"`)
	assert.Contains(t, sidecar, `"Transparency": 0.5`)
}

// S3 from spec.md §9: rename src/foo.luau to src/bar.luau. Expected: two
// change records Removed(ref_foo) and Added(parent=src,
// {name:"bar", class:"ModuleScript", ...}); path index no longer contains
// src/foo.luau.
func TestRenameScenario(t *testing.T) {
	p, v := newTestProcessor(t)
	root := p.Tree.Root()

	srcRef, err := p.Tree.Insert(root, &diff.PendingSnapshot{
		Name: "src", Class: "Folder", Paths: []string{"src"},
	})
	require.NoError(t, err)

	require.NoError(t, v.Write("src/foo.luau", []byte("return {}")))
	fooRef, err := p.Tree.Insert(srcRef, &diff.PendingSnapshot{
		Name: "foo", Class: "ModuleScript", Paths: []string{"src/foo.luau"},
		Properties: map[string]api.TaggedValue{"Source": {Type: api.TypeString, Value: "return {}"}},
	})
	require.NoError(t, err)

	p.HandleFSEvent(vfs.FsEvent{Kind: vfs.Removed, Path: "src/foo.luau"})
	assert.Empty(t, p.Tree.RefsAt("src/foo.luau"))
	_, err = p.Tree.Get(fooRef)
	assert.Error(t, err)

	require.NoError(t, v.Write("src/bar.luau", []byte("return {}")))
	p.HandleFSEvent(vfs.FsEvent{Kind: vfs.Created, Path: "src/bar.luau"})

	barRefs := p.Tree.RefsAt("src/bar.luau")
	require.Len(t, barRefs, 1)
	inst, err := p.Tree.Get(barRefs[0])
	require.NoError(t, err)
	assert.Equal(t, "bar", inst.Name)
	assert.Equal(t, "ModuleScript", inst.Class)
}
