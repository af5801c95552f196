package tree

import (
	"context"
	"testing"
	"time"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree() *Tree {
	root := &diff.PendingSnapshot{
		Name:  "game",
		Class: "DataModel",
		Paths: []string{"."},
		Children: []*diff.PendingSnapshot{
			{Name: "Script", Class: "Script", Paths: []string{"src/script.server.luau"}},
		},
	}
	return New(root)
}

func TestRefsAtIsConsistentWithPathsOf(t *testing.T) {
	tr := newTestTree()

	root := tr.Root()
	roots := tr.RefsAt(".")
	require.Contains(t, roots, root)

	for _, ref := range tr.RefsAt("src/script.server.luau") {
		paths := tr.PathsOf(ref)
		assert.Contains(t, paths, "src/script.server.luau")
	}
}

func TestInsertUnknownParentFails(t *testing.T) {
	tr := newTestTree()
	_, err := tr.Insert(Ref(999999), &diff.PendingSnapshot{Name: "x", Class: "Folder"})
	assert.ErrorIs(t, err, ErrUnknownParent)
}

func TestInsertThenGetRoundTrip(t *testing.T) {
	tr := newTestTree()
	root := tr.Root()

	ref, err := tr.Insert(root, &diff.PendingSnapshot{
		Name:  "Values",
		Class: "Folder",
		Paths: []string{"src/values"},
	})
	require.NoError(t, err)

	inst, err := tr.Get(ref)
	require.NoError(t, err)
	assert.Equal(t, "Values", inst.Name)
	assert.Contains(t, tr.RefsAt("src/values"), ref)
}

func TestRemovePurgesPathIndex(t *testing.T) {
	tr := newTestTree()
	root := tr.Root()

	ref, err := tr.Insert(root, &diff.PendingSnapshot{
		Name: "Temp", Class: "Folder", Paths: []string{"src/temp"},
	})
	require.NoError(t, err)

	require.NoError(t, tr.Remove(ref))
	assert.Empty(t, tr.RefsAt("src/temp"))

	_, err = tr.Get(ref)
	assert.ErrorIs(t, err, ErrUnknownReferent)
}

func TestRemoveUnderPathCascadesToChildren(t *testing.T) {
	tr := newTestTree()
	root := tr.Root()

	parent, err := tr.Insert(root, &diff.PendingSnapshot{
		Name: "Dir", Class: "Folder", Paths: []string{"src/dir"},
	})
	require.NoError(t, err)
	child, err := tr.Insert(parent, &diff.PendingSnapshot{
		Name: "Leaf", Class: "ModuleScript", Paths: []string{"src/dir/leaf.luau"},
	})
	require.NoError(t, err)

	removed, err := tr.RemoveUnderPath("src/dir")
	require.NoError(t, err)
	assert.Contains(t, removed, parent)
	assert.Contains(t, removed, child)

	_, err = tr.Get(child)
	assert.ErrorIs(t, err, ErrUnknownReferent)
}

func TestUpdatePropertiesAppliesDeletedSentinel(t *testing.T) {
	tr := newTestTree()
	root := tr.Root()

	ref, err := tr.Insert(root, &diff.PendingSnapshot{
		Name: "Part", Class: "Part", Paths: []string{"src/part"},
		Properties: map[string]api.TaggedValue{
			"Transparency": {Type: api.TypeFloat32, Value: float32(0.5)},
		},
	})
	require.NoError(t, err)

	err = tr.UpdateProperties(ref, map[string]api.TaggedValue{
		"Transparency": api.Deleted(),
		"Name":         {Type: api.TypeString, Value: "Part"},
	})
	require.NoError(t, err)

	inst, err := tr.Get(ref)
	require.NoError(t, err)
	_, hasTransparency := inst.Properties["Transparency"]
	assert.False(t, hasTransparency)
	assert.Equal(t, "Part", inst.Properties["Name"].Value)
}

func TestRLockBackoffAcquiresUnderContention(t *testing.T) {
	tr := newTestTree()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Hold the write lock briefly so the first try-locks fail.
	tr.mu.Lock()
	go func() {
		time.Sleep(20 * time.Millisecond)
		tr.mu.Unlock()
	}()

	release, err := tr.RLockBackoff(ctx)
	require.NoError(t, err)
	release()
}

func TestSnapshotViewMatchesTree(t *testing.T) {
	tr := newTestTree()
	view, err := tr.SnapshotView(tr.Root())
	require.NoError(t, err)
	assert.Equal(t, "game", view.Name)
	require.Len(t, view.Children, 1)
	assert.Equal(t, "Script", view.Children[0].Name)
}
