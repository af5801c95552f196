package diff

import (
	"testing"

	"github.com/argonsync/argon/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffAddedRemovedUpdated(t *testing.T) {
	old := []OldChild{
		{Ref: 1, Name: "foo", Class: "ModuleScript", Properties: map[string]api.TaggedValue{
			"Source": {Type: api.TypeString, Value: "old"},
		}},
		{Ref: 2, Name: "stale", Class: "ModuleScript"},
	}
	new := []*PendingSnapshot{
		{Name: "foo", Class: "ModuleScript", Properties: map[string]api.TaggedValue{
			"Source": {Type: api.TypeString, Value: "new"},
		}},
		{Name: "bar", Class: "ModuleScript"},
	}

	cs := Diff(0, old, new)

	var added, removed, updated int
	for _, c := range cs {
		switch c.Kind {
		case api.Added:
			added++
			assert.Equal(t, "bar", c.Snapshot.Name)
		case api.Removed:
			removed++
			assert.Equal(t, uint64(2), c.Ref)
		case api.Updated:
			updated++
			assert.Equal(t, uint64(1), c.Ref)
			require.Contains(t, c.Delta, "Source")
		}
	}

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, updated)
}

func TestDiffNoChangeProducesNoUpdated(t *testing.T) {
	old := []OldChild{{Ref: 1, Name: "foo", Class: "Folder", Properties: map[string]api.TaggedValue{}}}
	new := []*PendingSnapshot{{Name: "foo", Class: "Folder", Properties: map[string]api.TaggedValue{}}}

	cs := Diff(0, old, new)
	assert.Empty(t, cs)
}

func TestDiffDeletedPropertyUsesSentinel(t *testing.T) {
	old := []OldChild{{Ref: 1, Name: "p", Class: "Part", Properties: map[string]api.TaggedValue{
		"Transparency": {Type: api.TypeFloat32, Value: 0.5},
	}}}
	new := []*PendingSnapshot{{Name: "p", Class: "Part", Properties: map[string]api.TaggedValue{}}}

	cs := Diff(0, old, new)
	require.Len(t, cs, 1)
	assert.True(t, api.IsDeleted(cs[0].Delta["Transparency"]))
}
