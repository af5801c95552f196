package snapshot

import (
	"testing"

	"github.com/argonsync/argon/api"
	"github.com/argonsync/argon/internal/meta"
	"github.com/argonsync/argon/internal/vfs"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSnapshotter(t *testing.T) (*Snapshotter, vfs.Vfs) {
	t.Helper()
	fs := memfs.New()
	v := vfs.NewFromFilesystem(fs, false)
	return New(v), v
}

// S1 from spec.md §9: empty project with root src/, create
// src/init.server.luau with body print("hi"). Expect a Script instance
// named "init" (the file name minus its script suffix; the enclosing
// directory's name is not used) with Source set and RunContext
// Server(1) under the modern (non-legacy) convention.
func TestScriptCreateScenario(t *testing.T) {
	s, v := newTestSnapshotter(t)
	require.NoError(t, v.Write("src/init.server.luau", []byte(`print("hi")`)))

	snap, err := s.Snapshot("src/init.server.luau", meta.Meta{})
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, "init", snap.Name)
	assert.Equal(t, "Script", snap.Class)
	assert.Equal(t, `print("hi")`, snap.Properties["Source"].Value)
	assert.Equal(t, uint32(1), snap.Properties["RunContext"].Value)
}

// S6 from spec.md §9: a file excluded by Meta's ignore globs yields no
// snapshot.
func TestIgnoredFileYieldsNoSnapshot(t *testing.T) {
	s, v := newTestSnapshotter(t)
	require.NoError(t, v.Write("src/scratch.tmp", []byte("noise")))

	m := meta.Meta{IgnoreGlobs: []string{"*.tmp"}}
	snap, err := s.Snapshot("src/scratch.tmp", m)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestDirectoryDefaultsToFolder(t *testing.T) {
	s, v := newTestSnapshotter(t)
	require.NoError(t, v.Write("src/stuff/a.luau", []byte("return {}")))

	snap, err := s.Snapshot("src/stuff", meta.Meta{})
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "Folder", snap.Class)
	require.Len(t, snap.Children, 1)
	assert.Equal(t, "ModuleScript", snap.Children[0].Class)
}

func TestDirectoryNamedAsServiceTakesServiceClass(t *testing.T) {
	s, _ := newTestSnapshotter(t)
	snap := directoryClass("ReplicatedStorage")
	assert.Equal(t, "ReplicatedStorage", snap)
	_ = s
}

func TestDataSidecarFlatSchema(t *testing.T) {
	s, v := newTestSnapshotter(t)
	require.NoError(t, v.Write("src/config.data.json", []byte(`{"ClassName":"StringValue","Value":"hello"}`)))

	snap, err := s.Snapshot("src/config.data.json", meta.Meta{})
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "StringValue", snap.Class)
	assert.Equal(t, "hello", snap.Properties["Value"].Value)
}

func TestDataSidecarStructuredSchema(t *testing.T) {
	s, v := newTestSnapshotter(t)
	require.NoError(t, v.Write("src/config.data.json", []byte(`{
		"className": "StringValue",
		"properties": {"Value": "hi"},
		"tags": ["a", "b"]
	}`)))

	snap, err := s.Snapshot("src/config.data.json", meta.Meta{})
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "hi", snap.Properties["Value"].Value)
	assert.ElementsMatch(t, []string{"a", "b"}, snap.Properties["Tags"].Value)
}

func TestDataSidecarNonStringClassNameIsFatal(t *testing.T) {
	s, v := newTestSnapshotter(t)
	require.NoError(t, v.Write("src/bad.data.json", []byte(`{"ClassName": 5}`)))

	_, err := s.Snapshot("src/bad.data.json", meta.Meta{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestWriteBackScriptExtractsSource(t *testing.T) {
	s, v := newTestSnapshotter(t)

	remaining, err := s.WriteBack("src/foo.luau", "ModuleScript", map[string]api.TaggedValue{
		"Source": {Type: api.TypeString, Value: "return {}"},
		"Name":   {Type: api.TypeString, Value: "foo"},
	})
	require.NoError(t, err)
	assert.NotContains(t, remaining, "Source")
	assert.Contains(t, remaining, "Name")

	written, err := v.ReadText("src/foo.luau")
	require.NoError(t, err)
	assert.Equal(t, "return {}", written)
}
