package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/argonsync/argon/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 from spec.md §9: empty project with root src/. Create
// src/init.server.luau with body print("hi"). In the scripts-only
// sourcemap, src is a Folder (a directory is not folded into its init
// script) whose one child is the Script "init", with
// "src/init.server.luau" among its filePaths.
func TestScriptCreateEndToEndSourcemap(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "init.server.luau"), []byte(`print("hi")`), 0o644))

	project := &api.Project{Name: "game", Path: dir}

	ctx := context.Background()
	c, err := New(ctx, project, false)
	require.NoError(t, err)

	sm, err := c.Sourcemap(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, sm)

	// Root is the project directory's own instance; src is its (only) child.
	require.Len(t, sm.Children, 1)
	src := sm.Children[0]
	assert.Equal(t, "src", src.Name)
	assert.Equal(t, "Folder", src.ClassName)
	require.Len(t, src.Children, 1)
	assert.Equal(t, "init", src.Children[0].Name)
	assert.Contains(t, src.Children[0].FilePaths, "src/init.server.luau")
}

func TestDetailsReflectsProject(t *testing.T) {
	dir := t.TempDir()
	gameID := uint64(123)
	project := &api.Project{Name: "my-game", Path: dir, GameID: &gameID}

	c, err := New(context.Background(), project, false)
	require.NoError(t, err)

	d := c.Details()
	assert.Equal(t, "my-game", d.Name)
	require.NotNil(t, d.GameID)
	assert.Equal(t, gameID, *d.GameID)
}
