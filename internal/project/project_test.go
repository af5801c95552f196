package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadResolvesRelativePath(t *testing.T) {
	dir := t.TempDir()
	projectFile := filepath.Join(dir, "argon.project.json")
	require.NoError(t, os.WriteFile(projectFile, []byte(`{"name":"game","path":"src"}`), 0o644))

	p, err := Load(projectFile)
	require.NoError(t, err)
	assert.Equal(t, "game", p.Name)
	assert.Equal(t, filepath.Join(dir, "src"), p.Path)
}

func TestLoadDefaultsPathToDot(t *testing.T) {
	dir := t.TempDir()
	projectFile := filepath.Join(dir, "argon.project.json")
	require.NoError(t, os.WriteFile(projectFile, []byte(`{"name":"game"}`), 0o644))

	p, err := Load(projectFile)
	require.NoError(t, err)
	assert.Equal(t, dir, p.Path)
}
