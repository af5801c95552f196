package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/argonsync/argon/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinOverridesOnlySetFields(t *testing.T) {
	base := Meta{IgnoreGlobs: []string{"*.md"}, UseLegacyScripts: false}

	legacy := true
	joined := base.Join(&Override{UseLegacyScripts: &legacy})

	assert.Equal(t, []string{"*.md"}, joined.IgnoreGlobs, "unset override field must inherit parent")
	assert.True(t, joined.UseLegacyScripts)
}

func TestIsIgnored(t *testing.T) {
	m := Meta{IgnoreGlobs: []string{"*.md", "*.tmp"}}
	assert.True(t, m.IsIgnored("README.md"))
	assert.False(t, m.IsIgnored("init.luau"))
}

func TestLoadOverrideRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, OverrideFileName)

	legacy := true
	original := &Override{
		IgnoreGlobs:      []string{"*.md"},
		UseLegacyScripts: &legacy,
		SyncRules:        []api.SyncRule{{Pattern: "*.txt", Class: "StringValue", Child: "Value"}},
	}

	require.NoError(t, os.WriteFile(path, RenderOverride(original), 0o644))

	loaded, err := LoadOverride(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original.IgnoreGlobs, loaded.IgnoreGlobs)
	require.NotNil(t, loaded.UseLegacyScripts)
	assert.True(t, *loaded.UseLegacyScripts)
	require.Len(t, loaded.SyncRules, 1)
	assert.Equal(t, "StringValue", loaded.SyncRules[0].Class)
}

func TestLoadOverrideMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	loaded, err := LoadOverride(filepath.Join(dir, OverrideFileName))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
