package reflection

import (
	"testing"

	"github.com/argonsync/argon/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownProperty(t *testing.T) {
	tv, err := Resolve("Part", "Transparency", 0.5)
	require.NoError(t, err)
	assert.Equal(t, api.TypeFloat32, tv.Type)
	assert.Equal(t, 0.5, tv.Value)
}

func TestResolveUnknownPropertyIsNonFatalForCaller(t *testing.T) {
	_, err := Resolve("Part", "Bogus", 1)
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestResolveAttributesOnAnyClass(t *testing.T) {
	tv, err := Resolve("Folder", "Attributes", map[string]any{"level": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, api.TypeAttributes, tv.Type)
}

func TestIsServiceAndIsScript(t *testing.T) {
	assert.True(t, IsService("Workspace"))
	assert.True(t, IsService("StarterPlayerScripts"))
	assert.False(t, IsService("Part"))

	assert.True(t, IsScript("Script"))
	assert.True(t, IsScript("LocalScript"))
	assert.True(t, IsScript("ModuleScript"))
	assert.False(t, IsScript("Part"))
}
