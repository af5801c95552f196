package vfs

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillyVfsReadWriteList(t *testing.T) {
	fs := NewFromFilesystem(memfs.New(), false)

	require.NoError(t, fs.Write("src/init.server.luau", []byte(`print("hi")`)))

	text, err := fs.ReadText("src/init.server.luau")
	require.NoError(t, err)
	assert.Equal(t, `print("hi")`, text)

	assert.True(t, fs.Exists("src/init.server.luau"))
	assert.False(t, fs.Exists("src/missing.luau"))

	entries, err := fs.List("src")
	require.NoError(t, err)
	assert.Contains(t, entries, "src/init.server.luau")
}

func TestDisabledWatcherYieldsClosedChannel(t *testing.T) {
	fs := NewFromFilesystem(memfs.New(), false)
	ch := fs.Watch()

	_, ok := <-ch
	assert.False(t, ok, "disabled watcher's channel should be closed, not block forever")
	require.NoError(t, fs.Close())
}
