package filesystem_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/agentsync-dev/agentsync/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFS_WriteReadRoundTrip(t *testing.T) {
	m := filesystem.NewMemory()

	require.NoError(t, m.WriteFile("/home/user/.claude/agents/reviewer.md", []byte("body"), 0644))

	got, err := m.ReadFile("/home/user/.claude/agents/reviewer.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), got)

	// Parent directories are created implicitly
	info, err := m.Stat("/home/user/.claude/agents")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMemoryFS_StatMissing(t *testing.T) {
	m := filesystem.NewMemory()
	_, err := m.Stat("/nope")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFS_ReadDir(t *testing.T) {
	m := filesystem.NewMemory()
	require.NoError(t, m.WriteFile("/src/agents/a.md", []byte("a"), 0644))
	require.NoError(t, m.WriteFile("/src/agents/b.md", []byte("b"), 0644))
	require.NoError(t, m.MkdirAll("/src/agents/nested", 0755))

	entries, err := m.ReadDir("/src/agents")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a.md", entries[0].Name())
	assert.Equal(t, "b.md", entries[1].Name())
	assert.Equal(t, "nested", entries[2].Name())
	assert.True(t, entries[2].IsDir())
}

func TestMemoryFS_Remove(t *testing.T) {
	m := filesystem.NewMemory()
	require.NoError(t, m.WriteFile("/a/b.txt", []byte("x"), 0644))

	require.NoError(t, m.Remove("/a/b.txt"))
	_, err := m.ReadFile("/a/b.txt")
	assert.Error(t, err)

	// Removing a non-empty directory fails; RemoveAll succeeds.
	require.NoError(t, m.WriteFile("/a/c.txt", []byte("y"), 0644))
	assert.Error(t, m.Remove("/a"))
	require.NoError(t, m.RemoveAll("/a"))
	_, err = m.Stat("/a")
	assert.Error(t, err)
}

func TestMemoryFS_Rename(t *testing.T) {
	m := filesystem.NewMemory()
	require.NoError(t, m.WriteFile("/old.txt", []byte("x"), 0644))
	require.NoError(t, m.Rename("/old.txt", "/dir/new.txt"))

	got, err := m.ReadFile("/dir/new.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
	_, err = m.Stat("/old.txt")
	assert.Error(t, err)
}

func TestMemoryFS_ErrorInjection(t *testing.T) {
	boom := errors.New("boom")
	m := filesystem.NewMemory().WithError("/locked.txt", boom)

	assert.ErrorIs(t, m.WriteFile("/locked.txt", []byte("x"), 0644), boom)
	_, err := m.ReadFile("/locked.txt")
	assert.ErrorIs(t, err, boom)
	_, err = m.Stat("/locked.txt")
	assert.ErrorIs(t, err, boom)
}
