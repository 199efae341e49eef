package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracked_Changed(t *testing.T) {
	mem := NewMemory()
	a := Track(mem)
	b := Track(mem)

	changed, err := a.Changed("k")
	require.NoError(t, err)
	assert.False(t, changed, "a missing key is not a change")

	require.NoError(t, a.Set("k", []byte(`1`)))
	changed, err = a.Changed("k")
	require.NoError(t, err)
	assert.False(t, changed, "own writes are not changes")

	changed, err = b.Changed("k")
	require.NoError(t, err)
	assert.True(t, changed, "a key never read counts as changed once it exists")

	_, _, err = b.Get("k")
	require.NoError(t, err)
	changed, err = b.Changed("k")
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, b.Set("k", []byte(`2`)))
	changed, err = a.Changed("k")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestTracked_SqliteAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	s1, err := Open(path)
	require.NoError(t, err)
	defer s1.Close()
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	a, b := Track(s1), Track(s2)
	require.NoError(t, Save(a, "tasks", []string{"x"}))
	_, err = Load(b, "tasks", []string(nil))
	require.NoError(t, err)

	require.NoError(t, Save(a, "tasks", []string{"x", "y"}))
	changed, err := b.Changed("tasks")
	require.NoError(t, err)
	assert.True(t, changed)
	got, err := Load(b, "tasks", []string(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)
}
