package favorites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "favorites.json"))
}

func TestToggleAndList(t *testing.T) {
	s := newTestStore(t)

	added, err := s.Toggle("GRP2")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Toggle("GRP1")
	require.NoError(t, err)
	assert.True(t, added)

	list, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"GRP1", "GRP2"}, list, "favorites come back sorted")

	ok, err := s.Contains("GRP1")
	require.NoError(t, err)
	assert.True(t, ok)

	added, err = s.Toggle("GRP1")
	require.NoError(t, err)
	assert.False(t, added, "second toggle removes")

	list, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"GRP2"}, list)
}

func TestMissingFileReadsEmpty(t *testing.T) {
	s := newTestStore(t)

	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	ok, err := s.Contains("GRP1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s := NewStore(path)

	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	// A toggle recovers the file.
	added, err := s.Toggle("GRP1")
	require.NoError(t, err)
	assert.True(t, added)

	list, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"GRP1"}, list)
}
