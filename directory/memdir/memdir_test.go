package memdir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSetGetDelete(t *testing.T) {
	s := New()

	_, ok, err := s.Get("actor://local/x/1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("actor://local/x/1", "node-a"))
	loc, ok, err := s.Get("actor://local/x/1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "node-a", loc)

	require.NoError(t, s.Delete("actor://local/x/1"))
	_, ok, err = s.Get("actor://local/x/1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreList(t *testing.T) {
	s := New()
	require.NoError(t, s.Set("actor://local/x/1", "node-a"))
	require.NoError(t, s.Set("actor://local/x/2", "node-b"))

	all, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"actor://local/x/1": "node-a",
		"actor://local/x/2": "node-b",
	}, all)
}
