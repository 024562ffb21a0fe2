package actormesh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewAddressNormalizesEmptyNode(t *testing.T) {
	addr := NewAddress("", "actor", "42")
	assert.Equal(t, "local", addr.Node)
	assert.Equal(t, "actor://local/actor/42", addr.Path)
}

func TestParseAddressRoundTrip(t *testing.T) {
	addr, err := ParseAddress("actor://node-1/worker/abc-123")
	require.NoError(t, err)
	assert.Equal(t, "node-1", addr.Node)
	assert.Equal(t, "worker", addr.Type)
	assert.Equal(t, "abc-123", addr.ID)
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	_, err := ParseAddress("not-an-actor-path")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidActorPath))
}

func TestAddressEqual(t *testing.T) {
	a := NewAddress("n", "t", "1")
	b := NewAddress("n", "t", "1")
	c := NewAddress("n", "t", "2")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

// TestAddressParseFormatRoundTrip asserts ParseAddress(addr.Path).Path ==
// addr.Path for every valid path, and that parsing and reformatting a
// well-formed address is idempotent.
func TestAddressParseFormatRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		node := rapid.StringMatching(`[a-zA-Z0-9_-]+`).Draw(t, "node")
		typ := rapid.StringMatching(`[a-zA-Z0-9_-]+`).Draw(t, "type")
		id := rapid.StringMatching(`[a-zA-Z0-9_./-]+`).Draw(t, "id")

		addr := NewAddress(node, typ, id)
		reparsed, err := ParseAddress(addr.Path)
		require.NoError(t, err)
		assert.Equal(t, addr.Path, reparsed.Path)
		assert.Equal(t, addr.Node, reparsed.Node)
		assert.Equal(t, addr.Type, reparsed.Type)
		assert.Equal(t, addr.ID, reparsed.ID)
	})
}
