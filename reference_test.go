package actormesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroReferenceOperationsFail(t *testing.T) {
	var ref Reference
	assert.True(t, ref.IsZero())
	assert.False(t, ref.IsAlive())
	assert.Equal(t, ActorStats{}, ref.Stats())

	assert.ErrorIs(t, ref.Send(Input{Type: "PING"}), ErrActorNotAlive)
	assert.ErrorIs(t, ref.Stop(), ErrActorNotAlive)
}

func TestReferenceAddressMatchesSpawnedActor(t *testing.T) {
	sys := newTestSystem(t)
	ref, err := sys.Spawn(&NoOpBehavior{}, SpawnOptions{ID: "fixed", Type: "probe"})
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal("actor://"+sys.cfg.NodeAddress+"/probe/fixed", ref.Address().Path)
}
