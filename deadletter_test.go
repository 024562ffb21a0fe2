package actormesh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadLetterQueueRingEviction(t *testing.T) {
	q := newDeadLetterQueue(2, time.Now)
	q.add(env("A"), "actor://local/x/1", ReasonMailboxFull, 1, nil)
	q.add(env("B"), "actor://local/x/1", ReasonMailboxFull, 1, nil)
	q.add(env("C"), "actor://local/x/1", ReasonMailboxFull, 1, nil)

	all := q.getAll()
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[0].Message.Type, "oldest entry must be evicted on overflow")
	assert.Equal(t, "C", all[1].Message.Type)
}

func TestDeadLetterQueueStatsHistogram(t *testing.T) {
	q := newDeadLetterQueue(10, time.Now)
	q.add(env("A"), "actor://local/x/1", ReasonMailboxFull, 1, nil)
	q.add(env("A"), "actor://local/x/2", ReasonActorNotFound, 1, nil)

	stats := q.stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.MessageTypes["A"])
	assert.Equal(t, 1, stats.Actors["actor://local/x/1"])
	assert.Equal(t, 1, stats.Actors["actor://local/x/2"])
}

func TestDeadLetterQueueClear(t *testing.T) {
	q := newDeadLetterQueue(10, time.Now)
	q.add(env("A"), "actor://local/x/1", ReasonMailboxFull, 1, nil)
	q.clear()
	assert.Empty(t, q.getAll())
	assert.Equal(t, 0, q.stats().Size)
}
