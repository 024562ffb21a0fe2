package actormesh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskManagerCompleteDeliversOnce(t *testing.T) {
	m := newAskManager()
	entry := m.register("corr-1", time.Second)

	ok := m.complete("corr-1", Envelope{Type: MsgResponse, CorrelationID: "corr-1"})
	require.True(t, ok)

	select {
	case res := <-entry.resultCh:
		assert.NoError(t, res.err)
		assert.Equal(t, "corr-1", res.response.CorrelationID)
	default:
		t.Fatal("expected a result to be queued")
	}

	assert.False(t, m.complete("corr-1", Envelope{}), "a second completion of the same id must be rejected")
}

func TestAskManagerExpireOnTimeout(t *testing.T) {
	m := newAskManager()
	entry := m.register("corr-2", 10*time.Millisecond)

	res := <-entry.resultCh
	assert.ErrorIs(t, res.err, ErrAskTimeout)
	assert.Equal(t, 0, m.pendingCount())
}

func TestAskManagerCancelAll(t *testing.T) {
	m := newAskManager()
	e1 := m.register("corr-3", time.Second)
	e2 := m.register("corr-4", time.Second)

	m.cancelAll(ErrSystemShuttingDown)

	for _, e := range []*pendingAsk{e1, e2} {
		res := <-e.resultCh
		assert.ErrorIs(t, res.err, ErrSystemShuttingDown)
	}
	assert.Equal(t, 0, m.pendingCount())
}
