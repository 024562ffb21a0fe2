package actormesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextOnFailureResumeIsDefault(t *testing.T) {
	st := &supervisionState{}
	d := nextOnFailure(DefaultSupervisionStrategy(), st)
	assert.Equal(t, Resume, d)
	assert.Equal(t, 0, st.retries, "resume never consumes a retry budget")
}

func TestNextOnFailureStopAndEscalatePassThrough(t *testing.T) {
	st := &supervisionState{}
	assert.Equal(t, Stop, nextOnFailure(SupervisionStrategy{Directive: Stop}, st))
	assert.Equal(t, Escalate, nextOnFailure(SupervisionStrategy{Directive: Escalate}, st))
}

// TestNextOnFailureRestartExhaustsToEscalate: maxRetries=2 allows exactly
// two restarts, and the failure that finds the budget already exhausted
// escalates.
func TestNextOnFailureRestartExhaustsToEscalate(t *testing.T) {
	strategy := RestartStrategy(2, 0)
	st := &supervisionState{}

	d1 := nextOnFailure(strategy, st)
	assert.Equal(t, Restart, d1)
	assert.Equal(t, 1, st.retries)

	d2 := nextOnFailure(strategy, st)
	assert.Equal(t, Restart, d2)
	assert.Equal(t, 2, st.retries)

	d3 := nextOnFailure(strategy, st)
	assert.Equal(t, Escalate, d3, "the third failure finds the two-restart budget exhausted")
}

func TestDirectiveString(t *testing.T) {
	assert.Equal(t, "RESUME", Resume.String())
	assert.Equal(t, "RESTART", Restart.String())
	assert.Equal(t, "STOP", Stop.String())
	assert.Equal(t, "ESCALATE", Escalate.String())
	assert.Equal(t, "UNKNOWN", Directive(99).String())
}
