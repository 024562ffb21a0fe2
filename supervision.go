package actormesh

import "time"

// Directive is the outcome a SupervisionStrategy assigns to a behavior
// failure.
type Directive int

const (
	// Resume discards the failing message, keeps context, and continues
	// processing the mailbox. This is the default when no strategy is
	// configured.
	Resume Directive = iota
	// Restart re-invokes OnStart with a fresh initial context, honoring
	// MaxRetries/RetryDelay; escalates once retries are exhausted.
	Restart
	// Stop stops the actor via the normal stop flow.
	Stop
	// Escalate stops the actor and surfaces the failure to the system
	// (there is no parent supervisor above the core itself).
	Escalate
)

func (d Directive) String() string {
	switch d {
	case Resume:
		return "RESUME"
	case Restart:
		return "RESTART"
	case Stop:
		return "STOP"
	case Escalate:
		return "ESCALATE"
	default:
		return "UNKNOWN"
	}
}

// SupervisionStrategy configures how a failing actor is handled.
type SupervisionStrategy struct {
	Directive  Directive
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultSupervisionStrategy is the default: log, discard the failing
// message, continue — equivalent to Resume.
func DefaultSupervisionStrategy() SupervisionStrategy {
	return SupervisionStrategy{Directive: Resume}
}

// RestartStrategy is a convenience constructor for the common
// restart-with-backoff configuration.
func RestartStrategy(maxRetries int, retryDelay time.Duration) SupervisionStrategy {
	return SupervisionStrategy{Directive: Restart, MaxRetries: maxRetries, RetryDelay: retryDelay}
}

// supervisionState tracks per-actor restart bookkeeping, owned by the
// executor.
type supervisionState struct {
	retries int
}

// nextOnFailure decides what to do given a failure and the actor's
// accumulated retry count: restart until the retry budget is exhausted,
// then escalate.
func nextOnFailure(strategy SupervisionStrategy, st *supervisionState) Directive {
	switch strategy.Directive {
	case Restart:
		if st.retries >= strategy.MaxRetries {
			return Escalate
		}
		st.retries++
		return Restart
	default:
		return strategy.Directive
	}
}
