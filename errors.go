package actormesh

import "errors"

// Sentinel errors for synchronous-misuse paths. Delivery failures that
// the runtime can route around (actor not found, mailbox full, ...) are
// never returned from Send — they become dead letters instead (see
// the Reason* constants in deadletter.go).
var (
	// ErrInvalidActorPath is returned by ParseAddress when the input does
	// not match the actor://<node>/<type>/<id> grammar.
	ErrInvalidActorPath = errors.New("actormesh: invalid actor path")

	// ErrSystemNotRunning is returned by Spawn when the system has not
	// been started, or has already been stopped.
	ErrSystemNotRunning = errors.New("actormesh: system not running")

	// ErrCapacityExceeded is returned by Spawn when MaxActors would be
	// exceeded.
	ErrCapacityExceeded = errors.New("actormesh: actor capacity exceeded")

	// ErrDuplicateActorID is returned by Spawn when an explicit id is
	// already registered locally.
	ErrDuplicateActorID = errors.New("actormesh: duplicate actor id")

	// ErrAskTimeout is returned by Ask when no matching response arrives
	// before the deadline.
	ErrAskTimeout = errors.New("actormesh: ask timed out")

	// ErrSystemShuttingDown is returned to pending asks cancelled by
	// System.Stop.
	ErrSystemShuttingDown = errors.New("actormesh: system shutting down")

	// ErrFlushTimeout is returned by Flush when mailboxes did not drain
	// within the deadline or round budget.
	ErrFlushTimeout = errors.New("actormesh: flush did not converge")

	// ErrActorNotAlive is returned by operations on the zero Reference,
	// which has no system behind it.
	ErrActorNotAlive = errors.New("actormesh: actor not alive")

	// ErrNilBehavior is returned by Spawn when given a nil Behavior.
	ErrNilBehavior = errors.New("actormesh: behavior must not be nil")

	// ErrRemoteDeliveryFailed wraps a transport hook failure; Send
	// propagates it to the caller rather than dead-lettering.
	ErrRemoteDeliveryFailed = errors.New("actormesh: remote delivery failed")

	// ErrNoRemoteTransport is returned when routing to a remote node but
	// no deliverRemote hook was configured.
	ErrNoRemoteTransport = errors.New("actormesh: no remote transport configured")
)
