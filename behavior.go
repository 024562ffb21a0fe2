package actormesh

import (
	"context"
	"time"
)

// Behavior is the user-supplied contract driving one actor's lifetime.
// All three methods run on the actor's own single-threaded loop; none may
// be invoked concurrently with another for the same actor.
type Behavior interface {
	// OnStart runs once, before the first message is dequeued. The
	// returned value, if non-nil, becomes the actor's initial Context.
	// May be nil-valued (use a no-op behavior embedding NoOpLifecycle).
	OnStart(ctx Context) (newState any, err error)

	// OnMessage handles one dequeued envelope. The returned Result, if
	// non-nil, may update Context and/or emit events.
	OnMessage(ctx Context) (*Result, error)

	// OnStop runs once, when the actor transitions to stopping. Errors
	// are logged, never propagated further.
	OnStop(ctx Context) error
}

// NoOpLifecycle can be embedded by behaviors that don't need OnStart or
// OnStop, so they only have to implement OnMessage.
type NoOpLifecycle struct{}

func (NoOpLifecycle) OnStart(Context) (any, error) { return nil, nil }
func (NoOpLifecycle) OnStop(Context) error         { return nil }

// Result is what OnMessage returns to request a context update and/or
// emit events.
type Result struct {
	// Context, if non-nil, replaces the actor's context. A nil Context
	// here means "no context change", so a Result cannot reset the
	// context to nil; store a named empty value instead.
	Context any
	// Emit is zero or more events to normalize and fan out. Each element
	// is either already an Envelope (passed through) or an arbitrary
	// value (wrapped by the executor's emitEvent).
	Emit []any
}

// ContextResult is a convenience constructor for the common
// "context only" case.
func ContextResult(state any) *Result { return &Result{Context: state} }

// EmitResult is a convenience constructor for "events only, context
// unchanged".
func EmitResult(events ...any) *Result { return &Result{Emit: events} }

// Dependencies is threaded into every Context, giving behaviors access to
// the actor's identity and to the system.
type Dependencies struct {
	ActorID string
	Self    Reference
	System  *System

	// Emit publishes one event through the same fan-out path OnMessage's
	// returned Result.Emit would use. Provided for behaviors that want to
	// emit from deep call stacks rather than building a Result.
	Emit func(event any)
	// Send is a shorthand for Dependencies.Self's system routing a
	// fire-and-forget message to another address.
	Send func(to Address, in Input)
	// Ask is a shorthand for the request/response pattern against
	// another address. timeout defaults to Config.DefaultAskTimeout when
	// zero.
	Ask func(ctx context.Context, to Address, in Input, timeout time.Duration) (Envelope, error)
}
