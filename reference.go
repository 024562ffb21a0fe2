package actormesh

import (
	"context"
	"time"
)

// Reference is a location-transparent handle to an actor. It never holds
// a pointer into the system's arena; every operation looks the actor up
// by Path, so a Reference remains valid (if inert) after its actor has
// stopped.
type Reference struct {
	addr Address
	sys  *System
}

// Address returns the actor's address.
func (r Reference) Address() Address {
	return r.addr
}

// IsZero reports whether r is the zero Reference.
func (r Reference) IsZero() bool {
	return r.sys == nil
}

// Send delivers a fire-and-forget message to the actor. Local delivery
// failures (actor not found, mailbox full/stopped) never surface here —
// they become dead letters. Remote delivery failures are returned to the
// caller.
func (r Reference) Send(in Input) error {
	if r.sys == nil {
		return ErrActorNotAlive
	}
	return r.sys.Send(r.addr, in)
}

// Ask sends a message and blocks for a correlated RESPONSE. timeout <= 0
// uses Config.DefaultAskTimeout.
func (r Reference) Ask(ctx context.Context, in Input, timeout time.Duration) (Envelope, error) {
	if r.sys == nil {
		return Envelope{}, ErrActorNotAlive
	}
	return r.sys.Ask(ctx, r.addr, in, timeout)
}

// Stop stops the actor.
func (r Reference) Stop() error {
	if r.sys == nil {
		return ErrActorNotAlive
	}
	return r.sys.StopActor(r)
}

// IsAlive reports whether the actor is still present in the local arena.
// For a remote actor this only reflects directory knowledge, not the
// remote node's actual liveness.
func (r Reference) IsAlive() bool {
	if r.sys == nil {
		return false
	}
	if _, ok := r.sys.lookupLocalRecord(r.addr.Path); ok {
		return true
	}
	_, ok := r.sys.dir.Lookup(r.addr.Path)
	return ok
}

// Stats returns the actor's current counters. Returns the zero value if
// the actor is not local to this system.
func (r Reference) Stats() ActorStats {
	if r.sys == nil {
		return ActorStats{}
	}
	rec, ok := r.sys.lookupLocalRecord(r.addr.Path)
	if !ok {
		return ActorStats{}
	}
	return rec.stats()
}

// Subscribe sends a SUBSCRIBE envelope to this actor on behalf of
// subscriber, narrowed by filter, and returns an unsubscribe function that
// sends UNSUBSCRIBE.
func (r Reference) Subscribe(subscriber Reference, filter EventFilter) (func(), error) {
	if r.sys == nil {
		return func() {}, ErrActorNotAlive
	}
	return r.sys.Subscribe(r.addr, subscriber.addr, filter)
}
