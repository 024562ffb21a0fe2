package actormesh

// Context is passed to every Behavior method, giving it read access to the
// current message, its own address, the sender (if any), the mutable
// per-actor state, and the shared Dependencies record.
type Context interface {
	// Self returns the address of the actor processing this message.
	Self() Address
	// Sender returns the sending actor's address, or the zero Address if
	// the message did not originate from another actor (e.g. a direct
	// system.Send call).
	Sender() Address
	// Message returns the envelope currently being processed. During
	// OnStart/OnStop this is the synthetic lifecycle envelope (type
	// "STARTED"/"STOPPING"), not a user message.
	Message() Envelope
	// State returns the actor's current context value (nil until OnStart
	// returns a non-nil value).
	State() any
	// Deps returns the dependency record.
	Deps() Dependencies
}

// actorContext is the concrete Context implementation.
type actorContext struct {
	self    Address
	sender  Address
	message Envelope
	state   any
	deps    Dependencies
}

func (c *actorContext) Self() Address      { return c.self }
func (c *actorContext) Sender() Address    { return c.sender }
func (c *actorContext) Message() Envelope  { return c.message }
func (c *actorContext) State() any         { return c.state }
func (c *actorContext) Deps() Dependencies { return c.deps }
