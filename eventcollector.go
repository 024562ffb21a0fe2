package actormesh

import "time"

// CollectorOptions configures SpawnEventCollector. AutoStart, left nil,
// defaults to true (collect immediately); set a pointer to false to spawn
// paused until a START_COLLECTING message arrives.
type CollectorOptions struct {
	ID         string
	AutoStart  *bool
	MailboxCap int
}

// collectorState is the event collector's Context value.
type collectorState struct {
	events     []Envelope
	collecting bool
}

// eventCollectorBehavior accumulates every non-control envelope it
// receives, answering GET_EVENTS asks with a snapshot.
type eventCollectorBehavior struct {
	autoStart bool
}

func (b *eventCollectorBehavior) OnStart(Context) (any, error) {
	return &collectorState{collecting: b.autoStart}, nil
}

func (b *eventCollectorBehavior) OnStop(Context) error { return nil }

func (b *eventCollectorBehavior) OnMessage(ctx Context) (*Result, error) {
	st, _ := ctx.State().(*collectorState)
	if st == nil {
		st = &collectorState{}
	}
	msg := ctx.Message()

	switch msg.Type {
	case MsgGetEvents:
		snapshot := append([]Envelope(nil), st.events...)
		self := ctx.Self()
		reply := Envelope{
			Type:          MsgResponse,
			Payload:       snapshot,
			Sender:        &self,
			CorrelationID: msg.CorrelationID,
			Timestamp:     time.Now().UnixMilli(),
			Version:       EnvelopeVersion,
		}
		return EmitResult(reply), nil
	case MsgClearEvents:
		st.events = nil
		return ContextResult(st), nil
	case MsgStartCollecting:
		st.collecting = true
		return ContextResult(st), nil
	case MsgStopCollecting:
		st.collecting = false
		return ContextResult(st), nil
	case MsgSubscribe, MsgUnsubscribe:
		// The collector never itself publishes, so subscribe requests
		// addressed to it have nothing to register; acknowledge and drop.
		return ContextResult(st), nil
	default:
		if st.collecting {
			st.events = append(st.events, msg)
		}
		return ContextResult(st), nil
	}
}

// SpawnEventCollector spawns the built-in event-collector actor.
func (s *System) SpawnEventCollector(opts CollectorOptions) (Reference, error) {
	autoStart := true
	if opts.AutoStart != nil {
		autoStart = *opts.AutoStart
	}
	so := SpawnOptions{ID: opts.ID, Type: "collector", MailboxCapacity: opts.MailboxCap}
	return s.Spawn(&eventCollectorBehavior{autoStart: autoStart}, so)
}
