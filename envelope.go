package actormesh

import (
	"encoding/json"
	"time"
)

// EnvelopeVersion is stamped onto every envelope normalized by this
// module.
const EnvelopeVersion = "1.0.0"

// Reserved message types honored by the core.
const (
	MsgMountComponent     = "MOUNT_COMPONENT"
	MsgUnmountComponent   = "UNMOUNT_COMPONENT"
	MsgUpdateDependencies = "UPDATE_DEPENDENCIES"
	MsgGetState           = "GET_STATE"
	MsgSubscribe          = "SUBSCRIBE"
	MsgUnsubscribe        = "UNSUBSCRIBE"
	MsgResponse           = "RESPONSE"
	MsgGetEvents          = "GET_EVENTS"
	MsgClearEvents        = "CLEAR_EVENTS"
	MsgStartCollecting    = "START_COLLECTING"
	MsgStopCollecting     = "STOP_COLLECTING"
	MsgSpawnChild         = "SPAWN_CHILD"

	// ActorEventDefault is used when an emitted event carries no explicit
	// Type.
	ActorEventDefault = "ACTOR_EVENT"
)

// Envelope is the canonical wire/in-process message record.
// Payload is restricted to JSON-compatible values so every envelope
// remains wire-safe; sending a channel, func, or other non-JSON value as
// Payload is a caller error the behavior will observe as-is in-process,
// but will fail if ever marshalled for a remote hop.
type Envelope struct {
	Type          string    `json:"type"`
	Payload       any       `json:"payload,omitempty"`
	Sender        *Address  `json:"sender,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Timestamp     int64     `json:"timestamp"`
	Version       string    `json:"version"`

	// extra preserves fields the core does not know about, so a
	// forwarded message round-trips unknown data intact.
	extra map[string]any
}

// Input is the loose shape user code may pass to Send/Ask: any subset of
// an envelope's fields, normalized by normalizeEnvelope.
type Input struct {
	Type          string
	Payload       any
	Sender        *Address
	CorrelationID string
}

// normalizeEnvelope fills Timestamp and Version if absent, and defaults
// Payload to nil.
func normalizeEnvelope(in Input, now func() time.Time) Envelope {
	env := Envelope{
		Type:          in.Type,
		Payload:       in.Payload,
		Sender:        in.Sender,
		CorrelationID: in.CorrelationID,
		Timestamp:     now().UnixMilli(),
		Version:       EnvelopeVersion,
	}
	return env
}

// WithExtra attaches a preserved-but-unknown field to the envelope; used
// when forwarding messages whose origin carried fields this module does
// not model.
func (e Envelope) WithExtra(key string, value any) Envelope {
	if e.extra == nil {
		e.extra = make(map[string]any, 1)
	}
	e.extra[key] = value
	return e
}

// Extra returns a previously attached unknown field.
func (e Envelope) Extra(key string) (any, bool) {
	if e.extra == nil {
		return nil, false
	}
	v, ok := e.extra[key]
	return v, ok
}

// envelopeKnownFields lists the JSON keys MarshalJSON/UnmarshalJSON treat
// as modeled fields rather than extra data.
var envelopeKnownFields = map[string]struct{}{
	"type": {}, "payload": {}, "sender": {}, "correlationId": {},
	"timestamp": {}, "version": {},
}

// MarshalJSON folds extra back into the top-level object alongside the
// modeled fields, so a forwarded envelope's unknown data survives a real
// wire hop instead of being silently dropped.
func (e Envelope) MarshalJSON() ([]byte, error) {
	type alias Envelope
	base, err := json.Marshal(alias(e))
	if err != nil {
		return nil, err
	}
	if len(e.extra) == 0 {
		return base, nil
	}
	merged := make(map[string]json.RawMessage, len(e.extra)+6)
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range e.extra {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the modeled fields normally and stashes any other
// top-level keys into extra.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	type alias Envelope
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = Envelope(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if _, known := envelopeKnownFields[k]; known {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		if e.extra == nil {
			e.extra = make(map[string]any, 1)
		}
		e.extra[k] = val
	}
	return nil
}

// looksLikeEnvelope reports whether an emitted value already has the
// shape of an Envelope (has Type, Timestamp, Version set) rather than a
// bare payload that needs wrapping.
func looksLikeEnvelope(v any) (Envelope, bool) {
	env, ok := v.(Envelope)
	if !ok || env.Type == "" || env.Timestamp == 0 || env.Version == "" {
		return Envelope{}, false
	}
	return env, true
}
