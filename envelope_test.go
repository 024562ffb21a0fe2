package actormesh

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEnvelopeStampsTimestampAndVersion(t *testing.T) {
	fixed := time.UnixMilli(12345)
	env := normalizeEnvelope(Input{Type: "PING", Payload: 7}, func() time.Time { return fixed })

	assert.Equal(t, "PING", env.Type)
	assert.Equal(t, 7, env.Payload)
	assert.Equal(t, int64(12345), env.Timestamp)
	assert.Equal(t, EnvelopeVersion, env.Version)
}

func TestEnvelopeExtraRoundTrips(t *testing.T) {
	env := Envelope{Type: "PING", Timestamp: 1, Version: EnvelopeVersion}
	env = env.WithExtra("traceId", "abc-123")

	v, ok := env.Extra("traceId")
	assert.True(t, ok)
	assert.Equal(t, "abc-123", v)

	_, ok = env.Extra("missing")
	assert.False(t, ok)
}

// TestEnvelopeExtraSurvivesJSONRoundTrip proves extra fields attached via
// WithExtra are preserved across a real JSON encode/decode, as happens
// on a remote transport hop, not just across an in-memory struct copy.
func TestEnvelopeExtraSurvivesJSONRoundTrip(t *testing.T) {
	env := Envelope{Type: "PING", Payload: "hi", Timestamp: 1, Version: EnvelopeVersion}
	env = env.WithExtra("traceId", "abc-123")
	env = env.WithExtra("hops", float64(2))

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "PING", decoded.Type)
	assert.Equal(t, "hi", decoded.Payload)

	v, ok := decoded.Extra("traceId")
	assert.True(t, ok)
	assert.Equal(t, "abc-123", v)

	v, ok = decoded.Extra("hops")
	assert.True(t, ok)
	assert.Equal(t, float64(2), v)
}

func TestLooksLikeEnvelopeDistinguishesWrappedFromBare(t *testing.T) {
	wrapped := Envelope{Type: "X", Timestamp: 1, Version: EnvelopeVersion}
	_, ok := looksLikeEnvelope(wrapped)
	assert.True(t, ok)

	_, ok = looksLikeEnvelope("a bare payload")
	assert.False(t, ok)

	_, ok = looksLikeEnvelope(Envelope{})
	assert.False(t, ok, "a zero-valued Envelope must not be mistaken for an already-wrapped event")
}
