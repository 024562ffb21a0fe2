package actormesh

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// execState values for actorRecord.state.
type execState int32

const (
	stateFresh execState = iota
	stateStarted
	stateStopping
	stateStopped
)

// ActorStats is the per-actor stats block. Counters are written only by
// the owning executor; readers may observe slightly stale values.
type ActorStats struct {
	MessagesReceived  uint64
	MessagesProcessed uint64
	Errors            uint64
	StartTime         time.Time
}

// actorRecord is the system's arena entry for one actor. References never
// hold a pointer to a record; they look it up by path on every operation.
type actorRecord struct {
	address     Address
	behavior    Behavior
	mailbox     *mailbox
	supervision SupervisionStrategy

	state   atomic.Value // holds `any`, the user context
	exec    atomic.Int32 // execState
	started atomic.Bool  // true once OnStart has run

	messagesReceived  atomic.Uint64
	messagesProcessed atomic.Uint64
	errors            atomic.Uint64
	startTime         time.Time

	supFailures int // accessed only from the owning drain loop
}

func newActorRecord(addr Address, b Behavior, mb *mailbox, sup SupervisionStrategy) *actorRecord {
	r := &actorRecord{
		address:     addr,
		behavior:    b,
		mailbox:     mb,
		supervision: sup,
		startTime:   time.Now(),
	}
	r.exec.Store(int32(stateFresh))
	return r
}

func (r *actorRecord) stats() ActorStats {
	return ActorStats{
		MessagesReceived:  r.messagesReceived.Load(),
		MessagesProcessed: r.messagesProcessed.Load(),
		Errors:            r.errors.Load(),
		StartTime:         r.startTime,
	}
}

// scheduleExecutor is invoked by deliverLocal right after an enqueue
// signals shouldSchedule, and by Spawn's start-up kick. It dispatches the
// drain loop either
// inline (test mode) or on a fresh goroutine (deferred mode).
func (s *System) scheduleExecutor(rec *actorRecord) {
	if s.testMode.Load() {
		s.drain(rec)
		return
	}
	go s.drain(rec)
}

// drain is the per-actor executor loop: run OnStart once, then
// dequeue/invoke/fan-out until the mailbox empties. Exactly one goroutine
// (or call stack, in test mode) executes this for a given actor at a
// time — guaranteed by the mailbox's draining flag.
func (s *System) drain(rec *actorRecord) {
	if rec.started.CompareAndSwap(false, true) {
		s.runOnStart(rec)
		if execState(rec.exec.Load()) == stateStopped {
			return
		}
	}

	for {
		env, ok := rec.mailbox.dequeueOrRelease()
		if !ok {
			return
		}
		if execState(rec.exec.Load()) == stateStopped {
			return
		}
		s.processOne(rec, env)
	}
}

// runOnStart invokes Behavior.OnStart and applies supervision on failure.
// No message delivery begun before OnStart completes is observed by
// OnMessage — enforced here because drain only starts dequeuing after
// this returns.
func (s *System) runOnStart(rec *actorRecord) {
	ctx := &actorContext{
		self:    rec.address,
		message: Envelope{Type: "STARTED", Timestamp: time.Now().UnixMilli(), Version: EnvelopeVersion},
		state:   rec.state.Load(),
		deps:    s.dependenciesFor(rec),
	}

	newState, err := s.invokeSafely(rec, func() (any, error) {
		return rec.behavior.OnStart(ctx)
	})
	if err != nil {
		s.handleFailure(rec, err)
		return
	}
	if newState != nil {
		rec.state.Store(newState)
	}
	rec.exec.Store(int32(stateStarted))
}

// processOne dispatches a single envelope through OnMessage and fans out
// its effects.
func (s *System) processOne(rec *actorRecord, env Envelope) {
	rec.messagesReceived.Add(1)

	ctx := &actorContext{
		self:    rec.address,
		sender:  senderOrZero(env),
		message: env,
		state:   rec.state.Load(),
		deps:    s.dependenciesFor(rec),
	}

	result, err := s.invokeSafelyResult(rec, func() (*Result, error) {
		return rec.behavior.OnMessage(ctx)
	})
	if err != nil {
		s.handleFailure(rec, err)
		return
	}
	rec.messagesProcessed.Add(1)

	if result == nil {
		s.notifyDirect(rec, env)
		return
	}
	if result.Context != nil {
		rec.state.Store(result.Context)
	}
	for _, raw := range result.Emit {
		s.emitEvent(rec, raw)
	}
	s.notifyDirect(rec, env)
}

func senderOrZero(env Envelope) Address {
	if env.Sender == nil {
		return Address{}
	}
	return *env.Sender
}

// emitEvent normalizes and fans out one emitted event.
func (s *System) emitEvent(rec *actorRecord, raw any) {
	event, already := looksLikeEnvelope(raw)
	if !already {
		eventType := ActorEventDefault
		if typed, ok := raw.(interface{ EventType() string }); ok {
			eventType = typed.EventType()
		}
		self := rec.address
		event = Envelope{
			Type:      eventType,
			Payload:   raw,
			Sender:    &self,
			Timestamp: time.Now().UnixMilli(),
			Version:   EnvelopeVersion,
		}
	}

	publisher := rec.address.Path
	s.fanOut(emitKey(publisher, event.Type), withType(event, "EMIT:"+event.Type))
	s.fanOut(emitWildcardKey(publisher), withType(event, "EMIT:"+event.Type))
	if event.Type == MsgResponse {
		s.fanOut(directKey(publisher, MsgResponse), event)
		s.completeAskIfLocal(event)
	}
}

func withType(env Envelope, typ string) Envelope {
	env.Type = typ
	return env
}

// notifyDirect implements the direct-subscription half of fan-out:
// wildcard subscribers see every incoming message, type-keyed subscribers
// see messages of their type.
func (s *System) notifyDirect(rec *actorRecord, env Envelope) {
	publisher := rec.address.Path
	s.fanOut(directWildcardKey(publisher), env)
	s.fanOut(directKey(publisher, env.Type), env)
}

// fanOut delivers env to every address subscribed under key, via the same
// Send path user code uses — message passing is the only delivery path.
func (s *System) fanOut(key string, env Envelope) {
	for _, target := range s.subs.subscribers(key) {
		s.enqueueMessage(target, env)
	}
}

// invokeSafely recovers a panic from a Behavior method, turning it into a
// BehaviorFailure-shaped error and logging a stack trace.
func (s *System) invokeSafely(rec *actorRecord, fn func() (any, error)) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("behavior panicked",
				slog.String("actor", rec.address.Path),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("actormesh: behavior panic: %v", r)
		}
	}()
	return fn()
}

func (s *System) invokeSafelyResult(rec *actorRecord, fn func() (*Result, error)) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("behavior panicked",
				slog.String("actor", rec.address.Path),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("actormesh: behavior panic: %v", r)
		}
	}()
	return fn()
}
