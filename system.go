// Package actormesh implements a location-transparent actor runtime: a
// per-actor bounded mailbox with an at-most-one-in-flight execution
// guarantee, a directory translating addresses to node locations, a
// dead-letter queue for undeliverable messages, and ask/response and
// publish/subscribe message patterns layered over plain Send.
package actormesh

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kestrelcore/actormesh/directory"
	"github.com/kestrelcore/actormesh/directory/memdir"
)

// RemoteDeliverFunc is the transport hook a System calls to deliver an
// envelope to an actor hosted on another node. Remote transport is left as
// an injectable hook rather than built in. location is whatever opaque
// string the directory.Store associates with the target address.
type RemoteDeliverFunc func(location string, target Address, env Envelope) error

// SystemOption configures a System at construction time.
type SystemOption func(*System)

// WithDirectoryStore overrides the default in-memory directory.Store
// (memdir) with a replicated one, e.g. natsdir.Store.
func WithDirectoryStore(store directory.Store) SystemOption {
	return func(s *System) { s.dirStore = store }
}

// WithRemoteTransport installs the hook used to deliver envelopes to
// actors hosted on other nodes.
func WithRemoteTransport(fn RemoteDeliverFunc) SystemOption {
	return func(s *System) { s.deliverRemote = fn }
}

// WithLogger overrides the default slog.Logger.
func WithLogger(logger *slog.Logger) SystemOption {
	return func(s *System) { s.logger = logger }
}

// System is the actor-system root: the arena of local actor records, the
// directory, the dead-letter queue, the subscription registry and the ask
// manager.
type System struct {
	cfg      Config
	logger   *slog.Logger
	dirStore directory.Store
	dir      *directory.Directory
	dlq      *deadLetterQueue
	subs     *subscriptionRegistry
	asks     *askManager
	cluster  *clusterTracker

	systemEvents  *listenerSet[SystemEvent]
	clusterEvents *listenerSet[ClusterEvent]

	mu     sync.RWMutex
	actors map[string]*actorRecord

	running  atomic.Bool
	testMode atomic.Bool

	idSeq atomic.Uint64

	deliverRemote RemoteDeliverFunc

	shutdownMu       sync.Mutex
	shutdownHandlers []func(context.Context)
}

// NewSystem constructs a System from cfg. It must be started with Start
// before Spawn/Send/Ask will accept work.
func NewSystem(cfg Config, opts ...SystemOption) *System {
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	s := &System{
		cfg:           cfg,
		logger:        slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})),
		dlq:           newDeadLetterQueue(cfg.DeadLetterRingSize, time.Now),
		subs:          newSubscriptionRegistry(),
		asks:          newAskManager(),
		cluster:       newClusterTracker(cfg.NodeAddress, cfg.SeedNodes),
		systemEvents:  newListenerSet[SystemEvent](),
		clusterEvents: newListenerSet[ClusterEvent](),
		actors:        make(map[string]*actorRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dirStore == nil {
		s.dirStore = memdir.New()
	}
	s.dir = directory.New(s.dirStore, directory.Options{
		CacheTTL:     cfg.DirectoryCacheTTL,
		MaxCacheSize: cfg.DirectoryMaxCacheSize,
	})
	s.emitSystemEvent(SystemEvent{Type: EventInitialized})
	return s
}

// Start marks the system ready to accept Spawn/Send/Ask calls. Idempotent.
func (s *System) Start() error {
	if s.running.CompareAndSwap(false, true) {
		s.cluster.setStatus(ClusterJoining)
		s.cluster.setStatus(ClusterUp)
		s.emitSystemEvent(SystemEvent{Type: EventStarted})
	}
	return nil
}

// IsRunning reports whether the system has been started and not yet
// stopped.
func (s *System) IsRunning() bool {
	return s.running.Load()
}

// EnableTestMode switches newly scheduled executors to run inline on the
// caller's goroutine instead of a fresh one, for deterministic tests.
// Actors already mid-drain are unaffected until their next scheduling
// decision.
func (s *System) EnableTestMode() {
	s.testMode.Store(true)
}

// DisableTestMode restores deferred (goroutine-scheduled) execution.
func (s *System) DisableTestMode() {
	s.testMode.Store(false)
}

// IsTestMode reports the current scheduling mode.
func (s *System) IsTestMode() bool {
	return s.testMode.Load()
}

// OnShutdown registers a handler run concurrently with actor teardown
// during Stop.
func (s *System) OnShutdown(fn func(context.Context)) {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	s.shutdownHandlers = append(s.shutdownHandlers, fn)
}

// SpawnOptions configures Spawn.
type SpawnOptions struct {
	ID              string
	Type            string
	MailboxCapacity int
	OverflowPolicy  OverflowPolicy
	Supervision     SupervisionStrategy
}

// Spawn creates a new local actor running behavior and returns a
// Reference to it immediately — OnStart has not necessarily run yet, it
// is scheduled to run before the actor's first message is processed.
func (s *System) Spawn(behavior Behavior, opts ...SpawnOptions) (Reference, error) {
	if behavior == nil {
		return Reference{}, ErrNilBehavior
	}
	if !s.running.Load() {
		return Reference{}, ErrSystemNotRunning
	}

	var o SpawnOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Type == "" {
		o.Type = "actor"
	}
	if o.MailboxCapacity <= 0 {
		o.MailboxCapacity = s.cfg.DefaultMailboxCapacity
	}

	s.mu.RLock()
	count := len(s.actors)
	s.mu.RUnlock()
	if count >= s.cfg.MaxActors {
		return Reference{}, ErrCapacityExceeded
	}

	id := o.ID
	if id == "" {
		id = uuid.NewString()
	}
	addr := NewAddress(s.cfg.NodeAddress, o.Type, id)

	s.mu.Lock()
	if _, exists := s.actors[addr.Path]; exists {
		s.mu.Unlock()
		return Reference{}, fmt.Errorf("%w: %s", ErrDuplicateActorID, addr.Path)
	}
	mb := newMailbox(o.MailboxCapacity, o.OverflowPolicy)
	rec := newActorRecord(addr, behavior, mb, o.Supervision)
	s.actors[addr.Path] = rec
	s.mu.Unlock()

	if err := s.dir.Register(addr.Path, s.cfg.NodeAddress); err != nil {
		s.logger.Error("directory registration failed", slog.String("actor", addr.Path), slog.Any("error", err))
	}
	s.emitSystemEvent(SystemEvent{Type: EventActorSpawned, Address: &addr})

	// Kick the executor once so OnStart runs promptly even if the caller
	// never sends this actor a message.
	if mb.beginDraining() {
		s.scheduleExecutor(rec)
	}

	return Reference{addr: addr, sys: s}, nil
}

// Lookup resolves path to a Reference if the directory has a binding for
// it (local or remote).
func (s *System) Lookup(path string) (Reference, bool) {
	addr, err := ParseAddress(path)
	if err != nil {
		return Reference{}, false
	}
	if _, ok := s.dir.Lookup(path); !ok {
		return Reference{}, false
	}
	return Reference{addr: addr, sys: s}, true
}

// ListActors returns the addresses of every actor local to this system.
func (s *System) ListActors() []Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Address, 0, len(s.actors))
	for _, r := range s.actors {
		out = append(out, r.address)
	}
	return out
}

// MailboxLoad is a point-in-time occupancy sample for one local actor's
// mailbox, used by the dashboard renderer.
type MailboxLoad struct {
	Address  Address
	Depth    int
	Capacity int
}

// MailboxLoads snapshots mailbox occupancy across every local actor.
func (s *System) MailboxLoads() []MailboxLoad {
	s.mu.RLock()
	recs := make([]*actorRecord, 0, len(s.actors))
	for _, r := range s.actors {
		recs = append(recs, r)
	}
	s.mu.RUnlock()

	out := make([]MailboxLoad, 0, len(recs))
	for _, r := range recs {
		out = append(out, MailboxLoad{Address: r.address, Depth: r.mailbox.len(), Capacity: r.mailbox.capacity})
	}
	return out
}

func (s *System) lookupLocalRecord(path string) (*actorRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.actors[path]
	return r, ok
}

// SystemStats summarizes the local arena for dashboards/CLIs.
type SystemStats struct {
	ActorCount   int
	PendingAsks  int
	DeadLetters  DeadLetterStats
	ClusterState ClusterState
}

// GetSystemStats reports a point-in-time snapshot of system-wide state.
func (s *System) GetSystemStats() SystemStats {
	return SystemStats{
		ActorCount:   len(s.ListActors()),
		PendingAsks:  s.asks.pendingCount(),
		DeadLetters:  s.dlq.stats(),
		ClusterState: s.cluster.snapshot(),
	}
}

// DeadLetters returns a snapshot of the dead-letter ring, oldest first.
func (s *System) DeadLetters() []DeadLetter {
	return s.dlq.getAll()
}

// ClearDeadLetters empties the dead-letter ring.
func (s *System) ClearDeadLetters() {
	s.dlq.clear()
}

// Send delivers a fire-and-forget message to target: directory lookup,
// then local mailbox enqueue or remote transport hop. Local failures
// become dead letters and return nil; remote transport failures are
// returned to the caller.
func (s *System) Send(target Address, in Input) error {
	env := normalizeEnvelope(in, time.Now)
	return s.route(target, env)
}

// route implements the four-step policy: directory lookup -> dead-letter
// on miss -> local enqueue (with overflow handling) or remote hop.
func (s *System) route(target Address, env Envelope) error {
	location, ok := s.dir.Lookup(target.Path)
	if !ok {
		s.dlq.add(env, target.Path, ReasonActorNotFound, 1, nil)
		return nil
	}

	if location != s.cfg.NodeAddress {
		if s.deliverRemote == nil {
			return fmt.Errorf("%w: node %s", ErrNoRemoteTransport, location)
		}
		if err := s.deliverRemote(location, target, env); err != nil {
			return fmt.Errorf("%w: node %s: %v", ErrRemoteDeliveryFailed, location, err)
		}
		return nil
	}

	rec, ok := s.lookupLocalRecord(target.Path)
	if !ok {
		s.dlq.add(env, target.Path, ReasonMailboxMissing, 1, nil)
		return nil
	}
	s.deliverLocal(rec, target.Path, env)
	return nil
}

// deliverLocal enqueues env onto rec's mailbox and schedules its executor
// if needed, routing overflow/stopped outcomes to the dead-letter queue.
func (s *System) deliverLocal(rec *actorRecord, path string, env Envelope) {
	result, displaced, shouldSchedule := rec.mailbox.enqueue(env)
	switch result {
	case enqueueDroppedFull:
		s.dlq.add(env, path, ReasonMailboxFull, 1, nil)
	case enqueueStopped:
		s.dlq.add(env, path, ReasonMailboxMissing, 1, nil)
	case enqueueDisplaced:
		if displaced != nil {
			s.dlq.add(*displaced, path, ReasonDisplaced, 1, nil)
		}
		if shouldSchedule {
			s.scheduleExecutor(rec)
		}
	case enqueueOK:
		if shouldSchedule {
			s.scheduleExecutor(rec)
		}
	}
}

// DeliverLocal is the inbound half of a remote transport hook: when
// another node's deliverRemote hands an envelope to this node, the
// transport adapter calls DeliverLocal to inject it directly into the
// target's mailbox without a directory round-trip.
func (s *System) DeliverLocal(target Address, env Envelope) error {
	rec, ok := s.lookupLocalRecord(target.Path)
	if !ok {
		s.dlq.add(env, target.Path, ReasonMailboxMissing, 1, nil)
		return nil
	}
	s.deliverLocal(rec, target.Path, env)
	return nil
}

// enqueueMessage is the fire-and-forget entry point used internally by
// fan-out (subscriptions, emitted events): delivery failures are logged,
// never returned, since there is no caller waiting on them.
func (s *System) enqueueMessage(target Address, env Envelope) {
	if err := s.route(target, env); err != nil {
		s.logger.Warn("fan-out delivery failed",
			slog.String("target", target.Path), slog.Any("error", err))
	}
}

// Ask sends a message to target and blocks until a correlated RESPONSE
// event arrives, ctx is cancelled, or timeout elapses. timeout <= 0 uses
// Config.DefaultAskTimeout.
func (s *System) Ask(ctx context.Context, target Address, in Input, timeout time.Duration) (Envelope, error) {
	if !s.running.Load() {
		return Envelope{}, ErrSystemNotRunning
	}
	if timeout <= 0 {
		timeout = s.cfg.DefaultAskTimeout
	}
	correlationID := uuid.NewString()
	in.CorrelationID = correlationID

	entry := s.asks.register(correlationID, timeout)
	if err := s.Send(target, in); err != nil {
		s.asks.expire(correlationID)
		return Envelope{}, err
	}

	select {
	case res := <-entry.resultCh:
		return res.response, res.err
	case <-ctx.Done():
		s.asks.expire(correlationID)
		return Envelope{}, ctx.Err()
	}
}

func (s *System) completeAskIfLocal(event Envelope) {
	s.asks.complete(event.CorrelationID, event)
}

// SubscribeRequest is the payload a SUBSCRIBE/UNSUBSCRIBE envelope carries
// to the publisher, which is expected to call RegisterSubscription /
// UnregisterSubscription from its own OnMessage handler: actors opting
// into publication respond by registering entries in the subscription
// registry.
type SubscribeRequest struct {
	Subscriber Address
	Filter     EventFilter
}

// Subscribe sends a SUBSCRIBE envelope to publisher on behalf of
// subscriber, narrowed by filter, and returns an unsubscribe function that
// sends the matching UNSUBSCRIBE.
func (s *System) Subscribe(publisher, subscriber Address, filter EventFilter) (func(), error) {
	req := SubscribeRequest{Subscriber: subscriber, Filter: filter}
	err := s.Send(publisher, Input{Type: MsgSubscribe, Payload: req})
	unsub := func() {
		_ = s.Send(publisher, Input{Type: MsgUnsubscribe, Payload: req})
	}
	return unsub, err
}

// RegisterSubscription writes subscriber into the subscription registry
// under every key filter expands for publisher. Exposed on Dependencies.System
// so behaviors can implement SUBSCRIBE handling for themselves.
func (s *System) RegisterSubscription(publisher, subscriber Address, filter EventFilter) {
	for _, key := range filter.keysFor(publisher.Path) {
		s.subs.subscribe(key, subscriber)
	}
}

// UnregisterSubscription is the inverse of RegisterSubscription, used by
// UNSUBSCRIBE handling.
func (s *System) UnregisterSubscription(publisher, subscriber Address, filter EventFilter) {
	for _, key := range filter.keysFor(publisher.Path) {
		s.subs.unsubscribe(key, subscriber.Path)
	}
}

// dependenciesFor builds the Dependencies value threaded into every
// Context for rec.
func (s *System) dependenciesFor(rec *actorRecord) Dependencies {
	self := Reference{addr: rec.address, sys: s}
	return Dependencies{
		ActorID: rec.address.ID,
		Self:    self,
		System:  s,
		Emit: func(event any) {
			s.emitEvent(rec, event)
		},
		Send: func(to Address, in Input) {
			_ = s.Send(to, in)
		},
		Ask: func(ctx context.Context, to Address, in Input, timeout time.Duration) (Envelope, error) {
			return s.Ask(ctx, to, in, timeout)
		},
	}
}

// handleFailure applies rec's SupervisionStrategy to a behavior failure.
// It runs on the actor's own drain loop, so it never races OnMessage/
// OnStart for the same actor.
func (s *System) handleFailure(rec *actorRecord, err error) {
	rec.errors.Add(1)
	st := &supervisionState{retries: rec.supFailures}
	directive := nextOnFailure(rec.supervision, st)
	rec.supFailures = st.retries

	s.logger.Error("actor behavior failed",
		slog.String("actor", rec.address.Path),
		slog.String("directive", directive.String()),
		slog.Any("error", err))

	switch directive {
	case Resume:
		return
	case Restart:
		rec.state.Store(nil)
		rec.started.Store(false)
		if rec.supervision.RetryDelay > 0 {
			time.Sleep(rec.supervision.RetryDelay)
		}
		if rec.started.CompareAndSwap(false, true) {
			s.runOnStart(rec)
		}
	case Stop:
		s.stopRecord(rec, "supervision: stop")
	case Escalate:
		s.logger.Error("actor failure escalated, stopping actor",
			slog.String("actor", rec.address.Path))
		s.stopRecord(rec, "supervision: escalate")
	}
}

// StopActor stops a single local actor: runs OnStop once, closes its
// mailbox, removes it from the arena and the directory. A reference to an
// already-stopped or unknown actor is a no-op.
func (s *System) StopActor(ref Reference) error {
	rec, ok := s.lookupLocalRecord(ref.addr.Path)
	if !ok {
		return nil
	}
	s.stopRecord(rec, "stop requested")
	return nil
}

func (s *System) stopRecord(rec *actorRecord, reason string) {
	prev := execState(rec.exec.Swap(int32(stateStopping)))
	if prev == stateStopping || prev == stateStopped {
		return
	}

	s.emitSystemEvent(SystemEvent{Type: EventActorStopping, Address: &rec.address})

	ctx := &actorContext{
		self:    rec.address,
		message: Envelope{Type: "STOPPING", Payload: reason, Timestamp: time.Now().UnixMilli(), Version: EnvelopeVersion},
		state:   rec.state.Load(),
		deps:    s.dependenciesFor(rec),
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("OnStop panicked", slog.String("actor", rec.address.Path), slog.Any("panic", r))
			}
		}()
		if err := rec.behavior.OnStop(ctx); err != nil {
			s.logger.Error("OnStop returned error", slog.String("actor", rec.address.Path), slog.Any("error", err))
		}
	}()

	rec.mailbox.stop()
	rec.exec.Store(int32(stateStopped))

	s.mu.Lock()
	delete(s.actors, rec.address.Path)
	s.mu.Unlock()

	if err := s.dir.Unregister(rec.address.Path); err != nil {
		s.logger.Error("directory unregister failed", slog.String("actor", rec.address.Path), slog.Any("error", err))
	}

	s.emitSystemEvent(SystemEvent{Type: EventActorStopped, Address: &rec.address})
}

// Stop shuts the whole system down: runs registered shutdown handlers and
// stops every local actor concurrently, waiting up to
// Config.ShutdownTimeout before abandoning stragglers, then cancels all
// pending asks with ErrSystemShuttingDown.
func (s *System) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.cluster.setStatus(ClusterLeaving)
	s.emitSystemEvent(SystemEvent{Type: EventStopping})

	s.shutdownMu.Lock()
	handlers := append([]func(context.Context){}, s.shutdownHandlers...)
	s.shutdownMu.Unlock()

	s.mu.RLock()
	recs := make([]*actorRecord, 0, len(s.actors))
	for _, r := range s.actors {
		recs = append(recs, r)
	}
	s.mu.RUnlock()

	var wg sync.WaitGroup
	for _, h := range handlers {
		wg.Add(1)
		go func(h func(context.Context)) {
			defer wg.Done()
			h(ctx)
		}(h)
	}
	for _, r := range recs {
		wg.Add(1)
		go func(r *actorRecord) {
			defer wg.Done()
			s.stopRecord(r, "system stopping")
		}(r)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.cfg.ShutdownTimeout):
		s.logger.Error("shutdown timed out; abandoning remaining teardown",
			slog.Duration("timeout", s.cfg.ShutdownTimeout))
	}

	s.dir.Cleanup()
	s.asks.cancelAll(ErrSystemShuttingDown)
	s.cluster.setStatus(ClusterDown)
	s.emitSystemEvent(SystemEvent{Type: EventStopped})
	return nil
}

// FlushOptions bounds Flush's round-robin draining.
type FlushOptions struct {
	Timeout   time.Duration
	MaxRounds int
}

// Flush synchronously drains every local mailbox, round-robin, until all
// are empty and idle or the timeout/round budget is exhausted. Intended
// for deterministic tests run with EnableTestMode. Pending asks are not
// force-expired by Flush; each continues to honor its own timer.
func (s *System) Flush(opts ...FlushOptions) error {
	var o FlushOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	maxRounds := o.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 1_000
	}
	deadline := time.Now().Add(timeout)

	for round := 0; round < maxRounds; round++ {
		if time.Now().After(deadline) {
			return ErrFlushTimeout
		}

		s.mu.RLock()
		recs := make([]*actorRecord, 0, len(s.actors))
		for _, r := range s.actors {
			recs = append(recs, r)
		}
		s.mu.RUnlock()

		idle := true
		for _, r := range recs {
			if r.mailbox.isEmpty() && !r.mailbox.isDraining() {
				continue
			}
			if r.mailbox.beginDraining() {
				idle = false
				s.drain(r)
				continue
			}
			if !r.mailbox.isEmpty() || r.mailbox.isDraining() {
				idle = false
			}
		}
		if idle {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	return ErrFlushTimeout
}
