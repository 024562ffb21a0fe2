package actormesh

import (
	"sync"
	"time"
)

// askResult is delivered on a pending ask's channel exactly once, either
// with a response Envelope or with an error (timeout / shutdown).
type askResult struct {
	response Envelope
	err      error
}

// pendingAsk is one entry in the ask manager's table, keyed by
// correlation id.
type pendingAsk struct {
	resultCh chan askResult
	timer    *time.Timer
	done     bool
}

// askManager implements the request/response manager: a pending-ask table
// keyed by correlation id, with timeout-driven expiry, realized as a
// future+timer pair per entry.
type askManager struct {
	mu      sync.Mutex
	pending map[string]*pendingAsk
}

func newAskManager() *askManager {
	return &askManager{pending: make(map[string]*pendingAsk)}
}

// register arms a new pending ask. Its timer calls expire (which takes
// the manager's lock itself) if no response arrives within timeout.
func (m *askManager) register(correlationID string, timeout time.Duration) *pendingAsk {
	entry := &pendingAsk{resultCh: make(chan askResult, 1)}

	m.mu.Lock()
	m.pending[correlationID] = entry
	m.mu.Unlock()

	entry.timer = time.AfterFunc(timeout, func() {
		m.expire(correlationID)
	})
	return entry
}

// expire rejects a pending ask with ErrAskTimeout and removes it, if it
// has not already completed.
func (m *askManager) expire(correlationID string) {
	m.mu.Lock()
	entry, ok := m.pending[correlationID]
	if !ok || entry.done {
		m.mu.Unlock()
		return
	}
	entry.done = true
	delete(m.pending, correlationID)
	m.mu.Unlock()

	entry.resultCh <- askResult{err: ErrAskTimeout}
}

// complete delivers a response to the pending ask matching
// correlationID, if any is still outstanding. Returns false if there was
// no matching pending ask (late or unknown response).
func (m *askManager) complete(correlationID string, response Envelope) bool {
	m.mu.Lock()
	entry, ok := m.pending[correlationID]
	if !ok || entry.done {
		m.mu.Unlock()
		return false
	}
	entry.done = true
	delete(m.pending, correlationID)
	m.mu.Unlock()

	entry.timer.Stop()
	entry.resultCh <- askResult{response: response}
	return true
}

// cancelAll rejects every outstanding ask with err, used by System.Stop to
// cancel all pending asks with ErrSystemShuttingDown.
func (m *askManager) cancelAll(err error) {
	m.mu.Lock()
	entries := make([]*pendingAsk, 0, len(m.pending))
	for id, e := range m.pending {
		if e.done {
			continue
		}
		e.done = true
		entries = append(entries, e)
		delete(m.pending, id)
	}
	m.mu.Unlock()

	for _, e := range entries {
		e.timer.Stop()
		e.resultCh <- askResult{err: err}
	}
}

// pendingCount reports the number of outstanding asks.
func (m *askManager) pendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
