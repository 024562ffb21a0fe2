package actormesh

import "sync"

// ClusterStatus reports where this node is in its membership lifecycle.
type ClusterStatus string

const (
	ClusterJoining ClusterStatus = "joining"
	ClusterUp      ClusterStatus = "up"
	ClusterLeaving ClusterStatus = "leaving"
	ClusterDown    ClusterStatus = "down"
)

// ClusterState is a best-effort snapshot of cluster membership. Membership
// consensus itself is out of scope; this is a thin, locally-tracked seed
// list plus the nodes added by Join and minus those removed by Leave.
type ClusterState struct {
	Nodes  []string
	Self   string
	Leader string
	Status ClusterStatus
}

// ClusterEvent is delivered to listeners registered via
// SubscribeToClusterEvents whenever cluster membership changes.
type ClusterEvent struct {
	Kind string // "joined" or "left"
	Node string
}

type clusterTracker struct {
	mu     sync.RWMutex
	nodes  map[string]struct{}
	self   string
	leader string
	status ClusterStatus
}

func newClusterTracker(self string, seeds []string) *clusterTracker {
	t := &clusterTracker{nodes: make(map[string]struct{}), self: self, status: ClusterDown}
	t.nodes[self] = struct{}{}
	for _, n := range seeds {
		t.nodes[n] = struct{}{}
	}
	return t
}

func (t *clusterTracker) snapshot() ClusterState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nodes := make([]string, 0, len(t.nodes))
	for n := range t.nodes {
		nodes = append(nodes, n)
	}
	return ClusterState{Nodes: nodes, Self: t.self, Leader: t.leader, Status: t.status}
}

// setStatus transitions the tracked lifecycle status. A single-node
// cluster elects itself leader on reaching up, and relinquishes
// leadership once it starts leaving.
func (t *clusterTracker) setStatus(status ClusterStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	switch status {
	case ClusterUp:
		if t.leader == "" {
			t.leader = t.self
		}
	case ClusterLeaving, ClusterDown:
		if t.leader == t.self {
			t.leader = ""
		}
	}
}

func (t *clusterTracker) add(node string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodes[node]; ok {
		return false
	}
	t.nodes[node] = struct{}{}
	return true
}

func (t *clusterTracker) remove(node string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodes[node]; !ok {
		return false
	}
	delete(t.nodes, node)
	return true
}

// Join adds nodes to the locally-tracked cluster membership and notifies
// cluster-event subscribers. It does not perform any network handshake —
// an external membership/gossip layer is expected to call Join/Leave as it
// observes real joins and departures.
func (s *System) Join(nodes ...string) {
	for _, n := range nodes {
		if s.cluster.add(n) {
			s.clusterEvents.notify(ClusterEvent{Kind: "joined", Node: n})
		}
	}
}

// Leave removes nodes from the locally-tracked cluster membership.
func (s *System) Leave(nodes ...string) {
	for _, n := range nodes {
		if s.cluster.remove(n) {
			s.clusterEvents.notify(ClusterEvent{Kind: "left", Node: n})
		}
	}
}

// GetClusterState returns a snapshot of currently tracked membership.
func (s *System) GetClusterState() ClusterState {
	return s.cluster.snapshot()
}

// SubscribeToClusterEvents registers fn for join/leave notifications.
func (s *System) SubscribeToClusterEvents(fn func(ClusterEvent)) func() {
	return s.clusterEvents.add(fn)
}
