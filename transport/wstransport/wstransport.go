// Package wstransport is a demo remote-transport hook for
// actormesh.System, carrying envelopes between nodes over plain
// WebSocket connections: a connections map guarded by a mutex on the
// dialing side, and a background goroutine decoding framed JSON off the
// wire on the listening side.
package wstransport

import (
	"fmt"
	"sync"

	"github.com/kestrelcore/actormesh"
	"golang.org/x/net/websocket"
)

// wireMessage is the framed unit exchanged between nodes: the routing
// envelope plus the address it targets on the receiving node.
type wireMessage struct {
	Target   actormesh.Address  `json:"target"`
	Envelope actormesh.Envelope `json:"envelope"`
}

// Dialer implements actormesh.RemoteDeliverFunc by lazily dialing and
// caching one WebSocket connection per remote node location. Locations
// are resolved to dial URLs via the endpoints map supplied at
// construction, mirroring how the directory only ever deals in opaque
// location strings.
type Dialer struct {
	endpoints map[string]string

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// NewDialer builds a Dialer that resolves a node location to a dial URL
// via endpoints (e.g. {"node-b": "ws://node-b:8080/remote"}).
func NewDialer(endpoints map[string]string) *Dialer {
	return &Dialer{
		endpoints: endpoints,
		conns:     make(map[string]*websocket.Conn),
	}
}

// Deliver satisfies actormesh.RemoteDeliverFunc: it dials (or reuses) the
// connection for location and sends target+env as a JSON frame.
func (d *Dialer) Deliver(location string, target actormesh.Address, env actormesh.Envelope) error {
	conn, err := d.connFor(location)
	if err != nil {
		return err
	}
	if err := websocket.JSON.Send(conn, wireMessage{Target: target, Envelope: env}); err != nil {
		d.dropConn(location)
		return fmt.Errorf("wstransport: sending to %s: %w", location, err)
	}
	return nil
}

func (d *Dialer) connFor(location string) (*websocket.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if conn, ok := d.conns[location]; ok {
		return conn, nil
	}
	url, ok := d.endpoints[location]
	if !ok {
		return nil, fmt.Errorf("wstransport: no endpoint configured for node %s", location)
	}
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, fmt.Errorf("wstransport: dialing %s: %w", location, err)
	}
	d.conns[location] = conn
	return conn, nil
}

func (d *Dialer) dropConn(location string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if conn, ok := d.conns[location]; ok {
		_ = conn.Close()
		delete(d.conns, location)
	}
}

// Close closes every cached outbound connection.
func (d *Dialer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for loc, conn := range d.conns {
		_ = conn.Close()
		delete(d.conns, loc)
	}
}

// Listener accepts inbound WebSocket connections from peer nodes and
// injects decoded envelopes directly into sys's local actors via
// sys.DeliverLocal, bypassing a directory lookup (the sender already
// resolved this node as the target's location).
type Listener struct {
	sys *actormesh.System
}

// NewListener builds a Listener delivering into sys.
func NewListener(sys *actormesh.System) *Listener {
	return &Listener{sys: sys}
}

// Handler returns a websocket.Handler suitable for http.Handle, reading
// framed envelopes until the peer disconnects.
func (l *Listener) Handler() func(ws *websocket.Conn) {
	return func(ws *websocket.Conn) {
		defer ws.Close()
		for {
			var msg wireMessage
			if err := websocket.JSON.Receive(ws, &msg); err != nil {
				return
			}
			if err := l.sys.DeliverLocal(msg.Target, msg.Envelope); err != nil {
				continue
			}
		}
	}
}
