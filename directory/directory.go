// Package directory implements the cluster-wide address-to-location
// directory consumed by the local runtime. It is a local cache, with TTL
// and change notifications, over an abstract replicated map —
// replication/gossip semantics are deliberately external to this package.
package directory

import (
	"regexp"
	"sync"
	"time"
)

var pathTypePattern = regexp.MustCompile(`^actor://[^/]+/([^/]+)/.+$`)

// Store is the abstract replicated map this package caches. Production
// deployments back it with a real distributed store (see natsdir);
// memdir.Store is the non-replicated default for single-node use and
// tests.
type Store interface {
	Get(path string) (location string, ok bool, err error)
	Set(path string, location string) error
	Delete(path string) error
	List() (map[string]string, error)
}

// ChangeKind identifies the kind of directory mutation a listener is
// notified of.
type ChangeKind int

const (
	Registered ChangeKind = iota
	Unregistered
)

// Change describes one directory mutation, delivered to subscribers
// registered via SubscribeToChanges.
type Change struct {
	Kind     ChangeKind
	Path     string
	Location string
}

type cacheEntry struct {
	location  string
	expiresAt time.Time
}

// Directory is the local cache + TTL wrapper over a Store.
type Directory struct {
	store   Store
	ttl     time.Duration
	maxSize int

	mu        sync.RWMutex
	cache     map[string]cacheEntry
	listeners map[int]func(Change)
	nextID    int
}

// Options configures cache TTL and capacity; zero values fall back to
// documented defaults.
type Options struct {
	CacheTTL     time.Duration
	MaxCacheSize int
}

// New builds a Directory over store.
func New(store Store, opts Options) *Directory {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	maxSize := opts.MaxCacheSize
	if maxSize <= 0 {
		maxSize = 10_000
	}
	return &Directory{
		store:     store,
		ttl:       ttl,
		maxSize:   maxSize,
		cache:     make(map[string]cacheEntry),
		listeners: make(map[int]func(Change)),
	}
}

// Register writes the binding for path and notifies change subscribers.
func (d *Directory) Register(path, location string) error {
	if err := d.store.Set(path, location); err != nil {
		return err
	}
	d.mu.Lock()
	d.cache[path] = cacheEntry{location: location, expiresAt: time.Now().Add(d.ttl)}
	d.mu.Unlock()
	d.notify(Change{Kind: Registered, Path: path, Location: location})
	return nil
}

// Unregister removes the binding for path and notifies change
// subscribers.
func (d *Directory) Unregister(path string) error {
	if err := d.store.Delete(path); err != nil {
		return err
	}
	d.mu.Lock()
	delete(d.cache, path)
	d.mu.Unlock()
	d.notify(Change{Kind: Unregistered, Path: path})
	return nil
}

// Lookup returns the location bound to path. A cache hit returns
// immediately; a miss consults the underlying store and populates the
// cache with the configured TTL.
func (d *Directory) Lookup(path string) (string, bool) {
	d.mu.RLock()
	entry, ok := d.cache[path]
	d.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.location, true
	}

	location, found, err := d.store.Get(path)
	if err != nil || !found {
		return "", false
	}

	d.mu.Lock()
	if len(d.cache) >= d.maxSize {
		d.evictOneLocked()
	}
	d.cache[path] = cacheEntry{location: location, expiresAt: time.Now().Add(d.ttl)}
	d.mu.Unlock()
	return location, true
}

// evictOneLocked drops an arbitrary cache entry to make room; called
// with mu held.
func (d *Directory) evictOneLocked() {
	for k := range d.cache {
		delete(d.cache, k)
		return
	}
}

// ListByType enumerates current bindings whose path's <type> segment
// equals typ.
func (d *Directory) ListByType(typ string) map[string]string {
	all, err := d.store.List()
	if err != nil {
		return map[string]string{}
	}
	out := make(map[string]string)
	for path, loc := range all {
		m := pathTypePattern.FindStringSubmatch(path)
		if len(m) == 2 && m[1] == typ {
			out[path] = loc
		}
	}
	return out
}

// GetAll enumerates every current binding.
func (d *Directory) GetAll() map[string]string {
	all, err := d.store.List()
	if err != nil {
		return map[string]string{}
	}
	return all
}

// Cleanup drops the entire local cache (it will be repopulated lazily on
// the next Lookup miss).
func (d *Directory) Cleanup() {
	d.mu.Lock()
	d.cache = make(map[string]cacheEntry)
	d.mu.Unlock()
}

// SubscribeToChanges registers listener for Register/Unregister
// notifications and returns an unsubscribe function.
func (d *Directory) SubscribeToChanges(listener func(Change)) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = listener
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

func (d *Directory) notify(c Change) {
	d.mu.RLock()
	listeners := make([]func(Change), 0, len(d.listeners))
	for _, l := range d.listeners {
		listeners = append(listeners, l)
	}
	d.mu.RUnlock()
	for _, l := range listeners {
		l(c)
	}
}

// TypeOf extracts the <type> segment from a canonical actor path, or ""
// if path is not well-formed. Exported so callers that only have a path
// string (not an Address) can filter without re-parsing the whole grammar.
func TypeOf(path string) string {
	m := pathTypePattern.FindStringSubmatch(path)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}
