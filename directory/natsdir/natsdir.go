// Package natsdir backs directory.Store with a NATS JetStream KeyValue
// bucket, so address-to-location bindings are replicated across nodes
// without the directory.Directory cache layer knowing or caring how: a
// durable, shared key space reached through a narrow interface, with
// gossip/consensus left to NATS itself.
package natsdir

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// Store is a directory.Store backed by a JetStream KV bucket. Keys are
// actor paths; values are UTF-8 location strings (node identifiers).
type Store struct {
	kv nats.KeyValue
}

// Config configures the underlying NATS connection and KV bucket.
type Config struct {
	// URL is the NATS server URL, e.g. "nats://127.0.0.1:4222".
	URL string
	// Bucket is the KV bucket name backing the directory. Created if it
	// does not already exist.
	Bucket string
	// History is how many past revisions JetStream retains per key
	// (directory entries don't need much; defaults to 1).
	History uint8
}

// Connect dials NATS and opens (creating if necessary) the configured KV
// bucket.
func Connect(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("natsdir: Bucket must not be empty")
	}
	history := cfg.History
	if history == 0 {
		history = 1
	}

	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("natsdir: connecting to %s: %w", cfg.URL, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natsdir: opening jetstream context: %w", err)
	}

	kv, err := js.KeyValue(cfg.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:  cfg.Bucket,
			History: history,
		})
	}
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natsdir: opening bucket %s: %w", cfg.Bucket, err)
	}

	return &Store{kv: kv}, nil
}

// NewFromKV wraps an already-open KeyValue bucket, for callers that
// manage their own NATS connection lifecycle.
func NewFromKV(kv nats.KeyValue) *Store {
	return &Store{kv: kv}
}

func (s *Store) Get(path string) (string, bool, error) {
	entry, err := s.kv.Get(keyFor(path))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("natsdir: get %s: %w", path, err)
	}
	return string(entry.Value()), true, nil
}

func (s *Store) Set(path string, location string) error {
	_, err := s.kv.Put(keyFor(path), []byte(location))
	if err != nil {
		return fmt.Errorf("natsdir: put %s: %w", path, err)
	}
	return nil
}

func (s *Store) Delete(path string) error {
	if err := s.kv.Delete(keyFor(path)); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("natsdir: delete %s: %w", path, err)
	}
	return nil
}

func (s *Store) List() (map[string]string, error) {
	keys, err := s.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("natsdir: listing keys: %w", err)
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		entry, err := s.kv.Get(k)
		if err != nil {
			continue
		}
		out[pathFor(k)] = string(entry.Value())
	}
	return out, nil
}

// keyFor/pathFor translate between actor path strings (which contain
// '/' and ':' from the actor:// grammar) and NATS KV key syntax, which
// disallows '/'. Actor paths may themselves contain '/' in the <id>
// segment, so '/' is escaped rather than split on.
func keyFor(path string) string {
	return escaper.Replace(path)
}

func pathFor(key string) string {
	return unescaper.Replace(key)
}

var (
	escaper   = strings.NewReplacer("/", "_SLASH_", ":", "_COLON_")
	unescaper = strings.NewReplacer("_SLASH_", "/", "_COLON_", ":")
)
