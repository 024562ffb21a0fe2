package actormesh

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// Config holds the actor-system configuration options recognized by the
// core. Durations are expressed in milliseconds in TOML files but as
// time.Duration in Go.
type Config struct {
	NodeAddress string   `toml:"node_address"`
	SeedNodes   []string `toml:"seed_nodes"`
	MaxActors   int      `toml:"max_actors"`

	DirectoryCacheTTL        time.Duration `toml:"-"`
	DirectoryCacheTTLMillis  int64         `toml:"directory_cache_ttl_ms"`
	DirectoryMaxCacheSize    int           `toml:"directory_max_cache_size"`
	DirectoryCleanupInterval time.Duration `toml:"-"`
	DirectoryCleanupMillis   int64         `toml:"directory_cleanup_interval_ms"`

	MessageTimeout time.Duration `toml:"-"`
	MessageTimeoutMillis int64   `toml:"message_timeout_ms"`

	DefaultAskTimeout time.Duration `toml:"-"`
	DefaultAskTimeoutMillis int64   `toml:"default_ask_timeout_ms"`

	ShutdownTimeout time.Duration `toml:"-"`
	ShutdownTimeoutMillis int64   `toml:"shutdown_timeout_ms"`

	Debug bool `toml:"debug"`

	// DefaultMailboxCapacity and DefaultOverflowPolicy configure Spawn
	// when SpawnOptions does not override them: a system-wide fallback.
	DefaultMailboxCapacity int            `toml:"default_mailbox_capacity"`
	DefaultOverflowPolicy  OverflowPolicy `toml:"-"`

	DeadLetterRingSize int `toml:"dead_letter_ring_size"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		NodeAddress:              "node-" + uuid.NewString()[:8],
		SeedNodes:                nil,
		MaxActors:                1_000_000,
		DirectoryCacheTTL:        300_000 * time.Millisecond,
		DirectoryMaxCacheSize:    10_000,
		DirectoryCleanupInterval: 60_000 * time.Millisecond,
		MessageTimeout:           30_000 * time.Millisecond,
		DefaultAskTimeout:        5_000 * time.Millisecond,
		ShutdownTimeout:          30_000 * time.Millisecond,
		Debug:                    false,
		DefaultMailboxCapacity:   1024,
		DefaultOverflowPolicy:    DropNewest,
		DeadLetterRingSize:       1000,
	}
}

// FastTestConfig returns a configuration tuned for deterministic, quick
// test runs: short timeouts, small ring.
func FastTestConfig() Config {
	cfg := DefaultConfig()
	cfg.ShutdownTimeout = 2 * time.Second
	cfg.DefaultAskTimeout = 200 * time.Millisecond
	cfg.DeadLetterRingSize = 100
	return cfg
}

// LoadConfigFile loads a TOML configuration file and overlays it onto
// DefaultConfig(). Millisecond fields are converted to time.Duration
// after decoding.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("actormesh: reading config %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("actormesh: parsing config %s: %w", path, err)
	}

	if cfg.DirectoryCacheTTLMillis > 0 {
		cfg.DirectoryCacheTTL = time.Duration(cfg.DirectoryCacheTTLMillis) * time.Millisecond
	}
	if cfg.DirectoryCleanupMillis > 0 {
		cfg.DirectoryCleanupInterval = time.Duration(cfg.DirectoryCleanupMillis) * time.Millisecond
	}
	if cfg.MessageTimeoutMillis > 0 {
		cfg.MessageTimeout = time.Duration(cfg.MessageTimeoutMillis) * time.Millisecond
	}
	if cfg.DefaultAskTimeoutMillis > 0 {
		cfg.DefaultAskTimeout = time.Duration(cfg.DefaultAskTimeoutMillis) * time.Millisecond
	}
	if cfg.ShutdownTimeoutMillis > 0 {
		cfg.ShutdownTimeout = time.Duration(cfg.ShutdownTimeoutMillis) * time.Millisecond
	}
	if cfg.DefaultMailboxCapacity <= 0 {
		cfg.DefaultMailboxCapacity = 1024
	}
	return cfg, nil
}
