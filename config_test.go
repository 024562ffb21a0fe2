package actormesh

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigHasSaneDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1_000_000, cfg.MaxActors)
	assert.Equal(t, 5_000*time.Millisecond, cfg.DefaultAskTimeout)
	assert.Equal(t, DropNewest, cfg.DefaultOverflowPolicy)
	assert.NotEmpty(t, cfg.NodeAddress)
}

func TestLoadConfigFileOverlaysMillisecondFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actormesh.toml")
	contents := `
node_address = "node-1"
max_actors = 500
default_ask_timeout_ms = 1500
dead_letter_ring_size = 42
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "node-1", cfg.NodeAddress)
	assert.Equal(t, 500, cfg.MaxActors)
	assert.Equal(t, 1500*time.Millisecond, cfg.DefaultAskTimeout)
	assert.Equal(t, 42, cfg.DeadLetterRingSize)
}

func TestLoadConfigFileMissingFileErrors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
