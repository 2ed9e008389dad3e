package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"COOKBOOK_DB", "COOKBOOK_ADDR", "COOKBOOK_LOG_LEVEL", "COOKBOOK_SEED_SAMPLES", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.True(t, cfg.Catalog.SeedSamples)
	assert.Equal(t, 8, cfg.Catalog.WheelSize)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/kitchen.db
server:
  addr: 127.0.0.1:9000
catalog:
  seed_samples: false
  wheel_size: 6
logging:
  level: debug
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kitchen.db", cfg.Database.Path)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.False(t, cfg.Catalog.SeedSamples)
	assert.Equal(t, 6, cfg.Catalog.WheelSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.Equal(t, "10s", cfg.Server.ShutdownTimeout)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("COOKBOOK_DB", "/data/env.db")
	t.Setenv("COOKBOOK_ADDR", ":7000")
	t.Setenv("COOKBOOK_SEED_SAMPLES", "false")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/data/env.db", cfg.Database.Path)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.False(t, cfg.Catalog.SeedSamples)
	assert.Equal(t, "ant-key", cfg.Tagger.APIKey)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("catalog:\n  wheel_size: 0\n"), 0644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "wheel_size")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("server: [unclosed"), 0644))
	_, err = Load(broken)
	assert.ErrorContains(t, err, "parse config")

	t.Setenv("COOKBOOK_LOG_LEVEL", "loud")
	_, err = Load(filepath.Join(dir, "nope.yaml"))
	assert.ErrorContains(t, err, "logging.level")
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":1234"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":1234", loaded.Server.Addr)
}
