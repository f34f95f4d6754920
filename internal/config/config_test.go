package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keyspace:
  backend: redis
redis:
  addr: redis:6379
  key_prefix: "stock:"
snapshot:
  driver: sqlite3
  dsn: /var/lib/invstore/snap.db
  interval: 30s
log:
  level: debug
`), 0o644))

	cfg, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Keyspace.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "stock:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 100, cfg.Redis.PoolSize)
	assert.Equal(t, SnapshotSQLite, cfg.Snapshot.Driver)
	assert.Equal(t, 30*time.Second, cfg.Snapshot.Interval)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("INVSTORE_HTTP_ADDR", ":9090")
	t.Setenv("INVSTORE_SNAPSHOT_DRIVER", "none")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, SnapshotNone, cfg.Snapshot.Driver)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Keyspace.Backend = "etcd" }},
		{"bad driver", func(c *Config) { c.Snapshot.Driver = "postgres" }},
		{"mysql without dsn", func(c *Config) { c.Snapshot.Driver = SnapshotMySQL; c.Snapshot.DSN = "" }},
		{"file without path", func(c *Config) { c.Snapshot.Path = "" }},
		{"zero interval", func(c *Config) { c.Snapshot.Interval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.Snapshot.Driver = SnapshotNone
	cfg.Snapshot.Interval = 0
	assert.NoError(t, cfg.Validate())
}
