package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "INVSTORE"

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	SnapshotNone   = "none"
	SnapshotMySQL  = "mysql"
	SnapshotSQLite = "sqlite3"
	SnapshotFile   = "file"
)

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Keyspace KeyspaceConfig `mapstructure:"keyspace"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Log      LogConfig      `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type GRPCConfig struct {
	Addr string `mapstructure:"addr"`
}

type KeyspaceConfig struct {
	Backend string `mapstructure:"backend"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	PoolSize  int    `mapstructure:"pool_size"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type SnapshotConfig struct {
	Driver   string        `mapstructure:"driver"`
	DSN      string        `mapstructure:"dsn"`
	Path     string        `mapstructure:"path"`
	Interval time.Duration `mapstructure:"interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func DefaultConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Addr: ":8080"},
		GRPC:     GRPCConfig{Addr: ":50051"},
		Keyspace: KeyspaceConfig{Backend: BackendMemory},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  100,
			KeyPrefix: "inv:",
		},
		Snapshot: SnapshotConfig{
			Driver:   SnapshotFile,
			DSN:      "root:root@tcp(localhost:3306)/inventory?parseTime=true",
			Path:     "dump.inv",
			Interval: time.Minute,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from defaults, an optional file at path, and
// INVSTORE_* environment variables, in increasing precedence. v may carry
// flag bindings; pass nil for a fresh instance.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	defaults := DefaultConfig()
	v.SetDefault("http.addr", defaults.HTTP.Addr)
	v.SetDefault("grpc.addr", defaults.GRPC.Addr)
	v.SetDefault("keyspace.backend", defaults.Keyspace.Backend)
	v.SetDefault("redis.addr", defaults.Redis.Addr)
	v.SetDefault("redis.pool_size", defaults.Redis.PoolSize)
	v.SetDefault("redis.key_prefix", defaults.Redis.KeyPrefix)
	v.SetDefault("snapshot.driver", defaults.Snapshot.Driver)
	v.SetDefault("snapshot.dsn", defaults.Snapshot.DSN)
	v.SetDefault("snapshot.path", defaults.Snapshot.Path)
	v.SetDefault("snapshot.interval", defaults.Snapshot.Interval)
	v.SetDefault("log.level", defaults.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Keyspace.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid keyspace.backend %q: want %s or %s", c.Keyspace.Backend, BackendMemory, BackendRedis)
	}

	switch c.Snapshot.Driver {
	case SnapshotNone:
	case SnapshotMySQL, SnapshotSQLite:
		if c.Snapshot.DSN == "" {
			return fmt.Errorf("snapshot.dsn is required for driver %s", c.Snapshot.Driver)
		}
	case SnapshotFile:
		if c.Snapshot.Path == "" {
			return fmt.Errorf("snapshot.path is required for driver %s", c.Snapshot.Driver)
		}
	default:
		return fmt.Errorf("invalid snapshot.driver %q", c.Snapshot.Driver)
	}

	if c.Snapshot.Driver != SnapshotNone && c.Snapshot.Interval <= 0 {
		return fmt.Errorf("snapshot.interval must be positive, got %s", c.Snapshot.Interval)
	}
	return nil
}
