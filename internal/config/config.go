// Package config loads the twentyfive configuration from a YAML file and
// TWENTYFIVE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TWENTYFIVE_"

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "twentyfive.yaml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendLoam   = "loam"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Instance   string           `mapstructure:"instance" yaml:"instance"`
	Capacity   int              `mapstructure:"capacity" yaml:"capacity"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Redis      RedisConfig      `mapstructure:"redis" yaml:"redis"`
	Lock       LockConfig       `mapstructure:"lock" yaml:"lock"`
	HTTP       HTTPConfig       `mapstructure:"http" yaml:"http"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Encryption EncryptionConfig `mapstructure:"encryption" yaml:"encryption"`
	Seed       SeedConfig       `mapstructure:"seed" yaml:"seed"`
	Hooks      HooksConfig      `mapstructure:"hooks" yaml:"hooks"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type LockConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// EncryptionConfig holds base64 AES-256 keys. An empty Key disables encryption.
type EncryptionConfig struct {
	Key          string   `mapstructure:"key" yaml:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`
}

// SeedConfig lists items added to the instance on startup.
type SeedConfig struct {
	Goals []string `mapstructure:"goals" yaml:"goals"`
	Tasks []string `mapstructure:"tasks" yaml:"tasks"`
}

// HooksConfig points to a file of commands run after each commit. An empty File disables them.
type HooksConfig struct {
	File    string        `mapstructure:"file" yaml:"file"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Instance: "twentyfive",
		Store: StoreConfig{
			Backend: BackendMemory,
			Path:    ".twentyfive",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Lock: LockConfig{
			TTL: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
		Seed: SeedConfig{
			Tasks: []string{"Eat 10 chickens"},
		},
		Hooks: HooksConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// keys lists every configurable key, used to map environment variables.
var keys = []string{
	"instance",
	"capacity",
	"store.backend",
	"store.path",
	"redis.addr",
	"redis.password",
	"redis.db",
	"redis.prefix",
	"redis.ttl",
	"lock.enabled",
	"lock.ttl",
	"http.addr",
	"metrics.addr",
	"log.level",
	"log.file",
	"encryption.key",
	"encryption.fallback_keys",
	"seed.goals",
	"seed.tasks",
	"hooks.file",
	"hooks.timeout",
}

// EnvName returns the environment variable overriding key ("store.backend" -> TWENTYFIVE_STORE_BACKEND).
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads the file at path (a missing file is fine when path is the
// default), applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	raw := map[string]any{}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	for _, key := range keys {
		if val, ok := lookup(EnvName(key)); ok {
			set(raw, key, val)
		}
	}

	cfg := Default()
	if err := Decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode decodes a generic map onto cfg. Keys absent from raw keep their value.
func Decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       true, // a list in the file replaces the default list
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// set writes val at a dotted key, creating intermediate maps.
func set(raw map[string]any, key string, val any) {
	parts := strings.Split(key, ".")
	m := raw
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}

// Validate checks the values that cannot be caught by decoding.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendFile, BackendLoam:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for the %s backend", ErrInvalidConfig, c.Store.Backend)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Instance == "" {
		return fmt.Errorf("%w: instance is required", ErrInvalidConfig)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", ErrInvalidConfig)
	}
	if c.Lock.Enabled && c.Store.Backend != BackendRedis {
		return fmt.Errorf("%w: lock.enabled requires the redis backend", ErrInvalidConfig)
	}
	if c.Hooks.Timeout < 0 {
		return fmt.Errorf("%w: hooks.timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
