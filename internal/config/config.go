package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	defaultBaseURL        = "http://localhost:5000"
	defaultTimeoutSeconds = 30
	defaultRedisAddr      = "localhost:6379"
)

// StorageConfig selects where the token pair is kept between runs.
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path"`
	KeyPrefix string `toml:"key_prefix"`
}

// RedisConfig is used when storage.backend is "redis".
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Config holds all hive configuration.
type Config struct {
	BaseURL        string        `toml:"base_url"`
	TimeoutSeconds int           `toml:"timeout_seconds"`
	Storage        StorageConfig `toml:"storage"`
	Redis          RedisConfig   `toml:"redis"`
}

func (c Config) BaseURLOrDefault() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return defaultTimeoutSeconds * time.Second
}

func (c Config) BackendOrDefault() string {
	if c.Storage.Backend != "" {
		return c.Storage.Backend
	}
	return BackendFile
}

// TokenPathOrDefault returns storage.path, or tokens.toml next to the
// default config file.
func (c Config) TokenPathOrDefault() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(filepath.Dir(DefaultConfigPath()), "tokens.toml")
}

func (c Config) RedisAddrOrDefault() string {
	if c.Redis.Addr != "" {
		return c.Redis.Addr
	}
	return defaultRedisAddr
}

// Validate rejects unknown storage backends.
func (c Config) Validate() error {
	switch c.BackendOrDefault() {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (want file, redis or memory)", c.Storage.Backend)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	return nil
}

// LoadFrom reads configuration from the given TOML file path.
// If the file does not exist, it returns an empty config without error.
// Environment variables always take precedence over file values:
//   - STUDYHIVE_API_URL     overrides base_url
//   - STUDYHIVE_STORAGE     overrides storage.backend
//   - STUDYHIVE_REDIS_ADDR  overrides redis.addr
func LoadFrom(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// DefaultConfigPath returns the default path for the hive config file.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "studyhive", "config.toml")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STUDYHIVE_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("STUDYHIVE_STORAGE"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("STUDYHIVE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
}

// Save writes cfg to the given TOML file path, creating parent directories as needed.
// Existing file contents are overwritten. Permissions on the written file are 0600.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	if encErr := toml.NewEncoder(f).Encode(cfg); encErr != nil {
		f.Close()
		return encErr
	}
	return f.Close()
}
