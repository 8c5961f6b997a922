package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/studyhive/studyhive-go/internal/config"
)

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := `
base_url = "https://api.studyhive.app"
timeout_seconds = 10

[storage]
backend = "redis"
key_prefix = "ada:"

[redis]
addr = "cache.internal:6379"
db = 2
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURLOrDefault() != "https://api.studyhive.app" {
		t.Errorf("expected base url from file, got '%s'", cfg.BaseURLOrDefault())
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.Timeout())
	}
	if cfg.BackendOrDefault() != config.BackendRedis {
		t.Errorf("expected redis backend, got '%s'", cfg.BackendOrDefault())
	}
	if cfg.Storage.KeyPrefix != "ada:" {
		t.Errorf("expected key prefix 'ada:', got '%s'", cfg.Storage.KeyPrefix)
	}
	if cfg.RedisAddrOrDefault() != "cache.internal:6379" || cfg.Redis.DB != 2 {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}
}

func TestLoad_EnvVarsTakePrecedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := `
base_url = "https://from-file.example"

[storage]
backend = "file"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("STUDYHIVE_API_URL", "https://from-env.example")
	t.Setenv("STUDYHIVE_STORAGE", "memory")
	t.Setenv("STUDYHIVE_REDIS_ADDR", "redis.env:6380")

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "https://from-env.example" {
		t.Errorf("expected env base url, got '%s'", cfg.BaseURL)
	}
	if cfg.Storage.Backend != config.BackendMemory {
		t.Errorf("expected env backend, got '%s'", cfg.Storage.Backend)
	}
	if cfg.Redis.Addr != "redis.env:6380" {
		t.Errorf("expected env redis addr, got '%s'", cfg.Redis.Addr)
	}
}

func TestLoad_MissingFileIsNotError(t *testing.T) {
	t.Setenv("STUDYHIVE_API_URL", "https://only-env.example")
	cfg, err := config.LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("missing file should not be an error, got: %v", err)
	}
	if cfg.BaseURL != "https://only-env.example" {
		t.Errorf("expected base url from env, got '%s'", cfg.BaseURL)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("base_url = "), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadFrom(configPath); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDefaults(t *testing.T) {
	var cfg config.Config

	if cfg.BaseURLOrDefault() != "http://localhost:5000" {
		t.Errorf("unexpected default base url '%s'", cfg.BaseURLOrDefault())
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("unexpected default timeout %s", cfg.Timeout())
	}
	if cfg.BackendOrDefault() != config.BackendFile {
		t.Errorf("unexpected default backend '%s'", cfg.BackendOrDefault())
	}
	if cfg.RedisAddrOrDefault() != "localhost:6379" {
		t.Errorf("unexpected default redis addr '%s'", cfg.RedisAddrOrDefault())
	}
	if filepath.Base(cfg.TokenPathOrDefault()) != "tokens.toml" {
		t.Errorf("unexpected default token path '%s'", cfg.TokenPathOrDefault())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{name: "defaults", cfg: config.Config{}},
		{name: "redis", cfg: config.Config{Storage: config.StorageConfig{Backend: "redis"}}},
		{name: "unknown backend", cfg: config.Config{Storage: config.StorageConfig{Backend: "sqlite"}}, wantErr: true},
		{name: "negative timeout", cfg: config.Config{TimeoutSeconds: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("STUDYHIVE_API_URL", "")
	t.Setenv("STUDYHIVE_STORAGE", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := config.Config{
		BaseURL: "https://api.studyhive.app",
		Storage: config.StorageConfig{Backend: config.BackendFile, Path: "/tmp/tokens.toml"},
	}

	if err := config.Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	got, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.BaseURL != want.BaseURL || got.Storage != want.Storage {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}
