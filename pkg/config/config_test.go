package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default() failed validation: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "starry.yaml", `
server:
  port: 9090
  read_timeout: 5s
storage:
  backend: memory
layout:
  cache_size: 4
  seed: 42
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 15*time.Second {
		t.Errorf("unset fields should keep defaults, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Storage.Backend != "memory" || cfg.Layout.CacheSize != 4 || cfg.Layout.Seed != 42 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "starry.toml", `
[server]
port = 7000
idle_timeout = "2m"

[storage]
backend = "s3"
bucket = "night-sky"
compress = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7000 || cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	opts := cfg.StorageOptions()
	if opts.Backend != "s3" || opts.Bucket != "night-sky" || !opts.Compress {
		t.Errorf("storage options = %+v", opts)
	}
}

func TestLoadRejectsUnknownYAMLKeys(t *testing.T) {
	path := writeFile(t, "starry.yaml", "server:\n  prot: 80\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for misspelled key")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "starry.ini", "port=1")
	if _, err := Load(path); err == nil {
		t.Error("expected error for .ini file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDataDir:     "/srv/starry",
		EnvPort:        "9999",
		EnvStorage:     "postgres",
		EnvDatabaseURL: "postgres://localhost/starry",
		EnvS3Bucket:    "bucket",
		EnvJWTSecret:   strings.Repeat("s", 32),
		EnvLogLevel:    "warn",
	}
	cfg := Default()

	if err := ApplyEnv(cfg, func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Storage.DataDir != "/srv/starry" || cfg.Server.Port != 9999 || cfg.Storage.Backend != "postgres" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Auth.Enabled {
		t.Error("setting a JWT secret should enable auth")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("env-configured cfg invalid: %v", err)
	}

	bad := Default()
	if err := ApplyEnv(bad, func(k string) string {
		if k == EnvPort {
			return "eighty"
		}
		return ""
	}); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"postgres url", func(c *Config) { c.Storage.Backend = "postgres" }, "storage.database_url"},
		{"s3 bucket", func(c *Config) { c.Storage.Backend = "s3" }, "storage.bucket"},
		{"cache size", func(c *Config) { c.Layout.CacheSize = 0 }, "layout.cache_size"},
		{"short secret", func(c *Config) { c.Auth.Enabled = true; c.Auth.JWTSecret = "short" }, "auth.jwt_secret"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"tls files", func(c *Config) { c.Server.TLS = TLSConfig{Enabled: true, CertFile: "c.pem"} }, "server.tls.key_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() = %v, want error mentioning %s", err, tt.field)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			if err := WriteDefault(path); err != nil {
				t.Fatalf("WriteDefault failed: %v", err)
			}

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("written default does not load: %v", err)
			}
			if cfg.Server.Port != 8080 || cfg.Auth.TokenTTL != 24*time.Hour {
				t.Errorf("cfg = %+v", cfg)
			}

			if err := WriteDefault(path); !errors.Is(err, ErrConfigExists) {
				t.Errorf("second WriteDefault = %v, want ErrConfigExists", err)
			}
		})
	}
}

func TestTLSOptions(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "/srv/starry"
	cfg.Server.TLS.Enabled = true
	cfg.Server.TLS.Hosts = []string{"habits.local"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("auto-generated TLS should validate: %v", err)
	}
	opts := cfg.TLSOptions()
	if !opts.Enabled || !opts.AutoGenerate || opts.Dir != filepath.Join("/srv/starry", "tls") {
		t.Errorf("TLSOptions() = %+v", opts)
	}
	if len(opts.Hosts) != 1 || opts.Hosts[0] != "habits.local" {
		t.Errorf("hosts = %v", opts.Hosts)
	}
}
