package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings
const (
	EnvDataDir     = "STARRY_DATA_DIR"
	EnvPort        = "STARRY_PORT"
	EnvStorage     = "STARRY_STORAGE"
	EnvDatabaseURL = "STARRY_DATABASE_URL"
	EnvS3Bucket    = "STARRY_S3_BUCKET"
	EnvJWTSecret   = "STARRY_JWT_SECRET"
	EnvLogLevel    = "LOG_LEVEL"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			TLS:             TLSConfig{AutoGenerate: true},
		},
		Storage: StorageConfig{
			Backend: "file",
			DataDir: DefaultDataDir(),
		},
		Layout: LayoutConfig{
			CacheSize: 8,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
			Issuer:   "starry-habits",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDataDir is ~/.local/share/starry-habits, or ./.starry without a home directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".starry"
	}
	return filepath.Join(home, ".local", "share", "starry-habits")
}

// DefaultPath is the config file read when none is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "starry.yaml"
	}
	return filepath.Join(home, ".config", "starry-habits", "config.yaml")
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error when path is the
// default location; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := loadFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFile decodes YAML or TOML into cfg, chosen by file extension.
func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(raw), cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

// ApplyEnv overrides cfg with any set environment variables.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvDataDir); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a port number", EnvPort, v)
		}
		cfg.Server.Port = port
	}
	if v := getenv(EnvStorage); v != "" {
		cfg.Storage.Backend = v
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := getenv(EnvS3Bucket); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := getenv(EnvJWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
		cfg.Auth.Enabled = true
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return nil
}
