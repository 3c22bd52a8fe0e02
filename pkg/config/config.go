// Package config loads starry-habits settings from a YAML or TOML file and
// the environment.
package config

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/dd0wney/starry-habits/pkg/logging"
	"github.com/dd0wney/starry-habits/pkg/storage"
	tlsconfig "github.com/dd0wney/starry-habits/pkg/tls"
	"github.com/dd0wney/starry-habits/pkg/validation"
)

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Layout  LayoutConfig  `yaml:"layout" toml:"layout"`
	Auth    AuthConfig    `yaml:"auth" toml:"auth"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" toml:"host"`
	Port            int           `yaml:"port" toml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	TLS             TLSConfig     `yaml:"tls" toml:"tls"`
}

// TLSConfig enables HTTPS. Without cert_file and key_file, auto_generate
// keeps a self-signed pair under <data_dir>/tls.
type TLSConfig struct {
	Enabled      bool     `yaml:"enabled" toml:"enabled"`
	CertFile     string   `yaml:"cert_file" toml:"cert_file"`
	KeyFile      string   `yaml:"key_file" toml:"key_file"`
	AutoGenerate bool     `yaml:"auto_generate" toml:"auto_generate"`
	Hosts        []string `yaml:"hosts" toml:"hosts"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend" toml:"backend"`
	DataDir     string `yaml:"data_dir" toml:"data_dir"`
	Compress    bool   `yaml:"compress" toml:"compress"`
	DatabaseURL string `yaml:"database_url" toml:"database_url"`
	Profile     string `yaml:"profile" toml:"profile"`
	Bucket      string `yaml:"bucket" toml:"bucket"`
	Key         string `yaml:"key" toml:"key"`
	Region      string `yaml:"region" toml:"region"`
	Endpoint    string `yaml:"endpoint" toml:"endpoint"`
}

type LayoutConfig struct {
	CacheSize int `yaml:"cache_size" toml:"cache_size"`
	// Seed fixes the session seed; 0 draws a random one at startup.
	Seed int64 `yaml:"seed" toml:"seed"`
}

type AuthConfig struct {
	Enabled   bool          `yaml:"enabled" toml:"enabled"`
	JWTSecret string        `yaml:"jwt_secret" toml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl" toml:"token_ttl"`
	Issuer    string        `yaml:"issuer" toml:"issuer"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// MinSecretLength is the shortest accepted JWT signing secret.
const MinSecretLength = 32

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("server").
		RangeInt("port", c.Server.Port, 1, 65535).
		MinDuration("read_timeout", c.Server.ReadTimeout, time.Second).
		MinDuration("write_timeout", c.Server.WriteTimeout, time.Second).
		MinDuration("shutdown_timeout", c.Server.ShutdownTimeout, 0)

	tlsCV := validation.NewConfigValidator("server.tls").
		When(c.Server.TLS.Enabled && !c.Server.TLS.AutoGenerate, func(v *validation.ConfigValidator) {
			v.Required("cert_file", c.Server.TLS.CertFile).
				Required("key_file", c.Server.TLS.KeyFile)
		})

	storageCV := validation.NewConfigValidator("storage").
		OneOf("backend", c.Storage.Backend, storage.Backends).
		When(c.Storage.Backend == storage.BackendFile, func(v *validation.ConfigValidator) {
			v.Required("data_dir", c.Storage.DataDir)
		}).
		When(c.Storage.Backend == storage.BackendPostgres, func(v *validation.ConfigValidator) {
			v.Required("database_url", c.Storage.DatabaseURL)
		}).
		When(c.Storage.Backend == storage.BackendS3, func(v *validation.ConfigValidator) {
			v.Required("bucket", c.Storage.Bucket)
		})

	layoutCV := validation.NewConfigValidator("layout").
		RangeInt("cache_size", c.Layout.CacheSize, 1, 1024)

	authCV := validation.NewConfigValidator("auth").
		When(c.Auth.Enabled, func(v *validation.ConfigValidator) {
			v.MinLength("jwt_secret", c.Auth.JWTSecret, MinSecretLength).
				MinDuration("token_ttl", c.Auth.TokenTTL, time.Minute)
		})

	logCV := validation.NewConfigValidator("log").
		Custom("level", func() error {
			_, err := logging.LookupLevel(c.Log.Level)
			return err
		})

	var errs []error
	for _, v := range []*validation.ConfigValidator{cv, tlsCV, storageCV, layoutCV, authCV, logCV} {
		errs = append(errs, v.Errors()...)
	}
	return errors.Join(errs...)
}

// StorageOptions converts the storage section for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:     c.Storage.Backend,
		DataDir:     c.Storage.DataDir,
		Compress:    c.Storage.Compress,
		DatabaseURL: c.Storage.DatabaseURL,
		Profile:     c.Storage.Profile,
		Bucket:      c.Storage.Bucket,
		Key:         c.Storage.Key,
		Region:      c.Storage.Region,
		Endpoint:    c.Storage.Endpoint,
	}
}

// TLSOptions converts the server.tls section for tlsconfig.LoadTLSConfig.
func (c *Config) TLSOptions() tlsconfig.Config {
	dir := c.Storage.DataDir
	if dir == "" {
		dir = DefaultDataDir()
	}
	return tlsconfig.Config{
		Enabled:      c.Server.TLS.Enabled,
		CertFile:     c.Server.TLS.CertFile,
		KeyFile:      c.Server.TLS.KeyFile,
		AutoGenerate: c.Server.TLS.AutoGenerate,
		Dir:          filepath.Join(dir, "tls"),
		Hosts:        c.Server.TLS.Hosts,
	}
}
