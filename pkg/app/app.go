// Package app assembles the configured store, service and token manager
// shared by the starry binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dd0wney/starry-habits/pkg/auth"
	"github.com/dd0wney/starry-habits/pkg/config"
	"github.com/dd0wney/starry-habits/pkg/constellation"
	"github.com/dd0wney/starry-habits/pkg/logging"
	"github.com/dd0wney/starry-habits/pkg/metrics"
	"github.com/dd0wney/starry-habits/pkg/storage"
)

// App is a running tracker.
type App struct {
	Config  *config.Config
	Logger  *logging.JSONLogger
	Metrics *metrics.Registry
	Service *constellation.Service
	// Tokens is nil unless auth is enabled.
	Tokens *auth.TokenManager
}

// Options tunes Open for the calling binary.
type Options struct {
	LogWriter io.Writer
	// MinLevel raises the configured log level, e.g. to keep the CLI quiet.
	MinLevel logging.Level
}

// Open wires cfg into an App. The caller must Close it.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	level := logging.ParseLevel(cfg.Log.Level)
	if opts.MinLevel > level {
		level = opts.MinLevel
	}
	if opts.LogWriter == nil {
		opts.LogWriter = os.Stderr
	}
	logger := logging.NewJSONLogger(opts.LogWriter, level)
	reg := metrics.NewRegistry()

	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	svc, err := constellation.NewService(constellation.Options{
		Store:     storage.NewInstrumented(store, cfg.Storage.Backend, reg, logger),
		Logger:    logger,
		Metrics:   reg,
		CacheSize: cfg.Layout.CacheSize,
		Seed:      cfg.Layout.Seed,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, Metrics: reg, Service: svc}
	if cfg.Auth.Enabled {
		a.Tokens, err = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("failed to configure auth: %w", err)
		}
	}
	return a, nil
}

// Load reads the configuration at path and opens it.
func Load(ctx context.Context, path string, opts Options) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return Open(ctx, cfg, opts)
}

// Close releases the store.
func (a *App) Close() error {
	return a.Service.Close()
}
