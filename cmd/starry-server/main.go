package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/starry-habits/pkg/api"
	"github.com/dd0wney/starry-habits/pkg/app"
	"github.com/dd0wney/starry-habits/pkg/config"
	"github.com/dd0wney/starry-habits/pkg/logging"
	"github.com/dd0wney/starry-habits/pkg/server"
	tlsconfig "github.com/dd0wney/starry-habits/pkg/tls"
)

const metricsInterval = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "Config file (YAML or TOML)")
	port := flag.Int("port", 0, "HTTP server port (overrides config and STARRY_PORT)")
	host := flag.String("host", "", "Listen address (overrides config)")
	flag.Parse()

	if err := run(*configPath, *host, *port); err != nil {
		fmt.Fprintln(os.Stderr, "starry-server:", err)
		os.Exit(1)
	}
}

func run(configPath, host string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, app.Options{LogWriter: os.Stdout})
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.Logger.With(logging.Component("server"))

	opts := api.Options{
		Service: a.Service,
		Metrics: a.Metrics,
		Logger:  a.Logger,
		Backend: cfg.Storage.Backend,
	}
	// A nil *TokenManager must not become a non-nil interface.
	if a.Tokens != nil {
		opts.Tokens = a.Tokens
	}
	srv, err := api.NewServer(opts)
	if err != nil {
		return err
	}

	tlsCfg, err := tlsconfig.LoadTLSConfig(cfg.TLSOptions())
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	gs := server.NewGracefulServer(server.Options{
		Addr:            addr,
		Handler:         srv.Handler(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		TLSConfig:       tlsCfg,
		Logger:          logger,
	})
	gs.SetConfigReloadFunc(func() error {
		next, err := config.Load(configPath)
		if err != nil {
			return err
		}
		a.Logger.SetLevel(logging.ParseLevel(next.Log.Level))
		logger.Info("log level reloaded", logging.String("level", next.Log.Level))
		return nil
	})

	go server.Every(ctx, metricsInterval, srv.UpdateSystemMetrics)

	logger.Info("starry-habits server starting",
		logging.String("addr", addr),
		logging.String("storage", cfg.Storage.Backend),
		logging.Bool("auth", srv.AuthEnabled()),
		logging.Bool("tls", tlsCfg != nil),
		logging.Seed(a.Service.Seed()),
	)
	if err := gs.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server exited")
	return nil
}
