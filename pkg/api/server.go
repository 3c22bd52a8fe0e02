// Package api serves the constellation and habit operations over HTTP.
package api

import (
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/dd0wney/starry-habits/pkg/api/middleware"
	"github.com/dd0wney/starry-habits/pkg/audit"
	"github.com/dd0wney/starry-habits/pkg/auth"
	"github.com/dd0wney/starry-habits/pkg/constellation"
	"github.com/dd0wney/starry-habits/pkg/health"
	"github.com/dd0wney/starry-habits/pkg/logging"
	"github.com/dd0wney/starry-habits/pkg/metrics"
)

// DefaultMaxBodyBytes bounds request bodies; imports are the largest.
const DefaultMaxBodyBytes = 4 << 20

// Options configures a Server. Service is required.
type Options struct {
	Service *constellation.Service
	Metrics *metrics.Registry
	Logger  logging.Logger
	// Tokens guards the mutating routes. Nil leaves them open.
	Tokens       auth.TokenValidator
	Backend      string
	MaxBodyBytes int64
	// Audit receives one event per mutating request. Nil keeps a
	// private trail of audit.DefaultBufferSize events.
	Audit *audit.AuditLogger
}

// Server is the HTTP API
type Server struct {
	service *constellation.Service
	metrics *metrics.Registry
	logger  logging.Logger
	tokens  auth.TokenValidator
	audit   *audit.AuditLogger
	health  *health.HealthChecker
	mux     *http.ServeMux
	handler http.Handler
	started time.Time
}

// NewServer builds the routes and middleware chain.
func NewServer(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, errors.New("api: service is required")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Audit == nil {
		opts.Audit = audit.NewAuditLogger(audit.DefaultBufferSize)
	}

	s := &Server{
		service: opts.Service,
		metrics: opts.Metrics,
		logger:  opts.Logger.With(logging.Component("api")),
		tokens:  opts.Tokens,
		audit:   opts.Audit,
		health:  health.NewHealthChecker(),
		mux:     http.NewServeMux(),
		started: time.Now(),
	}

	storageCheck := health.StorageCheck(opts.Backend, s.service.Ping, 500*time.Millisecond)
	s.health.RegisterCheck("storage", storageCheck)
	s.health.RegisterCheck("layout_cache", health.LayoutCacheCheck(s.service.CacheStats))
	s.health.RegisterCheck("memory", health.MemoryCheck(readMemory))
	s.health.RegisterReadinessCheck("storage", storageCheck)
	s.health.RegisterLivenessCheck("process", health.SimpleCheck("process"))

	s.registerRoutes()
	s.handler = middleware.Chain(s.mux,
		middleware.PanicRecovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.SecurityHeaders(),
		middleware.BodySizeLimit(opts.MaxBodyBytes),
	)
	return s, nil
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// AuthEnabled reports whether mutating routes require a token
func (s *Server) AuthEnabled() bool {
	return s.tokens != nil
}

// UpdateSystemMetrics refreshes uptime and runtime gauges
func (s *Server) UpdateSystemMetrics() {
	s.metrics.UpdateSystemMetrics(s.started)
	size, _, _ := s.service.CacheStats()
	s.metrics.SetLayoutCacheSize(size)
}

func readMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
