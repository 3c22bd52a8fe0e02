package api

import (
	"net/http"
	"strings"

	"github.com/dd0wney/starry-habits/pkg/audit"
)

func (s *Server) registerRoutes() {
	// Health and metrics
	s.route("GET /health", s.health.HTTPHandler())
	s.route("GET /health/ready", s.health.ReadinessHandler())
	s.route("GET /health/live", s.health.LivenessHandler())
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// Sky
	s.route("GET /constellation", s.handleConstellation)
	s.route("GET /constellation.svg", s.handleConstellationSVG)
	s.route("GET /week", s.handleWeek)
	s.route("POST /session/reshuffle", s.write(audit.ActionReshuffle, audit.ResourceSession, s.handleReshuffle))

	// Habits
	s.route("GET /habits", s.handleListHabits)
	s.route("POST /habits", s.write(audit.ActionCreate, audit.ResourceHabit, s.handleCreateHabit))
	s.route("GET /habits/{id}", s.handleGetHabit)
	s.route("PUT /habits/{id}", s.write(audit.ActionUpdate, audit.ResourceHabit, s.handleUpdateHabit))
	s.route("DELETE /habits/{id}", s.write(audit.ActionDelete, audit.ResourceHabit, s.handleDeleteHabit))
	s.route("POST /habits/{id}/toggle", s.write(audit.ActionToggle, audit.ResourceHabit, s.handleToggleHabit))
	s.route("POST /habits/{id}/archive", s.write(audit.ActionArchive, audit.ResourceHabit, s.handleArchiveHabit))
	s.route("PUT /notes/{date}", s.write(audit.ActionNote, audit.ResourceDay, s.handleSetNote))

	// Backup
	s.route("GET /export", s.handleExport)
	s.route("POST /import", s.write(audit.ActionImport, audit.ResourceData, s.handleImport))

	// Audit trail
	s.route("GET /audit", s.requireToken(s.handleAudit))
}

// write guards a mutating handler and records the attempt in the audit trail.
func (s *Server) write(action audit.Action, resource audit.ResourceType, h http.HandlerFunc) http.HandlerFunc {
	return s.requireWrite(s.audited(action, resource, h))
}

// route registers h under pattern with per-route metrics. The route label
// is the pattern path so that ids never become label values.
func (s *Server) route(pattern string, h http.HandlerFunc) {
	_, path, _ := strings.Cut(pattern, " ")
	s.mux.Handle(pattern, s.metricsMiddleware(path, h))
}
