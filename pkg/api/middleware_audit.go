package api

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dd0wney/starry-habits/pkg/api/middleware"
	"github.com/dd0wney/starry-habits/pkg/audit"
)

// DefaultAuditLimit is the number of events GET /audit returns by default.
const DefaultAuditLimit = 50

// audited records the outcome of a mutating request. It runs after
// authentication so the token subject is known.
func (s *Server) audited(action audit.Action, resource audit.ResourceType, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := middleware.NewStatusRecorder(w)
		next(rec, r)

		event := audit.Event{
			Action:       action,
			ResourceType: resource,
			ResourceID:   auditResourceID(r),
			Status:       audit.StatusSuccess,
			StatusCode:   rec.Status,
			RequestID:    middleware.GetRequestID(r),
			IPAddress:    clientIP(r),
		}
		if rec.Status >= http.StatusBadRequest {
			event.Status = audit.StatusFailure
		}
		if claims, ok := ClaimsFrom(r.Context()); ok {
			event.Subject = claims.Subject
		}
		s.audit.Log(event)
	}
}

func auditResourceID(r *http.Request) string {
	if id := r.PathValue("id"); id != "" {
		return id
	}
	return r.PathValue("date")
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// handleAudit lists recent changes, newest first. Query parameters:
// limit, subject, action, resource, status and since (RFC 3339).
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := DefaultAuditLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			s.respondError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	filter := audit.Filter{
		Subject:    q.Get("subject"),
		Action:     audit.Action(q.Get("action")),
		ResourceID: q.Get("resource"),
		Status:     audit.Status(q.Get("status")),
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = since
	}

	events := s.audit.Recent(limit, filter)
	s.respondJSON(w, http.StatusOK, AuditResponse{Events: events, Count: len(events), Total: s.audit.Total()})
}
