package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dd0wney/starry-habits/pkg/api/middleware"
)

// metricsMiddleware tracks HTTP request metrics for one route
func (s *Server) metricsMiddleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		s.metrics.HTTPRequestsInFlight.Inc()
		defer s.metrics.HTTPRequestsInFlight.Dec()

		rec := middleware.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		s.metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(rec.Status), time.Since(start))
		s.metrics.HTTPResponseSizeBytes.WithLabelValues(r.Method, route).Observe(float64(rec.Bytes))
	})
}
