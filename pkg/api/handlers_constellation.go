package api

import (
	"bytes"
	"net/http"

	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/validation"
	"github.com/dd0wney/starry-habits/pkg/visualization"
)

// dateParam returns the optional ?date= query value, validated.
func (s *Server) dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return "", true
	}
	if err := validation.ValidateDateKey(date); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return date, true
}

func (s *Server) handleConstellation(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	view, err := s.service.View(r.Context(), date)
	if err != nil {
		s.respondServiceError(w, err, "constellation")
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleConstellationSVG(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	view, err := s.service.View(r.Context(), date)
	if err != nil {
		s.respondServiceError(w, err, "constellation")
		return
	}

	var buf bytes.Buffer
	if err := visualization.RenderSVG(&buf, view.Constellation()); err != nil {
		s.respondServiceError(w, err, "render")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	if date == "" {
		date = s.service.Today()
	}
	ref, err := habits.ParseDateKey(date)
	if err != nil {
		s.respondServiceError(w, err, "week")
		return
	}

	week, err := s.service.Week(r.Context(), ref)
	if err != nil {
		s.respondServiceError(w, err, "week")
		return
	}
	s.respondJSON(w, http.StatusOK, week)
}

func (s *Server) handleReshuffle(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, ReshuffleResponse{Seed: s.service.Reshuffle()})
}
