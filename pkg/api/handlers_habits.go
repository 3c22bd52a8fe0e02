package api

import (
	"net/http"

	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/validation"
)

// habitID extracts and validates the {id} path value
func (s *Server) habitID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if err := validation.ValidateHabitID(id); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	all, err := s.service.Habits(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "list habits")
		return
	}

	list := all
	switch r.URL.Query().Get("archived") {
	case "":
	case "true":
		list = filterHabits(all, true)
	case "false":
		list = filterHabits(all, false)
	default:
		s.respondError(w, http.StatusBadRequest, "archived must be true or false")
		return
	}
	s.respondJSON(w, http.StatusOK, HabitListResponse{Habits: list, Count: len(list)})
}

func filterHabits(list []habits.Habit, archived bool) []habits.Habit {
	out := make([]habits.Habit, 0, len(list))
	for _, h := range list {
		if h.Archived == archived {
			out = append(out, h)
		}
	}
	return out
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var req validation.HabitRequest
	rd := newRequestDecoder(r).
		DecodeJSON(&req).
		Validate(func() error { return validation.ValidateHabitRequest(&req) })
	if rd.HasError() {
		rd.Respond(s, w)
		return
	}

	habit, err := s.service.AddHabit(r.Context(), habits.HabitInput{
		Name:       req.Name,
		Icon:       req.Icon,
		Importance: habits.Importance(req.Importance),
	})
	if err != nil {
		s.respondServiceError(w, err, "create habit")
		return
	}
	w.Header().Set("Location", "/habits/"+habit.ID)
	s.respondJSON(w, http.StatusCreated, habit)
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.habitID(w, r)
	if !ok {
		return
	}
	habit, err := s.service.Habit(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err, "get habit")
		return
	}
	s.respondJSON(w, http.StatusOK, habit)
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.habitID(w, r)
	if !ok {
		return
	}

	var req validation.HabitPatch
	rd := newRequestDecoder(r).
		DecodeJSON(&req).
		Validate(func() error { return validation.ValidateHabitPatch(&req) })
	if rd.HasError() {
		rd.Respond(s, w)
		return
	}

	upd := habits.HabitUpdate{Name: req.Name, Icon: req.Icon}
	if req.Importance != nil {
		importance := habits.Importance(*req.Importance)
		upd.Importance = &importance
	}

	habit, err := s.service.UpdateHabit(r.Context(), id, upd)
	if err != nil {
		s.respondServiceError(w, err, "update habit")
		return
	}
	s.respondJSON(w, http.StatusOK, habit)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.habitID(w, r)
	if !ok {
		return
	}
	if err := s.service.DeleteHabit(r.Context(), id); err != nil {
		s.respondServiceError(w, err, "delete habit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleArchiveHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.habitID(w, r)
	if !ok {
		return
	}
	if err := s.service.ArchiveHabit(r.Context(), id); err != nil {
		s.respondServiceError(w, err, "archive habit")
		return
	}
	habit, err := s.service.Habit(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err, "archive habit")
		return
	}
	s.respondJSON(w, http.StatusOK, habit)
}

func (s *Server) handleToggleHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.habitID(w, r)
	if !ok {
		return
	}
	date, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	if date == "" {
		date = s.service.Today()
	}

	completed, err := s.service.Toggle(r.Context(), id, date)
	if err != nil {
		s.respondServiceError(w, err, "toggle habit")
		return
	}
	s.respondJSON(w, http.StatusOK, ToggleResponse{HabitID: id, Date: date, Completed: completed})
}

func (s *Server) handleSetNote(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	var req validation.NoteRequest
	rd := newRequestDecoder(r).
		Validate(func() error { return validation.ValidateDateKey(date) }).
		DecodeJSON(&req).
		Validate(func() error { return validation.ValidateNote(&req) })
	if rd.HasError() {
		rd.Respond(s, w)
		return
	}

	if err := s.service.SetNote(r.Context(), date, req.Note); err != nil {
		s.respondServiceError(w, err, "set note")
		return
	}
	s.respondJSON(w, http.StatusOK, NoteResponse{Date: date, Note: req.Note})
}
