package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/logging"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondServiceError maps domain errors to status codes. Messages of
// client errors are passed through; anything else is logged and replaced
// with a generic message.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case habits.IsNotFound(err):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, habits.ErrHabitArchived):
		s.respondError(w, http.StatusConflict, err.Error())
	case habits.IsInvalidInput(err):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, sanitizeError(s.logger, err, operation))
	}
}

// sanitizeError logs err and returns a message safe to show clients.
func sanitizeError(logger logging.Logger, err error, operation string) string {
	logger.Error("request failed", logging.Operation(operation), logging.Error(err))
	return fmt.Sprintf("%s failed", operation)
}

// requestDecoder decodes and validates request bodies with a fluent
// interface. The first failure sticks; check HasError once at the end.
type requestDecoder struct {
	r          *http.Request
	err        error
	statusCode int
}

func newRequestDecoder(r *http.Request) *requestDecoder {
	return &requestDecoder{r: r}
}

// DecodeJSON decodes the body into v, rejecting unknown fields.
func (rd *requestDecoder) DecodeJSON(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	dec := json.NewDecoder(rd.r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			rd.fail(http.StatusRequestEntityTooLarge, errors.New("request body too large"))
		case errors.Is(err, io.EOF):
			rd.fail(http.StatusBadRequest, errors.New("request body is empty"))
		default:
			rd.fail(http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		}
	}
	return rd
}

// Validate runs check and records its error as a bad request.
func (rd *requestDecoder) Validate(check func() error) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := check(); err != nil {
		rd.fail(http.StatusBadRequest, err)
	}
	return rd
}

func (rd *requestDecoder) fail(status int, err error) {
	rd.statusCode = status
	rd.err = err
}

// HasError returns true if any error occurred during decoding/validation.
func (rd *requestDecoder) HasError() bool {
	return rd.err != nil
}

// Respond writes the recorded error.
func (rd *requestDecoder) Respond(s *Server, w http.ResponseWriter) {
	s.respondError(w, rd.statusCode, rd.err.Error())
}
