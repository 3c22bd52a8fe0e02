package api

import (
	"github.com/dd0wney/starry-habits/pkg/audit"
	"github.com/dd0wney/starry-habits/pkg/habits"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HabitListResponse lists habits
type HabitListResponse struct {
	Habits []habits.Habit `json:"habits"`
	Count  int            `json:"count"`
}

// ToggleResponse reports a habit's completion after a toggle
type ToggleResponse struct {
	HabitID   string `json:"habitId"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// NoteResponse echoes a stored note
type NoteResponse struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

// ReshuffleResponse carries the new session seed
type ReshuffleResponse struct {
	Seed int64 `json:"seed"`
}

// ImportResponse summarizes an import
type ImportResponse struct {
	Habits int `json:"habits"`
	Logs   int `json:"logs"`
}

// AuditResponse lists audit events, newest first
type AuditResponse struct {
	Events []audit.Event `json:"events"`
	Count  int           `json:"count"`
	// Total counts every event since startup, including evicted ones.
	Total int64 `json:"total"`
}
