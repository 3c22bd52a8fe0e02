package habits

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrHabitNotFound     = errors.New("habit not found")
	ErrHabitArchived     = errors.New("habit is archived")
	ErrInvalidName       = errors.New("habit name is empty")
	ErrInvalidImportance = errors.New("importance must be low, medium or high")
	ErrInvalidDate       = errors.New("date must use the YYYY-MM-DD format")
	ErrDuplicateHabit    = errors.New("habit id already exists")
)

// HabitError describes a failed operation on a habit or a day log.
type HabitError struct {
	Op      string // Operation that failed (e.g., "toggle", "archive")
	HabitID string
	Date    string
	Cause   error
}

// Error implements the error interface.
func (e *HabitError) Error() string {
	switch {
	case e.HabitID != "" && e.Date != "":
		return fmt.Sprintf("%s habit %s on %s: %v", e.Op, e.HabitID, e.Date, e.Cause)
	case e.HabitID != "":
		return fmt.Sprintf("%s habit %s: %v", e.Op, e.HabitID, e.Cause)
	case e.Date != "":
		return fmt.Sprintf("%s day %s: %v", e.Op, e.Date, e.Cause)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
}

// Unwrap returns the underlying cause for error chain support.
func (e *HabitError) Unwrap() error {
	return e.Cause
}

// ErrorBuilder provides a fluent interface for building HabitErrors.
type ErrorBuilder struct {
	err HabitError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: HabitError{Op: op}}
}

// Habit sets the habit the operation targeted.
func (b *ErrorBuilder) Habit(id string) *ErrorBuilder {
	b.err.HabitID = id
	return b
}

// Day sets the calendar date the operation targeted.
func (b *ErrorBuilder) Day(date string) *ErrorBuilder {
	b.err.Date = date
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

func notFound(op, id string) error {
	return NewError(op).Habit(id).Cause(ErrHabitNotFound).Err()
}

// IsNotFound reports whether err refers to a missing habit.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrHabitNotFound)
}

// IsInvalidInput reports whether err was caused by bad caller input
// rather than by state or I/O.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidImportance) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrDuplicateHabit)
}
