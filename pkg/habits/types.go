package habits

import (
	"slices"
	"strings"
)

// Importance controls how large a habit's star is drawn.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// DefaultIcon is used when a habit is created without one.
const DefaultIcon = "✦"

// CreatedAtLayout is the local timestamp format stored in Habit.CreatedAt.
const CreatedAtLayout = "2006-01-02T15:04:05"

// ParseImportance accepts low, medium or high; empty input means medium.
func ParseImportance(s string) (Importance, error) {
	switch Importance(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImportanceMedium:
		return ImportanceMedium, nil
	case ImportanceLow:
		return ImportanceLow, nil
	case ImportanceHigh:
		return ImportanceHigh, nil
	default:
		return "", ErrInvalidImportance
	}
}

// Scale is the relative star size for the importance level.
func (i Importance) Scale() float64 {
	switch i {
	case ImportanceHigh:
		return 1.4
	case ImportanceMedium:
		return 1.2
	default:
		return 1.0
	}
}

// Habit is a tracked daily practice.
type Habit struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Icon       string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Importance Importance `json:"importance" yaml:"importance"`
	CreatedAt  string     `json:"createdAt" yaml:"createdAt"`
	Archived   bool       `json:"archived" yaml:"archived"`
}

// DayLog records which habits were completed on one calendar day.
type DayLog struct {
	Date            string   `json:"date" yaml:"date"`
	CompletedHabits []string `json:"completedHabits" yaml:"completedHabits"`
	Note            string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// Data is the full persisted state of one tracker.
type Data struct {
	Habits []Habit  `json:"habits" yaml:"habits"`
	Logs   []DayLog `json:"logs" yaml:"logs"`
}

// HabitInput describes a habit to be created.
type HabitInput struct {
	Name       string
	Icon       string
	Importance Importance
}

// HabitUpdate changes selected fields of a habit; nil fields are kept.
type HabitUpdate struct {
	Name       *string
	Icon       *string
	Importance *Importance
	Archived   *bool
}

// NewData returns an empty tracker.
func NewData() *Data {
	return &Data{Habits: []Habit{}, Logs: []DayLog{}}
}

// Clone returns a deep copy so that operations never share slices with their input.
func (d *Data) Clone() *Data {
	if d == nil {
		return NewData()
	}
	out := &Data{
		Habits: slices.Clone(d.Habits),
		Logs:   make([]DayLog, len(d.Logs)),
	}
	if out.Habits == nil {
		out.Habits = []Habit{}
	}
	for i, log := range d.Logs {
		log.CompletedHabits = slices.Clone(log.CompletedHabits)
		if log.CompletedHabits == nil {
			log.CompletedHabits = []string{}
		}
		out.Logs[i] = log
	}
	return out
}

// Normalize fills the defaults older or hand-edited data may lack.
func (d *Data) Normalize() {
	if d.Habits == nil {
		d.Habits = []Habit{}
	}
	if d.Logs == nil {
		d.Logs = []DayLog{}
	}
	for i := range d.Habits {
		if d.Habits[i].Importance == "" {
			d.Habits[i].Importance = ImportanceMedium
		}
	}
	for i := range d.Logs {
		if d.Logs[i].CompletedHabits == nil {
			d.Logs[i].CompletedHabits = []string{}
		}
	}
}

// Check reports the first structural problem in data loaded from outside:
// duplicate habit ids, unknown importance levels or malformed log dates.
func (d *Data) Check() error {
	seen := make(map[string]bool, len(d.Habits))
	for _, h := range d.Habits {
		if seen[h.ID] {
			return NewError("check").Habit(h.ID).Cause(ErrDuplicateHabit).Err()
		}
		seen[h.ID] = true
		if strings.TrimSpace(h.Name) == "" {
			return NewError("check").Habit(h.ID).Cause(ErrInvalidName).Err()
		}
		if _, err := ParseImportance(string(h.Importance)); err != nil {
			return NewError("check").Habit(h.ID).Cause(err).Err()
		}
	}
	for _, log := range d.Logs {
		if _, err := ParseDateKey(log.Date); err != nil {
			return NewError("check").Day(log.Date).Cause(err).Err()
		}
	}
	return nil
}
