// Package audit keeps a bounded in-memory trail of changes made through the API.
package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action names a kind of change
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionArchive   Action = "archive"
	ActionDelete    Action = "delete"
	ActionToggle    Action = "toggle"
	ActionNote      Action = "note"
	ActionImport    Action = "import"
	ActionReshuffle Action = "reshuffle"
)

// ResourceType is what an action touched
type ResourceType string

const (
	ResourceHabit   ResourceType = "habit"
	ResourceDay     ResourceType = "day"
	ResourceSession ResourceType = "session"
	ResourceData    ResourceType = "data"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// DefaultBufferSize is the number of events kept when none is given.
const DefaultBufferSize = 256

// Event is a single audit entry
type Event struct {
	ID           string       `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	Subject      string       `json:"subject,omitempty"`
	Action       Action       `json:"action"`
	ResourceType ResourceType `json:"resourceType"`
	ResourceID   string       `json:"resourceId,omitempty"`
	Status       Status       `json:"status"`
	StatusCode   int          `json:"statusCode,omitempty"`
	RequestID    string       `json:"requestId,omitempty"`
	IPAddress    string       `json:"ipAddress,omitempty"`
}

// Filter selects events. Zero fields match everything.
type Filter struct {
	Subject    string
	Action     Action
	ResourceID string
	Status     Status
	Since      time.Time
}

func (f Filter) matches(e *Event) bool {
	switch {
	case f.Subject != "" && e.Subject != f.Subject:
		return false
	case f.Action != "" && e.Action != f.Action:
		return false
	case f.ResourceID != "" && e.ResourceID != f.ResourceID:
		return false
	case f.Status != "" && e.Status != f.Status:
		return false
	case !f.Since.IsZero() && e.Timestamp.Before(f.Since):
		return false
	}
	return true
}

// AuditLogger manages audit log events with a circular buffer
type AuditLogger struct {
	mu         sync.RWMutex
	events     []*Event
	bufferSize int
	index      int
	count      int
	total      int64
	now        func() time.Time
}

// NewAuditLogger creates a logger keeping the last bufferSize events
func NewAuditLogger(bufferSize int) *AuditLogger {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &AuditLogger{
		events:     make([]*Event, bufferSize),
		bufferSize: bufferSize,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for unset timestamps.
func (l *AuditLogger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Log records an event, filling in its ID and timestamp if unset
func (l *AuditLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	l.events[l.index] = &event
	l.index = (l.index + 1) % l.bufferSize
	if l.count < l.bufferSize {
		l.count++
	}
	l.total++
}

// Recent returns up to n matching events, newest first. n <= 0 means all.
func (l *AuditLogger) Recent(n int, filter Filter) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > l.count {
		n = l.count
	}
	result := make([]Event, 0, n)
	for i := 0; i < l.count && len(result) < n; i++ {
		e := l.events[(l.index-1-i+l.bufferSize)%l.bufferSize]
		if e != nil && filter.matches(e) {
			result = append(result, *e)
		}
	}
	return result
}

// Len is the number of events currently held
func (l *AuditLogger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Total is the number of events ever logged, including evicted ones
func (l *AuditLogger) Total() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

// Clear removes all events from the logger
func (l *AuditLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = make([]*Event, l.bufferSize)
	l.index = 0
	l.count = 0
}

// String returns a human-readable representation of an event
func (e Event) String() string {
	subject := e.Subject
	if subject == "" {
		subject = "anonymous"
	}
	return fmt.Sprintf("[%s] %s %s %s %s (%s)",
		e.Timestamp.Format(time.RFC3339),
		subject,
		e.Action,
		e.ResourceType,
		e.ResourceID,
		e.Status,
	)
}
