package audit

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

var base = time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)

func newTestLogger(size int) *AuditLogger {
	l := NewAuditLogger(size)
	tick := 0
	l.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	return l
}

func TestAuditLogger_Log(t *testing.T) {
	l := newTestLogger(10)
	l.Log(Event{Subject: "cli", Action: ActionCreate, ResourceType: ResourceHabit, ResourceID: "h1", Status: StatusSuccess})

	events := l.Recent(0, Filter{})
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	e := events[0]
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Errorf("ID and timestamp should be filled: %+v", e)
	}
	if !strings.Contains(e.String(), "cli create habit h1 (success)") {
		t.Errorf("String() = %q", e.String())
	}
}

func TestAuditLogger_CircularBuffer(t *testing.T) {
	l := newTestLogger(3)
	for i := range 5 {
		l.Log(Event{Action: ActionToggle, ResourceID: fmt.Sprintf("h%d", i)})
	}

	if l.Len() != 3 || l.Total() != 5 {
		t.Errorf("Len() = %d, Total() = %d", l.Len(), l.Total())
	}
	events := l.Recent(0, Filter{})
	var ids []string
	for _, e := range events {
		ids = append(ids, e.ResourceID)
	}
	if strings.Join(ids, ",") != "h4,h3,h2" {
		t.Errorf("recent = %v, want newest first", ids)
	}
	if got := l.Recent(2, Filter{}); len(got) != 2 || got[0].ResourceID != "h4" {
		t.Errorf("Recent(2) = %+v", got)
	}
}

func TestAuditLogger_Filter(t *testing.T) {
	l := newTestLogger(20)
	l.Log(Event{Subject: "alice", Action: ActionCreate, ResourceID: "a", Status: StatusSuccess})
	l.Log(Event{Subject: "bob", Action: ActionToggle, ResourceID: "a", Status: StatusFailure})
	l.Log(Event{Subject: "alice", Action: ActionToggle, ResourceID: "b", Status: StatusSuccess})

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"subject", Filter{Subject: "alice"}, 2},
		{"action", Filter{Action: ActionToggle}, 2},
		{"resource", Filter{ResourceID: "a"}, 2},
		{"status", Filter{Status: StatusFailure}, 1},
		{"since", Filter{Since: base.Add(2 * time.Minute)}, 2},
		{"combined", Filter{Subject: "alice", Action: ActionToggle}, 1},
		{"none", Filter{Subject: "carol"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(l.Recent(0, tt.filter)); got != tt.want {
				t.Errorf("matches = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAuditLogger_Clear(t *testing.T) {
	l := newTestLogger(5)
	l.Log(Event{Action: ActionDelete})
	l.Clear()
	if l.Len() != 0 || len(l.Recent(0, Filter{})) != 0 {
		t.Error("Clear() left events behind")
	}
}

func TestAuditLogger_Concurrent(t *testing.T) {
	l := NewAuditLogger(0)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Log(Event{Action: ActionNote, ResourceID: fmt.Sprint(i)})
		}()
		go func() {
			defer wg.Done()
			l.Recent(10, Filter{})
		}()
	}
	wg.Wait()
	if l.Len() != 50 {
		t.Errorf("Len() = %d", l.Len())
	}
}
