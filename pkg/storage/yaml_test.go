package storage

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dd0wney/starry-habits/pkg/habits"
)

func TestYAMLRoundTrip(t *testing.T) {
	want := sampleData(t)

	var buf bytes.Buffer
	if err := ExportYAML(&buf, want); err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}
	out := buf.String()
	for _, fragment := range []string{"version: 1", "name: Read", "importance: high", "note: clear night"} {
		if !strings.Contains(out, fragment) {
			t.Errorf("export missing %q:\n%s", fragment, out)
		}
	}

	got, err := ImportYAML(&buf)
	if err != nil {
		t.Fatalf("ImportYAML failed: %v", err)
	}
	assertSameData(t, got, want)
}

func TestImportYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		habits  int
	}{
		{
			name:   "empty document",
			input:  "",
			habits: 0,
		},
		{
			name: "hand written",
			input: `
version: 1
habits:
  - id: stretch
    name: Stretch
    createdAt: "2026-10-01T08:00:00"
logs:
  - date: "2026-10-02"
    completedHabits: [stretch]
`,
			habits: 1,
		},
		{
			name: "duplicate ids",
			input: `
habits:
  - {id: a, name: A}
  - {id: a, name: B}
`,
			wantErr: habits.ErrDuplicateHabit,
		},
		{
			name: "bad date",
			input: `
logs:
  - {date: "02/10/2026", completedHabits: []}
`,
			wantErr: habits.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ImportYAML(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ImportYAML failed: %v", err)
			}
			if len(data.Habits) != tt.habits {
				t.Errorf("habits = %d, want %d", len(data.Habits), tt.habits)
			}
			for _, h := range data.Habits {
				if h.Importance != habits.ImportanceMedium {
					t.Errorf("importance default not applied: %+v", h)
				}
			}
		})
	}
}

func TestImportYAMLRejectsNewerVersion(t *testing.T) {
	if _, err := ImportYAML(strings.NewReader("version: 7\n")); err == nil {
		t.Error("expected version error")
	}
}
