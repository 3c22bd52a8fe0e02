package habits

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddHabit appends a new active habit with a fresh UUID.
func AddHabit(d *Data, in HabitInput, now time.Time) (*Data, Habit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, Habit{}, NewError("add").Cause(ErrInvalidName).Err()
	}
	importance, err := ParseImportance(string(in.Importance))
	if err != nil {
		return nil, Habit{}, NewError("add").Cause(err).Err()
	}
	icon := in.Icon
	if icon == "" {
		icon = DefaultIcon
	}

	habit := Habit{
		ID:         uuid.NewString(),
		Name:       name,
		Icon:       icon,
		Importance: importance,
		CreatedAt:  now.Format(CreatedAtLayout),
	}

	out := d.Clone()
	out.Habits = append(out.Habits, habit)
	return out, habit, nil
}

// UpdateHabit applies the non-nil fields of upd to the habit with the given id.
func UpdateHabit(d *Data, id string, upd HabitUpdate) (*Data, error) {
	idx := indexOf(d, id)
	if idx < 0 {
		return nil, notFound("update", id)
	}

	out := d.Clone()
	h := &out.Habits[idx]
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, NewError("update").Habit(id).Cause(ErrInvalidName).Err()
		}
		h.Name = name
	}
	if upd.Icon != nil {
		h.Icon = *upd.Icon
	}
	if upd.Importance != nil {
		importance, err := ParseImportance(string(*upd.Importance))
		if err != nil {
			return nil, NewError("update").Habit(id).Cause(err).Err()
		}
		h.Importance = importance
	}
	if upd.Archived != nil {
		h.Archived = *upd.Archived
	}
	return out, nil
}

// ArchiveHabit hides a habit from the constellation while keeping its history.
func ArchiveHabit(d *Data, id string) (*Data, error) {
	if indexOf(d, id) < 0 {
		return nil, notFound("archive", id)
	}
	archived := true
	return UpdateHabit(d, id, HabitUpdate{Archived: &archived})
}

// DeleteHabit removes a habit and strips it from every day log.
func DeleteHabit(d *Data, id string) (*Data, error) {
	idx := indexOf(d, id)
	if idx < 0 {
		return nil, notFound("delete", id)
	}

	out := d.Clone()
	out.Habits = slices.Delete(out.Habits, idx, idx+1)
	for i := range out.Logs {
		out.Logs[i].CompletedHabits = slices.DeleteFunc(out.Logs[i].CompletedHabits, func(h string) bool {
			return h == id
		})
	}
	return out, nil
}

// ToggleHabit flips the completion of an active habit on date and reports the new state.
func ToggleHabit(d *Data, id, date string) (*Data, bool, error) {
	if _, err := ParseDateKey(date); err != nil {
		return nil, false, NewError("toggle").Habit(id).Day(date).Cause(err).Err()
	}
	idx := indexOf(d, id)
	if idx < 0 {
		return nil, false, NewError("toggle").Habit(id).Day(date).Cause(ErrHabitNotFound).Err()
	}
	if d.Habits[idx].Archived {
		return nil, false, NewError("toggle").Habit(id).Day(date).Cause(ErrHabitArchived).Err()
	}

	out := d.Clone()
	li := logIndex(out, date)
	if li < 0 {
		out.Logs = append(out.Logs, DayLog{Date: date, CompletedHabits: []string{id}})
		return out, true, nil
	}

	log := &out.Logs[li]
	if pos := slices.Index(log.CompletedHabits, id); pos >= 0 {
		log.CompletedHabits = slices.Delete(log.CompletedHabits, pos, pos+1)
		return out, false, nil
	}
	log.CompletedHabits = append(log.CompletedHabits, id)
	return out, true, nil
}

// SetNote stores a reflection for date; an empty note clears it.
func SetNote(d *Data, date, note string) (*Data, error) {
	if _, err := ParseDateKey(date); err != nil {
		return nil, NewError("note").Day(date).Cause(err).Err()
	}

	out := d.Clone()
	note = strings.TrimSpace(note)
	if li := logIndex(out, date); li >= 0 {
		out.Logs[li].Note = note
		return out, nil
	}
	if note != "" {
		out.Logs = append(out.Logs, DayLog{Date: date, CompletedHabits: []string{}, Note: note})
	}
	return out, nil
}

// FindHabit returns the habit with the given id.
func FindHabit(d *Data, id string) (Habit, bool) {
	if idx := indexOf(d, id); idx >= 0 {
		return d.Habits[idx], true
	}
	return Habit{}, false
}

// DayLogFor returns the log for date, if one was recorded.
func DayLogFor(d *Data, date string) (DayLog, bool) {
	if li := logIndex(d, date); li >= 0 {
		return d.Logs[li], true
	}
	return DayLog{}, false
}

// IsCompleted reports whether habit id was completed on date.
func IsCompleted(d *Data, id, date string) bool {
	log, ok := DayLogFor(d, date)
	return ok && slices.Contains(log.CompletedHabits, id)
}

// ActiveHabits returns the non-archived habits in creation order.
func ActiveHabits(d *Data) []Habit {
	active := make([]Habit, 0, len(d.Habits))
	for _, h := range d.Habits {
		if !h.Archived {
			active = append(active, h)
		}
	}
	return active
}

// ArchivedHabits returns the archived habits in creation order.
func ArchivedHabits(d *Data) []Habit {
	var archived []Habit
	for _, h := range d.Habits {
		if h.Archived {
			archived = append(archived, h)
		}
	}
	return archived
}

// ActiveIDs returns the identifiers of the active habits.
func ActiveIDs(d *Data) []string {
	active := ActiveHabits(d)
	ids := make([]string, len(active))
	for i, h := range active {
		ids[i] = h.ID
	}
	return ids
}

// CompletedCount counts active habits completed on date.
func CompletedCount(d *Data, date string) int {
	n := 0
	for _, h := range ActiveHabits(d) {
		if IsCompleted(d, h.ID, date) {
			n++
		}
	}
	return n
}

// Momentum is the percentage of days in ref's week on which the habit was completed.
func Momentum(d *Data, id string, ref time.Time) int {
	done := 0
	for _, date := range WeekDates(ref) {
		if IsCompleted(d, id, date) {
			done++
		}
	}
	return int(math.Round(float64(done) / 7 * 100))
}

func indexOf(d *Data, id string) int {
	if d == nil {
		return -1
	}
	return slices.IndexFunc(d.Habits, func(h Habit) bool { return h.ID == id })
}

func logIndex(d *Data, date string) int {
	if d == nil {
		return -1
	}
	return slices.IndexFunc(d.Logs, func(l DayLog) bool { return l.Date == date })
}
