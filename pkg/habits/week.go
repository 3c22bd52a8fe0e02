package habits

import (
	"time"
)

// DayStatus places a week column relative to today.
type DayStatus string

const (
	DayPast   DayStatus = "past"
	DayToday  DayStatus = "today"
	DayFuture DayStatus = "future"
)

// WeekDay summarizes one column of the weekly view.
type WeekDay struct {
	Date      string    `json:"date"`
	Label     string    `json:"label"`
	Status    DayStatus `json:"status"`
	Completed int       `json:"completed"`
	// Density is the share of active habits completed that day, 0 for future days.
	Density float64 `json:"density"`
}

// WeekRow holds one habit's completions across the week.
type WeekRow struct {
	Habit    Habit  `json:"habit"`
	Done     []bool `json:"done"`
	Momentum int    `json:"momentum"`
}

// Week is the Sunday-first weekly grid of active habits.
type Week struct {
	Days []WeekDay `json:"days"`
	Rows []WeekRow `json:"rows"`
}

// BuildWeek lays out the week containing ref. Columns after today are marked
// future and report no density.
func BuildWeek(d *Data, ref time.Time, today string) Week {
	dates := WeekDates(ref)
	active := ActiveHabits(d)

	week := Week{
		Days: make([]WeekDay, len(dates)),
		Rows: make([]WeekRow, len(active)),
	}

	for i, h := range active {
		row := WeekRow{Habit: h, Done: make([]bool, len(dates)), Momentum: Momentum(d, h.ID, ref)}
		for j, date := range dates {
			row.Done[j] = IsCompleted(d, h.ID, date)
		}
		week.Rows[i] = row
	}

	for j, date := range dates {
		day := WeekDay{Date: date, Label: FormatShortDate(date)}
		switch {
		case date < today:
			day.Status = DayPast
		case date == today:
			day.Status = DayToday
		default:
			day.Status = DayFuture
		}
		for _, row := range week.Rows {
			if row.Done[j] {
				day.Completed++
			}
		}
		if day.Status != DayFuture && len(active) > 0 {
			day.Density = float64(day.Completed) / float64(len(active))
		}
		week.Days[j] = day
	}

	return week
}
