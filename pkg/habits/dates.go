package habits

import (
	"time"
)

// DateLayout is the calendar key format used for day logs.
const DateLayout = "2006-01-02"

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// DateKey formats t as a YYYY-MM-DD key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// TodayKey returns the date key for the clock's current local day.
func TodayKey(clock Clock) string {
	if clock == nil {
		clock = time.Now
	}
	return DateKey(clock())
}

// ParseDateKey parses a YYYY-MM-DD key as local midnight.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// WeekDates returns the seven date keys of the Sunday-first week containing ref.
func WeekDates(ref time.Time) []string {
	start := ref.AddDate(0, 0, -int(ref.Weekday()))
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = DateKey(start.AddDate(0, 0, i))
	}
	return dates
}

// FormatDate renders a key as "Saturday, October 17". Invalid keys are returned unchanged.
func FormatDate(key string) string {
	t, err := ParseDateKey(key)
	if err != nil {
		return key
	}
	return t.Format("Monday, January 2")
}

// FormatShortDate renders a key as "Sat 17". Invalid keys are returned unchanged.
func FormatShortDate(key string) string {
	t, err := ParseDateKey(key)
	if err != nil {
		return key
	}
	return t.Format("Mon 2")
}
