package models

import "time"

// DateLayout is the ISO calendar day format used as grouping identity.
const DateLayout = "2006-01-02"

// CalendarDay drops the time of day from t and returns midnight UTC of the
// same year, month and day.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day as seen from loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return CalendarDay(now.In(loc))
}

// DaysBefore returns the calendar day n days before day.
func DaysBefore(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, -n)
}

// ParseDay parses a YYYY-MM-DD string into a calendar day.
func ParseDay(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return CalendarDay(t), nil
}
