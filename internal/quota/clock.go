package quota

import "time"

const dayKeyLayout = "2006-01-02"

// DayKey returns the UTC calendar-day key for t, formatted YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyLayout)
}

// NextReset returns the UTC midnight strictly after t.
func NextReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
