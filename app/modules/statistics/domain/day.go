package statisticsdomain

import "time"

// DateLayout is the calendar day format used by the API, CLI and exports.
const DateLayout = "2006-01-02"

// DayStart truncates t to 00:00 UTC of its UTC calendar day.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayWindow returns the half-open UTC interval [day 00:00, day+1 00:00).
func DayWindow(day time.Time) (start, end time.Time) {
	start = DayStart(day)
	return start, start.AddDate(0, 0, 1)
}

// ParseDay parses a YYYY-MM-DD calendar day as UTC midnight.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
