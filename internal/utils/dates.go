package utils

import (
	"math"
	"time"
)

// DateLayout is the calendar-day layout used for records and API parameters.
const DateLayout = "2006-01-02"

// TruncateToDay returns midnight UTC of t's calendar day (in t's own location).
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateToUnix converts a time to the Unix timestamp of its UTC calendar day.
func DateToUnix(t time.Time) int64 {
	return TruncateToDay(t).Unix()
}

// UnixToDate converts a stored Unix timestamp back to a UTC calendar day.
func UnixToDate(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the number of whole days from start to end, rounded to the
// nearest day so DST shifts do not lose a day. Negative when end precedes start.
func DaysBetween(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Hours() / 24))
}

// YearsBetween returns the fractional number of years from start to end.
func YearsBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24 / 365.25
}

// WholeYearsBetween returns the number of complete calendar years from start to
// end, truncated toward zero.
func WholeYearsBetween(start, end time.Time) int {
	if end.Before(start) {
		return -WholeYearsBetween(end, start)
	}
	years := end.Year() - start.Year()
	if years > 0 && start.AddDate(years, 0, 0).After(end) {
		years--
	}
	return years
}

// CalendarDays returns every calendar day from start through end inclusive.
// Returns nil when end precedes start.
func CalendarDays(start, end time.Time) []time.Time {
	start = TruncateToDay(start)
	end = TruncateToDay(end)
	if end.Before(start) {
		return nil
	}

	days := make([]time.Time, 0, DaysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
