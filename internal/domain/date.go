package domain

import "time"

// All scheduling math works on calendar days pinned to midnight UTC.
// DateOf normalizes an arbitrary timestamp onto that grid so dates
// compare and hash consistently.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from one date
// to another. Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)) / (24 * time.Hour))
}
