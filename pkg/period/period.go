// Package period defines the weekly pay period keying used across
// foreman pay and payroll aggregation.
package period

import "time"

// WeekKey returns the Monday (UTC, midnight) of the week containing t.
func WeekKey(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// WeekBounds returns the half-open [Monday, next Monday) interval of
// the week containing t.
func WeekBounds(t time.Time) (start, end time.Time) {
	start = WeekKey(t)
	return start, start.AddDate(0, 0, 7)
}

// PayDate returns when a period ending at end is paid out.
func PayDate(end time.Time, offsetMonths int) time.Time {
	if offsetMonths <= 0 {
		offsetMonths = 1
	}
	return end.AddDate(0, offsetMonths, 0)
}
