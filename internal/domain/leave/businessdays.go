// Package leave holds the pure domain rules of the leave lifecycle:
// the business-day calendar and the error taxonomy shared between the
// lifecycle engine and the transport layer.
package leave

import "time"

// CountBusinessDays counts the weekdays (Monday through Friday) in the
// inclusive range [start, end]. Holidays are not modeled. The range is
// walked with calendar-date arithmetic so DST shifts and timezone
// offsets on the inputs cannot skew the count.
//
// A range whose end precedes its start is rejected with
// ErrInvalidDateRange, never silently swapped.
func CountBusinessDays(start, end time.Time) (int, error) {
	startDay := truncateToDate(start)
	endDay := truncateToDate(end)

	if endDay.Before(startDay) {
		return 0, ErrInvalidDateRange
	}

	days := 0
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days, nil
}

// truncateToDate drops the clock and location, keeping only the
// calendar date in UTC.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
