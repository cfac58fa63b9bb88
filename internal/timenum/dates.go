package timenum

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// DayOffset shifts t by a whole or fractional number of days.
func DayOffset(t time.Time, days float64) time.Time {
	return t.Add(time.Duration(days * float64(day)))
}

// HoursOffset shifts t by a fractional number of hours, minutes truncated
// the same way Split truncates them.
func HoursOffset(t time.Time, hours float64) time.Time {
	p := Split(hours)

	return t.Add(time.Duration(p.Hours)*time.Hour + time.Duration(p.Minutes)*time.Minute)
}

// HoursAfter shifts t by a fractional number of hours, rounded to the
// millisecond. Unlike HoursOffset no minutes are dropped: 2.3 is 2h18m.
func HoursAfter(t time.Time, hours float64) time.Time {
	ms := math.Round(hours * float64(time.Hour/time.Millisecond))

	return t.Add(time.Duration(ms) * time.Millisecond)
}

// HoursBetween returns (to - from) in fractional hours.
func HoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}

// Compare returns the signed difference in milliseconds between a and b:
// negative when a is before b, zero when equal.
func Compare(a, b time.Time) int64 {
	return a.UnixMilli() - b.UnixMilli()
}

// IsDateBetween reports whether start <= date <= end.
func IsDateBetween(date, start, end time.Time) bool {
	return !date.Before(start) && !date.After(end)
}

// IsDateInRange reports whether date lies within durationHours of start,
// bounds included.
func IsDateInRange(date, start time.Time, durationHours float64) bool {
	return IsDateBetween(date, start, HoursOffset(start, durationHours))
}

// CompareDateDay orders a and b by calendar day in loc, ignoring the time of
// day: negative when a's day is earlier, zero when both fall on the same day.
func CompareDateDay(a, b time.Time, loc *time.Location) int {
	a = a.In(loc)
	b = b.In(loc)

	if a.Year() != b.Year() {
		return a.Year() - b.Year()
	}
	if a.Month() != b.Month() {
		return int(a.Month()) - int(b.Month())
	}

	return a.Day() - b.Day()
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return CompareDateDay(a, b, loc) == 0
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MidnightAfter returns the first midnight in loc strictly after t.
func MidnightAfter(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)

	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
}

// DateString renders the calendar day of date in loc as "M/D", e.g. "5/14".
func DateString(date time.Time, loc *time.Location) string {
	date = date.In(loc)

	return fmt.Sprintf("%d/%d", int(date.Month()), date.Day())
}

// ISODateString renders the calendar day of date in loc as YYYY-MM-DD.
func ISODateString(date time.Time, loc *time.Location) string {
	return date.In(loc).Format(time.DateOnly)
}

// DateRangeString renders "5/14 - 5/27". An end falling exactly on midnight
// does not start a new day, so it is reported as the previous day.
func DateRangeString(date1, date2 time.Time, loc *time.Location) string {
	if date2.In(loc).Hour() == 0 {
		date2 = DayOffset(date2, -1)
	}

	return DateString(date1, loc) + " - " + DateString(date2, loc)
}

// TimeBlockAt returns the interval hoursOffset hours after date lasting
// hoursLength hours.
func TimeBlockAt(date time.Time, hoursOffset, hoursLength float64) (time.Time, time.Time) {
	start := date.Add(time.Duration(hoursOffset * float64(time.Hour)))

	return start, start.Add(time.Duration(hoursLength * float64(time.Hour)))
}

// IsTimeWithinEventRange reports whether instant falls on the UTC day of one
// of eventDates, between startTimeNum and startTimeNum+durationHours (UTC,
// bounds included).
func IsTimeWithinEventRange(instant time.Time, eventDates []time.Time, startTimeNum, durationHours float64) bool {
	instant = instant.UTC()

	for _, eventDate := range eventDates {
		if !SameDay(instant, eventDate, time.UTC) {
			continue
		}

		start := DateWithTimeNum(eventDate, startTimeNum, time.UTC)
		end := start.
			Add(time.Duration(math.Floor(durationHours)) * time.Hour).
			Add(time.Duration(math.Mod(durationHours, 1) * float64(time.Hour)))

		return IsDateBetween(instant, start, end)
	}

	return false
}
