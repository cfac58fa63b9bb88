// Package dow maps recurring weekly ("day of week") availability onto real
// calendar weeks.
//
// Recurring events store their dates inside one fixed reference week, the
// canonical week. Day i of that week (0 = Sunday) is the representative
// date of weekday i.
package dow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/TudorHulban/go-errors"
)

// DefaultDays is the canonical week used unless configured otherwise.
var DefaultDays = []string{
	"2018-06-17",
	"2018-06-18",
	"2018-06-19",
	"2018-06-20",
	"2018-06-21",
	"2018-06-22",
	"2018-06-23",
}

// CanonicalWeek is a read-only weekday -> representative date table.
type CanonicalWeek struct {
	names [7]string
	dates [7]time.Time
	index map[string]time.Weekday
}

// NewCanonicalWeek validates a table of seven YYYY-MM-DD dates. Entry i must
// fall on weekday i and the dates must be consecutive.
func NewCanonicalWeek(days []string) (*CanonicalWeek, error) {
	if len(days) != 7 {
		return nil,
			goerrors.ErrInvalidInput{
				Caller:     "NewCanonicalWeek",
				InputName:  "days",
				InputValue: len(days),
				Issue:      errors.New("canonical week needs exactly 7 dates"),
			}
	}

	week := CanonicalWeek{
		index: make(map[string]time.Weekday, 7),
	}

	for i, day := range days {
		day = strings.TrimSpace(day)

		date, errParse := time.Parse(time.DateOnly, day)
		if errParse != nil {
			return nil,
				goerrors.ErrInvalidInput{
					Caller:     "NewCanonicalWeek",
					InputName:  fmt.Sprintf("days[%d]", i),
					InputValue: day,
					Issue:      errParse,
				}
		}

		if date.Weekday() != time.Weekday(i) {
			return nil,
				goerrors.ErrInvalidInput{
					Caller:     "NewCanonicalWeek",
					InputName:  fmt.Sprintf("days[%d]", i),
					InputValue: day,
					Issue: fmt.Errorf(
						"date falls on %s, expected %s",
						date.Weekday(),
						time.Weekday(i),
					),
				}
		}

		if i > 0 && !date.Equal(week.dates[i-1].AddDate(0, 0, 1)) {
			return nil,
				goerrors.ErrInvalidInput{
					Caller:     "NewCanonicalWeek",
					InputName:  fmt.Sprintf("days[%d]", i),
					InputValue: day,
					Issue:      errors.New("canonical dates must be consecutive"),
				}
		}

		week.names[i] = day
		week.dates[i] = date
		week.index[day] = time.Weekday(i)
	}

	return &week, nil
}

// DefaultCanonicalWeek returns the week built from DefaultDays.
func DefaultCanonicalWeek() *CanonicalWeek {
	week, err := NewCanonicalWeek(DefaultDays)
	if err != nil {
		panic(err)
	}

	return week
}

// Days returns the seven YYYY-MM-DD names, Sunday first.
func (w *CanonicalWeek) Days() []string {
	return append([]string(nil), w.names[:]...)
}

// Day returns the representative YYYY-MM-DD of weekday.
func (w *CanonicalWeek) Day(weekday time.Weekday) string {
	return w.names[weekday]
}

// Sunday returns UTC midnight of the first canonical day.
func (w *CanonicalWeek) Sunday() time.Time {
	return w.dates[time.Sunday]
}

// Weekday looks up the weekday a YYYY-MM-DD name stands for.
func (w *CanonicalWeek) Weekday(day string) (time.Weekday, bool) {
	weekday, ok := w.index[day]

	return weekday, ok
}

// Contains reports whether day is one of the canonical dates.
func (w *CanonicalWeek) Contains(day string) bool {
	_, ok := w.index[day]

	return ok
}

// Anchor returns the canonical date of weekday at the given UTC time of day,
// shifted so that the wall clock of the zone offsetMinutes east of UTC reads
// that time. This is how a recurring event's dates are authored.
func (w *CanonicalWeek) Anchor(weekday time.Weekday, hour, minute, offsetMinutes int) time.Time {
	return w.dates[weekday].
		Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute).
		Add(-time.Duration(offsetMinutes) * time.Minute)
}
