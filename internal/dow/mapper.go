package dow

import (
	"math"
	"slices"
	"time"
)

const day = 24 * time.Hour

// ParamsMapper configures a Mapper.
type ParamsMapper struct {
	// Anchors are the recurring event's dates. They may be in any order.
	Anchors []time.Time

	// WeekOffset selects the target week relative to the week containing Now.
	WeekOffset int

	// StartOnMonday orders Sunday after Saturday when locating the first anchor.
	StartOnMonday bool

	// Now is the clock the target week is derived from.
	Now time.Time

	// Week is used when Anchors is empty. Defaults to DefaultCanonicalWeek.
	Week *CanonicalWeek
}

// Mapper moves dates between the canonical week of a recurring event and a
// concrete target week. The offset is computed once at construction.
type Mapper struct {
	dayOffset int
}

// NewMapper computes the day distance between the Sunday of the week holding
// the first anchor and the Sunday of the target week.
func NewMapper(params *ParamsMapper) *Mapper {
	anchorSunday := anchorSunday(params)

	targetSunday := sundayOf(params.Now.UTC()).AddDate(0, 0, 7*params.WeekOffset)
	targetSunday = time.Date(
		targetSunday.Year(), targetSunday.Month(), targetSunday.Day(),
		anchorSunday.Hour(), anchorSunday.Minute(), anchorSunday.Second(), anchorSunday.Nanosecond(),
		time.UTC,
	)

	return &Mapper{
		dayOffset: int(math.Round(float64(targetSunday.Sub(anchorSunday)) / float64(day))),
	}
}

// DayOffset is the number of days from the canonical week to the target week.
func (m *Mapper) DayOffset() int {
	return m.dayOffset
}

// ToCanonical moves a date of the target week into the canonical week.
func (m *Mapper) ToCanonical(date time.Time) time.Time {
	return date.UTC().AddDate(0, 0, -m.dayOffset)
}

// FromCanonical moves a canonical week date into the target week.
func (m *Mapper) FromCanonical(date time.Time) time.Time {
	return date.UTC().AddDate(0, 0, m.dayOffset)
}

// Map is ToCanonical, or FromCanonical when reverse is set.
func (m *Mapper) Map(date time.Time, reverse bool) time.Time {
	if reverse {
		return m.FromCanonical(date)
	}

	return m.ToCanonical(date)
}

// SortAnchors returns a copy of anchors ordered by UTC weekday. With
// startOnMonday, Sunday sorts last; its weekday itself is untouched.
func SortAnchors(anchors []time.Time, startOnMonday bool) []time.Time {
	sorted := slices.Clone(anchors)

	slices.SortStableFunc(
		sorted,
		func(a, b time.Time) int {
			return weekdayRank(a, startOnMonday) - weekdayRank(b, startOnMonday)
		},
	)

	return sorted
}

func weekdayRank(t time.Time, startOnMonday bool) int {
	weekday := int(t.UTC().Weekday())
	if startOnMonday && weekday == 0 {
		return 7
	}

	return weekday
}

func anchorSunday(params *ParamsMapper) time.Time {
	if len(params.Anchors) == 0 {
		week := params.Week
		if week == nil {
			week = DefaultCanonicalWeek()
		}

		return week.Sunday()
	}

	first := SortAnchors(params.Anchors, params.StartOnMonday)[0]

	return sundayOf(first.UTC())
}

// sundayOf keeps the time of day of t and moves it back to its UTC Sunday.
func sundayOf(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}
