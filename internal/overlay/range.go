package overlay

import (
	"strings"
	"time"

	goerrors "github.com/TudorHulban/go-errors"

	"timeful/internal/dow"
	"timeful/internal/model"
	"timeful/internal/timenum"
	"timeful/internal/tz"
)

// fetchBuffer pads the fetch range so blocks that start or end near a
// window edge in any timezone are still returned.
const fetchBuffer = 2

// FetchRange returns the interval busy blocks must be fetched for. Specific
// date events span from their first date to two days after the last one.
// Recurring events span the target week picked by weekOffset, padded by two
// days on both sides.
func FetchRange(event *model.Event, weekOffset int, now time.Time, week *dow.CanonicalWeek) (time.Time, time.Time, error) {
	if event == nil {
		return time.Time{}, time.Time{},
			goerrors.ErrNilInput{
				InputName: "event",
			}
	}

	if len(event.Dates) == 0 {
		return time.Time{}, time.Time{},
			goerrors.ErrValidation{
				Caller: "FetchRange",
				Issue:  ErrNoDates,
			}
	}

	first := event.Dates[0].UTC()
	last := event.Dates[len(event.Dates)-1].UTC()

	if !event.IsRecurring() {
		return first, timenum.DayOffset(last, fetchBuffer), nil
	}

	mapper := dow.NewMapper(
		&dow.ParamsMapper{
			Anchors:       event.Dates,
			WeekOffset:    weekOffset,
			StartOnMonday: event.StartOnMonday,
			Now:           nowOrClock(now),
			Week:          week,
		},
	)

	return timenum.DayOffset(mapper.FromCanonical(first), -fetchBuffer),
		timenum.DayOffset(mapper.FromCanonical(last), fetchBuffer),
		nil
}

var dayAbbreviations = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DateRangeForEvent summarizes the days of event as seen offsetMinutes east
// of UTC: "Mon, Wed" for recurring events, "5/14 - 5/27" otherwise.
func DateRangeForEvent(event *model.Event, offsetMinutes int) string {
	if event == nil || len(event.Dates) == 0 {
		return ""
	}

	first := event.Dates[0]
	last := event.Dates[len(event.Dates)-1]

	switch {
	case event.IsRecurring():
		names := make([]string, 0, len(event.Dates))

		for _, date := range event.Dates {
			names = append(names, dayAbbreviations[tz.WallClock(date, offsetMinutes).Weekday()])
		}

		return strings.Join(names, ", ")

	case event.DaysOnly:
		return timenum.DateString(first, time.UTC) + " - " + timenum.DateString(last, time.UTC)

	case event.Type == model.EventTypeSpecificDates:
		return timenum.DateRangeString(
			tz.WallClock(first, offsetMinutes),
			tz.WallClock(last, offsetMinutes),
			time.UTC,
		)
	}

	return ""
}
