// Package validate checks recurring ("day of week") availability submissions
// before they are stored.
//
// A nil *Invalid is the only valid result. Validation never returns a Go
// error: every rejection is reported as an *Invalid carrying the reason and
// the index of the offending slot.
package validate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"timeful/internal/dow"
	"timeful/internal/model"
)

const layoutSlot = "2006-01-02T15:04:05"

var slotPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})$`)

// Invalid describes why a submission was rejected. Index is -1 when the
// payload as a whole is malformed.
type Invalid struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
	Index int    `json:"index"`
}

func invalid(index int, format string, args ...any) *Invalid {
	return &Invalid{
		Error: fmt.Sprintf(format, args...),
		Index: index,
	}
}

// ValidateDOWPayload checks every slot against week and stops at the first
// failure. An empty submission is valid and clears all availability. With
// skipSameDayCheck a slot may end on a different canonical day than it
// starts, which happens once a slot is shifted across midnight by a
// timezone conversion.
func ValidateDOWPayload(slots []model.Slot, week *dow.CanonicalWeek, skipSameDayCheck bool) *Invalid {
	if week == nil {
		week = dow.DefaultCanonicalWeek()
	}

	for i, slot := range slots {
		if res := validateSlot(i, &slot, week, skipSameDayCheck); res != nil {
			return res
		}
	}

	return nil
}

// ValidateDOWPayloadJSON validates a raw JSON submission, reporting shape
// problems (not an array, missing or non-string fields) the same way as
// content problems.
func ValidateDOWPayloadJSON(raw []byte, week *dow.CanonicalWeek, skipSameDayCheck bool) *Invalid {
	if week == nil {
		week = dow.DefaultCanonicalWeek()
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return invalid(-1, "Slots must be an array")
	}

	for i, item := range items {
		slot, res := decodeSlot(i, item)
		if res != nil {
			return res
		}

		if res := validateSlot(i, slot, week, skipSameDayCheck); res != nil {
			return res
		}
	}

	return nil
}

func decodeSlot(i int, item json.RawMessage) (*model.Slot, *Invalid) {
	var fields map[string]any
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return nil, invalid(i, "Slot at index %d is missing required 'start' or 'end' field", i)
	}

	if isFalsy(fields["start"]) || isFalsy(fields["end"]) {
		return nil, invalid(i, "Slot at index %d is missing required 'start' or 'end' field", i)
	}

	start, okStart := fields["start"].(string)
	end, okEnd := fields["end"].(string)

	if !okStart || !okEnd {
		return nil, invalid(i, "Slot at index %d has invalid 'start' or 'end' type (must be strings)", i)
	}

	slot := model.Slot{
		Start: start,
		End:   end,
	}

	// A non-string status is kept as text so it is rejected by the status
	// rule, after the time checks.
	if rawStatus, has := fields["status"]; has {
		status := statusText(rawStatus)
		slot.Status = &status
	}

	return &slot, nil
}

func statusText(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case nil:
		return "null"
	}

	return fmt.Sprint(v)
}

// isFalsy mirrors what a loosely typed client treats as an absent value.
func isFalsy(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case bool:
		return !value
	case float64:
		return value == 0
	}

	return false
}

type clock struct {
	date                 string
	hour, minute, second int
}

func parseClock(s string) (clock, bool) {
	m := slotPattern.FindStringSubmatch(s)
	if m == nil {
		return clock{}, false
	}

	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	second, _ := strconv.Atoi(m[6])

	return clock{
			date:   m[1] + "-" + m[2] + "-" + m[3],
			hour:   hour,
			minute: minute,
			second: second,
		},
		true
}

func validateSlot(i int, slot *model.Slot, week *dow.CanonicalWeek, skipSameDayCheck bool) *Invalid {
	if slot.Start == "" || slot.End == "" {
		return invalid(i, "Slot at index %d is missing required 'start' or 'end' field", i)
	}

	start, okStart := parseClock(slot.Start)
	end, okEnd := parseClock(slot.End)

	if !okStart || !okEnd {
		return invalid(i,
			"Slot at index %d has invalid time format. Expected format: YYYY-MM-DDTHH:mm:ss (e.g., \"%sT09:00:00\")",
			i, week.Day(time.Monday),
		)
	}

	if start.hour > 23 || start.minute > 59 || start.second > 59 {
		return invalid(i, "Slot at index %d has invalid start time: hours must be 0-23, minutes and seconds must be 0-59", i)
	}

	if end.hour > 24 {
		return invalid(i, "Slot at index %d has invalid end time: hours must be 0-24", i)
	}

	if end.hour == 24 {
		if end.minute != 0 || end.second != 0 {
			return invalid(i, "Slot at index %d has invalid end time: if hour is 24, minutes and seconds must be 00:00", i)
		}
	} else if end.minute > 59 || end.second > 59 {
		return invalid(i, "Slot at index %d has invalid end time: minutes and seconds must be 0-59", i)
	}

	if !week.Contains(start.date) {
		return invalid(i,
			"Slot at index %d has invalid start date: %s. Must be one of the hardcoded DOW dates: %s",
			i, start.date, strings.Join(week.Days(), ", "),
		)
	}

	if !week.Contains(end.date) {
		return invalid(i,
			"Slot at index %d has invalid end date: %s. Must be one of the hardcoded DOW dates: %s",
			i, end.date, strings.Join(week.Days(), ", "),
		)
	}

	if !skipSameDayCheck && start.date != end.date {
		return invalid(i,
			"Slot at index %d has start and end times on different days (%s vs %s). Start and end must be on the same day of the week.",
			i, start.date, end.date,
		)
	}

	startAt, errStart := time.Parse(layoutSlot, slot.Start)
	endAt, errEnd := parseEnd(slot.End, end)

	if errStart != nil || errEnd != nil {
		return invalid(i, "Slot at index %d has invalid date/time values that cannot be parsed", i)
	}

	if !endAt.After(startAt) {
		return invalid(i, "Slot at index %d has end time that is before or equal to start time", i)
	}

	if slot.Status != nil && !govalidator.IsIn(*slot.Status, model.SlotStatusAvailable, model.SlotStatusIfNeeded) {
		return invalid(i, "Slot at index %d has invalid status '%s'. Must be 'available' or 'if-needed'", i, *slot.Status)
	}

	return nil
}

// parseEnd reads 24:00:00 as midnight at the start of the following day.
func parseEnd(raw string, end clock) (time.Time, error) {
	if end.hour != 24 {
		return time.Parse(layoutSlot, raw)
	}

	date, err := time.Parse(time.DateOnly, end.date)
	if err != nil {
		return time.Time{}, err
	}

	return date.AddDate(0, 0, 1), nil
}
