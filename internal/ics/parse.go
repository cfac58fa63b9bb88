package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "timeful/internal/log"
)

const (
	layoutDate        = "20060102"
	layoutDateTime    = "20060102T150405"
	layoutDateTimeUTC = "20060102T150405Z"
)

// ParsedEvent is one VEVENT reduced to what busy time computation needs.
type ParsedEvent struct {
	SourceID string

	UID     string
	Summary string

	Start  time.Time
	End    time.Time
	AllDay bool

	// Free is set for TRANSP:TRANSPARENT events, Cancelled for
	// STATUS:CANCELLED ones. Neither blocks time.
	Free      bool
	Cancelled bool

	RawRRule string
	ExDates  []time.Time

	// RecurrenceID is set when the VEVENT overrides one instance of a
	// recurring event.
	RecurrenceID *time.Time
}

// Busy reports whether the event occupies time.
func (e *ParsedEvent) Busy() bool {
	return !e.Free && !e.Cancelled
}

// ParseICS reads every VEVENT of an ICS payload. Events that cannot be read
// are logged and skipped. All-day events are laid out on UTC midnights.
func ParseICS(src Source, body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty body")
	}

	cal, errParse := ical.ParseCalendar(bytes.NewReader(body))
	if errParse != nil {
		appLog.Error("ics parse failed", errParse, "id", src.ID, "url", redactURL(src.URL))

		return nil, errParse
	}

	events := make([]ParsedEvent, 0, len(cal.Events()))

	for _, ve := range cal.Events() {
		ev, errEvent := parseVEvent(src.ID, ve)
		if errEvent != nil {
			appLog.Warn("skipping unreadable vevent", "id", src.ID, "err", errEvent)

			continue
		}

		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "event_count", len(events))

	return events, nil
}

func parseVEvent(sourceID string, ve *ical.VEvent) (ParsedEvent, error) {
	ev := ParsedEvent{
		SourceID: sourceID,
		UID:      propertyValue(ve, ical.ComponentPropertyUniqueId),
		Summary:  propertyValue(ve, ical.ComponentPropertySummary),
		RawRRule: propertyValue(ve, ical.ComponentPropertyRrule),
	}

	if ev.UID == "" {
		ev.UID = uuid.NewString()
	}

	ev.Free = strings.EqualFold(
		propertyValue(ve, ical.ComponentPropertyTransp),
		string(ical.TransparencyTransparent),
	)
	ev.Cancelled = strings.EqualFold(
		propertyValue(ve, ical.ComponentPropertyStatus),
		string(ical.ObjectStatusCancelled),
	)

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, errors.New("missing DTSTART")
	}

	ev.AllDay = isDateOnly(dtStart)

	if ev.AllDay {
		start, errStart := parseDate(dtStart.Value)
		if errStart != nil {
			return ev, errStart
		}

		ev.Start = start
		ev.End = start.AddDate(0, 0, 1)

		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, errEnd := parseDate(dtEnd.Value); errEnd == nil && end.After(start) {
				ev.End = end
			}
		}
	} else {
		start, errStart := ve.GetStartAt()
		if errStart != nil {
			return ev, errStart
		}

		end, errEnd := ve.GetEndAt()
		if errEnd != nil {
			end = start
		}

		ev.Start = start
		ev.End = end
	}

	for _, exdate := range ve.GetProperties(ical.ComponentPropertyExdate) {
		loc := propertyLocation(exdate.ICalParameters, ev.Start.Location())

		for _, part := range strings.Split(exdate.Value, ",") {
			if t, errEx := parseTime(part, loc); errEx == nil {
				ev.ExDates = append(ev.ExDates, t)
			}
		}
	}

	if rid := ve.GetProperty(ical.ComponentPropertyRecurrenceId); rid != nil {
		loc := propertyLocation(rid.ICalParameters, ev.Start.Location())

		if t, errRID := parseTime(rid.Value, loc); errRID == nil {
			ev.RecurrenceID = &t
		}
	}

	return ev, nil
}

func propertyValue(ve *ical.VEvent, property ical.ComponentProperty) string {
	if p := ve.GetProperty(property); p != nil {
		return strings.TrimSpace(p.Value)
	}

	return ""
}

func isDateOnly(p *ical.IANAProperty) bool {
	if values, has := p.ICalParameters["VALUE"]; has && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		return true
	}

	return !strings.Contains(p.Value, "T")
}

func propertyLocation(params map[string][]string, fallback *time.Location) *time.Location {
	if ids, has := params["TZID"]; has && len(ids) == 1 {
		if loc, err := time.LoadLocation(ids[0]); err == nil {
			return loc
		}
	}

	return fallback
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if len(v) < len(layoutDate) {
		return time.Time{}, errors.New("ics: short date value " + v)
	}

	return time.Parse(layoutDate, v[:len(layoutDate)])
}

// parseTime reads DATE, floating DATE-TIME (in loc) and UTC DATE-TIME values.
// Dates are read as UTC midnight to match all-day event starts.
func parseTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)

	switch {
	case v == "":
		return time.Time{}, errors.New("ics: empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse(layoutDateTimeUTC, v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation(layoutDateTime, v, loc)
	}

	return parseDate(v)
}
