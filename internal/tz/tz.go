// Package tz resolves the display timezone preference into a concrete zone.
//
// A preference that cannot be resolved never fails the caller: the process
// local zone is used instead and the failure is logged.
package tz

import (
	"fmt"
	"time"

	appLog "timeful/internal/log"
	"timeful/internal/model"
)

// LayoutLocalISO is the wall-clock layout used for slot strings.
const LayoutLocalISO = "2006-01-02T15:04:05"

// Zone is a resolved display timezone.
type Zone struct {
	Location *time.Location

	// OffsetMinutes is the offset east of UTC in effect for the instant the
	// zone was resolved at.
	OffsetMinutes int
}

// Local returns the process local zone as observed at the given instant.
func Local(at time.Time) Zone {
	return Zone{
		Location:      time.Local,
		OffsetMinutes: offsetAt(at, time.Local),
	}
}

// Resolve turns a preference into a zone, evaluated at the given instant.
// An explicit offset always wins over the offset derived from the IANA name.
func Resolve(pref *model.Timezone, at time.Time) Zone {
	if pref.IsZero() {
		return Local(at)
	}

	var loc *time.Location
	if pref.Value != "" {
		var err error
		loc, err = time.LoadLocation(pref.Value)
		if err != nil {
			appLog.Error("failed to load timezone; falling back to local", err, "name", pref.Value)
			loc = nil
		}
	}

	switch {
	case pref.Offset != nil && loc != nil:
		return Zone{Location: loc, OffsetMinutes: *pref.Offset}
	case pref.Offset != nil:
		return Zone{
			Location:      time.FixedZone(fixedName(*pref.Offset), *pref.Offset*60),
			OffsetMinutes: *pref.Offset,
		}
	case loc != nil:
		return Zone{Location: loc, OffsetMinutes: offsetAt(at, loc)}
	}

	return Local(at)
}

// LoadLocationOrLocal loads an IANA location, falling back to time.Local.
func LoadLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}

	return loc
}

// WallClock shifts instant by offsetMinutes so that its UTC fields read as
// the wall clock of the zone offsetMinutes east of UTC.
func WallClock(instant time.Time, offsetMinutes int) time.Time {
	return instant.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
}

// ConvertToUTC reads a zone-less "YYYY-MM-DDTHH:mm:ss" string as wall clock
// in the named IANA zone and returns the UTC instant.
func ConvertToUTC(dateTime, zoneName string) (time.Time, error) {
	loc, errLoc := time.LoadLocation(zoneName)
	if errLoc != nil {
		return time.Time{}, fmt.Errorf("tz: failed to convert timezone %q: %w", zoneName, errLoc)
	}

	t, errParse := time.ParseInLocation(LayoutLocalISO, dateTime, loc)
	if errParse != nil {
		return time.Time{}, fmt.Errorf("tz: invalid date string %q: %w", dateTime, errParse)
	}

	return t.UTC(), nil
}

// ToLocalISO renders instants as zone-less wall-clock strings in loc.
func ToLocalISO(instants []time.Time, loc *time.Location) []string {
	out := make([]string, 0, len(instants))

	for _, instant := range instants {
		out = append(out, instant.In(loc).Format(LayoutLocalISO))
	}

	return out
}

func offsetAt(at time.Time, loc *time.Location) int {
	_, seconds := at.In(loc).Zone()

	return seconds / 60
}

func fixedName(offsetMinutes int) string {
	sign := '+'
	if offsetMinutes < 0 {
		sign = '-'
		offsetMinutes = -offsetMinutes
	}

	return fmt.Sprintf("UTC%c%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}
