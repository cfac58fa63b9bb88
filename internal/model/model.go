package model

import "time"

// EventType tells how an Event's Dates are to be read.
type EventType string

const (
	// EventTypeSpecificDates anchors availability on absolute calendar days.
	EventTypeSpecificDates EventType = "specific_dates"
	// EventTypeDOW encodes a recurring weekly pattern; Dates are drawn from the
	// canonical week and only carry a day of week plus a time of day.
	EventTypeDOW EventType = "dow"
	// EventTypeGroup behaves like EventTypeDOW for time-block purposes.
	EventTypeGroup EventType = "group"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeSpecificDates, EventTypeDOW, EventTypeGroup:
		return true
	}
	return false
}

// Event is the availability model time blocks are laid out against.
type Event struct {
	Type EventType `json:"type"`

	// Dates are the anchors of each availability day, as UTC instants whose
	// wall-clock fields carry the start time of the day window.
	Dates []time.Time `json:"dates"`

	// Duration is the length of each day window in fractional hours.
	Duration float64 `json:"duration"`

	StartOnMonday bool `json:"startOnMonday,omitempty"`
	DaysOnly      bool `json:"daysOnly,omitempty"`
}

// IsRecurring reports whether the event dates live in the canonical week.
func (e *Event) IsRecurring() bool {
	return e.Type == EventTypeDOW || e.Type == EventTypeGroup
}

// TimeBlock is a single busy (or available) interval.
type TimeBlock struct {
	// ID identifies the source interval. Halves of a split block carry
	// "<id>-1" and "<id>-2".
	ID string `json:"id"`

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	Status string `json:"status,omitempty"`

	// SourceID and Summary are filled by calendar collaborators.
	SourceID string `json:"sourceId,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// Hours returns the block length in fractional hours.
func (b TimeBlock) Hours() float64 {
	return b.EndDate.Sub(b.StartDate).Hours()
}

// DayBlock is a TimeBlock placed inside one day bucket of an event.
type DayBlock struct {
	TimeBlock

	// HoursOffset is the number of hours between the day window start and
	// StartDate; HoursLength is the block length in hours.
	HoursOffset float64 `json:"hoursOffset"`
	HoursLength float64 `json:"hoursLength"`
}

// Slot statuses accepted in recurring availability submissions.
const (
	SlotStatusAvailable = "available"
	SlotStatusIfNeeded  = "if-needed"
)

// Slot is one recurring availability submission entry. Start and End are
// local wall-clock strings in the YYYY-MM-DDTHH:mm:ss layout.
type Slot struct {
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Status *string `json:"status,omitempty"`
}

// Timezone is the display timezone preference: an IANA name and an offset
// in minutes east of UTC. Either part may be absent.
type Timezone struct {
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
	Offset *int   `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// IsZero reports whether no preference is set at all.
func (tz *Timezone) IsZero() bool {
	return tz == nil || (tz.Value == "" && tz.Offset == nil)
}
