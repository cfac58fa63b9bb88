package ics

import (
	"errors"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	appLog "timeful/internal/log"
	"timeful/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000

	layoutInstanceKey = "20060102T150405Z"
)

// ExpandParams bounds an expansion.
type ExpandParams struct {
	// Busy blocks overlapping [RangeStart, RangeEnd) are returned.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps the instances produced for one RRULE.
	// Zero means defaultMaxOccurrencesPerEvent.
	MaxOccurrencesPerEvent int
}

// ExpandResult holds the busy blocks of an expansion in start order.
type ExpandResult struct {
	Blocks []model.TimeBlock

	// TruncatedEvents lists the UIDs that hit MaxOccurrencesPerEvent.
	TruncatedEvents []string
}

// ExpandBusy turns parsed events into busy time blocks. Recurring events are
// expanded with their EXDATEs removed and their overridden instances
// replaced. Free and cancelled events are left out. Single events keep their
// UID as block ID; recurring instances get "<UID>_<start in UTC>".
func ExpandBusy(events []ParsedEvent, params ExpandParams) (ExpandResult, error) {
	var result ExpandResult

	if !params.RangeEnd.After(params.RangeStart) {
		return result, errors.New("ics: expand range end must be after start")
	}

	if params.MaxOccurrencesPerEvent <= 0 {
		params.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	bases := make(map[string][]ParsedEvent)
	overrides := make(map[string][]ParsedEvent)
	order := make([]string, 0)

	for _, ev := range events {
		if ev.RecurrenceID != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)

			continue
		}

		if _, seen := bases[ev.UID]; !seen {
			order = append(order, ev.UID)
		}

		bases[ev.UID] = append(bases[ev.UID], ev)
	}

	for _, uid := range order {
		for _, ev := range bases[uid] {
			if ev.RawRRule == "" {
				if block, ok := singleBlock(ev, params); ok {
					result.Blocks = append(result.Blocks, block)
				}

				continue
			}

			blocks, hitCap := recurringBlocks(ev, overrides[uid], params)
			result.Blocks = append(result.Blocks, blocks...)

			if hitCap {
				result.TruncatedEvents = append(result.TruncatedEvents, uid)

				appLog.Warn("occurrences truncated",
					"uid", uid,
					"cap", params.MaxOccurrencesPerEvent,
				)
			}
		}
	}

	slices.SortStableFunc(
		result.Blocks,
		func(a, b model.TimeBlock) int {
			return a.StartDate.Compare(b.StartDate)
		},
	)

	return result, nil
}

func singleBlock(ev ParsedEvent, params ExpandParams) (model.TimeBlock, bool) {
	if !ev.Busy() || !overlaps(ev.Start, ev.End, params) {
		return model.TimeBlock{}, false
	}

	return toBlock(ev, ev.UID, ev.Start, ev.End), true
}

func recurringBlocks(ev ParsedEvent, overrides []ParsedEvent, params ExpandParams) ([]model.TimeBlock, bool) {
	if ev.Cancelled {
		return nil, false
	}

	rule, errRule := rrule.StrToRRule(ev.RawRRule)
	if errRule != nil {
		appLog.Error("failed to parse RRULE", errRule, "uid", ev.UID, "rrule", ev.RawRRule)

		return nil, false
	}

	rule.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(rule)

	for _, exdate := range ev.ExDates {
		set.ExDate(exdate.In(ev.Start.Location()))
	}

	length := ev.End.Sub(ev.Start)

	// Instances that started before the range may still be running in it.
	starts := set.Between(
		params.RangeStart.Add(-length).In(ev.Start.Location()),
		params.RangeEnd.In(ev.Start.Location()),
		true,
	)

	hitCap := false
	if len(starts) > params.MaxOccurrencesPerEvent {
		starts = starts[:params.MaxOccurrencesPerEvent]
		hitCap = true
	}

	blocks := make([]model.TimeBlock, 0, len(starts))

	for _, start := range starts {
		instance := ev
		instance.Start = start
		instance.End = start.Add(length)

		if override, has := findOverride(overrides, start); has {
			instance = override
		}

		if !instance.Busy() || !overlaps(instance.Start, instance.End, params) {
			continue
		}

		blocks = append(
			blocks,
			toBlock(instance, ev.UID+"_"+start.UTC().Format(layoutInstanceKey), instance.Start, instance.End),
		)
	}

	return blocks, hitCap
}

func findOverride(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, override := range overrides {
		if override.RecurrenceID.Equal(start) {
			return override, true
		}
	}

	return ParsedEvent{}, false
}

func overlaps(start, end time.Time, params ExpandParams) bool {
	return end.After(start) &&
		end.After(params.RangeStart) &&
		start.Before(params.RangeEnd)
}

func toBlock(ev ParsedEvent, id string, start, end time.Time) model.TimeBlock {
	return model.TimeBlock{
		ID:        id,
		StartDate: start.UTC(),
		EndDate:   end.UTC(),
		SourceID:  ev.SourceID,
		Summary:   ev.Summary,
	}
}
