// Package overlay lays busy intervals out over the day windows of an event.
//
// Each anchor date of the event opens a window of Duration hours. Blocks are
// clipped to the windows they overlap, carried over to later windows when
// they outlast the current one, and split where the display timezone crosses
// midnight. The result is one bucket of blocks per displayed day.
package overlay

import (
	"errors"
	"fmt"
	"math"
	"time"

	goerrors "github.com/TudorHulban/go-errors"

	"timeful/internal/dow"
	appLog "timeful/internal/log"
	"timeful/internal/model"
	"timeful/internal/timenum"
)

var (
	// ErrNonPositiveBlock is returned for a block whose end is not after its start.
	ErrNonPositiveBlock = errors.New("time block must end after it starts")

	// ErrNoDates is returned when the event has no anchor dates.
	ErrNoDates = errors.New("event has no dates")

	// ErrUnorderedDates is returned when an anchor date is not after the one before it.
	ErrUnorderedDates = errors.New("event dates must be in ascending order")

	// ErrNonPositiveDuration is returned for a day window that is not a positive finite length.
	ErrNonPositiveDuration = errors.New("event duration must be a positive number of hours")
)

// ParamsProcess is the full input of ProcessTimeBlocks.
type ParamsProcess struct {
	EventType model.EventType

	// Dates open one window each and must be strictly ascending.
	Dates      []time.Time
	Duration   float64
	TimeBlocks []model.TimeBlock

	// WeekOffset and StartOnMonday only apply to recurring events.
	WeekOffset    int
	StartOnMonday bool

	// TimezoneOffset is the display offset in minutes east of UTC.
	TimezoneOffset int

	// Now anchors the target week of recurring events. Zero means time.Now.
	Now time.Time

	// Week is the canonical week of recurring events. Nil means the default.
	Week *dow.CanonicalWeek
}

// Options carries the per-call settings of SplitTimeBlocksByDay.
type Options struct {
	WeekOffset     int
	TimezoneOffset int
	Now            time.Time
	Week           *dow.CanonicalWeek
}

// SplitTimeBlocksByDay lays blocks out over the day windows of event.
func SplitTimeBlocksByDay(event *model.Event, blocks []model.TimeBlock, opts Options) ([][]model.DayBlock, error) {
	if event == nil {
		return nil,
			goerrors.ErrNilInput{
				InputName: "event",
			}
	}

	return ProcessTimeBlocks(
		&ParamsProcess{
			EventType:      event.Type,
			Dates:          event.Dates,
			Duration:       event.Duration,
			TimeBlocks:     blocks,
			WeekOffset:     opts.WeekOffset,
			StartOnMonday:  event.StartOnMonday,
			TimezoneOffset: opts.TimezoneOffset,
			Now:            opts.Now,
			Week:           opts.Week,
		},
	)
}

// ProcessTimeBlocks returns the blocks bucketed by day with HoursOffset and
// HoursLength set. The caller's slice is never modified.
//
// Bucket i belongs to anchor i unless an earlier window crossed local
// midnight onto a date that is not an anchor, in which case that local day
// takes an index of its own and later anchors shift by one.
func ProcessTimeBlocks(params *ParamsProcess) ([][]model.DayBlock, error) {
	if len(params.Dates) == 0 {
		return nil,
			goerrors.ErrValidation{
				Caller: "ProcessTimeBlocks",
				Issue:  ErrNoDates,
			}
	}

	if !params.EventType.Valid() {
		return nil,
			goerrors.ErrValidation{
				Caller: "ProcessTimeBlocks",
				Issue: goerrors.ErrInvalidInput{
					InputName:  "EventType",
					InputValue: params.EventType,
				},
			}
	}

	if !(params.Duration > 0) || math.IsInf(params.Duration, 1) {
		return nil,
			goerrors.ErrValidation{
				Caller: "ProcessTimeBlocks",
				Issue: goerrors.ErrInvalidInput{
					InputName:  "Duration",
					InputValue: params.Duration,
					Issue:      ErrNonPositiveDuration,
				},
			}
	}

	for i := 1; i < len(params.Dates); i++ {
		if !params.Dates[i].After(params.Dates[i-1]) {
			return nil,
				goerrors.ErrValidation{
					Caller: "ProcessTimeBlocks",
					Issue: goerrors.ErrInvalidInput{
						InputName:  fmt.Sprintf("Dates[%d]", i),
						InputValue: params.Dates[i],
						Issue:      ErrUnorderedDates,
					},
				}
		}
	}

	for i, block := range params.TimeBlocks {
		if !block.EndDate.After(block.StartDate) {
			return nil,
				goerrors.ErrValidation{
					Caller: "ProcessTimeBlocks",
					Issue: goerrors.ErrInvalidInput{
						InputName:  fmt.Sprintf("TimeBlocks[%d]", i),
						InputValue: block.ID,
						Issue:      ErrNonPositiveBlock,
					},
				}
		}
	}

	pending := newQueue(project(params))
	days := newBuckets(len(params.Dates))

	anchors := make(map[int64]struct{}, len(params.Dates))
	for _, date := range params.Dates {
		anchors[date.UnixMilli()] = struct{}{}
	}

	day := 0

	for _, date := range params.Dates {
		if pending.empty() {
			break
		}

		w := newWindow(date, params.Duration, params.TimezoneOffset)

		for !pending.empty() && w.end.After(pending.front().StartDate) {
			block := pending.pop()

			if !w.overlaps(block) {
				appLog.Debug("dropping block outside day window", "id", block.ID, "day", day)

				continue
			}

			if timenum.IsDateBetween(w.start, block.StartDate, block.EndDate) {
				block.StartDate = w.start
			}

			if block.EndDate.After(w.end) {
				residual := block
				residual.StartDate = w.end

				pending.insert(residual)

				block.EndDate = w.end
			}

			if !block.EndDate.After(block.StartDate) {
				continue
			}

			w.place(days, day, block)
		}

		if w.crossesMidnight() {
			next := date.AddDate(0, 0, 1).UnixMilli()

			if _, isAnchor := anchors[next]; !isAnchor {
				days.reserve()
				day++
			}
		}

		day++
	}

	return days.dense(), nil
}

// project copies the input blocks, moving them into the canonical week for
// recurring events.
func project(params *ParamsProcess) []model.TimeBlock {
	blocks := make([]model.TimeBlock, len(params.TimeBlocks))
	copy(blocks, params.TimeBlocks)

	if params.EventType != model.EventTypeDOW && params.EventType != model.EventTypeGroup {
		return blocks
	}

	mapper := dow.NewMapper(
		&dow.ParamsMapper{
			Anchors:       params.Dates,
			WeekOffset:    params.WeekOffset,
			StartOnMonday: params.StartOnMonday,
			Now:           nowOrClock(params.Now),
			Week:          params.Week,
		},
	)

	for i := range blocks {
		blocks[i].StartDate = mapper.ToCanonical(blocks[i].StartDate)
		blocks[i].EndDate = mapper.ToCanonical(blocks[i].EndDate)
	}

	return blocks
}

func nowOrClock(now time.Time) time.Time {
	if now.IsZero() {
		return time.Now()
	}

	return now
}
