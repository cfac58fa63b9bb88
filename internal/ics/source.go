package ics

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/asaskevich/govalidator"

	appLog "timeful/internal/log"
	"timeful/internal/model"
)

// ParamsCalendarSource configures a CalendarSource.
type ParamsCalendarSource struct {
	Fetcher *Fetcher `valid:"required"`
	Sources []Source

	MaxOccurrencesPerEvent int
}

// CalendarSource serves busy intervals from a set of ICS feeds.
type CalendarSource struct {
	fetcher *Fetcher
	sources []Source

	maxOccurrencesPerEvent int
}

// NewCalendarSource validates params and builds a CalendarSource.
func NewCalendarSource(params *ParamsCalendarSource) (*CalendarSource, error) {
	if _, errValidation := govalidator.ValidateStruct(params); errValidation != nil {
		return nil,
			goerrors.ErrServiceValidation{
				ServiceName: "CalendarSource",
				Caller:      "NewCalendarSource",
				Issue:       errValidation,
			}
	}

	return &CalendarSource{
			fetcher:                params.Fetcher,
			sources:                params.Sources,
			maxOccurrencesPerEvent: params.MaxOccurrencesPerEvent,
		},
		nil
}

// Sources returns the configured feeds.
func (c *CalendarSource) Sources() []Source {
	return c.sources
}

// FetchBusyIntervals fetches, parses and expands every feed and returns the
// busy blocks overlapping [timeMin, timeMax) in start order. Feeds that fail
// are skipped; an error is returned only when every feed failed.
func (c *CalendarSource) FetchBusyIntervals(ctx context.Context, timeMin, timeMax time.Time) ([]model.TimeBlock, error) {
	results, errs := c.fetcher.FetchAll(ctx, c.sources)
	if len(results) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	events := make([]ParsedEvent, 0)
	readable := 0

	for _, res := range results {
		parsed, errParse := ParseICS(res.Source, res.Body)
		if errParse != nil {
			errs = append(errs, errParse)

			continue
		}

		readable++
		events = append(events, parsed...)
	}

	if readable == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	expanded, errExpand := ExpandBusy(
		events,
		ExpandParams{
			RangeStart:             timeMin,
			RangeEnd:               timeMax,
			MaxOccurrencesPerEvent: c.maxOccurrencesPerEvent,
		},
	)
	if errExpand != nil {
		return nil, errExpand
	}

	appLog.Debug("busy intervals ready",
		"sources", len(c.sources),
		"events", len(events),
		"blocks", len(expanded.Blocks),
	)

	return expanded.Blocks, nil
}

// Warm fetches every feed so later requests can revalidate against the
// disk cache.
func (c *CalendarSource) Warm(ctx context.Context) error {
	_, errs := c.fetcher.FetchAll(ctx, c.sources)

	return errors.Join(errs...)
}
