package overlay

import (
	"context"
	"time"

	goerrors "github.com/TudorHulban/go-errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	appLog "timeful/internal/log"
	"timeful/internal/model"
)

const tracerName = "timeful/internal/overlay"

// BusyFetcher returns the busy intervals overlapping [timeMin, timeMax].
type BusyFetcher interface {
	FetchBusyIntervals(ctx context.Context, timeMin, timeMax time.Time) ([]model.TimeBlock, error)
}

// Result is the outcome of Overlay.
type Result struct {
	TimeMin time.Time `json:"timeMin"`
	TimeMax time.Time `json:"timeMax"`

	TimeBlocksByDay [][]model.DayBlock `json:"timeBlocksByDay"`
}

// Overlay fetches the busy intervals covering event and lays them out by day.
func Overlay(ctx context.Context, event *model.Event, fetcher BusyFetcher, opts Options) (*Result, error) {
	if fetcher == nil {
		return nil,
			goerrors.ErrNilInput{
				InputName: "fetcher",
			}
	}

	timeMin, timeMax, errRange := FetchRange(event, opts.WeekOffset, opts.Now, opts.Week)
	if errRange != nil {
		return nil, errRange
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "overlay.Overlay")
	defer span.End()

	span.SetAttributes(
		attribute.String("event.type", string(event.Type)),
		attribute.Int("event.dates", len(event.Dates)),
		attribute.Int("timezone.offset", opts.TimezoneOffset),
	)

	blocks, errFetch := fetcher.FetchBusyIntervals(ctx, timeMin, timeMax)
	if errFetch != nil {
		span.RecordError(errFetch)
		span.SetStatus(codes.Error, "fetch busy intervals")

		appLog.Error("failed to fetch busy intervals", errFetch,
			"timeMin", timeMin.Format(time.RFC3339),
			"timeMax", timeMax.Format(time.RFC3339),
		)

		return nil, errFetch
	}

	byDay, errSplit := SplitTimeBlocksByDay(event, blocks, opts)
	if errSplit != nil {
		span.RecordError(errSplit)
		span.SetStatus(codes.Error, "split time blocks")

		return nil, errSplit
	}

	span.SetAttributes(
		attribute.Int("blocks.fetched", len(blocks)),
		attribute.Int("days", len(byDay)),
	)

	return &Result{
			TimeMin:         timeMin,
			TimeMax:         timeMax,
			TimeBlocksByDay: byDay,
		},
		nil
}
