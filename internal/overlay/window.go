package overlay

import (
	"time"

	appLog "timeful/internal/log"
	"timeful/internal/model"
	"timeful/internal/timenum"
	"timeful/internal/tz"
)

// window is the availability span of one anchor date. Local times are the
// UTC instants shifted by the display offset, so their UTC fields read as
// the display wall clock.
type window struct {
	start, end time.Time

	offsetMinutes int
}

func newWindow(anchor time.Time, durationHours float64, offsetMinutes int) window {
	start := anchor.UTC()

	return window{
		start:         start,
		end:           timenum.HoursAfter(start, durationHours),
		offsetMinutes: offsetMinutes,
	}
}

// overlaps is true when either block bound lies in the window or the window
// lies inside the block. Bounds are inclusive.
func (w window) overlaps(block model.TimeBlock) bool {
	return timenum.IsDateBetween(block.StartDate, w.start, w.end) ||
		timenum.IsDateBetween(block.EndDate, w.start, w.end) ||
		(timenum.IsDateBetween(w.start, block.StartDate, block.EndDate) &&
			timenum.IsDateBetween(w.end, block.StartDate, block.EndDate))
}

// crossesMidnight reports whether the window starts and ends on different
// local dates. A window ending exactly at local midnight does not cross.
func (w window) crossesMidnight() bool {
	if !w.end.After(w.start) {
		return false
	}

	return !sameLocalDate(
		w.local(w.start),
		lastLocalInstant(w.local(w.end)),
	)
}

func (w window) local(instant time.Time) time.Time {
	return tz.WallClock(instant, w.offsetMinutes)
}

// place annotates a clipped block and adds it to the right bucket. A block
// running past local midnight is split in two, the second half going to the
// next day. A block starting on a later local date than the window goes to
// the next day whole.
func (w window) place(days *buckets, day int, block model.TimeBlock) {
	annotated := w.annotate(block)

	localStart := w.local(block.StartDate)

	if !sameLocalDate(localStart, lastLocalInstant(w.local(block.EndDate))) {
		split := nextLocalMidnight(localStart).
			Add(-time.Duration(w.offsetMinutes) * time.Minute)

		first := block
		first.ID = block.ID + "-1"
		first.EndDate = split

		second := block
		second.ID = block.ID + "-2"
		second.StartDate = split

		appLog.Debug("splitting block at local midnight", "id", block.ID, "day", day, "at", split.Format(time.RFC3339))

		days.add(day, w.annotate(first))
		days.add(day+1, w.annotate(second))

		return
	}

	if !sameLocalDate(w.local(w.start), localStart) {
		appLog.Debug("moving block to next local day", "id", block.ID, "day", day)

		days.add(day+1, annotated)

		return
	}

	days.add(day, annotated)
}

func (w window) annotate(block model.TimeBlock) model.DayBlock {
	return model.DayBlock{
		TimeBlock:   block,
		HoursOffset: timenum.HoursBetween(w.start, block.StartDate),
		HoursLength: timenum.HoursBetween(block.StartDate, block.EndDate),
	}
}

func sameLocalDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}

// lastLocalInstant turns an exclusive end into the last instant it covers.
func lastLocalInstant(end time.Time) time.Time {
	return end.Add(-time.Nanosecond)
}

func nextLocalMidnight(local time.Time) time.Time {
	y, m, d := local.Date()

	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
