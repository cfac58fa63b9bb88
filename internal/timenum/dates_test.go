package timenum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOffsets(t *testing.T) {
	base := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)

	require.Equal(t, time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC), DayOffset(base, 2))
	require.Equal(t, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC), DayOffset(base, -2))
	require.Equal(t, time.Date(2024, 1, 7, 21, 0, 0, 0, time.UTC), DayOffset(base, 0.5))

	require.Equal(t, time.Date(2024, 1, 7, 11, 30, 0, 0, time.UTC), HoursOffset(base, 2.5))
	require.Equal(t, time.Date(2024, 1, 7, 7, 30, 0, 0, time.UTC), HoursOffset(base, -1.5))
	require.Equal(t, time.Date(2024, 1, 7, 9, 59, 0, 0, time.UTC), HoursOffset(base, 0.999))

	require.Equal(t, time.Date(2024, 1, 7, 11, 18, 0, 0, time.UTC), HoursAfter(base, 2.3))
	require.Equal(t, time.Date(2024, 1, 7, 11, 17, 0, 0, time.UTC), HoursOffset(base, 2.3))
	require.Equal(t, time.Date(2024, 1, 7, 9, 59, 56, 400_000_000, time.UTC), HoursAfter(base, 0.999))
	require.Equal(t, time.Date(2024, 1, 7, 7, 30, 0, 0, time.UTC), HoursAfter(base, -1.5))
}

func TestCompare(t *testing.T) {
	a := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)
	b := a.Add(1500 * time.Millisecond)

	require.Equal(t, int64(-1500), Compare(a, b))
	require.Equal(t, int64(1500), Compare(b, a))
	require.Zero(t, Compare(a, a.In(time.FixedZone("X", 3600))))
}

func TestIsDateBetween(t *testing.T) {
	start := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	require.True(t, IsDateBetween(start, start, end))
	require.True(t, IsDateBetween(end, start, end))
	require.True(t, IsDateBetween(start.Add(time.Hour), start, end))
	require.False(t, IsDateBetween(end.Add(time.Second), start, end))

	require.True(t, IsDateInRange(start.Add(90*time.Minute), start, 2))
	require.False(t, IsDateInRange(start.Add(3*time.Hour), start, 2))
}

func TestCompareDateDay(t *testing.T) {
	morning := time.Date(2024, 1, 7, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC)
	next := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	require.Zero(t, CompareDateDay(morning, evening, time.UTC))
	require.Negative(t, CompareDateDay(evening, next, time.UTC))
	require.Positive(t, CompareDateDay(next, morning, time.UTC))

	newYork := time.FixedZone("EST", -5*60*60)
	require.True(t, SameDay(evening, next, newYork))
}

func TestDaysInMonth(t *testing.T) {
	require.Equal(t, 31, DaysInMonth(time.January, 2024))
	require.Equal(t, 29, DaysInMonth(time.February, 2024))
	require.Equal(t, 28, DaysInMonth(time.February, 2023))
	require.Equal(t, 31, DaysInMonth(time.December, 2023))
}

func TestMidnightAfter(t *testing.T) {
	pdt := time.FixedZone("PDT", -7*60*60)
	instant := time.Date(2024, 6, 10, 5, 0, 0, 0, time.UTC) // 22:00 PDT on the 9th

	got := MidnightAfter(instant, pdt)
	require.True(t, got.Equal(time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)))
}

func TestDateStrings(t *testing.T) {
	date1 := time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)
	date2 := time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC)

	require.Equal(t, "5/14", DateString(date1, time.UTC))
	require.Equal(t, "2024-05-14", ISODateString(date1, time.UTC))
	require.Equal(t, "5/14 - 5/27", DateRangeString(date1, date2, time.UTC))
	require.Equal(t, "5/14 - 5/14", DateRangeString(date1, date1.Add(time.Hour), time.UTC))
}

func TestTimeBlockAt(t *testing.T) {
	date := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)

	start, end := TimeBlockAt(date, 0.5, 1)
	require.Equal(t, time.Date(2024, 1, 7, 9, 30, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2024, 1, 7, 10, 30, 0, 0, time.UTC), end)
}

func TestIsTimeWithinEventRange(t *testing.T) {
	dates := []time.Time{
		time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}

	t.Run(
		"1. inside window",
		func(t *testing.T) {
			require.True(t,
				IsTimeWithinEventRange(time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC), dates, 9, 8),
			)
		},
	)

	t.Run(
		"2. end bound included",
		func(t *testing.T) {
			require.True(t,
				IsTimeWithinEventRange(time.Date(2026, 1, 5, 17, 30, 0, 0, time.UTC), dates, 9, 8.5),
			)
		},
	)

	t.Run(
		"3. outside window",
		func(t *testing.T) {
			require.False(t,
				IsTimeWithinEventRange(time.Date(2026, 1, 3, 18, 0, 0, 0, time.UTC), dates, 9, 8),
			)
		},
	)

	t.Run(
		"4. day not in event",
		func(t *testing.T) {
			require.False(t,
				IsTimeWithinEventRange(time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC), dates, 9, 8),
			)
		},
	)
}
