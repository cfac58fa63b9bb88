package timenum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		timeNum float64
		want    Parts
	}{
		{"1. whole hour", 9, Parts{Hours: 9}},
		{"2. half hour", 9.5, Parts{Hours: 9, Minutes: 30}},
		{"3. quarter", 13.25, Parts{Hours: 13, Minutes: 15}},
		{"4. truncates", 9.999, Parts{Hours: 9, Minutes: 59}},
		{"5. midnight", 0, Parts{}},
	}

	for _, tt := range tests {
		t.Run(
			tt.name,
			func(t *testing.T) {
				require.Equal(t, tt.want, Split(tt.timeNum))
			},
		)
	}
}

func TestToText(t *testing.T) {
	require.Equal(t, "12 am", ToText(0, true))
	require.Equal(t, "12:30 am", ToText(0.5, true))
	require.Equal(t, "9:30 am", ToText(9.5, true))
	require.Equal(t, "12 pm", ToText(12, true))
	require.Equal(t, "12:15 pm", ToText(12.25, true))
	require.Equal(t, "1 pm", ToText(13, true))
	require.Equal(t, "11:45 pm", ToText(23.75, true))
	require.Equal(t, "9:59 am", ToText(9.999, true))

	require.Equal(t, "0:00", ToText(0, false))
	require.Equal(t, "13:15", ToText(13.25, false))
	require.Equal(t, "9:30", ToText(9.5, false))
}

func TestToString(t *testing.T) {
	require.Equal(t, "09:30:00", ToString(9.5))
	require.Equal(t, "00:00:00", ToString(0))
	require.Equal(t, "23:45:00", ToString(23.75))
}

func TestFromDate(t *testing.T) {
	date := time.Date(2024, 1, 7, 9, 30, 45, 0, time.UTC)

	require.Equal(t, 9.5, FromDate(date, true))

	tokyo := time.FixedZone("JST", 9*60*60)
	require.Equal(t, 18.5, FromDateIn(date, tokyo))
}

func TestDateWithTimeNum(t *testing.T) {
	date := time.Date(2024, 1, 7, 22, 10, 0, 0, time.UTC)

	got := DateWithTimeNum(date, 13.25, time.UTC)
	require.Equal(t, time.Date(2024, 1, 7, 13, 15, 0, 0, time.UTC), got)
}

func TestSplitTime(t *testing.T) {
	t.Run(
		"1. valid",
		func(t *testing.T) {
			p, err := SplitTime("13:30")
			require.NoError(t, err)
			require.Equal(t, Parts{Hours: 13, Minutes: 30}, p)
		},
	)

	t.Run(
		"2. no separator",
		func(t *testing.T) {
			_, err := SplitTime("1330")
			require.Error(t, err)
		},
	)

	t.Run(
		"3. not numeric",
		func(t *testing.T) {
			_, err := SplitTime("ab:30")
			require.Error(t, err)
		},
	)
}

func TestDateWithTime(t *testing.T) {
	date := time.Date(2022, 5, 2, 0, 0, 0, 0, time.UTC)

	got, err := DateWithTime(date, "11:30", time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2022, 5, 2, 11, 30, 0, 0, time.UTC), got)
}

func TestClampDateToTimeNum(t *testing.T) {
	early := time.Date(2024, 1, 7, 7, 0, 0, 0, time.UTC)
	late := time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC)

	require.Equal(t,
		time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC),
		ClampDateToTimeNum(early, 9, ClampUpper, time.UTC),
	)
	require.Equal(t, late, ClampDateToTimeNum(late, 9, ClampUpper, time.UTC))

	require.Equal(t,
		time.Date(2024, 1, 7, 17, 0, 0, 0, time.UTC),
		ClampDateToTimeNum(late, 17, ClampLower, time.UTC),
	)
	require.Equal(t, early, ClampDateToTimeNum(early, 17, ClampLower, time.UTC))
}

func TestUTCTimeToLocalTime(t *testing.T) {
	require.Equal(t, 11.5, UTCTimeToLocalTime(15.5, -4*60))
	require.Equal(t, 10.0, UTCTimeToLocalTime(2, 8*60))
	require.Equal(t, 20.0, UTCTimeToLocalTime(3, -7*60))
	require.Equal(t, 0.0, UTCTimeToLocalTime(0, 0))
}

func TestIsTimeNumBetweenDates(t *testing.T) {
	nine := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)
	five := time.Date(2024, 1, 7, 17, 0, 0, 0, time.UTC)
	ten := time.Date(2024, 1, 7, 22, 0, 0, 0, time.UTC)
	two := time.Date(2024, 1, 8, 2, 0, 0, 0, time.UTC)

	require.True(t, IsTimeNumBetweenDates(12, nine, five, time.UTC))
	require.False(t, IsTimeNumBetweenDates(18, nine, five, time.UTC))

	require.True(t, IsTimeNumBetweenDates(23, ten, two, time.UTC))
	require.True(t, IsTimeNumBetweenDates(1, ten, two, time.UTC))
	require.False(t, IsTimeNumBetweenDates(12, ten, two, time.UTC))
}

func TestTimeOptions(t *testing.T) {
	hour12 := TimeOptions(true)
	require.Len(t, hour12, 25)
	require.Equal(t, TimeOption{Text: "12 am", Time: 0, Value: 0}, hour12[0])
	require.Equal(t, TimeOption{Text: "12 pm", Time: 12, Value: 12}, hour12[12])
	require.Equal(t, TimeOption{Text: "11 pm", Time: 23, Value: 23}, hour12[23])
	require.Equal(t, TimeOption{Text: "12 am", Time: 0, Value: 24}, hour12[24])

	hour24 := TimeOptions(false)
	require.Len(t, hour24, 25)
	require.Equal(t, "13:00", hour24[13].Text)
	require.Equal(t, TimeOption{Text: "0:00", Time: 0, Value: 24}, hour24[24])
}
