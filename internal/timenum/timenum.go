// Package timenum converts between "time numbers" (a time of day expressed
// as fractional hours, 9.5 == 09:30) and time.Time values.
//
// Minutes are always truncated, never rounded: 9.999 is 9:59.
package timenum

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Parts is a time number decomposed into whole hours and minutes.
type Parts struct {
	Hours   int
	Minutes int
}

// Split decomposes a time number into hours and truncated minutes.
func Split(timeNum float64) Parts {
	hours := math.Floor(timeNum)
	minutes := math.Floor((timeNum - hours) * 60)

	return Parts{
		Hours:   int(hours),
		Minutes: int(minutes),
	}
}

// ToText renders a time number for display, e.g. 13 -> "1 pm",
// 9.5 -> "9:30 am", or with hour12 false 13.25 -> "13:15".
// Valid for [0, 24); callers normalize 24 themselves.
func ToText(timeNum float64, hour12 bool) string {
	p := Split(timeNum)

	minutes := ""
	if timeNum-math.Floor(timeNum) > 0 {
		minutes = fmt.Sprintf(":%02d", p.Minutes)
	}

	if !hour12 {
		if minutes == "" {
			minutes = ":00"
		}
		return strconv.Itoa(p.Hours) + minutes
	}

	switch {
	case timeNum >= 0 && timeNum < 1:
		return "12" + minutes + " am"
	case timeNum < 12:
		return strconv.Itoa(p.Hours) + minutes + " am"
	case timeNum < 13:
		return "12" + minutes + " pm"
	}

	return strconv.Itoa(p.Hours-12) + minutes + " pm"
}

// ToString renders a time number as zero-padded HH:mm:ss, 9.5 -> "09:30:00".
func ToString(timeNum float64) string {
	p := Split(timeNum)

	return fmt.Sprintf("%02d:%02d:00", p.Hours, p.Minutes)
}

// FromDate returns the time number of t, read in UTC when utc is set and in
// the process local zone otherwise.
func FromDate(t time.Time, utc bool) float64 {
	if utc {
		return FromDateIn(t, time.UTC)
	}

	return FromDateIn(t, time.Local)
}

// FromDateIn returns the time number of t read in loc. Seconds are ignored.
func FromDateIn(t time.Time, loc *time.Location) float64 {
	t = t.In(loc)

	return float64(t.Hour()) + float64(t.Minute())/60
}

// DateWithTimeNum returns the calendar day of date (read in loc) at the
// given time number.
func DateWithTimeNum(date time.Time, timeNum float64, loc *time.Location) time.Time {
	date = date.In(loc)
	p := Split(timeNum)

	return time.Date(date.Year(), date.Month(), date.Day(), p.Hours, p.Minutes, 0, 0, loc)
}

// SplitTime parses "HH:mm" into its parts.
func SplitTime(timeString string) (Parts, error) {
	hh, mm, found := strings.Cut(strings.TrimSpace(timeString), ":")
	if !found {
		return Parts{}, fmt.Errorf("timenum: %q is not HH:mm", timeString)
	}

	hours, errHours := strconv.Atoi(hh)
	if errHours != nil {
		return Parts{}, fmt.Errorf("timenum: hours of %q: %w", timeString, errHours)
	}

	minutes, errMinutes := strconv.Atoi(mm)
	if errMinutes != nil {
		return Parts{}, fmt.Errorf("timenum: minutes of %q: %w", timeString, errMinutes)
	}

	return Parts{Hours: hours, Minutes: minutes}, nil
}

// DateWithTime returns the calendar day of date (read in loc) at the
// "HH:mm" time of day.
func DateWithTime(date time.Time, timeString string, loc *time.Location) (time.Time, error) {
	p, err := SplitTime(timeString)
	if err != nil {
		return time.Time{}, err
	}

	date = date.In(loc)

	return time.Date(date.Year(), date.Month(), date.Day(), p.Hours, p.Minutes, 0, 0, loc), nil
}

// ClampType selects the bound enforced by ClampDateToTimeNum.
type ClampType int

const (
	// ClampUpper raises dates earlier than the time number.
	ClampUpper ClampType = iota + 1
	// ClampLower lowers dates later than the time number.
	ClampLower
)

// ClampDateToTimeNum clamps the time of day of date to timeNum in the
// direction given by clamp. Dates already on the right side are returned as is.
func ClampDateToTimeNum(date time.Time, timeNum float64, clamp ClampType, loc *time.Location) time.Time {
	diff := FromDateIn(date, loc) - timeNum

	if (clamp == ClampUpper && diff < 0) || (clamp == ClampLower && diff > 0) {
		return DateWithTimeNum(date, timeNum, loc)
	}

	return date
}

// UTCTimeToLocalTime converts a UTC time number into the zone that is
// offsetMinutes east of UTC, wrapped into [0, 24).
func UTCTimeToLocalTime(timeNum float64, offsetMinutes int) float64 {
	local := math.Mod(timeNum+float64(offsetMinutes)/60, 24)
	if local < 0 {
		local += 24
	}

	return local
}

// IsTimeNumBetweenDates reports whether timeNum lies between the hours of
// date1 and date2 (read in loc), the pair possibly wrapping past midnight.
func IsTimeNumBetweenDates(timeNum float64, date1, date2 time.Time, loc *time.Location) bool {
	hour1 := float64(date1.In(loc).Hour())
	hour2 := float64(date2.In(loc).Hour())

	if hour1 <= hour2 {
		return hour1 <= timeNum && timeNum <= hour2
	}

	return (hour1 <= timeNum && timeNum < 24) || (0 <= timeNum && timeNum <= hour2)
}

// TimeOption is one entry of an hour picker.
type TimeOption struct {
	Text  string  `json:"text"`
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// TimeOptions lists the hours of a day plus the 24 end-of-day sentinel,
// labelled in 12 or 24 hour notation.
func TimeOptions(hour12 bool) []TimeOption {
	options := make([]TimeOption, 0, 25)

	for h := 0; h < 24; h++ {
		options = append(options, TimeOption{
			Text:  ToText(float64(h), hour12),
			Time:  float64(h),
			Value: float64(h),
		})
	}

	options = append(options, TimeOption{
		Text:  ToText(0, hour12),
		Time:  0,
		Value: 24,
	})

	return options
}
