package timeslots

import (
	"fmt"
	"regexp"
	"slices"
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"sort"
	"strconv"
	"time"
)

const minutesPerDay = 24 * 60

var clockRegex = regexp.MustCompile(`^(([01][0-9]|2[0-3]):[0-5][0-9]|24:00)$`)

// ParseClock converts "HH:mm" into minutes after midnight. "24:00" is
// accepted and yields 1440.
func ParseClock(value string) (int, error) {
	if !clockRegex.MatchString(value) {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:mm", value)
	}
	hours, _ := strconv.Atoi(value[:2])
	minutes, _ := strconv.Atoi(value[3:])
	return hours*60 + minutes, nil
}

func IsClock(value string) bool {
	return clockRegex.MatchString(value)
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeShifts drops malformed or empty shifts, sorts the rest and merges
// overlapping or touching ones so no two shifts of a day overlap.
func NormalizeShifts(shifts []model.Shift) []model.Shift {
	type span struct{ start, end int }
	spans := make([]span, 0, len(shifts))
	for _, s := range shifts {
		start, err := ParseClock(s.Start)
		if err != nil {
			continue
		}
		end, err := ParseClock(s.End)
		if err != nil || start >= end {
			continue
		}
		spans = append(spans, span{start, end})
	}
	slices.SortFunc(spans, func(a, b span) int { return a.start - b.start })

	out := []model.Shift{}
	for i := 0; i < len(spans); {
		cur := spans[i]
		j := i + 1
		for j < len(spans) && spans[j].start <= cur.end {
			cur.end = max(cur.end, spans[j].end)
			j++
		}
		out = append(out, model.Shift{Start: FormatClock(cur.start), End: FormatClock(cur.end)})
		i = j
	}
	return out
}

// ShiftPeriods projects per-date shifts onto epoch periods. Times are read as
// wall-clock times in loc, so a 09:00 shift stays at 09:00 across DST changes.
func ShiftPeriods(days map[string][]model.Shift, loc *time.Location) ([]period.Period, error) {
	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	periods := []period.Period{}
	for _, date := range dates {
		day, err := time.ParseInLocation(period.ISODateLayout, date, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule date %q: %w", date, err)
		}
		for _, shift := range days[date] {
			start, err := ParseClock(shift.Start)
			if err != nil {
				return nil, err
			}
			end, err := ParseClock(shift.End)
			if err != nil {
				return nil, err
			}
			periods = append(periods, period.New(wallClock(day, start, loc), wallClock(day, end, loc)))
		}
	}
	return period.Merge(periods), nil
}

// FreeIntervals is the shift time inside window with busy time removed.
func FreeIntervals(days map[string][]model.Shift, busy []period.Period, window period.Period, loc *time.Location) ([]period.Period, error) {
	shifts, err := ShiftPeriods(days, loc)
	if err != nil {
		return nil, err
	}
	clipped := make([]period.Period, 0, len(shifts))
	for _, s := range shifts {
		if c, ok := period.Clamp(s, window); ok {
			clipped = append(clipped, c)
		}
	}
	return period.SubtractAll(clipped, busy), nil
}

func wallClock(day time.Time, minutes int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minutes, 0, 0, loc)
}
