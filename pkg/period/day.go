package period

import "time"

const ISODateLayout = "2006-01-02"

// Midnight returns the start of t's calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayBounds returns the local day containing t. The day is not assumed to be
// 24h long, so DST transition days come out as 23h or 25h.
func DayBounds(t time.Time, loc *time.Location) Period {
	start := Midnight(t, loc)
	return New(start, start.AddDate(0, 0, 1))
}

// Days returns the bounds of every local day touched by p, ascending.
func Days(p Period, loc *time.Location) []Period {
	if p.IsEmpty() {
		return []Period{}
	}
	days := []Period{}
	day := Midnight(p.StartTime(), loc)
	for day.UnixMilli() < p.End {
		next := day.AddDate(0, 0, 1)
		days = append(days, New(day, next))
		day = next
	}
	return days
}

// ISODates lists the local calendar dates from start to end inclusive.
func ISODates(start, end time.Time, loc *time.Location) []string {
	dates := []string{}
	day := Midnight(start, loc)
	last := Midnight(end, loc)
	for !day.After(last) {
		dates = append(dates, day.Format(ISODateLayout))
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

// ISOWeekday maps time.Weekday onto ISO numbering, Monday=1 through Sunday=7.
func ISOWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
