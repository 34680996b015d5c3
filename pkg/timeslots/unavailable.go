package timeslots

import (
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"time"
)

// UnavailableIntervals projects unavailable periods onto window.
//
// Dated periods are taken as is. Recurring periods are projected onto every
// year touching the window; a recurring period whose end precedes its start
// runs into the following year. Dates that do not exist in a given year are
// normalized forward, so Feb 29 becomes Mar 1 outside leap years. Mixed
// dated/recurring pairs are rejected at configuration time and skipped here.
func UnavailableIntervals(periods []model.TimeSlotPeriod, window period.Period, loc *time.Location) []period.Period {
	out := []period.Period{}
	if window.IsEmpty() {
		return out
	}

	for _, up := range periods {
		switch {
		case up.IsMixed():
			continue
		case up.IsRecurring():
			first := window.StartTime().In(loc).Year() - 1
			last := window.EndTime().In(loc).Year()
			for year := first; year <= last; year++ {
				start := momentTime(up.StartAt, year, loc)
				end := momentTime(up.EndAt, year, loc)
				if end.Equal(start) {
					continue
				}
				if end.Before(start) {
					end = momentTime(up.EndAt, year+1, loc)
				}
				if clipped, ok := period.Intersect(period.New(start, end), window); ok {
					out = append(out, clipped)
				}
			}
		default:
			start := momentTime(up.StartAt, *up.StartAt.Year, loc)
			end := momentTime(up.EndAt, *up.EndAt.Year, loc)
			if clipped, ok := period.Intersect(period.New(start, end), window); ok {
				out = append(out, clipped)
			}
		}
	}
	return period.Merge(out)
}

func momentTime(m model.PeriodMoment, year int, loc *time.Location) time.Time {
	return time.Date(year, time.Month(m.Month), m.Day, m.Hour, m.Minute, 0, 0, loc)
}
