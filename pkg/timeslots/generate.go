package timeslots

import (
	"slices"
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"time"
)

// Generate enumerates every slot of the configured duration that fits
// entirely inside one of the free intervals. Candidate starts are wall-clock
// times in the configured zone. The result is strictly ascending by start and
// depends only on its arguments.
func Generate(free []period.Period, cfg *Configuration) ([]model.TimeSlot, error) {
	c, err := cfg.compile()
	if err != nil {
		return nil, err
	}

	intervals := make([]period.Period, 0, len(free))
	for _, f := range free {
		if !f.IsEmpty() {
			intervals = append(intervals, f)
		}
	}
	slices.SortStableFunc(intervals, func(a, b period.Period) int {
		return compareInt64(a.Start, b.Start)
	})

	durationMs := c.duration.Milliseconds()
	candidates := map[int64][]int64{}
	slots := []model.TimeSlot{}
	var last int64
	emitted := false

	for _, f := range intervals {
		for _, day := range period.Days(f, c.loc) {
			starts, ok := candidates[day.Start]
			if !ok {
				starts = dayCandidates(day.StartTime().In(c.loc), c.offsets, c.loc)
				candidates[day.Start] = starts
			}
			for _, start := range starts {
				if start < f.Start {
					continue
				}
				if start+durationMs > f.End {
					break
				}
				if emitted && start <= last {
					continue
				}
				slots = append(slots, model.TimeSlot{
					StartAt:  start,
					EndAt:    start + durationMs,
					Duration: cfg.Duration,
				})
				last = start
				emitted = true
			}
		}
	}
	return slots, nil
}

// dayCandidates projects offsets onto one local day. Offsets landing in a DST
// gap are normalized by time.Date and may collide with later offsets,
// so the list is sorted and deduplicated.
func dayCandidates(midnight time.Time, offsets []int, loc *time.Location) []int64 {
	starts := make([]int64, 0, len(offsets))
	for _, minutes := range offsets {
		starts = append(starts, wallClock(midnight, minutes, loc).UnixMilli())
	}
	slices.Sort(starts)
	return slices.Compact(starts)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
