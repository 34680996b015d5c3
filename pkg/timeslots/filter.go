package timeslots

import (
	"math"
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"time"
)

// Filter applies, in order: lead time measured from now, the booking horizon
// in the business zone, then the before/after buffers against the free
// interval each slot was generated from. now is passed in so a single
// resolution sees one consistent instant.
func Filter(slots []model.TimeSlot, free []period.Period, cfg *Configuration, now time.Time) ([]model.TimeSlot, error) {
	c, err := cfg.compile()
	if err != nil {
		return nil, err
	}

	earliest := now.Add(c.lead).UnixMilli()

	horizon := int64(math.MaxInt64)
	if c.maxDays > 0 {
		horizon = period.Midnight(now, c.loc).AddDate(0, 0, c.maxDays+1).UnixMilli()
	}

	before := c.before.Milliseconds()
	after := c.after.Milliseconds()
	sources := period.Merge(free)

	out := make([]model.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.StartAt < earliest {
			continue
		}
		if slot.StartAt >= horizon {
			continue
		}
		if before > 0 || after > 0 {
			src, ok := period.ContainedIn(slot.Period(), sources)
			if !ok {
				continue
			}
			if slot.StartAt-before < src.Start || slot.EndAt+after > src.End {
				continue
			}
		}
		out = append(out, slot)
	}
	return out, nil
}

// Find generates and filters in one step.
func Find(free []period.Period, cfg *Configuration, now time.Time) ([]model.TimeSlot, error) {
	slots, err := Generate(free, cfg)
	if err != nil {
		return nil, err
	}
	return Filter(slots, free, cfg, now)
}
