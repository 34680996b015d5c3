package timeslots

import (
	"slices"
	"slotbook/pkg/model"
	"strconv"
	"time"
)

var allowedSteps = map[string]int{
	"5":  5,
	"10": 10,
	"15": 15,
	"20": 20,
	"30": 30,
}

// IsValidSlotStart reports whether value is an accepted granularity setting.
// The empty string selects the default step.
func IsValidSlotStart(value string) bool {
	if value == "" || value == model.SlotStartEveryHour || value == model.SlotStartCustom {
		return true
	}
	_, ok := allowedSteps[value]
	return ok
}

// Configuration is the full parameter set for one slot resolution. It is
// built per request from the business settings and not modified afterwards.
// All durations are minutes.
type Configuration struct {
	Duration    int
	SlotStart   string
	CustomSlots []string
	TimeZone    string

	// Shifts holds resolved working shifts keyed by ISO date.
	Shifts             map[string][]model.Shift
	UnavailablePeriods []model.TimeSlotPeriod

	MinAvailableTimeBeforeSlot int
	MinAvailableTimeAfterSlot  int
	MinTimeBeforeFirstSlot     int
	MaxDaysBeforeLastSlot      int
}

// FromBusiness builds the configuration for slots of the given duration.
func FromBusiness(b *model.Business, duration int) Configuration {
	settings := b.Booking
	return Configuration{
		Duration:                   duration,
		SlotStart:                  settings.SlotStart,
		CustomSlots:                slices.Clone(settings.CustomSlots),
		TimeZone:                   b.TimeZone,
		UnavailablePeriods:         slices.Clone(b.UnavailablePeriods),
		MinAvailableTimeBeforeSlot: settings.MinAvailableTimeBeforeSlot,
		MinAvailableTimeAfterSlot:  settings.MinAvailableTimeAfterSlot,
		MinTimeBeforeFirstSlot:     settings.MinTimeBeforeFirstSlot,
		MaxDaysBeforeLastSlot:      settings.MaxDaysBeforeLastSlot,
	}
}

// WithShifts returns a copy carrying the resolved shifts.
func (c Configuration) WithShifts(shifts map[string][]model.Shift) Configuration {
	c.Shifts = shifts
	return c
}

// Validate checks the configuration without generating anything.
func (c *Configuration) Validate() error {
	_, err := c.compile()
	return err
}

// Location resolves the configured IANA time zone.
func (c *Configuration) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return nil, newFinderError("time_zone", "an IANA time zone is required")
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, newFinderError("time_zone", "unknown time zone %q", c.TimeZone)
	}
	return loc, nil
}

type compiled struct {
	loc      *time.Location
	duration time.Duration
	offsets  []int
	lead     time.Duration
	before   time.Duration
	after    time.Duration
	maxDays  int
}

func (c *Configuration) compile() (*compiled, error) {
	if c.Duration <= 0 {
		return nil, newFinderError("duration", "must be a positive number of minutes, got %d", c.Duration)
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	offsets, err := c.offsets()
	if err != nil {
		return nil, err
	}
	if c.MinAvailableTimeBeforeSlot < 0 || c.MinAvailableTimeAfterSlot < 0 {
		return nil, newFinderError("buffers", "must not be negative")
	}
	if c.MinTimeBeforeFirstSlot < 0 {
		return nil, newFinderError("min_time_before_first_slot", "must not be negative")
	}
	if c.MaxDaysBeforeLastSlot < 0 {
		return nil, newFinderError("max_days_before_last_slot", "must not be negative")
	}
	for i, up := range c.UnavailablePeriods {
		if up.IsMixed() {
			return nil, newFinderError("unavailable_periods["+strconv.Itoa(i)+"]",
				"start and end must both be dated or both be recurring")
		}
	}

	return &compiled{
		loc:      loc,
		duration: time.Duration(c.Duration) * time.Minute,
		offsets:  offsets,
		lead:     time.Duration(c.MinTimeBeforeFirstSlot) * time.Minute,
		before:   time.Duration(c.MinAvailableTimeBeforeSlot) * time.Minute,
		after:    time.Duration(c.MinAvailableTimeAfterSlot) * time.Minute,
		maxDays:  c.MaxDaysBeforeLastSlot,
	}, nil
}

// offsets are the candidate start times as minutes after local midnight,
// ascending and unique.
func (c *Configuration) offsets() ([]int, error) {
	slotStart := c.SlotStart
	if slotStart == "" {
		slotStart = model.DefaultSlotStart
	}

	switch slotStart {
	case model.SlotStartEveryHour:
		return stepOffsets(60), nil
	case model.SlotStartCustom:
		if len(c.CustomSlots) == 0 {
			return nil, newFinderError("custom_slots", "at least one time is required when slot_start is custom")
		}
		offsets := make([]int, 0, len(c.CustomSlots))
		for _, value := range c.CustomSlots {
			minutes, err := ParseClock(value)
			if err != nil || minutes >= minutesPerDay {
				return nil, newFinderError("custom_slots", "invalid time of day %q", value)
			}
			offsets = append(offsets, minutes)
		}
		slices.Sort(offsets)
		return slices.Compact(offsets), nil
	}

	step, ok := allowedSteps[slotStart]
	if !ok {
		return nil, newFinderError("slot_start", "unsupported granularity %q", slotStart)
	}
	return stepOffsets(step), nil
}

func stepOffsets(step int) []int {
	offsets := make([]int, 0, minutesPerDay/step)
	for m := 0; m < minutesPerDay; m += step {
		offsets = append(offsets, m)
	}
	return offsets
}
