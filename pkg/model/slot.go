package model

import (
	"slotbook/pkg/period"
	"time"
)

type DatePeriod struct {
	StartAt int64 `json:"start_at"`
	EndAt   int64 `json:"end_at"`
}

// TimeSlot is a bookable interval in epoch milliseconds. Duration is minutes.
type TimeSlot struct {
	StartAt  int64 `json:"start_at"`
	EndAt    int64 `json:"end_at"`
	Duration int   `json:"duration"`
}

func NewTimeSlot(start time.Time, duration int) TimeSlot {
	return TimeSlot{
		StartAt:  start.UnixMilli(),
		EndAt:    start.Add(time.Duration(duration) * time.Minute).UnixMilli(),
		Duration: duration,
	}
}

func (s TimeSlot) Period() period.Period {
	return period.Period{Start: s.StartAt, End: s.EndAt}
}

func (s TimeSlot) Start() time.Time {
	return time.UnixMilli(s.StartAt)
}

func (s TimeSlot) End() time.Time {
	return time.UnixMilli(s.EndAt)
}

type Availability struct {
	BusinessID      string     `json:"business_id"`
	TimeZone        string     `json:"time_zone"`
	Duration        int        `json:"duration"`
	Range           DatePeriod `json:"range"`
	Slots           []TimeSlot `json:"slots"`
	Degraded        bool       `json:"degraded"`
	DegradedSources []string   `json:"degraded_sources,omitempty"`
}
