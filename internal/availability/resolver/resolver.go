// Package resolver works out which shifts a business runs on each day of a
// range, preferring a linked schedule app over the weekly template.
package resolver

import (
	"context"
	"slotbook/internal/availability/providers"
	"slotbook/pkg/logger"
	"slotbook/pkg/metrics"
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"slotbook/pkg/timeslots"
	"time"
)

// Resolution holds the shifts of every date in the requested range keyed by
// ISO date. Every date is present. Degraded means the schedule app could not
// be read and all days were closed instead.
type Resolution struct {
	Days      map[string][]model.Shift
	Degraded  bool
	FailedApp string
}

type Resolver struct {
	registry *providers.Registry
	timeout  time.Duration
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func New(registry *providers.Registry, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{
		registry: registry,
		timeout:  timeout,
		log:      log.Component("resolver"),
		metrics:  m,
	}
}

// Resolve never fails. Provider errors close every day and mark the
// resolution degraded.
func (r *Resolver) Resolve(ctx context.Context, b *model.Business, loc *time.Location, start, end time.Time) Resolution {
	dates := period.ISODates(start, end, loc)

	link := b.Booking.ScheduleApp
	if link == nil || link.AppID == "" {
		return Resolution{Days: r.fromTemplate(b, dates, loc, nil)}
	}

	schedule, err := r.fetch(ctx, link, loc, start, end)
	if err != nil {
		r.log.Warn("Schedule provider failed, closing all days in range",
			"business_id", b.ID,
			"app_id", link.AppID,
			"start", start,
			"end", end,
			"error", err,
		)
		r.metrics.ProviderFailed("schedule", link.AppID)

		closed := make(map[string][]model.Shift, len(dates))
		for _, date := range dates {
			closed[date] = []model.Shift{}
		}
		return Resolution{Days: closed, Degraded: true, FailedApp: link.AppID}
	}

	return Resolution{Days: r.fromTemplate(b, dates, loc, schedule)}
}

func (r *Resolver) fetch(ctx context.Context, link *model.AppLink, loc *time.Location, start, end time.Time) (providers.DaySchedule, error) {
	provider, err := r.registry.Schedule(link.AppID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return provider.GetSchedule(ctx, link.ExternalID, period.Midnight(start, loc), period.Midnight(end, loc))
}

// fromTemplate fills each date from overrides when present, otherwise from
// the weekday template.
func (r *Resolver) fromTemplate(b *model.Business, dates []string, loc *time.Location, overrides providers.DaySchedule) map[string][]model.Shift {
	weekly := make(map[int][]model.Shift, 7)
	for _, ap := range b.AvailablePeriods {
		weekly[ap.WeekDay] = append(weekly[ap.WeekDay], ap.Shifts...)
	}

	days := make(map[string][]model.Shift, len(dates))
	for _, date := range dates {
		if shifts, ok := overrides[date]; ok {
			days[date] = timeslots.NormalizeShifts(shifts)
			continue
		}
		day, err := time.ParseInLocation(period.ISODateLayout, date, loc)
		if err != nil {
			days[date] = []model.Shift{}
			continue
		}
		days[date] = timeslots.NormalizeShifts(weekly[period.ISOWeekday(day.Weekday())])
	}
	return days
}
