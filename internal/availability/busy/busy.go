// Package busy gathers every source of time a business cannot be booked:
// existing appointments, configured unavailable periods and linked calendars.
package busy

import (
	"context"
	"fmt"
	"slices"
	"slotbook/internal/availability/providers"
	"slotbook/pkg/logger"
	"slotbook/pkg/metrics"
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"slotbook/pkg/timeslots"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	SourceAppointment       = "appointment"
	SourceCalendarApp       = "calendar-app"
	SourceUnavailablePeriod = "unavailable-period"
)

type Busy struct {
	Period period.Period
	Source string
}

// AppointmentReader returns the pending and confirmed appointments of a
// business overlapping [start, end).
type AppointmentReader interface {
	FindActiveInRange(ctx context.Context, businessID string, start, end time.Time) ([]*model.Appointment, error)
}

type Collection struct {
	Busy            []Busy
	Degraded        bool
	FailedProviders []string
}

// Periods returns the busy time merged into disjoint periods.
func (c Collection) Periods() []period.Period {
	out := make([]period.Period, 0, len(c.Busy))
	for _, b := range c.Busy {
		out = append(out, b.Period)
	}
	return period.Merge(out)
}

type Aggregator struct {
	appointments AppointmentReader
	registry     *providers.Registry
	timeout      time.Duration
	log          *logger.Logger
	metrics      *metrics.Metrics
}

func NewAggregator(appointments AppointmentReader, registry *providers.Registry, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *Aggregator {
	return &Aggregator{
		appointments: appointments,
		registry:     registry,
		timeout:      timeout,
		log:          log.Component("busy"),
		metrics:      m,
	}
}

// Collect returns the busy time of b inside window. Calendar failures are
// absorbed by blocking the affected days; only an appointment store failure
// is returned as an error.
func (a *Aggregator) Collect(ctx context.Context, b *model.Business, loc *time.Location, window period.Period) (Collection, error) {
	var (
		mu  sync.Mutex
		col Collection
	)
	add := func(items ...Busy) {
		mu.Lock()
		col.Busy = append(col.Busy, items...)
		mu.Unlock()
	}

	for _, p := range timeslots.UnavailableIntervals(b.UnavailablePeriods, window, loc) {
		add(Busy{Period: p, Source: SourceUnavailablePeriod})
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appts, err := a.appointments.FindActiveInRange(gctx, b.ID, window.StartTime(), window.EndTime())
		if err != nil {
			return fmt.Errorf("failed to load appointments: %w", err)
		}
		for _, appt := range appts {
			if !model.IsBusyStatus(appt.Status) {
				continue
			}
			add(Busy{Period: appt.Period(), Source: SourceAppointment})
		}
		return nil
	})

	for _, link := range b.Booking.CalendarApps {
		link := link
		g.Go(func() error {
			periods, err := a.calendarBusy(gctx, link, window)
			if err != nil {
				a.log.Warn("Calendar provider failed, blocking affected days",
					"business_id", b.ID,
					"app_id", link.AppID,
					"error", err,
				)
				a.metrics.ProviderFailed("calendar", link.AppID)

				blocked := []Busy{}
				for _, day := range period.Days(window, loc) {
					blocked = append(blocked, Busy{Period: day, Source: SourceCalendarApp})
				}
				mu.Lock()
				col.Busy = append(col.Busy, blocked...)
				col.Degraded = true
				col.FailedProviders = append(col.FailedProviders, link.AppID)
				mu.Unlock()
				return nil
			}
			for _, p := range periods {
				add(Busy{Period: p, Source: SourceCalendarApp})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Collection{}, err
	}

	slices.SortFunc(col.Busy, func(x, y Busy) int {
		if x.Period.Start != y.Period.Start {
			if x.Period.Start < y.Period.Start {
				return -1
			}
			return 1
		}
		return compareStrings(x.Source, y.Source)
	})
	slices.Sort(col.FailedProviders)
	return col, nil
}

func (a *Aggregator) calendarBusy(ctx context.Context, link model.AppLink, window period.Period) ([]period.Period, error) {
	provider, err := a.registry.Calendar(link.AppID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return provider.GetBusyTimes(ctx, link.ExternalID, window.StartTime(), window.EndTime())
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
