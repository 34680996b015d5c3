// Package providers holds the external schedule and calendar integrations a
// business can link to. Providers are looked up by app id in a Registry that
// is filled once at startup.
package providers

import (
	"context"
	"errors"
	"fmt"
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"time"
)

const (
	AppHTTPSchedule   = "http-schedule"
	AppGoogleCalendar = "google-calendar"
)

var ErrUnknownApp = errors.New("no provider registered for app")

// DaySchedule maps ISO dates to the shifts worked on that date. A date that
// is present with no shifts is a closed day. A missing date falls back to the
// weekly template.
type DaySchedule map[string][]model.Shift

type ScheduleProvider interface {
	GetSchedule(ctx context.Context, externalID string, start, end time.Time) (DaySchedule, error)
}

// CalendarBusyTimeProvider reports the busy periods of an external calendar
// between start and end.
type CalendarBusyTimeProvider interface {
	GetBusyTimes(ctx context.Context, externalID string, start, end time.Time) ([]period.Period, error)
}

// Registry is not safe for registration after the service starts serving.
type Registry struct {
	schedules map[string]ScheduleProvider
	calendars map[string]CalendarBusyTimeProvider
}

func NewRegistry() *Registry {
	return &Registry{
		schedules: map[string]ScheduleProvider{},
		calendars: map[string]CalendarBusyTimeProvider{},
	}
}

func (r *Registry) RegisterSchedule(appID string, p ScheduleProvider) {
	r.schedules[appID] = p
}

func (r *Registry) RegisterCalendar(appID string, p CalendarBusyTimeProvider) {
	r.calendars[appID] = p
}

func (r *Registry) Schedule(appID string) (ScheduleProvider, error) {
	p, ok := r.schedules[appID]
	if !ok {
		return nil, fmt.Errorf("%w: schedule %q", ErrUnknownApp, appID)
	}
	return p, nil
}

func (r *Registry) Calendar(appID string) (CalendarBusyTimeProvider, error) {
	p, ok := r.calendars[appID]
	if !ok {
		return nil, fmt.Errorf("%w: calendar %q", ErrUnknownApp, appID)
	}
	return p, nil
}

// Apps lists the registered app ids for logging.
func (r *Registry) Apps() (schedules, calendars []string) {
	for id := range r.schedules {
		schedules = append(schedules, id)
	}
	for id := range r.calendars {
		calendars = append(calendars, id)
	}
	return schedules, calendars
}
