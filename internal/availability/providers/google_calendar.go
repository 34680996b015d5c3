package providers

import (
	"context"
	"fmt"
	"slotbook/pkg/period"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendarProvider answers busy-time queries with the Calendar FreeBusy
// API. The external id is the calendar id, usually an email address.
type GoogleCalendarProvider struct {
	srv *calendar.Service
}

func NewGoogleCalendarProvider(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*GoogleCalendarProvider, error) {
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(calendar.CalendarReadonlyScope))

	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleCalendarProvider{srv: srv}, nil
}

func (p *GoogleCalendarProvider) GetBusyTimes(ctx context.Context, externalID string, start, end time.Time) ([]period.Period, error) {
	req := &calendar.FreeBusyRequest{
		TimeMin: start.UTC().Format(time.RFC3339),
		TimeMax: end.UTC().Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: externalID}},
	}

	resp, err := p.srv.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}

	cal, ok := resp.Calendars[externalID]
	if !ok {
		return nil, fmt.Errorf("freebusy response has no entry for calendar %q", externalID)
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("freebusy error for calendar %q: %s", externalID, cal.Errors[0].Reason)
	}

	busy := make([]period.Period, 0, len(cal.Busy))
	for _, b := range cal.Busy {
		from, err := time.Parse(time.RFC3339, b.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy start %q: %w", b.Start, err)
		}
		to, err := time.Parse(time.RFC3339, b.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy end %q: %w", b.End, err)
		}
		busy = append(busy, period.New(from, to))
	}
	return period.Merge(busy), nil
}
