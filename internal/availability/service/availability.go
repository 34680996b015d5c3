package service

import (
	"context"
	"errors"
	"fmt"
	"slotbook/internal/availability/busy"
	"slotbook/internal/availability/resolver"
	businesseserrors "slotbook/internal/businesses/errors"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"slotbook/pkg/timeslots"
	"time"

	"golang.org/x/sync/errgroup"
)

// Query is an availability request. Start and End accept RFC 3339, epoch
// milliseconds, or a plain date read in the business time zone. Empty values
// fall back to the configured default range starting today.
type Query struct {
	Duration int
	Start    string
	End      string
}

type BusinessReader interface {
	FindByID(ctx context.Context, id string) (*model.Business, error)
}

type AvailabilityService interface {
	GetAvailability(ctx context.Context, businessID string, q Query) (*model.Availability, error)
	// Evaluate resolves shifts and busy time for b inside window. Used by the
	// booking path to re-check a single slot.
	Evaluate(ctx context.Context, b *model.Business, cfg *timeslots.Configuration, window period.Period) (*Evaluation, error)
	LoadBusiness(ctx context.Context, businessID string) (*model.Business, error)
}

// Evaluation is one consistent view of a business over a window. Shifts, busy
// time and free time cover View, which is Window widened by the larger buffer
// so a slot at the window edge sees the same free interval whichever window
// it was evaluated in.
type Evaluation struct {
	Window     period.Period
	View       period.Period
	Shifts     []period.Period
	Free       []period.Period
	Resolution resolver.Resolution
	Busy       busy.Collection
}

func (e *Evaluation) Degraded() bool {
	return e.Resolution.Degraded || e.Busy.Degraded
}

// DegradedSources names the apps that failed, as "schedule:<app>" and
// "calendar:<app>".
func (e *Evaluation) DegradedSources() []string {
	sources := []string{}
	if e.Resolution.Degraded {
		sources = append(sources, "schedule:"+e.Resolution.FailedApp)
	}
	for _, app := range e.Busy.FailedProviders {
		sources = append(sources, "calendar:"+app)
	}
	return sources
}

type availabilityService struct {
	businesses BusinessReader
	resolver   *resolver.Resolver
	aggregator *busy.Aggregator
	cfg        *config.Config
	now        func() time.Time
}

func NewAvailabilityService(
	businesses BusinessReader,
	resolver *resolver.Resolver,
	aggregator *busy.Aggregator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		businesses: businesses,
		resolver:   resolver,
		aggregator: aggregator,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *availabilityService) GetAvailability(ctx context.Context, businessID string, q Query) (*model.Availability, error) {
	started := time.Now()

	b, err := s.LoadBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	cfg := timeslots.FromBusiness(b, q.Duration)
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	loc, _ := cfg.Location()

	now := s.now()
	window, err := s.window(q, now, loc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AvailabilityTimeout)
	defer cancel()

	eval, err := s.Evaluate(ctx, b, &cfg, window)
	if err != nil {
		s.cfg.Log.Error("Failed to evaluate availability",
			"business_id", businessID,
			"error", err,
		)
		return nil, apperrors.AsAppError(err)
	}

	found, err := timeslots.Find(eval.Free, &cfg, now)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	slots := make([]model.TimeSlot, 0, len(found))
	for _, slot := range found {
		if window.Contains(slot.Period()) {
			slots = append(slots, slot)
		}
	}

	s.cfg.Metrics.ObserveAvailability(eval.Degraded(), len(slots), time.Since(started))
	if eval.Degraded() {
		s.cfg.Log.Warn("Availability served in degraded mode",
			"business_id", businessID,
			"sources", eval.DegradedSources(),
		)
	}

	availability := &model.Availability{
		BusinessID: b.ID,
		TimeZone:   b.TimeZone,
		Duration:   q.Duration,
		Range:      model.DatePeriod{StartAt: window.Start, EndAt: window.End},
		Slots:      slots,
		Degraded:   eval.Degraded(),
	}
	if availability.Degraded {
		availability.DegradedSources = eval.DegradedSources()
	}
	return availability, nil
}

func (s *availabilityService) LoadBusiness(ctx context.Context, businessID string) (*model.Business, error) {
	if businessID == "" {
		return nil, apperrors.InvalidInput("Business ID cannot be empty")
	}

	b, err := s.businesses.FindByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, businesseserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Business", businessID)
		}
		if errors.Is(err, businesseserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid business ID format")
		}
		s.cfg.Log.Error("Failed to load business",
			"business_id", businessID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load business", err)
	}
	return b, nil
}

func (s *availabilityService) Evaluate(ctx context.Context, b *model.Business, cfg *timeslots.Configuration, window period.Period) (*Evaluation, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	view := BufferedView(window, cfg)
	eval := &Evaluation{Window: window, View: view}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// the resolver works on whole days; the last instant of the window
		// names the last day
		eval.Resolution = s.resolver.Resolve(gctx, b, loc, view.StartTime(), view.EndTime().Add(-time.Millisecond))
		return nil
	})
	g.Go(func() error {
		col, err := s.aggregator.Collect(gctx, b, loc, view)
		if err != nil {
			return err
		}
		eval.Busy = col
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shifts, err := timeslots.ShiftPeriods(eval.Resolution.Days, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to project shifts: %w", err)
	}
	eval.Shifts = []period.Period{}
	for _, p := range shifts {
		if c, ok := period.Clamp(p, view); ok {
			eval.Shifts = append(eval.Shifts, c)
		}
	}
	eval.Free = period.SubtractAll(eval.Shifts, eval.Busy.Periods())
	return eval, nil
}

func (s *availabilityService) window(q Query, now time.Time, loc *time.Location) (period.Period, error) {
	start, err := httputil.ParseTime("start", q.Start, loc)
	if err != nil {
		return period.Period{}, err
	}
	end, err := httputil.ParseTime("end", q.End, loc)
	if err != nil {
		return period.Period{}, err
	}

	if start.IsZero() {
		start = period.Midnight(now, loc)
	}
	if end.IsZero() {
		end = period.Midnight(start, loc).AddDate(0, 0, s.cfg.DefaultAvailabilityDays)
	}

	if !end.After(start) {
		return period.Period{}, apperrors.InvalidInput("end must be after start")
	}
	maxEnd := period.Midnight(start, loc).AddDate(0, 0, s.cfg.MaxAvailabilityDays)
	if end.After(maxEnd) {
		return period.Period{}, apperrors.InvalidInput(
			fmt.Sprintf("range cannot span more than %d days", s.cfg.MaxAvailabilityDays),
		).WithDetails(map[string]any{"max_days": s.cfg.MaxAvailabilityDays})
	}
	return period.New(start, end), nil
}

// BufferedView widens window on both sides by the larger of the before and
// after buffers of cfg.
func BufferedView(window period.Period, cfg *timeslots.Configuration) period.Period {
	pad := (time.Duration(max(cfg.MinAvailableTimeBeforeSlot, cfg.MinAvailableTimeAfterSlot, 0)) * time.Minute).Milliseconds()
	return period.Period{Start: window.Start - pad, End: window.End + pad}
}

// DaysWindow is the smallest whole-day window in loc containing p.
func DaysWindow(p period.Period, loc *time.Location) period.Period {
	days := period.Days(p, loc)
	if len(days) == 0 {
		return p
	}
	return period.Period{Start: days[0].Start, End: days[len(days)-1].End}
}
