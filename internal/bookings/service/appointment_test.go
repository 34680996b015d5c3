package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slotbook/internal/availability/busy"
	"slotbook/internal/availability/providers"
	"slotbook/internal/availability/resolver"
	availability "slotbook/internal/availability/service"
	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/bookings/validator"
	businesseserrors "slotbook/internal/businesses/errors"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/metrics"
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"slices"
	"sync"
	"testing"
	"time"
)

const businessID = "65f1c0ffee00000000000001"

// 2024-03-11 is a Monday; now is the Sunday before.
var (
	monday = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	sunday = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
)

// store backs both fake repositories. Transactions are serialized and roll
// back to a snapshot on error.
type store struct {
	txMu   sync.Mutex
	mu     sync.Mutex
	appts  map[string]*model.Appointment
	claims map[string]*model.SlotClaim
}

func newStore() *store {
	return &store{
		appts:  map[string]*model.Appointment{},
		claims: map[string]*model.SlotClaim{},
	}
}

func (s *store) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	appts := maps.Clone(s.appts)
	for id, a := range appts {
		cp := *a
		appts[id] = &cp
	}
	claims := maps.Clone(s.claims)
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.appts, s.claims = appts, claims
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *store) Create(_ context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *appt
	s.appts[appt.ID] = &cp
	return nil
}

func (s *store) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	cp := *a
	return &cp, nil
}

func (s *store) FindActiveInRange(_ context.Context, bid string, start, end time.Time) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := period.New(start, end)
	out := []*model.Appointment{}
	for _, a := range s.appts {
		if a.BusinessID == bid && model.IsBusyStatus(a.Status) && a.Period().Overlaps(p) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *store) FindByBusiness(_ context.Context, bid string, start, end time.Time, _ int, _ int64) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Appointment{}
	for _, a := range s.appts {
		if a.BusinessID == bid && !a.DateTime.Before(start) && a.DateTime.Before(end) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *store) CountByBusiness(ctx context.Context, bid string, start, end time.Time) (int64, error) {
	appts, err := s.FindByBusiness(ctx, bid, start, end, 0, 0)
	return int64(len(appts)), err
}

func (s *store) UpdateStatus(_ context.Context, id string, from []string, status string) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if !slices.Contains(from, a.Status) {
		return nil, bookingserrors.ErrInvalidTransition
	}
	a.Status = status
	cp := *a
	return &cp, nil
}

func (s *store) Claim(_ context.Context, claims []*model.SlotClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range claims {
		if _, taken := s.claims[c.ID]; taken {
			return fmt.Errorf("%w: %s", bookingserrors.ErrSlotTaken, c.ID)
		}
	}
	for _, c := range claims {
		s.claims[c.ID] = c
	}
	return nil
}

func (s *store) ReleaseByAppointment(_ context.Context, appointmentID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, c := range s.claims {
		if c.AppointmentID == appointmentID {
			delete(s.claims, id)
			n++
		}
	}
	return n, nil
}

func (s *store) claimCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims)
}

type businessReader struct {
	b *model.Business
}

func (r businessReader) FindByID(_ context.Context, id string) (*model.Business, error) {
	if id != r.b.ID {
		return nil, businesseserrors.ErrNotFound
	}
	return r.b, nil
}

type failingCalendar struct{}

func (failingCalendar) GetBusyTimes(context.Context, string, time.Time, time.Time) ([]period.Period, error) {
	return nil, errors.New("calendar unreachable")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ *model.Appointment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func testBusiness() *model.Business {
	return &model.Business{
		ID:       businessID,
		TimeZone: "UTC",
		AvailablePeriods: []model.AvailablePeriod{
			{WeekDay: 1, Shifts: []model.Shift{{Start: "09:00", End: "17:00"}}},
		},
		Booking: model.BookingSettings{SlotStart: "30"},
	}
}

type fixture struct {
	svc       *bookingService
	store     *store
	publisher *recordingPublisher
}

func newFixture(b *model.Business, reg *providers.Registry) *fixture {
	cfg := &config.Config{
		Log:                     logger.New(logger.Config{Output: io.Discard}),
		Metrics:                 metrics.New("test"),
		ProviderTimeout:         50 * time.Millisecond,
		AvailabilityTimeout:     time.Second,
		BookingTimeout:          time.Second,
		DefaultAvailabilityDays: 7,
		MaxAvailabilityDays:     31,
	}
	if reg == nil {
		reg = providers.NewRegistry()
	}

	st := newStore()
	res := resolver.New(reg, cfg.ProviderTimeout, cfg.Log, cfg.Metrics)
	agg := busy.NewAggregator(st, reg, cfg.ProviderTimeout, cfg.Log, cfg.Metrics)
	avail := availability.NewAvailabilityService(businessReader{b: b}, res, agg, cfg)
	pub := &recordingPublisher{}

	svc := NewBookingService(st, st, avail, validator.NewAppointmentValidator(cfg.Log), pub, cfg).(*bookingService)
	svc.now = func() time.Time { return sunday }
	return &fixture{svc: svc, store: st, publisher: pub}
}

func request(hour, minute, duration int) *model.BookingRequest {
	return &model.BookingRequest{
		OptionID: "haircut",
		Slot:     model.NewTimeSlot(monday.Add(time.Duration(hour)*time.Hour+time.Duration(minute)*time.Minute), duration),
		Customer: model.Customer{Name: "  Dana Levi ", Phone: "+972541234567"},
	}
}

func TestBookSlot_Success(t *testing.T) {
	f := newFixture(testBusiness(), nil)

	appt, err := f.svc.BookSlot(context.Background(), businessID, request(10, 0, 60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appt.Status != model.AppointmentPending {
		t.Errorf("expected pending, got %s", appt.Status)
	}
	if !appt.DateTime.Equal(monday.Add(10*time.Hour)) || !appt.EndTime.Equal(monday.Add(11*time.Hour)) {
		t.Errorf("unexpected times %v - %v", appt.DateTime, appt.EndTime)
	}
	if appt.Customer.Name != "Dana Levi" {
		t.Errorf("expected sanitized name, got %q", appt.Customer.Name)
	}
	if got := f.store.claimCount(); got != 60 {
		t.Errorf("expected one claim per minute, got %d", got)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0] != "appointment.booked" {
		t.Errorf("unexpected events %v", f.publisher.events)
	}

	stored, err := f.svc.GetByID(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.ID != appt.ID {
		t.Errorf("expected %s, got %s", appt.ID, stored.ID)
	}
}

func TestBookSlot_SecondBookingConflicts(t *testing.T) {
	f := newFixture(testBusiness(), nil)
	ctx := context.Background()

	if _, err := f.svc.BookSlot(ctx, businessID, request(10, 0, 60)); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	for _, req := range []*model.BookingRequest{request(10, 0, 60), request(10, 30, 60), request(9, 30, 60)} {
		_, err := f.svc.BookSlot(ctx, businessID, req)
		if !apperrors.HasCode(err, apperrors.CodeSlotConflict) {
			t.Errorf("slot %v: expected SLOT_CONFLICT, got %v", req.Slot.Start().UTC(), err)
		}
	}

	if _, err := f.svc.BookSlot(ctx, businessID, request(11, 0, 60)); err != nil {
		t.Errorf("adjacent slot should be bookable: %v", err)
	}
}

func TestBookSlot_AdjacentCustomSlotsBothCommit(t *testing.T) {
	b := testBusiness()
	b.Booking.SlotStart = model.SlotStartCustom
	b.Booking.CustomSlots = []string{"09:00", "09:32", "10:04"}
	f := newFixture(b, nil)

	reqs := []*model.BookingRequest{request(9, 0, 32), request(9, 32, 32), request(10, 4, 32)}

	var wg sync.WaitGroup
	errs := make([]error, len(reqs))
	for i, req := range reqs {
		i, req := i, req
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.BookSlot(context.Background(), businessID, req)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("slot %v should commit, got %v", reqs[i].Slot.Start().UTC(), err)
		}
	}
	if got := f.store.claimCount(); got != 96 {
		t.Errorf("expected 96 claims, got %d", got)
	}

	if _, err := f.svc.BookSlot(context.Background(), businessID, request(9, 32, 32)); !apperrors.HasCode(err, apperrors.CodeSlotConflict) {
		t.Errorf("rebooking a taken custom slot should conflict, got %v", err)
	}
}

func TestBookSlot_OfferedSlotWithBufferPastMidnight(t *testing.T) {
	b := testBusiness()
	b.AvailablePeriods = []model.AvailablePeriod{
		{WeekDay: 1, Shifts: []model.Shift{{Start: "20:00", End: "24:00"}}},
		{WeekDay: 2, Shifts: []model.Shift{{Start: "00:00", End: "04:00"}}},
	}
	b.Booking.MinAvailableTimeAfterSlot = 30
	f := newFixture(b, nil)
	ctx := context.Background()

	late := request(23, 30, 30)
	avail, err := f.svc.availability.GetAvailability(ctx, businessID, availability.Query{
		Duration: 30,
		Start:    "2024-03-11",
		End:      "2024-03-13",
	})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !containsSlot(avail.Slots, late.Slot) {
		t.Fatalf("expected 23:30 to be offered, got %d slots", len(avail.Slots))
	}

	if _, err := f.svc.BookSlot(ctx, businessID, late); err != nil {
		t.Errorf("offered slot should be bookable, got %v", err)
	}
}

func TestBookSlot_ConcurrentOverlappingRequests(t *testing.T) {
	f := newFixture(testBusiness(), nil)

	reqs := []*model.BookingRequest{
		request(13, 0, 60), request(13, 0, 60), request(13, 30, 60),
		request(12, 30, 90), request(13, 0, 60), request(13, 30, 60),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(reqs))
	for i, req := range reqs {
		i, req := i, req
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.BookSlot(context.Background(), businessID, req)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !apperrors.HasCode(err, apperrors.CodeSlotConflict):
			t.Errorf("expected SLOT_CONFLICT, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one booking to succeed, got %d", succeeded)
	}
}

func TestBookSlot_ClaimTakenRollsBack(t *testing.T) {
	f := newFixture(testBusiness(), nil)

	// a claim with no visible appointment, as left by a commit in flight
	taken := monday.Add(10*time.Hour + 30*time.Minute)
	f.store.claims[model.SlotClaimKey(businessID, taken)] = &model.SlotClaim{AppointmentID: "other"}

	_, err := f.svc.BookSlot(context.Background(), businessID, request(10, 0, 60))
	if !apperrors.HasCode(err, apperrors.CodeSlotConflict) {
		t.Fatalf("expected SLOT_CONFLICT, got %v", err)
	}
	if got := f.store.claimCount(); got != 1 {
		t.Errorf("expected partial claims to roll back, got %d claims", got)
	}
	if len(f.publisher.events) != 0 {
		t.Errorf("no event expected on conflict, got %v", f.publisher.events)
	}
}

func TestBookSlot_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  *model.BookingRequest
		now  time.Time
		code string
	}{
		{name: "not on the slot grid", req: request(9, 10, 60), code: apperrors.CodeInvalidInput},
		{name: "outside working hours", req: request(17, 0, 60), code: apperrors.CodeInvalidInput},
		{name: "already started", req: request(9, 0, 60), now: monday.Add(9*time.Hour + 5*time.Minute), code: apperrors.CodeSlotConflict},
		{
			name: "span does not match duration",
			req: func() *model.BookingRequest {
				r := request(10, 0, 60)
				r.Slot.EndAt += time.Minute.Milliseconds()
				return r
			}(),
			code: apperrors.CodeValidation,
		},
		{
			name: "invalid phone",
			req: func() *model.BookingRequest {
				r := request(10, 0, 60)
				r.Customer.Phone = "not a phone"
				return r
			}(),
			code: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(testBusiness(), nil)
			if !tt.now.IsZero() {
				f.svc.now = func() time.Time { return tt.now }
			}

			_, err := f.svc.BookSlot(context.Background(), businessID, tt.req)
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
			if f.store.claimCount() != 0 {
				t.Error("rejected booking must not leave claims")
			}
		})
	}
}

func TestBookSlot_UnknownBusiness(t *testing.T) {
	f := newFixture(testBusiness(), nil)

	_, err := f.svc.BookSlot(context.Background(), "65f1c0ffee00000000000002", request(10, 0, 60))
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestBookSlot_ProviderFailureIsUnavailable(t *testing.T) {
	b := testBusiness()
	b.Booking.CalendarApps = []model.AppLink{{AppID: "gcal", ExternalID: "owner@example.com"}}
	reg := providers.NewRegistry()
	reg.RegisterCalendar("gcal", failingCalendar{})
	f := newFixture(b, reg)

	_, err := f.svc.BookSlot(context.Background(), businessID, request(10, 0, 60))
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnavailable {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	sources, _ := appErr.Details["sources"].([]string)
	if len(sources) != 1 || sources[0] != "calendar:gcal" {
		t.Errorf("unexpected sources %v", appErr.Details["sources"])
	}
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm then cancel frees the slot", func(t *testing.T) {
		f := newFixture(testBusiness(), nil)
		appt, err := f.svc.BookSlot(ctx, businessID, request(10, 0, 60))
		if err != nil {
			t.Fatalf("book: %v", err)
		}

		confirmed, err := f.svc.Confirm(ctx, appt.ID)
		if err != nil || confirmed.Status != model.AppointmentConfirmed {
			t.Fatalf("confirm: %v %v", confirmed, err)
		}
		if _, err := f.svc.Decline(ctx, appt.ID); !apperrors.HasCode(err, apperrors.CodeConflict) {
			t.Errorf("declining a confirmed appointment should conflict, got %v", err)
		}

		cancelled, err := f.svc.Cancel(ctx, appt.ID)
		if err != nil || cancelled.Status != model.AppointmentCancelled {
			t.Fatalf("cancel: %v %v", cancelled, err)
		}
		if f.store.claimCount() != 0 {
			t.Errorf("expected claims released, got %d", f.store.claimCount())
		}

		if _, err := f.svc.BookSlot(ctx, businessID, request(10, 0, 60)); err != nil {
			t.Errorf("slot should be bookable again: %v", err)
		}
		want := []string{"appointment.booked", "appointment.confirmed", "appointment.cancelled", "appointment.booked"}
		if fmt.Sprint(f.publisher.events) != fmt.Sprint(want) {
			t.Errorf("events = %v, want %v", f.publisher.events, want)
		}
	})

	t.Run("decline pending", func(t *testing.T) {
		f := newFixture(testBusiness(), nil)
		appt, err := f.svc.BookSlot(ctx, businessID, request(14, 0, 30))
		if err != nil {
			t.Fatalf("book: %v", err)
		}

		declined, err := f.svc.Decline(ctx, appt.ID)
		if err != nil || declined.Status != model.AppointmentDeclined {
			t.Fatalf("decline: %v %v", declined, err)
		}
		if f.store.claimCount() != 0 {
			t.Errorf("expected claims released, got %d", f.store.claimCount())
		}
		if _, err := f.svc.Cancel(ctx, appt.ID); !apperrors.HasCode(err, apperrors.CodeConflict) {
			t.Errorf("cancelling a declined appointment should conflict, got %v", err)
		}
	})

	t.Run("unknown appointment", func(t *testing.T) {
		f := newFixture(testBusiness(), nil)
		if _, err := f.svc.Confirm(ctx, "65f1c0ffee0000000000ffff"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
		if _, err := f.svc.Cancel(ctx, ""); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Errorf("expected INVALID_INPUT, got %v", err)
		}
	})
}

func TestSearch(t *testing.T) {
	f := newFixture(testBusiness(), nil)
	ctx := context.Background()

	for _, hour := range []int{9, 11, 15} {
		if _, err := f.svc.BookSlot(ctx, businessID, request(hour, 0, 60)); err != nil {
			t.Fatalf("book %d:00: %v", hour, err)
		}
	}

	appts, total, err := f.svc.Search(ctx, businessID, "2024-03-11", "2024-03-12", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(appts) != 3 {
		t.Errorf("expected 3 appointments, got total=%d len=%d", total, len(appts))
	}

	if _, _, err := f.svc.Search(ctx, businessID, "yesterday", "", 10, 0); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}
