package service

import (
	"context"
	"errors"
	"fmt"
	availability "slotbook/internal/availability/service"
	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/bookings/events"
	"slotbook/internal/bookings/repository"
	"slotbook/internal/bookings/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/metrics"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
	"slotbook/pkg/timeslots"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	BookSlot(ctx context.Context, businessID string, req *model.BookingRequest) (*model.Appointment, error)
	Confirm(ctx context.Context, id string) (*model.Appointment, error)
	Decline(ctx context.Context, id string) (*model.Appointment, error)
	Cancel(ctx context.Context, id string) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	Search(ctx context.Context, businessID, start, end string, limit int, offset int64) ([]*model.Appointment, int64, error)
}

type bookingService struct {
	repo         repository.AppointmentRepository
	claims       repository.SlotClaimRepository
	availability availability.AvailabilityService
	validator    *validator.AppointmentValidator
	events       events.Publisher
	cfg          *config.Config
	now          func() time.Time
}

func NewBookingService(
	repo repository.AppointmentRepository,
	claims repository.SlotClaimRepository,
	availabilitySvc availability.AvailabilityService,
	validator *validator.AppointmentValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		claims:       claims,
		availability: availabilitySvc,
		validator:    validator,
		events:       publisher,
		cfg:          cfg,
		now:          time.Now,
	}
}

// BookSlot commits an appointment for a slot previously offered by the
// availability read path. The slot is re-verified against fresh schedule and
// busy data, then claimed in a single transaction; a concurrent booking of
// any overlapping time fails with SLOT_CONFLICT.
func (s *bookingService) BookSlot(ctx context.Context, businessID string, req *model.BookingRequest) (*model.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BookingTimeout)
	defer cancel()

	appt, err := s.bookSlot(ctx, businessID, req)
	s.cfg.Metrics.BookingOutcome("book", outcome(err))
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Appointment booked",
		"id", appt.ID,
		"business_id", appt.BusinessID,
		"date_time", appt.DateTime,
		"duration", appt.TotalDuration,
	)
	s.events.Publish(ctx, events.AppointmentBooked, appt)
	return appt, nil
}

func (s *bookingService) bookSlot(ctx context.Context, businessID string, req *model.BookingRequest) (*model.Appointment, error) {
	s.sanitize(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed",
			"business_id", businessID,
			"error", err,
		)
		return nil, apperrors.Validation("Booking request validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	b, err := s.availability.LoadBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	cfg := timeslots.FromBusiness(b, req.Slot.Duration)
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	if err := s.verifySlot(ctx, b, &cfg, req.Slot, s.now()); err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		ID:            primitive.NewObjectID().Hex(),
		BusinessID:    b.ID,
		OptionID:      req.OptionID,
		DateTime:      req.Slot.Start().UTC(),
		TotalDuration: req.Slot.Duration,
		EndTime:       req.Slot.End().UTC(),
		Status:        model.AppointmentPending,
		Customer:      req.Customer,
		Note:          req.Note,
	}
	if err := s.validator.Validate(appt); err != nil {
		return nil, apperrors.Validation("Appointment validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		claims := repository.ClaimsFor(b.ID, appt.ID, appt.DateTime, appt.EndTime)
		if err := s.claims.Claim(sessCtx, claims); err != nil {
			if errors.Is(err, bookingserrors.ErrSlotTaken) {
				return apperrors.SlotConflict("The requested slot was just booked by someone else")
			}
			return apperrors.Internal("Failed to claim slot", err)
		}

		overlapping, err := s.repo.FindActiveInRange(sessCtx, b.ID, appt.DateTime, appt.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check existing appointments", err)
		}
		if len(overlapping) > 0 {
			return apperrors.SlotConflict(fmt.Sprintf(
				"The requested slot overlaps an existing appointment (%s - %s)",
				overlapping[0].DateTime.Format(time.RFC3339),
				overlapping[0].EndTime.Format(time.RFC3339),
			))
		}

		if err := s.repo.Create(sessCtx, appt); err != nil {
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.Code == apperrors.CodeSlotConflict {
			s.cfg.Log.Info("Slot conflict on commit",
				"business_id", b.ID,
				"start_at", req.Slot.StartAt,
				"duration", req.Slot.Duration,
			)
		} else {
			s.cfg.Log.Error("Failed to commit appointment",
				"business_id", b.ID,
				"error", err,
			)
		}
		return nil, appErr
	}

	return appt, nil
}

// verifySlot re-resolves the days the slot touches. The slot must be one the
// business schedule generates on its own (InvalidInput otherwise) and must
// still be offered once busy time and the booking rules apply (SlotConflict
// otherwise). Any degraded provider makes the slot unverifiable.
func (s *bookingService) verifySlot(ctx context.Context, b *model.Business, cfg *timeslots.Configuration, slot model.TimeSlot, now time.Time) error {
	loc, err := cfg.Location()
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}

	window := availability.DaysWindow(slot.Period(), loc)
	eval, err := s.availability.Evaluate(ctx, b, cfg, window)
	if err != nil {
		s.cfg.Log.Error("Failed to evaluate slot",
			"business_id", b.ID,
			"start_at", slot.StartAt,
			"error", err,
		)
		return apperrors.AsAppError(err)
	}

	if eval.Degraded() {
		s.cfg.Log.Warn("Cannot verify slot while providers are failing",
			"business_id", b.ID,
			"sources", eval.DegradedSources(),
		)
		return apperrors.Unavailable("Schedule or calendar provider").WithDetails(map[string]any{
			"sources": eval.DegradedSources(),
		})
	}

	scheduled, err := timeslots.Generate(eval.Shifts, cfg)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if !containsSlot(scheduled, slot) {
		return apperrors.InvalidInput("The requested slot is not offered by the business schedule")
	}

	offered, err := timeslots.Find(eval.Free, cfg, now)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if !containsSlot(offered, slot) {
		return apperrors.SlotConflict("The requested slot is no longer available")
	}
	return nil
}

func containsSlot(slots []model.TimeSlot, slot model.TimeSlot) bool {
	for _, s := range slots {
		if s.StartAt == slot.StartAt && s.EndAt == slot.EndAt {
			return true
		}
	}
	return false
}

func (s *bookingService) Confirm(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.UpdateStatus(ctx, id, []string{model.AppointmentPending}, model.AppointmentConfirmed)
	if err != nil {
		appErr := s.mapRepoError(err, id, "confirm")
		s.cfg.Metrics.BookingOutcome("confirm", outcome(appErr))
		return nil, appErr
	}
	s.cfg.Metrics.BookingOutcome("confirm", metrics.OutcomeSuccess)

	s.cfg.Log.Info("Appointment confirmed", "id", id, "business_id", appt.BusinessID)
	s.events.Publish(ctx, events.AppointmentConfirmed, appt)
	return appt, nil
}

func (s *bookingService) Decline(ctx context.Context, id string) (*model.Appointment, error) {
	return s.release(ctx, id, "decline", []string{model.AppointmentPending}, model.AppointmentDeclined, events.AppointmentDeclined)
}

func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Appointment, error) {
	return s.release(ctx, id, "cancel", model.BusyStatuses, model.AppointmentCancelled, events.AppointmentCancelled)
}

// release ends an appointment and frees its slot claims in one transaction.
func (s *bookingService) release(ctx context.Context, id, operation string, from []string, status, eventType string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	var appt *model.Appointment
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		updated, err := s.repo.UpdateStatus(sessCtx, id, from, status)
		if err != nil {
			return s.mapRepoError(err, id, operation)
		}
		released, err := s.claims.ReleaseByAppointment(sessCtx, id)
		if err != nil {
			return apperrors.Internal("Failed to release slot claims", err)
		}
		s.cfg.Log.Debug("Released slot claims", "appointment_id", id, "count", released)
		appt = updated
		return nil
	})
	if err != nil {
		appErr := apperrors.AsAppError(err)
		s.cfg.Metrics.BookingOutcome(operation, outcome(appErr))
		return nil, appErr
	}
	s.cfg.Metrics.BookingOutcome(operation, metrics.OutcomeSuccess)

	s.cfg.Log.Info("Appointment released",
		"id", id,
		"business_id", appt.BusinessID,
		"status", status,
	)
	s.events.Publish(ctx, eventType, appt)
	return appt, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "get")
	}
	return appt, nil
}

func (s *bookingService) Search(ctx context.Context, businessID, start, end string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	b, err := s.availability.LoadBusiness(ctx, businessID)
	if err != nil {
		return nil, 0, err
	}
	loc, err := time.LoadLocation(b.TimeZone)
	if err != nil {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("business time zone %q is invalid", b.TimeZone))
	}
	startTime, err := httputil.ParseTime("start", start, loc)
	if err != nil {
		return nil, 0, err
	}
	endTime, err := httputil.ParseTime("end", end, loc)
	if err != nil {
		return nil, 0, err
	}

	var count int64
	var appts []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByBusiness(ctx, b.ID, startTime, endTime)
		if err != nil {
			s.cfg.Log.Error("Failed to count appointments",
				"business_id", b.ID,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count appointments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		appts, err = s.repo.FindByBusiness(ctx, b.ID, startTime, endTime, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search appointments",
				"business_id", b.ID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search appointments", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return appts, count, nil
}

func (s *bookingService) mapRepoError(err error, id, operation string) *apperrors.AppError {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Appointment", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid appointment ID format")
	case errors.Is(err, bookingserrors.ErrInvalidTransition):
		return apperrors.Conflict(fmt.Sprintf("Appointment %s cannot %s in its current status", id, operation))
	}
	s.cfg.Log.Error("Appointment operation failed",
		"id", id,
		"operation", operation,
		"error", err,
	)
	return apperrors.Internal("Failed to "+operation+" appointment", err)
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.OptionID = sanitizer.TrimAndNormalize(req.OptionID)
	req.Customer.Name = sanitizer.SanitizeText(req.Customer.Name)
	req.Customer.Email = sanitizer.SanitizeEmail(req.Customer.Email)
	req.Note = sanitizer.SanitizeText(req.Note)
	if phone := sanitizer.SanitizePhone(req.Customer.Phone); phone != "" {
		req.Customer.Phone = phone
	}
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch apperrors.AsAppError(err).Code {
	case apperrors.CodeSlotConflict, apperrors.CodeConflict:
		return metrics.OutcomeConflict
	case apperrors.CodeUnavailable:
		return metrics.OutcomeUnavailable
	case apperrors.CodeValidation, apperrors.CodeInvalidInput, apperrors.CodeNotFound:
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}
