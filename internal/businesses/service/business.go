package service

import (
	"context"
	"errors"
	"fmt"
	"slotbook/internal/availability/providers"
	businesseserrors "slotbook/internal/businesses/errors"
	"slotbook/internal/businesses/repository"
	"slotbook/internal/businesses/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/locale"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
	"sync"
)

type BusinessService interface {
	Create(ctx context.Context, b *model.Business) error
	GetByID(ctx context.Context, id string) (*model.Business, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Business, int64, error)
	Update(ctx context.Context, id string, updates *model.BusinessUpdate) error
	Delete(ctx context.Context, id string) error
}

type businessService struct {
	repo      repository.BusinessRepository
	validator *validator.BusinessValidator
	registry  *providers.Registry
	cfg       *config.Config
}

// NewBusinessService links businesses to the apps known to registry. A nil
// registry skips the app check.
func NewBusinessService(
	repo repository.BusinessRepository,
	validator *validator.BusinessValidator,
	registry *providers.Registry,
	cfg *config.Config,
) BusinessService {
	return &businessService{
		repo:      repo,
		validator: validator,
		registry:  registry,
		cfg:       cfg,
	}
}

func (s *businessService) Create(ctx context.Context, b *model.Business) error {
	s.sanitize(b)
	s.applyDefaults(b)

	if err := s.validate(b); err != nil {
		s.cfg.Log.Warn("Business validation failed",
			"name", b.Name,
			"admin_phone", b.AdminPhone,
			"error", err,
		)
		return err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.cfg.Log.Error("Failed to create business",
			"name", b.Name,
			"admin_phone", b.AdminPhone,
			"error", err,
		)
		return apperrors.Internal("Failed to create business", err)
	}

	s.cfg.Log.Info("Business created successfully",
		"id", b.ID,
		"name", b.Name,
		"timezone", b.TimeZone,
	)
	return nil
}

func (s *businessService) GetByID(ctx context.Context, id string) (*model.Business, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Business ID cannot be empty")
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "get")
	}
	return b, nil
}

func (s *businessService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Business, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var businesses []*model.Business
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count businesses", "error", err)
			errCount = apperrors.Internal("Failed to count businesses", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		businesses, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all businesses",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve businesses", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return businesses, count, nil
}

func (s *businessService) Update(ctx context.Context, id string, updates *model.BusinessUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Business ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "update")
	}

	s.sanitizeUpdate(updates)
	merged := mergeUpdates(existing, updates)
	if err := s.validate(merged); err != nil {
		s.cfg.Log.Warn("Business validation failed",
			"id", id,
			"name", merged.Name,
			"error", err,
		)
		return err
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		return s.mapRepoError(err, id, "update")
	}

	s.cfg.Log.Info("Business updated successfully",
		"id", id,
		"name", merged.Name,
	)
	return nil
}

func (s *businessService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Business ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "delete")
	}

	s.cfg.Log.Info("Business deleted successfully", "id", id)
	return nil
}

func (s *businessService) validate(b *model.Business) error {
	if err := s.validator.Validate(b); err != nil {
		return apperrors.Validation("Business validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	if err := s.checkApps(b); err != nil {
		return apperrors.Validation("Business validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

// checkApps rejects links to apps the service cannot call. Without this a
// typo in an app id would close every day of the business.
func (s *businessService) checkApps(b *model.Business) error {
	if s.registry == nil {
		return nil
	}
	if app := b.Booking.ScheduleApp; app != nil {
		if _, err := s.registry.Schedule(app.AppID); err != nil {
			return fmt.Errorf("booking.schedule_app: %w", err)
		}
	}
	for i, app := range b.Booking.CalendarApps {
		if _, err := s.registry.Calendar(app.AppID); err != nil {
			return fmt.Errorf("booking.calendar_apps[%d]: %w", i, err)
		}
	}
	return nil
}

func (s *businessService) mapRepoError(err error, id, operation string) error {
	if errors.Is(err, businesseserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Business", id)
	}
	if errors.Is(err, businesseserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid business ID format")
	}
	s.cfg.Log.Error("Business operation failed",
		"id", id,
		"operation", operation,
		"error", err,
	)
	return apperrors.Internal("Failed to "+operation+" business", err)
}

func (s *businessService) sanitize(b *model.Business) {
	b.Name = sanitizer.SanitizeText(b.Name)
	b.TimeZone = sanitizer.TrimAndNormalize(b.TimeZone)
	if phone := sanitizer.SanitizePhone(b.AdminPhone); phone != "" {
		b.AdminPhone = phone
	}
	sanitizeSchedule(b.AvailablePeriods)
	b.Booking.SlotStart = sanitizer.TrimAndNormalize(b.Booking.SlotStart)
	b.Booking.CustomSlots = sanitizer.SanitizeClockList(b.Booking.CustomSlots)
}

func (s *businessService) sanitizeUpdate(updates *model.BusinessUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.SanitizeText(updates.Name)
	}
	if updates.AdminPhone != "" {
		if phone := sanitizer.SanitizePhone(updates.AdminPhone); phone != "" {
			updates.AdminPhone = phone
		}
	}
	if updates.TimeZone != "" {
		updates.TimeZone = sanitizer.TrimAndNormalize(updates.TimeZone)
	}
	if updates.AvailablePeriods != nil {
		sanitizeSchedule(*updates.AvailablePeriods)
	}
	if updates.Booking != nil {
		updates.Booking.SlotStart = sanitizer.TrimAndNormalize(updates.Booking.SlotStart)
		updates.Booking.CustomSlots = sanitizer.SanitizeClockList(updates.Booking.CustomSlots)
	}
}

func sanitizeSchedule(periods []model.AvailablePeriod) {
	for i := range periods {
		for j := range periods[i].Shifts {
			shift := &periods[i].Shifts[j]
			shift.Start = sanitizer.SanitizeClock(shift.Start)
			shift.End = sanitizer.SanitizeClock(shift.End)
		}
	}
}

// applyDefaults fills the time zone from the admin phone country when the
// caller left it empty.
func (s *businessService) applyDefaults(b *model.Business) {
	if b.TimeZone == "" {
		b.TimeZone = locale.InferTimezoneFromPhone(b.AdminPhone)
		if b.TimeZone != "" {
			s.cfg.Log.Debug("Inferred business time zone from phone",
				"admin_phone", b.AdminPhone,
				"timezone", b.TimeZone,
			)
		}
	}
	if b.Booking.SlotStart == "" {
		b.Booking.SlotStart = model.DefaultSlotStart
	}
}

func mergeUpdates(existing *model.Business, updates *model.BusinessUpdate) *model.Business {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.AdminPhone != "" {
		merged.AdminPhone = updates.AdminPhone
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}
	if updates.AvailablePeriods != nil {
		merged.AvailablePeriods = *updates.AvailablePeriods
	}
	if updates.UnavailablePeriods != nil {
		merged.UnavailablePeriods = *updates.UnavailablePeriods
	}
	if updates.Booking != nil {
		merged.Booking = *updates.Booking
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}
