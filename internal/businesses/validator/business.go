package validator

import (
	"errors"
	"fmt"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/timeslots"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BusinessValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBusinessValidator(log *logger.Logger) *BusinessValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		log.Fatal("Failed to register clock validator", "error", err)
	}
	if err := v.RegisterValidation("slot_start", validateSlotStart); err != nil {
		log.Fatal("Failed to register slot_start validator", "error", err)
	}

	log.Info("Business validator initialized successfully")

	return &BusinessValidator{
		validate: v,
		logger:   log,
	}
}

func validateClock(fl validator.FieldLevel) bool {
	return timeslots.IsClock(fl.Field().String())
}

func validateSlotStart(fl validator.FieldLevel) bool {
	return timeslots.IsValidSlotStart(fl.Field().String())
}

func (v *BusinessValidator) Validate(b *model.Business) error {
	if err := v.validate.Struct(b); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if errs := v.validateBusinessRules(b); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BusinessValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +972501234567)", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be an IANA time zone (e.g., Asia/Jerusalem)", err.Field())
		case "clock":
			message = fmt.Sprintf("%s must be a time of day in HH:mm format", err.Field())
		case "slot_start":
			message = fmt.Sprintf("%s must be one of: 5 10 15 20 30 %s %s", err.Field(), model.SlotStartEveryHour, model.SlotStartCustom)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Namespace(),
			Message: message,
		})
	}

	return validationErrors
}

// validateBusinessRules covers what struct tags cannot express.
func (v *BusinessValidator) validateBusinessRules(b *model.Business) ValidationErrors {
	var errs ValidationErrors

	if _, err := time.LoadLocation(b.TimeZone); err != nil || b.TimeZone == "Local" {
		errs = append(errs, ValidationError{Field: "time_zone", Message: fmt.Sprintf("unknown time zone %q", b.TimeZone)})
	}

	seenDays := map[int]bool{}
	for i, ap := range b.AvailablePeriods {
		if seenDays[ap.WeekDay] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("available_periods[%d].week_day", i),
				Message: fmt.Sprintf("week day %d is listed more than once", ap.WeekDay),
			})
		}
		seenDays[ap.WeekDay] = true

		for j, shift := range ap.Shifts {
			start, errStart := timeslots.ParseClock(shift.Start)
			end, errEnd := timeslots.ParseClock(shift.End)
			if errStart != nil || errEnd != nil {
				continue
			}
			if start >= end {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("available_periods[%d].shifts[%d]", i, j),
					Message: fmt.Sprintf("shift start %s must be before end %s", shift.Start, shift.End),
				})
			}
		}
	}

	for i, p := range b.UnavailablePeriods {
		field := fmt.Sprintf("unavailable_periods[%d]", i)
		if p.IsMixed() {
			errs = append(errs, ValidationError{Field: field, Message: "start_at and end_at must both have a year or both omit it"})
			continue
		}
		if p.IsRecurring() {
			continue
		}
		start := time.Date(*p.StartAt.Year, time.Month(p.StartAt.Month), p.StartAt.Day, p.StartAt.Hour, p.StartAt.Minute, 0, 0, time.UTC)
		end := time.Date(*p.EndAt.Year, time.Month(p.EndAt.Month), p.EndAt.Day, p.EndAt.Hour, p.EndAt.Minute, 0, 0, time.UTC)
		if !start.Before(end) {
			errs = append(errs, ValidationError{Field: field, Message: "start_at must be before end_at"})
		}
	}

	if b.Booking.SlotStart == model.SlotStartCustom && len(b.Booking.CustomSlots) == 0 {
		errs = append(errs, ValidationError{Field: "booking.custom_slots", Message: "custom slot start requires at least one custom slot"})
	}
	for i, slot := range b.Booking.CustomSlots {
		if slot == "24:00" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("booking.custom_slots[%d]", i), Message: "a slot cannot start at 24:00"})
		}
	}

	seenApps := map[string]bool{}
	for i, app := range b.Booking.CalendarApps {
		key := app.AppID + "/" + app.ExternalID
		if seenApps[key] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("booking.calendar_apps[%d]", i),
				Message: fmt.Sprintf("calendar %s is linked more than once", key),
			})
		}
		seenApps[key] = true
	}

	return errs
}
