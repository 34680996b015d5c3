package validator

import (
	"errors"
	"io"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"strings"
	"testing"
)

func newValidator() *BusinessValidator {
	return NewBusinessValidator(logger.New(logger.Config{Output: io.Discard}))
}

func validBusiness() *model.Business {
	return &model.Business{
		Name:       "Dana's Barbershop",
		AdminPhone: "+972541234567",
		TimeZone:   "Asia/Jerusalem",
		AvailablePeriods: []model.AvailablePeriod{
			{WeekDay: 1, Shifts: []model.Shift{{Start: "09:00", End: "13:00"}, {Start: "16:00", End: "20:00"}}},
			{WeekDay: 5, Shifts: []model.Shift{{Start: "08:00", End: "24:00"}}},
		},
		Booking: model.BookingSettings{SlotStart: "15"},
	}
}

func intPtr(v int) *int { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(b *model.Business)
		wantError string
	}{
		{name: "valid business", mutate: func(*model.Business) {}},
		{
			name:      "missing name",
			mutate:    func(b *model.Business) { b.Name = "" },
			wantError: "Name is required",
		},
		{
			name:      "phone not e164",
			mutate:    func(b *model.Business) { b.AdminPhone = "054-1234567" },
			wantError: "E.164",
		},
		{
			name:      "unknown time zone",
			mutate:    func(b *model.Business) { b.TimeZone = "Mars/Olympus" },
			wantError: "IANA time zone",
		},
		{
			name:      "malformed clock",
			mutate:    func(b *model.Business) { b.AvailablePeriods[0].Shifts[0].Start = "9am" },
			wantError: "HH:mm",
		},
		{
			name:      "unknown slot start",
			mutate:    func(b *model.Business) { b.Booking.SlotStart = "7" },
			wantError: "must be one of",
		},
		{
			name:      "week day out of range",
			mutate:    func(b *model.Business) { b.AvailablePeriods[0].WeekDay = 8 },
			wantError: "at most 7",
		},
		{
			name:      "shift ends before it starts",
			mutate:    func(b *model.Business) { b.AvailablePeriods[0].Shifts[0] = model.Shift{Start: "13:00", End: "09:00"} },
			wantError: "must be before end",
		},
		{
			name: "duplicate week day",
			mutate: func(b *model.Business) {
				b.AvailablePeriods = append(b.AvailablePeriods, model.AvailablePeriod{WeekDay: 1})
			},
			wantError: "more than once",
		},
		{
			name:      "custom mode without slots",
			mutate:    func(b *model.Business) { b.Booking.SlotStart = model.SlotStartCustom },
			wantError: "at least one custom slot",
		},
		{
			name: "mixed unavailable period",
			mutate: func(b *model.Business) {
				b.UnavailablePeriods = []model.TimeSlotPeriod{{
					StartAt: model.PeriodMoment{Year: intPtr(2024), Month: 12, Day: 24},
					EndAt:   model.PeriodMoment{Month: 12, Day: 26},
				}}
			},
			wantError: "both have a year",
		},
		{
			name: "dated unavailable period ends first",
			mutate: func(b *model.Business) {
				b.UnavailablePeriods = []model.TimeSlotPeriod{{
					StartAt: model.PeriodMoment{Year: intPtr(2024), Month: 12, Day: 26},
					EndAt:   model.PeriodMoment{Year: intPtr(2024), Month: 12, Day: 24},
				}}
			},
			wantError: "start_at must be before end_at",
		},
		{
			name: "recurring period may wrap the year",
			mutate: func(b *model.Business) {
				b.UnavailablePeriods = []model.TimeSlotPeriod{{
					StartAt: model.PeriodMoment{Month: 12, Day: 31},
					EndAt:   model.PeriodMoment{Month: 1, Day: 2},
				}}
			},
		},
		{
			name: "custom slots",
			mutate: func(b *model.Business) {
				b.Booking.SlotStart = model.SlotStartCustom
				b.Booking.CustomSlots = []string{"09:00", "09:45"}
			},
		},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBusiness()
			tt.mutate(b)

			err := v.Validate(b)
			if tt.wantError == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantError)
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("expected %q in %q", tt.wantError, err.Error())
			}
		})
	}
}
