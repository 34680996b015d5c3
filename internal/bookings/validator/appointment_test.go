package validator

import (
	"errors"
	"io"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"testing"
	"time"
)

func newValidator() *AppointmentValidator {
	return NewAppointmentValidator(logger.New(logger.Config{Output: io.Discard}))
}

func validRequest() *model.BookingRequest {
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	return &model.BookingRequest{
		OptionID: "haircut",
		Slot:     model.NewTimeSlot(start, 60),
		Customer: model.Customer{Name: "Dana Levi", Phone: "+972541234567", Email: "dana@example.com"},
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *model.BookingRequest)
		wantField string
	}{
		{name: "valid", mutate: func(*model.BookingRequest) {}},
		{name: "missing option", mutate: func(r *model.BookingRequest) { r.OptionID = "" }, wantField: "OptionID"},
		{name: "zero duration", mutate: func(r *model.BookingRequest) { r.Slot.Duration = 0 }, wantField: "Duration"},
		{name: "span mismatch", mutate: func(r *model.BookingRequest) { r.Slot.EndAt += 60_000 }, wantField: "EndAt"},
		{name: "bad phone", mutate: func(r *model.BookingRequest) { r.Customer.Phone = "0541234567" }, wantField: "Phone"},
		{name: "bad email", mutate: func(r *model.BookingRequest) { r.Customer.Email = "not-an-email" }, wantField: "Email"},
		{name: "short name", mutate: func(r *model.BookingRequest) { r.Customer.Name = "D" }, wantField: "Name"},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.ValidateRequest(req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}
