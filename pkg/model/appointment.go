package model

import (
	"slotbook/pkg/period"
	"time"
)

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentDeclined  = "declined"
	AppointmentCancelled = "cancelled"
)

// BusyStatuses are the appointment states that occupy time.
var BusyStatuses = []string{AppointmentPending, AppointmentConfirmed}

func IsBusyStatus(status string) bool {
	return status == AppointmentPending || status == AppointmentConfirmed
}

type Customer struct {
	Name  string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone string `json:"phone" bson:"phone" validate:"required,e164"`
	Email string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email,max=254"`
}

type Appointment struct {
	ID            string    `json:"id" bson:"_id"`
	BusinessID    string    `json:"business_id" bson:"business_id" validate:"required,mongodb"`
	OptionID      string    `json:"option_id" bson:"option_id" validate:"required,min=1,max=64"`
	DateTime      time.Time `json:"date_time" bson:"date_time" validate:"required"`
	TotalDuration int       `json:"total_duration" bson:"total_duration" validate:"required,min=1,max=1440"`
	EndTime       time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=DateTime"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed declined cancelled"`
	Customer      Customer  `json:"customer" bson:"customer"`
	Note          string    `json:"note,omitempty" bson:"note,omitempty" validate:"max=500"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

func (a *Appointment) Period() period.Period {
	return period.New(a.DateTime, a.DateTime.Add(time.Duration(a.TotalDuration)*time.Minute))
}

// BookingRequest is the payload of a book-slot call.
type BookingRequest struct {
	OptionID string   `json:"option_id" validate:"required,min=1,max=64"`
	Slot     TimeSlot `json:"slot"`
	Customer Customer `json:"customer"`
	Note     string   `json:"note,omitempty" validate:"max=500"`
}
