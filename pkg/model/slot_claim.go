package model

import (
	"fmt"
	"time"
)

// SlotClaim reserves one granule of a business calendar for an appointment.
// The _id is derived from the business and granule start, so a second claim
// on the same granule fails with a duplicate key error.
type SlotClaim struct {
	ID            string    `bson:"_id" json:"id"`
	BusinessID    string    `bson:"business_id" json:"business_id"`
	AppointmentID string    `bson:"appointment_id" json:"appointment_id"`
	GranuleStart  time.Time `bson:"granule_start" json:"granule_start"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

func SlotClaimKey(businessID string, granuleStart time.Time) string {
	return fmt.Sprintf("%s:%d", businessID, granuleStart.UnixMilli())
}
