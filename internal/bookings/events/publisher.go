// Package events publishes appointment lifecycle events after a write has
// committed. Publishing is best effort and never fails the write.
package events

import (
	"context"
	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"
	"time"
)

const (
	AppointmentBooked    = "appointment.booked"
	AppointmentConfirmed = "appointment.confirmed"
	AppointmentDeclined  = "appointment.declined"
	AppointmentCancelled = "appointment.cancelled"

	schemaVersion = "1"
	source        = "slotbook"
)

type AppointmentEvent struct {
	AppointmentID string    `json:"appointment_id"`
	BusinessID    string    `json:"business_id"`
	OptionID      string    `json:"option_id"`
	Status        string    `json:"status"`
	StartAt       int64     `json:"start_at"`
	EndAt         int64     `json:"end_at"`
	CustomerPhone string    `json:"customer_phone"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, appt *model.Appointment)
}

type kafkaPublisher struct {
	producer kafka.Publisher
	log      *logger.Logger
}

func NewKafkaPublisher(producer kafka.Publisher, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, appt *model.Appointment) {
	msg, err := NewAppointmentMessage(ctx, eventType, appt)
	if err != nil {
		p.log.Error("Failed to build appointment event",
			"event_type", eventType,
			"appointment_id", appt.ID,
			"error", err,
		)
		return
	}

	// the request may already be finishing; the event outlives it
	ctx = context.WithoutCancel(ctx)
	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish appointment event",
			"event_type", eventType,
			"appointment_id", appt.ID,
			"error", err,
		)
	}
}

// NewAppointmentMessage keys the event by business so one business's events
// stay ordered on a single partition.
func NewAppointmentMessage(ctx context.Context, eventType string, appt *model.Appointment) (kafka.Message, error) {
	period := appt.Period()
	return kafka.NewMessage().
		WithKey(appt.BusinessID).
		WithEventType(eventType).
		WithCorrelationID(correlationID(ctx)).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		WithValue(AppointmentEvent{
			AppointmentID: appt.ID,
			BusinessID:    appt.BusinessID,
			OptionID:      appt.OptionID,
			Status:        appt.Status,
			StartAt:       period.Start,
			EndAt:         period.End,
			CustomerPhone: appt.Customer.Phone,
			OccurredAt:    time.Now().UTC(),
		}).
		Build()
}

type correlationKey struct{}

// WithCorrelationID stores the id used to tie emitted events back to the
// request that caused them.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// correlationID falls back to the HTTP request id.
func correlationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return middleware.RequestIDFromContext(ctx)
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, *model.Appointment) {}
