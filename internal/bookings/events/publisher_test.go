package events

import (
	"context"
	"errors"
	"io"
	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"testing"
	"time"
)

type recordingProducer struct {
	messages []kafka.Message
	err      error
}

func (p *recordingProducer) Publish(_ context.Context, msg kafka.Message) error {
	p.messages = append(p.messages, msg)
	return p.err
}

func (p *recordingProducer) Close() error { return nil }

func appointment() *model.Appointment {
	return &model.Appointment{
		ID:            "65f1c0ffee65f1c0ffee65f1",
		BusinessID:    "65f1c0ffee65f1c0ffee0000",
		OptionID:      "haircut",
		DateTime:      time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		TotalDuration: 60,
		Status:        model.AppointmentPending,
		Customer:      model.Customer{Name: "Dana", Phone: "+972541234567"},
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &recordingProducer{}
	pub := NewKafkaPublisher(producer, logger.New(logger.Config{Output: io.Discard}))

	ctx := WithCorrelationID(context.Background(), "req-1")
	pub.Publish(ctx, AppointmentBooked, appointment())

	if len(producer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(producer.messages))
	}
	msg := producer.messages[0]
	if msg.Key != "65f1c0ffee65f1c0ffee0000" {
		t.Errorf("expected business id key, got %q", msg.Key)
	}
	if msg.GetEventType() != AppointmentBooked || msg.GetCorrelationID() != "req-1" || msg.GetEventID() == "" {
		t.Errorf("unexpected headers %v", msg.Headers)
	}

	var ev AppointmentEvent
	if err := msg.DecodeValue(&ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantEnd := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC).UnixMilli()
	if ev.AppointmentID != "65f1c0ffee65f1c0ffee65f1" || ev.EndAt != wantEnd || ev.Status != model.AppointmentPending {
		t.Errorf("unexpected payload %+v", ev)
	}
}

func TestKafkaPublisher_FailureIsSwallowed(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	pub := NewKafkaPublisher(producer, logger.New(logger.Config{Output: io.Discard}))

	// must not panic or block
	pub.Publish(context.Background(), AppointmentCancelled, appointment())

	if len(producer.messages) != 1 {
		t.Errorf("expected the publish to be attempted once, got %d", len(producer.messages))
	}
}
