package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"slotbook/pkg/metrics"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testMessage(t *testing.T) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey("biz-1").
		WithValue(map[string]string{"appointment_id": "a1"}).
		WithEventType("appointment.booked").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	msg.Topic = "appointments"
	return msg
}

func TestMetricsProducerMiddleware(t *testing.T) {
	m := metrics.New("test")
	mw := MetricsProducerMiddleware(m)

	ok := func(context.Context, kafka.Message) error { return nil }
	fail := func(context.Context, kafka.Message) error { return errors.New("broker down") }

	_ = mw(context.Background(), testMessage(t), ok)
	if err := mw(context.Background(), testMessage(t), fail); err == nil {
		t.Fatal("middleware must pass the error through")
	}

	if got := testutil.ToFloat64(m.KafkaPublished.WithLabelValues("appointments", "success")); got != 1 {
		t.Errorf("success count = %v", got)
	}
	if got := testutil.ToFloat64(m.KafkaPublished.WithLabelValues("appointments", "failure")); got != 1 {
		t.Errorf("failure count = %v", got)
	}
}

func TestLoggingProducerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Format: logger.JSON, Output: &buf, Service: "test"})
	mw := LoggingProducerMiddleware(log)

	err := mw(context.Background(), testMessage(t), func(context.Context, kafka.Message) error {
		return errors.New("leader not available")
	})
	if err == nil {
		t.Fatal("expected the error to be returned")
	}

	out := buf.String()
	for _, want := range []string{"Failed to publish Kafka message", "appointment.booked", "leader not available"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}
