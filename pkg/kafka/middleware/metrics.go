package kafka_middleware

import (
	"context"
	"slotbook/pkg/kafka"
	"slotbook/pkg/metrics"
	"time"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		m.KafkaPublishDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
		result := "success"
		if err != nil {
			result = "failure"
		}
		m.KafkaPublished.WithLabelValues(msg.Topic, result).Inc()
		return err
	}
}
