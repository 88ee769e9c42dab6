package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"agendo/pkg/kafka"
)

// ProducerMetrics tracks publish outcomes across all producers.
type ProducerMetrics struct {
	Published     int64
	Failed        int64
	DurationTotal int64 // Nanoseconds
}

var globalMetrics = &ProducerMetrics{}

func GetMetrics() *ProducerMetrics {
	return globalMetrics
}

func (m *ProducerMetrics) Reset() {
	atomic.StoreInt64(&m.Published, 0)
	atomic.StoreInt64(&m.Failed, 0)
	atomic.StoreInt64(&m.DurationTotal, 0)
}

// AvgPublishDuration returns the mean duration of successful publishes.
func (m *ProducerMetrics) AvgPublishDuration() time.Duration {
	published := atomic.LoadInt64(&m.Published)
	if published == 0 {
		return 0
	}
	total := atomic.LoadInt64(&m.DurationTotal)
	return time.Duration(total / published)
}

// MetricsProducerMiddleware counts publishes, failures and total duration.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		atomic.AddInt64(&globalMetrics.DurationTotal, int64(time.Since(start)))
		if err != nil {
			atomic.AddInt64(&globalMetrics.Failed, 1)
		} else {
			atomic.AddInt64(&globalMetrics.Published, 1)
		}

		return err
	}
}
