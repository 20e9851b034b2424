package transport

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

// CallbackMetrics records per-handler request latency and failures.
type CallbackMetrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewCallbackMetrics registers the request metrics with registry.
func NewCallbackMetrics(registry prometheus.Registerer) *CallbackMetrics {
	m := &CallbackMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "device_request_duration_seconds",
			Help:    "Duration of requests sent to the device",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 7),
		}, []string{"target", "handler"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "device_request_errors_total",
			Help: "Requests that returned an error",
		}, []string{"target", "handler"}),
	}
	registry.MustRegister(m.duration, m.errors)
	return m
}

// Wrap instruments cb with the target label.
func (m *CallbackMetrics) Wrap(target string, cb ports.Callback) ports.Callback {
	return ports.CallbackFunc(func(ctx context.Context, handler ports.Handler, payload ports.Payload) (ports.Result, error) {
		start := time.Now()
		res, err := cb.Invoke(ctx, handler, payload)
		m.duration.WithLabelValues(target, string(handler)).Observe(time.Since(start).Seconds())
		if err != nil {
			m.errors.WithLabelValues(target, string(handler)).Inc()
		}
		return res, err
	})
}
