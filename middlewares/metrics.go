package middlewares

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/waymark/internal"
)

// MetricsConfig configures the metrics middleware.
type MetricsConfig struct {
	Namespace string
	Buckets   []float64
}

// MetricsOption configures the metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the metric namespace. Defaults to "waymark".
func WithMetricsNamespace(ns string) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Namespace = ns
	}
}

// WithMetricsBuckets sets the duration histogram buckets.
func WithMetricsBuckets(buckets ...float64) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Buckets = buckets
	}
}

// Metrics returns middleware that records request count and duration
// labelled by route name, method and status.
// The collectors are registered on reg, which panics if they already exist.
func Metrics(reg prometheus.Registerer, opts ...MetricsOption) internal.Middleware {
	cfg := &MetricsConfig{
		Namespace: "waymark",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	labels := []string{"route", "method", "status"}
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of routed HTTP requests",
		},
		labels,
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Routed HTTP request duration in seconds",
			Buckets:   cfg.Buckets,
		},
		labels,
	)
	reg.MustRegister(requests, duration)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			status := strconv.Itoa(responseStatus(c, err))
			values := []string{c.RouteName(), c.Request().Method, status}
			requests.WithLabelValues(values...).Inc()
			duration.WithLabelValues(values...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
