// Package metrics collects Prometheus metrics for outbound API calls and the session lifecycle.
package metrics

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// Recorder is what the request pipeline reports to
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordTransportError(method, route string)
	RecordSessionExpired()
	RecordRateLimitWait(duration time.Duration)
}

// Collector is the Prometheus implementation of Recorder
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	transportErrors *prometheus.CounterVec
	sessionExpired  prometheus.Counter
	rateLimitWait   prometheus.Histogram
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates the collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrdash_api_requests_total",
			Help: "API requests by method, route and response status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrdash_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrdash_api_transport_errors_total",
			Help: "API requests that failed before a response was received",
		}, []string{"method", "route"}),
		sessionExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrdash_session_expired_total",
			Help: "Sessions cleared because the backend answered 401",
		}),
		rateLimitWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hrdash_rate_limit_wait_seconds",
			Help:    "Time requests spent waiting for the client-side rate limiter",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.transportErrors,
		c.sessionExpired,
		c.rateLimitWait,
	)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordTransportError(method, route string) {
	c.transportErrors.WithLabelValues(method, route).Inc()
}

func (c *Collector) RecordSessionExpired() {
	c.sessionExpired.Inc()
}

func (c *Collector) RecordRateLimitWait(duration time.Duration) {
	c.rateLimitWait.Observe(duration.Seconds())
}

// Handler serves the registry for Prometheus scrapes
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// WriteText writes every metric family in the text exposition format
func WriteText(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "[metrics.WriteText] gather")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "[metrics.WriteText] encode")
		}
	}
	return nil
}

// Nop discards everything
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordTransportError(string, string)              {}
func (Nop) RecordSessionExpired()                            {}
func (Nop) RecordRateLimitWait(time.Duration)                {}
