package nhttp

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts requests served by ToHandler.  One Metrics can be
// shared by any number of handlers; they are told apart by WithName.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nphase",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests answered, by handler, method, and status code.",
		}, []string{"handler", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nphase",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time spent answering a request.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler", "method"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nphase",
			Subsystem: "http",
			Name:      "pipeline_failures_total",
			Help:      "Pipelines that finished in their error channel.",
		}, []string{"handler"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register nhttp metrics")
		}
	}
	return m, nil
}

// MustMetrics is NewMetrics that panics on error.
func MustMetrics(reg prometheus.Registerer) *Metrics {
	m, err := NewMetrics(reg)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// Observe records one answered request.  A nil Metrics records
// nothing.
func (m *Metrics) Observe(handler, method string, code int, elapsed time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(handler, method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(handler, method).Observe(elapsed.Seconds())
	if failed {
		m.failures.WithLabelValues(handler).Inc()
	}
}
