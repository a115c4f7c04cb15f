// Package metrics collects and exposes Prometheus metrics for the club service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for enrollment and status transition counters.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder is the metrics surface used by orchestrators and stores.
type Recorder interface {
	RecordEnrollment(activity, outcome string)
	RecordStatusTransition(activity, to, outcome string)
	RecordStoreRetry()
	ObserveQuery(op string, d time.Duration)
	ObserveRequest(route string, status int, d time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	enrollments *prometheus.CounterVec
	transitions *prometheus.CounterVec
	retries     prometheus.Counter
	queries     *prometheus.HistogramVec
	requests    *prometheus.HistogramVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhouse_enrollments_total",
			Help: "Enrollment attempts by activity kind and outcome.",
		}, []string{"activity", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhouse_status_transitions_total",
			Help: "Status transition attempts by activity kind, target status and outcome.",
		}, []string{"activity", "to", "outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhouse_store_retries_total",
			Help: "Transactions retried after lock contention or serialization failure.",
		}),
		queries: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clubhouse_db_query_duration_seconds",
			Help:    "Database call latency by operation.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"op"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clubhouse_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	reg.MustRegister(c.enrollments, c.transitions, c.retries, c.queries, c.requests)
	return c
}

// RecordEnrollment counts one enrollment attempt.
func (c *Collector) RecordEnrollment(activity, outcome string) {
	c.enrollments.WithLabelValues(activity, outcome).Inc()
}

// RecordStatusTransition counts one status change attempt.
func (c *Collector) RecordStatusTransition(activity, to, outcome string) {
	c.transitions.WithLabelValues(activity, to, outcome).Inc()
}

// RecordStoreRetry counts one retried transaction.
func (c *Collector) RecordStoreRetry() {
	c.retries.Inc()
}

// ObserveQuery records the latency of one database call.
func (c *Collector) ObserveQuery(op string, d time.Duration) {
	c.queries.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveRequest records the latency of one HTTP request.
func (c *Collector) ObserveRequest(route string, status int, d time.Duration) {
	c.requests.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Useful as a default in tests and tools.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordEnrollment(string, string)              {}
func (Nop) RecordStatusTransition(string, string, string) {}
func (Nop) RecordStoreRetry()                            {}
func (Nop) ObserveQuery(string, time.Duration)           {}
func (Nop) ObserveRequest(string, int, time.Duration)    {}
