// Package metrics exposes Prometheus collectors for the HTTP surface and the
// check pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes.
const (
	OutcomeStored      = "stored"
	OutcomeBadRequest  = "bad_request"
	OutcomeTooLarge    = "too_large"
	OutcomeUnsupported = "unsupported"
	OutcomeUndecodable = "undecodable"
	OutcomeLimited     = "rate_limited"
	OutcomeError       = "error"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	stages   *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	fraud    prometheus.Counter
}

// New registers every collector on reg. Pass a fresh prometheus.NewRegistry()
// in tests so repeated construction does not collide.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "checkparser_in_flight_requests",
			Help: "Number of requests currently being served.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkparser_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		// duration uses buckets sized for OCR-bound uploads.
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "checkparser_http_request_duration_seconds",
			Help:    "A histogram of HTTP request latencies.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "checkparser_pipeline_stage_seconds",
			Help:    "Wall time of each check pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2.5, 10),
		}, []string{"stage"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkparser_uploads_total",
			Help: "Check uploads by outcome.",
		}, []string{"outcome"}),
		fraud: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checkparser_fraud_flagged_total",
			Help: "Stored checks whose fraud score flagged them.",
		}),
	}
	reg.MustRegister(m.inFlight, m.requests, m.duration, m.stages, m.outcomes, m.fraud)
	return m
}

// ObserveStage matches checkparser.StageObserver.
func (m *Metrics) ObserveStage(stage string, elapsed time.Duration) {
	m.stages.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// Outcome counts one upload result.
func (m *Metrics) Outcome(outcome string) {
	m.outcomes.WithLabelValues(outcome).Inc()
}

// Fraud counts a stored check that was flagged.
func (m *Metrics) Fraud() {
	m.fraud.Inc()
}

// Middleware records request counts and latencies per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
