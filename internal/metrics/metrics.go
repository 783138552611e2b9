// Package metrics exposes Prometheus counters for the HTTP layer and the
// rental lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so tests can create as many as they need.
// All methods are safe to call on a nil *Recorder.
type Recorder struct {
	reg             *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rentals         *prometheus.CounterVec
	publishFailures prometheus.Counter
}

// NewRecorder builds a Recorder and registers its collectors together with
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rentals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "game_rental_transitions_total",
			Help: "Completed rental transitions by event (rented, returned).",
		}, []string{"event"}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "game_rental_event_publish_failures_total",
			Help: "Rental events that could not be handed to the broker.",
		}),
	}
	reg.MustRegister(
		r.requests,
		r.requestDuration,
		r.rentals,
		r.publishFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRequest records one finished HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RentalTransition counts a committed rent or return.
func (r *Recorder) RentalTransition(event string) {
	if r == nil {
		return
	}
	r.rentals.WithLabelValues(event).Inc()
}

// PublishFailed counts an event the broker did not accept.
func (r *Recorder) PublishFailed() {
	if r == nil {
		return
	}
	r.publishFailures.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
