package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	awardsTotal     *prometheus.CounterVec
	sweepRuns       prometheus.Counter
	sweepCandidates prometheus.Counter
	sweepSkipped    prometheus.Counter
	sweepFailed     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	awardsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_awards_total",
		Help: "Offers awarded, labelled by selection mode",
	}, []string{"mode"})

	sweepRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auto_award_sweeps_total",
		Help: "Completed auto-selection sweep runs",
	})

	sweepCandidates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auto_award_candidates_total",
		Help: "Bid items considered by auto-selection sweeps",
	})

	sweepSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auto_award_skipped_total",
		Help: "Candidates skipped by auto-selection sweeps (no offers or lost race)",
	})

	sweepFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auto_award_failures_total",
		Help: "Per-item award failures during auto-selection sweeps",
	})

	registry.MustRegister(requestDuration, requestTotal, awardsTotal, sweepRuns, sweepCandidates, sweepSkipped, sweepFailed)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		awardsTotal:     awardsTotal,
		sweepRuns:       sweepRuns,
		sweepCandidates: sweepCandidates,
		sweepSkipped:    sweepSkipped,
		sweepFailed:     sweepFailed,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a served HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// IncAward counts an awarded offer by selection mode (manual or auto).
func (s *MetricsService) IncAward(mode string) {
	s.awardsTotal.WithLabelValues(mode).Inc()
}

// RecordSweep records the outcome of one auto-selection sweep. Awarded
// items are counted per award through IncAward.
func (s *MetricsService) RecordSweep(candidates, skipped, failed int) {
	s.sweepRuns.Inc()
	s.sweepCandidates.Add(float64(candidates))
	s.sweepSkipped.Add(float64(skipped))
	s.sweepFailed.Add(float64(failed))
}
