package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/prospect-portal-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the portal.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	sessionCacheLatency prometheus.Observer
	sessionCacheLookups *prometheus.CounterVec
	transitions         *prometheus.CounterVec
	auditJobs           *prometheus.CounterVec
	streamSubscribers   prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors on a private registry.
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

	sessionCacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "session_cache_latency_seconds",
		Help:    "Latency for session cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	sessionCacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_cache_lookups_total",
		Help: "Session cache lookups by result",
	}, []string{"result"})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prospect_transitions_total",
		Help: "Prospect status transitions by source and target status",
	}, []string{"from", "to"})

	auditJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_jobs_total",
		Help: "Audit log jobs by result",
	}, []string{"result"})

	streamSubscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "prospect_stream_subscribers",
		Help: "Open prospect change stream subscriptions",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, sessionCacheLatency, sessionCacheLookups, transitions, auditJobs, streamSubscribers, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		sessionCacheLatency: sessionCacheLatency,
		sessionCacheLookups: sessionCacheLookups,
		transitions:         transitions,
		auditJobs:           auditJobs,
		streamSubscribers:   streamSubscribers,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSessionLookup records a session cache hit or miss.
func (m *MetricsService) RecordSessionLookup(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.sessionCacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.sessionCacheLookups.WithLabelValues(result).Inc()
}

// RecordTransition counts a status change of a prospect.
func (m *MetricsService) RecordTransition(from, to models.ProspectStatus) {
	if m == nil {
		return
	}
	source := string(from)
	if source == "" {
		source = "none"
	}
	m.transitions.WithLabelValues(source, string(to)).Inc()
}

// RecordAuditJob counts audit job outcomes.
func (m *MetricsService) RecordAuditJob(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.auditJobs.WithLabelValues(result).Inc()
}

// StreamOpened and StreamClosed track live change stream subscriptions.
func (m *MetricsService) StreamOpened() {
	if m == nil {
		return
	}
	m.streamSubscribers.Inc()
}

func (m *MetricsService) StreamClosed() {
	if m == nil {
		return
	}
	m.streamSubscribers.Dec()
}
