package service

import (
	"net/http"
	"runtime"
	"strconv"
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
	uploads         *prometheus.CounterVec
	storeMutations  *prometheus.HistogramVec
	notifications   *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	tempSwept       prometheus.Counter
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

	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uploads_total",
		Help: "Uploads by kind and outcome",
	}, []string{"kind", "outcome"})

	storeMutations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_mutation_duration_seconds",
		Help:    "Duration of JSON document read-modify-write cycles",
		Buckets: prometheus.DefBuckets,
	}, []string{"document", "outcome"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Operator notifications by outcome",
	}, []string{"outcome"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "admin_sessions_active",
		Help: "Admin sessions held by the session store",
	})

	tempSwept := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "temp_files_swept_total",
		Help: "Abandoned upload parts removed from the temp directory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, uploads, storeMutations, notifications, activeSessions, tempSwept, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		uploads:         uploads,
		storeMutations:  storeMutations,
		notifications:   notifications,
		activeSessions:  activeSessions,
		tempSwept:       tempSwept,
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

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveUpload counts one upload attempt.
func (m *MetricsService) ObserveUpload(kind string, err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, outcome(err)).Inc()
}

// ObserveStoreMutation matches repository.MutationObserver.
func (m *MetricsService) ObserveStoreMutation(document string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeMutations.WithLabelValues(document, outcome(err)).Observe(duration.Seconds())
}

// ObserveNotification counts a notification outcome.
func (m *MetricsService) ObserveNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

// SetActiveSessions publishes the session count.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// AddTempSwept counts removed temp files.
func (m *MetricsService) AddTempSwept(n int) {
	if m == nil {
		return
	}
	m.tempSwept.Add(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
