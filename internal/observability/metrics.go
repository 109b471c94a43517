package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	rebuildsTotal   *prometheus.CounterVec
	rebuildDuration prometheus.Histogram
	factRows        prometheus.Gauge
	unmappedRows    prometheus.Gauge
}

// NewMetrics initializes the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solstice_http_requests_total",
		Help: "HTTP request count by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solstice_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	rebuilds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solstice_fact_rebuilds_total",
		Help: "Fact rebuild attempts by outcome.",
	}, []string{"outcome"})
	rebuildDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solstice_fact_rebuild_duration_seconds",
		Help:    "Wall-clock duration of fact rebuilds.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
	factRows := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solstice_fact_rows",
		Help: "Fact rows published by the last successful rebuild.",
	})
	unmappedRows := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solstice_fact_rows_unmapped",
		Help: "Unmapped fact rows published by the last successful rebuild.",
	})
	registry.MustRegister(requests, duration, rebuilds, rebuildDuration, factRows, unmappedRows)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		rebuildsTotal:   rebuilds,
		rebuildDuration: rebuildDuration,
		factRows:        factRows,
		unmappedRows:    unmappedRows,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveRebuild records the outcome of a fact rebuild attempt.
func (m *Metrics) ObserveRebuild(outcome string, elapsed time.Duration, totalRows, unmappedRows int) {
	if m == nil {
		return
	}
	m.rebuildsTotal.WithLabelValues(outcome).Inc()
	m.rebuildDuration.Observe(elapsed.Seconds())
	if outcome == "success" {
		m.factRows.Set(float64(totalRows))
		m.unmappedRows.Set(float64(unmappedRows))
	}
}

// Registerer exposes the registry for registering custom metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
