package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the application's Prometheus metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	widgetLoads     *prometheus.CounterVec
	upstreamRetries prometheus.Counter
	exportsTotal    *prometheus.CounterVec
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receiptly_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "receiptly_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	widgetLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receiptly_widget_loads_total",
		Help: "Widget load outcomes by widget and terminal phase.",
	}, []string{"widget", "phase"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiptly_upstream_retries_total",
		Help: "Upstream requests retried after a 429 response.",
	})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receiptly_pdf_exports_total",
		Help: "PDF export runs by outcome.",
	}, []string{"outcome"})
	registry.MustRegister(requests, duration, widgetLoads, retries, exports)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		widgetLoads:     widgetLoads,
		upstreamRetries: retries,
		exportsTotal:    exports,
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

// ObserveWidgetLoad records one widget load terminal phase.
func (m *Metrics) ObserveWidgetLoad(widget, phase string) {
	if m == nil {
		return
	}
	m.widgetLoads.WithLabelValues(widget, phase).Inc()
}

// ObserveUpstreamRetry counts one retried upstream request.
func (m *Metrics) ObserveUpstreamRetry() {
	if m == nil {
		return
	}
	m.upstreamRetries.Inc()
}

// ObserveExport records one PDF export outcome.
func (m *Metrics) ObserveExport(outcome string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(outcome).Inc()
}

// Registerer exposes the registry for custom metric registration.
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
