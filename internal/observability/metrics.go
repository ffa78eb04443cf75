package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quantix/quantix-console/internal/apiclient"
)

// Metrics collects Prometheus metrics for the console and its backend calls.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	logouts         prometheus.Counter
}

// NewMetrics initialises the registry and the base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quantix_http_requests_total",
		Help: "HTTP requests served by the console, by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quantix_http_request_duration_seconds",
		Help:    "Console request latency per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	upstream := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quantix_api_calls_total",
		Help: "Backend API calls by method, route and outcome.",
	}, []string{"method", "route", "outcome", "code"})
	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quantix_api_call_duration_seconds",
		Help:    "Backend API call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	logouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quantix_forced_logouts_total",
		Help: "Sessions cleared after the backend rejected the token.",
	})
	registry.MustRegister(requests, duration, upstream, upstreamLatency, logouts)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		upstreamTotal:   upstream,
		upstreamLatency: upstreamLatency,
		logouts:         logouts,
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

// ObserveCall implements apiclient.Observer.
func (m *Metrics) ObserveCall(method, route string, kind apiclient.Kind, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if kind != apiclient.KindNone {
		outcome = kind.String()
	}
	code := "none"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.upstreamTotal.WithLabelValues(method, route, outcome, code).Inc()
	m.upstreamLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ForcedLogout counts a session cleared because of an unauthorized response.
func (m *Metrics) ForcedLogout() {
	if m == nil {
		return
	}
	m.logouts.Inc()
}

// Registerer exposes the registry for custom metrics.
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
