package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation during shutdown drain.
	HTTPRequestsInFlight prometheus.Gauge

	// Open-Meteo call rate per endpoint. Watch for: error vs success ratio per provider.
	UpstreamCallsTotal *prometheus.CounterVec

	// Open-Meteo latency per endpoint. Watch for: p99 approaching the 10s per-call timeout.
	UpstreamCallDuration *prometheus.HistogramVec

	// Total report queries served. rate() for QPS.
	ReportQueriesTotal prometheus.Counter

	// Queries where air quality degraded to unavailable. Sustained climb = AQ endpoint trouble.
	AirQualityUnavailableTotal prometheus.Counter

	// Record log appends by backend and outcome. Failures are non-fatal; watch the error ratio.
	RecordAppendsTotal *prometheus.CounterVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total number of Open-Meteo API calls by endpoint",
		},
		[]string{"provider", "status"},
	)
	UpstreamCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamCallDurationSeconds",
			Help:    "Open-Meteo API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "status"},
	)
	ReportQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reportQueriesTotal",
			Help: "Total number of eco-weather report queries",
		},
	)
	AirQualityUnavailableTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "airQualityUnavailableTotal",
			Help: "Report queries where air quality degraded to unavailable",
		},
	)
	RecordAppendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recordAppendsTotal",
			Help: "Record log append attempts by backend and outcome",
		},
		[]string{"backend", "status"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamCallDuration,
		ReportQueriesTotal, AirQualityUnavailableTotal,
		RecordAppendsTotal,
		RateLimitDeniedTotal,
	)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
