package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the gateway's metrics registry, exposed on /api/metrics.
var Registry = prometheus.NewRegistry()

var (
	// Buckets covering fast local handling through slow upstream round trips
	apiBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	factory = promauto.With(Registry)

	// HTTP server metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: apiBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Upstream portal API client metrics
	UpstreamRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_client_operation_duration_seconds",
			Help:    "Upstream portal API operation duration in seconds",
			Buckets: apiBuckets,
		},
		[]string{"operation", "status"},
	)

	UpstreamRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_client_operation_total",
			Help: "Total number of upstream portal API operations",
		},
		[]string{"operation", "status"},
	)

	// Authentication flow metrics
	OTPSendTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_otp_send_total",
			Help: "OTP send attempts by outcome",
		},
		[]string{"status"},
	)

	OTPVerifyTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_otp_verify_total",
			Help: "OTP verification attempts by outcome",
		},
		[]string{"status"},
	)

	OfficerLoginTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_officer_login_total",
			Help: "Officer login attempts by outcome",
		},
		[]string{"status"},
	)

	// Route guard outcomes: allowed, redirect_unauthenticated, redirect_role
	GuardDecisionTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_decision_total",
			Help: "Role guard decisions by outcome",
		},
		[]string{"outcome"},
	)

	DirectoryCacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_search_cache_total",
			Help: "Officer directory search cache lookups",
		},
		[]string{"result"},
	)
)

// Init registers process-level collectors with the gateway registry.
func Init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// MeasureDuration returns the elapsed seconds since start
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
