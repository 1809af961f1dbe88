package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus metric collectors for the Flockr backend.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics.
	AuthSuccessesTotal *prometheus.CounterVec
	AuthFailuresTotal  *prometheus.CounterVec

	// Domain metrics.
	MessagesSentTotal    *prometheus.CounterVec
	ChannelsCreatedTotal prometheus.Counter
	UsersRegisteredTotal prometheus.Counter
	StandupsStartedTotal prometheus.Counter

	// Scheduler and rate limiting.
	DeferredTasksPending     prometheus.GaugeFunc
	RateLimitRejectionsTotal prometheus.Counter

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all Prometheus metrics on a private registry.
// pendingTasks feeds the deferred-task gauge; pass nil to pin it at zero.
func New(pendingTasks func() int) *Metrics {
	reg := prometheus.NewRegistry()
	if pendingTasks == nil {
		pendingTasks = func() int { return 0 }
	}

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flockr_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flockr_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		AuthSuccessesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flockr_auth_successes_total",
			Help: "Total number of successful registrations and logins.",
		}, []string{"operation"}),

		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flockr_auth_failures_total",
			Help: "Total number of failed auth operations.",
		}, []string{"operation"}),

		MessagesSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flockr_messages_sent_total",
			Help: "Total number of messages accepted for delivery.",
		}, []string{"kind"}),

		ChannelsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flockr_channels_created_total",
			Help: "Total number of channels created.",
		}),

		UsersRegisteredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flockr_users_registered_total",
			Help: "Total number of users registered.",
		}),

		StandupsStartedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flockr_standups_started_total",
			Help: "Total number of standups started.",
		}),

		DeferredTasksPending: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "flockr_deferred_tasks_pending",
			Help: "Number of scheduled deferred tasks not yet completed.",
		}, func() float64 { return float64(pendingTasks()) }),

		RateLimitRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flockr_ratelimit_rejections_total",
			Help: "Total number of rate limit rejections.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flockr_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	// Register all metrics.
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthSuccessesTotal,
		m.AuthFailuresTotal,
		m.MessagesSentTotal,
		m.ChannelsCreatedTotal,
		m.UsersRegisteredTotal,
		m.StandupsStartedTotal,
		m.DeferredTasksPending,
		m.RateLimitRejectionsTotal,
		m.ServerStartTime,
	)

	// Set server start time.
	m.ServerStartTime.Set(float64(time.Now().Unix()))

	// Register Go runtime and process collectors.
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncHTTPRequest increments the request counter for one served request.
func (m *Metrics) IncHTTPRequest(method, pathPattern string, statusCode int) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, fmt.Sprintf("%d", statusCode)).Inc()
}

// ObserveHTTPDuration records a request's duration.
func (m *Metrics) ObserveHTTPDuration(method, pathPattern string, seconds float64) {
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(seconds)
}

// IncAuthSuccess increments the auth success counter for the operation.
func (m *Metrics) IncAuthSuccess(operation string) {
	m.AuthSuccessesTotal.WithLabelValues(operation).Inc()
}

// IncAuthFailure increments the auth failure counter for the operation.
func (m *Metrics) IncAuthFailure(operation string) {
	m.AuthFailuresTotal.WithLabelValues(operation).Inc()
}

// IncMessageSent increments the sent-message counter. kind is "immediate" or
// "deferred".
func (m *Metrics) IncMessageSent(kind string) {
	m.MessagesSentTotal.WithLabelValues(kind).Inc()
}

// IncRateLimitRejection increments the rate limit rejection counter.
func (m *Metrics) IncRateLimitRejection() {
	m.RateLimitRejectionsTotal.Inc()
}
