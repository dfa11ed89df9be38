package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Validation metrics
	PathValidations *prometheus.CounterVec
	FileValidations *prometheus.CounterVec
	Violations      *prometheus.CounterVec

	// Tool metrics
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec

	// Policy metrics
	PolicyReloads prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Registry backs the /metrics endpoint. Each collector owns its own
	// registry so tests can create collectors independently.
	Registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	m.Registry = reg
	return m
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsgate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsgate_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		PathValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsgate_path_validations_total",
				Help: "Total number of path admission checks",
			},
			[]string{"outcome"},
		),
		FileValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsgate_file_validations_total",
				Help: "Total number of file-type policy checks",
			},
			[]string{"outcome"},
		),
		Violations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsgate_security_violations_total",
				Help: "Total number of security violations by kind",
			},
			[]string{"kind"},
		),

		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsgate_tool_calls_total",
				Help: "Total number of tool executions",
			},
			[]string{"service", "tool", "status"},
		),
		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsgate_tool_duration_seconds",
				Help:    "Tool execution duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"service", "tool"},
		),

		PolicyReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fsgate_policy_reloads_total",
				Help: "Total number of policy reloads",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fsgate_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// IncPathValidation records the outcome of one path admission check.
func (m *Metrics) IncPathValidation(valid bool) {
	m.PathValidations.WithLabelValues(outcome(valid)).Inc()
}

// IncFileValidation records the outcome of one file-type check.
func (m *Metrics) IncFileValidation(valid bool) {
	m.FileValidations.WithLabelValues(outcome(valid)).Inc()
}

// IncViolation records a security violation by kind.
func (m *Metrics) IncViolation(kind string) {
	m.Violations.WithLabelValues(kind).Inc()
}

// IncReload records a policy reload.
func (m *Metrics) IncReload() {
	m.PolicyReloads.Inc()
}

// RecordToolCall records one tool execution.
func (m *Metrics) RecordToolCall(service, tool, status string, duration time.Duration) {
	m.ToolCalls.WithLabelValues(service, tool, status).Inc()
	m.ToolDuration.WithLabelValues(service, tool).Observe(duration.Seconds())
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}

func outcome(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
