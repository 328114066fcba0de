package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "hwkconsole"

// Metrics are the Prometheus collectors of the console. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	fanoutFailures *prometheus.CounterVec
	refreshes      *prometheus.CounterVec
	toolCalls      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg together with
// the Go and process collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Requests sent to Hawkular Alerting by method, route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of requests sent to Hawkular Alerting.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		fanoutFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_failures_total",
			Help:      "Detail requests that failed and were left out of a list.",
		}, []string{"kind"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_refreshes_total",
			Help:      "Dashboard refreshes by outcome.",
		}, []string{"result"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool calls by tool and outcome.",
		}, []string{"tool", "result"}),
	}
	reg.MustRegister(
		m.requests, m.latency, m.fanoutFailures, m.refreshes, m.toolCalls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one backend request. status 0 means no response.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := "none"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, route, code).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

// FanoutFailure counts a detail request dropped from a list of kind.
func (m *Metrics) FanoutFailure(kind string) {
	if m == nil {
		return
	}
	m.fanoutFailures.WithLabelValues(kind).Inc()
}

// PollerRefresh counts a dashboard refresh outcome: ok, error or stale.
func (m *Metrics) PollerRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// ToolCall counts an MCP tool call.
func (m *Metrics) ToolCall(tool string, failed bool) {
	if m == nil {
		return
	}
	result := "ok"
	if failed {
		result = "error"
	}
	m.toolCalls.WithLabelValues(tool, result).Inc()
}
