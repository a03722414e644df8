// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tapas"

// Label names
const (
	LabelEndpoint = "endpoint"
	LabelResult   = "result"
	LabelTool     = "tool"
	LabelKind     = "kind"
	LabelMethod   = "method"
	LabelRoute    = "route"
	LabelStatus   = "status"
)

// Result label values
const (
	ResultOK            = "ok"
	ResultCached        = "cached"
	ResultError         = "error"
	ResultUnavailable   = "unavailable"
	ResultRecalculating = "recalculating"
	ResultHit           = "hit"
	ResultMiss          = "miss"
	ResultInvalid       = "invalid"
)

// Upstream
var (
	FetchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by endpoint and result",
		},
		[]string{LabelEndpoint, LabelResult},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{LabelEndpoint},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_breaker_state",
			Help:      "Upstream circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)
)

// Engine and tools
var (
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool invocations by tool and result",
		},
		[]string{LabelTool, LabelResult},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memo_cache_lookups_total",
			Help:      "Memo cache lookups by kind and result",
		},
		[]string{LabelKind, LabelResult},
	)

	Refreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_refreshes_total",
			Help:      "Scheduled live refreshes by result",
		},
		[]string{LabelResult},
	)
)

// HTTP
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)
)
