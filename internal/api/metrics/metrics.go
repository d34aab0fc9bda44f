// Package metrics defines and registers the custom Prometheus metrics of the
// mediation gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialization and exposed by the /metrics route.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mediation"

// Transport label values.
const (
	TransportMCP  = "mcp"
	TransportREST = "rest"
)

// ── Tool metrics ──────────────────────────────────────────────────────────────

// ToolCallsTotal counts gateway operations by outcome.
// Labels:
//   - tool: the operation name (e.g. "create_user")
//   - transport: "mcp" or "rest"
//   - outcome: "ok" or the stable error code (e.g. "duplicate_key")
var ToolCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_calls_total",
		Help:      "Total number of gateway tool calls, by tool, transport and outcome.",
	},
	[]string{"tool", "transport", "outcome"},
)

// ToolCallDuration measures a gateway call from dispatch to rendered result.
// Label:
//   - tool: the operation name
var ToolCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tool_call_duration_seconds",
		Help:      "Duration of gateway tool calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"tool"},
)

// ── Seed metrics ──────────────────────────────────────────────────────────────

// SeedRunsTotal counts seed runs.
// Labels:
//   - trigger: "startup" or "call"
//   - result: "ok" or "error"
var SeedRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seed_runs_total",
		Help:      "Total number of seed runs, by trigger and result.",
	},
	[]string{"trigger", "result"},
)

// ObserveToolCall records one finished tool call.
func ObserveToolCall(tool, transport, outcome string, started time.Time) {
	ToolCallsTotal.WithLabelValues(tool, transport, outcome).Inc()
	ToolCallDuration.WithLabelValues(tool).Observe(time.Since(started).Seconds())
}

// ObserveSeed records one seed run.
func ObserveSeed(trigger string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	SeedRunsTotal.WithLabelValues(trigger, result).Inc()
}
