/*
Package metrics exposes the Prometheus instruments shared by the tool server,
the agent server and the agent itself.
*/
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()
	factory  = promauto.With(Registry)

	RPCRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "a2a_calculator_rpc_requests_total", Help: "JSON-RPC requests by method and outcome"}, []string{"method", "outcome"})
	ToolCalls = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "a2a_calculator_tool_calls_total", Help: "Calculator tool invocations by tool and outcome"}, []string{"tool", "outcome"})
	AgentRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "a2a_calculator_agent_runs_total", Help: "Agent runs by final task state"}, []string{"state"})
	AgentDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "a2a_calculator_agent_run_seconds",
		Help:    "Time spent answering one prompt",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ObserveRun records one agent run ending in state.
func ObserveRun(state string, started time.Time) {
	AgentRuns.WithLabelValues(state).Inc()
	AgentDuration.Observe(time.Since(started).Seconds())
}

// Outcome maps an error to the "ok"/"error" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
