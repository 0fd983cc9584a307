// Package metrics exposes prometheus collectors for runs, tool calls and
// acquisition strategies on a dedicated registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "omega"

const (
	OutcomeOK    = "ok"
	OutcomeFail  = "fail"
	OutcomeEmpty = "empty"
)

var (
	Registry = prometheus.NewRegistry()

	StrategyAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "strategy_attempts_total",
		Help:      "Acquisition strategy attempts by pipeline, strategy and outcome.",
	}, []string{"pipeline", "strategy", "outcome"})

	ToolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_calls_total",
		Help:      "Tool dispatches by tool name and outcome.",
	}, []string{"tool", "outcome"})

	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Orchestrator runs by outcome.",
	}, []string{"outcome"})

	RunIterations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_iterations",
		Help:      "Decision model calls per orchestrator run.",
		Buckets:   []float64{1, 2, 3},
	})
)

func init() {
	Registry.MustRegister(
		StrategyAttempts,
		ToolCalls,
		Runs,
		RunIterations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Outcome maps a success flag to the outcome label.
func Outcome(ok bool) string {
	if ok {
		return OutcomeOK
	}
	return OutcomeFail
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
