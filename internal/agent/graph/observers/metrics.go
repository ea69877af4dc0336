package observers

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chef"

// Metrics holds the collectors fed by the graph callbacks.
type Metrics struct {
	NodeRuns     *prometheus.CounterVec
	NodeDuration *prometheus.HistogramVec
	RunOutcomes  *prometheus.CounterVec
	ModelTokens  *prometheus.CounterVec
	ModelErrors  prometheus.Counter
	CostUSD      prometheus.Counter
	Retries      prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg when it
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_runs_total",
			Help:      "Recipe graph node executions by outcome.",
		}, []string{"node", "outcome"}),
		NodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_duration_seconds",
			Help:      "Recipe graph node latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"node"}),
		RunOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed turns by outcome and error kind.",
		}, []string{"outcome", "error_kind"}),
		ModelTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_tokens_total",
			Help:      "Chat model tokens by kind.",
		}, []string{"kind"}),
		ModelErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_errors_total",
			Help:      "Failed chat model calls.",
		}),
		CostUSD: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_cost_usd_total",
			Help:      "Accumulated chat model cost in USD.",
		}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_retries_total",
			Help:      "Collaborator calls repeated after a failure.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.NodeRuns,
			m.NodeDuration,
			m.RunOutcomes,
			m.ModelTokens,
			m.ModelErrors,
			m.CostUSD,
			m.Retries,
		)
	}
	return m
}
