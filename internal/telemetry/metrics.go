// Package telemetry exposes Prometheus metrics for the routing core.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for Helmsman.
type Metrics struct {
	InvocationsTotal *prometheus.CounterVec
	TokensTotal      *prometheus.CounterVec
	CostUSDTotal     *prometheus.CounterVec
	QualityScore     *prometheus.HistogramVec
	EscalationsTotal prometheus.Counter
	DowngradesTotal  prometheus.Counter
}

// NewMetrics creates and registers all metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InvocationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helmsman_invocations_total",
			Help: "Total number of model invocations.",
		}, []string{"model", "point", "status"}),

		TokensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helmsman_tokens_total",
			Help: "Total tokens consumed.",
		}, []string{"model"}),

		CostUSDTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helmsman_cost_usd_total",
			Help: "Estimated total cost in USD.",
		}, []string{"model"}),

		QualityScore: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helmsman_quality_score",
			Help:    "Distribution of quality scores per model.",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		}, []string{"model"}),

		EscalationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "helmsman_escalations_total",
			Help: "Total one-time escalations to the MAXIMUM operating point.",
		}),

		DowngradesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "helmsman_downgrades_total",
			Help: "Total rate-limit downgrades to the MINIMUM operating point.",
		}),
	}
}

// InvocationLabels carries the values for one completed invocation.
type InvocationLabels struct {
	Model        string
	Point        string
	Status       string
	TokensUsed   int64
	CostIncurred float64
	QualityScore int
	Scored       bool
}

// RecordInvocation records metrics for one completed invocation.
func (m *Metrics) RecordInvocation(labels InvocationLabels) {
	m.InvocationsTotal.WithLabelValues(labels.Model, labels.Point, labels.Status).Inc()

	if labels.TokensUsed > 0 {
		m.TokensTotal.WithLabelValues(labels.Model).Add(float64(labels.TokensUsed))
	}
	if labels.CostIncurred > 0 {
		m.CostUSDTotal.WithLabelValues(labels.Model).Add(labels.CostIncurred)
	}
	if labels.Scored {
		m.QualityScore.WithLabelValues(labels.Model).Observe(float64(labels.QualityScore))
	}
}
