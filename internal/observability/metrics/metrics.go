package metrics

import "github.com/prometheus/client_golang/prometheus"

// EvaluationMetrics exposes counters/histograms for the evaluation flow.
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	analyzerFallbacks  *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
}

func NewEvaluationMetrics(reg prometheus.Registerer) *EvaluationMetrics {
	m := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Subsystem: "engine",
			Name:      "evaluations_total",
			Help:      "Total answers evaluated",
		}, []string{"stage", "followup"}),
		analyzerFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Subsystem: "engine",
			Name:      "analyzer_fallbacks_total",
			Help:      "Analyzer runs that degraded to their default result",
		}, []string{"modality"}),
		evaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "interview",
			Subsystem: "engine",
			Name:      "evaluation_duration_seconds",
			Help:      "Wall time of full answer evaluation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.evaluationsTotal, m.analyzerFallbacks, m.evaluationDuration)
	return m
}

func (m *EvaluationMetrics) ObserveEvaluation(stage string, followUp bool, seconds float64) {
	if m == nil {
		return
	}
	label := "false"
	if followUp {
		label = "true"
	}
	m.evaluationsTotal.WithLabelValues(stage, label).Inc()
	m.evaluationDuration.Observe(seconds)
}

func (m *EvaluationMetrics) ObserveFallback(modality string) {
	if m == nil {
		return
	}
	m.analyzerFallbacks.WithLabelValues(modality).Inc()
}
