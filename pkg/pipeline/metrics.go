package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-xmlgen/pkg/validation"
)

// Generation outcomes recorded in the status label.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)

// Metrics tracks generation counts, durations and findings.
type Metrics struct {
	Generations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Findings    *prometheus.CounterVec
	OutputBytes prometheus.Counter
}

// NewMetrics registers the pipeline metrics with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "xmlgen_generations_total",
			Help: "Generation requests by document type and outcome",
		}, []string{"type", "status"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "xmlgen_generation_duration_seconds",
			Help:    "Duration of generation requests from factory lookup to persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"type"}),
		Findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "xmlgen_validation_findings_total",
			Help: "Validation findings by severity",
		}, []string{"severity"}),
		OutputBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "xmlgen_output_bytes_total",
			Help: "Bytes of serialized XML written",
		}),
	}
}

func (m *Metrics) observe(typeName, status string, start time.Time) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(typeName, status).Inc()
	m.Duration.WithLabelValues(typeName).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeReport(report validation.Report, written int64) {
	if m == nil {
		return
	}
	m.Findings.WithLabelValues(string(validation.SeverityError)).Add(float64(len(report.Errors)))
	m.Findings.WithLabelValues(string(validation.SeverityWarning)).Add(float64(len(report.Warnings)))
	m.OutputBytes.Add(float64(written))
}
