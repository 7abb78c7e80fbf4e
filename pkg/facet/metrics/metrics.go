// Package metrics defines the Prometheus collectors for preprocessing runs.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the preprocessor.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	DocumentsTotal   *prometheus.CounterVec
	LabelsPerRun     prometheus.Histogram
	RejectionsTotal  *prometheus.CounterVec
	LexiconLoadTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg means
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facet_runs_total",
				Help: "Preprocessing runs by language and result (ok, error).",
			},
			[]string{"language", "result"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "facet_stage_duration_seconds",
				Help:    "Time spent in each pipeline stage.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"stage"},
		),
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facet_documents_total",
				Help: "Documents seen by the tokenizer, by status (accepted, skipped).",
			},
			[]string{"status"},
		),
		LabelsPerRun: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "facet_labels_per_run",
				Help:    "Label candidates left after filtering and assignment.",
				Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
		RejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facet_label_rejections_total",
				Help: "Label candidates removed, by filter.",
			},
			[]string{"filter"},
		),
		LexiconLoadTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facet_lexicon_lookups_total",
				Help: "Lexical resource lookups by language and result (ok, error).",
			},
			[]string{"language", "result"},
		),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.StageDuration,
		m.DocumentsTotal,
		m.LabelsPerRun,
		m.RejectionsTotal,
		m.LexiconLoadTotal,
	)
	return m
}

// ObserveStage records the duration of one stage
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RunResult summarizes a finished run.
type RunResult struct {
	Language   string
	Accepted   int
	Skipped    int
	Labels     int
	Rejections map[string]int
}

// ObserveRun records a successful run
func (m *Metrics) ObserveRun(r RunResult) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(r.Language, "ok").Inc()
	m.DocumentsTotal.WithLabelValues("accepted").Add(float64(r.Accepted))
	m.DocumentsTotal.WithLabelValues("skipped").Add(float64(r.Skipped))
	m.LabelsPerRun.Observe(float64(r.Labels))
	for filter, n := range r.Rejections {
		m.RejectionsTotal.WithLabelValues(filter).Add(float64(n))
	}
}

// ObserveFailure records a run that failed before any stage ran
func (m *Metrics) ObserveFailure(language string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(language, "error").Inc()
}

// ObserveLexicon records a lexical resource lookup
func (m *Metrics) ObserveLexicon(language string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.LexiconLoadTotal.WithLabelValues(language, result).Inc()
}
