package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	phaseDuration *prom.HistogramVec
	buildDuration prom.Histogram
	docsRead      prom.Counter
	objects       prom.Counter
	warnings      *prom.CounterVec
	buildOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		phaseDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docindex",
			Name:      "phase_duration_seconds",
			Help:      "Duration of individual build phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docindex",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		docsRead: prom.NewCounter(prom.CounterOpts{
			Namespace: "docindex",
			Name:      "docs_read_total",
			Help:      "Documents parsed during read phases",
		}),
		objects: prom.NewCounter(prom.CounterOpts{
			Namespace: "docindex",
			Name:      "objects_collected_total",
			Help:      "Objects collected into the environment",
		}),
		warnings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docindex",
			Name:      "warnings_total",
			Help:      "Warnings emitted by category",
		}, []string{"category"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docindex",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.phaseDuration, pr.buildDuration, pr.docsRead, pr.objects, pr.warnings, pr.buildOutcome)
	return pr
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase string, d time.Duration) {
	if p == nil || p.phaseDuration == nil {
		return
	}
	p.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocsRead(n int) {
	if p == nil || p.docsRead == nil {
		return
	}
	p.docsRead.Add(float64(n))
}

func (p *PrometheusRecorder) IncObjectsCollected(n int) {
	if p == nil || p.objects == nil {
		return
	}
	p.objects.Add(float64(n))
}

func (p *PrometheusRecorder) IncWarning(category string) {
	if p == nil || p.warnings == nil {
		return
	}
	p.warnings.WithLabelValues(category).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}
