// Package telemetry provides Prometheus metrics and OpenTelemetry spans for
// the analysis pipeline.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "irps-content-analyzer"

// Metrics holds the pipeline collectors.
type Metrics struct {
	AnalysesTotal       *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram
	FetchDegraded       *prometheus.CounterVec
	ThreatsDetected     *prometheus.CounterVec
	PersistenceFailures *prometheus.CounterVec
}

// Provider wraps the tracer, the metrics and the registry they live in.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider registers the collectors on reg. A nil reg gets a fresh
// registry so tests can build as many providers as they like.
func NewProvider(reg *prometheus.Registry) *Provider {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

// Handler serves the registry for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "irps_analyses_total",
			Help: "Completed analyses by disposition, risk level and detected language",
		}, []string{"disposition", "risk_level", "language"}),

		AnalysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "irps_analysis_duration_seconds",
			Help:    "End-to-end time of one analysis including fetch and persistence",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}),

		FetchDegraded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "irps_fetch_degraded_total",
			Help: "Fetches that fell back to URL-only analysis, by reason",
		}, []string{"reason"}),

		ThreatsDetected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "irps_threats_detected_total",
			Help: "Threat categories detected across analyses",
		}, []string{"category"}),

		PersistenceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "irps_persistence_failures_total",
			Help: "Failed writes by record kind",
		}, []string{"record"}),
	}
}

// RecordAnalysis records one finished analysis.
func (p *Provider) RecordAnalysis(_ context.Context, disposition, riskLevel, language string, duration time.Duration) {
	p.Metrics.AnalysesTotal.WithLabelValues(disposition, riskLevel, language).Inc()
	p.Metrics.AnalysisDuration.Observe(duration.Seconds())
}

func (p *Provider) RecordDegradedFetch(_ context.Context, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	p.Metrics.FetchDegraded.WithLabelValues(reason).Inc()
}

func (p *Provider) RecordThreats(_ context.Context, categories []string) {
	for _, c := range categories {
		p.Metrics.ThreatsDetected.WithLabelValues(c).Inc()
	}
}

func (p *Provider) RecordPersistenceFailure(_ context.Context, record string) {
	p.Metrics.PersistenceFailures.WithLabelValues(record).Inc()
}

// StartSpan starts a new trace span. The caller ends it.
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
