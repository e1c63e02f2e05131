// Package metrics provides Prometheus metrics instrumentation for route generation.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Route kinds used as the "kind" label of the emitted routes gauge.
const (
	RouteKindForward  = "route"
	RouteKindRedirect = "redirect"
	RouteKindSNI      = "sni_route"
)

// Collector provides metrics recording interface.
// This allows components to record metrics without direct prometheus dependency.
type Collector interface {
	// Generation metrics
	RecordGenerateDuration(ctx context.Context, status string, duration time.Duration)
	RecordGroups(ctx context.Context, count int)
	RecordRoutes(ctx context.Context, kind string, count int)
	RecordGenerateError(ctx context.Context, errorType string)

	// Input metrics
	RecordDroppedInput(ctx context.Context, reason string)
	RecordContractViolations(ctx context.Context, count int)
}

// prometheusCollector implements Collector using Prometheus metrics.
type prometheusCollector struct {
	// Generation metrics
	generateDuration    *prometheus.HistogramVec
	groupsTotal         prometheus.Gauge
	routesTotal         *prometheus.GaugeVec
	generateErrorsTotal *prometheus.CounterVec

	// Input metrics
	droppedInputTotal       *prometheus.CounterVec
	contractViolationsTotal prometheus.Counter
}

// NewCollector creates a new Prometheus metrics collector and registers metrics.
func NewCollector(reg prometheus.Registerer) Collector {
	c := &prometheusCollector{}
	c.initGenerateMetrics()
	c.initInputMetrics()
	c.register(reg)

	return c
}

// RecordGenerateDuration records the duration of a generation pass.
func (c *prometheusCollector) RecordGenerateDuration(_ context.Context, status string, duration time.Duration) {
	c.generateDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordGroups records the number of mapping groups walked in the last pass.
func (c *prometheusCollector) RecordGroups(_ context.Context, count int) {
	c.groupsTotal.Set(float64(count))
}

// RecordRoutes records the number of routes emitted by kind.
func (c *prometheusCollector) RecordRoutes(_ context.Context, kind string, count int) {
	c.routesTotal.WithLabelValues(kind).Set(float64(count))
}

// RecordGenerateError records a failed generation pass by error type.
func (c *prometheusCollector) RecordGenerateError(_ context.Context, errorType string) {
	c.generateErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordDroppedInput records one piece of input that was dropped on purpose.
func (c *prometheusCollector) RecordDroppedInput(_ context.Context, reason string) {
	c.droppedInputTotal.WithLabelValues(reason).Inc()
}

// RecordContractViolations records contract violations found in a snapshot.
func (c *prometheusCollector) RecordContractViolations(_ context.Context, count int) {
	c.contractViolationsTotal.Add(float64(count))
}

func (c *prometheusCollector) initGenerateMetrics() {
	c.generateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routegen_generate_duration_seconds",
			Help:    "Duration of route configuration generation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
		[]string{"status"},
	)
	c.groupsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "routegen_mapping_groups",
			Help: "Mapping groups walked in the last generation pass",
		},
	)
	c.routesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "routegen_routes",
			Help: "Routes emitted in the last generation pass by kind",
		},
		[]string{"kind"},
	)
	c.generateErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_generate_errors_total",
			Help: "Total failed generation passes by type",
		},
		[]string{"error_type"},
	)
}

func (c *prometheusCollector) initInputMetrics() {
	c.droppedInputTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_dropped_input_total",
			Help: "Input dropped on purpose during generation by reason",
		},
		[]string{"reason"},
	)
	c.contractViolationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "routegen_contract_violations_total",
			Help: "Total snapshot contract violations",
		},
	)
}

func (c *prometheusCollector) register(reg prometheus.Registerer) {
	reg.MustRegister(
		c.generateDuration,
		c.groupsTotal,
		c.routesTotal,
		c.generateErrorsTotal,
		c.droppedInputTotal,
		c.contractViolationsTotal,
	)
}

// NoopCollector is a no-op implementation of Collector for testing.
type NoopCollector struct{}

// NewNoopCollector creates a new no-op collector.
func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

// RecordGenerateDuration is a no-op.
func (c *NoopCollector) RecordGenerateDuration(_ context.Context, _ string, _ time.Duration) {}

// RecordGroups is a no-op.
func (c *NoopCollector) RecordGroups(_ context.Context, _ int) {}

// RecordRoutes is a no-op.
func (c *NoopCollector) RecordRoutes(_ context.Context, _ string, _ int) {}

// RecordGenerateError is a no-op.
func (c *NoopCollector) RecordGenerateError(_ context.Context, _ string) {}

// RecordDroppedInput is a no-op.
func (c *NoopCollector) RecordDroppedInput(_ context.Context, _ string) {}

// RecordContractViolations is a no-op.
func (c *NoopCollector) RecordContractViolations(_ context.Context, _ int) {}
