package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorInterface(t *testing.T) {
	t.Parallel()

	// Verify that prometheusCollector implements Collector interface
	var _ Collector = (*prometheusCollector)(nil)
	var _ Collector = (*NoopCollector)(nil)
}

func TestNewCollector(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	require.NotNil(t, collector)
	assert.IsType(t, &prometheusCollector{}, collector)
}

func TestNoopCollector(t *testing.T) {
	t.Parallel()

	collector := NewNoopCollector()
	require.NotNil(t, collector)

	ctx := context.Background()

	// All methods should not panic
	assert.NotPanics(t, func() {
		collector.RecordGenerateDuration(ctx, "success", time.Second)
		collector.RecordGroups(ctx, 3)
		collector.RecordRoutes(ctx, RouteKindForward, 5)
		collector.RecordGenerateError(ctx, ErrorTypeDecode)
		collector.RecordDroppedInput(ctx, "shadow")
		collector.RecordContractViolations(ctx, 2)
	})
}

func TestMetricsRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := NewCollector(reg).(*prometheusCollector)
	ctx := context.Background()

	// Trigger all metrics to be collected at least once
	collector.RecordGenerateDuration(ctx, "success", time.Millisecond)
	collector.RecordGroups(ctx, 1)
	collector.RecordRoutes(ctx, RouteKindForward, 1)
	collector.RecordGenerateError(ctx, ErrorTypeUnknown)
	collector.RecordDroppedInput(ctx, "shadow")
	collector.RecordContractViolations(ctx, 1)

	// Verify metrics are registered
	metricFamilies, err := reg.Gather()
	require.NoError(t, err)

	expectedMetrics := []string{
		"routegen_generate_duration_seconds",
		"routegen_mapping_groups",
		"routegen_routes",
		"routegen_generate_errors_total",
		"routegen_dropped_input_total",
		"routegen_contract_violations_total",
	}

	registeredMetrics := make(map[string]bool)
	for _, mf := range metricFamilies {
		registeredMetrics[mf.GetName()] = true
	}

	for _, expected := range expectedMetrics {
		assert.True(t, registeredMetrics[expected], "metric %s should be registered", expected)
	}
}

func TestRecordGenerateDuration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := NewCollector(reg).(*prometheusCollector)
	ctx := context.Background()

	collector.RecordGenerateDuration(ctx, "success", time.Millisecond*5)

	// Check that histogram was observed
	count := testutil.CollectAndCount(collector.generateDuration)
	assert.Equal(t, 1, count)
}

func TestRecordGroups(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := NewCollector(reg).(*prometheusCollector)
	ctx := context.Background()

	collector.RecordGroups(ctx, 7)
	collector.RecordGroups(ctx, 4)

	assert.Equal(t, float64(4), testutil.ToFloat64(collector.groupsTotal))
}

func TestRecordRoutes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := NewCollector(reg).(*prometheusCollector)
	ctx := context.Background()

	collector.RecordRoutes(ctx, RouteKindForward, 5)
	collector.RecordRoutes(ctx, RouteKindSNI, 3)
	collector.RecordRoutes(ctx, RouteKindRedirect, 1)

	assert.Equal(t, float64(5), testutil.ToFloat64(collector.routesTotal.WithLabelValues(RouteKindForward)))
	assert.Equal(t, float64(3), testutil.ToFloat64(collector.routesTotal.WithLabelValues(RouteKindSNI)))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.routesTotal.WithLabelValues(RouteKindRedirect)))
}

func TestRecordGenerateError(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := NewCollector(reg).(*prometheusCollector)
	ctx := context.Background()

	collector.RecordGenerateError(ctx, ErrorTypeContractViolation)
	collector.RecordGenerateError(ctx, ErrorTypeContractViolation)
	collector.RecordGenerateError(ctx, ErrorTypeDecode)

	violationCount := testutil.ToFloat64(collector.generateErrorsTotal.WithLabelValues(ErrorTypeContractViolation))
	decodeCount := testutil.ToFloat64(collector.generateErrorsTotal.WithLabelValues(ErrorTypeDecode))

	assert.Equal(t, float64(2), violationCount)
	assert.Equal(t, float64(1), decodeCount)
}

func TestRecordDroppedInput(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := NewCollector(reg).(*prometheusCollector)
	ctx := context.Background()

	collector.RecordDroppedInput(ctx, "shadow")
	collector.RecordDroppedInput(ctx, "ratelimit_domain")
	collector.RecordDroppedInput(ctx, "ratelimit_domain")

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.droppedInputTotal.WithLabelValues("shadow")))
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.droppedInputTotal.WithLabelValues("ratelimit_domain")))
}

func TestRecordContractViolations(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := NewCollector(reg).(*prometheusCollector)
	ctx := context.Background()

	collector.RecordContractViolations(ctx, 2)
	collector.RecordContractViolations(ctx, 3)

	assert.Equal(t, float64(5), testutil.ToFloat64(collector.contractViolationsTotal))
}
