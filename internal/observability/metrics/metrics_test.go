package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("outcome", "imported"),
		attribute.String("meal_name", "Schnitzel"),
		attribute.String("trigger", "scheduler"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("outcome"), attrs[0].Key)
	assert.Equal(t, attribute.Key("trigger"), attrs[1].Key)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordImportRun(context.Background(), "imported")
	m.RecordImportResult(context.Background(), 1, 2)
	m.RecordUpstreamFetch(context.Background(), "ok")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordImportRun(context.Background(), "failed")
	m.RecordImportResult(context.Background(), 3, 4)
}
