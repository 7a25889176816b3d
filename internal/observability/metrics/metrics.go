package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the OTLP meter provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

const exportInterval = 10 * time.Second

// Metrics holds the OTLP counters of the import pipeline. A nil *Metrics
// records nothing.
type Metrics struct {
	importRuns      metric.Int64Counter
	mealRows        metric.Int64Counter
	planMealRows    metric.Int64Counter
	upstreamFetches metric.Int64Counter
}

// NewProvider returns a no-op provider unless OTLP export is enabled.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(context.Background(), cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.StopHook(provider.Shutdown))
	}
	if log != nil {
		log.Info("otlp metrics enabled",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}
	return provider, nil
}

// New creates the import counters on the provider's meter.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "mensaplan"
	}
	meter := provider.Meter(name)

	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	m := &Metrics{
		importRuns:      counter("mensaplan_import_runs_total", "Range imports by outcome."),
		mealRows:        counter("mensaplan_import_meals_total", "Meals inserted by imports."),
		planMealRows:    counter("mensaplan_import_plan_meals_total", "Plan entries inserted by imports."),
		upstreamFetches: counter("mensaplan_upstream_fetches_total", "Vendor fetches by status."),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordImportRun counts a finished range import by outcome.
func (m *Metrics) RecordImportRun(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.importRuns.Add(ctx, 1, withAttributes(attribute.String("outcome", outcome)))
}

// RecordImportResult adds the rows inserted by a committed import.
func (m *Metrics) RecordImportResult(ctx context.Context, meals, planMeals int) {
	if m == nil {
		return
	}
	if meals > 0 {
		m.mealRows.Add(ctx, int64(meals))
	}
	if planMeals > 0 {
		m.planMealRows.Add(ctx, int64(planMeals))
	}
}

// RecordUpstreamFetch counts vendor fetches by status (ok, not_modified, error).
func (m *Metrics) RecordUpstreamFetch(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.upstreamFetches.Add(ctx, 1, withAttributes(attribute.String("status", status)))
}

func withAttributes(attrs ...attribute.KeyValue) metric.AddOption {
	return metric.WithAttributes(FilterAttributes(attrs...)...)
}

func newExporter(ctx context.Context, protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(ctx, opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"outcome":     {},
	"status":      {},
	"trigger":     {},
	"reason":      {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes keeps only low-cardinality label keys.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}
