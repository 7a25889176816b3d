package importjob

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/smallbiznis/mensaplan/internal/clock"
	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	obsmetrics "github.com/smallbiznis/mensaplan/internal/observability/metrics"
	"github.com/smallbiznis/mensaplan/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockImporter struct {
	mock.Mock
}

func (m *mockImporter) ImportRange(ctx context.Context, start, end time.Time) (*domain.ImportResult, error) {
	args := m.Called(ctx, start, end)
	res, _ := args.Get(0).(*domain.ImportResult)
	return res, args.Error(1)
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if labelsMatch(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	for _, label := range metric.Label {
		if want, ok := labels[label.GetName()]; ok && want != label.GetValue() {
			return false
		}
	}
	return true
}

func newRunner(svc domain.Service, registry *prometheus.Registry) *Runner {
	return New(Params{
		Service: svc,
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(time.Date(2024, 5, 6, 6, 0, 0, 0, time.UTC)),
		Metrics: obsmetrics.NewImportMetricsForTest(registry),
	})
}

func TestRunRecordsImportedOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	svc := &mockImporter{}
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)

	svc.On("ImportRange", mock.MatchedBy(func(ctx context.Context) bool {
		return correlation.ExtractCorrelationID(ctx) != ""
	}), start, end).Return(&domain.ImportResult{DaysProcessed: 2, MealsInserted: 3, PlanMealsInserted: 4}, nil).Once()

	res, err := newRunner(svc, registry).Run(context.Background(), obsmetrics.TriggerHTTP, start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, res.DaysProcessed)
	svc.AssertExpectations(t)

	assert.Equal(t, float64(1), counterValue(t, registry, "mensaplan_import_runs_total",
		map[string]string{"trigger": obsmetrics.TriggerHTTP, "outcome": obsmetrics.ImportOutcomeImported}))
	assert.Equal(t, float64(4), counterValue(t, registry, "mensaplan_import_rows_total",
		map[string]string{"resource": "plan_meals"}))
}

func TestRunKeepsCallerCorrelationID(t *testing.T) {
	svc := &mockImporter{}
	ctx := correlation.ContextWithCorrelationID(context.Background(), "cid-1")
	svc.On("ImportRange", mock.MatchedBy(func(ctx context.Context) bool {
		return correlation.ExtractCorrelationID(ctx) == "cid-1"
	}), mock.Anything, mock.Anything).Return(&domain.ImportResult{}, nil).Once()

	_, err := newRunner(svc, prometheus.NewRegistry()).Run(ctx, obsmetrics.TriggerCLI, time.Now(), time.Now())
	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestRunRecordsFailure(t *testing.T) {
	registry := prometheus.NewRegistry()
	svc := &mockImporter{}
	svc.On("ImportRange", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: status 502", domain.ErrUpstream)).Once()

	_, err := newRunner(svc, registry).Run(context.Background(), obsmetrics.TriggerScheduler, time.Now(), time.Now())
	require.ErrorIs(t, err, domain.ErrUpstream)

	assert.Equal(t, float64(1), counterValue(t, registry, "mensaplan_import_runs_total",
		map[string]string{"trigger": obsmetrics.TriggerScheduler, "outcome": obsmetrics.ImportOutcomeFailed}))
	assert.Equal(t, float64(1), counterValue(t, registry, "mensaplan_import_errors_total",
		map[string]string{"trigger": obsmetrics.TriggerScheduler, "reason": obsmetrics.ImportReasonUpstream}))
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, obsmetrics.ImportOutcomeUnchanged, outcomeOf(&domain.ImportResult{}))
	assert.Equal(t, obsmetrics.ImportOutcomeUnchanged, outcomeOf(nil))
	assert.Equal(t, obsmetrics.ImportOutcomeImported, outcomeOf(&domain.ImportResult{DaysProcessed: 1}))
}
