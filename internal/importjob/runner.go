// Package importjob runs range imports on behalf of a trigger (scheduler,
// HTTP, CLI) and records the run in the import metrics.
package importjob

import (
	"context"
	"time"

	"github.com/smallbiznis/mensaplan/internal/clock"
	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	obslogger "github.com/smallbiznis/mensaplan/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/mensaplan/internal/observability/metrics"
	"github.com/smallbiznis/mensaplan/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("importjob",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Service domain.Service
	Log     *zap.Logger
	Clock   clock.Clock               `optional:"true"`
	Metrics *obsmetrics.ImportMetrics `optional:"true"`
}

type Runner struct {
	svc     domain.Service
	log     *zap.Logger
	clock   clock.Clock
	metrics *obsmetrics.ImportMetrics
}

func New(p Params) *Runner {
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Runner{
		svc:     p.Service,
		log:     p.Log.Named("importjob"),
		clock:   c,
		metrics: p.Metrics,
	}
}

// Run imports [start, end] and labels the run with trigger.
func (r *Runner) Run(ctx context.Context, trigger string, start, end time.Time) (*domain.ImportResult, error) {
	ctx, cid := correlation.EnsureCorrelationID(ctx)
	begin := r.clock.Now()

	result, err := r.svc.ImportRange(ctx, start, end)
	finished := r.clock.Now()

	log := obslogger.WithContext(ctx, r.log).With(
		zap.String("trigger", trigger),
		zap.String("correlation_id", cid),
	)
	if err != nil {
		r.metrics.ObserveRun(trigger, obsmetrics.ImportOutcomeFailed, finished.Sub(begin), finished)
		r.metrics.IncError(trigger, err)
		log.Warn("import run failed",
			zap.String("reason", obsmetrics.ClassifyImportError(err)),
			zap.Error(err),
		)
		return nil, err
	}

	r.metrics.ObserveRun(trigger, outcomeOf(result), finished.Sub(begin), finished)
	r.metrics.AddRows("plan_days", result.DaysProcessed)
	r.metrics.AddRows("meals", result.MealsInserted)
	r.metrics.AddRows("plan_meals", result.PlanMealsInserted)
	return result, nil
}

// outcomeOf cannot tell a 304 from a matching token; both report unchanged.
func outcomeOf(result *domain.ImportResult) string {
	if result == nil || result.DaysProcessed == 0 {
		return obsmetrics.ImportOutcomeUnchanged
	}
	return obsmetrics.ImportOutcomeImported
}
