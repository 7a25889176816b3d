package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mensaplan/internal/clock"
	"github.com/smallbiznis/mensaplan/internal/config"
	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	obscontext "github.com/smallbiznis/mensaplan/internal/observability/context"
	obslogger "github.com/smallbiznis/mensaplan/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/mensaplan/internal/observability/metrics"
	"github.com/smallbiznis/mensaplan/internal/observability/tracing"
	"github.com/smallbiznis/mensaplan/internal/upstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Fetcher    upstream.Fetcher
	Categories *config.CategoryRulesHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics         `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	fetcher    upstream.Fetcher
	categories *config.CategoryRulesHolder
	obsMetrics *obsmetrics.Metrics
	tracer     trace.Tracer
}

func NewService(p Params) domain.Service {
	return newService(p)
}

func newService(p Params) *Service {
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("mealplan.service"),
		genID:      p.GenID,
		clock:      c,
		repo:       p.Repo,
		fetcher:    p.Fetcher,
		categories: p.Categories,
		obsMetrics: p.ObsMetrics,
		tracer:     otel.Tracer("mensaplan/import"),
	}
}

func normalizeDay(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// ImportRange runs the conditional fetch and, when the vendor reports a change,
// reconciles the payload and records the new change token.
func (s *Service) ImportRange(ctx context.Context, start, end time.Time) (*domain.ImportResult, error) {
	startDay, endDay := normalizeDay(start), normalizeDay(end)
	if time.Time(startDay).After(time.Time(endDay)) {
		return nil, domain.ErrInvalidRange
	}

	runID := s.genID.Generate().String()
	ctx = obscontext.WithRunID(ctx, runID)
	ctx, span := s.tracer.Start(ctx, "mealplan.ImportRange")
	defer span.End()
	span.SetAttributes(tracing.SafeAttributes(
		attribute.String("import.run_id", runID),
		attribute.String("import.from", time.Time(startDay).Format(dayKeyLayout)),
		attribute.String("import.to", time.Time(endDay).Format(dayKeyLayout)),
	)...)

	log := obslogger.WithRange(obslogger.WithContext(ctx, s.log), time.Time(startDay), time.Time(endDay))

	result, outcome, err := s.importRange(ctx, log, startDay, endDay)
	span.SetAttributes(attribute.String("import.outcome", outcome))
	s.obsMetrics.RecordImportRun(ctx, outcome)
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "import failed")
		log.Error("import failed", zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("import.days", result.DaysProcessed))
	log.Info("import finished",
		zap.String("outcome", outcome),
		zap.Int("days_processed", result.DaysProcessed),
		zap.Int("meals_inserted", result.MealsInserted),
		zap.Int("plan_meals_inserted", result.PlanMealsInserted),
	)
	return result, nil
}

func (s *Service) importRange(ctx context.Context, log *zap.Logger, start, end datatypes.Date) (*domain.ImportResult, string, error) {
	stored, _, err := s.repo.GetFingerprint(ctx, s.db, start, end)
	if err != nil {
		return nil, obsmetrics.ImportOutcomeFailed, err
	}

	fetched, err := s.fetcher.Fetch(ctx, upstream.FetchRequest{
		Start: time.Time(start),
		End:   time.Time(end),
		ETag:  stored,
	})
	if err != nil {
		s.obsMetrics.RecordUpstreamFetch(ctx, "error")
		return nil, obsmetrics.ImportOutcomeFailed, err
	}

	if fetched.NotModified {
		s.obsMetrics.RecordUpstreamFetch(ctx, "not_modified")
		log.Debug("vendor reported no change")
		return &domain.ImportResult{}, obsmetrics.ImportOutcomeNotModified, nil
	}
	s.obsMetrics.RecordUpstreamFetch(ctx, "ok")

	if stored != "" && fetched.ETag == stored {
		log.Debug("change token unchanged", zap.String("etag", stored))
		return &domain.ImportResult{}, obsmetrics.ImportOutcomeUnchanged, nil
	}

	result, err := s.importBatch(ctx, fetched.Payload)
	if err != nil {
		return nil, obsmetrics.ImportOutcomeFailed, err
	}
	s.obsMetrics.RecordImportResult(ctx, result.MealsInserted, result.PlanMealsInserted)

	if err := s.repo.SaveFingerprint(ctx, s.db, start, end, fetched.ETag); err != nil {
		return nil, obsmetrics.ImportOutcomeFailed, fmt.Errorf("import committed but fingerprint not saved: %w", err)
	}

	return &result, obsmetrics.ImportOutcomeImported, nil
}
