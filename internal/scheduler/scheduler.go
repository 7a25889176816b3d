package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mensaplan/internal/clock"
	"github.com/smallbiznis/mensaplan/internal/importjob"
	obsmetrics "github.com/smallbiznis/mensaplan/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const importJob = "import_range"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log     *zap.Logger
	Runner  *importjob.Runner
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *obsmetrics.ImportMetrics `optional:"true"`
	Config  Config                    `optional:"true"`
}

type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	genID   *snowflake.Node
	clock   clock.Clock
	runner  *importjob.Runner
	metrics *obsmetrics.ImportMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Runner == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		genID:   p.GenID,
		clock:   p.Clock,
		runner:  p.Runner,
		metrics: p.Metrics,
	}, nil
}

// Range returns today and today plus the configured day distance, in UTC.
func (s *Scheduler) Range() (time.Time, time.Time) {
	y, m, d := s.clock.Now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return today, today.AddDate(0, 0, s.cfg.DayDistance)
}

// RunOnce imports the rolling window. A timed out run is logged and
// reported as success so the loop keeps its cadence.
func (s *Scheduler) RunOnce(parent context.Context) error {
	from, to := s.Range()
	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	run := s.startJobRun(importJob, from, to)
	s.logJobStart(ctx, run)

	res, err := s.runner.Run(ctx, obsmetrics.TriggerScheduler, from, to)
	if res != nil {
		run.days = res.DaysProcessed
	}
	run.failed = err != nil
	s.logJobFinish(ctx, run)
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger(ctx).Warn("job timed out",
			zap.String("job", importJob),
			zap.Duration("timeout", s.cfg.Timeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", importJob, err)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now()

	for {
		if lag := s.clock.Now().Sub(nextRun); lag > 0 {
			s.metrics.ObserveRunLoopLag(lag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
