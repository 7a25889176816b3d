package scheduler

import (
	"context"
	"time"

	obslogger "github.com/smallbiznis/mensaplan/internal/observability/logger"
	"go.uber.org/zap"
)

type jobRun struct {
	job       string
	runID     string
	startedAt time.Time
	from      time.Time
	to        time.Time
	days      int
	failed    bool
}

func (s *Scheduler) startJobRun(job string, from, to time.Time) *jobRun {
	return &jobRun{
		job:       job,
		runID:     s.genID.Generate().String(),
		startedAt: s.clock.Now(),
		from:      from,
		to:        to,
	}
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

func (s *Scheduler) logJobStart(ctx context.Context, run *jobRun) {
	obslogger.WithRange(s.logger(ctx), run.from, run.to).Info("scheduler.job.start",
		zap.String("job", run.job),
		zap.String("job_run_id", run.runID),
	)
}

func (s *Scheduler) logJobFinish(ctx context.Context, run *jobRun) {
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.String("job_run_id", run.runID),
		zap.Int64("duration_ms", s.clock.Now().Sub(run.startedAt).Milliseconds()),
		zap.Int("days_processed", run.days),
	}
	log := obslogger.WithRange(s.logger(ctx), run.from, run.to)
	if run.failed {
		log.Warn("scheduler.job.finish", fields...)
		return
	}
	log.Info("scheduler.job.finish", fields...)
}
