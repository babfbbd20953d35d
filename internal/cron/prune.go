package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bher20/eratecharge/internal/logging"
	"github.com/bher20/eratecharge/internal/metrics"
)

const PruneJobName = "prune_ledger"

// Pruner deletes ledger records older than a retention window.
type Pruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// RunPrune runs one prune pass and records job metrics.
func RunPrune(ctx context.Context, p Pruner, retention time.Duration) error {
	startedAt := time.Now()
	n, err := p.Prune(ctx, retention)
	metrics.UpdateJobMetrics(PruneJobName, startedAt, err)

	log := logging.Named("cron")
	if err != nil {
		log.Error("prune failed", zap.String("job", PruneJobName), zap.Error(err))
		return err
	}
	log.Info("prune finished",
		zap.String("job", PruneJobName),
		zap.Int64("records", n),
		zap.Duration("took", time.Since(startedAt)),
	)
	return nil
}

// Scheduler runs the prune job on a cron schedule.
type Scheduler struct {
	c *cron.Cron
}

// Start schedules the prune job. schedule is a standard five-field cron
// expression or a descriptor such as "@daily".
func Start(ctx context.Context, p Pruner, schedule string, retention time.Duration) (*Scheduler, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("prune scheduler needs a positive retention, got %s", retention)
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		_ = RunPrune(ctx, p, retention)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	c.Start()
	logging.Named("cron").Info("prune scheduler started",
		zap.String("schedule", schedule),
		zap.Duration("retention", retention),
	)
	return &Scheduler{c: c}, nil
}

// Stop stops scheduling and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
