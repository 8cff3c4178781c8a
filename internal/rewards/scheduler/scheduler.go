// Package scheduler triggers the daily bonus distribution on a cron schedule.
// A catch-up run on startup covers days missed while the service was down;
// per-user day markers make the overlap harmless.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tradequest/rewards-backend/internal/rewards/metrics"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

// Distributor runs one daily bonus distribution.
type Distributor interface {
	Distribute(ctx context.Context) (*types.DistributionResult, error)
}

type Scheduler struct {
	engine   Distributor
	logger   logging.Logger
	cronSpec string
	catchUp  bool

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(engine Distributor, logger logging.Logger, cronSpec string, catchUp bool) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		engine:   engine,
		logger:   logger,
		cronSpec: cronSpec,
		catchUp:  catchUp,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers the cron entry and, when enabled, kicks off a catch-up run
// for the current day.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cronSpec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Infof("Bonus scheduler started with spec %q", s.cronSpec)

	if s.catchUp {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.logger.Info("Running startup catch-up bonus distribution")
			s.run()
		}()
	}
	return nil
}

// Stop cancels any in-flight run and waits for the cron loop to drain.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("Bonus scheduler stopped")
}

func (s *Scheduler) run() {
	start := time.Now()
	result, err := s.engine.Distribute(s.ctx)
	if err != nil {
		metrics.BonusRunsTotal.WithLabelValues("error").Inc()
		s.logger.Errorf("Scheduled bonus distribution failed: %v", err)
		return
	}

	status := "success"
	if !result.Success() {
		status = "partial"
		s.logger.Warnf("Scheduled bonus distribution for %s had %d failures", result.Day, len(result.Failed))
	}
	metrics.BonusRunsTotal.WithLabelValues(status).Inc()
	metrics.BonusUsersProcessed.WithLabelValues("bonused").Add(float64(result.Bonused))
	metrics.BonusUsersProcessed.WithLabelValues("skipped").Add(float64(result.Skipped))
	metrics.BonusUsersProcessed.WithLabelValues("failed").Add(float64(len(result.Failed)))
	metrics.BonusRunDuration.Observe(time.Since(start).Seconds())

	s.logger.Infof("Scheduled bonus distribution for %s done: %d bonused, %d skipped", result.Day, result.Bonused, result.Skipped)
}
