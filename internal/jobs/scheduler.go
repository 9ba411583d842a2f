package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"stay-ledger/internal/pkg/config"
	"stay-ledger/internal/pkg/errs"
)

// Scheduler runs the settlement sweeper on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *SettlementSweeper
	timeout time.Duration
	logger  *slog.Logger
}

// NewScheduler parses the schedule with a seconds field, in UTC.
func NewScheduler(cfg config.SweeperConfig, sweeper *SettlementSweeper, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	s := &Scheduler{
		cron:    c,
		sweeper: sweeper,
		timeout: time.Minute,
		logger:  logger,
	}
	if _, err := c.AddFunc(cfg.Schedule, s.SettleDueBookings); err != nil {
		return nil, errs.Wrapf(err, "invalid SWEEPER_SCHEDULE %q", cfg.Schedule)
	}
	return s, nil
}

// SettleDueBookings is the cron entry point; it is exported for manual runs.
func (s *Scheduler) SettleDueBookings() {
	s.runWithRecovery("SettleDueBookings", func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		report, err := s.sweeper.Sweep(ctx)
		if err != nil {
			s.logger.Error("Settlement sweep aborted",
				slog.String("error", err.Error()),
				slog.Int("completed", report.Completed))
			return
		}
		if report.Due > 0 {
			s.logger.Info("Settlement sweep finished",
				slog.Int("due", report.Due),
				slog.Int("completed", report.Completed),
				slog.Int("failed", report.Failed))
		}
	})
}

func (s *Scheduler) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Job panicked", slog.String("job", jobName), slog.Any("panic", r))
		}
	}()
	s.logger.Debug("Starting job", slog.String("job", jobName))
	jobFunc()
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Settlement scheduler started")
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Settlement scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
