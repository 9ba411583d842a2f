package bootstrap

import (
	"context"
	"log/slog"

	"stay-ledger/internal/jobs"
	"stay-ledger/internal/pkg/config"
	"stay-ledger/internal/usecase"

	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		NewSettlementSweeper,
		NewScheduler,
	),
	fx.Invoke(startScheduler),
)

func NewSettlementSweeper(ledger usecase.Ledger, cfg config.Config, logger *slog.Logger) *jobs.SettlementSweeper {
	return jobs.NewSettlementSweeper(ledger, cfg.Sweeper.Batch, logger)
}

func NewScheduler(cfg config.Config, sweeper *jobs.SettlementSweeper, logger *slog.Logger) (*jobs.Scheduler, error) {
	return jobs.NewScheduler(cfg.Sweeper, sweeper, logger)
}

func startScheduler(lc fx.Lifecycle, cfg config.Config, scheduler *jobs.Scheduler, logger *slog.Logger) {
	if !cfg.Sweeper.Enabled {
		logger.Info("Settlement sweeper disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
	})
}
