package components

import (
	"log/slog"

	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/pkg/config"
	"stay-ledger/internal/usecase"
	"stay-ledger/internal/usecase/commands"
	"stay-ledger/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
	fx.Provide(usecase.NewLedger),
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewLedgerSettings,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewRegistryUseCase,
		commands.NewBookingUseCase,
		commands.NewReviewUseCase,
		commands.NewTreasuryUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		func(store queries.LedgerReadStore, cfg config.Config) queries.LedgerQueries {
			return queries.NewLedgerQueries(store, cfg.Ledger.MaxPageSize)
		},
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
		usecase.NewTokenIssuer,
	),
)

func NewLedgerSettings(cfg config.Config, logger *slog.Logger) (commands.Settings, error) {
	rate, err := money.NewBasisPoints(cfg.Ledger.FeeRateBasisPoints)
	if err != nil {
		return commands.Settings{}, err
	}
	platform, err := party.NewIdentity(cfg.Ledger.PlatformAccount)
	if err != nil {
		return commands.Settings{}, err
	}
	logger.Info("Ledger settings loaded",
		slog.Int64("fee_rate_bps", rate.Value()),
		slog.String("platform_account", platform.String()))
	return commands.Settings{FeeRate: rate, Platform: platform}, nil
}
