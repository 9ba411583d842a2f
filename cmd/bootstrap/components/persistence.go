package components

import (
	"context"
	"log/slog"

	"stay-ledger/internal/infra/db"
	"stay-ledger/internal/infra/memstore"
	"stay-ledger/internal/infra/postgres"
	"stay-ledger/internal/pkg/config"
	"stay-ledger/internal/usecase/queries"
	"stay-ledger/internal/usecase/shared"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewStore,
	),
)

// Store is the write side and the read side of one backend.
type Store struct {
	fx.Out

	UnitOfWork shared.UnitOfWork
	ReadStore  queries.LedgerReadStore
}

// NewStore selects the backend named by LEDGER_STORE. The postgres pool is
// only opened when it is selected.
func NewStore(lc fx.Lifecycle, cfg config.Config, publisher shared.EventPublisher, logger *slog.Logger) (Store, error) {
	if cfg.Ledger.Store == config.StoreMemory {
		logger.Warn("Using the in-memory store, state is lost on restart")
		s := memstore.New(publisher, logger)
		return Store{UnitOfWork: s, ReadStore: s}, nil
	}

	ctx := context.Background()
	pool, cleanup, err := db.Connect(ctx, cfg.DB, logger)
	if err != nil {
		return Store{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			cleanup()
			return Store{}, err
		}
	}

	s := postgres.New(pool, publisher, logger)
	return Store{UnitOfWork: s, ReadStore: s}, nil
}
