package components

import (
	"context"
	"log/slog"

	"stay-ledger/internal/infra/events"
	"stay-ledger/internal/pkg/config"
	"stay-ledger/internal/usecase"
	"stay-ledger/internal/usecase/shared"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewBroker,
		fx.Annotate(
			func(b *events.Broker) *events.Broker { return b },
			fx.As(new(shared.EventPublisher)),
			fx.As(new(usecase.Subscriber)),
		),
	),
)

// NewBroker closes every subscription on shutdown so open event streams end.
func NewBroker(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) *events.Broker {
	broker := events.NewBroker(cfg.Ledger.EventBuffer, logger)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			broker.Close()
			return nil
		},
	})
	return broker
}
