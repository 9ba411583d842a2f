package components

import (
	"stay-ledger/internal/handler"
	"stay-ledger/internal/handler/api"
	"stay-ledger/internal/handler/middleware"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewListingHandler,
		api.NewBookingHandler,
		api.NewEventHandler,
		api.NewAccountHandler,
		api.NewTokenHandler,
		middleware.NewAuthMiddleware,
		func(cfg config.Config, clk clock.Clock) *middleware.RateLimiter {
			return middleware.NewRateLimiter(cfg.RateLimit, clk)
		},
		func(
			listing *api.ListingHandler,
			booking *api.BookingHandler,
			event *api.EventHandler,
			account *api.AccountHandler,
			token *api.TokenHandler,
		) handler.Handlers {
			return handler.Handlers{
				Listing: listing,
				Booking: booking,
				Event:   event,
				Account: account,
				Token:   token,
			}
		},
	),
	fx.Invoke(handler.NewRouter),
)
