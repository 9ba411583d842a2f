package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"stay-ledger/internal/handler/api"
	"stay-ledger/internal/handler/middleware"
	"stay-ledger/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Listing *api.ListingHandler
	Booking *api.BookingHandler
	Event   *api.EventHandler
	Account *api.AccountHandler
	Token   *api.TokenHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, limiter *middleware.RateLimiter) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, h, authMiddleware, limiter)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, limiter *middleware.RateLimiter) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := []gin.HandlerFunc{authMiddleware.RequireAuth()}

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup.Group("/listings"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Listing.Create, Mw: auth},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Listing.Get},
			{Method: http.MethodPost, Path: "/:id/deactivate", Handler: h.Listing.Deactivate, Mw: auth},
			{Method: http.MethodPatch, Path: "/:id/price", Handler: h.Listing.UpdatePrice, Mw: auth},
			{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Listing.Availability},
			{Method: http.MethodGet, Path: "/:id/reviews", Handler: h.Listing.Reviews},
		})

		addRoutes(apiGroup.Group("/bookings"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Booking.Create, Mw: append(auth, limiter.Middleware())},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Booking.Get},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Booking.Cancel, Mw: auth},
			{Method: http.MethodPost, Path: "/:id/complete", Handler: h.Booking.Complete, Mw: auth},
			{Method: http.MethodPost, Path: "/:id/review", Handler: h.Booking.Review, Mw: auth},
		})

		addRoutes(apiGroup.Group("/events"), []route{
			{Method: http.MethodGet, Path: "", Handler: h.Event.List},
			{Method: http.MethodGet, Path: "/stream", Handler: h.Event.Stream},
		})

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/treasury", Handler: h.Account.Treasury},
			{Method: http.MethodGet, Path: "/accounts/me", Handler: h.Account.Me, Mw: auth},
			{Method: http.MethodPost, Path: "/accounts/me/withdraw", Handler: h.Account.Withdraw, Mw: auth},
		})

		if gin.Mode() == gin.DebugMode && h.Token != nil {
			apiGroup.POST("/tokens", h.Token.Issue)
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
