package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/lamedts/youtube-new-video-bot/internal/handler"
	"github.com/lamedts/youtube-new-video-bot/internal/middleware"
)

// Handlers holds all handler instances needed by the ops router.
type Handlers struct {
	Health  *handler.HealthHandler
	Channel *handler.ChannelHandler
	Stats   *handler.StatsHandler
}

// Setup configures the middleware stack and all ops routes.
func Setup(app *fiber.App, h *Handlers, logger zerolog.Logger) {
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger(logger))

	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")
	api.Get("/channels", h.Channel.List)
	api.Get("/channels/:channelId", h.Channel.Get)
	api.Patch("/channels/:channelId/notify", h.Channel.SetNotify, middleware.NewOpsRateLimiter().Handler())
	api.Get("/stats", h.Stats.GetStats)
}
