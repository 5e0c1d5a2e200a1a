package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lamedts/youtube-new-video-bot/internal/repository"
	"github.com/lamedts/youtube-new-video-bot/internal/service"
)

type StatsHandler struct {
	registry *service.RegistryService
	videos   repository.VideoStore
}

func NewStatsHandler(registry *service.RegistryService, videos repository.VideoStore) *StatsHandler {
	return &StatsHandler{registry: registry, videos: videos}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	channels, err := h.registry.All(c.Context(), false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to fetch statistics",
			},
		})
	}

	notifyEnabled := 0
	for _, ch := range channels {
		if ch.Notify {
			notifyEnabled++
		}
	}

	videoCount, err := h.videos.Count(c.Context())
	if err != nil {
		videoCount = -1
	}

	lastSync, _ := h.registry.LastSyncTime(c.Context())

	return c.JSON(fiber.Map{
		"channels":       len(channels),
		"notify_enabled": notifyEnabled,
		"videos":         videoCount,
		"last_subs_sync": lastSync,
	})
}
