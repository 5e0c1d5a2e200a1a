package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/lamedts/youtube-new-video-bot/internal/middleware"
	"github.com/lamedts/youtube-new-video-bot/internal/repository"
	"github.com/lamedts/youtube-new-video-bot/internal/service"
)

type ChannelHandler struct {
	registry *service.RegistryService
}

func NewChannelHandler(registry *service.RegistryService) *ChannelHandler {
	return &ChannelHandler{registry: registry}
}

// List handles GET /api/channels
func (h *ChannelHandler) List(c fiber.Ctx) error {
	channels, err := h.registry.All(c.Context(), false)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list channels")
	}
	return c.JSON(fiber.Map{"channels": channels, "count": len(channels)})
}

// Get handles GET /api/channels/:channelId
func (h *ChannelHandler) Get(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	ch, err := h.registry.Get(c.Context(), channelID)
	if err != nil {
		if errors.Is(err, repository.ErrChannelNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Channel not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup channel")
	}
	return c.JSON(ch)
}

type setNotifyRequest struct {
	Notify bool `json:"notify"`
}

// SetNotify handles PATCH /api/channels/:channelId/notify
func (h *ChannelHandler) SetNotify(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req setNotifyRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Body must be {\"notify\": bool}")
	}

	if err := h.registry.SetNotify(c.Context(), channelID, req.Notify); err != nil {
		if errors.Is(err, repository.ErrChannelNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Channel not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update notification preference")
	}

	return c.JSON(fiber.Map{"channelId": channelID, "notify": req.Notify})
}
