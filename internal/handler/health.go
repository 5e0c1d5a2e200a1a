package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	pool    *pgxpool.Pool
	rdb     *redis.Client
	startAt time.Time
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		rdb:     rdb,
		startAt: time.Now(),
	}
}

// Live handles GET /health/live — liveness probe.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready — readiness probe with dependency checks.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	checks := fiber.Map{}

	if err := h.pool.Ping(ctx); err != nil {
		checks["database"] = "down"
		status = "degraded"
	} else {
		checks["database"] = "up"
	}

	switch {
	case h.rdb == nil:
		checks["redis"] = "disabled"
	case h.rdb.Ping(ctx).Err() != nil:
		checks["redis"] = "down"
		status = "degraded"
	default:
		checks["redis"] = "up"
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":         status,
		"checks":         checks,
		"uptime_seconds": int(time.Since(h.startAt).Seconds()),
	})
}
