package handlers

import (
	"context"
	"time"

	"finwiz/internal/dto"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthPingTimeout = 2 * time.Second

// Pinger reports whether storage answers a trivial query.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	version string
	logger  *zap.Logger
}

func NewHealthHandler(store Pinger, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		version: version,
		logger:  logger,
	}
}

// Health godoc
// @Summary Service health
// @Description Report whether the service is running and storage is reachable
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:  "healthy",
		Storage: "up",
		Version: h.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Storage ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Storage = "down"
	}

	return c.JSON(resp)
}
