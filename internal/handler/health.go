package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/dex-engine/internal/service"
)

const (
	statusOK       = "OK"
	statusDegraded = "DEGRADED"
)

type HealthHandler struct {
	BaseHandler
	service *service.HealthService
}

func NewHealthHandler(logger *slog.Logger, svc *service.HealthService) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Block     *uint64 `json:"block,omitempty"`
}

// Handle reports OK with the latest block, or 503 DEGRADED when the node
// cannot be reached.
func (h *HealthHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		resp := HealthResponse{
			Status:    statusOK,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		bn, err := h.service.LatestBlock(c.Context())
		if err != nil {
			resp.Status = statusDegraded
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		resp.Block = &bn
		return c.JSON(resp)
	}
}
