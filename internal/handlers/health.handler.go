package handlers

import (
	"context"

	xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
)

type HealthService interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	deps []HealthService
}

func RegisterHealthRoutes(e *xhttp.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

// NewHealthHandler takes the dependencies probed on each request. With
// none, the endpoint only reports that the process is up.
func NewHealthHandler(deps ...HealthService) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	for _, d := range h.deps {
		if err := d.Ping(ctx); err != nil {
			logger.Warn("health check failed", "error", err)
			writeJSON(ctx, xhttp.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "ok"})
}
