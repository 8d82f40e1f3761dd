package handlers

import (
	"context"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"
)

type VisitorService interface {
	Log(ctx context.Context, ip, userAgent string) (*model.Visitor, error)
	Stats(ctx context.Context, f model.VisitorFilter) (*model.VisitorStats, error)
}

type VisitorHandler struct {
	svc VisitorService
}

func RegisterVisitorRoutes(e *xhttp.Group, h *VisitorHandler) {
	e.POST("/visitors/log", h.LogVisit)
	e.GET("/visitors", h.GetStats)
}

func NewVisitorHandler(svc VisitorService) *VisitorHandler {
	return &VisitorHandler{svc: svc}
}

func (h *VisitorHandler) LogVisit(ctx *xhttp.RequestCtx) {
	if _, err := h.svc.Log(ctx, xhttp.ClientIP(ctx), string(ctx.UserAgent())); err != nil {
		writeInternal(ctx, "Error logging visit", err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, map[string]string{"message": "Visit logged successfully"})
}

func (h *VisitorHandler) GetStats(ctx *xhttp.RequestCtx) {
	stats, err := h.svc.Stats(ctx, model.VisitorFilter{
		From: queryTime(ctx, "from"),
		To:   queryTime(ctx, "to"),
	})
	if err != nil {
		writeServiceError(ctx, err, "Error retrieving visitor stats")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, stats)
}
