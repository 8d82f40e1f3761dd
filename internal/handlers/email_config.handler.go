package handlers

import (
	"context"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"
)

type EmailConfigService interface {
	Get(ctx context.Context) (*model.EmailConfig, error)
	Update(ctx context.Context, cfg model.EmailConfig) (*model.EmailConfig, error)
}

type EmailConfigHandler struct {
	svc EmailConfigService
}

func RegisterEmailConfigRoutes(e *xhttp.Group, h *EmailConfigHandler) {
	e.GET("/email-config", h.GetConfig)
	e.PUT("/email-config", h.UpdateConfig)
}

func NewEmailConfigHandler(svc EmailConfigService) *EmailConfigHandler {
	return &EmailConfigHandler{svc: svc}
}

type emailConfigRequest struct {
	RecipientEmail string `json:"recipient_email"`
	SenderName     string `json:"sender_name"`
	SenderEmail    string `json:"sender_email"`
	Enabled        *bool  `json:"enabled"`
}

type emailConfigResponse struct {
	Success bool               `json:"success"`
	Config  *model.EmailConfig `json:"config"`
}

func (h *EmailConfigHandler) GetConfig(ctx *xhttp.RequestCtx) {
	cfg, err := h.svc.Get(ctx)
	if err != nil {
		writeInternal(ctx, "Error fetching email config", err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, emailConfigResponse{Success: true, Config: cfg})
}

// UpdateConfig treats a missing enabled flag as true.
func (h *EmailConfigHandler) UpdateConfig(ctx *xhttp.RequestCtx) {
	var req emailConfigRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	cfg, err := h.svc.Update(ctx, model.EmailConfig{
		RecipientEmail: req.RecipientEmail,
		SenderName:     req.SenderName,
		SenderEmail:    req.SenderEmail,
		Enabled:        enabled,
	})
	if err != nil {
		writeServiceError(ctx, err, "Error saving email config")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, emailConfigResponse{Success: true, Config: cfg})
}
