package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/internal/services"
	xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"
)

const (
	msgInquiryNotFound = "Inquiry not found"
	msgEmailFailed     = "Failed to send email"
)

type InquiryService interface {
	Create(ctx context.Context, p model.InquiryCreateRequest) (*model.Inquiry, model.NotificationResult, error)
	List(ctx context.Context, f model.InquiryFilter) ([]*model.Inquiry, int64, error)
	Get(ctx context.Context, id string) (*model.Inquiry, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Inquiry, error)
	Delete(ctx context.Context, id string) error
	SendEmail(ctx context.Context, req services.SendEmailRequest) (model.NotificationResult, error)
}

type InquiryHandler struct {
	svc InquiryService
}

func RegisterInquiryRoutes(e *xhttp.Group, h *InquiryHandler) {
	e.POST("/inquiries", h.CreateInquiry)
	e.GET("/inquiries", h.ListInquiries)
	e.POST("/inquiries/email", h.SendInquiryEmail)
	e.GET("/inquiries/{id}", h.GetInquiry)
	e.PUT("/inquiries/{id}/status", h.UpdateInquiryStatus)
	e.DELETE("/inquiries/{id}", h.DeleteInquiry)
}

func NewInquiryHandler(svc InquiryService) *InquiryHandler {
	return &InquiryHandler{svc: svc}
}

// inquiryPayload accepts both artType and art_type.
type inquiryPayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ArtType      string `json:"artType"`
	ArtTypeSnake string `json:"art_type"`
	Size         string `json:"size"`
	Budget       string `json:"budget"`
	Timeline     string `json:"timeline"`
	Message      string `json:"message"`
}

func (p inquiryPayload) toRequest(ctx *xhttp.RequestCtx) model.InquiryCreateRequest {
	artType := p.ArtType
	if strings.TrimSpace(artType) == "" {
		artType = p.ArtTypeSnake
	}
	return model.InquiryCreateRequest{
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		ArtType:   artType,
		Size:      p.Size,
		Budget:    p.Budget,
		Timeline:  p.Timeline,
		Message:   p.Message,
		IPAddress: xhttp.ClientIP(ctx),
		UserAgent: string(ctx.UserAgent()),
	}
}

type createInquiryResponse struct {
	Success      bool                     `json:"success"`
	InquiryID    string                   `json:"inquiryId"`
	Status       model.InquiryStatus      `json:"status"`
	Message      string                   `json:"message"`
	Notification model.NotificationStatus `json:"notification"`
}

type inquiryResponse struct {
	Success bool           `json:"success"`
	Inquiry *model.Inquiry `json:"inquiry"`
}

type listInquiriesResponse struct {
	Success   bool             `json:"success"`
	Inquiries []*model.Inquiry `json:"inquiries"`
	Count     int              `json:"count"`
	Total     int64            `json:"total"`
}

type sendEmailPayload struct {
	ID string `json:"id"`
	inquiryPayload
}

type sendEmailResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	SentTo    string `json:"sentTo"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *InquiryHandler) CreateInquiry(ctx *xhttp.RequestCtx) {
	var req inquiryPayload
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	inq, res, err := h.svc.Create(ctx, req.toRequest(ctx))
	if err != nil {
		writeServiceError(ctx, err, "Failed to submit inquiry")
		return
	}

	writeJSON(ctx, xhttp.StatusCreated, createInquiryResponse{
		Success:      true,
		InquiryID:    inq.ID,
		Status:       inq.Status,
		Message:      "Inquiry submitted successfully",
		Notification: res.Status,
	})
}

func (h *InquiryHandler) ListInquiries(ctx *xhttp.RequestCtx) {
	var f model.InquiryFilter

	if v := query(ctx, "status"); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if parts[i] != "" {
				f.Statuses = append(f.Statuses, model.InquiryStatus(parts[i]))
			}
		}
	}
	f.From = queryTime(ctx, "from")
	f.To = queryTime(ctx, "to")
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "asc") {
		f.Asc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err, "Error fetching inquiries")
		return
	}
	if items == nil {
		items = []*model.Inquiry{}
	}
	writeJSON(ctx, xhttp.StatusOK, listInquiriesResponse{
		Success:   true,
		Inquiries: items,
		Count:     len(items),
		Total:     total,
	})
}

func (h *InquiryHandler) GetInquiry(ctx *xhttp.RequestCtx) {
	inq, err := h.svc.Get(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err, "Error fetching inquiry")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, inquiryResponse{Success: true, Inquiry: inq})
}

func (h *InquiryHandler) UpdateInquiryStatus(ctx *xhttp.RequestCtx) {
	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	inq, err := h.svc.UpdateStatus(ctx, pathParam(ctx, "id"), req.Status)
	if err != nil {
		writeServiceError(ctx, err, "Error updating inquiry status")
		return
	}
	writeJSON(ctx, xhttp.StatusOK, inquiryResponse{Success: true, Inquiry: inq})
}

func (h *InquiryHandler) DeleteInquiry(ctx *xhttp.RequestCtx) {
	if err := h.svc.Delete(ctx, pathParam(ctx, "id")); err != nil {
		writeServiceError(ctx, err, "Error deleting inquiry")
		return
	}
	ctx.Response.SetStatusCode(xhttp.StatusNoContent)
}

func (h *InquiryHandler) SendInquiryEmail(ctx *xhttp.RequestCtx) {
	var req sendEmailPayload
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res, err := h.svc.SendEmail(ctx, services.SendEmailRequest{
		ID:      req.ID,
		Inquiry: req.inquiryPayload.toRequest(ctx),
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNotificationFailed):
		writeError(ctx, xhttp.StatusBadGateway, msgEmailFailed)
		return
	case errors.Is(err, services.ErrEmailDisabled):
		writeError(ctx, xhttp.StatusConflict, "Email notifications are disabled")
		return
	default:
		writeServiceError(ctx, err, msgEmailFailed)
		return
	}

	writeJSON(ctx, xhttp.StatusOK, sendEmailResponse{
		Success:   true,
		MessageID: res.MessageID,
		SentTo:    res.Recipient,
	})
}
